// Package config loads the YAML description of a single pool operation run
// by the balancer command.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/defistate/balancer-sdk-go/slippage"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const DefaultSlippage = "0.5"

// Operation types.
const (
	TypeAdd    = "add"
	TypeRemove = "remove"
	TypeExit   = "exit"
	TypeSwap   = "swap"
)

var kinds = map[string][]string{
	TypeAdd:    {"unbalanced", "single_token", "proportional", "init"},
	TypeRemove: {"single_token_exact_in", "single_token_exact_out", "proportional", "custom"},
	TypeExit:   {"single_asset", "proportional", "exact_out"},
	TypeSwap:   {"given_in", "given_out"},
}

// Amount is a human decimal amount of a pool token, e.g. "1.5".
type Amount struct {
	Token  string `yaml:"token"`
	Amount string `yaml:"amount"`
}

// Operation describes what to query. Which fields apply depends on Type and Kind.
type Operation struct {
	Type    string   `yaml:"type"`
	Kind    string   `yaml:"kind"`
	Amounts []Amount `yaml:"amounts"`
	// Bpt is a human amount of pool shares.
	Bpt      string `yaml:"bpt"`
	TokenIn  string `yaml:"token_in"`
	TokenOut string `yaml:"token_out"`
	// Amount is the fixed side of a swap.
	Amount string `yaml:"amount"`
	// Native swaps the chain's wrapped native token for the native coin.
	Native bool `yaml:"native"`
}

// Config is the top level run file.
type Config struct {
	ChainID   uint64 `yaml:"chain_id"`
	PoolsFile string `yaml:"pools_file"`
	PoolID    string `yaml:"pool_id"`
	Sender    string `yaml:"sender"`
	Recipient string `yaml:"recipient"`
	// Slippage is a percentage, "1" meaning 1%.
	Slippage  string    `yaml:"slippage"`
	Deadline  int64     `yaml:"deadline"`
	Operation Operation `yaml:"operation"`
}

// LoadConfig reads a configuration file from the given path, applies
// defaults and validates it. A relative pools_file is resolved against the
// directory of the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.PoolsFile) {
		cfg.PoolsFile = filepath.Join(filepath.Dir(path), cfg.PoolsFile)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Slippage == "" {
		cfg.Slippage = DefaultSlippage
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields every operation needs and the ones its kind needs.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("config: chain_id is required")
	}
	if c.PoolsFile == "" {
		return fmt.Errorf("config: pools_file is required")
	}
	if b := common.FromHex(c.PoolID); !has0x(c.PoolID) || len(b) != common.HashLength {
		return fmt.Errorf("config: pool_id %q is not a 32 byte hex string", c.PoolID)
	}
	if !common.IsHexAddress(c.Sender) {
		return fmt.Errorf("config: sender %q is not an address", c.Sender)
	}
	if c.Recipient != "" && !common.IsHexAddress(c.Recipient) {
		return fmt.Errorf("config: recipient %q is not an address", c.Recipient)
	}
	if _, err := slippage.FromPercentage(c.Slippage); err != nil {
		return fmt.Errorf("config: slippage: %w", err)
	}
	if c.Deadline < 0 {
		return fmt.Errorf("config: deadline cannot be negative")
	}
	return c.Operation.validate()
}

func (o Operation) validate() error {
	allowed, ok := kinds[o.Type]
	if !ok {
		return fmt.Errorf("config: unknown operation type %q", o.Type)
	}
	known := false
	for _, k := range allowed {
		known = known || k == o.Kind
	}
	if !known {
		return fmt.Errorf("config: operation %s has no kind %q, want one of %v", o.Type, o.Kind, allowed)
	}

	for i, a := range o.Amounts {
		if !common.IsHexAddress(a.Token) {
			return fmt.Errorf("config: amounts[%d].token %q is not an address", i, a.Token)
		}
		if a.Amount == "" {
			return fmt.Errorf("config: amounts[%d].amount is required", i)
		}
	}

	var need []string
	switch o.Type + "/" + o.Kind {
	case "add/unbalanced", "add/init", "remove/custom", "exit/exact_out":
		need = []string{"amounts"}
	case "add/single_token":
		need = []string{"bpt", "token_in"}
	case "add/proportional", "remove/proportional", "exit/proportional":
		need = []string{"bpt"}
	case "remove/single_token_exact_in", "exit/single_asset":
		need = []string{"bpt", "token_out"}
	case "remove/single_token_exact_out":
		if len(o.Amounts) != 1 {
			return fmt.Errorf("config: remove/single_token_exact_out takes exactly one amount, got %d", len(o.Amounts))
		}
	case "swap/given_in", "swap/given_out":
		need = []string{"token_in", "token_out", "amount"}
	}
	for _, field := range need {
		if err := o.require(field); err != nil {
			return err
		}
	}
	return nil
}

func (o Operation) require(field string) error {
	missing := false
	switch field {
	case "amounts":
		missing = len(o.Amounts) == 0
	case "bpt":
		missing = o.Bpt == ""
	case "amount":
		missing = o.Amount == ""
	case "token_in":
		if o.TokenIn != "" && !common.IsHexAddress(o.TokenIn) {
			return fmt.Errorf("config: token_in %q is not an address", o.TokenIn)
		}
		missing = o.TokenIn == ""
	case "token_out":
		if o.TokenOut != "" && !common.IsHexAddress(o.TokenOut) {
			return fmt.Errorf("config: token_out %q is not an address", o.TokenOut)
		}
		missing = o.TokenOut == ""
	}
	if missing {
		return fmt.Errorf("config: operation %s/%s requires %s", o.Type, o.Kind, field)
	}
	return nil
}

func has0x(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
