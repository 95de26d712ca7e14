package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exitYAML = `
chain_id: 1
pools_file: pools.json
pool_id: "0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014"
sender: "0x1111111111111111111111111111111111111111"
slippage: "1"
operation:
  type: exit
  kind: single_asset
  bpt: "1"
  token_out: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "op.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exitYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.ChainID)
	assert.Equal(t, filepath.Join(dir, "pools.json"), cfg.PoolsFile)
	assert.Equal(t, "1", cfg.Slippage)
	assert.Equal(t, TypeExit, cfg.Operation.Type)
	assert.Equal(t, "single_asset", cfg.Operation.Kind)
	assert.Equal(t, "1", cfg.Operation.Bpt)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
chain_id: 1
pools_file: /tmp/pools.json
pool_id: "0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014"
sender: "0x1111111111111111111111111111111111111111"
operation:
  type: add
  kind: unbalanced
  amounts:
    - token: "0xba100000625a3754423978a60c9317c58a424e3D"
      amount: "10.5"
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultSlippage, cfg.Slippage)
	assert.Equal(t, "/tmp/pools.json", cfg.PoolsFile)
	require.Len(t, cfg.Operation.Amounts, 1)
	assert.Equal(t, "10.5", cfg.Operation.Amounts[0].Amount)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ChainID:   1,
			PoolsFile: "pools.json",
			PoolID:    "0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014",
			Sender:    "0x1111111111111111111111111111111111111111",
			Slippage:  "0.5",
			Operation: Operation{
				Type:     TypeSwap,
				Kind:     "given_in",
				TokenIn:  "0xba100000625a3754423978a60c9317c58a424e3D",
				TokenOut: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
				Amount:   "1",
			},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no chain", func(c *Config) { c.ChainID = 0 }, "chain_id is required"},
		{"no pools file", func(c *Config) { c.PoolsFile = "" }, "pools_file is required"},
		{"short pool id", func(c *Config) { c.PoolID = "0x1234" }, "pool_id"},
		{"pool id without prefix", func(c *Config) { c.PoolID = c.PoolID[2:] }, "pool_id"},
		{"bad sender", func(c *Config) { c.Sender = "alice" }, "sender"},
		{"bad recipient", func(c *Config) { c.Recipient = "0x12" }, "recipient"},
		{"slippage above 100%", func(c *Config) { c.Slippage = "101" }, "slippage"},
		{"negative deadline", func(c *Config) { c.Deadline = -1 }, "deadline"},
		{"unknown type", func(c *Config) { c.Operation.Type = "migrate" }, "unknown operation type"},
		{"kind of another type", func(c *Config) { c.Operation.Kind = "proportional" }, "has no kind"},
		{"swap without amount", func(c *Config) { c.Operation.Amount = "" }, "requires amount"},
		{"swap with bad token", func(c *Config) { c.Operation.TokenOut = "weth" }, "token_out"},
		{"proportional add without bpt", func(c *Config) {
			c.Operation = Operation{Type: TypeAdd, Kind: "proportional"}
		}, "requires bpt"},
		{"custom remove without amounts", func(c *Config) {
			c.Operation = Operation{Type: TypeRemove, Kind: "custom"}
		}, "requires amounts"},
		{"exact out remove with two amounts", func(c *Config) {
			c.Operation = Operation{Type: TypeRemove, Kind: "single_token_exact_out", Amounts: []Amount{
				{Token: "0xba100000625a3754423978a60c9317c58a424e3D", Amount: "1"},
				{Token: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Amount: "1"},
			}}
		}, "exactly one amount"},
		{"amount with bad token", func(c *Config) {
			c.Operation = Operation{Type: TypeExit, Kind: "exact_out", Amounts: []Amount{{Token: "bal", Amount: "1"}}}
		}, "amounts[0].token"},
		{"single asset exit without token", func(c *Config) {
			c.Operation = Operation{Type: TypeExit, Kind: "single_asset", Bpt: "1"}
		}, "requires token_out"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("chain_id: 1\nrpc_url: http://localhost:8545\n"))
	assert.Error(t, err)
}
