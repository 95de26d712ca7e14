package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/defistate/balancer-sdk-go/parser"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/registry"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type poolOutput struct {
	ID          common.Hash    `json:"id"`
	Address     common.Address `json:"address"`
	Type        pools.Type     `json:"type"`
	SwapFee     string         `json:"swapFee"`
	TotalShares string         `json:"totalShares"`
	Tokens      []amountOutput `json:"tokens"`
}

func runParse(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	chainID, _ := cmd.Flags().GetUint64("chain-id")
	graph, _ := cmd.Flags().GetBool("graph")

	reg, err := e.loadPools(flagString(cmd.Flags(), "pools"), chainID)
	if err != nil {
		return err
	}
	if graph {
		return writeJSON(cmd.OutOrStdout(), reg.View())
	}

	out := make([]poolOutput, 0, reg.Len())
	for _, p := range reg.Pools() {
		summary, err := summarize(p)
		if err != nil {
			return err
		}
		out = append(out, summary)
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

// loadPools decodes the raw pools file, parses it and indexes the result.
func (e *env) loadPools(path string, chainID uint64) (*registry.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raws, err := parser.DecodeRawPools(f)
	if err != nil {
		return nil, err
	}
	p, err := parser.NewParser(&parser.Config{
		ChainID:  chainID,
		Logger:   e.logger.With("component", "parser"),
		Registry: e.registry,
	})
	if err != nil {
		return nil, err
	}
	parsed, err := p.ParseRawPools(raws)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Parsed pools", "file", path, "raw", len(raws), "parsed", len(parsed))
	return registry.FromPools(chainID, parsed)
}

func summarize(p pools.Pool) (poolOutput, error) {
	tokens := p.Tokens()
	balances := make([]amountOutput, len(tokens))
	for i, t := range tokens {
		a, err := token.NewAmount(t.Token, t.Balance)
		if err != nil {
			return poolOutput{}, err
		}
		balances[i] = newAmountOutput(a)
	}
	shares, err := token.NewAmount(pools.BptOf(p), p.TotalShares())
	if err != nil {
		return poolOutput{}, err
	}
	return poolOutput{
		ID:          p.ID(),
		Address:     p.Address(),
		Type:        p.Type(),
		SwapFee:     decimal.NewFromBigInt(p.SwapFee(), -16).String() + "%",
		TotalShares: shares.Human().String(),
		Tokens:      balances,
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
