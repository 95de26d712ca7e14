package main

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type amountOutput struct {
	Token  common.Address `json:"token"`
	Symbol string         `json:"symbol,omitempty"`
	Raw    string         `json:"raw"`
	Amount string         `json:"amount"`
}

type callOutput struct {
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data"`
	Value string         `json:"value"`
}

// result is what the run command prints. Limits are the slippage bounded
// amounts written into the call.
type result struct {
	Operation  string         `json:"operation"`
	Kind       string         `json:"kind"`
	PoolID     common.Hash    `json:"poolId"`
	PoolType   pools.Type     `json:"poolType"`
	Slippage   string         `json:"slippage"`
	AmountsIn  []amountOutput `json:"amountsIn"`
	AmountsOut []amountOutput `json:"amountsOut"`
	Limits     []amountOutput `json:"limits"`
	Call       callOutput     `json:"call"`

	// PriceImpact is left out when it cannot be estimated.
	PriceImpact string `json:"priceImpact,omitempty"`
}

func newAmountOutput(a token.Amount) amountOutput {
	t := a.Token()
	return amountOutput{
		Token:  t.Address,
		Symbol: t.Symbol,
		Raw:    a.Raw().String(),
		Amount: a.Human().String(),
	}
}

func amountOutputs(amounts ...token.Amount) []amountOutput {
	out := make([]amountOutput, len(amounts))
	for i, a := range amounts {
		out[i] = newAmountOutput(a)
	}
	return out
}

// limitOutputs pairs raw call bounds with the tokens they are denominated in.
func limitOutputs(tokens []token.Token, raws ...*big.Int) ([]amountOutput, error) {
	if len(tokens) != len(raws) {
		return nil, fmt.Errorf("got %d limits for %d tokens", len(raws), len(tokens))
	}
	out := make([]amountOutput, len(raws))
	for i, raw := range raws {
		a, err := token.NewAmount(tokens[i], raw)
		if err != nil {
			return nil, err
		}
		out[i] = newAmountOutput(a)
	}
	return out, nil
}

func newCallOutput(to common.Address, data []byte, value *big.Int) callOutput {
	if value == nil {
		value = new(big.Int)
	}
	return callOutput{To: to, Data: data, Value: value.String()}
}
