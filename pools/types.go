package pools

import (
	"math/big"

	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
)

// Type discriminates the pool variants.
type Type string

const (
	TypeWeighted   Type = "Weighted"
	TypeStable     Type = "Stable"
	TypeMetaStable Type = "MetaStable"
	TypeLinear     Type = "Linear"
	TypeGyro2      Type = "Gyro2"
)

// RawPoolToken is one constituent of a RawPool. Numeric fields are human
// decimal strings.
type RawPoolToken struct {
	Address   common.Address `json:"address"`
	Index     int            `json:"index"`
	Decimals  uint8          `json:"decimals"`
	Symbol    string         `json:"symbol,omitempty"`
	Balance   string         `json:"balance"`
	Weight    string         `json:"weight,omitempty"`
	PriceRate string         `json:"priceRate,omitempty"`
}

// RawPool is an untyped pool record as served by a Balancer style data API.
// Variant specific fields are empty when they do not apply.
type RawPool struct {
	ID              common.Hash    `json:"id"`
	Address         common.Address `json:"address"`
	PoolType        string         `json:"poolType"`
	PoolTypeVersion int            `json:"poolTypeVersion,omitempty"`
	SwapFee         string         `json:"swapFee"`
	TotalShares     string         `json:"totalShares"`
	Tokens          []RawPoolToken `json:"tokens"`

	// Stable and MetaStable
	Amp string `json:"amp,omitempty"`

	// Linear
	MainIndex    int    `json:"mainIndex,omitempty"`
	WrappedIndex int    `json:"wrappedIndex,omitempty"`
	LowerTarget  string `json:"lowerTarget,omitempty"`
	UpperTarget  string `json:"upperTarget,omitempty"`

	// Gyro2
	SqrtAlpha string `json:"sqrtAlpha,omitempty"`
	SqrtBeta  string `json:"sqrtBeta,omitempty"`
}

// PoolToken is a parsed pool constituent. Balance is in raw base units,
// Weight and PriceRate are 18-decimal fixed point.
type PoolToken struct {
	token.Token
	Index     int
	Balance   *big.Int
	Weight    *big.Int
	PriceRate *big.Int
}

func (t PoolToken) clone() PoolToken {
	c := t
	c.Balance = cloneBig(t.Balance)
	c.Weight = cloneBig(t.Weight)
	c.PriceRate = cloneBig(t.PriceRate)
	return c
}

func cloneBig(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}
	return new(big.Int).Set(x)
}

// CloneAll deep copies a slice of big integers.
func CloneAll(xs []*big.Int) []*big.Int {
	out := make([]*big.Int, len(xs))
	for i, x := range xs {
		out[i] = cloneBig(x)
	}
	return out
}
