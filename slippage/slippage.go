// Package slippage bounds query results with a tolerance before they are
// encoded into Vault calls.
package slippage

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/shopspring/decimal"
)

// Direction selects which way a bound moves.
type Direction int

const (
	// Down lowers an amount: minimum acceptable outputs.
	Down Direction = iota
	// Up raises an amount: maximum acceptable inputs.
	Up
)

var ErrOutOfRange = fmt.Errorf("%w: slippage must be between 0%% and 100%%", poolerrors.ErrInvalidInput)

// Slippage is a tolerance held as an 18-decimal fraction. The zero value is
// a zero tolerance.
type Slippage struct {
	value *big.Int
}

// FromFraction builds a slippage from an 18-decimal fraction, 1e16 being 1%.
func FromFraction(x *big.Int) (Slippage, error) {
	if x == nil || x.Sign() < 0 || x.Cmp(fixedpoint.One) > 0 {
		return Slippage{}, ErrOutOfRange
	}
	return Slippage{value: new(big.Int).Set(x)}, nil
}

// FromPercentage parses a percentage such as "0.5" for half a percent.
func FromPercentage(pct string) (Slippage, error) {
	d, err := decimal.NewFromString(pct)
	if err != nil {
		return Slippage{}, fmt.Errorf("%w: slippage %q: %v", poolerrors.ErrInvalidInput, pct, err)
	}
	return FromFraction(d.Shift(16).Truncate(0).BigInt())
}

// FromBasisPoints builds a slippage from basis points, 100 being 1%.
func FromBasisPoints(bps uint64) (Slippage, error) {
	return FromFraction(new(big.Int).Mul(new(big.Int).SetUint64(bps), big.NewInt(1e14)))
}

// MustPercentage is FromPercentage for constants; it panics on bad input.
func MustPercentage(pct string) Slippage {
	s, err := FromPercentage(pct)
	if err != nil {
		panic(err)
	}
	return s
}

// Value returns the 18-decimal fraction.
func (s Slippage) Value() *big.Int {
	if s.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(s.value)
}

// ApplyTo returns amount moved by the tolerance: floor(amount*(1-s)) for
// Down and ceil(amount*(1+s)) for Up.
func (s Slippage) ApplyTo(amount *big.Int, dir Direction) *big.Int {
	v := s.Value()
	if dir == Down {
		factor := new(big.Int).Sub(fixedpoint.One, v)
		z := new(big.Int).Mul(amount, factor)
		return z.Quo(z, fixedpoint.One)
	}
	factor := new(big.Int).Add(fixedpoint.One, v)
	z := new(big.Int).Mul(amount, factor)
	if z.Sign() == 0 {
		return z
	}
	z.Sub(z, big.NewInt(1))
	z.Quo(z, fixedpoint.One)
	return z.Add(z, big.NewInt(1))
}

// ApplyToAll bounds every amount in the same direction.
func (s Slippage) ApplyToAll(amounts []*big.Int, dir Direction) []*big.Int {
	out := make([]*big.Int, len(amounts))
	for i, a := range amounts {
		out[i] = s.ApplyTo(a, dir)
	}
	return out
}

// Percentage returns the tolerance in percent.
func (s Slippage) Percentage() decimal.Decimal {
	return decimal.NewFromBigInt(s.Value(), -16)
}

func (s Slippage) String() string {
	return s.Percentage().String() + "%"
}
