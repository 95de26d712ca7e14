// Package priceimpact estimates the price impact of joins, removals and
// swaps. Each operation is simulated, then reversed against the same pool
// state; the impact is half the relative loss of the round trip. Swap fees
// charged on either leg count as impact.
package priceimpact

import (
	"math/big"

	"github.com/defistate/balancer-sdk-go/addliquidity"
	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/removeliquidity"
	"github.com/defistate/balancer-sdk-go/swap"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const op = "price_impact"

var bigTwo = big.NewInt(2)

// Impact is a price impact held as an 18-decimal fraction. The zero value
// is no impact.
type Impact struct {
	value *big.Int
}

// Value returns the 18-decimal fraction, 1e16 being 1%.
func (i Impact) Value() *big.Int {
	if i.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.value)
}

// IsZero reports whether the operation moves no price.
func (i Impact) IsZero() bool {
	return i.value == nil || i.value.Sign() == 0
}

// Percentage returns the impact in percent.
func (i Impact) Percentage() decimal.Decimal {
	return decimal.NewFromBigInt(i.Value(), -16)
}

// BasisPoints returns the impact in basis points.
func (i Impact) BasisPoints() decimal.Decimal {
	return decimal.NewFromBigInt(i.Value(), -14)
}

func (i Impact) String() string {
	return i.Percentage().String() + "%"
}

// roundTrip prices sending sent and getting returned back. Rounding that
// favours the caller reports no impact.
func roundTrip(sent, returned *big.Int) (Impact, error) {
	if sent.Sign() == 0 || returned.Cmp(sent) >= 0 {
		return Impact{}, nil
	}
	var m fixedpoint.Math
	loss := m.DivUp(m.Sub(sent, returned), sent)
	v := m.DivCeil(loss, bigTwo)
	if err := m.Err(); err != nil {
		return Impact{}, err
	}
	return Impact{value: v}, nil
}

func poolID(p pools.Pool) common.Hash {
	if p == nil {
		return common.Hash{}
	}
	return p.ID()
}

func inputOf(a token.Amount) token.InputAmount {
	t := a.Token()
	return token.InputAmount{Address: t.Address, Decimals: t.Decimals, RawAmount: a.Raw()}
}

// nonZero drops the amounts a reversed leg does not need.
func nonZero(amounts []token.Amount) []token.InputAmount {
	out := make([]token.InputAmount, 0, len(amounts))
	for _, a := range amounts {
		if !a.IsZero() {
			out = append(out, inputOf(a))
		}
	}
	return out
}

// AddLiquidity estimates the impact of the join in. Proportional joins and
// pool initialisation have none. A single token join is reversed by a
// single token removal of the BPT minted; an unbalanced join by withdrawing
// the same amounts, comparing the BPT that costs with the BPT minted.
func AddLiquidity(in addliquidity.Input, p pools.Pool) (Impact, error) {
	kind := "unknown"
	if in != nil {
		kind = in.Kind().String()
	}
	impact, err := addLiquidity(in, p)
	if err != nil {
		return Impact{}, poolerrors.Relabel(op, kind, poolID(p), err)
	}
	return impact, nil
}

func addLiquidity(in addliquidity.Input, p pools.Pool) (Impact, error) {
	q, err := addliquidity.Compute(in, p)
	if err != nil {
		return Impact{}, err
	}
	if q.BptOut.IsZero() {
		return Impact{}, nil
	}
	base := removeliquidity.Base{ChainID: q.ChainID}

	switch q.Kind {
	case addliquidity.Proportional, addliquidity.Init:
		return Impact{}, nil
	case addliquidity.SingleToken:
		i := q.TokenInIndex
		back, err := removeliquidity.Compute(removeliquidity.SingleTokenExactInInput{
			Base:     base,
			BptIn:    inputOf(q.BptOut),
			TokenOut: q.Tokens[i].Address,
		}, p)
		if err != nil {
			return Impact{}, err
		}
		return roundTrip(q.AmountsIn[i].Raw(), back.AmountsOut[i].Raw())
	default:
		back, err := removeliquidity.Compute(removeliquidity.CustomInput{Base: base, AmountsOut: nonZero(q.AmountsIn)}, p)
		if err != nil {
			return Impact{}, err
		}
		return roundTrip(back.BptIn.Raw(), q.BptOut.Raw())
	}
}

// RemoveLiquidity estimates the impact of the removal in. Proportional
// removals have none; every other kind is reversed by depositing the
// amounts withdrawn, comparing the BPT minted with the BPT burned.
func RemoveLiquidity(in removeliquidity.Input, p pools.Pool) (Impact, error) {
	kind := "unknown"
	if in != nil {
		kind = in.Kind().String()
	}
	impact, err := removeLiquidity(in, p)
	if err != nil {
		return Impact{}, poolerrors.Relabel(op, kind, poolID(p), err)
	}
	return impact, nil
}

func removeLiquidity(in removeliquidity.Input, p pools.Pool) (Impact, error) {
	q, err := removeliquidity.Compute(in, p)
	if err != nil {
		return Impact{}, err
	}
	if q.Kind == removeliquidity.Proportional || q.BptIn.IsZero() {
		return Impact{}, nil
	}
	back, err := addliquidity.Compute(addliquidity.UnbalancedInput{
		Base:      addliquidity.Base{ChainID: q.ChainID},
		AmountsIn: nonZero(q.AmountsOut),
	}, p)
	if err != nil {
		return Impact{}, err
	}
	return roundTrip(q.BptIn.Raw(), back.BptOut.Raw())
}

// Swap estimates the impact of the swap in by swapping its output back,
// exact in, and comparing what returns with what was paid.
func Swap(in swap.Input, p pools.Pool) (Impact, error) {
	impact, err := swapImpact(in, p)
	if err != nil {
		return Impact{}, poolerrors.Relabel(op, in.Kind.String(), poolID(p), err)
	}
	return impact, nil
}

func swapImpact(in swap.Input, p pools.Pool) (Impact, error) {
	q, err := swap.Compute(in, p)
	if err != nil {
		return Impact{}, err
	}
	if q.AmountOut.IsZero() {
		return Impact{}, nil
	}
	back, err := swap.Compute(swap.Input{
		ChainID:  q.ChainID,
		Kind:     swap.GivenIn,
		TokenIn:  in.TokenOut,
		TokenOut: in.TokenIn,
		Amount:   inputOf(q.AmountOut),
	}, p)
	if err != nil {
		return Impact{}, err
	}
	return roundTrip(q.AmountIn.Raw(), back.AmountOut.Raw())
}
