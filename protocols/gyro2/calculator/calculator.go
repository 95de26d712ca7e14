// Package gyro2 implements the math of two asset concentrated liquidity pools
// (Gyroscope 2-CLP). The pool behaves like a constant product pool over
// balances shifted by virtual offsets, which confines trading to the price
// range [alpha, beta].
package gyro2

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
)

var (
	one  = fixedpoint.One
	two  = fixedpoint.Two
	four = fixedpoint.Four

	// offsets are nudged one unit in the pool's favour during swaps
	onePlusTwo = big.NewInt(1e18 + 2)
	oneMinus   = big.NewInt(1e18 - 1)

	ErrAssetBoundsExceeded = fmt.Errorf("%w: amount out exceeds balance", poolerrors.ErrInsufficientLiquidity)
	ErrBadPriceRange       = fmt.Errorf("%w: need 0 < sqrtAlpha < sqrtBeta", poolerrors.ErrInvalidInput)
	ErrZeroInvariant       = fmt.Errorf("%w: invariant is zero", poolerrors.ErrDegenerateInput)
)

// ValidatePriceRange checks 0 < sqrtAlpha < sqrtBeta.
func ValidatePriceRange(sqrtAlpha, sqrtBeta *big.Int) error {
	if sqrtAlpha.Sign() <= 0 || sqrtAlpha.Cmp(sqrtBeta) >= 0 {
		return ErrBadPriceRange
	}
	return nil
}

// CalculateInvariant returns the liquidity L solving
// (1 - sqrtAlpha/sqrtBeta) L^2 - (x sqrtAlpha + y/sqrtBeta) L - x y = 0,
// rounded down.
func CalculateInvariant(x, y, sqrtAlpha, sqrtBeta *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	a := m.Sub(one, m.DivDown(sqrtAlpha, sqrtBeta))
	mb := m.Add(m.DivDown(y, sqrtBeta), m.MulDown(x, sqrtAlpha))
	mc := m.MulDown(x, y)

	bSquare := m.MulDown(m.MulDown(m.MulDown(x, x), sqrtAlpha), sqrtAlpha)
	bSquare = m.Add(bSquare, m.DivDown(m.MulDown(m.MulDown(mc, two), sqrtAlpha), sqrtBeta))
	bSquare = m.Add(bSquare, m.DivDown(m.MulDown(y, y), m.MulUp(sqrtBeta, sqrtBeta)))

	radicand := m.Add(bSquare, m.MulDown(m.MulDown(mc, four), a))
	numerator := m.Add(mb, m.Sqrt(radicand))
	invariant := m.DivDown(numerator, m.MulUp(a, two))
	if err := m.Err(); err != nil {
		return nil, err
	}
	return invariant, nil
}

// VirtualOffsets returns the offsets added to the x and y balances:
// L/sqrtBeta and L*sqrtAlpha.
func VirtualOffsets(invariant, sqrtAlpha, sqrtBeta *big.Int) (*big.Int, *big.Int, error) {
	var m fixedpoint.Math
	vx := m.DivDown(invariant, sqrtBeta)
	vy := m.MulDown(invariant, sqrtAlpha)
	if err := m.Err(); err != nil {
		return nil, nil, err
	}
	return vx, vy, nil
}

// CalcOutGivenIn returns the amount out for amountIn, fee already removed.
func CalcOutGivenIn(balanceIn, balanceOut, amountIn, virtualIn, virtualOut *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	virtInOver := m.Add(balanceIn, m.MulUp(virtualIn, onePlusTwo))
	virtOutUnder := m.Add(balanceOut, m.MulDown(virtualOut, oneMinus))
	amountOut := m.DivDown(m.MulDown(virtOutUnder, amountIn), m.Add(virtInOver, amountIn))
	if err := m.Err(); err != nil {
		return nil, err
	}
	if amountOut.Cmp(balanceOut) > 0 {
		return nil, ErrAssetBoundsExceeded
	}
	return amountOut, nil
}

// CalcInGivenOut returns the amount in, before fees, for amountOut.
func CalcInGivenOut(balanceIn, balanceOut, amountOut, virtualIn, virtualOut *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balanceOut) > 0 {
		return nil, ErrAssetBoundsExceeded
	}
	var m fixedpoint.Math
	virtInOver := m.Add(balanceIn, m.MulUp(virtualIn, onePlusTwo))
	virtOutUnder := m.Add(balanceOut, m.MulDown(virtualOut, oneMinus))
	amountIn := m.DivUp(m.MulUp(virtInOver, amountOut), m.Sub(virtOutUnder, amountOut))
	return amountIn, m.Err()
}

// SpotPrice returns (balanceIn + virtualIn) / (balanceOut + virtualOut).
func SpotPrice(balanceIn, balanceOut, virtualIn, virtualOut *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	price := m.DivDown(m.Add(balanceIn, virtualIn), m.Add(balanceOut, virtualOut))
	return price, m.Err()
}
