// Package weighted implements the weighted product invariant math on 18-decimal
// full precision values. Rounding always favours the pool.
package weighted

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
)

var (
	one = fixedpoint.One

	// swaps may not move more than 30% of a balance
	maxInRatio  = big.NewInt(3e17)
	maxOutRatio = big.NewInt(3e17)

	// single token joins and exits may not move the invariant outside [0.7, 3]
	maxInvariantRatio = big.NewInt(3e18)
	minInvariantRatio = big.NewInt(7e17)

	ErrMaxInRatio        = fmt.Errorf("%w: amount in exceeds 30%% of balance", poolerrors.ErrInsufficientLiquidity)
	ErrMaxOutRatio       = fmt.Errorf("%w: amount out exceeds 30%% of balance", poolerrors.ErrInsufficientLiquidity)
	ErrMaxInvariantRatio = fmt.Errorf("%w: invariant ratio above maximum", poolerrors.ErrInsufficientLiquidity)
	ErrMinInvariantRatio = fmt.Errorf("%w: invariant ratio below minimum", poolerrors.ErrInsufficientLiquidity)
	ErrZeroInvariant     = fmt.Errorf("%w: invariant is zero", poolerrors.ErrDegenerateInput)
	ErrLengthMismatch    = errors.New("weighted: balances, weights and amounts differ in length")
)

// CalculateInvariant returns prod(balance_i ^ weight_i), rounded down.
func CalculateInvariant(weights, balances []*big.Int) (*big.Int, error) {
	if len(weights) != len(balances) {
		return nil, ErrLengthMismatch
	}
	var m fixedpoint.Math
	invariant := new(big.Int).Set(one)
	for i := range balances {
		invariant = m.MulDown(invariant, m.PowDown(balances[i], weights[i]))
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	if invariant.Sign() == 0 {
		return nil, ErrZeroInvariant
	}
	return invariant, nil
}

// CalcOutGivenIn returns the amount of tokenOut received for amountIn of
// tokenIn. amountIn must already exclude the swap fee.
func CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	if amountIn.Cmp(m.MulDown(balanceIn, maxInRatio)) > 0 {
		return nil, ErrMaxInRatio
	}
	denominator := m.Add(balanceIn, amountIn)
	base := m.DivUp(balanceIn, denominator)
	exponent := m.DivDown(weightIn, weightOut)
	power := m.PowUp(base, exponent)
	out := m.MulDown(balanceOut, m.Complement(power))
	if err := m.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CalcInGivenOut returns the amount of tokenIn, before fees, required to
// receive amountOut of tokenOut.
func CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	if amountOut.Cmp(m.MulDown(balanceOut, maxOutRatio)) > 0 {
		return nil, ErrMaxOutRatio
	}
	base := m.DivUp(balanceOut, m.Sub(balanceOut, amountOut))
	exponent := m.DivUp(weightOut, weightIn)
	power := m.PowUp(base, exponent)
	in := m.MulUp(balanceIn, m.Sub(power, one))
	if err := m.Err(); err != nil {
		return nil, err
	}
	return in, nil
}

// CalcBptOutGivenExactTokensIn returns the BPT minted for an unbalanced
// deposit. Only the part of each amount above the proportional share pays the swap fee.
func CalcBptOutGivenExactTokensIn(balances, weights, amountsIn []*big.Int, totalSupply, swapFee *big.Int) (*big.Int, error) {
	if len(balances) != len(weights) || len(balances) != len(amountsIn) {
		return nil, ErrLengthMismatch
	}
	var m fixedpoint.Math

	balanceRatiosWithFee := make([]*big.Int, len(amountsIn))
	invariantRatioWithFees := new(big.Int)
	for i := range balances {
		balanceRatiosWithFee[i] = m.DivDown(m.Add(balances[i], amountsIn[i]), balances[i])
		invariantRatioWithFees = m.Add(invariantRatioWithFees, m.MulDown(balanceRatiosWithFee[i], weights[i]))
	}

	invariantRatio := new(big.Int).Set(one)
	for i := range balances {
		amountInWithoutFee := amountsIn[i]
		if balanceRatiosWithFee[i].Cmp(invariantRatioWithFees) > 0 {
			nonTaxable := m.MulDown(balances[i], m.Sub(invariantRatioWithFees, one))
			taxable := m.Sub(amountsIn[i], nonTaxable)
			amountInWithoutFee = m.Add(nonTaxable, m.MulDown(taxable, m.Complement(swapFee)))
		}
		balanceRatio := m.DivDown(m.Add(balances[i], amountInWithoutFee), balances[i])
		invariantRatio = m.MulDown(invariantRatio, m.PowDown(balanceRatio, weights[i]))
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	if invariantRatio.Cmp(maxInvariantRatio) > 0 {
		return nil, ErrMaxInvariantRatio
	}
	if invariantRatio.Cmp(one) <= 0 {
		return new(big.Int), nil
	}
	out := m.MulDown(totalSupply, m.Sub(invariantRatio, one))
	return out, m.Err()
}

// CalcTokenInGivenExactBptOut returns the amount of one token needed to mint
// exactly bptOut.
func CalcTokenInGivenExactBptOut(balance, weight, bptOut, totalSupply, swapFee *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	invariantRatio := m.DivUp(m.Add(totalSupply, bptOut), totalSupply)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if invariantRatio.Cmp(maxInvariantRatio) > 0 {
		return nil, ErrMaxInvariantRatio
	}
	balanceRatio := m.PowUp(invariantRatio, m.DivUp(one, weight))
	amountInWithoutFee := m.MulUp(balance, m.Sub(balanceRatio, one))

	taxable := m.MulUp(amountInWithoutFee, m.Complement(weight))
	nonTaxable := m.Sub(amountInWithoutFee, taxable)
	taxablePlusFees := m.DivUp(taxable, m.Complement(swapFee))
	in := m.Add(nonTaxable, taxablePlusFees)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return in, nil
}

// CalcBptInGivenExactTokensOut returns the BPT burned for an unbalanced withdrawal.
func CalcBptInGivenExactTokensOut(balances, weights, amountsOut []*big.Int, totalSupply, swapFee *big.Int) (*big.Int, error) {
	if len(balances) != len(weights) || len(balances) != len(amountsOut) {
		return nil, ErrLengthMismatch
	}
	var m fixedpoint.Math

	balanceRatiosWithoutFee := make([]*big.Int, len(amountsOut))
	invariantRatioWithoutFees := new(big.Int)
	for i := range balances {
		balanceRatiosWithoutFee[i] = m.DivUp(m.Sub(balances[i], amountsOut[i]), balances[i])
		invariantRatioWithoutFees = m.Add(invariantRatioWithoutFees, m.MulUp(balanceRatiosWithoutFee[i], weights[i]))
	}

	invariantRatio := new(big.Int).Set(one)
	for i := range balances {
		amountOutWithFee := amountsOut[i]
		if invariantRatioWithoutFees.Cmp(balanceRatiosWithoutFee[i]) > 0 {
			nonTaxable := m.MulDown(balances[i], m.Complement(invariantRatioWithoutFees))
			taxable := m.Sub(amountsOut[i], nonTaxable)
			amountOutWithFee = m.Add(nonTaxable, m.DivUp(taxable, m.Complement(swapFee)))
		}
		balanceRatio := m.DivDown(m.Sub(balances[i], amountOutWithFee), balances[i])
		invariantRatio = m.MulDown(invariantRatio, m.PowDown(balanceRatio, weights[i]))
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	if invariantRatio.Cmp(minInvariantRatio) < 0 {
		return nil, ErrMinInvariantRatio
	}
	in := m.MulUp(totalSupply, m.Complement(invariantRatio))
	return in, m.Err()
}

// CalcTokenOutGivenExactBptIn returns the amount of one token released by
// burning exactly bptIn.
func CalcTokenOutGivenExactBptIn(balance, weight, bptIn, totalSupply, swapFee *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	invariantRatio := m.DivUp(m.Sub(totalSupply, bptIn), totalSupply)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if invariantRatio.Cmp(minInvariantRatio) < 0 {
		return nil, ErrMinInvariantRatio
	}
	balanceRatio := m.PowUp(invariantRatio, m.DivDown(one, weight))
	amountOutWithoutFee := m.MulDown(balance, m.Complement(balanceRatio))

	taxable := m.MulUp(amountOutWithoutFee, m.Complement(weight))
	nonTaxable := m.Sub(amountOutWithoutFee, taxable)
	out := m.Add(nonTaxable, m.MulDown(taxable, m.Complement(swapFee)))
	if err := m.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SpotPrice returns (balanceIn / weightIn) / (balanceOut / weightOut).
func SpotPrice(balanceIn, weightIn, balanceOut, weightOut *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	numerator := m.DivDown(balanceIn, weightIn)
	denominator := m.DivDown(balanceOut, weightOut)
	price := m.DivDown(numerator, denominator)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return price, nil
}
