// Package stable implements the StableSwap invariant math used by stable and
// meta stable pools. The invariant and the balance solver are Newton
// iterations over plain integers, bounded to 255 rounds and considered
// converged once successive values are within 1 of each other.
package stable

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
)

const maxIterations = 255

var (
	one = fixedpoint.One

	// AmpPrecision is the scale of the amplification parameter.
	AmpPrecision = big.NewInt(1000)

	// MinAmp and MaxAmp bound the amplification parameter, before precision.
	MinAmp = big.NewInt(1)
	MaxAmp = big.NewInt(5000)

	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)

	ErrInvariantDidNotConverge = fmt.Errorf("%w: stable invariant did not converge", poolerrors.ErrMathOverflow)
	ErrBalanceDidNotConverge   = fmt.Errorf("%w: stable balance did not converge", poolerrors.ErrMathOverflow)
	ErrZeroInvariant           = fmt.Errorf("%w: invariant is zero", poolerrors.ErrDegenerateInput)
	ErrLengthMismatch          = errors.New("stable: balances and amounts differ in length")
	ErrOutExceedsBalance       = fmt.Errorf("%w: amount out exceeds balance", poolerrors.ErrInsufficientLiquidity)
)

func sum(m *fixedpoint.Math, xs []*big.Int) *big.Int {
	s := new(big.Int)
	for _, x := range xs {
		s = m.Add(s, x)
	}
	return s
}

// subFloor returns max(a - b, 0).
func subFloor(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}

func withinOne(a, b *big.Int) bool {
	d := new(big.Int).Sub(a, b)
	return d.CmpAbs(bigOne) <= 0
}

// CalculateInvariant solves for D given the amplification (with precision)
// and full precision balances. A pool with all-zero balances has invariant 0.
func CalculateInvariant(amp *big.Int, balances []*big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	s := sum(&m, balances)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if s.Sign() == 0 {
		return new(big.Int), nil
	}

	n := big.NewInt(int64(len(balances)))
	ampTimesTotal := m.Mul(amp, n)
	invariant := new(big.Int).Set(s)
	for i := 0; i < maxIterations; i++ {
		dP := new(big.Int).Set(invariant)
		for _, b := range balances {
			dP = m.DivFloor(m.Mul(dP, invariant), m.Mul(b, n))
		}
		prev := invariant
		numerator := m.Mul(
			m.Add(m.DivFloor(m.Mul(ampTimesTotal, s), AmpPrecision), m.Mul(dP, n)),
			invariant,
		)
		denominator := m.Add(
			m.DivFloor(m.Mul(m.Sub(ampTimesTotal, AmpPrecision), invariant), AmpPrecision),
			m.Mul(new(big.Int).Add(n, bigOne), dP),
		)
		invariant = m.DivFloor(numerator, denominator)
		if err := m.Err(); err != nil {
			return nil, err
		}
		if withinOne(invariant, prev) {
			return invariant, nil
		}
	}
	return nil, ErrInvariantDidNotConverge
}

// GetTokenBalanceGivenInvariantAndAllOtherBalances solves for the balance of
// the token at tokenIndex that keeps the invariant, holding the others fixed.
// The value of balances[tokenIndex] only enters the initial guess.
func GetTokenBalanceGivenInvariantAndAllOtherBalances(amp *big.Int, balances []*big.Int, invariant *big.Int, tokenIndex int) (*big.Int, error) {
	if invariant.Sign() == 0 {
		return nil, ErrZeroInvariant
	}
	var m fixedpoint.Math
	n := big.NewInt(int64(len(balances)))
	ampTimesTotal := m.Mul(amp, n)

	s := new(big.Int).Set(balances[0])
	pD := m.Mul(balances[0], n)
	for j := 1; j < len(balances); j++ {
		pD = m.DivFloor(m.Mul(m.Mul(pD, balances[j]), n), invariant)
		s = m.Add(s, balances[j])
	}
	s = m.Sub(s, balances[tokenIndex])

	inv2 := m.Mul(invariant, invariant)
	c := m.Mul(m.Mul(m.DivCeil(inv2, m.Mul(ampTimesTotal, pD)), AmpPrecision), balances[tokenIndex])
	b := m.Add(s, m.Mul(m.DivFloor(invariant, ampTimesTotal), AmpPrecision))

	tokenBalance := m.DivCeil(m.Add(inv2, c), m.Add(invariant, b))
	if err := m.Err(); err != nil {
		return nil, err
	}
	for i := 0; i < maxIterations; i++ {
		prev := tokenBalance
		tokenBalance = m.DivCeil(
			m.Add(m.Mul(tokenBalance, tokenBalance), c),
			m.Sub(m.Add(m.Mul(tokenBalance, bigTwo), b), invariant),
		)
		if err := m.Err(); err != nil {
			return nil, err
		}
		if withinOne(tokenBalance, prev) {
			return tokenBalance, nil
		}
	}
	return nil, ErrBalanceDidNotConverge
}

func replaced(balances []*big.Int, i int, v *big.Int) []*big.Int {
	out := make([]*big.Int, len(balances))
	copy(out, balances)
	out[i] = v
	return out
}

// CalcOutGivenIn returns the amount out for an exact amount in, fee already removed.
func CalcOutGivenIn(amp *big.Int, balances []*big.Int, in, out int, amountIn, invariant *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	withIn := replaced(balances, in, m.Add(balances[in], amountIn))
	if err := m.Err(); err != nil {
		return nil, err
	}
	finalOut, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp, withIn, invariant, out)
	if err != nil {
		return nil, err
	}
	// one unit less in favour of the pool
	finalOut = m.Add(finalOut, bigOne)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if finalOut.Cmp(balances[out]) > 0 {
		return nil, ErrOutExceedsBalance
	}
	return new(big.Int).Sub(balances[out], finalOut), nil
}

// CalcInGivenOut returns the amount in, before fees, for an exact amount out.
func CalcInGivenOut(amp *big.Int, balances []*big.Int, in, out int, amountOut, invariant *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balances[out]) >= 0 {
		return nil, ErrOutExceedsBalance
	}
	var m fixedpoint.Math
	withOut := replaced(balances, out, m.Sub(balances[out], amountOut))
	finalIn, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp, withOut, invariant, in)
	if err != nil {
		return nil, err
	}
	res := m.Add(m.Sub(finalIn, balances[in]), bigOne)
	return res, m.Err()
}

// CalcBptOutGivenExactTokensIn returns the BPT minted for an unbalanced
// deposit, charging the swap fee on the non-proportional part.
func CalcBptOutGivenExactTokensIn(amp *big.Int, balances, amountsIn []*big.Int, totalSupply, currentInvariant, swapFee *big.Int) (*big.Int, error) {
	if len(balances) != len(amountsIn) {
		return nil, ErrLengthMismatch
	}
	var m fixedpoint.Math
	sumBalances := sum(&m, balances)

	balanceRatiosWithFee := make([]*big.Int, len(balances))
	invariantRatioWithFees := new(big.Int)
	for i := range balances {
		currentWeight := m.DivDown(balances[i], sumBalances)
		balanceRatiosWithFee[i] = m.DivDown(m.Add(balances[i], amountsIn[i]), balances[i])
		invariantRatioWithFees = m.Add(invariantRatioWithFees, m.MulDown(balanceRatiosWithFee[i], currentWeight))
	}

	newBalances := make([]*big.Int, len(balances))
	for i := range balances {
		amountInWithoutFee := amountsIn[i]
		if balanceRatiosWithFee[i].Cmp(invariantRatioWithFees) > 0 {
			nonTaxable := m.MulDown(balances[i], subFloor(invariantRatioWithFees, one))
			taxable := subFloor(amountsIn[i], nonTaxable)
			amountInWithoutFee = m.Add(nonTaxable, m.MulDown(taxable, m.Complement(swapFee)))
		}
		newBalances[i] = m.Add(balances[i], amountInWithoutFee)
	}
	if err := m.Err(); err != nil {
		return nil, err
	}

	newInvariant, err := CalculateInvariant(amp, newBalances)
	if err != nil {
		return nil, err
	}
	invariantRatio := m.DivDown(newInvariant, currentInvariant)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if invariantRatio.Cmp(one) <= 0 {
		return new(big.Int), nil
	}
	res := m.MulDown(totalSupply, m.Sub(invariantRatio, one))
	return res, m.Err()
}

// CalcTokenInGivenExactBptOut returns the amount of one token needed to mint exactly bptOut.
func CalcTokenInGivenExactBptOut(amp *big.Int, balances []*big.Int, tokenIndex int, bptOut, totalSupply, currentInvariant, swapFee *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	newInvariant := m.MulUp(m.DivUp(m.Add(totalSupply, bptOut), totalSupply), currentInvariant)
	if err := m.Err(); err != nil {
		return nil, err
	}
	newBalance, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp, balances, newInvariant, tokenIndex)
	if err != nil {
		return nil, err
	}
	amountInWithoutFee := m.Sub(newBalance, balances[tokenIndex])

	currentWeight := m.DivDown(balances[tokenIndex], sum(&m, balances))
	taxable := m.MulUp(amountInWithoutFee, m.Complement(currentWeight))
	nonTaxable := m.Sub(amountInWithoutFee, taxable)
	res := m.Add(nonTaxable, m.DivUp(taxable, m.Complement(swapFee)))
	return res, m.Err()
}

// CalcBptInGivenExactTokensOut returns the BPT burned for an unbalanced withdrawal.
func CalcBptInGivenExactTokensOut(amp *big.Int, balances, amountsOut []*big.Int, totalSupply, currentInvariant, swapFee *big.Int) (*big.Int, error) {
	if len(balances) != len(amountsOut) {
		return nil, ErrLengthMismatch
	}
	var m fixedpoint.Math
	sumBalances := sum(&m, balances)

	balanceRatiosWithoutFee := make([]*big.Int, len(balances))
	invariantRatioWithoutFees := new(big.Int)
	for i := range balances {
		currentWeight := m.DivUp(balances[i], sumBalances)
		balanceRatiosWithoutFee[i] = m.DivUp(m.Sub(balances[i], amountsOut[i]), balances[i])
		invariantRatioWithoutFees = m.Add(invariantRatioWithoutFees, m.MulUp(balanceRatiosWithoutFee[i], currentWeight))
	}

	newBalances := make([]*big.Int, len(balances))
	for i := range balances {
		amountOutWithFee := amountsOut[i]
		if invariantRatioWithoutFees.Cmp(balanceRatiosWithoutFee[i]) > 0 {
			nonTaxable := m.MulDown(balances[i], m.Complement(invariantRatioWithoutFees))
			taxable := subFloor(amountsOut[i], nonTaxable)
			amountOutWithFee = m.Add(nonTaxable, m.DivUp(taxable, m.Complement(swapFee)))
		}
		newBalances[i] = m.Sub(balances[i], amountOutWithFee)
	}
	if err := m.Err(); err != nil {
		return nil, err
	}

	newInvariant, err := CalculateInvariant(amp, newBalances)
	if err != nil {
		return nil, err
	}
	invariantRatio := m.DivDown(newInvariant, currentInvariant)
	res := m.MulUp(totalSupply, m.Complement(invariantRatio))
	return res, m.Err()
}

// CalcTokenOutGivenExactBptIn returns the amount of one token released by burning exactly bptIn.
func CalcTokenOutGivenExactBptIn(amp *big.Int, balances []*big.Int, tokenIndex int, bptIn, totalSupply, currentInvariant, swapFee *big.Int) (*big.Int, error) {
	if bptIn.Cmp(totalSupply) >= 0 {
		return nil, fmt.Errorf("%w: cannot burn the whole supply into one token", poolerrors.ErrInsufficientLiquidity)
	}
	var m fixedpoint.Math
	newInvariant := m.MulUp(m.DivUp(m.Sub(totalSupply, bptIn), totalSupply), currentInvariant)
	if err := m.Err(); err != nil {
		return nil, err
	}
	newBalance, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp, balances, newInvariant, tokenIndex)
	if err != nil {
		return nil, err
	}
	if newBalance.Cmp(balances[tokenIndex]) >= 0 {
		return new(big.Int), nil
	}
	amountOutWithoutFee := m.Sub(balances[tokenIndex], newBalance)

	currentWeight := m.DivDown(balances[tokenIndex], sum(&m, balances))
	taxable := m.MulUp(amountOutWithoutFee, m.Complement(currentWeight))
	nonTaxable := m.Sub(amountOutWithoutFee, taxable)
	res := m.Add(nonTaxable, m.MulDown(taxable, m.Complement(swapFee)))
	return res, m.Err()
}

// SpotPrice returns the marginal amount of token in paid per unit of token
// out at the given balances and invariant, 18-decimal, fee excluded.
func SpotPrice(amp *big.Int, balances []*big.Int, in, out int, invariant *big.Int) (*big.Int, error) {
	var m fixedpoint.Math
	n := big.NewInt(int64(len(balances)))
	ampTimesTotal := m.Mul(amp, n)

	dP := new(big.Int).Set(invariant)
	for _, b := range balances {
		dP = m.DivFloor(m.Mul(dP, invariant), m.Mul(b, n))
	}
	scaledDP := m.Mul(dP, AmpPrecision)

	// x_in * (A x_out + D_P) / (x_out * (A x_in + D_P))
	numerator := new(big.Int).Mul(balances[in], m.Add(m.Mul(ampTimesTotal, balances[out]), scaledDP))
	denominator := new(big.Int).Mul(balances[out], m.Add(m.Mul(ampTimesTotal, balances[in]), scaledDP))
	if err := m.Err(); err != nil {
		return nil, err
	}
	price := m.MulDivDown(numerator, one, denominator)
	return price, m.Err()
}
