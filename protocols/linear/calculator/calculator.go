// Package linear implements the piecewise linear math of Balancer linear
// pools. Main token balances are converted to a nominal value that charges
// the swap fee outside the [lower, upper] target range; the invariant is the
// nominal main balance plus the wrapped balance. All values are upscaled.
package linear

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
)

var (
	one = fixedpoint.One

	ErrBadTargets = fmt.Errorf("%w: lower target above upper target", poolerrors.ErrInvalidInput)
	ErrNoSupply   = fmt.Errorf("%w: bpt supply is zero", poolerrors.ErrDegenerateInput)

	ErrBptInExceedsSupply = fmt.Errorf("%w: bpt in exceeds supply", poolerrors.ErrInsufficientLiquidity)
	ErrMainExhausted      = fmt.Errorf("%w: swap drains the main balance", poolerrors.ErrInsufficientLiquidity)
	ErrWrappedExhausted   = fmt.Errorf("%w: swap drains the wrapped balance", poolerrors.ErrInsufficientLiquidity)
)

// Params are the fee and targets of a linear pool, 18-decimal.
type Params struct {
	Fee         *big.Int
	LowerTarget *big.Int
	UpperTarget *big.Int
}

// Validate checks the target ordering.
func (p Params) Validate() error {
	if p.LowerTarget.Cmp(p.UpperTarget) > 0 {
		return ErrBadTargets
	}
	return nil
}

// toNominal maps a real main balance to its nominal value. Fees round down.
func toNominal(m *fixedpoint.Math, real *big.Int, p Params) *big.Int {
	switch {
	case real.Cmp(p.LowerTarget) < 0:
		fees := m.MulDown(m.Sub(p.LowerTarget, real), p.Fee)
		return m.Sub(real, fees)
	case real.Cmp(p.UpperTarget) <= 0:
		return new(big.Int).Set(real)
	default:
		fees := m.MulDown(m.Sub(real, p.UpperTarget), p.Fee)
		return m.Sub(real, fees)
	}
}

// fromNominal is the inverse of toNominal, rounding the real value down.
func fromNominal(m *fixedpoint.Math, nominal *big.Int, p Params) *big.Int {
	switch {
	case nominal.Cmp(p.LowerTarget) < 0:
		return m.DivDown(m.Add(nominal, m.MulDown(p.Fee, p.LowerTarget)), m.Add(one, p.Fee))
	case nominal.Cmp(p.UpperTarget) <= 0:
		return new(big.Int).Set(nominal)
	default:
		return m.DivDown(m.Sub(nominal, m.MulDown(p.Fee, p.UpperTarget)), m.Sub(one, p.Fee))
	}
}

func result(m *fixedpoint.Math, x *big.Int) (*big.Int, error) {
	if err := m.Err(); err != nil {
		return nil, err
	}
	return x, nil
}

// CalculateInvariant returns nominal(main) + wrapped.
func CalculateInvariant(mainBalance, wrappedBalance *big.Int, p Params) (*big.Int, error) {
	var m fixedpoint.Math
	return result(&m, m.Add(toNominal(&m, mainBalance, p), wrappedBalance))
}

// MainMarginalValue is the nominal value of one unit of main token at the
// given balance: 1+fee below the lower target, 1-fee above the upper target.
func MainMarginalValue(mainBalance *big.Int, p Params) *big.Int {
	switch {
	case mainBalance.Cmp(p.LowerTarget) < 0:
		return new(big.Int).Add(one, p.Fee)
	case mainBalance.Cmp(p.UpperTarget) <= 0:
		return new(big.Int).Set(one)
	default:
		return new(big.Int).Sub(one, p.Fee)
	}
}

// BptMarginalValue is the nominal value of one BPT: invariant / supply.
func BptMarginalValue(mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return new(big.Int).Set(one), nil
	}
	var m fixedpoint.Math
	invariant := m.Add(toNominal(&m, mainBalance, p), wrappedBalance)
	return result(&m, m.DivDown(invariant, bptSupply))
}

func CalcBptOutPerMainIn(mainIn, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	var m fixedpoint.Math
	if bptSupply.Sign() == 0 {
		return result(&m, toNominal(&m, mainIn, p))
	}
	previousNominalMain := toNominal(&m, mainBalance, p)
	afterNominalMain := toNominal(&m, m.Add(mainBalance, mainIn), p)
	deltaNominalMain := m.Sub(afterNominalMain, previousNominalMain)
	invariant := m.Add(previousNominalMain, wrappedBalance)
	return result(&m, m.DivFloor(m.Mul(bptSupply, deltaNominalMain), invariant))
}

func CalcBptInPerMainOut(mainOut, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return nil, ErrNoSupply
	}
	if mainOut.Cmp(mainBalance) > 0 {
		return nil, ErrMainExhausted
	}
	var m fixedpoint.Math
	previousNominalMain := toNominal(&m, mainBalance, p)
	afterNominalMain := toNominal(&m, m.Sub(mainBalance, mainOut), p)
	deltaNominalMain := m.Sub(previousNominalMain, afterNominalMain)
	invariant := m.Add(previousNominalMain, wrappedBalance)
	return result(&m, m.DivCeil(m.Mul(bptSupply, deltaNominalMain), invariant))
}

func CalcWrappedOutPerMainIn(mainIn, mainBalance *big.Int, p Params) (*big.Int, error) {
	var m fixedpoint.Math
	previousNominalMain := toNominal(&m, mainBalance, p)
	afterNominalMain := toNominal(&m, m.Add(mainBalance, mainIn), p)
	return result(&m, m.Sub(afterNominalMain, previousNominalMain))
}

func CalcWrappedInPerMainOut(mainOut, mainBalance *big.Int, p Params) (*big.Int, error) {
	if mainOut.Cmp(mainBalance) > 0 {
		return nil, ErrMainExhausted
	}
	var m fixedpoint.Math
	previousNominalMain := toNominal(&m, mainBalance, p)
	afterNominalMain := toNominal(&m, m.Sub(mainBalance, mainOut), p)
	return result(&m, m.Sub(previousNominalMain, afterNominalMain))
}

func CalcMainInPerBptOut(bptOut, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	var m fixedpoint.Math
	if bptSupply.Sign() == 0 {
		return result(&m, fromNominal(&m, bptOut, p))
	}
	previousNominalMain := toNominal(&m, mainBalance, p)
	invariant := m.Add(previousNominalMain, wrappedBalance)
	deltaNominalMain := m.DivCeil(m.Mul(invariant, bptOut), bptSupply)
	afterNominalMain := m.Add(previousNominalMain, deltaNominalMain)
	newMainBalance := fromNominal(&m, afterNominalMain, p)
	return result(&m, m.Sub(newMainBalance, mainBalance))
}

func CalcMainOutPerBptIn(bptIn, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return nil, ErrNoSupply
	}
	if bptIn.Cmp(bptSupply) > 0 {
		return nil, ErrBptInExceedsSupply
	}
	var m fixedpoint.Math
	previousNominalMain := toNominal(&m, mainBalance, p)
	invariant := m.Add(previousNominalMain, wrappedBalance)
	deltaNominalMain := m.DivFloor(m.Mul(invariant, bptIn), bptSupply)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if deltaNominalMain.Cmp(previousNominalMain) > 0 {
		return nil, ErrMainExhausted
	}
	afterNominalMain := m.Sub(previousNominalMain, deltaNominalMain)
	newMainBalance := fromNominal(&m, afterNominalMain, p)
	return result(&m, m.Sub(mainBalance, newMainBalance))
}

func CalcMainOutPerWrappedIn(wrappedIn, mainBalance *big.Int, p Params) (*big.Int, error) {
	var m fixedpoint.Math
	previousNominalMain := toNominal(&m, mainBalance, p)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if wrappedIn.Cmp(previousNominalMain) > 0 {
		return nil, ErrMainExhausted
	}
	afterNominalMain := m.Sub(previousNominalMain, wrappedIn)
	newMainBalance := fromNominal(&m, afterNominalMain, p)
	return result(&m, m.Sub(mainBalance, newMainBalance))
}

func CalcMainInPerWrappedOut(wrappedOut, mainBalance *big.Int, p Params) (*big.Int, error) {
	var m fixedpoint.Math
	previousNominalMain := toNominal(&m, mainBalance, p)
	afterNominalMain := m.Add(previousNominalMain, wrappedOut)
	newMainBalance := fromNominal(&m, afterNominalMain, p)
	return result(&m, m.Sub(newMainBalance, mainBalance))
}

func CalcBptOutPerWrappedIn(wrappedIn, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	var m fixedpoint.Math
	if bptSupply.Sign() == 0 {
		return new(big.Int).Set(wrappedIn), nil
	}
	nominalMain := toNominal(&m, mainBalance, p)
	previousInvariant := m.Add(nominalMain, wrappedBalance)
	newInvariant := m.Add(nominalMain, m.Add(wrappedBalance, wrappedIn))
	newBptBalance := m.DivFloor(m.Mul(bptSupply, newInvariant), previousInvariant)
	return result(&m, m.Sub(newBptBalance, bptSupply))
}

func CalcBptInPerWrappedOut(wrappedOut, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return nil, ErrNoSupply
	}
	if wrappedOut.Cmp(wrappedBalance) > 0 {
		return nil, ErrWrappedExhausted
	}
	var m fixedpoint.Math
	nominalMain := toNominal(&m, mainBalance, p)
	previousInvariant := m.Add(nominalMain, wrappedBalance)
	newInvariant := m.Add(nominalMain, m.Sub(wrappedBalance, wrappedOut))
	newBptBalance := m.DivFloor(m.Mul(bptSupply, newInvariant), previousInvariant)
	return result(&m, m.Sub(bptSupply, newBptBalance))
}

func CalcWrappedInPerBptOut(bptOut, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return new(big.Int).Set(bptOut), nil
	}
	var m fixedpoint.Math
	nominalMain := toNominal(&m, mainBalance, p)
	previousInvariant := m.Add(nominalMain, wrappedBalance)
	newBptBalance := m.Add(bptSupply, bptOut)
	newInvariant := m.DivCeil(m.Mul(newBptBalance, previousInvariant), bptSupply)
	newWrappedBalance := m.Sub(newInvariant, nominalMain)
	return result(&m, m.Sub(newWrappedBalance, wrappedBalance))
}

func CalcWrappedOutPerBptIn(bptIn, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return nil, ErrNoSupply
	}
	if bptIn.Cmp(bptSupply) > 0 {
		return nil, ErrBptInExceedsSupply
	}
	var m fixedpoint.Math
	nominalMain := toNominal(&m, mainBalance, p)
	previousInvariant := m.Add(nominalMain, wrappedBalance)
	newBptBalance := m.Sub(bptSupply, bptIn)
	newInvariant := m.DivCeil(m.Mul(newBptBalance, previousInvariant), bptSupply)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if newInvariant.Cmp(nominalMain) < 0 {
		return nil, ErrWrappedExhausted
	}
	newWrappedBalance := m.Sub(newInvariant, nominalMain)
	return result(&m, m.Sub(wrappedBalance, newWrappedBalance))
}
