// Package stable implements Balancer legacy stable pools. Meta stable pools
// reuse this implementation over rate scaled balances.
package stable

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	calculator "github.com/defistate/balancer-sdk-go/protocols/stable/calculator"
	"github.com/ethereum/go-ethereum/common"
)

// MinimumBpt is locked forever by the Vault on pool initialisation.
var MinimumBpt = big.NewInt(1e6)

var (
	ErrBadAmp             = fmt.Errorf("%w: amplification out of range", pools.ErrInvalidRawPool)
	ErrAlreadyInitialized = fmt.Errorf("%w: pool already has shares", poolerrors.ErrInvalidInput)
	ErrExceedsBalance     = fmt.Errorf("%w: amount out exceeds pool balance", poolerrors.ErrInsufficientLiquidity)
)

// Pool is a parsed stable pool. Amp carries calculator.AmpPrecision.
type Pool struct {
	pools.Base
	amp *big.Int
}

// NewPool builds a stable pool from a raw record.
func NewPool(chainID uint64, raw pools.RawPool) (*Pool, error) {
	return New(chainID, raw, pools.TypeStable)
}

// New builds a stable math pool of type t. Options control rate scaling.
func New(chainID uint64, raw pools.RawPool, t pools.Type, opts ...pools.Option) (*Pool, error) {
	base, err := pools.NewBase(chainID, raw, t, opts...)
	if err != nil {
		return nil, err
	}
	// amp is given without precision, e.g. "200"
	amp, err := pools.ParseFixed("amp", raw.Amp, 3)
	if err != nil {
		return nil, err
	}
	minAmp := new(big.Int).Mul(calculator.MinAmp, calculator.AmpPrecision)
	maxAmp := new(big.Int).Mul(calculator.MaxAmp, calculator.AmpPrecision)
	if amp.Cmp(minAmp) < 0 || amp.Cmp(maxAmp) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBadAmp, raw.Amp)
	}
	return &Pool{Base: base, amp: amp}, nil
}

// Amp returns the amplification parameter including its precision.
func (p *Pool) Amp() *big.Int {
	return new(big.Int).Set(p.amp)
}

// state returns the upscaled balances and their invariant.
func (p *Pool) state(m *fixedpoint.Math) ([]*big.Int, *big.Int, error) {
	balances := p.UpscaledBalances(m)
	if err := m.Err(); err != nil {
		return nil, nil, err
	}
	invariant, err := calculator.CalculateInvariant(p.amp, balances)
	if err != nil {
		return nil, nil, err
	}
	return balances, invariant, nil
}

func (p *Pool) SpotPrice(tokenIn, tokenOut common.Address) (*big.Int, error) {
	in, out, err := p.Pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	var m fixedpoint.Math
	balances, invariant, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	scaled, err := calculator.SpotPrice(p.amp, balances, in, out, invariant)
	if err != nil {
		return nil, err
	}
	price := p.HumanPrice(&m, scaled, in, out)
	return price, m.Err()
}

func (p *Pool) Invariant(balances []*big.Int) (*big.Int, error) {
	if err := p.CheckAmounts(balances); err != nil {
		return nil, err
	}
	var m fixedpoint.Math
	upscaled := p.UpscaleAll(&m, balances)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return calculator.CalculateInvariant(p.amp, upscaled)
}

func (p *Pool) SwapGivenIn(tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error) {
	in, out, err := p.Pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if err := pools.CheckAmount(amountIn); err != nil {
		return nil, err
	}
	if amountIn.Sign() == 0 {
		return new(big.Int), nil
	}
	var m fixedpoint.Math
	balances, invariant, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	afterFee := m.Sub(amountIn, m.MulUp(amountIn, p.SwapFee()))
	upscaledIn := p.Upscale(&m, afterFee, in)
	if err := m.Err(); err != nil {
		return nil, err
	}
	amountOut, err := calculator.CalcOutGivenIn(p.amp, balances, in, out, upscaledIn, invariant)
	if err != nil {
		return nil, err
	}
	res := p.DownscaleDown(&m, amountOut, out)
	return res, m.Err()
}

func (p *Pool) SwapGivenOut(tokenIn, tokenOut common.Address, amountOut *big.Int) (*big.Int, error) {
	in, out, err := p.Pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if err := pools.CheckAmount(amountOut); err != nil {
		return nil, err
	}
	if amountOut.Sign() == 0 {
		return new(big.Int), nil
	}
	var m fixedpoint.Math
	balances, invariant, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	upscaledOut := p.Upscale(&m, amountOut, out)
	if err := m.Err(); err != nil {
		return nil, err
	}
	amountIn, err := calculator.CalcInGivenOut(p.amp, balances, in, out, upscaledOut, invariant)
	if err != nil {
		return nil, err
	}
	raw := p.DownscaleUp(&m, amountIn, in)
	res := m.DivUp(raw, m.Complement(p.SwapFee()))
	return res, m.Err()
}

func (p *Pool) AddLiquidityUnbalanced(amountsIn []*big.Int) (*big.Int, error) {
	if err := p.CheckAmounts(amountsIn); err != nil {
		return nil, err
	}
	if pools.AllZero(amountsIn) {
		return new(big.Int), nil
	}
	if p.TotalShares().Sign() == 0 {
		return nil, pools.ErrNotInitialized
	}
	var m fixedpoint.Math
	balances, invariant, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	upscaled := p.UpscaleAll(&m, amountsIn)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return calculator.CalcBptOutGivenExactTokensIn(p.amp, balances, upscaled, p.TotalShares(), invariant, p.SwapFee())
}

func (p *Pool) AddLiquiditySingleTokenExactOut(tokenIndex int, bptOut *big.Int) (*big.Int, error) {
	if err := p.CheckIndex(tokenIndex); err != nil {
		return nil, err
	}
	if err := pools.CheckAmount(bptOut); err != nil {
		return nil, err
	}
	if bptOut.Sign() == 0 {
		return new(big.Int), nil
	}
	var m fixedpoint.Math
	balances, invariant, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	amountIn, err := calculator.CalcTokenInGivenExactBptOut(p.amp, balances, tokenIndex, bptOut, p.TotalShares(), invariant, p.SwapFee())
	if err != nil {
		return nil, err
	}
	res := p.DownscaleUp(&m, amountIn, tokenIndex)
	return res, m.Err()
}

// AddLiquidityProportional is not offered: legacy stable pools have no
// all-tokens-in join kind.
func (p *Pool) AddLiquidityProportional(bptOut *big.Int) ([]*big.Int, error) {
	return nil, p.Unsupported("proportional joins")
}

// AddLiquidityInit returns the BPT credited to the caller when seeding an
// empty pool: the invariant less the minimum BPT the Vault locks.
func (p *Pool) AddLiquidityInit(amountsIn []*big.Int) (*big.Int, error) {
	if err := p.CheckAmounts(amountsIn); err != nil {
		return nil, err
	}
	if p.TotalShares().Sign() != 0 {
		return nil, ErrAlreadyInitialized
	}
	var m fixedpoint.Math
	upscaled := p.UpscaleAll(&m, amountsIn)
	if err := m.Err(); err != nil {
		return nil, err
	}
	invariant, err := calculator.CalculateInvariant(p.amp, upscaled)
	if err != nil {
		return nil, err
	}
	if invariant.Cmp(MinimumBpt) <= 0 {
		return nil, fmt.Errorf("%w: initial invariant below minimum bpt", poolerrors.ErrInsufficientLiquidity)
	}
	return invariant.Sub(invariant, MinimumBpt), nil
}

func (p *Pool) RemoveLiquiditySingleTokenExactIn(tokenIndex int, bptIn *big.Int) (*big.Int, error) {
	if err := p.CheckIndex(tokenIndex); err != nil {
		return nil, err
	}
	if err := pools.CheckAmount(bptIn); err != nil {
		return nil, err
	}
	if bptIn.Sign() == 0 {
		return new(big.Int), nil
	}
	if bptIn.Cmp(p.TotalShares()) > 0 {
		return nil, pools.ErrExceedsSupply
	}
	var m fixedpoint.Math
	balances, invariant, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	amountOut, err := calculator.CalcTokenOutGivenExactBptIn(p.amp, balances, tokenIndex, bptIn, p.TotalShares(), invariant, p.SwapFee())
	if err != nil {
		return nil, err
	}
	res := p.DownscaleDown(&m, amountOut, tokenIndex)
	return res, m.Err()
}

func (p *Pool) RemoveLiquiditySingleTokenExactOut(tokenIndex int, amountOut *big.Int) (*big.Int, error) {
	if err := p.CheckIndex(tokenIndex); err != nil {
		return nil, err
	}
	if err := pools.CheckAmount(amountOut); err != nil {
		return nil, err
	}
	amountsOut := pools.Zeros(p.Size())
	amountsOut[tokenIndex].Set(amountOut)
	return p.RemoveLiquidityUnbalanced(amountsOut)
}

func (p *Pool) RemoveLiquidityProportional(bptIn *big.Int) ([]*big.Int, error) {
	return p.ProportionalAmountsOut(bptIn)
}

func (p *Pool) RemoveLiquidityUnbalanced(amountsOut []*big.Int) (*big.Int, error) {
	if err := p.CheckAmounts(amountsOut); err != nil {
		return nil, err
	}
	if pools.AllZero(amountsOut) {
		return new(big.Int), nil
	}
	raw := p.Balances()
	for i, a := range amountsOut {
		if a.Cmp(raw[i]) >= 0 {
			return nil, fmt.Errorf("%w: token %d", ErrExceedsBalance, i)
		}
	}
	var m fixedpoint.Math
	balances, invariant, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	upscaled := p.UpscaleAll(&m, amountsOut)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return calculator.CalcBptInGivenExactTokensOut(p.amp, balances, upscaled, p.TotalShares(), invariant, p.SwapFee())
}

var _ pools.Pool = (*Pool)(nil)
