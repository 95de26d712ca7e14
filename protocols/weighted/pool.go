// Package weighted implements Balancer weighted pools (including investment and
// liquidity bootstrapping pools, which share the math).
package weighted

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	calculator "github.com/defistate/balancer-sdk-go/protocols/weighted/calculator"
	"github.com/ethereum/go-ethereum/common"
)

// MinimumBpt is locked forever by the Vault on pool initialisation.
var MinimumBpt = big.NewInt(1e6)

var (
	ErrWeightsSum          = fmt.Errorf("%w: weights do not sum to 1", pools.ErrInvalidRawPool)
	ErrAlreadyInitialized  = fmt.Errorf("%w: pool already has shares", poolerrors.ErrInvalidInput)
	ErrInitBelowMinimumBpt = fmt.Errorf("%w: initial invariant below minimum bpt", poolerrors.ErrInsufficientLiquidity)
	ErrExceedsBalance      = fmt.Errorf("%w: amount out exceeds pool balance", poolerrors.ErrInsufficientLiquidity)
)

// Pool is a parsed weighted pool.
type Pool struct {
	pools.Base
	weights []*big.Int
}

// IsWeighted reports whether a raw pool type string belongs to the weighted family.
func IsWeighted(poolType string) bool {
	switch poolType {
	case "Weighted", "Investment", "LiquidityBootstrapping":
		return true
	}
	return false
}

// NewPool builds a weighted pool from a raw record.
func NewPool(chainID uint64, raw pools.RawPool) (*Pool, error) {
	base, err := pools.NewBase(chainID, raw, pools.TypeWeighted, pools.WithWeights())
	if err != nil {
		return nil, err
	}
	tokens := base.Tokens()
	weights := make([]*big.Int, len(tokens))
	sum := new(big.Int)
	for i, t := range tokens {
		weights[i] = t.Weight
		sum.Add(sum, t.Weight)
	}
	if sum.Cmp(fixedpoint.One) != 0 {
		return nil, fmt.Errorf("%w: got %s", ErrWeightsSum, sum)
	}
	return &Pool{Base: base, weights: weights}, nil
}

// Weights returns the normalised weights in pool order.
func (p *Pool) Weights() []*big.Int {
	return pools.CloneAll(p.weights)
}

func (p *Pool) SpotPrice(tokenIn, tokenOut common.Address) (*big.Int, error) {
	in, out, err := p.Pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	var m fixedpoint.Math
	balances := p.UpscaledBalances(&m)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return calculator.SpotPrice(balances[in], p.weights[in], balances[out], p.weights[out])
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
	return calculator.CalculateInvariant(p.weights, upscaled)
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
	afterFee := m.Sub(amountIn, m.MulUp(amountIn, p.SwapFee()))
	balances := p.UpscaledBalances(&m)
	upscaledIn := p.Upscale(&m, afterFee, in)
	if err := m.Err(); err != nil {
		return nil, err
	}
	amountOut, err := calculator.CalcOutGivenIn(balances[in], p.weights[in], balances[out], p.weights[out], upscaledIn)
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
	balances := p.UpscaledBalances(&m)
	upscaledOut := p.Upscale(&m, amountOut, out)
	if err := m.Err(); err != nil {
		return nil, err
	}
	amountIn, err := calculator.CalcInGivenOut(balances[in], p.weights[in], balances[out], p.weights[out], upscaledOut)
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
	balances := p.UpscaledBalances(&m)
	upscaled := p.UpscaleAll(&m, amountsIn)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return calculator.CalcBptOutGivenExactTokensIn(balances, p.weights, upscaled, p.TotalShares(), p.SwapFee())
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
	balances := p.UpscaledBalances(&m)
	if err := m.Err(); err != nil {
		return nil, err
	}
	amountIn, err := calculator.CalcTokenInGivenExactBptOut(balances[tokenIndex], p.weights[tokenIndex], bptOut, p.TotalShares(), p.SwapFee())
	if err != nil {
		return nil, err
	}
	res := p.DownscaleUp(&m, amountIn, tokenIndex)
	return res, m.Err()
}

func (p *Pool) AddLiquidityProportional(bptOut *big.Int) ([]*big.Int, error) {
	return p.ProportionalAmountsIn(bptOut)
}

// AddLiquidityInit returns the BPT credited to the caller when seeding an
// empty pool: invariant * n, less the minimum BPT the Vault locks.
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
	invariant, err := calculator.CalculateInvariant(p.weights, upscaled)
	if err != nil {
		return nil, err
	}
	bptOut := m.Mul(invariant, big.NewInt(int64(p.Size())))
	if err := m.Err(); err != nil {
		return nil, err
	}
	if bptOut.Cmp(MinimumBpt) <= 0 {
		return nil, ErrInitBelowMinimumBpt
	}
	return bptOut.Sub(bptOut, MinimumBpt), nil
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
	balances := p.UpscaledBalances(&m)
	if err := m.Err(); err != nil {
		return nil, err
	}
	amountOut, err := calculator.CalcTokenOutGivenExactBptIn(balances[tokenIndex], p.weights[tokenIndex], bptIn, p.TotalShares(), p.SwapFee())
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
	balances := p.UpscaledBalances(&m)
	upscaled := p.UpscaleAll(&m, amountsOut)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return calculator.CalcBptInGivenExactTokensOut(balances, p.weights, upscaled, p.TotalShares(), p.SwapFee())
}

var _ pools.Pool = (*Pool)(nil)
