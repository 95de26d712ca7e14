// Package gyro2 implements Gyroscope two asset concentrated liquidity pools.
package gyro2

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/pools"
	calculator "github.com/defistate/balancer-sdk-go/protocols/gyro2/calculator"
	"github.com/ethereum/go-ethereum/common"
)

// Pool is a parsed 2-CLP pool. Only proportional joins and exits exist.
type Pool struct {
	pools.Base
	sqrtAlpha *big.Int
	sqrtBeta  *big.Int
}

// NewPool builds a 2-CLP pool from a raw record.
func NewPool(chainID uint64, raw pools.RawPool) (*Pool, error) {
	if len(raw.Tokens) != 2 {
		return nil, fmt.Errorf("%w: gyro2 pool has %d tokens", pools.ErrInvalidRawPool, len(raw.Tokens))
	}
	base, err := pools.NewBase(chainID, raw, pools.TypeGyro2)
	if err != nil {
		return nil, err
	}
	sqrtAlpha, err := pools.ParseFixed("sqrtAlpha", raw.SqrtAlpha, 18)
	if err != nil {
		return nil, err
	}
	sqrtBeta, err := pools.ParseFixed("sqrtBeta", raw.SqrtBeta, 18)
	if err != nil {
		return nil, err
	}
	if err := calculator.ValidatePriceRange(sqrtAlpha, sqrtBeta); err != nil {
		return nil, fmt.Errorf("%w: %v", pools.ErrInvalidRawPool, err)
	}
	return &Pool{Base: base, sqrtAlpha: sqrtAlpha, sqrtBeta: sqrtBeta}, nil
}

// PriceRange returns sqrt(alpha) and sqrt(beta).
func (p *Pool) PriceRange() (*big.Int, *big.Int) {
	return new(big.Int).Set(p.sqrtAlpha), new(big.Int).Set(p.sqrtBeta)
}

// state returns the upscaled balances and the virtual offset of each token.
func (p *Pool) state(m *fixedpoint.Math) ([]*big.Int, []*big.Int, error) {
	balances := p.UpscaledBalances(m)
	if err := m.Err(); err != nil {
		return nil, nil, err
	}
	invariant, err := calculator.CalculateInvariant(balances[0], balances[1], p.sqrtAlpha, p.sqrtBeta)
	if err != nil {
		return nil, nil, err
	}
	if invariant.Sign() == 0 {
		return nil, nil, calculator.ErrZeroInvariant
	}
	vx, vy, err := calculator.VirtualOffsets(invariant, p.sqrtAlpha, p.sqrtBeta)
	if err != nil {
		return nil, nil, err
	}
	return balances, []*big.Int{vx, vy}, nil
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
	return calculator.CalculateInvariant(upscaled[0], upscaled[1], p.sqrtAlpha, p.sqrtBeta)
}

func (p *Pool) SpotPrice(tokenIn, tokenOut common.Address) (*big.Int, error) {
	in, out, err := p.Pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	var m fixedpoint.Math
	balances, offsets, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	scaled, err := calculator.SpotPrice(balances[in], balances[out], offsets[in], offsets[out])
	if err != nil {
		return nil, err
	}
	price := p.HumanPrice(&m, scaled, in, out)
	return price, m.Err()
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
	balances, offsets, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	afterFee := m.Sub(amountIn, m.MulUp(amountIn, p.SwapFee()))
	upscaledIn := p.Upscale(&m, afterFee, in)
	if err := m.Err(); err != nil {
		return nil, err
	}
	amountOut, err := calculator.CalcOutGivenIn(balances[in], balances[out], upscaledIn, offsets[in], offsets[out])
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
	balances, offsets, err := p.state(&m)
	if err != nil {
		return nil, err
	}
	upscaledOut := p.Upscale(&m, amountOut, out)
	if err := m.Err(); err != nil {
		return nil, err
	}
	amountIn, err := calculator.CalcInGivenOut(balances[in], balances[out], upscaledOut, offsets[in], offsets[out])
	if err != nil {
		return nil, err
	}
	raw := p.DownscaleUp(&m, amountIn, in)
	res := m.DivUp(raw, m.Complement(p.SwapFee()))
	return res, m.Err()
}

func (p *Pool) AddLiquidityProportional(bptOut *big.Int) ([]*big.Int, error) {
	return p.ProportionalAmountsIn(bptOut)
}

func (p *Pool) RemoveLiquidityProportional(bptIn *big.Int) ([]*big.Int, error) {
	return p.ProportionalAmountsOut(bptIn)
}

func (p *Pool) AddLiquidityUnbalanced([]*big.Int) (*big.Int, error) {
	return nil, p.Unsupported("unbalanced joins")
}

func (p *Pool) AddLiquiditySingleTokenExactOut(int, *big.Int) (*big.Int, error) {
	return nil, p.Unsupported("single token joins")
}

func (p *Pool) AddLiquidityInit([]*big.Int) (*big.Int, error) {
	return nil, p.Unsupported("initialisation")
}

func (p *Pool) RemoveLiquiditySingleTokenExactIn(int, *big.Int) (*big.Int, error) {
	return nil, p.Unsupported("single token exits")
}

func (p *Pool) RemoveLiquiditySingleTokenExactOut(int, *big.Int) (*big.Int, error) {
	return nil, p.Unsupported("single token exits")
}

func (p *Pool) RemoveLiquidityUnbalanced([]*big.Int) (*big.Int, error) {
	return nil, p.Unsupported("unbalanced exits")
}

var _ pools.Pool = (*Pool)(nil)
