// Package linear implements Balancer linear pools. A linear pool holds a main
// token, a yield bearing wrapped version of it and its own preminted BPT, and
// trades between all three; it has no joins or exits of its own.
package linear

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	calculator "github.com/defistate/balancer-sdk-go/protocols/linear/calculator"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrBadRoles       = fmt.Errorf("%w: main, wrapped and bpt tokens must be distinct pool tokens", pools.ErrInvalidRawPool)
	ErrExceedsBalance = fmt.Errorf("%w: amount out exceeds pool balance", poolerrors.ErrInsufficientLiquidity)
)

type role int

const (
	roleMain role = iota
	roleWrapped
	roleBpt
)

// IsLinear reports whether poolType names a linear pool flavour, such as
// AaveLinear or ERC4626Linear.
func IsLinear(poolType string) bool {
	return strings.HasSuffix(poolType, "Linear")
}

// Pool is a parsed linear pool. The BPT supply used by the math is the
// pool's total shares, not its preminted balance.
type Pool struct {
	pools.Base
	mainIndex    int
	wrappedIndex int
	bptIndex     int
	params       calculator.Params
}

// NewPool builds a linear pool from a raw record. The wrapped token's price
// rate is folded into its scaling factor.
func NewPool(chainID uint64, raw pools.RawPool) (*Pool, error) {
	if len(raw.Tokens) != 3 {
		return nil, fmt.Errorf("%w: linear pool has %d tokens", pools.ErrInvalidRawPool, len(raw.Tokens))
	}
	base, err := pools.NewBase(chainID, raw, pools.TypeLinear, pools.WithPriceRateAt(raw.WrappedIndex))
	if err != nil {
		return nil, err
	}
	bptIndex, err := base.TokenIndex(raw.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: bpt missing from tokens", ErrBadRoles)
	}
	if base.CheckIndex(raw.MainIndex) != nil || base.CheckIndex(raw.WrappedIndex) != nil ||
		raw.MainIndex == raw.WrappedIndex || raw.MainIndex == bptIndex || raw.WrappedIndex == bptIndex {
		return nil, ErrBadRoles
	}

	lower, err := pools.ParseFixedOr("lowerTarget", raw.LowerTarget, 18, new(big.Int))
	if err != nil {
		return nil, err
	}
	upper, err := pools.ParseFixed("upperTarget", raw.UpperTarget, 18)
	if err != nil {
		return nil, err
	}
	params := calculator.Params{Fee: base.SwapFee(), LowerTarget: lower, UpperTarget: upper}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Pool{
		Base:         base,
		mainIndex:    raw.MainIndex,
		wrappedIndex: raw.WrappedIndex,
		bptIndex:     bptIndex,
		params:       params,
	}, nil
}

func (p *Pool) MainIndex() int    { return p.mainIndex }
func (p *Pool) WrappedIndex() int { return p.wrappedIndex }
func (p *Pool) BptIndex() int     { return p.bptIndex }

// Targets returns the lower and upper targets in 18-decimal main units.
func (p *Pool) Targets() (*big.Int, *big.Int) {
	return new(big.Int).Set(p.params.LowerTarget), new(big.Int).Set(p.params.UpperTarget)
}

func (p *Pool) role(i int) role {
	switch i {
	case p.mainIndex:
		return roleMain
	case p.wrappedIndex:
		return roleWrapped
	default:
		return roleBpt
	}
}

// state returns the upscaled main and wrapped balances and the virtual supply.
func (p *Pool) state(m *fixedpoint.Math) (*big.Int, *big.Int, *big.Int) {
	balances := p.UpscaledBalances(m)
	return balances[p.mainIndex], balances[p.wrappedIndex], p.TotalShares()
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
	return calculator.CalculateInvariant(upscaled[p.mainIndex], upscaled[p.wrappedIndex], p.params)
}

func (p *Pool) marginalValue(i int, main, wrapped, supply *big.Int) (*big.Int, error) {
	switch p.role(i) {
	case roleMain:
		return calculator.MainMarginalValue(main, p.params), nil
	case roleWrapped:
		return new(big.Int).Set(fixedpoint.One), nil
	default:
		return calculator.BptMarginalValue(main, wrapped, supply, p.params)
	}
}

func (p *Pool) SpotPrice(tokenIn, tokenOut common.Address) (*big.Int, error) {
	in, out, err := p.Pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	var m fixedpoint.Math
	main, wrapped, supply := p.state(&m)
	if err := m.Err(); err != nil {
		return nil, err
	}
	valueIn, err := p.marginalValue(in, main, wrapped, supply)
	if err != nil {
		return nil, err
	}
	valueOut, err := p.marginalValue(out, main, wrapped, supply)
	if err != nil {
		return nil, err
	}
	price := p.HumanPrice(&m, m.DivDown(valueOut, valueIn), in, out)
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
	main, wrapped, supply := p.state(&m)
	upscaledIn := p.Upscale(&m, amountIn, in)
	if err := m.Err(); err != nil {
		return nil, err
	}

	var amountOut *big.Int
	switch from, to := p.role(in), p.role(out); {
	case from == roleMain && to == roleWrapped:
		amountOut, err = calculator.CalcWrappedOutPerMainIn(upscaledIn, main, p.params)
	case from == roleMain && to == roleBpt:
		amountOut, err = calculator.CalcBptOutPerMainIn(upscaledIn, main, wrapped, supply, p.params)
	case from == roleWrapped && to == roleMain:
		amountOut, err = calculator.CalcMainOutPerWrappedIn(upscaledIn, main, p.params)
	case from == roleWrapped && to == roleBpt:
		amountOut, err = calculator.CalcBptOutPerWrappedIn(upscaledIn, main, wrapped, supply, p.params)
	case from == roleBpt && to == roleMain:
		amountOut, err = calculator.CalcMainOutPerBptIn(upscaledIn, main, wrapped, supply, p.params)
	default:
		amountOut, err = calculator.CalcWrappedOutPerBptIn(upscaledIn, main, wrapped, supply, p.params)
	}
	if err != nil {
		return nil, err
	}
	res := p.DownscaleDown(&m, amountOut, out)
	if err := m.Err(); err != nil {
		return nil, err
	}
	if err := p.checkOut(out, res); err != nil {
		return nil, err
	}
	return res, nil
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
	if err := p.checkOut(out, amountOut); err != nil {
		return nil, err
	}
	var m fixedpoint.Math
	main, wrapped, supply := p.state(&m)
	upscaledOut := p.Upscale(&m, amountOut, out)
	if err := m.Err(); err != nil {
		return nil, err
	}

	var amountIn *big.Int
	switch from, to := p.role(in), p.role(out); {
	case from == roleMain && to == roleWrapped:
		amountIn, err = calculator.CalcMainInPerWrappedOut(upscaledOut, main, p.params)
	case from == roleMain && to == roleBpt:
		amountIn, err = calculator.CalcMainInPerBptOut(upscaledOut, main, wrapped, supply, p.params)
	case from == roleWrapped && to == roleMain:
		amountIn, err = calculator.CalcWrappedInPerMainOut(upscaledOut, main, p.params)
	case from == roleWrapped && to == roleBpt:
		amountIn, err = calculator.CalcWrappedInPerBptOut(upscaledOut, main, wrapped, supply, p.params)
	case from == roleBpt && to == roleMain:
		amountIn, err = calculator.CalcBptInPerMainOut(upscaledOut, main, wrapped, supply, p.params)
	default:
		amountIn, err = calculator.CalcBptInPerWrappedOut(upscaledOut, main, wrapped, supply, p.params)
	}
	if err != nil {
		return nil, err
	}
	res := p.DownscaleUp(&m, amountIn, in)
	return res, m.Err()
}

// checkOut rejects taking the whole main or wrapped balance. BPT out is
// bounded by the premint instead.
func (p *Pool) checkOut(out int, amount *big.Int) error {
	if p.role(out) == roleBpt {
		return nil
	}
	if amount.Cmp(p.Tokens()[out].Balance) >= 0 {
		return fmt.Errorf("%w: token %d", ErrExceedsBalance, out)
	}
	return nil
}

func (p *Pool) AddLiquidityUnbalanced([]*big.Int) (*big.Int, error) {
	return nil, p.Unsupported("joins")
}

func (p *Pool) AddLiquiditySingleTokenExactOut(int, *big.Int) (*big.Int, error) {
	return nil, p.Unsupported("joins")
}

func (p *Pool) AddLiquidityProportional(*big.Int) ([]*big.Int, error) {
	return nil, p.Unsupported("joins")
}

func (p *Pool) AddLiquidityInit([]*big.Int) (*big.Int, error) {
	return nil, p.Unsupported("initialisation")
}

func (p *Pool) RemoveLiquiditySingleTokenExactIn(int, *big.Int) (*big.Int, error) {
	return nil, p.Unsupported("exits")
}

func (p *Pool) RemoveLiquiditySingleTokenExactOut(int, *big.Int) (*big.Int, error) {
	return nil, p.Unsupported("exits")
}

func (p *Pool) RemoveLiquidityProportional(*big.Int) ([]*big.Int, error) {
	return nil, p.Unsupported("exits")
}

func (p *Pool) RemoveLiquidityUnbalanced([]*big.Int) (*big.Int, error) {
	return nil, p.Unsupported("exits")
}

var _ pools.Pool = (*Pool)(nil)
