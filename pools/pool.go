// Package pools defines the capability set every pool variant implements and
// the state they share: token lookup, decimal and rate scaling, and
// proportional liquidity math.
package pools

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool is an immutable, typed snapshot of a pool's state. All amounts taken
// and returned are raw token base units unless noted; every method returns
// fresh values the caller may keep.
//
// Variants that lack a capability return an error wrapping
// poolerrors.ErrUnsupportedOperation rather than an approximation.
type Pool interface {
	ID() common.Hash
	Address() common.Address
	Type() Type
	ChainID() uint64
	Tokens() []PoolToken
	SwapFee() *big.Int
	TotalShares() *big.Int
	TokenIndex(addr common.Address) (int, error)

	// SpotPrice is the amount of tokenIn paid per unit of tokenOut, 18-decimal, fee excluded.
	SpotPrice(tokenIn, tokenOut common.Address) (*big.Int, error)
	// Invariant computes the pool invariant over raw balances given in pool token order.
	Invariant(balances []*big.Int) (*big.Int, error)

	SwapGivenIn(tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error)
	SwapGivenOut(tokenIn, tokenOut common.Address, amountOut *big.Int) (*big.Int, error)

	AddLiquidityUnbalanced(amountsIn []*big.Int) (bptOut *big.Int, err error)
	AddLiquiditySingleTokenExactOut(tokenIndex int, bptOut *big.Int) (amountIn *big.Int, err error)
	AddLiquidityProportional(bptOut *big.Int) (amountsIn []*big.Int, err error)
	AddLiquidityInit(amountsIn []*big.Int) (bptOut *big.Int, err error)

	RemoveLiquiditySingleTokenExactIn(tokenIndex int, bptIn *big.Int) (amountOut *big.Int, err error)
	RemoveLiquiditySingleTokenExactOut(tokenIndex int, amountOut *big.Int) (bptIn *big.Int, err error)
	RemoveLiquidityProportional(bptIn *big.Int) (amountsOut []*big.Int, err error)
	RemoveLiquidityUnbalanced(amountsOut []*big.Int) (bptIn *big.Int, err error)
}
