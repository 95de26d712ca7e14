package addliquidity

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/chains"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
)

const op = "add_liquidity"

var ErrUnknownInput = fmt.Errorf("%w: unknown join input", poolerrors.ErrInvalidInput)

// Compute validates in against p and simulates the join. It performs no I/O
// and returns the same output for the same input and pool.
func Compute(in Input, p pools.Pool) (QueryOutput, error) {
	if in == nil {
		return QueryOutput{}, poolerrors.Wrap(op, "", poolID(p), ErrUnknownInput)
	}
	out, err := compute(in, p)
	if err != nil {
		return QueryOutput{}, poolerrors.Wrap(op, in.Kind().String(), poolID(p), err)
	}
	return out, nil
}

func poolID(p pools.Pool) common.Hash {
	if p == nil {
		return common.Hash{}
	}
	return p.ID()
}

func compute(in Input, p pools.Pool) (QueryOutput, error) {
	b := in.base()
	if err := pools.CheckChain(p, b.ChainID); err != nil {
		return QueryOutput{}, err
	}
	tokens := pools.TokenList(p)
	if b.UseNativeAsset {
		if _, _, err := chains.NativeAssets(p.ChainID(), pools.Addresses(tokens)); err != nil {
			return QueryOutput{}, err
		}
	}

	var (
		bptOut     *big.Int
		amountsIn  []*big.Int
		tokenIndex = -1
		err        error
	)
	switch in := in.(type) {
	case UnbalancedInput:
		if amountsIn, err = pools.ResolveAmounts(p, in.AmountsIn, false); err != nil {
			return QueryOutput{}, err
		}
		bptOut, err = p.AddLiquidityUnbalanced(amountsIn)

	case SingleTokenInput:
		if err = pools.CheckBpt(p, in.BptOut); err != nil {
			return QueryOutput{}, err
		}
		if tokenIndex, err = p.TokenIndex(in.TokenIn); err != nil {
			return QueryOutput{}, err
		}
		var amountIn *big.Int
		if amountIn, err = p.AddLiquiditySingleTokenExactOut(tokenIndex, in.BptOut.RawAmount); err != nil {
			return QueryOutput{}, err
		}
		amountsIn = pools.Zeros(len(tokens))
		amountsIn[tokenIndex] = amountIn
		bptOut = new(big.Int).Set(in.BptOut.RawAmount)

	case ProportionalInput:
		if err = pools.CheckBpt(p, in.BptOut); err != nil {
			return QueryOutput{}, err
		}
		amountsIn, err = p.AddLiquidityProportional(in.BptOut.RawAmount)
		bptOut = new(big.Int).Set(in.BptOut.RawAmount)

	case InitInput:
		if amountsIn, err = pools.ResolveAmounts(p, in.AmountsIn, true); err != nil {
			return QueryOutput{}, err
		}
		bptOut, err = p.AddLiquidityInit(amountsIn)

	default:
		return QueryOutput{}, fmt.Errorf("%w: %T", ErrUnknownInput, in)
	}
	if err != nil {
		return QueryOutput{}, err
	}

	amounts, err := pools.TokenAmounts(p, amountsIn)
	if err != nil {
		return QueryOutput{}, err
	}
	bpt, err := token.NewAmount(pools.BptOf(p), bptOut)
	if err != nil {
		return QueryOutput{}, err
	}
	return QueryOutput{
		Kind:           in.Kind(),
		ChainID:        p.ChainID(),
		PoolID:         p.ID(),
		PoolAddress:    p.Address(),
		PoolType:       p.Type(),
		Tokens:         tokens,
		BptOut:         bpt,
		AmountsIn:      amounts,
		TokenInIndex:   tokenIndex,
		UseNativeAsset: b.UseNativeAsset,
	}, nil
}
