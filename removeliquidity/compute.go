package removeliquidity

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/chains"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
)

const op = "remove_liquidity"

var ErrUnknownInput = fmt.Errorf("%w: unknown removal input", poolerrors.ErrInvalidInput)

// Compute validates in against p and simulates the removal. It performs no
// I/O and returns the same output for the same input and pool.
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
	if b.ReceiveNativeAsset {
		if _, _, err := chains.NativeAssets(p.ChainID(), pools.Addresses(tokens)); err != nil {
			return QueryOutput{}, err
		}
	}

	var (
		bptIn      *big.Int
		amountsOut []*big.Int
		tokenIndex = -1
		err        error
	)
	switch in := in.(type) {
	case SingleTokenExactInInput:
		if err = pools.CheckBpt(p, in.BptIn); err != nil {
			return QueryOutput{}, err
		}
		if tokenIndex, err = p.TokenIndex(in.TokenOut); err != nil {
			return QueryOutput{}, err
		}
		var amountOut *big.Int
		if amountOut, err = p.RemoveLiquiditySingleTokenExactIn(tokenIndex, in.BptIn.RawAmount); err != nil {
			return QueryOutput{}, err
		}
		amountsOut = pools.Zeros(len(tokens))
		amountsOut[tokenIndex] = amountOut
		bptIn = new(big.Int).Set(in.BptIn.RawAmount)

	case SingleTokenExactOutInput:
		if tokenIndex, err = pools.ResolveAmount(p, in.AmountOut); err != nil {
			return QueryOutput{}, err
		}
		if bptIn, err = p.RemoveLiquiditySingleTokenExactOut(tokenIndex, in.AmountOut.RawAmount); err != nil {
			return QueryOutput{}, err
		}
		amountsOut = pools.Zeros(len(tokens))
		amountsOut[tokenIndex] = new(big.Int).Set(in.AmountOut.RawAmount)

	case ProportionalInput:
		if err = pools.CheckBpt(p, in.BptIn); err != nil {
			return QueryOutput{}, err
		}
		amountsOut, err = p.RemoveLiquidityProportional(in.BptIn.RawAmount)
		bptIn = new(big.Int).Set(in.BptIn.RawAmount)

	case CustomInput:
		if amountsOut, err = pools.ResolveAmounts(p, in.AmountsOut, false); err != nil {
			return QueryOutput{}, err
		}
		bptIn, err = p.RemoveLiquidityUnbalanced(amountsOut)

	default:
		return QueryOutput{}, fmt.Errorf("%w: %T", ErrUnknownInput, in)
	}
	if err != nil {
		return QueryOutput{}, err
	}

	amounts, err := pools.TokenAmounts(p, amountsOut)
	if err != nil {
		return QueryOutput{}, err
	}
	bpt, err := token.NewAmount(pools.BptOf(p), bptIn)
	if err != nil {
		return QueryOutput{}, err
	}
	return QueryOutput{
		Kind:               in.Kind(),
		ChainID:            p.ChainID(),
		PoolID:             p.ID(),
		PoolAddress:        p.Address(),
		PoolType:           p.Type(),
		Tokens:             tokens,
		BptIn:              bpt,
		AmountsOut:         amounts,
		TokenOutIndex:      tokenIndex,
		ReceiveNativeAsset: b.ReceiveNativeAsset,
	}, nil
}
