package swap

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/chains"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/slippage"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/defistate/balancer-sdk-go/vault"
	"github.com/ethereum/go-ethereum/common"
)

const op = "swap"

var (
	ErrNoSender    = fmt.Errorf("%w: sender is required", poolerrors.ErrInvalidInput)
	ErrAmountToken = fmt.Errorf("%w: amount is not denominated in the fixed side of the swap", poolerrors.ErrInvalidInput)
	ErrUnknownKind = fmt.Errorf("%w: unknown swap kind", poolerrors.ErrInvalidInput)
)

// Compute validates in against p and simulates the swap.
func Compute(in Input, p pools.Pool) (QueryOutput, error) {
	out, err := compute(in, p)
	if err != nil {
		var id common.Hash
		if p != nil {
			id = p.ID()
		}
		return QueryOutput{}, poolerrors.Wrap(op, in.Kind.String(), id, err)
	}
	return out, nil
}

func compute(in Input, p pools.Pool) (QueryOutput, error) {
	if err := pools.CheckChain(p, in.ChainID); err != nil {
		return QueryOutput{}, err
	}
	if in.Kind != GivenIn && in.Kind != GivenOut {
		return QueryOutput{}, ErrUnknownKind
	}
	fixed := in.TokenIn
	if in.Kind == GivenOut {
		fixed = in.TokenOut
	}
	if in.Amount.Address != fixed {
		return QueryOutput{}, fmt.Errorf("%w: got %s, want %s", ErrAmountToken, in.Amount.Address.Hex(), fixed.Hex())
	}
	if _, err := pools.ResolveAmount(p, in.Amount); err != nil {
		return QueryOutput{}, err
	}
	if in.UseNativeAsset && !chains.IsWrappedNative(p.ChainID(), in.TokenIn) && !chains.IsWrappedNative(p.ChainID(), in.TokenOut) {
		return QueryOutput{}, fmt.Errorf("%w on chain %d", chains.ErrNoWrappedNative, p.ChainID())
	}

	var amountIn, amountOut *big.Int
	var err error
	if in.Kind == GivenIn {
		amountIn = new(big.Int).Set(in.Amount.RawAmount)
		amountOut, err = p.SwapGivenIn(in.TokenIn, in.TokenOut, amountIn)
	} else {
		amountOut = new(big.Int).Set(in.Amount.RawAmount)
		amountIn, err = p.SwapGivenOut(in.TokenIn, in.TokenOut, amountOut)
	}
	if err != nil {
		return QueryOutput{}, err
	}

	tokens := pools.TokenList(p)
	i, o, err := pair(p, in.TokenIn, in.TokenOut)
	if err != nil {
		return QueryOutput{}, err
	}
	amountInT, err := token.NewAmount(tokens[i], amountIn)
	if err != nil {
		return QueryOutput{}, err
	}
	amountOutT, err := token.NewAmount(tokens[o], amountOut)
	if err != nil {
		return QueryOutput{}, err
	}
	return QueryOutput{
		Kind:           in.Kind,
		ChainID:        p.ChainID(),
		PoolID:         p.ID(),
		PoolAddress:    p.Address(),
		PoolType:       p.Type(),
		AmountIn:       amountInT,
		AmountOut:      amountOutT,
		UseNativeAsset: in.UseNativeAsset,
	}, nil
}

func pair(p pools.Pool, tokenIn, tokenOut common.Address) (int, int, error) {
	i, err := p.TokenIndex(tokenIn)
	if err != nil {
		return 0, 0, err
	}
	o, err := p.TokenIndex(tokenOut)
	if err != nil {
		return 0, 0, err
	}
	return i, o, nil
}

// BuildCall bounds the swap and encodes the Vault swap call. GivenIn swaps
// lower the amount out; GivenOut swaps raise the amount in.
func BuildCall(in BuildInput) (Call, error) {
	call, err := build(in)
	if err != nil {
		return Call{}, poolerrors.Wrap(op, in.Query.Kind.String(), in.Query.PoolID, err)
	}
	return call, nil
}

func build(in BuildInput) (Call, error) {
	q := in.Query
	if in.Sender == (common.Address{}) {
		return Call{}, ErrNoSender
	}
	recipient := in.Recipient
	if recipient == (common.Address{}) {
		recipient = in.Sender
	}

	var kind vault.SwapKind
	var amount, limit, maxIn *big.Int
	switch q.Kind {
	case GivenIn:
		kind = vault.SwapGivenIn
		amount = q.AmountIn.Raw()
		limit = in.Slippage.ApplyTo(q.AmountOut.Raw(), slippage.Down)
		maxIn = amount
	case GivenOut:
		kind = vault.SwapGivenOut
		amount = q.AmountOut.Raw()
		limit = in.Slippage.ApplyTo(q.AmountIn.Raw(), slippage.Up)
		maxIn = limit
	default:
		return Call{}, ErrUnknownKind
	}

	assetIn, assetOut := q.AmountIn.Token().Address, q.AmountOut.Token().Address
	value := new(big.Int)
	if q.UseNativeAsset {
		switch {
		case chains.IsWrappedNative(q.ChainID, assetIn):
			assetIn = chains.NativeAsset
			value.Set(maxIn)
		case chains.IsWrappedNative(q.ChainID, assetOut):
			assetOut = chains.NativeAsset
		default:
			return Call{}, fmt.Errorf("%w on chain %d", chains.ErrNoWrappedNative, q.ChainID)
		}
	}

	data, err := vault.EncodeSwap(vault.SingleSwap{
		PoolId:   q.PoolID,
		Kind:     uint8(kind),
		AssetIn:  assetIn,
		AssetOut: assetOut,
		Amount:   amount,
		UserData: []byte{},
	}, vault.FundManagement{
		Sender:    in.Sender,
		Recipient: recipient,
	}, limit, in.Deadline)
	if err != nil {
		return Call{}, err
	}
	return Call{
		To:       chains.VaultAddress(q.ChainID),
		CallData: data,
		Value:    value,
		Limit:    limit,
	}, nil
}
