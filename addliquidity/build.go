package addliquidity

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/chains"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/slippage"
	"github.com/defistate/balancer-sdk-go/vault"
	"github.com/ethereum/go-ethereum/common"
)

var ErrNoSender = fmt.Errorf("%w: sender is required", poolerrors.ErrInvalidInput)

// BuildCall bounds the query result by the slippage tolerance and encodes
// the joinPool call. Exact-in joins lower the BPT out; exact-out joins raise
// every amount in. Init joins are not bounded.
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
	amountsIn := pools.RawAmounts(q.AmountsIn)
	if len(amountsIn) != len(q.Tokens) {
		return Call{}, fmt.Errorf("%w: %d amounts for %d tokens", pools.ErrBadAmounts, len(amountsIn), len(q.Tokens))
	}
	bptOut := q.BptOut.Raw()

	var (
		minBptOut    *big.Int
		maxAmountsIn []*big.Int
		userData     []byte
		err          error
	)
	switch q.Kind {
	case Unbalanced:
		minBptOut = in.Slippage.ApplyTo(bptOut, slippage.Down)
		maxAmountsIn = amountsIn
		userData, err = vault.JoinExactTokensInUserData(amountsIn, minBptOut)
	case SingleToken:
		if q.TokenInIndex < 0 || q.TokenInIndex >= len(amountsIn) {
			return Call{}, pools.ErrBadIndex
		}
		minBptOut = bptOut
		maxAmountsIn = in.Slippage.ApplyToAll(amountsIn, slippage.Up)
		userData, err = vault.JoinTokenInForExactBptOutUserData(bptOut, q.TokenInIndex)
	case Proportional:
		minBptOut = bptOut
		maxAmountsIn = in.Slippage.ApplyToAll(amountsIn, slippage.Up)
		userData, err = vault.JoinAllTokensInForExactBptOutUserData(bptOut)
	case Init:
		minBptOut = bptOut
		maxAmountsIn = amountsIn
		userData, err = vault.JoinInitUserData(amountsIn)
	default:
		return Call{}, fmt.Errorf("%w: join kind %d", poolerrors.ErrInvalidInput, int(q.Kind))
	}
	if err != nil {
		return Call{}, err
	}

	assets := pools.Addresses(q.Tokens)
	value := new(big.Int)
	if q.UseNativeAsset {
		var native int
		if assets, native, err = chains.NativeAssets(q.ChainID, assets); err != nil {
			return Call{}, err
		}
		value.Set(maxAmountsIn[native])
	}

	data, err := vault.EncodeJoinPool(q.PoolID, in.Sender, recipient, vault.JoinPoolRequest{
		Assets:              assets,
		MaxAmountsIn:        maxAmountsIn,
		UserData:            userData,
		FromInternalBalance: in.FromInternalBalance,
	})
	if err != nil {
		return Call{}, err
	}
	return Call{
		To:           chains.VaultAddress(q.ChainID),
		CallData:     data,
		Value:        value,
		MinBptOut:    minBptOut,
		MaxAmountsIn: maxAmountsIn,
	}, nil
}
