package removeliquidity

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
// the exitPool call. Exact-in removals lower every amount out; exact-out
// removals raise the BPT in.
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
	amountsOut := pools.RawAmounts(q.AmountsOut)
	if len(amountsOut) != len(q.Tokens) {
		return Call{}, fmt.Errorf("%w: %d amounts for %d tokens", pools.ErrBadAmounts, len(amountsOut), len(q.Tokens))
	}
	bptIn := q.BptIn.Raw()

	var (
		maxBptIn      *big.Int
		minAmountsOut []*big.Int
		userData      []byte
		err           error
	)
	switch q.Kind {
	case SingleTokenExactIn:
		if q.TokenOutIndex < 0 || q.TokenOutIndex >= len(amountsOut) {
			return Call{}, pools.ErrBadIndex
		}
		maxBptIn = bptIn
		minAmountsOut = in.Slippage.ApplyToAll(amountsOut, slippage.Down)
		userData, err = vault.ExitExactBptInForOneTokenOutUserData(bptIn, q.TokenOutIndex)
	case Proportional:
		maxBptIn = bptIn
		minAmountsOut = in.Slippage.ApplyToAll(amountsOut, slippage.Down)
		userData, err = vault.ExitExactBptInForTokensOutUserData(bptIn)
	case SingleTokenExactOut, Custom:
		maxBptIn = in.Slippage.ApplyTo(bptIn, slippage.Up)
		minAmountsOut = amountsOut
		userData, err = vault.ExitBptInForExactTokensOutUserData(amountsOut, maxBptIn)
	default:
		return Call{}, fmt.Errorf("%w: removal kind %d", poolerrors.ErrInvalidInput, int(q.Kind))
	}
	if err != nil {
		return Call{}, err
	}

	assets := pools.Addresses(q.Tokens)
	if q.ReceiveNativeAsset {
		if assets, _, err = chains.NativeAssets(q.ChainID, assets); err != nil {
			return Call{}, err
		}
	}

	data, err := vault.EncodeExitPool(q.PoolID, in.Sender, recipient, vault.ExitPoolRequest{
		Assets:            assets,
		MinAmountsOut:     minAmountsOut,
		UserData:          userData,
		ToInternalBalance: in.ToInternalBalance,
	})
	if err != nil {
		return Call{}, err
	}
	return Call{
		To:            chains.VaultAddress(q.ChainID),
		CallData:      data,
		Value:         new(big.Int),
		MaxBptIn:      maxBptIn,
		MinAmountsOut: minAmountsOut,
	}, nil
}
