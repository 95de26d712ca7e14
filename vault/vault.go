// Package vault encodes Balancer V2 Vault calls: joinPool, exitPool and swap,
// together with the pool specific userData they carry.
package vault

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// SwapKind is the Vault's swap direction.
type SwapKind uint8

const (
	SwapGivenIn SwapKind = iota
	SwapGivenOut
)

// MaxDeadline never expires.
var MaxDeadline = new(big.Int).Set(math.MaxBig256)

// JoinPoolRequest mirrors IVault.JoinPoolRequest.
type JoinPoolRequest struct {
	Assets              []common.Address
	MaxAmountsIn        []*big.Int
	UserData            []byte
	FromInternalBalance bool
}

// ExitPoolRequest mirrors IVault.ExitPoolRequest.
type ExitPoolRequest struct {
	Assets            []common.Address
	MinAmountsOut     []*big.Int
	UserData          []byte
	ToInternalBalance bool
}

// SingleSwap mirrors IVault.SingleSwap.
type SingleSwap struct {
	PoolId   [32]byte
	Kind     uint8
	AssetIn  common.Address
	AssetOut common.Address
	Amount   *big.Int
	UserData []byte
}

// FundManagement mirrors IVault.FundManagement.
type FundManagement struct {
	Sender              common.Address
	FromInternalBalance bool
	Recipient           common.Address
	ToInternalBalance   bool
}

func pack(method string, args ...any) ([]byte, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s: %v", poolerrors.ErrInvalidInput, method, err)
	}
	return data, nil
}

func checkLengths(assets int, amounts int) error {
	if assets != amounts {
		return fmt.Errorf("%w: %d assets but %d amounts", poolerrors.ErrInvalidInput, assets, amounts)
	}
	return nil
}

// EncodeJoinPool returns the call data of joinPool.
func EncodeJoinPool(poolID common.Hash, sender, recipient common.Address, req JoinPoolRequest) ([]byte, error) {
	if err := checkLengths(len(req.Assets), len(req.MaxAmountsIn)); err != nil {
		return nil, err
	}
	return pack("joinPool", [32]byte(poolID), sender, recipient, req)
}

// EncodeExitPool returns the call data of exitPool.
func EncodeExitPool(poolID common.Hash, sender, recipient common.Address, req ExitPoolRequest) ([]byte, error) {
	if err := checkLengths(len(req.Assets), len(req.MinAmountsOut)); err != nil {
		return nil, err
	}
	return pack("exitPool", [32]byte(poolID), sender, recipient, req)
}

// EncodeSwap returns the call data of swap. A nil deadline means MaxDeadline.
func EncodeSwap(single SingleSwap, funds FundManagement, limit, deadline *big.Int) ([]byte, error) {
	if deadline == nil {
		deadline = MaxDeadline
	}
	if single.UserData == nil {
		single.UserData = []byte{}
	}
	return pack("swap", single, funds, limit, deadline)
}
