package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Join kinds shared by weighted, legacy stable and gyro pools.
const (
	JoinInit                      = 0
	JoinExactTokensInForBptOut    = 1
	JoinTokenInForExactBptOut     = 2
	JoinAllTokensInForExactBptOut = 3
)

// Exit kinds shared by weighted, legacy stable and gyro pools.
const (
	ExitExactBptInForOneTokenOut = 0
	ExitExactBptInForTokensOut   = 1
	ExitBptInForExactTokensOut   = 2
)

var (
	uint256Ty, _      = abi.NewType("uint256", "", nil)
	uint256SliceTy, _ = abi.NewType("uint256[]", "", nil)
)

func encode(types []abi.Type, values ...any) ([]byte, error) {
	args := make(abi.Arguments, len(types))
	for i, t := range types {
		args[i] = abi.Argument{Type: t}
	}
	return args.Pack(values...)
}

func kind(k int64) *big.Int {
	return big.NewInt(k)
}

// JoinInitUserData encodes an initial join with exact amounts.
func JoinInitUserData(amountsIn []*big.Int) ([]byte, error) {
	return encode([]abi.Type{uint256Ty, uint256SliceTy}, kind(JoinInit), amountsIn)
}

// JoinExactTokensInUserData encodes an unbalanced join with a minimum BPT out.
func JoinExactTokensInUserData(amountsIn []*big.Int, minBptOut *big.Int) ([]byte, error) {
	return encode([]abi.Type{uint256Ty, uint256SliceTy, uint256Ty}, kind(JoinExactTokensInForBptOut), amountsIn, minBptOut)
}

// JoinTokenInForExactBptOutUserData encodes a single token join for exact BPT.
func JoinTokenInForExactBptOutUserData(bptOut *big.Int, tokenIndex int) ([]byte, error) {
	return encode([]abi.Type{uint256Ty, uint256Ty, uint256Ty}, kind(JoinTokenInForExactBptOut), bptOut, big.NewInt(int64(tokenIndex)))
}

// JoinAllTokensInForExactBptOutUserData encodes a proportional join.
func JoinAllTokensInForExactBptOutUserData(bptOut *big.Int) ([]byte, error) {
	return encode([]abi.Type{uint256Ty, uint256Ty}, kind(JoinAllTokensInForExactBptOut), bptOut)
}

// ExitExactBptInForOneTokenOutUserData encodes a single token exit.
func ExitExactBptInForOneTokenOutUserData(bptIn *big.Int, tokenIndex int) ([]byte, error) {
	return encode([]abi.Type{uint256Ty, uint256Ty, uint256Ty}, kind(ExitExactBptInForOneTokenOut), bptIn, big.NewInt(int64(tokenIndex)))
}

// ExitExactBptInForTokensOutUserData encodes a proportional exit.
func ExitExactBptInForTokensOutUserData(bptIn *big.Int) ([]byte, error) {
	return encode([]abi.Type{uint256Ty, uint256Ty}, kind(ExitExactBptInForTokensOut), bptIn)
}

// ExitBptInForExactTokensOutUserData encodes an exact amounts out exit with a maximum BPT in.
func ExitBptInForExactTokensOutUserData(amountsOut []*big.Int, maxBptIn *big.Int) ([]byte, error) {
	return encode([]abi.Type{uint256Ty, uint256SliceTy, uint256Ty}, kind(ExitBptInForExactTokensOut), amountsOut, maxBptIn)
}
