package vault

import (
	"math/big"
	"testing"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	poolID    = common.HexToHash("0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014")
	bal       = common.HexToAddress("0xba100000625a3754423978a60c9317c58a424e3D")
	weth      = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	sender    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	recipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func word(x int64) []byte {
	return common.LeftPadBytes(big.NewInt(x).Bytes(), 32)
}

func concat(words ...[]byte) []byte {
	var out []byte
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

func TestSelectors(t *testing.T) {
	join, err := EncodeJoinPool(poolID, sender, recipient, JoinPoolRequest{
		Assets:       []common.Address{bal, weth},
		MaxAmountsIn: []*big.Int{big.NewInt(1), big.NewInt(2)},
		UserData:     []byte{},
	})
	require.NoError(t, err)
	assert.Equal(t, "0xb95cac28", hexutil.Encode(join[:4]))

	exit, err := EncodeExitPool(poolID, sender, recipient, ExitPoolRequest{
		Assets:        []common.Address{bal, weth},
		MinAmountsOut: []*big.Int{big.NewInt(1), big.NewInt(2)},
		UserData:      []byte{},
	})
	require.NoError(t, err)
	assert.Equal(t, "0x8bdb3913", hexutil.Encode(exit[:4]))

	swap, err := EncodeSwap(SingleSwap{
		PoolId:   poolID,
		Kind:     uint8(SwapGivenIn),
		AssetIn:  bal,
		AssetOut: weth,
		Amount:   big.NewInt(1e18),
	}, FundManagement{Sender: sender, Recipient: recipient}, big.NewInt(1), nil)
	require.NoError(t, err)
	assert.Equal(t, "0x52bbbe29", hexutil.Encode(swap[:4]))
	// head: singleSwap offset, four funds words, limit, deadline
	assert.Equal(t, common.LeftPadBytes(MaxDeadline.Bytes(), 32), swap[4+6*32:4+7*32])
}

func TestJoinPoolRoundTrip(t *testing.T) {
	userData, err := JoinExactTokensInUserData([]*big.Int{big.NewInt(10), big.NewInt(20)}, big.NewInt(5))
	require.NoError(t, err)
	req := JoinPoolRequest{
		Assets:       []common.Address{bal, weth},
		MaxAmountsIn: []*big.Int{big.NewInt(10), big.NewInt(20)},
		UserData:     userData,
	}
	data, err := EncodeJoinPool(poolID, sender, recipient, req)
	require.NoError(t, err)

	parsed, err := ABI()
	require.NoError(t, err)
	args, err := parsed.Methods["joinPool"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Len(t, args, 4)

	assert.Equal(t, [32]byte(poolID), args[0])
	assert.Equal(t, sender, args[1])
	assert.Equal(t, recipient, args[2])
	decoded := *abi.ConvertType(args[3], new(JoinPoolRequest)).(*JoinPoolRequest)
	assert.Equal(t, req.Assets, decoded.Assets)
	assert.Equal(t, "20", decoded.MaxAmountsIn[1].String())
	assert.Equal(t, userData, decoded.UserData)
	assert.False(t, decoded.FromInternalBalance)
}

func TestLengthMismatch(t *testing.T) {
	_, err := EncodeJoinPool(poolID, sender, recipient, JoinPoolRequest{
		Assets:       []common.Address{bal, weth},
		MaxAmountsIn: []*big.Int{big.NewInt(1)},
	})
	assert.ErrorIs(t, err, poolerrors.ErrInvalidInput)

	_, err = EncodeExitPool(poolID, sender, recipient, ExitPoolRequest{
		Assets: []common.Address{bal},
	})
	assert.ErrorIs(t, err, poolerrors.ErrInvalidInput)
}

func TestUserData(t *testing.T) {
	oneBpt := big.NewInt(1e18)
	testCases := []struct {
		name   string
		encode func() ([]byte, error)
		want   []byte
	}{
		{
			name:   "proportional join",
			encode: func() ([]byte, error) { return JoinAllTokensInForExactBptOutUserData(oneBpt) },
			want:   concat(word(3), word(1e18)),
		},
		{
			name:   "single token join",
			encode: func() ([]byte, error) { return JoinTokenInForExactBptOutUserData(oneBpt, 1) },
			want:   concat(word(2), word(1e18), word(1)),
		},
		{
			name:   "single token exit",
			encode: func() ([]byte, error) { return ExitExactBptInForOneTokenOutUserData(oneBpt, 0) },
			want:   concat(word(0), word(1e18), word(0)),
		},
		{
			name:   "proportional exit",
			encode: func() ([]byte, error) { return ExitExactBptInForTokensOutUserData(oneBpt) },
			want:   concat(word(1), word(1e18)),
		},
		{
			name:   "init join",
			encode: func() ([]byte, error) { return JoinInitUserData([]*big.Int{big.NewInt(7), big.NewInt(9)}) },
			// kind, offset of the array, length, elements
			want: concat(word(0), word(64), word(2), word(7), word(9)),
		},
		{
			name: "exact tokens out exit",
			encode: func() ([]byte, error) {
				return ExitBptInForExactTokensOutUserData([]*big.Int{big.NewInt(7), big.NewInt(9)}, big.NewInt(100))
			},
			want: concat(word(2), word(96), word(100), word(2), word(7), word(9)),
		},
		{
			name: "exact tokens in join",
			encode: func() ([]byte, error) {
				return JoinExactTokensInUserData([]*big.Int{big.NewInt(7)}, big.NewInt(3))
			},
			want: concat(word(1), word(96), word(3), word(1), word(7)),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.encode()
			require.NoError(t, err)
			assert.Equal(t, hexutil.Encode(tc.want), hexutil.Encode(got))
		})
	}
}
