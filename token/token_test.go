package token

import (
	"math/big"
	"testing"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	usdc = Token{ChainID: 1, Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Decimals: 6, Symbol: "USDC"}
	weth = Token{ChainID: 1, Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Decimals: 18, Symbol: "WETH"}
)

func TestFromHuman(t *testing.T) {
	testCases := []struct {
		name     string
		token    Token
		human    string
		expected *big.Int
		err      error
	}{
		{"whole units", usdc, "12", big.NewInt(12_000_000), nil},
		{"fraction", usdc, "1.5", big.NewInt(1_500_000), nil},
		{"truncates extra digits", usdc, "0.0000019", big.NewInt(1), nil},
		{"not a number", usdc, "abc", nil, poolerrors.ErrInvalidInput},
		{"negative", usdc, "-1", nil, ErrNegativeAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := FromHuman(tc.token, tc.human)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, tc.expected.Cmp(a.Raw()))
		})
	}
}

func TestAmountIsImmutable(t *testing.T) {
	raw := big.NewInt(100)
	a, err := NewAmount(usdc, raw)
	require.NoError(t, err)

	raw.SetInt64(5)
	out := a.Raw()
	out.SetInt64(7)
	assert.Equal(t, int64(100), a.Raw().Int64())
}

func TestArithmetic(t *testing.T) {
	a, _ := NewAmount(usdc, big.NewInt(300))
	b, _ := NewAmount(usdc, big.NewInt(200))
	w := Zero(weth)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(500), sum.Raw().Int64())

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = a.Add(w)
	assert.ErrorIs(t, err, ErrTokenMismatch)

	c, err := a.Cmp(b)
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	half := big.NewInt(5e17)
	odd, _ := NewAmount(usdc, big.NewInt(3))
	down, err := odd.MulDownFixed(half)
	require.NoError(t, err)
	up, err := odd.MulUpFixed(half)
	require.NoError(t, err)
	assert.Equal(t, int64(1), down.Raw().Int64())
	assert.Equal(t, int64(2), up.Raw().Int64())
}

func TestScale18AndString(t *testing.T) {
	a, _ := FromHuman(usdc, "2.25")
	assert.Equal(t, "2250000000000000000", a.Scale18().String())
	assert.Equal(t, "2.25 USDC", a.String())
	assert.True(t, Zero(weth).IsZero())
}

func TestInputAmountValidate(t *testing.T) {
	assert.NoError(t, InputAmount{Address: usdc.Address, Decimals: 6, RawAmount: big.NewInt(0)}.Validate())
	assert.ErrorIs(t, InputAmount{Address: usdc.Address, Decimals: 6}.Validate(), poolerrors.ErrInvalidInput)
	assert.ErrorIs(t, InputAmount{Address: usdc.Address, Decimals: 6, RawAmount: big.NewInt(-1)}.Validate(), ErrNegativeAmount)
}
