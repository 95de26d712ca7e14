package swap

import (
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/defistate/balancer-sdk-go/chains"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools/poolstest"
	"github.com/defistate/balancer-sdk-go/protocols/gyro2"
	"github.com/defistate/balancer-sdk-go/slippage"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/defistate/balancer-sdk-go/vault"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sender = common.HexToAddress("0x1111111111111111111111111111111111111111")

func gyroPool(t *testing.T) *gyro2.Pool {
	t.Helper()
	p, err := gyro2.NewPool(chains.Mainnet, poolstest.Gyro2())
	require.NoError(t, err)
	return p
}

func hundred(addr common.Address) token.InputAmount {
	return token.InputAmount{Address: addr, Decimals: 18, RawAmount: new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))}
}

type decodedSwap struct {
	single   vault.SingleSwap
	funds    vault.FundManagement
	limit    *big.Int
	deadline *big.Int
}

func decode(t *testing.T, data []byte) decodedSwap {
	t.Helper()
	parsed, err := vault.ABI()
	require.NoError(t, err)
	args, err := parsed.Methods["swap"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	return decodedSwap{
		single:   *abi.ConvertType(args[0], new(vault.SingleSwap)).(*vault.SingleSwap),
		funds:    *abi.ConvertType(args[1], new(vault.FundManagement)).(*vault.FundManagement),
		limit:    args[2].(*big.Int),
		deadline: args[3].(*big.Int),
	}
}

func TestGivenIn(t *testing.T) {
	p := gyroPool(t)
	out, err := Compute(Input{
		ChainID:  chains.Mainnet,
		Kind:     GivenIn,
		TokenIn:  poolstest.WstETH,
		TokenOut: poolstest.WETH,
		Amount:   hundred(poolstest.WstETH),
	}, p)
	require.NoError(t, err)
	assert.Equal(t, "95147387970855754897", out.AmountOut.Raw().String())
	assert.Equal(t, poolstest.WETH, out.AmountOut.Token().Address)

	call, err := BuildCall(BuildInput{Query: out, Slippage: slippage.MustPercentage("1"), Sender: sender, Deadline: big.NewInt(1700000000)})
	require.NoError(t, err)
	assert.Equal(t, "94195914091147197348", call.Limit.String())
	assert.Zero(t, call.Value.Sign())

	d := decode(t, call.CallData)
	assert.Equal(t, [32]byte(p.ID()), d.single.PoolId)
	assert.Equal(t, uint8(vault.SwapGivenIn), d.single.Kind)
	assert.Equal(t, poolstest.WstETH, d.single.AssetIn)
	assert.Equal(t, out.AmountIn.Raw().String(), d.single.Amount.String())
	assert.Equal(t, sender, d.funds.Recipient)
	assert.Equal(t, call.Limit.String(), d.limit.String())
	assert.Equal(t, "1700000000", d.deadline.String())
}

func TestGivenOut(t *testing.T) {
	p := gyroPool(t)
	out, err := Compute(Input{
		ChainID:  chains.Mainnet,
		Kind:     GivenOut,
		TokenIn:  poolstest.WETH,
		TokenOut: poolstest.WstETH,
		Amount:   hundred(poolstest.WstETH),
	}, p)
	require.NoError(t, err)
	amountIn := out.AmountIn.Raw()
	require.Equal(t, 1, amountIn.Cmp(hundred(poolstest.WETH).RawAmount))

	call, err := BuildCall(BuildInput{Query: out, Slippage: slippage.MustPercentage("1"), Sender: sender})
	require.NoError(t, err)
	assert.Equal(t, slippage.MustPercentage("1").ApplyTo(amountIn, slippage.Up).String(), call.Limit.String())

	d := decode(t, call.CallData)
	assert.Equal(t, uint8(vault.SwapGivenOut), d.single.Kind)
	assert.Equal(t, "100000000000000000000", d.single.Amount.String())
	assert.Equal(t, vault.MaxDeadline.String(), d.deadline.String())
}

func TestNativeAsset(t *testing.T) {
	p := gyroPool(t)
	out, err := Compute(Input{
		ChainID:        chains.Mainnet,
		Kind:           GivenIn,
		TokenIn:        poolstest.WETH,
		TokenOut:       poolstest.WstETH,
		Amount:         hundred(poolstest.WETH),
		UseNativeAsset: true,
	}, p)
	require.NoError(t, err)

	call, err := BuildCall(BuildInput{Query: out, Slippage: slippage.MustPercentage("1"), Sender: sender})
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000000", call.Value.String())
	d := decode(t, call.CallData)
	assert.Equal(t, chains.NativeAsset, d.single.AssetIn)
	assert.Equal(t, poolstest.WstETH, d.single.AssetOut)
}

func TestFailures(t *testing.T) {
	p := gyroPool(t)
	testCases := []struct {
		name   string
		input  Input
		target error
	}{
		{
			name:   "amount on the wrong side",
			input:  Input{ChainID: chains.Mainnet, Kind: GivenIn, TokenIn: poolstest.WstETH, TokenOut: poolstest.WETH, Amount: hundred(poolstest.WETH)},
			target: ErrAmountToken,
		},
		{
			name:   "token not in pool",
			input:  Input{ChainID: chains.Mainnet, Kind: GivenIn, TokenIn: poolstest.DAI, TokenOut: poolstest.WETH, Amount: hundred(poolstest.DAI)},
			target: poolerrors.ErrUnsupportedPair,
		},
		{
			name:   "same token",
			input:  Input{ChainID: chains.Mainnet, Kind: GivenIn, TokenIn: poolstest.WETH, TokenOut: poolstest.WETH, Amount: hundred(poolstest.WETH)},
			target: poolerrors.ErrInvalidInput,
		},
		{
			name:   "more than the balance",
			input:  Input{ChainID: chains.Mainnet, Kind: GivenOut, TokenIn: poolstest.WstETH, TokenOut: poolstest.WETH, Amount: token.InputAmount{Address: poolstest.WETH, Decimals: 18, RawAmount: new(big.Int).Mul(big.NewInt(1100), big.NewInt(1e18))}},
			target: poolerrors.ErrInsufficientLiquidity,
		},
		{
			name:   "unknown kind",
			input:  Input{ChainID: chains.Mainnet, Kind: Kind(7), TokenIn: poolstest.WstETH, TokenOut: poolstest.WETH, Amount: hundred(poolstest.WstETH)},
			target: ErrUnknownKind,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.input, p)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestZeroAmount(t *testing.T) {
	p := gyroPool(t)
	out, err := Compute(Input{
		ChainID:  chains.Mainnet,
		Kind:     GivenIn,
		TokenIn:  poolstest.WstETH,
		TokenOut: poolstest.WETH,
		Amount:   token.InputAmount{Address: poolstest.WstETH, Decimals: 18, RawAmount: big.NewInt(0)},
	}, p)
	require.NoError(t, err)
	assert.True(t, out.AmountOut.IsZero())
}

func TestEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := New(&Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Registry: reg})
	require.NoError(t, err)
	p := gyroPool(t)

	out, err := e.Query(Input{ChainID: chains.Mainnet, Kind: GivenIn, TokenIn: poolstest.WstETH, TokenOut: poolstest.WETH, Amount: hundred(poolstest.WstETH)}, p)
	require.NoError(t, err)
	_, err = e.BuildCall(BuildInput{Query: out, Slippage: slippage.MustPercentage("0.5"), Sender: sender})
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "balancer_swap_builds_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
