package stable

import (
	"math/big"
	"testing"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	dai  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	usdt = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

func newBigIntFromString(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("failed to set string for big.Int")
	}
	return n
}

func rawThreePool() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0x06df3b2bbb68adc8b0e302443692037ed9f91b42000000000000000000000063"),
		Address:     common.HexToAddress("0x06Df3b2bbB68adc8B0e302443692037ED9f91b42"),
		PoolType:    "Stable",
		SwapFee:     "0.0001",
		TotalShares: "3000000",
		Amp:         "200",
		Tokens: []pools.RawPoolToken{
			{Address: dai, Index: 0, Decimals: 18, Symbol: "DAI", Balance: "1000000"},
			{Address: usdc, Index: 1, Decimals: 6, Symbol: "USDC", Balance: "1000000"},
			{Address: usdt, Index: 2, Decimals: 6, Symbol: "USDT", Balance: "1000000"},
		},
	}
}

func mustPool(t *testing.T, raw pools.RawPool) *Pool {
	t.Helper()
	p, err := NewPool(1, raw)
	require.NoError(t, err)
	return p
}

func TestNewPool(t *testing.T) {
	p := mustPool(t, rawThreePool())
	assert.Equal(t, "200000", p.Amp().String())
	assert.Equal(t, pools.TypeStable, p.Type())
	assert.Equal(t, "1000000000000", p.Tokens()[1].Balance.String())

	testCases := []struct {
		name string
		amp  string
	}{
		{name: "missing amp", amp: ""},
		{name: "zero amp", amp: "0"},
		{name: "amp above maximum", amp: "5001"},
		{name: "not a number", amp: "high"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := rawThreePool()
			raw.Amp = tc.amp
			_, err := NewPool(1, raw)
			assert.ErrorIs(t, err, pools.ErrInvalidRawPool)
		})
	}
}

func TestSpotPrice(t *testing.T) {
	p := mustPool(t, rawThreePool())
	price, err := p.SpotPrice(usdc, dai)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", price.String())

	_, err = p.SpotPrice(usdc, weth)
	assert.ErrorIs(t, err, poolerrors.ErrUnsupportedPair)
}

func TestInvariantMonotonic(t *testing.T) {
	p := mustPool(t, rawThreePool())
	base, err := p.Invariant(p.Balances())
	require.NoError(t, err)
	assert.Equal(t, "3000000000000000000000000", base.String())

	for i := range p.Tokens() {
		deposit := p.Balances()
		deposit[i].Add(deposit[i], new(big.Int).Quo(deposit[i], big.NewInt(10)))
		up, err := p.Invariant(deposit)
		require.NoError(t, err)
		assert.Equal(t, 1, up.Cmp(base))

		withdraw := p.Balances()
		withdraw[i].Sub(withdraw[i], new(big.Int).Quo(withdraw[i], big.NewInt(10)))
		down, err := p.Invariant(withdraw)
		require.NoError(t, err)
		assert.Equal(t, -1, down.Cmp(base))
	}
}

func TestSwaps(t *testing.T) {
	p := mustPool(t, rawThreePool())
	amountIn := big.NewInt(1000_000000)

	out, err := p.SwapGivenIn(usdc, dai, amountIn)
	require.NoError(t, err)
	// 1000 USDC less the 0.01% fee, at a near 1:1 price
	assert.Equal(t, 1, out.Cmp(newBigIntFromString("999800000000000000000")))
	assert.Equal(t, -1, out.Cmp(newBigIntFromString("999900000000000000000")))

	in, err := p.SwapGivenOut(usdc, dai, out)
	require.NoError(t, err)
	diff := new(big.Int).Sub(in, amountIn)
	assert.True(t, diff.Sign() >= 0 && diff.Cmp(big.NewInt(10)) <= 0, "given out needs %s", in)

	zero, err := p.SwapGivenIn(usdc, dai, big.NewInt(0))
	require.NoError(t, err)
	assert.Zero(t, zero.Sign())

	_, err = p.SwapGivenOut(usdc, dai, newBigIntFromString("1000000000000000000000000"))
	assert.ErrorIs(t, err, poolerrors.ErrInsufficientLiquidity)
}

func TestLiquidityOperations(t *testing.T) {
	p := mustPool(t, rawThreePool())
	thousandUSDC := big.NewInt(1000_000000)
	thousandBpt := newBigIntFromString("1000000000000000000000")

	t.Run("proportional join is unsupported", func(t *testing.T) {
		_, err := p.AddLiquidityProportional(thousandBpt)
		assert.ErrorIs(t, err, poolerrors.ErrUnsupportedOperation)
	})

	t.Run("single token join pays the fee on its imbalance", func(t *testing.T) {
		bpt, err := p.AddLiquidityUnbalanced([]*big.Int{big.NewInt(0), thousandUSDC, big.NewInt(0)})
		require.NoError(t, err)
		assert.Equal(t, 1, bpt.Cmp(newBigIntFromString("999900000000000000000")))
		assert.Equal(t, -1, bpt.Cmp(thousandBpt))
	})

	t.Run("single token exit", func(t *testing.T) {
		out, err := p.RemoveLiquiditySingleTokenExactIn(1, thousandBpt)
		require.NoError(t, err)
		assert.Equal(t, 1, out.Cmp(big.NewInt(999_900000)))
		assert.Equal(t, -1, out.Cmp(thousandUSDC))

		bptIn, err := p.RemoveLiquiditySingleTokenExactOut(1, out)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, bptIn.Cmp(newBigIntFromString("999000000000000000000")), 0)
	})

	t.Run("exact bpt out join", func(t *testing.T) {
		in, err := p.AddLiquiditySingleTokenExactOut(0, thousandBpt)
		require.NoError(t, err)
		assert.Equal(t, 1, in.Cmp(thousandBpt))
	})

	t.Run("proportional exit", func(t *testing.T) {
		out, err := p.RemoveLiquidityProportional(newBigIntFromString("30000000000000000000000"))
		require.NoError(t, err)
		assert.Equal(t, "10000000000000000000000", out[0].String())
		assert.Equal(t, "10000000000", out[1].String())
		assert.Equal(t, "10000000000", out[2].String())
	})

	t.Run("zero amounts yield zero", func(t *testing.T) {
		bpt, err := p.AddLiquidityUnbalanced(pools.Zeros(3))
		require.NoError(t, err)
		assert.Zero(t, bpt.Sign())

		bpt, err = p.RemoveLiquidityUnbalanced(pools.Zeros(3))
		require.NoError(t, err)
		assert.Zero(t, bpt.Sign())
	})

	t.Run("exit larger than the balance", func(t *testing.T) {
		_, err := p.RemoveLiquiditySingleTokenExactOut(1, big.NewInt(1_000_000_000000))
		assert.ErrorIs(t, err, poolerrors.ErrInsufficientLiquidity)
	})
}

func TestAddLiquidityInit(t *testing.T) {
	raw := rawThreePool()
	raw.TotalShares = "0"
	p := mustPool(t, raw)

	bpt, err := p.AddLiquidityInit([]*big.Int{
		newBigIntFromString("100000000000000000000"),
		big.NewInt(100_000000),
		big.NewInt(100_000000),
	})
	require.NoError(t, err)
	// a balanced seed has an invariant equal to its value
	assert.Equal(t, "299999999999999000000", bpt.String())

	_, err = mustPool(t, rawThreePool()).AddLiquidityInit(pools.Zeros(3))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestAddLiquidityUnbalancedBeforeInit(t *testing.T) {
	raw := rawThreePool()
	raw.TotalShares = "0"
	p := mustPool(t, raw)

	testCases := []struct {
		name      string
		amountsIn []*big.Int
		wantErr   error
	}{
		{
			name:      "balanced",
			amountsIn: []*big.Int{newBigIntFromString("100000000000000000000"), big.NewInt(100_000000), big.NewInt(100_000000)},
			wantErr:   pools.ErrNotInitialized,
		},
		{name: "one token", amountsIn: []*big.Int{big.NewInt(0), big.NewInt(100_000000), big.NewInt(0)}, wantErr: pools.ErrNotInitialized},
		{name: "nothing", amountsIn: pools.Zeros(3)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bpt, err := p.AddLiquidityUnbalanced(tc.amountsIn)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, poolerrors.ErrDegenerateInput)
				assert.Nil(t, bpt)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, bpt.Sign())
		})
	}
}

func TestFactory(t *testing.T) {
	f := Factory{}
	assert.True(t, f.IsPoolForFactory(rawThreePool()))

	raw := rawThreePool()
	raw.PoolType = "MetaStable"
	assert.False(t, f.IsPoolForFactory(raw))

	raw = rawThreePool()
	raw.Amp = ""
	p, err := f.Create(1, raw)
	assert.Error(t, err)
	assert.Nil(t, p)
}
