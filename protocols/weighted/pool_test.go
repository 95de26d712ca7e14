package weighted

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
	bal  = common.HexToAddress("0xba100000625a3754423978a60c9317c58a424e3d")
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func newBigIntFromString(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("failed to set string for big.Int")
	}
	return n
}

func rawPool8020() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014"),
		Address:     common.HexToAddress("0x5c6Ee304399DBdB9C8Ef030aB642B10820DB8F56"),
		PoolType:    "Weighted",
		SwapFee:     "0.01",
		TotalShares: "796.2",
		Tokens: []pools.RawPoolToken{
			{Address: weth, Index: 1, Decimals: 18, Symbol: "WETH", Balance: "10", Weight: "0.2"},
			{Address: bal, Index: 0, Decimals: 18, Symbol: "BAL", Balance: "1000", Weight: "0.8"},
		},
	}
}

func rawPoolUSDC() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0x96646936b91d6b9d7d0c47c496afbf3d6ec7b6f8000200000000000000000019"),
		Address:     common.HexToAddress("0x96646936b91d6B9D7D0c47C496AfBF3D6ec7B6f8"),
		PoolType:    "Weighted",
		SwapFee:     "0.003",
		TotalShares: "20000",
		Tokens: []pools.RawPoolToken{
			{Address: usdc, Index: 0, Decimals: 6, Symbol: "USDC", Balance: "200000", Weight: "0.5"},
			{Address: weth, Index: 1, Decimals: 18, Symbol: "WETH", Balance: "100", Weight: "0.5"},
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
	p := mustPool(t, rawPool8020())
	tokens := p.Tokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, bal, tokens[0].Address)
	assert.Equal(t, "1000000000000000000000", tokens[0].Balance.String())
	assert.Equal(t, pools.TypeWeighted, p.Type())
	assert.Equal(t, "10000000000000000", p.SwapFee().String())

	t.Run("weights must sum to one", func(t *testing.T) {
		raw := rawPool8020()
		raw.Tokens[0].Weight = "0.3"
		_, err := NewPool(1, raw)
		assert.ErrorIs(t, err, poolerrors.ErrInvalidInput)
	})

	t.Run("missing weight", func(t *testing.T) {
		raw := rawPool8020()
		raw.Tokens[1].Weight = ""
		_, err := NewPool(1, raw)
		assert.ErrorIs(t, err, pools.ErrInvalidRawPool)
	})

	t.Run("accessors copy", func(t *testing.T) {
		tokens := p.Tokens()
		tokens[0].Balance.SetInt64(1)
		p.SwapFee().SetInt64(1)
		assert.Equal(t, "1000000000000000000000", p.Tokens()[0].Balance.String())
		assert.Equal(t, "10000000000000000", p.SwapFee().String())
	})
}

func TestSpotPrice(t *testing.T) {
	p := mustPool(t, rawPool8020())
	price, err := p.SpotPrice(bal, weth)
	require.NoError(t, err)
	// (1000 / 0.8) / (10 / 0.2) = 25 BAL per WETH
	assert.Equal(t, "25000000000000000000", price.String())

	_, err = p.SpotPrice(bal, usdc)
	assert.ErrorIs(t, err, poolerrors.ErrUnsupportedPair)
}

func TestInvariantMonotonic(t *testing.T) {
	for _, raw := range []pools.RawPool{rawPool8020(), rawPoolUSDC()} {
		p := mustPool(t, raw)
		balances := p.Balances()
		base, err := p.Invariant(balances)
		require.NoError(t, err)

		for i := range balances {
			deposit := p.Balances()
			deposit[i].Add(deposit[i], new(big.Int).Quo(deposit[i], big.NewInt(10)))
			up, err := p.Invariant(deposit)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, up.Cmp(base), 0)

			withdraw := p.Balances()
			withdraw[i].Sub(withdraw[i], new(big.Int).Quo(withdraw[i], big.NewInt(10)))
			down, err := p.Invariant(withdraw)
			require.NoError(t, err)
			assert.LessOrEqual(t, down.Cmp(base), 0)
		}
	}
}

func TestSwaps(t *testing.T) {
	p := mustPool(t, rawPoolUSDC())

	t.Run("given in across decimals", func(t *testing.T) {
		out, err := p.SwapGivenIn(usdc, weth, big.NewInt(2000_000000))
		require.NoError(t, err)
		// about 0.99 WETH at 2000 USDC/WETH, less fee and price impact
		assert.Equal(t, 1, out.Cmp(newBigIntFromString("980000000000000000")))
		assert.Equal(t, -1, out.Cmp(newBigIntFromString("1000000000000000000")))

		in, err := p.SwapGivenOut(usdc, weth, out)
		require.NoError(t, err)
		diff := new(big.Int).Sub(in, big.NewInt(2000_000000))
		assert.LessOrEqual(t, diff.CmpAbs(big.NewInt(10)), 0, "round trip drifted to %s", in)
	})

	t.Run("zero in", func(t *testing.T) {
		out, err := p.SwapGivenIn(usdc, weth, big.NewInt(0))
		require.NoError(t, err)
		assert.Zero(t, out.Sign())
	})

	t.Run("max in ratio", func(t *testing.T) {
		_, err := p.SwapGivenIn(usdc, weth, big.NewInt(70000_000000))
		assert.ErrorIs(t, err, poolerrors.ErrInsufficientLiquidity)
	})

	t.Run("same token", func(t *testing.T) {
		_, err := p.SwapGivenIn(usdc, usdc, big.NewInt(1))
		assert.ErrorIs(t, err, poolerrors.ErrInvalidInput)
	})
}

func TestProportionalRoundTrip(t *testing.T) {
	p := mustPool(t, rawPoolUSDC())
	bpt := newBigIntFromString("123456789012345678901")

	in, err := p.AddLiquidityProportional(bpt)
	require.NoError(t, err)
	out, err := p.RemoveLiquidityProportional(bpt)
	require.NoError(t, err)

	for i := range in {
		diff := new(big.Int).Sub(in[i], out[i])
		assert.True(t, diff.Sign() >= 0 && diff.Cmp(big.NewInt(1)) <= 0, "token %d: in %s out %s", i, in[i], out[i])
	}
}

func TestLiquidityOperations(t *testing.T) {
	p := mustPool(t, rawPool8020())
	one := newBigIntFromString("1000000000000000000")

	t.Run("zero amounts yield zero", func(t *testing.T) {
		bpt, err := p.AddLiquidityUnbalanced([]*big.Int{big.NewInt(0), big.NewInt(0)})
		require.NoError(t, err)
		assert.Zero(t, bpt.Sign())

		amounts, err := p.RemoveLiquidityProportional(big.NewInt(0))
		require.NoError(t, err)
		for _, a := range amounts {
			assert.Zero(t, a.Sign())
		}

		out, err := p.RemoveLiquiditySingleTokenExactIn(1, big.NewInt(0))
		require.NoError(t, err)
		assert.Zero(t, out.Sign())
	})

	t.Run("single token exit and its exact out inverse", func(t *testing.T) {
		out, err := p.RemoveLiquiditySingleTokenExactIn(1, one)
		require.NoError(t, err)
		assert.Equal(t, 1, out.Sign())

		bptIn, err := p.RemoveLiquiditySingleTokenExactOut(1, out)
		require.NoError(t, err)
		// the exact out path grosses the fee up rather than netting it, so it
		// charges slightly more bpt
		diff := new(big.Int).Sub(bptIn, one)
		assert.GreaterOrEqual(t, diff.Sign(), 0)
		assert.LessOrEqual(t, diff.CmpAbs(newBigIntFromString("100000000000000")), 0, "bpt in %s", bptIn)
	})

	t.Run("single token join costs more than it returns", func(t *testing.T) {
		in, err := p.AddLiquiditySingleTokenExactOut(0, one)
		require.NoError(t, err)
		out, err := p.RemoveLiquiditySingleTokenExactIn(0, one)
		require.NoError(t, err)
		assert.Equal(t, 1, in.Cmp(out))
	})

	t.Run("unbalanced join mints bpt", func(t *testing.T) {
		bpt, err := p.AddLiquidityUnbalanced([]*big.Int{newBigIntFromString("10000000000000000000"), big.NewInt(0)})
		require.NoError(t, err)
		assert.Equal(t, 1, bpt.Sign())
	})

	t.Run("withdrawing the whole balance", func(t *testing.T) {
		_, err := p.RemoveLiquidityUnbalanced([]*big.Int{big.NewInt(0), newBigIntFromString("10000000000000000000")})
		assert.ErrorIs(t, err, poolerrors.ErrInsufficientLiquidity)
	})

	t.Run("bad token index", func(t *testing.T) {
		_, err := p.RemoveLiquiditySingleTokenExactIn(2, one)
		assert.ErrorIs(t, err, poolerrors.ErrInvalidInput)
	})

	t.Run("wrong amount count", func(t *testing.T) {
		_, err := p.AddLiquidityUnbalanced([]*big.Int{one})
		assert.ErrorIs(t, err, poolerrors.ErrInvalidInput)
	})
}

func TestAddLiquidityInit(t *testing.T) {
	raw := rawPool8020()
	raw.TotalShares = "0"
	raw.Tokens[0].Weight, raw.Tokens[1].Weight = "0.5", "0.5"
	p := mustPool(t, raw)

	hundred := newBigIntFromString("100000000000000000000")
	bpt, err := p.AddLiquidityInit([]*big.Int{hundred, hundred})
	require.NoError(t, err)
	// invariant 100 * 2 tokens, less the locked minimum
	upper := new(big.Int).Sub(newBigIntFromString("200000000000000000000"), MinimumBpt)
	assert.LessOrEqual(t, bpt.Cmp(upper), 0)
	assert.Equal(t, 1, bpt.Cmp(newBigIntFromString("199999990000000000000")))

	_, err = p.AddLiquidityInit([]*big.Int{hundred, big.NewInt(0)})
	assert.ErrorIs(t, err, poolerrors.ErrDegenerateInput)

	_, err = mustPool(t, rawPool8020()).AddLiquidityInit([]*big.Int{hundred, hundred})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestAddLiquidityUnbalancedBeforeInit(t *testing.T) {
	raw := rawPool8020()
	raw.TotalShares = "0"
	p := mustPool(t, raw)
	hundred := newBigIntFromString("100000000000000000000")

	testCases := []struct {
		name      string
		amountsIn []*big.Int
		wantErr   error
	}{
		{name: "every token", amountsIn: []*big.Int{hundred, hundred}, wantErr: pools.ErrNotInitialized},
		{name: "one token", amountsIn: []*big.Int{big.NewInt(0), hundred}, wantErr: pools.ErrNotInitialized},
		{name: "nothing", amountsIn: pools.Zeros(2)},
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
	assert.True(t, f.IsPoolForFactory(rawPool8020()))
	raw := rawPool8020()
	raw.PoolType = "Stable"
	assert.False(t, f.IsPoolForFactory(raw))

	raw = rawPool8020()
	raw.Tokens = raw.Tokens[:1]
	p, err := f.Create(1, raw)
	assert.Error(t, err)
	assert.Nil(t, p)
}
