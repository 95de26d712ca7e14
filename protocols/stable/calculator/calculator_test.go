package stable

import (
	"math/big"
	"testing"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBigIntFromString(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("failed to set string for big.Int")
	}
	return n
}

var amp200 = big.NewInt(200_000)

func balanced(n int, x string) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = newBigIntFromString(x)
	}
	return out
}

func TestCalculateInvariant(t *testing.T) {
	testCases := []struct {
		name     string
		balances []*big.Int
		check    func(t *testing.T, inv *big.Int)
	}{
		{
			name:     "balanced pool equals the sum",
			balances: balanced(3, "1000000000000000000000000"),
			check: func(t *testing.T, inv *big.Int) {
				assert.Equal(t, "3000000000000000000000000", inv.String())
			},
		},
		{
			name:     "two tokens balanced",
			balances: balanced(2, "12345000000000000000000"),
			check: func(t *testing.T, inv *big.Int) {
				assert.Equal(t, "24690000000000000000000", inv.String())
			},
		},
		{
			name: "imbalance lowers the invariant below the sum",
			balances: []*big.Int{
				newBigIntFromString("2000000000000000000000000"),
				newBigIntFromString("1000000000000000000000000"),
				newBigIntFromString("1000000000000000000000000"),
			},
			check: func(t *testing.T, inv *big.Int) {
				assert.Equal(t, -1, inv.Cmp(newBigIntFromString("4000000000000000000000000")))
				assert.Equal(t, 1, inv.Cmp(newBigIntFromString("3900000000000000000000000")))
			},
		},
		{
			name:     "empty pool",
			balances: balanced(2, "0"),
			check: func(t *testing.T, inv *big.Int) {
				assert.Zero(t, inv.Sign())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inv, err := CalculateInvariant(amp200, tc.balances)
			require.NoError(t, err)
			tc.check(t, inv)
		})
	}

	t.Run("one empty balance is degenerate", func(t *testing.T) {
		_, err := CalculateInvariant(amp200, []*big.Int{newBigIntFromString("1000000000000000000"), big.NewInt(0)})
		assert.ErrorIs(t, err, poolerrors.ErrDegenerateInput)
	})
}

func TestGetTokenBalanceGivenInvariant(t *testing.T) {
	balances := balanced(3, "1000000000000000000000000")
	inv, err := CalculateInvariant(amp200, balances)
	require.NoError(t, err)

	y, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp200, balances, inv, 1)
	require.NoError(t, err)
	diff := new(big.Int).Sub(y, balances[1])
	assert.LessOrEqual(t, diff.CmpAbs(big.NewInt(1)), 0, "got %s", y)

	_, err = GetTokenBalanceGivenInvariantAndAllOtherBalances(amp200, balances, big.NewInt(0), 1)
	assert.ErrorIs(t, err, ErrZeroInvariant)
}

func TestSwapMath(t *testing.T) {
	balances := balanced(2, "1000000000000000000000000")
	inv, err := CalculateInvariant(amp200, balances)
	require.NoError(t, err)
	amount := newBigIntFromString("1000000000000000000000")

	out, err := CalcOutGivenIn(amp200, balances, 0, 1, amount, inv)
	require.NoError(t, err)
	// close to 1:1 at high amplification, never above
	assert.Equal(t, -1, out.Cmp(amount))
	assert.Equal(t, 1, out.Cmp(newBigIntFromString("999900000000000000000")))

	in, err := CalcInGivenOut(amp200, balances, 0, 1, out, inv)
	require.NoError(t, err)
	diff := new(big.Int).Sub(in, amount)
	assert.True(t, diff.Sign() >= 0 && diff.Cmp(big.NewInt(10_000)) <= 0, "got %s", in)

	_, err = CalcInGivenOut(amp200, balances, 0, 1, balances[1], inv)
	assert.ErrorIs(t, err, poolerrors.ErrInsufficientLiquidity)
}

func TestCalcOutGivenInBeyondBalance(t *testing.T) {
	// each invariant belongs to a pool larger than the balances passed
	testCases := []struct {
		name     string
		balances []*big.Int
		stale    []*big.Int
		amountIn *big.Int
	}{
		{
			name:     "two tokens",
			balances: balanced(2, "1000000000000000000000000"),
			stale:    balanced(2, "3000000000000000000000000"),
			amountIn: newBigIntFromString("1000000000000000000"),
		},
		{
			name:     "three tokens, dust in",
			balances: balanced(3, "1000000000000000000000000"),
			stale:    balanced(3, "1000001000000000000000000"),
			amountIn: big.NewInt(1),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inv, err := CalculateInvariant(amp200, tc.stale)
			require.NoError(t, err)
			out, err := CalcOutGivenIn(amp200, tc.balances, 0, 1, tc.amountIn, inv)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrOutExceedsBalance)
			assert.ErrorIs(t, err, poolerrors.ErrInsufficientLiquidity)
		})
	}
}

func TestSpotPrice(t *testing.T) {
	price, err := SpotPrice(amp200, balanced(3, "1000000000000000000000000"), 0, 1, newBigIntFromString("3000000000000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", price.String())

	skewed := []*big.Int{
		newBigIntFromString("2000000000000000000000000"),
		newBigIntFromString("1000000000000000000000000"),
	}
	inv, err := CalculateInvariant(amp200, skewed)
	require.NoError(t, err)
	abundantIn, err := SpotPrice(amp200, skewed, 0, 1, inv)
	require.NoError(t, err)
	scarceIn, err := SpotPrice(amp200, skewed, 1, 0, inv)
	require.NoError(t, err)
	assert.Equal(t, 1, abundantIn.Cmp(newBigIntFromString("1000000000000000000")))
	assert.Equal(t, -1, scarceIn.Cmp(newBigIntFromString("1000000000000000000")))
}

func TestLiquidityMath(t *testing.T) {
	balances := balanced(2, "1000000000000000000000000")
	supply := newBigIntFromString("2000000000000000000000000")
	inv, err := CalculateInvariant(amp200, balances)
	require.NoError(t, err)
	fee := newBigIntFromString("100000000000000")
	amount := newBigIntFromString("1000000000000000000000")

	t.Run("proportional deposit is fee free", func(t *testing.T) {
		bpt, err := CalcBptOutGivenExactTokensIn(amp200, balances, []*big.Int{amount, amount}, supply, inv, fee)
		require.NoError(t, err)
		diff := new(big.Int).Sub(bpt, newBigIntFromString("2000000000000000000000"))
		assert.LessOrEqual(t, diff.CmpAbs(big.NewInt(1_000_000)), 0, "got %s", bpt)
	})

	t.Run("single token deposit pays a fee", func(t *testing.T) {
		bpt, err := CalcBptOutGivenExactTokensIn(amp200, balances, []*big.Int{amount, big.NewInt(0)}, supply, inv, fee)
		require.NoError(t, err)
		assert.Equal(t, -1, bpt.Cmp(amount))
		assert.Equal(t, 1, bpt.Cmp(newBigIntFromString("999000000000000000000")))
	})

	t.Run("single token exit", func(t *testing.T) {
		out, err := CalcTokenOutGivenExactBptIn(amp200, balances, 0, amount, supply, inv, fee)
		require.NoError(t, err)
		assert.Equal(t, -1, out.Cmp(amount))
		assert.Equal(t, 1, out.Cmp(newBigIntFromString("999000000000000000000")))

		_, err = CalcTokenOutGivenExactBptIn(amp200, balances, 0, supply, supply, inv, fee)
		assert.ErrorIs(t, err, poolerrors.ErrInsufficientLiquidity)
	})

	t.Run("exact out burns more than exact in returns", func(t *testing.T) {
		in, err := CalcTokenInGivenExactBptOut(amp200, balances, 0, amount, supply, inv, fee)
		require.NoError(t, err)
		bptIn, err := CalcBptInGivenExactTokensOut(amp200, balances, []*big.Int{amount, big.NewInt(0)}, supply, inv, fee)
		require.NoError(t, err)
		assert.Equal(t, 1, in.Cmp(amount))
		assert.Equal(t, 1, bptIn.Cmp(amount))
	})
}
