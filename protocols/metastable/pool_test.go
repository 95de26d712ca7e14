package metastable

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
	wsteth = common.HexToAddress("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0")
	weth   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

func rawWstethPool() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0x32296969ef14eb0c6d29669c550d4a0449130230000200000000000000000080"),
		Address:     common.HexToAddress("0x32296969Ef14EB0c6d29669C550D4a0449130230"),
		PoolType:    "MetaStable",
		SwapFee:     "0.0004",
		TotalShares: "2100",
		Amp:         "50",
		Tokens: []pools.RawPoolToken{
			{Address: wsteth, Index: 0, Decimals: 18, Symbol: "wstETH", Balance: "1000", PriceRate: "1.1"},
			{Address: weth, Index: 1, Decimals: 18, Symbol: "WETH", Balance: "1100"},
		},
	}
}

func TestNewPool(t *testing.T) {
	p, err := NewPool(1, rawWstethPool())
	require.NoError(t, err)
	assert.Equal(t, pools.TypeMetaStable, p.Type())
	assert.Equal(t, "1100000000000000000", p.ScalingFactors()[0].String())
	assert.Equal(t, "1000000000000000000", p.ScalingFactors()[1].String())

	raw := rawWstethPool()
	raw.Tokens[0].PriceRate = "0"
	_, err = NewPool(1, raw)
	assert.ErrorIs(t, err, pools.ErrInvalidRawPool)
}

func TestRateScaledMath(t *testing.T) {
	p, err := NewPool(1, rawWstethPool())
	require.NoError(t, err)

	inv, err := p.Invariant(p.Balances())
	require.NoError(t, err)
	// balanced once rates apply
	assert.Equal(t, "2200000000000000000000", inv.String())

	price, err := p.SpotPrice(weth, wsteth)
	require.NoError(t, err)
	assert.Equal(t, "1100000000000000000", price.String())

	out, err := p.SwapGivenIn(wsteth, weth, big.NewInt(1e18))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Cmp(big.NewInt(1_099_000_000_000_000_000)))
	assert.Equal(t, -1, out.Cmp(big.NewInt(1_100_000_000_000_000_000)))

	_, err = p.AddLiquidityProportional(big.NewInt(1e18))
	assert.ErrorIs(t, err, poolerrors.ErrUnsupportedOperation)
}

func TestFactory(t *testing.T) {
	f := Factory{}
	assert.True(t, f.IsPoolForFactory(rawWstethPool()))
	raw := rawWstethPool()
	raw.PoolType = "Stable"
	assert.False(t, f.IsPoolForFactory(raw))

	p, err := f.Create(1, rawWstethPool())
	require.NoError(t, err)
	assert.Equal(t, pools.TypeMetaStable, p.Type())
}
