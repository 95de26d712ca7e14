// Package poolstest provides raw pool records for tests.
package poolstest

import (
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/ethereum/go-ethereum/common"
)

var (
	BAL    = common.HexToAddress("0xba100000625a3754423978a60c9317c58a424e3D")
	WETH   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	USDC   = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	DAI    = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	USDT   = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	WstETH = common.HexToAddress("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0")
	WaDAI  = common.HexToAddress("0x02d60b84491589974263d922D9cC7a3152618Ef6")
	BbaDAI = common.HexToAddress("0x804CdB9116a10bB78768D3252355a1b18067bF8f")
)

// Weighted8020 is an 80/20 BAL/WETH pool with 796.2 shares outstanding.
func Weighted8020() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014"),
		Address:     common.HexToAddress("0x5c6Ee304399DBdB9C8Ef030aB642B10820DB8F56"),
		PoolType:    "Weighted",
		SwapFee:     "0.01",
		TotalShares: "796.2",
		Tokens: []pools.RawPoolToken{
			{Address: BAL, Index: 0, Decimals: 18, Symbol: "BAL", Balance: "1000", Weight: "0.8"},
			{Address: WETH, Index: 1, Decimals: 18, Symbol: "WETH", Balance: "10", Weight: "0.2"},
		},
	}
}

// WeightedUSDC is a 50/50 USDC/WETH pool.
func WeightedUSDC() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0x96646936b91d6b9d7d0c47c496afbf3d6ec7b6f8000200000000000000000019"),
		Address:     common.HexToAddress("0x96646936b91d6B9D7D0c47C496AfBF3D6ec7B6f8"),
		PoolType:    "Weighted",
		SwapFee:     "0.003",
		TotalShares: "20000",
		Tokens: []pools.RawPoolToken{
			{Address: USDC, Index: 0, Decimals: 6, Symbol: "USDC", Balance: "200000", Weight: "0.5"},
			{Address: WETH, Index: 1, Decimals: 18, Symbol: "WETH", Balance: "100", Weight: "0.5"},
		},
	}
}

// StableThreePool is a balanced DAI/USDC/USDT stable pool.
func StableThreePool() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0x06df3b2bbb68adc8b0e302443692037ed9f91b42000000000000000000000063"),
		Address:     common.HexToAddress("0x06Df3b2bbB68adc8B0e302443692037ED9f91b42"),
		PoolType:    "Stable",
		SwapFee:     "0.0001",
		TotalShares: "3000000",
		Amp:         "200",
		Tokens: []pools.RawPoolToken{
			{Address: DAI, Index: 0, Decimals: 18, Symbol: "DAI", Balance: "1000000"},
			{Address: USDC, Index: 1, Decimals: 6, Symbol: "USDC", Balance: "1000000"},
			{Address: USDT, Index: 2, Decimals: 6, Symbol: "USDT", Balance: "1000000"},
		},
	}
}

// MetaStableWstETH is a wstETH/WETH pool with a 1.1 rate on wstETH.
func MetaStableWstETH() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0x32296969ef14eb0c6d29669c550d4a0449130230000200000000000000000080"),
		Address:     common.HexToAddress("0x32296969Ef14EB0c6d29669C550D4a0449130230"),
		PoolType:    "MetaStable",
		SwapFee:     "0.0004",
		TotalShares: "2100",
		Amp:         "50",
		Tokens: []pools.RawPoolToken{
			{Address: WstETH, Index: 0, Decimals: 18, Symbol: "wstETH", Balance: "1000", PriceRate: "1.1"},
			{Address: WETH, Index: 1, Decimals: 18, Symbol: "WETH", Balance: "1100"},
		},
	}
}

// AaveLinear is a DAI linear pool with its BPT at index 1.
func AaveLinear() pools.RawPool {
	return pools.RawPool{
		ID:           common.HexToHash("0x804cdb9116a10bb78768d3252355a1b18067bf8f0000000000000000000000fb"),
		Address:      BbaDAI,
		PoolType:     "AaveLinear",
		SwapFee:      "0.0002",
		TotalShares:  "1525000",
		MainIndex:    0,
		WrappedIndex: 2,
		LowerTarget:  "500000",
		UpperTarget:  "2000000",
		Tokens: []pools.RawPoolToken{
			{Address: DAI, Index: 0, Decimals: 18, Symbol: "DAI", Balance: "1000000"},
			{Address: BbaDAI, Index: 1, Decimals: 18, Symbol: "bb-a-DAI", Balance: "5192296858534827"},
			{Address: WaDAI, Index: 2, Decimals: 18, Symbol: "waDAI", Balance: "500000", PriceRate: "1.05"},
		},
	}
}

// Gyro2 is a symmetric 2-CLP over the price range [0.25, 4].
func Gyro2() pools.RawPool {
	return pools.RawPool{
		ID:          common.HexToHash("0xdac42eeb17758daa38caf9a3540c808247527ae3000200000000000000000a2b"),
		Address:     common.HexToAddress("0xdAC42eeb17758Daa38CAF9A3540c808247527aE3"),
		PoolType:    "Gyro2",
		SwapFee:     "0.001",
		TotalShares: "2000",
		SqrtAlpha:   "0.5",
		SqrtBeta:    "2",
		Tokens: []pools.RawPoolToken{
			{Address: WstETH, Index: 0, Decimals: 18, Symbol: "wstETH", Balance: "1000"},
			{Address: WETH, Index: 1, Decimals: 18, Symbol: "WETH", Balance: "1000"},
		},
	}
}

// All returns one record of every supported variant.
func All() []pools.RawPool {
	return []pools.RawPool{Weighted8020(), WeightedUSDC(), StableThreePool(), MetaStableWstETH(), AaveLinear(), Gyro2()}
}
