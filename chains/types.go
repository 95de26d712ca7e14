package chains

import (
	"fmt"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/ethereum/go-ethereum/common"
)

const (
	Mainnet   uint64 = 1
	Optimism  uint64 = 10
	Gnosis    uint64 = 100
	Polygon   uint64 = 137
	Fantom    uint64 = 250
	ZkEVM     uint64 = 1101
	Base      uint64 = 8453
	Arbitrum  uint64 = 42161
	Avalanche uint64 = 43114
)

var (
	// DefaultVault is the Balancer V2 Vault deployment shared by most chains.
	DefaultVault = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")

	// NativeAsset is the placeholder address the Vault reads as the chain's native coin.
	NativeAsset = common.Address{}

	ErrUnknownChain = fmt.Errorf("%w: unknown chain", poolerrors.ErrInvalidInput)
)

// Chain carries the per-network addresses the call builders need.
type Chain struct {
	ID            uint64
	Name          string
	Vault         common.Address
	WrappedNative common.Address
}

var registry = map[uint64]Chain{
	Mainnet:   {ID: Mainnet, Name: "mainnet", Vault: DefaultVault, WrappedNative: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")},
	Optimism:  {ID: Optimism, Name: "optimism", Vault: DefaultVault, WrappedNative: common.HexToAddress("0x4200000000000000000000000000000000000006")},
	Gnosis:    {ID: Gnosis, Name: "gnosis", Vault: DefaultVault, WrappedNative: common.HexToAddress("0xe91D153E0b41518A2Ce8Dd3D7944Fa863463a97d")},
	Polygon:   {ID: Polygon, Name: "polygon", Vault: DefaultVault, WrappedNative: common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")},
	Fantom:    {ID: Fantom, Name: "fantom", Vault: common.HexToAddress("0x20dd72Ed959b6147912C2e529F0a0C651c33c9ce"), WrappedNative: common.HexToAddress("0x21be370D5312f44cB42ce377BC9b8a0cEF1A4C83")},
	ZkEVM:     {ID: ZkEVM, Name: "zkevm", Vault: DefaultVault, WrappedNative: common.HexToAddress("0x4F9A0e7FD2Bf6067db6994CF12E4495Df938E6e9")},
	Base:      {ID: Base, Name: "base", Vault: DefaultVault, WrappedNative: common.HexToAddress("0x4200000000000000000000000000000000000006")},
	Arbitrum:  {ID: Arbitrum, Name: "arbitrum", Vault: DefaultVault, WrappedNative: common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")},
	Avalanche: {ID: Avalanche, Name: "avalanche", Vault: DefaultVault, WrappedNative: common.HexToAddress("0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7")},
}

// Get returns the known deployment for chainID.
func Get(chainID uint64) (Chain, error) {
	c, ok := registry[chainID]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %d", ErrUnknownChain, chainID)
	}
	return c, nil
}

// VaultAddress returns the Vault for chainID, falling back to the default deployment.
func VaultAddress(chainID uint64) common.Address {
	if c, ok := registry[chainID]; ok {
		return c.Vault
	}
	return DefaultVault
}

// IsWrappedNative reports whether addr is the wrapped native token of chainID.
func IsWrappedNative(chainID uint64, addr common.Address) bool {
	c, ok := registry[chainID]
	return ok && c.WrappedNative == addr
}

// ErrNoWrappedNative is returned when the native coin is requested for a
// pool that does not hold the chain's wrapped native token.
var ErrNoWrappedNative = fmt.Errorf("%w: pool does not hold the wrapped native token", poolerrors.ErrInvalidInput)

// NativeAssets returns assets with the chain's wrapped native token replaced
// by NativeAsset, and the position it was found at.
func NativeAssets(chainID uint64, assets []common.Address) ([]common.Address, int, error) {
	out := make([]common.Address, len(assets))
	copy(out, assets)
	for i, a := range out {
		if IsWrappedNative(chainID, a) {
			out[i] = NativeAsset
			return out, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w on chain %d", ErrNoWrappedNative, chainID)
}
