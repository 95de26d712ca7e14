package chains

import (
	"testing"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	c, err := Get(Mainnet)
	require.NoError(t, err)
	assert.Equal(t, DefaultVault, c.Vault)
	assert.True(t, IsWrappedNative(Mainnet, common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")))

	_, err = Get(999999)
	assert.ErrorIs(t, err, poolerrors.ErrInvalidInput)
}

func TestVaultAddress(t *testing.T) {
	assert.Equal(t, common.HexToAddress("0x20dd72Ed959b6147912C2e529F0a0C651c33c9ce"), VaultAddress(Fantom))
	assert.Equal(t, DefaultVault, VaultAddress(999999))
	assert.False(t, IsWrappedNative(999999, common.Address{}))
}

func TestNativeAssets(t *testing.T) {
	bal := common.HexToAddress("0xba100000625a3754423978a60c9317c58a424e3D")
	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	assets := []common.Address{bal, weth}

	got, idx, err := NativeAssets(Mainnet, assets)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []common.Address{bal, NativeAsset}, got)
	assert.Equal(t, weth, assets[1], "input must not be modified")

	_, idx, err = NativeAssets(Mainnet, []common.Address{bal})
	assert.ErrorIs(t, err, ErrNoWrappedNative)
	assert.Equal(t, -1, idx)
}
