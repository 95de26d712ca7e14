package vault

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const vaultABIJSON = `[
  {
    "inputs": [
      {"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
      {"internalType": "address", "name": "sender", "type": "address"},
      {"internalType": "address", "name": "recipient", "type": "address"},
      {
        "components": [
          {"internalType": "contract IAsset[]", "name": "assets", "type": "address[]"},
          {"internalType": "uint256[]", "name": "maxAmountsIn", "type": "uint256[]"},
          {"internalType": "bytes", "name": "userData", "type": "bytes"},
          {"internalType": "bool", "name": "fromInternalBalance", "type": "bool"}
        ],
        "internalType": "struct IVault.JoinPoolRequest",
        "name": "request",
        "type": "tuple"
      }
    ],
    "name": "joinPool",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
      {"internalType": "address", "name": "sender", "type": "address"},
      {"internalType": "address payable", "name": "recipient", "type": "address"},
      {
        "components": [
          {"internalType": "contract IAsset[]", "name": "assets", "type": "address[]"},
          {"internalType": "uint256[]", "name": "minAmountsOut", "type": "uint256[]"},
          {"internalType": "bytes", "name": "userData", "type": "bytes"},
          {"internalType": "bool", "name": "toInternalBalance", "type": "bool"}
        ],
        "internalType": "struct IVault.ExitPoolRequest",
        "name": "request",
        "type": "tuple"
      }
    ],
    "name": "exitPool",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {
        "components": [
          {"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
          {"internalType": "enum IVault.SwapKind", "name": "kind", "type": "uint8"},
          {"internalType": "contract IAsset", "name": "assetIn", "type": "address"},
          {"internalType": "contract IAsset", "name": "assetOut", "type": "address"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"},
          {"internalType": "bytes", "name": "userData", "type": "bytes"}
        ],
        "internalType": "struct IVault.SingleSwap",
        "name": "singleSwap",
        "type": "tuple"
      },
      {
        "components": [
          {"internalType": "address", "name": "sender", "type": "address"},
          {"internalType": "bool", "name": "fromInternalBalance", "type": "bool"},
          {"internalType": "address payable", "name": "recipient", "type": "address"},
          {"internalType": "bool", "name": "toInternalBalance", "type": "bool"}
        ],
        "internalType": "struct IVault.FundManagement",
        "name": "funds",
        "type": "tuple"
      },
      {"internalType": "uint256", "name": "limit", "type": "uint256"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"}
    ],
    "name": "swap",
    "outputs": [{"internalType": "uint256", "name": "amountCalculated", "type": "uint256"}],
    "stateMutability": "payable",
    "type": "function"
  }
]`

var (
	vaultABI     abi.ABI
	vaultABIOnce sync.Once
	vaultABIErr  error
)

// ABI returns the parsed subset of the Vault ABI used for joins, exits and swaps.
func ABI() (abi.ABI, error) {
	vaultABIOnce.Do(func() {
		vaultABI, vaultABIErr = abi.JSON(strings.NewReader(vaultABIJSON))
	})
	return vaultABI, vaultABIErr
}
