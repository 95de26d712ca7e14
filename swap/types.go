// Package swap queries single pool swaps and builds the Vault swap call.
package swap

import (
	"math/big"

	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/slippage"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Kind is the swap direction.
type Kind int

const (
	// GivenIn fixes the amount in.
	GivenIn Kind = iota
	// GivenOut fixes the amount out.
	GivenOut
)

func (k Kind) String() string {
	switch k {
	case GivenIn:
		return "given_in"
	case GivenOut:
		return "given_out"
	default:
		return "unknown"
	}
}

// Input describes a swap. Amount is denominated in TokenIn for GivenIn and
// in TokenOut for GivenOut.
type Input struct {
	ChainID  uint64
	Kind     Kind
	TokenIn  common.Address
	TokenOut common.Address
	Amount   token.InputAmount
	// UseNativeAsset trades the native coin in place of the chain's wrapped
	// native token, on whichever side it appears.
	UseNativeAsset bool
}

// QueryOutput is the simulated result of a swap.
type QueryOutput struct {
	Kind           Kind
	ChainID        uint64
	PoolID         common.Hash
	PoolAddress    common.Address
	PoolType       pools.Type
	AmountIn       token.Amount
	AmountOut      token.Amount
	UseNativeAsset bool
}

// BuildInput carries what the call needs beyond the query result.
type BuildInput struct {
	Query    QueryOutput
	Slippage slippage.Slippage
	Sender   common.Address
	// Recipient defaults to Sender.
	Recipient common.Address
	// Deadline is a unix timestamp; nil never expires.
	Deadline *big.Int
}

// Call is a ready to submit swap transaction. Limit is the minimum amount
// out for GivenIn and the maximum amount in for GivenOut.
type Call struct {
	To       common.Address
	CallData []byte
	Value    *big.Int
	Limit    *big.Int
}
