// Package removeliquidity queries exits against a parsed pool and builds the
// slippage bounded Vault exitPool call from the result.
package removeliquidity

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

// Kind selects the removal flavour.
type Kind int

const (
	// SingleTokenExactIn burns exact BPT for one token out.
	SingleTokenExactIn Kind = iota
	// SingleTokenExactOut burns the BPT needed for an exact amount of one token.
	SingleTokenExactOut
	// Proportional burns exact BPT for every token pro rata.
	Proportional
	// Custom burns the BPT needed for exact amounts of any tokens.
	Custom
)

func (k Kind) String() string {
	switch k {
	case SingleTokenExactIn:
		return "single_token_exact_in"
	case SingleTokenExactOut:
		return "single_token_exact_out"
	case Proportional:
		return "proportional"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// ExactIn reports whether the caller fixes the BPT in.
func (k Kind) ExactIn() bool {
	return k == SingleTokenExactIn || k == Proportional
}

// Base holds the fields every removal input carries.
type Base struct {
	ChainID uint64
	// ReceiveNativeAsset pays the chain's wrapped native token share out in
	// the native coin.
	ReceiveNativeAsset bool
}

// Input is one of SingleTokenExactInInput, SingleTokenExactOutInput,
// ProportionalInput or CustomInput.
type Input interface {
	Kind() Kind
	base() Base
}

// SingleTokenExactInInput burns exactly BptIn for TokenOut only.
type SingleTokenExactInInput struct {
	Base
	BptIn    token.InputAmount
	TokenOut common.Address
}

// SingleTokenExactOutInput withdraws exactly AmountOut of one token.
type SingleTokenExactOutInput struct {
	Base
	AmountOut token.InputAmount
}

// ProportionalInput burns exactly BptIn for every token pro rata.
type ProportionalInput struct {
	Base
	BptIn token.InputAmount
}

// CustomInput withdraws exact amounts. Pool tokens left out withdraw zero.
type CustomInput struct {
	Base
	AmountsOut []token.InputAmount
}

func (SingleTokenExactInInput) Kind() Kind  { return SingleTokenExactIn }
func (SingleTokenExactOutInput) Kind() Kind { return SingleTokenExactOut }
func (ProportionalInput) Kind() Kind        { return Proportional }
func (CustomInput) Kind() Kind              { return Custom }

func (i SingleTokenExactInInput) base() Base  { return i.Base }
func (i SingleTokenExactOutInput) base() Base { return i.Base }
func (i ProportionalInput) base() Base        { return i.Base }
func (i CustomInput) base() Base              { return i.Base }

// QueryOutput is the simulated result of a removal. AmountsOut follow pool
// token order; TokenOutIndex is -1 unless a single token is withdrawn.
type QueryOutput struct {
	Kind               Kind
	ChainID            uint64
	PoolID             common.Hash
	PoolAddress        common.Address
	PoolType           pools.Type
	Tokens             []token.Token
	BptIn              token.Amount
	AmountsOut         []token.Amount
	TokenOutIndex      int
	ReceiveNativeAsset bool
}

// BuildInput carries what the call needs beyond the query result.
type BuildInput struct {
	Query    QueryOutput
	Slippage slippage.Slippage
	Sender   common.Address
	// Recipient defaults to Sender.
	Recipient         common.Address
	ToInternalBalance bool
}

// Call is a ready to submit exitPool transaction.
type Call struct {
	To            common.Address
	CallData      []byte
	Value         *big.Int
	MaxBptIn      *big.Int
	MinAmountsOut []*big.Int
}
