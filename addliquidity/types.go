// Package addliquidity queries joins against a parsed pool and builds the
// slippage bounded Vault joinPool call from the result.
package addliquidity

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

// Kind selects the join flavour.
type Kind int

const (
	// Unbalanced deposits exact token amounts for a computed BPT out.
	Unbalanced Kind = iota
	// SingleToken deposits one token for an exact BPT out.
	SingleToken
	// Proportional deposits every token pro rata for an exact BPT out.
	Proportional
	// Init seeds an empty pool.
	Init
)

func (k Kind) String() string {
	switch k {
	case Unbalanced:
		return "unbalanced"
	case SingleToken:
		return "single_token"
	case Proportional:
		return "proportional"
	case Init:
		return "init"
	default:
		return "unknown"
	}
}

// ExactIn reports whether the caller fixes the amounts in.
func (k Kind) ExactIn() bool {
	return k == Unbalanced || k == Init
}

// Base holds the fields every join input carries.
type Base struct {
	ChainID uint64
	// UseNativeAsset pays the chain's wrapped native token share in the
	// native coin.
	UseNativeAsset bool
}

// Input is one of UnbalancedInput, SingleTokenInput, ProportionalInput or
// InitInput.
type Input interface {
	Kind() Kind
	base() Base
}

// UnbalancedInput deposits exact amounts. Pool tokens left out deposit zero.
type UnbalancedInput struct {
	Base
	AmountsIn []token.InputAmount
}

// SingleTokenInput mints exactly BptOut by depositing TokenIn only.
type SingleTokenInput struct {
	Base
	BptOut  token.InputAmount
	TokenIn common.Address
}

// ProportionalInput mints exactly BptOut by depositing every token pro rata.
type ProportionalInput struct {
	Base
	BptOut token.InputAmount
}

// InitInput seeds the pool; every pool token must be given.
type InitInput struct {
	Base
	AmountsIn []token.InputAmount
}

func (UnbalancedInput) Kind() Kind   { return Unbalanced }
func (SingleTokenInput) Kind() Kind  { return SingleToken }
func (ProportionalInput) Kind() Kind { return Proportional }
func (InitInput) Kind() Kind         { return Init }

func (i UnbalancedInput) base() Base   { return i.Base }
func (i SingleTokenInput) base() Base  { return i.Base }
func (i ProportionalInput) base() Base { return i.Base }
func (i InitInput) base() Base         { return i.Base }

// QueryOutput is the simulated result of a join. AmountsIn follow pool
// token order; TokenInIndex is -1 unless Kind is SingleToken.
type QueryOutput struct {
	Kind           Kind
	ChainID        uint64
	PoolID         common.Hash
	PoolAddress    common.Address
	PoolType       pools.Type
	Tokens         []token.Token
	BptOut         token.Amount
	AmountsIn      []token.Amount
	TokenInIndex   int
	UseNativeAsset bool
}

// BuildInput carries what the call needs beyond the query result.
type BuildInput struct {
	Query    QueryOutput
	Slippage slippage.Slippage
	Sender   common.Address
	// Recipient defaults to Sender.
	Recipient           common.Address
	FromInternalBalance bool
}

// Call is a ready to submit joinPool transaction.
type Call struct {
	To           common.Address
	CallData     []byte
	Value        *big.Int
	MinBptOut    *big.Int
	MaxAmountsIn []*big.Int
}
