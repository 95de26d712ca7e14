// Package exit offers the pool exit operations (single asset, proportional
// and exact out) on top of the removal engine, with their own logging and
// metrics.
package exit

import (
	"errors"
	"fmt"
	"time"

	"github.com/defistate/balancer-sdk-go/metrics"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/removeliquidity"
	"github.com/defistate/balancer-sdk-go/slippage"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Kind selects the exit flavour.
type Kind int

const (
	SingleAsset Kind = iota
	Proportional
	ExactOut
)

func (k Kind) String() string {
	switch k {
	case SingleAsset:
		return "single_asset"
	case Proportional:
		return "proportional"
	case ExactOut:
		return "exact_out"
	default:
		return "unknown"
	}
}

// Base holds the fields every exit input carries.
type Base struct {
	ChainID            uint64
	ReceiveNativeAsset bool
}

// Input is one of SingleAssetInput, ProportionalInput or ExactOutInput.
type Input interface {
	Kind() Kind
	removal() removeliquidity.Input
}

// SingleAssetInput burns exactly BptIn for TokenOut.
type SingleAssetInput struct {
	Base
	BptIn    token.InputAmount
	TokenOut common.Address
}

// ProportionalInput burns exactly BptIn for every token.
type ProportionalInput struct {
	Base
	BptIn token.InputAmount
}

// ExactOutInput withdraws exact amounts for the BPT they cost.
type ExactOutInput struct {
	Base
	AmountsOut []token.InputAmount
}

func (SingleAssetInput) Kind() Kind  { return SingleAsset }
func (ProportionalInput) Kind() Kind { return Proportional }
func (ExactOutInput) Kind() Kind     { return ExactOut }

func (b Base) removalBase() removeliquidity.Base {
	return removeliquidity.Base{ChainID: b.ChainID, ReceiveNativeAsset: b.ReceiveNativeAsset}
}

func (i SingleAssetInput) removal() removeliquidity.Input {
	return removeliquidity.SingleTokenExactInInput{Base: i.removalBase(), BptIn: i.BptIn, TokenOut: i.TokenOut}
}

func (i ProportionalInput) removal() removeliquidity.Input {
	return removeliquidity.ProportionalInput{Base: i.removalBase(), BptIn: i.BptIn}
}

func (i ExactOutInput) removal() removeliquidity.Input {
	return removeliquidity.CustomInput{Base: i.removalBase(), AmountsOut: i.AmountsOut}
}

// QueryOutput is the simulated result of an exit.
type QueryOutput struct {
	Kind Kind
	removeliquidity.QueryOutput
}

// BuildInput carries what the call needs beyond the query result.
type BuildInput struct {
	Query             QueryOutput
	Slippage          slippage.Slippage
	Sender            common.Address
	Recipient         common.Address
	ToInternalBalance bool
}

// Call is a ready to submit exitPool transaction.
type Call = removeliquidity.Call

const op = "exit"

var ErrUnknownInput = fmt.Errorf("%w: unknown exit input", poolerrors.ErrInvalidInput)

func poolID(p pools.Pool) common.Hash {
	if p == nil {
		return common.Hash{}
	}
	return p.ID()
}

// Compute simulates in against p.
func Compute(in Input, p pools.Pool) (QueryOutput, error) {
	if in == nil {
		return QueryOutput{}, poolerrors.Relabel(op, "unknown", poolID(p), ErrUnknownInput)
	}
	out, err := removeliquidity.Compute(in.removal(), p)
	if err != nil {
		return QueryOutput{}, poolerrors.Relabel(op, in.Kind().String(), poolID(p), err)
	}
	return QueryOutput{Kind: in.Kind(), QueryOutput: out}, nil
}

// BuildCall bounds the exit result and encodes the exitPool call. Single
// asset and proportional exits lower the amounts out; exact out exits raise
// the BPT in.
func BuildCall(in BuildInput) (Call, error) {
	call, err := removeliquidity.BuildCall(removeliquidity.BuildInput{
		Query:             in.Query.QueryOutput,
		Slippage:          in.Slippage,
		Sender:            in.Sender,
		Recipient:         in.Recipient,
		ToInternalBalance: in.ToInternalBalance,
	})
	if err != nil {
		return Call{}, poolerrors.Relabel(op, in.Query.Kind.String(), in.Query.PoolID, err)
	}
	return call, nil
}

// Config holds the dependencies of the engine.
type Config struct {
	Logger   Logger
	Registry prometheus.Registerer
}

func (c *Config) validate() error {
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	return nil
}

// Engine runs exit queries and builds their calls.
type Engine struct {
	logger  Logger
	metrics *metrics.Metrics
}

// New constructs an engine from a configuration, returning an error if the config is invalid.
func New(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		logger:  cfg.Logger,
		metrics: metrics.New(cfg.Registry, "exit"),
	}, nil
}

func (e *Engine) Query(in Input, p pools.Pool) (QueryOutput, error) {
	start := time.Now()
	kind, poolType := "unknown", "none"
	if in != nil {
		kind = in.Kind().String()
	}
	if p != nil {
		poolType = string(p.Type())
	}

	out, err := Compute(in, p)
	e.metrics.ObserveQuery(kind, poolType, start, err)
	if err != nil {
		e.logger.Debug("exit query rejected", "kind", kind, "poolType", poolType, "error", err)
		return QueryOutput{}, err
	}
	e.logger.Debug("exit queried", "kind", kind, "pool", out.PoolID.Hex(), "bptIn", out.BptIn.Raw().String())
	return out, nil
}

func (e *Engine) BuildCall(in BuildInput) (Call, error) {
	call, err := BuildCall(in)
	e.metrics.ObserveBuild(in.Query.Kind.String(), err)
	if err != nil {
		e.logger.Warn("exit call build failed", "kind", in.Query.Kind.String(), "error", err)
		return Call{}, err
	}
	e.logger.Info("exit call built", "kind", in.Query.Kind.String(), "pool", in.Query.PoolID.Hex(), "slippage", in.Slippage.String())
	return call, nil
}
