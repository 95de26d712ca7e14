// Package poolerrors defines the failure taxonomy shared by the pool math,
// the parser and the query engines.
package poolerrors

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidInput is returned for malformed or inconsistent operation input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedOperation is returned when a pool variant lacks the requested capability.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrUnsupportedPair is returned when a token is not part of the pool.
	ErrUnsupportedPair = errors.New("unsupported token pair")
	// ErrInsufficientLiquidity is returned when the pool cannot serve the requested amount.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrDegenerateInput is returned when the math is undefined for the given state, e.g. a division by a zero balance.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrMathOverflow is returned when a computation leaves the 256-bit unsigned range or fails to converge.
	ErrMathOverflow = errors.New("math overflow")
)

// OperationError attaches the operation, its kind and the pool to a failure.
type OperationError struct {
	Op     string
	Kind   string
	PoolID common.Hash
	Err    error
}

func (e *OperationError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("%s pool %s: %v", e.Op, e.PoolID.Hex(), e.Err)
	}
	return fmt.Sprintf("%s %s pool %s: %v", e.Op, e.Kind, e.PoolID.Hex(), e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Wrap returns err annotated with the operation context. A nil err stays nil.
func Wrap(op, kind string, poolID common.Hash, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Kind: kind, PoolID: poolID, Err: err}
}

// Relabel is Wrap for errors coming back from another engine: an existing
// OperationError is replaced rather than nested.
func Relabel(op, kind string, poolID common.Hash, err error) error {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		err = opErr.Err
	}
	return Wrap(op, kind, poolID, err)
}

// Reason maps an error onto a stable label suitable for metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnsupportedOperation):
		return "unsupported_operation"
	case errors.Is(err, ErrUnsupportedPair):
		return "unsupported_pair"
	case errors.Is(err, ErrInsufficientLiquidity):
		return "insufficient_liquidity"
	case errors.Is(err, ErrDegenerateInput):
		return "degenerate_input"
	case errors.Is(err, ErrMathOverflow):
		return "math_overflow"
	default:
		return "unknown"
	}
}
