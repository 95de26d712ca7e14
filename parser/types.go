package parser

import "github.com/defistate/balancer-sdk-go/pools"

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Factory classifies raw pool records and builds the typed pool for the ones
// it recognises.
type Factory interface {
	IsPoolForFactory(raw pools.RawPool) bool
	Create(chainID uint64, raw pools.RawPool) (pools.Pool, error)
}
