package removeliquidity

import (
	"errors"
	"time"

	"github.com/defistate/balancer-sdk-go/metrics"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/prometheus/client_golang/prometheus"
)

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

// Engine runs removal queries and builds their calls. It is safe for
// concurrent use.
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
		metrics: metrics.New(cfg.Registry, op),
	}, nil
}

// Query simulates in against p.
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
		e.logger.Debug("removal query rejected", "kind", kind, "poolType", poolType, "error", err)
		return QueryOutput{}, err
	}
	e.logger.Debug("removal queried",
		"kind", kind,
		"pool", out.PoolID.Hex(),
		"bptIn", out.BptIn.Raw().String(),
	)
	return out, nil
}

// BuildCall bounds and encodes a query result.
func (e *Engine) BuildCall(in BuildInput) (Call, error) {
	call, err := BuildCall(in)
	e.metrics.ObserveBuild(in.Query.Kind.String(), err)
	if err != nil {
		e.logger.Warn("removal call build failed", "kind", in.Query.Kind.String(), "error", err)
		return Call{}, err
	}
	e.logger.Info("removal call built",
		"kind", in.Query.Kind.String(),
		"pool", in.Query.PoolID.Hex(),
		"slippage", in.Slippage.String(),
		"maxBptIn", call.MaxBptIn.String(),
	)
	return call, nil
}
