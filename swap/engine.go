package swap

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

// Engine runs swap queries and builds their calls.
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

func (e *Engine) Query(in Input, p pools.Pool) (QueryOutput, error) {
	start := time.Now()
	poolType := "none"
	if p != nil {
		poolType = string(p.Type())
	}
	out, err := Compute(in, p)
	e.metrics.ObserveQuery(in.Kind.String(), poolType, start, err)
	if err != nil {
		e.logger.Debug("swap query rejected", "kind", in.Kind.String(), "poolType", poolType, "error", err)
		return QueryOutput{}, err
	}
	e.logger.Debug("swap queried",
		"kind", in.Kind.String(),
		"pool", out.PoolID.Hex(),
		"amountIn", out.AmountIn.String(),
		"amountOut", out.AmountOut.String(),
	)
	return out, nil
}

func (e *Engine) BuildCall(in BuildInput) (Call, error) {
	call, err := BuildCall(in)
	e.metrics.ObserveBuild(in.Query.Kind.String(), err)
	if err != nil {
		e.logger.Warn("swap call build failed", "kind", in.Query.Kind.String(), "error", err)
		return Call{}, err
	}
	e.logger.Info("swap call built", "kind", in.Query.Kind.String(), "pool", in.Query.PoolID.Hex(), "limit", call.Limit.String())
	return call, nil
}
