// Package parser classifies raw pool records and turns them into typed pools
// through an ordered list of factories.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/protocols/gyro2"
	"github.com/defistate/balancer-sdk-go/protocols/linear"
	"github.com/defistate/balancer-sdk-go/protocols/metastable"
	"github.com/defistate/balancer-sdk-go/protocols/stable"
	"github.com/defistate/balancer-sdk-go/protocols/weighted"
	"github.com/prometheus/client_golang/prometheus"
)

var ErrNoFactory = fmt.Errorf("%w: no factory recognises the pool type", poolerrors.ErrUnsupportedOperation)

// DefaultFactories returns the built in factories in matching order.
func DefaultFactories() []Factory {
	return []Factory{
		weighted.Factory{},
		stable.Factory{},
		metastable.Factory{},
		linear.Factory{},
		gyro2.Factory{},
	}
}

// Config holds the configuration for the parser.
type Config struct {
	ChainID uint64
	// CustomFactories are consulted before the defaults, in order.
	CustomFactories []Factory
	Logger          Logger
	Registry        prometheus.Registerer
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.ChainID == 0 {
		return errors.New("config: ChainID is required")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	for i, f := range c.CustomFactories {
		if f == nil {
			return fmt.Errorf("config: CustomFactories[%d] is nil", i)
		}
	}
	return nil
}

// Parser turns raw records into pools. It is safe for concurrent use.
type Parser struct {
	chainID   uint64
	factories []Factory
	logger    Logger
	metrics   *Metrics
}

// NewParser constructs a parser from a configuration, returning an error if the config is invalid.
func NewParser(cfg *Config) (*Parser, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	factories := make([]Factory, 0, len(cfg.CustomFactories)+5)
	factories = append(factories, cfg.CustomFactories...)
	factories = append(factories, DefaultFactories()...)

	return &Parser{
		chainID:   cfg.ChainID,
		factories: factories,
		logger:    cfg.Logger,
		metrics:   NewMetrics(cfg.Registry),
	}, nil
}

// ChainID returns the chain every parsed pool is tagged with.
func (p *Parser) ChainID() uint64 {
	return p.chainID
}

func (p *Parser) factoryFor(raw pools.RawPool) Factory {
	for _, f := range p.factories {
		if f.IsPoolForFactory(raw) {
			return f
		}
	}
	return nil
}

// ParseRawPool parses a single record with the first matching factory.
func (p *Parser) ParseRawPool(raw pools.RawPool) (pools.Pool, error) {
	f := p.factoryFor(raw)
	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoFactory, raw.PoolType)
	}
	return f.Create(p.chainID, raw)
}

// ParseRawPools parses raws in order. Records no factory recognises are
// skipped; a recognised record that fails to build aborts the whole batch.
func (p *Parser) ParseRawPools(raws []pools.RawPool) ([]pools.Pool, error) {
	out := make([]pools.Pool, 0, len(raws))
	for _, raw := range raws {
		f := p.factoryFor(raw)
		if f == nil {
			p.logger.Debug("Skipping pool of unknown type", "pool_id", raw.ID.Hex(), "pool_type", raw.PoolType)
			p.metrics.droppedTotal.WithLabelValues("unmatched").Inc()
			continue
		}
		pool, err := f.Create(p.chainID, raw)
		if err != nil {
			p.logger.Warn("Rejecting invalid pool", "pool_id", raw.ID.Hex(), "pool_type", raw.PoolType, "error", err)
			p.metrics.droppedTotal.WithLabelValues("invalid").Inc()
			return nil, fmt.Errorf("pool %s: %w", raw.ID.Hex(), err)
		}
		p.metrics.parsedTotal.WithLabelValues(string(pool.Type())).Inc()
		out = append(out, pool)
	}
	return out, nil
}

// DecodeRawPools reads a JSON array of raw pool records.
func DecodeRawPools(r io.Reader) ([]pools.RawPool, error) {
	var raws []pools.RawPool
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: decoding raw pools: %v", poolerrors.ErrInvalidInput, err)
	}
	return raws, nil
}
