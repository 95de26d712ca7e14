// Package metastable implements Balancer meta stable pools: stable math over
// balances scaled by each token's price rate.
package metastable

import (
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/protocols/stable"
)

// Pool is a parsed meta stable pool. All operations are those of a stable
// pool whose scaling factors carry the token price rates.
type Pool struct {
	*stable.Pool
}

// NewPool builds a meta stable pool from a raw record. Tokens without a
// price rate default to 1.
func NewPool(chainID uint64, raw pools.RawPool) (*Pool, error) {
	p, err := stable.New(chainID, raw, pools.TypeMetaStable, pools.WithPriceRates())
	if err != nil {
		return nil, err
	}
	return &Pool{Pool: p}, nil
}

var _ pools.Pool = (*Pool)(nil)
