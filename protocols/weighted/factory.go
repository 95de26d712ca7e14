package weighted

import "github.com/defistate/balancer-sdk-go/pools"

// Factory classifies and builds weighted pools.
type Factory struct{}

func (Factory) IsPoolForFactory(raw pools.RawPool) bool {
	return IsWeighted(raw.PoolType)
}

func (Factory) Create(chainID uint64, raw pools.RawPool) (pools.Pool, error) {
	p, err := NewPool(chainID, raw)
	if err != nil {
		return nil, err
	}
	return p, nil
}
