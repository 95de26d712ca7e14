package stable

import "github.com/defistate/balancer-sdk-go/pools"

// Factory classifies and builds legacy stable pools.
type Factory struct{}

func (Factory) IsPoolForFactory(raw pools.RawPool) bool {
	return raw.PoolType == "Stable"
}

func (Factory) Create(chainID uint64, raw pools.RawPool) (pools.Pool, error) {
	p, err := NewPool(chainID, raw)
	if err != nil {
		return nil, err
	}
	return p, nil
}
