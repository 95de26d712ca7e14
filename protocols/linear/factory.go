package linear

import "github.com/defistate/balancer-sdk-go/pools"

// Factory classifies and builds linear pools of any flavour.
type Factory struct{}

func (Factory) IsPoolForFactory(raw pools.RawPool) bool {
	return IsLinear(raw.PoolType)
}

func (Factory) Create(chainID uint64, raw pools.RawPool) (pools.Pool, error) {
	p, err := NewPool(chainID, raw)
	if err != nil {
		return nil, err
	}
	return p, nil
}
