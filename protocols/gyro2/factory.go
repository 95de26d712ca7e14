package gyro2

import "github.com/defistate/balancer-sdk-go/pools"

// Factory classifies and builds 2-CLP pools.
type Factory struct{}

func (Factory) IsPoolForFactory(raw pools.RawPool) bool {
	return raw.PoolType == "Gyro2"
}

func (Factory) Create(chainID uint64, raw pools.RawPool) (pools.Pool, error) {
	p, err := NewPool(chainID, raw)
	if err != nil {
		return nil, err
	}
	return p, nil
}
