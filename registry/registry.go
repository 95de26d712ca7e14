// Package registry indexes parsed pools by ID and by the tokens they hold, so
// callers can find the pools that trade a token or a token pair.
package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrPoolNotFound  = fmt.Errorf("%w: pool not found", poolerrors.ErrInvalidInput)
	ErrDuplicatePool = fmt.Errorf("%w: pool already registered", poolerrors.ErrInvalidInput)
)

// Registry holds the pools of a single chain. Writes take a lock; reads of
// the graph view go through an atomic pointer.
type Registry struct {
	chainID uint64

	mu         sync.RWMutex
	graph      *graph
	cachedView atomic.Pointer[View]
}

// New creates an empty registry for chainID.
func New(chainID uint64) *Registry {
	r := &Registry{
		chainID: chainID,
		graph:   newGraph(),
	}
	r.cachedView.Store(r.graph.view())
	return r
}

// FromPools creates a registry holding ps in order.
func FromPools(chainID uint64, ps []pools.Pool) (*Registry, error) {
	r := New(chainID)
	if err := r.Add(ps...); err != nil {
		return nil, err
	}
	return r, nil
}

// ChainID returns the chain every registered pool belongs to.
func (r *Registry) ChainID() uint64 {
	return r.chainID
}

// Add registers ps. Either every pool is added or, on error, none is.
func (r *Registry) Add(ps ...pools.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[common.Hash]struct{}, len(ps))
	for _, p := range ps {
		if err := pools.CheckChain(p, r.chainID); err != nil {
			return err
		}
		id := p.ID()
		_, registered := r.graph.poolToIndex[id]
		_, repeated := batch[id]
		if registered || repeated {
			return fmt.Errorf("%w: %s", ErrDuplicatePool, id.Hex())
		}
		batch[id] = struct{}{}
	}
	if len(ps) == 0 {
		return nil
	}
	for _, p := range ps {
		r.graph.add(p)
	}
	r.cachedView.Store(r.graph.view())
	return nil
}

// Remove drops the pool with the given ID, reporting whether it was present.
func (r *Registry) Remove(id common.Hash) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.graph.poolToIndex[id]; !ok {
		return false
	}
	r.graph = r.graph.without(id)
	r.cachedView.Store(r.graph.view())
	return true
}

// Pool returns the pool with the given ID.
func (r *Registry) Pool(id common.Hash) (pools.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.graph.poolToIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id.Hex())
	}
	return r.graph.pools[i], nil
}

// Pools returns every registered pool in registration order.
func (r *Registry) Pools() []pools.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]pools.Pool(nil), r.graph.pools...)
}

// Len returns the number of registered pools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.graph.pools)
}

// PoolsForToken returns the pools holding addr, in registration order.
func (r *Registry) PoolsForToken(addr common.Address) []pools.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.poolsForToken(addr)
}

// PoolsForPair returns the pools that hold both tokenIn and tokenOut, in
// registration order.
func (r *Registry) PoolsForPair(tokenIn, tokenOut common.Address) []pools.Pool {
	if tokenIn == tokenOut {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.poolsForPair(tokenIn, tokenOut)
}

// View returns the latest graph snapshot. The snapshot is shared and must
// not be modified.
func (r *Registry) View() *View {
	return r.cachedView.Load()
}
