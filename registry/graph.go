package registry

import (
	"sort"

	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/ethereum/go-ethereum/common"
)

// View is a snapshot of the token graph. Edge i runs from the token whose
// adjacency list holds it to Tokens[EdgeTargets[i]] and is served by the
// pools at the indexes in EdgePools[i].
type View struct {
	Tokens      []common.Address `json:"tokens"`
	Pools       []common.Hash    `json:"pools"`
	Adjacency   [][]int          `json:"adjacency"`
	EdgeTargets []int            `json:"edgeTargets"`
	EdgePools   [][]int          `json:"edgePools"`
}

// graph is the non-thread-safe core of the registry. Every pool connects
// each pair of its tokens in both directions.
type graph struct {
	tokenToIndex map[common.Address]int
	poolToIndex  map[common.Hash]int

	tokens      []common.Address
	pools       []pools.Pool
	adjacency   [][]int
	edgeTargets []int
	edgePools   [][]int
}

func newGraph() *graph {
	return &graph{
		tokenToIndex: make(map[common.Address]int),
		poolToIndex:  make(map[common.Hash]int),
	}
}

func (g *graph) tokenIndex(addr common.Address) int {
	if i, ok := g.tokenToIndex[addr]; ok {
		return i
	}
	i := len(g.tokens)
	g.tokenToIndex[addr] = i
	g.tokens = append(g.tokens, addr)
	g.adjacency = append(g.adjacency, nil)
	return i
}

func (g *graph) edge(from, to int) (int, bool) {
	for _, e := range g.adjacency[from] {
		if g.edgeTargets[e] == to {
			return e, true
		}
	}
	return 0, false
}

func (g *graph) addEdge(from, to, pool int) {
	if e, ok := g.edge(from, to); ok {
		g.edgePools[e] = append(g.edgePools[e], pool)
		return
	}
	e := len(g.edgeTargets)
	g.edgeTargets = append(g.edgeTargets, to)
	g.edgePools = append(g.edgePools, []int{pool})
	g.adjacency[from] = append(g.adjacency[from], e)
}

func (g *graph) add(p pools.Pool) {
	poolIndex := len(g.pools)
	g.poolToIndex[p.ID()] = poolIndex
	g.pools = append(g.pools, p)

	tokens := p.Tokens()
	indexes := make([]int, len(tokens))
	for i, t := range tokens {
		indexes[i] = g.tokenIndex(t.Address)
	}
	for i := range indexes {
		for j := range indexes {
			if i != j {
				g.addEdge(indexes[i], indexes[j], poolIndex)
			}
		}
	}
}

// without returns a fresh graph holding every pool but id, in the original order.
func (g *graph) without(id common.Hash) *graph {
	next := newGraph()
	for _, p := range g.pools {
		if p.ID() != id {
			next.add(p)
		}
	}
	return next
}

func (g *graph) poolsForToken(addr common.Address) []pools.Pool {
	from, ok := g.tokenToIndex[addr]
	if !ok {
		return nil
	}
	seen := make(map[int]struct{})
	for _, e := range g.adjacency[from] {
		for _, p := range g.edgePools[e] {
			seen[p] = struct{}{}
		}
	}
	return g.collect(seen)
}

func (g *graph) poolsForPair(a, b common.Address) []pools.Pool {
	from, ok := g.tokenToIndex[a]
	if !ok {
		return nil
	}
	to, ok := g.tokenToIndex[b]
	if !ok {
		return nil
	}
	e, ok := g.edge(from, to)
	if !ok {
		return nil
	}
	out := make([]pools.Pool, len(g.edgePools[e]))
	for i, p := range g.edgePools[e] {
		out[i] = g.pools[p]
	}
	return out
}

func (g *graph) collect(set map[int]struct{}) []pools.Pool {
	if len(set) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(set))
	for i := range set {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	out := make([]pools.Pool, len(indexes))
	for i, p := range indexes {
		out[i] = g.pools[p]
	}
	return out
}

func (g *graph) view() *View {
	v := &View{
		Tokens:      make([]common.Address, len(g.tokens)),
		Pools:       make([]common.Hash, len(g.pools)),
		Adjacency:   make([][]int, len(g.adjacency)),
		EdgeTargets: make([]int, len(g.edgeTargets)),
		EdgePools:   make([][]int, len(g.edgePools)),
	}
	copy(v.Tokens, g.tokens)
	for i, p := range g.pools {
		v.Pools[i] = p.ID()
	}
	for i, adj := range g.adjacency {
		v.Adjacency[i] = append([]int(nil), adj...)
	}
	copy(v.EdgeTargets, g.edgeTargets)
	for i, ps := range g.edgePools {
		v.EdgePools[i] = append([]int(nil), ps...)
	}
	return v
}
