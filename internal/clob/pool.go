package clob

import (
	"sync"

	"github.com/intent-solver/settlement/pkg/types"
)

// PoolRegistry holds the set of CLOB pools the solver may quote against,
// keyed by the unordered {base_type, quote_type} pair. Populated once at
// startup, then read-only (spec §5).
type PoolRegistry struct {
	mu    sync.RWMutex
	pools []types.Pool
}

// NewPoolRegistry builds a registry from statically-configured pools,
// rejecting duplicate asset pairs (spec §3 invariant).
func NewPoolRegistry(pools []types.Pool) (*PoolRegistry, error) {
	reg := &PoolRegistry{}
	for _, p := range pools {
		if existing := reg.findLocked(p.BaseType, p.QuoteType); existing != nil {
			return nil, &types.InvalidArgumentError{
				Op:      "NewPoolRegistry",
				Message: "duplicate pool for pair " + string(p.BaseType) + "/" + string(p.QuoteType),
			}
		}
		reg.pools = append(reg.pools, p)
	}
	return reg, nil
}

// FindPool returns the unique registered pool whose asset pair equals
// {a, b}, or ok=false if none is registered (spec §4.3: "no auto-routing
// across multiple pools").
func (r *PoolRegistry) FindPool(a, b types.AssetType) (types.Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.findLocked(a, b)
	if p == nil {
		return types.Pool{}, false
	}
	return *p, true
}

func (r *PoolRegistry) findLocked(a, b types.AssetType) *types.Pool {
	for i := range r.pools {
		if r.pools[i].HasAssetPair(a, b) {
			return &r.pools[i]
		}
	}
	return nil
}

// All returns a snapshot of every registered pool, for the façade's
// GET /pools endpoint.
func (r *PoolRegistry) All() []types.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Pool, len(r.pools))
	copy(out, r.pools)
	return out
}
