// inventory.go is a read-through cache of the solver's own coin balances
// per AssetType, used for PTB step (a)'s coin selection (merge enough
// coins to cover the payout, then split out the exact amount). Adapted
// from the teacher's strategy.Inventory, generalized from binary YES/NO
// positions to an arbitrary-asset balance map.
package solver

import (
	"context"
	"sync"

	"github.com/intent-solver/settlement/pkg/types"
)

// CoinReader is the narrow RPC capability the inventory cache needs.
type CoinReader interface {
	GetCoins(ctx context.Context, owner, coinType string) ([]types.CoinBalance, error)
}

// Inventory caches the solver's coin objects per asset type.
type Inventory struct {
	mu      sync.RWMutex
	address string
	rpc     CoinReader
	coins   map[types.AssetType][]types.CoinBalance
}

// NewInventory creates an inventory cache for the solver's own address.
func NewInventory(address string, rpc CoinReader) *Inventory {
	return &Inventory{
		address: address,
		rpc:     rpc,
		coins:   make(map[types.AssetType][]types.CoinBalance),
	}
}

// Refresh re-fetches the solver's coin objects of asset from the chain.
func (inv *Inventory) Refresh(ctx context.Context, asset types.AssetType) error {
	coins, err := inv.rpc.GetCoins(ctx, inv.address, string(asset))
	if err != nil {
		return err
	}
	inv.mu.Lock()
	inv.coins[asset] = coins
	inv.mu.Unlock()
	return nil
}

// Balance returns the cached total balance of asset across all coins.
func (inv *Inventory) Balance(asset types.AssetType) uint64 {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	var total uint64
	for _, c := range inv.coins[asset] {
		total += c.Balance
	}
	return total
}

// SelectCoins picks coins of asset whose total balance covers at least
// amount, in cache order, and reports whether enough was available. This
// mirrors the PTB's "merge into one coin handle, then split out exactly
// the amount to pay" step (spec §4.4 step a) — the actual merge/split
// call construction happens in the pipeline once coin ids are chosen.
func (inv *Inventory) SelectCoins(asset types.AssetType, amount uint64) (coinIDs []string, total uint64, ok bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	for _, c := range inv.coins[asset] {
		coinIDs = append(coinIDs, c.CoinID)
		total += c.Balance
		if total >= amount {
			return coinIDs, total, true
		}
	}
	return coinIDs, total, false
}
