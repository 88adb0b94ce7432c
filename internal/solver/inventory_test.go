package solver

import (
	"context"
	"testing"

	"github.com/intent-solver/settlement/pkg/types"
)

type fakeCoinReader struct {
	coins []types.CoinBalance
	err   error
}

func (f *fakeCoinReader) GetCoins(ctx context.Context, owner, coinType string) ([]types.CoinBalance, error) {
	return f.coins, f.err
}

func TestInventoryRefreshAndBalance(t *testing.T) {
	t.Parallel()
	cr := &fakeCoinReader{coins: []types.CoinBalance{
		{CoinID: "0xc1", Balance: 100},
		{CoinID: "0xc2", Balance: 50},
	}}
	inv := NewInventory("0xsolver", cr)

	if got := inv.Balance(testOutputType); got != 0 {
		t.Fatalf("balance before refresh = %d, want 0", got)
	}

	if err := inv.Refresh(context.Background(), testOutputType); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := inv.Balance(testOutputType); got != 150 {
		t.Errorf("Balance after refresh = %d, want 150", got)
	}
}

func TestInventorySelectCoinsSufficient(t *testing.T) {
	t.Parallel()
	cr := &fakeCoinReader{coins: []types.CoinBalance{
		{CoinID: "0xc1", Balance: 100},
		{CoinID: "0xc2", Balance: 50},
	}}
	inv := NewInventory("0xsolver", cr)
	if err := inv.Refresh(context.Background(), testOutputType); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	ids, total, ok := inv.SelectCoins(testOutputType, 120)
	if !ok {
		t.Fatal("expected enough coins to cover 120")
	}
	if total < 120 {
		t.Errorf("total = %d, want >= 120", total)
	}
	if len(ids) != 2 {
		t.Errorf("expected both coins selected to reach 120, got %d", len(ids))
	}
}

func TestInventorySelectCoinsInsufficient(t *testing.T) {
	t.Parallel()
	cr := &fakeCoinReader{coins: []types.CoinBalance{{CoinID: "0xc1", Balance: 10}}}
	inv := NewInventory("0xsolver", cr)
	if err := inv.Refresh(context.Background(), testOutputType); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	_, total, ok := inv.SelectCoins(testOutputType, 500)
	if ok {
		t.Fatal("expected insufficient coins to report ok=false")
	}
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
}

func TestInventorySelectCoinsUnknownAsset(t *testing.T) {
	t.Parallel()
	inv := NewInventory("0xsolver", &fakeCoinReader{})
	_, _, ok := inv.SelectCoins(testInputType, 1)
	if ok {
		t.Error("expected no coins for an asset never refreshed")
	}
}

func TestInventoryRefreshPropagatesError(t *testing.T) {
	t.Parallel()
	boom := errBoom{}
	inv := NewInventory("0xsolver", &fakeCoinReader{err: boom})
	if err := inv.Refresh(context.Background(), testOutputType); err == nil {
		t.Error("expected Refresh to propagate the RPC error")
	}
}
