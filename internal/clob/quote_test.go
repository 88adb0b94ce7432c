package clob

import (
	"context"
	"testing"

	"github.com/intent-solver/settlement/pkg/types"
)

const (
	suiType  types.AssetType = "0x2::sui::SUI"
	usdcType types.AssetType = "0xusdc::usdc::USDC"

	suiScalar  = 1_000_000_000
	usdcScalar = 1_000_000
)

func testPool() types.Pool {
	return types.Pool{
		PoolID:      "0xpool1",
		BaseType:    suiType,
		QuoteType:   usdcType,
		BaseScalar:  suiScalar,
		QuoteScalar: usdcScalar,
	}
}

// fakeDevInspector returns a fixed set of level-2 vectors, BCS-encoded the
// same way the real contract would (spec §4.3).
type fakeDevInspector struct {
	bidPrices, bidQuantities, askPrices, askQuantities []uint64
	err                                                error
}

func (f *fakeDevInspector) BuildUnsigned(ctx context.Context, plan types.TxPlan, sender string) ([]byte, error) {
	return []byte("tx-bytes"), nil
}

func (f *fakeDevInspector) DevInspect(ctx context.Context, txBytes []byte, sender string) (*types.DevInspectResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.DevInspectResult{Results: []types.ReturnValue{
		{BCSBytes: encodeU64Vec(f.bidPrices)},
		{BCSBytes: encodeU64Vec(f.bidQuantities)},
		{BCSBytes: encodeU64Vec(f.askPrices)},
		{BCSBytes: encodeU64Vec(f.askQuantities)},
	}}, nil
}

func singleLevelBook() *fakeDevInspector {
	return &fakeDevInspector{
		bidPrices:     []uint64{1_800_000},     // 1.80 human
		bidQuantities: []uint64{100 * suiScalar}, // 100 SUI
		askPrices:     []uint64{1_820_000},     // 1.82 human
		askQuantities: []uint64{100 * suiScalar},
	}
}

func newTestQuoter(t *testing.T, inspector DevInspector) *Quoter {
	t.Helper()
	reg, err := NewPoolRegistry([]types.Pool{testPool()})
	if err != nil {
		t.Fatalf("NewPoolRegistry: %v", err)
	}
	return New(reg, inspector, "0xpkg", "0xdeepbook", "0xsender")
}

func TestPoolRegistryRejectsDuplicatePair(t *testing.T) {
	t.Parallel()
	_, err := NewPoolRegistry([]types.Pool{testPool(), testPool()})
	if err == nil {
		t.Error("expected error for duplicate asset pair")
	}
}

func TestPoolRegistryFindPoolUnordered(t *testing.T) {
	t.Parallel()
	reg, err := NewPoolRegistry([]types.Pool{testPool()})
	if err != nil {
		t.Fatalf("NewPoolRegistry: %v", err)
	}
	if _, ok := reg.FindPool(suiType, usdcType); !ok {
		t.Error("expected to find pool in declared order")
	}
	if _, ok := reg.FindPool(usdcType, suiType); !ok {
		t.Error("expected to find pool in reversed order")
	}
	if _, ok := reg.FindPool(suiType, "0xother"); ok {
		t.Error("expected no pool for unregistered pair")
	}
}

// TestQuoteZeroInput covers Q1: quote(A->B, 0) returns output 0, impact 0.
func TestQuoteZeroInput(t *testing.T) {
	t.Parallel()
	q := newTestQuoter(t, singleLevelBook())

	quote, err := q.Quote(context.Background(), suiType, usdcType, 0)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.OutputRaw != 0 {
		t.Errorf("OutputRaw = %d, want 0", quote.OutputRaw)
	}
	if quote.PriceImpactPct != 0 {
		t.Errorf("PriceImpactPct = %v, want 0", quote.PriceImpactPct)
	}
}

// TestQuoteSingleLevelSellBase covers Q4: output ≈ input*price exactly for
// single-level books, up to scalar rounding.
func TestQuoteSingleLevelSellBase(t *testing.T) {
	t.Parallel()
	q := newTestQuoter(t, singleLevelBook())

	inputRaw := uint64(50 * suiScalar) // 50 SUI
	quote, err := q.Quote(context.Background(), suiType, usdcType, inputRaw)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	wantOutput := uint64(50 * 1.80 * usdcScalar) // 90 USDC
	if quote.OutputRaw != wantOutput {
		t.Errorf("OutputRaw = %d, want %d", quote.OutputRaw, wantOutput)
	}
	if quote.PriceImpactPct != 0 {
		t.Errorf("single full-level fill should have zero impact, got %v", quote.PriceImpactPct)
	}
}

// TestQuoteMonotonic covers Q2: larger input never yields smaller output
// against the same snapshot.
func TestQuoteMonotonic(t *testing.T) {
	t.Parallel()
	q := newTestQuoter(t, singleLevelBook())

	small, err := q.Quote(context.Background(), suiType, usdcType, 10*suiScalar)
	if err != nil {
		t.Fatalf("Quote(small): %v", err)
	}
	large, err := q.Quote(context.Background(), suiType, usdcType, 20*suiScalar)
	if err != nil {
		t.Fatalf("Quote(large): %v", err)
	}
	if large.OutputRaw < small.OutputRaw {
		t.Errorf("larger input produced smaller output: %d < %d", large.OutputRaw, small.OutputRaw)
	}
}

// TestQuotePriceImpactMultiLevel covers Q3: impact grows with size and is
// bounded by the top-of-book-to-worst-filled-level gap, using the source's
// tail-last-filled-level definition verbatim (spec §9 OQ2).
func TestQuotePriceImpactMultiLevel(t *testing.T) {
	t.Parallel()
	inspector := &fakeDevInspector{
		bidPrices:     []uint64{1_800_000, 1_790_000, 1_780_000},
		bidQuantities: []uint64{10 * suiScalar, 10 * suiScalar, 10 * suiScalar},
		askPrices:     []uint64{1_820_000},
		askQuantities: []uint64{100 * suiScalar},
	}
	q := newTestQuoter(t, inspector)

	// Fully consumes the first level only: impact should be zero (tail
	// level == top of book).
	partial, err := q.Quote(context.Background(), suiType, usdcType, 10*suiScalar)
	if err != nil {
		t.Fatalf("Quote(partial): %v", err)
	}
	if partial.PriceImpactPct != 0 {
		t.Errorf("expected zero impact filling exactly one level, got %v", partial.PriceImpactPct)
	}

	// Spills into the second level: impact should be positive and no
	// larger than the gap between best bid and the worst level touched.
	deeper, err := q.Quote(context.Background(), suiType, usdcType, 15*suiScalar)
	if err != nil {
		t.Fatalf("Quote(deeper): %v", err)
	}
	if deeper.PriceImpactPct <= 0 {
		t.Errorf("expected positive impact once a second level is touched, got %v", deeper.PriceImpactPct)
	}
	maxImpact := (1_800_000.0 - 1_790_000.0) / 1_800_000.0
	if deeper.PriceImpactPct > maxImpact+1e-9 {
		t.Errorf("impact %v exceeds top-of-book-to-worst-level gap %v", deeper.PriceImpactPct, maxImpact)
	}
}

func TestQuoteNoPool(t *testing.T) {
	t.Parallel()
	q := newTestQuoter(t, singleLevelBook())
	_, err := q.Quote(context.Background(), suiType, "0xother", 1000)
	var noPool *types.NoPoolError
	if !asNoPoolError(err, &noPool) {
		t.Errorf("expected NoPoolError, got %T: %v", err, err)
	}
}

func asNoPoolError(err error, target **types.NoPoolError) bool {
	e, ok := err.(*types.NoPoolError)
	if ok {
		*target = e
	}
	return ok
}

func TestQuoteNoLiquidity(t *testing.T) {
	t.Parallel()
	q := newTestQuoter(t, &fakeDevInspector{})
	_, err := q.Quote(context.Background(), suiType, usdcType, 1000)
	if _, ok := err.(*types.NoLiquidityError); !ok {
		t.Errorf("expected NoLiquidityError, got %T: %v", err, err)
	}
}

// TestMarketBuySimulation covers the quote-quote-for-base direction.
func TestMarketBuySimulation(t *testing.T) {
	t.Parallel()
	q := newTestQuoter(t, singleLevelBook())

	inputRaw := uint64(91 * usdcScalar) // 91 USDC spent buying SUI at 1.82
	quote, err := q.Quote(context.Background(), usdcType, suiType, inputRaw)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.OutputRaw == 0 {
		t.Error("expected non-zero base output")
	}
}

func TestBuildLevelsDropsNonPositive(t *testing.T) {
	t.Parallel()
	pool := testPool()
	levels := buildLevels([]uint64{0, 1_800_000}, []uint64{100 * suiScalar, 0}, pool)
	if len(levels) != 0 {
		t.Errorf("expected both non-positive entries dropped, got %d levels", len(levels))
	}
}
