package clob

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/intent-solver/settlement/pkg/types"
)

// floatScalar is the contract's fixed-point scale for raw_price (spec §4.3).
const floatScalar = 1_000_000_000

const defaultTicksFromMid = 50

// DevInspector is the narrow RPC capability the quoter needs: simulate a
// read-only move call and return its decoded BCS results.
type DevInspector interface {
	DevInspect(ctx context.Context, txBytes []byte, sender string) (*types.DevInspectResult, error)
	BuildUnsigned(ctx context.Context, plan types.TxPlan, sender string) ([]byte, error)
}

// Quoter fetches Level-2 depth for a pool and simulates market orders
// against it.
type Quoter struct {
	registry          *PoolRegistry
	rpc               DevInspector
	packageID         string
	deepbookPackageID string
	// sender is any valid address; dev-inspect is read-only and does not
	// require the address to hold funds.
	sender string
}

// New creates a Quoter bound to a pool registry and RPC client.
func New(registry *PoolRegistry, rpcClient DevInspector, packageID, deepbookPackageID, sender string) *Quoter {
	return &Quoter{
		registry:          registry,
		rpc:               rpcClient,
		packageID:         packageID,
		deepbookPackageID: deepbookPackageID,
		sender:            sender,
	}
}

// FindPool exposes the registry's pool lookup to callers (the solver
// engine needs it to compose the reverse-swap leg of the atomic
// execution PTB against the same pool the profitability quote used).
func (q *Quoter) FindPool(a, b types.AssetType) (types.Pool, bool) {
	return q.registry.FindPool(a, b)
}

// Level2 retrieves and decodes the Level-2 snapshot for a pool via
// dev_inspect against get_level2_ticks_from_mid (spec §4.3).
func (q *Quoter) Level2(ctx context.Context, pool types.Pool) (*types.Level2Snapshot, error) {
	plan := types.TxPlan{
		Target:        q.deepbookPackageID + "::pool::get_level2_ticks_from_mid",
		TypeArguments: []string{string(pool.BaseType), string(pool.QuoteType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgObject, Value: pool.PoolID, Label: "pool"},
			{Kind: types.ArgPure, Value: uint64(defaultTicksFromMid), Label: "ticks_from_mid"},
			{Kind: types.ArgObject, Value: "0x6", Label: "clock"},
		},
	}
	txBytes, err := q.rpc.BuildUnsigned(ctx, plan, q.sender)
	if err != nil {
		return nil, err
	}
	result, err := q.rpc.DevInspect(ctx, txBytes, q.sender)
	if err != nil {
		return nil, err
	}
	if len(result.Results) != 4 {
		return nil, fmt.Errorf("get_level2_ticks_from_mid: expected 4 return values, got %d", len(result.Results))
	}

	bidPrices, _, err := decodeU64Vec(result.Results[0].BCSBytes)
	if err != nil {
		return nil, fmt.Errorf("decode bid_prices: %w", err)
	}
	bidQuantities, _, err := decodeU64Vec(result.Results[1].BCSBytes)
	if err != nil {
		return nil, fmt.Errorf("decode bid_quantities: %w", err)
	}
	askPrices, _, err := decodeU64Vec(result.Results[2].BCSBytes)
	if err != nil {
		return nil, fmt.Errorf("decode ask_prices: %w", err)
	}
	askQuantities, _, err := decodeU64Vec(result.Results[3].BCSBytes)
	if err != nil {
		return nil, fmt.Errorf("decode ask_quantities: %w", err)
	}

	snap := &types.Level2Snapshot{
		PoolID: pool.PoolID,
		Bids:   buildLevels(bidPrices, bidQuantities, pool),
		Asks:   buildLevels(askPrices, askQuantities, pool),
	}
	sort.SliceStable(snap.Bids, func(i, j int) bool { return snap.Bids[i].Price > snap.Bids[j].Price })
	sort.SliceStable(snap.Asks, func(i, j int) bool { return snap.Asks[i].Price < snap.Asks[j].Price })
	return snap, nil
}

// buildLevels reconstructs human-unit price levels from raw scaled u64s,
// dropping non-positive entries (spec §4.3).
func buildLevels(rawPrices, rawQuantities []uint64, pool types.Pool) []types.PriceLevel {
	n := len(rawPrices)
	if len(rawQuantities) < n {
		n = len(rawQuantities)
	}
	scaleFactor := decimal.New(1, 0).Div(decimal.NewFromInt(floatScalar)).
		Mul(decimal.NewFromInt(int64(pool.BaseScalar))).
		Div(decimal.NewFromInt(int64(pool.QuoteScalar)))

	levels := make([]types.PriceLevel, 0, n)
	for i := 0; i < n; i++ {
		priceHuman, _ := decimal.NewFromInt(int64(rawPrices[i])).Mul(scaleFactor).Float64()
		qtyHuman, _ := decimal.NewFromInt(int64(rawQuantities[i])).
			Div(decimal.NewFromInt(int64(pool.BaseScalar))).Float64()
		if priceHuman <= 0 || qtyHuman <= 0 {
			continue
		}
		levels = append(levels, types.PriceLevel{Price: priceHuman, Quantity: qtyHuman})
	}
	return levels
}

// Quote produces a Swap Quote for (input_type, output_type, input_raw) by
// walking the live order book (spec §4.3). Fails with NoPool, NoLiquidity,
// or the underlying RPC failure — there is no fallback pricing.
func (q *Quoter) Quote(ctx context.Context, inputType, outputType types.AssetType, inputRaw uint64) (*types.SwapQuote, error) {
	pool, ok := q.registry.FindPool(inputType, outputType)
	if !ok {
		return nil, &types.NoPoolError{Base: inputType, Quote: outputType}
	}

	snap, err := q.Level2(ctx, pool)
	if err != nil {
		return nil, err
	}
	if len(snap.Bids) == 0 && len(snap.Asks) == 0 {
		return nil, &types.NoLiquidityError{PoolID: pool.PoolID, Requested: inputRaw, Available: 0}
	}

	isSellBase := inputType == pool.BaseType
	var inputScalar, outputScalar uint64
	if isSellBase {
		inputScalar, outputScalar = pool.BaseScalar, pool.QuoteScalar
	} else {
		inputScalar, outputScalar = pool.QuoteScalar, pool.BaseScalar
	}

	if inputRaw == 0 {
		bestBid, _ := snap.BestBid()
		bestAsk, _ := snap.BestAsk()
		mid, _ := snap.MidPrice()
		return &types.SwapQuote{
			InputRaw: 0, OutputRaw: 0, MidPrice: mid, BestBid: bestBid, BestAsk: bestAsk,
			PriceImpactPct: 0, Route: []string{pool.PoolID},
		}, nil
	}

	inputHuman := float64(inputRaw) / float64(inputScalar)

	var outputHuman, priceImpact float64
	if isSellBase {
		outputHuman, priceImpact, err = simulateMarketSell(snap.Bids, inputHuman)
	} else {
		outputHuman, priceImpact, err = simulateMarketBuy(snap.Asks, inputHuman)
	}
	if err != nil {
		return nil, &types.NoLiquidityError{PoolID: pool.PoolID, Requested: inputRaw, Available: 0}
	}

	outputRaw := uint64(math.Floor(outputHuman * float64(outputScalar)))

	bestBid, _ := snap.BestBid()
	bestAsk, _ := snap.BestAsk()
	mid, _ := snap.MidPrice()

	return &types.SwapQuote{
		InputRaw:       inputRaw,
		OutputRaw:      outputRaw,
		MidPrice:       mid,
		BestBid:        bestBid,
		BestAsk:        bestAsk,
		PriceImpactPct: priceImpact,
		Route:          []string{pool.PoolID},
	}, nil
}

// simulateMarketSell walks bids in order, selling base for quote.
// Price impact preserves the source's tail-last-filled-level definition
// verbatim (spec §9 OQ2): it compares top-of-book to the last level
// touched, not a volume-weighted average, even when that overstates
// impact for partial fills of the first level.
func simulateMarketSell(bids []types.PriceLevel, inputBase float64) (outputQuote, priceImpact float64, err error) {
	if len(bids) == 0 {
		return 0, 0, fmt.Errorf("no bids")
	}
	remaining := inputBase
	lastPrice := bids[0].Price
	for _, level := range bids {
		if remaining <= 0 {
			break
		}
		consumed := math.Min(remaining, level.Quantity)
		outputQuote += consumed * level.Price
		remaining -= consumed
		lastPrice = level.Price
	}
	if remaining > 0 {
		return 0, 0, fmt.Errorf("insufficient depth")
	}
	priceImpact = (bids[0].Price - lastPrice) / bids[0].Price
	return outputQuote, priceImpact, nil
}

// simulateMarketBuy walks asks in order, spending quote to buy base.
func simulateMarketBuy(asks []types.PriceLevel, inputQuote float64) (outputBase, priceImpact float64, err error) {
	if len(asks) == 0 {
		return 0, 0, fmt.Errorf("no asks")
	}
	remaining := inputQuote
	lastPrice := asks[0].Price
	for _, level := range asks {
		if remaining <= 0 {
			break
		}
		buyableBase := math.Min(remaining/level.Price, level.Quantity)
		outputBase += buyableBase
		remaining -= buyableBase * level.Price
		lastPrice = level.Price
	}
	if remaining > 1e-12 {
		return 0, 0, fmt.Errorf("insufficient depth")
	}
	priceImpact = (lastPrice - asks[0].Price) / asks[0].Price
	return outputBase, priceImpact, nil
}
