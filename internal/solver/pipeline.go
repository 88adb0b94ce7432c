// pipeline.go implements the per-intent evaluate-and-execute pipeline
// (spec §4.4). Adapted from the teacher's strategy.Maker.quoteUpdate
// per-tick shape (check staleness -> check risk -> compute -> reconcile),
// generalized from "requote forever" to "evaluate once per discovered
// intent".
package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/intent-solver/settlement/internal/registry"
	"github.com/intent-solver/settlement/internal/rpc"
	"github.com/intent-solver/settlement/pkg/types"
)

// ObjectReader reads on-chain objects.
type ObjectReader interface {
	GetObject(ctx context.Context, id string) (*types.ObjectSnapshot, error)
}

// IntentQuoter produces a reverse-swap quote for the asset the solver
// would receive from the user, and exposes the pool that quote used so
// the engine can compose the matching reverse-swap PTB command.
type IntentQuoter interface {
	Quote(ctx context.Context, inputType, outputType types.AssetType, inputRaw uint64) (*types.SwapQuote, error)
	FindPool(a, b types.AssetType) (types.Pool, bool)
}

// Executor builds and submits transactions.
type Executor interface {
	BuildUnsigned(ctx context.Context, plan types.TxPlan, sender string) ([]byte, error)
	BuildUnsignedPTB(ctx context.Context, ptb types.PTB, sender string) ([]byte, error)
	ExecuteSigned(ctx context.Context, txBytes []byte, signature string) (*types.ExecutionResult, error)
}

// nowMs returns the current wall-clock time in the intent protocol's
// millisecond resolution.
func nowMs() int64 { return time.Now().UnixMilli() }

// evaluate runs the read -> expiry-check -> quote -> profitability
// portion of the pipeline for one intent. It never mutates chain state;
// callers decide what to do with the result (executeIntent issues transitions).
type evaluation struct {
	intent     types.Intent
	expired    bool
	quote      *types.SwapQuote
	profitBps  int64
	shouldExec bool
}

func (e *Engine) evaluate(ctx context.Context, id string) (*evaluation, error) {
	snap, err := e.rpc.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	intent, err := registry.ParseIntent(snap)
	if err != nil {
		return nil, err
	}
	if intent.Status != types.StatusOpen {
		return nil, nil
	}

	if registry.IsExpired(*intent, nowMs()) {
		return &evaluation{intent: *intent, expired: true}, nil
	}

	q, err := e.quoter.Quote(ctx, intent.InputType, intent.OutputType, intent.InputBalance)
	if err != nil {
		return nil, err
	}

	// profit_raw is in output units (what the reverse-swap would pay us
	// beyond what the user demands); profit_bps divides it by the
	// input-denominated amount. The unit mismatch is intentional — see
	// spec's open question OQ1 — and is preserved verbatim.
	var profitRaw uint64
	if q.OutputRaw > intent.MinOutputAmount {
		profitRaw = q.OutputRaw - intent.MinOutputAmount
	}
	var profitBps int64
	if intent.InputBalance > 0 {
		profitBps = int64(profitRaw) * 10000 / int64(intent.InputBalance)
	}

	return &evaluation{
		intent:     *intent,
		quote:      q,
		profitBps:  profitBps,
		shouldExec: profitBps >= int64(e.cfg.MinProfitBps),
	}, nil
}

// process runs the full pipeline for one intent id: deduplicate, read,
// check expiry, quote, decide, execute or skip. Every exit path releases
// the processing_set entry (spec E2).
func (e *Engine) process(ctx context.Context, id string) {
	if !e.inFlight.tryAcquire(id) {
		return
	}
	defer e.inFlight.release(id)

	e.metrics.IncProcessed()
	e.logger.Debug("processing intent", "intent_id", id)

	eval, err := e.evaluate(ctx, id)
	if err != nil {
		e.logger.Debug("evaluate failed, skipping", "intent_id", id, "error", err)
		e.metrics.SetLastError(err.Error())
		return
	}
	if eval == nil {
		return // missing or not OPEN
	}

	if eval.expired {
		e.cleanupExpired(ctx, eval.intent)
		return
	}

	if !eval.shouldExec {
		e.metrics.IncSkipped()
		e.logger.Info("skipping unprofitable intent",
			"intent_id", id, "profit_bps", eval.profitBps, "min_profit_bps", e.cfg.MinProfitBps)
		return
	}

	if !e.health.ShouldExecute() {
		e.logger.Warn("execution circuit breaker open, skipping otherwise-profitable intent", "intent_id", id)
		e.metrics.IncSkipped()
		return
	}

	e.executeIntent(ctx, eval.intent, eval.quote)
}

// cleanupExpired issues a plain cleanup_expired transaction. Failure is
// logged and swallowed — some other participant or a later pass will
// clean it up (spec §4.4).
func (e *Engine) cleanupExpired(ctx context.Context, intent types.Intent) {
	plan := e.registry.PlanCleanupExpired(intent.ID, intent.InputType, intent.OutputType, e.cfg.GasBudget)
	if err := e.submitPlan(ctx, plan); err != nil {
		e.logger.Warn("cleanup_expired failed, will retry on a later pass", "intent_id", intent.ID, "error", err)
		return
	}
	e.logger.Info("cleaned up expired intent", "intent_id", intent.ID)
}

// executeIntent builds and submits the atomic settlement PTB (spec §4.4
// steps a-f): pay the user from solver inventory, collect the user's
// input via execute_intent, and reverse-swap that input against the
// same CLOB pool the profitability quote used — all in one transaction.
func (e *Engine) executeIntent(ctx context.Context, intent types.Intent, quote *types.SwapQuote) {
	bufferBps := uint64(e.cfg.OutputBufferBps)
	required := intent.MinOutputAmount + intent.MinOutputAmount*bufferBps/10000

	pool, ok := e.quoter.FindPool(intent.InputType, intent.OutputType)
	if !ok {
		e.logger.Warn("no pool registered for reverse-swap leg, skipping", "intent_id", intent.ID)
		e.metrics.IncSkipped()
		return
	}

	if err := e.inventory.Refresh(ctx, intent.OutputType); err != nil {
		e.logger.Warn("inventory refresh failed", "asset", intent.OutputType, "error", err)
		e.metrics.SetLastError(err.Error())
		return
	}
	coinIDs, available, ok := e.inventory.SelectCoins(intent.OutputType, required)
	if !ok {
		e.logger.Warn("insufficient solver balance to execute", "intent_id", intent.ID, "required", required, "available", available)
		e.metrics.IncSkipped()
		return
	}

	if err := e.inventory.Refresh(ctx, pool.DeepFeeType); err != nil {
		e.logger.Warn("fee-coin inventory refresh failed", "asset", pool.DeepFeeType, "error", err)
		e.metrics.SetLastError(err.Error())
		return
	}
	feeCoinIDs, feeAvailable, ok := e.inventory.SelectCoins(pool.DeepFeeType, pool.DeepFeeCoinMinimum)
	if !ok {
		err := &types.NoFeeCoinError{FeeType: pool.DeepFeeType, Requested: pool.DeepFeeCoinMinimum, Available: feeAvailable}
		e.logger.Warn("no DEEP fee coin available, skipping", "intent_id", intent.ID, "error", err)
		e.metrics.SetLastError(err.Error())
		e.metrics.IncSkipped()
		return
	}

	ptb := e.registry.PlanAtomicExecute(registry.AtomicExecuteParams{
		IntentID:      intent.ID,
		InputType:     intent.InputType,
		OutputType:    intent.OutputType,
		ConfigID:      e.cfg.ProtocolConfigID,
		OutputCoinIDs: coinIDs,
		PayoutAmount:  required,
		PoolID:        pool.PoolID,
		PoolBaseType:  pool.BaseType,
		PoolQuoteType: pool.QuoteType,
		DeepFeeCoinID: feeCoinIDs[0],
		SolverAddress: e.signer.Address(),
		GasBudget:     e.cfg.GasBudget,
	})

	result, err := e.submitSignedPTB(ctx, ptb)
	if err != nil {
		var reverted *types.RevertedError
		if isReverted(err, &reverted) {
			e.health.RecordAttempt(true)
			e.metrics.IncReverted()
			e.logger.Info("execution reverted, leaving intent for another solver",
				"intent_id", intent.ID, "abort_code", reverted.AbortCode)
			return
		}
		e.health.RecordAttempt(false)
		e.logger.Warn("execution failed, next poll will rediscover", "intent_id", intent.ID, "error", err)
		e.metrics.SetLastError(err.Error())
		return
	}
	e.health.RecordAttempt(false)

	e.metrics.IncExecuted()
	e.metrics.AddGasSpent(result.GasUsed)
	e.metrics.AddProfitRaw(uint64(max64(0, int64(quote.OutputRaw)-int64(intent.MinOutputAmount))))
	e.logger.Info("executed intent", "intent_id", intent.ID, "digest", result.Digest, "gas_used", result.GasUsed)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func isReverted(err error, target **types.RevertedError) bool {
	return errors.As(err, target)
}

// submitPlan builds, signs with the solver key, and submits a plan that
// carries no threaded results (cancel/cleanup/destroy).
func (e *Engine) submitPlan(ctx context.Context, plan types.TxPlan) error {
	_, err := e.submitSignedPlan(ctx, plan)
	return err
}

func (e *Engine) submitSignedPlan(ctx context.Context, plan types.TxPlan) (*types.ExecutionResult, error) {
	txBytes, err := e.rpc.BuildUnsigned(ctx, plan, e.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("build unsigned: %w", err)
	}
	sig, err := e.signer.Sign(rpc.TxDigest(txBytes))
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return e.rpc.ExecuteSigned(ctx, txBytes, fmt.Sprintf("%x", sig))
}

// submitSignedPTB builds, signs, and submits a multi-command atomic
// settlement PTB.
func (e *Engine) submitSignedPTB(ctx context.Context, ptb types.PTB) (*types.ExecutionResult, error) {
	txBytes, err := e.rpc.BuildUnsignedPTB(ctx, ptb, e.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("build unsigned ptb: %w", err)
	}
	sig, err := e.signer.Sign(rpc.TxDigest(txBytes))
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return e.rpc.ExecuteSigned(ctx, txBytes, fmt.Sprintf("%x", sig))
}
