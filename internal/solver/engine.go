// Package solver implements the Solver Engine (C4): event-driven
// discovery, duplicate suppression, profitability analysis, atomic
// execution orchestration, and metrics. Grounded on the teacher's
// internal/engine.Engine lifecycle (New/Start/Stop, sync.WaitGroup-drained
// goroutines, context cancellation).
package solver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/intent-solver/settlement/internal/registry"
	"github.com/intent-solver/settlement/internal/rpc"
	"github.com/intent-solver/settlement/pkg/types"
)

// Signer is the narrow signing capability the engine needs to submit
// execute_intent / cleanup_expired transactions on the solver's behalf.
type Signer interface {
	Address() string
	Sign(digest []byte) ([]byte, error)
}

// RPCClient is the combined RPC surface the engine depends on.
type RPCClient interface {
	ObjectReader
	Executor
	CoinReader
	EventQuerier
}

// Config tunes engine behaviour (spec §4.4, §9 OQ1-OQ3 preserved verbatim).
type Config struct {
	PackageID        string
	ProtocolConfigID string
	MinProfitBps     int
	PollingInterval  time.Duration
	PollingBatchSize int
	EnableEvents     bool
	GasBudget        uint64
	OutputBufferBps  int

	RevertRateThreshold float64
	RevertWindow        time.Duration
	CooldownAfterTrip   time.Duration
}

// Engine orchestrates discovery, quoting, and atomic execution.
type Engine struct {
	cfg Config

	rpc          RPCClient
	quoter       IntentQuoter
	registry     *registry.Client
	signer       Signer
	inventory    *Inventory
	eventQuerier EventQuerier
	subscriber   EventSubscriber

	inFlight *processingSet
	metrics  *Metrics
	health   *HealthMonitor

	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an Engine. It does not start any goroutines.
func New(cfg Config, rpcClient RPCClient, quoter IntentQuoter, reg *registry.Client, signer Signer, subscriber EventSubscriber, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:          cfg,
		rpc:          rpcClient,
		quoter:       quoter,
		registry:     reg,
		signer:       signer,
		inventory:    NewInventory(signer.Address(), rpcClient),
		eventQuerier: rpcClient,
		subscriber:   subscriber,
		inFlight:     newProcessingSet(),
		metrics:      &Metrics{},
		health:       NewHealthMonitor(cfg.RevertWindow, cfg.CooldownAfterTrip, cfg.RevertRateThreshold, logger),
		logger:       logger.With("component", "solver"),
	}
}

// ColdStartCheck runs one synchronous quote to confirm CLOB connectivity
// before the engine accepts discovery traffic (spec §4.4). Failure should
// abort process startup (exit code 1, spec §6).
func (e *Engine) ColdStartCheck(ctx context.Context, inputType, outputType types.AssetType, probeAmount uint64) error {
	if _, err := e.quoter.Quote(ctx, inputType, outputType, probeAmount); err != nil {
		return fmt.Errorf("cold start quote check failed: %w", err)
	}
	return nil
}

// Start launches the poller and (optionally) the push subscriber.
// Non-blocking; call Stop to shut down.
func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runPoller(e.ctx)
	}()

	if e.cfg.EnableEvents {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.runSubscriber(e.ctx)
		}()
	}

	e.logger.Info("solver engine started", "events_enabled", e.cfg.EnableEvents, "poll_interval", e.cfg.PollingInterval)
}

// Stop cancels background tasks and waits for in-flight pipelines to
// drain (spec §5: "in-flight pipelines are allowed to drain").
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	e.wg.Wait()
	e.logger.Info("solver engine stopped", "processing_set_size", e.inFlight.size())
}

// Metrics returns the engine's metrics snapshot, for the façade.
func (e *Engine) Metrics() MetricsSnapshot { return e.metrics.Snapshot() }

// Cancel builds and submits plan_cancel on the owner's behalf, signed by
// ownerSigner. The façade's /intent/cancel endpoint does not call it; that
// handler builds and signs its own cancel plan.
func (e *Engine) Cancel(ctx context.Context, intent types.Intent, ownerSigner Signer) (*types.ExecutionResult, error) {
	plan := e.registry.PlanCancel(intent.ID, intent.InputType, intent.OutputType, e.cfg.GasBudget)
	txBytes, err := e.rpc.BuildUnsigned(ctx, plan, ownerSigner.Address())
	if err != nil {
		return nil, fmt.Errorf("build unsigned: %w", err)
	}
	sig, err := ownerSigner.Sign(rpc.TxDigest(txBytes))
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return e.rpc.ExecuteSigned(ctx, txBytes, fmt.Sprintf("%x", sig))
}

// Execute runs the full execute path for one intent id on demand (used by
// the façade's /intent/execute endpoint).
func (e *Engine) Execute(ctx context.Context, id string) {
	e.process(ctx, id)
}
