// Intent Settlement Solver — a market-maker-of-last-resort backend that
// discovers user-posted swap intents on a public ledger, evaluates
// whether filling them against an on-chain central-limit order book is
// profitable, and atomically settles the ones that are.
//
// Architecture:
//
//	main.go                 — entry point: loads config, starts engine + façade, waits for SIGINT/SIGTERM
//	internal/rpc            — typed JSON-RPC client: object/coin reads, event query/subscribe, dev-inspect, tx submission
//	internal/registry       — intent transaction-plan builders (create/execute/cancel/cleanup/destroy) and parsers
//	internal/clob           — CLOB pool registry, Level-2 depth retrieval, market-buy/sell simulation for quoting
//	internal/solver         — event-driven discovery, dedup, profitability analysis, atomic execution, metrics
//	internal/api            — HTTP/WebSocket façade consumed by external UIs and wallets
//
// Exit codes: 0 normal stop, 1 fatal startup (missing config or failed
// cold-start quote). A dropped event subscription is reconnected with
// backoff for as long as the process runs and is only logged, so an RPC
// disconnect never ends the process and no exit code 2 is used.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/intent-solver/settlement/internal/api"
	"github.com/intent-solver/settlement/internal/clob"
	"github.com/intent-solver/settlement/internal/config"
	"github.com/intent-solver/settlement/internal/registry"
	"github.com/intent-solver/settlement/internal/rpc"
	"github.com/intent-solver/settlement/internal/solver"
	"github.com/intent-solver/settlement/pkg/types"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("SOLVER_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	rpcClient := rpc.New(rpc.Config{
		URL:              cfg.RPC.URL,
		RequestTimeout:   cfg.RPC.RequestTimeout,
		ReadsPerSec:      cfg.RPC.ReadsPerSec,
		EventsPerSec:     cfg.RPC.EventsPerSec,
		DevInspectPerSec: cfg.RPC.DevInspectPerSec,
		SubmitPerSec:     cfg.RPC.SubmitPerSec,
	}, logger)

	pools := make([]types.Pool, 0, len(cfg.Pools))
	for _, p := range cfg.Pools {
		pools = append(pools, types.Pool{
			PoolID:             p.PoolID,
			BaseType:           types.AssetType(p.BaseType),
			QuoteType:          types.AssetType(p.QuoteType),
			BaseScalar:         p.BaseScalar,
			QuoteScalar:        p.QuoteScalar,
			TickSize:           p.TickSize,
			LotSize:            p.LotSize,
			DeepFeeType:        types.AssetType(p.DeepFeeType),
			DeepFeeCoinMinimum: p.DeepFeeCoinMinimum,
		})
	}
	poolRegistry, err := clob.NewPoolRegistry(pools)
	if err != nil {
		logger.Error("failed to build pool registry", "error", err)
		os.Exit(1)
	}

	signer, err := rpc.NewECDSASigner(cfg.Wallet.PrivateKey)
	if err != nil {
		logger.Error("failed to load solver signing key", "error", err)
		os.Exit(1)
	}

	quoter := clob.New(poolRegistry, rpcClient, cfg.Protocol.PackageID, cfg.Protocol.DeepbookPackageID, signer.Address())
	regClient := registry.New(cfg.Protocol.PackageID, cfg.Protocol.DeepbookPackageID)
	aliases := api.NewAliasTable(cfg.Assets.Aliases, cfg.Assets.Decimals)

	var subscriber *rpc.Subscriber
	if cfg.Solver.EnableEvents {
		subscriber = rpc.NewSubscriber(cfg.RPC.WSURL, logger)
	}

	engineCfg := solver.Config{
		PackageID:           cfg.Protocol.PackageID,
		ProtocolConfigID:    cfg.Protocol.ProtocolConfigID,
		MinProfitBps:        cfg.Solver.MinProfitBps,
		PollingInterval:     time.Duration(cfg.Solver.PollingIntervalMs) * time.Millisecond,
		PollingBatchSize:    cfg.Solver.PollingBatchSize,
		EnableEvents:        cfg.Solver.EnableEvents,
		GasBudget:           cfg.Solver.GasBudget,
		OutputBufferBps:     cfg.Solver.OutputBufferBps,
		RevertRateThreshold: cfg.Solver.RevertRateThreshold,
		RevertWindow:        cfg.Solver.RevertWindow,
		CooldownAfterTrip:   cfg.Solver.CooldownAfterTrip,
	}
	engine := solver.New(engineCfg, rpcClient, quoter, regClient, signer, subscriber, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RPC.RequestTimeout)
	probeInput, probeOutput, probeAmount := coldStartProbe(cfg)
	if err := engine.ColdStartCheck(ctx, probeInput, probeOutput, probeAmount); err != nil {
		cancel()
		logger.Error("cold start quote check failed, aborting", "error", err)
		os.Exit(1)
	}
	cancel()

	events := make(chan api.EngineEvent, 256)
	apiServer := api.NewServer(cfg, aliases, poolRegistry, quoter, regClient, rpcClient, engine, events, logger)

	runCtx, runCancel := context.WithCancel(context.Background())
	engine.Start(runCtx)

	if cfg.Solver.EnableEvents {
		go func() {
			if err := subscriber.Run(runCtx); err != nil && runCtx.Err() == nil {
				logger.Error("event subscription terminated", "error", err)
			}
		}()
	}

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("api server failed", "error", err)
		}
	}()
	logger.Info("intent settlement solver started",
		"addr", fmt.Sprintf(":%d", cfg.API.Port),
		"pools", len(cfg.Pools),
		"min_profit_bps", cfg.Solver.MinProfitBps,
		"events_enabled", cfg.Solver.EnableEvents,
		"dry_run", cfg.DryRun,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	if err := apiServer.Stop(); err != nil {
		logger.Error("failed to stop api server", "error", err)
	}
	runCancel()
	engine.Stop()
	close(events)
}

// coldStartProbe picks the first configured pool's base/quote pair and a
// nominal one-unit-of-base amount to confirm CLOB connectivity before
// accepting discovery traffic (spec §4.4).
func coldStartProbe(cfg *config.Config) (types.AssetType, types.AssetType, uint64) {
	if len(cfg.Pools) == 0 {
		return "", "", 0
	}
	p := cfg.Pools[0]
	return types.AssetType(p.BaseType), types.AssetType(p.QuoteType), p.BaseScalar
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
