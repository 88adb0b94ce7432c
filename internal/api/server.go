// server.go wires the façade's routes and lifecycle, adapted from the
// teacher's internal/api/server.go (a plain http.ServeMux, conservative
// timeouts, hub started as its own goroutine alongside an event-consumer
// goroutine that feeds it).
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/intent-solver/settlement/internal/clob"
	"github.com/intent-solver/settlement/internal/config"
	"github.com/intent-solver/settlement/internal/registry"
	"github.com/intent-solver/settlement/internal/rpc"
	"github.com/intent-solver/settlement/internal/solver"
)

// Server runs the solver's HTTP/WebSocket façade (spec §4.5).
type Server struct {
	cfg      *config.Config
	hub      *Hub
	handlers *Handlers
	server   *http.Server
	events   <-chan EngineEvent
	logger   *slog.Logger
}

// NewServer builds the façade server and registers every route named in
// the spec's endpoint table. events, if non-nil, is broadcast to every
// connected WebSocket client as it arrives.
func NewServer(cfg *config.Config, aliases *AliasTable, pools *clob.PoolRegistry, quoter *clob.Quoter, reg *registry.Client, rpcc *rpc.Client, engine *solver.Engine, events <-chan EngineEvent, logger *slog.Logger) *Server {
	hub := NewHub(logger)
	handlers := NewHandlers(cfg, aliases, pools, quoter, reg, rpcc, engine, hub, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HandleHealth)
	mux.HandleFunc("/pools", handlers.HandlePools)
	mux.HandleFunc("/quote", handlers.HandleQuote)
	mux.HandleFunc("/orderbook", handlers.HandleOrderbook)
	mux.HandleFunc("/price", handlers.HandlePrice)
	mux.HandleFunc("/intent", handlers.HandleIntent)
	mux.HandleFunc("/intent/create", handlers.HandleIntentCreate)
	mux.HandleFunc("/intent/execute", handlers.HandleIntentExecute)
	mux.HandleFunc("/intent/cancel", handlers.HandleIntentCancel)
	mux.HandleFunc("/intents/open", handlers.HandleOpenIntents)
	mux.HandleFunc("/intents/history", handlers.HandleHistory)
	mux.HandleFunc("/intent/build/create", handlers.HandleBuildCreate)
	mux.HandleFunc("/intent/build/execute", handlers.HandleBuildExecute)
	mux.HandleFunc("/intent/build/cancel", handlers.HandleBuildCancel)
	mux.HandleFunc("/tx/execute", handlers.HandleTxExecute)
	mux.HandleFunc("/wallet/balance", handlers.HandleWalletBalance)
	mux.HandleFunc("/config", handlers.HandleConfig)
	mux.HandleFunc("/solver/metrics", handlers.HandleMetrics)
	mux.HandleFunc("/ws", handlers.HandleWebSocket)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		cfg:      cfg,
		hub:      hub,
		handlers: handlers,
		server:   server,
		events:   events,
		logger:   logger.With("component", "api_server"),
	}
}

// Start runs the event-consumer goroutine and blocks serving HTTP until
// Stop shuts the server down.
func (s *Server) Start() error {
	go s.consumeEvents()

	s.logger.Info("api server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully drains in-flight requests before closing listeners.
func (s *Server) Stop() error {
	s.logger.Info("stopping api server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) consumeEvents() {
	if s.events == nil {
		return
	}
	for evt := range s.events {
		s.hub.Broadcast(evt)
	}
}
