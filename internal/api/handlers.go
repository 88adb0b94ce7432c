// handlers.go implements the façade's HTTP handler methods, one per
// endpoint named in SPEC_FULL §6.5. Adapted from the teacher's
// internal/api/handlers.go: JSON-in/JSON-out, a shared origin-check
// helper for the WebSocket upgrade, and a uniform error envelope.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/intent-solver/settlement/internal/clob"
	"github.com/intent-solver/settlement/internal/config"
	"github.com/intent-solver/settlement/internal/registry"
	"github.com/intent-solver/settlement/internal/rpc"
	"github.com/intent-solver/settlement/internal/solver"
	"github.com/intent-solver/settlement/pkg/types"
)

// Handlers holds every dependency the façade's endpoints call into.
type Handlers struct {
	cfg      *config.Config
	aliases  *AliasTable
	pools    *clob.PoolRegistry
	quoter   *clob.Quoter
	registry *registry.Client
	rpcc     *rpc.Client
	engine   *solver.Engine
	hub      *Hub
	logger   *slog.Logger
}

// NewHandlers wires the façade's handler dependencies together.
func NewHandlers(cfg *config.Config, aliases *AliasTable, pools *clob.PoolRegistry, quoter *clob.Quoter, reg *registry.Client, rpcc *rpc.Client, engine *solver.Engine, hub *Hub, logger *slog.Logger) *Handlers {
	return &Handlers{
		cfg:      cfg,
		aliases:  aliases,
		pools:    pools,
		quoter:   quoter,
		registry: reg,
		rpcc:     rpcc,
		engine:   engine,
		hub:      hub,
		logger:   logger.With("component", "api_handlers"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Success: false, Error: err.Error()}
	if h.cfg.Logging.Level == "debug" {
		resp.Stack = fmt.Sprintf("%+v", err)
	}
	writeJSON(w, status, resp)
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// statusForError maps a domain error to its HTTP status (spec §4.5).
func statusForError(err error) int {
	switch {
	case errors.As(err, new(*types.InvalidArgumentError)):
		return http.StatusBadRequest
	case errors.As(err, new(*types.NotFoundError)):
		return http.StatusNotFound
	case errors.As(err, new(*types.NoPoolError)), errors.As(err, new(*types.NoLiquidityError)), errors.As(err, new(*types.InsufficientBalanceError)):
		return http.StatusUnprocessableEntity
	case errors.As(err, new(*types.RevertedError)):
		return http.StatusConflict
	case errors.As(err, new(*types.TransientError)):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleHealth reports liveness plus a non-sensitive config summary.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Config: ConfigSummary{
			DryRun:           h.cfg.DryRun,
			PackageID:        h.cfg.Protocol.PackageID,
			ProtocolConfigID: h.cfg.Protocol.ProtocolConfigID,
			MinProfitBps:     h.cfg.Solver.MinProfitBps,
			PollingInterval:  time.Duration(h.cfg.Solver.PollingIntervalMs * int(time.Millisecond)).String(),
			EventsEnabled:    h.cfg.Solver.EnableEvents,
		},
	})
}

// HandlePools lists every configured pool and the ticker aliases resolving
// into their asset types.
func (h *Handlers) HandlePools(w http.ResponseWriter, r *http.Request) {
	pools := h.pools.All()
	dtos := make([]poolDTO, 0, len(pools))
	for _, p := range pools {
		dtos = append(dtos, poolDTO{
			PoolID:    p.PoolID,
			BaseType:  string(p.BaseType),
			QuoteType: string(p.QuoteType),
			TickSize:  p.TickSize,
			LotSize:   p.LotSize,
		})
	}
	writeJSON(w, http.StatusOK, poolsResponse{Pools: dtos, Aliases: h.aliases.All()})
}

// HandleQuote simulates a market order and returns the resulting fill in
// human-readable units (spec §4.3).
func (h *Handlers) HandleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	from := h.aliases.Resolve(req.From)
	to := h.aliases.Resolve(req.To)
	inputRaw := h.aliases.HumanToRaw(req.Amount, from)

	quote, err := h.quoter.Quote(r.Context(), from, to, inputRaw)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		InputHuman:     req.Amount,
		OutputHuman:    h.aliases.RawToHuman(quote.OutputRaw, to),
		InputRaw:       quote.InputRaw,
		OutputRaw:      quote.OutputRaw,
		MidPrice:       quote.MidPrice,
		BestBid:        quote.BestBid,
		BestAsk:        quote.BestAsk,
		PriceImpactPct: quote.PriceImpactPct,
		Route:          quote.Route,
	})
}

// HandleOrderbook returns the live two-sided depth for a base/quote pair.
func (h *Handlers) HandleOrderbook(w http.ResponseWriter, r *http.Request) {
	var req orderbookRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	base := h.aliases.Resolve(req.Base)
	quote := h.aliases.Resolve(req.Quote)
	pool, ok := h.pools.FindPool(base, quote)
	if !ok {
		h.writeError(w, http.StatusUnprocessableEntity, &types.NoPoolError{Base: base, Quote: quote})
		return
	}

	snap, err := h.quoter.Level2(r.Context(), pool)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}

	bids := make([]priceLevelDTO, len(snap.Bids))
	for i, l := range snap.Bids {
		bids[i] = priceLevelDTO{Price: l.Price, Quantity: l.Quantity}
	}
	asks := make([]priceLevelDTO, len(snap.Asks))
	for i, l := range snap.Asks {
		asks[i] = priceLevelDTO{Price: l.Price, Quantity: l.Quantity}
	}

	bestBid, _ := snap.BestBid()
	bestAsk, _ := snap.BestAsk()
	mid, _ := snap.MidPrice()

	writeJSON(w, http.StatusOK, orderbookResponse{
		PoolID: snap.PoolID,
		Bids:   bids,
		Asks:   asks,
		Summary: orderbookSummary{
			BestBid:  bestBid,
			BestAsk:  bestAsk,
			MidPrice: mid,
			Spread:   bestAsk - bestBid,
		},
	})
}

// HandlePrice returns the pool's mid price for "BASE/QUOTE" style pairs.
func (h *Handlers) HandlePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	parts := strings.SplitN(req.Pair, "/", 2)
	if len(parts) != 2 {
		h.writeError(w, http.StatusBadRequest, &types.InvalidArgumentError{Op: "price", Message: "pair must be BASE/QUOTE"})
		return
	}
	base := h.aliases.Resolve(parts[0])
	quote := h.aliases.Resolve(parts[1])
	pool, ok := h.pools.FindPool(base, quote)
	if !ok {
		h.writeError(w, http.StatusUnprocessableEntity, &types.NoPoolError{Base: base, Quote: quote})
		return
	}
	snap, err := h.quoter.Level2(r.Context(), pool)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	mid, _ := snap.MidPrice()
	writeJSON(w, http.StatusOK, priceResponse{Pair: req.Pair, MidPrice: mid})
}

func (h *Handlers) toIntentResponse(ctx context.Context, intent types.Intent) intentResponse {
	return intentResponse{
		ID:              intent.ID,
		Owner:           intent.Owner,
		InputType:       string(intent.InputType),
		OutputType:      string(intent.OutputType),
		InputAmount:     h.aliases.RawToHuman(intent.InputBalance, intent.InputType),
		MinOutputAmount: h.aliases.RawToHuman(intent.MinOutputAmount, intent.OutputType),
		Deadline:        intent.Deadline,
		Status:          intent.Status.String(),
		Solver:          intent.Solver,
		Expired:         registry.IsExpired(intent, nowMsLocal()),
	}
}

func nowMsLocal() int64 { return time.Now().UnixMilli() }

func (h *Handlers) loadIntent(ctx context.Context, id string) (types.Intent, error) {
	snap, err := h.rpcc.GetObject(ctx, id)
	if err != nil {
		return types.Intent{}, err
	}
	intent, err := registry.ParseIntent(snap)
	if err != nil {
		return types.Intent{}, err
	}
	return *intent, nil
}

// HandleIntent returns one intent's current on-chain state.
func (h *Handlers) HandleIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	intent, err := h.loadIntent(r.Context(), req.ID)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, h.toIntentResponse(r.Context(), intent))
}

// HandleIntentExecute runs the solver pipeline for one intent id on
// demand and replies 202 with the intent id; the pipeline's outcome is not
// part of the response.
func (h *Handlers) HandleIntentExecute(w http.ResponseWriter, r *http.Request) {
	var req executeIntentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.engine.Execute(r.Context(), req.IntentID)
	writeJSON(w, http.StatusAccepted, map[string]any{"success": true, "intentId": req.IntentID})
}

// HandleIntentCreate is the test path for posting a new intent. The
// façade holds no user key of its own: the caller supplies the owner's
// private key in the request body and the transaction is signed with it.
// If no coinId is given, the first coin of the input type that the RPC
// lists for the owner is used.
func (h *Handlers) HandleIntentCreate(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	signer, err := rpc.NewECDSASigner(req.PrivateKey)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	from := h.aliases.Resolve(req.From)
	to := h.aliases.Resolve(req.To)
	minOutputRaw := h.aliases.HumanToRaw(req.MinOutput, to)

	coinRef := req.CoinID
	if coinRef == "" {
		coins, err := h.rpcc.GetCoins(r.Context(), signer.Address(), string(from))
		if err != nil {
			h.writeError(w, statusForError(err), err)
			return
		}
		if len(coins) == 0 {
			h.writeError(w, http.StatusUnprocessableEntity, &types.InsufficientBalanceError{Asset: from})
			return
		}
		coinRef = coins[0].CoinID
	}

	plan := h.registry.PlanCreate(coinRef, from, to, minOutputRaw, req.DeadlineSeconds*1000, h.cfg.Solver.GasBudget)
	result, err := h.signAndSubmit(r.Context(), plan, signer)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, txSubmittedResponse{Success: true, Digest: result.Digest})
}

// HandleIntentCancel is the test path for cancelling an intent; the
// caller supplies the owner's private key (owner-only per §6 abort code 1).
func (h *Handlers) HandleIntentCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelIntentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	signer, err := rpc.NewECDSASigner(req.PrivateKey)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	intent, err := h.loadIntent(r.Context(), req.IntentID)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	plan := h.registry.PlanCancel(intent.ID, intent.InputType, intent.OutputType, h.cfg.Solver.GasBudget)
	result, err := h.signAndSubmit(r.Context(), plan, signer)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, txSubmittedResponse{Success: true, Digest: result.Digest})
}

// signAndSubmit builds, signs, and submits a plan on behalf of signer.
func (h *Handlers) signAndSubmit(ctx context.Context, plan types.TxPlan, signer *rpc.ECDSASigner) (*types.ExecutionResult, error) {
	txBytes, err := h.rpcc.BuildUnsigned(ctx, plan, signer.Address())
	if err != nil {
		return nil, fmt.Errorf("build unsigned: %w", err)
	}
	sig, err := signer.Sign(rpc.TxDigest(txBytes))
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return h.rpcc.ExecuteSigned(ctx, txBytes, fmt.Sprintf("%x", sig))
}

// HandleOpenIntents scans the protocol's recent IntentCreated events and
// reports every intent still open (spec §4.4 discovery, exposed read-only).
func (h *Handlers) HandleOpenIntents(w http.ResponseWriter, r *http.Request) {
	var req openIntentsRequest
	decodeBody(r, &req)
	if req.Limit <= 0 {
		req.Limit = 50
	}

	events, err := h.rpcc.QueryEvents(r.Context(), h.cfg.Protocol.PackageID+"::intent::IntentCreated", req.Limit, true)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}

	out := make([]intentResponse, 0, len(events))
	for _, env := range events {
		parsed, err := registry.ParseEvent(env)
		if err != nil {
			continue
		}
		created, ok := parsed.(types.IntentCreatedEvent)
		if !ok {
			continue
		}
		intent, err := h.loadIntent(r.Context(), created.IntentID)
		if err != nil {
			continue
		}
		if intent.Status != types.StatusOpen {
			continue
		}
		if !req.IncludeExpired && registry.IsExpired(intent, nowMsLocal()) {
			continue
		}
		out = append(out, h.toIntentResponse(r.Context(), intent))
	}
	writeJSON(w, http.StatusOK, openIntentsResponse{Intents: out})
}

// HandleHistory reports the most recent created/executed events.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	decodeBody(r, &req)
	if req.Limit <= 0 {
		req.Limit = 50
	}

	created := h.historyFor(r.Context(), "IntentCreated", req.Limit)
	executed := h.historyFor(r.Context(), "IntentExecuted", req.Limit)
	writeJSON(w, http.StatusOK, historyResponse{Created: created, Executed: executed})
}

func (h *Handlers) historyFor(ctx context.Context, suffix string, limit int) []intentResponse {
	events, err := h.rpcc.QueryEvents(ctx, h.cfg.Protocol.PackageID+"::intent::"+suffix, limit, true)
	if err != nil {
		return nil
	}
	out := make([]intentResponse, 0, len(events))
	for _, env := range events {
		parsed, err := registry.ParseEvent(env)
		if err != nil {
			continue
		}
		var id string
		switch e := parsed.(type) {
		case types.IntentCreatedEvent:
			id = e.IntentID
		case types.IntentExecutedEvent:
			id = e.IntentID
		default:
			continue
		}
		intent, err := h.loadIntent(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, h.toIntentResponse(ctx, intent))
	}
	return out
}

// HandleBuildCreate returns an unsigned create_intent transaction for the
// caller's wallet to sign client-side (spec §4.5 "build" endpoints).
func (h *Handlers) HandleBuildCreate(w http.ResponseWriter, r *http.Request) {
	var req buildCreateRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	from := h.aliases.Resolve(req.From)
	to := h.aliases.Resolve(req.To)
	minOutputRaw := h.aliases.HumanToRaw(req.MinOutput, to)

	coinRef := req.CoinID
	if coinRef == "" {
		coins, err := h.rpcc.GetCoins(r.Context(), req.Sender, string(from))
		if err != nil {
			h.writeError(w, statusForError(err), err)
			return
		}
		if len(coins) == 0 {
			h.writeError(w, http.StatusUnprocessableEntity, &types.InsufficientBalanceError{Asset: from})
			return
		}
		coinRef = coins[0].CoinID
	}

	plan := h.registry.PlanCreate(coinRef, from, to, minOutputRaw, req.DeadlineSeconds*1000, h.cfg.Solver.GasBudget)
	txBytes, err := h.rpcc.BuildUnsigned(r.Context(), plan, req.Sender)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, buildTxResponse{TxBytesBase64: encodeBase64(txBytes)})
}

// HandleBuildExecute returns an unsigned execute_intent transaction.
func (h *Handlers) HandleBuildExecute(w http.ResponseWriter, r *http.Request) {
	var req buildExecuteRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	intent, err := h.loadIntent(r.Context(), req.IntentID)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	plan := h.registry.PlanExecute(intent.ID, "", h.cfg.Protocol.ProtocolConfigID, intent.InputType, intent.OutputType, h.cfg.Solver.GasBudget)
	txBytes, err := h.rpcc.BuildUnsigned(r.Context(), plan, req.Sender)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, buildTxResponse{TxBytesBase64: encodeBase64(txBytes)})
}

// HandleBuildCancel returns an unsigned cancel_intent transaction.
func (h *Handlers) HandleBuildCancel(w http.ResponseWriter, r *http.Request) {
	var req buildCancelRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	intent, err := h.loadIntent(r.Context(), req.IntentID)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	plan := h.registry.PlanCancel(intent.ID, intent.InputType, intent.OutputType, h.cfg.Solver.GasBudget)
	txBytes, err := h.rpcc.BuildUnsigned(r.Context(), plan, req.Sender)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, buildTxResponse{TxBytesBase64: encodeBase64(txBytes)})
}

// HandleTxExecute submits an externally-signed transaction built via one of
// the /intent/build/* endpoints.
func (h *Handlers) HandleTxExecute(w http.ResponseWriter, r *http.Request) {
	var req executeTxRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	txBytes, err := decodeBase64(req.TxBytesBase64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.rpcc.ExecuteSigned(r.Context(), txBytes, req.Signature)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, txSubmittedResponse{Success: true, Digest: result.Digest})
}

// HandleWalletBalance reports per-asset raw and human balances for the
// solver's own wallet, or an arbitrary address when supplied.
func (h *Handlers) HandleWalletBalance(w http.ResponseWriter, r *http.Request) {
	var req walletBalanceRequest
	decodeBody(r, &req)
	address := req.Address
	if address == "" {
		address = h.cfg.Wallet.Address
	}

	balances := make(map[string]balanceDTO)
	for alias, assetType := range h.aliases.All() {
		coins, err := h.rpcc.GetCoins(r.Context(), address, assetType)
		if err != nil {
			continue
		}
		var total uint64
		for _, c := range coins {
			total += c.Balance
		}
		balances[alias] = balanceDTO{Raw: total, Human: h.aliases.RawToHuman(total, types.AssetType(assetType))}
	}
	writeJSON(w, http.StatusOK, walletBalanceResponse{Balances: balances})
}

// HandleConfig reports the protocol's shared fee/pause object.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	snap, err := h.rpcc.GetObject(r.Context(), h.cfg.Protocol.ProtocolConfigID)
	if err != nil {
		h.writeError(w, statusForError(err), err)
		return
	}
	feeBps, _ := snap.Fields["fee_bps"].(float64)
	feeRecipient, _ := snap.Fields["fee_recipient"].(string)
	paused, _ := snap.Fields["paused"].(bool)
	writeJSON(w, http.StatusOK, protocolConfigResponse{
		FeeBps:       uint64(feeBps),
		FeeRecipient: feeRecipient,
		Paused:       paused,
	})
}

// HandleMetrics reports the solver engine's running counters.
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Metrics()
	writeJSON(w, http.StatusOK, metricsResponse{
		Processed: snap.Processed,
		Executed:  snap.Executed,
		Skipped:   snap.Skipped,
		Reverted:  snap.Reverted,
		GasSpent:  snap.GasSpent,
		ProfitRaw: snap.ProfitRaw,
		LastError: snap.LastError,
	})
}

// HandleWebSocket upgrades the connection to a solver-lifecycle event
// stream, subject to the configured origin allowlist.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *http.Request) bool {
			return isOriginAllowed(req.Header.Get("Origin"), h.cfg.API.AllowedOrigins, req.Host)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	NewClient(h.hub, conn)
}

func isOriginAllowed(origin string, allowed []string, reqHost string) bool {
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	normalized := normalizeOrigin(originURL.Scheme, originURL.Host)
	if normalized == "" {
		return false
	}

	if len(allowed) > 0 {
		for _, a := range allowed {
			u, err := url.Parse(a)
			if err != nil {
				continue
			}
			if normalized == normalizeOrigin(u.Scheme, u.Host) {
				return true
			}
		}
		return false
	}

	host := strings.ToLower(originURL.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}

	reqHostname := normalizeHost(reqHost)
	return reqHostname != "" && host == reqHostname
}

func normalizeOrigin(scheme, host string) string {
	if scheme == "" || host == "" {
		return ""
	}
	return strings.ToLower(scheme) + "://" + strings.ToLower(host)
}

func normalizeHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(hostport)
}

func encodeBase64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func decodeBase64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }
