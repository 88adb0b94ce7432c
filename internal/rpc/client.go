// Package rpc implements a thin, typed wrapper over the ledger's JSON-RPC
// surface: object reads, coin reads, event queries/subscriptions,
// dev-inspect simulation, and signed-transaction submission.
//
// Every request is rate-limited via per-category TokenBuckets. The client
// applies no retry of its own — retries live in the solver engine, which
// re-discovers intents on the next poll rather than looping here.
package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/intent-solver/settlement/pkg/types"
)

// Client is the JSON-RPC client for the ledger node.
type Client struct {
	http   *resty.Client
	rl     *RateLimiter
	logger *slog.Logger
}

// Config carries the subset of connection settings the client needs.
type Config struct {
	URL              string
	RequestTimeout   time.Duration
	ReadsPerSec      float64
	EventsPerSec     float64
	DevInspectPerSec float64
	SubmitPerSec     float64
}

// New creates an RPC client with rate limiting and retry-free transport.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		rl:     NewRateLimiter(cfg.ReadsPerSec, cfg.EventsPerSec, cfg.DevInspectPerSec, cfg.SubmitPerSec),
		logger: logger.With("component", "rpc"),
	}
}

type rpcEnvelope struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  []any `json:"params"`
}

type rpcResponse struct {
	Result any            `json:"result"`
	Error  *rpcError      `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call issues one JSON-RPC request after acquiring a token from bucket.
// Transport and protocol-level failures are classified into the domain
// taxonomy; callers never see raw network errors.
func (c *Client) call(ctx context.Context, bucket *TokenBucket, method string, params []any, out any) error {
	if err := bucket.Wait(ctx); err != nil {
		return &types.TransientError{Op: method, Err: err}
	}

	envelope := rpcEnvelope{JSONRPC: "2.0", ID: 1, Method: method, Params: params}
	var raw rpcResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(envelope).
		SetResult(&raw).
		Post("")
	if err != nil {
		return &types.TransientError{Op: method, Err: err}
	}
	if resp.StatusCode() >= 500 {
		return &types.TransientError{Op: method, Err: fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())}
	}
	if resp.StatusCode() >= 400 {
		return &types.InvalidArgumentError{Op: method, Message: resp.String()}
	}
	if raw.Error != nil {
		return &types.InvalidArgumentError{Op: method, Message: raw.Error.Message}
	}

	if out == nil {
		return nil
	}
	return decodeResult(raw.Result, out)
}

// decodeResult re-marshals the already-decoded `any` result into out via
// the json package, since resty decoded the envelope but not its payload
// shape (which varies per method).
func decodeResult(result any, out any) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// GetObject reads one on-chain object by id.
func (c *Client) GetObject(ctx context.Context, id string) (*types.ObjectSnapshot, error) {
	var snap types.ObjectSnapshot
	if err := c.call(ctx, c.rl.Reads, "sui_getObject", []any{id, map[string]any{"showContent": true, "showType": true}}, &snap); err != nil {
		return nil, err
	}
	if snap.ObjectID == "" {
		return nil, &types.NotFoundError{Kind: "object", ID: id}
	}
	return &snap, nil
}

// GetCoins returns the owner's coin objects of the given coin type, in
// RPC-native order (not specified by the upstream node).
func (c *Client) GetCoins(ctx context.Context, owner, coinType string) ([]types.CoinBalance, error) {
	var coins []types.CoinBalance
	if err := c.call(ctx, c.rl.Reads, "suix_getCoins", []any{owner, coinType}, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// QueryEvents returns the newest (or oldest, per descending) limit events
// of the given Move event type.
func (c *Client) QueryEvents(ctx context.Context, moveEventType string, limit int, descending bool) ([]types.EventEnvelope, error) {
	var events []types.EventEnvelope
	params := []any{
		map[string]any{"MoveEventType": moveEventType},
		nil,
		limit,
		descending,
	}
	if err := c.call(ctx, c.rl.Events, "suix_queryEvents", params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// DevInspect simulates a transaction read-only and returns its move-call
// return values, still BCS-encoded.
func (c *Client) DevInspect(ctx context.Context, txBytes []byte, sender string) (*types.DevInspectResult, error) {
	var result types.DevInspectResult
	params := []any{sender, base64.StdEncoding.EncodeToString(txBytes)}
	if err := c.call(ctx, c.rl.DevInspect, "sui_devInspectTransactionBlock", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BuildUnsigned builds the raw (unsigned) transaction bytes for a plan.
func (c *Client) BuildUnsigned(ctx context.Context, plan types.TxPlan, sender string) ([]byte, error) {
	var b64 string
	params := []any{sender, plan}
	if err := c.call(ctx, c.rl.Submit, "unsafe_moveCall", params, &b64); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(b64)
}

// BuildUnsignedPTB builds the raw (unsigned) transaction bytes for a
// multi-command programmable transaction block (spec §4.4's atomic
// settlement transaction).
func (c *Client) BuildUnsignedPTB(ctx context.Context, ptb types.PTB, sender string) ([]byte, error) {
	var b64 string
	params := []any{sender, ptb}
	if err := c.call(ctx, c.rl.Submit, "unsafe_requestExecuteTransaction", params, &b64); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(b64)
}

// ExecuteSigned submits a signed transaction for on-chain execution.
func (c *Client) ExecuteSigned(ctx context.Context, txBytes []byte, signature string) (*types.ExecutionResult, error) {
	var result types.ExecutionResult
	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		[]string{signature},
		map[string]any{"showEffects": true, "showEvents": true},
	}
	if err := c.call(ctx, c.rl.Submit, "sui_executeTransactionBlock", params, &result); err != nil {
		return nil, err
	}
	if result.EffectsStatus == "failure" {
		return &result, &types.RevertedError{
			Digest:    result.Digest,
			Module:    result.AbortModule,
			AbortCode: types.AbortCode(result.AbortCode),
		}
	}
	return &result, nil
}
