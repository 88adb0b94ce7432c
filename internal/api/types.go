package api

import "time"

// errorResponse is the façade's uniform error shape (spec §4.5).
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Stack   string `json:"stack,omitempty"`
}

type healthResponse struct {
	Status string        `json:"status"`
	Config ConfigSummary `json:"config"`
}

// ConfigSummary is a non-sensitive view of the running configuration.
type ConfigSummary struct {
	DryRun           bool   `json:"dry_run"`
	PackageID        string `json:"package_id"`
	ProtocolConfigID string `json:"protocol_config_id"`
	MinProfitBps     int    `json:"min_profit_bps"`
	PollingInterval  string `json:"polling_interval"`
	EventsEnabled    bool   `json:"events_enabled"`
}

type poolsResponse struct {
	Pools   []poolDTO         `json:"pools"`
	Aliases map[string]string `json:"aliases"`
}

type poolDTO struct {
	PoolID      string `json:"pool_id"`
	BaseType    string `json:"base_type"`
	QuoteType   string `json:"quote_type"`
	TickSize    uint64 `json:"tick_size"`
	LotSize     uint64 `json:"lot_size"`
}

type quoteRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type quoteResponse struct {
	InputHuman     float64  `json:"input_human"`
	OutputHuman    float64  `json:"output_human"`
	InputRaw       uint64   `json:"input_raw"`
	OutputRaw      uint64   `json:"output_raw"`
	MidPrice       float64  `json:"mid_price"`
	BestBid        float64  `json:"best_bid"`
	BestAsk        float64  `json:"best_ask"`
	PriceImpactPct float64  `json:"price_impact_pct"`
	Route          []string `json:"route"`
}

type orderbookRequest struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

type orderbookResponse struct {
	PoolID  string            `json:"pool_id"`
	Bids    []priceLevelDTO   `json:"bids"`
	Asks    []priceLevelDTO   `json:"asks"`
	Summary orderbookSummary  `json:"summary"`
}

type priceLevelDTO struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

type orderbookSummary struct {
	BestBid  float64 `json:"best_bid"`
	BestAsk  float64 `json:"best_ask"`
	MidPrice float64 `json:"mid_price"`
	Spread   float64 `json:"spread"`
}

type priceRequest struct {
	Pair string `json:"pair"`
}

type priceResponse struct {
	Pair     string  `json:"pair"`
	MidPrice float64 `json:"mid_price"`
}

type intentRequest struct {
	ID string `json:"id"`
}

type intentResponse struct {
	ID              string  `json:"id"`
	Owner           string  `json:"owner"`
	InputType       string  `json:"input_type"`
	OutputType      string  `json:"output_type"`
	InputAmount     float64 `json:"input_amount"`
	MinOutputAmount float64 `json:"min_output_amount"`
	Deadline        int64   `json:"deadline"`
	Status          string  `json:"status"`
	Solver          string  `json:"solver,omitempty"`
	Expired         bool    `json:"expired"`
}

type executeIntentRequest struct {
	IntentID string `json:"intentId"`
}

// createIntentRequest is the test-path /intent/create body: the façade
// holds no implicit user identity, so the caller supplies the signing key
// for the intent's owner directly (spec §4.5: "no authentication is
// specified; the façade trusts its caller").
type createIntentRequest struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Amount          float64 `json:"amount"`
	MinOutput       float64 `json:"minOutput"`
	DeadlineSeconds int64   `json:"deadlineSeconds"`
	PrivateKey      string  `json:"privateKey"`
	CoinID          string  `json:"coinId"`
}

// cancelIntentRequest is the test-path /intent/cancel body; owner-key
// required per spec §4.5.
type cancelIntentRequest struct {
	IntentID   string `json:"intentId"`
	PrivateKey string `json:"privateKey"`
}

type txSubmittedResponse struct {
	Success bool   `json:"success"`
	Digest  string `json:"digest"`
}

type openIntentsRequest struct {
	Limit          int  `json:"limit"`
	IncludeExpired bool `json:"includeExpired"`
}

type openIntentsResponse struct {
	Intents []intentResponse `json:"intents"`
}

type historyRequest struct {
	Limit int `json:"limit"`
}

type historyResponse struct {
	Created  []intentResponse `json:"created"`
	Executed []intentResponse `json:"executed"`
}

type buildCreateRequest struct {
	Sender          string  `json:"sender"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	Amount          float64 `json:"amount"`
	MinOutput       float64 `json:"minOutput"`
	DeadlineSeconds int64   `json:"deadlineSeconds"`
	CoinID          string  `json:"coinId"`
}

type buildExecuteRequest struct {
	Sender   string `json:"sender"`
	IntentID string `json:"intentId"`
}

type buildCancelRequest struct {
	Sender   string `json:"sender"`
	IntentID string `json:"intentId"`
}

type buildTxResponse struct {
	TxBytesBase64 string `json:"txBytes"`
}

type executeTxRequest struct {
	TxBytesBase64 string `json:"txBytes"`
	Signature     string `json:"signature"`
}

type walletBalanceRequest struct {
	Address string `json:"address"`
}

type walletBalanceResponse struct {
	Balances map[string]balanceDTO `json:"balances"`
}

type balanceDTO struct {
	Raw   uint64  `json:"raw"`
	Human float64 `json:"human"`
}

type protocolConfigResponse struct {
	FeeBps       uint64 `json:"fee_bps"`
	FeeRecipient string `json:"fee_recipient"`
	Paused       bool   `json:"paused"`
}

type metricsResponse struct {
	Processed uint64 `json:"processed"`
	Executed  uint64 `json:"executed"`
	Skipped   uint64 `json:"skipped"`
	Reverted  uint64 `json:"reverted"`
	GasSpent  uint64 `json:"gas_spent"`
	ProfitRaw uint64 `json:"profit_raw"`
	LastError string `json:"last_error,omitempty"`
}

// EngineEvent is broadcast over /ws for live dashboards to consume
// (SPEC_FULL §6.5).
type EngineEvent struct {
	Type      string    `json:"type"` // discovered | executed | skipped | reverted | cleanup
	IntentID  string    `json:"intent_id"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}
