package types

import "fmt"

// AbortCode mirrors the Move module's abort codes (spec §6).
type AbortCode int

const (
	AbortInvalidStatus AbortCode = iota
	AbortInvalidOwner
	AbortInsufficientOutput
	AbortIntentExpired
	AbortSameAssetSwap
	AbortIntentNotExpired
	AbortIntentNotTerminal
	AbortZeroAmount
	AbortInvalidDeadline
	AbortInvalidFee
)

func (c AbortCode) String() string {
	switch c {
	case AbortInvalidStatus:
		return "InvalidStatus"
	case AbortInvalidOwner:
		return "InvalidOwner"
	case AbortInsufficientOutput:
		return "InsufficientOutput"
	case AbortIntentExpired:
		return "IntentExpired"
	case AbortSameAssetSwap:
		return "SameAssetSwap"
	case AbortIntentNotExpired:
		return "IntentNotExpired"
	case AbortIntentNotTerminal:
		return "IntentNotTerminal"
	case AbortZeroAmount:
		return "ZeroAmount"
	case AbortInvalidDeadline:
		return "InvalidDeadline"
	case AbortInvalidFee:
		return "InvalidFee"
	default:
		return fmt.Sprintf("AbortCode(%d)", int(c))
	}
}

// TransientError wraps a retryable failure (network blip, RPC timeout,
// 5xx). Callers should back off and retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: transient: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// InvalidArgumentError signals a caller-supplied value that can never
// succeed (malformed address, bad type tag). Not retryable.
type InvalidArgumentError struct {
	Op      string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument: %s", e.Op, e.Message)
}

// NotFoundError signals the referenced on-chain object does not exist
// (or was deleted/wrapped).
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.ID) }

// NoPoolError signals no registered pool quotes the requested asset pair.
type NoPoolError struct {
	Base, Quote AssetType
}

func (e *NoPoolError) Error() string {
	return fmt.Sprintf("no pool for pair %s/%s", e.Base, e.Quote)
}

// NoLiquidityError signals a pool exists but has insufficient depth to
// fill the requested amount.
type NoLiquidityError struct {
	PoolID   string
	Requested uint64
	Available uint64
}

func (e *NoLiquidityError) Error() string {
	return fmt.Sprintf("pool %s: insufficient liquidity (requested %d, available %d)",
		e.PoolID, e.Requested, e.Available)
}

// InsufficientBalanceError signals the solver lacks enough of an asset to
// fund an execution attempt.
type InsufficientBalanceError struct {
	Asset     AssetType
	Requested uint64
	Available uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance of %s: requested %d, available %d",
		e.Asset, e.Requested, e.Available)
}

// NoFeeCoinError signals the solver lacks the small DEEP-denominated fee
// coin the reverse-swap step of the atomic execution PTB requires (spec
// §4.4 step d).
type NoFeeCoinError struct {
	FeeType   AssetType
	Requested uint64
	Available uint64
}

func (e *NoFeeCoinError) Error() string {
	return fmt.Sprintf("no fee coin of %s: requested %d, available %d", e.FeeType, e.Requested, e.Available)
}

// RevertedError signals the transaction was submitted and executed on
// chain but the Move call aborted. This is NOT a transient failure: the
// attempt is over, and duplicate-suppression state should be released.
type RevertedError struct {
	Digest    string
	Module    string
	AbortCode AbortCode
}

func (e *RevertedError) Error() string {
	return fmt.Sprintf("reverted: digest=%s module=%s code=%s", e.Digest, e.Module, e.AbortCode)
}

// FatalError signals an unrecoverable condition (bad config, protocol
// mismatch) that should stop the engine rather than be retried per-intent.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("%s: fatal: %v", e.Op, e.Err) }
func (e *FatalError) Unwrap() error { return e.Err }
