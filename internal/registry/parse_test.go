package registry

import (
	"testing"
	"time"

	"github.com/intent-solver/settlement/pkg/types"
)

func TestParseIntentFlatStringBalance(t *testing.T) {
	t.Parallel()

	snap := &types.ObjectSnapshot{
		ObjectID: "0xintent1",
		Type:     "0xpkg::intent::Intent<0x2::sui::SUI,0xusdc::usdc::USDC>",
		Fields: map[string]any{
			"owner":             "0xowner",
			"input_balance":     "1000000000",
			"min_output_amount": "1800000",
			"deadline":          "3600000",
			"status":            float64(0),
			"solver":            "",
		},
	}

	intent, err := ParseIntent(snap)
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if intent.InputType != "0x2::sui::SUI" || intent.OutputType != "0xusdc::usdc::USDC" {
		t.Errorf("type params not parsed correctly: in=%s out=%s", intent.InputType, intent.OutputType)
	}
	if intent.InputBalance != 1_000_000_000 {
		t.Errorf("InputBalance = %d, want 1000000000", intent.InputBalance)
	}
	if intent.Status != types.StatusOpen {
		t.Errorf("Status = %v, want OPEN", intent.Status)
	}
}

// TestParseIntentNestedBalance covers the RPC-version-dependent nested
// {fields:{value:"..."}} shape documented in spec.md §9.
func TestParseIntentNestedBalance(t *testing.T) {
	t.Parallel()

	snap := &types.ObjectSnapshot{
		ObjectID: "0xintent2",
		Type:     "0xpkg::intent::Intent<0x2::sui::SUI,0xusdc::usdc::USDC>",
		Fields: map[string]any{
			"owner": "0xowner",
			"input_balance": map[string]any{
				"fields": map[string]any{"value": "500000"},
			},
			"min_output_amount": "400000",
			"deadline":          "1000",
			"status":            float64(1),
			"solver":            "0xsolver",
		},
	}

	intent, err := ParseIntent(snap)
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if intent.InputBalance != 500_000 {
		t.Errorf("InputBalance = %d, want 500000 (nested shape)", intent.InputBalance)
	}
	if intent.Status != types.StatusCompleted {
		t.Errorf("Status = %v, want COMPLETED", intent.Status)
	}
	if intent.Solver != "0xsolver" {
		t.Errorf("Solver = %q, want 0xsolver", intent.Solver)
	}
}

func TestParseIntentMissing(t *testing.T) {
	t.Parallel()
	if _, err := ParseIntent(&types.ObjectSnapshot{}); err == nil {
		t.Error("expected error for empty snapshot")
	}
	if _, err := ParseIntent(nil); err == nil {
		t.Error("expected error for nil snapshot")
	}
}

func TestParseIntentMalformedType(t *testing.T) {
	t.Parallel()
	snap := &types.ObjectSnapshot{ObjectID: "0x1", Type: "0xpkg::intent::Intent"}
	if _, err := ParseIntent(snap); err == nil {
		t.Error("expected error for type string without type params")
	}
}

func TestParseEventIntentCreated(t *testing.T) {
	t.Parallel()

	env := types.EventEnvelope{
		Type: "0xpkg::intent::IntentCreated",
		ParsedJSON: map[string]any{
			"intent_id":         "0xintent1",
			"owner":             "0xowner",
			"input_type":        "0x2::sui::SUI",
			"output_type":       "0xusdc::usdc::USDC",
			"input_amount":      "1000000000",
			"min_output_amount": "1800000",
			"deadline":          "3600000",
		},
		Timestamp: time.Now(),
	}

	parsed, err := ParseEvent(env)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	created, ok := parsed.(types.IntentCreatedEvent)
	if !ok {
		t.Fatalf("parsed type = %T, want IntentCreatedEvent", parsed)
	}
	if created.InputAmount != 1_000_000_000 {
		t.Errorf("InputAmount = %d, want 1000000000", created.InputAmount)
	}
}

func TestParseEventIntentExpired(t *testing.T) {
	t.Parallel()

	env := types.EventEnvelope{
		Type: "0xpkg::intent::IntentExpired",
		ParsedJSON: map[string]any{
			"intent_id":     "0xintent1",
			"owner":         "0xowner",
			"triggered_by":  "0xanyone",
			"refund_amount": "1000000000",
		},
	}

	parsed, err := ParseEvent(env)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	expired, ok := parsed.(types.IntentExpiredEvent)
	if !ok {
		t.Fatalf("parsed type = %T, want IntentExpiredEvent", parsed)
	}
	// I5: expiry cleanup returns the refund to the owner, never the caller.
	if expired.Owner == expired.TriggeredBy {
		t.Error("owner and triggered_by should differ in this fixture")
	}
	if expired.RefundAmount != 1_000_000_000 {
		t.Errorf("RefundAmount = %d, want 1000000000", expired.RefundAmount)
	}
}

func TestParseEventUnrecognisedType(t *testing.T) {
	t.Parallel()
	_, err := ParseEvent(types.EventEnvelope{Type: "0xpkg::other::SomethingElse"})
	if err == nil {
		t.Error("expected error for unrecognised event type")
	}
}
