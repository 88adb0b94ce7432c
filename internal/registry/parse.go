package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/intent-solver/settlement/pkg/types"
)

// ParseIntent extracts a typed Intent from a raw object snapshot. The
// on-chain object is parameterised `Intent<In,Out>`; the two TypeNames are
// pulled out of the declared type string at the boundary and carried as a
// tagged pair on the record (spec §9: "erase to an AssetType string at the
// boundary").
//
// input_balance is tolerant of the two shapes the RPC node has returned
// across versions: a bare numeric string, or `{fields:{value:"..."}}`.
func ParseIntent(snap *types.ObjectSnapshot) (*types.Intent, error) {
	if snap == nil || snap.ObjectID == "" {
		return nil, &types.NotFoundError{Kind: "intent", ID: ""}
	}

	inType, outType, err := parseTypeParams(snap.Type)
	if err != nil {
		return nil, err
	}

	fields := snap.Fields

	inputBalance, err := parseBalanceField(fields["input_balance"])
	if err != nil {
		return nil, fmt.Errorf("parse input_balance: %w", err)
	}
	minOutput, err := parseUint64(fields["min_output_amount"])
	if err != nil {
		return nil, fmt.Errorf("parse min_output_amount: %w", err)
	}
	deadline, err := parseInt64(fields["deadline"])
	if err != nil {
		return nil, fmt.Errorf("parse deadline: %w", err)
	}
	statusRaw, err := parseUint64(fields["status"])
	if err != nil {
		return nil, fmt.Errorf("parse status: %w", err)
	}

	intent := &types.Intent{
		ID:              snap.ObjectID,
		Owner:           asString(fields["owner"]),
		InputType:       types.AssetType(inType),
		OutputType:      types.AssetType(outType),
		InputBalance:    inputBalance,
		MinOutputAmount: minOutput,
		Deadline:        deadline,
		Status:          types.IntentStatus(statusRaw),
		Solver:          asString(fields["solver"]),
	}
	return intent, nil
}

// parseBalanceField handles both the flat-string and nested-object shapes
// documented in spec.md §9 ("runtime JSON shapes").
func parseBalanceField(raw any) (uint64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseUint(v, 10, 64)
	case float64:
		return uint64(v), nil
	case map[string]any:
		inner, ok := v["fields"].(map[string]any)
		if !ok {
			return 0, fmt.Errorf("unrecognised balance shape: %v", raw)
		}
		return parseUint64(inner["value"])
	default:
		return 0, fmt.Errorf("unrecognised balance shape: %v", raw)
	}
}

func parseUint64(raw any) (uint64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseUint(v, 10, 64)
	case float64:
		return uint64(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unrecognised uint64 shape: %v", raw)
	}
}

func parseInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseInt(v, 10, 64)
	case float64:
		return int64(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unrecognised int64 shape: %v", raw)
	}
}

func asString(raw any) string {
	s, _ := raw.(string)
	return s
}

// parseTypeParams extracts the two TypeNames from a parameterised Move
// type string, e.g. "pkg::intent::Intent<0x2::sui::SUI,0x2::usdc::USDC>".
func parseTypeParams(typeStr string) (string, string, error) {
	open := strings.IndexByte(typeStr, '<')
	close := strings.LastIndexByte(typeStr, '>')
	if open < 0 || close < 0 || close < open {
		return "", "", fmt.Errorf("malformed type parameters in %q", typeStr)
	}
	inner := typeStr[open+1 : close]
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected 2 type params, got %d in %q", len(parts), typeStr)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// ParseEvent converts a raw event envelope into the typed record matching
// its Move event type suffix.
func ParseEvent(env types.EventEnvelope) (any, error) {
	j := env.ParsedJSON

	switch {
	case strings.HasSuffix(env.Type, "::IntentCreated"):
		inputAmount, err := parseUint64(j["input_amount"])
		if err != nil {
			return nil, err
		}
		minOutput, err := parseUint64(j["min_output_amount"])
		if err != nil {
			return nil, err
		}
		deadline, err := parseInt64(j["deadline"])
		if err != nil {
			return nil, err
		}
		return types.IntentCreatedEvent{
			IntentID:        asString(j["intent_id"]),
			Owner:           asString(j["owner"]),
			InputType:       types.AssetType(asString(j["input_type"])),
			OutputType:      types.AssetType(asString(j["output_type"])),
			InputAmount:     inputAmount,
			MinOutputAmount: minOutput,
			Deadline:        deadline,
		}, nil

	case strings.HasSuffix(env.Type, "::IntentExecuted"):
		inputAmount, err := parseUint64(j["input_amount"])
		if err != nil {
			return nil, err
		}
		outputAmount, err := parseUint64(j["output_amount"])
		if err != nil {
			return nil, err
		}
		feeAmount, err := parseUint64(j["fee_amount"])
		if err != nil {
			return nil, err
		}
		execTime, err := parseInt64(j["execution_time"])
		if err != nil {
			return nil, err
		}
		return types.IntentExecutedEvent{
			IntentID:      asString(j["intent_id"]),
			Solver:        asString(j["solver"]),
			InputAmount:   inputAmount,
			OutputAmount:  outputAmount,
			FeeAmount:     feeAmount,
			ExecutionTime: execTime,
		}, nil

	case strings.HasSuffix(env.Type, "::IntentCancelled"):
		return types.IntentCancelledEvent{
			IntentID: asString(j["intent_id"]),
			Owner:    asString(j["owner"]),
		}, nil

	case strings.HasSuffix(env.Type, "::IntentExpired"):
		refund, err := parseUint64(j["refund_amount"])
		if err != nil {
			return nil, err
		}
		return types.IntentExpiredEvent{
			IntentID:     asString(j["intent_id"]),
			Owner:        asString(j["owner"]),
			TriggeredBy:  asString(j["triggered_by"]),
			RefundAmount: refund,
		}, nil

	default:
		return nil, fmt.Errorf("unrecognised event type %q", env.Type)
	}
}
