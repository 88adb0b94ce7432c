// Package registry implements the Intent Registry Client (C2): pure
// transaction-plan builders and parsers for the on-chain intent protocol.
// Builders perform no I/O — they only describe a Move call; submission is
// the RPC client's job.
package registry

import (
	"github.com/intent-solver/settlement/pkg/types"
)

// packageID and deepbookPackageID scope every plan to the deployed
// contract this client targets.
type Client struct {
	packageID         string
	deepbookPackageID string
}

// New creates a registry client bound to the deployed intent-protocol
// package. deepbookPackageID is optional (only PlanAtomicExecute needs
// it) and may be left empty for callers that only build intent-registry
// plans.
func New(packageID string, deepbookPackageID ...string) *Client {
	c := &Client{packageID: packageID}
	if len(deepbookPackageID) > 0 {
		c.deepbookPackageID = deepbookPackageID[0]
	}
	return c
}

func (c *Client) target(fn string) string {
	return c.packageID + "::intent::" + fn
}

// PlanCreate builds the plan for create_intent. deadlineDeltaMs is a
// *duration*; the contract adds `now` itself (spec §4.2).
func (c *Client) PlanCreate(inputCoinRef string, inputType, outputType types.AssetType, minOutputRaw uint64, deadlineDeltaMs int64, gasBudget uint64) types.TxPlan {
	return types.TxPlan{
		Target:        c.target("create_intent"),
		TypeArguments: []string{string(inputType), string(outputType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgObject, Value: inputCoinRef, Label: "coin"},
			{Kind: types.ArgPure, Value: minOutputRaw, Label: "min_out"},
			{Kind: types.ArgPure, Value: uint64(deadlineDeltaMs), Label: "deadline_delta_ms"},
			{Kind: types.ArgObject, Value: "0x6", Label: "clock"},
		},
		GasBudget: gasBudget,
	}
}

// PlanExecute builds the plan for execute_intent. The call returns the
// input-asset Balance as a transaction result, so the caller threads it
// into the subsequent reverse-swap call within the same PTB.
func (c *Client) PlanExecute(intentID, outputCoinRef, configID string, inType, outType types.AssetType, gasBudget uint64) types.TxPlan {
	return types.TxPlan{
		Target:        c.target("execute_intent"),
		TypeArguments: []string{string(inType), string(outType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgObject, Value: intentID, Label: "intent"},
			{Kind: types.ArgObject, Value: outputCoinRef, Label: "out_coin"},
			{Kind: types.ArgObject, Value: configID, Label: "config"},
			{Kind: types.ArgObject, Value: "0x6", Label: "clock"},
		},
		GasBudget: gasBudget,
	}
}

// PlanCancel builds the plan for cancel_intent (owner-only). Returns the
// input balance as a transaction result.
func (c *Client) PlanCancel(intentID string, inType, outType types.AssetType, gasBudget uint64) types.TxPlan {
	return types.TxPlan{
		Target:        c.target("cancel_intent"),
		TypeArguments: []string{string(inType), string(outType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgObject, Value: intentID, Label: "intent"},
		},
		GasBudget: gasBudget,
	}
}

// PlanCleanupExpired builds the plan for cleanup_expired (callable by
// anyone after the deadline).
func (c *Client) PlanCleanupExpired(intentID string, inType, outType types.AssetType, gasBudget uint64) types.TxPlan {
	return types.TxPlan{
		Target:        c.target("cleanup_expired"),
		TypeArguments: []string{string(inType), string(outType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgObject, Value: intentID, Label: "intent"},
			{Kind: types.ArgObject, Value: "0x6", Label: "clock"},
		},
		GasBudget: gasBudget,
	}
}

// PlanDestroy builds the plan for destroy_intent. Terminal-only; the
// contract aborts with IntentNotTerminal otherwise.
func (c *Client) PlanDestroy(intentID string, inType, outType types.AssetType, gasBudget uint64) types.TxPlan {
	return types.TxPlan{
		Target:        c.target("destroy_intent"),
		TypeArguments: []string{string(inType), string(outType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgObject, Value: intentID, Label: "intent"},
		},
		GasBudget: gasBudget,
	}
}

// AtomicExecuteParams collects everything PlanAtomicExecute needs to
// build the solver's one-shot settlement PTB (spec §4.4).
type AtomicExecuteParams struct {
	IntentID      string
	InputType     types.AssetType
	OutputType    types.AssetType
	ConfigID      string
	OutputCoinIDs []string // solver's output-asset coins; merged, then split for the exact payout
	PayoutAmount  uint64   // min_output_amount plus the configured buffer (spec §4.4 step a)
	PoolID        string
	PoolBaseType  types.AssetType
	PoolQuoteType types.AssetType
	DeepFeeCoinID string
	SolverAddress string
	GasBudget     uint64
}

// PlanAtomicExecute builds the atomic settlement PTB (spec §4.4 steps
// a-f): merge+split the solver's output-asset coins for the exact payout,
// call execute_intent, convert the returned input-asset Balance to a
// Coin, reverse-swap it against the CLOB pool (consuming a DEEP fee
// coin), and transfer every leftover coin to the solver. Every command
// shares one transaction — either all succeed atomically or all abort,
// leaving the intent OPEN.
func (c *Client) PlanAtomicExecute(p AtomicExecuteParams) types.PTB {
	var commands []types.MoveCall

	// (a) merge the solver's output coins into one handle, then split out
	// exactly the amount owed. Coin merge/split are native PTB operations,
	// not Move-module calls, but are modeled the same shape for uniformity.
	payCoinArg := types.TxArg{Kind: types.ArgObject, Value: p.OutputCoinIDs[0], Label: "output_coin"}
	if len(p.OutputCoinIDs) > 1 {
		args := []types.TxArg{payCoinArg}
		for _, id := range p.OutputCoinIDs[1:] {
			args = append(args, types.TxArg{Kind: types.ArgObject, Value: id, Label: "coin"})
		}
		commands = append(commands, types.MoveCall{Target: "0x2::coin::join_vec", Arguments: args})
		payCoinArg = types.TxArg{Kind: types.ArgResult, CommandIndex: len(commands) - 1, Label: "merged_output_coin"}
	}
	commands = append(commands, types.MoveCall{
		Target: "0x2::coin::split",
		Arguments: []types.TxArg{
			payCoinArg,
			{Kind: types.ArgPure, Value: p.PayoutAmount, Label: "amount"},
		},
	})
	splitIdx := len(commands) - 1

	// (b) execute_intent; returns Balance<InputType> as a tx result.
	commands = append(commands, types.MoveCall{
		Target:        c.target("execute_intent"),
		TypeArguments: []string{string(p.InputType), string(p.OutputType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgObject, Value: p.IntentID, Label: "intent"},
			{Kind: types.ArgResult, CommandIndex: splitIdx, Label: "out_coin"},
			{Kind: types.ArgObject, Value: p.ConfigID, Label: "config"},
			{Kind: types.ArgObject, Value: "0x6", Label: "clock"},
		},
	})
	executeIdx := len(commands) - 1

	// (c) convert the Balance<InputType> result to a Coin<InputType>.
	commands = append(commands, types.MoveCall{
		Target:        "0x2::coin::from_balance",
		TypeArguments: []string{string(p.InputType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgResult, CommandIndex: executeIdx, Label: "input_balance"},
		},
	})
	coinFromBalanceIdx := len(commands) - 1

	// (d) reverse-swap the collected input asset against the CLOB,
	// spending a DEEP fee coin from solver inventory. Side is determined
	// by which half of the pool the intent's input asset occupies, the
	// same test the quoter uses (spec §4.3 is_sell_base).
	isSellBase := p.InputType == p.PoolBaseType
	swapFn := "swap_exact_quote_for_base"
	if isSellBase {
		swapFn = "swap_exact_base_for_quote"
	}
	commands = append(commands, types.MoveCall{
		Target:        c.deepbookPackageID + "::pool::" + swapFn,
		TypeArguments: []string{string(p.PoolBaseType), string(p.PoolQuoteType)},
		Arguments: []types.TxArg{
			{Kind: types.ArgObject, Value: p.PoolID, Label: "pool"},
			{Kind: types.ArgResult, CommandIndex: coinFromBalanceIdx, Label: "input_coin"},
			{Kind: types.ArgObject, Value: p.DeepFeeCoinID, Label: "deep_fee_coin"},
			{Kind: types.ArgObject, Value: "0x6", Label: "clock"},
		},
	})
	swapIdx := len(commands) - 1

	// (e) transfer every leftover coin the swap returns — leftover_base,
	// leftover_quote, leftover_fee — to the solver. The swap call returns
	// all three regardless of side; unused legs come back as zero-balance
	// coins, which is harmless to transfer.
	for i, label := range []string{"leftover_base", "leftover_quote", "leftover_fee"} {
		commands = append(commands, types.MoveCall{
			Target: "0x2::transfer::public_transfer",
			Arguments: []types.TxArg{
				{Kind: types.ArgResult, CommandIndex: swapIdx, ResultIndex: i, Label: label},
				{Kind: types.ArgPure, Value: p.SolverAddress, Label: "recipient"},
			},
		})
	}

	// (f) gas budget applies to the whole block.
	return types.PTB{Commands: commands, GasBudget: p.GasBudget}
}
