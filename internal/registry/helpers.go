package registry

import "github.com/intent-solver/settlement/pkg/types"

// IsExpired reports whether nowMs has passed the intent's deadline.
func IsExpired(intent types.Intent, nowMs int64) bool {
	return nowMs > intent.Deadline
}

// IsTerminal reports whether the intent is in one of the three terminal
// states.
func IsTerminal(intent types.Intent) bool {
	return intent.Status.IsTerminal()
}

// Fee computes the protocol fee withheld from the input side. Integer
// arithmetic, truncated toward zero — must match the on-chain computation
// exactly (spec I3).
func Fee(amount, feeBps uint64) uint64 {
	return amount * feeBps / 10000
}
