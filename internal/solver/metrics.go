package solver

import "sync/atomic"

// Metrics holds the engine's monotonic counters (spec §3). Writers from
// many goroutines increment atomically; readers (the façade's metrics
// endpoint) may observe any recent consistent snapshot — no total
// ordering is required (spec §5).
type Metrics struct {
	processed atomic.Uint64
	executed  atomic.Uint64
	skipped   atomic.Uint64
	reverted  atomic.Uint64
	gasSpent  atomic.Uint64
	profitRaw atomic.Uint64

	lastError atomic.Value // string
}

// MetricsSnapshot is an immutable read of Metrics at a point in time.
type MetricsSnapshot struct {
	Processed uint64
	Executed  uint64
	Skipped   uint64
	Reverted  uint64
	GasSpent  uint64
	ProfitRaw uint64
	LastError string
}

func (m *Metrics) IncProcessed()             { m.processed.Add(1) }
func (m *Metrics) IncExecuted()              { m.executed.Add(1) }
func (m *Metrics) IncSkipped()               { m.skipped.Add(1) }
func (m *Metrics) IncReverted()              { m.reverted.Add(1) }
func (m *Metrics) AddGasSpent(n uint64)      { m.gasSpent.Add(n) }
func (m *Metrics) AddProfitRaw(n uint64)     { m.profitRaw.Add(n) }
func (m *Metrics) SetLastError(msg string)   { m.lastError.Store(msg) }

// Snapshot returns a consistent-enough read of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	lastErr, _ := m.lastError.Load().(string)
	return MetricsSnapshot{
		Processed: m.processed.Load(),
		Executed:  m.executed.Load(),
		Skipped:   m.skipped.Load(),
		Reverted:  m.reverted.Load(),
		GasSpent:  m.gasSpent.Load(),
		ProfitRaw: m.profitRaw.Load(),
		LastError: lastErr,
	}
}
