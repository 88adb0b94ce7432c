// health.go implements the engine's circuit breaker: a rolling window of
// recent execution outcomes that trips a cooldown when the revert rate
// gets too high. This domain has no inventory risk to manage — the chain
// enforces atomicity per intent — so the teacher's kill-switch concept is
// repurposed from "protect exposure" to "stop hammering a malfunctioning
// execution path" (see SPEC_FULL §6.4).
package solver

import (
	"log/slog"
	"sync"
	"time"
)

type outcome struct {
	reverted  bool
	timestamp time.Time
}

// HealthMonitor tracks the recent reverted/attempted ratio and trips a
// cooldown when it crosses threshold. During cooldown, process() still
// discovers and quotes intents but skips the execute step.
type HealthMonitor struct {
	mu     sync.Mutex
	window time.Duration
	cooldown time.Duration
	threshold float64

	recent []outcome

	tripped     bool
	trippedUntil time.Time

	logger *slog.Logger
}

// NewHealthMonitor builds a monitor with the given rolling window,
// trip threshold (fraction of recent attempts reverted), and cooldown
// duration.
func NewHealthMonitor(window, cooldown time.Duration, threshold float64, logger *slog.Logger) *HealthMonitor {
	return &HealthMonitor{
		window:    window,
		cooldown:  cooldown,
		threshold: threshold,
		logger:    logger.With("component", "health"),
	}
}

// RecordAttempt registers the outcome of one execute_intent attempt.
func (h *HealthMonitor) RecordAttempt(reverted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.recent = append(h.recent, outcome{reverted: reverted, timestamp: now})
	h.evictStaleLocked(now)

	if h.tripped {
		return
	}
	if len(h.recent) < 3 {
		return
	}
	var reverts int
	for _, o := range h.recent {
		if o.reverted {
			reverts++
		}
	}
	rate := float64(reverts) / float64(len(h.recent))
	if rate > h.threshold {
		h.tripped = true
		h.trippedUntil = now.Add(h.cooldown)
		h.logger.Warn("execution circuit breaker tripped",
			"revert_rate", rate, "threshold", h.threshold, "cooldown_until", h.trippedUntil)
	}
}

// ShouldExecute reports whether the engine is clear to attempt execution.
// Clears the trip automatically once the cooldown has elapsed.
func (h *HealthMonitor) ShouldExecute() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.tripped {
		return true
	}
	if time.Now().After(h.trippedUntil) {
		h.tripped = false
		h.recent = nil
		h.logger.Info("execution circuit breaker cooldown expired")
		return true
	}
	return false
}

func (h *HealthMonitor) evictStaleLocked(now time.Time) {
	cutoff := now.Add(-h.window)
	i := 0
	for ; i < len(h.recent); i++ {
		if h.recent[i].timestamp.After(cutoff) {
			break
		}
	}
	h.recent = h.recent[i:]
}
