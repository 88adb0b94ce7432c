// discovery.go implements the two cooperating discovery paths (spec
// §4.4): pull (poll the newest N IntentCreated events) and push
// (subscription-triggered). Both feed process(id). Adapted from the
// teacher's market.Scanner poll loop (immediate first scan, then ticker),
// generalized from "rank markets" to "list candidate intents".
package solver

import (
	"context"
	"time"

	"github.com/intent-solver/settlement/internal/registry"
	"github.com/intent-solver/settlement/pkg/types"
)

// EventQuerier reads historical events.
type EventQuerier interface {
	QueryEvents(ctx context.Context, moveEventType string, limit int, descending bool) ([]types.EventEnvelope, error)
}

// EventSubscriber subscribes to live events.
type EventSubscriber interface {
	Subscribe(moveEventType string, handler func(types.EventEnvelope)) (unsubscribe func())
}

func intentCreatedEventType(packageID string) string {
	return packageID + "::intent::IntentCreated"
}

// runPoller polls for the newest batch of IntentCreated events every
// PollingInterval and feeds each to process. Does an immediate first scan
// on startup, matching the teacher's scanner.
func (e *Engine) runPoller(ctx context.Context) {
	e.poll(ctx)

	ticker := time.NewTicker(e.cfg.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.poll(ctx)
		}
	}
}

func (e *Engine) poll(ctx context.Context) {
	events, err := e.eventQuerier.QueryEvents(ctx, intentCreatedEventType(e.cfg.PackageID), e.cfg.PollingBatchSize, true)
	if err != nil {
		e.logger.Warn("poll failed", "error", err)
		return
	}
	for _, env := range events {
		parsed, err := registry.ParseEvent(env)
		if err != nil {
			e.logger.Debug("ignoring unparseable event", "error", err)
			continue
		}
		created, ok := parsed.(types.IntentCreatedEvent)
		if !ok {
			continue
		}
		e.wg.Add(1)
		go func(id string) {
			defer e.wg.Done()
			e.process(ctx, id)
		}(created.IntentID)
	}
}

// runSubscriber subscribes to IntentCreated and feeds every delivery to
// process immediately. Delivery is at-least-once and unordered relative
// to polling (spec §4.1); the processing_set collapses the overlap.
func (e *Engine) runSubscriber(ctx context.Context) {
	unsubscribe := e.subscriber.Subscribe(intentCreatedEventType(e.cfg.PackageID), func(env types.EventEnvelope) {
		parsed, err := registry.ParseEvent(env)
		if err != nil {
			e.logger.Debug("ignoring unparseable event", "error", err)
			return
		}
		created, ok := parsed.(types.IntentCreatedEvent)
		if !ok {
			return
		}
		e.wg.Add(1)
		go func(id string) {
			defer e.wg.Done()
			e.process(ctx, id)
		}(created.IntentID)
	})
	defer unsubscribe()

	<-ctx.Done()
}
