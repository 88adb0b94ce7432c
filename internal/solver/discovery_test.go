package solver

import (
	"context"
	"testing"
	"time"

	"github.com/intent-solver/settlement/pkg/types"
)

func TestIntentCreatedEventTypeFormat(t *testing.T) {
	t.Parallel()
	got := intentCreatedEventType("0xpkg")
	want := "0xpkg::intent::IntentCreated"
	if got != want {
		t.Errorf("intentCreatedEventType = %q, want %q", got, want)
	}
}

func createdEventEnvelope(id string) types.EventEnvelope {
	return types.EventEnvelope{
		Type: "0xpkg::intent::IntentCreated",
		ParsedJSON: map[string]any{
			"intent_id":         id,
			"owner":             "0xowner",
			"input_type":        string(testInputType),
			"output_type":       string(testOutputType),
			"input_amount":      float64(1_000_000_000),
			"min_output_amount": float64(10_000_000),
			"deadline":          float64(time.Now().UnixMilli() + 3_600_000),
		},
	}
}

// TestPollFeedsValidEventsAndSkipsMalformed covers at-least-once delivery
// tolerance (spec §4.1): one unparseable event among a batch must not
// block discovery of the others.
func TestPollFeedsValidEventsAndSkipsMalformed(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{
		object: openIntentSnapshot(1_000_000_000, 10_000_000, time.Now().UnixMilli()+3_600_000),
		events: []types.EventEnvelope{
			createdEventEnvelope("0xintent1"),
			{Type: "0xpkg::intent::SomethingElse"},
			createdEventEnvelope("0xintent2"),
		},
	}
	quoter := &fakeQuoter{quote: &types.SwapQuote{OutputRaw: 10_000_400}}
	e := testEngine(t, rpc, quoter)

	e.poll(context.Background())

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if e.Metrics().Processed >= 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if got := e.Metrics().Processed; got < 2 {
		t.Errorf("Processed = %d, want at least 2 (malformed event should not block the others)", got)
	}
}

// TestPollToleratesQueryError covers the discovery poll's failure mode:
// a failed QueryEvents call is logged and swallowed, not fatal.
func TestPollToleratesQueryError(t *testing.T) {
	t.Parallel()
	rpc := &fakeRPC{eventsErr: errBoom{}}
	e := testEngine(t, rpc, &fakeQuoter{})

	e.poll(context.Background())

	if got := e.Metrics().Processed; got != 0 {
		t.Errorf("Processed = %d, want 0 when the event query itself fails", got)
	}
}

// fakeSubscriber records the single handler registered and lets the test
// drive it directly, simulating a push delivery.
type fakeSubscriber struct {
	handler     func(types.EventEnvelope)
	unsubscribed bool
}

func (f *fakeSubscriber) Subscribe(moveEventType string, handler func(types.EventEnvelope)) func() {
	f.handler = handler
	return func() { f.unsubscribed = true }
}

// TestRunSubscriberFeedsProcess covers the push discovery path (spec
// §4.4): a delivered IntentCreated event reaches process() the same way
// a polled one does.
func TestRunSubscriberFeedsProcess(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{object: openIntentSnapshot(1_000_000_000, 10_000_000, time.Now().UnixMilli()+3_600_000)}
	quoter := &fakeQuoter{quote: &types.SwapQuote{OutputRaw: 10_000_400}}
	e := testEngine(t, rpc, quoter)

	sub := &fakeSubscriber{}
	e.subscriber = sub

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.runSubscriber(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for sub.handler == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if sub.handler == nil {
		t.Fatal("expected Subscribe to register a handler")
	}

	sub.handler(createdEventEnvelope("0xintent1"))

	deadline = time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if e.Metrics().Processed >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if got := e.Metrics().Processed; got < 1 {
		t.Errorf("Processed = %d, want at least 1 after a pushed delivery", got)
	}

	cancel()
	<-done
	if !sub.unsubscribed {
		t.Error("expected unsubscribe to run on context cancellation")
	}
}
