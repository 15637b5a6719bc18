package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type recordingObserver struct {
	name   string
	events *[]string
	err    error
}

func (o *recordingObserver) OnMatchFound(_ context.Context, _ *Match) error {
	*o.events = append(*o.events, o.name+":found")
	return o.err
}

func (o *recordingObserver) OnMatchUpdated(_ context.Context, _ *Match) error {
	*o.events = append(*o.events, o.name+":updated")
	return o.err
}

func (o *recordingObserver) OnMatchCancelled(_ context.Context, _ *Match) error {
	*o.events = append(*o.events, o.name+":cancelled")
	return o.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryDeliversInSubscriptionOrder(t *testing.T) {
	r := NewRegistry(discardLogger())
	var events []string
	r.Subscribe(&recordingObserver{name: "a", events: &events})
	r.Subscribe(&recordingObserver{name: "b", events: &events})

	r.PublishMatchFound(context.Background(), &Match{ID: 1})
	r.PublishMatchUpdated(context.Background(), &Match{ID: 1})
	r.PublishMatchCancelled(context.Background(), &Match{ID: 1})

	want := []string{"a:found", "b:found", "a:updated", "b:updated", "a:cancelled", "b:cancelled"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], events[i])
		}
	}
}

func TestRegistrySubscribeIsIdempotent(t *testing.T) {
	r := NewRegistry(discardLogger())
	var events []string
	o := &recordingObserver{name: "a", events: &events}
	r.Subscribe(o)
	r.Subscribe(o)

	r.PublishMatchFound(context.Background(), &Match{ID: 1})
	if len(events) != 1 {
		t.Errorf("double subscription delivered %d events, want 1", len(events))
	}
}

func TestRegistryUnsubscribe(t *testing.T) {
	r := NewRegistry(discardLogger())
	var events []string
	o := &recordingObserver{name: "a", events: &events}
	r.Subscribe(o)
	r.Unsubscribe(o)

	r.PublishMatchFound(context.Background(), &Match{ID: 1})
	if len(events) != 0 {
		t.Errorf("unsubscribed observer still received %d events", len(events))
	}

	// Unsubscribing an unknown observer is a no-op.
	r.Unsubscribe(&recordingObserver{name: "b", events: &events})
}

func TestRegistryObserverErrorDoesNotBlockOthers(t *testing.T) {
	r := NewRegistry(discardLogger())
	var events []string
	r.Subscribe(&recordingObserver{name: "bad", events: &events, err: errors.New("boom")})
	r.Subscribe(&recordingObserver{name: "good", events: &events})

	r.PublishMatchFound(context.Background(), &Match{ID: 1})

	if len(events) != 2 || events[1] != "good:found" {
		t.Errorf("observer after a failing one must still be notified, got %v", events)
	}
}

type nopObserver struct{}

func (nopObserver) OnMatchFound(context.Context, *Match) error     { return nil }
func (nopObserver) OnMatchUpdated(context.Context, *Match) error   { return nil }
func (nopObserver) OnMatchCancelled(context.Context, *Match) error { return nil }

func TestRegistryConcurrentSubscribeDuringPublish(t *testing.T) {
	r := NewRegistry(discardLogger())
	r.Subscribe(nopObserver{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Subscribe(&nopObserver{})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.PublishMatchFound(context.Background(), &Match{ID: int64(j)})
			}
		}()
	}
	wg.Wait()
}
