package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/zmarolt/knjiznica/internal/model"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func TestDispatcherDelivers(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, zap.NewNop(), 16)

	for i := 0; i < 5; i++ {
		d.Publish(Event{
			Kind: KindLoanIssued,
			User: model.User{Email: "member@example.com"},
			Book: model.Book{Title: "Dune"},
		})
	}
	d.Close()

	if got := notifier.count(); got != 5 {
		t.Errorf("expected 5 deliveries, got %d", got)
	}
}

func TestDispatcherSwallowsDeliveryErrors(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	d := NewDispatcher(notifier, zap.NewNop(), 16)

	// Publish must not block or panic when delivery fails.
	d.Publish(Event{Kind: KindRequestCreated})
	d.Close()

	if got := notifier.count(); got != 1 {
		t.Errorf("expected 1 attempted delivery, got %d", got)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// A notifier that blocks until released, so the queue fills up.
	release := make(chan struct{})
	blocking := &blockingNotifier{release: release}
	d := NewDispatcher(blocking, zap.NewNop(), 1)

	// First event occupies the worker, second fills the queue, the rest
	// must be dropped without blocking this goroutine.
	for i := 0; i < 10; i++ {
		d.Publish(Event{Kind: KindLoanIssued})
	}
	close(release)
	d.Close()

	if got := blocking.count(); got > 2 {
		t.Errorf("expected at most 2 deliveries with capacity 1, got %d", got)
	}
}

type blockingNotifier struct {
	release   chan struct{}
	mu        sync.Mutex
	delivered int
}

func (n *blockingNotifier) Notify(_ context.Context, _ Event) error {
	<-n.release
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered++
	return nil
}

func (n *blockingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.delivered
}
