package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Dispatcher queues events and delivers them on a background goroutine.
// Delivery is best effort: failures are logged and the event is dropped,
// never surfaced to the caller whose write triggered it.
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan Event
	done     chan struct{}
}

// deliveryTimeout bounds a single delivery attempt.
const deliveryTimeout = 30 * time.Second

// NewDispatcher starts a dispatcher with the given queue capacity.
func NewDispatcher(n Notifier, logger *zap.Logger, capacity int) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		logger:   logger,
		queue:    make(chan Event, capacity),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish implements Sink. It never blocks: if the queue is full the event
// is dropped and logged.
func (d *Dispatcher) Publish(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("notification queue full, dropping event",
			zap.String("kind", string(ev.Kind)),
			zap.String("user", ev.User.Email),
		)
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		if err := d.notifier.Notify(ctx, ev); err != nil {
			d.logger.Error("notification delivery failed",
				zap.String("kind", string(ev.Kind)),
				zap.String("user", ev.User.Email),
				zap.Error(err),
			)
		}
		cancel()
	}
}
