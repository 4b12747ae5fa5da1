// Package notify carries outbound notification events raised by the
// issuance workflow. The coordinator only publishes events; formatting and
// delivery live here, decoupled from the transactional writes so a mail
// outage cannot fail a borrower's request.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zmarolt/knjiznica/internal/model"
)

// Kind identifies what happened.
type Kind string

// Event kinds.
const (
	KindRequestCreated Kind = "request_created"
	KindLoanIssued     Kind = "loan_issued"
)

// Event is a notification about a request or loan, carrying the book, the
// counterparty user and the relevant dates.
type Event struct {
	Kind        Kind
	Book        model.Book
	User        model.User
	RequestDate time.Time
	IssuedDate  time.Time
	DueDate     time.Time
}

// Notifier delivers a single event synchronously.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Sink accepts events for eventual delivery. The coordinator publishes
// through this interface and never learns about delivery failures.
type Sink interface {
	Publish(ev Event)
}

// LogNotifier writes events to the log instead of delivering them anywhere.
// Used when no mail transport is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.Logger.Info("notification",
		zap.String("kind", string(ev.Kind)),
		zap.String("user", ev.User.Email),
		zap.String("book", ev.Book.Title),
		zap.String("isbn", ev.Book.ISBN),
	)
	return nil
}
