// Package issuance holds the book-issuance workflow: the checks that decide
// whether a request to borrow a book may proceed, and the bookkeeping that
// keeps a book's available copy count consistent with outstanding loans.
package issuance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zmarolt/knjiznica/internal/model"
	"github.com/zmarolt/knjiznica/internal/notify"
	"github.com/zmarolt/knjiznica/internal/store"
)

// LoanPeriod is how long a borrower may keep a book.
const LoanPeriod = 20 * 24 * time.Hour

// Coordinator orchestrates the catalog, the request ledger and the loan
// ledger. It holds no state of its own; every operation is a single
// database transaction so the read-check-write sequence cannot interleave
// with a concurrent issuance.
type Coordinator struct {
	db     *sql.DB
	events notify.Sink

	// Now is the clock used for request, issue and due dates.
	// Overridable in tests.
	Now func() time.Time
}

// New creates a coordinator. events may be nil if notifications are not
// wanted.
func New(db *sql.DB, events notify.Sink) *Coordinator {
	return &Coordinator{db: db, events: events, Now: time.Now}
}

// SubmitRequest records a borrower's request to have a book issued.
//
// It fails with ErrBookNotFound if the book does not exist, with
// ErrDuplicateRequest if the borrower already has an open request for it,
// and with an ErrIssuanceBlocked reason if the book has no available copy
// or is already on loan to the borrower.
func (c *Coordinator) SubmitRequest(ctx context.Context, requesterID, bookID int64) (*model.IssueRequest, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	book, requester, err := c.resolve(ctx, tx, requesterID, bookID)
	if err != nil {
		return nil, err
	}

	open, err := store.FindOpenRequest(ctx, tx, requesterID, bookID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrDuplicateRequest
	}

	if err := c.checkEligibility(ctx, tx, book, requesterID); err != nil {
		return nil, err
	}

	request, err := store.CreateIssueRequest(ctx, tx, requesterID, bookID, c.Now())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing issue request: %w", err)
	}

	c.publish(notify.Event{
		Kind:        notify.KindRequestCreated,
		Book:        *book,
		User:        *requester,
		RequestDate: request.RequestDate,
	})

	return request, nil
}

// IssueBook issues a book to a borrower: it creates the issue log,
// decrements the book's availability and, if the borrower has an open
// request for the book, transitions it to "issued". All three writes commit
// together or not at all. A matching request is optional; ad-hoc issuance
// is permitted.
//
// Eligibility is re-validated here even when a request exists, since
// availability may have changed between request and issuance.
func (c *Coordinator) IssueBook(ctx context.Context, borrowerID, bookID int64) (*model.IssueLog, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	book, borrower, err := c.resolve(ctx, tx, borrowerID, bookID)
	if err != nil {
		return nil, err
	}

	open, err := store.FindOpenRequest(ctx, tx, borrowerID, bookID)
	if err != nil {
		return nil, err
	}

	if err := c.checkEligibility(ctx, tx, book, borrowerID); err != nil {
		return nil, err
	}

	issued := c.Now()
	loan, err := store.CreateIssueLog(ctx, tx, borrowerID, bookID, issued, issued.Add(LoanPeriod))
	if err != nil {
		return nil, err
	}

	applied, err := store.DecrementAvailable(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if !applied {
		// The eligibility check passed inside this transaction, so a
		// failed decrement means the counter itself is broken.
		return nil, fmt.Errorf("%w: book %d has no copy to decrement", ErrInvariantViolation, bookID)
	}

	if open != nil {
		ok, err := store.MarkRequestIssued(ctx, tx, open.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: request %d is not open", ErrInvalidTransition, open.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing issuance: %w", err)
	}

	c.publish(notify.Event{
		Kind:       notify.KindLoanIssued,
		Book:       *book,
		User:       *borrower,
		IssuedDate: loan.IssuedDate,
		DueDate:    loan.DueDate,
	})

	return loan, nil
}

// ReturnBook closes an open loan, recording the deposit date and penalty
// and putting the copy back into circulation.
func (c *Coordinator) ReturnBook(ctx context.Context, loanID int64, returnedOn time.Time, penalty int) (*model.IssueLog, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	loan, err := store.GetIssueLog(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, ErrLoanNotFound
	}

	closed, err := store.CloseIssueLog(ctx, tx, loanID, returnedOn, penalty)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, fmt.Errorf("%w: loan %d is already closed", ErrInvalidTransition, loanID)
	}

	applied, err := store.IncrementAvailable(ctx, tx, loan.BookID)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: book %d already has all copies available", ErrInvariantViolation, loan.BookID)
	}

	loan, err = store.GetIssueLog(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return: %w", err)
	}

	return loan, nil
}

// DenyRequest transitions an open issue request to "denied".
func (c *Coordinator) DenyRequest(ctx context.Context, requestID int64) (*model.IssueRequest, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	request, err := store.GetIssueRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}

	ok, err := store.MarkRequestDenied(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: request %d is not open", ErrInvalidTransition, requestID)
	}

	request, err = store.GetIssueRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing denial: %w", err)
	}

	return request, nil
}

// resolve looks up the book and user an operation refers to.
func (c *Coordinator) resolve(ctx context.Context, tx *sql.Tx, userID, bookID int64) (*model.Book, *model.User, error) {
	book, err := store.GetBook(ctx, tx, bookID)
	if err != nil {
		return nil, nil, err
	}
	if book == nil || book.DeletedAt != nil {
		return nil, nil, ErrBookNotFound
	}

	user, err := store.GetUser(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.DeletedAt != nil {
		return nil, nil, ErrUserNotFound
	}

	return book, user, nil
}

// checkEligibility applies the issuance predicate: the book must have an
// available copy and must not already be on open loan to this borrower.
func (c *Coordinator) checkEligibility(ctx context.Context, tx *sql.Tx, book *model.Book, borrowerID int64) error {
	if book.Available <= 0 {
		return ErrNoCopiesAvailable
	}

	onLoan, err := store.HasOpenLoan(ctx, tx, borrowerID, book.ID)
	if err != nil {
		return err
	}
	if onLoan {
		return ErrAlreadyOnLoan
	}

	return nil
}

func (c *Coordinator) publish(ev notify.Event) {
	if c.events != nil {
		c.events.Publish(ev)
	}
}
