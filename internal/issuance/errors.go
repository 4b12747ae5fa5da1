package issuance

import (
	"errors"
	"fmt"
)

// Sentinel errors for the issuance workflow. Callers match with errors.Is.
var (
	// ErrBookNotFound means the referenced book is not in the catalog.
	ErrBookNotFound = errors.New("book not found")

	// ErrUserNotFound means the referenced borrower does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRequestNotFound means the referenced issue request does not exist.
	ErrRequestNotFound = errors.New("issue request not found")

	// ErrLoanNotFound means the referenced issue log does not exist.
	ErrLoanNotFound = errors.New("issue log not found")

	// ErrDuplicateRequest means an open request for the same (requester,
	// book) pair already exists.
	ErrDuplicateRequest = errors.New("book has already been requested")

	// ErrIssuanceBlocked means the eligibility check failed. The concrete
	// reasons below wrap it, so both the category and the cause match.
	ErrIssuanceBlocked = errors.New("issuance blocked")

	// ErrInvalidTransition means a status change was attempted that the
	// entity's state machine does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvariantViolation means an availability update would have pushed
	// the count outside 0..quantity. It indicates a missed concurrency
	// guard and fails the operation outright.
	ErrInvariantViolation = errors.New("availability invariant violated")
)

// Eligibility failure reasons, each wrapping ErrIssuanceBlocked.
var (
	ErrNoCopiesAvailable = fmt.Errorf("%w: book is not available", ErrIssuanceBlocked)
	ErrAlreadyOnLoan     = fmt.Errorf("%w: book is already issued to this borrower", ErrIssuanceBlocked)
)
