package model

import "time"

// IssueRequest is a borrower's request to have a book issued to them.
// It starts as "requested" and ends as either "issued" or "denied".
type IssueRequest struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	BookID      int64     `json:"book_id"`
	Status      string    `json:"status"`
	RequestDate time.Time `json:"request_date"`

	// Joined fields (not always populated).
	RequesterEmail string `json:"requester_email,omitempty"`
	BookTitle      string `json:"book_title,omitempty"`
	BookISBN       string `json:"book_isbn,omitempty"`
}

// Issue request statuses.
const (
	RequestStatusRequested = "requested"
	RequestStatusIssued    = "issued"
	RequestStatusDenied    = "denied"
)

// IssueLog records one loan of a book to a borrower. The loan is open while
// DepositDate is nil and closed once the book has been returned.
type IssueLog struct {
	ID          int64      `json:"id"`
	BorrowerID  int64      `json:"borrower_id"`
	BookID      int64      `json:"book_id"`
	IssuedDate  time.Time  `json:"issued_date"`
	DueDate     time.Time  `json:"due_date"`
	DepositDate *time.Time `json:"deposit_date,omitempty"`
	Penalty     int        `json:"penalty"`

	// Joined fields (not always populated).
	BorrowerEmail string `json:"borrower_email,omitempty"`
	BookTitle     string `json:"book_title,omitempty"`
	BookISBN      string `json:"book_isbn,omitempty"`
}

// Open reports whether the loan is still outstanding.
func (l *IssueLog) Open() bool {
	return l.DepositDate == nil
}
