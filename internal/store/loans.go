package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zmarolt/knjiznica/internal/model"
)

const loanColumns = `l.id, l.borrower_id, l.book_id, l.issued_date, l.due_date, l.deposit_date, l.penalty,
        u.email AS borrower_email, b.title AS book_title, b.isbn AS book_isbn`

const loanJoins = ` FROM issue_logs l
        JOIN users u ON u.id = l.borrower_id
        JOIN books b ON b.id = l.book_id`

// Report types for ListIssueLogsReport.
const (
	ReportIssued    = "issued"
	ReportDeposited = "deposited"
	ReportDelayed   = "delayed"
)

// HasOpenLoan reports whether the borrower currently holds an open loan
// (deposit date unset) for the book.
func HasOpenLoan(ctx context.Context, q DBTX, borrowerID, bookID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM issue_logs WHERE borrower_id = ? AND book_id = ? AND deposit_date IS NULL`,
		borrowerID, bookID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking open loan: %w", err)
	}
	return n > 0, nil
}

// CreateIssueLog records a new open loan.
func CreateIssueLog(ctx context.Context, q DBTX, borrowerID, bookID int64, issued, due time.Time) (*model.IssueLog, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO issue_logs (borrower_id, book_id, issued_date, due_date) VALUES (?, ?, ?, ?)`,
		borrowerID, bookID, issued, due,
	)
	if err != nil {
		return nil, fmt.Errorf("creating issue log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting issue log id: %w", err)
	}

	return GetIssueLog(ctx, q, id)
}

// GetIssueLog returns an issue log by ID, or nil if it does not exist.
func GetIssueLog(ctx context.Context, q DBTX, id int64) (*model.IssueLog, error) {
	return scanLoanRow(q.QueryRowContext(ctx,
		`SELECT `+loanColumns+loanJoins+` WHERE l.id = ?`, id,
	))
}

// CloseIssueLog marks a loan as returned, recording the deposit date and
// penalty. Returns false if the loan is already closed.
func CloseIssueLog(ctx context.Context, q DBTX, id int64, depositDate time.Time, penalty int) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE issue_logs SET deposit_date = ?, penalty = ? WHERE id = ? AND deposit_date IS NULL`,
		depositDate, penalty, id,
	)
	if err != nil {
		return false, fmt.Errorf("closing issue log: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking close result: %w", err)
	}
	return n > 0, nil
}

// ListIssueLogs returns issue logs, optionally filtered by borrower, book
// and open/closed state.
func ListIssueLogs(ctx context.Context, q DBTX, borrowerID, bookID int64, open *bool) ([]model.IssueLog, error) {
	query := `SELECT ` + loanColumns + loanJoins + ` WHERE 1=1`
	var args []any

	if borrowerID > 0 {
		query += ` AND l.borrower_id = ?`
		args = append(args, borrowerID)
	}
	if bookID > 0 {
		query += ` AND l.book_id = ?`
		args = append(args, bookID)
	}
	if open != nil {
		if *open {
			query += ` AND l.deposit_date IS NULL`
		} else {
			query += ` AND l.deposit_date IS NOT NULL`
		}
	}

	query += ` ORDER BY l.issued_date DESC, l.id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing issue logs: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// ListIssueLogsReport returns loans for the CSV report. The report type
// selects which date the range filters on: issue date for "issued", deposit
// date for "deposited", due date for "delayed" (open loans past due as of
// now).
func ListIssueLogsReport(ctx context.Context, q DBTX, reportType string, from, to, now time.Time) ([]model.IssueLog, error) {
	query := `SELECT ` + loanColumns + loanJoins
	var args []any

	switch reportType {
	case ReportIssued:
		query += ` WHERE l.issued_date >= ? AND l.issued_date < ?`
		args = append(args, from, to)
	case ReportDeposited:
		query += ` WHERE l.deposit_date IS NOT NULL AND l.deposit_date >= ? AND l.deposit_date < ?`
		args = append(args, from, to)
	case ReportDelayed:
		query += ` WHERE l.deposit_date IS NULL AND l.due_date < ? AND l.due_date >= ? AND l.due_date < ?`
		args = append(args, now, from, to)
	default:
		return nil, fmt.Errorf("unknown report type %q", reportType)
	}

	query += ` ORDER BY l.issued_date, l.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing issue logs for report: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

func scanLoans(rows *sql.Rows) ([]model.IssueLog, error) {
	var loans []model.IssueLog
	for rows.Next() {
		var l model.IssueLog
		if err := rows.Scan(&l.ID, &l.BorrowerID, &l.BookID, &l.IssuedDate, &l.DueDate, &l.DepositDate, &l.Penalty,
			&l.BorrowerEmail, &l.BookTitle, &l.BookISBN); err != nil {
			return nil, fmt.Errorf("scanning issue log: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func scanLoanRow(row *sql.Row) (*model.IssueLog, error) {
	l := &model.IssueLog{}
	err := row.Scan(&l.ID, &l.BorrowerID, &l.BookID, &l.IssuedDate, &l.DueDate, &l.DepositDate, &l.Penalty,
		&l.BorrowerEmail, &l.BookTitle, &l.BookISBN)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting issue log: %w", err)
	}
	return l, nil
}
