package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zmarolt/knjiznica/internal/model"
)

const requestColumns = `r.id, r.requester_id, r.book_id, r.status, r.request_date,
        u.email AS requester_email, b.title AS book_title, b.isbn AS book_isbn`

const requestJoins = ` FROM issue_requests r
        JOIN users u ON u.id = r.requester_id
        JOIN books b ON b.id = r.book_id`

// CreateIssueRequest records a new issue request in "requested" status.
func CreateIssueRequest(ctx context.Context, q DBTX, requesterID, bookID int64, requestDate time.Time) (*model.IssueRequest, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO issue_requests (requester_id, book_id, status, request_date) VALUES (?, ?, ?, ?)`,
		requesterID, bookID, model.RequestStatusRequested, requestDate,
	)
	if err != nil {
		return nil, fmt.Errorf("creating issue request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting issue request id: %w", err)
	}

	return GetIssueRequest(ctx, q, id)
}

// GetIssueRequest returns an issue request by ID, or nil if it does not exist.
func GetIssueRequest(ctx context.Context, q DBTX, id int64) (*model.IssueRequest, error) {
	return scanRequestRow(q.QueryRowContext(ctx,
		`SELECT `+requestColumns+requestJoins+` WHERE r.id = ?`, id,
	))
}

// FindOpenRequest returns the "requested"-status request for the given
// (requester, book) pair, or nil if there is none. The partial unique index
// guarantees at most one exists.
func FindOpenRequest(ctx context.Context, q DBTX, requesterID, bookID int64) (*model.IssueRequest, error) {
	return scanRequestRow(q.QueryRowContext(ctx,
		`SELECT `+requestColumns+requestJoins+
			` WHERE r.requester_id = ? AND r.book_id = ? AND r.status = ?`,
		requesterID, bookID, model.RequestStatusRequested,
	))
}

// MarkRequestIssued transitions a request from "requested" to "issued".
// Returns false if the request is not currently in "requested" status.
func MarkRequestIssued(ctx context.Context, q DBTX, id int64) (bool, error) {
	return transitionRequest(ctx, q, id, model.RequestStatusIssued)
}

// MarkRequestDenied transitions a request from "requested" to "denied".
// Returns false if the request is not currently in "requested" status.
func MarkRequestDenied(ctx context.Context, q DBTX, id int64) (bool, error) {
	return transitionRequest(ctx, q, id, model.RequestStatusDenied)
}

func transitionRequest(ctx context.Context, q DBTX, id int64, to string) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE issue_requests SET status = ? WHERE id = ? AND status = ?`,
		to, id, model.RequestStatusRequested,
	)
	if err != nil {
		return false, fmt.Errorf("transitioning issue request: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking transition result: %w", err)
	}
	return n > 0, nil
}

// ListIssueRequests returns issue requests, optionally filtered by
// requester, book and status.
func ListIssueRequests(ctx context.Context, q DBTX, requesterID, bookID int64, status string) ([]model.IssueRequest, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` WHERE 1=1`
	var args []any

	if requesterID > 0 {
		query += ` AND r.requester_id = ?`
		args = append(args, requesterID)
	}
	if bookID > 0 {
		query += ` AND r.book_id = ?`
		args = append(args, bookID)
	}
	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY r.request_date DESC, r.id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing issue requests: %w", err)
	}
	defer rows.Close()

	var requests []model.IssueRequest
	for rows.Next() {
		var r model.IssueRequest
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.BookID, &r.Status, &r.RequestDate,
			&r.RequesterEmail, &r.BookTitle, &r.BookISBN); err != nil {
			return nil, fmt.Errorf("scanning issue request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func scanRequestRow(row *sql.Row) (*model.IssueRequest, error) {
	r := &model.IssueRequest{}
	err := row.Scan(&r.ID, &r.RequesterID, &r.BookID, &r.Status, &r.RequestDate,
		&r.RequesterEmail, &r.BookTitle, &r.BookISBN)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting issue request: %w", err)
	}
	return r, nil
}
