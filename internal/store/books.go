package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zmarolt/knjiznica/internal/model"
)

// CreateBook creates a new book with all copies available.
func CreateBook(ctx context.Context, q DBTX, isbn, title, author string, quantity int) (*model.Book, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO books (isbn, title, author, quantity, available) VALUES (?, ?, ?, ?, ?)`,
		isbn, title, author, quantity, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, q, id)
}

// GetBook returns a book by ID, or nil if it does not exist.
func GetBook(ctx context.Context, q DBTX, id int64) (*model.Book, error) {
	return scanBookRow(q.QueryRowContext(ctx,
		`SELECT id, isbn, title, author, quantity, available, cover_mime, created_at, updated_at, deleted_at
		 FROM books WHERE id = ?`, id,
	))
}

// GetBookByISBN returns a book by its ISBN, or nil if it does not exist.
func GetBookByISBN(ctx context.Context, q DBTX, isbn string) (*model.Book, error) {
	return scanBookRow(q.QueryRowContext(ctx,
		`SELECT id, isbn, title, author, quantity, available, cover_mime, created_at, updated_at, deleted_at
		 FROM books WHERE isbn = ?`, isbn,
	))
}

// ListBooks returns all non-deleted books, optionally filtered by a search
// term matched against title, ISBN and author.
func ListBooks(ctx context.Context, q DBTX, search string) ([]model.Book, error) {
	query := `SELECT id, isbn, title, author, quantity, available, cover_mime, created_at, updated_at, deleted_at
	          FROM books WHERE deleted_at IS NULL`
	var args []any

	if search != "" {
		query += ` AND (title LIKE ? OR isbn LIKE ? OR author LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	query += ` ORDER BY title`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var b model.Book
		var coverMime sql.NullString
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Quantity, &b.Available,
			&coverMime, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		b.CoverMime = coverMime.String
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook updates a book's metadata. A quantity change moves the
// available count by the same delta, so copies out on loan stay accounted
// for; the schema rejects changes that would strand an open loan.
func UpdateBook(ctx context.Context, q DBTX, id int64, title, author string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}

	_, err := q.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, available = available + ? - quantity, quantity = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		title, author, quantity, quantity, id,
	)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	return nil
}

// DeleteBook soft-deletes a book.
func DeleteBook(ctx context.Context, q DBTX, id int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE books SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return nil
}

// DecrementAvailable takes one copy out of circulation for a new loan.
// Returns false if no copy is available; the caller decides whether that is
// an eligibility failure or a broken invariant.
func DecrementAvailable(ctx context.Context, q DBTX, id int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE books SET available = available - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND available > 0`, id,
	)
	if err != nil {
		return false, fmt.Errorf("decrementing availability: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking decrement result: %w", err)
	}
	return n > 0, nil
}

// IncrementAvailable puts a returned copy back into circulation. Returns
// false if the book already has all copies available, which means the loan
// bookkeeping is out of sync.
func IncrementAvailable(ctx context.Context, q DBTX, id int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE books SET available = available + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND available < quantity`, id,
	)
	if err != nil {
		return false, fmt.Errorf("incrementing availability: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking increment result: %w", err)
	}
	return n > 0, nil
}

// SetBookCover stores the processed cover image for a book.
func SetBookCover(ctx context.Context, q DBTX, id int64, data []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		data, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	return nil
}

// GetBookCover returns the cover image data and MIME type, or nil data if
// the book has no cover.
func GetBookCover(ctx context.Context, q DBTX, id int64) ([]byte, string, error) {
	var data []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return data, mime.String, nil
}

func scanBookRow(row *sql.Row) (*model.Book, error) {
	b := &model.Book{}
	var coverMime sql.NullString
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Quantity, &b.Available,
		&coverMime, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	b.CoverMime = coverMime.String
	return b, nil
}
