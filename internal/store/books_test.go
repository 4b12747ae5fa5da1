package store

import (
	"context"
	"testing"

	"github.com/zmarolt/knjiznica/internal/db"
)

func TestCreateAndGetBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := CreateBook(ctx, database, "9781234567890", "The Go Programming Language", "Donovan, Kernighan", 3)
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if book.Available != 3 {
		t.Errorf("expected all copies available, got %d", book.Available)
	}

	byISBN, err := GetBookByISBN(ctx, database, "9781234567890")
	if err != nil {
		t.Fatalf("GetBookByISBN: %v", err)
	}
	if byISBN == nil || byISBN.ID != book.ID {
		t.Errorf("expected to find book by ISBN, got %v", byISBN)
	}

	missing, err := GetBook(ctx, database, 9999)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing book, got %v", missing)
	}
}

func TestDuplicateISBNRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "111", "First", "A", 1); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if _, err := CreateBook(ctx, database, "111", "Second", "B", 1); err == nil {
		t.Error("expected error for duplicate ISBN")
	}
}

func TestListBooksSearch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateBook(ctx, database, "111", "Dune", "Frank Herbert", 2)
	CreateBook(ctx, database, "222", "Hyperion", "Dan Simmons", 1)

	all, err := ListBooks(ctx, database, "")
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 books, got %d", len(all))
	}

	byAuthor, _ := ListBooks(ctx, database, "herbert")
	if len(byAuthor) != 1 || byAuthor[0].Title != "Dune" {
		t.Errorf("expected search to find Dune, got %v", byAuthor)
	}

	byISBN, _ := ListBooks(ctx, database, "222")
	if len(byISBN) != 1 || byISBN[0].Title != "Hyperion" {
		t.Errorf("expected search to find Hyperion, got %v", byISBN)
	}
}

func TestDecrementAvailableGuard(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, _ := CreateBook(ctx, database, "111", "Dune", "Frank Herbert", 1)

	applied, err := DecrementAvailable(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("DecrementAvailable: %v", err)
	}
	if !applied {
		t.Fatal("expected first decrement to apply")
	}

	// No copies left, the guard must refuse instead of going negative.
	applied, err = DecrementAvailable(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("DecrementAvailable: %v", err)
	}
	if applied {
		t.Error("expected decrement at zero availability to be refused")
	}

	book, _ = GetBook(ctx, database, book.ID)
	if book.Available != 0 {
		t.Errorf("expected available 0, got %d", book.Available)
	}
}

func TestIncrementAvailableGuard(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, _ := CreateBook(ctx, database, "111", "Dune", "Frank Herbert", 1)

	// All copies already in, increment must be refused.
	applied, err := IncrementAvailable(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("IncrementAvailable: %v", err)
	}
	if applied {
		t.Error("expected increment at full availability to be refused")
	}

	DecrementAvailable(ctx, database, book.ID)
	applied, _ = IncrementAvailable(ctx, database, book.ID)
	if !applied {
		t.Error("expected increment after decrement to apply")
	}

	book, _ = GetBook(ctx, database, book.ID)
	if book.Available != 1 {
		t.Errorf("expected available 1, got %d", book.Available)
	}
}

func TestUpdateBookQuantityMovesAvailable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, _ := CreateBook(ctx, database, "111", "Dune", "Frank Herbert", 2)
	DecrementAvailable(ctx, database, book.ID) // one copy on loan

	if err := UpdateBook(ctx, database, book.ID, "Dune", "Frank Herbert", 5); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	book, _ = GetBook(ctx, database, book.ID)
	if book.Quantity != 5 || book.Available != 4 {
		t.Errorf("expected quantity 5 available 4, got %d/%d", book.Quantity, book.Available)
	}

	// Reducing quantity below copies on loan would strand the loan.
	if err := UpdateBook(ctx, database, book.ID, "Dune", "Frank Herbert", 0); err == nil {
		t.Error("expected error reducing quantity below open loans")
	}
}

func TestBookCoverRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, _ := CreateBook(ctx, database, "111", "Dune", "Frank Herbert", 1)

	data, mime, err := GetBookCover(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("GetBookCover: %v", err)
	}
	if data != nil || mime != "" {
		t.Errorf("expected no cover initially, got %d bytes", len(data))
	}

	if err := SetBookCover(ctx, database, book.ID, []byte{0xff, 0xd8, 0x01}, "image/jpeg"); err != nil {
		t.Fatalf("SetBookCover: %v", err)
	}

	data, mime, err = GetBookCover(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("GetBookCover: %v", err)
	}
	if len(data) != 3 || mime != "image/jpeg" {
		t.Errorf("expected stored cover back, got %d bytes mime %q", len(data), mime)
	}
}
