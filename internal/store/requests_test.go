package store

import (
	"context"
	"testing"
	"time"

	"github.com/zmarolt/knjiznica/internal/db"
	"github.com/zmarolt/knjiznica/internal/model"
)

func seedUserAndBook(t *testing.T, database DBTX) (*model.User, *model.Book) {
	t.Helper()
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice@example.com", "Alice", "hash", model.RoleMember)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	book, err := CreateBook(ctx, database, "9780441013593", "Dune", "Frank Herbert", 2)
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	return user, book
}

func TestCreateAndFindOpenRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, book := seedUserAndBook(t, database)

	req, err := CreateIssueRequest(ctx, database, user.ID, book.ID, time.Now())
	if err != nil {
		t.Fatalf("CreateIssueRequest: %v", err)
	}
	if req.Status != model.RequestStatusRequested {
		t.Errorf("expected status requested, got %q", req.Status)
	}
	if req.RequesterEmail != "alice@example.com" || req.BookTitle != "Dune" {
		t.Errorf("expected joined fields populated, got %+v", req)
	}

	open, err := FindOpenRequest(ctx, database, user.ID, book.ID)
	if err != nil {
		t.Fatalf("FindOpenRequest: %v", err)
	}
	if open == nil || open.ID != req.ID {
		t.Errorf("expected to find open request, got %v", open)
	}
}

func TestOpenRequestUniquePerPair(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, book := seedUserAndBook(t, database)

	if _, err := CreateIssueRequest(ctx, database, user.ID, book.ID, time.Now()); err != nil {
		t.Fatalf("CreateIssueRequest: %v", err)
	}

	// The partial unique index is the backstop behind the coordinator's
	// duplicate check.
	if _, err := CreateIssueRequest(ctx, database, user.ID, book.ID, time.Now()); err == nil {
		t.Error("expected second open request for same pair to be rejected")
	}
}

func TestRequestTransitions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, book := seedUserAndBook(t, database)

	req, _ := CreateIssueRequest(ctx, database, user.ID, book.ID, time.Now())

	ok, err := MarkRequestIssued(ctx, database, req.ID)
	if err != nil {
		t.Fatalf("MarkRequestIssued: %v", err)
	}
	if !ok {
		t.Fatal("expected transition requested -> issued to apply")
	}

	// Terminal: no further transitions.
	ok, _ = MarkRequestIssued(ctx, database, req.ID)
	if ok {
		t.Error("expected second issue transition to be refused")
	}
	ok, _ = MarkRequestDenied(ctx, database, req.ID)
	if ok {
		t.Error("expected deny of issued request to be refused")
	}

	got, _ := GetIssueRequest(ctx, database, req.ID)
	if got.Status != model.RequestStatusIssued {
		t.Errorf("expected status issued, got %q", got.Status)
	}
}

func TestListIssueRequestsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, book := seedUserAndBook(t, database)

	other, _ := CreateUser(ctx, database, "bob@example.com", "Bob", "hash", model.RoleMember)

	first, _ := CreateIssueRequest(ctx, database, user.ID, book.ID, time.Now())
	CreateIssueRequest(ctx, database, other.ID, book.ID, time.Now())
	MarkRequestDenied(ctx, database, first.ID)

	all, err := ListIssueRequests(ctx, database, 0, 0, "")
	if err != nil {
		t.Fatalf("ListIssueRequests: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 requests, got %d", len(all))
	}

	byRequester, _ := ListIssueRequests(ctx, database, user.ID, 0, "")
	if len(byRequester) != 1 {
		t.Errorf("expected 1 request for alice, got %d", len(byRequester))
	}

	denied, _ := ListIssueRequests(ctx, database, 0, 0, model.RequestStatusDenied)
	if len(denied) != 1 || denied[0].ID != first.ID {
		t.Errorf("expected denied filter to return first request, got %v", denied)
	}
}
