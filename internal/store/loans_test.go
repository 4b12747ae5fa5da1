package store

import (
	"context"
	"testing"
	"time"

	"github.com/zmarolt/knjiznica/internal/db"
)

func TestHasOpenLoan(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, book := seedUserAndBook(t, database)

	open, err := HasOpenLoan(ctx, database, user.ID, book.ID)
	if err != nil {
		t.Fatalf("HasOpenLoan: %v", err)
	}
	if open {
		t.Error("expected no open loan initially")
	}

	issued := time.Now()
	loan, err := CreateIssueLog(ctx, database, user.ID, book.ID, issued, issued.AddDate(0, 0, 20))
	if err != nil {
		t.Fatalf("CreateIssueLog: %v", err)
	}

	open, _ = HasOpenLoan(ctx, database, user.ID, book.ID)
	if !open {
		t.Error("expected open loan after issuing")
	}

	if ok, err := CloseIssueLog(ctx, database, loan.ID, time.Now(), 0); err != nil || !ok {
		t.Fatalf("CloseIssueLog: ok=%v err=%v", ok, err)
	}

	open, _ = HasOpenLoan(ctx, database, user.ID, book.ID)
	if open {
		t.Error("expected no open loan after return")
	}
}

func TestCloseIssueLogOnlyOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, book := seedUserAndBook(t, database)

	issued := time.Now()
	loan, _ := CreateIssueLog(ctx, database, user.ID, book.ID, issued, issued.AddDate(0, 0, 20))

	ok, _ := CloseIssueLog(ctx, database, loan.ID, time.Now(), 5)
	if !ok {
		t.Fatal("expected close to apply")
	}

	ok, _ = CloseIssueLog(ctx, database, loan.ID, time.Now(), 10)
	if ok {
		t.Error("expected second close to be refused")
	}

	got, _ := GetIssueLog(ctx, database, loan.ID)
	if got.Penalty != 5 {
		t.Errorf("expected first close's penalty 5, got %d", got.Penalty)
	}
	if got.DepositDate == nil {
		t.Error("expected deposit date set")
	}
}

func TestOpenLoanUniquePerPair(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, book := seedUserAndBook(t, database)

	issued := time.Now()
	if _, err := CreateIssueLog(ctx, database, user.ID, book.ID, issued, issued.AddDate(0, 0, 20)); err != nil {
		t.Fatalf("CreateIssueLog: %v", err)
	}

	// The partial unique index backs up the coordinator's double-loan check.
	if _, err := CreateIssueLog(ctx, database, user.ID, book.ID, issued, issued.AddDate(0, 0, 20)); err == nil {
		t.Error("expected second open loan for same pair to be rejected")
	}
}

func TestListIssueLogsReport(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, book := seedUserAndBook(t, database)

	now := time.Now()

	// An overdue open loan issued 30 days ago.
	overdue, err := CreateIssueLog(ctx, database, user.ID, book.ID, now.AddDate(0, 0, -30), now.AddDate(0, 0, -10))
	if err != nil {
		t.Fatalf("CreateIssueLog: %v", err)
	}

	// A loan issued 5 days ago and already returned.
	second, _ := CreateUser(ctx, database, "bob@example.com", "Bob", "hash", "member")
	returned, err := CreateIssueLog(ctx, database, second.ID, book.ID, now.AddDate(0, 0, -5), now.AddDate(0, 0, 15))
	if err != nil {
		t.Fatalf("CreateIssueLog: %v", err)
	}
	CloseIssueLog(ctx, database, returned.ID, now.AddDate(0, 0, -1), 0)

	from := now.AddDate(0, 0, -60)
	to := now.AddDate(0, 0, 1)

	issued, err := ListIssueLogsReport(ctx, database, ReportIssued, from, to, now)
	if err != nil {
		t.Fatalf("ListIssueLogsReport issued: %v", err)
	}
	if len(issued) != 2 {
		t.Errorf("expected 2 issued loans, got %d", len(issued))
	}

	deposited, _ := ListIssueLogsReport(ctx, database, ReportDeposited, from, to, now)
	if len(deposited) != 1 || deposited[0].ID != returned.ID {
		t.Errorf("expected deposited report to return the returned loan, got %v", deposited)
	}

	delayed, _ := ListIssueLogsReport(ctx, database, ReportDelayed, from, to, now)
	if len(delayed) != 1 || delayed[0].ID != overdue.ID {
		t.Errorf("expected delayed report to return the overdue loan, got %v", delayed)
	}

	// Narrow range excludes the old loan.
	recent, _ := ListIssueLogsReport(ctx, database, ReportIssued, now.AddDate(0, 0, -7), to, now)
	if len(recent) != 1 || recent[0].ID != returned.ID {
		t.Errorf("expected narrow range to return only the recent loan, got %v", recent)
	}

	if _, err := ListIssueLogsReport(ctx, database, "bogus", from, to, now); err == nil {
		t.Error("expected error for unknown report type")
	}
}
