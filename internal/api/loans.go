package api

import (
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zmarolt/knjiznica/internal/issuance"
	"github.com/zmarolt/knjiznica/internal/model"
	"github.com/zmarolt/knjiznica/internal/store"
)

// IssueLogsHandler handles issue log (loan) endpoints. Issue logs cannot be
// deleted; a loan ends by being returned, never by being erased.
type IssueLogsHandler struct {
	DB          *sql.DB
	Coordinator *issuance.Coordinator
	Logger      *zap.Logger
}

type createIssueLogRequest struct {
	BorrowerID int64 `json:"borrower_id"`
	BookID     int64 `json:"book_id"`
}

type returnRequest struct {
	Penalty int `json:"penalty"`
}

// Create handles POST /api/issue-logs: a staff member issuing a book,
// fulfilling an open request if one exists.
func (h *IssueLogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIssueLogRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BorrowerID <= 0 || req.BookID <= 0 {
		jsonError(w, http.StatusBadRequest, "borrower_id and book_id are required")
		return
	}

	loan, err := h.Coordinator.IssueBook(r.Context(), req.BorrowerID, req.BookID)
	if err != nil {
		issuanceError(w, h.Logger, err)
		return
	}

	h.Logger.Info("book issued",
		zap.Int64("loan_id", loan.ID),
		zap.String("borrower", loan.BorrowerEmail),
		zap.String("book", loan.BookTitle),
		zap.Time("due", loan.DueDate),
	)
	jsonResponse(w, http.StatusCreated, loan)
}

// Return handles POST /api/issue-logs/{id}/return.
func (h *IssueLogsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Penalty < 0 {
		jsonError(w, http.StatusBadRequest, "penalty must not be negative")
		return
	}

	loan, err := h.Coordinator.ReturnBook(r.Context(), id, time.Now(), req.Penalty)
	if err != nil {
		issuanceError(w, h.Logger, err)
		return
	}

	h.Logger.Info("book returned",
		zap.Int64("loan_id", loan.ID),
		zap.String("borrower", loan.BorrowerEmail),
		zap.Int("penalty", loan.Penalty),
	)
	jsonResponse(w, http.StatusOK, loan)
}

// List handles GET /api/issue-logs. The open parameter filters to open
// (true) or closed (false) loans.
func (h *IssueLogsHandler) List(w http.ResponseWriter, r *http.Request) {
	borrowerID, ok := queryID(w, r, "borrower_id")
	if !ok {
		return
	}
	bookID, ok := queryID(w, r, "book_id")
	if !ok {
		return
	}

	var open *bool
	switch r.URL.Query().Get("open") {
	case "":
	case "true":
		v := true
		open = &v
	case "false":
		v := false
		open = &v
	default:
		jsonError(w, http.StatusBadRequest, "invalid open parameter")
		return
	}

	loans, err := store.ListIssueLogs(r.Context(), h.DB, borrowerID, bookID, open)
	if err != nil {
		h.Logger.Error("listing issue logs", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to list issue logs")
		return
	}
	if loans == nil {
		loans = []model.IssueLog{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// Get handles GET /api/issue-logs/{id}.
func (h *IssueLogsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := store.GetIssueLog(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if loan == nil {
		jsonError(w, http.StatusNotFound, "issue log not found")
		return
	}
	jsonResponse(w, http.StatusOK, loan)
}
