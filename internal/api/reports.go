package api

import (
	"database/sql"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zmarolt/knjiznica/internal/store"
)

// ReportsHandler serves the CSV loan report.
type ReportsHandler struct {
	DB     *sql.DB
	Logger *zap.Logger
}

// IssueLogsCSV handles GET /api/reports/issue-logs. Parameters: type
// (issued|deposited|delayed), from and to (YYYY-MM-DD, to exclusive).
func (h *ReportsHandler) IssueLogsCSV(w http.ResponseWriter, r *http.Request) {
	reportType := r.URL.Query().Get("type")
	switch reportType {
	case store.ReportIssued, store.ReportDeposited, store.ReportDelayed:
	default:
		jsonError(w, http.StatusBadRequest, "type must be one of issued, deposited, delayed")
		return
	}

	from, err := parseDate(r.URL.Query().Get("from"), time.Time{})
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"), time.Now().AddDate(0, 0, 1))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
		return
	}

	loans, err := store.ListIssueLogsReport(r.Context(), h.DB, reportType, from, to, time.Now())
	if err != nil {
		h.Logger.Error("building loan report", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="issue-logs-`+reportType+`.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "borrower", "book", "isbn", "issued_date", "due_date", "deposit_date", "penalty"})
	for _, l := range loans {
		deposit := ""
		if l.DepositDate != nil {
			deposit = l.DepositDate.Format("2006-01-02")
		}
		cw.Write([]string{
			strconv.FormatInt(l.ID, 10),
			l.BorrowerEmail,
			l.BookTitle,
			l.BookISBN,
			l.IssuedDate.Format("2006-01-02"),
			l.DueDate.Format("2006-01-02"),
			deposit,
			strconv.Itoa(l.Penalty),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Logger.Error("writing loan report", zap.Error(err))
	}
}

// parseDate parses a YYYY-MM-DD value, returning fallback when empty.
func parseDate(v string, fallback time.Time) (time.Time, error) {
	if v == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", v)
}
