package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/zmarolt/knjiznica/internal/issuance"
	"github.com/zmarolt/knjiznica/internal/model"
	"github.com/zmarolt/knjiznica/internal/store"
)

// IssueRequestsHandler handles issue request endpoints.
type IssueRequestsHandler struct {
	DB          *sql.DB
	Coordinator *issuance.Coordinator
	Logger      *zap.Logger
}

type createIssueRequestRequest struct {
	RequesterID int64 `json:"requester_id"`
	BookID      int64 `json:"book_id"`
}

// Create handles POST /api/issue-requests. Non-admins may only request for
// themselves; a missing requester_id defaults to the caller.
func (h *IssueRequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createIssueRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BookID <= 0 {
		jsonError(w, http.StatusBadRequest, "book_id is required")
		return
	}
	if req.RequesterID == 0 {
		req.RequesterID = claims.UserID
	}
	if req.RequesterID != claims.UserID && claims.Role != model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "cannot request a book for another user")
		return
	}

	request, err := h.Coordinator.SubmitRequest(r.Context(), req.RequesterID, req.BookID)
	if err != nil {
		issuanceError(w, h.Logger, err)
		return
	}

	h.Logger.Info("issue request created",
		zap.Int64("request_id", request.ID),
		zap.String("requester", request.RequesterEmail),
		zap.String("book", request.BookTitle),
	)
	jsonResponse(w, http.StatusCreated, request)
}

// List handles GET /api/issue-requests.
func (h *IssueRequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := queryID(w, r, "requester_id")
	if !ok {
		return
	}
	bookID, ok := queryID(w, r, "book_id")
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", model.RequestStatusRequested, model.RequestStatusIssued, model.RequestStatusDenied:
	default:
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	requests, err := store.ListIssueRequests(r.Context(), h.DB, requesterID, bookID, status)
	if err != nil {
		h.Logger.Error("listing issue requests", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to list issue requests")
		return
	}
	if requests == nil {
		requests = []model.IssueRequest{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Get handles GET /api/issue-requests/{id}.
func (h *IssueRequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	request, err := store.GetIssueRequest(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if request == nil {
		jsonError(w, http.StatusNotFound, "issue request not found")
		return
	}
	jsonResponse(w, http.StatusOK, request)
}

// Deny handles POST /api/issue-requests/{id}/deny.
func (h *IssueRequestsHandler) Deny(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	request, err := h.Coordinator.DenyRequest(r.Context(), id)
	if err != nil {
		issuanceError(w, h.Logger, err)
		return
	}

	h.Logger.Info("issue request denied", zap.Int64("request_id", request.ID))
	jsonResponse(w, http.StatusOK, request)
}

// queryID parses an optional positive integer query parameter.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
