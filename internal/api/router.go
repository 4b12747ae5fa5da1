package api

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/zmarolt/knjiznica/internal/issuance"
)

// NewRouter creates the API router with all endpoints registered. Reads are
// public; mutations require an admin token, except issue-request creation
// which any authenticated user may do for themselves.
func NewRouter(db *sql.DB, coordinator *issuance.Coordinator, jwtSecret string, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Logger: logger}
	usersHandler := &UsersHandler{DB: db, Logger: logger}
	booksHandler := &BooksHandler{DB: db, Logger: logger}
	requestsHandler := &IssueRequestsHandler{DB: db, Coordinator: coordinator, Logger: logger}
	logsHandler := &IssueLogsHandler{DB: db, Coordinator: coordinator, Logger: logger}
	reportsHandler := &ReportsHandler{DB: db, Logger: logger}

	authMW := AuthMiddleware(jwtSecret)
	admin := func(h http.HandlerFunc) http.Handler { return authMW(RequireAdmin(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Books: read public, write admin.
	mux.HandleFunc("GET /api/books", booksHandler.List)
	mux.HandleFunc("GET /api/books/{id}", booksHandler.Get)
	mux.HandleFunc("GET /api/books/{id}/cover", booksHandler.GetCover)
	mux.Handle("POST /api/books", admin(booksHandler.Create))
	mux.Handle("PUT /api/books/{id}", admin(booksHandler.Update))
	mux.Handle("DELETE /api/books/{id}", admin(booksHandler.Delete))
	mux.Handle("PUT /api/books/{id}/cover", admin(booksHandler.UploadCover))

	// Issue requests: read public; create by any authenticated user (for
	// themselves unless admin); deny admin only.
	mux.HandleFunc("GET /api/issue-requests", requestsHandler.List)
	mux.HandleFunc("GET /api/issue-requests/{id}", requestsHandler.Get)
	mux.Handle("POST /api/issue-requests", authMW(http.HandlerFunc(requestsHandler.Create)))
	mux.Handle("POST /api/issue-requests/{id}/deny", admin(requestsHandler.Deny))

	// Issue logs: read public, issue/return admin. No delete.
	mux.HandleFunc("GET /api/issue-logs", logsHandler.List)
	mux.HandleFunc("GET /api/issue-logs/{id}", logsHandler.Get)
	mux.Handle("POST /api/issue-logs", admin(logsHandler.Create))
	mux.Handle("POST /api/issue-logs/{id}/return", admin(logsHandler.Return))

	// CSV report (admin only).
	mux.Handle("GET /api/reports/issue-logs", admin(reportsHandler.IssueLogsCSV))

	return mux
}
