package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas are applied through the DSN so every pooled connection gets them,
// not just the one that happened to run the setup statements.
var pragmas = []string{
	"_pragma=journal_mode(WAL)",
	"_pragma=busy_timeout(5000)",
	"_pragma=foreign_keys(1)",
	"_pragma=synchronous(NORMAL)",
}

// Open opens a SQLite database connection with pragmas configured.
// Write transactions start in immediate mode, so the read-check-write
// sequences in the issuance workflow take the write lock up front instead
// of racing to upgrade it at commit time.
func Open(path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := "file:" + path + sep + "_txlock=immediate&" + strings.Join(pragmas, "&")

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return database, nil
}
