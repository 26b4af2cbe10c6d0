package store

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

const (
	dialectSQLite   = "sqlite3"
	dialectPostgres = "postgres"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

func applyMigrations(db *sql.DB, dialect string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(log.StandardLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	dir := "migrations/sqlite"
	if dialect == dialectPostgres {
		dir = "migrations/postgres"
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
