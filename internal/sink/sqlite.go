package sink

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/telemetryd/internal/errors"
	"codeberg.org/mutker/telemetryd/internal/logger"
	"codeberg.org/mutker/telemetryd/internal/record"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink persists records to a local database so telemetry history
// survives beyond the console scrollback. Writes go through one connection
// guarded by a mutex.
type SQLiteSink struct {
	mu  sync.Mutex
	db  *sql.DB
	log logger.Logger
}

// NewSQLite opens the database at path, creating the directory and schema
// as needed. Diagnostics go through the supplied logger.
func NewSQLite(path string, log logger.Logger) (*SQLiteSink, error) {
	if path == "" {
		return nil, errors.WithMessage(errors.ErrSinkInit, "sqlite sink requires a database path")
	}

	log.Debug().Msgf("Initializing sqlite sink at: %s", path)

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errors.Wrap(errors.ErrSinkInit, err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL")
	if err != nil {
		return nil, errors.Wrap(errors.ErrSinkInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrSinkInit, err)
	}

	return &SQLiteSink{db: db, log: log}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS records (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp INTEGER NOT NULL,
            app_name TEXT NOT NULL,
            context TEXT NOT NULL,
            severity TEXT NOT NULL,
            payload INTEGER NOT NULL,
            text TEXT NOT NULL
        )
    `)

	return err
}

func (s *SQLiteSink) Write(rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
        INSERT INTO records (timestamp, app_name, context, severity, payload, text)
        VALUES (?, ?, ?, ?, ?, ?)
    `,
		rec.Timestamp().Unix(),
		rec.AppName(),
		rec.Context().String(),
		rec.Severity().String(),
		rec.Payload(),
		rec.Text(),
	)
	if err != nil {
		return errors.Wrap(errors.ErrSinkWrite, err)
	}

	return nil
}

func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return errors.Wrap(errors.ErrSinkClose, err)
	}

	s.log.Debug().Msg("Sqlite sink closed")

	return nil
}
