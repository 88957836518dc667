package graph

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// SQL dialects understood by SQLSink.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// SQLSink stores triples in a single table, ignoring duplicates.
type SQLSink struct {
	db      *sql.DB
	dialect string
	owned   bool
	logger  *slog.Logger
	batch   *Batcher
}

// OpenSQL opens a database for dialect and prepares the triples table.
func OpenSQL(ctx context.Context, dialect, dsn string, batchSize int, logger *slog.Logger) (*SQLSink, error) {
	driver := ""
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
	case DialectPostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	s, err := NewSQLSink(ctx, db, dialect, batchSize, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLSink wraps an open database. The caller keeps ownership of db.
func NewSQLSink(ctx context.Context, db *sql.DB, dialect string, batchSize int, logger *slog.Logger) (*SQLSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS triples (
		subject TEXT NOT NULL,
		predicate TEXT NOT NULL,
		object TEXT NOT NULL,
		literal BOOLEAN NOT NULL,
		PRIMARY KEY (subject, predicate, object)
	)`); err != nil {
		return nil, fmt.Errorf("create triples table: %w", err)
	}
	s := &SQLSink{db: db, dialect: dialect, logger: logger}
	s.batch = NewBatcher(batchSize, s.flush)
	return s, nil
}

func (s *SQLSink) Write(ctx context.Context, triples ...Triple) error {
	return s.batch.Add(ctx, triples...)
}

// Flush writes buffered triples without closing the sink.
func (s *SQLSink) Flush(ctx context.Context) error {
	return s.batch.Flush(ctx)
}

func (s *SQLSink) Close(ctx context.Context) error {
	err := s.batch.Flush(ctx)
	if s.owned {
		if cerr := s.db.Close(); err == nil {
			err = cerr
		}
		s.owned = false
	}
	return err
}

func (s *SQLSink) insertStatement() string {
	if s.dialect == DialectPostgres {
		return `INSERT INTO triples (subject, predicate, object, literal) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`
	}
	return `INSERT INTO triples (subject, predicate, object, literal) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`
}

func (s *SQLSink) flush(ctx context.Context, batch []Triple) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.insertStatement())
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range batch {
		if _, err := stmt.ExecContext(ctx, t.Subject, t.Predicate, t.Object, t.Literal); err != nil {
			return fmt.Errorf("insert triple %s %s: %w", t.Subject, t.Predicate, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("Stored triples", "dialect", s.dialect, "triples", len(batch))
	return nil
}

// Subject returns the stored triples for subject, ordered by predicate and object.
func (s *SQLSink) Subject(ctx context.Context, subject string) ([]Triple, error) {
	query := `SELECT subject, predicate, object, literal FROM triples WHERE subject = ? ORDER BY predicate, object`
	if s.dialect == DialectPostgres {
		query = strings.Replace(query, "?", "$1", 1)
	}
	rows, err := s.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("select triples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Triple
	for rows.Next() {
		var t Triple
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object, &t.Literal); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the number of stored triples.
func (s *SQLSink) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count triples: %w", err)
	}
	return n, nil
}
