package data

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"frontoffice/internal/logger"
)

// SQL dialects, named after the STORAGE_BACKEND values that select them.
const (
	DialectSQLite   = "sqlite"
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

// Database connection pool configuration
const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = time.Hour
	connMaxIdleTime = time.Minute * 15
	queryTimeout    = time.Second * 30
)

// SQLStore keeps each collection in its own table. A collection write deletes
// and reinserts every row inside one transaction.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// =============================================================================
// DATABASE CONNECTION AND SETUP
// =============================================================================

// OpenSQL connects to the database, applies pool settings and creates missing
// tables.
func OpenSQL(ctx context.Context, dialect, dataSourceName string) (*SQLStore, error) {
	driver, err := driverName(dialect)
	if err != nil {
		return nil, err
	}

	db, err := openWithRetry(ctx, driver, dataSourceName, 3)
	if err != nil {
		return nil, err
	}

	s := &SQLStore{db: db, dialect: dialect}
	if dialect == DialectSQLite {
		if err := enablePragmas(ctx, db); err != nil {
			logger.LogWarn("Failed to enable some database optimizations: %v", err)
		}
	}

	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func driverName(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite:
		return "sqlite", nil
	case DialectMySQL:
		return "mysql", nil
	case DialectPostgres:
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported SQL dialect %q", dialect)
}

func openWithRetry(ctx context.Context, driver, dataSourceName string, maxRetries int) (*sql.DB, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err := sql.Open(driver, dataSourceName)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
		}

		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxLifetime(connMaxLifetime)
		db.SetConnMaxIdleTime(connMaxIdleTime)

		pingCtx, cancel := context.WithTimeout(ctx, queryTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			logger.LogInfo("Database connection established successfully (%s, attempt %d)", driver, attempt)
			return db, nil
		}

		db.Close()
		lastErr = err
		logger.LogWarn("Database ping attempt %d failed: %s", attempt, describeDriverError(err))
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return nil, fmt.Errorf("failed to ping database after %d attempts: %w", maxRetries, lastErr)
}

func enablePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
	}

	var lastErr error
	for _, pragma := range pragmas {
		pctx, cancel := context.WithTimeout(ctx, time.Second*5)
		_, err := db.ExecContext(pctx, pragma)
		cancel()
		if err != nil {
			logger.LogWarn("Failed to execute %s: %v", pragma, err)
			lastErr = err
		}
	}
	return lastErr
}

// =============================================================================
// SCHEMA
// =============================================================================

func createTableSQL(t table) string {
	defs := []string{"seq INTEGER NOT NULL"}
	for _, c := range t.columns {
		switch {
		case c.name == "id":
			defs = append(defs, "id VARCHAR(64) NOT NULL PRIMARY KEY")
		case c.kind == kindInt:
			defs = append(defs, c.name+" INTEGER")
		default:
			defs = append(defs, c.name+" TEXT")
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, strings.Join(defs, ", "))
}

func (s *SQLStore) createTables(ctx context.Context) error {
	for _, t := range tables {
		cctx, cancel := context.WithTimeout(ctx, queryTimeout)
		_, err := s.db.ExecContext(cctx, createTableSQL(t))
		cancel()
		if err != nil {
			return fmt.Errorf("failed to create %s table: %s", t.name, describeDriverError(err))
		}
	}
	return nil
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

func (s *SQLStore) Get(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	snap := NewSnapshot()
	for _, t := range tables {
		raw, err := s.readTable(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", t.name, err)
		}
		if err := snap.SetRaw(t.key, raw); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, raw json.RawMessage) error {
	t, ok := tableFor(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, key)
	}
	encoded, err := canonical(key, raw)
	if err != nil {
		return err
	}
	rows, err := decodeRows(encoded)
	if err != nil {
		return fmt.Errorf("decoding %s rows: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.name); err != nil {
		return fmt.Errorf("clearing %s: %s", t.name, describeDriverError(err))
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertSQL(t)))
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %s", t.name, describeDriverError(err))
	}
	defer stmt.Close()

	for i, row := range rows {
		args, err := rowArgs(t, i, row)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", t.name, i, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting into %s: %s", t.name, describeDriverError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", t.name, err)
	}
	logger.LogDebug("Replaced %d rows in %s", len(rows), t.name)
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*2)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection unhealthy: %w", err)
	}
	return nil
}

// Close closes the database connection gracefully
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

func insertSQL(t table) string {
	names := []string{"seq"}
	marks := []string{"?"}
	for _, c := range t.columns {
		names = append(names, c.name)
		marks = append(marks, "?")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(names, ", "), strings.Join(marks, ", "))
}

func selectSQL(t table) string {
	names := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		names = append(names, c.name)
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY seq", strings.Join(names, ", "), t.name)
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func decodeRows(raw json.RawMessage) ([]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rows []interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func rowArgs(t table, seq int, row interface{}) ([]interface{}, error) {
	args := []interface{}{seq}

	if t.scalar {
		s, ok := row.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", row)
		}
		return append(args, s), nil
	}

	fields, ok := row.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", row)
	}
	for _, c := range t.columns {
		v, err := columnValue(c, fields[c.field])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.name, err)
		}
		args = append(args, v)
	}
	return args, nil
}

func columnValue(c column, v interface{}) (interface{}, error) {
	switch c.kind {
	case kindInt:
		switch n := v.(type) {
		case nil:
			return int64(0), nil
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
			f, err := n.Float64()
			if err != nil {
				return nil, err
			}
			return int64(f), nil
		case string:
			i, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
			return i, nil
		}
		return nil, fmt.Errorf("unexpected %T", v)
	case kindJSON:
		if v == nil {
			return "[]", nil
		}
		encoded, err := marshalJSON(v)
		if err != nil {
			return nil, err
		}
		return encoded, nil
	}

	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case bool:
		return strconv.FormatBool(s), nil
	}
	return marshalJSON(v)
}

func (s *SQLStore) readTable(ctx context.Context, t table) (json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, selectSQL(t))
	if err != nil {
		return nil, errors.New(describeDriverError(err))
	}
	defer rows.Close()

	var out []interface{}
	for rows.Next() {
		dest := make([]interface{}, len(t.columns))
		for i, c := range t.columns {
			if c.kind == kindInt {
				dest[i] = new(sql.NullInt64)
			} else {
				dest[i] = new(sql.NullString)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if t.scalar {
			out = append(out, dest[0].(*sql.NullString).String)
			continue
		}

		record := make(map[string]interface{}, len(t.columns))
		for i, c := range t.columns {
			switch c.kind {
			case kindInt:
				record[c.field] = dest[i].(*sql.NullInt64).Int64
			case kindJSON:
				value := dest[i].(*sql.NullString).String
				if value == "" {
					value = "[]"
				}
				record[c.field] = json.RawMessage(value)
			default:
				record[c.field] = dest[i].(*sql.NullString).String
			}
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if out == nil {
		return json.RawMessage("[]"), nil
	}
	encoded, err := marshalJSON(out)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(encoded), nil
}

// describeDriverError adds the server error code when the driver reports one.
func describeDriverError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Sprintf("postgres %s: %s", pgErr.Code, pgErr.Message)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return fmt.Sprintf("mysql %d: %s", myErr.Number, myErr.Message)
	}
	return err.Error()
}
