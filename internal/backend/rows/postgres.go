// Package rows implements the backend row storage capability on PostgreSQL.
// It exposes the generic select-by-id / upsert-on-conflict contract the
// editor workflows are written against.
package rows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrijs2005/skilllink/internal/backend"
	"github.com/dmitrijs2005/skilllink/internal/dbx"
)

// identRe accepts unquoted SQL identifiers only. Table and column names come
// from code, never from user input, but the check keeps string-built SQL safe.
var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// SelectByID fetches one row by its id column. Absence is reported as
// backend.ErrNotFound.
func (s *PostgresStore) SelectByID(ctx context.Context, table, id string) (backend.Row, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, table)

	rs, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rs.Close()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return nil, backend.ErrNotFound
	}

	row, err := scanRow(rs)
	if err != nil {
		return nil, err
	}
	return row, rs.Err()
}

// Upsert inserts row into table, updating the existing row on a conflictKey
// collision. The id column may be omitted entirely, in which case the table's
// column default assigns one. The stored row is returned.
func (s *PostgresStore) Upsert(ctx context.Context, table string, row backend.Row, conflictKey string) (backend.Row, error) {
	query, args, err := buildUpsert(table, row, conflictKey)
	if err != nil {
		return nil, err
	}

	rs, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rs.Close()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return nil, errors.New("upsert returned no row")
	}

	stored, err := scanRow(rs)
	if err != nil {
		return nil, err
	}
	return stored, rs.Err()
}

// buildUpsert renders an INSERT ... ON CONFLICT ... DO UPDATE ... RETURNING *
// statement for the given row. Columns are emitted in sorted order so the
// statement text is deterministic. At least one non-conflict column is
// required for the DO UPDATE SET clause.
func buildUpsert(table string, row backend.Row, conflictKey string) (string, []any, error) {
	if !identRe.MatchString(table) {
		return "", nil, fmt.Errorf("invalid table name %q", table)
	}
	if !identRe.MatchString(conflictKey) {
		return "", nil, fmt.Errorf("invalid conflict key %q", conflictKey)
	}
	if len(row) == 0 {
		return "", nil, errors.New("upsert requires at least one column")
	}

	cols := make([]string, 0, len(row))
	for col := range row {
		if !identRe.MatchString(col) {
			return "", nil, fmt.Errorf("invalid column name %q", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	updates := make([]string, 0, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[col]
		if col != conflictKey {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	if len(updates) == 0 {
		return "", nil, errors.New("upsert requires at least one non-conflict column")
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING *`,
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		conflictKey,
		strings.Join(updates, ", "),
	)
	return query, args, nil
}

// scanRow reads the current result-set row into a backend.Row. []byte column
// values are converted to string so callers see text, not driver buffers.
func scanRow(rs *sql.Rows) (backend.Row, error) {
	columns, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rs.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	row := make(backend.Row, len(columns))
	for i, col := range columns {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	return row, nil
}
