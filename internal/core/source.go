package core

import (
	"context"
	"fmt"
	"maps"
	"strings"
)

// Source loads the rows of one table. Implementations must not retain or
// modify the returned slice after returning it.
type Source interface {
	Load(ctx context.Context) ([]Row, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) ([]Row, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) ([]Row, error) { return f(ctx) }

// StaticSource serves a fixed set of rows held in memory.
type StaticSource struct {
	rows []Row
}

// NewStaticSource returns a Source over rows. The rows are copied.
func NewStaticSource(rows ...Row) *StaticSource {
	return &StaticSource{rows: cloneRows(rows)}
}

// Load returns a copy of the rows.
func (s *StaticSource) Load(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneRows(s.rows), nil
}

// Len returns the number of rows.
func (s *StaticSource) Len() int { return len(s.rows) }

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = maps.Clone(r)
	}
	return out
}

// PostgresSource reads every row of a database table.
// Ordering is left to the view engine, so the query has no ORDER BY.
type PostgresSource struct {
	DB     DBTX
	Table  string      // Table name, quoted when queried
	Fields []FieldSpec // Selected columns, keyed in each Row by FieldSpec.Name
}

// Load selects all rows of the table.
func (s *PostgresSource) Load(ctx context.Context) ([]Row, error) {
	if s.DB == nil {
		return nil, ErrSourceUnavailable
	}

	rows, err := s.DB.Query(ctx, s.selectQuery())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		row := make(Row, len(s.Fields))
		for i, spec := range s.Fields {
			if i < len(values) {
				row[spec.Name] = values[i]
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// selectQuery builds the SELECT statement for the table.
func (s *PostgresSource) selectQuery() string {
	cols := make([]string, len(s.Fields))
	for i, spec := range s.Fields {
		cols[i] = quoteIdentifier(resolveDBColumn(spec))
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteTable(s.Table))
}

// resolveDBColumn returns the database column name for a field.
// It uses DBColumn when set, falling back to snake_case conversion of Name.
func resolveDBColumn(spec FieldSpec) string {
	if spec.DBColumn != "" {
		return spec.DBColumn
	}
	return toDBColumnName(spec.Name)
}

// quoteIdentifier quotes a SQL identifier, escaping embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteTable quotes a possibly schema-qualified table name: "public"."policies".
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// toDBColumnName converts a display column name to a database column name.
// "Transaction ID" -> "transaction_id"
// "account_name" -> "account_name" (no change if already snake_case)
func toDBColumnName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
