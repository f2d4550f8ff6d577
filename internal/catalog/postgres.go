package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/lib/pq"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresSource reads partners from a table with columns
// id, name, category, locations (jsonb), benefits (jsonb) and position.
type PostgresSource struct {
	db    *sql.DB
	table string
}

func NewPostgresSource(db *sql.DB, table string) (*PostgresSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}
	return &PostgresSource{db: db, table: table}, nil
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) query() string {
	return fmt.Sprintf(
		"SELECT id, name, category, locations, benefits FROM %s ORDER BY position, id",
		pq.QuoteIdentifier(s.table),
	)
}

type partnerRow struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Locations json.RawMessage `json:"locations"`
	Benefits  json.RawMessage `json:"benefits"`
}

func (s *PostgresSource) Load(ctx context.Context) ([]byte, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("query partners: %w", err)
	}
	defer rows.Close()

	partners := []partnerRow{}
	for rows.Next() {
		var (
			row       partnerRow
			category  sql.NullString
			locations []byte
			benefits  []byte
		)
		if err := rows.Scan(&row.ID, &row.Name, &category, &locations, &benefits); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		row.Category = category.String
		row.Locations = jsonOrDefault(locations, "null")
		row.Benefits = jsonOrDefault(benefits, "[]")
		partners = append(partners, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partners: %w", err)
	}

	return json.Marshal(partners)
}

func jsonOrDefault(raw []byte, def string) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(def)
	}
	return json.RawMessage(raw)
}
