package supabase

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"staging-pro-backend/internal/store"
)

// DatabaseClient inspects the hosted schema over a direct Postgres
// connection. It is only available when DATABASE_URL is configured.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

// CheckSchema reports every table or column the core relies on that the
// live schema lacks. An empty result means the schema is current.
func (d *DatabaseClient) CheckSchema(ctx context.Context) ([]*store.SchemaDriftError, error) {
	var drift []*store.SchemaDriftError
	collections := []store.Collection{
		store.Submissions, store.Editors, store.Plans, store.Messages, store.ArchiveProjects,
	}
	required := store.RequiredColumns()

	for _, c := range collections {
		columns, err := d.columns(ctx, string(c))
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			drift = append(drift, store.NewTableDrift(c))
			continue
		}
		for _, name := range required[c] {
			if !columns[name] {
				drift = append(drift, store.NewColumnDrift(c, name))
			}
		}
	}
	return drift, nil
}

func (d *DatabaseClient) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
