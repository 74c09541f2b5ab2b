// Package store shares a plugin catalog between team members through
// PostgreSQL. The local JSON registry stays the source the editor works
// from; push/pull synchronize it with the database.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"questforge/internal/plugin"
)

// CatalogStore is a PostgreSQL-backed plugin catalog.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore creates a store on an existing connection pool.
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

// EnsureSchema creates the catalog table if it does not exist.
func (s *CatalogStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS plugin_templates (
			id            TEXT PRIMARY KEY,
			display_name  TEXT NOT NULL,
			category      TEXT NOT NULL DEFAULT 'General',
			template_text TEXT NOT NULL,
			params        JSONB NOT NULL DEFAULT '[]'
		)`)
	if err != nil {
		return fmt.Errorf("create plugin_templates: %w", err)
	}
	return nil
}

// Push upserts every definition into the database.
func (s *CatalogStore) Push(ctx context.Context, defs []plugin.Def) error {
	for _, d := range defs {
		params, err := json.Marshal(d.Params)
		if err != nil {
			return fmt.Errorf("encode params for %s: %w", d.ID, err)
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO plugin_templates (id, display_name, category, template_text, params)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				category = EXCLUDED.category,
				template_text = EXCLUDED.template_text,
				params = EXCLUDED.params`,
			d.ID, d.Name, d.Category, d.Template, params)
		if err != nil {
			return fmt.Errorf("upsert plugin %s: %w", d.ID, err)
		}
	}
	log.Info().Int("count", len(defs)).Msg("Pushed plugins")
	return nil
}

// Pull fetches every definition, ordered by display name.
func (s *CatalogStore) Pull(ctx context.Context) ([]plugin.Def, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, display_name, category, template_text, params
		FROM plugin_templates
		ORDER BY lower(display_name)`)
	if err != nil {
		return nil, fmt.Errorf("query plugins: %w", err)
	}
	defer rows.Close()

	var defs []plugin.Def
	for rows.Next() {
		var d plugin.Def
		var params []byte
		if err := rows.Scan(&d.ID, &d.Name, &d.Category, &d.Template, &params); err != nil {
			return nil, fmt.Errorf("scan plugin: %w", err)
		}
		if err := json.Unmarshal(params, &d.Params); err != nil {
			return nil, fmt.Errorf("decode params for %s: %w", d.ID, err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plugins: %w", err)
	}

	log.Info().Int("count", len(defs)).Msg("Pulled plugins")
	return defs, nil
}
