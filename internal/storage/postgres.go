package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Postgres keeps each collection as a single jsonb document in one
// table, so a collection write is atomic and readers never observe a
// partially written snapshot.
type Postgres struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgres(db *sql.DB, logger *logrus.Logger) *Postgres {
	return &Postgres{
		db:  db,
		log: logger,
	}
}

// EnsureSchema creates the collections table if it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS collections (
            name       TEXT PRIMARY KEY,
            doc        JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		p.log.Errorf("Storage: Failed to ensure collections schema: %v", err)
		return fmt.Errorf("could not ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, collection string) ([]byte, error) {
	query := `SELECT doc FROM collections WHERE name = $1`
	var doc []byte
	err := p.db.QueryRowContext(ctx, query, collection).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p.log.Debugf("Storage: Collection '%s' not found, starting empty", collection)
			return nil, nil
		}
		p.log.Errorf("Storage: Failed to load collection '%s': %v", collection, err)
		return nil, fmt.Errorf("could not load collection %s: %w", collection, err)
	}
	return doc, nil
}

func (p *Postgres) Save(ctx context.Context, collection string, doc []byte) error {
	query := `
        INSERT INTO collections (name, doc, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`
	if _, err := p.db.ExecContext(ctx, query, collection, doc); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "22P02" {
			p.log.Warnf("Storage: Invalid document for collection '%s': %s", collection, pqErr.Message)
			return fmt.Errorf("invalid document for collection %s: %s", collection, pqErr.Message)
		}
		p.log.Errorf("Storage: Failed to save collection '%s': %v", collection, err)
		return fmt.Errorf("could not save collection %s: %w", collection, err)
	}
	p.log.Debugf("Storage: Collection '%s' saved (%d bytes)", collection, len(doc))
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection string) error {
	query := `DELETE FROM collections WHERE name = $1`
	if _, err := p.db.ExecContext(ctx, query, collection); err != nil {
		p.log.Errorf("Storage: Failed to delete collection '%s': %v", collection, err)
		return fmt.Errorf("could not delete collection %s: %w", collection, err)
	}
	return nil
}
