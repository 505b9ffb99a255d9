package history

import (
	"context"
	"fmt"

	"github.com/jmX86/TempSync-hardware/internal/config"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// SurrealDBRecorder inserts each attempt as a row of the configured table.
type SurrealDBRecorder struct {
	db    *surrealdb.DB
	table models.Table
}

// New returns a recorder for cfg, or a no-op recorder when history is disabled.
func New(cfg *config.History) (Recorder, error) {
	if !cfg.Enabled() {
		return NewNoop(), nil
	}

	db, err := openHistoryDB(cfg)
	if err != nil {
		return nil, err
	}

	return newSurrealDBRecorder(db, cfg), nil
}

func newSurrealDBRecorder(db *surrealdb.DB, cfg *config.History) *SurrealDBRecorder {
	return &SurrealDBRecorder{db: db, table: models.Table(cfg.TableName())}
}

// openHistoryDB signs in to the history database and selects its namespace.
func openHistoryDB(cfg *config.History) (*surrealdb.DB, error) {
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to reach history database at %s: %w", cfg.URL, err)
	}

	token, err := db.SignIn(&surrealdb.Auth{
		Username: cfg.User,
		Password: cfg.Pass,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history database rejected user %q: %w", cfg.User, err)
	}

	if err := db.Authenticate(token); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to authenticate history session: %w", err)
	}

	if err := db.Use(cfg.Namespace, cfg.Database); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to select history namespace %q database %q: %w", cfg.Namespace, cfg.Database, err)
	}

	return db, nil
}

func (r *SurrealDBRecorder) Record(ctx context.Context, a Attempt) error {
	if _, err := surrealdb.Insert[Attempt](r.db, r.table, a); err != nil {
		return fmt.Errorf("failed to insert provisioning attempt into %s: %w", r.table, err)
	}
	return nil
}

func (r *SurrealDBRecorder) Close() error {
	return r.db.Close()
}
