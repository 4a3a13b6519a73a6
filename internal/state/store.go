// Package state persists the engine's LocalState record. Storage is a single
// row per registry: every mutation elsewhere loads the full record, changes
// it in memory, and saves the full record back, so there are no partial
// writes to reason about.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vbonduro/pantrysync/internal/domain"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the persisted state for the named registry, or a zero-valued
// state (empty maps, no pending changes, never synced) when nothing has been
// stored yet.
func (s *Store) Load(ctx context.Context, registry string) (*domain.LocalState, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM local_states WHERE registry = ?
	`, registry).Scan(&data)

	if err == sql.ErrNoRows {
		return domain.NewLocalState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load local state: %w", err)
	}

	state := domain.NewLocalState()
	if err := json.Unmarshal([]byte(data), state); err != nil {
		return nil, fmt.Errorf("failed to decode local state: %w", err)
	}
	normalize(state)
	return state, nil
}

// Save writes the full state record for the named registry, replacing any
// previous record.
func (s *Store) Save(ctx context.Context, registry string, state *domain.LocalState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode local state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO local_states (registry, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(registry) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, registry, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save local state: %w", err)
	}
	return nil
}

// normalize re-allocates maps and slices that JSON decoding left nil, so
// callers never see a nil entity map.
func normalize(state *domain.LocalState) {
	if state.Current.Categories == nil {
		state.Current.Categories = make(map[string]domain.Category)
	}
	if state.Current.Ingredients == nil {
		state.Current.Ingredients = make(map[string]domain.Ingredient)
	}
	if state.Baseline.Categories == nil {
		state.Baseline.Categories = make(map[string]domain.Category)
	}
	if state.Baseline.Ingredients == nil {
		state.Baseline.Ingredients = make(map[string]domain.Ingredient)
	}
	if state.PendingChanges == nil {
		state.PendingChanges = []domain.PendingChange{}
	}
}
