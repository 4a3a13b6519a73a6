// Package service exposes the registry engine's public face: CRUD over
// categories and ingredients with referential integrity, plus explicit
// pull/push synchronization. Application code talks to RegistryService only;
// it never touches the state store or the remote document store directly.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/pantrysync/internal/diff"
	"github.com/vbonduro/pantrysync/internal/domain"
)

// stateStore is the subset of state.Store that RegistryService requires.
type stateStore interface {
	Load(ctx context.Context, registry string) (*domain.LocalState, error)
	Save(ctx context.Context, registry string, state *domain.LocalState) error
}

// synchronizer is the subset of sync.Syncer that RegistryService requires.
type synchronizer interface {
	Initialize(ctx context.Context) (*domain.LocalState, error)
	Pull(ctx context.Context) (*domain.LocalState, error)
	Push(ctx context.Context) (*domain.LocalState, error)
}

type RegistryService struct {
	// mu serializes every load-mutate-save cycle and every sync call.
	// Without it, two concurrent operations could interleave their cycles
	// and the later save would silently discard the earlier one.
	mu       gosync.Mutex
	states   stateStore
	syncer   synchronizer
	registry string
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

func NewRegistryService(states stateStore, syncer synchronizer, registry string, logger *slog.Logger) *RegistryService {
	return &RegistryService{
		states:   states,
		syncer:   syncer,
		registry: registry,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// CategoryInput carries the caller-supplied fields for a new category. ID is
// optional; one is generated when absent.
type CategoryInput struct {
	ID   string
	Name string
}

// IngredientInput carries the caller-supplied fields for a new ingredient.
// CategoryID must resolve to an existing category.
type IngredientInput struct {
	ID          string
	Name        string
	CategoryID  string
	DefaultUnit string
}

func (s *RegistryService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created domain.Category
	err := s.mutate(ctx, func(st *domain.LocalState) error {
		now := s.now()
		id := in.ID
		if id == "" {
			id = s.newID()
		}
		created = domain.Category{
			ID:        id,
			Name:      in.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		st.Current.Categories[id] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *RegistryService) UpdateCategory(ctx context.Context, id, name string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated domain.Category
	err := s.mutate(ctx, func(st *domain.LocalState) error {
		category, ok := st.Current.Categories[id]
		if !ok {
			return fmt.Errorf("category %s: %w", id, domain.ErrEntityNotFound)
		}
		category.Name = name
		category.UpdatedAt = s.now()
		st.Current.Categories[id] = category
		updated = category

		// Keep the denormalized copies embedded in ingredients in step.
		for ingID, ing := range st.Current.Ingredients {
			if ing.Category.ID == id {
				ing.Category = category
				st.Current.Ingredients[ingID] = ing
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory removes a category. Deleting an absent id is a no-op.
// Deleting a category still referenced by ingredients is rejected with
// ErrCategoryInUse; the caller must move or delete those ingredients first.
func (s *RegistryService) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(st *domain.LocalState) error {
		if _, ok := st.Current.Categories[id]; !ok {
			return nil
		}
		for _, ing := range st.Current.Ingredients {
			if ing.Category.ID == id {
				return fmt.Errorf("category %s: %w", id, domain.ErrCategoryInUse)
			}
		}
		delete(st.Current.Categories, id)
		return nil
	})
}

func (s *RegistryService) CreateIngredient(ctx context.Context, in IngredientInput) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created domain.Ingredient
	err := s.mutate(ctx, func(st *domain.LocalState) error {
		category, ok := st.Current.Categories[in.CategoryID]
		if !ok {
			return fmt.Errorf("category %s: %w", in.CategoryID, domain.ErrCategoryNotFound)
		}

		now := s.now()
		id := in.ID
		if id == "" {
			id = s.newID()
		}
		created = domain.Ingredient{
			ID:          id,
			Name:        in.Name,
			DefaultUnit: in.DefaultUnit,
			Category:    category,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		st.Current.Ingredients[id] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *RegistryService) UpdateIngredient(ctx context.Context, id, name, defaultUnit, categoryID string) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated domain.Ingredient
	err := s.mutate(ctx, func(st *domain.LocalState) error {
		ingredient, ok := st.Current.Ingredients[id]
		if !ok {
			return fmt.Errorf("ingredient %s: %w", id, domain.ErrEntityNotFound)
		}

		if categoryID != ingredient.Category.ID {
			category, ok := st.Current.Categories[categoryID]
			if !ok {
				return fmt.Errorf("category %s: %w", categoryID, domain.ErrCategoryNotFound)
			}
			ingredient.Category = category
		}

		ingredient.Name = name
		ingredient.DefaultUnit = defaultUnit
		ingredient.UpdatedAt = s.now()
		st.Current.Ingredients[id] = ingredient
		updated = ingredient
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteIngredient removes an ingredient. Deleting an absent id is a no-op.
func (s *RegistryService) DeleteIngredient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(st *domain.LocalState) error {
		delete(st.Current.Ingredients, id)
		return nil
	})
}

func (s *RegistryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}
	category, ok := st.Current.Categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrEntityNotFound)
	}
	return &category, nil
}

func (s *RegistryService) GetIngredient(ctx context.Context, id string) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}
	ingredient, ok := st.Current.Ingredients[id]
	if !ok {
		return nil, fmt.Errorf("ingredient %s: %w", id, domain.ErrEntityNotFound)
	}
	return &ingredient, nil
}

func (s *RegistryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(st.Current.Categories))
	for _, c := range st.Current.Categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *RegistryService) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}
	ingredients := make([]domain.Ingredient, 0, len(st.Current.Ingredients))
	for _, i := range st.Current.Ingredients {
		ingredients = append(ingredients, i)
	}
	sort.Slice(ingredients, func(i, j int) bool { return ingredients[i].Name < ingredients[j].Name })
	return ingredients, nil
}

// PendingChanges returns the current change set, freshly loaded.
func (s *RegistryService) PendingChanges(ctx context.Context) ([]domain.PendingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}
	return st.PendingChanges, nil
}

// SyncState names where a registry sits in its sync lifecycle.
type SyncState string

const (
	StateUnsynced SyncState = "unsynced" // never completed a sync
	StateSynced   SyncState = "synced"   // no local edits since last sync
	StateDirty    SyncState = "dirty"    // local edits awaiting push
)

// Status is a point-in-time summary of the registry's sync lifecycle.
type Status struct {
	State           SyncState
	PendingChanges  int
	Categories      int
	Ingredients     int
	LastLocalUpdate time.Time
	LastSyncTime    *time.Time
}

func (s *RegistryService) Status(ctx context.Context) (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}

	status := &Status{
		State:           StateUnsynced,
		PendingChanges:  len(st.PendingChanges),
		Categories:      len(st.Current.Categories),
		Ingredients:     len(st.Current.Ingredients),
		LastLocalUpdate: st.LastLocalUpdate,
		LastSyncTime:    st.LastSyncTime,
	}
	if st.Synced() {
		status.State = StateSynced
		if st.Dirty() {
			status.State = StateDirty
		}
	}
	return status, nil
}

// Initialize runs the startup sync: pull the remote registry, creating the
// default document when none exists.
func (s *RegistryService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.syncer.Initialize(ctx)
	return err
}

// Pull replaces local state with the remote registry, discarding pending
// local edits.
func (s *RegistryService) Pull(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.syncer.Pull(ctx)
	return err
}

// Push writes local state to the remote registry and advances the baseline.
func (s *RegistryService) Push(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.syncer.Push(ctx)
	return err
}

// mutate runs one load-mutate-save cycle: load the full record, apply fn to
// current, recompute the pending change set from scratch, stamp the local
// update time, and write the full record back. A failing fn aborts with no
// state change.
func (s *RegistryService) mutate(ctx context.Context, fn func(st *domain.LocalState) error) error {
	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return err
	}

	if err := fn(st); err != nil {
		return err
	}

	now := s.now()
	st.PendingChanges = diff.Recompute(st.Current, st.Baseline, now)
	st.LastLocalUpdate = now

	if err := s.states.Save(ctx, s.registry, st); err != nil {
		return err
	}
	s.logger.Debug("local state updated", "registry", s.registry, "pending", len(st.PendingChanges))
	return nil
}
