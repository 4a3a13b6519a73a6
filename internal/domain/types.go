package domain

import (
	"encoding/json"
	"time"
)

// RegistryVersion is the wire-format version written into every pushed document.
const RegistryVersion = "1.0.0"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ingredient embeds a denormalized copy of its category, not just the id, so
// a registry document is renderable without a second lookup.
type Ingredient struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DefaultUnit string    `json:"defaultUnit"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Kind identifies which entity map an id lives in.
type Kind string

const (
	KindCategory   Kind = "category"
	KindIngredient Kind = "ingredient"
)

// ChangeOp is the operation recorded in a pending change.
type ChangeOp string

const (
	OpCreate ChangeOp = "create"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// PendingChange records how current differs from baseline for one entity.
// Snapshot holds the current value for create/update and the baseline value
// for delete.
type PendingChange struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Op        ChangeOp        `json:"operation"`
	Timestamp time.Time       `json:"timestamp"`
	Snapshot  json.RawMessage `json:"snapshot"`
}

// EntitySet is the full entity graph of one registry: both entity kinds,
// keyed by id.
type EntitySet struct {
	Categories  map[string]Category   `json:"categories"`
	Ingredients map[string]Ingredient `json:"ingredients"`
}

// NewEntitySet returns an EntitySet with allocated (empty) maps.
func NewEntitySet() EntitySet {
	return EntitySet{
		Categories:  make(map[string]Category),
		Ingredients: make(map[string]Ingredient),
	}
}

// Clone returns a deep copy. Entities are value types, so copying the maps
// copies everything.
func (s EntitySet) Clone() EntitySet {
	out := EntitySet{
		Categories:  make(map[string]Category, len(s.Categories)),
		Ingredients: make(map[string]Ingredient, len(s.Ingredients)),
	}
	for id, c := range s.Categories {
		out.Categories[id] = c
	}
	for id, i := range s.Ingredients {
		out.Ingredients[id] = i
	}
	return out
}

// RegistryMetadata carries the entity counts stored alongside the maps.
type RegistryMetadata struct {
	TotalCategories  int `json:"totalCategories"`
	TotalIngredients int `json:"totalIngredients"`
}

// Registry is the remote document: one JSON blob holding the entire entity
// graph for a registry, plus versioning metadata.
type Registry struct {
	Categories  map[string]Category   `json:"categories"`
	Ingredients map[string]Ingredient `json:"ingredients"`
	Version     string                `json:"version"`
	LastUpdated time.Time             `json:"lastUpdated"`
	Metadata    RegistryMetadata      `json:"metadata"`
}

// NewRegistry builds a registry document from an entity set, stamped with the
// given update time.
func NewRegistry(entities EntitySet, updatedAt time.Time) *Registry {
	return &Registry{
		Categories:  entities.Categories,
		Ingredients: entities.Ingredients,
		Version:     RegistryVersion,
		LastUpdated: updatedAt,
		Metadata: RegistryMetadata{
			TotalCategories:  len(entities.Categories),
			TotalIngredients: len(entities.Ingredients),
		},
	}
}

// Entities returns the registry's entity maps as an EntitySet, allocating
// empty maps when the document omitted them.
func (r *Registry) Entities() EntitySet {
	set := EntitySet{Categories: r.Categories, Ingredients: r.Ingredients}
	if set.Categories == nil {
		set.Categories = make(map[string]Category)
	}
	if set.Ingredients == nil {
		set.Ingredients = make(map[string]Ingredient)
	}
	return set
}

// LocalState is the single durable record the engine keeps per registry.
// Current is authoritative for reads and edits; Baseline is the snapshot of
// current as of the last successful sync; PendingChanges is always the fresh
// diff of the two, never incrementally patched.
type LocalState struct {
	Current         EntitySet       `json:"current"`
	Baseline        EntitySet       `json:"baseline"`
	PendingChanges  []PendingChange `json:"pendingChanges"`
	LastLocalUpdate time.Time       `json:"lastLocalUpdate"`
	LastSyncTime    *time.Time      `json:"lastSyncTime"`
}

// NewLocalState returns the zero-valued state: empty maps, no pending
// changes, never synced.
func NewLocalState() *LocalState {
	return &LocalState{
		Current:        NewEntitySet(),
		Baseline:       NewEntitySet(),
		PendingChanges: []PendingChange{},
	}
}

// Synced reports whether the registry has completed at least one sync.
func (s *LocalState) Synced() bool {
	return s.LastSyncTime != nil
}

// Dirty reports whether there are local edits not yet pushed.
func (s *LocalState) Dirty() bool {
	return len(s.PendingChanges) > 0
}
