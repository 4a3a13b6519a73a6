// Package diff computes the pending change set of a registry as the
// structural difference between the current entity maps and the baseline
// snapshot. It is a pure calculation: callers rerun it after every mutation
// instead of patching a stored list, so the result can never drift from the
// maps it is derived from.
package diff

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/vbonduro/pantrysync/internal/domain"
)

// Recompute returns the full pending change set for the given state. Each
// entity kind is diffed independently and the results concatenated,
// categories first. Within a kind, creates and updates come before deletes;
// both groups are ordered by entity id so the output is deterministic.
//
// An entity that was created and deleted locally without an intervening sync
// appears in neither map and therefore produces no change. An entity present
// in baseline but absent from current produces exactly one delete, no matter
// how many edits preceded the removal.
func Recompute(current, baseline domain.EntitySet, now time.Time) []domain.PendingChange {
	changes := diffCategories(current.Categories, baseline.Categories, now)
	changes = append(changes, diffIngredients(current.Ingredients, baseline.Ingredients, now)...)
	return changes
}

func diffCategories(current, baseline map[string]domain.Category, now time.Time) []domain.PendingChange {
	var upserts, deletes []domain.PendingChange

	for _, id := range sortedKeys(current) {
		cur := current[id]
		base, ok := baseline[id]
		switch {
		case !ok:
			upserts = append(upserts, change(id, domain.KindCategory, domain.OpCreate, now, cur))
		case !jsonEqual(cur, base):
			upserts = append(upserts, change(id, domain.KindCategory, domain.OpUpdate, now, cur))
		}
	}
	for _, id := range sortedKeys(baseline) {
		if _, ok := current[id]; !ok {
			deletes = append(deletes, change(id, domain.KindCategory, domain.OpDelete, now, baseline[id]))
		}
	}

	return append(upserts, deletes...)
}

func diffIngredients(current, baseline map[string]domain.Ingredient, now time.Time) []domain.PendingChange {
	var upserts, deletes []domain.PendingChange

	for _, id := range sortedKeys(current) {
		cur := current[id]
		base, ok := baseline[id]
		switch {
		case !ok:
			upserts = append(upserts, change(id, domain.KindIngredient, domain.OpCreate, now, cur))
		case !jsonEqual(cur, base):
			upserts = append(upserts, change(id, domain.KindIngredient, domain.OpUpdate, now, cur))
		}
	}
	for _, id := range sortedKeys(baseline) {
		if _, ok := current[id]; !ok {
			deletes = append(deletes, change(id, domain.KindIngredient, domain.OpDelete, now, baseline[id]))
		}
	}

	return append(upserts, deletes...)
}

func change(id string, kind domain.Kind, op domain.ChangeOp, now time.Time, snapshot any) domain.PendingChange {
	return domain.PendingChange{
		ID:        id,
		Kind:      kind,
		Op:        op,
		Timestamp: now,
		Snapshot:  marshalSnapshot(snapshot),
	}
}

// jsonEqual compares entities by their canonical JSON encoding. This matches
// the wire representation exactly and sidesteps time.Time monotonic-clock
// mismatches that trip up reflect.DeepEqual.
func jsonEqual(a, b any) bool {
	return string(marshalSnapshot(a)) == string(marshalSnapshot(b))
}

func marshalSnapshot(v any) json.RawMessage {
	b, _ := json.Marshal(v) // plain data structs, cannot fail
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
