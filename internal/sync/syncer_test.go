package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/pantrysync/internal/db"
	"github.com/vbonduro/pantrysync/internal/docstore/memory"
	"github.com/vbonduro/pantrysync/internal/domain"
	"github.com/vbonduro/pantrysync/internal/state"
)

const testFolder = "folder1"

func newTestSyncer(t *testing.T) (*Syncer, *state.Store, *memory.Store) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	states := state.NewStore(d)
	docs := memory.New()
	syncer := NewSyncer(states, docs, "pantry", testFolder, slog.Default())
	return syncer, states, docs
}

func fixedTime(s *Syncer, at time.Time) {
	s.now = func() time.Time { return at }
}

func seedCategory(t *testing.T, states *state.Store, id, name string) {
	t.Helper()
	ctx := context.Background()
	st, err := states.Load(ctx, "pantry")
	require.NoError(t, err)
	now := time.Now().UTC()
	st.Current.Categories[id] = domain.Category{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	st.PendingChanges = []domain.PendingChange{{ID: id, Kind: domain.KindCategory, Op: domain.OpCreate, Timestamp: now}}
	st.LastLocalUpdate = now
	require.NoError(t, states.Save(ctx, "pantry", st))
}

// With empty local state and no remote document, Initialize must leave
// current == baseline == empty, no pending changes, and create the default
// document remotely.
func TestInitializeCreatesDefaultDocument(t *testing.T) {
	syncer, _, docs := newTestSyncer(t)
	ctx := context.Background()

	st, err := syncer.Initialize(ctx)
	require.NoError(t, err)

	assert.Empty(t, st.Current.Categories)
	assert.Empty(t, st.Current.Ingredients)
	assert.Empty(t, st.Baseline.Categories)
	assert.Empty(t, st.PendingChanges)
	require.NotNil(t, st.LastSyncTime)

	content, ok := docs.Content("pantry-registry.json", testFolder)
	require.True(t, ok, "default document should exist remotely")

	registry := &domain.Registry{}
	require.NoError(t, json.Unmarshal(content, registry))
	assert.Equal(t, domain.RegistryVersion, registry.Version)
	assert.Zero(t, registry.Metadata.TotalCategories)
}

func TestPushWritesDocumentAndAdvancesBaseline(t *testing.T) {
	syncer, states, docs := newTestSyncer(t)
	ctx := context.Background()

	seedCategory(t, states, "cat1", "Vegetables")

	st, err := syncer.Push(ctx)
	require.NoError(t, err)

	assert.Equal(t, st.Current.Categories, st.Baseline.Categories)
	assert.Empty(t, st.PendingChanges)
	require.NotNil(t, st.LastSyncTime)

	content, ok := docs.Content("pantry-registry.json", testFolder)
	require.True(t, ok)
	registry := &domain.Registry{}
	require.NoError(t, json.Unmarshal(content, registry))
	assert.Equal(t, "Vegetables", registry.Categories["cat1"].Name)
	assert.Equal(t, 1, registry.Metadata.TotalCategories)
}

// Push then pull on a fresh client yields current == baseline == the pushed
// entity maps.
func TestPushPullRoundTrip(t *testing.T) {
	syncer, states, docs := newTestSyncer(t)
	ctx := context.Background()

	seedCategory(t, states, "cat1", "Vegetables")
	_, err := syncer.Push(ctx)
	require.NoError(t, err)

	// Fresh client sharing the same remote.
	d2, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d2.Close()) })
	fresh := NewSyncer(state.NewStore(d2), docs, "pantry", testFolder, slog.Default())

	st, err := fresh.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Vegetables", st.Current.Categories["cat1"].Name)
	assert.Equal(t, st.Current.Categories, st.Baseline.Categories)
	assert.Empty(t, st.PendingChanges)
}

func TestPullReplacesLocalEdits(t *testing.T) {
	syncer, states, _ := newTestSyncer(t)
	ctx := context.Background()

	_, err := syncer.Initialize(ctx)
	require.NoError(t, err)

	seedCategory(t, states, "cat1", "Vegetables")

	st, err := syncer.Pull(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Current.Categories, "pull discards unsynced local edits by design")
	assert.Empty(t, st.PendingChanges)
}

// A transient failure during pull must propagate and leave local state,
// including pending changes, untouched. Treating it like an absent document
// would silently wipe unsynced edits.
func TestPullTransientErrorLeavesStateUntouched(t *testing.T) {
	syncer, states, docs := newTestSyncer(t)
	ctx := context.Background()

	seedCategory(t, states, "cat1", "Vegetables")

	transient := errors.New("network timeout")
	docs.FailFind = transient

	_, err := syncer.Pull(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, transient)

	st, err := states.Load(ctx, "pantry")
	require.NoError(t, err)
	assert.Equal(t, "Vegetables", st.Current.Categories["cat1"].Name)
	assert.Len(t, st.PendingChanges, 1)
}

func TestPullCorruptDocumentPropagates(t *testing.T) {
	syncer, states, docs := newTestSyncer(t)
	ctx := context.Background()

	_, err := docs.Create(ctx, "pantry-registry.json", []byte("{not json"), testFolder)
	require.NoError(t, err)
	seedCategory(t, states, "cat1", "Vegetables")

	_, err = syncer.Pull(ctx)
	assert.ErrorIs(t, err, domain.ErrCorruptDocument)

	st, err := states.Load(ctx, "pantry")
	require.NoError(t, err)
	assert.Equal(t, "Vegetables", st.Current.Categories["cat1"].Name)
}

func TestPushFailureLeavesStateUntouched(t *testing.T) {
	syncer, states, docs := newTestSyncer(t)
	ctx := context.Background()

	_, err := syncer.Initialize(ctx)
	require.NoError(t, err)
	seedCategory(t, states, "cat1", "Vegetables")

	docs.FailUpdate = errors.New("remote store unavailable")

	_, err = syncer.Push(ctx)
	require.Error(t, err)

	st, err := states.Load(ctx, "pantry")
	require.NoError(t, err)
	assert.Len(t, st.PendingChanges, 1)
	assert.Empty(t, st.Baseline.Categories, "baseline must not advance on a failed push")
}

func TestPushStaleWrite(t *testing.T) {
	syncer, states, docs := newTestSyncer(t)
	ctx := context.Background()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedTime(syncer, t0)
	_, err := syncer.Initialize(ctx)
	require.NoError(t, err)

	// Another client pushes after our sync.
	other := domain.NewRegistry(domain.NewEntitySet(), t0.Add(time.Minute))
	content, err := json.Marshal(other)
	require.NoError(t, err)
	handle, err := docs.Find(ctx, "pantry-registry.json", testFolder)
	require.NoError(t, err)
	require.NoError(t, docs.Update(ctx, handle, content))

	seedCategory(t, states, "cat1", "Vegetables")
	fixedTime(syncer, t0.Add(2*time.Minute))

	_, err = syncer.Push(ctx)
	assert.ErrorIs(t, err, domain.ErrStaleWrite)

	st, err := states.Load(ctx, "pantry")
	require.NoError(t, err)
	assert.Len(t, st.PendingChanges, 1, "pending changes survive a rejected push")
}

func TestPushNeverPulledAgainstExistingRemote(t *testing.T) {
	syncer, states, docs := newTestSyncer(t)
	ctx := context.Background()

	remote := domain.NewRegistry(domain.NewEntitySet(), time.Now().UTC())
	content, err := json.Marshal(remote)
	require.NoError(t, err)
	_, err = docs.Create(ctx, "pantry-registry.json", content, testFolder)
	require.NoError(t, err)

	seedCategory(t, states, "cat1", "Vegetables")

	_, err = syncer.Push(ctx)
	assert.ErrorIs(t, err, domain.ErrStaleWrite)
}

func TestPushAfterPullSucceeds(t *testing.T) {
	syncer, states, _ := newTestSyncer(t)
	ctx := context.Background()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedTime(syncer, t0)
	_, err := syncer.Initialize(ctx)
	require.NoError(t, err)

	seedCategory(t, states, "cat1", "Vegetables")

	fixedTime(syncer, t0.Add(time.Minute))
	st, err := syncer.Push(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.PendingChanges)
	assert.Equal(t, "Vegetables", st.Baseline.Categories["cat1"].Name)
}

func TestPullSetsSyncTimeFromDocument(t *testing.T) {
	syncer, _, docs := newTestSyncer(t)
	ctx := context.Background()

	stamp := time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC)
	remote := domain.NewRegistry(domain.NewEntitySet(), stamp)
	content, err := json.Marshal(remote)
	require.NoError(t, err)
	_, err = docs.Create(ctx, "pantry-registry.json", content, testFolder)
	require.NoError(t, err)

	st, err := syncer.Pull(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastSyncTime)
	assert.True(t, st.LastSyncTime.Equal(stamp))
}
