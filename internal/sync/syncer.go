// Package sync reconciles the local registry state with the single
// authoritative JSON document in the remote store. The protocol is
// last-writer-wins at document granularity: pull replaces local state in
// full, push replaces the remote document in full. The one refinement over
// plain LWW is a stale-write check on push, so a client that has fallen
// behind the remote gets an error and a chance to re-pull instead of silently
// clobbering someone else's edits.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/pantrysync/internal/docstore"
	"github.com/vbonduro/pantrysync/internal/domain"
)

// stateStore is the subset of state.Store the syncer requires.
type stateStore interface {
	Load(ctx context.Context, registry string) (*domain.LocalState, error)
	Save(ctx context.Context, registry string, state *domain.LocalState) error
}

type Syncer struct {
	states   stateStore
	docs     docstore.Store
	registry string
	folderID string
	logger   *slog.Logger
	now      func() time.Time
}

func NewSyncer(states stateStore, docs docstore.Store, registry, folderID string, logger *slog.Logger) *Syncer {
	return &Syncer{
		states:   states,
		docs:     docs,
		registry: registry,
		folderID: folderID,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DocumentName returns the remote file name for this registry.
func (s *Syncer) DocumentName() string {
	return s.registry + "-registry.json"
}

// Pull replaces local current and baseline with the remote document's entity
// maps and clears pending changes. An absent remote document is the expected
// first-run case: a default empty registry is created remotely so both sides
// agree from then on. Every other failure (transport, permissions, corrupt
// content) propagates and leaves local state untouched, so unsynced local
// edits survive a flaky pull.
func (s *Syncer) Pull(ctx context.Context) (*domain.LocalState, error) {
	handle, err := s.docs.Find(ctx, s.DocumentName(), s.folderID)
	if errors.Is(err, docstore.ErrNotFound) {
		return s.createDefault(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to locate registry document: %w", err)
	}

	content, err := s.docs.Read(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry document: %w", err)
	}

	registry := &domain.Registry{}
	if err := json.Unmarshal(content, registry); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}

	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}

	entities := registry.Entities()
	st.Current = entities
	st.Baseline = entities.Clone()
	st.PendingChanges = []domain.PendingChange{}
	lastUpdated := registry.LastUpdated
	st.LastSyncTime = &lastUpdated

	if err := s.states.Save(ctx, s.registry, st); err != nil {
		return nil, err
	}

	s.logger.Info("pulled registry",
		"registry", s.registry,
		"categories", len(entities.Categories),
		"ingredients", len(entities.Ingredients))
	return st, nil
}

// Push serializes the entire current entity set into one registry document
// and overwrites the remote copy. On success baseline catches up to current
// and pending changes clear; on any failure local state is untouched.
//
// If the remote document has been updated since our last sync, Push returns
// ErrStaleWrite without writing. The caller should Pull and retry.
func (s *Syncer) Push(ctx context.Context) (*domain.LocalState, error) {
	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}

	now := s.now()
	registry := domain.NewRegistry(st.Current, now)
	content, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode registry document: %w", err)
	}

	handle, err := s.docs.Find(ctx, s.DocumentName(), s.folderID)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		if _, err := s.docs.Create(ctx, s.DocumentName(), content, s.folderID); err != nil {
			return nil, fmt.Errorf("failed to create registry document: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to locate registry document: %w", err)
	default:
		if err := s.checkStale(ctx, handle, st); err != nil {
			return nil, err
		}
		if err := s.docs.Update(ctx, handle, content); err != nil {
			return nil, fmt.Errorf("failed to update registry document: %w", err)
		}
	}

	st.Baseline = st.Current.Clone()
	st.PendingChanges = []domain.PendingChange{}
	st.LastSyncTime = &now

	if err := s.states.Save(ctx, s.registry, st); err != nil {
		return nil, err
	}

	s.logger.Info("pushed registry",
		"registry", s.registry,
		"categories", len(st.Current.Categories),
		"ingredients", len(st.Current.Ingredients))
	return st, nil
}

// Initialize performs the startup sync: a plain Pull, including the
// default-document creation when the remote side is empty.
func (s *Syncer) Initialize(ctx context.Context) (*domain.LocalState, error) {
	return s.Pull(ctx)
}

// checkStale compares the remote document's lastUpdated stamp against our
// last sync time. A remote that moved past us means another client pushed
// since we pulled; overwriting it would discard their edits.
func (s *Syncer) checkStale(ctx context.Context, handle *docstore.Handle, st *domain.LocalState) error {
	content, err := s.docs.Read(ctx, handle)
	if err != nil {
		return fmt.Errorf("failed to read registry document: %w", err)
	}

	remote := &domain.Registry{}
	if err := json.Unmarshal(content, remote); err != nil {
		// The remote copy is unparseable; overwriting it cannot lose
		// meaningful edits, so skip the staleness comparison.
		s.logger.Warn("remote registry document is corrupt, overwriting", "registry", s.registry)
		return nil
	}

	if st.LastSyncTime == nil {
		return fmt.Errorf("%w: registry exists remotely but was never pulled", domain.ErrStaleWrite)
	}
	if remote.LastUpdated.After(*st.LastSyncTime) {
		return fmt.Errorf("%w: remote updated %s, last synced %s",
			domain.ErrStaleWrite,
			remote.LastUpdated.Format(time.RFC3339),
			st.LastSyncTime.Format(time.RFC3339))
	}
	return nil
}

// createDefault synthesizes an empty registry, stores it locally, and pushes
// it remotely so both sides agree on the starting point.
func (s *Syncer) createDefault(ctx context.Context) (*domain.LocalState, error) {
	st, err := s.states.Load(ctx, s.registry)
	if err != nil {
		return nil, err
	}

	now := s.now()
	st.Current = domain.NewEntitySet()
	st.Baseline = domain.NewEntitySet()
	st.PendingChanges = []domain.PendingChange{}

	registry := domain.NewRegistry(st.Current, now)
	content, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode registry document: %w", err)
	}
	if _, err := s.docs.Create(ctx, s.DocumentName(), content, s.folderID); err != nil {
		return nil, fmt.Errorf("failed to create default registry document: %w", err)
	}

	st.LastSyncTime = &now
	if err := s.states.Save(ctx, s.registry, st); err != nil {
		return nil, err
	}

	s.logger.Info("created default registry document", "registry", s.registry)
	return st, nil
}
