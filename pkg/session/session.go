// Package session ties one client conversation to its shape registry and
// cached host state. A session is the unit of identity translation: the same
// caller-visible shape IDs mean the same shapes for as long as the session
// lives, and nothing after Close.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/Therealkorris/MCP/pkg/ports"
	"github.com/Therealkorris/MCP/pkg/registry"
	"github.com/google/uuid"
)

// Session holds per-conversation state. Safe for concurrent use.
type Session struct {
	id       string
	registry *registry.Registry
	store    ports.RegistryStore
	logger   *slog.Logger

	mu           sync.Mutex
	openStencils []string
	closed       bool
}

// Option configures a Session.
type Option func(*Session)

// WithID fixes the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithStore persists registry snapshots after every mutation, so a restarted
// bridge can resume the session.
func WithStore(store ports.RegistryStore) Option {
	return func(s *Session) { s.store = store }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates a Session with a fresh registry.
func New(opts ...Option) *Session {
	s := &Session{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.registry = registry.New(s.id, registry.WithLogger(s.logger))
	return s
}

// Resume loads a persisted session from the store. Returns
// domain.ErrRegistryNotFound when no snapshot exists for the ID.
func Resume(ctx context.Context, id string, store ports.RegistryStore, opts ...Option) (*Session, error) {
	snap, err := store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:     id,
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = registry.FromSnapshot(snap, registry.WithLogger(s.logger))
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Registry exposes the session's shape registry.
func (s *Session) Registry() *registry.Registry { return s.registry }

// Resolve maps a caller-visible shape ID to its executor identifier.
// Satisfies the translator's resolver dependency.
func (s *Session) Resolve(callerID int) (string, error) {
	if s.isClosed() {
		return "", domain.ErrSessionClosed
	}
	return s.registry.Resolve(callerID)
}

// OpenStencils returns the stencil names cached from the last host listing.
func (s *Session) OpenStencils() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.openStencils))
	copy(out, s.openStencils)
	return out
}

// CacheStencils replaces the open-stencil cache.
func (s *Session) CacheStencils(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.openStencils = append(s.openStencils[:0], names...)
}

// Checkpoint persists the current registry snapshot when a store is attached.
// Persistence failures are logged, not propagated: the in-memory registry
// stays authoritative for the session's lifetime.
func (s *Session) Checkpoint(ctx context.Context) {
	if s.store == nil || s.isClosed() {
		return
	}
	if err := s.store.Save(ctx, s.id, s.registry.Snapshot()); err != nil {
		s.logger.Warn("registry checkpoint failed", "session_id", s.id, "err", err)
	}
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool { return s.isClosed() }

// Close tears the session down: the registry becomes unreachable and the
// persisted snapshot is removed. Close is idempotent.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.openStencils = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(ctx, s.id); err != nil && !errors.Is(err, domain.ErrRegistryNotFound) {
			s.logger.Warn("registry snapshot delete failed", "session_id", s.id, "err", err)
			return err
		}
	}
	s.logger.Debug("session closed", "session_id", s.id)
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
