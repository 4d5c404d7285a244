// Package registry maintains the session-scoped mapping between
// caller-visible shape IDs and executor-visible IDs.
//
// Caller IDs are small integers assigned monotonically per document (1, 2,
// 3, ...) unless the caller supplies one. A retired ID is never reassigned
// within the session; resolving it reports domain.ErrShapeNotFound so that
// doomed operations never cross the isolation boundary.
package registry

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Therealkorris/MCP/pkg/domain"
)

// Registry is the in-memory registry for one session. Safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	sessionID string
	entries   map[int]*domain.RegistryEntry
	order     []int
	nextID    map[domain.DocumentHandle]int
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty registry for a session.
func New(sessionID string, opts ...Option) *Registry {
	r := &Registry{
		sessionID: sessionID,
		entries:   make(map[int]*domain.RegistryEntry),
		nextID:    make(map[domain.DocumentHandle]int),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromSnapshot restores a registry from a stored snapshot.
func FromSnapshot(snap *domain.RegistrySnapshot, opts ...Option) *Registry {
	r := New(snap.SessionID, opts...)
	for _, e := range snap.Entries {
		entry := e
		r.entries[entry.CallerID] = &entry
		r.order = append(r.order, entry.CallerID)
	}
	for doc, next := range snap.NextID {
		r.nextID[doc] = next
	}
	return r
}

// SessionID returns the owning session ID.
func (r *Registry) SessionID() string { return r.sessionID }

// Register records a new caller↔executor mapping. A zero callerID asks the
// registry to assign the next unused small integer for the document.
func (r *Registry) Register(callerID int, executorID string, doc domain.DocumentHandle, kind domain.EntryKind) (*domain.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if callerID < 0 {
		return nil, domain.NewValidationError("caller_id", fmt.Sprintf("must be positive, got %d", callerID))
	}
	if callerID == 0 {
		callerID = r.next(doc)
	} else if _, exists := r.entries[callerID]; exists {
		// Retired IDs count as used: they are never handed to a new shape.
		return nil, domain.NewValidationError("caller_id", fmt.Sprintf("id %d already used in this session", callerID))
	}

	if callerID >= r.nextID[doc] {
		r.nextID[doc] = callerID + 1
	}

	entry := &domain.RegistryEntry{
		CallerID:   callerID,
		ExecutorID: executorID,
		Doc:        doc,
		Kind:       kind,
		Alive:      true,
	}
	r.entries[callerID] = entry
	r.order = append(r.order, callerID)

	r.logger.Debug("registry: registered", "caller_id", callerID, "executor_id", executorID, "doc", doc, "kind", kind)

	cp := *entry
	return &cp, nil
}

// next returns the next unused caller ID for a document. IDs start at 1.
func (r *Registry) next(doc domain.DocumentHandle) int {
	id := r.nextID[doc]
	if id < 1 {
		id = 1
	}
	for {
		if _, taken := r.entries[id]; !taken {
			return id
		}
		id++
	}
}

// Resolve returns the executor-visible ID for a caller ID. Unknown or retired
// IDs report domain.ErrShapeNotFound.
func (r *Registry) Resolve(callerID int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[callerID]
	if !ok || !entry.Alive {
		return "", fmt.Errorf("caller id %d: %w", callerID, domain.ErrShapeNotFound)
	}
	return entry.ExecutorID, nil
}

// Retire marks a caller ID dead. The ID stays reserved for the session.
func (r *Registry) Retire(callerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[callerID]
	if !ok || !entry.Alive {
		return fmt.Errorf("caller id %d: %w", callerID, domain.ErrShapeNotFound)
	}
	entry.Alive = false
	r.logger.Debug("registry: retired", "caller_id", callerID)
	return nil
}

// Reconcile aligns the registry with a full shape listing reported by the
// executor for one document. Reported shapes absent from the registry are
// adopted under fresh caller IDs; live entries the executor no longer reports
// are marked dead. The registry is reconciled, never replaced.
func (r *Registry) Reconcile(doc domain.DocumentHandle, reported []domain.ShapeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]domain.ShapeInfo, len(reported))
	for _, s := range reported {
		seen[s.ID] = s
	}

	known := make(map[string]bool)
	for _, id := range r.order {
		entry := r.entries[id]
		if entry.Doc != doc {
			continue
		}
		if !entry.Alive {
			continue
		}
		if _, ok := seen[entry.ExecutorID]; !ok {
			entry.Alive = false
			r.logger.Debug("registry: reconcile marked dead", "caller_id", entry.CallerID, "executor_id", entry.ExecutorID)
			continue
		}
		known[entry.ExecutorID] = true
	}

	for _, s := range reported {
		if known[s.ID] {
			continue
		}
		kind := domain.EntryShape
		if s.Connector {
			kind = domain.EntryConnector
		}
		callerID := r.next(doc)
		r.nextID[doc] = callerID + 1
		entry := &domain.RegistryEntry{
			CallerID:   callerID,
			ExecutorID: s.ID,
			Doc:        doc,
			Kind:       kind,
			Alive:      true,
		}
		r.entries[callerID] = entry
		r.order = append(r.order, callerID)
		r.logger.Debug("registry: reconcile adopted", "caller_id", callerID, "executor_id", s.ID)
	}
}

// Entries returns a copy of all entries in registration order.
func (r *Registry) Entries() []domain.RegistryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.RegistryEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// Snapshot produces a serializable deep copy for a RegistryStore.
func (r *Registry) Snapshot() *domain.RegistrySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := &domain.RegistrySnapshot{
		SessionID: r.sessionID,
		Entries:   make([]domain.RegistryEntry, 0, len(r.order)),
		NextID:    make(map[domain.DocumentHandle]int, len(r.nextID)),
	}
	for _, id := range r.order {
		snap.Entries = append(snap.Entries, *r.entries[id])
	}
	for doc, next := range r.nextID {
		snap.NextID[doc] = next
	}
	return snap
}
