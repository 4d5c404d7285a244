package visio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/loam"

	loamAdapter "github.com/Therealkorris/MCP/pkg/adapters/loam"
	"github.com/Therealkorris/MCP/pkg/adapters/memory"
	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/Therealkorris/MCP/pkg/ports"
	"github.com/Therealkorris/MCP/pkg/relay"
	"github.com/Therealkorris/MCP/pkg/resolver"
	"github.com/Therealkorris/MCP/pkg/session"
	"github.com/Therealkorris/MCP/pkg/translator"
)

// Bridge coordinates sessions, resolution and dispatch. Safe for concurrent
// use; per-document serialization happens inside the dispatcher.
type Bridge struct {
	exec       ports.Executor
	catalog    ports.StencilCatalog
	store      ports.RegistryStore
	locker     ports.DistributedLocker
	metrics    *relay.Metrics
	resolver   *resolver.Resolver
	dispatcher *relay.Dispatcher
	logger     *slog.Logger

	timeout     time.Duration
	retryReads  bool
	searchPaths []string
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithExecutor sets the executor the bridge dispatches to. Required.
func WithExecutor(exec ports.Executor) Option {
	return func(b *Bridge) { b.exec = exec }
}

// WithCatalog sets the stencil catalog used for fallback ranking. Defaults to
// the built-in catalog.
func WithCatalog(c ports.StencilCatalog) Option {
	return func(b *Bridge) { b.catalog = c }
}

// WithCatalogDir builds a catalog from a Loam repository of stencil
// documentation at the given path.
func WithCatalogDir(path string) Option {
	return func(b *Bridge) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return
		}
		typed := loam.NewTypedRepository[loamAdapter.StencilMetadata](repo)
		b.catalog = loamAdapter.New(typed)
	}
}

// WithRegistryStore persists session registries across restarts.
func WithRegistryStore(store ports.RegistryStore) Option {
	return func(b *Bridge) { b.store = store }
}

// WithDistributedLocker serializes document access across bridge replicas.
func WithDistributedLocker(l ports.DistributedLocker) Option {
	return func(b *Bridge) { b.locker = l }
}

// WithMetrics attaches relay instrumentation.
func WithMetrics(m *relay.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// WithTimeout bounds each dispatch round-trip.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.timeout = d }
}

// WithRetryReads enables one automatic retry of timed-out reads.
func WithRetryReads(enabled bool) Option {
	return func(b *Bridge) { b.retryReads = enabled }
}

// WithSearchPaths adds filesystem roots scanned for stencil files.
func WithSearchPaths(paths []string) Option {
	return func(b *Bridge) { b.searchPaths = paths }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// New creates a Bridge. An executor is required; everything else defaults.
func New(opts ...Option) (*Bridge, error) {
	b := &Bridge{
		timeout:    relay.DefaultTimeout,
		retryReads: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.exec == nil {
		return nil, fmt.Errorf("an executor is required")
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if b.catalog == nil {
		b.catalog = memory.NewCatalog()
	}

	b.resolver = resolver.New(
		resolver.WithCatalog(b.catalog),
		resolver.WithSearchPaths(b.searchPaths),
		resolver.WithLogger(b.logger),
	)

	dispatchOpts := []relay.Option{
		relay.WithTimeout(b.timeout),
		relay.WithRetryReads(b.retryReads),
		relay.WithLogger(b.logger),
	}
	if b.locker != nil {
		dispatchOpts = append(dispatchOpts, relay.WithDistributedLocker(b.locker))
	}
	if b.metrics != nil {
		dispatchOpts = append(dispatchOpts, relay.WithMetrics(b.metrics))
	}
	b.dispatcher = relay.New(b.exec, dispatchOpts...)

	return b, nil
}

// NewSession opens a session on this bridge.
func (b *Bridge) NewSession() *session.Session {
	opts := []session.Option{session.WithLogger(b.logger)}
	if b.store != nil {
		opts = append(opts, session.WithStore(b.store))
	}
	return session.New(opts...)
}

// ResumeSession reopens a persisted session by ID. Only available when a
// registry store is configured.
func (b *Bridge) ResumeSession(ctx context.Context, id string) (*session.Session, error) {
	if b.store == nil {
		return nil, domain.ErrRegistryNotFound
	}
	return session.Resume(ctx, id, b.store, session.WithLogger(b.logger))
}

// Health verifies the relay link.
func (b *Bridge) Health(ctx context.Context) error {
	return b.exec.Health(ctx)
}

// Execute runs one raw tool request through the full pipeline: decode,
// translate, resolve fallbacks, dispatch, and update the session registry
// from the outcome.
func (b *Bridge) Execute(ctx context.Context, ses *session.Session, kind domain.OperationKind, raw map[string]any) (any, error) {
	req, err := translator.Decode(raw)
	if err != nil {
		return nil, err
	}
	return b.run(ctx, ses, kind, req)
}

// ExecuteModify routes the combined modify surface, where the concrete
// operation arrives as a request field.
func (b *Bridge) ExecuteModify(ctx context.Context, ses *session.Session, raw map[string]any) (any, error) {
	req, err := translator.Decode(raw)
	if err != nil {
		return nil, err
	}
	if ses.Closed() {
		return nil, domain.ErrSessionClosed
	}
	tr := translator.New(ses)
	op, err := tr.TranslateModify(req)
	if err != nil {
		return nil, err
	}
	return b.dispatch(ctx, ses, op)
}

func (b *Bridge) run(ctx context.Context, ses *session.Session, kind domain.OperationKind, req *translator.Request) (any, error) {
	if ses.Closed() {
		return nil, domain.ErrSessionClosed
	}
	tr := translator.New(ses)
	op, err := tr.Translate(kind, req)
	if err != nil {
		return nil, err
	}
	return b.dispatch(ctx, ses, op)
}

func (b *Bridge) dispatch(ctx context.Context, ses *session.Session, op *domain.CanonicalOperation) (any, error) {
	b.resolveReferences(ctx, ses, op)

	res, err := b.dispatcher.Dispatch(ctx, op)
	if err != nil {
		// Timed-out or failed mutations leave the registry untouched; the
		// next reconciliation squares it with reality.
		return nil, err
	}

	if ses.Closed() {
		// The session went away mid-dispatch. The mutation happened on the
		// host, but there is no registry left to record it in.
		b.logger.Warn("discarding result for closed session",
			"session_id", ses.ID(), "kind", op.Kind,
			"correlation_id", res.Envelope.CorrelationID)
		return nil, domain.ErrSessionClosed
	}

	b.updateRegistry(ctx, ses, op, res.Payload)
	return res.Payload, nil
}

// resolveReferences fills in the fallback-resolved template, stencil and
// master names before dispatch.
func (b *Bridge) resolveReferences(ctx context.Context, ses *session.Session, op *domain.CanonicalOperation) {
	switch {
	case op.Shape != nil && op.Kind == domain.OpAddShape:
		stencil := b.resolver.ResolveStencil(ctx, op.Shape.Master.Stencil.Requested, ses.OpenStencils())
		master := b.resolver.ResolveMaster(ctx, op.Shape.Master.Requested, stencil)
		op.Shape.Master = master
		if acc := master.Trail.Accepted(); acc != nil && acc.Source != domain.CandidateExact {
			b.logger.Info("master resolved through fallback",
				"requested", master.Requested, "resolved", master.Resolved, "source", acc.Source)
		}
	case op.Create != nil:
		op.Create.Template = b.resolver.ResolveTemplate(ctx, op.Create.Template.Requested, nil)
	}
}

// updateRegistry applies a successful dispatch outcome to the session.
func (b *Bridge) updateRegistry(ctx context.Context, ses *session.Session, op *domain.CanonicalOperation, payload any) {
	reg := ses.Registry()
	changed := false

	switch op.Kind {
	case domain.OpAddShape:
		if sr, ok := payload.(*domain.ShapeResult); ok && sr.ShapeID != "" {
			if _, err := reg.Register(0, sr.ShapeID, op.Target, domain.EntryShape); err != nil {
				b.logger.Warn("failed to register shape", "executor_id", sr.ShapeID, "err", err)
			} else {
				changed = true
			}
		}
	case domain.OpAddConnector:
		if cr, ok := payload.(*domain.ConnectorResult); ok && cr.ConnectorID != "" {
			if _, err := reg.Register(0, cr.ConnectorID, op.Target, domain.EntryConnector); err != nil {
				b.logger.Warn("failed to register connector", "executor_id", cr.ConnectorID, "err", err)
			} else {
				changed = true
			}
		}
	case domain.OpDeleteShape, domain.OpDeleteConnection:
		if op.CallerID != 0 {
			if err := reg.Retire(op.CallerID); err != nil {
				b.logger.Warn("failed to retire shape", "caller_id", op.CallerID, "err", err)
			} else {
				changed = true
			}
		}
	case domain.OpGetShapesOnPage:
		if ps, ok := payload.(*domain.PageShapes); ok {
			reg.Reconcile(op.Target, ps.Shapes)
			changed = true
		}
	case domain.OpListStencils:
		if stencils, ok := payload.([]domain.StencilInfo); ok {
			open := make([]string, 0, len(stencils))
			for _, s := range stencils {
				if s.Open {
					open = append(open, s.Name)
				}
			}
			ses.CacheStencils(open)
		}
	}

	if changed {
		ses.Checkpoint(ctx)
	}
}

// CallerID extracts the caller-visible ID freshly assigned for an add
// operation's payload, for transports that report it back to the client.
func (b *Bridge) CallerID(ses *session.Session, payload any) (int, bool) {
	var executorID string
	switch p := payload.(type) {
	case *domain.ShapeResult:
		executorID = p.ShapeID
	case *domain.ConnectorResult:
		executorID = p.ConnectorID
	default:
		return 0, false
	}
	for _, e := range ses.Registry().Entries() {
		if e.ExecutorID == executorID && e.Alive {
			return e.CallerID, true
		}
	}
	return 0, false
}

// ListStencils merges the host's stencil listing with the local catalog and
// search-path scan. Host unavailability degrades to local knowledge.
func (b *Bridge) ListStencils(ctx context.Context, ses *session.Session) ([]domain.StencilInfo, error) {
	scan, err := b.resolver.ListStencils(ctx)
	if err != nil {
		return nil, err
	}

	hostStencils, err := b.Execute(ctx, ses, domain.OpListStencils, map[string]any{})
	if err != nil {
		b.logger.Warn("host stencil listing unavailable, using local catalog", "err", err)
		return scan.Stencils, nil
	}

	merged := scan.Stencils
	if listed, ok := hostStencils.([]domain.StencilInfo); ok {
		seen := make(map[string]bool, len(merged))
		for _, s := range merged {
			seen[s.Name] = true
		}
		for _, s := range listed {
			if !seen[s.Name] {
				merged = append(merged, s)
			}
		}
	}
	return merged, nil
}
