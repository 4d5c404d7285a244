// Package relay dispatches canonical operations across the isolation boundary
// to the privileged executor, enforcing deadlines, per-document serialization
// and correlation of responses to requests.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/Therealkorris/MCP/pkg/ports"
)

// DefaultTimeout bounds one dispatch round-trip.
const DefaultTimeout = 30 * time.Second

// mutationGuidance is appended to mutation timeout errors. A timed-out
// mutation may still have been applied on the host; the caller has to look
// before leaping again.
const mutationGuidance = "operation may have been applied; verify with get_shapes_on_page before retrying"

// Result pairs a dispatch outcome with its envelope, so callers can log the
// correlation ID and attempt count alongside the payload.
type Result struct {
	Envelope *Envelope
	Payload  any
}

// Dispatcher relays canonical operations to an executor. Operations targeting
// the same document handle are serialized; distinct handles proceed
// concurrently.
type Dispatcher struct {
	exec       ports.Executor
	timeout    time.Duration
	retryReads bool
	distLock   ports.DistributedLocker
	metrics    *Metrics
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[domain.DocumentHandle]*sync.Mutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets the per-dispatch deadline.
func WithTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// WithRetryReads enables one automatic retry of read-only operations after a
// timeout. Mutations are never retried.
func WithRetryReads(enabled bool) Option {
	return func(dp *Dispatcher) { dp.retryReads = enabled }
}

// WithDistributedLocker extends per-document serialization across bridge
// replicas sharing one host process.
func WithDistributedLocker(l ports.DistributedLocker) Option {
	return func(dp *Dispatcher) { dp.distLock = l }
}

// WithMetrics attaches dispatch instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(dp *Dispatcher) { dp.metrics = m }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(dp *Dispatcher) { dp.logger = logger }
}

// New creates a Dispatcher for the given executor.
func New(exec ports.Executor, opts ...Option) *Dispatcher {
	dp := &Dispatcher{
		exec:    exec,
		timeout: DefaultTimeout,
		locks:   make(map[domain.DocumentHandle]*sync.Mutex),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(dp)
	}
	return dp
}

// Dispatch relays one canonical operation and returns the executor's payload.
// Read-only operations run under the caller's context; mutations are detached
// from caller cancellation so a client disconnect mid-flight cannot leave the
// document in an unknown state from our side.
func (dp *Dispatcher) Dispatch(ctx context.Context, op *domain.CanonicalOperation) (*Result, error) {
	lock := dp.lockFor(op.Target)
	lock.Lock()
	defer lock.Unlock()

	if dp.distLock != nil {
		unlock, err := dp.distLock.Lock(ctx, string(op.Target), dp.timeout+5*time.Second)
		if err != nil {
			return nil, fmt.Errorf("document lock: %w", err)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				dp.logger.Warn("document unlock failed", "target", op.Target, "err", uerr)
			}
		}()
	}

	res, err := dp.attempt(ctx, op, 1)
	if err != nil && dp.retryReads && op.Kind.ReadOnly() && errors.Is(err, domain.ErrRelayTimeout) {
		dp.logger.Info("retrying read after timeout",
			"kind", op.Kind, "target", op.Target, "correlation_id", res.Envelope.CorrelationID)
		return dp.attempt(ctx, op, 2)
	}
	return res, err
}

// attempt runs one dispatch under a fresh envelope.
func (dp *Dispatcher) attempt(ctx context.Context, op *domain.CanonicalOperation, n int) (*Result, error) {
	env := newEnvelope(n, time.Now(), dp.timeout)

	opCtx := ctx
	if !op.Kind.ReadOnly() {
		opCtx = context.WithoutCancel(ctx)
	}
	opCtx, cancel := context.WithDeadline(opCtx, env.Deadline)
	defer cancel()

	env.State = StateSent
	payload, err := dp.call(opCtx, op)
	elapsed := time.Since(env.StartedAt)

	switch {
	case err == nil:
		env.State = StateCompleted
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrRelayTimeout):
		env.State = StateTimedOut
		if op.Kind.ReadOnly() {
			err = fmt.Errorf("%s after %s: %w", op.Kind, dp.timeout, domain.ErrRelayTimeout)
		} else {
			err = fmt.Errorf("%s after %s: %s: %w", op.Kind, dp.timeout, mutationGuidance, domain.ErrRelayTimeout)
		}
	case errors.Is(err, domain.ErrRelayConnectionLost):
		env.State = StateConnectionLost
	default:
		env.State = StateFailed
	}

	dp.metrics.observe(string(op.Kind), env.State, elapsed.Seconds())
	dp.logger.Debug("dispatch finished",
		"kind", op.Kind, "target", op.Target, "state", env.State,
		"correlation_id", env.CorrelationID, "attempt", env.Attempt, "elapsed", elapsed)

	return &Result{Envelope: env, Payload: payload}, err
}

// call maps the operation kind onto the executor verb.
func (dp *Dispatcher) call(ctx context.Context, op *domain.CanonicalOperation) (any, error) {
	switch op.Kind {
	case domain.OpAddShape:
		return dp.exec.AddShape(ctx, op.Target, op.PageIndex, op.Shape)
	case domain.OpUpdateShape:
		return dp.exec.UpdateShape(ctx, op.Target, op.PageIndex, op.ShapeID, op.Shape)
	case domain.OpDeleteShape:
		return dp.exec.DeleteShape(ctx, op.Target, op.PageIndex, op.ShapeID)
	case domain.OpAddConnector:
		return dp.exec.AddConnector(ctx, op.Target, op.PageIndex, op.Connector)
	case domain.OpDeleteConnection:
		return dp.exec.DeleteConnection(ctx, op.Target, op.PageIndex, op.ShapeID)
	case domain.OpAnalyzeDiagram:
		return dp.exec.AnalyzeDiagram(ctx, op.Target, op.Analysis)
	case domain.OpVerifyConnections:
		return dp.exec.VerifyConnections(ctx, op.Target, op.ShapeIDs)
	case domain.OpCreateDiagram:
		return dp.exec.CreateDiagram(ctx, op.Create)
	case domain.OpSaveDiagram:
		return dp.exec.SaveDiagram(ctx, op.Target, op.SavePath)
	case domain.OpExportDiagram:
		return dp.exec.ExportDiagram(ctx, op.Target, op.Export)
	case domain.OpListStencils:
		return dp.exec.ListStencils(ctx)
	case domain.OpListMasters:
		return dp.exec.ListMasters(ctx)
	case domain.OpGetActiveDocument:
		return dp.exec.ActiveDocument(ctx)
	case domain.OpGetShapesOnPage:
		return dp.exec.ShapesOnPage(ctx, op.Target, op.PageIndex)
	case domain.OpImageToDiagram:
		return dp.exec.ImageToDiagram(ctx, op.Image)
	default:
		return nil, fmt.Errorf("%q: %w", op.Kind, domain.ErrUnsupportedOperation)
	}
}

func (dp *Dispatcher) lockFor(handle domain.DocumentHandle) *sync.Mutex {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	lock, ok := dp.locks[handle]
	if !ok {
		lock = &sync.Mutex{}
		dp.locks[handle] = lock
	}
	return lock
}
