package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Therealkorris/MCP/internal/testutils"
	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_CompletedEnvelope(t *testing.T) {
	exec := &testutils.FakeExecutor{
		AddShapeFn: func(_ context.Context, _ domain.DocumentHandle, _ int, _ *domain.ShapeSpec) (*domain.ShapeResult, error) {
			return &domain.ShapeResult{ShapeID: "Sheet.1"}, nil
		},
	}
	dp := New(exec)

	res, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
		Kind:      domain.OpAddShape,
		Target:    domain.ActiveDocument,
		PageIndex: 1,
		Shape:     &domain.ShapeSpec{},
	})

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, res.Envelope.State)
	assert.NotEmpty(t, res.Envelope.CorrelationID)
	assert.Equal(t, 1, res.Envelope.Attempt)
	require.IsType(t, &domain.ShapeResult{}, res.Payload)
	assert.Equal(t, "Sheet.1", res.Payload.(*domain.ShapeResult).ShapeID)
}

func TestDispatch_MutationTimeoutCarriesGuidance(t *testing.T) {
	exec := &testutils.FakeExecutor{
		AddShapeFn: func(ctx context.Context, _ domain.DocumentHandle, _ int, _ *domain.ShapeSpec) (*domain.ShapeResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	dp := New(exec, WithTimeout(20*time.Millisecond), WithRetryReads(true))

	res, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
		Kind:   domain.OpAddShape,
		Target: domain.ActiveDocument,
		Shape:  &domain.ShapeSpec{},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRelayTimeout)
	assert.Contains(t, err.Error(), "verify with get_shapes_on_page")
	assert.Equal(t, StateTimedOut, res.Envelope.State)
	// One attempt only: mutations are never retried.
	assert.Len(t, exec.Calls(), 1)
}

func TestDispatch_ReadRetriedOnceWithFreshEnvelope(t *testing.T) {
	call := 0
	exec := &testutils.FakeExecutor{
		ShapesOnPageFn: func(ctx context.Context, _ domain.DocumentHandle, _ int) (*domain.PageShapes, error) {
			call++
			if call == 1 {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return &domain.PageShapes{}, nil
		},
	}
	dp := New(exec, WithTimeout(20*time.Millisecond), WithRetryReads(true))

	res, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
		Kind:   domain.OpGetShapesOnPage,
		Target: domain.ActiveDocument,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Envelope.Attempt)
	assert.Len(t, exec.Calls(), 2)
	assert.NotEmpty(t, res.Envelope.CorrelationID)
}

func TestDispatch_ReadNotRetriedWhenDisabled(t *testing.T) {
	exec := &testutils.FakeExecutor{
		ShapesOnPageFn: func(ctx context.Context, _ domain.DocumentHandle, _ int) (*domain.PageShapes, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	dp := New(exec, WithTimeout(20*time.Millisecond), WithRetryReads(false))

	_, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
		Kind:   domain.OpGetShapesOnPage,
		Target: domain.ActiveDocument,
	})

	assert.ErrorIs(t, err, domain.ErrRelayTimeout)
	assert.Len(t, exec.Calls(), 1)
}

func TestDispatch_ConnectionLostPassthrough(t *testing.T) {
	exec := &testutils.FakeExecutor{
		AnalyzeDiagramFn: func(_ context.Context, _ domain.DocumentHandle, _ domain.AnalysisType) (*domain.DiagramAnalysis, error) {
			return nil, domain.ErrRelayConnectionLost
		},
	}
	dp := New(exec, WithRetryReads(true))

	res, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
		Kind:   domain.OpAnalyzeDiagram,
		Target: domain.ActiveDocument,
	})

	assert.ErrorIs(t, err, domain.ErrRelayConnectionLost)
	assert.Equal(t, StateConnectionLost, res.Envelope.State)
	// Connection loss is not a timeout; no retry.
	assert.Len(t, exec.Calls(), 1)
}

func TestDispatch_ExecutorErrorPassthrough(t *testing.T) {
	exec := &testutils.FakeExecutor{
		SaveDiagramFn: func(_ context.Context, _ domain.DocumentHandle, _ string) (*domain.SaveResult, error) {
			return nil, &domain.ExecutorError{Op: domain.OpSaveDiagram, Message: "document is read-only"}
		},
	}
	dp := New(exec)

	res, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
		Kind:   domain.OpSaveDiagram,
		Target: domain.ActiveDocument,
	})

	var ee *domain.ExecutorError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "document is read-only", ee.Message)
	assert.Equal(t, StateFailed, res.Envelope.State)
}

func TestDispatch_MutationSurvivesCallerCancel(t *testing.T) {
	done := make(chan struct{})
	exec := &testutils.FakeExecutor{
		AddShapeFn: func(ctx context.Context, _ domain.DocumentHandle, _ int, _ *domain.ShapeSpec) (*domain.ShapeResult, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-done:
				return &domain.ShapeResult{ShapeID: "Sheet.2"}, nil
			}
		},
	}
	dp := New(exec, WithTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		cancel()
		time.Sleep(10 * time.Millisecond)
		close(done)
	}()

	res, err := dp.Dispatch(ctx, &domain.CanonicalOperation{
		Kind:   domain.OpAddShape,
		Target: domain.ActiveDocument,
		Shape:  &domain.ShapeSpec{},
	})

	// Caller cancellation does not abort the in-flight mutation.
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, res.Envelope.State)
}

func TestDispatch_SerializedPerDocument(t *testing.T) {
	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0
	exec := &testutils.FakeExecutor{
		AddShapeFn: func(_ context.Context, _ domain.DocumentHandle, _ int, _ *domain.ShapeSpec) (*domain.ShapeResult, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
			return &domain.ShapeResult{}, nil
		},
	}
	dp := New(exec)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
				Kind:   domain.OpAddShape,
				Target: domain.NewHandle("shared.vsdx"),
				Shape:  &domain.ShapeSpec{},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
}

func TestDispatch_DistinctDocumentsProceedConcurrently(t *testing.T) {
	entered := make(chan domain.DocumentHandle, 2)
	release := make(chan struct{})
	exec := &testutils.FakeExecutor{
		AddShapeFn: func(_ context.Context, doc domain.DocumentHandle, _ int, _ *domain.ShapeSpec) (*domain.ShapeResult, error) {
			entered <- doc
			<-release
			return &domain.ShapeResult{}, nil
		},
	}
	dp := New(exec)

	var wg sync.WaitGroup
	for _, doc := range []string{"one.vsdx", "two.vsdx"} {
		wg.Add(1)
		go func(doc string) {
			defer wg.Done()
			_, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
				Kind:   domain.OpAddShape,
				Target: domain.NewHandle(doc),
				Shape:  &domain.ShapeSpec{},
			})
			assert.NoError(t, err)
		}(doc)
	}

	// Both dispatches must be in flight at once before either is released.
	seen := map[domain.DocumentHandle]bool{}
	for i := 0; i < 2; i++ {
		select {
		case doc := <-entered:
			seen[doc] = true
		case <-time.After(time.Second):
			t.Fatal("second dispatch blocked behind an unrelated document")
		}
	}
	assert.Len(t, seen, 2)

	close(release)
	wg.Wait()
}

func TestDispatch_UnknownKindRejected(t *testing.T) {
	dp := New(&testutils.FakeExecutor{})

	_, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
		Kind:   domain.OperationKind("rotate_shape"),
		Target: domain.ActiveDocument,
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
}

func TestDispatch_MetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	exec := &testutils.FakeExecutor{
		ListStencilsFn: func(_ context.Context) ([]domain.StencilInfo, error) {
			return nil, nil
		},
	}
	dp := New(exec, WithMetrics(NewMetrics(reg)))

	_, err := dp.Dispatch(context.Background(), &domain.CanonicalOperation{
		Kind:   domain.OpListStencils,
		Target: domain.ActiveDocument,
	})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "relay_dispatches_total")
	assert.Contains(t, names, "relay_dispatch_duration_seconds")
}
