package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/decomp/pkg/adapters/inproc"
	"github.com/aretw0/decomp/pkg/observability"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionRunner struct {
	*inproc.Runner
	ended bool
}

func (s *sessionRunner) EndSession() { s.ended = true }

func TestWrapRunner(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	inner := &sessionRunner{Runner: inproc.New().
		Register("A_ok", nil, func(context.Context, []any) (any, error) { return 1, nil }).
		Register("A_bad", nil, func(context.Context, []any) (any, error) { return nil, errors.New("bad") })}
	r := m.WrapRunner(inner)

	_, err := r.CallFunction(context.Background(), "A_ok", nil)
	require.NoError(t, err)
	_, err = r.CallFunction(context.Background(), "A_ok", nil)
	require.NoError(t, err)
	_, err = r.CallFunction(context.Background(), "A_bad", nil)
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calls.WithLabelValues("A_ok", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("A_bad", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.CallDuration))

	s, ok := r.(ports.SessionScoped)
	require.True(t, ok)
	s.EndSession()
	assert.True(t, inner.ended)
}

func TestHooks(t *testing.T) {
	m := observability.NewMetrics(nil)
	var seen []string
	hooks := m.Hooks().Merge(observability.LifecycleHooks{
		OnDecompositionLeave: func(_ context.Context, e *observability.DecompositionEvent) {
			seen = append(seen, e.Function)
		},
	})

	ctx := context.Background()
	hooks.OnDecompositionEnter(ctx, &observability.DecompositionEvent{Function: "Family.f"})
	hooks.OnDecompositionLeave(ctx, &observability.DecompositionEvent{Function: "Family.f", IsError: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("Family.f")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationErrors.WithLabelValues("Family.f")))
	assert.Equal(t, []string{"Family.f"}, seen)
	assert.Nil(t, hooks.OnFunctionCall)
}
