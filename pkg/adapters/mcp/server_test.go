package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/decomp"
	"github.com/aretw0/decomp/pkg/adapters/inproc"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/rules"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const familyRules = `
decompositions:
  - function: Family.f
    links:
      - sons -> Member.name
`

const familySubject = `
cont:
  - $type: Family
    sons:
      - {$type: Member, name: Abel}
      - {$type: Member, name: Cain}
`

func newServer(t *testing.T, leaves *inproc.Runner) *Server {
	t.Helper()
	eng, err := decomp.New(leaves)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return NewServer(eng)
}

func TestTransformTool(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		leaves := inproc.New().Register("Family_f", []string{"sons"}, func(_ context.Context, args []any) (any, error) {
			return len(args[0].([]any)), nil
		})
		s := newServer(t, leaves)

		res, err := s.handleTransform(ctx, mcp.CallToolRequest{}, TransformArgs{Rules: familyRules, Subject: familySubject})
		require.NoError(t, err)
		assert.True(t, res.OK)
		assert.Equal(t, 2, res.Result)
	})

	t.Run("leaf failure carries the trace", func(t *testing.T) {
		leaves := inproc.New().Register("Family_f", []string{"sons"}, func(context.Context, []any) (any, error) {
			return nil, errors.New("no heirs allowed")
		})
		s := newServer(t, leaves)

		res, err := s.handleTransform(ctx, mcp.CallToolRequest{}, TransformArgs{Rules: familyRules, Subject: familySubject})
		require.NoError(t, err)
		assert.False(t, res.OK)
		require.Len(t, res.Trace, 2)
		assert.Contains(t, res.Trace[0], "in decomposition Family.f")
		assert.Contains(t, res.Trace[1], "no heirs allowed")
	})

	t.Run("validation first", func(t *testing.T) {
		s := newServer(t, inproc.New())

		res, err := s.handleTransform(ctx, mcp.CallToolRequest{}, TransformArgs{Rules: familyRules, Subject: familySubject, Validate: true})
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.Equal(t, "function validation failed", res.Error)
		assert.Len(t, res.Details, 1)
	})

	t.Run("bad subject", func(t *testing.T) {
		s := newServer(t, inproc.New())

		res, err := s.handleTransform(ctx, mcp.CallToolRequest{}, TransformArgs{Rules: familyRules, Subject: "cont: [[1]]"})
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.NotEmpty(t, res.Error)
	})
}

func TestValidateTool(t *testing.T) {
	ctx := context.Background()
	leaves := inproc.New().Register("Family_f", []string{"children"}, func(context.Context, []any) (any, error) {
		return nil, nil
	})
	s := newServer(t, leaves)

	res, err := s.handleValidate(ctx, mcp.CallToolRequest{}, RulesArgs{Rules: familyRules})
	require.NoError(t, err)
	assert.False(t, res.OK)
	require.Len(t, res.Problems, 1)
	assert.Contains(t, res.Problems[0], "Family.f")

	_, err = s.handleValidate(ctx, mcp.CallToolRequest{}, RulesArgs{Rules: "decompositions: [{function: nope}]"})
	assert.Error(t, err)
}

func TestValidate_NonAggregate(t *testing.T) {
	s := NewServer(failingEngine{err: &ports.ConfigurationError{Reason: "worker is gone"}})
	res, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, RulesArgs{Rules: familyRules})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, []string{(&ports.ConfigurationError{Reason: "worker is gone"}).Error()}, res.Problems)
}

type failingEngine struct {
	Engine
	err error
}

func (f failingEngine) Validate(context.Context, *rules.RuleSet) error { return f.err }
