package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Functions every runner under contract test must expose.
const (
	// EchoFunction takes one parameter named "value" and returns it unchanged.
	EchoFunction = "Contract_echo"
	// FailFunction takes no parameters and fails with a message containing FailMessage.
	FailFunction = "Contract_fail"
	FailMessage  = "contract failure"
)

// RunnerContractTest is a reusable test suite that verifies if an adapter complies with ports.Runner.
// It finalizes the runner when done.
func RunnerContractTest(t *testing.T, runner ports.Runner) {
	t.Helper()
	ctx := context.Background()

	t.Run("HasFunction", func(t *testing.T) {
		ok, err := runner.HasFunction(ctx, EchoFunction)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = runner.HasFunction(ctx, "Contract_missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("CallFunction", func(t *testing.T) {
		got, err := runner.CallFunction(ctx, EchoFunction, []any{"hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("CallFunction failure becomes an external frame", func(t *testing.T) {
		_, err := runner.CallFunction(ctx, FailFunction, nil)
		require.Error(t, err)

		var fe *ports.FunctionError
		require.True(t, errors.As(err, &fe), "leaf failures must be *ports.FunctionError, got %T", err)

		frame := runner.ExceptionToStackFrame(err)
		assert.Equal(t, diag.FrameExternal, frame.Kind)
		assert.Equal(t, FailFunction, frame.Function)
		assert.Contains(t, frame.Message, FailMessage)
		assert.NotEmpty(t, frame.Language)
	})

	t.Run("ValidateFunctions", func(t *testing.T) {
		criteria := []ports.FunctionCriteria{
			{FunctionName: EchoFunction, Parameters: []string{"value"}, QualifiedName: "Contract.echo"},
			{FunctionName: "Contract_missing", Parameters: []string{"a"}, QualifiedName: "Contract.missing"},
			{FunctionName: "Contract_optional", QualifiedName: "Contract.optional", Optional: true},
			{FunctionName: EchoFunction, Parameters: []string{"a", "b"}, QualifiedName: "Contract.echo2"},
		}
		errs, err := runner.ValidateFunctions(ctx, criteria)
		require.NoError(t, err)
		require.Len(t, errs, 2)

		var ve *ports.ValidationError
		require.True(t, errors.As(errs[0], &ve))
		assert.Equal(t, "Contract.missing", ve.QualifiedName)
		require.True(t, errors.As(errs[1], &ve))
		assert.Equal(t, "Contract.echo2", ve.QualifiedName)
	})

	t.Run("Finalize is idempotent", func(t *testing.T) {
		assert.NoError(t, runner.Finalize())
		assert.NoError(t, runner.Finalize())

		_, err := runner.CallFunction(ctx, EchoFunction, []any{"late"})
		assert.ErrorIs(t, err, ports.ErrRunnerClosed)
	})
}
