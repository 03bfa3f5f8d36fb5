package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-ml/arbor/pkg/compose"
	"github.com/arbor-ml/arbor/pkg/pipeline"
)

func echoFn(ctx context.Context, args ...any) (any, error) {
	return args[0], nil
}

func TestNewStep(t *testing.T) {
	t.Parallel()

	step, err := pipeline.NewStep("echo", "(x: int) -> int", echoFn,
		pipeline.StepAuthors("Mendel, Gregor"),
		pipeline.StepDescription("returns its input"),
	)
	require.NoError(t, err)

	assert.Equal(t, "echo", step.Name())
	assert.Equal(t, "(x: int) -> int", step.Signature().String())
	assert.Equal(t, []string{"Mendel, Gregor"}, step.Authors())
	assert.Equal(t, "returns its input", step.Description())

	got, err := step.Call(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestNewStepRejectsUntyped(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"missing param type": "(x) -> int",
		"any param":          "(x: Any) -> int",
		"any return":         "(x: int) -> any",
		"missing return":     "(x: int)",
	}

	for name, decl := range tcs {
		decl := decl
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := pipeline.NewStep("bad", decl, echoFn)
			require.Error(t, err)
			var untyped *compose.UntypedSignatureError
			assert.ErrorAs(t, err, &untyped)
		})
	}
}

func TestNewStepValidation(t *testing.T) {
	t.Parallel()

	_, err := pipeline.NewStep("", "(x: int) -> int", echoFn)
	assert.ErrorIs(t, err, pipeline.ErrStepNameMustBeSet)

	_, err = pipeline.NewStep("echo", "(x: int) -> int", nil)
	assert.ErrorIs(t, err, pipeline.ErrStepFuncMustBeSet)

	_, err = pipeline.NewStep("echo", "(x: int) -> int", echoFn,
		pipeline.StepPipDependencies("=== not a requirement"))
	assert.Error(t, err)
}

type fakeRegistry map[string]pipeline.ModelMetadata

func (r fakeRegistry) Lookup(uri string) (pipeline.ModelMetadata, bool) {
	meta, ok := r[uri]

	return meta, ok
}

func TestStepModelFoldsDependencies(t *testing.T) {
	t.Parallel()

	registry := fakeRegistry{
		"user@example.com-soup-classifier/1": {
			URI:               "user@example.com-soup-classifier/1",
			Flavor:            "sklearn",
			PipDependencies:   []string{"scikit-learn>=0.24.2"},
			CondaDependencies: []string{"libblas"},
		},
	}

	step, err := pipeline.NewStep("classify", "(x: list) -> str", echoFn,
		pipeline.StepModel("user@example.com-soup-classifier/1", registry))
	require.NoError(t, err)

	assert.Equal(t, []string{"user@example.com-soup-classifier/1"}, step.ModelURIs())
	assert.Equal(t, []string{"scikit-learn>=0.24.2"}, step.PipDependencies())
	assert.Equal(t, []string{"libblas"}, step.CondaDependencies())
}

func TestStepModelUnresolvedKeepsReference(t *testing.T) {
	t.Parallel()

	step, err := pipeline.NewStep("classify", "(x: list) -> str", echoFn,
		pipeline.StepModel("nobody@example.com-missing/1", fakeRegistry{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"nobody@example.com-missing/1"}, step.ModelURIs())
	assert.Empty(t, step.PipDependencies())
}

func TestStepImmutableAccessors(t *testing.T) {
	t.Parallel()

	step, err := pipeline.NewStep("echo", "(x: int) -> int", echoFn,
		pipeline.StepAuthors("Sister Constance"))
	require.NoError(t, err)

	authors := step.Authors()
	authors[0] = "mutated"
	assert.Equal(t, []string{"Sister Constance"}, step.Authors())
}
