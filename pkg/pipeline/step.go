package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/arbor-ml/arbor/pkg/compose"
)

// Step is one typed, composable unit of computation. Its signature is built
// once, when the step is created, and never recomputed; a Step is treated
// as immutable after creation and may safely belong to several pipelines.
type Step struct {
	name         string
	fn           compose.Func
	sig          compose.Signature
	description  string
	authors      []string
	contributors []string
	pipDeps      []string
	condaDeps    []string
	pyVersion    string
	modelURIs    []string
}

// NewStep creates a frozen step from a callable and its signature
// declaration, e.g.
//
//	pipeline.NewStep("embed", "(text: str) -> Tuple[str, list]", embedFn)
//
// The declaration must annotate every parameter and the return value;
// otherwise creation fails with *compose.UntypedSignatureError and the step
// does not exist.
func NewStep(name, declaration string, fn compose.Func, opts ...StepOption) (*Step, error) {
	sig, err := compose.ParseSignature(declaration)
	if err != nil {
		return nil, errors.Wrapf(err, "step %s", name)
	}

	return NewStepWithSignature(name, sig, fn, opts...)
}

// NewStepWithSignature creates a frozen step from an already-built
// signature.
func NewStepWithSignature(name string, sig compose.Signature, fn compose.Func, opts ...StepOption) (*Step, error) {
	if name == "" {
		return nil, ErrStepNameMustBeSet
	}
	if fn == nil {
		return nil, ErrStepFuncMustBeSet
	}

	step := &Step{
		name: name,
		fn:   fn,
		sig:  sig,
	}
	for _, opt := range opts {
		if err := opt(step); err != nil {
			return nil, errors.Wrapf(err, "unable to apply option to step %s", name)
		}
	}

	return step, nil
}

// Name returns the step name.
func (s *Step) Name() string { return s.name }

// Signature returns the step's frozen signature.
func (s *Step) Signature() compose.Signature { return s.sig }

// Description returns the human-readable step description.
func (s *Step) Description() string { return s.description }

// Authors returns the step's authors.
func (s *Step) Authors() []string { return copyStrings(s.authors) }

// Contributors returns the step's acknowledged contributors.
func (s *Step) Contributors() []string { return copyStrings(s.contributors) }

// PipDependencies returns the step's declared or inferred pip requirements.
func (s *Step) PipDependencies() []string { return copyStrings(s.pipDeps) }

// CondaDependencies returns the step's declared conda requirements.
func (s *Step) CondaDependencies() []string { return copyStrings(s.condaDeps) }

// PythonVersion returns the interpreter version the step hints at, or "".
func (s *Step) PythonVersion() string { return s.pyVersion }

// ModelURIs returns the external model identifiers the step references.
func (s *Step) ModelURIs() []string { return copyStrings(s.modelURIs) }

// Call invokes the step's underlying callable directly.
func (s *Step) Call(ctx context.Context, args ...any) (any, error) {
	return s.fn(ctx, args...)
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)

	return dst
}
