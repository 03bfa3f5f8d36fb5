package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// ModelMetadata describes one externally registered model.
type ModelMetadata struct {
	URI               string   `json:"model_uri"`
	Name              string   `json:"model_name"`
	Flavor            string   `json:"flavor"`
	Version           string   `json:"version"`
	PipDependencies   []string `json:"pip_dependencies,omitempty"`
	CondaDependencies []string `json:"conda_dependencies,omitempty"`
}

// ModelRegistry resolves an opaque model reference to its metadata,
// including the dependency list declared when the model was registered.
// Implementations must be pure lookups with no side effects.
type ModelRegistry interface {
	Lookup(uri string) (ModelMetadata, bool)
}

// Executor runs a registered function against a named compute endpoint.
// Implementations wrap whatever remote execution service the deployment
// uses; this package only threads arguments through.
type Executor interface {
	Execute(ctx context.Context, functionID, endpoint uuid.UUID, args []any, kwargs map[string]any) (any, error)
}
