package client

import (
	"github.com/pkg/errors"

	"github.com/arbor-ml/arbor/internal/store"
	"github.com/arbor-ml/arbor/pkg/pipeline"
)

// LocalRegistry is an in-memory registry of model metadata and published
// pipeline records, keyed by model URI and DOI respectively. It implements
// pipeline.ModelRegistry and stands in for the remote registry during
// development and tests.
type LocalRegistry struct {
	models    store.Store[string, pipeline.ModelMetadata]
	pipelines store.Store[string, *pipeline.RegisteredPipeline]
}

// NewLocalRegistry creates an empty registry.
func NewLocalRegistry() *LocalRegistry {
	return &LocalRegistry{
		models:    store.NewMemoryStore[string, pipeline.ModelMetadata](),
		pipelines: store.NewMemoryStore[string, *pipeline.RegisteredPipeline](),
	}
}

// RegisterModel records a model's metadata under its URI.
func (r *LocalRegistry) RegisterModel(meta pipeline.ModelMetadata) error {
	if meta.URI == "" {
		return errors.New("model metadata must carry a URI")
	}
	r.models.Put(meta.URI, meta)

	return nil
}

// Lookup resolves a model URI. Implements pipeline.ModelRegistry.
func (r *LocalRegistry) Lookup(uri string) (pipeline.ModelMetadata, bool) {
	return r.models.Get(uri)
}

// PutPipeline caches a registered pipeline record under its DOI.
func (r *LocalRegistry) PutPipeline(rp *pipeline.RegisteredPipeline) error {
	if rp.DOI == "" {
		return errors.New("registered pipeline must carry a DOI")
	}
	r.pipelines.Put(rp.DOI, rp)

	return nil
}

// GetPipeline returns the cached record for a DOI.
func (r *LocalRegistry) GetPipeline(doi string) (*pipeline.RegisteredPipeline, bool) {
	return r.pipelines.Get(doi)
}

// DOIs lists the DOIs of all cached pipeline records, in no particular
// order.
func (r *LocalRegistry) DOIs() []string {
	return r.pipelines.Keys()
}

var _ pipeline.ModelRegistry = (*LocalRegistry)(nil)
