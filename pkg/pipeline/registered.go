package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// StepRecord is the serializable metadata of one step of a registered
// pipeline: signatures and bookkeeping, not the callable itself.
type StepRecord struct {
	Name              string   `json:"name"`
	Signature         string   `json:"signature"`
	Description       string   `json:"description,omitempty"`
	Authors           []string `json:"authors,omitempty"`
	Contributors      []string `json:"contributors,omitempty"`
	PipDependencies   []string `json:"pip_dependencies,omitempty"`
	CondaDependencies []string `json:"conda_dependencies,omitempty"`
	PythonVersion     string   `json:"python_version,omitempty"`
	ModelURIs         []string `json:"model_uris,omitempty"`
}

// RegisteredPipeline is the completed, published record of a pipeline. It
// is described entirely by JSON: it replaces the steps' callables with
// their metadata and carries the identifier of the remotely registered
// composite function instead. Execution happens against a remote compute
// endpoint through the injected Executor.
type RegisteredPipeline struct {
	DOI          string             `json:"doi"`
	FuncID       uuid.UUID          `json:"func_uuid"`
	Title        string             `json:"title"`
	ShortName    string             `json:"short_name,omitempty"`
	Authors      []string           `json:"authors"`
	Contributors []string           `json:"contributors,omitempty"`
	Steps        []StepRecord       `json:"steps"`
	Description  string             `json:"description,omitempty"`
	Version      string             `json:"version"`
	Year         string             `json:"year"`
	Tags         []string           `json:"tags,omitempty"`
	Manifest     DependencyManifest `json:"dependency_manifest"`
	ModelURIs    []string           `json:"model_uris,omitempty"`
	EnvVars      map[string]string  `json:"-"`
}

// Register builds the registered record of a pipeline, binding it to the
// identifier the remote function registration returned. The pipeline must
// already carry a DOI.
func Register(p *Pipeline, funcID uuid.UUID) (*RegisteredPipeline, error) {
	if p.doi == "" {
		return nil, errors.New("pipeline has no DOI; mint a draft DOI before registering")
	}

	records := make([]StepRecord, len(p.steps))
	var modelURIs []string
	for i, step := range p.steps {
		records[i] = StepRecord{
			Name:              step.name,
			Signature:         step.sig.String(),
			Description:       step.description,
			Authors:           step.Authors(),
			Contributors:      step.Contributors(),
			PipDependencies:   step.PipDependencies(),
			CondaDependencies: step.CondaDependencies(),
			PythonVersion:     step.pyVersion,
			ModelURIs:         step.ModelURIs(),
		}
		modelURIs = append(modelURIs, step.modelURIs...)
	}

	return &RegisteredPipeline{
		DOI:          p.doi,
		FuncID:       funcID,
		Title:        p.title,
		ShortName:    p.shortName,
		Authors:      p.Authors(),
		Contributors: p.Contributors(),
		Steps:        records,
		Description:  p.description,
		Version:      p.version,
		Year:         p.year,
		Tags:         p.Tags(),
		Manifest:     p.Manifest(),
		ModelURIs:    dedupeSorted(modelURIs),
	}, nil
}

// Call executes the registered composite function remotely. An endpoint
// must be specified; the executor receives the positional and keyword
// arguments untouched.
func (rp *RegisteredPipeline) Call(ctx context.Context, exec Executor, endpoint uuid.UUID, args []any, kwargs map[string]any) (any, error) {
	if endpoint == uuid.Nil {
		return nil, ErrEndpointMustBeSet
	}

	if len(rp.EnvVars) > 0 {
		merged := make(map[string]any, len(kwargs)+1)
		for k, v := range kwargs {
			merged[k] = v
		}
		merged["_env_vars"] = rp.EnvVars
		kwargs = merged
	}

	result, err := exec.Execute(ctx, rp.FuncID, endpoint, args, kwargs)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to execute pipeline %s on endpoint %s", rp.DOI, endpoint)
	}

	return result, nil
}

// CollectModels resolves the pipeline's referenced model URIs against the
// registry. A URI the registry cannot resolve is skipped with a warning;
// the published record then simply lacks detailed metadata for that model.
func (rp *RegisteredPipeline) CollectModels(registry ModelRegistry, logger *slog.Logger) []ModelMetadata {
	models := make([]ModelMetadata, 0, len(rp.ModelURIs))
	for _, uri := range rp.ModelURIs {
		meta, ok := registry.Lookup(uri)
		if !ok {
			if logger != nil {
				logger.Warn("no record in registry for model, published pipeline will not have detailed metadata for it",
					"model_uri", uri)
			}

			continue
		}
		models = append(models, meta)
	}

	return models
}

// JSON serializes the registered pipeline record.
func (rp *RegisteredPipeline) JSON() ([]byte, error) {
	payload, err := json.Marshal(rp)
	if err != nil {
		return nil, errors.Wrap(err, "unable to serialize registered pipeline")
	}

	return payload, nil
}

// FromJSON reconstructs a registered pipeline from its serialized record.
func FromJSON(payload []byte) (*RegisteredPipeline, error) {
	var rp RegisteredPipeline
	if err := json.Unmarshal(payload, &rp); err != nil {
		return nil, errors.Wrap(err, "unable to parse registered pipeline record")
	}

	return &rp, nil
}
