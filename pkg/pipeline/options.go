package pipeline

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/arbor-ml/arbor/internal/requirements"
	"github.com/arbor-ml/arbor/pkg/pipeline/measure"
)

// StepOption configures a step at creation time.
type StepOption func(s *Step) error

// StepAuthors sets the step's authors.
func StepAuthors(authors ...string) StepOption {
	return func(s *Step) error {
		s.authors = append(s.authors, authors...)

		return nil
	}
}

// StepContributors acknowledges contributors to the step.
func StepContributors(contributors ...string) StepOption {
	return func(s *Step) error {
		s.contributors = append(s.contributors, contributors...)

		return nil
	}
}

// StepDescription sets the human-readable step description.
func StepDescription(description string) StepOption {
	return func(s *Step) error {
		s.description = description

		return nil
	}
}

// StepPipDependencies declares pip requirements the step needs at run time.
// Every requirement must parse.
func StepPipDependencies(deps ...string) StepOption {
	return func(s *Step) error {
		for _, dep := range deps {
			if _, err := requirements.Parse(dep); err != nil {
				return err
			}
		}
		s.pipDeps = append(s.pipDeps, deps...)

		return nil
	}
}

// StepCondaDependencies declares conda requirements the step needs.
func StepCondaDependencies(deps ...string) StepOption {
	return func(s *Step) error {
		s.condaDeps = append(s.condaDeps, deps...)

		return nil
	}
}

// StepPythonVersion hints at the interpreter version the step was built
// against.
func StepPythonVersion(version string) StepOption {
	return func(s *Step) error {
		s.pyVersion = version

		return nil
	}
}

// StepModel references an external registered model by URI. When a registry
// is supplied the model's declared dependency list is folded into the
// step's inferred requirements, the way the model was trained; a nil
// registry records the reference only.
func StepModel(uri string, registry ModelRegistry) StepOption {
	return func(s *Step) error {
		s.modelURIs = append(s.modelURIs, uri)
		if registry == nil {
			return nil
		}

		meta, ok := registry.Lookup(uri)
		if !ok {
			// unresolved references surface later, when the registered
			// pipeline collects its model metadata
			return nil
		}
		s.pipDeps = append(s.pipDeps, meta.PipDependencies...)
		s.condaDeps = append(s.condaDeps, meta.CondaDependencies...)

		return nil
	}
}

// PipelineOption configures a pipeline at construction time.
type PipelineOption func(p *Pipeline) error

// WithAuthors sets the pipeline authors, as they should appear in
// citations.
func WithAuthors(authors ...string) PipelineOption {
	return func(p *Pipeline) error {
		p.authors = append(p.authors, authors...)

		return nil
	}
}

// WithContributors acknowledges contributors distinct from the authors.
func WithContributors(contributors ...string) PipelineOption {
	return func(p *Pipeline) error {
		p.contributors = append(p.contributors, contributors...)

		return nil
	}
}

// WithDescription sets the human-readable pipeline description.
func WithDescription(description string) PipelineOption {
	return func(p *Pipeline) error {
		p.description = description

		return nil
	}
}

// WithTags sets keywords or key phrases pertaining to the pipeline.
func WithTags(tags ...string) PipelineOption {
	return func(p *Pipeline) error {
		p.tags = append(p.tags, tags...)

		return nil
	}
}

// WithVersion sets the pipeline version. Defaults to "0.0.1".
func WithVersion(version string) PipelineOption {
	return func(p *Pipeline) error {
		p.version = version

		return nil
	}
}

// WithYear sets the year that should appear in citations. Defaults to the
// current year.
func WithYear(year string) PipelineOption {
	return func(p *Pipeline) error {
		p.year = year

		return nil
	}
}

// WithDOI records the DOI minted for this pipeline.
func WithDOI(doi string) PipelineOption {
	return func(p *Pipeline) error {
		p.doi = doi

		return nil
	}
}

// WithShortName sets the identifier used to address the pipeline as an
// attribute of a published collection.
func WithShortName(name string) PipelineOption {
	return func(p *Pipeline) error {
		if !isIdentifier(name) {
			return errors.Wrap(ErrInvalidShortName, name)
		}
		p.shortName = name

		return nil
	}
}

// WithPythonVersion pins the interpreter version the pipeline's container
// should use. Unset, the version is inferred from the steps or falls back
// to the system default.
func WithPythonVersion(version string) PipelineOption {
	return func(p *Pipeline) error {
		p.pyVersion = version

		return nil
	}
}

// WithPipDependencies explicitly declares pip requirements for the whole
// pipeline. Explicit requirements always win over step-inferred ones.
func WithPipDependencies(deps ...string) PipelineOption {
	return func(p *Pipeline) error {
		for _, dep := range deps {
			if _, err := requirements.Parse(dep); err != nil {
				return err
			}
		}
		p.pipDeps = append(p.pipDeps, deps...)

		return nil
	}
}

// WithCondaDependencies explicitly declares conda requirements for the
// whole pipeline.
func WithCondaDependencies(deps ...string) PipelineOption {
	return func(p *Pipeline) error {
		p.condaDeps = append(p.condaDeps, deps...)

		return nil
	}
}

// WithRequirementsFile reads a requirements.txt or a conda
// environment.yml/yaml into the pipeline's explicit dependency sets. A
// conda file may additionally pin the interpreter version.
func WithRequirementsFile(path string) PipelineOption {
	return func(p *Pipeline) error {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt":
			deps, err := requirements.ReadPipFile(path)
			if err != nil {
				return err
			}
			p.pipDeps = append(p.pipDeps, deps...)
		case ".yml", ".yaml":
			pyVersion, condaDeps, pipDeps, err := requirements.ReadCondaFile(path)
			if err != nil {
				return err
			}
			if pyVersion != "" && p.pyVersion == "" {
				p.pyVersion = pyVersion
			}
			p.condaDeps = append(p.condaDeps, condaDeps...)
			p.pipDeps = append(p.pipDeps, pipDeps...)
		default:
			return errors.Errorf("unrecognized requirements file extension %q, expected .txt, .yml or .yaml", path)
		}

		return nil
	}
}

// WithLogger sets the structured logger reconciliation warnings are
// reported to. Warnings are always collected on the manifest as well.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) error {
		p.logger = logger

		return nil
	}
}

// WithMeasure collects per-step invocation timing every time the composite
// callable runs.
func WithMeasure(m measure.Measure) PipelineOption {
	return func(p *Pipeline) error {
		p.measure = m

		return nil
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		ok := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}

	return true
}
