package pipeline

import (
	"fmt"
	"os"
	"sort"

	"github.com/arbor-ml/arbor/internal/requirements"
)

// DefaultPythonVersion is the interpreter version assumed when neither the
// pipeline nor any of its steps declares one. Overridable through the
// ARBOR_PYTHON_VERSION environment variable.
const DefaultPythonVersion = "3.10.9"

// systemPythonVersion is the running-environment fallback for the
// interpreter selection rule.
func systemPythonVersion() string {
	if v := os.Getenv("ARBOR_PYTHON_VERSION"); v != "" {
		return v
	}

	return DefaultPythonVersion
}

// DependencyManifest is the reconciled set of third-party requirements and
// the interpreter version for a pipeline's execution container. Package
// lists are de-duplicated sets; their ordering carries no meaning and is
// sorted only for determinism. Warnings preserve the order they were
// raised in.
type DependencyManifest struct {
	PipPackages        []string `json:"pip_dependencies"`
	CondaPackages      []string `json:"conda_dependencies"`
	InterpreterVersion string   `json:"python_version"`
	Warnings           []string `json:"warnings,omitempty"`
}

func (m DependencyManifest) clone() DependencyManifest {
	return DependencyManifest{
		PipPackages:        copyStrings(m.PipPackages),
		CondaPackages:      copyStrings(m.CondaPackages),
		InterpreterVersion: m.InterpreterVersion,
		Warnings:           copyStrings(m.Warnings),
	}
}

// Reconcile merges the steps' declared dependencies and interpreter hints
// with the pipeline's explicit requirements into one manifest.
//
// The pipeline's explicit requirements always take precedence: a step
// requirement for a package the pipeline pins at a different version is
// discarded with a warning, and a step requirement for a package the
// pipeline does not pin at all is reported as a warning rather than
// silently added, so the manifest never grows requirements without
// visibility. The interpreter version is the pipeline's declared one when
// present, else the system fallback; more than one distinct candidate
// across the pipeline and its steps raises a warning.
//
// Reconcile is a pure function of the pipeline's frozen state: calling it
// again yields an identical manifest.
func (p *Pipeline) Reconcile() DependencyManifest {
	manifest := DependencyManifest{
		PipPackages:   dedupeSorted(p.pipDeps),
		CondaPackages: dedupeSorted(p.condaDeps),
	}

	explicit := make(map[string]requirements.Requirement, len(p.pipDeps))
	for _, dep := range p.pipDeps {
		req, err := requirements.Parse(dep)
		if err != nil {
			// explicit deps were validated when declared
			continue
		}
		explicit[req.Name] = req
	}

	condaExplicit := make(map[string]struct{}, len(p.condaDeps))
	for _, dep := range p.condaDeps {
		condaExplicit[dep] = struct{}{}
	}

	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		manifest.Warnings = append(manifest.Warnings, msg)
		if p.logger != nil {
			p.logger.Warn(msg)
		}
	}

	// candidate interpreter versions keyed by their source, the pipeline's
	// own declaration first
	versionSources := []string{"pipeline"}
	versions := map[string]string{"pipeline": p.pyVersion}

	for _, step := range p.steps {
		for _, dep := range step.pipDeps {
			req, err := requirements.Parse(dep)
			if err != nil {
				warn("step %s declares unparsable requirement %q, ignoring it", step.name, dep)

				continue
			}
			pinned, ok := explicit[req.Name]
			switch {
			case ok && !pinned.Equal(req):
				warn("step %s has inferred a requirement %q, which is also required by the pipeline; only the pipeline's explicit requirement (%s) will be used",
					step.name, req.Raw, pinned.Raw)
			case !ok:
				warn("step %s has inferred a requirement %q, which is not required by the pipeline; if this package needs to be present in the container, add %q to the pipeline's requirements",
					step.name, req.Raw, req.Name)
			}
		}

		for _, dep := range step.condaDeps {
			if _, ok := condaExplicit[dep]; !ok {
				warn("step %s has inferred a conda requirement %q, which is not required by the pipeline; if this package needs to be present in the container, add it to the pipeline's requirements",
					step.name, dep)
			}
		}

		if step.pyVersion != "" {
			if _, ok := versions[step.name]; !ok {
				versionSources = append(versionSources, step.name)
			}
			versions[step.name] = step.pyVersion
		}
	}

	system := systemPythonVersion()
	manifest.InterpreterVersion = p.pyVersion
	if manifest.InterpreterVersion == "" {
		manifest.InterpreterVersion = system
	}

	distinct := make(map[string]struct{})
	for _, source := range versionSources {
		if versions[source] != "" {
			distinct[versions[source]] = struct{}{}
		}
	}
	if len(distinct) > 1 {
		warn("found multiple python versions specified across this pipeline's dependencies: %v; %s will be used, set one explicitly with WithPythonVersion to silence this",
			formatVersions(versionSources, versions), manifest.InterpreterVersion)
	}

	return manifest
}

func dedupeSorted(deps []string) []string {
	set := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		set[dep] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for dep := range set {
		out = append(out, dep)
	}
	sort.Strings(out)

	return out
}

// formatVersions renders source:version pairs in a stable order.
func formatVersions(sources []string, versions map[string]string) string {
	parts := ""
	for _, source := range sources {
		if versions[source] == "" {
			continue
		}
		if parts != "" {
			parts += ", "
		}
		parts += source + ": " + versions[source]
	}

	return "{" + parts + "}"
}
