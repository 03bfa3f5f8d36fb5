// Package requirements parses pip requirement strings and the two
// requirement file formats a pipeline may declare: a requirements.txt and a
// conda environment.yml.
package requirements

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Requirement is one parsed pip requirement.
type Requirement struct {
	// Name is the canonical distribution name: lowercased, underscores
	// folded to hyphens, extras stripped.
	Name string
	// Specifier is the version constraint, e.g. "==1.21.2"; empty when the
	// requirement is unpinned.
	Specifier string
	// Raw is the requirement line as declared.
	Raw string
}

// Parse parses a single pip requirement line.
func Parse(raw string) (Requirement, error) {
	line := strings.TrimSpace(raw)
	if i := strings.Index(line, "#"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return Requirement{}, errors.Errorf("empty requirement %q", raw)
	}

	i := 0
	for i < len(line) && isNameChar(line[i]) {
		i++
	}
	if i == 0 {
		return Requirement{}, errors.Errorf("could not parse requirement %q", raw)
	}

	name := line[:i]
	rest := strings.TrimSpace(line[i:])
	// extras, e.g. requests[security]
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return Requirement{}, errors.Errorf("unterminated extras in requirement %q", raw)
		}
		rest = strings.TrimSpace(rest[end+1:])
	}
	if rest != "" && !strings.ContainsAny(rest[:1], "=<>!~;") {
		return Requirement{}, errors.Errorf("could not parse requirement %q", raw)
	}

	return Requirement{Name: canonicalName(name), Specifier: rest, Raw: strings.TrimSpace(raw)}, nil
}

func isNameChar(c byte) bool {
	return c == '-' || c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func canonicalName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// Equal reports whether two requirements pin the same package to the same
// constraint. Names compare canonically, specifiers textually.
func (r Requirement) Equal(other Requirement) bool {
	return r.Name == other.Name && r.Specifier == other.Specifier
}

// ReadPipFile reads a requirements.txt: one requirement per line, blank
// lines and comments skipped, every kept line must parse.
func ReadPipFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read requirements file %s", path)
	}

	var deps []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, err := Parse(line); err != nil {
			return nil, errors.Wrapf(err, "invalid requirement in %s", path)
		}
		deps = append(deps, line)
	}

	return deps, nil
}

type condaEnvironment struct {
	Name         string `yaml:"name"`
	Channels     []string
	Dependencies []any `yaml:"dependencies"`
}

// ReadCondaFile reads a conda environment.yml. It returns the pinned python
// version (empty when the environment does not pin one), the conda
// dependency list with the python entry removed, and any nested pip
// dependencies.
func ReadCondaFile(path string) (pythonVersion string, condaDeps, pipDeps []string, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, errors.Wrapf(err, "unable to read conda environment file %s", path)
	}

	var env condaEnvironment
	if err := yaml.Unmarshal(content, &env); err != nil {
		return "", nil, nil, errors.Wrapf(err, "unable to parse conda environment file %s", path)
	}

	for _, dep := range env.Dependencies {
		switch d := dep.(type) {
		case string:
			entry := strings.TrimSpace(d)
			if name, version, ok := splitCondaSpec(entry); ok && name == "python" {
				pythonVersion = version

				continue
			}
			condaDeps = append(condaDeps, entry)
		case map[string]any:
			// nested "- pip:" block
			if pips, ok := d["pip"].([]any); ok {
				for _, p := range pips {
					if s, ok := p.(string); ok {
						pipDeps = append(pipDeps, strings.TrimSpace(s))
					}
				}
			}
		}
	}

	return pythonVersion, condaDeps, pipDeps, nil
}

// splitCondaSpec splits "name=version" or "name==version" conda entries.
func splitCondaSpec(entry string) (name, version string, ok bool) {
	i := strings.IndexAny(entry, "=<>!")
	if i < 0 {
		return entry, "", true
	}

	name = strings.TrimSpace(entry[:i])
	version = strings.TrimLeft(entry[i:], "=<>!")

	return name, strings.TrimSpace(version), name != ""
}
