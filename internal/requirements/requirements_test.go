package requirements

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		raw     string
		want    Requirement
		wantErr bool
	}{
		"pinned":        {raw: "numpy==1.21.2", want: Requirement{Name: "numpy", Specifier: "==1.21.2", Raw: "numpy==1.21.2"}},
		"range":         {raw: "pandas>=1.3.0", want: Requirement{Name: "pandas", Specifier: ">=1.3.0", Raw: "pandas>=1.3.0"}},
		"unpinned":      {raw: "Flask", want: Requirement{Name: "flask", Raw: "Flask"}},
		"underscores":   {raw: "scikit_learn>=0.24.2", want: Requirement{Name: "scikit-learn", Specifier: ">=0.24.2", Raw: "scikit_learn>=0.24.2"}},
		"extras":        {raw: "requests[security]==2.0", want: Requirement{Name: "requests", Specifier: "==2.0", Raw: "requests[security]==2.0"}},
		"comment":       {raw: "numpy==1.0 # pinned", want: Requirement{Name: "numpy", Specifier: "==1.0", Raw: "numpy==1.0 # pinned"}},
		"empty":         {raw: "   ", wantErr: true},
		"only operator": {raw: "==1.0", wantErr: true},
		"bad separator": {raw: "numpy 1.0", wantErr: true},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRequirementEqual(t *testing.T) {
	t.Parallel()

	a, err := Parse("Scikit_Learn>=0.24.2")
	require.NoError(t, err)
	b, err := Parse("scikit-learn>=0.24.2")
	require.NoError(t, err)
	c, err := Parse("scikit-learn==1.0.0")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestReadPipFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "requirements.txt")
	contents := "Flask==2.1.1\npandas>=1.3.0\n\n# a comment\nnumpy==1.21.2\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	deps, err := ReadPipFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Flask==2.1.1", "pandas>=1.3.0", "numpy==1.21.2"}, deps)
}

func TestReadPipFileInvalidLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(path, []byte("numpy ==== nope\n"), 0o600))

	_, err := ReadPipFile(path)
	assert.Error(t, err)
}

func TestReadCondaFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "environment.yml")
	contents := `name: my_env
channels:
  - defaults
dependencies:
  - python=3.8
  - flask=2.1.1
  - pandas>=1.3.0
  - pip:
      - numpy==1.21.2
      - scikit-learn>=0.24.2
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	pyVersion, condaDeps, pipDeps, err := ReadCondaFile(path)
	require.NoError(t, err)

	assert.Equal(t, "3.8", pyVersion)
	assert.Equal(t, []string{"flask=2.1.1", "pandas>=1.3.0"}, condaDeps)
	assert.Equal(t, []string{"numpy==1.21.2", "scikit-learn>=0.24.2"}, pipDeps)
	assert.NotContains(t, condaDeps, "python=3.8")
}

func TestReadCondaFileNoPython(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "environment.yml")
	require.NoError(t, os.WriteFile(path, []byte("dependencies:\n  - numpy\n"), 0o600))

	pyVersion, condaDeps, pipDeps, err := ReadCondaFile(path)
	require.NoError(t, err)
	assert.Empty(t, pyVersion)
	assert.Equal(t, []string{"numpy"}, condaDeps)
	assert.Empty(t, pipDeps)
}
