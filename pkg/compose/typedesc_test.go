package compose_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arbor-ml/arbor/pkg/compose"
)

func TestUnionOrderIrrelevant(t *testing.T) {
	t.Parallel()

	assert.True(t, compose.Union("int", "str").Equal(compose.Union("str", "int")))
	assert.Equal(t, []string{"int", "str"}, compose.Union("str", "int", "str").Members())
}

func TestUnionCollapsesSingleMember(t *testing.T) {
	t.Parallel()

	collapsed := compose.Union("int", "int")
	assert.Equal(t, compose.KindSimple, collapsed.Kind())
	assert.True(t, collapsed.Equal(compose.Simple("int")))
}

func TestTuplePositionSignificant(t *testing.T) {
	t.Parallel()

	ab := compose.Tuple(compose.Simple("int"), compose.Simple("str"))
	ba := compose.Tuple(compose.Simple("str"), compose.Simple("int"))
	assert.False(t, ab.Equal(ba))
	assert.True(t, ab.Equal(compose.Tuple(compose.Simple("int"), compose.Simple("str"))))
}

func TestTupleHasNoMembers(t *testing.T) {
	t.Parallel()

	assert.Nil(t, compose.Tuple(compose.Simple("int")).Members())
}

func TestDescriptorString(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		desc compose.TypeDescriptor
		want string
	}{
		"simple": {desc: compose.Simple("int"), want: "int"},
		"union":  {desc: compose.Union("str", "int"), want: "int | str"},
		"tuple": {
			desc: compose.Tuple(compose.Simple("int"), compose.Union("str", "float")),
			want: "Tuple[int, float | str]",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.desc.String())
		})
	}
}
