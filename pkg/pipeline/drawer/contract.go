package drawer

import (
	"github.com/dominikbraun/graph"
)

// Drawer renders a pipeline's validated step chain. The chain is a
// directed graph whose vertices are position-qualified step names and
// whose edges carry the chosen delivery mode as their "label" attribute.
type Drawer interface {
	// Draw writes a rendering of the chain.
	Draw(chain graph.Graph[string, string]) error
}
