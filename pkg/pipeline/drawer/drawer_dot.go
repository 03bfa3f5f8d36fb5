// Package drawer renders a pipeline's composition plan as a Graphviz
// file: one vertex per step, annotated with the step's signature, and one
// edge per adjacent pair, coloured by the delivery mode chosen for it.
package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	colors "gopkg.in/go-playground/colors.v1" //nolint
)

// DOTDrawer writes the chain in Graphviz DOT syntax.
type DOTDrawer struct {
	fileName string
}

// NewDOTDrawer creates a drawer writing to the given file.
func NewDOTDrawer(fileName string) *DOTDrawer {
	return &DOTDrawer{fileName: fileName}
}

// Draw renders the chain into the drawer's file.
func (d *DOTDrawer) Draw(chain graph.Graph[string, string]) error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	if err := dot(chain, file); err != nil {
		return errors.Wrapf(err, "unable to render chain to %s", d.fileName)
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)

// modeColor colours an edge by the delivery mode it carries: whole-value
// edges blue, splat edges orange.
func modeColor(mode string) (string, error) {
	var (
		c   colors.Color
		err error
	)
	switch mode {
	case "splat":
		c, err = colors.RGB(230, 126, 34)
	default:
		c, err = colors.RGB(41, 128, 185)
	}
	if err != nil {
		return "", errors.Wrap(err, "unable to build colour")
	}

	return c.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $s := .Statements}}
	"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} ]{{else}}[ {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} ]{{end}};
	{{end}}
}
`

type description struct {
	GraphType    string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	EdgeAttributes   map[string]string
}

func dot(g graph.Graph[string, string], wrt io.Writer) error {
	desc, err := generateDOT(g)
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

func generateDOT(g graph.Graph[string, string]) (description, error) {
	desc := description{
		GraphType:    "graph",
		EdgeOperator: "--",
	}
	if g.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := g.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	// deterministic output regardless of map iteration order
	vertices := make([]string, 0, len(adjacencyMap))
	for vertex := range adjacencyMap {
		vertices = append(vertices, vertex)
	}
	sort.Strings(vertices)

	for _, vertex := range vertices {
		_, properties, err := g.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		attributes := map[string]string{}
		if xlabel, ok := properties.Attributes["xlabel"]; ok {
			attributes["label"] = fmt.Sprintf(`%s\n%s`, vertex, xlabel)
		}
		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceAttributes: attributes,
		})

		targets := make([]string, 0, len(adjacencyMap[vertex]))
		for target := range adjacencyMap[vertex] {
			targets = append(targets, target)
		}
		sort.Strings(targets)

		for _, target := range targets {
			edge := adjacencyMap[vertex][target]
			attributes := map[string]string{}
			if label, ok := edge.Properties.Attributes["label"]; ok {
				color, err := modeColor(label)
				if err != nil {
					return desc, err
				}
				attributes["label"] = label
				attributes["color"] = color
			}
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         target,
				EdgeAttributes: attributes,
			})
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse template")
	}

	return tpl.Execute(wrt, desc)
}
