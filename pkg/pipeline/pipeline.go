package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/arbor-ml/arbor/pkg/compose"
	"github.com/arbor-ml/arbor/pkg/pipeline/drawer"
	"github.com/arbor-ml/arbor/pkg/pipeline/measure"
)

// Pipeline is an ordered, validated chain of steps exposed as one composite
// callable. Construction verifies every adjacent pair and derives the
// delivery mode for each; the plan is computed once and never patched.
// Reordering or adding steps means constructing a new pipeline.
type Pipeline struct {
	title        string
	shortName    string
	doi          string
	description  string
	version      string
	year         string
	authors      []string
	contributors []string
	tags         []string

	steps     []*Step
	plan      []compose.DeliveryMode
	composite compose.Func
	manifest  DependencyManifest
	chain     graph.Graph[string, string]

	pyVersion string
	pipDeps   []string
	condaDeps []string

	logger  *slog.Logger
	measure measure.Measure
}

// New constructs a pipeline from an already-frozen, ordered step list.
// Every adjacent pair is checked for composability; the checks carry no
// ordering dependency on each other and run concurrently, but construction
// as a whole is atomic: either every pair validates and a fully-formed
// pipeline is returned, or the first failure is reported and no pipeline
// exists. Dependency reconciliation runs once over the full list and never
// fails construction; its conflicts become manifest warnings.
func New(title string, steps []*Step, opts ...PipelineOption) (*Pipeline, error) {
	if title == "" {
		return nil, ErrTitleMustBeSet
	}
	if len(steps) == 0 {
		return nil, compose.ErrEmptyPipeline
	}

	pipe := &Pipeline{
		title:   title,
		version: "0.0.1",
		year:    strconv.Itoa(time.Now().Year()),
		steps:   make([]*Step, len(steps)),
	}
	copy(pipe.steps, steps)

	for _, opt := range opts {
		if err := opt(pipe); err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	plan, err := computePlan(pipe.steps)
	if err != nil {
		return nil, err
	}
	pipe.plan = plan

	composite, err := compose.Compose(pipe.callables(), plan)
	if err != nil {
		return nil, err
	}
	pipe.composite = composite

	pipe.chain = buildChainGraph(pipe.steps, plan)
	pipe.syncAuthorMetadata()
	pipe.manifest = pipe.Reconcile()

	return pipe, nil
}

// computePlan validates all adjacent pairs concurrently and collects the
// chosen delivery modes in order. Each goroutine writes a distinct index.
func computePlan(steps []*Step) ([]compose.DeliveryMode, error) {
	modes := make([]compose.DeliveryMode, len(steps)-1)

	grp := new(errgroup.Group)
	for i := 0; i+1 < len(steps); i++ {
		i := i
		grp.Go(func() error {
			mode, err := compose.Check(steps[i].sig, steps[i+1].sig)
			if err != nil {
				return errors.Wrapf(err, "steps %d (%s) and %d (%s)",
					i+1, steps[i].name, i+2, steps[i+1].name)
			}
			modes[i] = mode

			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return modes, nil
}

func (p *Pipeline) callables() []compose.Func {
	fns := make([]compose.Func, len(p.steps))
	for i, step := range p.steps {
		fn := step.fn
		if p.measure != nil {
			mt := p.measure.AddMetric(vertexName(i, step.name))
			inner := fn
			fn = func(ctx context.Context, args ...any) (any, error) {
				start := time.Now()
				out, err := inner(ctx, args...)
				mt.AddDuration(time.Since(start))

				return out, err
			}
		}
		fns[i] = fn
	}

	return fns
}

// vertexName qualifies a step name with its position: step names are not
// required to be unique within a pipeline.
func vertexName(i int, name string) string {
	return fmt.Sprintf("%d. %s", i+1, name)
}

// buildChainGraph records the validated chain as a directed graph, with the
// chosen delivery mode as the label of each edge. The drawer renders it.
func buildChainGraph(steps []*Step, plan []compose.DeliveryMode) graph.Graph[string, string] {
	chain := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic())

	for i, step := range steps {
		// vertices are position-qualified, duplicates cannot occur
		_ = chain.AddVertex(vertexName(i, step.name),
			graph.VertexAttribute("xlabel", step.sig.String()))
	}
	for i, mode := range plan {
		_ = chain.AddEdge(vertexName(i, steps[i].name), vertexName(i+1, steps[i+1].name),
			graph.EdgeAttribute("label", mode.String()))
	}

	return chain
}

// syncAuthorMetadata folds step authors and contributors into the
// pipeline's contributor list, excluding anyone already credited as a
// pipeline author.
func (p *Pipeline) syncAuthorMetadata() {
	knownAuthors := make(map[string]struct{}, len(p.authors))
	for _, a := range p.authors {
		knownAuthors[a] = struct{}{}
	}

	known := make(map[string]struct{}, len(p.contributors))
	for _, c := range p.contributors {
		known[c] = struct{}{}
	}
	for _, step := range p.steps {
		for _, name := range append(step.Authors(), step.Contributors()...) {
			if _, isAuthor := knownAuthors[name]; isAuthor {
				continue
			}
			known[name] = struct{}{}
		}
	}

	contributors := make([]string, 0, len(known))
	for name := range known {
		contributors = append(contributors, name)
	}
	sort.Strings(contributors)
	p.contributors = contributors
}

// Call invokes the pipeline's composed steps on the given input data. The
// arguments feed the first step; the last step's result is returned. Any
// error raised by an underlying step propagates unmodified; composition
// correctness is a construction-time guarantee, not a runtime safety net.
func (p *Pipeline) Call(ctx context.Context, args ...any) (any, error) {
	return p.composite(ctx, args...)
}

// Title returns the human-readable pipeline title.
func (p *Pipeline) Title() string { return p.title }

// ShortName returns the identifier the pipeline is addressed by, or "".
func (p *Pipeline) ShortName() string { return p.shortName }

// DOI returns the DOI recorded for this pipeline, or "".
func (p *Pipeline) DOI() string { return p.doi }

// Description returns the human-readable description.
func (p *Pipeline) Description() string { return p.description }

// Version returns the pipeline version.
func (p *Pipeline) Version() string { return p.version }

// Year returns the citation year.
func (p *Pipeline) Year() string { return p.year }

// Authors returns the pipeline authors.
func (p *Pipeline) Authors() []string { return copyStrings(p.authors) }

// Contributors returns the synced contributor list.
func (p *Pipeline) Contributors() []string { return copyStrings(p.contributors) }

// Tags returns the pipeline tags.
func (p *Pipeline) Tags() []string { return copyStrings(p.tags) }

// Steps returns the ordered step list. Steps are shared references; they
// are immutable once frozen.
func (p *Pipeline) Steps() []*Step {
	steps := make([]*Step, len(p.steps))
	copy(steps, p.steps)

	return steps
}

// Plan returns the delivery mode chosen for each adjacent step pair, in
// order. A pipeline of n steps has n-1 entries.
func (p *Pipeline) Plan() []compose.DeliveryMode {
	plan := make([]compose.DeliveryMode, len(p.plan))
	copy(plan, p.plan)

	return plan
}

// Chain returns the validated step chain as a directed graph with
// delivery-mode-labelled edges.
func (p *Pipeline) Chain() graph.Graph[string, string] { return p.chain }

// Manifest returns the dependency manifest reconciled at construction
// time.
func (p *Pipeline) Manifest() DependencyManifest { return p.manifest.clone() }

// Draw renders the validated chain with the given drawer.
func (p *Pipeline) Draw(d drawer.Drawer) error {
	return d.Draw(p.chain)
}
