// Package engine runs a complete projection: type graph, closure, fragment
// ordering, document projection and the resolver map.
package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	config "github.com/hanpama/gqlproj/internal/config"
	ctxlog "github.com/hanpama/gqlproj/internal/ctxlog"
	eventbus "github.com/hanpama/gqlproj/internal/eventbus"
	events "github.com/hanpama/gqlproj/internal/events"
	fragment "github.com/hanpama/gqlproj/internal/fragment"
	language "github.com/hanpama/gqlproj/internal/language"
	projector "github.com/hanpama/gqlproj/internal/projector"
	reqid "github.com/hanpama/gqlproj/internal/reqid"
	resolvers "github.com/hanpama/gqlproj/internal/resolvers"
	schema "github.com/hanpama/gqlproj/internal/schema"
	typegraph "github.com/hanpama/gqlproj/internal/typegraph"
)

// Input is a parsed schema and the parsed documents to project against it.
type Input struct {
	Schema    *schema.Schema
	Documents []*language.QueryDocument
}

// Diagnostic is a document level error. The document is skipped; other
// documents are unaffected.
type Diagnostic struct {
	Document string
	Kind     string
	Source   string
	Err      error
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s %s: %v", d.Kind, d.Document, d.Err)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// Result is the output of a run. Fragments and Operations keep document
// input order and hold only the documents that projected successfully.
type Result struct {
	RunID       string
	Closure     *typegraph.ClosureResult
	Fragments   []*projector.Fragment
	Operations  []*projector.Operation
	Resolvers   *resolvers.Map
	Diagnostics []*Diagnostic
}

// Engine runs projections with one config. A nil bus disables events.
type Engine struct {
	cfg *config.Config
	bus *eventbus.Bus
}

// New returns an engine.
func New(cfg *config.Config, bus *eventbus.Bus) *Engine {
	return &Engine{cfg: cfg, bus: bus}
}

// Run projects in. Invalid config, schema integrity problems and fragment
// cycles abort the run with an error; everything else is reported as
// diagnostics on the result.
func (e *Engine) Run(ctx context.Context, in Input) (res *Result, err error) {
	started := time.Now()
	runID, ok := reqid.FromContext(ctx)
	if !ok {
		ctx, runID = reqid.NewContext(ctx)
	}
	logger := ctxlog.FromContext(ctx).With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	g, err := typegraph.New(in.Schema)
	if err != nil {
		return nil, err
	}
	closure := g.Closure()

	var defs []*language.FragmentDefinition
	var ops []*language.OperationDefinition
	for _, doc := range in.Documents {
		defs = append(defs, doc.Fragments...)
		ops = append(ops, doc.Operations...)
	}
	ordered, err := fragment.Order(defs)
	if err != nil {
		return nil, err
	}

	eventbus.Publish(ctx, e.bus, events.RunStart{
		RunID: runID, Types: g.Len(), Documents: len(ops), Fragments: len(defs),
	})
	res = &Result{RunID: runID, Closure: closure}
	defer func() {
		finish := events.RunFinish{RunID: runID, Err: err, Duration: time.Since(started)}
		if res != nil {
			finish.Diagnostics = len(res.Diagnostics)
		}
		eventbus.Publish(ctx, e.bus, finish)
	}()

	p := projector.New(g, e.cfg)

	// Fragments are projected sequentially in dependency order and reported
	// in input order.
	fragments := make(map[string]*projector.Fragment, len(ordered))
	fragmentDiags := make(map[string]*Diagnostic)
	for _, def := range ordered {
		done := e.begin(ctx, def.Name, "fragment")
		f, err := p.AddFragment(def)
		done(err)
		if err != nil {
			fragmentDiags[def.Name] = &Diagnostic{
				Document: def.Name, Kind: "fragment", Source: language.SourceName(def.Position), Err: err,
			}
			continue
		}
		fragments[def.Name] = f
	}
	for _, def := range defs {
		if f, ok := fragments[def.Name]; ok {
			res.Fragments = append(res.Fragments, f)
		} else if d, ok := fragmentDiags[def.Name]; ok {
			res.Diagnostics = append(res.Diagnostics, d)
		}
	}

	projected := make([]*projector.Operation, len(ops))
	opDiags := make([]*Diagnostic, len(ops))
	anonymous := make([]int, len(ops))
	n := 0
	for i, op := range ops {
		if op.Name == "" {
			n++
			anonymous[i] = n
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.cfg.WorkerLimit())
	for i, op := range ops {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			kind := string(op.Operation)
			name := op.Name
			if name == "" {
				name = fmt.Sprintf("Anonymous%d", anonymous[i])
			}
			done := e.begin(ctx, name, kind)
			out, err := p.Operation(op, anonymous[i])
			done(err)
			if err != nil {
				opDiags[i] = &Diagnostic{Document: name, Kind: kind, Source: language.SourceName(op.Position), Err: err}
				return nil
			}
			projected[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for i := range ops {
		if projected[i] != nil {
			res.Operations = append(res.Operations, projected[i])
		}
		if opDiags[i] != nil {
			res.Diagnostics = append(res.Diagnostics, opDiags[i])
		}
	}

	res.Resolvers = resolvers.Build(g, e.cfg)

	logger.Info("Projection finished.",
		"types", g.Len(),
		"fragments", len(res.Fragments),
		"operations", len(res.Operations),
		"diagnostics", len(res.Diagnostics),
		"duration", time.Since(started))
	return res, nil
}

// begin publishes DocumentStart and returns the matching finish callback.
func (e *Engine) begin(ctx context.Context, name, kind string) func(error) {
	started := time.Now()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Projecting document.", "kind", kind, "name", name)
	eventbus.Publish(ctx, e.bus, events.DocumentStart{Name: name, Kind: kind})
	return func(err error) {
		if err != nil {
			logger.Debug("Document failed.", "kind", kind, "name", name, "error", err)
		}
		eventbus.Publish(ctx, e.bus, events.DocumentFinish{
			Name: name, Kind: kind, Err: err, Duration: time.Since(started),
		})
	}
}
