package engine_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	config "github.com/hanpama/gqlproj/internal/config"
	ctxlog "github.com/hanpama/gqlproj/internal/ctxlog"
	engine "github.com/hanpama/gqlproj/internal/engine"
	eventbus "github.com/hanpama/gqlproj/internal/eventbus"
	events "github.com/hanpama/gqlproj/internal/events"
	fragment "github.com/hanpama/gqlproj/internal/fragment"
	language "github.com/hanpama/gqlproj/internal/language"
	projector "github.com/hanpama/gqlproj/internal/projector"
	reqid "github.com/hanpama/gqlproj/internal/reqid"
	schema "github.com/hanpama/gqlproj/internal/schema"
	shape "github.com/hanpama/gqlproj/internal/shape"
	typegraph "github.com/hanpama/gqlproj/internal/typegraph"
)

const sdl = `
type Query { node: Node, me: User }
interface Node { id: ID! }
type User implements Node { id: ID!, name: String!, best: User }
type Admin implements Node { id: ID!, canImpersonate: Boolean! }
`

func input(t *testing.T, sdl string, docs ...string) engine.Input {
	t.Helper()
	s, err := schema.BuildFromSDL("schema.graphql", sdl)
	require.NoError(t, err)
	in := engine.Input{Schema: s}
	for i, src := range docs {
		doc, err := language.ParseQuery("doc"+string(rune('a'+i))+".graphql", src)
		require.NoError(t, err)
		in.Documents = append(in.Documents, doc)
	}
	return in
}

func skipTypename() *config.Config {
	cfg := config.Default()
	cfg.SkipTypename = true
	return cfg
}

func operationNames(ops []*projector.Operation) []string {
	var out []string
	for _, op := range ops {
		out = append(out, op.TypeName)
	}
	return out
}

func TestRun(t *testing.T) {
	in := input(t, sdl,
		`query Me { me { ...UserFields } }
		 fragment UserFields on User { id best { ...Name } }`,
		`fragment Name on User { name }
		 query Node { node { id ... on Admin { canImpersonate } } }
		 { me { id } }`,
	)
	res, err := engine.New(skipTypename(), nil).Run(context.Background(), in)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	require.NotEmpty(t, res.RunID)

	require.Equal(t, []string{"MeQuery", "NodeQuery", "Anonymous1Query"}, operationNames(res.Operations))
	require.Equal(t,
		`Query{node: (User{id: ID!} | Admin{id: ID!, canImpersonate: Boolean!})}`,
		shape.String(res.Operations[1].Shape))
	require.Equal(t,
		`Query{me: User{id: ID!, best: User{name: String!}}}`,
		shape.String(res.Operations[0].Shape))

	require.Len(t, res.Fragments, 2)
	require.Equal(t, "UserFields", res.Fragments[0].Name)
	require.Equal(t, "Name", res.Fragments[1].Name)

	require.Equal(t, []string{"User", "Admin"}, res.Closure.Implementers["Node"])
	require.Equal(t, `Query{node: ResolversTypes["Node"], me: User}`, shape.String(res.Resolvers.Get("Query").Shape))
}

func TestRun_DocumentErrorsAreIsolated(t *testing.T) {
	in := input(t, sdl,
		`query Broken { me { ...Missing } }`,
		`query Fine { me { id } }`,
		`query Clash { me { x: id x: name } }`,
		`fragment Bad on User { ... on Admin { id } }
		 query UsesBad { me { ...Bad } }`,
	)
	res, err := engine.New(skipTypename(), nil).Run(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, []string{"FineQuery"}, operationNames(res.Operations))

	require.Len(t, res.Diagnostics, 4)
	require.Equal(t, "Bad", res.Diagnostics[0].Document)
	require.Equal(t, "fragment", res.Diagnostics[0].Kind)

	var unresolved *projector.UnresolvedFragmentSpreadError
	require.True(t, errors.As(res.Diagnostics[1], &unresolved))
	require.Equal(t, "Broken", res.Diagnostics[1].Document)
	require.Equal(t, "doca.graphql", res.Diagnostics[1].Source)

	var clash *projector.IncompatibleMergeError
	require.True(t, errors.As(res.Diagnostics[2], &clash))

	var invalid *projector.InvalidTypeConditionError
	require.True(t, errors.As(res.Diagnostics[3], &invalid))
	require.Equal(t, "UsesBad", res.Diagnostics[3].Document)
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("schema integrity", func(t *testing.T) {
		_, err := engine.New(config.Default(), nil).Run(context.Background(),
			input(t, `type Query { missing: Nope }`))
		var target *typegraph.SchemaIntegrityError
		require.True(t, errors.As(err, &target), "got %v", err)
	})

	t.Run("fragment cycle", func(t *testing.T) {
		_, err := engine.New(config.Default(), nil).Run(context.Background(), input(t, sdl,
			`fragment A on User { best { ...B } }`,
			`fragment B on User { ...A }`,
		))
		var target *fragment.CycleError
		require.True(t, errors.As(err, &target), "got %v", err)
		require.Equal(t, []string{"A", "B", "A"}, target.Path)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.NamingConvention = "nope"
		_, err := engine.New(cfg, nil).Run(context.Background(), input(t, sdl))
		require.ErrorContains(t, err, "invalid config")
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := engine.New(config.Default(), nil).Run(ctx, input(t, sdl, `{ me { id } }`))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	var docs []string
	for i := 0; i < 20; i++ {
		docs = append(docs, `query Q`+string(rune('A'+i))+` { node { id ... on User { name best { id } } ... on Admin { canImpersonate } } }`)
	}
	in := input(t, sdl, docs...)

	seqCfg := config.Default()
	seqCfg.Workers = 1
	seq, err := engine.New(seqCfg, nil).Run(context.Background(), in)
	require.NoError(t, err)

	parCfg := config.Default()
	parCfg.Workers = 8
	par, err := engine.New(parCfg, nil).Run(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, operationNames(seq.Operations), operationNames(par.Operations))
	for i := range seq.Operations {
		require.True(t, shape.Equal(seq.Operations[i].Shape, par.Operations[i].Shape))
	}
}

func TestRun_EventsAndLogging(t *testing.T) {
	bus := eventbus.New()
	var (
		mu     sync.Mutex
		kinds  []string
		start  events.RunStart
		finish events.RunFinish
	)
	eventbus.Subscribe(bus, func(_ context.Context, e events.RunStart) { start = e })
	eventbus.Subscribe(bus, func(_ context.Context, e events.RunFinish) { finish = e })
	eventbus.Subscribe(bus, func(_ context.Context, e events.DocumentFinish) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, e.Kind+":"+e.Name)
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	ctx, runID := reqid.NewContext(ctx)

	res, err := engine.New(config.Default(), bus).Run(ctx, input(t, sdl,
		`query Me { me { ...F } } fragment F on User { id }`,
		`mutation M { x }`,
	))
	require.NoError(t, err)
	require.Equal(t, runID, res.RunID)

	require.Equal(t, runID, start.RunID)
	require.Equal(t, 2, start.Documents)
	require.Equal(t, 1, start.Fragments)
	require.Equal(t, runID, finish.RunID)
	require.Equal(t, 1, finish.Diagnostics)
	require.NoError(t, finish.Err)
	require.ElementsMatch(t, []string{"fragment:F", "query:Me", "mutation:M"}, kinds)

	require.Contains(t, buf.String(), "Projection finished.")
	require.Contains(t, buf.String(), "run_id="+runID)
}
