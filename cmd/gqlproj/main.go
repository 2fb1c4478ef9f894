package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	config "github.com/hanpama/gqlproj/internal/config"
	ctxlog "github.com/hanpama/gqlproj/internal/ctxlog"
	engine "github.com/hanpama/gqlproj/internal/engine"
	eventbus "github.com/hanpama/gqlproj/internal/eventbus"
	modeljson "github.com/hanpama/gqlproj/internal/modeljson"
	otel "github.com/hanpama/gqlproj/internal/otel"
	source "github.com/hanpama/gqlproj/internal/source"
)

const rootUsage = `gqlproj - GraphQL type projection tools

USAGE:
  gqlproj <command> [flags]

COMMANDS:
  project          Project operations and fragments into result shapes (JSON)
  resolvers        Build the resolver type map of the schema (JSON)
  closure          Print the abstract type closure of the schema (JSON)
  help             Show help for any command
`

const commonUsage = `  -config <file>              HCL config file
  -root <dir>                 Directory schema and document globs are relative to (default: .)
  -schema <glob>              Schema file glob; .json files are introspection results. Repeatable
                              (default: **/*.graphqls, schema.graphql)
  -naming <convention>        keep, camel-case, pascal-case, snake-case, upper-case, lower-case
  -type.prefix <text>         Prefix for emitted type names
  -type.suffix <text>         Suffix for emitted type names
  -workers N                  Parallel document projections (default: GOMAXPROCS)
  -log.level <level>          debug, info, warn or error (default: info)
  -log.format <format>        text or json (default: text)
  -otel.endpoint <addr>       OTLP collector endpoint
  -otel.service <name>        OpenTelemetry service name (default: gqlproj)
`

const projectUsage = `project FLAGS:
` + commonUsage + `  -documents <glob>           Document file glob. Repeatable (default: **/*.graphql, **/*.gql)
  -skip-typename              Do not add the implied __typename field
  -non-optional-typename      Emit __typename as a required field
  -strict                     Exit non-zero when a document fails to project
`

const resolversUsage = `resolvers FLAGS:
` + commonUsage + `  -avoid-recursive            Rewrite only fields whose own type is abstract
`

const closureUsage = `closure FLAGS:
` + commonUsage

var (
	defaultSchemaGlobs   = []string{"**/*.graphqls", "schema.graphql"}
	defaultDocumentGlobs = []string{"**/*.graphql", "**/*.gql"}
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return errors.New("missing command")
	}

	cmd := args[0]
	cmdArgs := args[1:]
	switch cmd {
	case "project":
		return cmdProject(ctx, cmdArgs, stdout, stderr)
	case "resolvers":
		return cmdResolvers(ctx, cmdArgs, stdout, stderr)
	case "closure":
		return cmdClosure(ctx, cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "project":
		fmt.Fprint(stdout, projectUsage)
	case "resolvers":
		fmt.Fprint(stdout, resolversUsage)
	case "closure":
		fmt.Fprint(stdout, closureUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return strings.Join(*s, ",") }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// options are the flags shared by every command. Flags that were not given
// leave the config file settings alone.
type options struct {
	configFile   string
	root         string
	schema       stringListFlag
	documents    stringListFlag
	naming       string
	typePrefix   string
	typeSuffix   string
	workers      int
	skipTypename bool
	nonOptional  bool
	avoid        bool
	strict       bool
	logLevel     string
	logFormat    string
	otelEndpoint string
	otelService  string

	set map[string]bool
}

func newFlagSet(name string, o *options) *flag.FlagSet {
	o.root = "."
	o.logLevel = "info"
	o.logFormat = "text"
	o.otelService = "gqlproj"

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&o.configFile, "config", o.configFile, "HCL config file")
	fs.StringVar(&o.root, "root", o.root, "Input root directory")
	fs.Var(&o.schema, "schema", "Schema file glob")
	fs.StringVar(&o.naming, "naming", o.naming, "Naming convention")
	fs.StringVar(&o.typePrefix, "type.prefix", o.typePrefix, "Type name prefix")
	fs.StringVar(&o.typeSuffix, "type.suffix", o.typeSuffix, "Type name suffix")
	fs.IntVar(&o.workers, "workers", o.workers, "Parallel document projections")
	fs.StringVar(&o.logLevel, "log.level", o.logLevel, "Log level")
	fs.StringVar(&o.logFormat, "log.format", o.logFormat, "Log format")
	fs.StringVar(&o.otelEndpoint, "otel.endpoint", o.otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&o.otelService, "otel.service", o.otelService, "OpenTelemetry service name")
	return fs
}

func (o *options) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return nil
}

// config loads the config file, if any, and applies the given flags on top.
func (o *options) config() (*config.Config, error) {
	cfg := config.Default()
	if o.configFile != "" {
		var err error
		cfg, err = config.LoadFile(o.configFile, os.Environ())
		if err != nil {
			return nil, err
		}
	}
	if len(o.schema) > 0 {
		cfg.Schema = o.schema
	}
	if len(o.documents) > 0 {
		cfg.Documents = o.documents
	}
	if o.set["naming"] {
		cfg.NamingConvention = config.Convention(o.naming)
	}
	if o.set["type.prefix"] {
		cfg.TypePrefix = o.typePrefix
	}
	if o.set["type.suffix"] {
		cfg.TypeSuffix = o.typeSuffix
	}
	if o.set["workers"] {
		cfg.Workers = o.workers
	}
	if o.set["skip-typename"] {
		cfg.SkipTypename = o.skipTypename
	}
	if o.set["non-optional-typename"] {
		cfg.NonOptionalTypename = o.nonOptional
	}
	if o.set["avoid-recursive"] {
		cfg.AvoidCheckingAbstractTypesRecursively = o.avoid
	}
	if len(cfg.Schema) == 0 {
		cfg.Schema = defaultSchemaGlobs
	}
	if len(cfg.Documents) == 0 {
		cfg.Documents = defaultDocumentGlobs
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (o *options) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid -log.level %q", o.logLevel)
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch o.logFormat {
	case "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	}
	return nil, fmt.Errorf("invalid -log.format %q", o.logFormat)
}

// execute loads the inputs and runs the engine. Documents are only loaded
// when withDocuments is set.
func (o *options) execute(ctx context.Context, stderr io.Writer, withDocuments bool) (*engine.Result, error) {
	logger, err := o.logger(stderr)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.WithLogger(ctx, logger)

	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()
	shutdown, err := otel.Setup(ctx, bus, o.otelEndpoint, o.otelService)
	if err != nil {
		return nil, fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down telemetry.", "error", err)
		}
	}()

	var documentGlobs []string
	if withDocuments {
		documentGlobs = cfg.Documents
	}
	disc, err := source.NewFileSystemDiscovery(ctx, o.root, cfg.Schema, documentGlobs)
	if err != nil {
		return nil, err
	}
	sch, err := source.LoadSchema(ctx, disc)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	in := engine.Input{Schema: sch}
	if withDocuments {
		in.Documents, err = source.LoadDocuments(ctx, disc)
		if err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
	}

	res, err := engine.New(cfg, bus).Run(ctx, in)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		logger.Warn("Document skipped.",
			"document", d.Document, "kind", d.Kind, "source", d.Source, "error", d.Err)
	}
	return res, nil
}

func cmdProject(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("project", &o)
	fs.Var(&o.documents, "documents", "Document file glob")
	fs.BoolVar(&o.skipTypename, "skip-typename", false, "Do not add the implied __typename field")
	fs.BoolVar(&o.nonOptional, "non-optional-typename", false, "Emit __typename as a required field")
	fs.BoolVar(&o.strict, "strict", false, "Exit non-zero when a document fails to project")
	if err := o.parse(fs, args); err != nil {
		fmt.Fprint(stderr, projectUsage)
		return err
	}

	res, err := o.execute(ctx, stderr, true)
	if err != nil {
		return err
	}
	if err := modeljson.WriteResult(stdout, res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if o.strict && len(res.Diagnostics) > 0 {
		return fmt.Errorf("%d document(s) failed to project", len(res.Diagnostics))
	}
	return nil
}

func cmdResolvers(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("resolvers", &o)
	fs.BoolVar(&o.avoid, "avoid-recursive", false, "Rewrite only fields whose own type is abstract")
	if err := o.parse(fs, args); err != nil {
		fmt.Fprint(stderr, resolversUsage)
		return err
	}

	res, err := o.execute(ctx, stderr, false)
	if err != nil {
		return err
	}
	return modeljson.WriteResolvers(stdout, res.Resolvers)
}

func cmdClosure(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("closure", &o)
	if err := o.parse(fs, args); err != nil {
		fmt.Fprint(stderr, closureUsage)
		return err
	}

	res, err := o.execute(ctx, stderr, false)
	if err != nil {
		return err
	}
	return modeljson.WriteClosure(stdout, res.Closure)
}
