// Package otel turns pipeline events into OpenTelemetry spans.
package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	eventbus "github.com/hanpama/gqlproj/internal/eventbus"
	events "github.com/hanpama/gqlproj/internal/events"
	reqid "github.com/hanpama/gqlproj/internal/reqid"
)

// Setup exports spans for the events on bus to an OTLP gRPC endpoint.
// If endpoint is empty, no telemetry is configured.
func Setup(ctx context.Context, bus *eventbus.Bus, endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	unsubscribe := Register(bus, tp.Tracer("gqlproj"))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes span handlers for pipeline events on bus. Document
// spans are children of the span of their run.
func Register(bus *eventbus.Bus, tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	unsubs := []func(){
		eventbus.Subscribe(bus, s.runStart),
		eventbus.Subscribe(bus, s.runFinish),
		eventbus.Subscribe(bus, s.documentStart),
		eventbus.Subscribe(bus, s.documentFinish),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

type subscriber struct {
	tracer  trace.Tracer
	runs    sync.Map // run id -> trace.Span
	docSpan sync.Map // run id + "/" + kind + "/" + name -> trace.Span
}

func docKey(ctx context.Context, kind, name string) string {
	rid, _ := reqid.FromContext(ctx)
	return rid + "/" + kind + "/" + name
}

func (s *subscriber) runStart(ctx context.Context, e events.RunStart) {
	_, span := s.tracer.Start(ctx, "gqlproj.run")
	span.SetAttributes(
		attribute.String("gqlproj.run_id", e.RunID),
		attribute.Int("gqlproj.types", e.Types),
		attribute.Int("gqlproj.documents", e.Documents),
		attribute.Int("gqlproj.fragments", e.Fragments),
	)
	s.runs.Store(e.RunID, span)
}

func (s *subscriber) runFinish(_ context.Context, e events.RunFinish) {
	v, ok := s.runs.LoadAndDelete(e.RunID)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(attribute.Int("gqlproj.diagnostics", e.Diagnostics))
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End()
}

func (s *subscriber) documentStart(ctx context.Context, e events.DocumentStart) {
	parent := ctx
	if rid, ok := reqid.FromContext(ctx); ok {
		if v, ok := s.runs.Load(rid); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
	}
	_, span := s.tracer.Start(parent, "gqlproj."+e.Kind)
	span.SetAttributes(attribute.String("gqlproj.document", e.Name))
	s.docSpan.Store(docKey(ctx, e.Kind, e.Name), span)
}

func (s *subscriber) documentFinish(ctx context.Context, e events.DocumentFinish) {
	v, ok := s.docSpan.LoadAndDelete(docKey(ctx, e.Kind, e.Name))
	if !ok {
		return
	}
	span := v.(trace.Span)
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End()
}
