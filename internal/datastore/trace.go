package datastore

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracedBackend struct {
	next   Backend
	tracer trace.Tracer
}

// WithTracing wraps b so every call produces a span named datastore.select
// or datastore.insert.
func WithTracing(b Backend, tracer trace.Tracer) Backend {
	if tracer == nil {
		return b
	}
	return &tracedBackend{next: b, tracer: tracer}
}

func (t *tracedBackend) Select(ctx context.Context, q Query, dest interface{}) error {
	attrs := []attribute.KeyValue{
		attribute.String("db.table", q.Table),
		attribute.String("db.operation", "select"),
		attribute.Int("db.filters", len(q.Filters)),
	}
	if q.Order != nil {
		attrs = append(attrs, attribute.String("db.order", q.Order.Column))
	}

	ctx, span := t.tracer.Start(ctx, "datastore.select", trace.WithAttributes(attrs...))
	defer span.End()

	err := t.next.Select(ctx, q, dest)
	record(span, err)
	return err
}

func (t *tracedBackend) Insert(ctx context.Context, table string, rows []json.RawMessage) error {
	ctx, span := t.tracer.Start(ctx, "datastore.insert", trace.WithAttributes(
		attribute.String("db.table", table),
		attribute.String("db.operation", "insert"),
		attribute.Int("db.rows", len(rows)),
	))
	defer span.End()

	err := t.next.Insert(ctx, table, rows)
	record(span, err)
	return err
}

func record(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, Message(err, "datastore error"))
}
