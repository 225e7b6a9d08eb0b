// Package observability provides the OpenTelemetry tracing helpers used by
// authkit. It never installs a tracer provider or exporter; spans go to the
// global provider unless the caller hands in its own.
//
//	ctx, span := observability.StartSpan(ctx, tracer, observability.SpanLogin,
//	    attribute.String(observability.AttrScheme, "customer"))
//	defer func() { observability.EndSpan(span, err) }()
package observability
