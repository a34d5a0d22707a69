// Package observability exports traversal and loader telemetry over OTLP.
//
// Spans are opened per step pull (see package instrument), per GraphSON load
// and per commit. A command wraps its work in an Operation:
//
//	ctx, op := observability.StartOperation(ctx, "graphkit", "load", metrics)
//	stats, err := graphson.ReadGraph(ctx, g, in)
//	op.End(ctx, err)
//
// Nothing is exported until InitTracer and InitMeter install providers;
// until then the global no-op providers discard everything.
package observability
