package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// ExportConfig is shared by the trace and metric exporters.
type ExportConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is an OTLP/HTTP collector as host:port.
	Endpoint string
	Insecure bool
}

func defaultExport(serviceName string) ExportConfig {
	return ExportConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
	}
}

// resource tags every exported span and metric with the service identity.
// Schemaless attributes keep the merge with the SDK default conflict free.
func (c ExportConfig) resource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(c.ServiceVersion),
			attribute.String("deployment.environment", c.Environment),
		),
	)
}

// Span names.
const (
	SpanStepPull     = "traversal.pull"
	SpanGraphSONLoad = "graphson.load"
	SpanCommit       = "graph.commit"
)

// Attribute keys.
const (
	AttrService   = "graphkit.service"
	AttrOperation = "graphkit.operation"
	AttrStepID    = "step.id"
	AttrStepKind  = "step.kind"
	AttrBulk      = "traverser.bulk"
	AttrExhausted = "traversal.exhausted"
	AttrStatus    = "status"
	AttrErrorCode = "error.code"
	AttrElapsedMs = "elapsed_ms"
)
