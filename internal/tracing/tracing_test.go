package tracing

import (
	"context"
	"testing"
)

func TestNewExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	tests := []struct {
		name    string
		wantNil bool
		wantErr bool
	}{
		{name: "", wantNil: true},
		{name: ExporterNone, wantNil: true},
		{name: ExporterStdout},
		{name: ExporterOTLP, wantErr: true},
		{name: "jaeger", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewExporter(context.Background(), tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for exporter %q", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("new exporter: %v", err)
			}
			if (exp == nil) != tt.wantNil {
				t.Fatalf("unexpected exporter: %v", exp)
			}
		})
	}
}

func TestSetupNone(t *testing.T) {
	shutdown, err := Setup(context.Background(), ExporterNone, "pathsummarizer", "test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
