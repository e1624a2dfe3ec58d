package registry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsRecorderExports(t *testing.T) {
	recorder := NewExpvarMetricsRecorder("")
	if recorder.Name() == "" {
		t.Fatal("expected generated expvar name")
	}
	ctx := context.Background()
	recorder.Observe(ctx, "record_acquisition", true, 20*time.Millisecond)
	recorder.Observe(ctx, "record_acquisition", false, 5*time.Millisecond)
	recorder.Observe(ctx, "", true, time.Millisecond)

	snap := recorder.Snapshot()
	stats := snap.Operations["record_acquisition"]
	if stats.Success != 1 || stats.Errors != 1 {
		t.Fatalf("outcomes not counted: %+v", stats)
	}
	if stats.TotalMS < 24 {
		t.Fatalf("latency not aggregated: %+v", stats)
	}
	if _, ok := snap.Operations[""]; ok {
		t.Fatal("empty operation should be ignored")
	}
}

func TestPrometheusMetricsRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("construct recorder: %v", err)
	}
	ctx := context.Background()
	recorder.Observe(ctx, "status", true, 2*time.Millisecond)
	recorder.Observe(ctx, "status", true, 3*time.Millisecond)
	recorder.Observe(ctx, "record_disposal", false, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "assetregistry_operations_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			var op, status string
			for _, label := range m.GetLabel() {
				switch label.GetName() {
				case "operation":
					op = label.GetValue()
				case "status":
					status = label.GetValue()
				}
			}
			counts[op+"/"+status] = m.GetCounter().GetValue()
		}
	}
	if counts["status/success"] != 2 {
		t.Fatalf("status successes = %v, want 2", counts["status/success"])
	}
	if counts["record_disposal/error"] != 1 {
		t.Fatalf("disposal errors = %v, want 1", counts["record_disposal/error"])
	}
}

func TestPrometheusMetricsRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestJSONTraceTracerExports(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "record_acquisition")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "record_disposal")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	out := buf.String()
	if !strings.Contains(out, `"operation":"record_disposal"`) || !strings.Contains(out, `"status":"error"`) {
		t.Fatalf("encoded output missing span data: %s", out)
	}
}
