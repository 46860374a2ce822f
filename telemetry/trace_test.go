package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/orbitcam/config"
)

func TestTraceWriter_HeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTraceWriter(&buf)

	if err := tw.Write(nil); err != nil {
		t.Fatalf("empty write: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty batch wrote %q", buf.String())
	}

	if err := tw.Write([]CameraTrace{{Tick: 1, Camera: 7, OffsetZ: -15}}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := tw.Write([]CameraTrace{{Tick: 2, Camera: 7}, {Tick: 2, Camera: 8}}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "tick,camera,target,active,yaw") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(buf.String(), "tick,") != 1 {
		t.Error("header written more than once")
	}
	if tw.Rows() != 3 {
		t.Errorf("Rows = %d, want 3", tw.Rows())
	}
}

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}

	// A nil manager accepts every call.
	if err := om.WriteTrace([]CameraTrace{{Tick: 1}}); err != nil {
		t.Errorf("WriteTrace: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 1); err != nil {
		t.Errorf("WritePerf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOutputManager_WritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteConfig(config.Defaults()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.WriteTrace([]CameraTrace{{Tick: 10, Camera: 1}}); err != nil {
		t.Fatalf("WriteTrace: %v", err)
	}
	for i := int64(1); i <= 2; i++ {
		if err := om.WritePerf(PerfStats{}, i*120); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"config.yaml", "trace.csv", "perf.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(perf)), "\n")
	if len(lines) != 3 {
		t.Errorf("perf.csv has %d lines, want header + 2 rows", len(lines))
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}
}
