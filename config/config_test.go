package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Camera.DefaultCameraOffset != [3]float64{0, 0, -15} {
		t.Errorf("default camera offset = %v, want [0 0 -15]", cfg.Camera.DefaultCameraOffset)
	}
	if cfg.Camera.CamSpeed != 1.0 {
		t.Errorf("cam speed = %v, want 1", cfg.Camera.CamSpeed)
	}
	if cfg.Camera.MouseSpeed != 0.005 {
		t.Errorf("mouse speed = %v, want 0.005", cfg.Camera.MouseSpeed)
	}
	if cfg.Keys.Up != "ArrowUp" || cfg.Keys.RollClockwise != "KeyE" || cfg.Keys.RollCounterclockwise != "KeyQ" {
		t.Errorf("unexpected default keys: %+v", cfg.Keys)
	}
	if cfg.Camera.DefaultDamping != 0 {
		t.Errorf("default damping = %v, want 0 (disabled)", cfg.Camera.DefaultDamping)
	}

	want := 89 * math.Pi / 180
	if math.Abs(cfg.Derived.PitchMax-want) > 1e-12 || math.Abs(cfg.Derived.PitchMin+want) > 1e-12 {
		t.Errorf("derived pitch bounds = [%v, %v], want +-%v", cfg.Derived.PitchMin, cfg.Derived.PitchMax, want)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
camera:
  default_damping: 5
  damping_mode: exponential
keys:
  up: KeyW
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Camera.DefaultDamping != 5 {
		t.Errorf("damping = %v, want 5", cfg.Camera.DefaultDamping)
	}
	if cfg.Camera.DampingMode != "exponential" {
		t.Errorf("damping mode = %q, want exponential", cfg.Camera.DampingMode)
	}
	if cfg.Keys.Up != "KeyW" {
		t.Errorf("up key = %q, want KeyW", cfg.Keys.Up)
	}
	// Untouched fields keep their defaults
	if cfg.Keys.Down != "ArrowDown" {
		t.Errorf("down key = %q, want ArrowDown", cfg.Keys.Down)
	}
	if cfg.Camera.CamSpeed != 1.0 {
		t.Errorf("cam speed = %v, want 1", cfg.Camera.CamSpeed)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data string
	}{
		{"inverted pitch", "camera:\n  pitch_min_deg: 10\n  pitch_max_deg: -10\n"},
		{"pitch past straight up", "camera:\n  pitch_max_deg: 120\n"},
		{"pitch past straight down", "camera:\n  pitch_min_deg: -91\n"},
		{"negative damping", "camera:\n  default_damping: -1\n"},
		{"unknown mode", "camera:\n  damping_mode: cubic\n"},
		{"bad yaml", "camera: [\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, "bad.yaml", tc.data)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Defaults()
	cfg.Camera.DefaultDamping = 3
	cfg.Debug.ShowRelationLines = true

	path := filepath.Join(dir, "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if loaded.Camera.DefaultDamping != 3 || !loaded.Debug.ShowRelationLines {
		t.Errorf("snapshot lost values: %+v %+v", loaded.Camera, loaded.Debug)
	}
}

func TestInitAndCfg(t *testing.T) {
	defer Set(nil)

	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Cfg().Screen.Width != 1280 {
		t.Errorf("screen width = %d, want 1280", Cfg().Screen.Width)
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "camera:\n  cam_speed: 1\n")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "config.yaml", "camera:\n  cam_speed: 2.5\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-w.Configs:
			if cfg.Camera.CamSpeed == 2.5 {
				return
			}
		case err := <-w.Errors:
			t.Logf("watch error: %v", err)
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
