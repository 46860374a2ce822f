package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func runTick(pc *PerfCollector, counts StepCounts, phases ...Phase) {
	pc.StartTick()
	for _, ph := range phases {
		pc.StartPhase(ph)
		time.Sleep(50 * time.Microsecond)
	}
	pc.EndTick(counts)
}

func TestPerfCollector_PhaseTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseTrack)
		time.Sleep(20 * time.Microsecond)
		pc.StartPhase(PhaseTranslateTracking)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick(StepCounts{})
	}

	s := pc.Stats()
	if s.Ticks != 5 {
		t.Fatalf("Ticks = %d, want 5", s.Ticks)
	}
	if s.AvgTick <= 0 || s.TicksPerSecond <= 0 {
		t.Errorf("AvgTick = %v, TicksPerSecond = %v; want positive", s.AvgTick, s.TicksPerSecond)
	}
	if s.PhaseRuns[PhaseTrack] != 5 || s.PhaseRuns[PhaseTranslateTracking] != 5 {
		t.Errorf("PhaseRuns = %v", s.PhaseRuns)
	}
	if s.PhaseRuns[PhaseInput] != 0 || s.PhaseAvg[PhaseInput] != 0 {
		t.Errorf("untimed phase recorded: runs %d avg %v", s.PhaseRuns[PhaseInput], s.PhaseAvg[PhaseInput])
	}
	if s.PhasePct[PhaseTranslateTracking] <= s.PhasePct[PhaseTrack] {
		t.Errorf("slow phase %v%% not above fast phase %v%%",
			s.PhasePct[PhaseTranslateTracking], s.PhasePct[PhaseTrack])
	}
}

func TestPerfCollector_RollingWindowCounts(t *testing.T) {
	pc := NewPerfCollector(3)

	counts := []StepCounts{
		{Backfilled: 9, RotationRefreshed: 50},
		{Applied: 2, RotationRefreshed: 1, TrackingRefreshed: 3, Traced: 4},
		{Commands: 3, Applied: 1},
		{Commands: 3, Applied: 3, TrackingRefreshed: 2},
	}
	for _, c := range counts {
		runTick(pc, c, PhaseCommands)
	}

	// The first tick fell out of the window.
	s := pc.Stats()
	tests := []struct {
		name      string
		got, want float64
	}{
		{"ticks", float64(s.Ticks), 3},
		{"backfilled", float64(s.Backfilled), 0},
		{"traced", float64(s.Traced), 4},
		{"max refreshed", float64(s.MaxRefreshed), 4},
		{"avg refreshed", s.AvgRefreshed, 2},
		{"avg applied", s.AvgApplied, 2},
		{"avg commands", s.AvgCommands, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(0)

	s := pc.Stats()
	if s.Ticks != 0 || s.AvgTick != 0 || s.AvgRefreshed != 0 {
		t.Errorf("empty collector stats = %+v", s)
	}
	if len(pc.samples) != 60 {
		t.Errorf("default window = %d, want 60", len(pc.samples))
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	s := pc.Stats()
	if s.Frame < 15*time.Millisecond {
		t.Errorf("frame = %v, want >= 15ms", s.Frame)
	}
	if s.FPS < 20 || s.FPS > 70 {
		t.Errorf("FPS = %v, want roughly 60", s.FPS)
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseBackfill, "backfill"},
		{PhaseTranslateTracking, "translate_tracking"},
		{PhaseTrace, "trace"},
		{Phase(-1), "unknown"},
		{numPhases, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}

func TestPerfStats_ToCSVAndLog(t *testing.T) {
	var s PerfStats
	s.Ticks = 120
	s.AvgTick = 250 * time.Microsecond
	s.AvgRefreshed = 1.5
	s.MaxRefreshed = 7
	s.PhasePct[PhaseBackfill] = 5
	s.PhasePct[PhaseTrack] = 60

	row := s.ToCSV(240)
	if row.WindowEnd != 240 || row.Ticks != 120 || row.AvgTickUS != 250 {
		t.Errorf("row = %+v", row)
	}
	if row.BackfillPct != 5 || row.TrackPct != 60 || row.InputPct != 0 {
		t.Errorf("phase pct = %v/%v/%v, want 5/60/0", row.BackfillPct, row.TrackPct, row.InputPct)
	}
	if row.AvgRefreshed != 1.5 || row.MaxRefreshed != 7 {
		t.Errorf("refreshed = %v/%v, want 1.5/7", row.AvgRefreshed, row.MaxRefreshed)
	}

	var buf bytes.Buffer
	s.LogStats(slog.New(slog.NewTextHandler(&buf, nil)))
	out := buf.String()
	for _, want := range []string{"track_pct=60", "backfill_pct=5", "max_refreshed=7"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "input_pct") {
		t.Errorf("log %q reports an idle phase", out)
	}
}
