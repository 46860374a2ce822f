package telemetry

import (
	"log/slog"
	"time"
)

// Phase is a timed stage of the camera pipeline.
type Phase int

// Pipeline phases, in execution order.
const (
	PhaseBackfill Phase = iota
	PhaseInput
	PhaseCommands
	PhaseTranslateRotation
	PhaseTrack
	PhaseTranslateTracking
	PhaseTrace
	numPhases
)

var phaseNames = [numPhases]string{
	"backfill", "input", "commands",
	"translate_rotation", "track", "translate_tracking",
	"trace",
}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// StepCounts is the work done by one pipeline tick.
type StepCounts struct {
	Backfilled        int
	Commands          int
	Applied           int
	RotationRefreshed int
	TrackingRefreshed int
	Traced            int
}

// Refreshed is the number of camera translations computed in the tick.
func (c StepCounts) Refreshed() int {
	return c.RotationRefreshed + c.TrackingRefreshed
}

type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
	ran    [numPhases]bool
	counts StepCounts
}

// PerfCollector times pipeline ticks over a rolling window of samples.
type PerfCollector struct {
	samples []tickSample
	next    int
	filled  int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over window ticks
// (60 if window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{samples: make([]tickSample, window)}
}

// StartTick begins timing a pipeline tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickSample{}
	p.tickStart = time.Now()
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	if phase < 0 || phase >= numPhases {
		return
	}
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
	p.cur.ran[phase] = true
}

// EndTick records the tick together with the work it did.
func (p *PerfCollector) EndTick(counts StepCounts) {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)
	p.cur.counts = counts

	p.samples[p.next] = p.cur
	p.next = (p.next + 1) % len(p.samples)
	if p.filled < len(p.samples) {
		p.filled++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// RecordFrame measures the time since the previous call, for the viewer.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the current window.
type PerfStats struct {
	Ticks int

	AvgTick time.Duration
	MinTick time.Duration
	MaxTick time.Duration

	// Average phase time over all ticks, and its share of AvgTick.
	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64
	// PhaseRuns counts the ticks a phase ran in; trace only runs every
	// few ticks.
	PhaseRuns [numPhases]int

	// Per-tick averages of pipeline work.
	AvgCommands  float64
	AvgApplied   float64
	AvgRefreshed float64
	// Window totals and peaks.
	Backfilled   int
	Traced       int
	MaxRefreshed int

	TicksPerSecond float64
	Frame          time.Duration
	FPS            float64
}

// Stats aggregates the samples in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	s.Frame = p.frame
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}
	s.Ticks = p.filled

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	var commands, applied, refreshed int
	for i, smp := range p.samples[:p.filled] {
		total += smp.total
		if i == 0 || smp.total < s.MinTick {
			s.MinTick = smp.total
		}
		s.MaxTick = max(s.MaxTick, smp.total)

		for ph := range numPhases {
			phaseSum[ph] += smp.phases[ph]
			if smp.ran[ph] {
				s.PhaseRuns[ph]++
			}
		}

		c := smp.counts
		commands += c.Commands
		applied += c.Applied
		refreshed += c.Refreshed()
		s.Backfilled += c.Backfilled
		s.Traced += c.Traced
		s.MaxRefreshed = max(s.MaxRefreshed, c.Refreshed())
	}

	n := time.Duration(p.filled)
	s.AvgTick = total / n
	for ph := range numPhases {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTick > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTick) * 100
		}
	}
	s.AvgCommands = float64(commands) / float64(p.filled)
	s.AvgApplied = float64(applied) / float64(p.filled)
	s.AvgRefreshed = float64(refreshed) / float64(p.filled)
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// LogStats logs the window to log at Info.
func (s PerfStats) LogStats(log *slog.Logger) {
	attrs := []any{
		"ticks", s.Ticks,
		"avg_tick_us", s.AvgTick.Microseconds(),
		"max_tick_us", s.MaxTick.Microseconds(),
		"avg_refreshed", s.AvgRefreshed,
		"max_refreshed", s.MaxRefreshed,
		"avg_applied", s.AvgApplied,
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph := range numPhases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", float64(int(pct*10))/10)
		}
	}
	log.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd            int64   `csv:"window_end"`
	Ticks                int     `csv:"ticks"`
	AvgTickUS            int64   `csv:"avg_tick_us"`
	MinTickUS            int64   `csv:"min_tick_us"`
	MaxTickUS            int64   `csv:"max_tick_us"`
	FPS                  float64 `csv:"fps"`
	AvgCommands          float64 `csv:"avg_commands"`
	AvgApplied           float64 `csv:"avg_applied"`
	AvgRefreshed         float64 `csv:"avg_refreshed"`
	MaxRefreshed         int     `csv:"max_refreshed"`
	Backfilled           int     `csv:"backfilled"`
	Traced               int     `csv:"traced"`
	BackfillPct          float64 `csv:"backfill_pct"`
	InputPct             float64 `csv:"input_pct"`
	CommandsPct          float64 `csv:"commands_pct"`
	TranslateRotationPct float64 `csv:"translate_rotation_pct"`
	TrackPct             float64 `csv:"track_pct"`
	TranslateTrackingPct float64 `csv:"translate_tracking_pct"`
	TracePct             float64 `csv:"trace_pct"`
}

// ToCSV flattens s into a row for the window ending at tick windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:            windowEnd,
		Ticks:                s.Ticks,
		AvgTickUS:            s.AvgTick.Microseconds(),
		MinTickUS:            s.MinTick.Microseconds(),
		MaxTickUS:            s.MaxTick.Microseconds(),
		FPS:                  s.FPS,
		AvgCommands:          s.AvgCommands,
		AvgApplied:           s.AvgApplied,
		AvgRefreshed:         s.AvgRefreshed,
		MaxRefreshed:         s.MaxRefreshed,
		Backfilled:           s.Backfilled,
		Traced:               s.Traced,
		BackfillPct:          s.PhasePct[PhaseBackfill],
		InputPct:             s.PhasePct[PhaseInput],
		CommandsPct:          s.PhasePct[PhaseCommands],
		TranslateRotationPct: s.PhasePct[PhaseTranslateRotation],
		TrackPct:             s.PhasePct[PhaseTrack],
		TranslateTrackingPct: s.PhasePct[PhaseTranslateTracking],
		TracePct:             s.PhasePct[PhaseTrace],
	}
}
