package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/components"
	"github.com/pthm-cable/orbitcam/telemetry"
)

// TraceSink receives sampled camera state.
// *telemetry.OutputManager implements it.
type TraceSink interface {
	WriteTrace(records []telemetry.CameraTrace) error
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used by every stage.
func WithLogger(log *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithPerf times every stage with perf and records each tick's counts.
func WithPerf(perf *telemetry.PerfCollector) PipelineOption {
	return func(p *Pipeline) {
		p.perf = perf
	}
}

// WithTrace samples every camera to sink once every `every` ticks.
func WithTrace(sink TraceSink, every int) PipelineOption {
	return func(p *Pipeline) {
		p.traceSink = sink
		p.traceEvery = max(every, 1)
	}
}

// StepStats counts the work done by one Step. The same counts feed the
// perf collector.
type StepStats = telemetry.StepCounts

// Pipeline runs the camera stages in a fixed order once per tick:
// backfill, input, commands, translate_rotation, track, translate_tracking.
// It is not safe for concurrent use.
type Pipeline struct {
	world    *ecs.World
	settings *Settings
	log      *slog.Logger
	perf     *telemetry.PerfCollector

	rig      *Rig
	queue    *CommandQueue
	refresh  *refreshSet
	backfill *BackfillSystem
	input    *InputMapper
	commands *CommandSystem
	resolver *TranslationSystem
	tracking *TrackingSystem
	overlay  *OverlaySystem

	traceSink    TraceSink
	traceEvery   int
	traceFilter  *ecs.Filter2[components.Transform, components.OrbitCamera]
	targetPoints *ecs.Map[components.TargetPoint]
	offsets      *ecs.Map[components.CameraOffset]
	traceBuf     []telemetry.CameraTrace

	tick int64
}

// NewPipeline creates the camera pipeline over w.
func NewPipeline(w *ecs.World, settings *Settings, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		world:    w,
		settings: settings,
		log:      slog.Default(),
		queue:    &CommandQueue{},
		refresh:  newRefreshSet(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.rig = NewRig(w, p.log)
	p.backfill = NewBackfillSystem(w, settings, p.log)
	p.input = NewInputMapper(settings, p.log)
	p.commands = NewCommandSystem(w, settings, p.log)
	p.resolver = NewTranslationSystem(w, p.log)
	p.tracking = NewTrackingSystem(w, settings, p.log)
	p.overlay = NewOverlaySystem(w, settings)

	p.traceFilter = ecs.NewFilter2[components.Transform, components.OrbitCamera](w)
	p.targetPoints = ecs.NewMap[components.TargetPoint](w)
	p.offsets = ecs.NewMap[components.CameraOffset](w)
	return p
}

// Rig returns the relationship API bound to the pipeline's world.
func (p *Pipeline) Rig() *Rig { return p.rig }

// Settings returns the shared settings.
func (p *Pipeline) Settings() *Settings { return p.settings }

// Commands returns the queue drained by the next Step. Hosts may push
// commands directly, e.g. a SetActiveCommand.
func (p *Pipeline) Commands() *CommandQueue { return p.queue }

// Tick returns the number of completed steps.
func (p *Pipeline) Tick() int64 { return p.tick }

// Step advances all cameras by dt seconds. in may be nil.
func (p *Pipeline) Step(dt float64, in InputSource) StepStats {
	var st StepStats
	p.startTick()

	p.refresh.reset()
	p.phase(telemetry.PhaseBackfill)
	st.Backfilled = p.backfill.Update(p.refresh)

	p.phase(telemetry.PhaseInput)
	st.Commands = p.input.Map(dt, in, p.queue)

	p.phase(telemetry.PhaseCommands)
	st.Applied = p.commands.Apply(p.queue.Drain(), p.refresh)

	p.phase(telemetry.PhaseTranslateRotation)
	st.RotationRefreshed = p.resolver.Refresh(p.refresh.entities())
	p.refresh.reset()

	p.phase(telemetry.PhaseTrack)
	p.tracking.Update(dt, p.refresh)

	p.phase(telemetry.PhaseTranslateTracking)
	st.TrackingRefreshed = p.resolver.Refresh(p.refresh.entities())
	p.refresh.reset()

	p.tick++
	if p.traceSink != nil && p.tick%int64(p.traceEvery) == 0 {
		p.phase(telemetry.PhaseTrace)
		st.Traced = p.writeTrace()
	}

	p.endTick(st)
	return st
}

// RefreshAll re-applies the pitch bounds and recomputes every initialized
// camera's position, e.g. after settings were reloaded.
func (p *Pipeline) RefreshAll() int {
	if n := p.commands.ClampPitch(); n > 0 {
		p.log.Info("camera pitch clamped to new bounds", "cameras", n)
	}
	return p.resolver.RefreshAll()
}

// DrawOverlay draws the relation lines through d when enabled. It is
// separate from Step so hosts can call it inside their render pass.
func (p *Pipeline) DrawOverlay(d LineDrawer) int {
	return p.overlay.Draw(d)
}

// Snapshot returns the current state of every camera. The slice is
// reused by the next call.
func (p *Pipeline) Snapshot() []telemetry.CameraTrace {
	active, hasActive := p.settings.Active()

	p.traceBuf = p.traceBuf[:0]
	query := p.traceFilter.Query()
	for query.Next() {
		e := query.Entity()
		tr, orbit := query.Get()

		e3 := camera.ToEuler(tr.Rotation)
		row := telemetry.CameraTrace{
			Tick:   p.tick,
			Camera: uint32(e.ID()),
			Target: uint32(orbit.Target.ID()),
			Active: hasActive && active == e,
			Yaw:    e3.Yaw,
			Pitch:  e3.Pitch,
			Roll:   e3.Roll,
			PosX:   tr.Position.X,
			PosY:   tr.Position.Y,
			PosZ:   tr.Position.Z,
		}
		if p.targetPoints.Has(e) {
			pt := p.targetPoints.Get(e).Vec
			row.PointX, row.PointY, row.PointZ = pt.X, pt.Y, pt.Z
			row.Distance = r3.Norm(r3.Sub(tr.Position, pt))
		}
		if p.offsets.Has(e) {
			row.OffsetZ = p.offsets.Get(e).Z
		}
		p.traceBuf = append(p.traceBuf, row)
	}
	return p.traceBuf
}

// Close stops the translation worker pool.
func (p *Pipeline) Close() {
	p.resolver.Close()
}

func (p *Pipeline) writeTrace() int {
	rows := p.Snapshot()
	if err := p.traceSink.WriteTrace(rows); err != nil {
		p.log.Error("trace write failed", "tick", p.tick, "error", err)
		return 0
	}
	return len(rows)
}

func (p *Pipeline) startTick() {
	if p.perf != nil {
		p.perf.StartTick()
	}
}

func (p *Pipeline) phase(ph telemetry.Phase) {
	if p.perf != nil {
		p.perf.StartPhase(ph)
	}
}

func (p *Pipeline) endTick(st StepStats) {
	if p.perf != nil {
		p.perf.EndTick(st)
	}
}
