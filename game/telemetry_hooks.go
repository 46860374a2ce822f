package game

import "github.com/pthm-cable/orbitcam/config"

// flushPerf logs and records perf stats once per perf window.
func (g *Game) flushPerf() {
	if !g.headless {
		g.perf.RecordFrame()
	}

	tick := g.Tick()
	if tick == 0 || tick%int64(g.cfg.Telemetry.PerfWindow) != 0 {
		return
	}

	stats := g.perf.Stats()
	if g.logPerf {
		stats.LogStats(g.log)
	}
	if err := g.output.WritePerf(stats, tick); err != nil {
		g.log.Error("failed to write perf", "error", err)
	}
}

// pollConfig applies a reloaded config file to the live settings.
// The active camera and existing per-camera components are kept; new
// defaults only reach cameras spawned afterwards.
func (g *Game) pollConfig() {
	if g.watcher == nil {
		return
	}
	select {
	case cfg := <-g.watcher.Configs:
		g.applyConfig(cfg)
	case err := <-g.watcher.Errors:
		g.log.Warn("config reload failed, keeping current settings", "error", err)
	default:
	}
}

func (g *Game) applyConfig(cfg *config.Config) {
	if err := g.settings.Apply(cfg); err != nil {
		g.log.Warn("config rejected", "error", err)
		return
	}
	config.Set(cfg)
	g.cfg = cfg
	g.keys = newViewerKeys(cfg.Keys, g.log)
	n := g.pipeline.RefreshAll()
	g.log.Info("config reloaded", "cameras_refreshed", n, "damping_mode", g.settings.DampingMode)
}
