package world

import "cubetick.dev/internal/sim/physics"

// Totals are the physics counters accumulated over the life of a world,
// surviving snapshot restores.
type Totals struct {
	Ticks        int `json:"ticks"`
	TorchToggles int `json:"torch_toggles"`
	Burnouts     int `json:"burnouts"`
	Detonations  int `json:"detonations"`
	Dropped      int `json:"dropped"`
	QueueClears  int `json:"queue_clears"`
}

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick     uint64 `json:"tick"`
	Clients  int    `json:"clients"`
	Entities int    `json:"entities"`
	Paused   bool   `json:"paused"`
	Enabled  bool   `json:"enabled"`

	QueueDepths QueueDepths `json:"queue_depths"`
	Pending     Pending     `json:"pending"`
	Totals      Totals      `json:"totals"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

// Pending mirrors the live queue and registry sizes of the engine.
type Pending struct {
	Lava    int `json:"lava"`
	Water   int `json:"water"`
	Torches int `json:"torches"`
	Buttons int `json:"buttons"`
	Plates  int `json:"plates"`
	Doors   int `json:"doors"`
	TNT     int `json:"tnt"`
	Fuses   int `json:"fuses"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

// accumulate folds the engine counter deltas since the previous tick into
// the world totals and returns them.
func (w *World) accumulate(s physics.Stats) Totals {
	d := Totals{
		Ticks:        s.Ticks - w.last.Ticks,
		TorchToggles: s.TorchToggles - w.last.TorchToggles,
		Burnouts:     s.Burnouts - w.last.Burnouts,
		Detonations:  s.Detonations - w.last.Detonations,
		Dropped:      s.Dropped - w.last.Dropped,
		QueueClears:  s.QueueClears - w.last.QueueClears,
	}
	w.last = s
	w.totals.Ticks += d.Ticks
	w.totals.TorchToggles += d.TorchToggles
	w.totals.Burnouts += d.Burnouts
	w.totals.Detonations += d.Detonations
	w.totals.Dropped += d.Dropped
	w.totals.QueueClears += d.QueueClears
	return d
}

func (w *World) publishMetrics(nowTick uint64, s physics.Stats, stepMS float64) {
	w.metrics.Store(WorldMetrics{
		Tick:     nowTick,
		Clients:  len(w.clients),
		Entities: len(w.ents.list),
		Paused:   w.paused,
		Enabled:  w.engine.Enabled(),
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		Pending: Pending{
			Lava:    s.LavaQueued,
			Water:   s.WaterQueued,
			Torches: s.TorchesPending,
			Buttons: s.ButtonsPending,
			Plates:  s.PlatesPending,
			Doors:   s.Doors,
			TNT:     s.TNT,
			Fuses:   s.Fuses,
		},
		Totals: w.totals,
		StepMS: stepMS,
	})
}
