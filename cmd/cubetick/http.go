package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cubetick.dev/internal/persistence/indexdb"
	"cubetick.dev/internal/sim/world"
)

func stateHandler(w *world.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			WorldID string             `json:"world_id"`
			Tick    uint64             `json:"tick"`
			Metrics world.WorldMetrics `json:"metrics"`
		}{
			WorldID: w.ID(),
			Tick:    w.CurrentTick(),
			Metrics: w.Metrics(),
		}
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// metricsHandler writes the Prometheus text exposition format.
func metricsHandler(w *world.World, idx *indexdb.SQLiteIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		id := w.ID()
		m := w.Metrics()

		gauge := func(name, help string) {
			fmt.Fprintf(rw, "# HELP cubetick_%s %s\n", name, help)
			fmt.Fprintf(rw, "# TYPE cubetick_%s gauge\n", name)
		}
		counter := func(name, help string) {
			fmt.Fprintf(rw, "# HELP cubetick_%s %s\n", name, help)
			fmt.Fprintf(rw, "# TYPE cubetick_%s counter\n", name)
		}
		b2i := func(b bool) int {
			if b {
				return 1
			}
			return 0
		}

		gauge("world_tick", "Current world tick.")
		fmt.Fprintf(rw, "cubetick_world_tick{world=%q} %d\n", id, m.Tick)
		gauge("world_clients", "Connected clients.")
		fmt.Fprintf(rw, "cubetick_world_clients{world=%q} %d\n", id, m.Clients)
		gauge("world_entities", "Tracked entities.")
		fmt.Fprintf(rw, "cubetick_world_entities{world=%q} %d\n", id, m.Entities)
		gauge("world_paused", "1 while the world is paused.")
		fmt.Fprintf(rw, "cubetick_world_paused{world=%q} %d\n", id, b2i(m.Paused))
		gauge("physics_enabled", "1 while physics runs.")
		fmt.Fprintf(rw, "cubetick_physics_enabled{world=%q} %d\n", id, b2i(m.Enabled))

		gauge("world_queue_depth", "Channel backlog depth.")
		fmt.Fprintf(rw, "cubetick_world_queue_depth{world=%q,queue=%q} %d\n", id, "inbox", m.QueueDepths.Inbox)
		fmt.Fprintf(rw, "cubetick_world_queue_depth{world=%q,queue=%q} %d\n", id, "join", m.QueueDepths.Join)
		fmt.Fprintf(rw, "cubetick_world_queue_depth{world=%q,queue=%q} %d\n", id, "leave", m.QueueDepths.Leave)

		gauge("physics_pending", "Live physics queue and registry sizes.")
		for _, p := range []struct {
			name string
			n    int
		}{
			{"lava", m.Pending.Lava},
			{"water", m.Pending.Water},
			{"torches", m.Pending.Torches},
			{"buttons", m.Pending.Buttons},
			{"plates", m.Pending.Plates},
			{"doors", m.Pending.Doors},
			{"tnt", m.Pending.TNT},
			{"fuses", m.Pending.Fuses},
		} {
			fmt.Fprintf(rw, "cubetick_physics_pending{world=%q,queue=%q} %d\n", id, p.name, p.n)
		}

		counter("physics_total", "Physics counters since world creation.")
		for _, c := range []struct {
			name string
			n    int
		}{
			{"ticks", m.Totals.Ticks},
			{"torch_toggles", m.Totals.TorchToggles},
			{"burnouts", m.Totals.Burnouts},
			{"detonations", m.Totals.Detonations},
			{"dropped", m.Totals.Dropped},
			{"queue_clears", m.Totals.QueueClears},
		} {
			fmt.Fprintf(rw, "cubetick_physics_total{world=%q,counter=%q} %d\n", id, c.name, c.n)
		}

		gauge("world_step_ms", "Last tick step duration in milliseconds.")
		fmt.Fprintf(rw, "cubetick_world_step_ms{world=%q} %.3f\n", id, m.StepMS)

		if idx != nil {
			st := idx.Stats()
			gauge("index_queue_depth", "Pending index writes.")
			fmt.Fprintf(rw, "cubetick_index_queue_depth{world=%q} %d\n", id, st.QueueDepth)
			counter("index_dropped_total", "Index writes dropped under backpressure.")
			fmt.Fprintf(rw, "cubetick_index_dropped_total{world=%q,stream=%q} %d\n", id, "tick", st.DropTickTotal)
			fmt.Fprintf(rw, "cubetick_index_dropped_total{world=%q,stream=%q} %d\n", id, "audit", st.DropAuditTotal)
			fmt.Fprintf(rw, "cubetick_index_dropped_total{world=%q,stream=%q} %d\n", id, "incident", st.DropIncidentTotal)
			fmt.Fprintf(rw, "cubetick_index_dropped_total{world=%q,stream=%q} %d\n", id, "snapshot", st.DropSnapshotTotal)
		}
	}
}
