package world

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingEdits []EditEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	w.log.Info("world loop started", zap.Int("tick_rate_hz", w.cfg.TickRateHz), zap.Uint64("tick", w.tick.Load()))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingEdits = append(pendingEdits, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingEdits)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingEdits = pendingEdits[:0]
		}
	}
}

func (w *World) Stop() { w.once.Do(func() { close(w.stop) }) }

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, edits []EditEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.step(joins, leaves, edits)
	return tick, w.store.Digest()
}

// step runs one tick: membership changes, then client edits in arrival
// order, then the physics tick, then fan-out and bookkeeping.
func (w *World) step(joins []JoinRequest, leaves []string, edits []EditEnvelope) {
	start := time.Now()
	nowTick := w.tick.Load()
	w.grid.reset()
	w.fx = w.fx[:0]

	entry := TickLogEntry{Tick: nowTick}
	for _, id := range leaves {
		w.handleLeave(id)
		entry.Leaves = append(entry.Leaves, id)
	}
	for _, req := range joins {
		entry.Joins = append(entry.Joins, w.handleJoin(nowTick, req))
	}

	for i, env := range edits {
		var err error
		if i >= w.cfg.MaxEditsPerTick {
			err = reject(protocol.ErrWorldBusy, "more than %d edits this tick", w.cfg.MaxEditsPerTick)
		} else {
			err = w.applyEdit(nowTick, env.ClientID, env.Edit)
		}
		code, msg := errorCode(err)
		if code == protocol.ErrInternal {
			w.log.Error("edit failed", zap.String("client", env.ClientID), zap.String("op", env.Edit.Op), zap.Error(err))
		}
		w.sendAck(nowTick, env.ClientID, env.Edit.Seq, code, msg)
		entry.Edits = append(entry.Edits, RecordedEdit{ClientID: env.ClientID, Edit: env.Edit, Code: code})
	}

	w.engine.Tick()
	w.applyEffects(0)

	digest := w.store.Digest()
	msg := w.tickMsg(nowTick, digest)
	w.broadcast(nowTick, msg)

	entry.Changed = len(msg.Blocks)
	entry.Paused = w.paused
	entry.Digest = digest
	if len(w.fx) > 0 {
		entry.Effects = map[string]int{}
		for _, fx := range w.fx {
			entry.Effects[fx.Kind.String()]++
		}
	}
	if w.tickLogger != nil {
		if err := w.tickLogger.WriteTick(entry); err != nil {
			w.log.Warn("tick log write failed", zap.Error(err))
		}
	}

	s := w.engine.Stats()
	truncated := s.DroppedEvents - w.last.DroppedEvents
	w.recordIncidents(nowTick, w.accumulate(s), truncated)

	if n := w.cfg.SnapshotEveryTicks; n > 0 && w.snapshotSink != nil && nowTick > 0 && nowTick%uint64(n) == 0 {
		select {
		case w.snapshotSink <- w.ExportSnapshot(nowTick):
		default:
			w.log.Warn("snapshot sink backpressure", zap.Uint64("tick", nowTick))
		}
	}

	w.tick.Add(1)
	w.publishMetrics(nowTick, s, float64(time.Since(start).Microseconds())/1000)
}

func (w *World) tickMsg(nowTick uint64, digest string) protocol.TickMsg {
	changed := w.grid.deltas()
	msg := protocol.TickMsg{
		Type:            protocol.TypeTick,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		Digest:          digest,
		Blocks:          make([]protocol.BlockDelta, 0, len(changed)),
		Effects:         make([]protocol.EffectMsg, 0, len(w.fx)),
		Entities:        w.ents.messages(),
	}
	for _, p := range changed {
		msg.Blocks = append(msg.Blocks, protocol.BlockDelta{
			Pos:   [3]int{p.X, p.Y, p.Z},
			Block: block.Name(w.store.Block(p.X, p.Y, p.Z)),
		})
	}
	for _, fx := range w.fx {
		msg.Effects = append(msg.Effects, effectMsg(fx))
	}
	return msg
}

func effectMsg(fx physics.Effect) protocol.EffectMsg {
	m := protocol.EffectMsg{Kind: fx.Kind.String()}
	switch fx.Kind {
	case physics.EffectSound:
		m.Pos = [3]int{fx.Pos.X, fx.Pos.Y, fx.Pos.Z}
		m.Cue = string(fx.Cue)
	case physics.EffectParticles:
		m.Pos = [3]int{fx.Pos.X, fx.Pos.Y, fx.Pos.Z}
		m.At = [3]float64{fx.At.X(), fx.At.Y(), fx.At.Z()}
		m.Amount = fx.Amount
	case physics.EffectDamage:
		m.Entity = fx.Entity
		m.Amount = fx.Amount
	case physics.EffectKnockback:
		m.Entity = fx.Entity
		m.Velocity = [3]float64{fx.Velocity.X(), fx.Velocity.Y(), fx.Velocity.Z()}
	case physics.EffectCreeperChain:
		m.Entity = fx.Entity
	case physics.EffectWarning:
		m.Message = fx.Message
	}
	return m
}

func (w *World) recordIncidents(nowTick uint64, d Totals, truncated int) {
	if w.incidents == nil {
		return
	}
	for _, in := range []Incident{
		{Tick: nowTick, Kind: IncidentDetonation, Count: d.Detonations},
		{Tick: nowTick, Kind: IncidentBurnout, Count: d.Burnouts},
		{Tick: nowTick, Kind: IncidentQueueClear, Count: d.QueueClears},
		{Tick: nowTick, Kind: IncidentDropped, Count: d.Dropped},
		{Tick: nowTick, Kind: IncidentTruncated, Count: truncated},
	} {
		if in.Count > 0 {
			w.incidents.RecordIncident(in)
		}
	}
}
