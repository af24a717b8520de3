package world

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/physics"
	"cubetick.dev/internal/sim/tuning"
)

// newTestWorld returns a 16x8x16 world with a stone floor at y=0 and air
// above it.
func newTestWorld(t *testing.T) *World {
	t.Helper()
	tun := tuning.Default()
	tun.RandomTicksPerChunk = 0
	w, err := New(WorldConfig{ID: "test", Width: 16, Height: 8, Length: 16, Seed: 7}, tun, catalogs.Default(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for y := 0; y < 8; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				b := block.Air
				if y == 0 {
					b = block.Stone
				}
				w.store.SetBlock(x, y, z, b)
			}
		}
	}
	w.engine.Load()
	return w
}

type testClient struct {
	id  string
	out chan []byte
}

func joinClient(t *testing.T, w *World, observeOnly bool) testClient {
	t.Helper()
	out := make(chan []byte, 64)
	resp := make(chan JoinResponse, 1)
	w.StepOnce([]JoinRequest{{Name: "t", ObserveOnly: observeOnly, Out: out, Resp: resp}}, nil, nil)
	jr := <-resp
	if jr.Welcome.ClientID == "" {
		t.Fatalf("welcome without client id")
	}
	drain(out)
	return testClient{id: jr.Welcome.ClientID, out: out}
}

func drain(out chan []byte) [][]byte {
	var msgs [][]byte
	for {
		select {
		case b := <-out:
			msgs = append(msgs, b)
		default:
			return msgs
		}
	}
}

func edit(c testClient, seq uint64, e protocol.EditMsg) EditEnvelope {
	e.Type = protocol.TypeEdit
	e.ProtocolVersion = protocol.Version
	e.Seq = seq
	return EditEnvelope{ClientID: c.id, Edit: e}
}

func acks(t *testing.T, msgs [][]byte) map[uint64]protocol.AckMsg {
	t.Helper()
	out := map[uint64]protocol.AckMsg{}
	for _, raw := range msgs {
		base, err := protocol.DecodeBase(raw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type != protocol.TypeAck {
			continue
		}
		var a protocol.AckMsg
		if err := json.Unmarshal(raw, &a); err != nil {
			t.Fatalf("ack: %v", err)
		}
		out[a.AckFor] = a
	}
	return out
}

func lastTick(t *testing.T, msgs [][]byte) protocol.TickMsg {
	t.Helper()
	var tm protocol.TickMsg
	found := false
	for _, raw := range msgs {
		base, _ := protocol.DecodeBase(raw)
		if base.Type != protocol.TypeTick {
			continue
		}
		if err := json.Unmarshal(raw, &tm); err != nil {
			t.Fatalf("tick: %v", err)
		}
		found = true
	}
	if !found {
		t.Fatalf("no TICK among %d messages", len(msgs))
	}
	return tm
}

func steps(w *World, n int) {
	for i := 0; i < n; i++ {
		w.StepOnce(nil, nil, nil)
	}
}

func TestWorld_JoinSendsWelcomeAndChunks(t *testing.T) {
	w := newTestWorld(t)
	out := make(chan []byte, 8)
	resp := make(chan JoinResponse, 1)
	w.StepOnce([]JoinRequest{{SessionID: "s1", Name: "viewer", Out: out, Resp: resp}}, nil, nil)
	jr := <-resp

	if jr.Welcome.ClientID != "C1" || jr.Welcome.WorldParams.Dims != [3]int{16, 8, 16} {
		t.Fatalf("welcome = %+v", jr.Welcome)
	}
	if len(jr.Chunks) != 1 || jr.Chunks[0].Encoding != "RLE" {
		t.Fatalf("chunks = %+v", jr.Chunks)
	}
	if err := protocol.ValidateValue(protocol.TypeWelcome, jr.Welcome); err != nil {
		t.Fatalf("welcome invalid: %v", err)
	}
	if err := protocol.ValidateValue(protocol.TypeChunk, jr.Chunks[0]); err != nil {
		t.Fatalf("chunk invalid: %v", err)
	}
	if w.Metrics().Clients != 1 {
		t.Fatalf("metrics clients = %d", w.Metrics().Clients)
	}
}

func TestWorld_SetEditIsAckedAndBroadcast(t *testing.T) {
	w := newTestWorld(t)
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{edit(c, 1, protocol.EditMsg{
		Op: protocol.OpSet, Pos: [3]int{3, 1, 3}, Block: block.Name(block.Stone),
	})})
	msgs := drain(c.out)

	a := acks(t, msgs)[1]
	if !a.Accepted || a.Code != "" {
		t.Fatalf("ack = %+v", a)
	}
	tm := lastTick(t, msgs)
	found := false
	for _, d := range tm.Blocks {
		if d.Pos == [3]int{3, 1, 3} && d.Block == block.Name(block.Stone) {
			found = true
		}
	}
	if !found {
		t.Fatalf("tick blocks %+v missing the edit", tm.Blocks)
	}
	if tm.Digest != w.Digest() {
		t.Fatalf("tick digest %s != world digest %s", tm.Digest, w.Digest())
	}
}

func TestWorld_RestoredCellIsNotBroadcast(t *testing.T) {
	w := newTestWorld(t)
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{
		edit(c, 1, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{3, 1, 3}, Block: block.Name(block.Stone)}),
		edit(c, 2, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{5, 1, 5}, Block: block.Name(block.Glass)}),
		edit(c, 3, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{3, 1, 3}, Block: block.Name(block.Air)}),
	})
	tm := lastTick(t, drain(c.out))
	if len(tm.Blocks) != 1 || tm.Blocks[0].Pos != [3]int{5, 1, 5} || tm.Blocks[0].Block != block.Name(block.Glass) {
		t.Fatalf("tick blocks = %+v, want only the glass", tm.Blocks)
	}

	w.grid.reset()
	w.grid.SetBlock(7, 1, 7, block.Air)
	w.grid.SetBlock(7, 0, 7, block.Air)
	w.grid.SetBlock(7, 0, 7, block.Stone)
	if d := w.grid.deltas(); len(d) != 0 {
		t.Fatalf("deltas = %+v, want none", d)
	}
}

func TestWorld_EditRejections(t *testing.T) {
	w := newTestWorld(t)
	c := joinClient(t, w, false)
	viewer := joinClient(t, w, true)

	cases := []struct {
		env  EditEnvelope
		code string
	}{
		{edit(c, 1, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{1, 1, 1}, Block: "NOT_A_BLOCK"}), protocol.ErrUnknownBlock},
		{edit(c, 2, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{1, 9, 1}, Block: block.Name(block.Stone)}), protocol.ErrOutOfBounds},
		{edit(c, 3, protocol.EditMsg{Op: protocol.OpFuse, Pos: [3]int{1, 1, 1}}), protocol.ErrBadRequest},
		{edit(c, 4, protocol.EditMsg{Op: protocol.OpMove, Entity: 9, To: [3]float64{1, 1, 1}}), protocol.ErrNoEntity},
		{edit(c, 5, protocol.EditMsg{Op: protocol.OpSwitch, Pos: [3]int{1, 1, 1}, Block: block.Name(block.Stone)}), protocol.ErrBadRequest},
		{edit(c, 6, protocol.EditMsg{Op: "DIG", Pos: [3]int{1, 1, 1}}), protocol.ErrUnknownOp},
		{edit(c, 7, protocol.EditMsg{Op: protocol.OpSpawn, Entity: 1, To: [3]float64{1, 20, 1}}), protocol.ErrOutOfBounds},
	}
	var envs []EditEnvelope
	for _, tc := range cases {
		envs = append(envs, tc.env)
	}
	w.StepOnce(nil, nil, envs)
	got := acks(t, drain(c.out))
	for _, tc := range cases {
		a, ok := got[tc.env.Edit.Seq]
		if !ok {
			t.Fatalf("seq %d: no ack", tc.env.Edit.Seq)
		}
		if a.Accepted || a.Code != tc.code {
			t.Fatalf("seq %d: ack = %+v, want code %s", tc.env.Edit.Seq, a, tc.code)
		}
	}

	w.StepOnce(nil, nil, []EditEnvelope{edit(viewer, 1, protocol.EditMsg{
		Op: protocol.OpSet, Pos: [3]int{1, 1, 1}, Block: block.Name(block.Stone),
	})})
	if a := acks(t, drain(viewer.out))[1]; a.Accepted || a.Code != protocol.ErrBadRequest {
		t.Fatalf("observe-only ack = %+v", a)
	}
	if w.store.Block(1, 1, 1) != block.Air {
		t.Fatalf("observe-only edit was applied")
	}
}

func TestWorld_EditBudget(t *testing.T) {
	w := newTestWorld(t)
	w.cfg.MaxEditsPerTick = 1
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{
		edit(c, 1, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{1, 1, 1}, Block: block.Name(block.Stone)}),
		edit(c, 2, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{2, 1, 1}, Block: block.Name(block.Stone)}),
	})
	got := acks(t, drain(c.out))
	if !got[1].Accepted || got[2].Code != protocol.ErrWorldBusy {
		t.Fatalf("acks = %+v", got)
	}
	if w.store.Block(2, 1, 1) != block.Air {
		t.Fatalf("edit past the budget was applied")
	}
}

func TestWorld_PausedRefusesGridEdits(t *testing.T) {
	w := newTestWorld(t)
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{
		edit(c, 1, protocol.EditMsg{Op: protocol.OpPause, On: true}),
		edit(c, 2, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{1, 1, 1}, Block: block.Name(block.Stone)}),
	})
	got := acks(t, drain(c.out))
	if !got[1].Accepted || got[2].Code != protocol.ErrWorldPaused {
		t.Fatalf("acks = %+v", got)
	}
	if !w.Paused() || !w.Metrics().Paused {
		t.Fatalf("world not paused")
	}
}

func TestWorld_WaterSpreadsAcrossTicks(t *testing.T) {
	w := newTestWorld(t)
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{edit(c, 1, protocol.EditMsg{
		Op: protocol.OpSet, Pos: [3]int{8, 1, 8}, Block: block.Name(block.Water),
	})})
	if block.IsWater(w.store.Block(9, 1, 8)) {
		t.Fatalf("water spread before its delay")
	}
	steps(w, 10)
	for _, p := range [][3]int{{9, 1, 8}, {7, 1, 8}, {8, 1, 9}, {8, 1, 7}} {
		if !block.IsWater(w.store.Block(p[0], p[1], p[2])) {
			t.Fatalf("no water at %v after 10 ticks", p)
		}
	}
	if w.store.Block(8, 0, 8) != block.Stone {
		t.Fatalf("water replaced the floor")
	}
}

type incidentRecorder struct{ got []Incident }

func (r *incidentRecorder) RecordIncident(in Incident) { r.got = append(r.got, in) }

func TestWorld_FuseDetonatesAndRecordsIncident(t *testing.T) {
	w := newTestWorld(t)
	rec := &incidentRecorder{}
	w.SetIncidentSink(rec)
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{
		edit(c, 1, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{8, 1, 8}, Block: block.Name(block.TNT)}),
		edit(c, 2, protocol.EditMsg{Op: protocol.OpFuse, Pos: [3]int{8, 1, 8}}),
	})
	if a := acks(t, drain(c.out))[2]; !a.Accepted {
		t.Fatalf("fuse ack = %+v", a)
	}
	steps(w, 30)
	if w.store.Block(8, 1, 8) != block.TNT {
		t.Fatalf("tnt gone before the fuse ran out")
	}
	steps(w, 40)
	if w.store.Block(8, 1, 8) != block.Air {
		t.Fatalf("tnt still present after the fuse")
	}
	if w.Metrics().Totals.Detonations != 1 {
		t.Fatalf("detonations = %d", w.Metrics().Totals.Detonations)
	}
	if len(rec.got) != 1 || rec.got[0].Kind != IncidentDetonation || rec.got[0].Count != 1 {
		t.Fatalf("incidents = %+v", rec.got)
	}
}

func TestWorld_BlastDamagesAndChainsCreepers(t *testing.T) {
	w := newTestWorld(t)
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{
		edit(c, 1, protocol.EditMsg{Op: protocol.OpSpawn, Entity: 1, Kind: "mob", To: [3]float64{10.5, 1.5, 8.5}}),
		edit(c, 2, protocol.EditMsg{Op: protocol.OpSpawn, Entity: 2, Kind: "mob", Creeper: true, To: [3]float64{8.5, 2.5, 8.5}}),
		edit(c, 3, protocol.EditMsg{Op: protocol.OpSpawn, Entity: 3, Kind: "player", To: [3]float64{14.5, 1.5, 14.5}}),
	})
	drain(c.out)

	w.StepOnce(nil, nil, []EditEnvelope{edit(c, 4, protocol.EditMsg{Op: protocol.OpExplode, Pos: [3]int{8, 1, 8}})})
	tm := lastTick(t, drain(c.out))

	if w.ents.find(2) >= 0 {
		t.Fatalf("creeper survived the blast")
	}
	if w.Metrics().Totals.Detonations != 2 {
		t.Fatalf("detonations = %d, want the blast plus the creeper", w.Metrics().Totals.Detonations)
	}
	i := w.ents.find(1)
	if i < 0 {
		// Two blasts may kill the mob outright.
		if _, ok := w.ents.hp[1]; ok {
			t.Fatalf("dead mob still has hp")
		}
	} else {
		if w.ents.hp[1] >= 20 {
			t.Fatalf("mob hp = %d, want damage", w.ents.hp[1])
		}
		if w.ents.list[i].Pos.X() <= 10.5 {
			t.Fatalf("mob not pushed away: %v", w.ents.list[i].Pos)
		}
	}
	if w.ents.find(3) < 0 || w.ents.hp[3] != 20 {
		t.Fatalf("distant player affected")
	}

	kinds := map[string]int{}
	for _, fx := range tm.Effects {
		kinds[fx.Kind]++
	}
	if kinds["sound"] != 2 || kinds["creeper_chain"] != 1 {
		t.Fatalf("effect kinds = %v", kinds)
	}
	if err := protocol.ValidateValue(protocol.TypeTick, tm); err != nil {
		t.Fatalf("tick invalid: %v", err)
	}
}

type tickRecorder struct{ got []TickLogEntry }

func (r *tickRecorder) WriteTick(e TickLogEntry) error { r.got = append(r.got, e); return nil }

type auditRecorder struct{ got []AuditEntry }

func (r *auditRecorder) WriteAudit(e AuditEntry) error { r.got = append(r.got, e); return nil }

func TestWorld_TickAndAuditLogs(t *testing.T) {
	w := newTestWorld(t)
	tl := &tickRecorder{}
	al := &auditRecorder{}
	w.SetTickLogger(tl)
	w.SetAuditLogger(al)
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{edit(c, 1, protocol.EditMsg{
		Op: protocol.OpSet, Pos: [3]int{2, 1, 2}, Block: block.Name(block.Stone),
	})})

	if len(tl.got) != 2 {
		t.Fatalf("tick entries = %d, want 2", len(tl.got))
	}
	if len(tl.got[0].Joins) != 1 || tl.got[0].Joins[0] != c.id {
		t.Fatalf("join entry = %+v", tl.got[0])
	}
	e := tl.got[1]
	if e.Tick != 1 || len(e.Edits) != 1 || e.Changed != 1 || e.Digest == "" {
		t.Fatalf("edit entry = %+v", e)
	}
	if len(al.got) != 1 || al.got[0].Action != "SET_BLOCK" || al.got[0].To != uint16(block.Stone) || al.got[0].Actor != c.id {
		t.Fatalf("audit = %+v", al.got)
	}
}

func TestWorld_SwitchFacingFollowsBlock(t *testing.T) {
	w := newTestWorld(t)
	c := joinClient(t, w, false)

	w.StepOnce(nil, nil, []EditEnvelope{
		edit(c, 1, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{5, 1, 4}, Block: block.Name(block.Stone)}),
		edit(c, 2, protocol.EditMsg{Op: protocol.OpSwitch, Pos: [3]int{4, 1, 4}, Block: block.Name(block.Lever), Facing: 2}),
	})
	if got := w.facings.Facing(4, 1, 4); got != 2 {
		t.Fatalf("facing = %d, want 2", got)
	}
	snap := w.ExportSnapshot(w.CurrentTick())
	if len(snap.Facings) != 1 || snap.Facings[0].Facing != 2 {
		t.Fatalf("snapshot facings = %+v", snap.Facings)
	}

	w.StepOnce(nil, nil, []EditEnvelope{edit(c, 3, protocol.EditMsg{
		Op: protocol.OpSet, Pos: [3]int{4, 1, 4}, Block: block.Name(block.Air),
	})})
	if _, ok := w.facings[physics.Pos{X: 4, Y: 1, Z: 4}]; ok {
		t.Fatalf("facing kept after the lever was removed")
	}
}

func TestWorld_SlowClientIsResynced(t *testing.T) {
	w := newTestWorld(t)
	out := make(chan []byte, 2)
	resp := make(chan JoinResponse, 1)
	w.StepOnce([]JoinRequest{{Name: "slow", Out: out, Resp: resp}}, nil, nil)
	id := (<-resp).Welcome.ClientID

	steps(w, 2)
	if !w.clients[id].stale {
		t.Fatalf("client with a full queue not marked stale")
	}
	w.StepOnce(nil, nil, nil)
	msgs := drain(out)
	if len(msgs) != 2 {
		t.Fatalf("resync left %d messages, want chunk + tick", len(msgs))
	}
	if base, _ := protocol.DecodeBase(msgs[0]); base.Type != protocol.TypeChunk {
		t.Fatalf("first resync message is %s", base.Type)
	}
	if base, _ := protocol.DecodeBase(msgs[1]); base.Type != protocol.TypeTick {
		t.Fatalf("second resync message is %s", base.Type)
	}
	if w.clients[id].stale {
		t.Fatalf("client still stale after resync")
	}
}

func TestWorld_RunStopsOnStop(t *testing.T) {
	w := newTestWorld(t)
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	resp := make(chan JoinResponse, 1)
	w.Join() <- JoinRequest{Name: "live", Out: make(chan []byte, 64), Resp: resp}
	select {
	case jr := <-resp:
		if jr.Welcome.ClientID == "" {
			t.Fatalf("empty client id")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("join not served")
	}

	w.Stop()
	w.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return")
	}
}
