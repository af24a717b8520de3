package world

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/encoding"
	"cubetick.dev/internal/sim/world/terrain/store"
)

type clientState struct {
	id          string
	name        string
	observeOnly bool
	out         chan []byte

	// stale is set when a message could not be queued; the client gets the
	// full grid again before the next TICK.
	stale bool
}

func (w *World) handleJoin(nowTick uint64, req JoinRequest) string {
	w.nextClient++
	id := fmt.Sprintf("C%d", w.nextClient)
	if req.Out != nil {
		w.clients[id] = &clientState{id: id, name: req.Name, observeOnly: req.ObserveOnly, out: req.Out}
	}
	if req.Resp != nil {
		welcome := w.welcome(nowTick, id)
		welcome.SessionID = req.SessionID
		req.Resp <- JoinResponse{Welcome: welcome, Chunks: w.chunkMsgs(nowTick)}
	}
	w.log.Info("client joined", zap.String("client", id), zap.String("name", req.Name), zap.Bool("observe_only", req.ObserveOnly))
	return id
}

func (w *World) handleLeave(id string) {
	if _, ok := w.clients[id]; !ok {
		return
	}
	delete(w.clients, id)
	w.log.Info("client left", zap.String("client", id))
}

func (w *World) welcome(nowTick uint64, clientID string) protocol.WelcomeMsg {
	names := make([]string, 0, len(w.cat.Defs))
	for i := 0; i < block.Count; i++ {
		if w.cat.Defined(block.ID(i)) {
			names = append(names, block.Name(block.ID(i)))
		}
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ClientID:        clientID,
		Tick:            nowTick,
		WorldParams: protocol.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			ChunkSize:  [3]int{store.ChunkSize, w.cfg.Height, store.ChunkSize},
			Dims:       [3]int{w.cfg.Width, w.cfg.Height, w.cfg.Length},
			Seed:       w.cfg.Seed,
			Paused:     w.paused,
		},
		Catalog:      protocol.DigestRef{Digest: w.cat.DefsDigest, Count: len(names), Names: names},
		TuningDigest: w.tuningDigest,
	}
}

// ChunkCount is the number of CHUNK messages a join or resync sends.
func (w *World) ChunkCount() int { return len(w.store.ChunkKeys()) }

func (w *World) chunkMsgs(nowTick uint64) []protocol.ChunkMsg {
	keys := w.store.ChunkKeys()
	out := make([]protocol.ChunkMsg, 0, len(keys))
	for _, k := range keys {
		ch := w.store.Chunk(k)
		d := ch.Digest()
		out = append(out, protocol.ChunkMsg{
			Type:            protocol.TypeChunk,
			ProtocolVersion: protocol.Version,
			Tick:            nowTick,
			CX:              ch.CX,
			CZ:              ch.CZ,
			Height:          ch.Height,
			Digest:          hex.EncodeToString(d[:]),
			Encoding:        "RLE",
			Data:            encoding.EncodeRLE(ch.Blocks),
		})
	}
	return out
}

func (w *World) sendAck(nowTick uint64, clientID string, seq uint64, code, msg string) {
	c := w.clients[clientID]
	if c == nil {
		return
	}
	ack := protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          seq,
		Accepted:        code == "",
		Code:            code,
		Message:         msg,
		ServerTick:      nowTick,
	}
	b, err := json.Marshal(ack)
	if err != nil {
		return
	}
	w.send(c, b)
}

func (w *World) send(c *clientState, b []byte) {
	select {
	case c.out <- b:
	default:
		if !c.stale {
			w.log.Debug("client queue full, marking stale", zap.String("client", c.id))
		}
		c.stale = true
	}
}

// resync drops whatever the client has queued and sends the full grid. The
// client stays stale when the grid does not fit in its queue.
func (w *World) resync(nowTick uint64, c *clientState) {
	msgs := w.chunkMsgs(nowTick)
	if len(msgs) > cap(c.out) {
		return
	}
	for {
		select {
		case <-c.out:
			continue
		default:
		}
		break
	}
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return
		}
		select {
		case c.out <- b:
		default:
			return
		}
	}
	c.stale = false
}

func (w *World) broadcast(nowTick uint64, msg protocol.TickMsg) {
	if len(w.clients) == 0 {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		w.log.Error("marshal tick", zap.Error(err))
		return
	}
	for _, c := range w.clients {
		if c.stale {
			w.resync(nowTick, c)
			if c.stale {
				continue
			}
		}
		w.send(c, b)
	}
}
