package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/encoding"
	"cubetick.dev/internal/sim/tuning"
	"cubetick.dev/internal/sim/world"
)

func startWorld(t *testing.T) (*world.World, string) {
	t.Helper()
	w, err := world.New(world.WorldConfig{ID: "ws", Width: 16, Height: 8, Length: 16, TickRateHz: 50}, tuning.Default(), catalogs.Default(), nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	t.Cleanup(cancel)

	ts := httptest.NewServer(NewServer(w, 8, nil).Handler())
	t.Cleanup(ts.Close)
	return w, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readType(t *testing.T, conn *websocket.Conn, want string) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type == want {
			return msg
		}
	}
}

func hello(name string) protocol.HelloMsg {
	return protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: name}
}

func TestServer_HandshakeAndEdit(t *testing.T) {
	w, url := startWorld(t)
	conn := dial(t, url)
	send(t, conn, hello("tester"))

	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(readType(t, conn, protocol.TypeWelcome), &welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if welcome.ClientID == "" || welcome.SessionID == "" {
		t.Fatalf("welcome missing ids: %+v", welcome)
	}
	if welcome.WorldParams.Dims != [3]int{16, 8, 16} {
		t.Fatalf("dims = %v", welcome.WorldParams.Dims)
	}
	for i := 0; i < w.ChunkCount(); i++ {
		raw := readType(t, conn, protocol.TypeChunk)
		if err := protocol.Validate(protocol.TypeChunk, raw); err != nil {
			t.Fatalf("chunk %d: %v", i, err)
		}
		var ch protocol.ChunkMsg
		if err := json.Unmarshal(raw, &ch); err != nil {
			t.Fatalf("chunk %d: %v", i, err)
		}
		ids, err := encoding.DecodeRLE(ch.Data, 16*16*8)
		if err != nil || len(ids) != 16*16*8 {
			t.Fatalf("chunk %d decoded %d cells: %v", i, len(ids), err)
		}
	}

	send(t, conn, protocol.EditMsg{
		Type:            protocol.TypeEdit,
		ProtocolVersion: protocol.Version,
		Seq:             7,
		Op:              protocol.OpSet,
		Pos:             [3]int{3, 6, 3},
		Block:           "GLASS",
	})
	var ack protocol.AckMsg
	if err := json.Unmarshal(readType(t, conn, protocol.TypeAck), &ack); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if ack.AckFor != 7 || !ack.Accepted {
		t.Fatalf("ack = %+v", ack)
	}
}

func TestServer_RejectsMalformedEdit(t *testing.T) {
	_, url := startWorld(t)
	conn := dial(t, url)
	send(t, conn, hello("tester"))
	readType(t, conn, protocol.TypeWelcome)

	// Missing pos and block for SET.
	send(t, conn, map[string]any{"type": "EDIT", "protocol_version": protocol.Version, "seq": 9, "op": "SET"})
	var ack protocol.AckMsg
	if err := json.Unmarshal(readType(t, conn, protocol.TypeAck), &ack); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if ack.Accepted || ack.AckFor != 9 || ack.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("ack = %+v", ack)
	}
}

func TestServer_ClosesWithoutHello(t *testing.T) {
	_, url := startWorld(t)
	conn := dial(t, url)
	send(t, conn, map[string]any{"type": "EDIT", "protocol_version": protocol.Version, "seq": 1, "op": "PAUSE"})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy close, got %v", err)
	}
}
