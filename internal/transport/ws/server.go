package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/world"
)

// World is the part of *world.World the endpoint talks to.
type World interface {
	CurrentTick() uint64
	ChunkCount() int
	Inbox() chan<- world.EditEnvelope
	Join() chan<- world.JoinRequest
	Leave() chan<- string
}

type Server struct {
	world World
	log   *zap.Logger

	// queue is the minimum outbound queue per client.
	queue int

	upgrader websocket.Upgrader
}

func NewServer(w World, queue int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queue <= 0 {
		queue = 64
	}
	return &Server{
		world: w,
		log:   logger,
		queue: queue,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Debug("upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		session := uuid.NewString()
		log := s.log.With(zap.String("session", session))

		clientID, out := s.handshake(ctx, conn, session, log)
		if clientID == "" {
			return
		}
		log = log.With(zap.String("client", clientID))

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						log.Debug("write failed", zap.Error(err))
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			edit, ok := s.decodeEdit(msg, out, log)
			if !ok {
				continue
			}
			select {
			case s.world.Inbox() <- world.EditEnvelope{ClientID: clientID, Edit: edit}:
			case <-ctx.Done():
			}
		}

		s.leave(clientID)
		log.Info("connection closed")
	}
}

// decodeEdit validates one inbound frame. Frames that are not a valid EDIT are
// answered with an ACK carrying E_PROTO_BAD_REQUEST when a seq can be read.
func (s *Server) decodeEdit(msg []byte, out chan []byte, log *zap.Logger) (protocol.EditMsg, bool) {
	var edit protocol.EditMsg
	base, err := protocol.DecodeBase(msg)
	if err == nil && base.Type != protocol.TypeEdit {
		err = fmt.Errorf("unexpected message type %q", base.Type)
	}
	if err == nil {
		err = protocol.Validate(protocol.TypeEdit, msg)
	}
	if err == nil {
		err = json.Unmarshal(msg, &edit)
	}
	if err == nil && edit.ProtocolVersion != protocol.Version {
		err = fmt.Errorf("bad protocol_version %q", edit.ProtocolVersion)
	}
	if err == nil {
		return edit, true
	}

	log.Debug("rejected frame", zap.Error(err))
	var seq struct {
		Seq uint64 `json:"seq"`
	}
	_ = json.Unmarshal(msg, &seq)
	ack, merr := json.Marshal(protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          seq.Seq,
		Code:            protocol.ErrProtoBadRequest,
		Message:         err.Error(),
		ServerTick:      s.world.CurrentTick(),
	})
	if merr == nil {
		select {
		case out <- ack:
		default:
		}
	}
	return protocol.EditMsg{}, false
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn, session string, log *zap.Logger) (clientID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", nil
	}
	if err := protocol.Validate(protocol.TypeHello, msg); err != nil {
		log.Debug("invalid HELLO", zap.Error(err))
		closeWith(conn, "invalid HELLO")
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", nil
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	// The queue must hold a full resync plus a few ticks.
	maxQ := max(s.queue, hello.Capabilities.MaxQueue, s.world.ChunkCount()+16)
	out = make(chan []byte, maxQ)

	respCh := make(chan world.JoinResponse, 1)
	select {
	case s.world.Join() <- world.JoinRequest{
		SessionID:   session,
		Name:        hello.ClientName,
		ObserveOnly: hello.Capabilities.ObserveOnly,
		Out:         out,
		Resp:        respCh,
	}:
	case <-ctx.Done():
		return "", nil
	}
	var resp world.JoinResponse
	select {
	case resp = <-respCh:
	case <-ctx.Done():
		return "", nil
	}

	// WELCOME and the grid go out before anything queued on out.
	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.leave(resp.Welcome.ClientID)
		return "", nil
	}
	for _, c := range resp.Chunks {
		if err := writeJSON(conn, c); err != nil {
			s.leave(resp.Welcome.ClientID)
			return "", nil
		}
	}
	log.Info("client connected", zap.String("client", resp.Welcome.ClientID), zap.String("name", hello.ClientName), zap.Int("chunks", len(resp.Chunks)))
	return resp.Welcome.ClientID, out
}

// leave unregisters a client; the world may already be stopped.
func (s *Server) leave(clientID string) {
	select {
	case s.world.Leave() <- clientID:
	case <-time.After(time.Second):
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
