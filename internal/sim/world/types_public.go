package world

import "cubetick.dev/internal/protocol"

type JoinRequest struct {
	// SessionID is echoed in the WELCOME; the transport picks it.
	SessionID   string
	Name        string
	ObserveOnly bool
	Out         chan []byte
	Resp        chan JoinResponse
}

// JoinResponse carries the WELCOME and the full grid as CHUNK messages. The
// client must write them before anything read from Out.
type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Chunks  []protocol.ChunkMsg
}

type EditEnvelope struct {
	ClientID string
	Edit     protocol.EditMsg
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// IncidentSink receives notable physics events: detonations, torch
// burnouts, queue clears and dropped registrations.
type IncidentSink interface {
	RecordIncident(in Incident)
}

type TickLogEntry struct {
	Tick    uint64         `json:"tick"`
	Joins   []string       `json:"joins,omitempty"`
	Leaves  []string       `json:"leaves,omitempty"`
	Edits   []RecordedEdit `json:"edits,omitempty"`
	Changed int            `json:"changed"`
	Effects map[string]int `json:"effects,omitempty"`
	Paused  bool           `json:"paused,omitempty"`
	Digest  string         `json:"digest"`
}

type RecordedEdit struct {
	ClientID string           `json:"client_id"`
	Edit     protocol.EditMsg `json:"edit"`
	Code     string           `json:"code,omitempty"`
}

type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  string `json:"actor"`
	Action string `json:"action"` // e.g. "SET_BLOCK"
	Pos    [3]int `json:"pos"`
	From   uint16 `json:"from"`
	To     uint16 `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// Incident kinds.
const (
	IncidentDetonation = "DETONATION"
	IncidentBurnout    = "BURNOUT"
	IncidentQueueClear = "QUEUE_CLEAR"
	IncidentDropped    = "DROPPED"
	IncidentTruncated  = "TRUNCATED"
)

type Incident struct {
	Tick  uint64 `json:"tick"`
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}
