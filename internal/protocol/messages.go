package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
	// Observe-only clients receive ticks but their edits are refused.
	ObserveOnly bool `json:"observe_only,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	ClientID        string      `json:"client_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
	Catalog         DigestRef   `json:"catalog"`
	TuningDigest    string      `json:"tuning_digest,omitempty"`
}

type WorldParams struct {
	TickRateHz int    `json:"tick_rate_hz"`
	ChunkSize  [3]int `json:"chunk_size"`
	Dims       [3]int `json:"dims"`
	Seed       int64  `json:"seed"`
	Paused     bool   `json:"paused"`
}

type DigestRef struct {
	Digest string   `json:"digest"`
	Count  int      `json:"count"`
	Names  []string `json:"names,omitempty"`
}

// CHUNK (server -> client): one full chunk column, sent after WELCOME and
// whenever a client has to resync.
type ChunkMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	CX              int    `json:"cx"`
	CZ              int    `json:"cz"`
	Height          int    `json:"height"`
	Digest          string `json:"digest"`
	Encoding        string `json:"encoding"`
	Data            string `json:"data"`
}

// Edit operations.
const (
	OpSet     = "SET"
	OpTorch   = "TORCH"
	OpSwitch  = "SWITCH"
	OpFuse    = "FUSE"
	OpExplode = "EXPLODE"
	OpPause   = "PAUSE"
	OpEnable  = "ENABLE"
	OpSpawn   = "SPAWN"
	OpMove    = "MOVE"
	OpDespawn = "DESPAWN"
)

// EDIT (client -> server)
type EditMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
	Op              string `json:"op"`

	Pos    [3]int `json:"pos,omitempty"`
	Block  string `json:"block,omitempty"`
	Face   string `json:"face,omitempty"`
	Facing int    `json:"facing,omitempty"`
	Power  int    `json:"power,omitempty"`
	On     bool   `json:"on,omitempty"`

	Entity  int        `json:"entity,omitempty"`
	Kind    string     `json:"kind,omitempty"`
	Creeper bool       `json:"creeper,omitempty"`
	To      [3]float64 `json:"to,omitempty"`
}

// ACK (server -> client)
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          uint64 `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	ServerTick      uint64 `json:"server_tick"`
}

// TICK (server -> client): everything that changed during one tick.
type TickMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	Digest          string       `json:"digest,omitempty"`
	Blocks          []BlockDelta `json:"blocks"`
	Effects         []EffectMsg  `json:"effects"`
	Entities        []EntityMsg  `json:"entities,omitempty"`
}

type BlockDelta struct {
	Pos   [3]int `json:"pos"`
	Block string `json:"block"`
}

type EffectMsg struct {
	Kind     string     `json:"kind"`
	Pos      [3]int     `json:"pos,omitempty"`
	At       [3]float64 `json:"at,omitempty"`
	Cue      string     `json:"cue,omitempty"`
	Entity   int        `json:"entity,omitempty"`
	Amount   int        `json:"amount,omitempty"`
	Velocity [3]float64 `json:"velocity,omitempty"`
	Message  string     `json:"message,omitempty"`
}

type EntityMsg struct {
	ID      int        `json:"id"`
	Kind    string     `json:"kind"`
	Creeper bool       `json:"creeper,omitempty"`
	HP      int        `json:"hp"`
	Pos     [3]float64 `json:"pos"`
}
