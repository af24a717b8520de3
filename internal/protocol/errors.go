package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World routing/state.
	ErrWorldBusy   = "E_WORLD_BUSY"
	ErrWorldPaused = "E_WORLD_PAUSED"

	// Edit layer.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrOutOfBounds  = "E_OUT_OF_BOUNDS"
	ErrUnknownBlock = "E_UNKNOWN_BLOCK"
	ErrUnknownOp    = "E_UNKNOWN_OP"
	ErrNoEntity     = "E_NO_ENTITY"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrWorldBusy:       {},
	ErrWorldPaused:     {},
	ErrBadRequest:      {},
	ErrOutOfBounds:     {},
	ErrUnknownBlock:    {},
	ErrUnknownOp:       {},
	ErrNoEntity:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
