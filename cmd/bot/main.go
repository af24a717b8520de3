package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/integrii/flaggy"
	"go.uber.org/zap"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/block"
)

// bot watches a world and, when given a lever, flips it every few ticks.
type bot struct {
	log *zap.Logger

	lever    *[3]int
	facing   int
	every    uint64
	on       bool
	seq      uint64
	clientID string
}

func main() {
	url := "ws://127.0.0.1:8080/v1/ws"
	name := "bot"
	leverPos := ""
	every := 40
	facing := 0
	observe := false
	flaggy.SetName("cubetick-bot")
	flaggy.SetDescription("websocket client that watches ticks and toggles a lever")
	flaggy.String(&url, "u", "url", "Server websocket url")
	flaggy.String(&name, "n", "name", "Client name")
	flaggy.String(&leverPos, "l", "lever", "Lever position x,y,z to toggle")
	flaggy.Int(&every, "e", "every", "Toggle period in ticks")
	flaggy.Int(&facing, "f", "facing", "Side the lever hangs on (0..3)")
	flaggy.Bool(&observe, "o", "observe", "Join observe-only")
	flaggy.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	b := &bot{log: log, every: uint64(max(every, 1)), facing: facing}
	if leverPos != "" {
		p, err := parsePos(leverPos)
		if err != nil {
			log.Fatal("bad --lever", zap.Error(err))
		}
		b.lever = &p
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatal("dial", zap.String("url", url), zap.Error(err))
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      name,
		Capabilities:    protocol.HelloCapabilities{ObserveOnly: observe},
	}
	if err := conn.WriteJSON(hello); err != nil {
		log.Fatal("send HELLO", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		for _, e := range b.handle(msg) {
			if err := conn.WriteJSON(e); err != nil {
				log.Warn("send EDIT", zap.Error(err))
				return
			}
		}
	}
}

// handle reacts to one server message and returns the edits to send.
func (b *bot) handle(msg []byte) []protocol.EditMsg {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return nil
	}
	switch base.Type {
	case protocol.TypeWelcome:
		var w protocol.WelcomeMsg
		if json.Unmarshal(msg, &w) == nil {
			b.clientID = w.ClientID
			b.log.Info("WELCOME", zap.String("client", w.ClientID), zap.Int("tick_rate", w.WorldParams.TickRateHz), zap.Ints("dims", w.WorldParams.Dims[:]))
		}
	case protocol.TypeAck:
		var a protocol.AckMsg
		if json.Unmarshal(msg, &a) == nil && !a.Accepted {
			b.log.Warn("edit rejected", zap.Uint64("seq", a.AckFor), zap.String("code", a.Code), zap.String("message", a.Message))
		}
	case protocol.TypeTick:
		var t protocol.TickMsg
		if json.Unmarshal(msg, &t) != nil {
			return nil
		}
		if len(t.Blocks) > 0 || len(t.Effects) > 0 {
			b.log.Info("tick", zap.Uint64("tick", t.Tick), zap.Int("blocks", len(t.Blocks)), zap.Int("effects", len(t.Effects)))
		}
		if b.lever != nil && t.Tick%b.every == 0 {
			b.on = !b.on
			b.seq++
			lever := block.Lever
			if b.on {
				lever = block.LeverOn
			}
			return []protocol.EditMsg{{
				Type:            protocol.TypeEdit,
				ProtocolVersion: protocol.Version,
				Seq:             b.seq,
				Op:              protocol.OpSwitch,
				Pos:             *b.lever,
				Block:           block.Name(lever),
				Facing:          b.facing,
			}}
		}
	}
	return nil
}

func parsePos(s string) ([3]int, error) {
	var p [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return p, fmt.Errorf("expected x,y,z")
	}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return p, err
		}
		p[i] = n
	}
	return p, nil
}
