package physics

import (
	"go.uber.org/zap"

	"cubetick.dev/internal/sim/block"
)

// change is one cell mutation waiting to be dispatched. depth counts the
// generations of events between it and the external change that started the
// chain; quiet events skip redstone re-propagation because an outer
// propagation already settled the network they belong to.
type change struct {
	pos      Pos
	old, now block.ID
	depth    int
	quiet    bool
}

var adj6 = [6]Pos{
	{X: -1}, {X: 1},
	{Y: -1}, {Y: 1},
	{Z: -1}, {Z: 1},
}

var h4 = [4]Pos{
	{X: -1}, {X: 1},
	{Z: -1}, {Z: 1},
}

func (p Pos) plus(o Pos) Pos { return Pos{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z} }

// OnBlockChanged must be called by the host after every mutation it makes to
// the grid outside the engine. Mutations made by the engine itself are
// tracked internally.
func (e *Engine) OnBlockChanged(x, y, z int, old, now block.ID) {
	if !e.enabled || !e.loaded {
		return
	}
	p := Pos{X: x, Y: y, Z: z}
	if !e.in(p) {
		return
	}
	e.enqueue(change{pos: p, old: old, now: now})
	e.drain()
}

func (e *Engine) enqueue(c change) {
	if c.depth > e.tun.Events.MaxChainDepth {
		e.stats.DroppedEvents++
		e.log.Debug("change chain truncated",
			zap.Int("x", c.pos.X), zap.Int("y", c.pos.Y), zap.Int("z", c.pos.Z),
			zap.Int("depth", c.depth))
		return
	}
	e.events = append(e.events, c)
}

// drain dispatches queued changes in FIFO order until none are left. Calls
// made while a drain is already running return at once; the running loop
// picks up whatever they queued.
func (e *Engine) drain() {
	if e.draining {
		return
	}
	e.draining = true
	for e.head < len(e.events) {
		c := e.events[e.head]
		e.head++
		e.dispatch(c)
	}
	e.events = e.events[:0]
	e.head = 0
	e.curDepth, e.curQuiet = 0, false
	e.draining = false
}

func (e *Engine) dispatch(c change) {
	e.stats.Events++
	e.curDepth, e.curQuiet = c.depth, c.quiet
	p := c.pos

	now := c.now
	if now == block.Air {
		if liq, ok := e.edgeLiquid(p); ok {
			e.grid.SetBlock(p.X, p.Y, p.Z, liq)
			now = liq
		}
	}

	if now == block.Air {
		if h := e.on.delete[c.old]; h != nil {
			h(e, p, c.old)
		}
	} else if e.at(p) == now {
		if h := e.on.place[now]; h != nil {
			h(e, p, now)
		}
	}
	e.activateNeighbours(p)
}

func (e *Engine) activateNeighbours(p Pos) {
	for _, d := range adj6 {
		n := p.plus(d)
		if !e.in(n) {
			continue
		}
		b := e.grid.Block(n.X, n.Y, n.Z)
		if h := e.on.activate[b]; h != nil {
			h(e, n, b)
		}
	}
}

// edgeLiquid returns the still liquid that refills an emptied border cell.
func (e *Engine) edgeLiquid(p Pos) (block.ID, bool) {
	edge := e.tun.Edge
	if edge.Liquid == "" || p.Y < edge.MinY || p.Y >= edge.MaxY {
		return block.Air, false
	}
	if p.X != 0 && p.Z != 0 && p.X != e.w-1 && p.Z != e.l-1 {
		return block.Air, false
	}
	if edge.Liquid == "lava" {
		return block.StillLava, true
	}
	return block.StillWater, true
}

func (e *Engine) quiet() bool { return e.propagating || e.curQuiet }
