package physics

import (
	"testing"

	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/tuning"
)

func TestCheckBurnout_TripsAtThreshold(t *testing.T) {
	tun := tuning.Default()
	tun.Redstone.BurnoutThreshold = 4
	tun.Redstone.BurnoutWindow = 10
	e := New(Options{Info: catalogs.Default(), Tuning: tun})
	p := Pos{X: 1, Y: 1, Z: 1}

	for i := 1; i < 4; i++ {
		if e.checkBurnout(p) {
			t.Fatalf("burned out after %d toggles", i)
		}
	}
	if !e.checkBurnout(p) {
		t.Fatalf("expected burnout on the 4th toggle inside the window")
	}

	e.tick += 11
	if e.checkBurnout(p) {
		t.Fatalf("window did not reset after it expired")
	}
}

func TestCountdown_FiresExpiredOnly(t *testing.T) {
	e := New(Options{Info: catalogs.Default(), Tuning: tuning.Default()})
	e.buttons.Put(Pos{X: 1}, 1)
	e.buttons.Put(Pos{X: 2}, 3)
	e.buttons.Put(Pos{X: 3}, 1)

	var fired []Pos
	e.countdown(e.buttons, func(p Pos) { fired = append(fired, p) })
	if len(fired) != 2 {
		t.Fatalf("fired %v, want two entries", fired)
	}
	if e.buttons.Len() != 1 || !e.buttons.Has(Pos{X: 2}) {
		t.Fatalf("remaining keys = %v, want only x=2", e.buttons.Keys())
	}
	if n, _ := e.buttons.Get(Pos{X: 2}); n != 2 {
		t.Fatalf("remaining ticks = %d, want 2", n)
	}
}
