package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"

	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/world"
)

// glyph returns the cell character for b, coloured with au.
func glyph(au aurora.Aurora, b block.ID) string {
	switch {
	case b == block.Air:
		return au.BrightBlack(".").String()
	case b == block.LitDust:
		return au.BrightRed("=").String()
	case b == block.Dust:
		return au.Red("-").String()
	case block.IsTorchOn(b):
		return au.BrightYellow("i").String()
	case block.IsTorchOff(b):
		return au.Yellow("!").String()
	case block.IsButton(b):
		return au.Cyan("b").String()
	case block.IsLever(b):
		return au.Cyan("/").String()
	case block.IsPlate(b):
		return au.Cyan("_").String()
	case block.IsIronDoor(b):
		return au.White("D").String()
	case block.IsWater(b):
		return au.Blue("~").String()
	case block.IsLava(b):
		return au.BrightRed("~").BgRed().String()
	case b == block.TNT:
		return au.Red("T").BgWhite().String()
	case b == block.Bedrock:
		return au.BrightBlack("%").String()
	case block.IsFalling(b):
		return au.Yellow(":").String()
	}
	return au.White("#").String()
}

// printSlice draws the y layer of w, one row per z, followed by the dust
// power along the scenario row.
func printSlice(out io.Writer, au aurora.Aurora, w *world.World, tick uint64, y int) {
	st := w.Store()
	width, _, length := st.Dims()
	fmt.Fprintf(out, "%s y=%d\n", au.Green(fmt.Sprintf("tick %d", tick)), y)
	for z := 0; z < length; z++ {
		var b strings.Builder
		for x := 0; x < width; x++ {
			b.WriteString(glyph(au, st.Block(x, y, z)))
		}
		fmt.Fprintf(out, "  %s\n", b.String())
	}

	var p strings.Builder
	for x := 0; x < width; x++ {
		if lvl := w.Engine().Power(x, y, row); lvl > 0 {
			p.WriteString(fmt.Sprintf("%x", lvl))
		} else {
			p.WriteByte(' ')
		}
	}
	if s := strings.TrimRight(p.String(), " "); s != "" {
		fmt.Fprintf(out, "  %s %s\n", s, au.BrightBlack("power"))
	}
}
