package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/haldane-cart/nescore/console"
	"github.com/haldane-cart/nescore/ppu"
)

// game adapts an *console.Emulator to ebiten.Game. Per the core's
// single-threaded cooperative model there is no background goroutine
// driving emulation: ebiten's own Update callback is the one
// scheduling boundary, and it ticks the emulator forward exactly one
// frame per call.
type game struct {
	emu  *console.Emulator
	sink *frameSink
}

func newGame(emu *console.Emulator) *game {
	emu.Reset()
	return &game{emu: emu, sink: newFrameSink()}
}

func (g *game) Update() error {
	g.emu.Tick(g.sink)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.sink.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.NES_RES_WIDTH, ppu.NES_RES_HEIGHT
}
