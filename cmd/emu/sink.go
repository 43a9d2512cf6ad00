package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/haldane-cart/nescore/ppu"
)

// frameSink accumulates one PPU frame into an RGBA buffer and hands
// it to ebiten for display. It implements ppu.FrameSink.
type frameSink struct {
	buf *image.RGBA
	img *ebiten.Image
}

func newFrameSink() *frameSink {
	return &frameSink{
		buf: image.NewRGBA(image.Rect(0, 0, ppu.NES_RES_WIDTH, ppu.NES_RES_HEIGHT)),
		img: ebiten.NewImage(ppu.NES_RES_WIDTH, ppu.NES_RES_HEIGHT),
	}
}

func (s *frameSink) NewFrame() {
	// Lines are only fully drawn while background rendering is
	// enabled, so clear the previous frame rather than let it show.
	for i := range s.buf.Pix {
		s.buf.Pix[i] = 0
	}
}

func (s *frameSink) SetPixel(x, y int, r, g, b uint8) {
	if x < 0 || x >= ppu.NES_RES_WIDTH || y < 0 || y >= ppu.NES_RES_HEIGHT {
		return
	}
	s.buf.Set(x, y, color.RGBA{r, g, b, 0xFF})
}

func (s *frameSink) Render() {
	s.img.WritePixels(s.buf.Pix)
}
