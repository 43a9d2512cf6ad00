package ppu

import (
	"testing"

	"github.com/haldane-cart/nescore/irq"
)

// fakeBus is a flat 16KiB address space standing in for console.PpuBus.
type fakeBus struct {
	mem [0x4000]uint8
}

func (b *fakeBus) Read(addr uint16) uint8 {
	return b.mem[addr&0x3FFF]
}

func (b *fakeBus) Write(addr uint16, val uint8) {
	b.mem[addr&0x3FFF] = val
}

type fakeSink struct {
	pixels   [NES_RES_WIDTH * NES_RES_HEIGHT][3]uint8
	frames   int
	rendered int
}

func (s *fakeSink) NewFrame() { s.frames++ }
func (s *fakeSink) SetPixel(x, y int, r, g, b uint8) {
	if x < 0 || x >= NES_RES_WIDTH || y < 0 || y >= NES_RES_HEIGHT {
		return
	}
	s.pixels[y*NES_RES_WIDTH+x] = [3]uint8{r, g, b}
}
func (s *fakeSink) Render() { s.rendered++ }

func newTestPPU() (*PPU, *fakeBus) {
	b := &fakeBus{}
	p := New(b, &irq.Line{})
	p.SetReady()
	return p, b
}

func TestPPUSTATUSClearsVBlankAndLatch(t *testing.T) {
	p, _ := newTestPPU()
	p.status = STATUS_VERTICAL_BLANK
	p.w = 1

	got := p.ReadReg(PPUSTATUS)
	if got&STATUS_VERTICAL_BLANK == 0 {
		t.Fatalf("first read should still report vblank set")
	}
	if p.status&STATUS_VERTICAL_BLANK != 0 {
		t.Errorf("vblank bit not cleared after PPUSTATUS read")
	}
	if p.w != 0 {
		t.Errorf("write latch not reset after PPUSTATUS read")
	}
}

func TestPPUSCROLLLatchOrder(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteReg(PPUSCROLL, 0x11)
	p.WriteReg(PPUSCROLL, 0x22)

	if p.scrollX != 0x11 || p.scrollY != 0x22 {
		t.Errorf("scrollX,scrollY = %#02x,%#02x, want 0x11,0x22", p.scrollX, p.scrollY)
	}
	if p.w != 0 {
		t.Errorf("latch not back to 0 after second write")
	}
}

func TestPPUADDRPPUDATARoundTrip(t *testing.T) {
	p, b := newTestPPU()
	b.mem[0x2100] = 0x99

	p.WriteReg(PPUADDR, 0x21)
	p.WriteReg(PPUADDR, 0x00)
	if p.v != 0x2100 {
		t.Fatalf("v = %#04x, want 0x2100", p.v)
	}

	// first PPUDATA read returns stale buffered byte, not the target
	_ = p.ReadReg(PPUDATA)
	got := p.ReadReg(PPUDATA)
	if got != 0x99 {
		t.Errorf("buffered PPUDATA read = %#02x, want 0x99", got)
	}
}

func TestPPUDATAWriteIncrementsByMode(t *testing.T) {
	p, b := newTestPPU()
	p.WriteReg(PPUADDR, 0x20)
	p.WriteReg(PPUADDR, 0x00)
	p.WriteReg(PPUDATA, 0x42)

	if b.mem[0x2000] != 0x42 {
		t.Fatalf("write through PPUDATA not applied")
	}
	if p.v != 0x2001 {
		t.Errorf("v = %#04x, want 0x2001 (increment-by-1 mode)", p.v)
	}

	p.ctrl |= CTRL_VRAM_ADD_INCREMENT
	p.WriteReg(PPUDATA, 0x01)
	if p.v != 0x2021 {
		t.Errorf("v = %#04x, want 0x2021 (increment-by-32 mode)", p.v)
	}
}

func TestRegisterWritesDroppedBeforeReady(t *testing.T) {
	b := &fakeBus{}
	p := New(b, &irq.Line{})

	p.WriteReg(PPUCTRL, 0xFF)
	if p.ctrl != 0 {
		t.Errorf("PPUCTRL write accepted before SetReady")
	}

	p.SetReady()
	p.WriteReg(PPUCTRL, 0xFF)
	if p.ctrl != 0xFF {
		t.Errorf("PPUCTRL write dropped after SetReady")
	}
}

func TestVBlankRaisesNMIAtScanline241(t *testing.T) {
	p, _ := newTestPPU()
	p.ctrl |= CTRL_GENERATE_NMI
	nmi := &irq.Line{}
	p.nmi = nmi

	sink := &fakeSink{}
	for i := 0; i < 242; i++ {
		p.Step(sink)
	}

	if !nmi.Pending() {
		t.Fatalf("NMI not raised by scanline 241")
	}
	if p.status&STATUS_VERTICAL_BLANK == 0 {
		t.Errorf("vblank status bit not set at scanline 241")
	}
}

func TestFrameFlushAtScanline261(t *testing.T) {
	p, _ := newTestPPU()
	sink := &fakeSink{}

	for i := 0; i < 262; i++ {
		p.Step(sink)
	}

	if sink.rendered != 1 {
		t.Errorf("Render called %d times, want 1", sink.rendered)
	}
	if sink.frames != 1 {
		t.Errorf("NewFrame called %d times, want 1", sink.frames)
	}
	if p.sl != -1 {
		t.Errorf("scanline counter = %d, want -1 after wraparound", p.sl)
	}
	if p.status&STATUS_VERTICAL_BLANK != 0 {
		t.Errorf("vblank still set after pre-render line")
	}
}

func TestBackgroundTileRendersPaletteColor(t *testing.T) {
	p, b := newTestPPU()
	p.mask = MASK_SHOW_BG | MASK_SHOW_BG_LEFT

	// nametable entry 0 at $2000 selects tile 1.
	b.mem[0x2000] = 0x01
	// attribute byte 0 selects palette 0 for every quadrant.
	b.mem[0x23C0] = 0x00
	// tile 1 pattern: every pixel in row 0 has low bitplane bit set.
	b.mem[0x0010] = 0xFF
	b.mem[0x0018] = 0x00
	// palette 0 color 1.
	b.mem[0x3F01] = 0x16

	sink := &fakeSink{}
	p.Step(sink) // scanline 0

	got := sink.pixels[0]
	want := SYSTEM_PALETTE[0x16]
	if got != want {
		t.Errorf("pixel (0,0) = %v, want %v", got, want)
	}
	if p.bgOpacity[0] == 0 {
		t.Errorf("opaque background pixel not recorded in bgOpacity")
	}
}

func TestSpriteZeroHit(t *testing.T) {
	p, b := newTestPPU()
	p.mask = MASK_SHOW_BG | MASK_SHOW_SPRITES | MASK_SHOW_BG_LEFT | MASK_SHOW_SPRITES_LEFT

	b.mem[0x2000] = 0x01
	for i := uint16(0x10); i < 0x18; i++ {
		b.mem[i] = 0xFF
	}
	b.mem[0x3F01] = 0x01

	// sprite 0's stored y is the display row minus one; y=0 puts it on
	// scanline 1 (sprites can never appear on scanline 0).
	p.oam[0] = 0x00 // y
	p.oam[1] = 0x01 // tile id 1
	p.oam[2] = 0x00 // palette 0, front priority
	p.oam[3] = 0x00 // x = 0
	b.mem[0x3F11] = 0x01

	sink := &fakeSink{}
	p.Step(sink) // scanline 0
	p.Step(sink) // scanline 1

	if p.status&STATUS_SPRITE_0_HIT == 0 {
		t.Errorf("sprite zero hit not set")
	}
}
