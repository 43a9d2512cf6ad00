// Package ppu implements the NES's 2C02 Picture Processing Unit:
// register latches, OAM, and the scanline-driven background/sprite
// renderer.
package ppu

import (
	"github.com/haldane-cart/nescore/irq"
)

const (
	VRAM_SIZE    = 2048
	OAM_SIZE     = 256
	PALETTE_SIZE = 32
)

// Display constants
const (
	NES_RES_WIDTH  = 256
	NES_RES_HEIGHT = 240
)

// Register addresses, as exposed through the CPU's $2000-$2007 window.
const (
	PPUCTRL   = 0x2000
	PPUMASK   = 0x2001
	PPUSTATUS = 0x2002
	OAMADDR   = 0x2003
	OAMDATA   = 0x2004
	PPUSCROLL = 0x2005
	PPUADDR   = 0x2006
	PPUDATA   = 0x2007
)

// PPUCTRL bit flags
const (
	CTRL_NAMETABLE1             = 1
	CTRL_NAMETABLE2             = 1 << 1
	CTRL_VRAM_ADD_INCREMENT     = 1 << 2
	CTRL_SPRITE_PATTERN_ADDR    = 1 << 3
	CTRL_BACKGROUND_PATTERN_ADDR = 1 << 4
	CTRL_SPRITE_SIZE            = 1 << 5
	CTRL_MASTER_SLAVE_SELECT    = 1 << 6
	CTRL_GENERATE_NMI           = 1 << 7
)

const (
	CTRL_INCR_ACROSS = 1
	CTRL_INCR_DOWN   = 32
)

// PPUMASK bit flags
const (
	MASK_GREYSCALE          = 1 << 0
	MASK_SHOW_BG_LEFT       = 1 << 1
	MASK_SHOW_SPRITES_LEFT  = 1 << 2
	MASK_SHOW_BG            = 1 << 3
	MASK_SHOW_SPRITES       = 1 << 4
	MASK_EMPHASIZE_RED      = 1 << 5
	MASK_EMPHASIZE_GREEN    = 1 << 6
	MASK_EMPHASIZE_BLUE     = 1 << 7
)

// PPUSTATUS bit flags
const (
	STATUS_SPRITE_OVERFLOW = 1 << 5
	STATUS_SPRITE_0_HIT    = 1 << 6
	STATUS_VERTICAL_BLANK  = 1 << 7
)

// Bus is the 14-bit address space the PPU reads and writes through:
// pattern tables, nametables, and palette RAM, already decoded and
// mirrored by the caller (console.PpuBus).
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// FrameSink receives the rendered picture one pixel at a time.
// Coordinates outside the visible 256x240 area are silently dropped.
type FrameSink interface {
	NewFrame()
	SetPixel(x, y int, r, g, b uint8)
	Render()
}

// PPU implements the register contract and per-scanline renderer
// described for the 2C02. It holds OAM and register state; nametable
// and palette RAM live behind Bus (console.PpuBus), not here, so the
// PPU has no storage cycle with the bus that owns it.
type PPU struct {
	bus Bus
	nmi *irq.Line

	ctrl, mask, status uint8
	oamAddr            uint8
	oam                [OAM_SIZE]uint8

	v       uint16 // current VRAM address, PPUADDR/PPUDATA driven
	addrHi  uint8  // latched high byte while assembling v from two PPUADDR writes
	w       uint8  // shared write toggle for PPUSCROLL/PPUADDR
	scrollX uint8  // simplified scroll model: raw PPUSCROLL bytes
	scrollY uint8

	readBuffer uint8

	ready bool // false until the CPU has run the PPU warmup cycles

	sl int // scanline counter, -1..261; set to -1 after line 261 so the next Step draws line 0

	bgOpacity [NES_RES_WIDTH * NES_RES_HEIGHT]uint8
}

// New constructs a PPU wired to bus for VRAM/palette/pattern access
// and nmi to signal vblank NMI requests to the CPU.
func New(bus Bus, nmi *irq.Line) *PPU {
	return &PPU{
		bus: bus,
		nmi: nmi,
		sl:  -1,
	}
}

// SetReady marks the PPU as past its power-up warmup window; register
// writes to PPUCTRL/PPUMASK/PPUSCROLL/PPUADDR are dropped until then.
func (p *PPU) SetReady() {
	p.ready = true
}

// WriteReg handles a CPU write to the $2000-$2007 register window.
// addr must already be masked to that range by the caller.
func (p *PPU) WriteReg(addr uint16, val uint8) {
	switch addr {
	case PPUCTRL:
		if !p.ready {
			return
		}
		p.ctrl = val
	case PPUMASK:
		if !p.ready {
			return
		}
		p.mask = val
	case OAMADDR:
		p.oamAddr = val
	case OAMDATA:
		p.oam[p.oamAddr] = val
		p.oamAddr++
	case PPUSCROLL:
		if !p.ready {
			return
		}
		if p.w == 0 {
			p.scrollX = val
			p.w = 1
		} else {
			p.scrollY = val
			p.w = 0
		}
	case PPUADDR:
		if !p.ready {
			return
		}
		if p.w == 0 {
			p.addrHi = val & 0x3F
			p.w = 1
		} else {
			p.v = (uint16(p.addrHi) << 8) | uint16(val)
			p.w = 0
		}
	case PPUDATA:
		p.bus.Write(p.v&0x3FFF, val)
		p.v += p.vramIncrement()
	}
}

// ReadReg handles a CPU read from the $2000-$2007 register window.
func (p *PPU) ReadReg(addr uint16) uint8 {
	switch addr {
	case PPUSTATUS:
		res := p.status
		p.status &^= STATUS_VERTICAL_BLANK
		p.w = 0
		return res
	case OAMDATA:
		return p.oam[p.oamAddr]
	case PPUDATA:
		a := p.v & 0x3FFF
		var data uint8
		if a >= 0x3F00 {
			data = p.bus.Read(a)
			p.readBuffer = p.bus.Read(a - 0x1000)
		} else {
			data = p.readBuffer
			p.readBuffer = p.bus.Read(a)
		}
		p.v += p.vramIncrement()
		return data
	}

	return 0 // PPUCTRL/PPUMASK/PPUSCROLL/PPUADDR are write-only
}

func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&CTRL_VRAM_ADD_INCREMENT != 0 {
		return CTRL_INCR_DOWN
	}
	return CTRL_INCR_ACROSS
}

func (p *PPU) nametableBase() uint16 {
	return 0x2000 + uint16(p.ctrl&0x03)*0x0400
}

// WriteOAM loads sprite memory directly, bypassing OAMADDR/OAMDATA.
// Real hardware does this via OAMDMA ($4014); OAMDMA itself is out of
// scope (spec.md §1), but mappers/tests that need to seed OAM still
// need a path in, so it's exposed here rather than reintroducing the
// CPU-side DMA special case.
func (p *PPU) WriteOAM(data []uint8) {
	n := copy(p.oam[:], data)
	_ = n
}

// Step advances the PPU by one scanline: background/sprite rendering
// on visible lines, vblank/NMI at 241, frame flush at 261.
func (p *PPU) Step(sink FrameSink) {
	p.sl++

	switch {
	case p.sl == 0:
		sink.NewFrame()
		p.renderLine(sink)
	case p.sl >= 1 && p.sl <= 239:
		p.renderLine(sink)
	case p.sl == 241:
		p.status |= STATUS_VERTICAL_BLANK
		p.status &^= STATUS_SPRITE_0_HIT
		if p.ctrl&CTRL_GENERATE_NMI != 0 && p.nmi != nil {
			p.nmi.Raise()
		}
	case p.sl == 261:
		p.status &^= STATUS_VERTICAL_BLANK
		p.status &^= STATUS_SPRITE_OVERFLOW
		sink.Render()
		for i := range p.bgOpacity {
			p.bgOpacity[i] = 0
		}
		p.sl = -1
	}
}
