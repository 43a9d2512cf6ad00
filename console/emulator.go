package console

import (
	"fmt"

	"github.com/haldane-cart/nescore/irq"
	"github.com/haldane-cart/nescore/mappers"
	"github.com/haldane-cart/nescore/mos6502"
	"github.com/haldane-cart/nescore/nesrom"
	"github.com/haldane-cart/nescore/ppu"
)

// cyclesPerScanline is the CPU cycle quota advanced per PPU scanline:
// 341 PPU dots per scanline / 3 dots per CPU cycle ≈ 113.
const cyclesPerScanline = 113

// Emulator owns a loaded ROM's mapper, the shared CPU/PPU buses, and
// drives both chips forward one tick (one frame) at a time.
type Emulator struct {
	mapper mappers.Mapper
	cpu    *mos6502.Cpu
	ppu    *ppu.PPU
	cpuBus *CpuBus

	warmedUp bool
}

// New loads data as an iNES ROM image, selects its mapper, and wires
// up a fresh CPU/PPU pair sharing an NMI line.
func New(data []byte) (*Emulator, error) {
	rom, err := nesrom.New(data)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	mapper, err := mappers.Get(rom)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	nmiLine := &irq.Line{}
	ppuBus := NewPpuBus(mapper, rom.MirrorMode())
	p := ppu.New(ppuBus, nmiLine)
	cpuBus := NewCpuBus(p, mapper)
	cpu := mos6502.New(cpuBus, nmiLine, &irq.Line{})

	return &Emulator{
		mapper: mapper,
		cpu:    cpu,
		ppu:    p,
		cpuBus: cpuBus,
	}, nil
}

// Reset runs the CPU's reset sequence (see mos6502.Cpu.Reset). The
// PPU starts out, from New, in its warmup state, and Tick releases it
// once the CPU has executed mos6502.PowerUpWarmupCycles cycles. Reset
// does not return a PPU that is already past warmup to that state, and
// it does not zero the CPU's running cycle total.
func (e *Emulator) Reset() {
	e.cpu.Reset()
	e.warmedUp = false
}

// Tick advances the emulator by one frame: one PPU scanline step
// followed by a CPU cycle quota, repeated 262 times (one per
// scanline). The PPU's vblank/NMI transition at scanline 241 is
// observable by the CPU within the same tick because nothing here
// buffers it — mos6502.Cpu polls the shared irq.Line between
// instructions.
func (e *Emulator) Tick(sink ppu.FrameSink) {
	const scanlinesPerFrame = 262

	for i := 0; i < scanlinesPerFrame; i++ {
		e.ppu.Step(sink)

		for c := 0; c < cyclesPerScanline; c++ {
			if !e.warmedUp && e.cpu.Cycles >= mos6502.PowerUpWarmupCycles {
				e.ppu.SetReady()
				e.warmedUp = true
			}
			e.cpu.Step()
		}
	}

	if !e.warmedUp && e.cpu.Cycles >= mos6502.PowerUpWarmupCycles {
		e.ppu.SetReady()
		e.warmedUp = true
	}
}

// Mapper exposes the loaded cartridge's mapper, mainly for
// diagnostics and tests.
func (e *Emulator) Mapper() mappers.Mapper {
	return e.mapper
}
