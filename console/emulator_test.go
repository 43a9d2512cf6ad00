package console

import "testing"

type nullSink struct{}

func (nullSink) NewFrame()                              {}
func (nullSink) SetPixel(x, y int, r, g, b uint8) {}
func (nullSink) Render()                                {}

// buildNROM assembles a minimal one-bank NROM image: a CPU reset
// vector that jumps to an infinite self-loop at $8000, and an NMI
// handler at $9000 that stamps a marker byte into RAM and returns.
func buildNROM() []byte {
	const prgSize = 0x4000
	prg := make([]byte, prgSize)

	// $8000: JMP $8000
	prg[0x0000] = 0x4C
	prg[0x0001] = 0x00
	prg[0x0002] = 0x80

	// $9000: LDA #$01 ; STA $10 ; RTI
	prg[0x1000] = 0xA9
	prg[0x1001] = 0x01
	prg[0x1002] = 0x85
	prg[0x1003] = 0x10
	prg[0x1004] = 0x40

	prg[0x3FFA] = 0x00 // NMI vector low  ($9000)
	prg[0x3FFB] = 0x90
	prg[0x3FFC] = 0x00 // RESET vector low ($8000)
	prg[0x3FFD] = 0x80
	prg[0x3FFE] = 0x00 // IRQ/BRK vector low ($8000)
	prg[0x3FFF] = 0x80

	header := []byte{'N', 'E', 'S', 0x1A, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	return append(header, prg...)
}

func TestEmulatorResetVector(t *testing.T) {
	e, err := New(buildNROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Reset()

	if e.cpu.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000", e.cpu.PC)
	}
}

func TestEmulatorWarmupGatesPPUWrites(t *testing.T) {
	e, err := New(buildNROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Reset()

	sink := nullSink{}
	if e.warmedUp {
		t.Fatalf("warmedUp true before any ticks")
	}

	e.Tick(sink)
	e.Tick(sink)
	if !e.warmedUp {
		t.Fatalf("warmedUp still false after two ticks (%d cycles)", e.cpu.Cycles)
	}
}

func TestEmulatorNMIFiresDuringTick(t *testing.T) {
	e, err := New(buildNROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Reset()

	sink := nullSink{}
	for !e.warmedUp {
		e.Tick(sink)
	}

	e.cpuBus.Write(0x2000, 0x80) // PPUCTRL: enable NMI generation

	e.Tick(sink)

	if got := e.cpuBus.ram[0x10]; got != 0x01 {
		t.Errorf("NMI handler marker not written, ram[0x10] = %#02x", got)
	}
}
