package mappers

import (
	"testing"

	"github.com/haldane-cart/nescore/nesrom"
)

func makeNROM(t *testing.T, prgBanks, chrBanks uint8) *nesrom.ROM {
	t.Helper()

	data := []byte{'N', 'E', 'S', 0x1A, prgBanks, chrBanks, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	data = append(data, make([]byte, 16384*int(prgBanks))...)
	// mark the first and last bytes of PRG so mirroring is observable
	data[16] = 0xAA
	data[16+16384*int(prgBanks)-1] = 0xBB
	data = append(data, make([]byte, 8192*int(chrBanks))...)

	r, err := nesrom.New(data)
	if err != nil {
		t.Fatalf("nesrom.New: %v", err)
	}
	return r
}

func TestNROM16KMirroring(t *testing.T) {
	r := makeNROM(t, 1, 1)
	m := &nrom{}
	if err := m.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if got, want := m.PrgRead(0x0000), uint8(0xAA); got != want {
		t.Errorf("PrgRead(0x0000) = %#x, want %#x", got, want)
	}
	if got, want := m.PrgRead(0x4000), uint8(0xAA); got != want {
		t.Errorf("PrgRead(0x4000) (mirrored $C000) = %#x, want %#x", got, want)
	}
	if got, want := m.PrgRead(0x3FFF), uint8(0xBB); got != want {
		t.Errorf("PrgRead(0x3FFF) = %#x, want %#x", got, want)
	}
}

func TestNROM32KDirect(t *testing.T) {
	r := makeNROM(t, 2, 1)
	m := &nrom{}
	if err := m.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if len(m.prg) != 0x8000 {
		t.Fatalf("PRG size = %d, want %d", len(m.prg), 0x8000)
	}
	if got, want := m.PrgRead(0x0000), uint8(0xAA); got != want {
		t.Errorf("PrgRead(0x0000) = %#x, want %#x", got, want)
	}
	if got, want := m.PrgRead(0x7FFF), uint8(0xBB); got != want {
		t.Errorf("PrgRead(0x7FFF) = %#x, want %#x", got, want)
	}
}

func TestNROMChrRAMFallback(t *testing.T) {
	r := makeNROM(t, 1, 0)
	m := &nrom{}
	if err := m.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if !m.chrRAM {
		t.Fatalf("expected chrRAM fallback when header chrSize == 0")
	}
	m.ChrWrite(0x0010, 0x42)
	if got := m.ChrRead(0x0010); got != 0x42 {
		t.Errorf("ChrRead after write = %#x, want 0x42", got)
	}
}

func TestNROMChrROMWritesDropped(t *testing.T) {
	r := makeNROM(t, 1, 1)
	m := &nrom{}
	if err := m.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}

	before := m.ChrRead(0x0000)
	m.ChrWrite(0x0000, before+1)
	if got := m.ChrRead(0x0000); got != before {
		t.Errorf("ChrRead after write to CHR ROM = %#x, want unchanged %#x", got, before)
	}
}

func TestGetUnsupportedMapper(t *testing.T) {
	data := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0xF0, 0xF0, 0, 0, 0, 0, 0, 0, 0, 0}
	data = append(data, make([]byte, 16384+8192)...)

	r, err := nesrom.New(data)
	if err != nil {
		t.Fatalf("nesrom.New: %v", err)
	}

	if _, err := Get(r); err == nil {
		t.Fatalf("Get() err = nil, want unsupported mapper error")
	}
}
