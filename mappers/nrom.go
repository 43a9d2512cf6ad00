package mappers

import (
	"github.com/haldane-cart/nescore/nesrom"
)

func init() {
	RegisterMapper(0, func() Mapper { return &nrom{} })
}

// nrom implements mapper 0 (NROM): a 16 or 32 KiB fixed PRG ROM window
// with no bank switching, and either CHR ROM or a CHR-RAM fallback.
type nrom struct {
	prg     []uint8
	chr     []uint8
	chrRAM  bool
	mirror  uint8
	battery bool
}

func (m *nrom) ID() uint16 {
	return 0
}

func (m *nrom) Name() string {
	return "NROM"
}

func (m *nrom) Init(r *nesrom.ROM) error {
	m.mirror = r.MirrorMode()
	m.battery = r.HasBattery()

	prg := make([]uint8, r.PrgSize())
	for i := range prg {
		prg[i] = r.PrgRead(uint16(i))
	}
	m.prg = prg

	chrSize := r.ChrSize()
	if chrSize == 0 {
		m.chr = make([]uint8, 0x2000)
		m.chrRAM = true
		return nil
	}

	chr := make([]uint8, chrSize)
	for i := range chr {
		chr[i] = r.ChrRead(uint16(i))
	}
	m.chr = chr

	return nil
}

// PrgRead mirrors a 16 KiB PRG image at both $8000 and $C000; a 32 KiB
// image is mapped directly.
func (m *nrom) PrgRead(addr uint16) uint8 {
	a := int(addr) % len(m.prg)
	return m.prg[a]
}

// PrgWrite is a no-op: NROM has no bank-select registers and no
// writable PRG storage.
func (m *nrom) PrgWrite(addr uint16, val uint8) {}

func (m *nrom) ChrRead(addr uint16) uint8 {
	return m.chr[addr]
}

func (m *nrom) ChrWrite(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[addr] = val
	}
	// writes to real CHR ROM are dropped
}

func (m *nrom) MirrorMode() uint8 {
	return m.mirror
}

func (m *nrom) HasBattery() bool {
	return m.battery
}
