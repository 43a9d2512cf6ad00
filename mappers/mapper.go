// Package mappers implements NES cartridge mapper boards: the address
// decoding logic that sits between the CPU/PPU buses and a ROM image's
// PRG/CHR banks.
package mappers

import (
	"fmt"

	"github.com/haldane-cart/nescore/nesrom"
)

// Mapper decodes CPU and PPU bus addresses into a cartridge's PRG and
// CHR storage.
type Mapper interface {
	ID() uint16
	Name() string
	// Init binds the mapper to a parsed ROM image. Called once, before
	// any Prg/Chr access.
	Init(r *nesrom.ROM) error

	// PrgRead/PrgWrite handle $8000-$FFFF as seen by the CPU bus, with
	// addr already relative to $8000 (i.e. addr==0 means $8000). There is
	// no writable PRG image; PrgWrite exists so mapper boards that use
	// writes to $8000-$FFFF as bank-select registers can observe them.
	PrgRead(addr uint16) uint8
	PrgWrite(addr uint16, val uint8)

	// ChrRead/ChrWrite handle $0000-$1FFF as seen by the PPU bus.
	ChrRead(addr uint16) uint8
	ChrWrite(addr uint16, val uint8)

	MirrorMode() uint8
	HasBattery() bool
}

var allMappers = map[uint16]func() Mapper{}

// RegisterMapper makes a mapper constructor available to Get by ID.
// Intended to be called from each mapper implementation's init().
func RegisterMapper(id uint16, ctor func() Mapper) {
	allMappers[id] = ctor
}

// Get constructs and initializes the Mapper a ROM image declares via
// its header's mapper number. Returns nesrom.ErrUnsupportedMapper for
// any ID this core doesn't implement.
func Get(r *nesrom.ROM) (Mapper, error) {
	id := r.MapperNum()
	ctor, ok := allMappers[id]
	if !ok {
		return nil, fmt.Errorf("mapper %d: %w", id, nesrom.ErrUnsupportedMapper)
	}

	m := ctor()
	if err := m.Init(r); err != nil {
		return nil, fmt.Errorf("mapper %d init: %w", id, err)
	}
	return m, nil
}
