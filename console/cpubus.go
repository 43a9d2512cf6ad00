// Package console wires the CPU, PPU, cartridge mapper and RAM
// together into a runnable machine, and owns the per-tick scheduling
// that keeps them in lockstep.
package console

import (
	"github.com/golang/glog"

	"github.com/haldane-cart/nescore/mappers"
)

const ramSize = 0x0800

// PPURegisters is the capability CpuBus needs from the PPU: register
// reads/writes through the CPU-visible $2000-$2007 window. It exists
// so CpuBus depends on an interface rather than importing the ppu
// package outright, mirroring the irq.Line split that keeps mos6502
// and ppu from importing each other.
type PPURegisters interface {
	ReadReg(addr uint16) uint8
	WriteReg(addr uint16, val uint8)
}

// CpuBus implements mos6502.Bus: 2 KiB of mirrored work RAM, the PPU
// register window mirrored every 8 bytes, an unimplemented APU/IO
// page, and cartridge space forwarded to the mapper.
type CpuBus struct {
	ram    [ramSize]uint8
	ppu    PPURegisters
	mapper mappers.Mapper
}

func NewCpuBus(ppu PPURegisters, mapper mappers.Mapper) *CpuBus {
	return &CpuBus{ppu: ppu, mapper: mapper}
}

func (b *CpuBus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4000:
		return b.ppu.ReadReg(0x2000 | (addr & 0x0007))
	case addr < 0x4020:
		glog.V(2).Infof("console: read from unimplemented APU/IO register %#04x", addr)
		return 0xFF
	case addr >= 0x8000:
		return b.mapper.PrgRead(addr - 0x8000)
	default:
		// $4020-$7FFF: cartridge expansion / PRG-RAM, out of scope for NROM.
		glog.V(2).Infof("console: read from unmapped cartridge address %#04x", addr)
		return 0
	}
}

func (b *CpuBus) Write(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = val
	case addr < 0x4000:
		b.ppu.WriteReg(0x2000|(addr&0x0007), val)
	case addr < 0x4020:
		glog.V(2).Infof("console: write to unimplemented APU/IO register %#04x", addr)
	case addr >= 0x8000:
		b.mapper.PrgWrite(addr-0x8000, val)
	default:
		glog.V(2).Infof("console: write to unmapped cartridge address %#04x", addr)
	}
}
