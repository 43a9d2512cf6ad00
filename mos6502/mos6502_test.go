package mos6502

import (
	"testing"

	"github.com/haldane-cart/nescore/irq"
)

// flatBus is a 64 KiB flat address space, enough to drive the CPU in
// isolation without a real console package wired in.
type flatBus struct {
	mem [0x10000]uint8
}

func (b *flatBus) Read(addr uint16) uint8 {
	return b.mem[addr]
}

func (b *flatBus) Write(addr uint16, val uint8) {
	b.mem[addr] = val
}

func newTestCpu() (*Cpu, *flatBus) {
	b := &flatBus{}
	b.mem[INT_RESET] = 0x00
	b.mem[INT_RESET+1] = 0x80
	c := New(b, &irq.Line{}, &irq.Line{})
	return c, b
}

func (b *flatBus) load(addr uint16, prog ...uint8) {
	for i, v := range prog {
		b.mem[addr+uint16(i)] = v
	}
}

func runUntil(c *Cpu, b *flatBus, maxCycles int) {
	for i := 0; i < maxCycles; i++ {
		c.Step()
	}
}

func TestResetVector(t *testing.T) {
	c, _ := newTestCpu()
	if c.PC != 0x8000 {
		t.Errorf("PC = %#04x, want 0x8000", c.PC)
	}
}

func TestADCOverflow(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x8000
	c.A = 0x7F // +127
	b.load(0x8000, 0x69, 0x01) // ADC #$01 -> 128, signed overflow

	runUntil(c, b, 2)

	if c.A != 0x80 {
		t.Errorf("A = %#02x, want 0x80", c.A)
	}
	if c.P&STATUS_FLAG_OVERFLOW == 0 {
		t.Errorf("overflow flag not set after 127+1")
	}
	if c.P&STATUS_FLAG_NEGATIVE == 0 {
		t.Errorf("negative flag not set for result 0x80")
	}
}

func TestSBCBorrow(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x8000
	c.A = 0x00
	c.flagsOn(STATUS_FLAG_CARRY) // no borrow going in
	b.load(0x8000, 0xE9, 0x01)   // SBC #$01 -> -1 -> 0xFF, borrow out

	runUntil(c, b, 2)

	if c.A != 0xFF {
		t.Errorf("A = %#02x, want 0xFF", c.A)
	}
	if c.P&STATUS_FLAG_CARRY != 0 {
		t.Errorf("carry flag set, want clear (borrow occurred)")
	}
}

func TestJMPIndirectPageBug(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x8000
	b.load(0x8000, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	b.mem[0x02FF] = 0x34
	b.mem[0x0200] = 0x12 // high byte wraps to $0200, not $0300
	b.mem[0x0300] = 0xFF // if the bug weren't modeled, we'd jump here

	runUntil(c, b, 5)

	if c.PC != 0x1234 {
		t.Errorf("PC = %#04x, want 0x1234 (page-wrap bug)", c.PC)
	}
}

func TestBranchPageCrossCycles(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x81EE
	b.load(0x81EE, 0xF0, 0x20) // BEQ +32: next instruction is $81F0, target $8210
	c.flagsOn(STATUS_FLAG_ZERO)

	c.Step() // fetch and execute the branch
	if c.PC != 0x8210 {
		t.Fatalf("PC = %#04x, want 0x8210", c.PC)
	}
	// base cost 2 + 1 taken + 1 page-crossed = 4 cycles charged
	if c.cycles != 4 {
		t.Errorf("cycles charged = %d, want 4", c.cycles)
	}
}

func TestBranchSamePageCycles(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x80FE
	b.load(0x80FE, 0xF0, 0x10) // BEQ +16: next instruction $8100, target $8110, same page
	c.flagsOn(STATUS_FLAG_ZERO)

	c.Step()
	if c.PC != 0x8110 {
		t.Fatalf("PC = %#04x, want 0x8110", c.PC)
	}
	// base cost 2 + 1 taken, no page cross = 3 cycles charged
	if c.cycles != 3 {
		t.Errorf("cycles charged = %d, want 3", c.cycles)
	}
}

func TestBNEPageCrossFromZeroPage(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x00FD
	b.load(0x00FD, 0xD0, 0x02) // BNE +2
	c.flagsOn(STATUS_FLAG_CARRY)
	c.flagsOff(STATUS_FLAG_ZERO)

	c.Step()
	if c.PC != 0x0101 {
		t.Fatalf("PC = %#04x, want 0x0101", c.PC)
	}
	if c.cycles != 4 {
		t.Errorf("cycles charged = %d, want 4", c.cycles)
	}
}

func TestStackWrap(t *testing.T) {
	c, b := newTestCpu()
	c.SP = 0x00
	c.pushStack(0xAB)
	if c.SP != 0xFF {
		t.Errorf("SP = %#02x, want 0xFF after pushing at SP=0", c.SP)
	}
	if v := b.mem[STACK_PAGE+0x00]; v != 0xAB {
		t.Errorf("pushed value at $0100 = %#02x, want 0xAB", v)
	}
}

func TestPHPSetsBreakAndUnused(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x8000
	c.P = STATUS_FLAG_CARRY
	b.load(0x8000, 0x08) // PHP

	runUntil(c, b, 3)

	pushed := b.mem[STACK_PAGE+uint16(c.SP)+1]
	if pushed&(STATUS_FLAG_BREAK|UNUSED_STATUS_FLAG) != (STATUS_FLAG_BREAK | UNUSED_STATUS_FLAG) {
		t.Errorf("pushed status %08b missing BREAK|UNUSED", pushed)
	}
}

func TestPLPClearsBreakKeepsUnused(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x8000
	b.load(0x8000, 0x28) // PLP
	c.pushStack(0xFF)

	runUntil(c, b, 4)

	if c.P&STATUS_FLAG_BREAK != 0 {
		t.Errorf("PLP left BREAK set")
	}
	if c.P&UNUSED_STATUS_FLAG == 0 {
		t.Errorf("PLP cleared the always-on bit")
	}
}

func TestNMIServicing(t *testing.T) {
	c, b := newTestCpu()
	b.mem[INT_NMI] = 0x00
	b.mem[INT_NMI+1] = 0x90
	c.PC = 0x8000
	b.load(0x8000, 0xEA) // NOP
	nmi := &irq.Line{}
	c.nmi = nmi

	nmi.Raise()
	c.Step()

	if c.PC != 0x9000 {
		t.Errorf("PC = %#04x, want 0x9000 after NMI", c.PC)
	}
	if nmi.Pending() {
		t.Errorf("NMI line still pending after service")
	}
}

func TestLAXCombinesLoads(t *testing.T) {
	c, b := newTestCpu()
	c.PC = 0x8000
	b.load(0x8000, 0xA7, 0x10) // LAX $10
	b.mem[0x10] = 0x42

	runUntil(c, b, 3)

	if c.A != 0x42 || c.X != 0x42 {
		t.Errorf("A,X = %#02x,%#02x, want 0x42,0x42", c.A, c.X)
	}
}
