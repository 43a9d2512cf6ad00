// Package mos6502 implements the MOS Technology 6502 processor as used
// in the NES's 2A03, minus the APU and decimal mode (the 2A03 ties BCD
// off in hardware, and NES software never relies on it).
// https://en.wikipedia.org/wiki/MOS_Technology_6502
package mos6502

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/haldane-cart/nescore/irq"
)

// Bus is everything the CPU needs from the rest of the console: the 2
// KiB of internal RAM, the PPU register window, the APU/IO stub and
// cartridge space, all already address-decoded by the caller.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// 6502 Interrupt Vectors
// https://en.wikipedia.org/wiki/Interrupts_in_65xx_processors
const (
	INT_IRQ   = 0xFFFE
	INT_BRK   = INT_IRQ
	INT_RESET = 0xFFFC
	INT_NMI   = 0xFFFA
)

// 6502 Processor Status Flags
// https://www.nesdev.org/obelisk-6502-guide/registers.html
const (
	STATUS_FLAG_CARRY             = 1 << 0 // C
	STATUS_FLAG_ZERO              = 1 << 1 // Z
	STATUS_FLAG_INTERRUPT_DISABLE = 1 << 2 // I
	STATUS_FLAG_DECIMAL           = 1 << 3 // D
	STATUS_FLAG_BREAK             = 1 << 4 // B
	UNUSED_STATUS_FLAG            = 1 << 5 // always on
	STATUS_FLAG_OVERFLOW          = 1 << 6 // V
	STATUS_FLAG_NEGATIVE          = 1 << 7 // N
)

const STACK_PAGE = 0x0100

// PowerUpWarmupCycles is how long the real hardware's PPU takes to
// stabilize after power-on; software that writes to PPUCTRL/PPUMASK/
// PPUSCROLL/PPUADDR before this many CPU cycles have elapsed is
// ignored by real hardware. Emulator callers can use this to gate
// early register writes. https://www.nesdev.org/wiki/PPU_power_up_state
const PowerUpWarmupCycles = 29658

var flagMap = map[uint8]byte{
	STATUS_FLAG_CARRY:             'C',
	STATUS_FLAG_ZERO:              'Z',
	STATUS_FLAG_INTERRUPT_DISABLE: 'I',
	STATUS_FLAG_DECIMAL:           'D',
	STATUS_FLAG_BREAK:             'B',
	UNUSED_STATUS_FLAG:            '-',
	STATUS_FLAG_OVERFLOW:          'V',
	STATUS_FLAG_NEGATIVE:          'N',
}

func statusString(p uint8) string {
	var sb strings.Builder

	flags := []uint8{
		STATUS_FLAG_NEGATIVE,
		STATUS_FLAG_OVERFLOW,
		UNUSED_STATUS_FLAG,
		STATUS_FLAG_BREAK,
		STATUS_FLAG_DECIMAL,
		STATUS_FLAG_INTERRUPT_DISABLE,
		STATUS_FLAG_ZERO,
		STATUS_FLAG_CARRY,
	}

	for _, f := range flags {
		if p&f > 0 {
			sb.WriteByte(flagMap[f])
		} else {
			sb.WriteByte('.')
		}
	}

	return sb.String()
}

// Cpu implements the 6502's registers and instruction cycle. It reads
// and writes through a Bus rather than owning memory directly, so the
// same Cpu can sit in front of any CpuBus wiring.
type Cpu struct {
	A      uint8  // accumulator
	X, Y   uint8  // index registers
	P      uint8  // status flags
	SP     uint8  // stack pointer; stack lives at $0100-$01FF
	PC     uint16 // program counter
	cycles uint8  // full cost of the instruction in flight; Step counts it down and fetches again once 1 remains

	// Cycles is the running total of CPU cycles executed since Reset,
	// used by callers to gate PPU-warmup-sensitive register writes
	// and to convert between CPU cycles and PPU dots (1:3).
	Cycles uint64

	bus Bus
	nmi *irq.Line
	irq *irq.Line
}

func (c *Cpu) String() string {
	return fmt.Sprintf("A,X,Y: %3d, %3d, %3d; PC: 0x%04x, SP: 0x%02x, P: %s", c.A, c.X, c.Y, c.PC, c.SP, statusString(c.P))
}

// New constructs a Cpu wired to bus, with nmi and irqLine as the lines
// the ppu and mapper (respectively) use to request interrupts. irqLine
// may be nil for mappers, like NROM, that never assert IRQ.
func New(bus Bus, nmi, irqLine *irq.Line) *Cpu {
	c := &Cpu{
		SP:  0xFD,
		P:   UNUSED_STATUS_FLAG | STATUS_FLAG_BREAK | STATUS_FLAG_INTERRUPT_DISABLE,
		bus: bus,
		nmi: nmi,
		irq: irqLine,
	}
	c.PC = c.read16(INT_RESET)
	return c
}

// Reset runs the RESET sequence: it sets the interrupt-disable and
// unused status bits, lowers SP by 3, drops any in-flight instruction
// cycles and reloads PC from the reset vector. A, X and Y are left as
// they are.
func (c *Cpu) Reset() {
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE | UNUSED_STATUS_FLAG)
	c.SP -= 3
	c.cycles = 0
	c.PC = c.read16(INT_RESET)
}

func (c *Cpu) read(addr uint16) uint8 {
	return c.bus.Read(addr)
}

func (c *Cpu) write(addr uint16, val uint8) {
	c.bus.Write(addr, val)
}

func (c *Cpu) read16(addr uint16) uint16 {
	lsb := uint16(c.read(addr))
	msb := uint16(c.read(addr + 1))
	return (msb << 8) | lsb
}

// read16bug reproduces the 6502's JMP ($xxFF) indirect-addressing bug:
// if the low byte of the pointer is $FF, the high byte is fetched from
// $xx00 of the same page instead of wrapping into the next page.
func (c *Cpu) read16bug(addr uint16) uint16 {
	lo := addr
	hi := (addr & 0xFF00) | uint16(uint8(addr)+1)
	return uint16(c.read(lo)) | uint16(c.read(hi))<<8
}

var ErrInvalidInstruction = errors.New("mos6502: invalid instruction")

func (c *Cpu) getInst() (instEntry, error) {
	m := c.read(c.PC)
	op := opcodeTable[m]
	if op.name == "" {
		return opcodeTable[0x00], fmt.Errorf("pc: 0x%04x, inst: 0x%02x: %w", c.PC, m, ErrInvalidInstruction)
	}
	return op, nil
}

// Step advances the CPU by one cycle. If an instruction is still "in
// flight" from a prior Step, it just counts down; otherwise it
// services any pending interrupt, or fetches and fully executes the
// next instruction (charging its full cycle cost, which subsequent Step
// calls count down, so an N-cycle instruction spans N calls). This
// mirrors spec.md's per-tick CPU-cycle budget, at the cost of not
// modeling true cycle-by-cycle bus activity within an instruction.
func (c *Cpu) Step() {
	c.Cycles++

	if c.cycles > 1 {
		c.cycles--
		return
	}

	if c.nmi != nil && c.nmi.Pending() {
		c.nmi.Clear()
		c.serviceInterrupt(INT_NMI, false)
		return
	}
	if c.irq != nil && c.irq.Pending() && c.P&STATUS_FLAG_INTERRUPT_DISABLE == 0 {
		c.irq.Clear()
		c.serviceInterrupt(INT_IRQ, false)
		return
	}

	op, err := c.getInst()
	if err != nil {
		// An unimplemented/illegal opcode in well-formed NES
		// software indicates a bus or mapper bug upstream; treat it
		// like a NOP rather than panicking the whole emulator.
		glog.Warningf("mos6502: %v", err)
		c.PC++
		return
	}

	c.cycles = op.cycles
	c.PC++
	opc := c.PC

	c.execute(op.op, op.mode)

	// If we didn't branch, move the PC beyond the full width of the
	// instruction. We consumed the first byte for the instruction
	// code, so only skip over the remaining argument bytes.
	if c.PC == opc {
		c.PC += uint16(op.bytes) - 1
	}
}

// serviceInterrupt pushes PC and status and jumps to the vector at
// addr. brk is true only for the BRK instruction, which sets the B
// flag in the pushed copy of status; hardware-triggered NMI/IRQ do not.
func (c *Cpu) serviceInterrupt(addr uint16, brk bool) {
	c.pushAddress(c.PC)
	p := c.P
	if brk {
		p |= STATUS_FLAG_BREAK
	} else {
		p &^= STATUS_FLAG_BREAK
	}
	c.pushStack(p | UNUSED_STATUS_FLAG)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
	c.PC = c.read16(addr)
	c.cycles = 7
}

func (c *Cpu) setNegativeAndZeroFlags(n uint8) {
	if n == 0 {
		c.flagsOn(STATUS_FLAG_ZERO)
	} else {
		c.flagsOff(STATUS_FLAG_ZERO)
	}

	if n&0b1000_0000 != 0 {
		c.flagsOn(STATUS_FLAG_NEGATIVE)
	} else {
		c.flagsOff(STATUS_FLAG_NEGATIVE)
	}
}

func (c *Cpu) getStackAddr() uint16 {
	return STACK_PAGE + uint16(c.SP)
}

func (c *Cpu) pushStack(val uint8) {
	c.write(c.getStackAddr(), val)
	c.SP--
}

func (c *Cpu) popStack() uint8 {
	c.SP++
	return c.read(c.getStackAddr())
}

func (c *Cpu) pushAddress(addr uint16) {
	c.pushStack(uint8(addr >> 8))
	c.pushStack(uint8(addr & 0x00FF))
}

func (c *Cpu) popAddress() uint16 {
	return uint16(c.popStack()) | (uint16(c.popStack()) << 8)
}

func (c *Cpu) flagsOn(mask uint8) {
	c.P = c.P | mask
}

func (c *Cpu) flagsOff(mask uint8) {
	c.P = c.P &^ mask
}

// extraCycles returns 1 if addr1 and addr2 are in different pages, 0
// otherwise.
func extraCycles(addr1, addr2 uint16) uint8 {
	if addr1&0xFF00 != addr2&0xFF00 {
		return 1
	}
	return 0
}
