package mos6502

import (
	"math/bits"

	"github.com/golang/glog"
)

// execute mutates CPU state for one decoded instruction. It is the
// operation-dispatch half of the two-function split described for the
// CPU's instruction cycle: getOperandAddr resolves addresses, execute
// applies the instruction's effect.
func (c *Cpu) execute(op uint8, mode uint8) {
	switch op {
	case ADC:
		c.opADC(mode)
	case AND:
		c.opAND(mode)
	case ASL:
		c.opASL(mode)
	case BCC:
		c.branch(STATUS_FLAG_CARRY, false)
	case BCS:
		c.branch(STATUS_FLAG_CARRY, true)
	case BEQ:
		c.branch(STATUS_FLAG_ZERO, true)
	case BIT:
		c.opBIT(mode)
	case BMI:
		c.branch(STATUS_FLAG_NEGATIVE, true)
	case BNE:
		c.branch(STATUS_FLAG_ZERO, false)
	case BPL:
		c.branch(STATUS_FLAG_NEGATIVE, false)
	case BRK:
		c.opBRK()
	case BVC:
		c.branch(STATUS_FLAG_OVERFLOW, false)
	case BVS:
		c.branch(STATUS_FLAG_OVERFLOW, true)
	case CLC:
		c.flagsOff(STATUS_FLAG_CARRY)
	case CLD:
		c.flagsOff(STATUS_FLAG_DECIMAL)
	case CLI:
		c.flagsOff(STATUS_FLAG_INTERRUPT_DISABLE)
	case CLV:
		c.flagsOff(STATUS_FLAG_OVERFLOW)
	case CMP:
		c.baseCMP(c.A, c.read(c.getOperandAddr(mode)))
	case CPX:
		c.baseCMP(c.X, c.read(c.getOperandAddr(mode)))
	case CPY:
		c.baseCMP(c.Y, c.read(c.getOperandAddr(mode)))
	case DEC:
		c.opDEC(mode)
	case DEX:
		c.X--
		c.setNegativeAndZeroFlags(c.X)
	case DEY:
		c.Y--
		c.setNegativeAndZeroFlags(c.Y)
	case EOR:
		c.A ^= c.read(c.getOperandAddr(mode))
		c.setNegativeAndZeroFlags(c.A)
	case INC:
		c.opINC(mode)
	case INX:
		c.X++
		c.setNegativeAndZeroFlags(c.X)
	case INY:
		c.Y++
		c.setNegativeAndZeroFlags(c.Y)
	case JMP:
		c.PC = c.getOperandAddr(mode)
	case JSR:
		c.pushAddress(c.PC + 1)
		c.PC = c.getOperandAddr(mode)
	case LDA:
		c.A = c.read(c.getOperandAddr(mode))
		c.setNegativeAndZeroFlags(c.A)
	case LDX:
		c.X = c.read(c.getOperandAddr(mode))
		c.setNegativeAndZeroFlags(c.X)
	case LDY:
		c.Y = c.read(c.getOperandAddr(mode))
		c.setNegativeAndZeroFlags(c.Y)
	case LSR:
		c.opLSR(mode)
	case NOP:
		// still fetched its operand via getOperandAddr side effects
		// (page-cross cycle) for the undocumented multi-byte forms
		if mode != IMPLICIT {
			c.getOperandAddr(mode)
		}
	case ORA:
		c.A |= c.read(c.getOperandAddr(mode))
		c.setNegativeAndZeroFlags(c.A)
	case PHA:
		c.pushStack(c.A)
	case PHP:
		c.pushStack(c.P | STATUS_FLAG_BREAK | UNUSED_STATUS_FLAG)
	case PLA:
		c.A = c.popStack()
		c.setNegativeAndZeroFlags(c.A)
	case PLP:
		c.P = (c.popStack() &^ STATUS_FLAG_BREAK) | UNUSED_STATUS_FLAG
	case ROL:
		c.opROL(mode)
	case ROR:
		c.opROR(mode)
	case RTI:
		c.P = (c.popStack() &^ STATUS_FLAG_BREAK) | UNUSED_STATUS_FLAG
		c.PC = c.popAddress()
	case RTS:
		c.PC = c.popAddress() + 1
	case SBC:
		c.addWithOverflow(^c.read(c.getOperandAddr(mode)))
	case SEC:
		c.flagsOn(STATUS_FLAG_CARRY)
	case SED:
		c.flagsOn(STATUS_FLAG_DECIMAL)
	case SEI:
		c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
	case STA:
		c.write(c.getOperandAddr(mode), c.A)
	case STX:
		c.write(c.getOperandAddr(mode), c.X)
	case STY:
		c.write(c.getOperandAddr(mode), c.Y)
	case TAX:
		c.X = c.A
		c.setNegativeAndZeroFlags(c.X)
	case TAY:
		c.Y = c.A
		c.setNegativeAndZeroFlags(c.Y)
	case TSX:
		c.X = c.SP
		c.setNegativeAndZeroFlags(c.X)
	case TXA:
		c.A = c.X
		c.setNegativeAndZeroFlags(c.A)
	case TXS:
		c.SP = c.X
	case TYA:
		c.A = c.Y
		c.setNegativeAndZeroFlags(c.A)

	case LAX:
		v := c.read(c.getOperandAddr(mode))
		c.A, c.X = v, v
		c.setNegativeAndZeroFlags(v)
	case SAX:
		c.write(c.getOperandAddr(mode), c.A&c.X)
	case DCP:
		addr := c.getOperandAddr(mode)
		v := c.read(addr) - 1
		c.write(addr, v)
		c.baseCMP(c.A, v)
	case ISB:
		addr := c.getOperandAddr(mode)
		v := c.read(addr) + 1
		c.write(addr, v)
		c.addWithOverflow(^v)
	case SLO:
		addr := c.getOperandAddr(mode)
		v := c.read(addr)
		nv := v << 1
		c.write(addr, nv)
		if v&0x80 != 0 {
			c.flagsOn(STATUS_FLAG_CARRY)
		} else {
			c.flagsOff(STATUS_FLAG_CARRY)
		}
		c.A |= nv
		c.setNegativeAndZeroFlags(c.A)
	case RLA:
		addr := c.getOperandAddr(mode)
		v := c.read(addr)
		nv := bits.RotateLeft8(v, 1) | (c.P & STATUS_FLAG_CARRY)
		c.write(addr, nv)
		if v&0x80 != 0 {
			c.flagsOn(STATUS_FLAG_CARRY)
		} else {
			c.flagsOff(STATUS_FLAG_CARRY)
		}
		c.A &= nv
		c.setNegativeAndZeroFlags(c.A)
	case SRE:
		addr := c.getOperandAddr(mode)
		v := c.read(addr)
		nv := v >> 1
		c.write(addr, nv)
		if v&0x01 != 0 {
			c.flagsOn(STATUS_FLAG_CARRY)
		} else {
			c.flagsOff(STATUS_FLAG_CARRY)
		}
		c.A ^= nv
		c.setNegativeAndZeroFlags(c.A)
	case RRA:
		addr := c.getOperandAddr(mode)
		v := c.read(addr)
		nv := bits.RotateLeft8(v, -1) | ((c.P & STATUS_FLAG_CARRY) << 7)
		c.write(addr, nv)
		if v&0x01 != 0 {
			c.flagsOn(STATUS_FLAG_CARRY)
		} else {
			c.flagsOff(STATUS_FLAG_CARRY)
		}
		c.addWithOverflow(nv)
	case ANC:
		c.A &= c.read(c.getOperandAddr(mode))
		c.setNegativeAndZeroFlags(c.A)
		if c.A&0x80 != 0 {
			c.flagsOn(STATUS_FLAG_CARRY)
		} else {
			c.flagsOff(STATUS_FLAG_CARRY)
		}
	case ALR:
		c.A &= c.read(c.getOperandAddr(mode))
		if c.A&0x01 != 0 {
			c.flagsOn(STATUS_FLAG_CARRY)
		} else {
			c.flagsOff(STATUS_FLAG_CARRY)
		}
		c.A >>= 1
		c.setNegativeAndZeroFlags(c.A)
	case ARR:
		c.A &= c.read(c.getOperandAddr(mode))
		c.A = bits.RotateLeft8(c.A, -1) | ((c.P & STATUS_FLAG_CARRY) << 7)
		c.setNegativeAndZeroFlags(c.A)
		if c.A&0x40 != 0 {
			c.flagsOn(STATUS_FLAG_CARRY)
		} else {
			c.flagsOff(STATUS_FLAG_CARRY)
		}
		if (c.A>>6)&1^(c.A>>5)&1 != 0 {
			c.flagsOn(STATUS_FLAG_OVERFLOW)
		} else {
			c.flagsOff(STATUS_FLAG_OVERFLOW)
		}
	case AXS:
		v := c.read(c.getOperandAddr(mode))
		r := (c.A & c.X) - v
		if (c.A & c.X) >= v {
			c.flagsOn(STATUS_FLAG_CARRY)
		} else {
			c.flagsOff(STATUS_FLAG_CARRY)
		}
		c.X = r
		c.setNegativeAndZeroFlags(c.X)

	case SHX, SHY, TAS, AHX, XAA, LAS:
		glog.V(2).Infof("mos6502: unstable undocumented opcode at pc=0x%04x treated as NOP", c.PC-1)
		if mode != IMPLICIT {
			c.getOperandAddr(mode)
		}

	default:
		glog.Warningf("mos6502: unhandled operation id %d at pc=0x%04x", op, c.PC-1)
	}
}

func (c *Cpu) opADC(mode uint8) {
	c.addWithOverflow(c.read(c.getOperandAddr(mode)))
}

func (c *Cpu) opAND(mode uint8) {
	c.A &= c.read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.A)
}

func (c *Cpu) opASL(mode uint8) {
	var ov, nv uint8
	if mode == ACCUMULATOR {
		ov = c.A
		c.A <<= 1
		nv = c.A
	} else {
		addr := c.getOperandAddr(mode)
		ov = c.read(addr)
		nv = ov << 1
		c.write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *Cpu) opBIT(mode uint8) {
	o := c.read(c.getOperandAddr(mode))

	c.flagsOff(STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW | STATUS_FLAG_ZERO)
	var flags uint8
	if (o & c.A) == 0 {
		flags |= STATUS_FLAG_ZERO
	}
	flags |= o & (STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW)
	c.flagsOn(flags)
}

func (c *Cpu) opBRK() {
	// BRK's operand byte is a padding byte real hardware still skips.
	c.PC++
	c.pushAddress(c.PC)
	c.pushStack(c.P | STATUS_FLAG_BREAK | UNUSED_STATUS_FLAG)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
	c.PC = c.read16(INT_BRK)
}

func (c *Cpu) opDEC(mode uint8) {
	a := c.getOperandAddr(mode)
	v := c.read(a) - 1
	c.write(a, v)
	c.setNegativeAndZeroFlags(v)
}

func (c *Cpu) opINC(mode uint8) {
	a := c.getOperandAddr(mode)
	v := c.read(a) + 1
	c.write(a, v)
	c.setNegativeAndZeroFlags(v)
}

func (c *Cpu) opLSR(mode uint8) {
	var ov, nv uint8
	if mode == ACCUMULATOR {
		ov = c.A
		c.A >>= 1
		nv = c.A
	} else {
		addr := c.getOperandAddr(mode)
		ov = c.read(addr)
		nv = ov >> 1
		c.write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *Cpu) opROL(mode uint8) {
	var ov, nv uint8
	if mode == ACCUMULATOR {
		ov = c.A
		c.A = bits.RotateLeft8(ov, 1) | (c.P & STATUS_FLAG_CARRY)
		nv = c.A
	} else {
		addr := c.getOperandAddr(mode)
		ov = c.read(addr)
		nv = bits.RotateLeft8(ov, 1) | (c.P & STATUS_FLAG_CARRY)
		c.write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *Cpu) opROR(mode uint8) {
	var ov, nv uint8
	if mode == ACCUMULATOR {
		ov = c.A
		c.A = bits.RotateLeft8(ov, -1) | ((c.P & STATUS_FLAG_CARRY) << 7)
		nv = c.A
	} else {
		addr := c.getOperandAddr(mode)
		ov = c.read(addr)
		nv = bits.RotateLeft8(ov, -1) | ((c.P & STATUS_FLAG_CARRY) << 7)
		c.write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

// addWithOverflow adds b to c.A handling carry, overflow and the N/Z
// flags. SBC is implemented as addWithOverflow(^operand), the standard
// two's-complement trick.
func (c *Cpu) addWithOverflow(b uint8) {
	res16 := uint16(c.A) + uint16(b) + uint16(c.P&STATUS_FLAG_CARRY)
	res := uint8(res16)

	var mask uint8
	if (res16 & 0x100) != 0 {
		mask |= STATUS_FLAG_CARRY
	}
	if (c.A^res)&(b^res)&0x80 != 0 {
		mask |= STATUS_FLAG_OVERFLOW
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.flagsOn(mask)

	c.A = res
	c.setNegativeAndZeroFlags(c.A)
}

func (c *Cpu) baseCMP(a, b uint8) {
	c.setNegativeAndZeroFlags(a - b)
	c.flagsOff(STATUS_FLAG_CARRY)
	if a >= b {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *Cpu) branch(mask uint8, predicate bool) {
	if (c.P&mask > 0) == predicate {
		// c.PC still points at the relative-offset operand byte; the
		// instruction-following address is one past that.
		next := c.PC + 1
		a := c.getOperandAddr(RELATIVE)
		// Branches taken across a page boundary cost an extra cycle,
		// measured from the address of the instruction after the
		// branch, not the target's own page.
		c.cycles += extraCycles(a, next)
		c.cycles++
		c.PC = a
	}
}
