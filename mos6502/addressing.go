package mos6502

// getOperandAddr resolves the effective address for mode, assuming PC
// points at the first operand byte (i.e. past the opcode byte
// itself). Indexed modes that can cross a page boundary charge the
// extra cycle onto c.cycles as a side effect, matching real hardware's
// variable-length instructions. ACCUMULATOR and IMPLICIT never call
// this; callers must special-case them.
func (c *Cpu) getOperandAddr(mode uint8) uint16 {
	var addr uint16
	switch mode {
	case IMMEDIATE:
		addr = c.PC
	case ZERO_PAGE:
		addr = uint16(c.read(c.PC))
	case ZERO_PAGE_X:
		return uint16(c.read(c.PC) + c.X)
	case ZERO_PAGE_Y:
		return uint16(c.read(c.PC) + c.Y)
	case ABSOLUTE:
		return c.read16(c.PC)
	case ABSOLUTE_X:
		a := c.read16(c.PC)
		addr = a + uint16(c.X)
		c.cycles += extraCycles(a, addr)
	case ABSOLUTE_Y:
		a := c.read16(c.PC)
		addr = a + uint16(c.Y)
		c.cycles += extraCycles(a, addr)
	case INDIRECT:
		return c.read16bug(c.read16(c.PC))
	case INDIRECT_X:
		return c.zpRead16(c.read(c.PC) + c.X)
	case INDIRECT_Y:
		a := c.zpRead16(c.read(c.PC))
		addr = a + uint16(c.Y)
		c.cycles += extraCycles(a, addr)
	case RELATIVE:
		// Relative from PC at the time the branch executes. We
		// advance PC as soon as we consume the opcode byte, so we
		// account for that here when computing the target.
		addr = (c.PC + 1) + uint16(int8(c.read(c.PC)))
	default:
		panic("mos6502: invalid addressing mode for getOperandAddr")
	}

	return addr
}

// zpRead16 reads a little-endian pointer out of zero page, wrapping
// the high-byte fetch back to $00 instead of spilling into page 1.
// Used by the indexed-indirect and indirect-indexed addressing modes.
func (c *Cpu) zpRead16(zpAddr uint8) uint16 {
	lo := uint16(c.read(uint16(zpAddr)))
	hi := uint16(c.read(uint16(zpAddr + 1)))
	return (hi << 8) | lo
}
