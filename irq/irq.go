// Package irq provides a small level-triggered interrupt line shared
// between the ppu and mos6502 packages, so the ppu can request an NMI
// without either package importing the other.
package irq

// Line is a level-triggered signal: one side raises it, the other
// observes and clears it once serviced.
type Line struct {
	pending bool
}

// Raise asserts the line. Safe to call repeatedly before it's cleared.
func (l *Line) Raise() {
	l.pending = true
}

// Clear deasserts the line.
func (l *Line) Clear() {
	l.pending = false
}

// Pending reports whether the line is currently asserted.
func (l *Line) Pending() bool {
	return l.pending
}
