package nesrom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"
)

var (
	// ErrBadMagic is returned when the leading 4 bytes aren't "NES\x1A".
	ErrBadMagic = errors.New("nesrom: bad magic number")
	// ErrTruncated is returned when the byte slice is shorter than the
	// header declares it should be.
	ErrTruncated = errors.New("nesrom: truncated ROM image")
	// ErrUnsupportedMapper is returned by mappers.Get for any mapper ID
	// this core doesn't implement; kept here so callers that only import
	// nesrom can still reference the sentinel (spec.md §4.1).
	ErrUnsupportedMapper = errors.New("nesrom: unsupported mapper")
	// ErrBadPrgSize is returned when the header declares zero PRG banks,
	// which would leave the CPU with no code to execute.
	ErrBadPrgSize = errors.New("nesrom: PRG ROM size is zero")
)

type PlayChoicePROM struct {
	Data       [16]byte
	CounterOut [16]byte
}

// ROM holds a fully parsed iNES/NES 2.0 image: header metadata plus the
// PRG, CHR and optional trainer/PlayChoice payloads sliced out of it.
type ROM struct {
	h         *header
	trainer   []byte          // if present
	prg       []byte          // 16384 * x bytes; x from header
	chr       []byte          // 8192 * y bytes; y from header
	pcInstRom []byte          // if present
	pcPROM    *PlayChoicePROM // if present; often missing - see PC10 ROM-Images
}

const (
	HEADER_SIZE    = 16
	TRAINER_SIZE   = 512
	PRG_BLOCK_SIZE = 16384
	CHR_BLOCK_SIZE = 8192
	PC_INST_SIZE   = 8192
	PC_PROM_SIZE   = 32
)

// New parses a complete iNES/NES 2.0 image already read into memory.
// File I/O is the caller's responsibility; New never touches the
// filesystem.
func New(data []byte) (*ROM, error) {
	if len(data) < HEADER_SIZE {
		return nil, fmt.Errorf("%w: only %d bytes", ErrTruncated, len(data))
	}

	h := parseHeader(data[:HEADER_SIZE])
	if !h.isINesFormat() {
		return nil, fmt.Errorf("%w: got %q", ErrBadMagic, h.constant)
	}
	if h.prgSize == 0 {
		return nil, ErrBadPrgSize
	}

	r := &ROM{h: h}
	off := HEADER_SIZE

	if h.hasTrainer() {
		end := off + TRAINER_SIZE
		if end > len(data) {
			return nil, fmt.Errorf("%w: trainer", ErrTruncated)
		}
		r.trainer = data[off:end]
		off = end
	}

	prgLen := PRG_BLOCK_SIZE * int(h.prgSize)
	if off+prgLen > len(data) {
		return nil, fmt.Errorf("%w: PRG ROM", ErrTruncated)
	}
	r.prg = data[off : off+prgLen]
	off += prgLen

	chrLen := CHR_BLOCK_SIZE * int(h.chrSize)
	if off+chrLen > len(data) {
		return nil, fmt.Errorf("%w: CHR ROM", ErrTruncated)
	}
	r.chr = data[off : off+chrLen]
	off += chrLen

	if h.hasPlayChoice() {
		if off+PC_INST_SIZE <= len(data) {
			r.pcInstRom = data[off : off+PC_INST_SIZE]
			off += PC_INST_SIZE
		} else {
			glog.Warningf("nesrom: PlayChoice flag set but INST ROM missing (%d bytes remain)", len(data)-off)
		}

		if off+PC_PROM_SIZE <= len(data) {
			var pc PlayChoicePROM
			copy(pc.Data[:], data[off:off+PC_PROM_SIZE/2])
			copy(pc.CounterOut[:], data[off+PC_PROM_SIZE/2:off+PC_PROM_SIZE])
			r.pcPROM = &pc
			off += PC_PROM_SIZE
		}
	}

	if off < len(data) {
		glog.Warningf("nesrom: %d trailing bytes past expected image size, ignoring", len(data)-off)
	}

	return r, nil
}

func (r *ROM) NumPrgBlocks() uint8 {
	return r.h.prgSize
}

func (r *ROM) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", r.h))
	if r.h.hasTrainer() {
		sb.WriteString(fmt.Sprintf("Trainer: %v\n", r.trainer))
	}

	sb.WriteString(fmt.Sprintf("PRG: %d bytes\n", len(r.prg)))
	sb.WriteString(fmt.Sprintf("CHR: %d bytes\n", len(r.chr)))

	return sb.String()
}

func (r *ROM) PrgRead(addr uint16) uint8 {
	return r.prg[addr]
}

func (r *ROM) PrgSize() int {
	return len(r.prg)
}

func (r *ROM) ChrRead(addr uint16) uint8 {
	if int(addr) >= len(r.chr) {
		return 0
	}
	return r.chr[addr]
}

func (r *ROM) ChrSize() int {
	return len(r.chr)
}

func (r *ROM) MapperNum() uint16 {
	return uint16(r.h.mapperNum())
}

// MirrorMode reports the nametable mirroring mode the PPU should apply:
// MIRROR_HORIZONTAL, MIRROR_VERTICAL or MIRROR_FOUR_SCREEN.
func (r *ROM) MirrorMode() uint8 {
	return r.h.mirroringMode()
}

// HasBattery reports whether the cartridge carries battery-backed PRG
// RAM at $6000-$7FFF.
func (r *ROM) HasBattery() bool {
	return r.h.hasPrgRAM()
}

// HasTrainer reports whether a 512-byte trainer preceded the PRG data.
func (r *ROM) HasTrainer() bool {
	return r.h.hasTrainer()
}

// ConsoleType reports the target hardware the ROM was built for.
func (r *ROM) ConsoleType() ConsoleType {
	return r.h.consoleType()
}

// IsNES2 reports whether the header follows the NES 2.0 extension.
func (r *ROM) IsNES2() bool {
	return r.h.isNES2Format()
}
