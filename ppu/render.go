package ppu

// renderLine renders one row of background tiles and any sprites that
// land on it. p.sl is the scanline being drawn, 0-239.
func (p *PPU) renderLine(sink FrameSink) {
	y := p.sl

	if p.mask&MASK_SHOW_BG != 0 {
		p.renderBackgroundLine(sink, y)
	}
	if p.mask&MASK_SHOW_SPRITES != 0 {
		p.renderSpriteLine(sink, y)
	}
}

func (p *PPU) backgroundPatternBase() uint16 {
	if p.ctrl&CTRL_BACKGROUND_PATTERN_ADDR != 0 {
		return 0x1000
	}
	return 0x0000
}

// tileCoords turns an absolute scrolled pixel position into the loopy
// coarse X/Y and effective nametable select for that tile, handling
// the nametable-select toggle that occurs every time the scroll
// position wraps past a nametable boundary.
func (p *PPU) tileCoords(effX, effY uint16) (coarseX, coarseY uint16, nt uint8) {
	var l loopy
	l.setCoarseX((effX / 8) % 32)
	l.setCoarseY((effY / 8) % 30)
	if (effX/8)/32%2 == 1 {
		l.toggleNametableX()
	}
	if (effY/8)/30%2 == 1 {
		l.toggleNametableY()
	}

	nt = (p.ctrl & 0x03) ^ uint8(l.nametableX()) ^ (uint8(l.nametableY()) << 1)
	return l.coarseX(), l.coarseY(), nt
}

func (p *PPU) renderBackgroundLine(sink FrameSink, y int) {
	effY := uint16(p.scrollY) + uint16(y)
	patternBase := p.backgroundPatternBase()
	bgColor := p.bus.Read(0x3F00)

	for x := 0; x < NES_RES_WIDTH; x++ {
		effX := uint16(p.scrollX) + uint16(x)
		coarseX, coarseY, nt := p.tileCoords(effX, effY)

		ntAddr := 0x2000 + uint16(nt)*0x0400 + coarseY*32 + coarseX
		tileID := p.bus.Read(ntAddr)

		attrAddr := 0x2000 + uint16(nt)*0x0400 + 0x03C0 + (coarseY/4)*8 + (coarseX / 4)
		attrByte := p.bus.Read(attrAddr)
		shift := ((coarseY % 4) / 2 * 4) + ((coarseX % 4) / 2 * 2)
		paletteIdx := (attrByte >> shift) & 0x03

		fineX := effX % 8
		fineY := effY % 8
		patAddr := patternBase + uint16(tileID)*16 + fineY
		lo := p.bus.Read(patAddr)
		hi := p.bus.Read(patAddr + 8)
		bit := 7 - fineX
		pix := ((lo >> bit) & 1) | (((hi >> bit) & 1) << 1)

		hideLeft := x < 8 && p.mask&MASK_SHOW_BG_LEFT == 0
		var colorIdx uint8
		if pix == 0 || hideLeft {
			colorIdx = bgColor
		} else {
			colorIdx = p.bus.Read(0x3F00 + uint16(paletteIdx)*4 + uint16(pix))
			p.bgOpacity[y*NES_RES_WIDTH+x] = 1
		}

		rgb := SYSTEM_PALETTE[colorIdx&0x3F]
		sink.SetPixel(x, y, rgb[0], rgb[1], rgb[2])
	}
}

const maxSpritesPerLine = 8

func (p *PPU) spriteHeight() int {
	if p.ctrl&CTRL_SPRITE_SIZE != 0 {
		return 16
	}
	return 8
}

func (p *PPU) spritePatternAddr(tileID uint8, row int) uint16 {
	height := p.spriteHeight()
	if height == 16 {
		base := uint16(tileID&0xFE) * 16
		table := uint16(tileID&0x01) * 0x1000
		if row >= 8 {
			base += 16
			row -= 8
		}
		return table + base + uint16(row)
	}

	base := uint16(0)
	if p.ctrl&CTRL_SPRITE_PATTERN_ADDR != 0 {
		base = 0x1000
	}
	return base + uint16(tileID)*16 + uint16(row)
}

// renderSpriteLine walks OAM in 4-byte strides, drawing up to eight
// sprites that intersect scanline y and setting the overflow and
// sprite-zero-hit status bits.
func (p *PPU) renderSpriteLine(sink FrameSink, y int) {
	height := p.spriteHeight()
	drawn := 0
	leftClip := p.mask&MASK_SHOW_SPRITES_LEFT == 0

	for i := 0; i < 64; i++ {
		base := i * 4
		sp := OAMFromBytes(p.oam[base : base+4])
		spTop := int(sp.y) + 1
		if y < spTop || y >= spTop+height {
			continue
		}

		if drawn >= maxSpritesPerLine {
			p.status |= STATUS_SPRITE_OVERFLOW
			break
		}
		drawn++

		row := y - spTop
		if sp.flipV {
			row = height - 1 - row
		}
		patAddr := p.spritePatternAddr(sp.tileId, row)
		lo := p.bus.Read(patAddr)
		hi := p.bus.Read(patAddr + 8)

		for col := 0; col < 8; col++ {
			sx := int(sp.x) + col
			if sx >= NES_RES_WIDTH || (sx < 8 && leftClip) {
				continue
			}
			bit := col
			if !sp.flipH {
				bit = 7 - col
			}
			pix := ((lo >> uint(bit)) & 1) | (((hi >> uint(bit)) & 1) << 1)
			if pix == 0 {
				continue
			}

			if i == 0 && p.bgOpacity[y*NES_RES_WIDTH+sx] != 0 {
				p.status |= STATUS_SPRITE_0_HIT
			}

			if sp.renderP == BACK && p.bgOpacity[y*NES_RES_WIDTH+sx] != 0 {
				continue
			}

			colorIdx := p.bus.Read(0x3F10 + uint16(sp.palette)*4 + uint16(pix))
			rgb := SYSTEM_PALETTE[colorIdx&0x3F]
			sink.SetPixel(sx, y, rgb[0], rgb[1], rgb[2])
		}
	}
}
