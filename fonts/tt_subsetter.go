package fonts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// SubsetTrueType keeps only the outlines of usedGIDs and the glyphs their
// composites reference. Glyph ids are preserved (Identity-H compatible);
// unused slots become empty glyphs and trailing ones are dropped. Fonts
// without glyf outlines, or with Arabic shaping rules, are returned as is.
func SubsetTrueType(data []byte, usedGIDs map[int]bool) ([]byte, error) {
	p := &ttParser{data: data}
	if err := p.ParseDirectory(); err != nil {
		return nil, err
	}

	// Check for essential tables
	if !p.HasTable("glyf") || !p.HasTable("loca") || !p.HasTable("head") || !p.HasTable("maxp") || !p.HasTable("hmtx") || !p.HasTable("hhea") {
		return data, nil
	}

	// Check for complex scripts (Arabic) in GSUB
	if p.hasComplexScript() {
		return data, nil
	}

	headData, err := p.ReadTable("head")
	if err != nil {
		return nil, err
	}
	if len(headData) < 54 {
		return nil, fmt.Errorf("head table truncated")
	}
	indexToLocFormat := int16(binary.BigEndian.Uint16(headData[50:52]))

	maxpData, err := p.ReadTable("maxp")
	if err != nil {
		return nil, err
	}
	numGlyphs := int(binary.BigEndian.Uint16(maxpData[4:6]))

	closure := make(map[int]bool)
	closure[0] = true
	for gid := range usedGIDs {
		closure[gid] = true
	}

	if err := p.computeClosure(closure, numGlyphs, indexToLocFormat); err != nil {
		return nil, fmt.Errorf("compute closure: %w", err)
	}

	maxUsedGID := 0
	for gid := range closure {
		if gid > maxUsedGID {
			maxUsedGID = gid
		}
	}
	newNumGlyphs := maxUsedGID + 1
	if newNumGlyphs > numGlyphs {
		newNumGlyphs = numGlyphs // Should not happen if input is valid
	}

	newGlyf, newLoca, err := p.rebuildGlyfLoca(closure, newNumGlyphs, indexToLocFormat)
	if err != nil {
		return nil, err
	}

	newHmtx, err := p.rebuildHmtx(newNumGlyphs)
	if err != nil {
		return nil, err
	}

	newMaxp := make([]byte, len(maxpData))
	copy(newMaxp, maxpData)
	binary.BigEndian.PutUint16(newMaxp[4:], uint16(newNumGlyphs))

	// loca is rebuilt in the long format
	newHead := make([]byte, len(headData))
	copy(newHead, headData)
	binary.BigEndian.PutUint16(newHead[50:], 1)

	keepTables := []string{"head", "hhea", "maxp", "hmtx", "loca", "glyf", "cmap", "name", "OS/2", "post", "cvt ", "fpgm", "prep", "GSUB", "GPOS", "GDEF", "gasp"}

	w := &ttWriter{}

	w.AddTable("glyf", newGlyf)
	w.AddTable("loca", newLoca)
	w.AddTable("hmtx", newHmtx)
	w.AddTable("maxp", newMaxp)
	w.AddTable("head", newHead)

	for _, tag := range keepTables {
		if tag == "glyf" || tag == "loca" || tag == "hmtx" || tag == "maxp" || tag == "head" {
			continue
		}
		if p.HasTable(tag) {
			data, err := p.ReadTable(tag)
			if err != nil {
				return nil, err
			}

			if tag == "hhea" {
				if len(data) >= 36 {
					newData := make([]byte, len(data))
					copy(newData, data)
					binary.BigEndian.PutUint16(newData[34:], uint16(newNumGlyphs))
					data = newData
				}
			}

			w.AddTable(tag, data)
		}
	}

	return w.Bytes(), nil
}

type ttParser struct {
	data   []byte
	tables map[string]tableEntry
}

type tableEntry struct {
	offset uint32
	length uint32
}

func (p *ttParser) ParseDirectory() error {
	if len(p.data) < 12 {
		return fmt.Errorf("invalid font header")
	}
	numTables := int(binary.BigEndian.Uint16(p.data[4:6]))
	p.tables = make(map[string]tableEntry)

	offset := 12
	for i := 0; i < numTables; i++ {
		if offset+16 > len(p.data) {
			return fmt.Errorf("table directory truncated")
		}
		tag := string(p.data[offset : offset+4])
		off := binary.BigEndian.Uint32(p.data[offset+8 : offset+12])
		length := binary.BigEndian.Uint32(p.data[offset+12 : offset+16])

		p.tables[tag] = tableEntry{offset: off, length: length}
		offset += 16
	}
	return nil
}

func (p *ttParser) HasTable(tag string) bool {
	_, ok := p.tables[tag]
	return ok
}

func (p *ttParser) ReadTable(tag string) ([]byte, error) {
	entry, ok := p.tables[tag]
	if !ok {
		return nil, fmt.Errorf("table %s not found", tag)
	}
	if int(entry.offset+entry.length) > len(p.data) {
		return nil, fmt.Errorf("table %s out of bounds", tag)
	}
	return p.data[entry.offset : entry.offset+entry.length], nil
}

func (p *ttParser) hasComplexScript() bool {
	if !p.HasTable("GSUB") {
		return false
	}
	data, err := p.ReadTable("GSUB")
	if err != nil {
		return false
	}
	if len(data) < 10 {
		return false
	}

	// ScriptListOffset is at offset 4
	scriptListOffset := binary.BigEndian.Uint16(data[4:6])
	if int(scriptListOffset) >= len(data) {
		return false
	}

	listData := data[scriptListOffset:]
	if len(listData) < 2 {
		return false
	}
	scriptCount := binary.BigEndian.Uint16(listData[0:2])

	offset := 2
	for i := 0; i < int(scriptCount); i++ {
		if offset+6 > len(listData) {
			break
		}
		tag := string(listData[offset : offset+4])
		if tag == "arab" {
			return true
		}
		offset += 6
	}
	return false
}

func (p *ttParser) computeClosure(closure map[int]bool, numGlyphs int, indexToLocFormat int16) error {
	loca, err := p.ReadTable("loca")
	if err != nil {
		return err
	}
	glyf, err := p.ReadTable("glyf")
	if err != nil {
		return err
	}

	getLoc := func(gid int) uint32 {
		if indexToLocFormat == 0 {
			return uint32(binary.BigEndian.Uint16(loca[gid*2:])) * 2
		}
		return binary.BigEndian.Uint32(loca[gid*4:])
	}

	queue := make([]int, 0, len(closure))
	for gid := range closure {
		queue = append(queue, gid)
	}

	for len(queue) > 0 {
		gid := queue[0]
		queue = queue[1:]

		if gid >= numGlyphs {
			continue
		}

		start := getLoc(gid)
		end := getLoc(gid + 1)
		if start >= end {
			continue // Empty glyph
		}
		if start >= uint32(len(glyf)) {
			continue
		}

		if start+10 > uint32(len(glyf)) {
			continue
		}
		numContours := int16(binary.BigEndian.Uint16(glyf[start : start+2]))

		if numContours >= 0 {
			continue // Simple glyph
		}

		// Composite glyph
		offset := start + 10
		for {
			if offset+4 > uint32(len(glyf)) {
				break
			}
			flags := binary.BigEndian.Uint16(glyf[offset : offset+2])
			subGID := int(binary.BigEndian.Uint16(glyf[offset+2 : offset+4]))

			if !closure[subGID] {
				closure[subGID] = true
				queue = append(queue, subGID)
			}

			offset += 4
			var skip int
			if flags&0x0001 != 0 { // ARG_1_AND_2_ARE_WORDS
				skip += 4
			} else {
				skip += 2
			}
			if flags&0x0008 != 0 { // WE_HAVE_A_SCALE
				skip += 2
			} else if flags&0x0040 != 0 { // WE_HAVE_AN_X_AND_Y_SCALE
				skip += 4
			} else if flags&0x0080 != 0 { // WE_HAVE_A_TWO_BY_TWO
				skip += 8
			}
			offset += uint32(skip)

			if flags&0x0020 == 0 { // MORE_COMPONENTS
				break
			}
		}
	}
	return nil
}

func (p *ttParser) rebuildGlyfLoca(closure map[int]bool, numGlyphs int, indexToLocFormat int16) ([]byte, []byte, error) {
	oldLoca, err := p.ReadTable("loca")
	if err != nil {
		return nil, nil, err
	}
	oldGlyf, err := p.ReadTable("glyf")
	if err != nil {
		return nil, nil, err
	}

	getLoc := func(gid int) uint32 {
		if indexToLocFormat == 0 {
			return uint32(binary.BigEndian.Uint16(oldLoca[gid*2:])) * 2
		}
		return binary.BigEndian.Uint32(oldLoca[gid*4:])
	}

	var newGlyf bytes.Buffer
	var newLoca bytes.Buffer

	offsets := make([]uint32, numGlyphs+1)
	currentOffset := uint32(0)

	for gid := 0; gid < numGlyphs; gid++ {
		offsets[gid] = currentOffset
		if closure[gid] {
			start := getLoc(gid)
			end := getLoc(gid + 1)
			if start < end && start < uint32(len(oldGlyf)) && end <= uint32(len(oldGlyf)) {
				length := end - start
				newGlyf.Write(oldGlyf[start:end])
				currentOffset += length
			}
		}
	}
	offsets[numGlyphs] = currentOffset

	for _, off := range offsets {
		binary.Write(&newLoca, binary.BigEndian, off)
	}

	return newGlyf.Bytes(), newLoca.Bytes(), nil
}

func (p *ttParser) rebuildHmtx(numGlyphs int) ([]byte, error) {
	hhea, err := p.ReadTable("hhea")
	if err != nil {
		return nil, err
	}
	numOfHMetrics := int(binary.BigEndian.Uint16(hhea[34:36]))

	hmtx, err := p.ReadTable("hmtx")
	if err != nil {
		return nil, err
	}

	getMetric := func(gid int) (uint16, int16) {
		if gid < numOfHMetrics {
			adv := binary.BigEndian.Uint16(hmtx[gid*4 : gid*4+2])
			lsb := int16(binary.BigEndian.Uint16(hmtx[gid*4+2 : gid*4+4]))
			return adv, lsb
		}
		lastAdv := binary.BigEndian.Uint16(hmtx[(numOfHMetrics-1)*4 : (numOfHMetrics-1)*4+2])

		lsbOffset := numOfHMetrics*4 + (gid-numOfHMetrics)*2
		lsb := int16(binary.BigEndian.Uint16(hmtx[lsbOffset : lsbOffset+2]))
		return lastAdv, lsb
	}

	var newHmtx bytes.Buffer

	for gid := 0; gid < numGlyphs; gid++ {
		adv, lsb := getMetric(gid)
		binary.Write(&newHmtx, binary.BigEndian, adv)
		binary.Write(&newHmtx, binary.BigEndian, lsb)
	}

	return newHmtx.Bytes(), nil
}

type ttWriter struct {
	tables []tableData
}

type tableData struct {
	tag  string
	data []byte
}

func (w *ttWriter) AddTable(tag string, data []byte) {
	w.tables = append(w.tables, tableData{tag, data})
}

func (w *ttWriter) Bytes() []byte {
	// Sort tables by tag
	sort.Slice(w.tables, func(i, j int) bool { return w.tables[i].tag < w.tables[j].tag })

	numTables := len(w.tables)
	offset := 12 + 16*numTables

	var buf bytes.Buffer
	// Header
	buf.Write([]byte{0x00, 0x01, 0x00, 0x00}) // sfnt version 1.0
	binary.Write(&buf, binary.BigEndian, uint16(numTables))

	entrySelector := 0
	for (1 << (entrySelector + 1)) <= numTables {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16
	rangeShift := numTables*16 - searchRange

	binary.Write(&buf, binary.BigEndian, uint16(searchRange))
	binary.Write(&buf, binary.BigEndian, uint16(entrySelector))
	binary.Write(&buf, binary.BigEndian, uint16(rangeShift))

	// Directory
	for _, t := range w.tables {
		padding := (4 - (len(t.data) % 4)) % 4

		checksum := calcChecksum(t.data)

		buf.WriteString(t.tag)
		binary.Write(&buf, binary.BigEndian, checksum)
		binary.Write(&buf, binary.BigEndian, uint32(offset))
		binary.Write(&buf, binary.BigEndian, uint32(len(t.data)))

		offset += len(t.data) + padding
	}

	// Write Tables
	tableOffsets := make(map[string]int)
	for _, t := range w.tables {
		start := buf.Len()
		tableOffsets[t.tag] = start

		buf.Write(t.data)
		padding := (4 - (len(t.data) % 4)) % 4
		for k := 0; k < padding; k++ {
			buf.WriteByte(0)
		}
	}

	finalBytes := buf.Bytes()

	if off, ok := tableOffsets["head"]; ok {
		if off+12 <= len(finalBytes) {
			finalBytes[off+8] = 0
			finalBytes[off+9] = 0
			finalBytes[off+10] = 0
			finalBytes[off+11] = 0
		}

		for i, t := range w.tables {
			if t.tag == "head" {
				dirOffset := 12 + 16*i
				length := binary.BigEndian.Uint32(finalBytes[dirOffset+12 : dirOffset+16])
				paddedLen := (length + 3) & ^uint32(3)
				headSlice := finalBytes[off : uint32(off)+paddedLen]
				newChk := calcChecksum(headSlice)
				binary.BigEndian.PutUint32(finalBytes[dirOffset+4:], newChk)
				break
			}
		}

		fullChk := calcChecksum(finalBytes)
		adjustment := 0xB1B0AFBA - fullChk

		binary.BigEndian.PutUint32(finalBytes[off+8:], adjustment)
	}

	return finalBytes
}

func calcChecksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		if i+4 <= len(data) {
			sum += binary.BigEndian.Uint32(data[i : i+4])
		} else {
			var buf [4]byte
			copy(buf[:], data[i:])
			sum += binary.BigEndian.Uint32(buf[:])
		}
	}
	return sum
}
