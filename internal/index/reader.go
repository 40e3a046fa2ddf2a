package index

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"waterindex/pkg/model"
)

// Reader parses a serialized water index, decoding level headers eagerly
// and cell/tile data lazily on request.
type Reader struct {
	data     []byte
	MinLevel int
	MaxLevel int
	headers  map[int]model.LevelHeader
}

// NewReader parses the header section of data.
func NewReader(data []byte) (*Reader, error) {
	minLevel, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return nil, fmt.Errorf("waterindex: malformed minLevel varint")
	}
	data2 := data[n:]
	maxLevel, n2 := protowire.ConsumeVarint(data2)
	if n2 < 0 {
		return nil, fmt.Errorf("waterindex: malformed maxLevel varint")
	}
	off := n + n2

	r := &Reader{data: data, MinLevel: int(minLevel), MaxLevel: int(maxLevel), headers: map[int]model.LevelHeader{}}
	for lv := r.MinLevel; lv <= r.MaxLevel; lv++ {
		h, consumed, err := parseHeader(data, off, lv)
		if err != nil {
			return nil, err
		}
		r.headers[lv] = h
		off += consumed
	}
	return r, nil
}

func parseHeader(data []byte, off int, level int) (model.LevelHeader, int, error) {
	start := off
	if off+11 > len(data) {
		return model.LevelHeader{}, 0, fmt.Errorf("waterindex: truncated header for level %d", level)
	}
	h := model.LevelHeader{Level: level}
	h.HasCellData = data[off] != 0
	off++
	h.DataOffsetBytes = data[off]
	off++
	h.DefaultCellData = model.State(data[off])
	off++
	h.IndexDataOffset = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8

	xStart, n := protowire.ConsumeVarint(data[off:])
	off += n
	xEnd, n := protowire.ConsumeVarint(data[off:])
	off += n
	yStart, n := protowire.ConsumeVarint(data[off:])
	off += n
	yEnd, n := protowire.ConsumeVarint(data[off:])
	off += n
	h.XStart, h.XEnd, h.YStart, h.YEnd = int(xStart), int(xEnd), int(yStart), int(yEnd)

	return h, off - start, nil
}

// Header returns the parsed header for level, if present.
func (r *Reader) Header(level int) (model.LevelHeader, bool) {
	h, ok := r.headers[level]
	return h, ok
}

// CellState returns the decoded state for global cell (x, y) at level: the
// raw state if the cell carries none, or model.StateCoast if it owns a tile
// blob (use Tiles to read the blob itself).
func (r *Reader) CellState(level, x, y int) (model.State, error) {
	h, ok := r.headers[level]
	if !ok {
		return model.Unknown, fmt.Errorf("waterindex: no such level %d", level)
	}
	if !h.HasCellData {
		return h.DefaultCellData, nil
	}
	raw, hasTile, err := r.bitmapEntry(h, x, y)
	if err != nil {
		return model.Unknown, err
	}
	if hasTile {
		return model.StateCoast, nil
	}
	return model.State(raw), nil
}

// bitmapEntry returns the raw bitmap value for cell (x, y) at level h, and
// whether that value addresses a tile blob rather than a plain State. Blob
// offsets count the 4 reserved padding bytes that open the data section, so
// every offset is at least 4 and any value above 3 (the largest State) is an
// offset.
func (r *Reader) bitmapEntry(h model.LevelHeader, x, y int) (uint64, bool, error) {
	xCount := h.XEnd - h.XStart + 1
	id := (y-h.YStart)*xCount + (x - h.XStart)
	width := int(h.DataOffsetBytes)
	bitmapOff := int(h.IndexDataOffset) + id*width
	if bitmapOff+width > len(r.data) {
		return 0, false, fmt.Errorf("waterindex: bitmap entry out of range for cell (%d,%d)", x, y)
	}
	v := readUintWidth(r.data[bitmapOff:], width)
	return v, v > 3, nil
}

func readUintWidth(src []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(src[i]) << (8 * i)
	}
	return v
}

// Tiles decodes and returns the ground tiles stored for global cell (x, y)
// at level, or nil if the cell has no tile data.
func (r *Reader) Tiles(level, x, y int) ([]model.GroundTile, error) {
	h, ok := r.headers[level]
	if !ok {
		return nil, fmt.Errorf("waterindex: no such level %d", level)
	}
	if !h.HasCellData {
		return nil, nil
	}
	v, hasTile, err := r.bitmapEntry(h, x, y)
	if err != nil {
		return nil, err
	}
	if !hasTile {
		return nil, nil
	}
	xCount := h.XEnd - h.XStart + 1
	yCount := h.YEnd - h.YStart + 1
	bitmapLen := xCount * yCount * int(h.DataOffsetBytes)
	return r.decodeTileBlob(int(h.IndexDataOffset), bitmapLen, v)
}

// decodeTileBlob decodes the tile blob at dataStart+bitmapLen+offset, where
// dataStart is the level's bitmap start (IndexDataOffset), bitmapLen is the
// bitmap's total byte length, and offset is measured from the start of the
// data section, which already includes the 4 reserved padding bytes written
// immediately after the bitmap (see writer.go's buildLevelBody).
func (r *Reader) decodeTileBlob(dataStart, bitmapLen int, offset uint64) ([]model.GroundTile, error) {
	blobStart := dataStart + bitmapLen + int(offset)
	if blobStart >= len(r.data) {
		return nil, fmt.Errorf("waterindex: tile blob offset out of range")
	}
	pos := blobStart
	tileCount, n := protowire.ConsumeVarint(r.data[pos:])
	if n < 0 {
		return nil, fmt.Errorf("waterindex: malformed tile count varint")
	}
	pos += n
	tiles := make([]model.GroundTile, 0, tileCount)
	for i := uint64(0); i < tileCount; i++ {
		t := model.GroundTile{Type: model.TileType(r.data[pos])}
		pos++
		coordCount, n := protowire.ConsumeVarint(r.data[pos:])
		if n < 0 {
			return nil, fmt.Errorf("waterindex: malformed coord count varint")
		}
		pos += n
		t.Coords = make([]model.CellCoord, 0, coordCount)
		for j := uint64(0); j < coordCount; j++ {
			x := binary.LittleEndian.Uint16(r.data[pos : pos+2])
			y := binary.LittleEndian.Uint16(r.data[pos+2 : pos+4])
			pos += 4
			onCoast := x&0x8000 != 0
			t.Coords = append(t.Coords, model.CellCoord{U: x &^ 0x8000, V: y, OnCoast: onCoast})
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}
