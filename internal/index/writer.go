// Package index implements the bit-exact water-index serialization format:
// a per-level header, a bitmap of per-cell offsets/states, and per-cell
// ground-tile blobs.
package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"waterindex/internal/statemap"
	"waterindex/pkg/model"
)

// LevelData bundles one level's StateMap and tile data for writing.
type LevelData struct {
	Level  int
	Map    *statemap.StateMap
	Tiles  map[model.Pixel][]model.GroundTile
}

// Write serializes levels (ascending by Level) to w, per SPEC_FULL.md §6.
func Write(w io.Writer, levels []LevelData) error {
	if len(levels) == 0 {
		return fmt.Errorf("waterindex: no levels to write")
	}
	minLevel, maxLevel := levels[0].Level, levels[0].Level
	for _, l := range levels {
		if l.Level < minLevel {
			minLevel = l.Level
		}
		if l.Level > maxLevel {
			maxLevel = l.Level
		}
	}

	byLevel := make(map[int]LevelData, len(levels))
	for _, l := range levels {
		byLevel[l.Level] = l
	}

	var buf bytes.Buffer
	buf.Write(protowire.AppendVarint(nil, uint64(minLevel)))
	buf.Write(protowire.AppendVarint(nil, uint64(maxLevel)))

	// Two passes: first compute each level's body and required offset
	// width, then write headers immediately followed by bodies, with
	// indexDataOffset pointing at each level's own body start within the
	// stream (measured from the start of the file).
	type built struct {
		hasCellData     bool
		defaultState    model.State
		dataOffsetBytes uint8
		xStart, xEnd    int
		yStart, yEnd    int
		body            []byte
	}

	builts := make([]built, 0, maxLevel-minLevel+1)
	for lv := minLevel; lv <= maxLevel; lv++ {
		l, ok := byLevel[lv]
		if !ok {
			builts = append(builts, built{hasCellData: false, defaultState: model.Unknown})
			continue
		}
		hasData := len(l.Tiles) > 0 || stateMapNonUniform(l.Map)
		body, offsetBytes, def, err := buildLevelBody(l, hasData)
		if err != nil {
			return fmt.Errorf("waterindex: level %d: %w", lv, err)
		}
		builts = append(builts, built{
			hasCellData:     hasData,
			defaultState:    def,
			dataOffsetBytes: offsetBytes,
			xStart:          l.Map.XStart, xEnd: l.Map.XEnd,
			yStart: l.Map.YStart, yEnd: l.Map.YEnd,
			body: body,
		})
	}

	// Each level header is 1+1+1+8 bytes plus 4 varints. The headers are
	// laid out at their exact size with a zero indexDataOffset, and the
	// offsets are patched in once the total header length is known.
	headerBufs := make([][]byte, len(builts))
	for i, b := range builts {
		var hb bytes.Buffer
		hb.WriteByte(boolByte(b.hasCellData))
		hb.WriteByte(b.dataOffsetBytes)
		hb.WriteByte(byte(b.defaultState))
		hb.Write(make([]byte, 8)) // indexDataOffset placeholder
		hb.Write(protowire.AppendVarint(nil, zigzagOrRaw(b.xStart)))
		hb.Write(protowire.AppendVarint(nil, zigzagOrRaw(b.xEnd)))
		hb.Write(protowire.AppendVarint(nil, zigzagOrRaw(b.yStart)))
		hb.Write(protowire.AppendVarint(nil, zigzagOrRaw(b.yEnd)))
		headerBufs[i] = hb.Bytes()
	}

	headerTotal := 0
	for _, hb := range headerBufs {
		headerTotal += len(hb)
	}
	preludeLen := buf.Len()
	bodyStart := preludeLen + headerTotal

	offset := uint64(bodyStart)
	for i, b := range builts {
		if b.hasCellData {
			binary.LittleEndian.PutUint64(headerBufs[i][3:11], offset)
			offset += uint64(len(b.body))
		}
	}

	for _, hb := range headerBufs {
		buf.Write(hb)
	}
	for _, b := range builts {
		if b.hasCellData {
			buf.Write(b.body)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// stateMapNonUniform reports whether any cell's state differs from (0,0)'s,
// so a level with no ground tiles but mixed Land/Water/Unknown cells still
// gets a bitmap instead of collapsing to a single default state.
func stateMapNonUniform(sm *statemap.StateMap) bool {
	xCount, yCount := sm.XCount(), sm.YCount()
	if xCount == 0 || yCount == 0 {
		return false
	}
	base := sm.GetState(0, 0)
	for y := 0; y < yCount; y++ {
		for x := 0; x < xCount; x++ {
			if sm.GetState(x, y) != base {
				return true
			}
		}
	}
	return false
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// zigzagOrRaw encodes a signed cell index as an unsigned varint payload;
// cell indices are always non-negative in practice (global cell grid), so
// this is a direct cast guarded by a sign check.
func zigzagOrRaw(v int) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// buildLevelBody lays out one level's bitmap + tile blobs and returns the
// minimum dataOffsetBytes that round-trips every blob offset.
func buildLevelBody(l LevelData, hasData bool) ([]byte, uint8, model.State, error) {
	sm := l.Map
	xCount, yCount := sm.XCount(), sm.YCount()
	cellCount := xCount * yCount

	if !hasData {
		// Determine the single uniform state, defaulting to Unknown if
		// mixed (callers should not reach this path with mixed states).
		def := model.Unknown
		if cellCount > 0 {
			def = sm.GetState(0, 0)
		}
		return nil, 1, def, nil
	}

	// Compute tile blobs per cell first, to learn each cell's blob size.
	blobs := make([][]byte, cellCount)
	for px, tiles := range l.Tiles {
		id := px.Y*xCount + px.X
		blobs[id] = encodeTileBlob(tiles)
	}

	// Try increasing offset widths until every offset fits.
	for width := 1; width <= 8; width++ {
		maxOffset := uint64(1)<<(8*width) - 1
		bitmap := make([]byte, cellCount*width)
		var dataSection bytes.Buffer
		dataSection.Write(make([]byte, 4)) // reserved padding
		ok := true
		for id := 0; id < cellCount; id++ {
			x, y := id%xCount, id/xCount
			if blobs[id] == nil {
				putUintWidth(bitmap[id*width:], width, uint64(sm.GetState(x, y)))
				continue
			}
			off := uint64(dataSection.Len())
			if off > maxOffset {
				ok = false
				break
			}
			putUintWidth(bitmap[id*width:], width, off)
			dataSection.Write(blobs[id])
		}
		if !ok {
			continue
		}
		out := append(bitmap, dataSection.Bytes()...)
		return out, uint8(width), model.Unknown, nil
	}
	return nil, 0, model.Unknown, fmt.Errorf("level body too large to address with an 8-byte offset")
}

func putUintWidth(dst []byte, width int, v uint64) {
	for i := 0; i < width; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func encodeTileBlob(tiles []model.GroundTile) []byte {
	var buf bytes.Buffer
	buf.Write(protowire.AppendVarint(nil, uint64(len(tiles))))
	for _, t := range tiles {
		buf.WriteByte(byte(t.Type))
		buf.Write(protowire.AppendVarint(nil, uint64(len(t.Coords))))
		for _, c := range t.Coords {
			x := c.U
			if c.OnCoast {
				x |= 0x8000
			}
			var b [4]byte
			binary.LittleEndian.PutUint16(b[0:2], x)
			binary.LittleEndian.PutUint16(b[2:4], c.V)
			buf.Write(b[:])
		}
	}
	return buf.Bytes()
}
