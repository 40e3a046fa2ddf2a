// Package statemap implements the 2-bit-per-cell grid that backs one
// water-index level.
package statemap

import (
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

// StateMap stores a model.State for every cell in [XStart..XEnd] x
// [YStart..YEnd], packed 4 cells per byte. Cell (x, y) uses global cell
// indices; Get/Set take coordinates relative to (XStart, YStart) while
// GetAbsolute/SetAbsolute take global indices directly.
type StateMap struct {
	CellWidth, CellHeight float64
	Box                   geo.Box

	XStart, XEnd int
	YStart, YEnd int
	xCount       int
	yCount       int

	data []uint8
}

// New builds a StateMap covering box at the given cell resolution, with
// every cell initialized to model.Unknown.
func New(box geo.Box, cellWidth, cellHeight float64) *StateMap {
	sm := &StateMap{CellWidth: cellWidth, CellHeight: cellHeight, Box: box}
	sm.XStart = lonToCell(box.Min.Lon, cellWidth)
	sm.XEnd = lonToCell(box.Max.Lon, cellWidth)
	sm.YStart = latToCell(box.Min.Lat, cellHeight)
	sm.YEnd = latToCell(box.Max.Lat, cellHeight)
	sm.xCount = sm.XEnd - sm.XStart + 1
	sm.yCount = sm.YEnd - sm.YStart + 1
	sm.data = make([]uint8, (sm.xCount*sm.yCount+3)/4)
	return sm
}

func lonToCell(lon, cellWidth float64) int {
	return int((lon + 180.0) / cellWidth)
}

func latToCell(lat, cellHeight float64) int {
	return int((lat + 90.0) / cellHeight)
}

// CellForCoord returns the global cell indices containing c.
func (sm *StateMap) CellForCoord(c geo.Coord) (x, y int) {
	return lonToCell(c.Lon, sm.CellWidth), latToCell(c.Lat, sm.CellHeight)
}

// CellBox returns the geographic box covered by absolute cell (x, y).
func (sm *StateMap) CellBox(x, y int) geo.Box {
	minLon := float64(x)*sm.CellWidth - 180.0
	minLat := float64(y)*sm.CellHeight - 90.0
	return geo.Box{
		Min: geo.Coord{Lat: minLat, Lon: minLon},
		Max: geo.Coord{Lat: minLat + sm.CellHeight, Lon: minLon + sm.CellWidth},
	}
}

// XCount returns the number of cells spanned in the x direction.
func (sm *StateMap) XCount() int { return sm.xCount }

// YCount returns the number of cells spanned in the y direction.
func (sm *StateMap) YCount() int { return sm.yCount }

func (sm *StateMap) cellID(x, y int) int { return y*sm.xCount + x }

// IsIn reports whether relative coordinates (x, y) fall inside the map.
func (sm *StateMap) IsIn(x, y int) bool {
	return x >= 0 && x < sm.xCount && y >= 0 && y < sm.yCount
}

// IsInAbsolute reports whether global cell (x, y) falls inside the map.
func (sm *StateMap) IsInAbsolute(x, y int) bool {
	return sm.IsIn(x-sm.XStart, y-sm.YStart)
}

// GetState returns the state of the cell at relative coordinates (x, y).
// Coordinates are not range-checked: an out-of-range (x, y) either reads
// another cell or panics with an index error; callers must check IsIn first.
func (sm *StateMap) GetState(x, y int) model.State {
	id := sm.cellID(x, y)
	b := sm.data[id/4]
	shift := uint(2 * (id % 4))
	return model.State((b >> shift) & 0x3)
}

// SetState sets the state of the cell at relative coordinates (x, y).
func (sm *StateMap) SetState(x, y int, s model.State) {
	id := sm.cellID(x, y)
	idx := id / 4
	shift := uint(2 * (id % 4))
	sm.data[idx] = (sm.data[idx] &^ (0x3 << shift)) | (uint8(s) << shift)
}

// GetStateAbsolute returns the state of global cell (x, y).
func (sm *StateMap) GetStateAbsolute(x, y int) model.State {
	return sm.GetState(x-sm.XStart, y-sm.YStart)
}

// SetStateAbsolute sets the state of global cell (x, y).
func (sm *StateMap) SetStateAbsolute(x, y int, s model.State) {
	sm.SetState(x-sm.XStart, y-sm.YStart, s)
}

// Fill sets every cell in the map to s.
func (sm *StateMap) Fill(s model.State) {
	var b uint8
	b = uint8(s) | uint8(s)<<2 | uint8(s)<<4 | uint8(s)<<6
	for i := range sm.data {
		sm.data[i] = b
	}
}

// Histogram counts cells by state, used for diagnostics.
func (sm *StateMap) Histogram() map[model.State]int {
	h := map[model.State]int{}
	for y := 0; y < sm.yCount; y++ {
		for x := 0; x < sm.xCount; x++ {
			h[sm.GetState(x, y)]++
		}
	}
	return h
}

// Raw exposes the packed byte backing, used only by the index writer/reader.
func (sm *StateMap) Raw() []uint8 { return sm.data }
