// Package model holds the data types produced and consumed by the
// water-index pipeline: cell states, coastline records, ground tiles, and
// the level headers that tie a StateMap to its tile data.
package model

import "waterindex/pkg/geo"

// State is the classification assigned to a single cell.
type State uint8

const (
	Unknown    State = 0
	Land       State = 1
	StateCoast State = 2
	Water      State = 3
)

// String renders the state the way log lines and test failures want it.
func (s State) String() string {
	switch s {
	case Land:
		return "land"
	case StateCoast:
		return "coast"
	case Water:
		return "water"
	default:
		return "unknown"
	}
}

// CoastState is the classification a coastline assigns to one of its two
// sides, before it is resolved to a concrete cell State.
type CoastState uint8

const (
	SideUndefined CoastState = 0
	SideUnknown   CoastState = 1
	SideLand      CoastState = 2
	SideWater     CoastState = 3
)

// ToState maps a resolved coastline side to the cell State it implies.
func (c CoastState) ToState() State {
	switch c {
	case SideLand:
		return Land
	case SideWater:
		return Water
	default:
		return Unknown
	}
}

// Coast is one raw coastline: a way (open polyline) or an area (closed ring,
// first point equal to last). Left/Right describe what lies on each side of
// the sequence when walked in the order given.
type Coast struct {
	ID      int64
	Points  []geo.Coord
	IsArea  bool
	Left    CoastState
	Right   CoastState
}

// Clone returns a deep copy, used when a stage needs to mutate a coastline
// without affecting the caller's copy (simplification, clipping).
func (c *Coast) Clone() *Coast {
	cp := *c
	cp.Points = append([]geo.Coord(nil), c.Points...)
	return &cp
}

// Direction classifies how a coastline segment crosses a cell border.
type Direction uint8

const (
	DirIn Direction = iota
	DirOut
	DirTouch
)

// BorderIndex names one of a cell's four borders, numbered clockwise from
// the top so that border-order sorting matches the clockwise walk.
type BorderIndex uint8

const (
	BorderTop    BorderIndex = 0
	BorderRight  BorderIndex = 1
	BorderBottom BorderIndex = 2
	BorderLeft   BorderIndex = 3
)

// Intersection is one crossing of a coastline segment with a cell border.
type Intersection struct {
	CoastlineIdx      int
	PrevWayPointIndex int
	Point             geo.Coord
	DistanceSquare    float64
	Border            BorderIndex
	Direction         Direction
}

// Pixel is a cell coordinate relative to a StateMap's (xStart, yStart).
type Pixel struct {
	X, Y int
}

// TileType is the classification of a single ground tile.
type TileType uint8

const (
	TileUnknown TileType = 0
	TileLand    TileType = 1
	TileWater   TileType = 2
	TileCoast   TileType = 3
)

// CellMax is the largest cell-local fixed-point coordinate a GroundTile
// vertex can hold.
const CellMax = 32767

// CellCoord is a vertex of a GroundTile, expressed in cell-local fixed-point
// coordinates in [0, CellMax]. OnCoast marks a vertex taken from an input
// coastline: its points, tripoints, and a border crossing from which the
// walk follows the coastline to that crossing's sibling. Cell corners, the
// other border crossings, and the closing point of a contained island ring
// are not marked.
type CellCoord struct {
	U, V    uint16
	OnCoast bool
}

// GroundTile is one closed, clockwise-oriented polygon inside a single
// cell.
type GroundTile struct {
	Type   TileType
	Coords []CellCoord
}

// LevelHeader is the metadata block written for one zoom level (three
// bytes, an 8-byte offset, and four varints).
type LevelHeader struct {
	Level            int
	HasCellData      bool
	DataOffsetBytes  uint8
	DefaultCellData  State
	IndexDataOffset  uint64
	XStart, XEnd     int
	YStart, YEnd     int
}

// CellCount returns the number of cells covered by this level's range.
func (h LevelHeader) CellCount() int {
	return (h.XEnd - h.XStart + 1) * (h.YEnd - h.YStart + 1)
}
