// Package flood implements the flood-propagation stage: marking coast
// cells, flooding water and land across unknown cells, and patching fully
// interior islands.
package flood

import (
	"waterindex/internal/cellindex"
	"waterindex/internal/statemap"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

// MarkCoastlineCells sets every cell touched by a coastline from unknown to
// coast.
func MarkCoastlineCells(sm *statemap.StateMap, coastlinePoints [][]geo.Coord) {
	for _, pts := range coastlinePoints {
		for px := range cellindex.GetCells(sm, pts) {
			if sm.GetState(px.X, px.Y) == model.Unknown {
				sm.SetState(px.X, px.Y, model.StateCoast)
			}
		}
	}
}

// neighborOffsets are the four-connected neighbor deltas.
var neighborOffsets = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// CalculateCoastEnvironment inspects each coast cell's ground tiles for a
// full-border fill and upgrades the corresponding unknown neighbor.
func CalculateCoastEnvironment(sm *statemap.StateMap, tiles map[model.Pixel][]model.GroundTile) {
	for px, ts := range tiles {
		for _, t := range ts {
			side, ok := fullBorderSide(t)
			if !ok {
				continue
			}
			nx, ny := neighborFor(px, side)
			if !sm.IsIn(nx, ny) || sm.GetState(nx, ny) != model.Unknown {
				continue
			}
			switch t.Type {
			case model.TileLand:
				sm.SetState(nx, ny, model.Land)
			case model.TileWater:
				sm.SetState(nx, ny, model.Water)
			}
		}
	}
}

// fullBorderSide reports whether tile runs corner-to-corner along one
// border, and if so which.
func fullBorderSide(t model.GroundTile) (model.BorderIndex, bool) {
	hasCorner := func(u, v uint16) bool {
		for _, c := range t.Coords {
			if c.U == u && c.V == v {
				return true
			}
		}
		return false
	}
	switch {
	case hasCorner(0, model.CellMax) && hasCorner(model.CellMax, model.CellMax):
		return model.BorderTop, true
	case hasCorner(model.CellMax, model.CellMax) && hasCorner(model.CellMax, 0):
		return model.BorderRight, true
	case hasCorner(model.CellMax, 0) && hasCorner(0, 0):
		return model.BorderBottom, true
	case hasCorner(0, 0) && hasCorner(0, model.CellMax):
		return model.BorderLeft, true
	}
	return 0, false
}

func neighborFor(px model.Pixel, side model.BorderIndex) (int, int) {
	switch side {
	case model.BorderTop:
		return px.X, px.Y + 1
	case model.BorderRight:
		return px.X + 1, px.Y
	case model.BorderBottom:
		return px.X, px.Y - 1
	default:
		return px.X - 1, px.Y
	}
}

// InsidePolygon reports whether containsFn accepts the center of cell
// (x, y) (relative coordinates), so a bounding-polygon test can be used to
// keep FillWater from leaking outside the data region.
func InsidePolygon(sm *statemap.StateMap, x, y int, containsFn func(geo.Coord) bool) bool {
	box := sm.CellBox(x+sm.XStart, y+sm.YStart)
	center := geo.Coord{Lat: (box.Min.Lat + box.Max.Lat) / 2, Lon: (box.Min.Lon + box.Max.Lon) / 2}
	return containsFn(center)
}

// FillWater runs `rounds` double-buffered flood-fill passes from every
// water cell into unknown neighbors that lie within the data region.
func FillWater(sm *statemap.StateMap, rounds int, insideRegion func(x, y int) bool) {
	w, h := sm.XCount(), sm.YCount()
	cur := make([]model.State, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cur[y*w+x] = sm.GetState(x, y)
		}
	}
	next := make([]model.State, len(cur))

	for r := 0; r < rounds; r++ {
		copy(next, cur)
		changed := false
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if cur[y*w+x] != model.Unknown {
					continue
				}
				if !insideRegion(x, y) {
					continue
				}
				if hasWaterNeighbor(cur, w, h, x, y) {
					next[y*w+x] = model.Water
					changed = true
				}
			}
		}
		cur, next = next, cur
		if !changed {
			break
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if sm.GetState(x, y) != cur[y*w+x] {
				sm.SetState(x, y, cur[y*w+x])
			}
		}
	}
}

func hasWaterNeighbor(states []model.State, w, h, x, y int) bool {
	for _, d := range neighborOffsets {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= w || ny < 0 || ny >= h {
			continue
		}
		if states[ny*w+nx] == model.Water {
			return true
		}
	}
	return false
}

// FillLand repeatedly scans rows left-to-right and columns bottom-to-top,
// filling `land . unknown+ . (coast|land)` runs with land, until no cell
// changes in a full pass.
func FillLand(sm *statemap.StateMap) {
	w, h := sm.XCount(), sm.YCount()
	for {
		changed := false
		for y := 0; y < h; y++ {
			changed = fillRun(sm, w, func(i int) (int, int) { return i, y }) || changed
		}
		for x := 0; x < w; x++ {
			changed = fillRun(sm, h, func(i int) (int, int) { return x, i }) || changed
		}
		if !changed {
			return
		}
	}
}

func fillRun(sm *statemap.StateMap, n int, at func(i int) (int, int)) bool {
	changed := false
	i := 0
	for i < n {
		x, y := at(i)
		if sm.GetState(x, y) != model.Land {
			i++
			continue
		}
		j := i + 1
		for j < n {
			xj, yj := at(j)
			if sm.GetState(xj, yj) != model.Unknown {
				break
			}
			j++
		}
		if j > i+1 && j < n {
			xj, yj := at(j)
			end := sm.GetState(xj, yj)
			if end == model.Land || end == model.StateCoast {
				for k := i + 1; k < j; k++ {
					xk, yk := at(k)
					sm.SetState(xk, yk, model.Land)
				}
				changed = true
			}
		}
		i = j
	}
	return changed
}

// FillWaterAroundIsland detects coast cells whose ground tiles are fully
// interior islands (no tile vertex touches a cell corner) with water on at
// least one neighboring side, and prepends a full-cell water tile to represent
// the background sea around the island.
func FillWaterAroundIsland(sm *statemap.StateMap, tiles map[model.Pixel][]model.GroundTile) {
	for px, ts := range tiles {
		if len(ts) == 0 || touchesAnyCorner(ts) {
			continue
		}
		if !anyNeighborWater(sm, px, tiles) {
			continue
		}
		full := model.GroundTile{
			Type: model.TileWater,
			Coords: []model.CellCoord{
				{U: 0, V: model.CellMax},
				{U: model.CellMax, V: model.CellMax},
				{U: model.CellMax, V: 0},
				{U: 0, V: 0},
			},
		}
		tiles[px] = append([]model.GroundTile{full}, ts...)
	}
}

func touchesAnyCorner(ts []model.GroundTile) bool {
	for _, t := range ts {
		for _, c := range t.Coords {
			if (c.U == 0 || c.U == model.CellMax) && (c.V == 0 || c.V == model.CellMax) {
				return true
			}
		}
	}
	return false
}

// anyNeighborWater reports whether at least one of px's four neighbors is
// water: either the neighbor's StateMap state is Water, or the neighbor has
// no water state yet but one of its own ground tiles has a full-border
// water fill along the border shared with px.
func anyNeighborWater(sm *statemap.StateMap, px model.Pixel, tiles map[model.Pixel][]model.GroundTile) bool {
	for _, d := range neighborOffsets {
		nx, ny := px.X+d[0], px.Y+d[1]
		if !sm.IsIn(nx, ny) {
			continue
		}
		if sm.GetState(nx, ny) == model.Water {
			return true
		}
		shared := oppositeBorder(offsetToBorder(d))
		for _, t := range tiles[model.Pixel{X: nx, Y: ny}] {
			if t.Type != model.TileWater {
				continue
			}
			if side, ok := fullBorderSide(t); ok && side == shared {
				return true
			}
		}
	}
	return false
}

// offsetToBorder maps a neighborOffsets delta to the border of the current
// cell that faces the neighbor at that offset.
func offsetToBorder(d [2]int) model.BorderIndex {
	switch {
	case d[0] == 1:
		return model.BorderRight
	case d[0] == -1:
		return model.BorderLeft
	case d[1] == 1:
		return model.BorderTop
	default:
		return model.BorderBottom
	}
}

func oppositeBorder(b model.BorderIndex) model.BorderIndex {
	switch b {
	case model.BorderTop:
		return model.BorderBottom
	case model.BorderBottom:
		return model.BorderTop
	case model.BorderRight:
		return model.BorderLeft
	default:
		return model.BorderRight
	}
}
