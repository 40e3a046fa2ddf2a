// Package cellindex computes, for a polyline over a StateMap, which cells it
// crosses and where it enters or leaves each cell's border.
package cellindex

import (
	"sort"

	"waterindex/internal/geom"
	"waterindex/internal/statemap"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

// cellBorders returns the four border segments of the cell at global
// indices (x, y), ordered Top, Right, Bottom, Left.
func cellBorders(sm *statemap.StateMap, x, y int) [4][2]geo.Coord {
	b := sm.CellBox(x, y)
	tl := geo.Coord{Lat: b.Max.Lat, Lon: b.Min.Lon}
	tr := geo.Coord{Lat: b.Max.Lat, Lon: b.Max.Lon}
	br := geo.Coord{Lat: b.Min.Lat, Lon: b.Max.Lon}
	bl := geo.Coord{Lat: b.Min.Lat, Lon: b.Min.Lon}
	return [4][2]geo.Coord{
		{tl, tr}, // top
		{tr, br}, // right
		{br, bl}, // bottom
		{bl, tl}, // left
	}
}

// GetCells returns the set of cells (relative to sm's origin) that the
// polyline points crosses, including each segment's two endpoint cells.
func GetCells(sm *statemap.StateMap, points []geo.Coord) map[model.Pixel]bool {
	out := map[model.Pixel]bool{}
	if len(points) == 0 {
		return out
	}
	addPoint := func(c geo.Coord) {
		gx, gy := sm.CellForCoord(c)
		if sm.IsInAbsolute(gx, gy) {
			out[model.Pixel{X: gx - sm.XStart, Y: gy - sm.YStart}] = true
		}
	}
	for i := 0; i < len(points); i++ {
		addPoint(points[i])
	}
	for i := 0; i+1 < len(points); i++ {
		walkSegmentCells(sm, points[i], points[i+1], func(x, y int) {
			out[model.Pixel{X: x, Y: y}] = true
		})
	}
	return out
}

// walkSegmentCells visits every cell (relative coords) whose border the
// segment (p1, p2) crosses, in addition to its two endpoint cells.
func walkSegmentCells(sm *statemap.StateMap, p1, p2 geo.Coord, visit func(x, y int)) {
	gx1, gy1 := sm.CellForCoord(p1)
	gx2, gy2 := sm.CellForCoord(p2)
	minX, maxX := gx1, gx2
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := gy1, gy2
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	for gy := minY; gy <= maxY; gy++ {
		for gx := minX; gx <= maxX; gx++ {
			if !sm.IsInAbsolute(gx, gy) {
				continue
			}
			borders := cellBorders(sm, gx, gy)
			hit := false
			for _, bd := range borders {
				if geom.LinesIntersect(p1, p2, bd[0], bd[1]) {
					hit = true
					break
				}
			}
			if hit || (gx == gx1 && gy == gy1) || (gx == gx2 && gy == gy2) {
				visit(gx-sm.XStart, gy-sm.YStart)
			}
		}
	}
}

// GetCellIntersections computes, for every cell the simplified coastline
// `points` (belonging to coastlineIdx) crosses, the ordered list of border
// crossings with their in/out/touch classification.
func GetCellIntersections(sm *statemap.StateMap, points []geo.Coord, coastlineIdx int) map[model.Pixel][]model.Intersection {
	out := map[model.Pixel][]model.Intersection{}
	if len(points) < 2 {
		return out
	}
	for i := 0; i+1 < len(points); i++ {
		p1, p2 := points[i], points[i+1]
		gx1, gy1 := sm.CellForCoord(p1)
		gx2, gy2 := sm.CellForCoord(p2)
		minX, maxX := gx1, gx2
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		minY, maxY := gy1, gy2
		if minY > maxY {
			minY, maxY = maxY, minY
		}
		for gy := minY; gy <= maxY; gy++ {
			for gx := minX; gx <= maxX; gx++ {
				if !sm.IsInAbsolute(gx, gy) {
					continue
				}
				hits := borderHits(sm, gx, gy, p1, p2)
				if len(hits) == 0 {
					continue
				}
				isStart := gx == gx1 && gy == gy1
				isEnd := gx == gx2 && gy == gy2
				classified := classifyHits(hits, isStart, isEnd)
				if len(classified) == 0 {
					continue
				}
				px := model.Pixel{X: gx - sm.XStart, Y: gy - sm.YStart}
				for _, c := range classified {
					out[px] = append(out[px], model.Intersection{
						CoastlineIdx:      coastlineIdx,
						PrevWayPointIndex: i,
						Point:             c.point,
						DistanceSquare:    geom.DistanceSquare(p1, c.point),
						Border:            c.border,
						Direction:         c.dir,
					})
				}
			}
		}
	}
	return out
}

type hit struct {
	point  geo.Coord
	border model.BorderIndex
	dist   float64
}

func borderHits(sm *statemap.StateMap, gx, gy int, p1, p2 geo.Coord) []hit {
	borders := cellBorders(sm, gx, gy)
	var hits []hit
	for bi, bd := range borders {
		if ok, p := geom.GetLineIntersection(p1, p2, bd[0], bd[1]); ok {
			hits = append(hits, hit{point: p, border: model.BorderIndex(bi), dist: geom.DistanceSquare(p1, p)})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	return hits
}

type classifiedHit struct {
	point  geo.Coord
	border model.BorderIndex
	dir    model.Direction
}

func classifyHits(hits []hit, isStart, isEnd bool) []classifiedHit {
	switch len(hits) {
	case 0:
		return nil
	case 1:
		dir := model.DirTouch
		if isStart {
			dir = model.DirOut
		} else if isEnd {
			dir = model.DirIn
		}
		return []classifiedHit{{hits[0].point, hits[0].border, dir}}
	default:
		near, far := hits[0], hits[len(hits)-1]
		return []classifiedHit{
			{near.point, near.border, model.DirIn},
			{far.point, far.border, model.DirOut},
		}
	}
}
