// Package walker implements the cell walker: for each cell touched by
// coastlines, it walks the cell boundary clockwise, stitching coastline
// paths and cell-edge arcs into closed ground tiles.
package walker

import (
	"math"
	"sort"

	"waterindex/internal/coast"
	"waterindex/internal/progress"
	"waterindex/internal/statemap"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

// maxWalkSteps bounds a single boundary walk; exceeding it means the
// coastline data does not close and the walk is abandoned.
const maxWalkSteps = 1000

// Transform converts a geo-coordinate inside the cell (gx, gy) into the
// cell-local fixed-point coordinate system, per SPEC_FULL.md §4.6.
func Transform(sm *statemap.StateMap, gx, gy int, p geo.Coord, onCoast bool) model.CellCoord {
	box := sm.CellBox(gx, gy)
	u := (p.Lon - box.Min.Lon) / sm.CellWidth * model.CellMax
	v := (p.Lat - box.Min.Lat) / sm.CellHeight * model.CellMax
	return model.CellCoord{U: clampU16(u), V: clampU16(v), OnCoast: onCoast}
}

func clampU16(f float64) uint16 {
	r := math.Round(f)
	if r < 0 {
		r = 0
	}
	if r > model.CellMax {
		r = model.CellMax
	}
	return uint16(r)
}

// corner returns the cell-local coordinate of one of the cell's four
// corners: 0=TL 1=TR 2=BR 3=BL.
func corner(i int) model.CellCoord {
	switch i % 4 {
	case 0:
		return model.CellCoord{U: 0, V: model.CellMax}
	case 1:
		return model.CellCoord{U: model.CellMax, V: model.CellMax}
	case 2:
		return model.CellCoord{U: model.CellMax, V: 0}
	default:
		return model.CellCoord{U: 0, V: 0}
	}
}

// cwPosition returns a monotonically increasing key for an intersection's
// position when walking the cell border clockwise starting at the top-left
// corner, used to sort intersections into the order the walk must visit
// them.
func cwPosition(in model.Intersection) float64 {
	switch in.Border {
	case model.BorderTop:
		return 0 + in.Point.Lon // ordered left-to-right
	case model.BorderRight:
		return 1000 - in.Point.Lat // ordered top-to-bottom
	case model.BorderBottom:
		return 2000 - in.Point.Lon // ordered right-to-left
	default: // left
		return 3000 + in.Point.Lat // ordered bottom-to-top
	}
}

// cellIntersection pairs a model.Intersection with the coastline it belongs
// to, and tracks whether it has been consumed by a walk already.
type cellIntersection struct {
	model.Intersection
	coastline *coast.Data
	visited   bool
}

// limb is a non-area coastline fully inside this cell: it never crosses the
// border, so it can only ever serve as a connector between two tripoints
// (SPEC_FULL.md §4.6's `containingPaths`).
type limb struct {
	coastline *coast.Data
	visited   bool
}

// Cell holds everything the walker needs for one coast cell.
type Cell struct {
	GX, GY        int
	Intersections []*cellIntersection
	ContainedArea []*coast.Data // areas fully inside this cell, rendered as standalone tiles
	Limbs         []*limb       // non-area ways fully inside this cell, tripoint continuation candidates only
}

// BuildCell gathers a cell's intersections (sorted clockwise), fully
// contained areas (rendered as their own tile), and fully contained non-area
// ways (kept only as tripoint continuation candidates) from the preprocessed
// coastline set.
func BuildCell(gx, gy int, cellInts []model.Intersection, byIdx []*coast.Data, containedIdx []int) *Cell {
	c := &Cell{GX: gx, GY: gy}
	for _, in := range cellInts {
		if in.Direction == model.DirTouch {
			continue
		}
		c.Intersections = append(c.Intersections, &cellIntersection{
			Intersection: in,
			coastline:    byIdx[in.CoastlineIdx],
		})
	}
	sort.Slice(c.Intersections, func(i, j int) bool {
		return cwPosition(c.Intersections[i].Intersection) < cwPosition(c.Intersections[j].Intersection)
	})
	for _, ci := range containedIdx {
		d := byIdx[ci]
		if d.IsArea {
			c.ContainedArea = append(c.ContainedArea, d)
		} else {
			c.Limbs = append(c.Limbs, &limb{coastline: d})
		}
	}
	return c
}

// Walk produces the ground tiles for one cell.
func Walk(sm *statemap.StateMap, cell *Cell, rep progress.Reporter) []model.GroundTile {
	var tiles []model.GroundTile

	for _, area := range cell.ContainedArea {
		tiles = append(tiles, areaTile(sm, cell.GX, cell.GY, area))
	}

	for _, start := range cell.Intersections {
		if start.visited {
			continue
		}
		tile, ok := walkFrom(sm, cell, start, rep)
		if ok {
			tiles = append(tiles, tile)
		}
	}
	return tiles
}

func areaTile(sm *statemap.StateMap, gx, gy int, area *coast.Data) model.GroundTile {
	t := model.GroundTile{Type: sideToTile(area.Left)}
	pts := area.Points
	n := len(pts)
	for i, p := range pts {
		onCoast := i != n-1
		t.Coords = append(t.Coords, Transform(sm, gx, gy, p, onCoast))
	}
	return t
}

func sideToTile(s model.CoastState) model.TileType {
	switch s.ToState() {
	case model.Land:
		return model.TileLand
	case model.Water:
		return model.TileWater
	default:
		return model.TileUnknown
	}
}

// walkFrom performs one clockwise boundary walk starting at `start`,
// consuming intersections as it visits them.
func walkFrom(sm *statemap.StateMap, cell *Cell, start *cellIntersection, rep progress.Reporter) (model.GroundTile, bool) {
	walkType := start.coastline.Right
	if start.Direction == model.DirOut {
		walkType = start.coastline.Left
	}
	tile := model.GroundTile{Type: sideToTile(walkType)}

	cur := start
	steps := 0
	for {
		steps++
		if steps > maxWalkSteps {
			rep.Warningf("cell (%d,%d): boundary walk exceeded %d steps, abandoning", cell.GX, cell.GY, maxWalkSteps)
			return model.GroundTile{}, false
		}
		cur.visited = true
		startIdx := len(tile.Coords)
		tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, cur.Point, false))

		sib, ok := findSibling(cell, cur)
		var pathEnd *cellIntersection
		if ok {
			tile.Coords[startIdx].OnCoast = true
			walkCoastlinePoints(sm, cell, cur, sib, &tile)
			sib.visited = true
			pathEnd = sib
		} else {
			tp, found := resolveTripoint(sm, cell, cur, walkType, &tile)
			if !found {
				rep.Warningf("cell (%d,%d): coastline %d has no sibling or tripoint continuation, abandoning walk", cell.GX, cell.GY, cur.coastline.ID)
				return model.GroundTile{}, false
			}
			pathEnd = tp
		}

		if pathEnd == start {
			return tile, true
		}

		next := nextClockwise(cell, pathEnd)
		appendBorderCorners(sm, cell, pathEnd, next, &tile)

		if next == start {
			cur.visited = true
			return tile, true
		}
		cur = next
	}
}

// findSibling locates the other end of cur's coastline segment inside the
// cell: the nearest later `out` if cur is `in`, the nearest earlier `in` if
// cur is `out`; for areas it wraps when nothing is found in the forward
// half.
func findSibling(cell *Cell, cur *cellIntersection) (*cellIntersection, bool) {
	var best *cellIntersection
	bestDist := math.MaxFloat64
	for _, other := range cell.Intersections {
		if other.visited || other.coastline != cur.coastline || other == cur {
			continue
		}
		if cur.Direction == model.DirIn && other.Direction == model.DirOut {
			if other.DistanceSquare >= cur.DistanceSquare || cur.coastline.IsArea {
				if other.DistanceSquare < bestDist {
					best, bestDist = other, other.DistanceSquare
				}
			}
		} else if cur.Direction == model.DirOut && other.Direction == model.DirIn {
			if other.DistanceSquare <= cur.DistanceSquare || cur.coastline.IsArea {
				d := math.Abs(cur.DistanceSquare - other.DistanceSquare)
				if d < bestDist {
					best, bestDist = other, d
				}
			}
		}
	}
	return best, best != nil
}

// maxTripointHops bounds how many fully-interior limb coastlines a single
// tripoint chain may pass through before giving up.
const maxTripointHops = 64

// ownTripointEnd returns the point at which d's own path terminates when
// walked away from a crossing in direction dir: the coastline's last point
// if entered (DirIn, walked forward), its first point if exited (DirOut,
// walked backward). This is the same computation for cur (whose crossing we
// already know) and for a candidate coastline (whose crossing we are
// testing): two coastlines meet at a tripoint exactly when their own ends,
// computed this way, coincide.
func ownTripointEnd(d *coast.Data, dir model.Direction) geo.Coord {
	if len(d.Points) == 0 {
		return geo.Coord{}
	}
	if dir == model.DirIn {
		return d.Points[len(d.Points)-1]
	}
	return d.Points[0]
}

// resolveTripoint walks from cur's own coastline end through zero or more
// fully-interior limb coastlines until it reaches another coastline's
// actual cell-border crossing, appending every point visited along the way
// to tile (SPEC_FULL.md §4.6's "search among other coastlines (cell-crossing
// + containing)"). It returns that crossing as the walk's new pathEnd.
func resolveTripoint(sm *statemap.StateMap, cell *Cell, cur *cellIntersection, walkType model.CoastState, tile *model.GroundTile) (*cellIntersection, bool) {
	at := appendToOwnEnd(sm, cell, cur, tile)
	exclude := cur.coastline

	for hop := 0; hop < maxTripointHops; hop++ {
		next, lim, matchesFront, found := findTripointContinuation(cell, at, exclude, walkType)
		if !found {
			return nil, false
		}
		if next != nil {
			appendFromOwnEnd(sm, cell, next, tile)
			next.visited = true
			return next, true
		}
		lim.visited = true
		at = appendLimb(sm, cell, lim, matchesFront, tile)
		exclude = lim.coastline
	}
	return nil, false
}

// findTripointContinuation looks for a coastline sharing the point `at`: an
// intersection belonging to a different coastline whose own end (per
// ownTripointEnd) coincides with `at` and whose outgoing side matches
// walkType, or failing that a fully-interior limb with an endpoint at `at`.
// Among intersection matches it picks the one with the lowest clockwise
// border position, approximating "most clockwise turn" the same way
// cwPosition orders the rest of the walk.
func findTripointContinuation(cell *Cell, at geo.Coord, exclude *coast.Data, walkType model.CoastState) (*cellIntersection, *limb, bool, bool) {
	const tol = 1e-9
	var best *cellIntersection
	bestAngle := math.Inf(1)
	for _, other := range cell.Intersections {
		if other.visited || other.coastline == exclude {
			continue
		}
		end := ownTripointEnd(other.coastline, other.Direction)
		if geo.DistanceSquare(end, at) > tol {
			continue
		}
		outgoingSide := other.coastline.Right
		if other.Direction == model.DirOut {
			outgoingSide = other.coastline.Left
		}
		if outgoingSide != walkType {
			continue
		}
		angle := cwPosition(other.Intersection)
		if best == nil || angle < bestAngle {
			best, bestAngle = other, angle
		}
	}
	if best != nil {
		return best, nil, false, true
	}

	for _, l := range cell.Limbs {
		if l.visited || l.coastline == exclude {
			continue
		}
		pts := l.coastline.Points
		if len(pts) < 2 {
			continue
		}
		var matchesFront bool
		var outgoingSide model.CoastState
		switch {
		case geo.DistanceSquare(pts[0], at) <= tol:
			matchesFront, outgoingSide = true, l.coastline.Left
		case geo.DistanceSquare(pts[len(pts)-1], at) <= tol:
			matchesFront, outgoingSide = false, l.coastline.Right
		default:
			continue
		}
		if outgoingSide != walkType {
			continue
		}
		return nil, l, matchesFront, true
	}
	return nil, nil, false, false
}

// appendToOwnEnd appends the interior points of ci's own coastline from its
// crossing to its own terminal endpoint (the tripoint), marking them
// onCoast=true, and returns that endpoint.
func appendToOwnEnd(sm *statemap.StateMap, cell *Cell, ci *cellIntersection, tile *model.GroundTile) geo.Coord {
	pts := ci.coastline.Points
	n := len(pts)
	if n == 0 {
		return ci.Point
	}
	var end geo.Coord
	if ci.Direction == model.DirIn {
		for k := ci.PrevWayPointIndex + 1; k < n-1; k++ {
			tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, pts[k], true))
		}
		end = pts[n-1]
	} else {
		for k := ci.PrevWayPointIndex; k > 0; k-- {
			tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, pts[k], true))
		}
		end = pts[0]
	}
	tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, end, true))
	return end
}

// appendFromOwnEnd appends the interior points of ci's own coastline
// walking from its tripoint endpoint back to its own crossing, ending with
// the crossing point itself (onCoast=false, matching the convention used
// when a sibling walk closes on a border crossing).
func appendFromOwnEnd(sm *statemap.StateMap, cell *Cell, ci *cellIntersection, tile *model.GroundTile) {
	pts := ci.coastline.Points
	n := len(pts)
	if n > 0 {
		if ci.Direction == model.DirIn {
			for k := n - 2; k > ci.PrevWayPointIndex; k-- {
				tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, pts[k], true))
			}
		} else {
			for k := 1; k <= ci.PrevWayPointIndex; k++ {
				tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, pts[k], true))
			}
		}
	}
	tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, ci.Point, false))
}

// appendLimb appends every point of a fully-interior limb coastline, from
// the end matching the current tripoint to its far end, and returns that
// far end as the next point to search from.
func appendLimb(sm *statemap.StateMap, cell *Cell, l *limb, matchesFront bool, tile *model.GroundTile) geo.Coord {
	pts := l.coastline.Points
	n := len(pts)
	if matchesFront {
		for k := 1; k < n-1; k++ {
			tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, pts[k], true))
		}
		end := pts[n-1]
		tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, end, true))
		return end
	}
	for k := n - 2; k > 0; k-- {
		tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, pts[k], true))
	}
	end := pts[0]
	tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, end, true))
	return end
}

// walkCoastlinePoints appends the coastline points between from and to
// (exclusive of the two intersection points themselves, which the caller
// has already / will append) onto tile, marked onCoast.
func walkCoastlinePoints(sm *statemap.StateMap, cell *Cell, from, to *cellIntersection, tile *model.GroundTile) {
	pts := from.coastline.Points
	n := len(pts)
	if n == 0 {
		return
	}
	forward := from.Direction == model.DirIn
	i := from.PrevWayPointIndex
	j := to.PrevWayPointIndex
	if forward {
		i++
		for k := i; ; k++ {
			idx := k % n
			if !from.coastline.IsArea && k > j {
				break
			}
			if idx == (j+1)%n || k > i+n {
				break
			}
			tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, pts[idx], true))
		}
	} else {
		for k := i; ; k-- {
			idx := ((k % n) + n) % n
			if !from.coastline.IsArea && k < j+1 {
				break
			}
			if idx == ((j%n)+n)%n || k < i-n {
				break
			}
			tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, pts[idx], true))
		}
	}
	tile.Coords = append(tile.Coords, Transform(sm, cell.GX, cell.GY, to.Point, false))
}

// nextClockwise returns the next intersection clockwise from `from` along
// the cell border, visited or not (a walk ends when this returns its own
// starting intersection).
func nextClockwise(cell *Cell, from *cellIntersection) *cellIntersection {
	fromPos := cwPosition(from.Intersection)
	var best *cellIntersection
	bestDelta := math.Inf(1)
	for _, other := range cell.Intersections {
		if other == from {
			continue
		}
		d := cwPosition(other.Intersection) - fromPos
		for d <= 0 {
			d += 4000
		}
		if d < bestDelta {
			best, bestDelta = other, d
		}
	}
	return best
}

// appendBorderCorners appends every cell corner lying strictly between
// from and to when walking the border clockwise.
func appendBorderCorners(sm *statemap.StateMap, cell *Cell, from, to *cellIntersection, tile *model.GroundTile) {
	fromBorder := int(from.Border)
	toBorder := int(to.Border)
	b := (fromBorder + 1) % 4
	for {
		if fromBorder == toBorder && cwPosition(to.Intersection) > cwPosition(from.Intersection) {
			break
		}
		tile.Coords = append(tile.Coords, corner(b))
		if b == toBorder {
			break
		}
		b = (b + 1) % 4
	}
}
