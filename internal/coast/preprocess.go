// Package coast implements the per-level coastline preprocessing stage:
// simplification, island/mainland crossing filtering, and per-cell
// footprint classification.
package coast

import (
	"context"
	"runtime"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"waterindex/internal/cellindex"
	"waterindex/internal/geom"
	"waterindex/internal/progress"
	"waterindex/internal/statemap"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

// OptimizationMethod selects the simplification algorithm used on input
// coastlines.
type OptimizationMethod int

const (
	// Simple runs Douglas-Peucker, the default.
	Simple OptimizationMethod = iota
	// Visvalingam runs the Visvalingam-Whyatt area-threshold reducer.
	Visvalingam
)

// Params configures one preprocessing pass.
type Params struct {
	OptimizationMethod OptimizationMethod
	Tolerance          float64
	MinObjectDimension float64
}

// Data is a preprocessed coastline, ready for synthesis and walking.
type Data struct {
	ID                int64
	Points            []geo.Coord
	IsArea            bool
	Left, Right       model.CoastState
	CompletelyInCell  *model.Pixel
}

// Result is the output of Preprocess for one level.
type Result struct {
	Coastlines     []*Data
	CellCoastlines map[model.Pixel][]int // indices into Coastlines, classified by GetCellIntersections
	Intersections  map[model.Pixel][]model.Intersection
}

// orbSimplifier matches the method set common to orb/simplify's concrete
// simplifier types (DouglasPeuckerSimplifier, VisvalingamSimplifier), which
// this package version does not export as a named interface.
type orbSimplifier interface {
	Simplify(g orb.Geometry) orb.Geometry
}

func simplifier(p Params) orbSimplifier {
	switch p.OptimizationMethod {
	case Visvalingam:
		return simplify.VisvalingamThreshold(p.Tolerance)
	default:
		return simplify.DouglasPeucker(p.Tolerance)
	}
}

func toOrbPoints(pts []geo.Coord) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{p.Lon, p.Lat}
	}
	return out
}

func fromOrbPoints(pts []orb.Point) []geo.Coord {
	out := make([]geo.Coord, len(pts))
	for i, p := range pts {
		out[i] = geo.Coord{Lon: p[0], Lat: p[1]}
	}
	return out
}

func simplifyPoints(s orbSimplifier, pts []geo.Coord, isArea bool) []geo.Coord {
	if len(pts) < 3 {
		return pts
	}
	orbPts := toOrbPoints(pts)
	if isArea {
		out := s.Simplify(orb.Ring(orbPts))
		return fromOrbPoints([]orb.Point(out.(orb.Ring)))
	}
	out := s.Simplify(orb.LineString(orbPts))
	return fromOrbPoints([]orb.Point(out.(orb.LineString)))
}

// Preprocess simplifies, filters, and classifies coastlines against a
// StateMap's cell grid, per SPEC_FULL.md §4.4.
func Preprocess(ctx context.Context, p Params, coastlines []*model.Coast, sm *statemap.StateMap, rep progress.Reporter) (*Result, error) {
	s := simplifier(p)
	work := make([]*Data, 0, len(coastlines))

	for _, c := range coastlines {
		if c.IsArea {
			box := geo.BoundingBox(c.Points)
			pixW := box.Width() / sm.CellWidth
			pixH := box.Height() / sm.CellHeight
			if pixW*pixH == 0 || pixW <= p.MinObjectDimension || pixH <= p.MinObjectDimension {
				rep.Warningf("dropping island %d: below minimum object dimension", c.ID)
				continue
			}
		}
		simplified := simplifyPoints(s, c.Points, c.IsArea)
		if c.IsArea {
			if len(simplified) > 1 && simplified[0] != simplified[len(simplified)-1] {
				simplified = append(simplified, simplified[0])
			}
			if len(simplified) <= 3 {
				rep.Warningf("dropping degenerate area %d after simplification", c.ID)
				continue
			}
		}
		work = append(work, &Data{
			ID:     c.ID,
			Points: simplified,
			IsArea: c.IsArea,
			Left:   c.Left,
			Right:  c.Right,
		})
	}

	dropped, err := filterIslandCrossings(ctx, work, rep)
	if err != nil {
		return nil, err
	}
	if len(dropped) > 0 {
		filtered := make([]*Data, 0, len(work))
		for _, d := range work {
			if !dropped[d.ID] {
				filtered = append(filtered, d)
			}
		}
		work = filtered
	}

	res := &Result{Coastlines: work}
	res.CellCoastlines, res.Intersections = Classify(sm, work)
	return res, nil
}

// Classify computes, for each coastline in data, whether it lies entirely
// in a single cell (setting CompletelyInCell) or files its border
// crossings under the returned per-cell maps. Exported so the synthesizer's
// output (new pieces with no cell footprint yet) can be classified the same
// way the preprocessor classifies raw input.
func Classify(sm *statemap.StateMap, data []*Data) (map[model.Pixel][]int, map[model.Pixel][]model.Intersection) {
	cellCoastlines := map[model.Pixel][]int{}
	intersections := map[model.Pixel][]model.Intersection{}
	for idx, d := range data {
		box := geo.BoundingBox(d.Points)
		gx1, gy1 := sm.CellForCoord(box.Min)
		gx2, gy2 := sm.CellForCoord(box.Max)
		if gx1 == gx2 && gy1 == gy2 {
			px := model.Pixel{X: gx1 - sm.XStart, Y: gy1 - sm.YStart}
			d.CompletelyInCell = &px
			continue
		}
		hits := cellindex.GetCellIntersections(sm, d.Points, idx)
		for cell, ints := range hits {
			intersections[cell] = append(intersections[cell], ints...)
			cellCoastlines[cell] = append(cellCoastlines[cell], idx)
		}
	}
	return cellCoastlines, intersections
}

// filterIslandCrossings runs the O(n^2) area/way crossing check in
// parallel, sharded by area index and bounded by a worker semaphore; each
// shard writes only its own slot in `hits`, so the merge pass afterward is
// independent of goroutine scheduling.
func filterIslandCrossings(ctx context.Context, work []*Data, rep progress.Reporter) (map[int64]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var areaIdx, wayIdx []int
	for i, d := range work {
		if d.IsArea {
			areaIdx = append(areaIdx, i)
		} else {
			wayIdx = append(wayIdx, i)
		}
	}
	if len(areaIdx) == 0 || len(wayIdx) == 0 {
		return nil, nil
	}

	type crossing struct {
		crossedBy int64
		hit       bool
	}
	hits := make([]crossing, len(areaIdx))

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for slot, ai := range areaIdx {
		slot, ai := slot, ai
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			area := work[ai]
			for _, wi := range wayIdx {
				way := work[wi]
				if len(geom.FindPathIntersections(area.Points, true, way.Points, false)) == 0 {
					continue
				}
				hits[slot] = crossing{crossedBy: way.ID, hit: true}
				return
			}
		}()
	}
	wg.Wait()

	dropped := make(map[int64]bool)
	for slot, ai := range areaIdx {
		if !hits[slot].hit {
			continue
		}
		area := work[ai]
		dropped[area.ID] = true
		rep.Warningf("island %d crosses mainland coastline %d, dropping island", area.ID, hits[slot].crossedBy)
	}
	return dropped, nil
}
