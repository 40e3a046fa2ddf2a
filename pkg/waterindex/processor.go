// Package waterindex is the public facade over the water-index pipeline:
// Config for tuning a run, CoastlineSource as the input seam, and Processor
// to drive C1-C8 for every configured zoom level.
package waterindex

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"waterindex/internal/coast"
	"waterindex/internal/flood"
	"waterindex/internal/geom"
	"waterindex/internal/index"
	"waterindex/internal/progress"
	"waterindex/internal/statemap"
	"waterindex/internal/synth"
	"waterindex/internal/walker"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

// Processor drives the per-level pipeline: preprocess, synthesize, walk,
// flood, ready for serialization.
type Processor struct {
	cfg Config
	rep progress.Reporter
}

// NewProcessor builds a Processor for cfg, reporting through rep (use
// progress.NoOp() if the caller doesn't care).
func NewProcessor(cfg Config, rep progress.Reporter) *Processor {
	if rep == nil {
		rep = progress.NoOp()
	}
	return &Processor{cfg: cfg, rep: rep}
}

// LevelResult is one level's finished StateMap and ground-tile data.
type LevelResult struct {
	Level int
	Map   *statemap.StateMap
	Tiles map[model.Pixel][]model.GroundTile
}

// Run executes the pipeline for every configured level against src, in
// level order. Cancellation is only observed between levels, matching the
// pipeline's single-threaded batch nature (SPEC_FULL.md §5).
func (p *Processor) Run(ctx context.Context, src CoastlineSource) ([]LevelResult, error) {
	results := make([]LevelResult, 0, len(p.cfg.Levels))
	for _, lvl := range p.cfg.Levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.rep.Info(fmt.Sprintf("building level %d", lvl))
		r, err := p.runLevel(ctx, lvl, src)
		if err != nil {
			return nil, fmt.Errorf("waterindex: level %d: %w", lvl, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func (p *Processor) runLevel(ctx context.Context, level int, src CoastlineSource) (LevelResult, error) {
	cellWidth := 360.0 / pow2(level)
	cellHeight := 180.0 / pow2(level)
	sm := statemap.New(p.cfg.BoundingBox, cellWidth, cellHeight)

	params := coast.Params{
		OptimizationMethod: p.cfg.OptimizationMethod,
		Tolerance:          p.cfg.Tolerance,
		MinObjectDimension: p.cfg.MinObjectDimension,
	}
	pre, err := coast.Preprocess(ctx, params, src.Coastlines(), sm, p.rep)
	if err != nil {
		return LevelResult{}, err
	}

	boundary := src.BoundingPolygons()
	if len(boundary) == 0 {
		sm.Fill(model.Water)
		return LevelResult{Level: level, Map: sm, Tiles: map[model.Pixel][]model.GroundTile{}}, nil
	}

	final := synth.Synthesize(boundary, pre.Coastlines, p.rep)
	cellCoastlines, intersections := coast.Classify(sm, final)

	var coastlinePoints [][]geo.Coord
	for _, d := range final {
		coastlinePoints = append(coastlinePoints, d.Points)
	}
	flood.MarkCoastlineCells(sm, coastlinePoints)

	tiles, err := p.walkAllCells(sm, final, cellCoastlines, intersections)
	if err != nil {
		return LevelResult{}, err
	}

	flood.CalculateCoastEnvironment(sm, tiles)
	flood.FillWater(sm, p.cfg.TileCount, func(x, y int) bool {
		return cellInsideAnyPolygon(sm, x, y, boundary)
	})
	flood.FillLand(sm)
	flood.FillWaterAroundIsland(sm, tiles)

	return LevelResult{Level: level, Map: sm, Tiles: tiles}, nil
}

func pow2(level int) float64 {
	f := 1.0
	for i := 0; i < level; i++ {
		f *= 2
	}
	return f
}

func cellInsideAnyPolygon(sm *statemap.StateMap, x, y int, boundary []*model.Coast) bool {
	box := sm.CellBox(x+sm.XStart, y+sm.YStart)
	center := geo.Coord{Lat: (box.Min.Lat + box.Max.Lat) / 2, Lon: (box.Min.Lon + box.Max.Lon) / 2}
	for _, b := range boundary {
		if geom.PointInPolygon(center, b.Points) {
			return true
		}
	}
	return false
}

// walkAllCells fans C6's per-cell construction out across a bounded pool of
// worker goroutines, sharded by cell so each worker only ever touches its
// own cell's tiles; results are collected into a per-cell slot so the merge
// afterward needs no lock (SPEC_FULL.md §5).
func (p *Processor) walkAllCells(sm *statemap.StateMap, final []*coast.Data, cellCoastlines map[model.Pixel][]int, intersections map[model.Pixel][]model.Intersection) (map[model.Pixel][]model.GroundTile, error) {
	contained := map[model.Pixel][]int{}
	for idx, d := range final {
		if d.CompletelyInCell != nil {
			contained[*d.CompletelyInCell] = append(contained[*d.CompletelyInCell], idx)
		}
	}

	cells := make([]model.Pixel, 0, len(intersections)+len(contained))
	seen := map[model.Pixel]bool{}
	for px := range intersections {
		if !seen[px] {
			seen[px] = true
			cells = append(cells, px)
		}
	}
	for px := range contained {
		if !seen[px] {
			seen[px] = true
			cells = append(cells, px)
		}
	}

	tilesByCell := make([][]model.GroundTile, len(cells))
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for slot, px := range cells {
		slot, px := slot, px
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			cell := walker.BuildCell(sm.XStart+px.X, sm.YStart+px.Y, intersections[px], final, contained[px])
			tilesByCell[slot] = walker.Walk(sm, cell, p.rep)
		}()
	}
	wg.Wait()

	result := make(map[model.Pixel][]model.GroundTile, len(cells))
	for slot, px := range cells {
		result[px] = tilesByCell[slot]
	}
	return result, nil
}

// WriteTo serializes results to w in level order.
func WriteTo(w io.Writer, results []LevelResult) error {
	levels := make([]index.LevelData, len(results))
	for i, r := range results {
		levels[i] = index.LevelData{Level: r.Level, Map: r.Map, Tiles: r.Tiles}
	}
	return index.Write(w, levels)
}
