package waterindex

import (
	"context"
	"testing"

	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

func worldBox() geo.Box {
	return geo.Box{Min: geo.Coord{Lat: -90, Lon: -180}, Max: geo.Coord{Lat: 90, Lon: 180}}
}

func TestRunWithNoBoundaryFillsAllWater(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Levels = []int{2}
	cfg.BoundingBox = worldBox()

	p := NewProcessor(cfg, nil)
	results, err := p.Run(context.Background(), StaticSource{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	hist := results[0].Map.Histogram()
	total := results[0].Map.XCount() * results[0].Map.YCount()
	if hist[model.Water] != total {
		t.Fatalf("got water histogram %d, want all %d cells water: %+v", hist[model.Water], total, hist)
	}
	if len(results[0].Tiles) != 0 {
		t.Fatalf("expected no ground tiles when there is no boundary, got %d", len(results[0].Tiles))
	}
}

func TestRunWithSingleCellIslandProducesOneGroundTile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Levels = []int{2}
	cfg.BoundingBox = worldBox()

	island := &model.Coast{
		ID: 1, IsArea: true, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{
			{Lon: 10, Lat: 10}, {Lon: 10, Lat: 20}, {Lon: 20, Lat: 20}, {Lon: 20, Lat: 10},
		},
	}
	src := StaticSource{Boundary: []*model.Coast{island}}

	p := NewProcessor(cfg, nil)
	results, err := p.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sm := results[0].Map
	gx, gy := sm.CellForCoord(geo.Coord{Lon: 15, Lat: 15})
	px := model.Pixel{X: gx - sm.XStart, Y: gy - sm.YStart}

	tiles, ok := results[0].Tiles[px]
	if !ok || len(tiles) != 1 {
		t.Fatalf("got tiles %v ok=%v, want exactly 1 tile for the island's cell", tiles, ok)
	}
	if tiles[0].Type != model.TileLand {
		t.Fatalf("got tile type %v, want Land", tiles[0].Type)
	}
	if got := sm.GetState(px.X, px.Y); got != model.StateCoast {
		t.Fatalf("got state %v for the island's cell, want Coast", got)
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Levels = []int{0, 2}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(cfg, nil)
	_, err := p.Run(ctx, StaticSource{})
	if err == nil {
		t.Fatalf("expected an error from an already-cancelled context")
	}
}
