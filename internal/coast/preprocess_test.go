package coast

import (
	"context"
	"testing"

	"waterindex/internal/progress"
	"waterindex/internal/statemap"
	"waterindex/pkg/core"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

func testBox() geo.Box {
	return geo.Box{Min: geo.Coord{Lat: -10, Lon: -10}, Max: geo.Coord{Lat: 10, Lon: 10}}
}

func defaultParams() Params {
	return Params{OptimizationMethod: Simple, Tolerance: 0.001, MinObjectDimension: 0}
}

func TestPreprocessClassifiesCompletelyInCell(t *testing.T) {
	sm := statemap.New(testBox(), 4, 4)
	island := &model.Coast{
		ID:     1,
		IsArea: true,
		Left:   model.SideLand,
		Right:  model.SideWater,
		Points: []geo.Coord{
			{Lat: 0.1, Lon: 0.1}, {Lat: 0.1, Lon: 0.5}, {Lat: 0.5, Lon: 0.5}, {Lat: 0.5, Lon: 0.1}, {Lat: 0.1, Lon: 0.1},
		},
	}
	res, err := Preprocess(context.Background(), defaultParams(), []*model.Coast{island}, sm, progress.NoOp())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(res.Coastlines) != 1 {
		t.Fatalf("got %d coastlines, want 1", len(res.Coastlines))
	}
	if res.Coastlines[0].CompletelyInCell == nil {
		t.Fatalf("expected small island to be classified as completely in one cell")
	}
}

func TestPreprocessClassifiesCellCrossing(t *testing.T) {
	sm := statemap.New(testBox(), 1, 1)
	way := &model.Coast{
		ID:     1,
		IsArea: false,
		Left:   model.SideLand,
		Right:  model.SideWater,
		Points: []geo.Coord{{Lat: 0.5, Lon: -3}, {Lat: 0.5, Lon: 3}},
	}
	res, err := Preprocess(context.Background(), defaultParams(), []*model.Coast{way}, sm, progress.NoOp())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(res.CellCoastlines) == 0 {
		t.Fatalf("expected a long way to be filed under multiple cells")
	}
}

func TestPreprocessKeepsRandomizedIslandClearOfMainland(t *testing.T) {
	sm := statemap.New(testBox(), 1, 1)
	mainland := &model.Coast{
		ID: 1, IsArea: false, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{{Lat: 0, Lon: -8}, {Lat: 0, Lon: 8}},
	}
	rng := core.NewRNG(42)
	ring := rng.RandomRing(12, geo.Coord{Lat: -7, Lon: -7}, 0.4, 0.2)
	island := &model.Coast{
		ID: 2, IsArea: true, Left: model.SideLand, Right: model.SideWater,
		Points: ring,
	}
	res, err := Preprocess(context.Background(), defaultParams(), []*model.Coast{mainland, island}, sm, progress.NoOp())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	found := false
	for _, c := range res.Coastlines {
		if c.ID == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected randomized island clear of the mainland to survive filtering")
	}
}

func TestPreprocessDropsThinSliverIsland(t *testing.T) {
	sm := statemap.New(testBox(), 0.01, 0.01)
	sliver := &model.Coast{
		ID: 1, IsArea: true, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{
			{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.5}, {Lat: 0.001, Lon: 0.5}, {Lat: 0.001, Lon: 0}, {Lat: 0, Lon: 0},
		},
	}
	params := Params{OptimizationMethod: Simple, Tolerance: 0.001, MinObjectDimension: 1}
	res, err := Preprocess(context.Background(), params, []*model.Coast{sliver}, sm, progress.NoOp())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(res.Coastlines) != 0 {
		t.Fatalf("expected a sliver island (wide but vanishingly thin) to be dropped under OR semantics, got %d coastlines", len(res.Coastlines))
	}
}

func TestPreprocessDropsIslandCrossingMainland(t *testing.T) {
	sm := statemap.New(testBox(), 1, 1)
	mainland := &model.Coast{
		ID: 1, IsArea: false, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{{Lat: 0, Lon: -8}, {Lat: 0, Lon: 8}},
	}
	island := &model.Coast{
		ID: 2, IsArea: true, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{
			{Lat: -1, Lon: -1}, {Lat: -1, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: -1}, {Lat: -1, Lon: -1},
		},
	}
	res, err := Preprocess(context.Background(), defaultParams(), []*model.Coast{mainland, island}, sm, progress.NoOp())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	for _, c := range res.Coastlines {
		if c.ID == 2 {
			t.Fatalf("expected island crossing the mainland to be dropped")
		}
	}
}
