package flood

import (
	"testing"

	"waterindex/internal/statemap"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

func box() geo.Box {
	return geo.Box{Min: geo.Coord{Lat: -5, Lon: -5}, Max: geo.Coord{Lat: 5, Lon: 5}}
}

func TestFillWaterMonotonic(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	sm.SetState(0, 0, model.Water)
	sm.SetState(5, 5, model.Land)
	before := sm.GetState(5, 5)
	FillWater(sm, 10, func(x, y int) bool { return true })
	if got := sm.GetState(5, 5); got != before {
		t.Fatalf("FillWater must never overwrite land: got %v, want %v", got, before)
	}
	if got := sm.GetState(0, 1); got != model.Water {
		t.Fatalf("expected neighbor of a water cell to become water, got %v", got)
	}
}

func TestFillWaterRespectsRegion(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	sm.SetState(0, 0, model.Water)
	FillWater(sm, 10, func(x, y int) bool { return false })
	if got := sm.GetState(0, 1); got != model.Unknown {
		t.Fatalf("cells outside the region must stay unknown, got %v", got)
	}
}

func TestFillLandIdempotent(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	w := sm.XCount()
	sm.SetState(0, 0, model.Land)
	sm.SetState(w-1, 0, model.Land)
	FillLand(sm)
	snapshot := make([]model.State, w*sm.YCount())
	for y := 0; y < sm.YCount(); y++ {
		for x := 0; x < w; x++ {
			snapshot[y*w+x] = sm.GetState(x, y)
		}
	}
	FillLand(sm)
	for y := 0; y < sm.YCount(); y++ {
		for x := 0; x < w; x++ {
			if got := sm.GetState(x, y); got != snapshot[y*w+x] {
				t.Fatalf("FillLand not idempotent at (%d,%d): got %v, want %v", x, y, got, snapshot[y*w+x])
			}
		}
	}
}

func TestFillLandFillsBetweenLandEnds(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	w := sm.XCount()
	sm.SetState(0, 0, model.Land)
	sm.SetState(w-1, 0, model.Land)
	FillLand(sm)
	for x := 0; x < w; x++ {
		if got := sm.GetState(x, 0); got != model.Land {
			t.Fatalf("expected row fully filled with land, cell %d got %v", x, got)
		}
	}
}

func TestMarkCoastlineCells(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	line := []geo.Coord{{Lat: 0.5, Lon: -4.5}, {Lat: 0.5, Lon: 4.5}}
	MarkCoastlineCells(sm, [][]geo.Coord{line})
	found := false
	for y := 0; y < sm.YCount(); y++ {
		for x := 0; x < sm.XCount(); x++ {
			if sm.GetState(x, y) == model.StateCoast {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected at least one cell marked coast")
	}
}

func TestFillWaterAroundIslandPrependsBackgroundTile(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	px := model.Pixel{X: 3, Y: 3}
	sm.SetState(px.X, px.Y, model.StateCoast)
	sm.SetState(px.X+1, px.Y, model.Water)
	sm.SetState(px.X-1, px.Y, model.Water)
	sm.SetState(px.X, px.Y+1, model.Water)
	sm.SetState(px.X, px.Y-1, model.Water)

	interior := model.GroundTile{Type: model.TileLand, Coords: []model.CellCoord{
		{U: 10000, V: 10000}, {U: 20000, V: 10000}, {U: 20000, V: 20000}, {U: 10000, V: 20000},
	}}
	tiles := map[model.Pixel][]model.GroundTile{px: {interior}}
	FillWaterAroundIsland(sm, tiles)
	if len(tiles[px]) != 2 {
		t.Fatalf("expected a background water tile to be prepended, got %d tiles", len(tiles[px]))
	}
	if tiles[px][0].Type != model.TileWater {
		t.Fatalf("expected prepended tile to be water, got %v", tiles[px][0].Type)
	}
}

func TestFillWaterAroundIslandAcceptsSingleWaterNeighbor(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	px := model.Pixel{X: 3, Y: 3}
	sm.SetState(px.X, px.Y, model.StateCoast)
	sm.SetState(px.X+1, px.Y, model.Water)
	sm.SetState(px.X-1, px.Y, model.Land)
	sm.SetState(px.X, px.Y+1, model.Land)
	sm.SetState(px.X, px.Y-1, model.Land)

	interior := model.GroundTile{Type: model.TileLand, Coords: []model.CellCoord{
		{U: 10000, V: 10000}, {U: 20000, V: 10000}, {U: 20000, V: 20000}, {U: 10000, V: 20000},
	}}
	tiles := map[model.Pixel][]model.GroundTile{px: {interior}}
	FillWaterAroundIsland(sm, tiles)
	if len(tiles[px]) != 2 {
		t.Fatalf("expected a single water neighbor to be enough to prepend a background tile, got %d tiles", len(tiles[px]))
	}
}

func TestFillWaterAroundIslandFallsBackToNeighborGroundTile(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	px := model.Pixel{X: 3, Y: 3}
	sm.SetState(px.X, px.Y, model.StateCoast)
	sm.SetState(px.X+1, px.Y, model.Unknown)
	sm.SetState(px.X-1, px.Y, model.Land)
	sm.SetState(px.X, px.Y+1, model.Land)
	sm.SetState(px.X, px.Y-1, model.Land)

	interior := model.GroundTile{Type: model.TileLand, Coords: []model.CellCoord{
		{U: 10000, V: 10000}, {U: 20000, V: 10000}, {U: 20000, V: 20000}, {U: 10000, V: 20000},
	}}
	// The right neighbor's own state is still Unknown, but its ground tile
	// is a full water fill along its left border, which is the border it
	// shares with px.
	neighborWaterTile := model.GroundTile{Type: model.TileWater, Coords: []model.CellCoord{
		{U: 0, V: 0}, {U: 0, V: model.CellMax},
	}}
	rightPx := model.Pixel{X: px.X + 1, Y: px.Y}
	tiles := map[model.Pixel][]model.GroundTile{
		px:      {interior},
		rightPx: {neighborWaterTile},
	}
	FillWaterAroundIsland(sm, tiles)
	if len(tiles[px]) != 2 {
		t.Fatalf("expected the neighbor's bordering water tile to count as water, got %d tiles", len(tiles[px]))
	}
}
