package walker

import (
	"testing"

	"waterindex/internal/coast"
	"waterindex/internal/progress"
	"waterindex/internal/statemap"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

// singleCellMap builds a StateMap whose only cell is absolute (89, 44),
// spanning Lon[-2,0] x Lat[-2,0].
func singleCellMap() *statemap.StateMap {
	box := geo.Box{
		Min: geo.Coord{Lat: -2, Lon: -2},
		Max: geo.Coord{Lat: -0.001, Lon: -0.001},
	}
	return statemap.New(box, 2, 2)
}

func TestWalkStraightCrossingProducesClosedTile(t *testing.T) {
	sm := singleCellMap()
	gx, gy := sm.XStart, sm.YStart

	cl := &coast.Data{
		ID: 1, IsArea: false, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{{Lon: -2, Lat: -1}, {Lon: 0, Lat: -1}},
	}

	inInt := model.Intersection{CoastlineIdx: 0, PrevWayPointIndex: 0, Point: geo.Coord{Lon: -2, Lat: -1}, Border: model.BorderLeft, Direction: model.DirIn}
	outInt := model.Intersection{CoastlineIdx: 0, PrevWayPointIndex: 0, Point: geo.Coord{Lon: 0, Lat: -1}, Border: model.BorderRight, Direction: model.DirOut}

	cell := BuildCell(gx, gy, []model.Intersection{inInt, outInt}, []*coast.Data{cl}, nil)
	tiles := Walk(sm, cell, progress.NoOp())

	if len(tiles) != 1 {
		t.Fatalf("got %d tiles, want 1", len(tiles))
	}
	tile := tiles[0]
	if tile.Type != model.TileLand {
		t.Fatalf("got tile type %v, want Land", tile.Type)
	}
	if len(tile.Coords) != 4 {
		t.Fatalf("got %d coords, want 4 (two crossing points + two corners), coords=%+v", len(tile.Coords), tile.Coords)
	}
	wantTL := model.CellCoord{U: 0, V: model.CellMax}
	wantTR := model.CellCoord{U: model.CellMax, V: model.CellMax}
	if got := tile.Coords[2]; got.U != wantTL.U || got.V != wantTL.V {
		t.Fatalf("third coord: got %+v, want top-left corner %+v", got, wantTL)
	}
	if got := tile.Coords[3]; got.U != wantTR.U || got.V != wantTR.V {
		t.Fatalf("fourth coord: got %+v, want top-right corner %+v", got, wantTR)
	}
}

func TestWalkStitchesTripointAcrossTwoCoastlines(t *testing.T) {
	sm := singleCellMap()
	gx, gy := sm.XStart, sm.YStart

	// A enters through the left border and terminates inside the cell at
	// (-1,-1); B starts at that same point and leaves through the top
	// border. Neither has a sibling of its own, so the only way to close
	// the tile is to hop from A's own end to B's own end at their shared
	// tripoint.
	a := &coast.Data{
		ID: 1, IsArea: false, Left: model.SideWater, Right: model.SideLand,
		Points: []geo.Coord{{Lon: -2, Lat: -1}, {Lon: -1, Lat: -1}},
	}
	b := &coast.Data{
		ID: 2, IsArea: false, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{{Lon: -1, Lat: -1}, {Lon: -1, Lat: -0.001}},
	}

	aIn := model.Intersection{CoastlineIdx: 0, PrevWayPointIndex: 0, Point: geo.Coord{Lon: -2, Lat: -1}, Border: model.BorderLeft, Direction: model.DirIn}
	bOut := model.Intersection{CoastlineIdx: 1, PrevWayPointIndex: 0, Point: geo.Coord{Lon: -1, Lat: -0.001}, Border: model.BorderTop, Direction: model.DirOut}

	cell := BuildCell(gx, gy, []model.Intersection{aIn, bOut}, []*coast.Data{a, b}, nil)
	tiles := Walk(sm, cell, progress.NoOp())

	if len(tiles) != 1 {
		t.Fatalf("got %d tiles, want 1", len(tiles))
	}
	tile := tiles[0]
	if tile.Type != model.TileLand {
		t.Fatalf("got tile type %v, want Land", tile.Type)
	}
	if len(tile.Coords) != 4 {
		t.Fatalf("got %d coords, want 4 (B's crossing, the tripoint, A's crossing, one corner), coords=%+v", len(tile.Coords), tile.Coords)
	}
	wantTL := model.CellCoord{U: 0, V: model.CellMax}
	if got := tile.Coords[3]; got.U != wantTL.U || got.V != wantTL.V {
		t.Fatalf("fourth coord: got %+v, want top-left corner %+v", got, wantTL)
	}
	if !tile.Coords[1].OnCoast {
		t.Fatalf("the tripoint vertex should be marked onCoast, got %+v", tile.Coords[1])
	}
}

func TestWalkContainedAreaProducesOneTile(t *testing.T) {
	sm := singleCellMap()
	gx, gy := sm.XStart, sm.YStart

	island := &coast.Data{
		ID: 2, IsArea: true, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{
			{Lon: -1.5, Lat: -1.5}, {Lon: -1.5, Lat: -0.5}, {Lon: -0.5, Lat: -0.5}, {Lon: -0.5, Lat: -1.5},
		},
	}
	cell := BuildCell(gx, gy, nil, []*coast.Data{island}, []int{0})
	tiles := Walk(sm, cell, progress.NoOp())

	if len(tiles) != 1 {
		t.Fatalf("got %d tiles, want 1", len(tiles))
	}
	if tiles[0].Type != model.TileLand {
		t.Fatalf("got tile type %v, want Land", tiles[0].Type)
	}
	if len(tiles[0].Coords) != len(island.Points) {
		t.Fatalf("got %d coords, want %d", len(tiles[0].Coords), len(island.Points))
	}
}

func TestTransformClampsToCellBounds(t *testing.T) {
	sm := singleCellMap()
	gx, gy := sm.XStart, sm.YStart
	c := Transform(sm, gx, gy, geo.Coord{Lon: -2, Lat: -2}, false)
	if c.U != 0 || c.V != 0 {
		t.Fatalf("got %+v, want the bottom-left corner (0,0)", c)
	}
	c2 := Transform(sm, gx, gy, geo.Coord{Lon: 0, Lat: 0}, false)
	if c2.U != model.CellMax || c2.V != model.CellMax {
		t.Fatalf("got %+v, want the top-right corner (%d,%d)", c2, model.CellMax, model.CellMax)
	}
}
