package synth

import (
	"testing"

	"waterindex/internal/coast"
	"waterindex/internal/progress"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

func pt(lon, lat float64) geo.Coord { return geo.Coord{Lon: lon, Lat: lat} }

func TestSynthesizePassesUntouchedPolygonThrough(t *testing.T) {
	boundary := &model.Coast{
		ID: 1, IsArea: true, Left: model.SideWater, Right: model.SideLand,
		Points: []geo.Coord{pt(0, 0), pt(0, 10), pt(10, 10), pt(10, 0)},
	}
	farAway := &coast.Data{
		ID: 2, IsArea: false, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{pt(100, 100), pt(101, 101)},
	}

	out := Synthesize([]*model.Coast{boundary}, []*coast.Data{farAway}, progress.NoOp())
	if len(out) != 1 {
		t.Fatalf("got %d pieces, want 1 (the untouched boundary)", len(out))
	}
	if out[0].ID != boundary.ID {
		t.Fatalf("got piece id %d, want %d", out[0].ID, boundary.ID)
	}
}

func TestSynthesizeSplicesCrossingCoastline(t *testing.T) {
	boundary := &model.Coast{
		ID: 1, IsArea: true, Left: model.SideWater, Right: model.SideLand,
		Points: []geo.Coord{pt(0, 0), pt(0, 10), pt(10, 10), pt(10, 0)},
	}
	crossing := &coast.Data{
		ID: 2, IsArea: false, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{pt(-5, 5), pt(15, 5)},
	}

	out := Synthesize([]*model.Coast{boundary}, []*coast.Data{crossing}, progress.NoOp())
	if len(out) == 0 {
		t.Fatalf("expected at least one synthesized piece")
	}
	for _, p := range out {
		if p.Left == model.SideUndefined || p.Right == model.SideUndefined {
			t.Fatalf("piece %+v has an undefined side after synthesis", p)
		}
	}
}

func TestSynthesizeDropsEnclosedWayWithNoIntersections(t *testing.T) {
	boundary := &model.Coast{
		ID: 1, IsArea: true, Left: model.SideWater, Right: model.SideLand,
		Points: []geo.Coord{pt(0, 0), pt(0, 10), pt(10, 10), pt(10, 0)},
	}
	enclosedWay := &coast.Data{
		ID: 2, IsArea: false, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{pt(4, 4), pt(6, 6)},
	}

	out := Synthesize([]*model.Coast{boundary}, []*coast.Data{enclosedWay}, progress.NoOp())
	for _, p := range out {
		if p.ID == enclosedWay.ID {
			t.Fatalf("expected the fully enclosed, non-crossing way to be dropped, got it in the output: %+v", p)
		}
	}
}

func TestSynthesizeKeepsEnclosedIslandWithNoIntersections(t *testing.T) {
	boundary := &model.Coast{
		ID: 1, IsArea: true, Left: model.SideWater, Right: model.SideLand,
		Points: []geo.Coord{pt(0, 0), pt(0, 10), pt(10, 10), pt(10, 0)},
	}
	enclosedIsland := &coast.Data{
		ID: 2, IsArea: true, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{pt(4, 4), pt(4, 6), pt(6, 6), pt(6, 4)},
	}

	out := Synthesize([]*model.Coast{boundary}, []*coast.Data{enclosedIsland}, progress.NoOp())
	found := false
	for _, p := range out {
		if p.ID == enclosedIsland.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the fully enclosed island with no intersections to be kept")
	}
}

func TestSynthesizeNoBoundaryPassesCoastlineThrough(t *testing.T) {
	cl := &coast.Data{
		ID: 1, IsArea: false, Left: model.SideLand, Right: model.SideWater,
		Points: []geo.Coord{pt(0, 0), pt(1, 1)},
	}
	out := Synthesize(nil, []*coast.Data{cl}, progress.NoOp())
	if len(out) != 1 {
		t.Fatalf("with no bounding polygons the coastline should pass through unchanged, got %d pieces", len(out))
	}
}
