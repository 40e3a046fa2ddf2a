package cellindex

import (
	"testing"

	"waterindex/internal/statemap"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

func box() geo.Box {
	return geo.Box{Min: geo.Coord{Lat: -4, Lon: -4}, Max: geo.Coord{Lat: 4, Lon: 4}}
}

func TestGetCellsStraightLine(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	pts := []geo.Coord{{Lat: -3.5, Lon: -3.5}, {Lat: -3.5, Lon: 3.5}}
	cells := GetCells(sm, pts)
	if len(cells) == 0 {
		t.Fatalf("expected at least one cell crossed")
	}
}

func TestGetCellIntersectionsParity(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	// A line crossing eight cells left to right along y=0.5 within a row.
	pts := []geo.Coord{{Lat: 0.5, Lon: -3.5}, {Lat: 0.5, Lon: 3.5}}
	hits := GetCellIntersections(sm, pts, 0)
	inCount, outCount := 0, 0
	for _, ints := range hits {
		for _, in := range ints {
			switch in.Direction {
			case model.DirIn:
				inCount++
			case model.DirOut:
				outCount++
			}
		}
	}
	if inCount != outCount {
		t.Fatalf("unbalanced in/out intersections: in=%d out=%d", inCount, outCount)
	}
	if inCount == 0 {
		t.Fatalf("expected some in/out intersections")
	}
}

func TestGetCellIntersectionsSingleCellNoCrossing(t *testing.T) {
	sm := statemap.New(box(), 1, 1)
	pts := []geo.Coord{{Lat: 0.2, Lon: 0.2}, {Lat: 0.3, Lon: 0.3}}
	hits := GetCellIntersections(sm, pts, 0)
	if len(hits) != 0 {
		t.Fatalf("segment fully inside one cell should have no border crossings, got %v", hits)
	}
}
