package waterindex

import "waterindex/pkg/model"

// CoastlineSource is the seam between the engine and whatever ingests raw
// map data into coastline records; a real ingester (OSM extraction, out of
// scope here) and test fixtures both implement it.
type CoastlineSource interface {
	// Coastlines returns every way/area coastline to process.
	Coastlines() []*model.Coast
	// BoundingPolygons returns the area(s) delimiting what "outside the
	// world" means for the synthesizer.
	BoundingPolygons() []*model.Coast
}

// StaticSource is a CoastlineSource backed by in-memory slices, used by
// tests and by small fixture-driven tools.
type StaticSource struct {
	Coasts   []*model.Coast
	Boundary []*model.Coast
}

func (s StaticSource) Coastlines() []*model.Coast       { return s.Coasts }
func (s StaticSource) BoundingPolygons() []*model.Coast { return s.Boundary }
