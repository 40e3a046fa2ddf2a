// Package geo defines the planar geographic primitives shared by every
// stage of the water-index pipeline.
package geo

// Coord is a planar (lat, lon) position in degrees. All arithmetic in this
// module treats lat/lon as flat Cartesian coordinates; no spherical
// correction is applied anywhere.
type Coord struct {
	Lat float64
	Lon float64
}

// Box is an axis-aligned lat/lon rectangle with Min at the lower-left and
// Max at the upper-right.
type Box struct {
	Min Coord
	Max Coord
}

// Width returns the box's longitudinal extent in degrees.
func (b Box) Width() float64 { return b.Max.Lon - b.Min.Lon }

// Height returns the box's latitudinal extent in degrees.
func (b Box) Height() float64 { return b.Max.Lat - b.Min.Lat }

// Contains reports whether c lies within b, inclusive of the border.
func (b Box) Contains(c Coord) bool {
	return c.Lat >= b.Min.Lat && c.Lat <= b.Max.Lat &&
		c.Lon >= b.Min.Lon && c.Lon <= b.Max.Lon
}

// Intersects reports whether b and o share any area, border included.
func (b Box) Intersects(o Box) bool {
	return b.Min.Lon <= o.Max.Lon && b.Max.Lon >= o.Min.Lon &&
		b.Min.Lat <= o.Max.Lat && b.Max.Lat >= o.Min.Lat
}

// BoundingBox computes the minimal Box enclosing points. Panics on an empty
// slice; callers are expected to have already filtered degenerate inputs.
func BoundingBox(points []Coord) Box {
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		if p.Lat < b.Min.Lat {
			b.Min.Lat = p.Lat
		}
		if p.Lat > b.Max.Lat {
			b.Max.Lat = p.Lat
		}
		if p.Lon < b.Min.Lon {
			b.Min.Lon = p.Lon
		}
		if p.Lon > b.Max.Lon {
			b.Max.Lon = p.Lon
		}
	}
	return b
}

// DistanceSquare returns the squared planar distance between a and b.
func DistanceSquare(a, b Coord) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return dLat*dLat + dLon*dLon
}
