// Package geom implements the bespoke planar geometry primitives the
// water-index pipeline relies on: segment intersection with orientation,
// point/area containment, and path-vs-path crossing enumeration. These are
// narrower than a general-purpose geometry library's offering (see
// DESIGN.md) because the crossing direction and touch/cross distinction
// they compute feed directly into the synthesizer and walker.
package geom

import "waterindex/pkg/geo"

const epsilon = 1e-12

// orientation returns twice the signed area of triangle (a, b, c): positive
// if a->b->c turns left (counter-clockwise), negative if right, zero if
// colinear.
func orientation(a, b, c geo.Coord) float64 {
	return (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
}

func between(a, b, c float64) bool {
	if a > b {
		a, b = b, a
	}
	return a-epsilon <= c && c <= b+epsilon
}

func onSegment(p, a, b geo.Coord) bool {
	return between(a.Lon, b.Lon, p.Lon) && between(a.Lat, b.Lat, p.Lat)
}

// LinesIntersect reports whether segments (a,b) and (c,d) intersect in a
// single point (a crossing, or an endpoint touching the other segment);
// colinear segments are never reported.
func LinesIntersect(a, b, c, d geo.Coord) bool {
	ok, _ := GetLineIntersection(a, b, c, d)
	return ok
}

// GetLineIntersection reports whether segments (a,b) and (c,d) intersect
// and, if so, the intersection point. Colinear segments, overlapping or
// not, report no intersection.
func GetLineIntersection(a, b, c, d geo.Coord) (bool, geo.Coord) {
	d1 := orientation(c, d, a)
	d2 := orientation(c, d, b)
	d3 := orientation(a, b, c)
	d4 := orientation(a, b, d)

	if d1 == 0 && d2 == 0 && d3 == 0 && d4 == 0 {
		return false, geo.Coord{}
	}

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		denom := d1 - d2
		if denom == 0 {
			return false, geo.Coord{}
		}
		t := d1 / denom
		p := geo.Coord{
			Lat: a.Lat + t*(b.Lat-a.Lat),
			Lon: a.Lon + t*(b.Lon-a.Lon),
		}
		return true, p
	}

	// Degenerate / touching cases: a segment endpoint lies on the other
	// segment.
	if d1 == 0 && onSegment(a, c, d) {
		return true, a
	}
	if d2 == 0 && onSegment(b, c, d) {
		return true, b
	}
	if d3 == 0 && onSegment(c, a, b) {
		return true, c
	}
	if d4 == 0 && onSegment(d, a, b) {
		return true, d
	}
	return false, geo.Coord{}
}

// DistanceSquare returns the squared planar distance between a and b.
func DistanceSquare(a, b geo.Coord) float64 {
	return geo.DistanceSquare(a, b)
}

// PointInPolygon reports whether p lies strictly inside the closed ring
// poly (using the standard even-odd ray-casting rule; boundary points are
// not considered inside).
func PointInPolygon(p geo.Coord, poly []geo.Coord) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[j]
		if orientation(a, b, p) == 0 && onSegment(p, a, b) {
			return false
		}
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			lon := a.Lon + (p.Lat-a.Lat)/(b.Lat-a.Lat)*(b.Lon-a.Lon)
			if p.Lon < lon {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// IsAreaAtLeastPartlyInArea reports whether inner shares any area with
// outer: either a vertex of inner lies inside outer, or their boundaries
// cross.
func IsAreaAtLeastPartlyInArea(inner, outer []geo.Coord) bool {
	for _, p := range inner {
		if PointInPolygon(p, outer) {
			return true
		}
	}
	n := len(inner)
	m := len(outer)
	if n < 2 || m < 2 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := inner[i], inner[(i+1)%n]
		for j := 0; j < m; j++ {
			c, d := outer[j], outer[(j+1)%m]
			if LinesIntersect(a, b, c, d) {
				return true
			}
		}
	}
	return false
}

// PathIntersection is one crossing found by FindPathIntersections.
type PathIntersection struct {
	AIndex         int
	BIndex         int
	AIndexNext     int
	BIndexNext     int
	AStart         int // wraps: segment (AIndex, AIndexNext)
	Point          geo.Coord
	ADistanceSquare float64
	BDistanceSquare float64
	// Orientation is sign((B_next-B_prev) x (A_next-A_prev)) at the
	// crossing point: positive means A crosses from B's right to B's
	// left, negative the opposite, zero means a touch rather than a
	// transversal crossing.
	Orientation float64
}

func segCount(n int, isArea bool) int {
	if isArea {
		return n
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// FindPathIntersections enumerates every crossing between path A and path B,
// each interpreted as an area (closed ring, wrapping) or a way (open
// polyline) per aIsArea/bIsArea.
func FindPathIntersections(a []geo.Coord, aIsArea bool, b []geo.Coord, bIsArea bool) []PathIntersection {
	var out []PathIntersection
	na := segCount(len(a), aIsArea)
	nb := segCount(len(b), bIsArea)
	for ai := 0; ai < na; ai++ {
		a1, a2 := a[ai], a[(ai+1)%len(a)]
		for bi := 0; bi < nb; bi++ {
			b1, b2 := b[bi], b[(bi+1)%len(b)]
			ok, p := GetLineIntersection(a1, a2, b1, b2)
			if !ok {
				continue
			}
			ori := orientation(b1, b2, a2) - orientation(b1, b2, a1)
			out = append(out, PathIntersection{
				AIndex:          ai,
				BIndex:          bi,
				AIndexNext:      (ai + 1) % len(a),
				BIndexNext:      (bi + 1) % len(b),
				Point:           p,
				ADistanceSquare: geo.DistanceSquare(a1, p),
				BDistanceSquare: geo.DistanceSquare(b1, p),
				Orientation:     ori,
			})
		}
	}
	return out
}
