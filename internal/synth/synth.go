// Package synth implements the coastline synthesizer: it clips bounding
// polygons and coastlines against each other so the result fully encircles
// the imported region even where no real coastline exists.
package synth

import (
	"sort"

	"waterindex/internal/coast"
	"waterindex/internal/geom"
	"waterindex/internal/progress"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
)

// taggedHit is a crossing annotated with which coastline it came from, so
// hits originally found from the candidate's point of view can be re-sorted
// from the coastline's point of view without losing the link.
type taggedHit struct {
	hit     geom.PathIntersection
	coastID int
}

// Synthesize clips boundingPolygons and coastlines against each other,
// returning the set of closed, oriented coast segments that the walker
// should use, per SPEC_FULL.md §4.5.
func Synthesize(boundingPolygons []*model.Coast, coastlines []*coast.Data, rep progress.Reporter) []*coast.Data {
	var out []*coast.Data

	candidates := make([]*coast.Data, len(boundingPolygons))
	for i, b := range boundingPolygons {
		candidates[i] = &coast.Data{ID: b.ID, Points: append([]geo.Coord(nil), b.Points...), IsArea: true, Left: b.Left, Right: b.Right}
	}

	perCoastline := make([][]geom.PathIntersection, len(coastlines))

	for _, cand := range candidates {
		var candHits []geom.PathIntersection
		for ci, cl := range coastlines {
			hits := geom.FindPathIntersections(cand.Points, true, cl.Points, cl.IsArea)
			var kept []geom.PathIntersection
			for _, h := range hits {
				if h.Orientation != 0 {
					kept = append(kept, h)
				}
			}
			if len(kept)%2 != 0 {
				rep.Warningf("odd intersection count (%d) between bounding polygon %d and coastline %d, skipping", len(kept), cand.ID, cl.ID)
				continue
			}
			candHits = append(candHits, kept...)
			perCoastline[ci] = append(perCoastline[ci], kept...)
		}
		if len(candHits) == 0 {
			out = append(out, cand)
			continue
		}
		sort.Slice(candHits, func(i, j int) bool {
			if candHits[i].AIndex != candHits[j].AIndex {
				return candHits[i].AIndex < candHits[j].AIndex
			}
			return candHits[i].ADistanceSquare < candHits[j].ADistanceSquare
		})
		n := len(candHits)
		for i := 0; i < n; i++ {
			i1, i2 := candHits[i], candHits[(i+1)%n]
			piece := splicePiece(cand.Points, true, i1, i2, cand.ID)
			if i1.Orientation > 0 {
				piece.Left = model.SideWater
			} else {
				piece.Left = model.SideLand
			}
			piece.Right = cand.Right
			out = append(out, piece)
		}
	}

	for ci, cl := range coastlines {
		hits := perCoastline[ci]
		if len(hits) == 0 {
			// With no bounding polygon at all there is nothing to clip
			// against, so every coastline passes through unchanged. With
			// at least one bounding polygon, a zero-intersection way is
			// dropped outright; only a zero-intersection island (area) is
			// kept, and only when it isn't fully outside every polygon.
			switch {
			case len(candidates) == 0:
				out = append(out, cl)
			case cl.IsArea && !isFullyOutside(cl, candidates):
				out = append(out, cl)
			}
			continue
		}
		bHits := make([]geom.PathIntersection, len(hits))
		for i, h := range hits {
			bHits[i] = swapAB(h)
		}
		sort.Slice(bHits, func(i, j int) bool {
			if bHits[i].AIndex != bHits[j].AIndex {
				return bHits[i].AIndex < bHits[j].AIndex
			}
			return bHits[i].ADistanceSquare < bHits[j].ADistanceSquare
		})
		n := len(bHits)
		limit := n
		if !cl.IsArea {
			limit = n - 1
		}
		for i := 0; i < limit; i++ {
			i1, i2 := bHits[i], bHits[(i+1)%n]
			if i1.Orientation <= 0 {
				continue
			}
			piece := splicePiece(cl.Points, cl.IsArea, i1, i2, cl.ID)
			piece.Left = cl.Left
			piece.Right = cl.Right
			out = append(out, piece)
		}
	}

	resolveUndefined(out)
	return out
}

// swapAB flips a candidate-vs-coastline hit so AIndex addresses the
// coastline's own point sequence instead of the candidate's.
func swapAB(h geom.PathIntersection) geom.PathIntersection {
	return geom.PathIntersection{
		AIndex:          h.BIndex,
		BIndex:          h.AIndex,
		AIndexNext:      h.BIndexNext,
		BIndexNext:      h.AIndexNext,
		Point:           h.Point,
		ADistanceSquare: h.BDistanceSquare,
		BDistanceSquare: h.ADistanceSquare,
		Orientation:     -h.Orientation,
	}
}

// splicePiece builds a new open coastline piece from i1.Point to i2.Point,
// copying pts[i1.AIndexNext:i2.AIndex+1] in between (wrapping if isArea).
// When both crossings lie on the same segment with i1 first, nothing is
// copied in between.
func splicePiece(pts []geo.Coord, isArea bool, i1, i2 geom.PathIntersection, id int64) *coast.Data {
	var mid []geo.Coord
	start, end := i1.AIndexNext, i2.AIndex
	switch {
	case i1.AIndex == i2.AIndex && i1.ADistanceSquare <= i2.ADistanceSquare:
	case start <= end:
		mid = pts[start : end+1]
	case isArea:
		mid = append(append([]geo.Coord(nil), pts[start:]...), pts[:end+1]...)
	}
	out := make([]geo.Coord, 0, len(mid)+2)
	out = append(out, i1.Point)
	out = append(out, mid...)
	out = append(out, i2.Point)
	return &coast.Data{ID: id, Points: out, IsArea: false}
}

func isFullyOutside(cl *coast.Data, candidates []*coast.Data) bool {
	if len(candidates) == 0 {
		return false
	}
	for _, p := range cl.Points {
		for _, cand := range candidates {
			if geom.PointInPolygon(p, cand.Points) {
				return false
			}
		}
	}
	return true
}

// resolveUndefined fills in any remaining Left/Right sides left undefined
// by the splicing above: an undefined Right becomes unknown; an undefined
// Left becomes water for an area lying wholly inside another area whose
// Right is water, land for any other area, and unknown for a way.
func resolveUndefined(pieces []*coast.Data) {
	for _, p := range pieces {
		if p.Right == model.SideUndefined {
			p.Right = model.SideUnknown
		}
		if p.Left == model.SideUndefined {
			if p.IsArea {
				p.Left = model.SideLand
			containers:
				for _, q := range pieces {
					if q == p || !q.IsArea || q.Right != model.SideWater {
						continue
					}
					for _, pt := range p.Points {
						if !geom.PointInPolygon(pt, q.Points) {
							continue containers
						}
					}
					p.Left = model.SideWater
					break
				}
			} else {
				p.Left = model.SideUnknown
			}
		}
	}
}
