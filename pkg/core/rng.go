// Package core provides small deterministic-seed helpers reused across the
// water-index test suites, most notably to synthesize reproducible
// coastline fixtures.
package core

import (
	"math"
	"math/rand/v2"

	"waterindex/pkg/geo"
)

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// Uint8n returns a random uint8 in [0, n).
func (r *RNG) Uint8n(n uint8) uint8 {
	if n == 0 {
		return 0
	}
	return uint8(r.r.IntN(int(n)))
}

// Float64 returns a random float64 in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// FillBinary fills the buffer with 0/1 values using the RNG.
func FillBinary(r *rand.Rand, buf []uint8) {
	for i := range buf {
		buf[i] = uint8(r.IntN(2))
	}
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }

// RandomRing generates a deterministic closed polygon with n vertices
// roughly centered on center, wobbling the radius between
// [radius*(1-jitter), radius*(1+jitter)]. Used to build reproducible
// island/coastline fixtures in tests without hand-typing coordinate
// literals.
func (r *RNG) RandomRing(n int, center geo.Coord, radius, jitter float64) []geo.Coord {
	if n < 3 {
		n = 3
	}
	pts := make([]geo.Coord, 0, n+1)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		rr := radius * (1 - jitter + 2*jitter*r.Float64())
		pts = append(pts, geo.Coord{
			Lat: center.Lat + rr*math.Sin(angle),
			Lon: center.Lon + rr*math.Cos(angle),
		})
	}
	pts = append(pts, pts[0])
	return pts
}
