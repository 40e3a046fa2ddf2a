package waterindex

import (
	"flag"
	"strconv"
	"strings"

	"waterindex/internal/coast"
	"waterindex/pkg/geo"
)

// Config is the typed configuration surface for a Processor run.
type Config struct {
	Levels             []int
	BoundingBox        geo.Box
	TileCount          int
	MinObjectDimension float64
	OptimizationMethod coast.OptimizationMethod
	Tolerance          float64
}

// DefaultConfig returns the configuration the reference library ships as
// its out-of-the-box defaults.
func DefaultConfig() Config {
	return Config{
		Levels: []int{0, 4, 8, 10, 12, 14},
		BoundingBox: geo.Box{
			Min: geo.Coord{Lat: -90, Lon: -180},
			Max: geo.Coord{Lat: 90, Lon: 180},
		},
		TileCount:          7,
		MinObjectDimension: 1.0,
		OptimizationMethod: coast.Simple,
		Tolerance:          0.0001,
	}
}

// FromMap populates a Config from a string map, following the same
// convention as the per-component configs in the reference sim library.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["levels"]; ok {
		if parsed, err := parseInts(v); err == nil && len(parsed) > 0 {
			c.Levels = parsed
		}
	}
	if v, ok := cfg["min-lat"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BoundingBox.Min.Lat = f
		}
	}
	if v, ok := cfg["min-lon"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BoundingBox.Min.Lon = f
		}
	}
	if v, ok := cfg["max-lat"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BoundingBox.Max.Lat = f
		}
	}
	if v, ok := cfg["max-lon"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BoundingBox.Max.Lon = f
		}
	}
	if v, ok := cfg["tile-count"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TileCount = n
		}
	}
	if v, ok := cfg["min-object-dimension"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.MinObjectDimension = f
		}
	}
	if v, ok := cfg["tolerance"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.Tolerance = f
		}
	}
	if v, ok := cfg["optimization-method"]; ok {
		if v == "visvalingam" {
			c.OptimizationMethod = coast.Visvalingam
		} else {
			c.OptimizationMethod = coast.Simple
		}
	}
	return c
}

// Bind registers Config's fields onto fs. After fs.Parse, call ApplyTo on
// the returned FlagValues to read back the levels and optimization method,
// mirroring how the reference CLI binds simulation parameters directly to
// flag.FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) *FlagValues {
	fv := &FlagValues{}
	fv.levels = joinInts(c.Levels)
	fs.StringVar(&fv.levels, "levels", fv.levels, "comma-separated zoom levels to build")
	fs.Float64Var(&c.BoundingBox.Min.Lat, "min-lat", c.BoundingBox.Min.Lat, "bounding box minimum latitude")
	fs.Float64Var(&c.BoundingBox.Min.Lon, "min-lon", c.BoundingBox.Min.Lon, "bounding box minimum longitude")
	fs.Float64Var(&c.BoundingBox.Max.Lat, "max-lat", c.BoundingBox.Max.Lat, "bounding box maximum latitude")
	fs.Float64Var(&c.BoundingBox.Max.Lon, "max-lon", c.BoundingBox.Max.Lon, "bounding box maximum longitude")
	fs.IntVar(&c.TileCount, "tile-count", c.TileCount, "number of fillWater flood rounds")
	fs.Float64Var(&c.MinObjectDimension, "min-object-dimension", c.MinObjectDimension, "minimum pixel extent for island survival")
	fs.Float64Var(&c.Tolerance, "tolerance", c.Tolerance, "coastline simplification tolerance")
	fv.method = "simple"
	if c.OptimizationMethod == coast.Visvalingam {
		fv.method = "visvalingam"
	}
	fs.StringVar(&fv.method, "optimization-method", fv.method, "simplification method: simple|visvalingam")
	return fv
}

// FlagValues holds the raw string-typed flag destinations that Bind
// registers for fields Config can't expose directly as flag.Value targets
// (a slice, an enum). Call ApplyTo after fs.Parse.
type FlagValues struct {
	levels string
	method string
}

// ApplyTo parses the raw flag strings captured by Bind back into c.
func (fv *FlagValues) ApplyTo(c *Config) error {
	levels, err := parseInts(fv.levels)
	if err != nil {
		return err
	}
	if len(levels) > 0 {
		c.Levels = levels
	}
	if fv.method == "visvalingam" {
		c.OptimizationMethod = coast.Visvalingam
	} else {
		c.OptimizationMethod = coast.Simple
	}
	return nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func parseInts(csv string) ([]int, error) {
	parts := strings.Split(csv, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
