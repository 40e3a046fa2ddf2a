// Command waterindexgen runs the water-index pipeline against a GeoJSON
// fixture and writes the serialized index to disk. The GeoJSON loader here
// is a stand-in for a real coastline ingester (out of scope for this
// repository); it expects a FeatureCollection of LineString/Polygon
// features tagged with a "role" property of "coastline", "island", or
// "boundary", and "left"/"right" properties of "land"/"water"/"unknown".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"waterindex/internal/progress"
	"waterindex/pkg/geo"
	"waterindex/pkg/model"
	"waterindex/pkg/waterindex"
)

func main() {
	cfg := waterindex.DefaultConfig()
	fv := cfg.Bind(flag.CommandLine)
	input := flag.String("input", "", "path to a GeoJSON FeatureCollection of coastlines and boundaries")
	output := flag.String("output", "waterindex.dat", "path to write the serialized index")
	flag.Parse()

	if err := fv.ApplyTo(&cfg); err != nil {
		fatal(err)
	}
	if *input == "" {
		fatal(fmt.Errorf("missing -input"))
	}

	log, err := zap.NewProduction()
	if err != nil {
		fatal(err)
	}
	defer log.Sync()
	rep := progress.NewZap(log)

	src, err := loadSource(*input)
	if err != nil {
		fatal(err)
	}

	p := waterindex.NewProcessor(cfg, rep)
	results, err := p.Run(context.Background(), src)
	if err != nil {
		fatal(err)
	}

	f, err := os.Create(*output)
	if err != nil {
		fatal(err)
	}
	defer f.Close()
	if err := waterindex.WriteTo(f, results); err != nil {
		fatal(err)
	}
	log.Info("wrote water index", zap.String("path", *output), zap.Int("levels", len(results)))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "waterindexgen:", err)
	os.Exit(1)
}

func loadSource(path string) (waterindex.CoastlineSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	var coasts, boundary []*model.Coast
	for i, f := range fc.Features {
		c, isArea, err := toCoast(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		left := sideOf(f.Properties.MustString("left", "unknown"))
		right := sideOf(f.Properties.MustString("right", "unknown"))
		rec := &model.Coast{ID: int64(i), Points: c, IsArea: isArea, Left: left, Right: right}

		switch f.Properties.MustString("role", "coastline") {
		case "boundary":
			boundary = append(boundary, rec)
		default:
			coasts = append(coasts, rec)
		}
	}
	return waterindex.StaticSource{Coasts: coasts, Boundary: boundary}, nil
}

func toCoast(g orb.Geometry) ([]geo.Coord, bool, error) {
	switch v := g.(type) {
	case orb.LineString:
		return fromOrb(v), false, nil
	case orb.Ring:
		return fromOrb(orb.LineString(v)), true, nil
	case orb.Polygon:
		if len(v) == 0 {
			return nil, false, fmt.Errorf("empty polygon")
		}
		return fromOrb(orb.LineString(v[0])), true, nil
	default:
		return nil, false, fmt.Errorf("unsupported geometry type %T", g)
	}
}

func fromOrb(ls orb.LineString) []geo.Coord {
	out := make([]geo.Coord, len(ls))
	for i, p := range ls {
		out[i] = geo.Coord{Lon: p[0], Lat: p[1]}
	}
	return out
}

func sideOf(s string) model.CoastState {
	switch s {
	case "land":
		return model.SideLand
	case "water":
		return model.SideWater
	default:
		return model.SideUnknown
	}
}
