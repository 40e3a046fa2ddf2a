// Command levelstats opens a water index written by waterindexgen and
// prints, per level, the cell-state histogram and the number of coast
// cells carrying tile data.
package main

import (
	"flag"
	"fmt"
	"os"

	"waterindex/internal/index"
	"waterindex/pkg/model"
)

func main() {
	path := flag.String("input", "waterindex.dat", "path to a serialized water index")
	flag.Parse()

	data, err := os.ReadFile(*path)
	if err != nil {
		fatal(err)
	}
	r, err := index.NewReader(data)
	if err != nil {
		fatal(err)
	}

	for lvl := r.MinLevel; lvl <= r.MaxLevel; lvl++ {
		h, ok := r.Header(lvl)
		if !ok {
			continue
		}
		fmt.Printf("level %d: range x[%d,%d] y[%d,%d] hasCellData=%v defaultState=%s\n",
			lvl, h.XStart, h.XEnd, h.YStart, h.YEnd, h.HasCellData, h.DefaultCellData)
		if !h.HasCellData {
			continue
		}
		hist := map[model.State]int{}
		coastCells := 0
		for y := h.YStart; y <= h.YEnd; y++ {
			for x := h.XStart; x <= h.XEnd; x++ {
				st, err := r.CellState(lvl, x, y)
				if err != nil {
					fatal(err)
				}
				hist[st]++
				if st == model.StateCoast {
					tiles, err := r.Tiles(lvl, x, y)
					if err != nil {
						fatal(err)
					}
					if len(tiles) > 0 {
						coastCells++
					}
				}
			}
		}
		fmt.Printf("  land=%d water=%d coast=%d unknown=%d  coast cells with tiles=%d\n",
			hist[model.Land], hist[model.Water], hist[model.StateCoast], hist[model.Unknown], coastCells)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "levelstats:", err)
	os.Exit(1)
}
