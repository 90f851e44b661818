// mapgen generates a full tilemap offline and renders it as ASCII. Useful
// for sanity-checking a tile catalogue and seed without running the editor
// server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/editor"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/tilemap"
	"github.com/citysketch/citysketch/internal/wfc"
)

func main() {
	width := flag.Int("width", 16, "Map width in cells")
	height := flag.Int("height", 12, "Map height in cells")
	seed := flag.Int64("seed", 0, "Solver seed (0 = from clock)")
	lots := flag.Int("lots", 4, "Maximum lot instances (0 = unlimited)")
	catalogFile := flag.String("catalog", "", "Path to catalog YAML (empty = built-in)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	cat := catalog.Default()
	if *catalogFile != "" {
		var err error
		cat, err = catalog.LoadFile(*catalogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
			os.Exit(1)
		}
	}

	mapConfig := tilemap.Config{
		HorizontalCellsAmount: *width,
		VerticalCellsAmount:   *height,
	}
	tm := wfc.SeedTilemap(mapConfig, cat, cat.All())

	opts := []editor.Option{}
	if *lots > 0 {
		opts = append(opts, editor.WithTileInventory(map[catalog.TileID]int{
			catalog.ResidentialLotID: *lots,
		}))
	}
	ed := editor.New(tm, *seed, opts...)

	// Sketch a main road across the middle so lots have something to
	// attach to, then let the solver fill the rest.
	row := *height / 2
	for x := 2; x < *width; x++ {
		if _, err := ed.Primary(grid.Cell{X: x, Y: row}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to place road at (%d, %d): %v\n", x, row, err)
			os.Exit(1)
		}
	}
	editor.ReopenRoads(ed.Tilemap())

	if _, err := ed.RunDecorativePass(); err != nil {
		fmt.Fprintf(os.Stderr, "Fill failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seed: %d\n\n", *seed)
	fmt.Print(render(ed.Tilemap(), cat))
}

// render draws one character per cell.
func render(tm *tilemap.Tilemap, cat *catalog.Catalog) string {
	size := tm.Size()
	var b strings.Builder

	for y := 1; y <= size.Height; y++ {
		for x := 1; x <= size.Width; x++ {
			tile, _ := tm.TileByCell(grid.Cell{X: x, Y: y})
			b.WriteByte(glyph(tile, cat))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func glyph(tile tilemap.Tile, cat *catalog.Catalog) byte {
	if !tile.IsFixed() {
		return '?'
	}
	if tile.Parent != nil {
		return 'H'
	}
	tc, ok := cat.Tile(tile.ID)
	if !ok {
		return '!'
	}
	switch tc.Biome {
	case catalog.BiomeRoad:
		return '#'
	case catalog.BiomeLot:
		return 'H'
	default:
		switch tile.ID {
		case catalog.ForestID:
			return 'T'
		case catalog.ParkID:
			return 'o'
		case catalog.PondID:
			return '~'
		default:
			return '.'
		}
	}
}
