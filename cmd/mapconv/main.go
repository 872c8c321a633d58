// mapconv converts a Tiled JSON map export into the world map YAML the
// server loads.
//
// Layer conventions:
//   - tile layers: a tile blocks when its tileset marks it with property "c";
//     every non-empty tile of a layer named "blocking" blocks as well
//   - object group "start": starting areas
//   - object group "entities": static npcs, mobs and items, named by kind
//   - object group "roaming": mob areas, named by mob, property "nb"
//   - object group "chestareas": properties "x", "y" (chest tile) and "items"
//   - object group "chests": static chests, property "items"
//
// Usage:
//
//	go run ./cmd/mapconv [-zone-width 28] [-zone-height 12] map.json [world_map.yaml]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func main() {
	zoneW := flag.Int("zone-width", 28, "zone group width in tiles")
	zoneH := flag.Int("zone-height", 12, "zone group height in tiles")
	flag.Parse()

	inputPath := filepath.Join("tools", "maps", "world.json")
	outputPath := filepath.Join("data", "yaml", "world_map.yaml")
	if flag.NArg() >= 1 {
		inputPath = flag.Arg(0)
	}
	if flag.NArg() >= 2 {
		outputPath = flag.Arg(1)
	}

	// ---- Read & parse Tiled JSON ----
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", inputPath, err)
		os.Exit(1)
	}
	tm, err := parseTiledMap(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing %s: %v\n", inputPath, err)
		os.Exit(1)
	}

	// ---- Convert ----
	out, warnings := convert(tm, *zoneW, *zoneH)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	// ---- Write world_map.yaml ----
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output directory: %v\n", err)
		os.Exit(1)
	}
	yamlData, err := yaml.Marshal(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshalling YAML: %v\n", err)
		os.Exit(1)
	}
	header := fmt.Sprintf("# Converted from %s by mapconv\n\n", filepath.Base(inputPath))
	if err := os.WriteFile(outputPath, append([]byte(header), yamlData...), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %dx%d map to %s: %d blocked rects, %d entities, %d mob areas, %d chest areas, %d chests\n",
		out.Width, out.Height, outputPath,
		len(out.Blocked), len(out.StaticEntities), len(out.MobAreas), len(out.ChestAreas), len(out.StaticChests))
}
