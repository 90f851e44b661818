package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAML schema for catalogue files. Socket and biome names match the String
// forms of the enums.
type fileCatalog struct {
	Tiles     []fileTile     `yaml:"tiles"`
	BaseRoads map[int]TileID `yaml:"base_roads"` // neighbour bitmask -> tile id
}

type fileTile struct {
	ID      TileID       `yaml:"id"`
	Biome   string       `yaml:"biome"`
	Weight  float64      `yaml:"weight"`
	Sockets *fileSockets `yaml:"sockets"`
	Base    TileID       `yaml:"base"`
	Large   *fileLarge   `yaml:"large"`
}

type fileSockets struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

type fileLarge struct {
	Width    int        `yaml:"width"`
	Height   int        `yaml:"height"`
	Anchor   int        `yaml:"anchor"`
	Subtiles []fileTile `yaml:"subtiles"`
}

// LoadFile reads a catalogue from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalogue from YAML data.
func Parse(data []byte) (*Catalog, error) {
	var file fileCatalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	tiles := make([]TileConfig, 0, len(file.Tiles))
	for _, ft := range file.Tiles {
		tc, err := ft.toConfig()
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tc)
	}

	masks := make(map[Bitmask]TileID, len(file.BaseRoads))
	for mask, id := range file.BaseRoads {
		if mask < 0 || mask > 15 {
			return nil, fmt.Errorf("catalog: bitmask %d out of range", mask)
		}
		masks[Bitmask(mask)] = id
	}

	return New(tiles, masks)
}

func (ft fileTile) toConfig() (TileConfig, error) {
	biome, err := parseBiome(ft.Biome)
	if err != nil {
		return TileConfig{}, fmt.Errorf("tile %d: %w", ft.ID, err)
	}

	tc := TileConfig{
		ID:         ft.ID,
		Biome:      biome,
		Weight:     ft.Weight,
		BaseTileID: ft.Base,
	}

	if ft.Large != nil {
		large := &LargeTileConfig{
			Width:       ft.Large.Width,
			Height:      ft.Large.Height,
			AnchorIndex: ft.Large.Anchor,
		}
		for _, sub := range ft.Large.Subtiles {
			if sub.Large != nil {
				return TileConfig{}, fmt.Errorf("tile %d: nested large subtile %d", ft.ID, sub.ID)
			}
			subConfig, err := sub.toConfig()
			if err != nil {
				return TileConfig{}, err
			}
			subConfig.Biome = biome
			large.Subtiles = append(large.Subtiles, subConfig)
		}
		tc.Large = large
		return tc, nil
	}

	if ft.Sockets == nil {
		return TileConfig{}, fmt.Errorf("tile %d: missing sockets", ft.ID)
	}
	sockets, err := ft.Sockets.toSockets()
	if err != nil {
		return TileConfig{}, fmt.Errorf("tile %d: %w", ft.ID, err)
	}
	tc.Sockets = sockets
	return tc, nil
}

func (fs fileSockets) toSockets() (Sockets, error) {
	var out Sockets
	var err error
	if out.Top, err = ParseSocket(fs.Top); err != nil {
		return out, err
	}
	if out.Right, err = ParseSocket(fs.Right); err != nil {
		return out, err
	}
	if out.Bottom, err = ParseSocket(fs.Bottom); err != nil {
		return out, err
	}
	if out.Left, err = ParseSocket(fs.Left); err != nil {
		return out, err
	}
	return out, nil
}

func parseBiome(name string) (Biome, error) {
	switch name {
	case "road":
		return BiomeRoad, nil
	case "lot":
		return BiomeLot, nil
	case "nature":
		return BiomeNature, nil
	default:
		return BiomeRoad, fmt.Errorf("unknown biome %q", name)
	}
}
