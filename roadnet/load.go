package roadnet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fleetplanner/heading"
)

// graphFile mirrors the on-disk YAML adjacency format:
//
//	parking: ["81","82"]
//	cells:
//	  "81": {n: "71"}
//	  "71": {s: "81", e: "72"}
type graphFile struct {
	Parking []string                     `yaml:"parking"`
	Cells   map[string]map[string]string `yaml:"cells"`
}

// LoadGraphFile reads a YAML adjacency description from path and builds a
// Graph from it.
func LoadGraphFile(path string) (*Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roadnet: read graph file: %w", err)
	}

	var gf graphFile
	if err := yaml.Unmarshal(raw, &gf); err != nil {
		return nil, fmt.Errorf("roadnet: parse graph file: %w", err)
	}

	spec := AdjacencySpec{
		Cells:   make(map[Cell]map[heading.Heading]Cell, len(gf.Cells)),
		Parking: make([]Cell, 0, len(gf.Parking)),
	}
	for cellID, out := range gf.Cells {
		edges := make(map[heading.Heading]Cell, len(out))
		for code, nb := range out {
			dir, ok := heading.Parse(code)
			if !ok {
				return nil, fmt.Errorf("roadnet: cell %s has invalid direction code %q", cellID, code)
			}
			edges[dir] = Cell(nb)
		}
		spec.Cells[Cell(cellID)] = edges
	}
	for _, p := range gf.Parking {
		spec.Parking = append(spec.Parking, Cell(p))
	}

	return NewGraph(spec)
}
