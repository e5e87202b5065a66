// Package catalog loads the static reference lists the portal resolves
// against: the district/block/panchayat hierarchy with LGD codes, schemes,
// education qualifications and urban local bodies. A Catalog is read-only
// once loaded.
package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var embedded embed.FS

// Panchayat is one leaf of the location hierarchy.
type Panchayat struct {
	District string
	Block    string
	Name     string
	LGDCode  string
}

// UrbanLocalBody is a municipality or corporation.
type UrbanLocalBody struct {
	Name     string `yaml:"name"`
	District string `yaml:"district"`
	Kind     string `yaml:"kind"`
}

// Catalog holds the flattened reference lists.
type Catalog struct {
	Panchayats       []Panchayat
	Schemes          []string
	Qualifications   []string
	UrbanLocalBodies []UrbanLocalBody
}

type fileLayout struct {
	Version   int `yaml:"version"`
	Districts []struct {
		Name   string `yaml:"name"`
		Blocks []struct {
			Name       string `yaml:"name"`
			Panchayats []struct {
				Name string `yaml:"name"`
				LGD  string `yaml:"lgd"`
			} `yaml:"panchayats"`
		} `yaml:"blocks"`
	} `yaml:"districts"`
	Schemes          []string         `yaml:"schemes"`
	Qualifications   []string         `yaml:"qualifications"`
	UrbanLocalBodies []UrbanLocalBody `yaml:"urbanLocalBodies"`
}

// Load parses a YAML catalog. Unknown fields, blank names and duplicate LGD
// codes are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f fileLayout
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported catalog version %d", f.Version)
	}

	c := &Catalog{
		Schemes:          f.Schemes,
		Qualifications:   f.Qualifications,
		UrbanLocalBodies: f.UrbanLocalBodies,
	}
	seen := make(map[string]string)
	for _, d := range f.Districts {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("catalog: district name is required")
		}
		for _, b := range d.Blocks {
			if strings.TrimSpace(b.Name) == "" {
				return nil, fmt.Errorf("catalog: block name is required in district %s", d.Name)
			}
			for _, p := range b.Panchayats {
				if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.LGD) == "" {
					return nil, fmt.Errorf("catalog: panchayat in %s/%s needs name and lgd", d.Name, b.Name)
				}
				if prev, dup := seen[p.LGD]; dup {
					return nil, fmt.Errorf("catalog: lgd code %s used by %s and %s", p.LGD, prev, p.Name)
				}
				seen[p.LGD] = p.Name
				c.Panchayats = append(c.Panchayats, Panchayat{
					District: d.Name,
					Block:    b.Name,
					Name:     p.Name,
					LGDCode:  p.LGD,
				})
			}
		}
	}
	return c, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(bytes.NewReader(data))
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	data, err := embedded.ReadFile("data/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Districts returns the distinct districts in catalog order.
func (c *Catalog) Districts() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range c.Panchayats {
		if _, ok := seen[p.District]; ok {
			continue
		}
		seen[p.District] = struct{}{}
		out = append(out, p.District)
	}
	return out
}
