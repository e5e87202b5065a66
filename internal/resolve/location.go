// Package resolve joins records across independently stored collections and
// the static catalog. Every function is pure: inputs are snapshots and
// nothing is mutated. A miss is an ordinary result that callers use to
// clear dependent fields.
package resolve

import (
	"sort"

	"auditportal/internal/catalog"
	"auditportal/pkg/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Panchayat finds the catalog entry for ref.Panchayat. Empty district or
// block on ref match any; the first catalog entry that fits wins.
func Panchayat(c *catalog.Catalog, ref domain.LocationRef) (catalog.Panchayat, bool) {
	if c == nil || ref.Panchayat == "" {
		return catalog.Panchayat{}, false
	}
	for _, p := range c.Panchayats {
		if p.Name != ref.Panchayat {
			continue
		}
		if ref.District != "" && p.District != ref.District {
			continue
		}
		if ref.Block != "" && p.Block != ref.Block {
			continue
		}
		return p, true
	}
	return catalog.Panchayat{}, false
}

// FillLocation returns ref with district, block and LGD code taken from the
// catalog. On a miss the LGD code is cleared and false is returned.
func FillLocation(c *catalog.Catalog, ref domain.LocationRef) (domain.LocationRef, bool) {
	p, ok := Panchayat(c, ref)
	if !ok {
		ref.LGDCode = ""
		return ref, false
	}
	return domain.LocationRef{
		District:  p.District,
		Block:     p.Block,
		Panchayat: p.Name,
		LGDCode:   p.LGDCode,
	}, true
}

// Blocks returns the distinct blocks of district in collation order.
func Blocks(c *catalog.Catalog, district string) []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.Panchayats {
		if p.District != district {
			continue
		}
		if _, ok := seen[p.Block]; ok {
			continue
		}
		seen[p.Block] = struct{}{}
		out = append(out, p.Block)
	}
	collate.New(language.English).SortStrings(out)
	return out
}

// Panchayats returns the panchayats of block within district sorted by
// name. A block outside district yields nothing.
func Panchayats(c *catalog.Catalog, district, block string) []catalog.Panchayat {
	if c == nil {
		return nil
	}
	var out []catalog.Panchayat
	for _, p := range c.Panchayats {
		if p.District == district && p.Block == block {
			out = append(out, p)
		}
	}
	col := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
