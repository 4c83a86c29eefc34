// Package catalog resolves which print area a design lands in, given the
// variant-to-printfile mapping supplied by the fulfillment provider.
package catalog

import (
	"fmt"
	"sort"

	"printstudio/internal/domain"
)

// PrintFileSpec is the provider's required output for one print file.
type PrintFileSpec struct {
	Width  int
	Height int
	DPI    int
}

// VariantCatalog is the read-only mapping the provider hands out:
// variant -> placement -> print file id, plus the print file dimensions.
type VariantCatalog struct {
	Variants   map[string]map[string]string
	PrintFiles map[string]PrintFileSpec
}

// Resolver looks up authoritative print areas in a variant catalog.
type Resolver struct {
	catalog VariantCatalog
}

// NewResolver wraps the supplied catalog. The catalog is consumed
// read-only and may be shared.
func NewResolver(c VariantCatalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve returns the print area for the variant/placement pair. A missing
// mapping is a typed miss wrapping domain.ErrNotFound: callers treat it as
// "no design can be placed here yet", not a fatal error.
func (r *Resolver) Resolve(variantID, placementKey string) (domain.PrintArea, error) {
	placements, ok := r.catalog.Variants[variantID]
	if !ok {
		return domain.PrintArea{}, fmt.Errorf("variant %s: %w", variantID, domain.ErrNotFound)
	}
	printFileID, ok := placements[placementKey]
	if !ok {
		return domain.PrintArea{}, fmt.Errorf("variant %s placement %s: %w", variantID, placementKey, domain.ErrNotFound)
	}
	spec, ok := r.catalog.PrintFiles[printFileID]
	if !ok || spec.Width <= 0 || spec.Height <= 0 {
		return domain.PrintArea{}, fmt.Errorf("print file %s: %w", printFileID, domain.ErrNotFound)
	}
	return domain.PrintArea{
		PlacementKey: placementKey,
		Width:        spec.Width,
		Height:       spec.Height,
		DPI:          spec.DPI,
	}, nil
}

// Placements lists the placement keys available on the variant, sorted.
func (r *Resolver) Placements(variantID string) []string {
	placements, ok := r.catalog.Variants[variantID]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(placements))
	for k := range placements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
