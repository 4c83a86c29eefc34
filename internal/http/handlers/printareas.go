package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"printstudio/internal/catalog"
	"printstudio/internal/domain"
	"printstudio/internal/middleware"
)

type printAreaItem struct {
	PlacementKey string  `json:"placement_key"`
	Label        string  `json:"label"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	DPI          int     `json:"dpi"`
	Ratio        float64 `json:"ratio"`
}

// VariantPrintAreas lists the print areas of one product variant. The
// local catalog mirror answers first; on a cold cache the provider is
// consulted when the caller supplies product_id. A provider outage is not
// an error: the client gets an empty list plus a warning and the
// positioning UI shows "no print areas available". Labels are rendered
// in the shopper's locale, and when GeoIP resolved a fulfillment region
// it rides along so the client can hint the provider.
func (a *App) VariantPrintAreas(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantID")
	areas, err := a.printAreasFor(r.Context(), variantID, r.URL.Query().Get("product_id"))
	if err != nil {
		if errors.Is(err, domain.ErrCatalogLookup) {
			a.Logger.Warn().Err(err).Str("variant_id", variantID).Msg("print areas unavailable")
			a.json(w, http.StatusOK, map[string]any{
				"items":   []printAreaItem{},
				"warning": "print areas unavailable",
			})
			return
		}
		a.error(w, http.StatusInternalServerError, "catalog lookup failed")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	items := make([]printAreaItem, 0, len(areas))
	for _, area := range areas {
		items = append(items, printAreaItem{
			PlacementKey: area.PlacementKey,
			Label:        catalog.LabelIn(locale, area.PlacementKey),
			Width:        area.Width,
			Height:       area.Height,
			DPI:          area.DPI,
			Ratio:        area.Ratio(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].PlacementKey < items[j].PlacementKey })
	resp := map[string]any{"items": items}
	if region := middleware.RegionFromContext(r.Context()); region != "" {
		resp["region"] = region
	}
	a.json(w, http.StatusOK, resp)
}

// printAreasFor resolves every print area of a variant, cache first.
func (a *App) printAreasFor(ctx context.Context, variantID, productID string) (map[string]domain.PrintArea, error) {
	if a.CatalogRepo != nil {
		areas, err := a.CatalogRepo.VariantPrintFiles(ctx, variantID)
		if err != nil {
			a.Logger.Warn().Err(err).Str("variant_id", variantID).Msg("catalog mirror read failed")
		} else if len(areas) > 0 {
			return areas, nil
		}
	}
	if a.Provider == nil || productID == "" {
		return map[string]domain.PrintArea{}, nil
	}

	vc, err := a.Provider.ProductPrintFiles(ctx, productID)
	if err != nil {
		return nil, err
	}
	a.mirrorCatalog(ctx, vc)

	resolver := catalog.NewResolver(vc)
	areas := make(map[string]domain.PrintArea)
	for _, key := range resolver.Placements(variantID) {
		area, err := resolver.Resolve(variantID, key)
		if err != nil {
			continue
		}
		areas[key] = area
	}
	return areas, nil
}

// resolveArea resolves one placement's print area for a variant.
func (a *App) resolveArea(ctx context.Context, variantID, productID, placementKey string) (domain.PrintArea, error) {
	areas, err := a.printAreasFor(ctx, variantID, productID)
	if err != nil {
		return domain.PrintArea{}, err
	}
	area, ok := areas[placementKey]
	if !ok {
		return domain.PrintArea{}, fmt.Errorf("variant %s placement %s: %w", variantID, placementKey, domain.ErrNotFound)
	}
	return area, nil
}

// mirrorCatalog writes a freshly fetched provider catalog into the local
// mirror. Failures only log; the fetched copy is still served.
func (a *App) mirrorCatalog(ctx context.Context, vc catalog.VariantCatalog) {
	if a.CatalogRepo == nil {
		return
	}
	for id, spec := range vc.PrintFiles {
		if err := a.CatalogRepo.UpsertPrintFile(ctx, id, spec.Width, spec.Height, spec.DPI); err != nil {
			a.Logger.Warn().Err(err).Str("print_file_id", id).Msg("catalog mirror upsert failed")
			return
		}
	}
	for variantID, placements := range vc.Variants {
		for key, printFileID := range placements {
			if err := a.CatalogRepo.UpsertVariantPrintFile(ctx, variantID, key, printFileID); err != nil {
				a.Logger.Warn().Err(err).Str("variant_id", variantID).Msg("catalog mirror upsert failed")
				return
			}
		}
	}
}
