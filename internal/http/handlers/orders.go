package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"

	"printstudio/internal/domain"
	"printstudio/pkg/zip"
)

// OrderPayload serializes the current placements into the item list the
// order-submission flow sends to the provider. Field names and units are a
// wire contract; see domain.OrderItem.
func (a *App) OrderPayload(w http.ResponseWriter, r *http.Request) {
	items, err := a.orderItems(r)
	if err != nil {
		a.placementError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// OrderBundle streams a zip of the submission payload plus every locally
// stored design file it references. Externally hosted designs appear in
// the payload only.
func (a *App) OrderBundle(w http.ResponseWriter, r *http.Request) {
	items, err := a.orderItems(r)
	if err != nil {
		a.placementError(w, err)
		return
	}

	payload, err := json.MarshalIndent(map[string]any{"items": items}, "", "  ")
	if err != nil {
		a.error(w, http.StatusInternalServerError, "encode payload failed")
		return
	}
	entries := []zip.Entry{{Name: "payload.json", Data: payload}}

	seen := make(map[string]struct{})
	for _, rect := range a.Store.ListAll() {
		if _, dup := seen[rect.DesignID]; dup {
			continue
		}
		seen[rect.DesignID] = struct{}{}
		entry, ok := a.bundleFile(r, rect.DesignID)
		if ok {
			entries = append(entries, entry)
		}
	}

	data, err := zip.Archive(entries)
	if err != nil {
		a.Logger.Error().Err(err).Msg("order bundle archive failed")
		a.error(w, http.StatusInternalServerError, "bundle failed")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="order-bundle.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *App) orderItems(r *http.Request) ([]domain.OrderItem, error) {
	var rects []domain.PlacementRect
	if key := r.URL.Query().Get("placement_key"); key != "" {
		rects = a.Store.ListByPlacement(key)
	} else {
		rects = a.Store.ListAll()
	}

	items := make([]domain.OrderItem, 0, len(rects))
	for _, rect := range rects {
		assetURL, err := a.AssetURL(r.Context(), rect.DesignID)
		if err != nil {
			return nil, fmt.Errorf("order item for %s/%s: %w", rect.DesignID, rect.PlacementKey, err)
		}
		items = append(items, domain.OrderItemFor(rect, assetURL))
	}
	return items, nil
}

// bundleFile loads one design's bytes from local storage, if it has any.
func (a *App) bundleFile(r *http.Request, designID string) (zip.Entry, bool) {
	if a.Assets == nil || a.Files == nil {
		return zip.Entry{}, false
	}
	asset, err := a.Assets.GetByID(r.Context(), designID)
	if err != nil || asset == nil || asset.StorageKey == "" {
		return zip.Entry{}, false
	}
	data, err := a.Files.Read(r.Context(), asset.StorageKey)
	if err != nil {
		a.Logger.Warn().Err(err).Str("design_id", designID).Msg("bundle file read failed")
		return zip.Entry{}, false
	}
	return zip.Entry{Name: "designs/" + path.Base(asset.StorageKey), Data: data}, true
}
