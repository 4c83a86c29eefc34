package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"printstudio/internal/domain"
	"printstudio/internal/geometry"
)

// defaultFitFraction sizes a freshly dropped design to three quarters of
// its print area's limiting side.
const defaultFitFraction = 0.75

type rectPayload struct {
	DesignID        string  `json:"design_id"`
	PlacementKey    string  `json:"placement_key"`
	AreaWidth       float64 `json:"area_width"`
	AreaHeight      float64 `json:"area_height"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Top             float64 `json:"top"`
	Left            float64 `json:"left"`
	ConstrainToArea bool    `json:"constrain_to_area"`
}

func toRectPayload(r domain.PlacementRect) rectPayload {
	return rectPayload{
		DesignID:        r.DesignID,
		PlacementKey:    r.PlacementKey,
		AreaWidth:       r.AreaWidth,
		AreaHeight:      r.AreaHeight,
		Width:           r.Width,
		Height:          r.Height,
		Top:             r.Top,
		Left:            r.Left,
		ConstrainToArea: r.ConstrainToArea,
	}
}

type putPlacementRequest struct {
	VariantID       string   `json:"variant_id"`
	ProductID       string   `json:"product_id"`
	Width           *float64 `json:"width"`
	Height          *float64 `json:"height"`
	Top             *float64 `json:"top"`
	Left            *float64 `json:"left"`
	Anchor          string   `json:"anchor"`
	ConstrainToArea *bool    `json:"constrain_to_area"`
	Replace         bool     `json:"replace"`
}

// PutPlacement places a design into a print area. Size defaults to a fit
// of the asset's intrinsic ratio within the area, position defaults to the
// requested anchor (center when omitted). With replace set, any design
// already on the placement is removed first, giving one-design-per-
// placement semantics for storefronts that want them.
func (a *App) PutPlacement(w http.ResponseWriter, r *http.Request) {
	designID := chi.URLParam(r, "designID")
	placementKey := chi.URLParam(r, "placementKey")

	var req putPlacementRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VariantID == "" {
		a.error(w, http.StatusBadRequest, "variant_id is required")
		return
	}

	area, err := a.resolveArea(r.Context(), req.VariantID, req.ProductID, placementKey)
	if err != nil {
		a.placementError(w, err)
		return
	}
	areaSize := geometry.Size{Width: float64(area.Width), Height: float64(area.Height)}

	rect := domain.PlacementRect{
		DesignID:        designID,
		PlacementKey:    placementKey,
		AreaWidth:       areaSize.Width,
		AreaHeight:      areaSize.Height,
		ConstrainToArea: true,
	}
	if req.ConstrainToArea != nil {
		rect.ConstrainToArea = *req.ConstrainToArea
	}

	if req.Width != nil && req.Height != nil {
		rect.Width = *req.Width
		rect.Height = *req.Height
	} else {
		size, err := a.defaultSize(r, designID, areaSize)
		if err != nil {
			a.placementError(w, err)
			return
		}
		rect.Width = size.Width
		rect.Height = size.Height
	}

	if req.Top != nil && req.Left != nil {
		rect.Top = *req.Top
		rect.Left = *req.Left
	} else {
		anchor := geometry.Anchor(req.Anchor)
		if anchor == "" {
			anchor = geometry.AnchorCenter
		}
		offset, err := geometry.AnchoredPosition(anchor, geometry.Size{Width: rect.Width, Height: rect.Height}, areaSize)
		if err != nil {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		rect.Top = offset.Top
		rect.Left = offset.Left
	}

	if req.Replace {
		a.Store.ClearPlacement(placementKey)
	}
	stored, err := a.Store.Upsert(rect)
	if err != nil {
		a.placementError(w, err)
		return
	}
	a.json(w, http.StatusOK, toRectPayload(stored))
}

// defaultSize fits the asset's intrinsic ratio into the area. When the
// asset cannot be probed the placement still succeeds with a square fit,
// and validation will flag the mismatch later.
func (a *App) defaultSize(r *http.Request, designID string, areaSize geometry.Size) (geometry.Size, error) {
	ratio := 1.0
	if assetURL, err := a.AssetURL(r.Context(), designID); err == nil && a.Prober != nil {
		if width, height, err := a.Prober.IntrinsicSize(r.Context(), assetURL); err == nil && height > 0 {
			ratio = float64(width) / float64(height)
		} else if err != nil {
			a.Logger.Warn().Err(err).Str("design_id", designID).Msg("intrinsic size unavailable, using square fit")
		}
	}
	return geometry.FitWithinArea(ratio, areaSize, defaultFitFraction)
}

type patchPlacementRequest struct {
	Width           *float64 `json:"width"`
	Height          *float64 `json:"height"`
	Top             *float64 `json:"top"`
	Left            *float64 `json:"left"`
	Anchor          string   `json:"anchor"`
	ConstrainToArea *bool    `json:"constrain_to_area"`
}

// PatchPlacement merge-patches a stored rect. An anchor, when given,
// recomputes top/left for the post-patch size and wins over explicit
// offsets.
func (a *App) PatchPlacement(w http.ResponseWriter, r *http.Request) {
	designID := chi.URLParam(r, "designID")
	placementKey := chi.URLParam(r, "placementKey")

	var req patchPlacementRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := domain.RectPatch{
		Width:           req.Width,
		Height:          req.Height,
		Top:             req.Top,
		Left:            req.Left,
		ConstrainToArea: req.ConstrainToArea,
	}
	if req.Anchor != "" {
		current, ok := a.Store.Get(designID, placementKey)
		if !ok {
			a.error(w, http.StatusNotFound, "placement not found")
			return
		}
		next := patch.Apply(current)
		offset, err := geometry.AnchoredPosition(geometry.Anchor(req.Anchor),
			geometry.Size{Width: next.Width, Height: next.Height},
			geometry.Size{Width: next.AreaWidth, Height: next.AreaHeight})
		if err != nil {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.Top = &offset.Top
		patch.Left = &offset.Left
	}
	if patch.IsZero() {
		a.error(w, http.StatusBadRequest, "empty patch")
		return
	}

	stored, err := a.Store.Update(designID, placementKey, patch)
	if err != nil {
		a.placementError(w, err)
		return
	}
	a.json(w, http.StatusOK, toRectPayload(stored))
}

// DeletePlacement removes one design from one placement.
func (a *App) DeletePlacement(w http.ResponseWriter, r *http.Request) {
	designID := chi.URLParam(r, "designID")
	placementKey := chi.URLParam(r, "placementKey")
	if !a.Store.Remove(designID, placementKey) {
		a.error(w, http.StatusNotFound, "placement not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPlacements returns the current rects, optionally filtered to one
// placement.
func (a *App) ListPlacements(w http.ResponseWriter, r *http.Request) {
	var rects []domain.PlacementRect
	if key := r.URL.Query().Get("placement_key"); key != "" {
		rects = a.Store.ListByPlacement(key)
	} else {
		rects = a.Store.ListAll()
	}
	items := make([]rectPayload, 0, len(rects))
	for _, rect := range rects {
		items = append(items, toRectPayload(rect))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// placementError maps domain errors onto HTTP statuses.
func (a *App) placementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvariantViolation), errors.Is(err, domain.ErrDegenerateGeometry):
		a.error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrAssetLoad):
		a.error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrCatalogLookup):
		a.error(w, http.StatusBadGateway, "catalog lookup failed")
	default:
		a.Logger.Error().Err(err).Msg("placement handler failed")
		a.error(w, http.StatusInternalServerError, "internal error")
	}
}
