package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"printstudio/internal/canvas"
	"printstudio/internal/geometry"
)

type previewRect struct {
	DesignID string  `json:"design_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// PlacementPreview computes the render-space view of one placement for a
// client viewport: the scale factor, the scaled rects and whether the
// client should show the rotate-device hint. The math matches what an
// interactive canvas does, so server-side previews and the editor agree
// pixel for pixel.
func (a *App) PlacementPreview(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantID")
	placementKey := chi.URLParam(r, "placementKey")

	area, err := a.resolveArea(r.Context(), variantID, r.URL.Query().Get("product_id"), placementKey)
	if err != nil {
		a.placementError(w, err)
		return
	}

	q := r.URL.Query()
	renderW := queryFloat(q.Get("render_width"), float64(area.Width))
	renderH := queryFloat(q.Get("render_height"), float64(area.Height))

	surface := canvas.NewSurface(a.Store, area,
		geometry.Size{Width: renderW, Height: renderH},
		canvas.Config{BreakpointPx: a.MobileBreakpoint})
	defer surface.Detach()
	if vw := queryFloat(q.Get("viewport_width"), 0); vw > 0 {
		surface.SetViewport(vw, queryFloat(q.Get("viewport_height"), 0))
	}

	snapshot := surface.Snapshot()
	rects := make([]previewRect, 0, len(snapshot))
	for _, placed := range snapshot {
		rects = append(rects, previewRect{
			DesignID: placed.DesignID,
			X:        placed.Rect.X,
			Y:        placed.Rect.Y,
			Width:    placed.Rect.Width,
			Height:   placed.Rect.Height,
		})
	}

	a.json(w, http.StatusOK, map[string]any{
		"placement_key": placementKey,
		"scale":         surface.Scale(),
		"rotate_hint":   surface.RotateHint(),
		"rects":         rects,
	})
}

func queryFloat(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
