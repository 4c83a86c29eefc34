package handlers_test

import (
	"net/http"
	"testing"

	"printstudio/internal/domain"
)

type previewBody struct {
	PlacementKey string  `json:"placement_key"`
	Scale        float64 `json:"scale"`
	RotateHint   bool    `json:"rotate_hint"`
	Rects        []struct {
		DesignID string  `json:"design_id"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		Width    float64 `json:"width"`
		Height   float64 `json:"height"`
	} `json:"rects"`
}

func TestPlacementPreviewScalesRects(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "front", 1800, 2400, 150)
	if _, err := f.store.Upsert(domain.PlacementRect{
		DesignID: "d1", PlacementKey: "front",
		AreaWidth: 1800, AreaHeight: 2400,
		Width: 900, Height: 900, Top: 750, Left: 450,
		ConstrainToArea: true,
	}); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/v1/variants/v1/placements/front/preview?render_width=450&render_height=600", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got previewBody
	decodeBody(t, rec, &got)

	if got.Scale != 0.25 {
		t.Fatalf("scale = %v, want 0.25", got.Scale)
	}
	if got.RotateHint {
		t.Fatal("rotate hint should be off without a viewport")
	}
	if len(got.Rects) != 1 {
		t.Fatalf("rects = %d, want 1", len(got.Rects))
	}
	r := got.Rects[0]
	if r.X != 112.5 || r.Y != 187.5 || r.Width != 225 || r.Height != 225 {
		t.Fatalf("rect = %+v, want (112.5,187.5) 225x225", r)
	}
}

func TestPlacementPreviewMobileViewport(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "banner", 3000, 500, 150)

	rec := f.do(t, http.MethodGet,
		"/v1/variants/v1/placements/banner/preview?render_width=1500&render_height=250&viewport_width=375&viewport_height=667", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got previewBody
	decodeBody(t, rec, &got)

	// Below the breakpoint the scale follows the viewport width: 375/3000.
	if got.Scale != 0.125 {
		t.Fatalf("scale = %v, want 0.125", got.Scale)
	}
	// 6:1 print area against a portrait phone should suggest rotating.
	if !got.RotateHint {
		t.Fatal("rotate hint should fire for a wide area on a portrait viewport")
	}
}

func TestPlacementPreviewUnknownPlacement(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/v1/variants/v1/placements/front/preview", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPreviewLeavesNoStoreListeners(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "front", 900, 900, 150)

	for i := 0; i < 3; i++ {
		rec := f.do(t, http.MethodGet, "/v1/variants/v1/placements/front/preview", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	// Mutations after the previews must not panic or fire dead listeners.
	seedStoreRect(t, f, "d1")
	f.store.ClearPlacement("front")
}
