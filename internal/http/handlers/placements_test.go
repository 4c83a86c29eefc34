package handlers_test

import (
	"net/http"
	"testing"
)

type rectBody struct {
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

func TestPutPlacementDefaultsToCenteredFit(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "front", 1800, 2400, 150)
	f.seedAsset("d1", "http://cdn.local/static/designs/d1.png", 1200, 1200)

	rec := f.do(t, http.MethodPut, "/v1/designs/d1/placements/front", map[string]any{
		"variant_id": "v1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got rectBody
	decodeBody(t, rec, &got)

	// Square design in a 1800x2400 area at 75%: 1350x1350, centered.
	if got.Width != 1350 || got.Height != 1350 {
		t.Fatalf("size = %vx%v, want 1350x1350", got.Width, got.Height)
	}
	if got.Left != 225 || got.Top != 525 {
		t.Fatalf("offset = (%v,%v), want (225,525)", got.Left, got.Top)
	}
	if !got.ConstrainToArea {
		t.Fatal("ConstrainToArea should default to true")
	}
	if got.AreaWidth != 1800 || got.AreaHeight != 2400 {
		t.Fatalf("area snapshot = %vx%v, want 1800x2400", got.AreaWidth, got.AreaHeight)
	}
}

func TestPutPlacementAnchorsAndReplaces(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "front", 1800, 2400, 150)
	f.seedAsset("d1", "http://cdn.local/a.png", 200, 200)
	f.seedAsset("d2", "http://cdn.local/b.png", 200, 200)

	rec := f.do(t, http.MethodPut, "/v1/designs/d1/placements/front", map[string]any{
		"variant_id": "v1", "width": 200.0, "height": 200.0, "anchor": "bottom-right",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got rectBody
	decodeBody(t, rec, &got)
	if got.Left != 1600 || got.Top != 2200 {
		t.Fatalf("bottom-right offset = (%v,%v), want (1600,2200)", got.Left, got.Top)
	}

	rec = f.do(t, http.MethodPut, "/v1/designs/d2/placements/front", map[string]any{
		"variant_id": "v1", "width": 200.0, "height": 200.0, "replace": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("replace status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, ok := f.store.Get("d1", "front"); ok {
		t.Fatal("replace should have removed the earlier design")
	}
	if _, ok := f.store.Get("d2", "front"); !ok {
		t.Fatal("replacement design missing from store")
	}
}

func TestPutPlacementUnknownPlacement(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "front", 1800, 2400, 150)

	rec := f.do(t, http.MethodPut, "/v1/designs/d1/placements/sleeve_left", map[string]any{
		"variant_id": "v1", "width": 200.0, "height": 200.0,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPatchPlacementClampsToArea(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "front", 900, 1200, 150)
	f.seedAsset("d1", "http://cdn.local/a.png", 100, 100)

	rec := f.do(t, http.MethodPut, "/v1/designs/d1/placements/front", map[string]any{
		"variant_id": "v1", "width": 300.0, "height": 300.0, "top": 0.0, "left": 0.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPatch, "/v1/designs/d1/placements/front", map[string]any{
		"left": 1500.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got rectBody
	decodeBody(t, rec, &got)
	if got.Left != 600 {
		t.Fatalf("clamped left = %v, want 600", got.Left)
	}
}

func TestDeletePlacement(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "front", 900, 1200, 150)
	f.seedAsset("d1", "http://cdn.local/a.png", 100, 100)

	if rec := f.do(t, http.MethodDelete, "/v1/designs/d1/placements/front", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing status = %d, want 404", rec.Code)
	}

	f.do(t, http.MethodPut, "/v1/designs/d1/placements/front", map[string]any{
		"variant_id": "v1", "width": 200.0, "height": 200.0,
	})
	if rec := f.do(t, http.MethodDelete, "/v1/designs/d1/placements/front", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if f.store.Len() != 0 {
		t.Fatalf("store.Len() = %d after delete, want 0", f.store.Len())
	}
}

func TestListPlacementsFiltersByKey(t *testing.T) {
	f := newFixture(t)
	f.catalog.seedArea("v1", "front", 900, 1200, 150)
	f.catalog.seedArea("v1", "back", 900, 1200, 150)
	f.seedAsset("d1", "http://cdn.local/a.png", 100, 100)

	for _, key := range []string{"front", "back"} {
		rec := f.do(t, http.MethodPut, "/v1/designs/d1/placements/"+key, map[string]any{
			"variant_id": "v1", "width": 200.0, "height": 200.0,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("put %s status = %d", key, rec.Code)
		}
	}

	rec := f.do(t, http.MethodGet, "/v1/placements?placement_key=front", nil)
	var got struct {
		Items []rectBody `json:"items"`
	}
	decodeBody(t, rec, &got)
	if len(got.Items) != 1 || got.Items[0].PlacementKey != "front" {
		t.Fatalf("filtered items = %+v, want one front rect", got.Items)
	}

	rec = f.do(t, http.MethodGet, "/v1/placements", nil)
	decodeBody(t, rec, &got)
	if len(got.Items) != 2 {
		t.Fatalf("unfiltered items = %d, want 2", len(got.Items))
	}
}
