package handlers_test

import (
	"net/http"
	"testing"

	"printstudio/internal/domain"
)

type complianceBody struct {
	TolerancePercent float64 `json:"tolerance_percent"`
	Critical         []struct {
		DesignID          string  `json:"design_id"`
		PercentDifference float64 `json:"percent_difference"`
		Corrected         *struct {
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		} `json:"corrected"`
	} `json:"critical"`
	Informational []struct {
		DesignID string `json:"design_id"`
	} `json:"informational"`
	Unverified []struct {
		DesignID  string `json:"design_id"`
		LoadError string `json:"load_error"`
	} `json:"unverified"`
}

func seedComplianceFixture(t *testing.T, f *fixture) {
	t.Helper()
	// d1: declared square, asset 4:1. Critical at any sane tolerance.
	f.seedAsset("d1", "http://cdn.local/wide.png", 400, 100)
	// d2: declared square, asset 102x100. 2% off, informational at 5%.
	f.seedAsset("d2", "http://cdn.local/near.png", 102, 100)
	// d3 has no registered asset, so its URL cannot resolve.

	for _, rect := range []domain.PlacementRect{
		{DesignID: "d1", PlacementKey: "front", AreaWidth: 900, AreaHeight: 900, Width: 300, Height: 300, ConstrainToArea: true},
		{DesignID: "d2", PlacementKey: "front", AreaWidth: 900, AreaHeight: 900, Width: 300, Height: 300, ConstrainToArea: true},
		{DesignID: "d3", PlacementKey: "front", AreaWidth: 900, AreaHeight: 900, Width: 300, Height: 300, ConstrainToArea: true},
	} {
		if _, err := f.store.Upsert(rect); err != nil {
			t.Fatalf("Upsert(%s) unexpected error: %v", rect.DesignID, err)
		}
	}
}

func TestValidateComplianceReport(t *testing.T) {
	f := newFixture(t)
	seedComplianceFixture(t, f)

	rec := f.do(t, http.MethodPost, "/v1/compliance/validate", map[string]any{
		"placement_key": "front", "tolerance_percent": 5.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got complianceBody
	decodeBody(t, rec, &got)

	if got.TolerancePercent != 5 {
		t.Fatalf("tolerance = %v, want 5", got.TolerancePercent)
	}
	if len(got.Critical) != 1 || got.Critical[0].DesignID != "d1" {
		t.Fatalf("critical = %+v, want only d1", got.Critical)
	}
	if got.Critical[0].PercentDifference != 300 {
		t.Fatalf("d1 percent difference = %v, want 300", got.Critical[0].PercentDifference)
	}
	if got.Critical[0].Corrected == nil {
		t.Fatal("d1 should carry a corrected size")
	}
	// Footprint 90000 at ratio 4: 600x150.
	if got.Critical[0].Corrected.Width != 600 || got.Critical[0].Corrected.Height != 150 {
		t.Fatalf("corrected = %+v, want 600x150", got.Critical[0].Corrected)
	}
	if len(got.Informational) != 1 || got.Informational[0].DesignID != "d2" {
		t.Fatalf("informational = %+v, want only d2", got.Informational)
	}
	if len(got.Unverified) != 1 || got.Unverified[0].DesignID != "d3" {
		t.Fatalf("unverified = %+v, want only d3", got.Unverified)
	}
	if got.Unverified[0].LoadError == "" {
		t.Fatal("unverified entry should carry a load error")
	}
}

func TestAutoFixComplianceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	seedComplianceFixture(t, f)

	rec := f.do(t, http.MethodPost, "/v1/compliance/autofix", map[string]any{
		"placement_key": "front", "tolerance_percent": 5.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Fixed   int `json:"fixed"`
		Skipped int `json:"skipped"`
	}
	decodeBody(t, rec, &got)
	if got.Fixed != 1 || got.Skipped != 2 {
		t.Fatalf("first pass = %+v, want fixed 1 skipped 2", got)
	}

	fixed, ok := f.store.Get("d1", "front")
	if !ok {
		t.Fatal("fixed rect missing")
	}
	if fixed.Width != 600 || fixed.Height != 150 {
		t.Fatalf("fixed size = %vx%v, want 600x150", fixed.Width, fixed.Height)
	}

	rec = f.do(t, http.MethodPost, "/v1/compliance/autofix", map[string]any{
		"placement_key": "front", "tolerance_percent": 5.0,
	})
	decodeBody(t, rec, &got)
	if got.Fixed != 0 || got.Skipped != 3 {
		t.Fatalf("second pass = %+v, want fixed 0 skipped 3", got)
	}
}
