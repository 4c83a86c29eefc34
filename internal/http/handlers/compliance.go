package handlers

import (
	"net/http"

	"printstudio/internal/compliance"
	"printstudio/internal/domain"
)

type complianceRequest struct {
	PlacementKey     string   `json:"placement_key"`
	TolerancePercent *float64 `json:"tolerance_percent"`
}

type resultPayload struct {
	DesignID          string   `json:"design_id"`
	PlacementKey      string   `json:"placement_key"`
	ActualRatio       float64  `json:"actual_ratio,omitempty"`
	DeclaredRatio     float64  `json:"declared_ratio"`
	PercentDifference float64  `json:"percent_difference"`
	IsValid           bool     `json:"is_valid"`
	Corrected         *sizeOut `json:"corrected,omitempty"`
	LoadError         string   `json:"load_error,omitempty"`
}

type sizeOut struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func toResultPayload(r domain.ValidationResult) resultPayload {
	out := resultPayload{
		DesignID:          r.DesignID,
		PlacementKey:      r.PlacementKey,
		ActualRatio:       r.ActualRatio,
		DeclaredRatio:     r.DeclaredRatio,
		PercentDifference: r.PercentDifference,
		IsValid:           r.IsValid,
		LoadError:         r.LoadError,
	}
	if r.CorrectedRect != nil {
		out.Corrected = &sizeOut{Width: r.CorrectedRect.Width, Height: r.CorrectedRect.Height}
	}
	return out
}

func toResultPayloads(results []domain.ValidationResult) []resultPayload {
	out := make([]resultPayload, 0, len(results))
	for _, r := range results {
		out = append(out, toResultPayload(r))
	}
	return out
}

func (a *App) complianceScope(r *http.Request) (compliance.Scope, float64, bool) {
	var req complianceRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := a.decode(r, &req); err != nil {
			return compliance.Scope{}, 0, false
		}
	}
	tolerance := a.TolerancePercent
	if req.TolerancePercent != nil && *req.TolerancePercent > 0 {
		tolerance = *req.TolerancePercent
	}
	return compliance.Scope{PlacementKey: req.PlacementKey}, tolerance, true
}

// ValidateCompliance validates the scoped placements against their
// assets' intrinsic ratios and reports critical, informational and
// unverified entries. A design whose asset fails to load appears as
// unverified; it never blocks the rest of the batch.
func (a *App) ValidateCompliance(w http.ResponseWriter, r *http.Request) {
	scope, tolerance, ok := a.complianceScope(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rects := a.Orchestrator.Scoped(scope)
	results := a.Orchestrator.RunBatch(r.Context(), rects, tolerance)
	report := compliance.Summarize(results)

	a.json(w, http.StatusOK, map[string]any{
		"tolerance_percent": tolerance,
		"critical":          toResultPayloads(report.Critical),
		"informational":     toResultPayloads(report.Informational),
		"unverified":        toResultPayloads(report.Unverified),
	})
}

// AutoFixCompliance rewrites every out-of-tolerance rect in scope to its
// corrected size. Running it again over the same scope fixes nothing.
func (a *App) AutoFixCompliance(w http.ResponseWriter, r *http.Request) {
	scope, tolerance, ok := a.complianceScope(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary := a.Orchestrator.AutoFix(r.Context(), scope, tolerance)
	a.json(w, http.StatusOK, map[string]any{
		"fixed":   summary.Fixed,
		"skipped": summary.Skipped,
	})
}
