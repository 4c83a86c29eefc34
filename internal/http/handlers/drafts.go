package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"printstudio/internal/sqlinline"
)

// SaveDraft persists the current placement rects under a draft ID so the
// shopper can come back to the design later.
func (a *App) SaveDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")
	if _, err := uuid.Parse(draftID); err != nil {
		a.error(w, http.StatusBadRequest, "draft id must be a uuid")
		return
	}

	rects := a.Store.ListAll()
	if err := a.Designs.SavePlacements(r.Context(), draftID, rects); err != nil {
		a.Logger.Error().Err(err).Str("draft_id", draftID).Msg("save draft failed")
		a.error(w, http.StatusInternalServerError, "save draft failed")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"draft_id": draftID, "saved": len(rects)})
}

// GetDraft returns a draft's stored rects without touching the live store.
func (a *App) GetDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")
	rects, err := a.Designs.ListPlacements(r.Context(), draftID)
	if err != nil {
		a.Logger.Error().Err(err).Str("draft_id", draftID).Msg("load draft failed")
		a.error(w, http.StatusInternalServerError, "load draft failed")
		return
	}
	items := make([]rectPayload, 0, len(rects))
	for _, rect := range rects {
		items = append(items, toRectPayload(rect))
	}
	a.json(w, http.StatusOK, map[string]any{"draft_id": draftID, "items": items})
}

// LoadDraft hydrates the live store from a draft, replacing nothing that
// is already placed; rects with the same design/placement pair are
// overwritten by the stored copy.
func (a *App) LoadDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")
	rects, err := a.Designs.ListPlacements(r.Context(), draftID)
	if err != nil {
		a.Logger.Error().Err(err).Str("draft_id", draftID).Msg("load draft failed")
		a.error(w, http.StatusInternalServerError, "load draft failed")
		return
	}
	loaded := 0
	for _, rect := range rects {
		if _, err := a.Store.Upsert(rect); err != nil {
			a.Logger.Warn().Err(err).
				Str("design_id", rect.DesignID).
				Str("placement", rect.PlacementKey).
				Msg("stored rect rejected on load")
			continue
		}
		loaded++
	}
	a.json(w, http.StatusOK, map[string]any{"draft_id": draftID, "loaded": loaded})
}

// DeleteDraft removes a draft's stored rects.
func (a *App) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")
	if err := a.Designs.DeletePlacements(r.Context(), draftID); err != nil {
		a.Logger.Error().Err(err).Str("draft_id", draftID).Msg("delete draft failed")
		a.error(w, http.StatusInternalServerError, "delete draft failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type enqueueValidationRequest struct {
	TolerancePercent *float64 `json:"tolerance_percent"`
}

// EnqueueDraftValidation queues a background compliance pass over a saved
// draft. The worker picks the job up, validates every stored rect and
// records the report on the job row.
func (a *App) EnqueueDraftValidation(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")
	if _, err := uuid.Parse(draftID); err != nil {
		a.error(w, http.StatusBadRequest, "draft id must be a uuid")
		return
	}

	var req enqueueValidationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := a.decode(r, &req); err != nil {
			a.error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	tolerance := a.TolerancePercent
	if req.TolerancePercent != nil && *req.TolerancePercent > 0 {
		tolerance = *req.TolerancePercent
	}

	jobID := uuid.NewString()
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QEnqueueValidationJob, jobID, draftID, tolerance); err != nil {
		a.Logger.Error().Err(err).Str("draft_id", draftID).Msg("enqueue validation failed")
		a.error(w, http.StatusInternalServerError, "enqueue failed")
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{"job_id": jobID, "draft_id": draftID})
}
