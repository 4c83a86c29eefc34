// Package handlers exposes the placement engine over HTTP. Handlers stay
// thin: geometry, clamping and validation live in their own packages, and
// persistence goes through the domain repositories.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"printstudio/internal/compliance"
	"printstudio/internal/domain"
	"printstudio/internal/infra"
	"printstudio/internal/placement"
	"printstudio/internal/providers/fulfillment"
	"printstudio/internal/storage"
)

// SizeProber resolves an asset reference to intrinsic pixel dimensions.
type SizeProber interface {
	IntrinsicSize(ctx context.Context, assetRef string) (int, int, error)
}

// App is the handler container. Every route is a method on it.
type App struct {
	Logger       zerolog.Logger
	SQL          infra.SQLExecutor
	Store        *placement.Store
	Assets       domain.AssetRepository
	Designs      domain.DesignRepository
	CatalogRepo  domain.CatalogRepository
	Provider     *fulfillment.Client
	Prober       SizeProber
	Orchestrator *compliance.Orchestrator
	Files        *storage.FileStore

	StorageBaseURL   string
	TolerancePercent float64
	MobileBreakpoint float64
}

// AssetURL maps a design ID to a loadable asset URL. Designs registered
// through the asset endpoints resolve via their stored metadata; a design
// ID that is itself an absolute URL is accepted as-is so external assets
// can be placed without registration.
func (a *App) AssetURL(ctx context.Context, designID string) (string, error) {
	if a.Assets != nil {
		asset, err := a.Assets.GetByID(ctx, designID)
		if err == nil && asset != nil && asset.URL != "" {
			return asset.URL, nil
		}
	}
	if strings.HasPrefix(designID, "http://") || strings.HasPrefix(designID, "https://") {
		return designID, nil
	}
	return "", fmt.Errorf("design %s: %w", designID, domain.ErrNotFound)
}

func (a *App) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Logger.Error().Err(err).Msg("encode response failed")
	}
}

func (a *App) error(w http.ResponseWriter, status int, msg string) {
	a.json(w, status, map[string]string{"error": msg})
}

func (a *App) decode(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
