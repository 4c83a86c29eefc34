package compliance

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"printstudio/internal/domain"
	"printstudio/internal/geometry"
	"printstudio/internal/placement"
)

// AssetResolver maps a design ID to a loadable asset reference (URL).
type AssetResolver interface {
	AssetURL(ctx context.Context, designID string) (string, error)
}

// AssetResolverFunc adapts a function to the AssetResolver interface.
type AssetResolverFunc func(ctx context.Context, designID string) (string, error)

func (f AssetResolverFunc) AssetURL(ctx context.Context, designID string) (string, error) {
	return f(ctx, designID)
}

// Scope selects which placement rects a batch covers. The zero value
// means every placement.
type Scope struct {
	PlacementKey string
}

// Report groups batch results for the UI: critical entries fail the hard
// tolerance, informational ones pass with a measurable deviation, and
// unverified ones could not be checked because their asset did not load.
type Report struct {
	Critical      []domain.ValidationResult
	Informational []domain.ValidationResult
	Unverified    []domain.ValidationResult
}

// FixSummary reports what an auto-fix pass did.
type FixSummary struct {
	Fixed   int
	Skipped int
}

// Orchestrator runs the validator across placement rects and applies
// corrections back into the store.
type Orchestrator struct {
	store     *placement.Store
	validator *Validator
	assets    AssetResolver
	logger    zerolog.Logger
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(store *placement.Store, validator *Validator, assets AssetResolver, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{store: store, validator: validator, assets: assets, logger: logger}
}

// Scoped returns the rects the scope covers, in stable order.
func (o *Orchestrator) Scoped(scope Scope) []domain.PlacementRect {
	if scope.PlacementKey == "" {
		return o.store.ListAll()
	}
	return o.store.ListByPlacement(scope.PlacementKey)
}

// RunBatch validates every rect concurrently and returns one result per
// rect, in input order. A design whose asset fails to load yields an
// entry with LoadError set; the batch itself never fails, so the caller
// always gets full results for the other designs. Results are only
// returned once every validation has settled.
func (o *Orchestrator) RunBatch(ctx context.Context, rects []domain.PlacementRect, tolerancePercent float64) []domain.ValidationResult {
	results := make([]domain.ValidationResult, len(rects))
	var wg sync.WaitGroup
	for i, rect := range rects {
		wg.Add(1)
		go func(i int, rect domain.PlacementRect) {
			defer wg.Done()
			results[i] = o.validateOne(ctx, rect, tolerancePercent)
		}(i, rect)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) validateOne(ctx context.Context, rect domain.PlacementRect, tolerancePercent float64) domain.ValidationResult {
	failed := func(err error) domain.ValidationResult {
		o.logger.Warn().Err(err).
			Str("design_id", rect.DesignID).
			Str("placement", rect.PlacementKey).
			Msg("design could not be verified")
		return domain.ValidationResult{
			DesignID:      rect.DesignID,
			PlacementKey:  rect.PlacementKey,
			DeclaredRatio: rect.Ratio(),
			LoadError:     err.Error(),
		}
	}

	assetRef, err := o.assets.AssetURL(ctx, rect.DesignID)
	if err != nil {
		return failed(err)
	}
	result, err := o.validator.Validate(ctx, assetRef, rect, tolerancePercent)
	if err != nil {
		return failed(err)
	}
	return result
}

// Summarize aggregates batch results into the report the UI renders.
func Summarize(results []domain.ValidationResult) Report {
	var report Report
	for _, r := range results {
		switch {
		case !r.Verified():
			report.Unverified = append(report.Unverified, r)
		case !r.IsValid:
			report.Critical = append(report.Critical, r)
		case r.PercentDifference > 0:
			report.Informational = append(report.Informational, r)
		}
	}
	return report
}

// AutoFix revalidates the scope and writes each correction back into the
// store. Position is kept unless the corrected size no longer fits at the
// old offset, in which case the rect is re-centered. Designs already
// within tolerance (and designs that could not be verified) are counted
// as skipped, never rewritten, so a second pass over the same scope fixes
// nothing.
func (o *Orchestrator) AutoFix(ctx context.Context, scope Scope, tolerancePercent float64) FixSummary {
	rects := o.Scoped(scope)
	results := o.RunBatch(ctx, rects, tolerancePercent)

	var summary FixSummary
	for i, result := range results {
		if !result.Verified() || result.IsValid || result.CorrectedRect == nil {
			summary.Skipped++
			continue
		}
		rect := rects[i]
		patch := domain.RectPatch{
			Width:  &result.CorrectedRect.Width,
			Height: &result.CorrectedRect.Height,
		}
		if rect.ConstrainToArea && overflowsAt(rect, *result.CorrectedRect) {
			offset, err := geometry.AnchoredPosition(geometry.AnchorCenter,
				geometry.Size{Width: result.CorrectedRect.Width, Height: result.CorrectedRect.Height},
				geometry.Size{Width: rect.AreaWidth, Height: rect.AreaHeight})
			if err == nil {
				patch.Top = &offset.Top
				patch.Left = &offset.Left
			}
		}
		if _, err := o.store.Update(rect.DesignID, rect.PlacementKey, patch); err != nil {
			o.logger.Error().Err(err).
				Str("design_id", rect.DesignID).
				Str("placement", rect.PlacementKey).
				Msg("auto-fix write rejected")
			summary.Skipped++
			continue
		}
		o.logger.Info().
			Str("design_id", rect.DesignID).
			Str("placement", rect.PlacementKey).
			Float64("percent_difference", result.PercentDifference).
			Msg("auto-fixed placement rect")
		summary.Fixed++
	}
	return summary
}

func overflowsAt(rect domain.PlacementRect, size domain.RectSize) bool {
	return rect.Left+size.Width > rect.AreaWidth || rect.Top+size.Height > rect.AreaHeight
}
