// Package compliance checks placement rects against the aspect ratio of
// the underlying artwork and can rewrite out-of-tolerance rects to the
// nearest compliant size. The fulfillment provider rejects print files
// whose declared ratio deviates from the image by more than half a
// percent, so this gate runs before every order submission.
package compliance

import (
	"context"
	"fmt"
	"math"

	"printstudio/internal/domain"
	"printstudio/internal/geometry"
)

// DefaultTolerancePercent is the provider's hard acceptance band. Looser
// values are only for informational warnings, never the pass/fail gate.
const DefaultTolerancePercent = 0.5

// DimensionProber resolves a design reference to the intrinsic pixel
// dimensions of its image. Implementations live in internal/assets.
type DimensionProber interface {
	IntrinsicSize(ctx context.Context, assetRef string) (width, height int, err error)
}

// Validator compares declared rects against intrinsic image ratios.
type Validator struct {
	probe DimensionProber
}

// NewValidator returns a validator backed by the given prober.
func NewValidator(probe DimensionProber) *Validator {
	return &Validator{probe: probe}
}

// Validate loads the asset's intrinsic dimensions and compares its ratio
// to the rect's declared ratio. When the deviation exceeds the tolerance,
// the result carries a corrected width/height that matches the intrinsic
// ratio while holding the rect's footprint approximately constant and
// staying inside the owning print area.
func (v *Validator) Validate(ctx context.Context, assetRef string, rect domain.PlacementRect, tolerancePercent float64) (domain.ValidationResult, error) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return domain.ValidationResult{}, fmt.Errorf("%w: declared rect %vx%v", domain.ErrDegenerateGeometry, rect.Width, rect.Height)
	}
	if tolerancePercent < 0 {
		tolerancePercent = DefaultTolerancePercent
	}

	naturalW, naturalH, err := v.probe.IntrinsicSize(ctx, assetRef)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("%w: %s: %v", domain.ErrAssetLoad, assetRef, err)
	}
	if naturalW <= 0 || naturalH <= 0 {
		return domain.ValidationResult{}, fmt.Errorf("%w: %s decoded as %dx%d", domain.ErrAssetLoad, assetRef, naturalW, naturalH)
	}

	actual := float64(naturalW) / float64(naturalH)
	declared := rect.Width / rect.Height
	percentDiff := math.Abs(actual-declared) / declared * 100

	result := domain.ValidationResult{
		DesignID:          rect.DesignID,
		PlacementKey:      rect.PlacementKey,
		ActualRatio:       actual,
		DeclaredRatio:     declared,
		PercentDifference: percentDiff,
		IsValid:           percentDiff <= tolerancePercent,
	}
	if !result.IsValid {
		if corrected, ok := correctedSize(rect, actual); ok {
			result.CorrectedRect = &corrected
		}
	}
	return result, nil
}

// correctedSize solves for a width/height pair matching the intrinsic
// ratio while preserving the rect's area, so a fix neither shrinks nor
// grows the design visibly. The pair is then grown to respect the
// minimum-dimension floor and shrunk to fit the print area, ratio kept
// throughout; compliance wins over footprint. When floor and area cap
// cannot both hold (an extreme ratio in a small area) no compliant size
// exists and ok is false, so the rect is left alone rather than written
// as a size the store would re-clamp off-ratio.
func correctedSize(rect domain.PlacementRect, actualRatio float64) (domain.RectSize, bool) {
	area := rect.Width * rect.Height
	height := math.Sqrt(area / actualRatio)
	width := height * actualRatio

	if short := math.Min(width, height); short < geometry.MinDimension {
		f := geometry.MinDimension / short
		width *= f
		height *= f
	}
	if rect.AreaWidth > 0 && width > rect.AreaWidth {
		f := rect.AreaWidth / width
		width *= f
		height *= f
	}
	if rect.AreaHeight > 0 && height > rect.AreaHeight {
		f := rect.AreaHeight / height
		width *= f
		height *= f
	}
	if width < geometry.MinDimension || height < geometry.MinDimension {
		return domain.RectSize{}, false
	}
	return domain.RectSize{Width: width, Height: height}, true
}
