// Package geometry holds the pure rect math shared by every renderer
// variant: fit-to-area sizing, anchored quick positions, and the
// print-space/render-space transforms. Nothing here does I/O and nothing
// here may be reimplemented at a call site with its own scale constants.
package geometry

import (
	"fmt"
	"math"

	"printstudio/internal/domain"
)

// MinDimension is the smallest width or height, in print-space pixels, a
// placed design may have. Anything smaller prints as an unreadable smudge.
const MinDimension = 30.0

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Offset is a top/left pair in pixels, top-left origin.
type Offset struct {
	Top  float64
	Left float64
}

// Rect is a print-space rectangle.
type Rect struct {
	Width  float64
	Height float64
	Top    float64
	Left   float64
}

// RenderRect is a rectangle scaled into render-surface pixels.
type RenderRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Anchor names one of the nine quick-position presets.
type Anchor string

const (
	AnchorTopLeft      Anchor = "top-left"
	AnchorTopCenter    Anchor = "top-center"
	AnchorTopRight     Anchor = "top-right"
	AnchorCenterLeft   Anchor = "center-left"
	AnchorCenter       Anchor = "center"
	AnchorCenterRight  Anchor = "center-right"
	AnchorBottomLeft   Anchor = "bottom-left"
	AnchorBottomCenter Anchor = "bottom-center"
	AnchorBottomRight  Anchor = "bottom-right"
)

// FitWithinArea returns the largest rectangle with the given aspect ratio
// whose sides stay within maxFraction of the area. It is used to size a
// design when it is first dropped into a placement. Dimensions are floored
// at MinDimension; a zero-area or non-finite input is an error, never a
// silently returned zero rect.
func FitWithinArea(intrinsicRatio float64, area Size, maxFraction float64) (Size, error) {
	if !finitePositive(intrinsicRatio) {
		return Size{}, fmt.Errorf("%w: intrinsic ratio %v", domain.ErrDegenerateGeometry, intrinsicRatio)
	}
	if !finitePositive(area.Width) || !finitePositive(area.Height) {
		return Size{}, fmt.Errorf("%w: area %vx%v", domain.ErrDegenerateGeometry, area.Width, area.Height)
	}
	if !finitePositive(maxFraction) {
		return Size{}, fmt.Errorf("%w: max fraction %v", domain.ErrDegenerateGeometry, maxFraction)
	}

	w := area.Width * maxFraction
	h := w / intrinsicRatio
	if h > area.Height*maxFraction {
		h = area.Height * maxFraction
		w = h * intrinsicRatio
	}
	if w < MinDimension {
		w = MinDimension
		h = w / intrinsicRatio
	}
	if h < MinDimension {
		h = MinDimension
		w = h * intrinsicRatio
	}
	return Size{Width: w, Height: h}, nil
}

// AnchoredPosition computes top/left so the rect touches the edges or
// center of the area named by the anchor.
func AnchoredPosition(anchor Anchor, rect, area Size) (Offset, error) {
	var left, top float64

	switch anchor {
	case AnchorTopLeft, AnchorCenterLeft, AnchorBottomLeft:
		left = 0
	case AnchorTopCenter, AnchorCenter, AnchorBottomCenter:
		left = (area.Width - rect.Width) / 2
	case AnchorTopRight, AnchorCenterRight, AnchorBottomRight:
		left = area.Width - rect.Width
	default:
		return Offset{}, fmt.Errorf("unknown anchor %q", anchor)
	}

	switch anchor {
	case AnchorTopLeft, AnchorTopCenter, AnchorTopRight:
		top = 0
	case AnchorCenterLeft, AnchorCenter, AnchorCenterRight:
		top = (area.Height - rect.Height) / 2
	case AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight:
		top = area.Height - rect.Height
	}

	return Offset{Top: top, Left: left}, nil
}

// RenderScale is the factor that maps print-space pixels onto a render
// surface. scaleCap defaults to 1 so designs never render larger than true
// size on oversized surfaces.
func RenderScale(area, render Size, scaleCap float64) float64 {
	if scaleCap <= 0 {
		scaleCap = 1
	}
	if area.Width <= 0 || area.Height <= 0 {
		return 0
	}
	scale := math.Min(render.Width/area.Width, render.Height/area.Height)
	return math.Min(scale, scaleCap)
}

// ToRenderSpace maps a print-space rect onto the render surface.
func ToRenderSpace(rect Rect, area, render Size, scaleCap float64) RenderRect {
	scale := RenderScale(area, render, scaleCap)
	return RenderRect{
		X:      rect.Left * scale,
		Y:      rect.Top * scale,
		Width:  rect.Width * scale,
		Height: rect.Height * scale,
	}
}

// FromRenderSpace converts a render-space delta back into print-space
// pixels. Rounding is half-up so repeated small drags do not drift through
// truncation.
func FromRenderSpace(renderDelta, scale float64) float64 {
	return RoundHalfUp(renderDelta / scale)
}

// RectFromRenderSpace is the rect-level inverse of ToRenderSpace.
func RectFromRenderSpace(rr RenderRect, scale float64) (Rect, error) {
	if !finitePositive(scale) {
		return Rect{}, fmt.Errorf("%w: scale %v", domain.ErrDegenerateGeometry, scale)
	}
	return Rect{
		Left:   FromRenderSpace(rr.X, scale),
		Top:    FromRenderSpace(rr.Y, scale),
		Width:  FromRenderSpace(rr.Width, scale),
		Height: FromRenderSpace(rr.Height, scale),
	}, nil
}

// RoundHalfUp rounds to the nearest integer with halves going up.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
