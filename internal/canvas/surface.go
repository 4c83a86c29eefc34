// Package canvas is the interaction surface over the placement store: it
// presents a print area at a scaled size, maps pointer drags and resizes
// back into print-space pixels, and tracks what needs re-rendering. It is
// deliberately free of any drawing toolkit; clients consume the
// render-space snapshot it produces.
package canvas

import (
	"sync/atomic"

	"printstudio/internal/domain"
	"printstudio/internal/geometry"
	"printstudio/internal/placement"
)

// Mode is the interaction state. Transitions are
// Idle -> Dragging -> Idle and Idle -> Resizing -> Idle, entered on
// pointer-down over a rect body or handle and exited on pointer-up.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizing
)

// Handle names a resize grip on the selected rect.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleE  Handle = "e"
	HandleSE Handle = "se"
	HandleS  Handle = "s"
	HandleSW Handle = "sw"
	HandleW  Handle = "w"
)

// Config tunes the surface. Zero values pick the defaults.
type Config struct {
	// ScaleCap limits the render scale; 1 keeps designs at most true size.
	ScaleCap float64
	// BreakpointPx is the viewport width under which the scale follows
	// the viewport instead of the fixed render size.
	BreakpointPx float64
	// HandleRadius is the render-space hit radius around resize grips.
	HandleRadius float64
	// RotateRatioFactor sets how much wider than the viewport the print
	// area must be before the rotate-device hint fires.
	RotateRatioFactor float64
}

func (c Config) withDefaults() Config {
	if c.ScaleCap <= 0 {
		c.ScaleCap = 1
	}
	if c.BreakpointPx <= 0 {
		c.BreakpointPx = 768
	}
	if c.HandleRadius <= 0 {
		c.HandleRadius = 8
	}
	if c.RotateRatioFactor <= 0 {
		c.RotateRatioFactor = 1.5
	}
	return c
}

// PlacedRect is one design in render-space, ready to draw.
type PlacedRect struct {
	DesignID string
	Rect     geometry.RenderRect
	Selected bool
}

// Surface drives one print area's canvas. It is owned by a single
// interaction loop; only the dirty flag may be touched from elsewhere
// (store listeners fire wherever the mutation happened).
type Surface struct {
	store  *placement.Store
	area   domain.PrintArea
	render geometry.Size
	cfg    Config

	viewport geometry.Size

	mode     Mode
	sel      domain.Selection
	handle   Handle
	downX    float64
	downY    float64
	origRect domain.PlacementRect

	dirty       atomic.Bool
	unsubscribe func()
}

// NewSurface builds a surface for the print area and subscribes it to
// store changes so every mutation marks it dirty for re-render.
func NewSurface(store *placement.Store, area domain.PrintArea, render geometry.Size, cfg Config) *Surface {
	s := &Surface{
		store:  store,
		area:   area,
		render: render,
		cfg:    cfg.withDefaults(),
		sel:    domain.Selection{ActivePlacement: area.PlacementKey},
	}
	s.dirty.Store(true)
	s.unsubscribe = store.Subscribe(func() { s.dirty.Store(true) })
	return s
}

// Detach unhooks the surface from store notifications. Short-lived
// surfaces (one-shot previews) must call it, or the store accumulates
// dead listeners.
func (s *Surface) Detach() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// SetViewport records the current viewport so responsive scaling and the
// rotate hint can react to it.
func (s *Surface) SetViewport(width, height float64) {
	s.viewport = geometry.Size{Width: width, Height: height}
	s.dirty.Store(true)
}

// Scale is the active print-to-render factor. Below the breakpoint it is
// recomputed from the viewport width instead of the fixed render size, so
// a phone never gets the desktop constant.
func (s *Surface) Scale() float64 {
	areaSize := geometry.Size{Width: float64(s.area.Width), Height: float64(s.area.Height)}
	if s.viewport.Width > 0 && s.viewport.Width < s.cfg.BreakpointPx {
		return geometry.RenderScale(areaSize, geometry.Size{Width: s.viewport.Width, Height: s.viewport.Width * areaSize.Height / areaSize.Width}, s.cfg.ScaleCap)
	}
	return geometry.RenderScale(areaSize, s.render, s.cfg.ScaleCap)
}

// RotateHint reports whether the print area is so much wider than the
// viewport that rendering would be unusably small and the client should
// ask the user to rotate the device.
func (s *Surface) RotateHint() bool {
	if s.viewport.Width <= 0 || s.viewport.Height <= 0 || s.viewport.Width >= s.cfg.BreakpointPx {
		return false
	}
	viewportRatio := s.viewport.Width / s.viewport.Height
	return s.area.Ratio() > s.cfg.RotateRatioFactor*viewportRatio
}

// Mode returns the interaction state.
func (s *Surface) Mode() Mode { return s.mode }

// Selection returns the active placement and selected design.
func (s *Surface) Selection() domain.Selection { return s.sel }

// Dirty reports and clears the pending re-render flag.
func (s *Surface) Dirty() bool {
	return s.dirty.Swap(false)
}

// Snapshot returns every design on the surface's placement in
// render-space, in stable store order.
func (s *Surface) Snapshot() []PlacedRect {
	scale := s.Scale()
	rects := s.store.ListByPlacement(s.area.PlacementKey)
	out := make([]PlacedRect, 0, len(rects))
	for _, r := range rects {
		out = append(out, PlacedRect{
			DesignID: r.DesignID,
			Rect: geometry.RenderRect{
				X:      r.Left * scale,
				Y:      r.Top * scale,
				Width:  r.Width * scale,
				Height: r.Height * scale,
			},
			Selected: r.DesignID == s.sel.SelectedDesignID,
		})
	}
	return out
}

// PointerDown starts an interaction at render coordinates x,y. A hit on
// the selected rect's handle enters Resizing; a hit on a rect body
// selects it and enters Dragging. It reports whether an interaction
// started.
func (s *Surface) PointerDown(x, y float64) bool {
	if s.mode != ModeIdle {
		return false
	}
	scale := s.Scale()
	if scale <= 0 {
		return false
	}

	if s.sel.SelectedDesignID != "" {
		if rect, ok := s.store.Get(s.sel.SelectedDesignID, s.area.PlacementKey); ok {
			if h, ok := s.hitHandle(rect, scale, x, y); ok {
				s.begin(ModeResizing, rect, h, x, y)
				return true
			}
		}
	}

	rects := s.store.ListByPlacement(s.area.PlacementKey)
	// Later rects draw on top, so hit-test them first.
	for i := len(rects) - 1; i >= 0; i-- {
		if s.hitBody(rects[i], scale, x, y) {
			s.sel.SelectedDesignID = rects[i].DesignID
			s.begin(ModeDragging, rects[i], "", x, y)
			s.dirty.Store(true)
			return true
		}
	}
	if s.sel.SelectedDesignID != "" {
		s.sel.SelectedDesignID = ""
		s.dirty.Store(true)
	}
	return false
}

// PointerMove applies the drag or resize in progress. Deltas are measured
// from the pointer-down origin against the rect captured there, so
// repeated sub-pixel moves cannot accumulate rounding drift.
func (s *Surface) PointerMove(x, y float64) {
	if s.mode == ModeIdle {
		return
	}
	scale := s.Scale()
	if scale <= 0 {
		return
	}
	dLeft := geometry.FromRenderSpace(x-s.downX, scale)
	dTop := geometry.FromRenderSpace(y-s.downY, scale)

	var patch domain.RectPatch
	switch s.mode {
	case ModeDragging:
		left := s.origRect.Left + dLeft
		top := s.origRect.Top + dTop
		patch.Left = &left
		patch.Top = &top
	case ModeResizing:
		patch = s.resizePatch(dLeft, dTop)
	}
	if patch.IsZero() {
		return
	}
	// The store clamps to area bounds and the minimum size floor.
	_, _ = s.store.Update(s.origRect.DesignID, s.origRect.PlacementKey, patch)
}

// PointerUp ends the interaction and returns to Idle.
func (s *Surface) PointerUp() {
	s.mode = ModeIdle
	s.handle = ""
}

func (s *Surface) begin(mode Mode, rect domain.PlacementRect, h Handle, x, y float64) {
	s.mode = mode
	s.handle = h
	s.origRect = rect
	s.downX = x
	s.downY = y
}

func (s *Surface) hitBody(rect domain.PlacementRect, scale, x, y float64) bool {
	rx := rect.Left * scale
	ry := rect.Top * scale
	return x >= rx && x <= rx+rect.Width*scale && y >= ry && y <= ry+rect.Height*scale
}

func (s *Surface) hitHandle(rect domain.PlacementRect, scale, x, y float64) (Handle, bool) {
	rx := rect.Left * scale
	ry := rect.Top * scale
	rw := rect.Width * scale
	rh := rect.Height * scale

	points := []struct {
		h    Handle
		x, y float64
	}{
		{HandleNW, rx, ry},
		{HandleN, rx + rw/2, ry},
		{HandleNE, rx + rw, ry},
		{HandleE, rx + rw, ry + rh/2},
		{HandleSE, rx + rw, ry + rh},
		{HandleS, rx + rw/2, ry + rh},
		{HandleSW, rx, ry + rh},
		{HandleW, rx, ry + rh/2},
	}
	r := s.cfg.HandleRadius
	for _, p := range points {
		if x >= p.x-r && x <= p.x+r && y >= p.y-r && y <= p.y+r {
			return p.h, true
		}
	}
	return "", false
}

// resizePatch converts a print-space pointer delta into the new rect
// implied by the active handle. Shrinking past the minimum dimension pins
// the moving edge so the opposite edge never shifts.
func (s *Surface) resizePatch(dLeft, dTop float64) domain.RectPatch {
	left := s.origRect.Left
	top := s.origRect.Top
	width := s.origRect.Width
	height := s.origRect.Height

	switch s.handle {
	case HandleE, HandleNE, HandleSE:
		width += dLeft
	case HandleW, HandleNW, HandleSW:
		left += dLeft
		width -= dLeft
	}
	switch s.handle {
	case HandleS, HandleSE, HandleSW:
		height += dTop
	case HandleN, HandleNE, HandleNW:
		top += dTop
		height -= dTop
	}

	if width < geometry.MinDimension {
		if left != s.origRect.Left {
			left = s.origRect.Left + s.origRect.Width - geometry.MinDimension
		}
		width = geometry.MinDimension
	}
	if height < geometry.MinDimension {
		if top != s.origRect.Top {
			top = s.origRect.Top + s.origRect.Height - geometry.MinDimension
		}
		height = geometry.MinDimension
	}

	return domain.RectPatch{Width: &width, Height: &height, Top: &top, Left: &left}
}
