package domain

// PlacementRect is the position and size of one design inside one print
// area. Rect fields are pixels in print-area space with a top-left origin.
// AreaWidth/AreaHeight snapshot the owning PrintArea so rect math never
// needs a second catalog lookup.
type PlacementRect struct {
	DesignID        string
	PlacementKey    string
	AreaWidth       float64
	AreaHeight      float64
	Width           float64
	Height          float64
	Top             float64
	Left            float64
	ConstrainToArea bool
}

// Ratio returns the declared width over height, 0 for a zero height.
func (r PlacementRect) Ratio() float64 {
	if r.Height == 0 {
		return 0
	}
	return r.Width / r.Height
}

// Area returns the rectangle footprint in square pixels.
func (r PlacementRect) Area() float64 {
	return r.Width * r.Height
}

// RectPatch is a partial update to a PlacementRect. Nil fields are left
// untouched. Every merge goes through Apply so call sites cannot scatter
// their own field-by-field copies.
type RectPatch struct {
	Width           *float64
	Height          *float64
	Top             *float64
	Left            *float64
	ConstrainToArea *bool
}

// Apply merges the patch into a copy of the rect and returns it. Invariant
// enforcement is the store's job; Apply only merges.
func (p RectPatch) Apply(r PlacementRect) PlacementRect {
	if p.Width != nil {
		r.Width = *p.Width
	}
	if p.Height != nil {
		r.Height = *p.Height
	}
	if p.Top != nil {
		r.Top = *p.Top
	}
	if p.Left != nil {
		r.Left = *p.Left
	}
	if p.ConstrainToArea != nil {
		r.ConstrainToArea = *p.ConstrainToArea
	}
	return r
}

// IsZero reports whether the patch changes nothing.
func (p RectPatch) IsZero() bool {
	return p.Width == nil && p.Height == nil && p.Top == nil && p.Left == nil && p.ConstrainToArea == nil
}

// Selection is the small UI-selection record passed alongside the store:
// which placement tab is active and which design is selected on it.
type Selection struct {
	ActivePlacement  string
	SelectedDesignID string
}
