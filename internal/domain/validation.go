package domain

// RectSize is a width/height pair in print-area pixels.
type RectSize struct {
	Width  float64
	Height float64
}

// ValidationResult is the outcome of checking one placement rect against
// its design asset's intrinsic aspect ratio. Results are ephemeral and
// recomputed per pass, never persisted as-is.
type ValidationResult struct {
	DesignID          string
	PlacementKey      string
	ActualRatio       float64
	DeclaredRatio     float64
	PercentDifference float64
	IsValid           bool

	// CorrectedRect is set only when IsValid is false and the asset could
	// be probed: a width/height pair matching the intrinsic ratio while
	// keeping the rect's footprint.
	CorrectedRect *RectSize

	// LoadError carries the asset-load failure message when the design
	// could not be verified at all. Such entries are neither valid nor
	// invalid and must not feed the auto-fix.
	LoadError string
}

// Verified reports whether the underlying asset could be probed.
func (v ValidationResult) Verified() bool {
	return v.LoadError == ""
}
