package domain

// PrintArea is the authoritative print rectangle a fulfillment provider
// accepts artwork into, for one placement on one product variant. It is
// supplied by the provider catalog and never mutated.
type PrintArea struct {
	PlacementKey string
	Width        int
	Height       int
	DPI          int
}

// Ratio returns width over height.
func (a PrintArea) Ratio() float64 {
	if a.Height == 0 {
		return 0
	}
	return float64(a.Width) / float64(a.Height)
}
