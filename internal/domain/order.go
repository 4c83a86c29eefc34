package domain

// OrderPosition mirrors the position block the downstream order-creation
// flow submits to the fulfillment provider. Field names and units (pixels,
// top-left origin) are a wire contract and must not change.
type OrderPosition struct {
	AreaWidth        float64 `json:"area_width"`
	AreaHeight       float64 `json:"area_height"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	Top              float64 `json:"top"`
	Left             float64 `json:"left"`
	LimitToPrintArea bool    `json:"limit_to_print_area"`
}

// OrderItem is one finalized placement in the order-submission payload.
type OrderItem struct {
	Type     string        `json:"type"`
	URL      string        `json:"url"`
	Position OrderPosition `json:"position"`
}

// OrderItemFor serializes a placement rect into the order payload shape.
func OrderItemFor(rect PlacementRect, assetURL string) OrderItem {
	return OrderItem{
		Type: rect.PlacementKey,
		URL:  assetURL,
		Position: OrderPosition{
			AreaWidth:        rect.AreaWidth,
			AreaHeight:       rect.AreaHeight,
			Width:            rect.Width,
			Height:           rect.Height,
			Top:              rect.Top,
			Left:             rect.Left,
			LimitToPrintArea: rect.ConstrainToArea,
		},
	}
}
