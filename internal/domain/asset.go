package domain

import "time"

// Asset is the stored metadata for one uploaded design file. Width and
// height are recorded at upload time so aspect-ratio checks usually avoid
// refetching the image.
type Asset struct {
	ID         string
	URL        string
	StorageKey string
	MIME       string
	Bytes      int64
	Width      int
	Height     int
	CreatedAt  time.Time
}

// Ratio returns intrinsic width over height, 0 when unknown.
func (a Asset) Ratio() float64 {
	if a.Height == 0 {
		return 0
	}
	return float64(a.Width) / float64(a.Height)
}
