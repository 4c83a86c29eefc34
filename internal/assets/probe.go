// Package assets resolves design references to the intrinsic pixel
// dimensions of their artwork. The asset store itself is an external
// collaborator; this package only reads enough of each image to learn its
// header dimensions.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	// Header decoders for the formats the upload flow accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"printstudio/internal/domain"
)

// DefaultProbeTimeout bounds a single fetch+decode. A slow asset must
// surface as a load error, never leave a batch entry pending forever.
const DefaultProbeTimeout = 15 * time.Second

// maxProbeBytes caps how much of a remote image is read. Dimensions live
// in the header, so a couple of megabytes covers every supported format.
const maxProbeBytes = 4 << 20

// HTTPProbe learns intrinsic dimensions by fetching the image over HTTP
// and decoding its header.
type HTTPProbe struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewHTTPProbe builds a probe. A nil client uses http.DefaultClient; a
// non-positive timeout uses DefaultProbeTimeout.
func NewHTTPProbe(client *http.Client, timeout time.Duration) *HTTPProbe {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HTTPProbe{httpClient: client, timeout: timeout}
}

// IntrinsicSize fetches the asset and returns its pixel dimensions. All
// failures (network, HTTP status, undecodable or zero-sized image, probe
// deadline) wrap domain.ErrAssetLoad.
func (p *HTTPProbe) IntrinsicSize(ctx context.Context, assetRef string) (int, int, error) {
	if strings.TrimSpace(assetRef) == "" {
		return 0, 0, fmt.Errorf("%w: empty asset reference", domain.ErrAssetLoad)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetRef, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", domain.ErrAssetLoad, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fetch %s: %v", domain.ErrAssetLoad, assetRef, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("%w: fetch %s: status %d", domain.ErrAssetLoad, assetRef, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBytes))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: read %s: %v", domain.ErrAssetLoad, assetRef, err)
	}
	return SizeFromBytes(data)
}

// SizeFromBytes decodes the image header in data and returns its pixel
// dimensions. Used for uploads where the bytes are already in hand.
func SizeFromBytes(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: decode: %v", domain.ErrAssetLoad, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%w: decoded as %dx%d", domain.ErrAssetLoad, cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// RepoProbe consults stored asset metadata before falling back to a
// slower probe. Uploads record width/height, so the fallback only runs
// for assets registered by URL alone.
type RepoProbe struct {
	repo domain.AssetRepository
	next interface {
		IntrinsicSize(ctx context.Context, assetRef string) (int, int, error)
	}
}

// NewRepoProbe wraps next with a metadata fast path. repo may be nil in
// tests, which degrades to the fallback alone.
func NewRepoProbe(repo domain.AssetRepository, next *HTTPProbe) *RepoProbe {
	p := &RepoProbe{repo: repo}
	if next != nil {
		p.next = next
	}
	return p
}

// IntrinsicSize returns recorded dimensions when the asset is known,
// otherwise probes the image itself.
func (p *RepoProbe) IntrinsicSize(ctx context.Context, assetRef string) (int, int, error) {
	if p.repo != nil {
		asset, err := p.repo.GetByURL(ctx, assetRef)
		switch {
		case err == nil && asset != nil && asset.Width > 0 && asset.Height > 0:
			return asset.Width, asset.Height, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			// Metadata lookup trouble is not fatal; the image itself is
			// still authoritative.
		}
	}
	if p.next == nil {
		return 0, 0, fmt.Errorf("%w: no prober configured for %s", domain.ErrAssetLoad, assetRef)
	}
	return p.next.IntrinsicSize(ctx, assetRef)
}
