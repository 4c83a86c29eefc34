// Package fulfillment talks to the print provider's catalog API. Only the
// read side lives here: print-file dimensions per product variant. Order
// submission is a separate flow that consumes the engine's payload.
package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"printstudio/internal/catalog"
	"printstudio/internal/domain"
)

// Options configures the client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client is an HTTP client for the provider catalog.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient builds a client with sane defaults.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.printful.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
	}
}

type printFilesResponse struct {
	Code   int `json:"code"`
	Result struct {
		VariantPrintfiles []struct {
			VariantID  int            `json:"variant_id"`
			Placements map[string]int `json:"placements"`
		} `json:"variant_printfiles"`
		Printfiles []struct {
			PrintfileID int `json:"printfile_id"`
			Width       int `json:"width"`
			Height      int `json:"height"`
			DPI         int `json:"dpi"`
		} `json:"printfiles"`
	} `json:"result"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ProductPrintFiles fetches the variant-to-printfile mapping for a
// product. Every failure wraps domain.ErrCatalogLookup so the positioning
// UI degrades to "no print areas available" instead of crashing.
func (c *Client) ProductPrintFiles(ctx context.Context, productID string) (catalog.VariantCatalog, error) {
	if c == nil {
		return catalog.VariantCatalog{}, errors.New("fulfillment client not configured")
	}
	if strings.TrimSpace(productID) == "" {
		return catalog.VariantCatalog{}, fmt.Errorf("%w: product id required", domain.ErrCatalogLookup)
	}

	url := fmt.Sprintf("%s/mockup-generator/printfiles/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return catalog.VariantCatalog{}, fmt.Errorf("%w: %v", domain.ErrCatalogLookup, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return catalog.VariantCatalog{}, fmt.Errorf("%w: fetch print files: %v", domain.ErrCatalogLookup, err)
	}
	defer resp.Body.Close()

	var body printFilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return catalog.VariantCatalog{}, fmt.Errorf("%w: decode response: %v", domain.ErrCatalogLookup, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := body.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return catalog.VariantCatalog{}, fmt.Errorf("%w: provider status %d: %s", domain.ErrCatalogLookup, resp.StatusCode, msg)
	}

	out := catalog.VariantCatalog{
		Variants:   make(map[string]map[string]string, len(body.Result.VariantPrintfiles)),
		PrintFiles: make(map[string]catalog.PrintFileSpec, len(body.Result.Printfiles)),
	}
	for _, pf := range body.Result.Printfiles {
		out.PrintFiles[strconv.Itoa(pf.PrintfileID)] = catalog.PrintFileSpec{
			Width:  pf.Width,
			Height: pf.Height,
			DPI:    pf.DPI,
		}
	}
	for _, vp := range body.Result.VariantPrintfiles {
		placements := make(map[string]string, len(vp.Placements))
		for key, printfileID := range vp.Placements {
			placements[key] = strconv.Itoa(printfileID)
		}
		out.Variants[strconv.Itoa(vp.VariantID)] = placements
	}
	return out, nil
}
