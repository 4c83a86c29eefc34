package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"printstudio/internal/compliance"
	"printstudio/internal/domain"
	"printstudio/internal/http/handlers"
	"printstudio/internal/http/httpapi"
	"printstudio/internal/placement"
	"printstudio/internal/storage"
)

type fakeAssetRepo struct {
	byID  map[string]domain.Asset
	byURL map[string]domain.Asset
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{byID: map[string]domain.Asset{}, byURL: map[string]domain.Asset{}}
}

func (f *fakeAssetRepo) Insert(_ context.Context, a *domain.Asset) error {
	f.byID[a.ID] = *a
	f.byURL[a.URL] = *a
	return nil
}

func (f *fakeAssetRepo) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	if a, ok := f.byID[id]; ok {
		return &a, nil
	}
	return nil, fmt.Errorf("asset: %w", domain.ErrNotFound)
}

func (f *fakeAssetRepo) GetByURL(_ context.Context, url string) (*domain.Asset, error) {
	if a, ok := f.byURL[url]; ok {
		return &a, nil
	}
	return nil, fmt.Errorf("asset: %w", domain.ErrNotFound)
}

func (f *fakeAssetRepo) ListRecent(_ context.Context, limit int) ([]domain.Asset, error) {
	out := make([]domain.Asset, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeDesignRepo struct {
	drafts map[string][]domain.PlacementRect
}

func newFakeDesignRepo() *fakeDesignRepo {
	return &fakeDesignRepo{drafts: map[string][]domain.PlacementRect{}}
}

func (f *fakeDesignRepo) SavePlacements(_ context.Context, draftID string, rects []domain.PlacementRect) error {
	f.drafts[draftID] = append([]domain.PlacementRect(nil), rects...)
	return nil
}

func (f *fakeDesignRepo) ListPlacements(_ context.Context, draftID string) ([]domain.PlacementRect, error) {
	return append([]domain.PlacementRect(nil), f.drafts[draftID]...), nil
}

func (f *fakeDesignRepo) DeletePlacements(_ context.Context, draftID string) error {
	delete(f.drafts, draftID)
	return nil
}

type fakeCatalogRepo struct {
	printFiles map[string]domain.PrintArea
	variants   map[string]map[string]string
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{printFiles: map[string]domain.PrintArea{}, variants: map[string]map[string]string{}}
}

func (f *fakeCatalogRepo) UpsertPrintFile(_ context.Context, id string, width, height, dpi int) error {
	f.printFiles[id] = domain.PrintArea{Width: width, Height: height, DPI: dpi}
	return nil
}

func (f *fakeCatalogRepo) UpsertVariantPrintFile(_ context.Context, variantID, placementKey, printFileID string) error {
	if f.variants[variantID] == nil {
		f.variants[variantID] = map[string]string{}
	}
	f.variants[variantID][placementKey] = printFileID
	return nil
}

func (f *fakeCatalogRepo) VariantPrintFiles(_ context.Context, variantID string) (map[string]domain.PrintArea, error) {
	out := map[string]domain.PrintArea{}
	for key, printFileID := range f.variants[variantID] {
		pf := f.printFiles[printFileID]
		pf.PlacementKey = key
		out[key] = pf
	}
	return out, nil
}

// seedArea registers a print area in the fake catalog mirror.
func (f *fakeCatalogRepo) seedArea(variantID, placementKey string, width, height, dpi int) {
	id := variantID + "/" + placementKey
	f.printFiles[id] = domain.PrintArea{Width: width, Height: height, DPI: dpi}
	if f.variants[variantID] == nil {
		f.variants[variantID] = map[string]string{}
	}
	f.variants[variantID][placementKey] = id
}

type fakeProber struct {
	sizes map[string][2]int
}

func (f *fakeProber) IntrinsicSize(_ context.Context, assetRef string) (int, int, error) {
	if size, ok := f.sizes[assetRef]; ok {
		return size[0], size[1], nil
	}
	return 0, 0, fmt.Errorf("%w: %s", domain.ErrAssetLoad, assetRef)
}

type fakeSQL struct {
	execs [][]any
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, append([]any{query}, args...))
	return pgconn.CommandTag{}, nil
}

func (f *fakeSQL) QueryRow(context.Context, string, ...any) pgx.Row {
	return failRow{}
}

func (f *fakeSQL) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

type failRow struct{}

func (failRow) Scan(...any) error { return errors.New("not supported") }

type fixture struct {
	app     *handlers.App
	router  http.Handler
	store   *placement.Store
	assets  *fakeAssetRepo
	designs *fakeDesignRepo
	catalog *fakeCatalogRepo
	prober  *fakeProber
	sql     *fakeSQL
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() unexpected error: %v", err)
	}

	f := &fixture{
		store:   placement.NewStore(),
		assets:  newFakeAssetRepo(),
		designs: newFakeDesignRepo(),
		catalog: newFakeCatalogRepo(),
		prober:  &fakeProber{sizes: map[string][2]int{}},
		sql:     &fakeSQL{},
	}
	f.app = &handlers.App{
		Logger:           zerolog.Nop(),
		SQL:              f.sql,
		Store:            f.store,
		Assets:           f.assets,
		Designs:          f.designs,
		CatalogRepo:      f.catalog,
		Prober:           f.prober,
		Files:            files,
		StorageBaseURL:   "http://cdn.local/static",
		TolerancePercent: 0.5,
		MobileBreakpoint: 768,
	}
	f.app.Orchestrator = compliance.NewOrchestrator(f.store, compliance.NewValidator(f.prober),
		compliance.AssetResolverFunc(f.app.AssetURL), zerolog.Nop())
	f.router = httpapi.NewRouter(f.app, httpapi.Options{DefaultLocale: "en"})
	return f
}

// seedAsset registers asset metadata so AssetURL and the probe fast path
// resolve without network access.
func (f *fixture) seedAsset(id, url string, width, height int) {
	f.assets.byID[id] = domain.Asset{ID: id, URL: url, Width: width, Height: height}
	f.assets.byURL[url] = f.assets.byID[id]
	f.prober.sizes[url] = [2]int{width, height}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
