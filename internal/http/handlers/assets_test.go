package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type assetBody struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	MIME   string `json:"mime"`
	Bytes  int64  `json:"bytes"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func uploadRequest(t *testing.T, data []byte, filename string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() unexpected error: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/assets", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAssetRecordsDimensions(t *testing.T) {
	f := newFixture(t)
	data := pngBytes(t, 640, 480)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, uploadRequest(t, data, "art.png"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got assetBody
	decodeBody(t, rec, &got)

	if got.Width != 640 || got.Height != 480 {
		t.Fatalf("dimensions = %dx%d, want 640x480", got.Width, got.Height)
	}
	if got.MIME != "image/png" {
		t.Fatalf("mime = %q, want image/png", got.MIME)
	}
	if got.Bytes != int64(len(data)) {
		t.Fatalf("bytes = %d, want %d", got.Bytes, len(data))
	}
	if !strings.HasPrefix(got.URL, "http://cdn.local/static/designs/") || !strings.HasSuffix(got.URL, ".png") {
		t.Fatalf("url = %q", got.URL)
	}

	stored, err := f.assets.GetByID(context.Background(), got.ID)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if stored.StorageKey == "" {
		t.Fatal("asset should record its storage key")
	}
}

func TestUploadAssetRejectsNonImage(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, uploadRequest(t, []byte("not an image"), "note.txt"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestRegisterAssetProbesOnce(t *testing.T) {
	f := newFixture(t)
	f.prober.sizes["http://art.example/design.png"] = [2]int{800, 600}

	rec := f.do(t, http.MethodPost, "/v1/assets/register", map[string]any{
		"url": "http://art.example/design.png",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got assetBody
	decodeBody(t, rec, &got)
	if got.Width != 800 || got.Height != 600 {
		t.Fatalf("dimensions = %dx%d, want 800x600", got.Width, got.Height)
	}

	// Registering the same URL again returns the existing record.
	rec = f.do(t, http.MethodPost, "/v1/assets/register", map[string]any{
		"url": "http://art.example/design.png",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat status = %d, want 200", rec.Code)
	}
	var again assetBody
	decodeBody(t, rec, &again)
	if again.ID != got.ID {
		t.Fatalf("repeat id = %q, want %q", again.ID, got.ID)
	}
}

func TestRegisterAssetRejectsUnloadable(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/assets/register", map[string]any{
		"url": "http://art.example/missing.png",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestGetAndListAssets(t *testing.T) {
	f := newFixture(t)
	f.seedAsset("a1", "http://cdn.local/a1.png", 100, 100)
	f.seedAsset("a2", "http://cdn.local/a2.png", 200, 100)

	rec := f.do(t, http.MethodGet, "/v1/assets/a2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got assetBody
	decodeBody(t, rec, &got)
	if got.Width != 200 {
		t.Fatalf("width = %d, want 200", got.Width)
	}

	if rec := f.do(t, http.MethodGet, "/v1/assets/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing asset status = %d, want 404", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/v1/assets?limit=1", nil)
	var list struct {
		Items []assetBody `json:"items"`
	}
	decodeBody(t, rec, &list)
	if len(list.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(list.Items))
	}
}
