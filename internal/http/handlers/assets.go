package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"printstudio/internal/assets"
	"printstudio/internal/domain"
)

// maxUploadBytes caps a single design upload.
const maxUploadBytes = 20 << 20

type assetPayload struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	MIME   string `json:"mime"`
	Bytes  int64  `json:"bytes"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func toAssetPayload(a domain.Asset) assetPayload {
	return assetPayload{ID: a.ID, URL: a.URL, MIME: a.MIME, Bytes: a.Bytes, Width: a.Width, Height: a.Height}
}

// UploadAsset accepts a multipart design upload, records its intrinsic
// dimensions and stores the file locally. The returned asset ID doubles as
// the design ID in the placement endpoints.
func (a *App) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "read upload failed")
		return
	}
	width, height, err := assets.SizeFromBytes(data)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "unsupported or corrupt image")
		return
	}

	mime := http.DetectContentType(data)
	id := uuid.NewString()
	key, err := a.Files.Write(r.Context(), "designs/"+id+extensionFor(mime, header.Filename), data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("asset write failed")
		a.error(w, http.StatusInternalServerError, "store upload failed")
		return
	}

	asset := domain.Asset{
		ID:         id,
		URL:        strings.TrimRight(a.StorageBaseURL, "/") + "/" + key,
		StorageKey: key,
		MIME:       mime,
		Bytes:      int64(len(data)),
		Width:      width,
		Height:     height,
	}
	if err := a.Assets.Insert(r.Context(), &asset); err != nil {
		a.Logger.Error().Err(err).Msg("asset insert failed")
		a.error(w, http.StatusInternalServerError, "save asset failed")
		return
	}
	a.json(w, http.StatusCreated, toAssetPayload(asset))
}

type registerAssetRequest struct {
	URL string `json:"url"`
}

// RegisterAsset records an externally hosted design by URL. The image is
// probed once so later ratio checks hit the metadata fast path.
func (a *App) RegisterAsset(w http.ResponseWriter, r *http.Request) {
	var req registerAssetRequest
	if err := a.decode(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		a.error(w, http.StatusBadRequest, "url is required")
		return
	}
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		a.error(w, http.StatusBadRequest, "url must be absolute http(s)")
		return
	}

	if existing, err := a.Assets.GetByURL(r.Context(), req.URL); err == nil && existing != nil {
		a.json(w, http.StatusOK, toAssetPayload(*existing))
		return
	}

	width, height, err := a.Prober.IntrinsicSize(r.Context(), req.URL)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "asset could not be loaded")
		return
	}

	asset := domain.Asset{
		ID:     uuid.NewString(),
		URL:    req.URL,
		Width:  width,
		Height: height,
	}
	if err := a.Assets.Insert(r.Context(), &asset); err != nil {
		a.Logger.Error().Err(err).Msg("asset insert failed")
		a.error(w, http.StatusInternalServerError, "save asset failed")
		return
	}
	a.json(w, http.StatusCreated, toAssetPayload(asset))
}

// GetAsset returns one asset's metadata.
func (a *App) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := a.Assets.GetByID(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "asset not found")
			return
		}
		a.Logger.Error().Err(err).Msg("asset lookup failed")
		a.error(w, http.StatusInternalServerError, "internal error")
		return
	}
	a.json(w, http.StatusOK, toAssetPayload(*asset))
}

// ListAssets returns recent uploads, newest first.
func (a *App) ListAssets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := a.Assets.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("asset list failed")
		a.error(w, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]assetPayload, 0, len(list))
	for _, asset := range list {
		items = append(items, toAssetPayload(asset))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func extensionFor(mime, filename string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tiff"
	}
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ".bin"
}
