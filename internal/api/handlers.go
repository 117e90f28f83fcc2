package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vdmitriev/vregscan/internal/analysis"
	"github.com/vdmitriev/vregscan/internal/logger"
	"github.com/vdmitriev/vregscan/internal/models"
	"github.com/vdmitriev/vregscan/internal/ocr"
	"github.com/vdmitriev/vregscan/internal/storage"
)

// StatsReader is the slice of database.StatsRepo the API needs.
type StatsReader interface {
	ListRecent(ctx context.Context, limit int) ([]*models.DailyStats, error)
}

type App struct {
	Analysis      *analysis.Service
	Store         *analysis.Store
	Stats         StatsReader
	Audit         storage.AuditStore
	MaxUploadSize int64
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// analyzeRequest is the JSON body variant; multipart uploads carry the same
// data as form fields.
type analyzeRequest struct {
	Image   string `json:"image"`
	AssetID string `json:"asset_id"`
}

func (app *App) AnalyzeDocumentHandler(w http.ResponseWriter, r *http.Request) {
	imageData, assetID, ok := app.readImage(w, r)
	if !ok {
		return
	}

	result, err := app.Analysis.AnalyzeDocument(r.Context(), assetID, imageData)
	if err != nil {
		app.respondAnalysisError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (app *App) AnalyzePanelHandler(w http.ResponseWriter, r *http.Request) {
	imageData, assetID, ok := app.readImage(w, r)
	if !ok {
		return
	}

	result, err := app.Analysis.AnalyzeInstrumentPanel(r.Context(), assetID, imageData)
	if err != nil {
		app.respondAnalysisError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (app *App) LatestAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")
	if assetID == "" {
		respondError(w, http.StatusBadRequest, "asset id is required")
		return
	}

	rec, err := app.Store.LatestFor(r.Context(), assetID)
	if err != nil {
		logger.WithError(err).Error("failed to load latest analysis")
		respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "no analyses for asset")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

func (app *App) DailyStatsHandler(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 365 {
			respondError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	stats, err := app.Stats.ListRecent(r.Context(), days)
	if err != nil {
		logger.WithError(err).Error("failed to load daily stats")
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":  stats,
		"as_of": time.Now().Format("2006-01-02"),
	})
}

// readImage pulls image bytes and asset id out of either a multipart upload
// (fields "image", "asset_id") or a JSON body with base64 content. Writes
// the error response itself when the request is unusable.
func (app *App) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	var imageData []byte
	var assetID string

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
			respondError(w, http.StatusBadRequest, "upload too large")
			return nil, "", false
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			respondError(w, http.StatusBadRequest, "image file is required")
			return nil, "", false
		}
		defer file.Close()

		imageData, err = io.ReadAll(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read image")
			return nil, "", false
		}
		assetID = r.FormValue("asset_id")

	default:
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return nil, "", false
		}

		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			respondError(w, http.StatusBadRequest, "image must be base64-encoded")
			return nil, "", false
		}
		imageData = decoded
		assetID = req.AssetID
	}

	if len(imageData) == 0 {
		respondError(w, http.StatusBadRequest, "image is empty")
		return nil, "", false
	}

	if app.Audit != nil {
		if name, err := app.Audit.SaveImage(imageData, http.DetectContentType(imageData)); err != nil {
			logger.WithError(err).Warn("failed to save audit copy")
		} else {
			logger.WithFields(map[string]interface{}{"audit_file": name}).Debug("saved audit copy")
		}
	}

	return imageData, assetID, true
}

func (app *App) respondAnalysisError(w http.ResponseWriter, err error) {
	var configErr *ocr.ConfigError
	var transportErr *ocr.TransportError
	var providerErr *ocr.ProviderError

	switch {
	case errors.Is(err, ocr.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, "image is not a supported raster format")
	case errors.As(err, &configErr):
		logger.WithError(err).Error("ocr client misconfigured")
		respondError(w, http.StatusInternalServerError, "recognition service is not configured")
	case errors.As(err, &transportErr), errors.As(err, &providerErr):
		logger.WithError(err).Error("ocr provider unavailable")
		respondError(w, http.StatusBadGateway, "recognition service is unavailable")
	default:
		logger.WithError(err).Error("analysis failed")
		respondError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
