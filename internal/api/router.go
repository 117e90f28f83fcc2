package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Post("/analyze/document", app.AnalyzeDocumentHandler)
	r.Post("/analyze/panel", app.AnalyzePanelHandler)

	r.Get("/assets/{assetID}/analysis/latest", app.LatestAnalysisHandler)
	r.Get("/stats/daily", app.DailyStatsHandler)

	return r
}
