package handler

import (
	"net/http"

	"doc-intel-pipeline/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const apiPrefix = "/api/v1"

// NewRouterFromContainer builds the router from the wired services.
func NewRouterFromContainer(container *config.Container) http.Handler {
	logger := container.GetLogger()
	pipeline := NewPipelineHandler(container.OCRService, container.ReportService, container.CleanupService, logger)
	auth := NewAPIKeyMiddleware(container.GetConfig().GetAPIKey(), logger)
	return NewRouter(pipeline, auth.Middleware)
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(pipeline *PipelineHandler, authMiddleware func(http.Handler) http.Handler) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"doc-intel-pipeline"}`))
	}).Methods(http.MethodGet)

	// Pipeline routes sit on the root router so a wrong method yields 405.
	protected := func(h http.HandlerFunc) http.Handler { return authMiddleware(h) }
	router.Handle(apiPrefix+"/perform_ocr", protected(pipeline.PerformOCR)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/parse_ocr", protected(pipeline.ParseOCR)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/create_spreadsheet", protected(pipeline.CreateSpreadsheet)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/clean_up", protected(pipeline.CleanUp)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/analyze", protected(pipeline.Analyze)).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-API-Key",
		},
		MaxAge: 300,
	})

	return c.Handler(router)
}
