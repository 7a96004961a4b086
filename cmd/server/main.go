package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/alvaroquispe1998/email-generator/internal/app"
	"github.com/alvaroquispe1998/email-generator/internal/handlers"
)

func main() {
	service, err := app.NewService("config.toml")
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if service.Config.Server.Port == "" {
		logger.Error.Fatalf("Server port is not specified in config, use a value like :9999")
	}

	sessionHandler := handlers.NewSessionHandler(service)

	http.HandleFunc("POST /api/v1/sessions", sessionHandler.HandleCreateSession)
	http.HandleFunc("POST /api/v1/sessions/{id}/directory", sessionHandler.HandleLoadDirectory)
	http.HandleFunc("GET /api/v1/sessions/{id}/mapping", sessionHandler.HandleGetMapping)
	http.HandleFunc("PUT /api/v1/sessions/{id}/mapping", sessionHandler.HandlePutMapping)
	http.HandleFunc("GET /api/v1/sessions/{id}/policy", sessionHandler.HandleGetPolicy)
	http.HandleFunc("PUT /api/v1/sessions/{id}/policy", sessionHandler.HandlePutPolicy)
	http.HandleFunc("GET /api/v1/sessions/{id}/report", sessionHandler.HandleReport)
	http.HandleFunc("PUT /api/v1/sessions/{id}/overrides/{row}", sessionHandler.HandlePutOverride)
	http.HandleFunc("POST /api/v1/sessions/{id}/overrides/alternates", sessionHandler.HandleAlternates)
	http.HandleFunc("GET /api/v1/sessions/{id}/export/manifest", sessionHandler.HandleExportManifest)
	http.HandleFunc("GET /api/v1/sessions/{id}/export/{part}", sessionHandler.HandleExportChunk)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting contact-export server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Contact-export server failed: %v", err)
	}
}
