package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"webshot/internal/artifact"
	"webshot/internal/cache"
	"webshot/internal/config"
	"webshot/internal/inference"
	"webshot/internal/model"
	"webshot/internal/service"
	"webshot/internal/util"
	"webshot/pkg/response"
)

func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	response.Success(w, resp, "")
}

// seedFromRequest validates and normalizes the seed query parameter.
func seedFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return "", false
	}

	seed := r.URL.Query().Get("url")
	if seed == "" {
		response.Error(w, http.StatusBadRequest, "missing 'url' query parameter")
		return "", false
	}

	seed = service.NormalizeSeed(seed)
	if !util.IsValidURL(seed) {
		response.Error(w, http.StatusBadRequest, "invalid 'url' format")
		return "", false
	}

	return seed, true
}

func newOrchestrator() *service.Orchestrator {
	cfg := config.AppConfig
	renderer := service.NewChromeRenderer(time.Duration(cfg.SettleDelaySeconds) * time.Second)
	return service.NewOrchestrator(renderer, cfg.CaptureWorkers)
}

// CaptureHandler discovers all same-site pages for the seed and returns
// per-profile screenshot galleries with base64 payloads. Discovery and
// capture failures shrink the result set; they never fail the request.
func CaptureHandler(w http.ResponseWriter, r *http.Request) {
	seed, ok := seedFromRequest(w, r)
	if !ok {
		return
	}

	urls := service.DiscoverURLs(r.Context(), seed)
	galleries := newOrchestrator().CaptureAll(r.Context(), urls, model.DefaultProfiles(), service.InlineSink{})

	response.Success(w, galleries, "")
}

// AnalyzeHandler runs the full pipeline: discovery, capture into run-scoped
// temporary files, two-phase styling analysis, one Report. Reports are cached
// per seed for a short TTL.
func AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	seed, ok := seedFromRequest(w, r)
	if !ok {
		return
	}

	cfg := config.AppConfig
	if cfg.InferenceAPIKey == "" {
		response.Error(w, http.StatusServiceUnavailable, "analysis is not configured: missing inference API key")
		return
	}

	if cache.Store != nil {
		if cached, found := cache.Store.Get(seed); found {
			response.Success(w, cached, "cached")
			return
		}
	}

	registry, err := artifact.NewRegistry()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, fmt.Sprintf("failed to prepare run: %v", err))
		return
	}
	defer registry.Close()

	urls := service.DiscoverURLs(r.Context(), seed)
	profiles := model.DefaultProfiles()
	galleries := newOrchestrator().CaptureAll(r.Context(), urls, profiles, service.FileSink{Registry: registry})

	// Pool screenshots across profiles in a stable order; this is the
	// submission order findings refer back to.
	var images []model.ImageRef
	for _, profile := range profiles {
		for _, capture := range galleries[profile.Name] {
			images = append(images, capture.Image)
		}
	}

	analyzer := service.NewAnalyzer(inference.New(inference.Options{
		BaseURL:     cfg.InferenceBaseURL,
		APIKey:      cfg.InferenceAPIKey,
		Model:       cfg.InferenceModel,
		MaxTokens:   cfg.InferenceMaxTokens,
		Temperature: cfg.InferenceTemperature,
		TopP:        cfg.InferenceTopP,
		TopK:        cfg.InferenceTopK,
	}), cfg.AnalysisWorkers)

	report, err := analyzer.AnalyzeScreenshots(r.Context(), images)
	if err != nil {
		var statusCode int
		switch {
		case errors.Is(err, service.ErrNoScreenshots):
			response.Error(w, http.StatusBadRequest, "nothing to analyze: no screenshots could be captured")
			return
		case errors.Is(err, context.DeadlineExceeded):
			statusCode = http.StatusGatewayTimeout
		case strings.Contains(err.Error(), "connection refused"),
			strings.Contains(err.Error(), "no such host"):
			statusCode = http.StatusBadGateway
		default:
			statusCode = http.StatusBadGateway
		}
		response.Error(w, statusCode, fmt.Sprintf("failed to analyze screenshots: %v", err))
		return
	}

	if cache.Store != nil {
		cache.Store.Set(seed, report, 0)
	}

	response.Success(w, report, "")
}
