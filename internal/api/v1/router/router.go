package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"webshot/internal/api/v1/handler"
	"webshot/internal/api/v1/middleware"
	"webshot/internal/config"
	"webshot/internal/log"
)

func New() http.Handler {
	appName := "webshot"
	apiVersion := "v1"
	basePath := "/" + appName + "/api/" + apiVersion

	mux := http.NewServeMux()

	register := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(basePath+path, h)
	}

	register("/health", handler.HealthCheckHandler)
	register("/capture", handler.CaptureHandler)
	register("/analyze", handler.AnalyzeHandler)

	basicAuth := middleware.BasicAuth(config.AppConfig.BasicAuthUser, config.AppConfig.BasicAuthPass)

	return middleware.RecoverPanic(
		log.Logger,
		func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		middleware.SecureHeaders(
			middleware.Logging(
				middleware.Metrics(
					middleware.CORS(
						middleware.RateLimit(
							basicAuth(mux),
						),
					),
				),
			),
		),
	)
}

func NewMetricsRouter() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
