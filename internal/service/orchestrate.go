package service

import (
	"context"
	"encoding/base64"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"webshot/internal/artifact"
	"webshot/internal/log"
	"webshot/internal/model"
)

var capturesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "webshot_captures_total",
		Help: "Total number of screenshot captures by profile and status",
	},
	[]string{"profile", "status"},
)

func init() {
	prometheus.MustRegister(capturesTotal)
}

// Sink stores one captured image and returns a reference to it. A sink is
// chosen once per run; inline and file references are never mixed.
type Sink interface {
	Store(img []byte) (model.ImageRef, error)
}

// InlineSink encodes screenshots to base64 for programmatic callers.
type InlineSink struct{}

func (InlineSink) Store(img []byte) (model.ImageRef, error) {
	return model.ImageRef{Base64: base64.StdEncoding.EncodeToString(img)}, nil
}

// FileSink stages screenshots as temporary PNG files owned by the run's
// artifact registry.
type FileSink struct {
	Registry *artifact.Registry
}

func (s FileSink) Store(img []byte) (model.ImageRef, error) {
	path, err := s.Registry.Create(img)
	if err != nil {
		return model.ImageRef{}, err
	}
	return model.ImageRef{Path: path}, nil
}

// Orchestrator runs the renderer over a URL set for each device profile under
// a bounded worker pool.
type Orchestrator struct {
	renderer Renderer
	workers  int
}

func NewOrchestrator(renderer Renderer, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{renderer: renderer, workers: workers}
}

// CaptureAll captures every URL under every profile and returns the surviving
// captures keyed by profile name. Profiles run one batch at a time; within a
// batch at most `workers` sessions render concurrently, and results keep the
// input URL order regardless of completion order. Failed captures are dropped
// from the output without aborting the rest of the batch.
func (o *Orchestrator) CaptureAll(ctx context.Context, urls []string, profiles []model.DeviceProfile, sink Sink) map[string][]model.Capture {
	galleries := make(map[string][]model.Capture, len(profiles))
	for _, profile := range profiles {
		galleries[profile.Name] = o.captureBatch(ctx, urls, profile, sink)
	}
	return galleries
}

// captureBatch drains one profile's batch before returning. Results are
// collected in a slice indexed by URL position so ordering survives
// concurrent completion; failures leave nil holes that are compacted out.
func (o *Orchestrator) captureBatch(ctx context.Context, urls []string, profile model.DeviceProfile, sink Sink) []model.Capture {
	log.Logger.Info("starting capture batch",
		zap.String("profile", profile.Name),
		zap.Int("url_count", len(urls)),
		zap.Int("workers", o.workers),
	)

	results := make([]*model.Capture, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, targetURL := range urls {
		i, targetURL := i, targetURL
		g.Go(func() error {
			img, err := o.renderer.Capture(gctx, targetURL, profile)
			if err != nil {
				capturesTotal.WithLabelValues(profile.Name, "failure").Inc()
				return nil
			}

			ref, err := sink.Store(img)
			if err != nil {
				log.Logger.Warn("failed to store screenshot",
					zap.String("url", targetURL),
					zap.String("profile", profile.Name),
					zap.Error(err),
				)
				capturesTotal.WithLabelValues(profile.Name, "failure").Inc()
				return nil
			}

			results[i] = &model.Capture{
				URL:   targetURL,
				Label: "URL: " + targetURL,
				Image: ref,
			}
			capturesTotal.WithLabelValues(profile.Name, "success").Inc()
			return nil
		})
	}

	// Workers swallow capture errors, so Wait only reports ctx cancellation.
	_ = g.Wait()

	captures := make([]model.Capture, 0, len(urls))
	for _, c := range results {
		if c != nil {
			captures = append(captures, *c)
		}
	}

	log.Logger.Info("capture batch finished",
		zap.String("profile", profile.Name),
		zap.Int("captured", len(captures)),
		zap.Int("failed", len(urls)-len(captures)),
	)
	return captures
}
