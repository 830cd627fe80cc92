package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"webshot/internal/model"
)

// Full pipeline over a fake site: discovery finds the seed plus two in-site
// links and drops the external one, both profiles capture every page minus
// one failure, and the report carries one finding per surviving screenshot.
func TestPipelineEndToEnd(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/pricing">Pricing</a>
			<a href="/docs">Docs</a>
			<a href="https://elsewhere.org/promo">Promo</a>
		</body></html>`)
	}))
	defer site.Close()

	urls := DiscoverURLs(context.Background(), site.URL)
	if len(urls) != 3 {
		t.Fatalf("discovered %d URLs, want 3: %v", len(urls), urls)
	}
	for _, u := range urls {
		if strings.Contains(u, "elsewhere.org") {
			t.Fatalf("external URL leaked into discovery: %v", u)
		}
	}

	renderer := &fakeRenderer{fail: map[string]bool{urls[1]: true}}
	o := NewOrchestrator(renderer, 5)
	galleries := o.CaptureAll(context.Background(), urls, model.DefaultProfiles(), InlineSink{})

	var images []model.ImageRef
	for _, profile := range model.DefaultProfiles() {
		for _, capture := range galleries[profile.Name] {
			images = append(images, capture.Image)
		}
	}

	// 3 URLs x 2 profiles minus the failing URL in both batches.
	if len(images) != 4 {
		t.Fatalf("captured %d screenshots, want 4", len(images))
	}

	var calls int32
	client := fakeInference(t, &calls, func(body string) string {
		if !strings.Contains(body, "image_url") {
			return "SUMMARY: consistent styling\nCOMMON_ISSUES: None\nOVERALL: healthy"
		}
		return "ISSUES_FOUND: false\nDETAILS: No serious styling issues found"
	})

	analyzer := NewAnalyzer(client, 5)
	report, err := analyzer.AnalyzeScreenshots(context.Background(), images)
	if err != nil {
		t.Fatalf("AnalyzeScreenshots() error = %v", err)
	}

	if len(report.Findings) != len(images) {
		t.Errorf("report has %d findings, want %d", len(report.Findings), len(images))
	}
	if !report.Summary.AllPassed {
		t.Errorf("AllPassed = false, want true")
	}
}
