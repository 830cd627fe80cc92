package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"webshot/internal/artifact"
	"webshot/internal/model"
)

// fakeRenderer returns the URL bytes as the "image", failing for URLs in the
// fail set. Per-URL delays let tests invert completion order.
type fakeRenderer struct {
	mu       sync.Mutex
	fail     map[string]bool
	delays   map[string]time.Duration
	calls    []string
	inFlight int32
	maxSeen  int32
}

func (f *fakeRenderer) Capture(ctx context.Context, targetURL string, profile model.DeviceProfile) ([]byte, error) {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&f.maxSeen)
		if current <= prev || atomic.CompareAndSwapInt32(&f.maxSeen, prev, current) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, profile.Name+" "+targetURL)
	f.mu.Unlock()

	if d := f.delays[targetURL]; d > 0 {
		time.Sleep(d)
	}
	if f.fail[targetURL] {
		return nil, fmt.Errorf("render failed for %s", targetURL)
	}
	return []byte(profile.Name + ":" + targetURL), nil
}

func TestCaptureBatchPreservesOrder(t *testing.T) {
	urls := []string{"https://a.test", "https://b.test", "https://c.test"}
	renderer := &fakeRenderer{
		// First URL finishes last.
		delays: map[string]time.Duration{
			"https://a.test": 60 * time.Millisecond,
			"https://b.test": 30 * time.Millisecond,
		},
	}

	o := NewOrchestrator(renderer, 3)
	captures := o.captureBatch(context.Background(), urls, model.DesktopProfile, InlineSink{})

	if len(captures) != len(urls) {
		t.Fatalf("captured %d results, want %d", len(captures), len(urls))
	}
	for i, c := range captures {
		if c.URL != urls[i] {
			t.Errorf("result %d is %v, want %v", i, c.URL, urls[i])
		}
		if c.Label != "URL: "+urls[i] {
			t.Errorf("result %d label is %v, want %v", i, c.Label, "URL: "+urls[i])
		}
	}
}

func TestCaptureBatchDropsFailuresWithoutReordering(t *testing.T) {
	urls := []string{"https://u1.test", "https://u2.test", "https://u3.test"}
	renderer := &fakeRenderer{
		fail: map[string]bool{"https://u2.test": true},
	}

	o := NewOrchestrator(renderer, 2)
	captures := o.captureBatch(context.Background(), urls, model.DesktopProfile, InlineSink{})

	if len(captures) != 2 {
		t.Fatalf("captured %d results, want 2", len(captures))
	}
	if captures[0].URL != "https://u1.test" || captures[1].URL != "https://u3.test" {
		t.Errorf("surviving order is [%v, %v], want [https://u1.test, https://u3.test]",
			captures[0].URL, captures[1].URL)
	}
}

func TestCaptureAllRespectsWorkerLimit(t *testing.T) {
	var urls []string
	for i := 0; i < 20; i++ {
		urls = append(urls, fmt.Sprintf("https://page%02d.test", i))
	}
	renderer := &fakeRenderer{
		delays: map[string]time.Duration{urls[0]: 10 * time.Millisecond},
	}

	o := NewOrchestrator(renderer, 5)
	o.CaptureAll(context.Background(), urls, model.DefaultProfiles(), InlineSink{})

	if max := atomic.LoadInt32(&renderer.maxSeen); max > 5 {
		t.Errorf("observed %d concurrent captures, want at most 5", max)
	}
}

func TestCaptureAllRunsProfilesSequentially(t *testing.T) {
	urls := []string{"https://a.test", "https://b.test"}
	renderer := &fakeRenderer{}

	o := NewOrchestrator(renderer, 2)
	galleries := o.CaptureAll(context.Background(), urls, model.DefaultProfiles(), InlineSink{})

	if len(galleries["desktop"]) != 2 || len(galleries["mobile"]) != 2 {
		t.Fatalf("galleries = %d desktop, %d mobile, want 2 and 2",
			len(galleries["desktop"]), len(galleries["mobile"]))
	}

	// The desktop batch must drain before any mobile capture starts.
	sawMobile := false
	for _, call := range renderer.calls {
		if strings.HasPrefix(call, "mobile ") {
			sawMobile = true
		}
		if sawMobile && strings.HasPrefix(call, "desktop ") {
			t.Fatalf("desktop capture %q started after a mobile capture", call)
		}
	}
}

func TestSinkVariants(t *testing.T) {
	t.Run("inline sink returns base64", func(t *testing.T) {
		ref, err := InlineSink{}.Store([]byte("png-bytes"))
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if ref.Base64 == "" || ref.Path != "" {
			t.Errorf("inline ref = %+v, want base64 only", ref)
		}
	})

	t.Run("file sink returns registered path", func(t *testing.T) {
		registry, err := artifact.NewRegistry()
		if err != nil {
			t.Fatalf("NewRegistry() error = %v", err)
		}
		defer registry.Close()

		ref, err := FileSink{Registry: registry}.Store([]byte("png-bytes"))
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if ref.Path == "" || ref.Base64 != "" {
			t.Errorf("file ref = %+v, want path only", ref)
		}
	})
}
