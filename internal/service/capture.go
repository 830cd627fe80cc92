package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
	"go.uber.org/zap"
	"webshot/internal/log"
	"webshot/internal/model"
)

// Renderer produces a viewport screenshot of one URL under one device
// profile, or a capture failure. Implementations must never leak a browser
// session past a single call.
type Renderer interface {
	Capture(ctx context.Context, targetURL string, profile model.DeviceProfile) ([]byte, error)
}

// ChromeRenderer renders pages in an isolated headless-Chrome session per
// call. Sessions are never pooled or reused; the deferred cancels tear the
// browser down even when navigation or the screenshot fails.
type ChromeRenderer struct {
	settleDelay time.Duration
}

func NewChromeRenderer(settleDelay time.Duration) *ChromeRenderer {
	return &ChromeRenderer{settleDelay: settleDelay}
}

func (r *ChromeRenderer) Capture(ctx context.Context, targetURL string, profile model.DeviceProfile) ([]byte, error) {
	log.Logger.Info("taking screenshot",
		zap.String("url", targetURL),
		zap.String("profile", profile.Name),
	)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(int(profile.Width), int(profile.Height)),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tasks := chromedp.Tasks{emulateProfile(profile)}
	var shot []byte
	tasks = append(tasks,
		chromedp.Navigate(targetURL),
		// Flat settle delay for above-the-fold rendering; no DOM-ready or
		// network-idle signal is used.
		chromedp.Sleep(r.settleDelay),
		chromedp.CaptureScreenshot(&shot),
	)

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		log.Logger.Warn("screenshot failed",
			zap.String("url", targetURL),
			zap.String("profile", profile.Name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to capture %s (%s): %w", targetURL, profile.Name, err)
	}

	return shot, nil
}

// emulateProfile maps a device profile onto the browser session: full device
// metrics plus user agent for mobile emulation, plain viewport otherwise.
func emulateProfile(profile model.DeviceProfile) chromedp.Action {
	if profile.Mobile {
		return chromedp.Emulate(device.Info{
			Name:      profile.Name,
			UserAgent: profile.UserAgent,
			Width:     profile.Width,
			Height:    profile.Height,
			Scale:     profile.PixelRatio,
			Mobile:    true,
			Touch:     true,
		})
	}
	return chromedp.EmulateViewport(profile.Width, profile.Height)
}
