// Package snapshot captures a rendered dashboard page with a headless browser.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"k8s.io/klog/v2"
)

// Options configure a capture.
type Options struct {
	Width   int
	Height  int
	Timeout time.Duration
	// WaitFor is a CSS selector that must be visible before the capture.
	WaitFor string
	// Quality is the PNG/JPEG quality; 100 yields PNG.
	Quality int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 900
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.WaitFor == "" {
		o.WaitFor = "#chart-scatter"
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 100
	}
	return o
}

// newContext creates a fresh headless browser with a single tab.
func newContext(parent context.Context, o Options) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(o.Width, o.Height),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	log := klog.FromContext(parent)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		log.V(2).Info(fmt.Sprintf(format, args...))
	}))
	return ctx, func() {
		cancelCtx()
		cancelAlloc()
	}
}

// Capture loads url and returns a full-page screenshot once the WaitFor
// element is visible.
func Capture(ctx context.Context, url string, opt Options) ([]byte, error) {
	if url == "" {
		return nil, errors.New("snapshot: empty url")
	}
	o := opt.withDefaults()
	bctx, cancel := newContext(ctx, o)
	defer cancel()
	bctx, cancelTimeout := context.WithTimeout(bctx, o.Timeout)
	defer cancelTimeout()

	klog.FromContext(ctx).Info("capturing dashboard", "url", url, "width", o.Width, "height", o.Height)
	var buf []byte
	if err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(o.WaitFor, chromedp.ByQuery),
		chromedp.FullScreenshot(&buf, o.Quality),
	); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", url, err)
	}
	return buf, nil
}
