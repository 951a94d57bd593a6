package chart

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"airbnb-analytics/utils"
)

// Renderer screenshots chart pages with headless Chrome.
type Renderer struct {
	chromeBin string
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// NewRenderer creates a Renderer. An empty chromeBin triggers a lookup of
// common Chrome/Chromium install locations.
func NewRenderer(chromeBin string, maxRetries int, logger *utils.Logger) *Renderer {
	return &Renderer{
		chromeBin: locateBrowser(chromeBin, exec.LookPath, fileExists),
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Screenshot loads the HTML page at htmlPath and writes a PNG of its chart
// to pngPath.
func (r *Renderer) Screenshot(ctx context.Context, htmlPath, pngPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("chart: resolve %q: %w", htmlPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(pngPath), 0755); err != nil {
		return fmt.Errorf("chart: create output dir: %w", err)
	}

	r.logger.Info("[chart] Using browser binary: %s", r.chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1024, 600),
	)
	if r.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(r.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var png []byte
	err = r.retry.Do(ctx, "chart-screenshot", func() error {
		browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancel()

		browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 30*time.Second)
		defer cancelTimeout()

		return chromedp.Run(browserCtx,
			chromedp.Navigate("file://"+abs),
			chromedp.WaitVisible("#plot", chromedp.ByQuery),
			chromedp.FullScreenshot(&png, 100),
		)
	})
	if err != nil {
		return fmt.Errorf("chart: screenshot: %w", err)
	}

	if err := os.WriteFile(pngPath, png, 0644); err != nil {
		return fmt.Errorf("chart: write %q: %w", pngPath, err)
	}
	r.logger.Info("[chart] Histogram image saved to %s", pngPath)
	return nil
}

// browserNames are searched on PATH, browserPaths on disk, in order.
var (
	browserNames = []string{"chromium", "chromium-browser", "google-chrome-stable", "google-chrome"}
	browserPaths = []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/google-chrome",
	}
)

// locateBrowser returns configured when set (chrome_bin / CHROME_BIN reach it
// through config), otherwise the first known browser found. An empty result
// lets chromedp fall back to its own search.
func locateBrowser(configured string, lookPath func(string) (string, error), exists func(string) bool) string {
	if configured != "" {
		return configured
	}
	for _, name := range browserNames {
		if path, err := lookPath(name); err == nil {
			return path
		}
	}
	for _, p := range browserPaths {
		if exists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
