package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Renderer rasterizes exported Markdown to PDF.
type Renderer interface {
	Render(ctx context.Context, markdown string, layout Layout) ([]byte, error)
}

// ChromeRenderer prints through a headless Chrome. Each call starts its own
// browser; Chrome or Chromium must be installed.
type ChromeRenderer struct {
	// ExecPath overrides the browser binary; empty lets chromedp search.
	ExecPath string
	Timeout  time.Duration
}

// NewChromeRenderer returns a renderer with the given per-render timeout.
func NewChromeRenderer(execPath string, timeout time.Duration) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChromeRenderer{ExecPath: execPath, Timeout: timeout}
}

func (r *ChromeRenderer) Render(ctx context.Context, markdown string, layout Layout) ([]byte, error) {
	layout = layout.OrDefault()
	doc, err := ToHTML(markdown, layout)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.Timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(layout.PaperWidth).
				WithPaperHeight(layout.PaperHeight).
				WithMarginTop(layout.Margin).
				WithMarginBottom(layout.Margin).
				WithMarginLeft(layout.Margin).
				WithMarginRight(layout.Margin).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome print: %w", err)
	}
	return pdf, nil
}
