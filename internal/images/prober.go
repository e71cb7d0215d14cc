package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/shopdesk/internal/imagelist"
	"github.com/lehigh-university-libraries/shopdesk/internal/models"
)

// Prober checks that product image URLs resolve to decodable images
type Prober struct {
	HTTPClient *http.Client
	// Delay is the pause between consecutive requests in ProbeAll
	Delay    time.Duration
	MaxBytes int64
}

// NewProber creates a new image prober
func NewProber() *Prober {
	return &Prober{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Delay:    200 * time.Millisecond,
		MaxBytes: 10 * 1024 * 1024,
	}
}

// Result describes one probed URL. Error is empty when the URL served a decodable image.
type Result struct {
	URL         string `json:"url" yaml:"url"`
	StatusCode  int    `json:"status_code" yaml:"status_code"`
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Bytes       int    `json:"bytes" yaml:"bytes"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
	Width       int    `json:"width" yaml:"width"`
	Height      int    `json:"height" yaml:"height"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the probe found a usable image
func (r Result) OK() bool {
	return r.Error == ""
}

// ProductURLs lists a product's main image followed by its non-empty gallery images
func ProductURLs(p models.Product) []string {
	urls := make([]string, 0, 1+len(p.ImagesURL))
	if p.ImageURL != "" {
		urls = append(urls, p.ImageURL)
	}
	return append(urls, imagelist.Submission(p.ImagesURL)...)
}

// Probe downloads url and decodes its image header
func (p *Prober) Probe(ctx context.Context, url string) Result {
	result := Result{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("invalid URL: %v", err)
		return result
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("failed to download image: %v", err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.ContentType = resp.Header.Get("Content-Type")

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("failed to download image: HTTP %d", resp.StatusCode)
		return result
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.MaxBytes+1))
	if err != nil {
		result.Error = fmt.Sprintf("failed to read image data: %v", err)
		return result
	}
	result.Bytes = len(data)
	if int64(len(data)) > p.MaxBytes {
		result.Error = fmt.Sprintf("image larger than %d bytes", p.MaxBytes)
		return result
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		result.Error = fmt.Sprintf("not a decodable image: %v", err)
		return result
	}
	result.Format = format
	result.Width = cfg.Width
	result.Height = cfg.Height
	return result
}

// ProbeAll probes urls one at a time, pausing Delay between requests
func (p *Prober) ProbeAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, 0, len(urls))
	for i, url := range urls {
		if i > 0 && p.Delay > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(p.Delay):
			}
		}

		result := p.Probe(ctx, url)
		if result.OK() {
			slog.Debug("Probed image", "url", url, "format", result.Format, "width", result.Width, "height", result.Height)
		} else {
			slog.Warn("Image probe failed", "url", url, "error", result.Error)
		}
		results = append(results, result)
	}
	return results
}
