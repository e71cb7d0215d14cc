package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/shopdesk/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	photo := pngBytes(t, 40, 30)
	mux := http.NewServeMux()
	mux.HandleFunc("/photo.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(photo)
	})
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/big.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe(t *testing.T) {
	srv := newImageServer(t)
	prober := NewProber()
	prober.MaxBytes = 1024

	tests := []struct {
		name      string
		path      string
		wantOK    bool
		errSubstr string
	}{
		{"png image", "/photo.png", true, ""},
		{"html page", "/page.html", false, "not a decodable image"},
		{"missing", "/missing.png", false, "HTTP 404"},
		{"too large", "/big.png", false, "larger than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := prober.Probe(context.Background(), srv.URL+tt.path)
			if result.OK() != tt.wantOK {
				t.Fatalf("Expected OK=%v, got %+v", tt.wantOK, result)
			}
			if !tt.wantOK && !strings.Contains(result.Error, tt.errSubstr) {
				t.Errorf("Expected error containing %q, got %q", tt.errSubstr, result.Error)
			}
		})
	}

	result := prober.Probe(context.Background(), srv.URL+"/photo.png")
	if result.Format != "png" || result.Width != 40 || result.Height != 30 {
		t.Errorf("unexpected decode result: %+v", result)
	}
}

func TestProbeAll(t *testing.T) {
	srv := newImageServer(t)
	prober := NewProber()
	prober.Delay = 0

	results := prober.ProbeAll(context.Background(), []string{srv.URL + "/photo.png", srv.URL + "/missing.png"})
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].OK() || results[1].OK() {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestProductURLs(t *testing.T) {
	p := models.Product{
		ImageURL:  "http://main",
		ImagesURL: []string{"http://a", "", "http://b"},
	}

	expected := []string{"http://main", "http://a", "http://b"}
	if diff := cmp.Diff(expected, ProductURLs(p)); diff != "" {
		t.Errorf("urls mismatch (-want +got):\n%s", diff)
	}

	if got := ProductURLs(models.Product{}); len(got) != 0 {
		t.Errorf("Expected no URLs, got %v", got)
	}
}
