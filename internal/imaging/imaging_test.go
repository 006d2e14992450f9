package imaging

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eshop/internal/domain"
)

func newTestProcessor(t *testing.T, apiKey string) *Processor {
	t.Helper()
	p := NewProcessor(t.TempDir(), apiKey, nil)
	p.now = func() time.Time { return time.Unix(0, 42) }
	return p
}

func writeOriginal(t *testing.T, p *Processor) string {
	t.Helper()
	path, err := p.SaveOriginal("p1", "photo.JPG", strings.NewReader("original-bytes"))
	if err != nil {
		t.Fatalf("save original: %v", err)
	}
	if filepath.Base(path) != "original_p1_42.jpg" {
		t.Fatalf("unexpected original name %s", filepath.Base(path))
	}
	return path
}

func TestProcessWithoutKeyCopiesOriginal(t *testing.T) {
	p := newTestProcessor(t, "")
	orig := writeOriginal(t, p)

	url, err := p.ProcessProductImage(context.Background(), orig, "p1")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if url != "/uploads/products/product_p1_42.png" {
		t.Fatalf("unexpected url %s", url)
	}
	data, _ := os.ReadFile(filepath.Join(p.Dir(), "product_p1_42.png"))
	if string(data) != "original-bytes" {
		t.Fatalf("expected copied bytes, got %q", data)
	}
}

func TestProcessUsesRemoveBg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "key" {
			t.Errorf("missing api key header")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("size") != "auto" || r.FormValue("bg_color") != "white" {
			t.Errorf("unexpected form values %v", r.MultipartForm.Value)
		}
		file, _, err := r.FormFile("image_file")
		if err != nil {
			t.Errorf("image_file: %v", err)
		} else {
			file.Close()
		}
		_, _ = io.WriteString(w, "processed-png")
	}))
	defer srv.Close()

	p := newTestProcessor(t, "key")
	p.endpoint = srv.URL
	orig := writeOriginal(t, p)

	if _, err := p.ProcessProductImage(context.Background(), orig, "p1"); err != nil {
		t.Fatalf("process: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(p.Dir(), "product_p1_42.png"))
	if string(data) != "processed-png" {
		t.Fatalf("expected processed bytes, got %q", data)
	}
}

func TestProcessFallsBackOnRemoveBgFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "credits exhausted", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	p := newTestProcessor(t, "key")
	p.endpoint = srv.URL
	orig := writeOriginal(t, p)

	url, err := p.ProcessProductImage(context.Background(), orig, "p1")
	if err != nil {
		t.Fatalf("process should fall back, got %v", err)
	}
	if !strings.HasSuffix(url, "product_p1_42.png") {
		t.Fatalf("unexpected url %s", url)
	}
	data, _ := os.ReadFile(filepath.Join(p.Dir(), "product_p1_42.png"))
	if string(data) != "original-bytes" {
		t.Fatalf("expected original bytes after fallback, got %q", data)
	}
}

func TestRemoveBackgroundReturnsProcessError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := newTestProcessor(t, "key")
	p.endpoint = srv.URL
	orig := writeOriginal(t, p)

	err := p.removeBackground(context.Background(), orig, filepath.Join(p.Dir(), "out.png"), "p1")
	var procErr *ProcessError
	if !errors.As(err, &procErr) || procErr.Status != http.StatusBadRequest {
		t.Fatalf("expected ProcessError with status 400, got %v", err)
	}
}

func TestMatchImages(t *testing.T) {
	products := []domain.Product{
		{ID: "1", Name: "Ultra 4k monitor 27\""},
		{ID: "2", Name: "Wireless Headphones"},
		{ID: "3", Name: "Yoga Mat"},
		{ID: "4", Name: "Coffee Maker Deluxe"},
	}
	files := []string{
		"product_wireless_headphones_2.png",
		"product_4k_monitor_1.png",
		"product_wireless_headphones_1.png",
		"product_yoga_mat.jpg",
		"original_3_1.png",
	}

	got := MatchImages(products, files, DefaultRules)
	want := map[string]string{
		"1": "/uploads/products/product_4k_monitor_1.png",
		"2": "/uploads/products/product_wireless_headphones_1.png",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d assignments, got %+v", len(want), got)
	}
	for _, a := range got {
		if want[a.ProductID] != a.ImageURL {
			t.Fatalf("product %s: expected %s, got %s", a.ProductID, want[a.ProductID], a.ImageURL)
		}
	}
}

func TestListFilesMissingDir(t *testing.T) {
	p := NewProcessor(filepath.Join(t.TempDir(), "absent"), "", nil)
	files, err := p.ListFiles()
	if err != nil || len(files) != 0 {
		t.Fatalf("expected no files, got %v %v", files, err)
	}
}
