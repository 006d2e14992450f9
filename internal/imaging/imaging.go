package imaging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	removeBgEndpoint = "https://api.remove.bg/v1.0/removebg"
	// PublicPrefix is where the products directory is served from.
	PublicPrefix = "/uploads/products/"
)

// ProcessError reports a failed background removal. The processor recovers
// from it by keeping the original image.
type ProcessError struct {
	ProductID string
	Status    int
	Err       error
}

func (e *ProcessError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("process image for product %s: status %d: %v", e.ProductID, e.Status, e.Err)
	}
	return fmt.Sprintf("process image for product %s: %v", e.ProductID, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Processor stores product images under <uploadDir>/products and, when an API
// key is configured, replaces their background through remove.bg.
type Processor struct {
	apiKey   string
	endpoint string
	dir      string
	client   httpDoer
	logger   *log.Logger
	now      func() time.Time
}

func NewProcessor(uploadDir, apiKey string, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Processor{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: removeBgEndpoint,
		dir:      filepath.Join(uploadDir, "products"),
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
		now:      time.Now,
	}
}

// Dir is the directory product images are written to.
func (p *Processor) Dir() string { return p.dir }

// SaveOriginal writes an uploaded file as original_<id>_<ticks><ext> and
// returns its path on disk.
func (p *Processor) SaveOriginal(productID, fileName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	path := filepath.Join(p.dir, fmt.Sprintf("original_%s_%d%s", productID, p.now().UnixNano(), ext))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create original image: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write original image: %w", err)
	}
	return path, nil
}

// ProcessProductImage produces product_<id>_<ticks>.png from the original file
// and returns its public URL. A failed background removal is logged and the
// original bytes are kept instead.
func (p *Processor) ProcessProductImage(ctx context.Context, originalPath, productID string) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("product_%s_%d.png", productID, p.now().UnixNano())
	target := filepath.Join(p.dir, name)

	if p.apiKey != "" {
		err := p.removeBackground(ctx, originalPath, target, productID)
		if err == nil {
			p.logger.Printf("imaging: background removed product_id=%s file=%s", productID, name)
			return PublicPrefix + name, nil
		}
		p.logger.Printf("imaging: %v, keeping original", err)
	}

	if err := copyFile(originalPath, target); err != nil {
		return "", fmt.Errorf("copy original image: %w", err)
	}
	p.logger.Printf("imaging: stored product_id=%s file=%s", productID, name)
	return PublicPrefix + name, nil
}

func (p *Processor) removeBackground(ctx context.Context, inputPath, outputPath, productID string) error {
	fail := func(status int, err error) error {
		return &ProcessError{ProductID: productID, Status: status, Err: err}
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fail(0, err)
	}
	defer in.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image_file", filepath.Base(inputPath))
	if err != nil {
		return fail(0, err)
	}
	if _, err := io.Copy(part, in); err != nil {
		return fail(0, err)
	}
	_ = form.WriteField("size", "auto")
	_ = form.WriteField("bg_color", "white")
	if err := form.Close(); err != nil {
		return fail(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &body)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fail(resp.StatusCode, fmt.Errorf("remove.bg: %s", strings.TrimSpace(string(msg))))
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fail(0, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fail(0, err)
	}
	if err := out.Close(); err != nil {
		return fail(0, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
