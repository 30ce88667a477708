package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookmarkd/bookmarkd/internal/social"
	"github.com/bookmarkd/bookmarkd/pkg/config"
	"github.com/bookmarkd/bookmarkd/pkg/slug"
	"github.com/bookmarkd/bookmarkd/pkg/telemetry"
)

// validExtensions is the accepted image extension allow-list
var validExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// ValidateURL checks a remote image URL against the extension allow-list
// and returns the extension. Any query string is discarded before the
// extension is derived.
func ValidateURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("%w: url is required", social.ErrValidation)
	}
	trimmed := strings.SplitN(rawURL, "?", 2)[0]
	dot := strings.LastIndex(trimmed, ".")
	if dot < 0 || dot == len(trimmed)-1 {
		return "", fmt.Errorf("%w: url has no file extension", social.ErrValidation)
	}
	ext := strings.ToLower(trimmed[dot+1:])
	if !validExtensions[ext] {
		return "", fmt.Errorf("%w: the given URL does not match valid image extensions: %s", social.ErrValidation, ext)
	}
	return ext, nil
}

// Fetcher downloads remote images into the media root
type Fetcher struct {
	client    *http.Client
	mediaRoot string
	maxBytes  int64
}

// NewFetcher creates a fetcher from image configuration
func NewFetcher(cfg *config.ImagesConfig) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.FetchTimeout},
		mediaRoot: cfg.MediaRoot,
		maxBytes:  cfg.MaxFetchBytes,
	}
}

// Fetch validates the URL, downloads the image, and stores it under the
// media root as <slug-of-title>.<ext>. It returns the stored file name.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, title string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "images.fetch")
	defer span.End()

	ext, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	// Read one byte past the cap so an oversize body is detected rather
	// than stored truncated.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", social.ErrValidation, f.maxBytes)
	}

	name := fmt.Sprintf("%s.%s", slug.Make(title), ext)
	if err := os.MkdirAll(f.mediaRoot, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media root: %w", err)
	}
	if err := os.WriteFile(filepath.Join(f.mediaRoot, name), body, 0o644); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return name, nil
}
