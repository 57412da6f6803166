package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var knownExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Fetcher downloads post attachments into a caller-owned directory. A URL
// that fails to download is simply omitted from the result; image loss never
// fails an item.
type Fetcher struct {
	userAgent  string
	httpClient *http.Client
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{userAgent: userAgent, httpClient: httpClient}
}

// Fetch downloads each URL into dir and returns the paths that succeeded.
func (f *Fetcher) Fetch(ctx context.Context, urls []string, dir string) []string {
	var paths []string

	for _, url := range urls {
		path, err := f.download(ctx, url, dir)
		if err != nil {
			slog.Warn("Failed to download image", "url", url, "error", err)
			continue
		}
		paths = append(paths, path)
	}

	return paths
}

func (f *Fetcher) download(ctx context.Context, url, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	path := filepath.Join(dir, fileNameFromURL(url))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if n == 0 {
		os.Remove(path)
		return "", fmt.Errorf("empty image body")
	}

	return path, nil
}

func fileNameFromURL(url string) string {
	name := url
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, "?"); idx != -1 {
		name = name[:idx]
	}
	if name == "" {
		name = "image"
	}

	for _, ext := range knownExtensions {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name
		}
	}
	return name + ".jpg"
}
