package instagram

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// Checker verifies that an extracted handle points at a live Instagram
// profile. Live profiles serve OpenGraph meta tags; placeholder pages for
// missing accounts do not.
type Checker struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewChecker(httpClient *http.Client, userAgent string) *Checker {
	return &Checker{
		baseURL:    "https://www.instagram.com",
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// ProfileExists fetches the profile page for a handle and reports whether it
// carries OpenGraph tags. A non-2xx response means the profile is absent; a
// transport failure is returned as an error so the caller can decide.
func (c *Checker) ProfileExists(ctx context.Context, handle string) (bool, error) {
	url := c.baseURL + "/" + handle + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to fetch profile page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to parse profile page: %w", err)
	}

	return doc.Find(`meta[property^="og:"]`).Length() > 0, nil
}
