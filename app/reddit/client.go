package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 5 * time.Second
	defaultPageDelay  = time.Second
)

// ErrMalformedResponse marks an undecodable payload. This class is never
// retried.
var ErrMalformedResponse = errors.New("malformed response")

// Client fetches subreddit listings and comment threads. It performs no
// storage; persisting items and advancing cursors is the caller's concern.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	pageDelay  time.Duration
}

func NewClient(httpClient *http.Client, baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		pageDelay:  defaultPageDelay,
	}
}

// HarvestNew collects all posts newer than lastFullname from a subreddit's
// "new" listing, walking continuation pages until the source runs out. The
// returned watermark is the newest-by-timestamp post seen; on a tie it stays
// on the post seen first. A page failing after its retries are exhausted
// ends the walk but keeps everything gathered before it.
func (c *Client) HarvestNew(ctx context.Context, subreddit, lastFullname string, pageLimit int) ([]Post, Watermark, error) {
	watermark := Watermark{Fullname: lastFullname}
	seen := make(map[string]bool)
	var posts []Post
	afterToken := ""

	for {
		var url string
		if afterToken != "" {
			url = fmt.Sprintf("%s/r/%s/new.json?after=%s&limit=%d&raw_json=1",
				c.baseURL, subreddit, afterToken, pageLimit)
		} else {
			url = fmt.Sprintf("%s/r/%s/new.json?before=%s&limit=%d&raw_json=1",
				c.baseURL, subreddit, lastFullname, pageLimit)
		}

		data, err := c.get(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return posts, watermark, ctx.Err()
			}
			// Partial-success policy: pages gathered so far stay usable.
			slog.Warn("Page fetch failed, keeping posts gathered so far",
				"subreddit", subreddit, "collected", len(posts), "error", err)
			break
		}

		var listing listingEnvelope
		if err := json.Unmarshal(data, &listing); err != nil {
			slog.Warn("Listing page undecodable, keeping posts gathered so far",
				"subreddit", subreddit, "collected", len(posts),
				"error", fmt.Errorf("%w: %v", ErrMalformedResponse, err))
			break
		}

		if len(listing.Data.Children) == 0 {
			break
		}

		for _, thing := range listing.Data.Children {
			if thing.Kind != kindPost {
				continue
			}

			post, err := decodePost(thing.Data)
			if err != nil {
				slog.Warn("Skipping undecodable post", "subreddit", subreddit, "error", err)
				continue
			}
			if post.Fullname == "" || seen[post.Fullname] {
				continue
			}
			seen[post.Fullname] = true
			posts = append(posts, post)

			if post.CreatedUTC > watermark.Timestamp {
				watermark.Timestamp = post.CreatedUTC
				watermark.Fullname = post.Fullname
			}
		}

		afterToken = listing.Data.After
		if afterToken == "" {
			break
		}

		// Fair-use delay between listing pages.
		select {
		case <-ctx.Done():
			return posts, watermark, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	return posts, watermark, nil
}

// FetchThread fetches a single thread by permalink and returns its flattened
// comments. The source responds with a two-element array; the first element
// repeats the post and is ignored.
func (c *Client) FetchThread(ctx context.Context, permalink string) ([]Comment, error) {
	url := c.baseURL + permalink + ".json"

	data, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread %s: %w", permalink, err)
	}

	var pages []json.RawMessage
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(pages) < 2 {
		return nil, nil
	}

	tree, err := DecodeNode(pages[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return Flatten(tree), nil
}

// get performs one GET with a bounded fixed-delay retry loop. The response
// body is returned undecoded; decode failures are the caller's to classify
// so they are never retried here.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("Retrying request", "url", url, "attempt", attempt, "max_retries", c.maxRetries)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		data, err := c.doRequest(ctx, url)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
