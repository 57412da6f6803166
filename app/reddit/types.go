package reddit

import (
	"encoding/json"
	"strings"
)

// Listing thing kinds used by the Reddit JSON API.
const (
	kindPost    = "t3"
	kindComment = "t1"
	kindListing = "Listing"
)

// Post carries the fields of one submission the pipeline consumes, plus the
// original payload verbatim in Raw.
type Post struct {
	ID         string  `json:"id"`
	Fullname   string  `json:"name"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`

	GalleryData   *galleryData             `json:"gallery_data,omitempty"`
	MediaMetadata map[string]mediaMetadata `json:"media_metadata,omitempty"`
	Preview       *preview                 `json:"preview,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Watermark identifies the newest item seen during a harvest.
type Watermark struct {
	Fullname  string
	Timestamp float64
}

type listingEnvelope struct {
	Kind string `json:"kind"`
	Data struct {
		After    string          `json:"after"`
		Children []thingEnvelope `json:"children"`
	} `json:"data"`
}

type thingEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type galleryData struct {
	Items []struct {
		MediaID string `json:"media_id"`
	} `json:"items"`
}

type mediaMetadata struct {
	Source struct {
		URL string `json:"u"`
	} `json:"s"`
}

type preview struct {
	Images []struct {
		Source struct {
			URL string `json:"url"`
		} `json:"source"`
	} `json:"images"`
}

func decodePost(raw json.RawMessage) (Post, error) {
	var post Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return post, err
	}
	post.Raw = raw
	return post, nil
}

// ImageURLs extracts attachment URLs from a post. Gallery items take
// precedence over the preview image; Reddit HTML-escapes ampersands in both.
func ImageURLs(p *Post) []string {
	var urls []string

	switch {
	case p.GalleryData != nil:
		for _, item := range p.GalleryData.Items {
			meta, ok := p.MediaMetadata[item.MediaID]
			if !ok || meta.Source.URL == "" {
				continue
			}
			urls = append(urls, unescapeURL(meta.Source.URL))
		}
	case p.Preview != nil:
		for _, image := range p.Preview.Images {
			if image.Source.URL == "" {
				continue
			}
			urls = append(urls, unescapeURL(image.Source.URL))
		}
	}

	return urls
}

func unescapeURL(u string) string {
	return strings.ReplaceAll(u, "&amp;", "&")
}
