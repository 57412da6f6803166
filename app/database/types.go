package database

import (
	"encoding/json"
	"time"
)

// Post is a harvested submission row. The original listing payload is
// retained verbatim in Raw for forward compatibility.
type Post struct {
	ID          string
	Fullname    string // source-namespaced id (t3_xxx), used for cursors and dedup
	Title       string
	Selftext    string
	Author      string
	Subreddit   string
	CreatedUTC  float64 // seconds since epoch, as assigned by the source
	Permalink   string
	ImageURLs   []string
	Comments    []Comment
	ProcessedAt *time.Time
	Raw         json.RawMessage
	CreatedAt   time.Time
}

// Comment is one flattened reply attached to a post.
type Comment struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	Score  int    `json:"score"`
}

// Feedback is one persisted classification result, unique on (giver, receiver).
type Feedback struct {
	ID           int64
	Giver        string
	Receiver     string
	Rating       string
	Comment      string
	Platform     string
	Medium       string
	Source       string
	GiverRole    string
	ReceiverRole string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
