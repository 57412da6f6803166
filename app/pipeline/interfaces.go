package pipeline

import (
	"context"
	"time"

	"github.com/purplecheck/agent/app/cursor"
	"github.com/purplecheck/agent/app/database"
	"github.com/purplecheck/agent/app/llm"
	"github.com/purplecheck/agent/app/reddit"
)

// Narrow views over the collaborators, sized to what the pipeline calls.

type ListingFetcher interface {
	HarvestNew(ctx context.Context, subreddit, lastFullname string, pageLimit int) ([]reddit.Post, reddit.Watermark, error)
}

type ThreadFetcher interface {
	FetchThread(ctx context.Context, permalink string) ([]reddit.Comment, error)
}

type Classifier interface {
	Classify(ctx context.Context, title, selftext string, imagePaths []string) (llm.Classification, error)
	AnalyzeSentiment(ctx context.Context, title, selftext string, comments []reddit.Comment, imagePaths []string) (llm.Score, error)
}

type ImageFetcher interface {
	Fetch(ctx context.Context, urls []string, dir string) []string
}

type ProfileChecker interface {
	ProfileExists(ctx context.Context, handle string) (bool, error)
}

type PostStore interface {
	Upsert(post database.Post) error
	GetUnprocessed(limit int) ([]database.Post, error)
	UpdateComments(id string, comments []database.Comment) error
	MarkProcessed(id string, at time.Time) error
}

type FeedbackSink interface {
	Upsert(giver, receiver, sentiment, comment string) error
}

type CursorStore interface {
	Get(source string) (*cursor.Cursor, error)
	Put(source string, cur cursor.Cursor) error
}
