package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/purplecheck/agent/app/database"
	"github.com/purplecheck/agent/app/llm"
	"github.com/purplecheck/agent/app/reddit"
)

// The checkpoint is flushed to the store every flushInterval completions and
// unconditionally when a run ends, whatever the reason.
const flushInterval = 5

// Engine drives the per-post pipeline over unprocessed posts: image fetch,
// relevance classification, comment fetch, sentiment scoring, feedback
// persistence. Posts are processed one at a time; the engine owns its
// checkpoint and assumes it is the only writer.
type Engine struct {
	posts    PostStore
	feedback FeedbackSink
	llm      Classifier
	threads  ThreadFetcher
	images   ImageFetcher
	checker  ProfileChecker
	limit    int

	checkpoint *checkpoint

	mu    sync.Mutex
	stats Stats
}

// Stats are the per-process engine counters exposed over the status API.
type Stats struct {
	Done      int
	Skipped   int
	LastRunAt *time.Time
}

func NewEngine(posts PostStore, feedback FeedbackSink, classifier Classifier,
	threads ThreadFetcher, images ImageFetcher, checker ProfileChecker, limit int) *Engine {
	return &Engine{
		posts:      posts,
		feedback:   feedback,
		llm:        classifier,
		threads:    threads,
		images:     images,
		checker:    checker,
		limit:      limit,
		checkpoint: newCheckpoint(),
	}
}

// Run processes every unprocessed post once. It returns on the first fatal
// failure: a comment-fetch error, a storage error, or an interrupt. The
// checkpoint is flushed on every exit path, so a rerun resumes exactly after
// the posts that finished.
func (e *Engine) Run(ctx context.Context) (err error) {
	posts, err := e.posts.GetUnprocessed(e.limit)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		slog.Info("No unprocessed posts")
		return nil
	}

	slog.Info("Processing posts", "count", len(posts))
	start := time.Now()

	defer func() {
		if flushErr := e.checkpoint.flush(e.posts); flushErr != nil && err == nil {
			err = flushErr
		}
		now := time.Now().UTC()
		e.mu.Lock()
		e.stats.LastRunAt = &now
		e.mu.Unlock()
	}()

	for i, post := range posts {
		select {
		case <-ctx.Done():
			slog.Warn("Interrupted, saving checkpoint", "completed", e.checkpoint.size())
			return ctx.Err()
		default:
		}

		if e.checkpoint.has(post.ID) {
			continue
		}

		if err := e.processPost(ctx, i+1, len(posts), post); err != nil {
			return err
		}

		if e.checkpoint.pendingCount() >= flushInterval {
			if err := e.checkpoint.flush(e.posts); err != nil {
				return err
			}
			slog.Debug("Checkpoint flushed", "completed", e.checkpoint.size())
		}
	}

	slog.Info("Processing completed", "posts", len(posts), "duration", time.Since(start))
	return nil
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// processPost runs one post through the pipeline. A nil return means the
// post reached a terminal state (done or skipped) and was checkpointed; an
// error return means the run must stop and the post stays eligible for
// reprocessing.
func (e *Engine) processPost(ctx context.Context, idx, total int, post database.Post) error {
	reportItem(idx, total, post.ID, post.Title)

	tempDir, err := os.MkdirTemp("", "reddit_images_")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	imagePaths := e.images.Fetch(ctx, post.ImageURLs, tempDir)

	result, err := e.llm.Classify(ctx, post.Title, post.Selftext, imagePaths)
	if err != nil {
		// Classification errors are non-fatal: skip the post, keep going.
		slog.Warn("Classification failed, skipping post", "post", post.ID, "error", err)
		e.complete(post.ID, false)
		reportSkip("classification failed")
		return nil
	}

	if !result.IsRelevant {
		e.complete(post.ID, false)
		reportSkip("not relevant")
		return nil
	}

	handle := result.Username
	if handle != "" && e.checker != nil {
		exists, err := e.checker.ProfileExists(ctx, handle)
		if err != nil {
			slog.Warn("Profile check failed, keeping handle", "handle", handle, "error", err)
		} else if !exists {
			slog.Debug("Extracted handle has no live profile", "handle", handle)
			handle = ""
		}
	}

	comments, err := e.threads.FetchThread(ctx, post.Permalink)
	if err != nil {
		// Comments are required input to scoring; a source outage halts the
		// batch instead of silently skipping items.
		reportFail("comment fetch failed")
		return fmt.Errorf("failed to fetch comments for %s: %w", post.ID, err)
	}

	if err := e.posts.UpdateComments(post.ID, toDBComments(comments)); err != nil {
		return err
	}

	score, err := e.llm.AnalyzeSentiment(ctx, post.Title, post.Selftext, comments, imagePaths)
	if err != nil {
		slog.Warn("Sentiment scoring failed, using default", "post", post.ID, "error", err)
		score = llm.DefaultScore()
	}

	receiver := handle
	if receiver == "" {
		receiver = unknownReceiver
	}

	summary := buildSummary(post, comments, score.Confidence)
	if err := e.feedback.Upsert(post.Author, receiver, score.Sentiment, summary); err != nil {
		return err
	}

	e.complete(post.ID, true)
	reportDone(receiver, score.Sentiment, score.Confidence)
	return nil
}

func (e *Engine) complete(id string, done bool) {
	e.checkpoint.add(id, time.Now().UTC())

	e.mu.Lock()
	if done {
		e.stats.Done++
	} else {
		e.stats.Skipped++
	}
	e.mu.Unlock()
}

func toDBComments(comments []reddit.Comment) []database.Comment {
	out := make([]database.Comment, len(comments))
	for i, c := range comments {
		out[i] = database.Comment{Author: c.Author, Body: c.Body, Score: c.Score}
	}
	return out
}
