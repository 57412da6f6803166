package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/purplecheck/agent/app/config"
	"github.com/purplecheck/agent/app/database"
	"github.com/purplecheck/agent/app/reddit"
)

// Harvester walks the enabled sources, pulls everything newer than each
// source's cursor, stores it and advances the cursor. Sources are processed
// one at a time; cursor state is saved after each source so an interrupted
// cycle loses at most the source in flight.
type Harvester struct {
	sources *config.Cache
	client  ListingFetcher
	posts   PostStore
	cursors CursorStore
}

func NewHarvester(sources *config.Cache, client ListingFetcher, posts PostStore, cursors CursorStore) *Harvester {
	return &Harvester{
		sources: sources,
		client:  client,
		posts:   posts,
		cursors: cursors,
	}
}

func (h *Harvester) Run(ctx context.Context) error {
	sources := h.sources.GetEnabledSources()
	if len(sources) == 0 {
		slog.Debug("No enabled sources configured")
		return nil
	}

	start := time.Now()
	total := 0

	for _, src := range sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		count, err := h.harvestSource(ctx, src)
		if err != nil {
			return err
		}
		total += count
	}

	slog.Info("Harvest cycle completed", "sources", len(sources), "new_posts", total, "duration", time.Since(start))
	return nil
}

func (h *Harvester) harvestSource(ctx context.Context, src *config.Source) (int, error) {
	cur, err := h.cursors.Get(src.Name)
	if err != nil {
		return 0, err
	}
	if cur == nil {
		// No watermark means no deliberate starting point; harvesting would
		// bulk-import the source's entire history.
		slog.Info("No cursor recorded for source, skipping", "source", src.Name)
		return 0, nil
	}

	posts, watermark, err := h.client.HarvestNew(ctx, src.Subreddit, cur.LastFullname, src.Settings.PageLimit)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		slog.Debug("No new posts", "source", src.Name)
		return 0, nil
	}

	for _, post := range posts {
		if err := h.posts.Upsert(toDBPost(post)); err != nil {
			return 0, err
		}
	}

	next := *cur
	next.TotalFetched += len(posts)
	next.LastFetchTime = time.Now().UTC()
	if watermark.Timestamp > cur.LastTimestamp {
		next.LastFullname = watermark.Fullname
		next.LastTimestamp = watermark.Timestamp
	}

	if err := h.cursors.Put(src.Name, next); err != nil {
		return 0, err
	}

	slog.Info("Source harvested", "source", src.Name, "new_posts", len(posts), "watermark", next.LastFullname)
	return len(posts), nil
}

func toDBPost(p reddit.Post) database.Post {
	return database.Post{
		ID:         p.ID,
		Fullname:   p.Fullname,
		Title:      p.Title,
		Selftext:   p.Selftext,
		Author:     p.Author,
		Subreddit:  p.Subreddit,
		CreatedUTC: p.CreatedUTC,
		Permalink:  p.Permalink,
		ImageURLs:  reddit.ImageURLs(&p),
		Raw:        p.Raw,
	}
}
