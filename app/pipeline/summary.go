package pipeline

import (
	"fmt"
	"strings"

	"github.com/purplecheck/agent/app/database"
	"github.com/purplecheck/agent/app/reddit"
)

// Receiver recorded when no Instagram handle could be extracted or verified.
const unknownReceiver = "unknown_instagram_user"

const (
	summaryMaxSelftext   = 500
	summaryMaxComments   = 5
	summaryMaxCommentLen = 150
)

// buildSummary assembles the free-text comment stored on a feedback row:
// title, a capped excerpt of the post, the top comments, the permalink and
// the confidence the score came with.
func buildSummary(post database.Post, comments []reddit.Comment, confidence string) string {
	parts := []string{"Title: " + post.Title}

	if post.Selftext != "" {
		parts = append(parts, "Post: "+truncate(post.Selftext, summaryMaxSelftext))
	}

	if len(comments) > 0 {
		parts = append(parts, fmt.Sprintf("\nTop comments (%d):", len(comments)))
		top := comments
		if len(top) > summaryMaxComments {
			top = top[:summaryMaxComments]
		}
		for _, c := range top {
			parts = append(parts, "- "+truncate(c.Body, summaryMaxCommentLen))
		}
	}

	parts = append(parts, "\nReddit link: https://reddit.com"+post.Permalink)
	parts = append(parts, "Confidence: "+confidence)

	return strings.Join(parts, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
