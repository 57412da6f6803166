package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/purplecheck/agent/app/reddit"
)

// Score is the sentiment verdict for one post.
type Score struct {
	Sentiment  string // positive, negative or neutral
	Confidence string // high, medium or low
}

// DefaultScore is the conservative fallback used when scoring fails.
func DefaultScore() Score {
	return Score{Sentiment: "neutral", Confidence: "low"}
}

const scorePromptFormat = `Analyze the sentiment of this feedback about an Instagram seller.

Title: %s

Post: %s

Comments:
%s

Instructions:
Determine if this is positive, negative, or neutral feedback about the Instagram seller.
Return ONLY a JSON object with this exact format:
{"sentiment": "positive/negative/neutral", "confidence": "high/medium/low"}

Consider:
- Words like scam, fraud, fake, disappointed = negative
- Words like genuine, great, recommend, satisfied = positive
- Complaints about product quality, delivery, refunds = negative
- Praise about service, product, communication = positive`

const (
	scoreMaxComments   = 10
	scoreMaxCommentLen = 200
	scoreMaxImages     = 3
)

// AnalyzeSentiment asks the inference service to score the feedback carried
// by a post and its comments. At most the top ten comments and three images
// go into the request.
func (c *Client) AnalyzeSentiment(ctx context.Context, title, selftext string, comments []reddit.Comment, imagePaths []string) (Score, error) {
	prompt := fmt.Sprintf(scorePromptFormat, title, selftext, formatComments(comments))

	if len(imagePaths) > scoreMaxImages {
		imagePaths = imagePaths[:scoreMaxImages]
	}

	response, err := c.complete(ctx, prompt, imagePaths)
	if err != nil {
		return Score{}, err
	}

	span, ok := ExtractJSONObject(response)
	if !ok {
		return Score{}, fmt.Errorf("no JSON object in sentiment response")
	}

	var raw struct {
		Sentiment  string `json:"sentiment"`
		Confidence string `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return Score{}, fmt.Errorf("failed to parse sentiment: %w", err)
	}

	score := Score{
		Sentiment:  strings.ToLower(strings.TrimSpace(raw.Sentiment)),
		Confidence: strings.ToLower(strings.TrimSpace(raw.Confidence)),
	}
	if score.Sentiment == "" {
		score.Sentiment = "neutral"
	}
	if score.Confidence == "" {
		score.Confidence = "low"
	}

	return score, nil
}

func formatComments(comments []reddit.Comment) string {
	if len(comments) == 0 {
		return "No comments"
	}

	if len(comments) > scoreMaxComments {
		comments = comments[:scoreMaxComments]
	}

	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		body := c.Body
		if len(body) > scoreMaxCommentLen {
			body = body[:scoreMaxCommentLen]
		}
		lines = append(lines, fmt.Sprintf("- %s (score %d): %s", c.Author, c.Score, body))
	}

	return strings.Join(lines, "\n")
}
