package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Classification is the relevance verdict for one post.
type Classification struct {
	IsRelevant bool
	// Username is the extracted Instagram handle, normalized to lower case
	// with the leading @ stripped; empty when none could be extracted.
	Username string
}

const classifyPromptFormat = `Analyze this Reddit post to determine if it refers to an Instagram page/account.

Title: %s

Text: %s

Instructions:
1. Determine if this post is about an Instagram page, shop, or seller
2. If yes, extract the Instagram username (handle)
3. Look for patterns like: @username, instagram.com/username, "bought from username", account names mentioned
4. Return ONLY a JSON object with this exact format:
{"is_relevant": true/false, "username": "extracted_username_or_null"}

If no clear Instagram username can be extracted, set username to null but is_relevant can still be true if it clearly refers to Instagram.
Remove @ symbol from username if present. Return lowercase username.`

// Classify asks the inference service whether a post is about an Instagram
// shop and which handle it names.
func (c *Client) Classify(ctx context.Context, title, selftext string, imagePaths []string) (Classification, error) {
	prompt := fmt.Sprintf(classifyPromptFormat, title, selftext)

	response, err := c.complete(ctx, prompt, imagePaths)
	if err != nil {
		return Classification{}, err
	}

	span, ok := ExtractJSONObject(response)
	if !ok {
		return Classification{}, fmt.Errorf("no JSON object in classification response")
	}

	var raw struct {
		IsRelevant bool    `json:"is_relevant"`
		Username   *string `json:"username"`
	}
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return Classification{}, fmt.Errorf("failed to parse classification: %w", err)
	}

	result := Classification{IsRelevant: raw.IsRelevant}
	if raw.Username != nil {
		result.Username = NormalizeHandle(*raw.Username)
	}

	return result, nil
}

var handleLowercaser = cases.Lower(language.Und)

// NormalizeHandle lower-cases an extracted handle and strips whitespace and
// @ markers. "null" from a model that stringifies its nulls becomes empty.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.ReplaceAll(handle, "@", "")
	handle = handleLowercaser.String(handle)
	if handle == "null" || handle == "none" {
		return ""
	}
	return handle
}
