package database

import (
	"database/sql"
	"fmt"
)

// Fixed provenance tags carried on every feedback row.
const (
	feedbackPlatform     = "INSTAGRAM"
	feedbackMedium       = "DIRECT"
	feedbackSource       = "REDDIT"
	feedbackGiverRole    = "buyer"
	feedbackReceiverRole = "seller"
)

var ratingMap = map[string]string{
	"positive": "POSITIVE",
	"negative": "NEGATIVE",
	"neutral":  "NEUTRAL",
}

// RatingFromSentiment maps a sentiment label to a rating value. Unknown
// labels fall back to the neutral rating rather than erroring.
func RatingFromSentiment(sentiment string) string {
	if rating, ok := ratingMap[sentiment]; ok {
		return rating
	}
	return "NEUTRAL"
}

// FeedbackRepository handles database operations for feedback rows
type FeedbackRepository struct {
	db *DB
}

func NewFeedbackRepository(db *DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Upsert writes one feedback row keyed on (giver, receiver). A second write
// for the same pair replaces rating and comment and bumps updated_at; last
// write wins.
func (r *FeedbackRepository) Upsert(giver, receiver, sentiment, comment string) error {
	rating := RatingFromSentiment(sentiment)

	_, err := r.db.Exec(`
		INSERT INTO feedback (giver, receiver, rating, comment, platform, medium, source, giver_role, receiver_role)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (giver, receiver) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			updated_at = CURRENT_TIMESTAMP
	`, giver, receiver, rating, comment,
		feedbackPlatform, feedbackMedium, feedbackSource, feedbackGiverRole, feedbackReceiverRole)

	if err != nil {
		return fmt.Errorf("failed to upsert feedback: %w", err)
	}

	return nil
}

// Get returns the feedback row for a (giver, receiver) pair, or nil when absent.
func (r *FeedbackRepository) Get(giver, receiver string) (*Feedback, error) {
	var fb Feedback
	err := r.db.QueryRow(`
		SELECT id, giver, receiver, rating, comment, platform, medium, source,
		       giver_role, receiver_role, created_at, updated_at
		FROM feedback
		WHERE giver = ? AND receiver = ?
	`, giver, receiver).Scan(
		&fb.ID, &fb.Giver, &fb.Receiver, &fb.Rating, &fb.Comment,
		&fb.Platform, &fb.Medium, &fb.Source, &fb.GiverRole, &fb.ReceiverRole,
		&fb.CreatedAt, &fb.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	return &fb, nil
}

func (r *FeedbackRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM feedback`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feedback count: %w", err)
	}
	return count, nil
}
