package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostRepository handles database operations for harvested posts
type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// Upsert inserts or replaces a post keyed by its identifier. The source
// document is authoritative, so a re-harvest replaces every content column.
// The processed_at marker and stored comments survive the replace; a post
// seen again after processing stays processed.
func (r *PostRepository) Upsert(post Post) error {
	images, err := json.Marshal(post.ImageURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal image urls: %w", err)
	}

	raw := post.Raw
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	_, err = r.db.Exec(`
		INSERT INTO posts (
			id, fullname, title, selftext, author, subreddit,
			created_utc, permalink, images, comments, raw_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '[]', ?)
		ON CONFLICT (id) DO UPDATE SET
			fullname = excluded.fullname,
			title = excluded.title,
			selftext = excluded.selftext,
			author = excluded.author,
			subreddit = excluded.subreddit,
			created_utc = excluded.created_utc,
			permalink = excluded.permalink,
			images = excluded.images,
			raw_json = excluded.raw_json
	`, post.ID, post.Fullname, post.Title, post.Selftext, post.Author,
		post.Subreddit, post.CreatedUTC, post.Permalink, string(images), string(raw))

	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	return nil
}

const postColumns = `id, fullname, title, selftext, author, subreddit,
       created_utc, permalink, images, comments, raw_json, processed_at, created_at`

// GetUnprocessed returns posts with no processed marker, oldest first.
// A limit of 0 means no limit.
func (r *PostRepository) GetUnprocessed(limit int) ([]Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE processed_at IS NULL
		ORDER BY created_utc ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

// GetPost returns a single post by identifier, or nil when absent.
func (r *PostRepository) GetPost(id string) (*Post, error) {
	row := r.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *PostRepository) UpdateComments(id string, comments []Comment) error {
	data, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}

	_, err = r.db.Exec(`UPDATE posts SET comments = ? WHERE id = ?`, string(data), id)
	if err != nil {
		return fmt.Errorf("failed to update post comments: %w", err)
	}

	return nil
}

func (r *PostRepository) MarkProcessed(id string, at time.Time) error {
	_, err := r.db.Exec(`UPDATE posts SET processed_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark post processed: %w", err)
	}

	return nil
}

func (r *PostRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

func (r *PostRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

func (r *PostRepository) CountUnprocessed() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE processed_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get unprocessed post count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var post Post
	var images, comments, raw string

	err := row.Scan(
		&post.ID, &post.Fullname, &post.Title, &post.Selftext, &post.Author,
		&post.Subreddit, &post.CreatedUTC, &post.Permalink,
		&images, &comments, &raw, &post.ProcessedAt, &post.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return post, err
	}
	if err != nil {
		return post, fmt.Errorf("failed to scan post row: %w", err)
	}

	if images != "" {
		if err := json.Unmarshal([]byte(images), &post.ImageURLs); err != nil {
			return post, fmt.Errorf("failed to unmarshal image urls: %w", err)
		}
	}
	if comments != "" {
		if err := json.Unmarshal([]byte(comments), &post.Comments); err != nil {
			return post, fmt.Errorf("failed to unmarshal comments: %w", err)
		}
	}
	post.Raw = json.RawMessage(raw)

	return post, nil
}
