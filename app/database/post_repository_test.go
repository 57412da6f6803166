package database

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func testPost(id string, createdUTC float64) Post {
	return Post{
		ID:         id,
		Fullname:   "t3_" + id,
		Title:      "title " + id,
		Selftext:   "body " + id,
		Author:     "author",
		Subreddit:  "testsub",
		CreatedUTC: createdUTC,
		Permalink:  "/r/testsub/comments/" + id + "/",
		ImageURLs:  []string{"https://i.redd.it/" + id + ".jpg"},
		Raw:        json.RawMessage(`{"id": "` + id + `"}`),
	}
}

func TestUpsertAndGetPost(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	post, err := repo.GetPost("abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if post == nil {
		t.Fatal("Expected post, got nil")
	}
	if post.Fullname != "t3_abc" {
		t.Errorf("Expected fullname 't3_abc', got '%s'", post.Fullname)
	}
	if post.CreatedUTC != 100 {
		t.Errorf("Expected created_utc 100, got %g", post.CreatedUTC)
	}
	if len(post.ImageURLs) != 1 {
		t.Errorf("Expected 1 image URL, got %d", len(post.ImageURLs))
	}
	if post.ProcessedAt != nil {
		t.Errorf("Expected new post to be unprocessed, got %v", post.ProcessedAt)
	}
}

func TestGetPostAbsent(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	post, err := repo.GetPost("missing")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if post != nil {
		t.Errorf("Expected nil for absent post, got %+v", post)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error on re-upsert, got %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 post after double upsert, got %d", count)
	}
}

func TestUpsertReplacesContentColumns(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	updated := testPost("abc", 100)
	updated.Title = "edited title"
	if err := repo.Upsert(updated); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	post, err := repo.GetPost("abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if post.Title != "edited title" {
		t.Errorf("Expected replaced title, got '%s'", post.Title)
	}
}

func TestUpsertPreservesProcessedMarkerAndComments(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	comments := []Comment{{Author: "alice", Body: "hi", Score: 2}}
	if err := repo.UpdateComments("abc", comments); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.MarkProcessed("abc", time.Now()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Re-harvest of the same post must not reopen it
	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	post, err := repo.GetPost("abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if post.ProcessedAt == nil {
		t.Error("Expected processed marker to survive re-upsert")
	}
	if len(post.Comments) != 1 || post.Comments[0].Author != "alice" {
		t.Errorf("Expected stored comments to survive re-upsert, got %+v", post.Comments)
	}
}

func TestGetUnprocessedOrderAndLimit(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	// Inserted out of timestamp order on purpose
	for _, p := range []struct {
		id  string
		ts  float64
		old bool
	}{
		{"newer", 300, false},
		{"oldest", 100, false},
		{"middle", 200, false},
		{"done", 50, true},
	} {
		if err := repo.Upsert(testPost(p.id, p.ts)); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if p.old {
			if err := repo.MarkProcessed(p.id, time.Now()); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
		}
	}

	posts, err := repo.GetUnprocessed(0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("Expected 3 unprocessed posts, got %d", len(posts))
	}
	for i, want := range []string{"oldest", "middle", "newer"} {
		if posts[i].ID != want {
			t.Errorf("Expected post %d to be '%s', got '%s'", i, want, posts[i].ID)
		}
	}

	limited, err := repo.GetUnprocessed(2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 posts with limit, got %d", len(limited))
	}
}

func TestMarkProcessed(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	unprocessed, err := repo.CountUnprocessed()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if unprocessed != 1 {
		t.Fatalf("Expected 1 unprocessed post, got %d", unprocessed)
	}

	if err := repo.MarkProcessed("abc", time.Now()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	unprocessed, err = repo.CountUnprocessed()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if unprocessed != 0 {
		t.Errorf("Expected 0 unprocessed posts, got %d", unprocessed)
	}
}

func TestUpdateComments(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	comments := []Comment{
		{Author: "alice", Body: "great", Score: 5},
		{Author: "bob", Body: "meh", Score: -1},
	}
	if err := repo.UpdateComments("abc", comments); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	post, err := repo.GetPost("abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(post.Comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(post.Comments))
	}
	if post.Comments[1].Score != -1 {
		t.Errorf("Expected second comment score -1, got %d", post.Comments[1].Score)
	}
}

func TestDeletePost(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	if err := repo.Upsert(testPost("abc", 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.Delete("abc"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	post, err := repo.GetPost("abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if post != nil {
		t.Errorf("Expected post deleted, got %+v", post)
	}
}
