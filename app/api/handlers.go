package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/purplecheck/agent/app/cfg"
	"github.com/purplecheck/agent/app/database"
	"github.com/purplecheck/agent/app/pipeline"
)

type Handler struct {
	posts    *database.PostRepository
	feedback *database.FeedbackRepository
	engine   *pipeline.Engine
}

func NewHandler(posts *database.PostRepository, feedback *database.FeedbackRepository, engine *pipeline.Engine) *Handler {
	return &Handler{
		posts:    posts,
		feedback: feedback,
		engine:   engine,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": cfg.GetVersion(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	postCount, err := h.posts.Count()
	if err != nil {
		slog.Error("Database error", "operation", "count_posts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	unprocessedCount, err := h.posts.CountUnprocessed()
	if err != nil {
		slog.Error("Database error", "operation", "count_unprocessed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	feedbackCount, err := h.feedback.Count()
	if err != nil {
		slog.Error("Database error", "operation", "count_feedback", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	stats := h.engine.Stats()
	run := gin.H{
		"done":    stats.Done,
		"skipped": stats.Skipped,
	}
	if stats.LastRunAt != nil {
		run["last_run_at"] = stats.LastRunAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": gin.H{
			"total":       postCount,
			"unprocessed": unprocessedCount,
		},
		"feedback": gin.H{
			"total": feedbackCount,
		},
		"run": run,
	})
}
