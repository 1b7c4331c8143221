package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/services"
)

// bindOptionalJSON bindet den Body nur, wenn einer mitgeschickt wurde.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func setupModerationRoutes(rg *gin.RouterGroup, review *services.ReviewService, log *zap.Logger) {
	rg.GET("/articles", func(c *gin.Context) {
		articles, err := review.ListByStatus(c.Request.Context(), models.StatusPending)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, articles)
	})

	rg.POST("/articles/:id/approve", func(c *gin.Context) {
		article, err := review.ModeratorApprove(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, article)
	})

	rg.POST("/articles/:id/reject", func(c *gin.Context) {
		var req struct {
			RejectionReason string `json:"rejection_reason"`
		}
		if err := bindOptionalJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		article, err := review.ModeratorReject(c.Request.Context(), c.Param("id"), req.RejectionReason)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, article)
	})
}

func setupAnalysisRoutes(rg *gin.RouterGroup, review *services.ReviewService, log *zap.Logger) {
	rg.GET("/articles", func(c *gin.Context) {
		articles, err := review.ListByStatus(c.Request.Context(), models.StatusApprovedByModerator)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, articles)
	})

	rg.POST("/articles/:id/approve", func(c *gin.Context) {
		var req services.AnalysisInput
		if err := bindOptionalJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		article, err := review.AnalystApprove(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, article)
	})

	rg.POST("/articles/:id/reject", func(c *gin.Context) {
		article, err := review.AnalystReject(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, article)
	})

	registerFieldEdits(rg.Group("/articles"), []string{"evidence", "analysis_notes", "evidence_summary"}, review, log)
}

func setupAdminRoutes(rg *gin.RouterGroup, review *services.ReviewService, log *zap.Logger) {
	articles := rg.Group("/articles")

	articles.GET("", func(c *gin.Context) {
		list, err := review.ListAll(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	articles.DELETE("/:id", func(c *gin.Context) {
		if err := review.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
	})

	registerFieldEdits(articles, []string{"status", "claim", "evidence", "analysis_notes", "evidence_summary", "moderation_notes"}, review, log)
}
