package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speed-review/services"
)

func setupScoreRoutes(router *gin.Engine, scores *services.ScoreService, log *zap.Logger) {
	rg := router.Group("/scores")

	rg.POST("", func(c *gin.Context) {
		var req struct {
			DocID        string   `json:"doc_id"`
			AverageScore *float64 `json:"average_score"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.AverageScore == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "average_score is required"})
			return
		}
		score, err := scores.SubmitScore(c.Request.Context(), req.DocID, *req.AverageScore)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, score)
	})

	rg.GET("/average/:id", func(c *gin.Context) {
		docID := c.Param("id")
		avg, err := scores.AverageScore(c.Request.Context(), docID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"doc_id": docID, "average_score": avg})
	})

	rg.GET("/:id", func(c *gin.Context) {
		list, err := scores.ListScores(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
}
