package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/services"
)

// submitRequest akzeptiert publication_year als Zahl, als String oder leer.
type submitRequest struct {
	services.SubmitInput
	PublicationYear json.RawMessage `json:"publication_year"`
}

func (r submitRequest) input() (services.SubmitInput, error) {
	in := r.SubmitInput
	in.PublicationYear = nil

	raw := bytes.TrimSpace(r.PublicationYear)
	if len(raw) == 0 || string(raw) == "null" {
		return in, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(raw)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return in, nil
	}
	year, err := strconv.Atoi(text)
	if err != nil {
		return in, fmt.Errorf("publication_year must be a number")
	}
	in.PublicationYear = &year
	return in, nil
}

// articleFieldEdits sind die Felder, die über /articles/:id/<feld> geändert werden dürfen.
var articleFieldEdits = []string{"claim", "evidence", "analysis_notes", "evidence_summary"}

func setupArticleRoutes(router *gin.Engine, review *services.ReviewService, log *zap.Logger) {
	rg := router.Group("/articles")

	rg.POST("", func(c *gin.Context) {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		in, err := req.input()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		article, err := review.Submit(c.Request.Context(), in)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":      "Article submitted successfully",
			"submissionId": article.ID,
		})
	})

	rg.GET("/published", func(c *gin.Context) {
		articles, err := review.ListPublished(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, articles)
	})

	rg.GET("/rejected", func(c *gin.Context) {
		articles, err := review.ListByStatus(c.Request.Context(), models.StatusRejected)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, articles)
	})

	rg.GET("/track", func(c *gin.Context) {
		articles, err := review.Track(c.Request.Context(), c.Query("email"), c.Query("submissionId"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, articles)
	})

	rg.GET("/:id", func(c *gin.Context) {
		article, err := review.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, article)
	})

	rg.GET("/:id/citation", func(c *gin.Context) {
		citation, err := review.Citation(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"citation": citation})
	})

	registerFieldEdits(rg, articleFieldEdits, review, log)
}

// registerFieldEdits legt für jedes Feld eine POST-Route /:id/<feld> an.
func registerFieldEdits(rg *gin.RouterGroup, fields []string, review *services.ReviewService, log *zap.Logger) {
	for _, field := range fields {
		field := field
		rg.POST("/:id/"+field, func(c *gin.Context) {
			value, err := bindFieldValue(c, field)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			article, err := review.UpdateField(c.Request.Context(), c.Param("id"), field, value)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, article)
		})
	}
}

func setupSearchRoutes(router *gin.Engine, review *services.ReviewService, log *zap.Logger) {
	router.GET("/search", func(c *gin.Context) {
		articles, err := review.Search(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, articles)
	})
}
