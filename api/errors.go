package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/services"
)

// respondError bildet Service-Fehler auf HTTP-Status ab. Unbekannte Fehler werden geloggt
// und nur generisch nach außen gegeben.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindFieldValue liest {"value": ...} oder {"<field>": ...}. null zählt als leerer String.
func bindFieldValue(c *gin.Context, field string) (string, error) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return "", fmt.Errorf("invalid request body")
	}
	raw, ok := body["value"]
	if !ok {
		raw, ok = body[field]
	}
	if !ok {
		return "", fmt.Errorf("missing %q or \"value\" in request body", field)
	}
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("%s must be a string", field)
}
