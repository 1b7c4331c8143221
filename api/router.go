package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"speed-review/config"
	"speed-review/services"
)

// Services bündelt die Abhängigkeiten der HTTP-Schicht.
type Services struct {
	Review *services.ReviewService
	Scores *services.ScoreService
	Roles  *services.RoleService
}

// apiKeyAuthMiddleware schützt die Reviewer- und Admin-Routen. Ohne API_SECRET_KEY ist alles offen.
func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// NewRouter baut die gin-Engine mit allen Routen.
func NewRouter(cfg *config.Config, svc Services, log *zap.Logger) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins()
	allowCreds := !(len(origins) == 1 && origins[0] == "*")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCreds,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := apiKeyAuthMiddleware(cfg)

	setupArticleRoutes(router, svc.Review, log)
	setupModerationRoutes(router.Group("/moderation", auth), svc.Review, log)
	setupAnalysisRoutes(router.Group("/analysis", auth), svc.Review, log)
	setupAdminRoutes(router.Group("/admin", auth), svc.Review, log)
	setupScoreRoutes(router, svc.Scores, log)
	setupSearchRoutes(router, svc.Review, log)
	setupRoleRoutes(router.Group("/roles", auth), svc.Roles, log)

	return router
}
