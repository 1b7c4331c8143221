package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speed-review/services"
)

func setupRoleRoutes(rg *gin.RouterGroup, roles *services.RoleService, log *zap.Logger) {
	rg.GET("", func(c *gin.Context) {
		list, err := roles.List(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.POST("", func(c *gin.Context) {
		var req services.RoleInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		role, err := roles.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, role)
	})

	rg.GET("/:email", func(c *gin.Context) {
		role, err := roles.Get(c.Request.Context(), c.Param("email"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, role)
	})

	rg.PUT("/:email", func(c *gin.Context) {
		var req services.RoleInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		role, err := roles.Update(c.Request.Context(), c.Param("email"), req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, role)
	})

	rg.DELETE("/:email", func(c *gin.Context) {
		if err := roles.Delete(c.Request.Context(), c.Param("email")); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully"})
	})
}
