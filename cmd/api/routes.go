package main

import (
	"database/sql"
	"net/http"
	"time"

	"adminboard/internal/httpapi"
	"adminboard/internal/rbac"
	"adminboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, sessionMW gin.HandlerFunc, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if db != nil {
			if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// SESSION routes. Sign-in is mock: any well-formed credential pair is accepted.
	sess := v1.Group("/session")
	{
		sess.GET("", h.GetSession)
		sess.POST("/login", h.Login)
		sess.POST("/register", h.Register)
		sess.POST("/logout", h.Logout)
		sess.PATCH("/user", sessionMW, h.UpdateUser)
	}

	// ACTIVITY routes
	// Only admin/moderator can read or write the activity log.
	act := v1.Group("/activity")
	act.Use(sessionMW)
	act.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleModerator))
	{
		act.POST("/records", h.AppendRecord)
		act.POST("/query", h.QueryActivity)
		act.POST("/export", h.ExportActivity)

		act.GET("/filters", h.ListFilters)
		act.PUT("/filters/:name", h.SaveFilter)
		act.GET("/filters/:name", h.GetFilter)
		act.DELETE("/filters/:name", h.DeleteFilter)
	}
}
