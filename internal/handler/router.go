package handler

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the HTTP API on router
func RegisterRoutes(router *gin.Engine, search *SearchHandler, health *HealthHandler) {
	router.GET("/health", health.Health)
	router.GET("/version", health.Version)

	// Legacy path kept for existing frontends
	router.POST("/api/ask", search.Ask)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/ask", search.Ask)
		apiV1.POST("/ask/stream", search.AskStream) // Streaming answer
		apiV1.POST("/search", search.Search)
		apiV1.POST("/extract", search.Extract)
		apiV1.GET("/listings/:id", search.GetListing)
	}
}
