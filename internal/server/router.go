// Package server exposes the chat processor and the dataset tools over HTTP.
package server

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"customer_insight_chatbot/internal/config"
	"customer_insight_chatbot/internal/core"
	"customer_insight_chatbot/internal/logger"
)

// ToolRunner is the tool registry the API exposes
type ToolRunner interface {
	Infos() []*schema.ToolInfo
	Run(ctx context.Context, name, argumentsJSON string) (string, error)
}

// NewRouter wires every route onto a new gin engine
func NewRouter(cfg config.ServerConfig, processor core.Processor, tools ToolRunner) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(requestLogger())
	r.Use(gin.Recovery())
	r.Use(requestID())

	r.GET("/healthz", healthCheck)

	chat := &ChatHandler{processor: processor}
	toolHandler := &ToolHandler{tools: tools}

	api := r.Group("/api")
	{
		api.POST("/chat", chat.Chat)
		api.POST("/conversations/:id/reset", chat.Reset)
		api.GET("/conversations/:id/history", chat.History)

		api.GET("/tools", toolHandler.List)
		api.POST("/tools/:name", toolHandler.Run)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetString("request_id")).
			Msg("HTTP request")
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
