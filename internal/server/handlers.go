package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"customer_insight_chatbot/internal/core"
	"customer_insight_chatbot/internal/logger"
	"customer_insight_chatbot/internal/nodes"
	"customer_insight_chatbot/pkg"
)

// ChatHandler serves chat turns and conversation management
type ChatHandler struct {
	processor core.Processor
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	ConversationID string         `json:"conversation_id"`
	Response       string         `json:"response"`
	Intent         pkg.IntentKind `json:"intent"`
	Timestamp      time.Time      `json:"timestamp"`
}

type historyResponse struct {
	ConversationID string                    `json:"conversation_id"`
	Messages       []pkg.ConversationMessage `json:"messages"`
}

// Chat answers one message. A missing conversation_id starts a new conversation.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	out, err := h.processor.Execute(c.Request.Context(), core.ProcessorInput{
		ConversationID: req.ConversationID,
		UserMessage:    req.Message,
	})
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
			return
		}
		logger.Error().Err(err).Str("conversation_id", req.ConversationID).Msg("Chat request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		ConversationID: out.ConversationID,
		Response:       out.Response,
		Intent:         out.Intent.Kind,
		Timestamp:      out.Timestamp,
	})
}

// Reset clears a conversation's memory and transcript
func (h *ChatHandler) Reset(c *gin.Context) {
	id := c.Param("id")
	if err := h.processor.Reset(c.Request.Context(), id); err != nil {
		logger.Error().Err(err).Str("conversation_id", id).Msg("Reset failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation_id": id, "status": "reset"})
}

// History returns the stored transcript of a conversation
func (h *ChatHandler) History(c *gin.Context) {
	id := c.Param("id")
	messages, err := h.processor.History(c.Request.Context(), id)
	if err != nil {
		logger.Error().Err(err).Str("conversation_id", id).Msg("History lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, historyResponse{ConversationID: id, Messages: messages})
}

// ToolHandler lists and invokes the dataset tools
type ToolHandler struct {
	tools ToolRunner
}

type toolDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List describes the available tools
func (h *ToolHandler) List(c *gin.Context) {
	infos := h.tools.Infos()
	out := make([]toolDescription, 0, len(infos))
	for _, info := range infos {
		out = append(out, toolDescription{Name: info.Name, Description: info.Desc})
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

// Run invokes a tool; the request body is passed through as its JSON arguments
func (h *ToolHandler) Run(c *gin.Context) {
	name := c.Param("name")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.tools.Run(c.Request.Context(), name, string(body))
	switch {
	case errors.Is(err, nodes.ErrToolNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tool " + name})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "tool invocation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": name, "result": result})
}
