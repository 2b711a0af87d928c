package core

import (
	"context"
	"errors"
	"time"

	"customer_insight_chatbot/pkg"
)

// ErrEmptyMessage is returned for a blank user message
var ErrEmptyMessage = errors.New("empty message")

// Node represents a single processing step of a chat turn
type Node interface {
	Execute(ctx context.Context, input NodeInput) (NodeOutput, error)
	GetName() string
	GetType() NodeType
}

// NodeType defines the different types of nodes in the turn chain
type NodeType string

const (
	NodeTypeSession  NodeType = "session"
	NodeTypeResponse NodeType = "response"
)

// NodeInput is what the answering node sees of a turn
type NodeInput struct {
	ConversationID      string                    `json:"conversation_id"`
	UserMessage         string                    `json:"user_message"`
	Memory              pkg.ConversationMemory    `json:"memory"`
	ConversationContext []pkg.ConversationMessage `json:"conversation_context"`
}

// NodeOutput is the answer and the memory to persist
type NodeOutput struct {
	Response string                 `json:"response"`
	Intent   pkg.Intent             `json:"intent"`
	Memory   pkg.ConversationMemory `json:"memory"`
}

// Processor runs chat turns against per-conversation sessions
type Processor interface {
	Execute(ctx context.Context, input ProcessorInput) (*ProcessorOutput, error)
	Reset(ctx context.Context, conversationID string) error
	History(ctx context.Context, conversationID string) ([]pkg.ConversationMessage, error)
}

// ProcessorInput is the main input for the processor
type ProcessorInput struct {
	ConversationID string `json:"conversation_id"`
	UserMessage    string `json:"user_message"`
}

// ProcessorOutput is the main output from the processor
type ProcessorOutput struct {
	ConversationID string                 `json:"conversation_id"`
	Response       string                 `json:"response"`
	Intent         pkg.Intent             `json:"intent"`
	Memory         pkg.ConversationMemory `json:"memory"`
	Timestamp      time.Time              `json:"timestamp"`
	ProcessingTime int64                  `json:"processing_time_ms"`
}

// Config holds the processor settings
type Config struct {
	// MaxHistory bounds the stored transcript per conversation
	MaxHistory int `json:"max_history"`
}
