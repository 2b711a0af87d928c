package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	"customer_insight_chatbot/internal/logger"
	"customer_insight_chatbot/internal/storage"
	"customer_insight_chatbot/pkg"
)

// turn is the state passed between the chain steps
type turn struct {
	input   ProcessorInput
	session *pkg.Session
	output  NodeOutput
}

// ChainProcessor runs every turn as an eino chain:
// load_session -> <answer node> -> save_session
//
// Turns of one conversation are serialized within the process so concurrent
// requests cannot overwrite each other's memory. Replicas sharing one Redis
// store still need callers to keep a conversation on one instance.
type ChainProcessor struct {
	sessions storage.SessionManager
	answer   Node
	config   Config
	runnable compose.Runnable[ProcessorInput, *ProcessorOutput]
	now      func() time.Time
	locks    *conversationLocks
}

// NewProcessor compiles the turn chain around the answering node
func NewProcessor(ctx context.Context, config Config, sessions storage.SessionManager, answer Node) (*ChainProcessor, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager cannot be nil")
	}
	if answer == nil {
		return nil, fmt.Errorf("answer node cannot be nil")
	}
	if config.MaxHistory <= 0 {
		config.MaxHistory = 40
	}

	p := &ChainProcessor{
		sessions: sessions,
		answer:   answer,
		config:   config,
		now:      time.Now,
		locks:    newConversationLocks(),
	}

	chain := compose.NewChain[ProcessorInput, *ProcessorOutput]()
	chain.
		AppendLambda(compose.InvokableLambda(p.loadSession), compose.WithNodeName("load_session")).
		AppendLambda(compose.InvokableLambda(p.respond), compose.WithNodeName(answer.GetName())).
		AppendLambda(compose.InvokableLambda(p.saveSession), compose.WithNodeName("save_session"))

	runnable, err := chain.Compile(ctx, compose.WithGraphName("ChatTurn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn chain: %w", err)
	}
	p.runnable = runnable

	logger.Debug().
		Str("answer_node", answer.GetName()).
		Str("answer_type", string(answer.GetType())).
		Int("max_history", config.MaxHistory).
		Msg("Turn chain compiled")
	return p, nil
}

// Execute runs one chat turn
func (p *ChainProcessor) Execute(ctx context.Context, input ProcessorInput) (*ProcessorOutput, error) {
	if strings.TrimSpace(input.UserMessage) == "" {
		return nil, ErrEmptyMessage
	}
	if input.ConversationID == "" {
		return nil, fmt.Errorf("conversation ID cannot be empty")
	}

	unlock := p.locks.lock(input.ConversationID)
	defer unlock()

	start := time.Now()
	output, err := p.runnable.Invoke(ctx, input)
	if err != nil {
		logger.Error().Err(err).Str("conversation_id", input.ConversationID).Msg("Chat turn failed")
		return nil, fmt.Errorf("chat turn for %s: %w", input.ConversationID, err)
	}
	output.ProcessingTime = time.Since(start).Milliseconds()

	logger.Info().
		Str("conversation_id", input.ConversationID).
		Str("intent", string(output.Intent.Kind)).
		Int64("processing_time_ms", output.ProcessingTime).
		Msg("Chat turn completed")
	return output, nil
}

// Reset clears the memory and transcript of a conversation
func (p *ChainProcessor) Reset(ctx context.Context, conversationID string) error {
	unlock := p.locks.lock(conversationID)
	defer unlock()

	if err := p.sessions.DeleteSession(ctx, conversationID); err != nil {
		return fmt.Errorf("reset %s: %w", conversationID, err)
	}
	logger.Info().Str("conversation_id", conversationID).Msg("Conversation reset")
	return nil
}

// History returns the stored transcript, empty for unknown conversations
func (p *ChainProcessor) History(ctx context.Context, conversationID string) ([]pkg.ConversationMessage, error) {
	session, err := p.sessions.GetSession(ctx, conversationID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return []pkg.ConversationMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", conversationID, err)
	}
	return session.Messages, nil
}

func (p *ChainProcessor) loadSession(ctx context.Context, input ProcessorInput) (*turn, error) {
	session, err := p.sessions.GetSession(ctx, input.ConversationID)
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		session = storage.NewSession(input.ConversationID)
		logger.Debug().Str("conversation_id", input.ConversationID).Msg("Starting new session")
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &turn{input: input, session: session}, nil
}

func (p *ChainProcessor) respond(ctx context.Context, t *turn) (*turn, error) {
	out, err := p.answer.Execute(ctx, NodeInput{
		ConversationID:      t.input.ConversationID,
		UserMessage:         t.input.UserMessage,
		Memory:              t.session.Memory,
		ConversationContext: t.session.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", p.answer.GetName(), err)
	}
	t.output = out
	return t, nil
}

func (p *ChainProcessor) saveSession(ctx context.Context, t *turn) (*ProcessorOutput, error) {
	now := p.now()
	session := t.session
	session.Memory = t.output.Memory
	session.Messages = append(session.Messages,
		pkg.ConversationMessage{Role: "user", Content: t.input.UserMessage, Timestamp: now.Unix()},
		pkg.ConversationMessage{Role: "assistant", Content: t.output.Response, Timestamp: now.Unix()},
	)
	session.Messages = storage.TrimHistory(session.Messages, p.config.MaxHistory)

	if err := p.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &ProcessorOutput{
		ConversationID: t.input.ConversationID,
		Response:       t.output.Response,
		Intent:         t.output.Intent,
		Memory:         t.output.Memory,
		Timestamp:      now,
	}, nil
}
