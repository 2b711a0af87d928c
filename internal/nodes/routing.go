package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customer_insight_chatbot/internal/core"
	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/internal/logger"
	"customer_insight_chatbot/pkg"
)

// Config tunes the responder
type Config struct {
	// TopCategories is how many product categories a gender breakdown ranks
	TopCategories int
	// FemaleValues and MaleValues are the Gender cell values (case-insensitive)
	// counted for each gender family. Gender stays an opaque label otherwise.
	FemaleValues []string
	MaleValues   []string
}

// DefaultConfig returns the responder defaults
func DefaultConfig() Config {
	return Config{
		TopCategories: 5,
		FemaleValues:  []string{"female", "f"},
		MaleValues:    []string{"male", "m"},
	}
}

// Responder routes utterances through the intent priority chain. It holds no
// per-conversation state; memory is passed in and returned on every call, so
// one Responder can serve any number of concurrent conversations.
type Responder struct {
	config Config
}

// NewResponder creates a responder, filling unset config fields with defaults
func NewResponder(config Config) *Responder {
	defaults := DefaultConfig()
	if config.TopCategories <= 0 {
		config.TopCategories = defaults.TopCategories
	}
	if len(config.FemaleValues) == 0 {
		config.FemaleValues = defaults.FemaleValues
	}
	if len(config.MaleValues) == 0 {
		config.MaleValues = defaults.MaleValues
	}
	return &Responder{config: config}
}

// Reply is the full result of one turn
type Reply struct {
	Text   string                 `json:"text"`
	Intent pkg.Intent             `json:"intent"`
	Memory pkg.ConversationMemory `json:"memory"`
}

var defaultResponder = NewResponder(DefaultConfig())

// Respond answers one utterance with the default configuration
func Respond(utterance string, memory pkg.ConversationMemory, table *dataset.Table) (string, pkg.ConversationMemory) {
	return defaultResponder.Respond(utterance, memory, table)
}

// Respond answers one utterance and returns the memory for the next turn
func (r *Responder) Respond(utterance string, memory pkg.ConversationMemory, table *dataset.Table) (string, pkg.ConversationMemory) {
	reply := r.Reply(utterance, memory, table)
	return reply.Text, reply.Memory
}

// Reply classifies the utterance, runs the matching builder and threads
// memory. Recoverable failures become user-facing text; the incoming memory
// is returned unchanged whenever a turn fails.
func (r *Responder) Reply(utterance string, memory pkg.ConversationMemory, table *dataset.Table) Reply {
	if table == nil {
		table = dataset.NewTable(nil)
	}

	intent := Classify(utterance, table)
	logger.Debug().
		Str("intent", string(intent.Kind)).
		Str("attribute", string(intent.Attribute)).
		Str("category", intent.Category).
		Msg("Utterance classified")

	text, next, err := r.dispatch(intent, memory, table)
	if err != nil {
		return Reply{Text: recoverMessage(err), Intent: intent, Memory: memory}
	}
	return Reply{Text: text, Intent: intent, Memory: next}
}

func (r *Responder) dispatch(intent pkg.Intent, memory pkg.ConversationMemory, table *dataset.Table) (string, pkg.ConversationMemory, error) {
	switch intent.Kind {
	case pkg.IntentGreeting:
		return greetingText, memory, nil

	case pkg.IntentGenderBreakdown:
		labels := r.config.FemaleValues
		if intent.Gender == pkg.GenderMale {
			labels = r.config.MaleValues
		}
		return genderBreakdown(table, intent.Gender, labels, intent.ClusterID, r.config.TopCategories), memory, nil

	case pkg.IntentHelp:
		return helpText(table), memory, nil

	case pkg.IntentClusterDetail:
		id := *intent.ClusterID
		text, err := ClusterSummary(table, id)
		if err != nil {
			return "", memory, err
		}
		return text, memory.WithCluster(id), nil

	case pkg.IntentUnknownCluster:
		return "", memory, &UnknownClusterError{ID: intent.ClusterID, Valid: table.Clusters()}

	case pkg.IntentListClusters:
		return listClusters(table), memory, nil

	case pkg.IntentListProductCategories, pkg.IntentListPaymentMethods, pkg.IntentListDevices,
		pkg.IntentListRegions, pkg.IntentListDeliveryOptions, pkg.IntentListAgeGroups:
		return listValues(table, listings[intent.Kind]), memory, nil

	case pkg.IntentProductToCluster:
		text, top, err := productToCluster(table, intent.Category)
		if err != nil {
			return "", memory, err
		}
		return text, memory.WithProduct(intent.Category).WithCluster(top), nil

	case pkg.IntentFollowUp:
		id, ok := memory.Cluster()
		if !ok {
			return "", memory, ErrNoReference
		}
		text, err := followUp(table, id, intent.Attribute)
		if err != nil {
			return "", memory, err
		}
		return text, memory, nil
	}

	return unrecognizedText, memory, nil
}

// recoverMessage turns a recoverable failure into reply text. Raw error
// strings never reach the user.
func recoverMessage(err error) string {
	var unknown *UnknownClusterError
	switch {
	case errors.As(err, &unknown):
		return unknownClusterText(unknown)
	case errors.Is(err, ErrNoReference):
		return noReferenceText
	case errors.Is(err, dataset.ErrEmptyAggregation):
		return noDataText
	}
	logger.Error().Err(err).Msg("Unexpected responder failure")
	return "Sorry, something went wrong while answering that. Please try rephrasing."
}

// ResponseNode runs the responder as the answering step of a chat turn
type ResponseNode struct {
	responder *Responder
	table     *dataset.Table
}

// NewResponseNode creates a response node over a loaded table
func NewResponseNode(responder *Responder, table *dataset.Table) *ResponseNode {
	return &ResponseNode{responder: responder, table: table}
}

// Execute answers the user message using the memory loaded for the conversation
func (n *ResponseNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	if err := ctx.Err(); err != nil {
		return core.NodeOutput{}, fmt.Errorf("response node: %w", err)
	}
	if strings.TrimSpace(input.UserMessage) == "" {
		return core.NodeOutput{}, core.ErrEmptyMessage
	}

	reply := n.responder.Reply(input.UserMessage, input.Memory, n.table)
	return core.NodeOutput{
		Response: reply.Text,
		Intent:   reply.Intent,
		Memory:   reply.Memory,
	}, nil
}

// GetName returns the node name
func (n *ResponseNode) GetName() string {
	return "response"
}

// GetType returns the node type
func (n *ResponseNode) GetType() core.NodeType {
	return core.NodeTypeResponse
}
