package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/internal/logger"
)

// ErrToolNotFound is returned by ToolSet.Run for an unregistered name
var ErrToolNotFound = errors.New("tool not found")

// ToolSet indexes the dataset tools by name for direct invocation
type ToolSet struct {
	tools map[string]tool.InvokableTool
	infos []*schema.ToolInfo
}

// NewToolSet builds every tool over the table
func NewToolSet(ctx context.Context, table *dataset.Table) (*ToolSet, error) {
	tools, err := GetTools(table)
	if err != nil {
		return nil, err
	}

	set := &ToolSet{tools: make(map[string]tool.InvokableTool, len(tools))}
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		set.tools[info.Name] = t
		set.infos = append(set.infos, info)
	}
	return set, nil
}

// Infos describes the registered tools in registration order
func (s *ToolSet) Infos() []*schema.ToolInfo {
	return s.infos
}

// Run invokes a tool with JSON-encoded arguments
func (s *ToolSet) Run(ctx context.Context, name, argumentsJSON string) (string, error) {
	t, ok := s.tools[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrToolNotFound)
	}
	if argumentsJSON == "" {
		argumentsJSON = "{}"
	}

	result, err := t.InvokableRun(ctx, argumentsJSON)
	if err != nil {
		logger.Warn().Err(err).Str("tool", name).Msg("Tool execution failed")
		return "", fmt.Errorf("run tool %s: %w", name, err)
	}
	logger.Debug().Str("tool", name).Msg("Tool executed successfully")
	return result, nil
}
