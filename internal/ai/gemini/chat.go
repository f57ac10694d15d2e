package gemini

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/breadfinder/breadfinder/internal/ai"
	"github.com/breadfinder/breadfinder/internal/util"
)

const conversationLogPreview = 200

// Conversation is a stateful Gemini chat with function-calling support. It
// implements ai.Conversation.
type Conversation struct {
	chat   chatSession
	logger *zap.Logger
}

// NewConversation opens a chat session with the given system prompt and
// callable function declarations.
func (g *Generator) NewConversation(ctx context.Context, systemPrompt string, declarations []*genai.FunctionDeclaration) (*Conversation, error) {
	if g == nil || g.chats == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if len(declarations) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	chat, err := g.chats.Create(ctx, g.modelName, config, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}

	return &Conversation{chat: chat, logger: g.logger}, nil
}

// Send delivers a user message and returns the model's turn.
func (c *Conversation) Send(ctx context.Context, message string) (*ai.Turn, error) {
	c.logger.Debug("sending chat message",
		zap.String("preview", util.TruncateForLog(message, conversationLogPreview)),
	)

	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	return c.turnFrom(resp), nil
}

// Reply delivers the results of executed tool calls and returns the model's
// next turn.
func (c *Conversation) Reply(ctx context.Context, results []ai.ToolResult) (*ai.Turn, error) {
	if len(results) == 0 {
		return nil, errors.New("no tool results to reply with")
	}

	parts := make([]genai.Part, 0, len(results))
	for _, result := range results {
		parts = append(parts, genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       result.ID,
				Name:     result.Name,
				Response: map[string]any{"result": result.Content},
			},
		})
	}

	resp, err := c.chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("send tool results: %w", err)
	}

	return c.turnFrom(resp), nil
}

func (c *Conversation) turnFrom(resp *genai.GenerateContentResponse) *ai.Turn {
	turn := &ai.Turn{Reply: collectText(resp)}

	for _, call := range resp.FunctionCalls() {
		if call == nil {
			continue
		}
		turn.Calls = append(turn.Calls, ai.ToolCall{
			ID:   call.ID,
			Name: call.Name,
			Args: call.Args,
		})
	}

	if len(turn.Calls) > 0 {
		names := make([]string, 0, len(turn.Calls))
		for _, call := range turn.Calls {
			names = append(names, call.Name)
		}
		c.logger.Debug("model requested tool calls", zap.Strings("tools", names))
	}

	return turn
}
