package ai

import "context"

// FitAssessment is the model's judgement of how well a resume matches a job
// posting.
type FitAssessment struct {
	Fit         bool
	Score       float64
	Summary     string
	Suggestions string
	Raw         string
}

// Matcher scores a resume against a job description.
type Matcher interface {
	Evaluate(ctx context.Context, resume, jobDescription string) (*FitAssessment, error)
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult carries the outcome of an executed tool call back to the model.
// Content is ordinary text; failures are relayed the same way as successes.
type ToolResult struct {
	ID      string
	Name    string
	Content string
}

// Turn is one model response: free text, tool calls, or both.
type Turn struct {
	Reply string
	Calls []ToolCall
}

// Conversation is a stateful multi-turn chat with tool support.
type Conversation interface {
	// Send delivers a user message and returns the model's turn.
	Send(ctx context.Context, message string) (*Turn, error)
	// Reply delivers tool results for the previous turn's calls and returns
	// the model's next turn.
	Reply(ctx context.Context, results []ToolResult) (*Turn, error)
}
