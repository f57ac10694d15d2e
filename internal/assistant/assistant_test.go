package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/ai"
)

// scriptedConversation replays a fixed sequence of model turns and records
// what it was sent.
type scriptedConversation struct {
	turns    []*ai.Turn
	sent     []string
	results  [][]ai.ToolResult
	sendErr  error
	replyErr error
}

func (c *scriptedConversation) next() *ai.Turn {
	if len(c.turns) == 0 {
		return &ai.Turn{Reply: "ok"}
	}
	turn := c.turns[0]
	c.turns = c.turns[1:]
	return turn
}

func (c *scriptedConversation) Send(_ context.Context, message string) (*ai.Turn, error) {
	if c.sendErr != nil {
		return nil, c.sendErr
	}
	c.sent = append(c.sent, message)
	return c.next(), nil
}

func (c *scriptedConversation) Reply(_ context.Context, results []ai.ToolResult) (*ai.Turn, error) {
	if c.replyErr != nil {
		return nil, c.replyErr
	}
	c.results = append(c.results, results)
	return c.next(), nil
}

// scriptedInput returns queued lines, then an error.
type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) ReadLine(string) (string, error) {
	if len(s.lines) == 0 {
		return "", errors.New("no more input")
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// recordedAction returns a fixed result and remembers its arguments.
type recordedAction struct {
	name   string
	result string
	args   []map[string]any
}

func (a *recordedAction) Name() string            { return a.name }
func (a *recordedAction) Description() string     { return a.name }
func (a *recordedAction) Parameters() []Parameter { return nil }

func (a *recordedAction) Execute(_ context.Context, args map[string]any) string {
	a.args = append(a.args, args)
	return a.result
}

func TestRunSendsGreetingFirst(t *testing.T) {
	t.Parallel()

	conv := &scriptedConversation{turns: []*ai.Turn{{Reply: "hello"}}}
	input := &scriptedInput{lines: []string{"exit"}}

	a := New(conv, nil, input, nil, zap.NewNop())
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(conv.sent) != 1 || conv.sent[0] != Greeting {
		t.Fatalf("expected the greeting as the opening message, got %v", conv.sent)
	}
}

func TestRunDispatchesToolCalls(t *testing.T) {
	t.Parallel()

	action := &recordedAction{name: "search", result: "Extraction successful! Found 3 job-related emails."}

	conv := &scriptedConversation{turns: []*ai.Turn{
		{Reply: "searching", Calls: []ai.ToolCall{{
			ID:   "call-1",
			Name: "search",
			Args: map[string]any{"days_back": float64(5)},
		}}},
		{Reply: "done"},
	}}
	input := &scriptedInput{lines: []string{"quit"}}

	var outputs []string
	a := New(conv, []Action{action}, input, func(s string) { outputs = append(outputs, s) }, zap.NewNop())

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(action.args) != 1 {
		t.Fatalf("expected the action to run once, ran %d times", len(action.args))
	}
	if got := action.args[0]["days_back"]; got != float64(5) {
		t.Fatalf("unexpected action args: %v", action.args[0])
	}

	if len(conv.results) != 1 {
		t.Fatalf("expected one tool-result turn, got %d", len(conv.results))
	}
	result := conv.results[0][0]
	if result.ID != "call-1" || result.Name != "search" {
		t.Fatalf("unexpected tool result metadata: %+v", result)
	}
	if !strings.Contains(result.Content, "Extraction successful") {
		t.Fatalf("unexpected tool result content: %q", result.Content)
	}

	joined := strings.Join(outputs, "\n")
	if !strings.Contains(joined, "[search] Extraction successful") {
		t.Fatalf("expected the tool outcome to be shown, got:\n%s", joined)
	}
}

func TestRunEndsAfterDisconnectResult(t *testing.T) {
	t.Parallel()

	action := &recordedAction{name: "disconnect", result: "Disconnected me@acme.example successfully"}

	conv := &scriptedConversation{turns: []*ai.Turn{
		{Calls: []ai.ToolCall{{Name: "disconnect"}}},
		{Reply: "goodbye"},
	}}

	// No input lines: the loop must end without asking for more.
	a := New(conv, []Action{action}, &scriptedInput{}, nil, zap.NewNop())
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunUnknownAction(t *testing.T) {
	t.Parallel()

	conv := &scriptedConversation{turns: []*ai.Turn{
		{Calls: []ai.ToolCall{{Name: "launch_rockets"}}},
		{Reply: "sorry"},
	}}
	input := &scriptedInput{lines: []string{"bye"}}

	a := New(conv, nil, input, nil, zap.NewNop())
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(conv.results) != 1 {
		t.Fatalf("expected one tool-result turn, got %d", len(conv.results))
	}
	if got := conv.results[0][0].Content; !strings.Contains(got, "Unknown action") {
		t.Fatalf("expected an unknown-action result, got %q", got)
	}
}

func TestRunModelError(t *testing.T) {
	t.Parallel()

	conv := &scriptedConversation{sendErr: errors.New("quota exceeded")}

	a := New(conv, nil, &scriptedInput{}, nil, zap.NewNop())
	if err := a.Run(context.Background()); err == nil {
		t.Fatalf("expected a model error to terminate the loop")
	}
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(&scriptedConversation{}, nil, &scriptedInput{}, nil, zap.NewNop())
	if err := a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsExitRequest(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"exit", " Quit ", "BYE"} {
		if !isExitRequest(line) {
			t.Fatalf("expected %q to be an exit request", line)
		}
	}
	if isExitRequest("search please") {
		t.Fatalf("did not expect an exit request")
	}
}

func TestDispatchRunsCallsInOrder(t *testing.T) {
	t.Parallel()

	first := &recordedAction{name: "connect", result: "Connection successful for a@b.c"}
	second := &recordedAction{name: "search", result: "found nothing"}

	a := New(&scriptedConversation{}, []Action{first, second}, &scriptedInput{}, nil, zap.NewNop())

	results := a.dispatch(context.Background(), []ai.ToolCall{
		{Name: "connect"},
		{Name: "search"},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "connect" || results[1].Name != "search" {
		t.Fatalf("results out of order: %v", results)
	}
}

func TestSessionEnded(t *testing.T) {
	t.Parallel()

	cases := []struct {
		content string
		want    bool
	}{
		{"Disconnected me@acme.example successfully", true},
		{"The user wants to exit now", true},
		{"Connection successful for me@acme.example", false},
		{"Extraction successful! Found 3 emails", false},
	}

	for i, tc := range cases {
		results := []ai.ToolResult{{Name: fmt.Sprintf("a%d", i), Content: tc.content}}
		if got := sessionEnded(results); got != tc.want {
			t.Fatalf("sessionEnded(%q) = %v, want %v", tc.content, got, tc.want)
		}
	}
}
