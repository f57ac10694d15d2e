package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/ai"
)

// State is the dispatcher's position in the conversation loop.
type State int

const (
	// StateAwaitingInput waits for the next user message.
	StateAwaitingInput State = iota
	// StateDispatching executes the tool calls of the last model turn.
	StateDispatching
	// StateAwaitingResult feeds tool results back and waits for the model.
	StateAwaitingResult
	// StateDone terminates the loop.
	StateDone
)

// Greeting seeds the first conversation turn, mirroring an opening user
// message.
const Greeting = "Let's start the job hunt. I will provide my mailbox " +
	"credentials and you will filter all relevant emails for me."

// SystemPrompt instructs the model on the available actions.
const SystemPrompt = `You are a job-hunting assistant that organises employment opportunities from the user's own mailbox.

You can:
1. Connect to the user's mailbox with connect(username, password).
2. Disconnect with disconnect(username).
3. Search the connected mailbox for job-related emails with search(days_back) and save them to a text file.

The user wants you to operate on THEIR OWN mailbox; this is legitimate and expected. When the user provides credentials, call connect immediately. Guide the user through the process and ask for whatever is missing. Relay tool results, including failures, as ordinary information.`

// InputReader supplies the next user message.
type InputReader interface {
	ReadLine(label string) (string, error)
}

// Assistant is a finite-state dispatcher around a tool-calling conversation.
// Each external action is a named operation; the model decides when to invoke
// one, the assistant executes it and feeds the result back.
type Assistant struct {
	conv    ai.Conversation
	actions map[string]Action
	input   InputReader
	output  func(string)
	logger  *zap.Logger
}

// New creates an Assistant over a conversation and a set of actions.
func New(conv ai.Conversation, actions []Action, input InputReader, output func(string), logger *zap.Logger) *Assistant {
	if output == nil {
		output = func(string) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byName := make(map[string]Action, len(actions))
	for _, action := range actions {
		byName[action.Name()] = action
	}

	return &Assistant{
		conv:    conv,
		actions: byName,
		input:   input,
		output:  output,
		logger:  logger,
	}
}

// Run drives the conversation until the user exits or a disconnect result is
// observed. Model and input errors terminate the loop; action failures do
// not, they are relayed to the model as ordinary content.
func (a *Assistant) Run(ctx context.Context) error {
	state := StateAwaitingInput
	message := Greeting
	opening := true

	var turn *ai.Turn
	var results []ai.ToolResult

	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch state {
		case StateAwaitingInput:
			if !opening {
				line, err := a.input.ReadLine("What shall we do next?")
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				if isExitRequest(line) {
					state = StateDone
					continue
				}
				message = line
			}
			opening = false

			var err error
			turn, err = a.conv.Send(ctx, message)
			if err != nil {
				return fmt.Errorf("model turn: %w", err)
			}

			if turn.Reply != "" {
				a.output(turn.Reply)
			}

			if len(turn.Calls) > 0 {
				state = StateDispatching
			}

		case StateDispatching:
			results = a.dispatch(ctx, turn.Calls)
			state = StateAwaitingResult

		case StateAwaitingResult:
			var err error
			turn, err = a.conv.Reply(ctx, results)
			if err != nil {
				return fmt.Errorf("model turn after tools: %w", err)
			}

			if turn.Reply != "" {
				a.output(turn.Reply)
			}

			switch {
			case sessionEnded(results):
				state = StateDone
			case len(turn.Calls) > 0:
				state = StateDispatching
			default:
				state = StateAwaitingInput
			}
		}
	}

	return nil
}

// dispatch runs every requested call and collects the results. Unknown
// actions produce a failure string like any other action outcome.
func (a *Assistant) dispatch(ctx context.Context, calls []ai.ToolCall) []ai.ToolResult {
	results := make([]ai.ToolResult, 0, len(calls))
	for _, call := range calls {
		action, ok := a.actions[call.Name]

		var content string
		if !ok {
			content = fmt.Sprintf("Unknown action: %s", call.Name)
		} else {
			a.logger.Debug("dispatching action", zap.String("action", call.Name))
			content = action.Execute(ctx, call.Args)
		}

		a.output(fmt.Sprintf("[%s] %s", call.Name, content))

		results = append(results, ai.ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Content: content,
		})
	}
	return results
}

// sessionEnded reports whether a tool result signals the end of the session.
func sessionEnded(results []ai.ToolResult) bool {
	for _, result := range results {
		lower := strings.ToLower(result.Content)
		if strings.Contains(lower, "disconnect") || strings.Contains(lower, "exit") {
			return true
		}
	}
	return false
}

func isExitRequest(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}
