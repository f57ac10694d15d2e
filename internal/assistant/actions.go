package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/extract"
	"github.com/breadfinder/breadfinder/internal/mailbox"
)

// Parameter describes one argument of an action, independent of any model
// vendor's function-calling convention.
type Parameter struct {
	Name        string
	Type        string // "string" or "integer"
	Description string
	Required    bool
}

// Action is a named operation the model may invoke. Execute returns plain
// text; failures are reported as ordinary content, never as errors.
type Action interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Execute(ctx context.Context, args map[string]any) string
}

// Dialer opens an authenticated mailbox session.
type Dialer func(account, password string) (*mailbox.Client, error)

// SessionStore is the slice of the session registry the connection actions
// need.
type SessionStore interface {
	Add(c *mailbox.Client)
	Remove(account string) error
	CurrentAccount() string
}

// decodeArgs maps loosely-typed tool-call arguments onto a typed parameter
// struct. Numbers arrive as float64 from the wire, so decoding is weakly
// typed.
func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

type connectAction struct {
	registry SessionStore
	dial     Dialer
	logger   *zap.Logger
}

// NewConnectAction creates the connect operation. Established sessions are
// stored in the registry and become current.
func NewConnectAction(registry SessionStore, dial Dialer, logger *zap.Logger) Action {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &connectAction{registry: registry, dial: dial, logger: logger}
}

func (a *connectAction) Name() string { return "connect" }

func (a *connectAction) Description() string {
	return "Connect to the user's mailbox account using their address and app password"
}

func (a *connectAction) Parameters() []Parameter {
	return []Parameter{
		{Name: "username", Type: "string", Description: "mailbox address", Required: true},
		{Name: "password", Type: "string", Description: "app password", Required: true},
	}
}

func (a *connectAction) Execute(_ context.Context, args map[string]any) string {
	var params struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return fmt.Sprintf("Invalid connect arguments: %v", err)
	}

	if strings.TrimSpace(params.Username) == "" || params.Password == "" {
		return "Both username and password are required to connect."
	}

	client, err := a.dial(params.Username, params.Password)
	if err != nil {
		return fmt.Sprintf("Connection failed: %v", err)
	}

	a.registry.Add(client)

	return fmt.Sprintf("Connection successful for %s", params.Username)
}

type disconnectAction struct {
	registry SessionStore
	logger   *zap.Logger
}

// NewDisconnectAction creates the disconnect operation.
func NewDisconnectAction(registry SessionStore, logger *zap.Logger) Action {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &disconnectAction{registry: registry, logger: logger}
}

func (a *disconnectAction) Name() string { return "disconnect" }

func (a *disconnectAction) Description() string {
	return "Disconnect the mailbox session identified by the username"
}

func (a *disconnectAction) Parameters() []Parameter {
	return []Parameter{
		{Name: "username", Type: "string", Description: "mailbox address to disconnect; defaults to the current session", Required: false},
	}
}

func (a *disconnectAction) Execute(_ context.Context, args map[string]any) string {
	var params struct {
		Username string `mapstructure:"username"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return fmt.Sprintf("Invalid disconnect arguments: %v", err)
	}

	account := strings.TrimSpace(params.Username)
	if account == "" {
		account = a.registry.CurrentAccount()
	}
	if account == "" {
		return "No active connection to disconnect."
	}

	if err := a.registry.Remove(account); err != nil {
		return fmt.Sprintf("Error disconnecting: %v", err)
	}

	return fmt.Sprintf("Disconnected %s successfully", account)
}

// SessionProvider exposes the current mailbox session as a pipeline source.
type SessionProvider interface {
	Current() (extract.MailSource, string, bool)
}

// RegistrySessions adapts a mailbox.Registry to the SessionProvider interface.
type RegistrySessions struct {
	Registry *mailbox.Registry
}

// Current returns the current session and its account.
func (r RegistrySessions) Current() (extract.MailSource, string, bool) {
	client, ok := r.Registry.Current()
	if !ok {
		return nil, "", false
	}
	return client, client.Account(), true
}

type searchAction struct {
	sessions   SessionProvider
	rules      *extract.Rules
	writer     *extract.ReportWriter
	outputPath string
	logger     *zap.Logger
}

// NewSearchAction creates the search operation. Matches are written to
// outputPath and summarised in the result text.
func NewSearchAction(sessions SessionProvider, rules *extract.Rules, writer *extract.ReportWriter, outputPath string, logger *zap.Logger) Action {
	if rules == nil {
		rules = extract.DefaultRules()
	}
	if writer == nil {
		writer = extract.NewReportWriter(logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &searchAction{
		sessions:   sessions,
		rules:      rules,
		writer:     writer,
		outputPath: outputPath,
		logger:     logger,
	}
}

func (a *searchAction) Name() string { return "search" }

func (a *searchAction) Description() string {
	return "Search the connected mailbox for job-related emails and save them to a text file"
}

func (a *searchAction) Parameters() []Parameter {
	return []Parameter{
		{Name: "days_back", Type: "integer", Description: "how many days of mail to scan (default 10)", Required: false},
	}
}

func (a *searchAction) Execute(ctx context.Context, args map[string]any) string {
	var params struct {
		DaysBack int `mapstructure:"days_back"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return fmt.Sprintf("Invalid search arguments: %v", err)
	}
	if params.DaysBack <= 0 {
		params.DaysBack = extract.DefaultDaysBack
	}

	source, account, ok := a.sessions.Current()
	if !ok {
		return "No mailbox is connected. Connect first."
	}

	pipeline := extract.NewPipeline(source, a.rules, a.logger.With(zap.String("account", account)))
	emails := pipeline.FilterJobEmails(ctx, params.DaysBack)

	if len(emails) == 0 {
		return fmt.Sprintf("Extraction finished: no job-related emails in the last %d days.", params.DaysBack)
	}

	if !a.writer.Write(emails, a.outputPath) {
		return fmt.Sprintf("Found %d job-related emails but saving the report to %s failed.", len(emails), a.outputPath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Extraction successful! Found %d job-related emails in the last %d days; saved to %s.",
		len(emails), params.DaysBack, a.outputPath)

	if top := extract.TopDomains(emails, 5); len(top) > 0 {
		b.WriteString(" Top domains:")
		for _, dc := range top {
			fmt.Fprintf(&b, " %s (%d)", dc.Domain, dc.Count)
		}
	}

	return b.String()
}
