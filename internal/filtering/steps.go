package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/extract"
)

type duplicatesFilter struct{}

// NewDuplicates creates a filter that removes repeated copies of the same
// email. The newest copy wins, so the list must already be sorted newest
// first.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Disable(string) {}

func (f *duplicatesFilter) IsEnabled() bool { return true }

func (f *duplicatesFilter) Validate(*Config) error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, deps Deps, emails []*extract.JobEmail) ([]*extract.JobEmail, Step, error) {
	initial := len(emails)
	seen := make(map[string]bool, initial)
	kept := make([]*extract.JobEmail, 0, initial)

	for _, email := range emails {
		key := strings.ToLower(email.Sender) + "\x00" + email.Subject
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, email)
	}

	if deps.Logger != nil && len(kept) < initial {
		deps.Logger.Info("dropping duplicated emails",
			zap.Int("dropped", initial-len(kept)),
			zap.Int("emails_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

type blockedSendersFilter struct {
	senders []string
}

// NewBlockedSenders creates a filter that removes emails from senders
// configured in the config. An entry with "@" blocks that exact address;
// anything else blocks a whole domain.
func NewBlockedSenders() Filter {
	return &blockedSendersFilter{}
}

func (f *blockedSendersFilter) Name() string { return "blocked_senders" }

func (f *blockedSendersFilter) Disable(string) {}

func (f *blockedSendersFilter) IsEnabled() bool { return true }

func (f *blockedSendersFilter) Validate(cfg *Config) error {
	f.senders = nil
	if cfg != nil {
		f.senders = append(f.senders, cfg.BlockedSenders...)
	}
	return nil
}

func (f *blockedSendersFilter) Apply(_ context.Context, deps Deps, emails []*extract.JobEmail) ([]*extract.JobEmail, Step, error) {
	initial := len(emails)
	if len(f.senders) == 0 {
		return emails, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make([]*extract.JobEmail, 0, initial)
	var excluded []string
	for _, email := range emails {
		if senderBlocked(email.Sender, f.senders) {
			excluded = append(excluded, email.Sender)
			continue
		}
		kept = append(kept, email)
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding emails by blocked senders",
			zap.Strings("excluded_senders", excluded),
			zap.Int("emails_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: len(kept)}, nil
}

func (f *blockedSendersFilter) Status() Status {
	details := map[string]string{}
	if len(f.senders) > 0 {
		details["senders"] = strings.Join(f.senders, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes emails from senders listed in
// an exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(*Config) error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, emails []*extract.JobEmail) ([]*extract.JobEmail, Step, error) {
	initial := len(emails)
	if f.path == "" {
		return emails, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	blocked, err := LoadExcludedSenders(f.path)
	if err != nil {
		return nil, Step{}, fmt.Errorf("getting excluded senders from file: %w", err)
	}

	kept := make([]*extract.JobEmail, 0, initial)
	var excluded []string
	for _, email := range emails {
		if senderBlocked(email.Sender, blocked) {
			excluded = append(excluded, email.Sender)
			continue
		}
		kept = append(kept, email)
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding emails based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_senders", excluded),
			zap.Int("emails_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: len(kept)}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type aiFitFilter struct {
	disabled bool
	reason   string
}

// NewAIFit creates the AI-based refinement step. Emails whose content does
// not fit the resume are dropped; evaluation failures keep the email.
func NewAIFit() Filter {
	return &aiFitFilter{}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return !f.disabled }

func (f *aiFitFilter) Validate(*Config) error { return nil }

func (f *aiFitFilter) Apply(ctx context.Context, deps Deps, emails []*extract.JobEmail) ([]*extract.JobEmail, Step, error) {
	initial := len(emails)
	if deps.Matcher == nil {
		if deps.Logger != nil {
			deps.Logger.Info("ai matcher is not configured; skipping ai_fit filter")
		}
		return emails, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}
	if strings.TrimSpace(deps.Resume) == "" {
		return nil, Step{}, fmt.Errorf("resume text is required for AI evaluation")
	}

	kept := make([]*extract.JobEmail, 0, initial)
	for _, email := range emails {
		assessment, err := deps.Matcher.Evaluate(ctx, deps.Resume, email.Content)
		if err != nil {
			if deps.Logger != nil {
				deps.Logger.Warn("AI evaluation failed",
					zap.String("subject", email.Subject),
					zap.Error(err),
				)
			}
			kept = append(kept, email)
			continue
		}

		if !assessment.Fit {
			if deps.Logger != nil {
				deps.Logger.Info("email rejected by AI provider",
					zap.String("subject", email.Subject),
					zap.Float64("ai_score", assessment.Score),
				)
			}
			continue
		}

		if deps.Logger != nil {
			deps.Logger.Info("email approved by AI",
				zap.String("subject", email.Subject),
				zap.Float64("ai_score", assessment.Score),
			)
		}
		kept = append(kept, email)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *aiFitFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{
		"enabled": strconv.FormatBool(f.IsEnabled()),
	}}
}

// senderBlocked reports whether the sender matches any blocked entry: entries
// with "@" match the exact address, others match the sender's domain.
func senderBlocked(sender string, blocked []string) bool {
	lowered := strings.ToLower(sender)
	domain := extract.SenderDomain(sender)

	for _, entry := range blocked {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "@") {
			if strings.Contains(lowered, entry) {
				return true
			}
			continue
		}
		if entry == domain {
			return true
		}
	}

	return false
}
