package extract

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/mailbox"
	"github.com/breadfinder/breadfinder/internal/util"
)

const (
	// DateTimeLayout is the timestamp format used in records and reports.
	DateTimeLayout = "2006-01-02 15:04:05"

	// DefaultDaysBack is the default retrieval window in calendar days.
	DefaultDaysBack = 10

	maxContentRunes   = 2000
	progressBatchSize = 50
	subjectPreviewLen = 50
)

// JobEmail is one accepted message. Immutable after creation; content is
// truncated to maxContentRunes.
type JobEmail struct {
	Subject string
	Sender  string
	Date    string
	Content string
}

// MailSource supplies messages from an established mailbox session, newest
// first, with dates at or after the given cutoff.
type MailSource interface {
	FetchSince(ctx context.Context, since time.Time) ([]*mailbox.Message, error)
}

// Pipeline pulls messages from a mail source, normalizes and classifies each
// one independently and accumulates the matches. A failing message is skipped,
// a failing retrieval yields an empty result; neither aborts the run.
type Pipeline struct {
	source MailSource
	rules  *Rules
	norm   *Normalizer
	logger *zap.Logger

	now func() time.Time
}

// NewPipeline creates a pipeline over an already-established mailbox session.
func NewPipeline(source MailSource, rules *Rules, logger *zap.Logger) *Pipeline {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		source: source,
		rules:  rules,
		norm:   NewNormalizer(logger),
		logger: logger,
		now:    time.Now,
	}
}

// FilterJobEmails scans messages from the last daysBack calendar days and
// returns the job-related ones in mailbox iteration order (newest first).
func (p *Pipeline) FilterJobEmails(ctx context.Context, daysBack int) []*JobEmail {
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}

	cutoff := dayStart(p.now().AddDate(0, 0, -daysBack))

	messages, err := p.source.FetchSince(ctx, cutoff)
	if err != nil {
		p.logger.Error("fetching messages failed", zap.Error(err))
		return []*JobEmail{}
	}

	jobEmails := make([]*JobEmail, 0)
	processed := 0

	for _, msg := range messages {
		processed++

		record, ok, err := p.process(msg)
		if err != nil {
			p.logger.Warn("skipping message", zap.Error(err))
			continue
		}

		if ok {
			jobEmails = append(jobEmails, record)
			p.logger.Info("job email found",
				zap.String("subject", util.TruncateRunes(record.Subject, subjectPreviewLen)),
			)
		}

		if processed%progressBatchSize == 0 {
			p.logger.Info("processed emails", zap.Int("count", processed))
		}
	}

	p.logger.Info("extraction summary",
		zap.Int("job_emails", len(jobEmails)),
		zap.Int("processed", processed),
	)

	return jobEmails
}

// process normalizes and classifies a single message.
func (p *Pipeline) process(msg *mailbox.Message) (*JobEmail, bool, error) {
	if msg == nil {
		return nil, false, errors.New("nil message")
	}

	subject := msg.Subject
	sender := msg.From

	date := ""
	if !msg.Date.IsZero() {
		date = msg.Date.Format(DateTimeLayout)
	}

	content := p.norm.Normalize(msg.Text, msg.HTML, msg.Raw)

	if !p.rules.IsJobRelated(subject, sender, content) {
		return nil, false, nil
	}

	return &JobEmail{
		Subject: subject,
		Sender:  sender,
		Date:    date,
		Content: util.TruncateRunes(content, maxContentRunes),
	}, true, nil
}

// dayStart truncates a timestamp to midnight, local time. The retrieval
// window is counted in calendar days, time-of-day ignored.
func dayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
