package mailbox

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"
)

const inboxFolder = "INBOX"

// Client wraps a single authenticated IMAP session.
type Client struct {
	imap    *client.Client
	account string
	logger  *zap.Logger
}

// Connect dials the IMAP server over TLS and logs in. The password is not
// retained; it lives only in the session the server holds.
func Connect(server string, port int, account, password string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := client.DialTLS(fmt.Sprintf("%s:%d", server, port), nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s:%d: %w", server, port, err)
	}

	if err := c.Login(account, password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("login for %s: %w", account, err)
	}

	logger.Info("mailbox connected", zap.String("account", account), zap.String("server", server))

	return &Client{imap: c, account: account, logger: logger}, nil
}

// Account returns the account identifier this session was opened for.
func (c *Client) Account() string {
	return c.account
}

// Close logs the session out. Closing a client that never connected is a
// no-op.
func (c *Client) Close() error {
	if c == nil || c.imap == nil {
		return nil
	}
	return c.imap.Logout()
}

// FetchSince retrieves every INBOX message dated at or after since, newest
// first. The IMAP SINCE criterion compares internal dates at day granularity,
// matching the calendar-day retrieval window.
func (c *Client) FetchSince(ctx context.Context, since time.Time) ([]*Message, error) {
	if _, err := c.imap.Select(inboxFolder, true); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", inboxFolder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	seqNums, err := c.imap.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("searching since %s: %w", since.Format("2006-01-02"), err)
	}

	if len(seqNums) == 0 {
		return []*Message{}, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchInternalDate,
		section.FetchItem(),
	}

	messages := make(chan *imap.Message, len(seqNums))
	done := make(chan error, 1)
	go func() {
		done <- c.imap.Fetch(seqSet, items, messages)
	}()

	result := make([]*Message, 0, len(seqNums))
	for msg := range messages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parsed, err := parseMessage(msg, section)
		if err != nil {
			c.logger.Warn("skipping unparseable message", zap.Error(err))
			continue
		}
		result = append(result, parsed)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})

	c.logger.Debug("messages fetched",
		zap.String("account", c.account),
		zap.Int("count", len(result)),
	)

	return result, nil
}
