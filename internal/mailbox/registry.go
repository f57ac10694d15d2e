package mailbox

import (
	"fmt"
	"sync"
)

// Registry tracks active mailbox sessions keyed by account, plus a pointer to
// the account most recently connected. It is owned by the front-end
// controller; the extraction pipeline never consults it and receives an
// established session handle instead.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Client
	current  string
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Client)}
}

// Add stores an established session and makes its account current. An
// existing session for the same account is logged out first.
func (r *Registry) Add(c *Client) {
	if c == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[c.Account()]; ok && old != c {
		_ = old.Close()
	}

	r.sessions[c.Account()] = c
	r.current = c.Account()
}

// Remove logs out and forgets the session for the given account. When the
// removed account was current, the current pointer is cleared.
func (r *Registry) Remove(account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.sessions[account]
	if !ok {
		return fmt.Errorf("no active connection for %s", account)
	}

	delete(r.sessions, account)
	if r.current == account {
		r.current = ""
	}

	return c.Close()
}

// Get returns the session for the given account.
func (r *Registry) Get(account string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.sessions[account]
	return c, ok
}

// Current returns the session of the most recently connected account.
func (r *Registry) Current() (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == "" {
		return nil, false
	}
	c, ok := r.sessions[r.current]
	return c, ok
}

// CurrentAccount returns the account identifier of the current session, or an
// empty string when none is connected.
func (r *Registry) CurrentAccount() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// CloseAll logs out every session and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for account, c := range r.sessions {
		_ = c.Close()
		delete(r.sessions, account)
	}
	r.current = ""
}
