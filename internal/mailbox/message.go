package mailbox

import "time"

// Message is one retrieved mail message. Text and HTML hold the decoded body
// variants; either or both may be empty. Raw is the undecoded message source,
// kept as a last-resort input for content extraction.
type Message struct {
	Subject string
	From    string
	Date    time.Time
	Text    string
	HTML    string
	Raw     string
}
