package extract

import "strings"

// IsJobRelated decides whether a message describes a job or hiring
// opportunity. First match wins, in this order:
//
//  1. any exclusion keyword anywhere in subject, sender or content rejects
//     the message, trusted senders included;
//  2. a trusted domain in the sender accepts it, unless the sender address
//     starts with an excluded prefix such as "noreply@";
//  3. otherwise at least two distinct job keywords must appear.
//
// All comparisons are case-insensitive substring matches.
func (r *Rules) IsJobRelated(subject, sender, content string) bool {
	allText := strings.ToLower(subject + sender + content)

	for _, word := range r.ExcludeKeywords {
		if strings.Contains(allText, strings.ToLower(word)) {
			return false
		}
	}

	loweredSender := strings.ToLower(sender)
	for _, domain := range r.TrustedDomains {
		if strings.Contains(loweredSender, strings.ToLower(domain)) && !r.senderExcluded(loweredSender) {
			return true
		}
	}

	count := 0
	for _, keyword := range r.JobKeywords {
		if strings.Contains(allText, strings.ToLower(keyword)) {
			count++
		}
	}

	return count >= 2
}

// senderExcluded reports whether the sender address carries one of the
// excluded local-part prefixes. The sender field may be a bare address or
// "Display Name <addr>"; the prefixes are matched as substrings so both
// shapes work.
func (r *Rules) senderExcluded(loweredSender string) bool {
	for _, prefix := range r.ExcludeDomains {
		if strings.Contains(loweredSender, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
