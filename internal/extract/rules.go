package extract

// Rules holds the fixed lexicons driving the relevance classifier. All
// matching is case-insensitive substring matching; the lists are read-only for
// the lifetime of a pipeline run.
type Rules struct {
	// JobKeywords are positive signals. At least two distinct hits are
	// required when no trusted domain matches.
	JobKeywords []string
	// ExcludeKeywords reject a message outright, regardless of any other
	// signal.
	ExcludeKeywords []string
	// TrustedDomains are sender-address substrings sufficient on their own to
	// accept a message.
	TrustedDomains []string
	// ExcludeDomains are sender local-part prefixes (such as "noreply@") that
	// disqualify a sender from the trusted-domain shortcut.
	ExcludeDomains []string
}

// DefaultRules returns the built-in lexicons.
func DefaultRules() *Rules {
	return &Rules{
		JobKeywords: []string{
			"job", "position", "opportunity", "hiring", "career", "opening",
			"recruitment", "apply", "interview", "hackathon", "internship",
			"developer", "engineer", "coding challenge", "programming contest",
		},
		ExcludeKeywords: []string{
			"liked your", "viewed your profile", "connection request",
			"endorsed you", "work anniversary", "network update",
			"people you may know", "trending in your network", "shared a post",
			"conversation", "invitations", "newsletter", "course", "stories",
		},
		ExcludeDomains: []string{
			"noreply@", "no-reply@", "donotreply@", "notifications@",
			"newsletter@", "marketing@", "promo@", "offers@",
		},
		TrustedDomains: []string{
			"naukri.com", "indeed.com", "glassdoor.com", "linkedin.com/jobs",
			"unstop.com", "internshala.com", "devfolio.co", "github.com",
		},
	}
}

// Merge overrides any non-empty list of the receiver with the corresponding
// list from other. Used to apply configuration overrides on top of the
// defaults.
func (r *Rules) Merge(other *Rules) *Rules {
	if other == nil {
		return r
	}
	merged := *r
	if len(other.JobKeywords) > 0 {
		merged.JobKeywords = other.JobKeywords
	}
	if len(other.ExcludeKeywords) > 0 {
		merged.ExcludeKeywords = other.ExcludeKeywords
	}
	if len(other.TrustedDomains) > 0 {
		merged.TrustedDomains = other.TrustedDomains
	}
	if len(other.ExcludeDomains) > 0 {
		merged.ExcludeDomains = other.ExcludeDomains
	}
	return &merged
}
