package extract

import "testing"

func TestIsJobRelated(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	cases := []struct {
		name    string
		subject string
		sender  string
		content string
		want    bool
	}{
		{
			name:    "two keywords accept",
			subject: "Exciting opportunity",
			sender:  "recruiter@acme.example",
			content: "We are hiring a backend developer.",
			want:    true,
		},
		{
			name:    "single keyword is not enough",
			subject: "Your weekly digest",
			sender:  "digest@acme.example",
			content: "A developer wrote an interesting post.",
			want:    false,
		},
		{
			name:    "trusted domain accepts without keywords",
			subject: "New message",
			sender:  "hr@naukri.com",
			content: "Please see the attached details.",
			want:    true,
		},
		{
			name:    "exclusion keyword rejects trusted sender",
			subject: "Someone viewed your profile",
			sender:  "hr@naukri.com",
			content: "See who it was.",
			want:    false,
		},
		{
			name:    "noreply prefix disables trusted shortcut",
			subject: "Weekly update",
			sender:  "noreply@indeed.com",
			content: "Here is what happened this week.",
			want:    false,
		},
		{
			name:    "noreply trusted sender still passes on keywords",
			subject: "Job alert: Go engineer",
			sender:  "noreply@indeed.com",
			content: "A new position matches your profile.",
			want:    true,
		},
		{
			name:    "hackathon with apply",
			subject: "Hackathon registration open",
			sender:  "events@campus.example",
			content: "Apply before Friday to participate.",
			want:    true,
		},
		{
			name:    "social notification rejected",
			subject: "Anna liked your post about job hunting",
			sender:  "updates@social.example",
			content: "Your post about the job search got a reaction.",
			want:    false,
		},
		{
			name:    "case-insensitive matching",
			subject: "HIRING NOW",
			sender:  "talent@acme.example",
			content: "Senior ENGINEER wanted.",
			want:    true,
		},
		{
			name:    "empty message",
			subject: "",
			sender:  "",
			content: "",
			want:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := rules.IsJobRelated(tc.subject, tc.sender, tc.content)
			if got != tc.want {
				t.Fatalf("IsJobRelated(%q, %q, ...) = %v, want %v", tc.subject, tc.sender, got, tc.want)
			}
		})
	}
}

func TestMergeOverridesOnlyProvidedLists(t *testing.T) {
	t.Parallel()

	defaults := DefaultRules()
	merged := defaults.Merge(&Rules{JobKeywords: []string{"quant"}})

	if len(merged.JobKeywords) != 1 || merged.JobKeywords[0] != "quant" {
		t.Fatalf("expected job keywords to be overridden, got %v", merged.JobKeywords)
	}
	if len(merged.TrustedDomains) != len(defaults.TrustedDomains) {
		t.Fatalf("expected trusted domains to keep defaults")
	}
	if len(defaults.JobKeywords) == 1 {
		t.Fatalf("merge must not mutate the receiver")
	}
}

func TestMergeNilReturnsReceiver(t *testing.T) {
	t.Parallel()

	defaults := DefaultRules()
	if merged := defaults.Merge(nil); merged != defaults {
		t.Fatalf("expected the receiver back for a nil override")
	}
}
