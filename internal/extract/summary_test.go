package extract

import (
	"reflect"
	"testing"
)

func TestTopDomains(t *testing.T) {
	t.Parallel()

	records := []*JobEmail{
		{Sender: "a@one.example"},
		{Sender: "b@one.example"},
		{Sender: "HR <c@Two.example>"},
		{Sender: "d@two.example"},
		{Sender: "e@three.example"},
		{Sender: "no-address"},
	}

	got := TopDomains(records, 2)
	want := []DomainCount{
		{Domain: "one.example", Count: 2},
		{Domain: "two.example", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TopDomains = %v, want %v", got, want)
	}

	all := TopDomains(records, 0)
	if len(all) != 4 {
		t.Fatalf("expected 4 domains without a limit, got %d", len(all))
	}
	if all[3].Domain != "unknown" {
		t.Fatalf("expected the unknown bucket last, got %v", all)
	}
}

func TestSenderDomain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sender string
		want   string
	}{
		{"plain@acme.example", "acme.example"},
		{"Recruiter <hr@Acme.Example>", "acme.example"},
		{"no address here", "unknown"},
		{"", "unknown"},
	}

	for _, tc := range cases {
		if got := SenderDomain(tc.sender); got != tc.want {
			t.Fatalf("SenderDomain(%q) = %q, want %q", tc.sender, got, tc.want)
		}
	}
}
