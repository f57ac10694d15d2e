package extract

import (
	"sort"
	"strings"
)

// DomainCount is the number of accepted messages from one sender domain.
type DomainCount struct {
	Domain string
	Count  int
}

// TopDomains aggregates the sender domains of the accepted messages, most
// frequent first. Ties are broken alphabetically for stable output. A
// non-positive limit returns every domain.
func TopDomains(records []*JobEmail, limit int) []DomainCount {
	counts := make(map[string]int)
	for _, record := range records {
		counts[SenderDomain(record.Sender)]++
	}

	result := make([]DomainCount, 0, len(counts))
	for domain, count := range counts {
		result = append(result, DomainCount{Domain: domain, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Domain < result[j].Domain
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result
}

// SenderDomain extracts the domain of a sender field, which may be a bare
// address or "Display Name <addr>". Senders without an address map to
// "unknown".
func SenderDomain(sender string) string {
	_, after, found := strings.Cut(sender, "@")
	if !found {
		return "unknown"
	}
	domain, _, _ := strings.Cut(after, ">")
	return strings.ToLower(strings.TrimSpace(domain))
}
