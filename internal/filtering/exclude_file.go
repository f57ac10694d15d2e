package filtering

import (
	"fmt"
	"os"
	"strings"
)

// LoadExcludedSenders reads an exclude file: one sender address or domain per
// line, blank lines and #-comments ignored.
func LoadExcludedSenders(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading exclude file: %w", err)
	}

	var senders []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		senders = append(senders, line)
	}

	return senders, nil
}
