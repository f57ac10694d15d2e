package jobpost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"
)

const (
	fetchTimeout = 30 * time.Second

	// Some job boards reject requests without a browser-looking agent.
	userAgent = "Mozilla/5.0 (compatible; breadfinder/1.0)"

	maxBodyBytes = 4 << 20
)

// Fetch downloads a job posting page and returns its visible text.
func Fetch(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("job posting url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}

	text, err := html2text.FromString(string(body), html2text.Options{OmitLinks: true, TextOnly: true})
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", url, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no visible text at %s", url)
	}

	return text, nil
}
