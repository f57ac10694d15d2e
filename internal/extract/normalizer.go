package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// noContentPlaceholder is returned when no usable body could be recovered.
const noContentPlaceholder = "No content available"

// Minimal length the HTML strategy must produce to be considered usable.
const minExtractedLen = 10

var (
	// Paired elements whose content is invisible and must go before parsing.
	strippedElements = []string{"script", "style", "head", "title"}

	pairedElementRe = buildPairedElementRes(strippedElements)
	voidElementRe   = regexp.MustCompile(`(?i)<(?:meta|link)\b[^>]*>`)
	doctypeRe       = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	xmlPrologRe     = regexp.MustCompile(`(?i)<\?xml[^>]*\?>`)
	commentRe       = regexp.MustCompile(`(?s)<!--.*?-->`)

	multiBlankLineRe = regexp.MustCompile(`\n\s*\n`)
	horizontalWSRe   = regexp.MustCompile(`[ \t]+`)
	spaceAfterNLRe   = regexp.MustCompile(`\n `)
	spaceBeforeNLRe  = regexp.MustCompile(` \n`)
	anyWhitespaceRe  = regexp.MustCompile(`\s+`)

	// StrictPolicy removes every tag, leaving text content only.
	stripTagsPolicy = bluemonday.StrictPolicy()
)

func buildPairedElementRes(tags []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(tags))
	for _, tag := range tags {
		res = append(res, regexp.MustCompile(fmt.Sprintf(`(?is)<%s\b[^>]*>.*?</%s>`, tag, tag)))
	}
	return res
}

// Normalizer converts a raw message body, plain text or HTML, into clean
// whitespace-normalized text. It never fails: extraction strategies are tried
// in order of decreasing fidelity and the first usable result wins.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer. A nil logger is replaced with a no-op one.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize returns the cleaned body text for a message. Preference order:
// trimmed plain text, the HTML extraction pipeline, a regex-only tag strip,
// and finally the text after the headers of the raw message dump. When every
// input is blank a fixed placeholder is returned.
func (n *Normalizer) Normalize(plain, html, raw string) string {
	if text := strings.TrimSpace(plain); text != "" {
		return text
	}

	if strings.TrimSpace(html) != "" {
		if text, ok := n.extractHTML(html); ok {
			return text
		}
		if text := stripTags(html); text != "" {
			return text
		}
	}

	if body := rawBody(raw); body != "" {
		return body
	}

	return noContentPlaceholder
}

// extractHTML is the high-fidelity strategy: strip invisible elements and
// markup noise, parse the remainder as HTML and keep visible text only, then
// normalize whitespace. The result is rejected when the parser errors, the
// output is too short or it still looks like raw markup.
func (n *Normalizer) extractHTML(html string) (string, bool) {
	cleaned := html
	for _, re := range pairedElementRe {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = voidElementRe.ReplaceAllString(cleaned, "")
	cleaned = doctypeRe.ReplaceAllString(cleaned, "")
	cleaned = xmlPrologRe.ReplaceAllString(cleaned, "")
	cleaned = commentRe.ReplaceAllString(cleaned, "")

	text, err := html2text.FromString(cleaned, html2text.Options{OmitLinks: true, TextOnly: true})
	if err != nil {
		n.logger.Debug("html extraction failed, falling back to tag stripping", zap.Error(err))
		return "", false
	}

	text = normalizeWhitespace(text)

	if len(strings.TrimSpace(text)) <= minExtractedLen {
		return "", false
	}
	if looksLikeMarkup(text) {
		return "", false
	}

	return text, true
}

// normalizeWhitespace trims every line, drops blank lines, collapses runs of
// blank lines to a single one and runs of horizontal whitespace to one space.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	text = strings.Join(kept, "\n")

	text = multiBlankLineRe.ReplaceAllString(text, "\n\n")
	text = horizontalWSRe.ReplaceAllString(text, " ")
	text = spaceAfterNLRe.ReplaceAllString(text, "\n")
	text = spaceBeforeNLRe.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}

// looksLikeMarkup reports whether an extraction result is still raw HTML.
func looksLikeMarkup(text string) bool {
	if strings.HasPrefix(text, "<!DOCTYPE") {
		return true
	}
	head := text
	if len(head) > 100 {
		head = head[:100]
	}
	return strings.Contains(head, "<html")
}

// stripTags is the low-fidelity fallback: drop script and style blocks, strip
// every remaining tag and flatten all whitespace.
func stripTags(html string) string {
	for _, re := range pairedElementRe {
		html = re.ReplaceAllString(html, "")
	}
	text := stripTagsPolicy.Sanitize(html)
	text = anyWhitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// rawBody returns the text after the first blank-line separator of a raw
// message dump, the part following the headers. Wire dumps separate headers
// with CRLF; locally produced text may use bare LF.
func rawBody(raw string) string {
	if raw == "" {
		return ""
	}
	_, body, found := strings.Cut(raw, "\r\n\r\n")
	if !found {
		_, body, found = strings.Cut(raw, "\n\n")
	}
	if !found {
		return ""
	}
	return strings.TrimSpace(body)
}
