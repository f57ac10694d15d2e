package extract

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	reportRule    = strings.Repeat("=", 60)
	reportSubRule = strings.Repeat("-", 40)
)

// ReportWriter serializes accepted messages to the fixed plain-text report
// layout. The section markers and field labels are a contract: downstream
// tooling may parse the file.
type ReportWriter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewReportWriter creates a ReportWriter. A nil logger is replaced with a
// no-op one.
func NewReportWriter(logger *zap.Logger) *ReportWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWriter{logger: logger, now: time.Now}
}

// Write persists the records to path, overwriting any existing file. It
// returns false and logs the cause on any I/O failure instead of propagating.
func (w *ReportWriter) Write(records []*JobEmail, path string) bool {
	var b strings.Builder

	b.WriteString("JOB EMAILS EXTRACTED\n")
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Total emails found: %d\n", len(records))
	fmt.Fprintf(&b, "Extraction date: %s\n", w.now().Format(DateTimeLayout))
	b.WriteString(reportRule + "\n\n")

	for i, record := range records {
		fmt.Fprintf(&b, "EMAIL %d\n", i+1)
		b.WriteString(reportSubRule + "\n")
		fmt.Fprintf(&b, "Subject: %s\n", record.Subject)
		fmt.Fprintf(&b, "From: %s\n", record.Sender)
		fmt.Fprintf(&b, "Date: %s\n", record.Date)
		fmt.Fprintf(&b, "\nContent:\n%s\n", record.Content)

		if utf8.RuneCountInString(record.Content) >= maxContentRunes {
			fmt.Fprintf(&b, "\n[Content truncated to %d characters]\n", maxContentRunes)
		}

		b.WriteString("\n" + reportRule + "\n\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		w.logger.Error("saving report failed", zap.String("path", path), zap.Error(err))
		return false
	}

	w.logger.Info("job emails saved", zap.String("path", path), zap.Int("count", len(records)))
	return true
}
