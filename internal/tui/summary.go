package tui

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/parceltrack/internal/engine"
)

// summaryPrinter formats counts with locale-aware separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var summaryPrinter = message.NewPrinter(language.English)

// RenderRunSummary renders the final report of a batch run. It is shared by
// the interactive TUI and the plain CLI output path.
func RenderRunSummary(s engine.Summary) string {
	counts := summaryPrinter.Sprintf(
		"Successful updates: %d\nFailed updates: %d\n", s.Succeeded, s.Failed,
	)

	switch s.Status {
	case engine.StatusCompleted:
		return titleStyle.Render("Processing complete!") + "\n" + counts
	case engine.StatusCancelled:
		header := cancelStyle.Render("Processing cancelled") + "\n"
		note := helpStyle.Render(fmt.Sprintf(
			"Saved results reflect the last checkpoint (%d of %d rows attempted).",
			s.Processed, s.TotalRows,
		)) + "\n"
		return header + counts + note
	case engine.StatusFailed:
		return errorStyle.Render("Processing failed") + "\n" + counts
	default:
		return counts
	}
}
