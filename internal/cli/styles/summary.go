package styles

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bnema/batchdl/internal/application/usecase"
	"github.com/bnema/batchdl/internal/domain/download"
)

// SummaryRenderer renders the outcome of a batch.
type SummaryRenderer struct {
	theme *Theme
}

// NewSummaryRenderer creates a new summary renderer with the given theme.
func NewSummaryRenderer(theme *Theme) *SummaryRenderer {
	return &SummaryRenderer{theme: theme}
}

// Render renders totals followed by one line per failed URL.
func (r *SummaryRenderer) Render(out *usecase.RunBatchOutput, dest string, elapsed time.Duration) string {
	if out == nil {
		return ""
	}

	var written int64
	for _, res := range out.Results {
		written += res.Bytes
	}

	icon := r.theme.SuccessStyle.Render(IconCheck)
	if out.Failed > 0 {
		icon = r.theme.ErrorStyle.Render(IconX)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n  %s %s downloaded, %s failed %s\n",
		icon,
		r.theme.Highlight.Render(fmt.Sprintf("%d", out.Succeeded)),
		r.failedCount(out.Failed),
		r.theme.Subtle.Render(fmt.Sprintf("(%s in %s)", humanize.Bytes(uint64(max(written, 0))), elapsed.Round(time.Millisecond))),
	))
	sb.WriteString(fmt.Sprintf("  %s %s\n",
		lipgloss.NewStyle().Foreground(r.theme.Accent).Render(IconFolder),
		r.theme.Subtle.Render(dest),
	))
	if out.BatchID != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", r.theme.Subtle.Render("batch "+out.BatchID)))
	}

	if out.Failed == 0 {
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\n  Failures (%d):\n", out.Failed))
	for _, res := range out.Results {
		if res.Err == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n      %s\n",
			r.theme.ErrorStyle.Render(IconCursor),
			r.theme.Normal.Render(res.URL),
			r.theme.WarningStyle.Render("["+download.KindOf(res.Err).String()+"]"),
			r.theme.Subtle.Render(causeOf(res.Err)),
		))
	}

	return sb.String()
}

// RenderError renders a fatal error line.
func (r *SummaryRenderer) RenderError(err error) string {
	return fmt.Sprintf("\n  %s %s\n", r.theme.ErrorStyle.Render(IconX), r.theme.ErrorStyle.Render(err.Error()))
}

func (r *SummaryRenderer) failedCount(n int) string {
	if n == 0 {
		return r.theme.Subtle.Render("0")
	}
	return r.theme.ErrorStyle.Render(fmt.Sprintf("%d", n))
}

// causeOf strips the URL and kind prefix that the summary already shows.
func causeOf(err error) string {
	var de *download.DownloadError
	if errors.As(err, &de) && de.Err != nil {
		return de.Err.Error()
	}
	return err.Error()
}
