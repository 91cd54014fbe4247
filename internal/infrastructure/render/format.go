// Package render draws batch frames to a terminal or a log stream.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/bnema/batchdl/internal/domain/download"
)

const (
	// DefaultBarWidth is the bar width used when none is configured.
	DefaultBarWidth = 30
	// UnknownSize stands in for a missing Content-Length.
	UnknownSize = "?"

	minNameWidth = 10
	ellipsis     = "…"
	overallLabel = "total"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	countStyle = lipgloss.NewStyle().Faint(true)
)

// Formatter turns a frame into display lines. It is not safe for
// concurrent use; each renderer owns one.
type Formatter struct {
	bar   progress.Model
	width func() int
}

// NewFormatter creates a Formatter whose lines fit within width() columns.
// A nil width never truncates.
func NewFormatter(barWidth int, width func() int) *Formatter {
	if barWidth <= 0 {
		barWidth = DefaultBarWidth
	}
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	return &Formatter{bar: bar, width: width}
}

// Lines returns the overall bar followed by one bar per entry, in table order.
// With a known width no line is wider than the terminal: names shrink first,
// then the bar is dropped, then the line is cut.
func (f *Formatter) Lines(frame download.Frame) []string {
	width := 0
	if f.width != nil {
		width = f.width()
	}

	lines := make([]string, 0, len(frame.Entries)+1)
	lines = append(lines, f.overall(frame, width))

	if len(frame.Entries) == 0 {
		return lines
	}

	counts := make([]string, len(frame.Entries))
	nameWidth, countWidth := 0, 0
	for i, e := range frame.Entries {
		counts[i] = ByteCounts(e.ProgressEntry)
		nameWidth = max(nameWidth, runewidth.StringWidth(e.Name))
		countWidth = max(countWidth, runewidth.StringWidth(counts[i]))
	}

	showBar := true
	if width > 0 {
		// name, space, bar, space, counts
		available := width - f.bar.Width - countWidth - 2
		if available < min(nameWidth, minNameWidth) {
			showBar = false
			available = width - countWidth - 1
		}
		nameWidth = max(min(nameWidth, available), 1)
	}

	for i, e := range frame.Entries {
		name := runewidth.FillRight(runewidth.Truncate(e.Name, nameWidth, ellipsis), nameWidth)
		line := name + " " + countStyle.Render(counts[i])
		if showBar {
			line = name + " " + f.bar.ViewAs(e.Fraction()) + " " + countStyle.Render(counts[i])
		}
		lines = append(lines, clamp(line, width))
	}

	return lines
}

func (f *Formatter) overall(frame download.Frame, width int) string {
	label := labelStyle.Render(overallLabel)
	counts := fmt.Sprintf("%d/%d", frame.Completed, frame.Total)

	if width > 0 && len(overallLabel)+f.bar.Width+len(counts)+2 > width {
		return clamp(label+" "+countStyle.Render(counts), width)
	}
	return clamp(label+" "+f.bar.ViewAs(frame.Fraction())+" "+countStyle.Render(counts), width)
}

// clamp cuts line to width cells, keeping styling intact. A width of zero
// or less means unlimited.
func clamp(line string, width int) string {
	if width <= 0 || ansi.StringWidth(line) <= width {
		return line
	}
	return ansi.Truncate(line, width, "")
}

// ByteCounts formats an entry as "done/total", or "done/?" when the total
// is unknown.
func ByteCounts(e download.ProgressEntry) string {
	total := UnknownSize
	if e.Known() {
		total = humanize.Bytes(uint64(e.Total))
	}
	return humanize.Bytes(uint64(max(e.Done, 0))) + "/" + total
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
