package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ConfigRenderer renders config command messages.
type ConfigRenderer struct {
	theme *Theme
}

// NewConfigRenderer creates a new config renderer with the given theme.
func NewConfigRenderer(theme *Theme) *ConfigRenderer {
	return &ConfigRenderer{theme: theme}
}

// RenderConfigInfo renders the active config file, or a note that defaults
// are in use.
func (r *ConfigRenderer) RenderConfigInfo(path string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	if path == "" {
		return fmt.Sprintf("\n  %s %s\n", iconStyle.Render(IconInfo), r.theme.Subtle.Render("No config file, using defaults"))
	}
	return fmt.Sprintf("\n  %s Config %s\n", iconStyle.Render(IconConfig), r.theme.Subtle.Render(path))
}

// RenderWritten renders the path of a file the command created.
func (r *ConfigRenderer) RenderWritten(what, path string) string {
	return fmt.Sprintf("  %s %s %s\n",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Normal.Render(what),
		r.theme.Subtle.Render(path),
	)
}

// RenderError renders an error message.
func (r *ConfigRenderer) RenderError(err error) string {
	return fmt.Sprintf("\n  %s %s\n", r.theme.ErrorStyle.Render(IconWarning), r.theme.ErrorStyle.Render(err.Error()))
}
