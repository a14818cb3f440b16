// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Brand Colors.
var (
	Quill  = lipgloss.Color("#2563EB")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
)

// Palette renders badges and headers with a specific lipgloss renderer so that
// the color profile follows the destination writer.
type Palette struct {
	r *lipgloss.Renderer
}

// NewPalette returns a Palette bound to r.
func NewPalette(r *lipgloss.Renderer) Palette {
	return Palette{r: r}
}

// Header renders a table header cell.
func (p Palette) Header(s string) string {
	return p.r.NewStyle().Bold(true).Foreground(Quill).Render(s)
}

// Muted renders secondary text.
func (p Palette) Muted(s string) string {
	return p.r.NewStyle().Foreground(Slate).Render(s)
}

// Badge renders a status word with an icon and a color matching its meaning.
// Unknown statuses render muted.
func (p Palette) Badge(status string) string {
	icon, color := Circle, Slate
	switch status {
	case "success", "published":
		icon, color = Check, Green
	case "error", "trashed":
		icon, color = Cross, Red
	case "loading", "pending", "scheduled":
		icon, color = Dot, Yellow
	case "draft":
		icon, color = Circle, Slate
	}
	return p.r.NewStyle().Foreground(color).Render(icon + " " + status)
}

// Success renders a confirmation line.
func (p Palette) Success(msg string) string {
	return p.r.NewStyle().Foreground(Green).Render(Check) + " " + msg
}
