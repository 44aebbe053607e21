// --- START OF FINAL REVISED FILE internal/cli/ui/view.go ---
package ui

import (
	"fmt"
	"strings"

	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// Layout is the terminal size the frame is drawn for.
type Layout struct {
	Width  int
	Height int
}

// Fixed vertical space: header (2), file box border and title (3),
// progress box (4), footer (2).
const chromeRows = 11

// VisibleRows is the number of file rows that fit in l.
func VisibleRows(l Layout) int {
	if rows := l.Height - chromeRows; rows > 0 {
		return rows
	}
	return 1
}

var spinnerFrames = spinner.MiniDot.Frames

// SpinnerFrame returns the spinner glyph for a redraw tick.
func SpinnerFrame(tick int) string {
	if tick < 0 {
		tick = 0
	}
	return spinnerFrames[(tick/2)%len(spinnerFrames)]
}

// Render draws s. It is a pure function of its arguments.
func Render(s State, l Layout) string {
	width := l.Width
	if width < 20 {
		width = 20
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(s, width),
		renderFiles(s, width, VisibleRows(l)),
		renderProgress(s, width),
		renderFooter(s, width),
	)
}

func renderHeader(s State, width int) string {
	var phase string
	phaseStyle := StatusStyleProcessing
	switch s.Phase {
	case PhaseScanning:
		phase = SpinnerFrame(s.Tick) + " Scanning..."
	case PhaseProcessing:
		phase = SpinnerFrame(s.Tick) + " Processing..."
	case PhaseRendering:
		phase = SpinnerFrame(s.Tick) + " Rendering PDF..."
	case PhaseComplete:
		phase = "Done"
		phaseStyle = StatusStyleSuccess
	case PhaseFailed:
		phase = "Failed"
		phaseStyle = StatusStyleFailed
	}
	line := TitleStyle.Render(" proof ") + " " +
		ClientStyle.Render(s.Client) +
		DimStyle.Render(fmt.Sprintf("  %s  cols:%d  ", s.Date, s.Columns)) +
		phaseStyle.Render(phase)
	return HeaderStyle.Width(width).Render(line)
}

func renderFiles(s State, width, visible int) string {
	inner := width - 2
	start := s.Scroll
	if maxStart := len(s.Entries) - visible; start > maxStart {
		start = maxStart
	}
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(s.Entries) {
		end = len(s.Entries)
	}

	lines := make([]string, 0, visible+1)
	lines = append(lines, DimStyle.Render(fmt.Sprintf(" Files (%d) ", len(s.Entries))))
	for _, e := range s.Entries[start:end] {
		lines = append(lines, lipgloss.NewStyle().MaxWidth(inner).Render(renderEntry(e)))
	}
	for len(lines) < visible+1 {
		lines = append(lines, "")
	}
	return BoxStyle.Width(inner).Render(strings.Join(lines, "\n"))
}

func renderEntry(e Entry) string {
	icon, style := "  ", StatusStylePending
	switch e.Status {
	case proof.StatusDone:
		icon, style = "✓ ", StatusStyleSuccess
	case proof.StatusProcessing:
		icon, style = "● ", StatusStyleProcessing
	case proof.StatusFailed:
		icon, style = "✗ ", StatusStyleFailed
	}
	row := style.Render(icon) + style.Render(e.Filename) + DimStyle.Render("  "+e.Kind)
	if e.Status == proof.StatusFailed {
		row += StatusStyleFailed.Render("  " + e.Message)
	}
	return row
}

func renderProgress(s State, width int) string {
	var ratio float64
	var label string
	switch s.Phase {
	case PhaseScanning:
		label = fmt.Sprintf("Scanning... %d found", s.TotalFound)
	case PhaseProcessing:
		if s.TotalFound > 0 {
			ratio = float64(s.Processed) / float64(s.TotalFound)
		}
		label = fmt.Sprintf("%d/%d processed", s.Processed, s.TotalFound)
	case PhaseRendering:
		ratio, label = 1, "Rendering PDF..."
	case PhaseComplete:
		ratio, label = 1, "Complete: "+s.Output
	case PhaseFailed:
		label = "Failed"
	}
	if ratio > 1 {
		ratio = 1
	}

	bar := progress.New(progress.WithSolidFill(string(ColorAccent)), progress.WithoutPercentage())
	bar.Width = width - 4
	inner := width - 2
	content := bar.ViewAs(ratio) + "\n" + lipgloss.NewStyle().MaxWidth(inner).Render(label)
	return BoxStyle.Width(inner).Render(content)
}

func renderFooter(s State, width int) string {
	text := " q: cancel  j/k: scroll "
	if s.Phase.Terminal() {
		text = " q/Enter: exit  j/k: scroll "
	}
	line := DimStyle.Render(text)
	if s.Failed > 0 {
		line += StatusStyleFailed.Render(fmt.Sprintf(" %d failed ", s.Failed))
	}
	if s.ErrorMessage != "" {
		line += StatusStyleFailed.Render(" " + s.ErrorMessage)
	}
	return FooterStyle.Width(width).Render(line)
}

// --- Styles ---

const (
	ColorAccent = lipgloss.Color("6")   // Cyan
	ColorClient = lipgloss.Color("15")  // White
	ColorDim    = lipgloss.Color("244") // Dim gray
	ColorBorder = lipgloss.Color("240")

	ColorStatusSuccess    = lipgloss.Color("40")  // Green
	ColorStatusFailed     = lipgloss.Color("196") // Red
	ColorStatusProcessing = lipgloss.Color("214") // Yellow
	ColorStatusPending    = lipgloss.Color("244")
)

var (
	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	ClientStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorClient)
	DimStyle    = lipgloss.NewStyle().Foreground(ColorDim)

	HeaderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(ColorBorder)

	FooterStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(ColorBorder)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StatusStyleSuccess    = lipgloss.NewStyle().Foreground(ColorStatusSuccess)
	StatusStyleFailed     = lipgloss.NewStyle().Foreground(ColorStatusFailed)
	StatusStyleProcessing = lipgloss.NewStyle().Foreground(ColorStatusProcessing)
	StatusStylePending    = lipgloss.NewStyle().Foreground(ColorStatusPending)
)

// --- END OF FINAL REVISED FILE internal/cli/ui/view.go ---
