package ui

import (
	"github.com/charmbracelet/lipgloss"

	"logdam/internal/report"
)

type Styles struct {
	Base       lipgloss.Style
	Status     lipgloss.Style
	StatusWarn lipgloss.Style
	Header     lipgloss.Style
	KeyHeader  lipgloss.Style
	Selected   lipgloss.Style
	Help       lipgloss.Style
	PopupBox   lipgloss.Style
	PopupTitle lipgloss.Style
	PopupError lipgloss.Style
	// PaintFg is the text colour over highlighted cells; the highlight
	// ramp is near-white so dark text stays readable on both themes.
	PaintFg lipgloss.Color
}

func NewStyles(dark bool) Styles {
	s := Styles{PaintFg: lipgloss.Color("#000000")}
	if dark {
		s.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	} else {
		s.Base = lipgloss.NewStyle()
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
	}
	s.StatusWarn = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	s.KeyHeader = s.Header.Copy().Underline(true)
	s.Selected = lipgloss.NewStyle().Reverse(true)
	s.PopupError = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	return s
}

// Cell renders an already padded cell in its animation colour. Normal
// cells are left unstyled.
func (s Styles) Cell(text string, p report.Paint) string {
	if p.Normal() {
		return text
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(p.Colour.Hex())).
		Foreground(s.PaintFg).
		Render(text)
}
