package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles styles, glyphs and the panel border.
// All renderers pull from the current theme.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help                          lipgloss.Style

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
	SymOK, SymFail           string
	BarFull, BarEmpty        string

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor
}

var asciiBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
}

var current = themeFor("classic")

// SetTheme switches the current theme: classic (default), neon or mono.
func SetTheme(name string) { current = themeFor(name) }

// Current returns the active theme.
func Current() Theme { return current }

func themeFor(name string) Theme {
	base := lipgloss.NewStyle()
	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Name:     "neon",
			Title:    base.Bold(true).Foreground(lipgloss.Color("13")),
			Muted:    base.Foreground(lipgloss.Color("8")),
			Accent:   base.Foreground(lipgloss.Color("14")),
			Success:  base.Foreground(lipgloss.Color("10")),
			Error:    base.Foreground(lipgloss.Color("9")).Bold(true),
			Pending:  base.Foreground(lipgloss.Color("11")),
			Selected: base.Bold(true).Foreground(lipgloss.Color("14")),
			Done:     base.Faint(true).Strikethrough(true),
			Help:     base.Faint(true),

			BoxUnchecked: "◻", BoxChecked: "◼",
			SymDone: "✔", SymPending: "•",
			SymOK: "✔", SymFail: "✖",
			BarFull: "█", BarEmpty: "░",
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("13"),
		}
	case "mono":
		return Theme{
			Name:  "mono",
			Title: base, Muted: base, Accent: base, Success: base, Error: base, Pending: base,
			Selected: base.Bold(true), Done: base, Help: base,

			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymDone: "x", SymPending: "-",
			SymOK: "ok", SymFail: "error:",
			BarFull: "#", BarEmpty: ".",
			Border:      asciiBorder,
			BorderColor: lipgloss.NoColor{},
		}
	default:
		return Theme{
			Name:     "classic",
			Title:    base.Bold(true),
			Muted:    base.Faint(true),
			Accent:   base.Foreground(lipgloss.Color("12")),
			Success:  base.Foreground(lipgloss.Color("42")),
			Error:    base.Foreground(lipgloss.Color("9")).Bold(true),
			Pending:  base.Foreground(lipgloss.Color("214")),
			Selected: base.Bold(true).Reverse(true),
			Done:     base.Faint(true).Strikethrough(true),
			Help:     base.Faint(true),

			BoxUnchecked: "☐", BoxChecked: "☑",
			SymDone: "✔", SymPending: "•",
			SymOK: "✔", SymFail: "✖",
			BarFull: "█", BarEmpty: "░",
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("8"),
		}
	}
}
