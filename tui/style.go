package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/blackwood/cli"
	"github.com/nathoo/blackwood/engine/sanity"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252"))

	styleInputPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	stylePlayerInput = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	styleHeader      = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	styleDetail      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	styleDanger      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleEnding      = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	styleHint        = lipgloss.NewStyle().Foreground(lipgloss.Color("44"))
	styleError       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleSystem      = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	styleTrace       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// tierColors tint narration and the sanity gauge as the mind frays.
var tierColors = map[sanity.Tier]lipgloss.Color{
	sanity.High:     lipgloss.Color("252"),
	sanity.Medium:   lipgloss.Color("187"),
	sanity.Low:      lipgloss.Color("174"),
	sanity.Critical: lipgloss.Color("160"),
}

// renderLine applies the style for a line kind. Narration takes the colour
// of the sanity tier it was written at.
func renderLine(line string, kind cli.LineKind, tier sanity.Tier) string {
	switch kind {
	case cli.KindHeader:
		return styleHeader.Render(line)
	case cli.KindDetail:
		return styleDetail.Render(line)
	case cli.KindDanger:
		return styleDanger.Render(line)
	case cli.KindEnding:
		return styleEnding.Render(line)
	case cli.KindHint:
		return styleHint.Render(line)
	case cli.KindError:
		return styleError.Render(line)
	case cli.KindTrace:
		return styleTrace.Render(line)
	}
	return lipgloss.NewStyle().Foreground(tierColors[tier]).Render(line)
}
