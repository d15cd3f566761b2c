package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/blackwood/cli"
	"github.com/nathoo/blackwood/engine/sanity"
	"github.com/nathoo/blackwood/types"
)

const gaugeWidth = 10

// renderStatusBar produces a full-width line with the room, the sanity and
// battery gauges and the turn count.
func (m Model) renderStatusBar() string {
	e := m.engine
	s := e.State
	limits := e.Tuning.Limits
	tier := sanity.TierOf(s.Player.Sanity, e.Tuning.Tiers)

	sanityGauge := lipgloss.NewStyle().
		Foreground(tierColors[tier]).
		Background(lipgloss.Color("236")).
		Render(cli.Gauge(s.Player.Sanity, limits.MaxSanity, gaugeWidth))

	left := fmt.Sprintf(" %s ", e.Defs.RoomName(s.Player.Room))
	right := fmt.Sprintf("Sanity %s %3d  Battery %s %3d  T:%d ",
		sanityGauge, s.Player.Sanity,
		cli.Gauge(s.Player.Battery, limits.MaxBattery, gaugeWidth), s.Player.Battery,
		s.Turn)
	if s.Adversary.Room == s.Player.Room && s.Adversary.Mode == types.Hunting {
		left += "| " + styleDanger.Background(lipgloss.Color("236")).Render("THE PHANTOM") + " "
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return styleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
