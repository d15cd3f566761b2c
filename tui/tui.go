package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/blackwood/cli"
	"github.com/nathoo/blackwood/engine"
	"github.com/nathoo/blackwood/engine/sanity"
	"github.com/nathoo/blackwood/types"
)

// mode decides what the input line is answering.
type mode int

const (
	modePlaying     mode = iota
	modeChoosing         // difficulty menu
	modeConfirmQuit      // save before quitting?
)

// rawLine stores an unstyled output line so the viewport can re-wrap and
// re-style on resize. Narration keeps the sanity tier it was printed at.
type rawLine struct {
	text     string
	kind     cli.LineKind
	tier     sanity.Tier
	isInput  bool
	isSystem bool
}

// Options configures the TUI.
type Options struct {
	ChooseDifficulty bool
	Trace            bool
}

// Model is the Bubble Tea model for the Blackwood TUI.
type Model struct {
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	mode     mode
	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
}

// outputMsg carries engine output into the Update loop.
type outputMsg struct {
	input    string
	lines    []string
	isSystem bool
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		engine:  eng,
		input:   ti,
		history: NewHistory(100),
		trace:   opts.Trace,
	}
	if opts.ChooseDifficulty {
		m.mode = modeChoosing
		m.input.Prompt = gotext.Get("Difficulty [1-3]: ")
	}
	return m
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, opts Options) error {
	p := tea.NewProgram(New(eng, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init prints the title and either the difficulty menu or the intro.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return m.opening() })
}

func (m Model) opening() outputMsg {
	g := m.engine.Defs.Game
	lines := []string{fmt.Sprintf("== %s v%s ==", g.Title, g.Version)}
	if g.Author != "" {
		lines = append(lines, gotext.Get("by %s", g.Author))
	}
	lines = append(lines, "")
	if m.mode == modeChoosing {
		return outputMsg{lines: append(lines, difficultyMenu()...)}
	}
	return outputMsg{lines: append(lines, m.engine.Intro()...)}
}

func difficultyMenu() []string {
	title := cases.Title(language.English)
	lines := []string{gotext.Get("Choose your difficulty:")}
	for i, d := range engine.Difficulties() {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, title.String(string(d))))
	}
	return lines
}

// Update handles key presses, resizes and game output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := max(m.height-2, 1) // status bar and input line

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		case "up":
			if prev, ok := m.history.Prev(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			}
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEnter routes the submitted line by mode.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	switch m.mode {
	case modeChoosing:
		return m.chooseDifficulty(input), nil
	case modeConfirmQuit:
		return m.confirmQuit(input)
	}

	if input == "" || strings.HasPrefix(input, "#") {
		return m, nil
	}
	m.history.Push(input)

	if strings.HasPrefix(input, "/") {
		lines, quit := m.handleSlash(input)
		m = m.appendOutput(outputMsg{input: input, lines: lines, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(outputMsg{input: input, lines: []string{gotext.Get("Nothing to repeat.")}, isSystem: true})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	result := m.engine.Step(input)
	lines := result.Output
	if m.trace {
		lines = append(lines, cli.TraceLines(result)...)
	}
	m = m.appendOutput(outputMsg{input: input, lines: lines})

	if result.Control == types.ControlQuit {
		if m.engine.Store == nil || m.engine.State.Status != types.Playing {
			m.quitting = true
			return m, tea.Quit
		}
		m.mode = modeConfirmQuit
		m.input.Prompt = gotext.Get("Save before quitting? (y/n) ")
	}
	return m, nil
}

func (m Model) chooseDifficulty(input string) Model {
	d := types.Normal
	if input != "" {
		var ok bool
		if d, ok = engine.ParseDifficulty(strings.ToLower(input)); !ok {
			return m.appendOutput(outputMsg{input: input, lines: []string{gotext.Get("Please enter 1, 2 or 3.")}, isSystem: true})
		}
	}
	m.engine.NewGame(m.engine.State.RNGSeed, d)
	m.mode = modePlaying
	m.input.Prompt = "> "
	return m.appendOutput(outputMsg{input: input, lines: m.engine.Intro()})
}

func (m Model) confirmQuit(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(input) {
	case "y", "yes":
		m = m.appendOutput(outputMsg{input: input, lines: m.engine.Step("save").Output})
	}
	m.quitting = true
	return m, tea.Quit
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	tier := sanity.TierOf(m.engine.State.Player.Sanity, m.engine.Tuning.Tiers)
	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem, tier: tier}
		if !msg.isSystem {
			rl.kind = cli.Classify(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles every line at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := cli.Wrap(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styleSystem.Render("["+wrapped+"]"))
		default:
			styled = append(styled, renderLine(wrapped, rl.kind, rl.tier))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders the viewport, status bar and input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return gotext.Get("Loading...")
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleSlash dispatches front-end commands. It reports true to quit.
func (m *Model) handleSlash(input string) ([]string, bool) {
	cmd := strings.Fields(input)[0]
	switch cmd {
	case "/quit", "/exit":
		return []string{gotext.Get("Goodbye.")}, true
	case "/help":
		return append(cli.SlashHelp(), gotext.Get("PgUp/PgDn scroll, Up/Down recall commands.")), false
	case "/state":
		return cli.StateLines(m.engine.State), false
	case "/saves":
		return cli.SlotLines(context.Background(), m.engine.Store), false
	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{gotext.Get("Trace output enabled.")}, false
		}
		return []string{gotext.Get("Trace output disabled.")}, false
	}
	return []string{gotext.Get("Unknown command: %s. Type /help for available commands.", cmd)}, false
}

// viewportKeyMap leaves Up/Down to the command history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
