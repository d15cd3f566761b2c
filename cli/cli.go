// Package cli provides the plain terminal front-end: line input, styled
// output, slash commands and the quit prompt.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/blackwood/engine"
	"github.com/nathoo/blackwood/engine/sanity"
	"github.com/nathoo/blackwood/types"
)

var (
	colorHeader = color.Style{color.FgLightWhite, color.OpBold}
	colorDetail = color.Style{color.FgGray}
	colorDanger = color.Style{color.FgRed, color.OpBold}
	colorEnding = color.Style{color.FgYellow, color.OpBold}
	colorHint   = color.Style{color.FgCyan}
	colorError  = color.Style{color.FgLightRed}
	colorTrace  = color.Style{color.FgDarkGray}
	colorSystem = color.Style{color.FgGray, color.OpItalic}
	colorPrompt = color.Style{color.FgGreen}
)

var tierColors = map[sanity.Tier]color.Style{
	sanity.High:     {color.FgGreen},
	sanity.Medium:   {color.FgYellow},
	sanity.Low:      {color.FgLightRed},
	sanity.Critical: {color.FgRed, color.OpBlink},
}

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
	Plain     bool // no colour
	Width     int  // wrap width, 0 disables wrapping

	// ChooseDifficulty shows the difficulty menu before the intro.
	ChooseDifficulty bool

	scanner *bufio.Scanner
	lastCmd string // for "again"/"g" repeat
}

// New creates a CLI on stdin and stdout.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the game loop. It returns when the player quits or input
// ends.
func (c *CLI) Run() {
	c.scanner = bufio.NewScanner(c.In)

	g := c.Engine.Defs.Game
	c.printStyled(colorHeader, fmt.Sprintf("%s v%s", g.Title, g.Version))
	c.printLine("")

	if c.ChooseDifficulty {
		d, ok := c.difficultyMenu()
		if !ok {
			return
		}
		c.Engine.NewGame(c.Engine.State.RNGSeed, d)
	}

	c.printLines(c.Engine.Intro())
	c.printStatus()

	for {
		input, ok := c.readLine("> ")
		if !ok {
			return
		}
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if c.handleSlash(input) {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printSystem(gotext.Get("Nothing to repeat."))
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printLines(result.Output)
		if c.Trace {
			for _, line := range TraceLines(result) {
				c.printLine(c.style(line))
			}
		}

		if result.Control == types.ControlQuit {
			c.quitPrompt()
			return
		}
		if result.TurnConsumed || result.Status != types.Playing {
			c.printStatus()
		}
	}
}

// readLine prompts and returns the next trimmed input line.
func (c *CLI) readLine(prompt string) (string, bool) {
	c.print(c.paint(colorPrompt, prompt))
	if !c.scanner.Scan() {
		c.printLine("")
		return "", false
	}
	input := strings.TrimSpace(c.scanner.Text())
	if c.EchoInput {
		c.printLine(input)
	}
	return input, true
}

// difficultyMenu asks for a difficulty until it gets one.
func (c *CLI) difficultyMenu() (types.Difficulty, bool) {
	title := cases.Title(language.English)
	c.printLine(gotext.Get("Choose your difficulty:"))
	for i, d := range engine.Difficulties() {
		c.printLine(fmt.Sprintf("  %d. %s", i+1, title.String(string(d))))
	}
	for {
		input, ok := c.readLine(gotext.Get("Difficulty [1-3]: "))
		if !ok {
			return "", false
		}
		if input == "" {
			return types.Normal, true
		}
		if d, ok := engine.ParseDifficulty(strings.ToLower(input)); ok {
			return d, true
		}
		c.printSystem(gotext.Get("Please enter 1, 2 or 3."))
	}
}

// quitPrompt offers to save a running game before leaving.
func (c *CLI) quitPrompt() {
	if c.Engine.Store == nil || c.Engine.State.Status != types.Playing {
		return
	}
	answer, ok := c.readLine(gotext.Get("Save before quitting? (y/n) "))
	if !ok {
		return
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		c.printLines(c.Engine.Step("save").Output)
	}
}

// handleSlash dispatches front-end commands. It reports true to quit.
func (c *CLI) handleSlash(input string) bool {
	cmd := strings.Fields(input)[0]
	switch cmd {
	case "/quit", "/exit":
		c.printSystem(gotext.Get("Goodbye."))
		return true
	case "/help":
		for _, line := range SlashHelp() {
			c.printSystem(line)
		}
	case "/state":
		for _, line := range StateLines(c.Engine.State) {
			c.printSystem(line)
		}
	case "/saves":
		for _, line := range SlotLines(context.Background(), c.Engine.Store) {
			c.printSystem(line)
		}
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem(gotext.Get("Trace output enabled."))
		} else {
			c.printSystem(gotext.Get("Trace output disabled."))
		}
	default:
		c.printSystem(gotext.Get("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

// SlashHelp lists the front-end commands.
func SlashHelp() []string {
	return []string{
		gotext.Get("Front-end commands:"),
		"  /help   " + gotext.Get("show this help"),
		"  /state  " + gotext.Get("dump the current state"),
		"  /saves  " + gotext.Get("list saved games"),
		"  /trace  " + gotext.Get("toggle effect and event tracing"),
		"  /quit   " + gotext.Get("leave immediately"),
		"  again, g  " + gotext.Get("repeat the last command"),
		gotext.Get("Type 'help' for game commands."),
	}
}

func (c *CLI) printStatus() {
	s := c.Engine.State
	tier := sanity.TierOf(s.Player.Sanity, c.Engine.Tuning.Tiers)
	c.printLine(c.paint(tierColors[tier], StatusLine(s, c.Engine.Tuning)))
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(c.style(Wrap(line, c.Width)))
	}
}

// style colours a line by its kind.
func (c *CLI) style(line string) string {
	switch Classify(line) {
	case KindHeader:
		return c.paint(colorHeader, line)
	case KindDetail:
		return c.paint(colorDetail, line)
	case KindDanger:
		return c.paint(colorDanger, line)
	case KindEnding:
		return c.paint(colorEnding, line)
	case KindHint:
		return c.paint(colorHint, line)
	case KindError:
		return c.paint(colorError, line)
	case KindTrace:
		return c.paint(colorTrace, line)
	}
	return line
}

func (c *CLI) paint(s color.Style, text string) string {
	if c.Plain {
		return text
	}
	return s.Sprint(text)
}

func (c *CLI) printStyled(s color.Style, text string) {
	c.printLine(c.paint(s, text))
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	c.printLine(c.paint(colorSystem, "["+text+"]"))
}
