// Package tui provides the Bubble Tea front-end for Blackwood.
package tui

// History remembers submitted commands for Up/Down recall. The line being
// typed when recall starts is kept as a draft and comes back when the
// player steps past the newest entry.
type History struct {
	entries []string
	max     int
	pos     int // len(entries) while not recalling
	draft   string
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Push records a command and ends recall. Blank commands and repeats of
// the newest entry are not recorded.
func (h *History) Push(cmd string) {
	if cmd != "" && (len(h.entries) == 0 || h.entries[len(h.entries)-1] != cmd) {
		h.entries = append(h.entries, cmd)
		if over := len(h.entries) - h.max; over > 0 {
			h.entries = h.entries[over:]
		}
	}
	h.pos = len(h.entries)
	h.draft = ""
}

// Prev steps to the older entry. current is the line in the input box,
// saved as the draft when recall starts.
func (h *History) Prev(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos == len(h.entries) {
		h.draft = current
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next steps to the newer entry, ending with the draft.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.pos], true
}

// Len returns the number of remembered commands.
func (h *History) Len() int {
	return len(h.entries)
}
