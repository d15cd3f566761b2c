package world

import (
	"sort"

	"github.com/nathoo/blackwood/types"
)

// Description is what the player perceives of a room.
type Description struct {
	Name     string
	Text     string
	Items    []string // display names
	Fixtures []string // display names
	Exits    []string // "north", "down (locked)"
	Dark     bool
}

// Describe returns the static and dynamic view of a room.
func Describe(s *types.State, d *Defs, roomID string) (Description, bool) {
	room, ok := d.Room(roomID)
	if !ok {
		return Description{}, false
	}
	desc := Description{
		Name: room.Name,
		Text: room.Description,
		Dark: room.Dark,
	}
	for _, id := range RoomItems(s, d, roomID) {
		desc.Items = append(desc.Items, d.ItemName(id))
	}
	for _, f := range d.FixturesIn(roomID) {
		desc.Fixtures = append(desc.Fixtures, f.Name)
	}
	for _, ex := range VisibleExits(s, d, roomID) {
		label := ex.Direction
		if IsLocked(s, d, roomID, ex.Direction) {
			label += " (locked)"
		}
		desc.Exits = append(desc.Exits, label)
	}
	return desc, true
}

// Neighbors returns the rooms directly connected to roomID through any
// defined exit, locked or not, sorted and without duplicates.
func Neighbors(d *Defs, roomID string) []string {
	room, ok := d.Room(roomID)
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, ex := range room.Exits {
		if seen[ex.To] {
			continue
		}
		seen[ex.To] = true
		out = append(out, ex.To)
	}
	sort.Strings(out)
	return out
}

// Distances returns the hop count from roomID to every room reachable
// through defined exits.
func Distances(d *Defs, from string) map[string]int {
	dist := map[string]int{}
	if _, ok := d.Room(from); !ok {
		return dist
	}
	dist[from] = 0
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range Neighbors(d, cur) {
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}
	return dist
}

// Adjacent reports whether b can be reached from a in one step.
func Adjacent(d *Defs, a, b string) bool {
	for _, n := range Neighbors(d, a) {
		if n == b {
			return true
		}
	}
	return false
}
