package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/blackwood/types"
)

const mapCell = 14

// renderMap draws the rooms the player knows about on their MapX/MapY
// grid. Visited rooms show their name, unvisited rooms show "?" and
// secret rooms stay off the map until visited.
func (e *Engine) renderMap(s *types.State) []string {
	type cell struct {
		x, y  int
		label string
	}
	var cells []cell
	for _, r := range e.Defs.Rooms {
		visited := s.Player.Visited[r.ID]
		if r.Secret && !visited {
			continue
		}
		label := "?"
		if visited {
			label = truncate(r.Name, mapCell-4)
		}
		if r.ID == s.Player.Room {
			label = "*" + label
		}
		cells = append(cells, cell{r.MapX, r.MapY, "[" + label + "]"})
	}
	if len(cells) == 0 {
		return []string{"You have no idea where you are."}
	}

	minX, maxX, minY, maxY := cells[0].x, cells[0].x, cells[0].y, cells[0].y
	for _, c := range cells {
		minX, maxX = min(minX, c.x), max(maxX, c.x)
		minY, maxY = min(minY, c.y), max(maxY, c.y)
	}
	width, height := maxX-minX+1, maxY-minY+1
	grid := make([][]string, height)
	for i := range grid {
		grid[i] = make([]string, width)
	}
	for _, c := range cells {
		grid[c.y-minY][c.x-minX] = c.label
	}

	out := []string{"Map (* = you):"}
	for _, row := range grid {
		var b strings.Builder
		for _, label := range row {
			b.WriteString(fmt.Sprintf("%-*s", mapCell, label))
		}
		out = append(out, strings.TrimRight(b.String(), " "))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
