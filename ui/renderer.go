// Package ui projects game snapshots onto a tcell screen. It never mutates
// state; every frame is drawn from whatever snapshot the session holds.
package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"presentrush/game"
)

const sidebarWidth = 24

// skinGlyphs maps each avatar skin to its emoji.
var skinGlyphs = map[game.Skin]string{
	game.SkinSanta:    "🎅",
	game.SkinElf:      "🧝",
	game.SkinSnowman:  "⛄",
	game.SkinReindeer: "🦌",
	game.SkinPenguin:  "🐧",
}

// eventColors tints the arena border while an event is active.
var eventColors = map[game.EventType]tcell.Color{
	game.EventSpeedBoost:   tcell.ColorYellow,
	game.EventSlowness:     tcell.ColorBlue,
	game.EventFreeze:       tcell.ColorAqua,
	game.EventReverse:      tcell.ColorFuchsia,
	game.EventDoublePoints: tcell.ColorGold,
}

// Renderer draws snapshots onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw renders one frame from snap. localID marks the player to highlight.
func (r *Renderer) Draw(snap *game.State, localID string) {
	r.screen.Clear()
	defer r.screen.Show()

	if snap == nil {
		r.drawText(2, 1, "Connecting...", tcell.StyleDefault)
		return
	}

	sw, sh := r.screen.Size()
	arenaW := sw - sidebarWidth
	arenaH := sh - 2
	if arenaW < 10 || arenaH < 5 {
		r.drawText(0, 0, "Terminal too small", tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	r.drawStatus(snap, arenaW)
	r.drawArena(snap, localID, 0, 1, arenaW, arenaH)
	r.drawLeaderboard(snap, localID, arenaW+1)

	if snap.Over() {
		r.drawGameOver(snap, arenaW, arenaH)
	}
}

func (r *Renderer) drawStatus(snap *game.State, width int) {
	var line string
	switch {
	case !snap.Started:
		line = "Lobby - waiting for the host to start (Enter)"
	case snap.Event.Active:
		line = fmt.Sprintf("%3.0fs  %s: %s (%.0fs)",
			snap.TimeLeft, snap.Event.Name, snap.Event.Description, snap.Event.Remaining)
	default:
		line = fmt.Sprintf("%3.0fs", snap.TimeLeft)
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	if snap.Event.Active {
		if c, ok := eventColors[snap.Event.Type]; ok {
			style = style.Foreground(c)
		}
	}
	r.drawText(1, 0, truncate(line, width-2), style)
}

func (r *Renderer) drawArena(snap *game.State, localID string, x, y, w, h int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	if snap.Event.Active {
		if c, ok := eventColors[snap.Event.Type]; ok {
			borderStyle = borderStyle.Foreground(c)
		}
	}
	r.drawBox(x, y, w, h, borderStyle)

	// Map arena coordinates into the box interior.
	innerW, innerH := w-2, h-2
	sx := func(wx float64) int { return x + 1 + int(wx/game.ArenaWidth*float64(innerW)) }
	sy := func(wy float64) int { return y + 1 + int(wy/game.ArenaHeight*float64(innerH)) }

	for _, pr := range snap.Presents {
		glyph := "🎁"
		if pr.Value >= game.PresentValueHigh {
			glyph = "💎"
		}
		r.putGlyph(sx(pr.X), sy(pr.Y), glyph, tcell.StyleDefault)
	}

	for _, id := range sortedIDs(snap) {
		p := snap.Players[id]
		glyph, ok := skinGlyphs[p.Skin]
		if !ok {
			glyph = "🙂"
		}
		px, py := sx(p.X), sy(p.Y)
		style := tcell.StyleDefault
		if p.Frozen {
			style = style.Foreground(tcell.ColorAqua)
		}
		r.putGlyph(px, py, glyph, style)

		tagStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
		if id == localID {
			tagStyle = tcell.StyleDefault.Foreground(tcell.ColorLightYellow).Bold(true)
		}
		tag := truncate(p.Name, 10)
		tx := px - runewidth.StringWidth(tag)/2
		if tx < x+1 {
			tx = x + 1
		}
		if py+1 < y+h-1 {
			r.drawText(tx, py+1, tag, tagStyle)
		}
	}
}

func (r *Renderer) drawLeaderboard(snap *game.State, localID string, x int) {
	r.drawText(x, 1, "Scores", tcell.StyleDefault.Bold(true))

	ids := sortedIDs(snap)
	sort.SliceStable(ids, func(i, j int) bool {
		return snap.Players[ids[i]].Score > snap.Players[ids[j]].Score
	})

	row := 2
	for _, id := range ids {
		p := snap.Players[id]
		style := tcell.StyleDefault
		if id == localID {
			style = style.Foreground(tcell.ColorLightYellow)
		}
		mark := " "
		if p.Host {
			mark = "*"
		}
		line := fmt.Sprintf("%s%s %4d", mark, truncate(p.Name, 12), p.Score)
		r.drawText(x, row, line, style)
		row++
	}
}

func (r *Renderer) drawGameOver(snap *game.State, w, h int) {
	winner := snap.WinnerID
	if p, ok := snap.Players[winner]; ok {
		winner = p.Name
	}
	lines := []string{
		"  GAME OVER  ",
		fmt.Sprintf("  %s wins!  ", winner),
		"  press q to leave  ",
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorLightYellow).Bold(true)
	for i, line := range lines {
		r.drawText(w/2-len(line)/2, h/2+i, line, style)
	}
}

func (r *Renderer) drawBox(x, y, w, h int, style tcell.Style) {
	for cx := x; cx < x+w; cx++ {
		r.screen.SetContent(cx, y, '─', nil, style)
		r.screen.SetContent(cx, y+h-1, '─', nil, style)
	}
	for cy := y; cy < y+h; cy++ {
		r.screen.SetContent(x, cy, '│', nil, style)
		r.screen.SetContent(x+w-1, cy, '│', nil, style)
	}
	r.screen.SetContent(x, y, '┌', nil, style)
	r.screen.SetContent(x+w-1, y, '┐', nil, style)
	r.screen.SetContent(x, y+h-1, '└', nil, style)
	r.screen.SetContent(x+w-1, y+h-1, '┘', nil, style)
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at (x, y).
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	mainc := runes[0]
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	r.screen.SetContent(x, y, mainc, combc, style)
	if runewidth.StringWidth(glyph) == 2 {
		// Fill the second column to avoid rendering artifacts.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	cx := x
	for _, c := range text {
		r.screen.SetContent(cx, y, c, nil, style)
		cx += runewidth.RuneWidth(c)
	}
}

func sortedIDs(snap *game.State) []string {
	ids := make([]string, 0, len(snap.Players))
	for id := range snap.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func truncate(s string, n int) string {
	if runewidth.StringWidth(s) <= n {
		return s
	}
	return runewidth.Truncate(s, n, "…")
}
