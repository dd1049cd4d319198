// Package ui draws the board with raylib and reads the keyboard.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"raysnake/game"
	"raysnake/ui/layout"
)

// HUD carries the session figures shown next to the board.
type HUD struct {
	BestScore   int
	GamesPlayed int
	Autopilot   bool
	Episodes    int
	Spectators  int
}

// Renderer draws snapshots into the raylib window.
type Renderer struct {
	layout layout.Layout
}

// NewRenderer returns a renderer; the window must already be open.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Layout returns the geometry of the last frame drawn.
func (r *Renderer) Layout() layout.Layout {
	return r.layout
}

// Draw renders one frame, recomputing the layout from the current window.
func (r *Renderer) Draw(s game.Snapshot, hud HUD) {
	r.layout = layout.Compute(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), s.Columns, s.Rows)
	l := r.layout

	rl.BeginDrawing()
	rl.ClearBackground(rl.DarkGreen)
	rl.DrawRectangle(l.OffsetX, l.OffsetY, l.Width, l.Height, rl.Green)

	r.drawGrid(s)

	if s.Apple != nil {
		x, y := l.Cell(s.Apple.X, s.Apple.Y)
		rl.DrawRectangle(x, y, l.TileSize, l.TileSize, rl.Red)
	}
	for _, seg := range s.Segments {
		color := rl.Black
		if seg.Grew {
			color = rl.Brown
		}
		x, y := l.Cell(seg.Pos.X, seg.Pos.Y)
		rl.DrawRectangle(x, y, l.TileSize, l.TileSize, color)
	}

	r.drawHUD(s, hud)
	r.drawOverlay(s)
	rl.EndDrawing()
}

func (r *Renderer) drawGrid(s game.Snapshot) {
	l := r.layout
	for x := 0; x <= s.Columns; x++ {
		px := l.OffsetX + int32(x)*l.TileSize
		rl.DrawLine(px, l.OffsetY, px, l.OffsetY+l.Height, rl.Red)
	}
	for y := 0; y <= s.Rows; y++ {
		py := l.OffsetY + int32(y)*l.TileSize
		rl.DrawLine(l.OffsetX, py, l.OffsetX+l.Width, py, rl.Red)
	}
}

func (r *Renderer) drawHUD(s game.Snapshot, hud HUD) {
	l := r.layout
	x := l.OffsetX + layout.BorderPadding
	y := l.OffsetY + layout.BorderPadding
	head := s.Head()

	lines := []string{
		fmt.Sprintf("Score: %d", s.Score),
		fmt.Sprintf("Body size: %d", len(s.Segments)),
		fmt.Sprintf("Head: [%d, %d]", head.X, head.Y),
		fmt.Sprintf("Best: %d - Games: %d", hud.BestScore, hud.GamesPlayed),
	}
	if hud.Autopilot {
		lines = append(lines, fmt.Sprintf("Autopilot (episode %d)", hud.Episodes))
	}
	if hud.Spectators > 0 {
		lines = append(lines, fmt.Sprintf("Spectators: %d", hud.Spectators))
	}

	for _, line := range lines {
		rl.DrawText(line, x, y, l.FontSize, rl.Black)
		y += l.LineHeight
	}
}

func (r *Renderer) drawOverlay(s game.Snapshot) {
	var title, hint string
	switch s.State {
	case game.Paused:
		title, hint = "PAUSED", "Press P to resume"
	case game.Won:
		title, hint = "YOU WIN!", "Press R to play again"
	case game.Lost:
		title, hint = fmt.Sprintf("GAME OVER (%s)", s.Collision), "Press R to restart"
	default:
		return
	}

	l := r.layout
	rl.DrawRectangle(l.OffsetX, l.OffsetY, l.Width, l.Height, rl.Fade(rl.Black, 0.5))

	titleSize := l.FontSize * 2
	y := l.OffsetY + l.Height/2 - titleSize
	rl.DrawText(title, l.Centered(rl.MeasureText(title, titleSize)), y, titleSize, rl.RayWhite)
	y += titleSize + l.LineHeight/2
	rl.DrawText(hint, l.Centered(rl.MeasureText(hint, l.FontSize)), y, l.FontSize, rl.RayWhite)
}
