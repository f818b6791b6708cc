package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/play"
)

// Each grid cell is two terminal columns wide so the board looks square
const cellWidth = 2

const (
	runeHead   = '█'
	runeBody   = '▓'
	runeFruit  = '●'
	runeGolden = '★'
)

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleFruit  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleGolden = tcell.StyleDefault.Foreground(tcell.ColorGold).Bold(true)
	styleHUD    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleAlert  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// screenPos maps a grid position to the left column and row of its cell
func screenPos(p engine.Position) (int, int) {
	return 1 + p.X*cellWidth, 1 + p.Y
}

func setCell(s tcell.Screen, p engine.Position, r rune, style tcell.Style) {
	x, y := screenPos(p)
	fill := r
	if r == runeFruit || r == runeGolden {
		fill = ' '
	}
	s.SetContent(x, y, r, nil, style)
	for i := 1; i < cellWidth; i++ {
		s.SetContent(x+i, y, fill, nil, style)
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawFrame renders the board, the HUD and the status line
func drawFrame(s tcell.Screen, frame play.Frame, config *engine.GameConfig) {
	sim := frame.Simulation
	size := sim.GridSize
	right := 1 + size*cellWidth
	bottom := 1 + size

	for x := 1; x < right; x++ {
		s.SetContent(x, 0, '─', nil, styleBorder)
		s.SetContent(x, bottom, '─', nil, styleBorder)
	}
	for y := 1; y < bottom; y++ {
		s.SetContent(0, y, '│', nil, styleBorder)
		s.SetContent(right, y, '│', nil, styleBorder)
	}
	s.SetContent(0, 0, '┌', nil, styleBorder)
	s.SetContent(right, 0, '┐', nil, styleBorder)
	s.SetContent(0, bottom, '└', nil, styleBorder)
	s.SetContent(right, bottom, '┘', nil, styleBorder)

	if sim.Fruit != nil {
		setCell(s, *sim.Fruit, runeFruit, styleFruit)
	}
	if sim.GoldenFruit != nil {
		setCell(s, sim.GoldenFruit.Position, runeGolden, styleGolden)
	}

	// Body first so the head wins on a self collision; a wall death leaves the head off the board
	for i := len(sim.Body) - 1; i >= 1; i-- {
		setCell(s, sim.Body[i], runeBody, styleBody)
	}
	if len(sim.Body) > 0 {
		head := sim.Body[0]
		if head.X >= 0 && head.X < size && head.Y >= 0 && head.Y < size {
			setCell(s, head, runeHead, styleHead)
		}
	}

	st := frame.State
	hud := fmt.Sprintf("Score: %d  Best: %d  Time: %s  Length: %d", st.Score, st.BestScore, st.Time, len(sim.Body))
	drawText(s, 0, bottom+1, hud, styleHUD)

	if sim.GoldenFruit != nil {
		drawText(s, 0, bottom+2, fmt.Sprintf("Golden fruit: %d steps left (+%d)", sim.GoldenFruit.Life, config.GoldenFruitScore), styleGolden)
	}

	drawText(s, 0, bottom+3, statusLine(frame), styleAlert)
}

// statusLine tells the player what to do next
func statusLine(frame play.Frame) string {
	switch {
	case frame.State.Running:
		return "←/→ or h/l to turn, q to quit"
	case frame.Error != "":
		return fmt.Sprintf("Run ended: %s - space to retry, q to quit", frame.Error)
	case frame.Simulation.Phase == engine.PhaseDead:
		return fmt.Sprintf("GAME OVER (hit %s) - space to play again, q to quit", frame.CollisionCause)
	default:
		return "Press space to start, q to quit"
	}
}
