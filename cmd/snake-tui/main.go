// Command snake-tui plays the snake game in a terminal.
//
// The arrow keys or h/l turn the snake, space or enter starts a run, and
// q or escape quits. The game runs locally at about 60 frames per second.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/play"
)

const framePeriod = 16 * time.Millisecond

var (
	configFlag = flag.String("config", "", "preset name in -config-dir or path to a .json file (default: built-in classic)")
	configDir  = flag.String("config-dir", "configs", "directory containing game presets")
	seed       = flag.Int64("seed", 0, "fruit placement seed (0 picks one from the clock)")
	mute       = flag.Bool("mute", false, "disable sound")
)

// action is what a key press asks the game to do
type action int

const (
	actionNone action = iota
	actionTurnLeft
	actionTurnRight
	actionStart
	actionQuit
)

// keyAction maps a key event to a game action
func keyAction(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyLeft:
		return actionTurnLeft
	case tcell.KeyRight:
		return actionTurnRight
	case tcell.KeyEnter:
		return actionStart
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'h', 'a':
			return actionTurnLeft
		case 'l', 'd':
			return actionTurnRight
		case ' ':
			return actionStart
		case 'q':
			return actionQuit
		}
	}
	return actionNone
}

// UI owns the screen, the local game and the sound effects
type UI struct {
	screen tcell.Screen
	game   *play.Game
	sound  *Sound
	last   play.Frame
}

// NewUI builds a UI around an initialized screen
func NewUI(screen tcell.Screen, game *play.Game, sound *Sound) *UI {
	return &UI{
		screen: screen,
		game:   game,
		sound:  sound,
		last:   game.Frame(),
	}
}

// handle applies a key action and reports whether the UI should keep running
func (u *UI) handle(a action) bool {
	switch a {
	case actionTurnLeft:
		u.game.TurnLeft()
	case actionTurnRight:
		u.game.TurnRight()
	case actionStart:
		u.game.StartRun()
	case actionQuit:
		return false
	}
	return true
}

// update advances the game and plays the sounds of what happened
func (u *UI) update(delta time.Duration) {
	u.game.Tick(delta)
	frame := u.game.Frame()
	for _, effect := range frameEffects(u.last, frame) {
		u.sound.Play(effect)
	}
	u.last = frame
}

// Run polls input and redraws until the player quits
func (u *UI) Run() {
	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	lastTick := time.Now()
	u.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !u.handle(keyAction(ev)) {
					return
				}
			case *tcell.EventResize:
				u.screen.Sync()
			}

		case now := <-ticker.C:
			u.update(now.Sub(lastTick))
			lastTick = now
			u.draw()
		}
	}
}

func (u *UI) draw() {
	u.screen.Clear()
	drawFrame(u.screen, u.last, u.game.Config())
	u.screen.Show()
}

func loadConfig() (*engine.GameConfig, error) {
	if *configFlag == "" {
		return engine.DefaultGameConfig(), nil
	}
	path := *configFlag
	if !strings.HasSuffix(path, ".json") {
		path = filepath.Join(*configDir, path+".json")
	}
	return engine.LoadGameConfig(path)
}

func main() {
	flag.Parse()

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load preset: %v\n", err)
		os.Exit(1)
	}

	gameSeed := *seed
	if gameSeed == 0 {
		gameSeed = time.Now().UnixNano()
	}
	game, err := play.NewGame(config, play.WithSeed(gameSeed))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create game: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	sound := NewSound()
	if !*mute {
		if err := sound.Init(); err != nil {
			// Non-fatal, the game runs without sound
			log.Printf("Audio initialization failed: %v", err)
		}
	}

	ui := NewUI(screen, game, sound)
	ui.Run()

	sound.Close()
	screen.Fini()
}
