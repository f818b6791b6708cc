package main

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/play"
)

const sampleRate = beep.SampleRate(44100)

// effect is a short sound tied to a game event
type effect int

const (
	effectStart effect = iota
	effectFruit
	effectGolden
	effectDeath
)

// tone is one note of an effect
type tone struct {
	freq     float64
	duration time.Duration
}

var effectTones = map[effect][]tone{
	effectStart:  {{440, 60 * time.Millisecond}, {660, 60 * time.Millisecond}},
	effectFruit:  {{880, 50 * time.Millisecond}},
	effectGolden: {{880, 50 * time.Millisecond}, {1320, 50 * time.Millisecond}, {1760, 80 * time.Millisecond}},
	effectDeath:  {{220, 120 * time.Millisecond}, {110, 200 * time.Millisecond}},
}

// frameEffects lists the effects for the change from prev to cur
func frameEffects(prev, cur play.Frame) []effect {
	var effects []effect
	if !prev.State.Running && cur.State.Running {
		effects = append(effects, effectStart)
	}

	gained := cur.State.Score - prev.State.Score
	if cur.State.Running || prev.State.Running {
		switch {
		case cur.Simulation.FruitsEaten > prev.Simulation.FruitsEaten:
			effects = append(effects, effectFruit)
		case gained > 0:
			effects = append(effects, effectGolden)
		}
	}

	if prev.Simulation.Phase == engine.PhaseAlive && cur.Simulation.Phase == engine.PhaseDead {
		effects = append(effects, effectDeath)
	}
	return effects
}

// streamerFor builds the tone sequence of e
func streamerFor(e effect, sr beep.SampleRate) (beep.Streamer, error) {
	var parts []beep.Streamer
	for _, t := range effectTones[e] {
		sine, err := generators.SineTone(sr, t.freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(sr.N(t.duration), sine))
	}
	return beep.Seq(parts...), nil
}

// Sound plays effects through the speaker once initialized.
// Play is a no-op until Init succeeds.
type Sound struct {
	mu          sync.Mutex
	initialized bool
}

// NewSound creates a silent Sound
func NewSound() *Sound {
	return &Sound{}
}

// Init opens the speaker
func (s *Sound) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// Play starts e without waiting for it to finish
func (s *Sound) Play(e effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	streamer, err := streamerFor(e, sampleRate)
	if err != nil {
		return
	}
	speaker.Play(streamer)
}

// Close releases the speaker
func (s *Sound) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Close()
	s.initialized = false
}
