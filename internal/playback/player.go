// Package playback advances simulated time over a sorted spike sequence.
//
// A [Player] owns the simulated clock and a two-index cursor into the spike
// sequence. Each Frame moves the clock forward by one delta while playing and
// slides the cursor so that SpikesNow returns exactly the spikes with
// previous <= time < current.
//
// Looping is not handled inside Frame: the owner checks Finished on its next
// tick and restarts the player.
package playback

import (
	"fmt"
	"math"

	"github.com/san-kum/spikeviz/internal/spikes"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Player struct {
	spikes spikes.Sequence

	start, end        float64
	current, previous float64
	dt                float64

	playing  bool
	loop     bool
	finished bool

	// [prevIdx, curIdx) are the spikes of the last frame.
	prevIdx, curIdx int
}

// New creates a stopped player over seq covering [start, end].
func New(seq spikes.Sequence, start, end float64) *Player {
	if end < start {
		end = start
	}
	cursor := seq.LowerBound(start)
	return &Player{
		spikes:   seq,
		start:    start,
		end:      end,
		current:  start,
		previous: start,
		prevIdx:  cursor,
		curIdx:   cursor,
	}
}

// NewFromSequence spans the player over the sequence's first and last spike.
func NewFromSequence(seq spikes.Sequence) *Player {
	first, last := seq.Span()
	return New(seq, first, last)
}

// Play starts or keeps playing with the given simulation step.
func (p *Player) Play(dt float64) {
	if dt > 0 {
		p.dt = dt
	}
	p.playing = true
}

// Pause toggles playback: a second call resumes.
func (p *Player) Pause() {
	p.playing = !p.playing
}

// Stop halts playback and rewinds clock and cursor to the start.
func (p *Player) Stop() {
	p.playing = false
	p.finished = false
	p.current = p.start
	p.previous = p.start
	p.prevIdx = p.spikes.LowerBound(p.start)
	p.curIdx = p.prevIdx
}

// GoTo seeks to ts snapped down to a multiple of the step and clamped to the
// player's range. The spike cursor is moved to the new time so the next
// Frame neither replays nor skips spikes.
func (p *Player) GoTo(ts float64) {
	t := ts
	if p.dt > 0 {
		t = math.Floor(ts/p.dt) * p.dt
	}
	t = math.Max(p.start, math.Min(t, p.end))

	p.current = t
	p.previous = math.Max(t-p.dt, p.start)
	p.finished = false
	p.curIdx = p.spikes.LowerBound(t)
	p.prevIdx = p.curIdx
}

// Frame advances the clock by one step when playing and updates the spike
// window. It returns whether time advanced.
func (p *Player) Frame() bool {
	if !p.playing {
		return false
	}
	p.previous = p.current
	p.current += p.dt
	p.FrameProcess()
	return true
}

// FrameProcess moves the cursor to the first spike at or after the current
// time, leaving the spikes of this frame in [prevIdx, curIdx).
func (p *Player) FrameProcess() {
	p.prevIdx = p.curIdx
	n := len(p.spikes)
	for p.curIdx < n && p.spikes[p.curIdx].Time < p.current {
		p.curIdx++
	}
	if p.curIdx >= n || p.current > p.end {
		p.finished = true
	}
}

// SpikesNow returns the spikes that fired during the last frame.
func (p *Player) SpikesNow() spikes.Sequence {
	return p.spikes[p.prevIdx:p.curIdx]
}

// SpikesBetween returns the spikes in [min(t0,t1), max(t0,t1)).
func (p *Player) SpikesBetween(t0, t1 float64) spikes.Sequence {
	return p.spikes.Window(t0, t1)
}

func (p *Player) State() State {
	switch {
	case p.finished:
		return Finished
	case p.playing:
		return Playing
	case p.current == p.start && p.previous == p.start:
		return Stopped
	default:
		return Paused
	}
}

func (p *Player) IsPlaying() bool         { return p.playing }
func (p *Player) Finished() bool          { return p.finished }
func (p *Player) Loop() bool              { return p.loop }
func (p *Player) SetLoop(loop bool)       { p.loop = loop }
func (p *Player) StartTime() float64      { return p.start }
func (p *Player) EndTime() float64        { return p.end }
func (p *Player) CurrentTime() float64    { return p.current }
func (p *Player) PreviousTime() float64   { return p.previous }
func (p *Player) DeltaTime() float64      { return p.dt }
func (p *Player) Spikes() spikes.Sequence { return p.spikes }

// Cursor returns the indices bounding the last frame's spikes.
func (p *Player) Cursor() (int, int) { return p.prevIdx, p.curIdx }

// Progress returns the position of the clock within [start, end] in [0, 1].
func (p *Player) Progress() float64 {
	span := p.end - p.start
	if span <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, (p.current-p.start)/span))
}
