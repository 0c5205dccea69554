package engine

import "github.com/san-kum/spikeviz/internal/playback"

// Frame summarizes one Update call.
type Frame struct {
	Index    int
	Time     float64
	Previous float64
	State    playback.State

	// Spikes is the number of events in the frame's window, Fired the
	// number that reached a node and Unknown the number whose GID had none.
	Spikes  int
	Fired   int
	Unknown int
	Emitted int

	Alive   int
	Newborn int
	Total   int

	// Advanced reports whether the clock moved during this Update. Paused
	// and finished ticks keep the window of the last advancing frame.
	Advanced bool
	Looped   bool
}

// FrameObserver is notified after every Update.
type FrameObserver interface {
	OnFrame(f Frame)
}

type FrameObserverFunc func(f Frame)

func (fn FrameObserverFunc) OnFrame(f Frame) { fn(f) }
