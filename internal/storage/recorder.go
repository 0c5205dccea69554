package storage

import "github.com/san-kum/spikeviz/internal/engine"

// FrameRecord is the persisted part of an engine.Frame.
type FrameRecord struct {
	Time    float64 `json:"time"`
	Spikes  int     `json:"spikes"`
	Fired   int     `json:"fired"`
	Unknown int     `json:"unknown"`
	Emitted int     `json:"emitted"`
	Alive   int     `json:"alive"`
	Newborn int     `json:"newborn"`
	Total   int     `json:"total"`
}

// Recorder collects the frames that advanced the clock.
type Recorder struct {
	frames []FrameRecord
}

func NewRecorder() *Recorder {
	return &Recorder{frames: make([]FrameRecord, 0, 256)}
}

func (r *Recorder) OnFrame(f engine.Frame) {
	if !f.Advanced {
		return
	}
	r.frames = append(r.frames, FrameRecord{
		Time:    f.Time,
		Spikes:  f.Spikes,
		Fired:   f.Fired,
		Unknown: f.Unknown,
		Emitted: f.Emitted,
		Alive:   f.Alive,
		Newborn: f.Newborn,
		Total:   f.Total,
	})
}

func (r *Recorder) Frames() []FrameRecord { return r.frames }

func (r *Recorder) Reset() { r.frames = r.frames[:0] }
