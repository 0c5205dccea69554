package playback_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spikeviz/internal/playback"
	"github.com/san-kum/spikeviz/internal/spikes"
)

var _ = Describe("Player", func() {
	var (
		seq    spikes.Sequence
		player *playback.Player
	)

	BeforeEach(func() {
		seq = spikes.NewSequence([]spikes.Event{
			{Time: 0.1, GID: 1},
			{Time: 0.6, GID: 2},
			{Time: 0.6, GID: 3},
			{Time: 1.2, GID: 4},
			{Time: 2.0, GID: 5},
		})
		player = playback.New(seq, 0, 2.0)
	})

	Describe("initial state", func() {
		It("is stopped at the start time", func() {
			Expect(player.State()).To(Equal(playback.Stopped))
			Expect(player.IsPlaying()).To(BeFalse())
			Expect(player.CurrentTime()).To(Equal(0.0))
			Expect(player.SpikesNow()).To(BeEmpty())
		})

		It("spans the sequence when built from it", func() {
			p := playback.NewFromSequence(seq)
			Expect(p.StartTime()).To(Equal(0.1))
			Expect(p.EndTime()).To(Equal(2.0))
		})
	})

	Describe("Play", func() {
		It("stores the step and starts playing", func() {
			player.Play(0.25)
			Expect(player.IsPlaying()).To(BeTrue())
			Expect(player.DeltaTime()).To(Equal(0.25))
			Expect(player.State()).To(Equal(playback.Playing))
		})

		It("only updates the step when already playing", func() {
			player.Play(0.25)
			player.Frame()
			player.Play(0.5)
			Expect(player.IsPlaying()).To(BeTrue())
			Expect(player.DeltaTime()).To(Equal(0.5))
			Expect(player.CurrentTime()).To(Equal(0.25))
		})
	})

	Describe("Frame", func() {
		It("advances time monotonically by the step", func() {
			player.Play(0.25)
			for i := 1; i <= 7; i++ {
				prev := player.CurrentTime()
				Expect(player.Frame()).To(BeTrue())
				Expect(player.PreviousTime()).To(Equal(prev))
				Expect(player.CurrentTime()).To(BeNumerically("~", float64(i)*0.25, 1e-12))
				Expect(player.PreviousTime()).To(BeNumerically("<=", player.CurrentTime()))
			}
		})

		It("does not advance while not playing", func() {
			player.Play(0.25)
			player.Frame()
			player.Stop()
			Expect(player.Frame()).To(BeFalse())
			Expect(player.CurrentTime()).To(Equal(0.0))
			Expect(player.PreviousTime()).To(Equal(0.0))
		})

		It("reports each spike in exactly one frame", func() {
			player.Play(0.25)
			counts := map[uint32]int{}
			for i := 0; i < 12; i++ {
				player.Frame()
				for _, e := range player.SpikesNow() {
					Expect(e.Time).To(BeNumerically(">=", player.PreviousTime()))
					Expect(e.Time).To(BeNumerically("<", player.CurrentTime()))
					counts[e.GID]++
				}
			}
			Expect(counts).To(Equal(map[uint32]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1}))
		})

		It("groups simultaneous spikes into the same frame", func() {
			player.Play(0.5)
			player.Frame() // [0, 0.5)
			Expect(player.SpikesNow()).To(HaveLen(1))
			player.Frame() // [0.5, 1.0)
			Expect(player.SpikesNow()).To(HaveLen(2))
		})

		It("finishes when the cursor reaches the end", func() {
			player.Play(0.5)
			for i := 0; i < 4; i++ {
				player.Frame()
				Expect(player.Finished()).To(BeFalse())
			}
			player.Frame() // [2.0, 2.5) consumes the last spike
			Expect(player.Finished()).To(BeTrue())
			Expect(player.State()).To(Equal(playback.Finished))
			Expect(player.SpikesNow()).To(ConsistOf(spikes.Event{Time: 2.0, GID: 5}))
		})

		It("finishes immediately on an empty sequence", func() {
			p := playback.New(nil, 0, 1)
			p.Play(0.1)
			p.Frame()
			Expect(p.Finished()).To(BeTrue())
			Expect(p.SpikesNow()).To(BeEmpty())
		})
	})

	Describe("Pause", func() {
		It("toggles playback and keeps the time", func() {
			player.Play(0.25)
			player.Frame()
			player.Pause()
			Expect(player.IsPlaying()).To(BeFalse())
			Expect(player.State()).To(Equal(playback.Paused))
			Expect(player.Frame()).To(BeFalse())
			Expect(player.CurrentTime()).To(Equal(0.25))

			player.Pause()
			Expect(player.IsPlaying()).To(BeTrue())
		})
	})

	Describe("Stop", func() {
		It("rewinds clock and cursor", func() {
			player.Play(0.5)
			for i := 0; i < 6; i++ {
				player.Frame()
			}
			Expect(player.Finished()).To(BeTrue())

			player.Stop()
			Expect(player.IsPlaying()).To(BeFalse())
			Expect(player.Finished()).To(BeFalse())
			Expect(player.CurrentTime()).To(Equal(player.StartTime()))
			Expect(player.PreviousTime()).To(Equal(player.StartTime()))
			prev, cur := player.Cursor()
			Expect(prev).To(Equal(0))
			Expect(cur).To(Equal(0))

			player.Play(0.5)
			player.Frame()
			Expect(player.SpikesNow()).To(ConsistOf(spikes.Event{Time: 0.1, GID: 1}))
		})
	})

	Describe("GoTo", func() {
		BeforeEach(func() {
			player.Play(0.25)
		})

		It("snaps to the lower multiple of the step", func() {
			player.GoTo(1.1)
			Expect(player.CurrentTime()).To(Equal(1.0))
			Expect(player.PreviousTime()).To(Equal(0.75))
		})

		It("clamps the previous time to the start", func() {
			player.GoTo(0.1)
			Expect(player.CurrentTime()).To(Equal(0.0))
			Expect(player.PreviousTime()).To(Equal(0.0))
		})

		It("clamps to the player's range", func() {
			player.GoTo(-3)
			Expect(player.CurrentTime()).To(Equal(0.0))
			player.GoTo(50)
			Expect(player.CurrentTime()).To(Equal(2.0))
		})

		It("repositions the cursor so spikes are neither replayed nor skipped", func() {
			player.GoTo(1.0)
			Expect(player.SpikesNow()).To(BeEmpty())

			player.Frame() // [1.0, 1.25)
			Expect(player.SpikesNow()).To(ConsistOf(spikes.Event{Time: 1.2, GID: 4}))

			player.GoTo(0.5)
			player.Frame() // [0.5, 0.75)
			Expect(player.SpikesNow()).To(HaveLen(2))
		})

		It("clears the finished flag", func() {
			for i := 0; i < 10; i++ {
				player.Frame()
			}
			Expect(player.Finished()).To(BeTrue())
			player.GoTo(0.5)
			Expect(player.Finished()).To(BeFalse())
		})
	})

	Describe("SpikesBetween", func() {
		It("is empty for equal bounds", func() {
			for _, t := range []float64{0, 0.6, 1.2, 5} {
				Expect(player.SpikesBetween(t, t)).To(BeEmpty())
			}
		})

		It("is half open and order independent", func() {
			Expect(player.SpikesBetween(0.6, 1.2)).To(HaveLen(2))
			Expect(player.SpikesBetween(1.2, 0.6)).To(HaveLen(2))
			Expect(player.SpikesBetween(0, 2.0)).To(HaveLen(4))
		})
	})

	Describe("Progress", func() {
		It("tracks the clock within the range", func() {
			player.Play(0.5)
			player.Frame()
			Expect(player.Progress()).To(BeNumerically("~", 0.25, 1e-12))
		})
	})
})
