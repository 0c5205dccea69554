package engine_test

import (
	"errors"

	"github.com/goki/mat32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spikeviz/internal/config"
	"github.com/san-kum/spikeviz/internal/dataset"
	"github.com/san-kum/spikeviz/internal/engine"
	"github.com/san-kum/spikeviz/internal/particles"
	"github.com/san-kum/spikeviz/internal/playback"
	"github.com/san-kum/spikeviz/internal/spikes"
)

func nodeParticles(eng *engine.Engine, gid uint32) []particles.Particle {
	node, ok := eng.System().Node(gid)
	Expect(ok).To(BeTrue())
	return eng.System().Pool().Particles()[node.Range.Start:node.Range.End]
}

var _ = Describe("Engine", func() {
	var (
		cfg *config.Config
		ds  *dataset.Dataset
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		cfg.Playback.Dt = 0.5
		cfg.Playback.Start = 0
		cfg.Playback.End = 2
		cfg.Particles.PerNode = 3
		ds = dataset.New("single", []spikes.Event{{Time: 1.0, GID: 5}}, map[uint32]mat32.Vec3{
			5: {X: 1, Y: 2, Z: 3},
			6: {},
		})
	})

	Describe("New", func() {
		It("allocates one node per neuron", func() {
			eng, err := engine.New(cfg, ds)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Nodes()).To(HaveLen(2))
			Expect(eng.System().Pool().Cap()).To(Equal(6))
			Expect(eng.Player().StartTime()).To(Equal(0.0))
			Expect(eng.Player().EndTime()).To(Equal(2.0))
			Expect(eng.Player().IsPlaying()).To(BeTrue())

			node, ok := eng.System().Node(5)
			Expect(ok).To(BeTrue())
			Expect(node.Position).To(Equal(mat32.Vec3{X: 1, Y: 2, Z: 3}))
			Expect(node.Range.Len()).To(Equal(3))
		})

		It("uses the dataset span when no range is configured", func() {
			cfg.Playback.End = 0
			eng, err := engine.New(cfg, ds)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Player().StartTime()).To(Equal(1.0))
			Expect(eng.Player().EndTime()).To(Equal(1.0))
		})

		DescribeTable("reports the failing field",
			func(mutate func(*config.Config), field string) {
				mutate(cfg)
				_, err := engine.New(cfg, ds)
				var cerr *engine.ConfigError
				Expect(errors.As(err, &cerr)).To(BeTrue())
				Expect(cerr.Field).To(Equal(field))
			},
			Entry("unknown policy", func(c *config.Config) { c.Particles.Policy = "dynamic" }, "particles.policy"),
			Entry("unknown combine op", func(c *config.Config) {
				pc := c.Prototypes["default"]
				pc.Combine = "pow"
				c.Prototypes["default"] = pc
			}, "prototypes.default.combine"),
			Entry("missing color curve", func(c *config.Config) {
				pc := c.Prototypes["default"]
				pc.Color = nil
				c.Prototypes["default"] = pc
			}, "prototypes.default"),
			Entry("invalid dt", func(c *config.Config) { c.Playback.Dt = 0 }, "config"),
		)

		It("rejects a missing dataset", func() {
			_, err := engine.New(cfg, nil)
			Expect(err).To(MatchError(engine.ErrNoDataset))
		})

		It("rejects a dataset without neurons", func() {
			_, err := engine.New(cfg, &dataset.Dataset{})
			Expect(err).To(MatchError(engine.ErrEmptyDataset))
		})
	})

	Describe("Update", func() {
		var eng *engine.Engine

		BeforeEach(func() {
			var err error
			eng, err = engine.New(cfg, ds)
			Expect(err).NotTo(HaveOccurred())
		})

		It("fires neuron 5 exactly once in the frame covering its spike", func() {
			fired := 0
			var firing engine.Frame
			for i := 0; i < 6; i++ {
				f := eng.Update(0.5)
				if f.Fired > 0 {
					fired += f.Fired
					firing = f
				}
			}
			Expect(fired).To(Equal(1))
			Expect(firing.Previous).To(Equal(1.0))
			Expect(firing.Time).To(Equal(1.5))
			Expect(firing.Emitted).To(Equal(3))
		})

		It("shows newborn particles for exactly one tick", func() {
			var f engine.Frame
			for f.Fired == 0 {
				f = eng.Update(0.5)
			}
			for _, p := range nodeParticles(eng, 5) {
				Expect(p.Alive).To(BeTrue())
				Expect(p.Newborn).To(BeTrue())
				Expect(p.Position).To(Equal(mat32.Vec3{X: 1, Y: 2, Z: 3}))
			}
			Expect(f.Newborn).To(Equal(3))

			f = eng.Update(0.5)
			for _, p := range nodeParticles(eng, 5) {
				Expect(p.Newborn).To(BeFalse())
			}
			Expect(f.Newborn).To(BeZero())
		})

		It("leaves other nodes untouched", func() {
			for i := 0; i < 4; i++ {
				eng.Update(0.5)
			}
			for _, p := range nodeParticles(eng, 6) {
				Expect(p.Alive).To(BeFalse())
			}
		})

		It("stops advancing once finished without loop", func() {
			var f engine.Frame
			for f.State != playback.Finished {
				f = eng.Update(0.5)
			}
			t := f.Time

			f = eng.Update(0.5)
			Expect(f.Time).To(Equal(t))
			Expect(f.Advanced).To(BeFalse())
			Expect(f.State).To(Equal(playback.Finished))
			Expect(eng.Player().IsPlaying()).To(BeFalse())
		})

		It("restarts from the start on the tick after finishing when looping", func() {
			eng.SetLoop(true)
			var f engine.Frame
			for f.State != playback.Finished {
				f = eng.Update(0.5)
			}

			f = eng.Update(0.5)
			Expect(f.Looped).To(BeTrue())
			Expect(f.Previous).To(Equal(0.0))
			Expect(f.Time).To(Equal(0.5))
			Expect(f.State).To(Equal(playback.Playing))
		})

		It("does not advance while paused", func() {
			eng.Pause()
			f := eng.Update(0.5)
			Expect(f.Time).To(Equal(0.0))
			Expect(f.Advanced).To(BeFalse())
			eng.Pause()
			f = eng.Update(0.5)
			Expect(f.Time).To(Equal(0.5))
			Expect(f.Advanced).To(BeTrue())
		})

		It("reports paused ticks after playing as not advanced", func() {
			eng.Update(0.5)
			eng.Pause()
			f := eng.Update(0.5)
			Expect(f.Previous).To(Equal(0.0))
			Expect(f.Time).To(Equal(0.5))
			Expect(f.Advanced).To(BeFalse())
		})

		It("fires after seeking next to the spike", func() {
			eng.GoTo(1.2)
			Expect(eng.Player().CurrentTime()).To(Equal(1.0))
			f := eng.Update(0.5)
			Expect(f.Fired).To(Equal(1))
		})

		It("notifies observers with every frame", func() {
			var frames []engine.Frame
			eng.AddObserver(engine.FrameObserverFunc(func(f engine.Frame) {
				frames = append(frames, f)
			}))
			eng.Step()
			eng.Step()
			Expect(frames).To(HaveLen(2))
			Expect(frames[1].Index).To(Equal(1))
		})
	})

	It("counts and skips spikes of unknown neurons", func() {
		ds = &dataset.Dataset{
			Name:      "partial",
			Spikes:    spikes.NewSequence([]spikes.Event{{Time: 0.1, GID: 1}, {Time: 0.2, GID: 99}}),
			Positions: map[uint32]mat32.Vec3{1: {}},
			Start:     0.1,
			End:       0.2,
		}
		eng, err := engine.New(cfg, ds)
		Expect(err).NotTo(HaveOccurred())

		f := eng.Update(0.5)
		Expect(f.Spikes).To(Equal(2))
		Expect(f.Fired).To(Equal(1))
		Expect(f.Unknown).To(Equal(1))
		Expect(eng.UnknownSpikes()).To(Equal(1))
	})

	It("drives direct-valued nodes from their activity", func() {
		cfg.Particles.Policy = "direct"
		eng, err := engine.New(cfg, ds)
		Expect(err).NotTo(HaveOccurred())

		var f engine.Frame
		for f.Fired == 0 {
			f = eng.Update(0.5)
		}
		node, _ := eng.System().Node(5)
		Expect(node.ParticlesLife).To(Equal(float32(0)))
		Expect(f.Newborn).To(BeZero())

		eng.Update(0.5)
		Expect(node.ParticlesLife).To(BeNumerically(">", 0))
		Expect(node.ParticlesLife).To(BeNumerically("<=", 1))
	})
})
