// Package engine ties a dataset, a particle system and a spike player
// together. Update advances all three by one tick: spikes that fall in the
// tick's window fire the particle node of their neuron.
package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/spikeviz/internal/config"
	"github.com/san-kum/spikeviz/internal/dataset"
	"github.com/san-kum/spikeviz/internal/particles"
	"github.com/san-kum/spikeviz/internal/playback"
	"github.com/san-kum/spikeviz/internal/registry"
)

type Engine struct {
	cfg      *config.Config
	ds       *dataset.Dataset
	system   *particles.System
	player   *playback.Player
	registry *registry.Registry

	observers []FrameObserver
	logger    *slog.Logger

	dt       float64
	override bool

	frames  int
	unknown int
}

// New builds an engine over ds. Every setup failure is returned as a
// *ConfigError naming the offending field.
func New(cfg *config.Config, ds *dataset.Dataset, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Engine{
		cfg:      cfg,
		ds:       ds,
		registry: registry.NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		dt:       cfg.Playback.Dt,
		override: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if ds == nil {
		return nil, configErr("dataset", ErrNoDataset)
	}
	if err := cfg.Validate(); err != nil {
		return nil, configErr("config", err)
	}
	if ds.NumNeurons() == 0 {
		return nil, configErr("dataset", ErrEmptyDataset)
	}

	policy, err := e.registry.GetPolicy(cfg.Particles.Policy)
	if err != nil {
		return nil, configErr("particles.policy", err)
	}

	protoName := cfg.Particles.Prototype
	pc, _ := cfg.ActivePrototype()
	op, err := e.registry.GetCombineOp(pc.Combine)
	if err != nil {
		return nil, configErr(fmt.Sprintf("prototypes.%s.combine", protoName), err)
	}
	proto, err := pc.Build(protoName)
	if err != nil {
		return nil, configErr(fmt.Sprintf("prototypes.%s", protoName), err)
	}
	proto.SetCombineOp(op)

	perNode := cfg.Particles.PerNode
	pool := particles.NewPool(ds.NumNeurons() * perNode)
	e.system = particles.NewSystem(pool, proto, policy, cfg.Particles.Seed)

	nodeColor := cfg.Particles.NodeColor.Vec4()
	for _, gid := range ds.GIDs() {
		node, err := e.system.CreateNode(gid, perNode, ds.Positions[gid], nodeColor)
		if err != nil {
			return nil, configErr("particles.per_node", err)
		}
		node.Size = cfg.Particles.NodeSize
		node.Still = cfg.Particles.Still
		node.MaxEmissionCycles = cfg.Particles.MaxEmissionCycles
		node.ParticlesLife = 1
	}

	start, end := ds.Start, ds.End
	if cfg.Playback.End > cfg.Playback.Start {
		start, end = cfg.Playback.Start, cfg.Playback.End
	}
	e.player = playback.New(ds.Spikes, start, end)
	e.player.SetLoop(cfg.Playback.Loop)
	if cfg.Playback.AutoPlay {
		e.player.Play(e.dt)
	}

	e.logger.Info("engine ready",
		"dataset", ds.Name,
		"neurons", ds.NumNeurons(),
		"spikes", len(ds.Spikes),
		"particles", pool.Cap(),
		"policy", policy.Name(),
		"prototype", protoName,
		"start", start,
		"end", end)
	return e, nil
}

// Update advances the engine by dt seconds of simulated time and returns
// the frame summary handed to observers.
func (e *Engine) Update(dt float64) Frame {
	looped := false
	if e.player.Finished() {
		if e.player.Loop() {
			e.restart()
			looped = true
		} else if e.player.IsPlaying() {
			e.player.Pause()
		}
	}

	e.system.AdvanceNodes(float32(dt))
	e.system.Update(float32(dt))

	f := Frame{Index: e.frames, Looped: looped}
	f.Advanced = e.player.Frame()
	if f.Advanced {
		for _, ev := range e.player.SpikesNow() {
			f.Spikes++
			node, ok := e.system.Node(ev.GID)
			if !ok {
				f.Unknown++
				continue
			}
			f.Fired++
			f.Emitted += e.fire(node)
		}
	}
	e.unknown += f.Unknown
	e.frames++

	st := e.system.Stats()
	f.Time = e.player.CurrentTime()
	f.Previous = e.player.PreviousTime()
	f.State = e.player.State()
	f.Alive, f.Newborn, f.Total = st.Alive, st.Newborn, st.Total

	for _, o := range e.observers {
		o.OnFrame(f)
	}
	return f
}

// Step is Update with the configured playback step.
func (e *Engine) Step() Frame { return e.Update(e.dt) }

func (e *Engine) fire(node *particles.Node) int {
	node.KillParticles(e.system.Pool(), true)
	node.ParticlesLife = 0
	return e.system.Emit(node, e.override)
}

func (e *Engine) restart() {
	e.player.Stop()
	e.system.KillAll(false)
	e.player.Play(e.dt)
	e.logger.Debug("playback looped", "start", e.player.StartTime())
}

func (e *Engine) Play() { e.player.Play(e.dt) }

// Pause toggles playback.
func (e *Engine) Pause() { e.player.Pause() }

func (e *Engine) Stop() {
	e.player.Stop()
	e.system.KillAll(false)
}

// Restart rewinds to the start and keeps playing.
func (e *Engine) Restart() { e.restart() }

// GoTo seeks the player; particles of the old position fade out.
func (e *Engine) GoTo(ts float64) {
	e.player.GoTo(ts)
	e.system.KillAll(false)
}

func (e *Engine) SetLoop(loop bool) { e.player.SetLoop(loop) }

// SetDeltaTime changes the playback step used by Step, Play and loops.
func (e *Engine) SetDeltaTime(dt float64) {
	if dt <= 0 {
		return
	}
	e.dt = dt
	if e.player.IsPlaying() {
		e.player.Play(dt)
	}
}

// SetOverride controls whether firing re-emits particles that are still
// alive. It is on by default.
func (e *Engine) SetOverride(override bool) { e.override = override }

func (e *Engine) AddObserver(o FrameObserver) { e.observers = append(e.observers, o) }

func (e *Engine) Player() *playback.Player  { return e.player }
func (e *Engine) System() *particles.System { return e.system }
func (e *Engine) Nodes() []*particles.Node  { return e.system.Nodes() }
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }
func (e *Engine) Config() *config.Config    { return e.cfg }
func (e *Engine) DeltaTime() float64        { return e.dt }
func (e *Engine) Frames() int               { return e.frames }

// UnknownSpikes returns how many spikes named a GID without a node.
func (e *Engine) UnknownSpikes() int { return e.unknown }
