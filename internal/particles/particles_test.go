package particles

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/goki/mat32"
)

func testPrototype() *Prototype {
	p := NewPrototype("test", 1, 1)
	p.Color.Insert(0, mat32.Vec4{X: 1, Y: 0, Z: 0, W: 1})
	p.Color.Insert(1, mat32.Vec4{X: 0, Y: 0, Z: 1, W: 0})
	p.Size.Insert(0, 2)
	p.Size.Insert(1, 0)
	p.Velocity.Insert(0, 1)
	p.Velocity.Insert(1, 1)
	return p
}

func newTestSystem(t *testing.T, policy UpdatePolicy, nodes, perNode int) *System {
	t.Helper()
	s := NewSystem(NewPool(nodes*perNode), testPrototype(), policy, 1)
	for i := 0; i < nodes; i++ {
		if _, err := s.CreateNode(uint32(i), perNode, mat32.Vec3{X: float32(i)}, mat32.Vec4{}); err != nil {
			t.Fatalf("create node %d: %v", i, err)
		}
	}
	return s
}

func TestPoolAllocate(t *testing.T) {
	pool := NewPool(10)

	a, err := pool.Allocate(4)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	b, err := pool.Allocate(6)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if a.End != b.Start {
		t.Errorf("ranges not contiguous: %v %v", a, b)
	}
	if a.Len() != 4 || b.Len() != 6 {
		t.Errorf("unexpected lengths: %d %d", a.Len(), b.Len())
	}

	if _, err := pool.Allocate(1); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("expected ErrPoolExhausted, got %v", err)
	}

	empty, err := pool.Allocate(0)
	if err != nil || empty.Len() != 0 {
		t.Errorf("zero allocation should succeed, got %v %v", empty, err)
	}
}

func TestCombineOps(t *testing.T) {
	a := mat32.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1}
	b := mat32.Vec4{X: 0.25, Y: 0.5, Z: 1, W: 0.5}

	tests := []struct {
		op   CombineOp
		want mat32.Vec4
	}{
		{CombineAdd, mat32.Vec4{X: 0.75, Y: 1, Z: 1.5, W: 1.5}},
		{CombineSub, mat32.Vec4{X: 0.25, Y: 0, Z: -0.5, W: 0.5}},
		{CombineMul, mat32.Vec4{X: 0.125, Y: 0.25, Z: 0.5, W: 0.5}},
		{CombineDiv, mat32.Vec4{X: 2, Y: 1, Z: 0.5, W: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := tt.op.Func()(a, b); got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

func TestCombineDivGuardsZero(t *testing.T) {
	got := CombineDiv.Func()(mat32.Vec4{X: 1, Y: 1, Z: 1, W: 1}, mat32.Vec4{X: 0, Y: -0, Z: 1e-9, W: -1e-9})
	for _, v := range []float32{got.X, got.Y, got.Z, got.W} {
		if math.IsInf(float64(v), 0) || math.IsNaN(float64(v)) {
			t.Fatalf("division produced non-finite value: %v", got)
		}
	}
	if got.W >= 0 {
		t.Errorf("negative denominator should keep its sign, got %v", got.W)
	}
}

func TestParseCombineOp(t *testing.T) {
	for in, want := range map[string]CombineOp{"add": CombineAdd, "SUB": CombineSub, "*": CombineMul, "divide": CombineDiv, "": CombineAdd} {
		got, err := ParseCombineOp(in)
		if err != nil || got != want {
			t.Errorf("ParseCombineOp(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseCombineOp("xor"); !errors.Is(err, ErrUnknownCombineOp) {
		t.Errorf("expected ErrUnknownCombineOp, got %v", err)
	}
}

func TestPrototypeValidate(t *testing.T) {
	if err := testPrototype().Validate(); err != nil {
		t.Fatalf("valid prototype rejected: %v", err)
	}

	p := NewPrototype("empty", 1, 1)
	if err := p.Validate(); !errors.Is(err, ErrMissingCurve) {
		t.Errorf("expected ErrMissingCurve, got %v", err)
	}

	p = testPrototype()
	p.MinLife = -1
	if err := p.Validate(); !errors.Is(err, ErrInvalidLife) {
		t.Errorf("expected ErrInvalidLife, got %v", err)
	}
}

func TestDrawLifeRange(t *testing.T) {
	p := testPrototype()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		l := p.DrawLife(rng)
		if l < p.MinLife || l >= p.MaxLife() {
			t.Fatalf("life %f outside [%f, %f)", l, p.MinLife, p.MaxLife())
		}
	}
}

func TestEmitInitializesParticle(t *testing.T) {
	s := newTestSystem(t, Composite{}, 1, 2)
	node := s.Nodes()[0]
	node.Color = mat32.Vec4{Y: 0.5}

	if !node.Emit(s.Pool(), node.Range.Start, s.Prototype(), s.Policy(), s.Rand(), false) {
		t.Fatal("emit on dead particle should succeed")
	}
	p := s.Pool().At(node.Range.Start)
	if !p.Alive || !p.Newborn {
		t.Errorf("expected alive newborn particle, got %+v", p)
	}
	if p.Position != node.Position {
		t.Errorf("expected position %v, got %v", node.Position, p.Position)
	}
	if want := (mat32.Vec4{X: 1, Y: 0.5, Z: 0, W: 1}); p.Color != want {
		t.Errorf("expected color %v, got %v", want, p.Color)
	}
	if p.Size != 2 {
		t.Errorf("expected size 2, got %f", p.Size)
	}
	if p.Life < 1 || p.Life >= 2 {
		t.Errorf("life %f outside prototype range", p.Life)
	}

	if node.Emit(s.Pool(), node.Range.Start, s.Prototype(), s.Policy(), s.Rand(), false) {
		t.Error("emit on live particle without override should be refused")
	}
	if !node.Emit(s.Pool(), node.Range.Start, s.Prototype(), s.Policy(), s.Rand(), true) {
		t.Error("emit with override should succeed")
	}
	if node.Emit(s.Pool(), node.Range.End, s.Prototype(), s.Policy(), s.Rand(), true) {
		t.Error("emit outside the node's range should be refused")
	}
}

func TestDirectValuedEmitNotNewborn(t *testing.T) {
	s := newTestSystem(t, DirectValued{}, 1, 1)
	node := s.Nodes()[0]
	s.Emit(node, false)
	if s.Pool().At(node.Range.Start).Newborn {
		t.Error("direct-valued particles must not be newborn at emission")
	}
}

func TestKillParticles(t *testing.T) {
	s := newTestSystem(t, Composite{}, 2, 3)
	for _, n := range s.Nodes() {
		s.Emit(n, false)
	}
	target := s.Nodes()[0]

	target.KillParticles(s.Pool(), true)
	target.KillParticles(s.Pool(), true)
	for i := target.Range.Start; i < target.Range.End; i++ {
		p := s.Pool().At(i)
		if p.Life != 0 || p.Alive {
			t.Errorf("particle %d: expected life=0 alive=false, got %+v", i, p)
		}
	}

	other := s.Nodes()[1]
	for i := other.Range.Start; i < other.Range.End; i++ {
		if !s.Pool().At(i).Alive {
			t.Errorf("particle %d of another node was killed", i)
		}
	}

	other.KillParticles(s.Pool(), false)
	for i := other.Range.Start; i < other.Range.End; i++ {
		p := s.Pool().At(i)
		if p.Life != 0 || !p.Alive {
			t.Errorf("soft kill: expected life=0 alive=true, got %+v", p)
		}
	}
}

func TestKillEmptyNode(t *testing.T) {
	s := newTestSystem(t, Composite{}, 1, 0)
	node := s.Nodes()[0]
	node.KillParticles(s.Pool(), true)
	if n := s.Emit(node, true); n != 0 {
		t.Errorf("empty node emitted %d particles", n)
	}
}

func TestMaxEmissionCycles(t *testing.T) {
	s := newTestSystem(t, Composite{}, 1, 1)
	node := s.Nodes()[0]
	node.MaxEmissionCycles = 2

	if s.Fire(node) != 1 || s.Fire(node) != 1 {
		t.Fatal("first two cycles should emit")
	}
	if s.Fire(node) != 0 {
		t.Error("third cycle should be refused")
	}
	node.ResetCycles()
	if s.Fire(node) != 1 {
		t.Error("cycle counter reset should allow emission")
	}
}

func TestUpdateNewbornForOneFrame(t *testing.T) {
	s := newTestSystem(t, Composite{}, 1, 1)
	node := s.Nodes()[0]
	s.Emit(node, false)
	p := s.Pool().At(node.Range.Start)
	emitted := *p

	s.Update(0.1)
	if p.Newborn {
		t.Error("newborn flag should clear after one update")
	}
	if p.Position != emitted.Position || p.Color != emitted.Color {
		t.Error("newborn particle should keep its emission state during its first update")
	}

	s.Update(0.1)
	if p.Position == emitted.Position {
		t.Error("particle should move once it is no longer newborn")
	}
}

func TestUpdateLifeFloorsAtZero(t *testing.T) {
	s := newTestSystem(t, Composite{}, 1, 1)
	node := s.Nodes()[0]
	s.Emit(node, false)
	p := s.Pool().At(node.Range.Start)

	for i := 0; i < 5; i++ {
		s.Update(1)
	}
	if p.Life != 0 {
		t.Errorf("life should floor at 0, got %f", p.Life)
	}
	// zero life keeps an explicitly alive particle at the end of its curves
	if !p.Alive {
		t.Error("particle with alive flag should survive at zero life")
	}
	if want := (mat32.Vec4{X: 0, Y: 0, Z: 1, W: 0}); p.Color != want {
		t.Errorf("expected end-of-life color %v, got %v", want, p.Color)
	}
	if p.Size != 0 {
		t.Errorf("expected end-of-life size 0, got %f", p.Size)
	}
}

func TestUpdateInactiveNodeKills(t *testing.T) {
	s := newTestSystem(t, Composite{}, 1, 2)
	node := s.Nodes()[0]
	s.Emit(node, false)
	node.Active = false

	s.Update(0.01)
	for i := node.Range.Start; i < node.Range.End; i++ {
		if s.Pool().At(i).Alive {
			t.Errorf("particle %d of inactive node still alive", i)
		}
	}
}

func TestUpdateStillNodeDoesNotMove(t *testing.T) {
	s := newTestSystem(t, Composite{}, 1, 1)
	node := s.Nodes()[0]
	node.Still = true
	s.Emit(node, false)
	p := s.Pool().At(node.Range.Start)
	start := p.Position

	for i := 0; i < 3; i++ {
		s.Update(0.1)
	}
	if p.Position != start {
		t.Errorf("still particle moved from %v to %v", start, p.Position)
	}
}

func TestUpdateDirectValued(t *testing.T) {
	s := newTestSystem(t, DirectValued{}, 1, 1)
	node := s.Nodes()[0]
	node.ParticlesLife = 0.5
	s.Emit(node, false)
	p := s.Pool().At(node.Range.Start)

	s.Update(0.01)
	if math.Abs(float64(p.Size-1)) > 1e-6 {
		t.Errorf("expected size at life fraction 0.5 to be 1, got %f", p.Size)
	}

	node.ParticlesLife = 7
	s.Update(0.01)
	if p.Size != 0 {
		t.Errorf("life fraction should clamp to 1, got size %f", p.Size)
	}
}

func TestAdvanceNodes(t *testing.T) {
	tests := []struct {
		name   string
		policy UpdatePolicy
		start  float32
		want   float32
	}{
		{"composite leaves activity alone", Composite{}, 0.25, 0.25},
		{"direct advances by dt over max life", DirectValued{}, 0.25, 0.3},
		{"direct caps at one", DirectValued{}, 0.99, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSystem(t, tt.policy, 2, 1)
			for _, n := range s.Nodes() {
				n.ParticlesLife = tt.start
			}
			s.AdvanceNodes(0.1)
			for _, n := range s.Nodes() {
				if math.Abs(float64(n.ParticlesLife-tt.want)) > 1e-6 {
					t.Errorf("node %d: expected %v, got %v", n.ID, tt.want, n.ParticlesLife)
				}
			}
		})
	}
}

func TestStats(t *testing.T) {
	s := newTestSystem(t, Composite{}, 3, 2)
	s.Emit(s.Nodes()[1], false)

	st := s.Stats()
	if st.Total != 6 || st.Alive != 2 || st.Newborn != 2 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000, 4097} {
		seen := make([]int, n)
		ParallelFor(n, 16, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}
