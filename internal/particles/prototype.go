package particles

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/goki/mat32"
	"github.com/san-kum/spikeviz/internal/curve"
)

// CombineOp blends a node's base color with a curve-evaluated color.
type CombineOp int

const (
	CombineAdd CombineOp = iota
	CombineSub
	CombineMul
	CombineDiv
)

// minDenominator keeps CombineDiv finite.
const minDenominator = 1e-4

var combineNames = map[CombineOp]string{
	CombineAdd: "add",
	CombineSub: "sub",
	CombineMul: "mul",
	CombineDiv: "div",
}

func (op CombineOp) String() string {
	if s, ok := combineNames[op]; ok {
		return s
	}
	return fmt.Sprintf("CombineOp(%d)", int(op))
}

func ParseCombineOp(s string) (CombineOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "add", "+":
		return CombineAdd, nil
	case "sub", "subtract", "-":
		return CombineSub, nil
	case "mul", "multiply", "*":
		return CombineMul, nil
	case "div", "divide", "/":
		return CombineDiv, nil
	}
	return CombineAdd, fmt.Errorf("%w: %q", ErrUnknownCombineOp, s)
}

type CombineFunc func(node, curve mat32.Vec4) mat32.Vec4

// Func returns the pure blend function for op. Unknown values fall back to add.
func (op CombineOp) Func() CombineFunc {
	switch op {
	case CombineSub:
		return combineSub
	case CombineMul:
		return combineMul
	case CombineDiv:
		return combineDiv
	default:
		return combineAdd
	}
}

func combineAdd(a, b mat32.Vec4) mat32.Vec4 {
	return mat32.Vec4{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z, W: a.W + b.W}
}

func combineSub(a, b mat32.Vec4) mat32.Vec4 {
	return mat32.Vec4{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z, W: a.W - b.W}
}

func combineMul(a, b mat32.Vec4) mat32.Vec4 {
	return mat32.Vec4{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z, W: a.W * b.W}
}

func combineDiv(a, b mat32.Vec4) mat32.Vec4 {
	return mat32.Vec4{
		X: a.X / safeDenominator(b.X),
		Y: a.Y / safeDenominator(b.Y),
		Z: a.Z / safeDenominator(b.Z),
		W: a.W / safeDenominator(b.W),
	}
}

func safeDenominator(d float32) float32 {
	if mat32.Abs(d) >= minDenominator {
		return d
	}
	if d < 0 {
		return -minDenominator
	}
	return minDenominator
}

// Prototype describes how every particle of one kind evolves over its life.
// Curves are evaluated over the life fraction [0, 1] and are read-only while
// a frame is being updated.
type Prototype struct {
	Name         string
	MinLife      float32
	LifeInterval float32
	Color        *curve.Curve[mat32.Vec4]
	Size         *curve.Curve[float32]
	Velocity     *curve.Curve[float32]

	op      CombineOp
	combine CombineFunc
}

func NewPrototype(name string, minLife, lifeInterval float32) *Prototype {
	return &Prototype{
		Name:         name,
		MinLife:      minLife,
		LifeInterval: lifeInterval,
		Color:        curve.NewColor(),
		Size:         curve.NewScalar(),
		Velocity:     curve.NewScalar(),
		op:           CombineAdd,
		combine:      combineAdd,
	}
}

// SetCombineOp swaps the blend function. Particles already updated keep
// their computed colors.
func (p *Prototype) SetCombineOp(op CombineOp) {
	p.op = op
	p.combine = op.Func()
}

func (p *Prototype) CombineOp() CombineOp { return p.op }

func (p *Prototype) Combine(node, c mat32.Vec4) mat32.Vec4 {
	if p.combine == nil {
		return combineAdd(node, c)
	}
	return p.combine(node, c)
}

func (p *Prototype) MaxLife() float32 { return p.MinLife + p.LifeInterval }

// DrawLife returns a random lifetime in [MinLife, MinLife+LifeInterval).
func (p *Prototype) DrawLife(rng *rand.Rand) float32 {
	if p.LifeInterval <= 0 {
		return p.MinLife
	}
	return p.MinLife + rng.Float32()*p.LifeInterval
}

func (p *Prototype) Validate() error {
	if p.MinLife < 0 || p.LifeInterval < 0 {
		return fmt.Errorf("prototype %q: min_life=%g life_interval=%g: %w", p.Name, p.MinLife, p.LifeInterval, ErrInvalidLife)
	}
	switch {
	case p.Color == nil || p.Color.Len() == 0:
		return fmt.Errorf("prototype %q: color: %w", p.Name, ErrMissingCurve)
	case p.Size == nil || p.Size.Len() == 0:
		return fmt.Errorf("prototype %q: size: %w", p.Name, ErrMissingCurve)
	case p.Velocity == nil || p.Velocity.Len() == 0:
		return fmt.Errorf("prototype %q: velocity: %w", p.Name, ErrMissingCurve)
	}
	return nil
}

func clampColor(c mat32.Vec4) mat32.Vec4 {
	return mat32.Vec4{X: clamp01(c.X), Y: clamp01(c.Y), Z: clamp01(c.Z), W: clamp01(c.W)}
}

func clamp01(x float32) float32 {
	return mat32.Min(mat32.Max(x, 0), 1)
}
