package curve

import (
	"sort"

	"github.com/goki/mat32"
)

// LerpFunc blends a toward b by t in [0, 1].
type LerpFunc[T any] func(a, b T, t float32) T

// Point is a single breakpoint of a curve.
type Point[T any] struct {
	At    float32
	Value T
}

// Curve maps a scalar parameter to a value by linear interpolation between
// breakpoints kept in ascending order.
type Curve[T any] struct {
	points []Point[T]
	lerp   LerpFunc[T]
}

func New[T any](lerp LerpFunc[T]) *Curve[T] {
	return &Curve[T]{lerp: lerp}
}

func NewScalar() *Curve[float32]    { return New(LerpScalar) }
func NewVector() *Curve[mat32.Vec3] { return New(LerpVec3) }
func NewColor() *Curve[mat32.Vec4]  { return New(LerpVec4) }

// Insert adds a breakpoint, placing it after any existing breakpoints with
// the same parameter.
func (c *Curve[T]) Insert(at float32, v T) {
	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].At > at })
	c.points = append(c.points, Point[T]{})
	copy(c.points[i+1:], c.points[i:])
	c.points[i] = Point[T]{At: at, Value: v}
}

// Evaluate returns the interpolated value at x. An empty curve yields the
// zero value and NaN yields the first breakpoint.
func (c *Curve[T]) Evaluate(x float32) T {
	n := len(c.points)
	if n == 0 {
		var zero T
		return zero
	}
	if x != x || x <= c.points[0].At {
		return c.points[0].Value
	}
	if x >= c.points[n-1].At {
		return c.points[n-1].Value
	}

	next := sort.Search(n, func(i int) bool { return c.points[i].At > x })
	prev := next - 1
	p0, p1 := c.points[prev], c.points[next]

	t := (x - p0.At) / (p1.At - p0.At)
	return c.lerp(p0.Value, p1.Value, t)
}

func (c *Curve[T]) Len() int { return len(c.points) }

// Points returns a copy of the breakpoints in order.
func (c *Curve[T]) Points() []Point[T] {
	out := make([]Point[T], len(c.points))
	copy(out, c.points)
	return out
}

func LerpScalar(a, b, t float32) float32 {
	return a + (b-a)*t
}

func LerpVec3(a, b mat32.Vec3, t float32) mat32.Vec3 {
	return mat32.Vec3{
		X: LerpScalar(a.X, b.X, t),
		Y: LerpScalar(a.Y, b.Y, t),
		Z: LerpScalar(a.Z, b.Z, t),
	}
}

func LerpVec4(a, b mat32.Vec4, t float32) mat32.Vec4 {
	return mat32.Vec4{
		X: LerpScalar(a.X, b.X, t),
		Y: LerpScalar(a.Y, b.Y, t),
		Z: LerpScalar(a.Z, b.Z, t),
		W: LerpScalar(a.W, b.W, t),
	}
}
