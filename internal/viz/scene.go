package viz

import (
	"sort"

	"github.com/goki/mat32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/spikeviz/internal/particles"
)

// minVisibleAlpha hides particles that have faded out.
const minVisibleAlpha = 0.03

type dot struct {
	x, y   int
	depth  float64
	radius int
	color  string
}

// DrawParticles projects every live particle of sys onto the canvas, far to
// near. Alpha is applied against a black background. With showNodes the
// node positions are drawn in the theme's node color first.
func DrawParticles(c *Canvas, cam *Camera, sys *particles.System, showNodes bool) int {
	cw, ch := c.Width*2, c.Height*4

	if showNodes {
		nodeColor := string(CurrentTheme.Node)
		for _, n := range sys.Nodes() {
			if x, y, _, ok := cam.Project(FromMat32(n.Position), cw, ch); ok {
				c.Plot(x, y, nodeColor)
			}
		}
	}

	pool := sys.Pool()
	dots := make([]dot, 0, 256)
	for i := 0; i < pool.Allocated(); i++ {
		p := pool.At(i)
		if !p.Alive || p.Color.W < minVisibleAlpha {
			continue
		}
		x, y, depth, ok := cam.Project(FromMat32(p.Position), cw, ch)
		if !ok {
			continue
		}
		dots = append(dots, dot{
			x:      x,
			y:      y,
			depth:  depth,
			radius: dotRadius(p.Size),
			color:  particleHex(p.Color),
		})
	}

	sort.Slice(dots, func(i, j int) bool { return dots[i].depth < dots[j].depth })
	for _, d := range dots {
		for dy := -d.radius; dy <= d.radius; dy++ {
			for dx := -d.radius; dx <= d.radius; dx++ {
				if dx*dx+dy*dy <= d.radius*d.radius {
					c.Plot(d.x+dx, d.y+dy, d.color)
				}
			}
		}
	}
	return len(dots)
}

func dotRadius(size float32) int {
	switch {
	case size >= 2:
		return 2
	case size >= 1:
		return 1
	default:
		return 0
	}
}

func particleHex(c mat32.Vec4) string {
	a := float64(c.W)
	return colorful.Color{R: float64(c.X) * a, G: float64(c.Y) * a, B: float64(c.Z) * a}.Clamped().Hex()
}
