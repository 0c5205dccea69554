package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goki/mat32"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/spikeviz/internal/particles"
)

type PrototypeConfig struct {
	MinLife      float32       `yaml:"min_life"`
	LifeInterval float32       `yaml:"life_interval"`
	Combine      string        `yaml:"combine"`
	Color        []ColorPoint  `yaml:"color"`
	Size         []ScalarPoint `yaml:"size"`
	Velocity     []ScalarPoint `yaml:"velocity"`
}

type ColorPoint struct {
	At    float32 `yaml:"at"`
	Value Color   `yaml:"value"`
}

type ScalarPoint struct {
	At    float32 `yaml:"at"`
	Value float32 `yaml:"value"`
}

// Color is an RGBA color with components in [0, 1]. In YAML it is written
// as "#rrggbb", "#rrggbbaa" or a list of three or four numbers.
type Color struct {
	R, G, B, A float32
}

func (c Color) Vec4() mat32.Vec4 {
	return mat32.Vec4{X: c.R, Y: c.G, Z: c.B, W: c.A}
}

func (c Color) Hex() string {
	cc := colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped()
	return fmt.Sprintf("%s%02x", cc.Hex(), int(mat32.Min(mat32.Max(c.A, 0), 1)*255+0.5))
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	alpha := float32(1)
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: bad alpha: %w", s, err)
		}
		alpha = float32(a) / 255
		s = s[:7]
	}
	cc, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: float32(cc.R), G: float32(cc.G), B: float32(cc.B), A: alpha}, nil
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseColor(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*c = parsed
		return nil
	case yaml.SequenceNode:
		var comps []float32
		if err := value.Decode(&comps); err != nil {
			return err
		}
		switch len(comps) {
		case 3:
			*c = Color{R: comps[0], G: comps[1], B: comps[2], A: 1}
		case 4:
			*c = Color{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}
		default:
			return fmt.Errorf("line %d: color needs 3 or 4 components, got %d", value.Line, len(comps))
		}
		return nil
	}
	return fmt.Errorf("line %d: color must be a hex string or a list", value.Line)
}

func (c Color) MarshalYAML() (interface{}, error) {
	return []float32{c.R, c.G, c.B, c.A}, nil
}

// Build turns the configuration into a validated particle prototype.
func (pc PrototypeConfig) Build(name string) (*particles.Prototype, error) {
	op, err := particles.ParseCombineOp(pc.Combine)
	if err != nil {
		return nil, fmt.Errorf("prototype %q: %w", name, err)
	}

	proto := particles.NewPrototype(name, pc.MinLife, pc.LifeInterval)
	proto.SetCombineOp(op)
	for _, p := range pc.Color {
		proto.Color.Insert(p.At, p.Value.Vec4())
	}
	for _, p := range pc.Size {
		proto.Size.Insert(p.At, p.Value)
	}
	for _, p := range pc.Velocity {
		proto.Velocity.Insert(p.At, p.Value)
	}

	if err := proto.Validate(); err != nil {
		return nil, err
	}
	return proto, nil
}
