package config

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/finitevolume/ibflow/ibrun"
	"github.com/finitevolume/ibflow/immersed"
	"github.com/finitevolume/ibflow/motion"
	"github.com/spf13/viper"
)

// Tree wraps the nested "ImmersedBoundaries" / "ImmersedBoundaryArray" /
// "ImmersedBoundaries.Collisions" section of a run file the way
// ImmersedBoundary's constructor walks a boost::property_tree: each
// named body is a viper sub-tree keyed by field name, geometry, motion
// and properties. Point-valued keys are written as nested {x, y} maps
// rather than the original's parenthesized "(x,y)" strings, since
// viper decodes nested maps natively and a hand-rolled point parser
// would just be reimplementing what UnmarshalKey already does.
type Tree struct {
	v *viper.Viper
}

// LoadTree parses a YAML immersed-boundary section through
// github.com/spf13/viper; config.RunParameters reads its run file
// separately, through ghodss/yaml.
func LoadTree(data []byte) (*Tree, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("config: read immersed boundary tree: %w", err)
	}
	return &Tree{v: v}, nil
}

type pointCfg struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

func (p pointCfg) Point() geometry2d.Point { return geometry2d.Point{X: p.X, Y: p.Y} }

type geometryCfg struct {
	Type string `mapstructure:"type"`
	Center pointCfg `mapstructure:"center"`
	Radius float64 `mapstructure:"radius"`
	Width float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	File string `mapstructure:"file"`
	Scale float64 `mapstructure:"scale"`
	Rotate float64 `mapstructure:"rotate"`
}

func buildShape(g geometryCfg) (geometry2d.Shape, error) {
	var shape geometry2d.Shape
	var err error

	switch strings.ToLower(g.Type) {
	case "circle":
		shape = geometry2d.NewCircle(g.Center.Point(), g.Radius)
	case "box":
		shape, err = geometry2d.NewBox(g.Center.Point(), g.Width, g.Height)
	case "polygon":
		shape, err = geometry2d.NewPolygonFromFile(g.File, g.Center.Point())
	default:
		return nil, fmt.Errorf("%w: unrecognized geometry type %q", ibrun.ErrInvalidConfiguration, g.Type)
	}
	if err != nil {
		return nil, err
	}

	if g.Scale != 0 && g.Scale != 1 {
		shape.Scale(g.Scale)
	}
	if g.Rotate != 0 {
		shape.Rotate(g.Rotate * math.Pi / 180)
	}
	return shape, nil
}

type motionCfg struct {
	Type string `mapstructure:"type"`
	Velocity pointCfg `mapstructure:"velocity"`
	Acceleration pointCfg `mapstructure:"acceleration"`
	Direction pointCfg `mapstructure:"direction"`
	Frequency float64 `mapstructure:"frequency"`
	Amplitude float64 `mapstructure:"amplitude"`
	Phase float64 `mapstructure:"phase"`
	Omega0 float64 `mapstructure:"omega0"`
}

func buildMotion(m motionCfg, rho float64, shape geometry2d.Shape) (motion.Motion, error) {
	switch strings.ToLower(m.Type) {
	case "", "none":
		return nil, nil
	case "translating":
		return motion.NewTranslatingMotion(shape.Centroid(), m.Velocity.Point(), m.Acceleration.Point()), nil
	case "oscillating":
		return motion.NewOscillatingMotion(shape.Centroid(), m.Direction.Point(), m.Frequency, m.Amplitude, m.Phase), nil
	case "solidbody":
		return motion.NewSolidBodyMotion(rho, shape, m.Velocity.Point(), m.Omega0), nil
	default:
		return nil, fmt.Errorf("%w: invalid motion type %q", ibrun.ErrInvalidConfiguration, m.Type)
	}
}

type fieldBoundaryCfg struct {
	Type string `mapstructure:"type"`
	Value float64 `mapstructure:"value"`
}

var reservedKeys = map[string]bool{
	"geometry": true, "interpolation": true, "motion": true,
	"method": true, "properties": true,
}

func applyFieldBoundaries(body *immersed.Body, names []string, get func(string) fieldBoundaryCfg) error {
	for _, name := range names {
		if reservedKeys[name] {
			continue
		}
		fb := get(name)
		var kind immersed.BCKind
		switch strings.ToLower(fb.Type) {
		case "fixed":
			kind = immersed.BCFixed
		case "normal_gradient":
			kind = immersed.BCNormalGradient
		case "partial_slip":
			kind = immersed.BCPartialSlip
		case "":
			continue
		default:
			return fmt.Errorf("%w: unrecognized boundary type %q for field %q", ibrun.ErrInvalidConfiguration, fb.Type, name)
		}
		body.SetBoundary(name, kind, fb.Value)
	}
	return nil
}

// BuildRegistry constructs a fully-wired immersed.Registry from the
// tree's "ImmersedBoundaries" map, "ImmersedBoundaryArray" rectangular
// grid of identical bodies, and "ImmersedBoundaries.Collisions" model,
// the same three sections ImmersedBoundary's constructor walks in turn.
func (t *Tree) BuildRegistry(g *gridmesh.Grid) (*immersed.Registry, error) {
	stiffness := t.v.GetFloat64("ImmersedBoundaries.Collisions.stiffness")
	if !t.v.IsSet("ImmersedBoundaries.Collisions.stiffness") {
		stiffness = 1e-4
	}
	rng := t.v.GetFloat64("ImmersedBoundaries.Collisions.range")

	reg := immersed.NewRegistry(g, immersed.NewCollisionModel(stiffness, rng))

	id := 0
	if named := t.v.Sub("ImmersedBoundaries"); named != nil {
		for _, name := range sortedKeys(named) {
			if name == "collisions" {
				continue
			}
			sub := named.Sub(name)
			if sub == nil {
				continue
			}
			body, err := buildNamedBody(sub, name, id, g)
			if err != nil {
				return nil, fmt.Errorf("config: immersed boundary %q: %w", name, err)
			}
			reg.Add(body)
			id++
		}
	}

	if arr := t.v.Sub("ImmersedBoundaryArray"); arr != nil {
		bodies, err := buildArray(arr, g, &id)
		if err != nil {
			return nil, fmt.Errorf("config: immersed boundary array: %w", err)
		}
		for _, b := range bodies {
			reg.Add(b)
		}
	}

	return reg, nil
}

func sortedKeys(v *viper.Viper) []string {
	keys := v.AllKeys()
	seen := make(map[string]bool)
	var top []string
	for _, k := range keys {
		head := strings.SplitN(k, ".", 2)[0]
		if !seen[head] {
			seen[head] = true
			top = append(top, head)
		}
	}
	return top
}

func buildNamedBody(sub *viper.Viper, name string, id int, g *gridmesh.Grid) (*immersed.Body, error) {
	var geomCfg geometryCfg
	if err := sub.UnmarshalKey("geometry", &geomCfg); err != nil {
		return nil, err
	}
	shape, err := buildShape(geomCfg)
	if err != nil {
		return nil, err
	}

	rho := sub.GetFloat64("properties.rho")

	var motCfg motionCfg
	if err := sub.UnmarshalKey("motion", &motCfg); err != nil {
		return nil, err
	}
	mot, err := buildMotion(motCfg, rho, shape)
	if err != nil {
		return nil, err
	}

	body := immersed.NewBody(name, id, shape, rho, mot, g)

	switch method := sub.GetString("method"); strings.ToLower(method) {
	case "", "ghost-cell":
	case "step":
		body.Method = immersed.MethodStep
	case "quadratic":
		body.Method = immersed.MethodQuadratic
	case "high-order":
		body.Method = immersed.MethodHighOrder
	default:
		return nil, fmt.Errorf("%w: unrecognized immersed boundary method %q", ibrun.ErrInvalidConfiguration, method)
	}

	if err := applyFieldBoundaries(body, sortedKeys(sub), func(field string) fieldBoundaryCfg {
		var fb fieldBoundaryCfg
		_ = sub.UnmarshalKey(field, &fb)
		return fb
	}); err != nil {
		return nil, err
	}
	return body, nil
}

func buildArray(arr *viper.Viper, g *gridmesh.Grid, id *int) ([]*immersed.Body, error) {
	shapeI := arr.GetInt("shapeI")
	shapeJ := arr.GetInt("shapeJ")

	var anchor, spacing pointCfg
	if err := arr.UnmarshalKey("anchor", &anchor); err != nil {
		return nil, err
	}
	if err := arr.UnmarshalKey("spacing", &spacing); err != nil {
		return nil, err
	}

	boundary := arr.Sub("boundary")
	if boundary == nil {
		return nil, fmt.Errorf("%w: ImmersedBoundaryArray.boundary is required", ibrun.ErrInvalidConfiguration)
	}
	name := boundary.GetString("name")
	rho := boundary.GetFloat64("properties.rho")

	var geomCfg geometryCfg
	if err := boundary.UnmarshalKey("geometry", &geomCfg); err != nil {
		return nil, err
	}

	var motCfg motionCfg
	if err := boundary.UnmarshalKey("motion", &motCfg); err != nil {
		return nil, err
	}

	fields := boundary.Sub("fields")

	var bodies []*immersed.Body
	for j := 0; j < shapeJ; j++ {
		for i := 0; i < shapeI; i++ {
			center := anchor.Point().Plus(geometry2d.Point{X: spacing.X * float64(i), Y: spacing.Y * float64(j)})
			cfg := geomCfg
			cfg.Center = pointCfg{X: center.X, Y: center.Y}

			shape, err := buildShape(cfg)
			if err != nil {
				return nil, err
			}
			mot, err := buildMotion(motCfg, rho, shape)
			if err != nil {
				return nil, err
			}

			bodyName := fmt.Sprintf("%s_%d_%d", name, i, j)
			body := immersed.NewBody(bodyName, *id, shape, rho, mot, g)
			*id++

			if fields != nil {
				if err := applyFieldBoundaries(body, sortedKeys(fields), func(field string) fieldBoundaryCfg {
					var fb fieldBoundaryCfg
					_ = fields.UnmarshalKey(field, &fb)
					return fb
				}); err != nil {
					return nil, err
				}
			}
			bodies = append(bodies, body)
		}
	}
	return bodies, nil
}
