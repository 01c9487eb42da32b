package memscene

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/lighttool"
)

// sceneFile is the YAML form of a scene:
//
//	frame: 1
//	editScopes:
//	  - name: editScope
//	shaders:
//	  - name: sharedSpot
//	    type: light
//	    shader: spot_light
//	    parameters: {coneAngle: 40, penumbraAngle: 5}
//	locations:
//	  - path: /group/spot
//	    transform: {translate: [0, 2, 0], rotate: [-90, 0, 0]}
//	    light: {attribute: light, type: light, shader: spot_light,
//	            parameters: {coneAngle: 40}}
//	selection: [/group/spot]
type sceneFile struct {
	Frame      float64         `yaml:"frame"`
	EditScopes []editScopeFile `yaml:"editScopes"`
	Shaders    []shaderFile    `yaml:"shaders"`
	Locations  []locationFile  `yaml:"locations"`
	Selection  []string        `yaml:"selection"`
}

type editScopeFile struct {
	Name   string `yaml:"name"`
	Locked bool   `yaml:"locked"`
}

type shaderFile struct {
	Name       string               `yaml:"name"`
	Type       string               `yaml:"type"`
	Shader     string               `yaml:"shader"`
	Parameters map[string]any       `yaml:"parameters"`
	Animation  map[string][]keyFile `yaml:"animation"`
}

type keyFile struct {
	Time          float64 `yaml:"time"`
	Value         float64 `yaml:"value"`
	Interpolation string  `yaml:"interpolation"`
}

type locationFile struct {
	Path       string         `yaml:"path"`
	Transform  *transformFile `yaml:"transform"`
	Attributes map[string]any `yaml:"attributes"`
	Light      *lightFile     `yaml:"light"`
}

type transformFile struct {
	Translate []float64 `yaml:"translate"`
	Rotate    []float64 `yaml:"rotate"`
	Scale     []float64 `yaml:"scale"`
}

type lightFile struct {
	Attribute string `yaml:"attribute"`
	// Ref names a shared shader from the shaders list.
	Ref        string               `yaml:"ref"`
	Type       string               `yaml:"type"`
	Shader     string               `yaml:"shader"`
	Parameters map[string]any       `yaml:"parameters"`
	Animation  map[string][]keyFile `yaml:"animation"`
}

// Document is a loaded scene with its undo script, frame and selection.
type Document struct {
	Scene     *Scene
	Script    *Script
	Frame     float64
	Selection []lighttool.Path
}

// Load parses a YAML scene description.
func Load(data []byte) (*Document, error) {
	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	script := NewScript()
	s := New(script)
	doc := &Document{Scene: s, Script: script, Frame: f.Frame}
	if doc.Frame == 0 {
		doc.Frame = 1
	}

	for _, es := range f.EditScopes {
		s.AddEditScope(es.Name).SetLocked(es.Locked)
	}

	shared := make(map[string]*Shader, len(f.Shaders))
	for _, sf := range f.Shaders {
		sh, err := s.loadShader(sf.Name, sf.Type, sf.Shader, sf.Parameters, sf.Animation)
		if err != nil {
			return nil, err
		}
		shared[sf.Name] = sh
	}

	for _, lf := range f.Locations {
		if lf.Path == "" {
			return nil, fmt.Errorf("parse scene: location without path")
		}
		s.AddLocation(lf.Path)
		if lf.Transform != nil {
			m, err := lf.Transform.matrix()
			if err != nil {
				return nil, fmt.Errorf("parse scene: %s: %w", lf.Path, err)
			}
			if err := s.SetTransform(lf.Path, m); err != nil {
				return nil, err
			}
		}
		for name, v := range lf.Attributes {
			if fv, ok := toFloat(v); ok {
				v = fv
			}
			if err := s.SetAttribute(lf.Path, name, v); err != nil {
				return nil, err
			}
		}
		if lf.Light == nil {
			continue
		}
		attribute := lf.Light.Attribute
		if attribute == "" {
			attribute = "light"
		}
		sh := shared[lf.Light.Ref]
		if lf.Light.Ref != "" && sh == nil {
			return nil, fmt.Errorf("parse scene: %s: unknown shader %q", lf.Path, lf.Light.Ref)
		}
		if sh == nil {
			var err error
			sh, err = s.loadShader(lighttool.ParsePath(lf.Path).Name(), lf.Light.Type, lf.Light.Shader, lf.Light.Parameters, lf.Light.Animation)
			if err != nil {
				return nil, err
			}
		}
		s.AddLight(lf.Path, attribute, sh)
	}

	for _, p := range f.Selection {
		doc.Selection = append(doc.Selection, lighttool.ParsePath(p))
	}
	return doc, nil
}

// LoadFile reads and parses a YAML scene description.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Load(data)
}

func (s *Scene) loadShader(name, shaderType, shaderName string, params map[string]any, animation map[string][]keyFile) (*Shader, error) {
	if shaderType == "" {
		shaderType = "light"
	}
	sh, err := s.NewShader(name, shaderType, shaderName, params)
	if err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	for param, keys := range animation {
		p := sh.Float(param)
		if p == nil {
			return nil, fmt.Errorf("parse scene: %s: animated parameter %q is not a float", name, param)
		}
		curve := make([]Key, len(keys))
		for i, k := range keys {
			curve[i] = Key{Time: k.Time, Value: k.Value, Interpolation: ParseInterpolation(k.Interpolation)}
		}
		p.Animate(curve...)
	}
	return sh, nil
}

// matrix composes translate · rotate(X, then Y, then Z, in degrees) · scale.
func (t *transformFile) matrix() (mgl64.Mat4, error) {
	vec := func(v []float64, def float64, what string) (mgl64.Vec3, error) {
		switch len(v) {
		case 0:
			return mgl64.Vec3{def, def, def}, nil
		case 3:
			return mgl64.Vec3{v[0], v[1], v[2]}, nil
		default:
			return mgl64.Vec3{}, fmt.Errorf("%s needs 3 components, got %d", what, len(v))
		}
	}
	tr, err := vec(t.Translate, 0, "translate")
	if err != nil {
		return mgl64.Ident4(), err
	}
	rot, err := vec(t.Rotate, 0, "rotate")
	if err != nil {
		return mgl64.Ident4(), err
	}
	sc, err := vec(t.Scale, 1, "scale")
	if err != nil {
		return mgl64.Ident4(), err
	}
	r := mgl64.HomogRotate3DZ(mgl64.DegToRad(rot.Z())).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(rot.Y()))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(rot.X())))
	return mgl64.Translate3D(tr.X(), tr.Y(), tr.Z()).
		Mul4(r).
		Mul4(mgl64.Scale3D(sc.X(), sc.Y(), sc.Z())), nil
}
