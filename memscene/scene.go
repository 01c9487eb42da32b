// Package memscene is an in-memory scene graph implementing the
// collaborators of package lighttool: the scene description, parameter
// edit history with edit scopes, and undo.
package memscene

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/lighttool"
)

// location is one node of the scene hierarchy.
type location struct {
	name       string
	parent     *location
	children   []*location
	transform  mgl64.Mat4
	attributes lighttool.Attributes
	light      *Light
}

func newLocation(name string, parent *location) *location {
	return &location{
		name:       name,
		parent:     parent,
		transform:  mgl64.Ident4(),
		attributes: lighttool.Attributes{},
	}
}

func (l *location) child(name string) *location {
	for _, c := range l.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Shader is a shader node. Assigning one shader to several lights makes
// every edit to it affect all of them.
type Shader struct {
	name       string
	shaderType string
	shaderName string
	params     map[string]lighttool.Plug
	users      int
}

// Name returns the node name.
func (sh *Shader) Name() string { return sh.name }

// Parameter returns the plug for a parameter, or nil.
func (sh *Shader) Parameter(name string) lighttool.Plug { return sh.params[name] }

// Float returns a float parameter plug, or nil.
func (sh *Shader) Float(name string) *FloatPlug {
	p, _ := sh.params[name].(*FloatPlug)
	return p
}

// Light assigns a shader to a location under an attribute name such as
// "light" or "ai:light".
type Light struct {
	attribute string
	shader    *Shader
}

// Shader returns the light's shader node.
func (l *Light) Shader() *Shader { return l.shader }

// Attribute returns the attribute the shader is assigned to.
func (l *Light) Attribute() string { return l.attribute }

// Scene is an in-memory scene. It implements lighttool.Scene and
// lighttool.ParameterEditor. It is not goroutine safe.
type Scene struct {
	root       *location
	script     *Script
	editScopes []*EditScope
	dirtied    lighttool.Signal[lighttool.DirtyKind]
}

// New returns an empty scene recording edits into script, which may be nil.
func New(script *Script) *Scene {
	return &Scene{root: newLocation("", nil), script: script}
}

// Script returns the scene's undo script.
func (s *Scene) Script() *Script { return s.script }

func (s *Scene) emit(kind lighttool.DirtyKind) {
	if s == nil {
		return
	}
	s.dirtied.Emit(kind)
}

func (s *Scene) record(undo, redo func()) {
	if s == nil {
		return
	}
	s.script.record(undo, redo)
}

func (s *Scene) lookup(p lighttool.Path) *location {
	l := s.root
	for _, name := range p {
		if l = l.child(name); l == nil {
			return nil
		}
	}
	return l
}

// AddLocation creates the location at path and any missing ancestors.
func (s *Scene) AddLocation(path string) {
	s.ensure(lighttool.ParsePath(path))
}

func (s *Scene) ensure(p lighttool.Path) *location {
	if len(p) == 0 {
		panic("memscene: cannot add the root location")
	}
	l := s.root
	added := false
	for _, name := range p {
		c := l.child(name)
		if c == nil {
			c = newLocation(name, l)
			l.children = append(l.children, c)
			added = true
		}
		l = c
	}
	if added {
		s.emit(lighttool.DirtyChildNames)
	}
	return l
}

// Remove deletes the location at path and its descendants.
func (s *Scene) Remove(path string) error {
	p := lighttool.ParsePath(path)
	l := s.lookup(p)
	if l == nil || l.parent == nil {
		return fmt.Errorf("%w: %s", lighttool.ErrUnknownPath, path)
	}
	siblings := l.parent.children
	for i, c := range siblings {
		if c == l {
			l.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	s.emit(lighttool.DirtyChildNames)
	return nil
}

// NewShader creates a shader node. Parameter values may be float64, int,
// string, bool or a plug from this package, such as an OptionalValuePlug.
func (s *Scene) NewShader(nodeName, shaderType, shaderName string, params map[string]any) (*Shader, error) {
	sh := &Shader{
		name:       nodeName,
		shaderType: shaderType,
		shaderName: shaderName,
		params:     make(map[string]lighttool.Plug, len(params)),
	}
	for name, v := range params {
		full := nodeName + ".parameters." + name
		p, err := newPlug(full, v)
		if err != nil {
			return nil, err
		}
		attachPlug(s, p, full)
		sh.params[name] = p
	}
	return sh, nil
}

// AddLight assigns sh to the location at path under attribute, creating
// the location if needed.
func (s *Scene) AddLight(path, attribute string, sh *Shader) *Light {
	l := s.ensure(lighttool.ParsePath(path))
	if l.light != nil {
		l.light.shader.users--
	}
	sh.users++
	l.light = &Light{attribute: attribute, shader: sh}
	s.emit(lighttool.DirtyAttributes)
	return l.light
}

// Light returns the light at path, or nil.
func (s *Scene) Light(path string) *Light {
	l := s.lookup(lighttool.ParsePath(path))
	if l == nil {
		return nil
	}
	return l.light
}

// SetTransform sets the local transform of the location at path.
func (s *Scene) SetTransform(path string, m mgl64.Mat4) error {
	l := s.lookup(lighttool.ParsePath(path))
	if l == nil {
		return fmt.Errorf("%w: %s", lighttool.ErrUnknownPath, path)
	}
	old := l.transform
	s.record(func() { l.transform = old; s.emit(lighttool.DirtyTransform) },
		func() { l.transform = m; s.emit(lighttool.DirtyTransform) })
	l.transform = m
	s.emit(lighttool.DirtyTransform)
	return nil
}

// SetAttribute sets a plain attribute on the location at path.
func (s *Scene) SetAttribute(path, name string, v any) error {
	l := s.lookup(lighttool.ParsePath(path))
	if l == nil {
		return fmt.Errorf("%w: %s", lighttool.ErrUnknownPath, path)
	}
	l.attributes[name] = v
	s.emit(lighttool.DirtyAttributes)
	return nil
}

// AddEditScope appends an edit scope downstream of all existing ones.
func (s *Scene) AddEditScope(name string) *EditScope {
	es := newEditScope(s, name)
	s.editScopes = append(s.editScopes, es)
	s.emit(lighttool.DirtyAttributes)
	return es
}

// EditScopes returns the edit scopes from upstream to downstream.
func (s *Scene) EditScopes() []*EditScope {
	out := make([]*EditScope, len(s.editScopes))
	copy(out, s.editScopes)
	return out
}

func (s *Scene) editScopeIndex(es *EditScope) int {
	for i, e := range s.editScopes {
		if e == es {
			return i
		}
	}
	return -1
}

// Paths returns every location in depth-first order.
func (s *Scene) Paths() []lighttool.Path {
	var out []lighttool.Path
	var walk func(l *location, p lighttool.Path)
	walk = func(l *location, p lighttool.Path) {
		for _, c := range l.children {
			cp := append(append(lighttool.Path(nil), p...), c.name)
			out = append(out, cp)
			walk(c, cp)
		}
	}
	walk(s.root, nil)
	return out
}

// Exists reports whether ec.Path names a location.
func (s *Scene) Exists(ctx context.Context, ec lighttool.EvalContext) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.lookup(ec.Path) != nil, nil
}

// Attributes returns the attributes of the location at ec.Path. The light
// shader is evaluated at ec.Time with enabled edit scope rows applied.
func (s *Scene) Attributes(ctx context.Context, ec lighttool.EvalContext) (lighttool.Attributes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := s.lookup(ec.Path)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", lighttool.ErrUnknownPath, ec.Path)
	}
	attrs := make(lighttool.Attributes, len(l.attributes)+1)
	for k, v := range l.attributes {
		attrs[k] = v
	}
	if l.light != nil {
		attrs[l.light.attribute] = s.evaluateLight(ec, l.light)
	}
	return attrs, nil
}

func (s *Scene) evaluateLight(ec lighttool.EvalContext, light *Light) *lighttool.ShaderNetwork {
	sh := light.shader
	names := make([]string, 0, len(sh.params))
	for name := range sh.params {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make(map[string]any, len(names))
	key := rowKey{path: ec.Path.String(), attribute: light.attribute}
	for _, name := range names {
		v := plugValue(sh.params[name], ec.Time)
		key.parameter = name
		for _, es := range s.editScopes {
			if row := es.rows[key]; row != nil && row.Enabled() {
				v = plugValue(row, ec.Time)
			}
		}
		params[name] = v
	}
	return &lighttool.ShaderNetwork{
		Shaders: map[string]*lighttool.Shader{
			sh.name: {Type: sh.shaderType, Name: sh.shaderName, Parameters: params},
		},
		Output: sh.name,
	}
}

// FullTransform returns the world transform of the location at ec.Path.
func (s *Scene) FullTransform(ctx context.Context, ec lighttool.EvalContext) (mgl64.Mat4, error) {
	if err := ctx.Err(); err != nil {
		return mgl64.Ident4(), err
	}
	l := s.lookup(ec.Path)
	if l == nil {
		return mgl64.Ident4(), fmt.Errorf("%w: %s", lighttool.ErrUnknownPath, ec.Path)
	}
	m := mgl64.Ident4()
	for ; l != nil; l = l.parent {
		m = l.transform.Mul4(m)
	}
	return m, nil
}

// OnDirtied registers fn to be called whenever part of the scene changes.
func (s *Scene) OnDirtied(fn func(lighttool.DirtyKind)) lighttool.Connection {
	return s.dirtied.Connect(fn)
}
