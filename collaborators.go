package lighttool

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
)

// Attributes maps attribute names to values. Light shaders are stored as
// *ShaderNetwork values.
type Attributes map[string]any

// Shader is a single shader in a network.
type Shader struct {
	Type       string // e.g. "light", "ai:light"
	Name       string // e.g. "spot_light"
	Parameters map[string]any
}

// MetadataTarget returns the registry target for the shader, "type:name".
func (s *Shader) MetadataTarget() string {
	return s.Type + ":" + s.Name
}

// ShaderNetwork is a set of named shaders with one output.
type ShaderNetwork struct {
	Shaders map[string]*Shader
	Output  string
}

// OutputShader returns the output shader, or nil.
func (n *ShaderNetwork) OutputShader() *Shader {
	if n == nil {
		return nil
	}
	return n.Shaders[n.Output]
}

// Scene is the read-only scene description the tool queries.
type Scene interface {
	Exists(ctx context.Context, ec EvalContext) (bool, error)
	Attributes(ctx context.Context, ec EvalContext) (Attributes, error)
	FullTransform(ctx context.Context, ec EvalContext) (mgl64.Mat4, error)
	OnDirtied(fn func(DirtyKind)) Connection
}

// Plug is a named node input in the dataflow graph.
type Plug interface {
	FullName() string
}

// FloatPlug holds a float value.
type FloatPlug interface {
	Plug
	Value(time float64) float64
	SetValue(v float64) error
}

// AnimatedPlug is a FloatPlug that may be driven by an animation curve.
type AnimatedPlug interface {
	FloatPlug
	Animated() bool
	AddKey(time, value float64) error
}

// BoolPlug holds a bool value.
type BoolPlug interface {
	Plug
	SetValue(v bool) error
}

// EnableWrapper is a compound plug pairing an enabled switch with the plug
// holding the value, such as a tweak, a name-value pair or an optional value.
type EnableWrapper interface {
	Plug
	EnabledPlug() BoolPlug
	ValuePlug() Plug
}

// EditScope is a container in the graph that collects edits.
type EditScope interface {
	Name() string
}

// ParameterQuery identifies a shader parameter at a location.
type ParameterQuery struct {
	EvalContext
	Attribute string
	Parameter string
	EditScope EditScope
}

// ParameterSource describes where a shader parameter is authored and how
// it can be edited. Acquire is nil when NonEditableReason is set.
type ParameterSource struct {
	Source            Plug
	SourceType        SourceType
	EditScope         EditScope
	EditWarning       string
	NonEditableReason string
	Acquire           func() (Plug, error)
}

// ParameterEditor resolves the edit history of shader parameters. A nil
// source with a nil error means no editable source exists in the history.
type ParameterEditor interface {
	ParameterSource(ctx context.Context, q ParameterQuery) (*ParameterSource, error)
}

// Undoer groups graph writes into undoable steps. Scopes opened with the
// same non-empty merge group consecutively form a single step.
type Undoer interface {
	UndoScope(mergeGroup string) (end func())
}

type noopUndo struct{}

func (noopUndo) UndoScope(string) func() { return func() {} }
