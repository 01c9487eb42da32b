package lighttool

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Result is the outcome of inspecting a parameter at one location.
// Results are produced fresh by every inspection; several may share a source.
type Result struct {
	value             any
	source            Plug
	sourceType        SourceType
	editScope         EditScope
	nonEditableReason string
	editWarning       string
	acquire           func() (Plug, error)
}

// NewResult builds a Result for value from its resolved source. A nil
// source yields a non-editable result.
func NewResult(value any, src *ParameterSource) *Result {
	if src == nil {
		return &Result{value: value, nonEditableReason: "No editable source found in history."}
	}
	r := &Result{
		value:             value,
		source:            src.Source,
		sourceType:        src.SourceType,
		editScope:         src.EditScope,
		nonEditableReason: src.NonEditableReason,
		editWarning:       src.EditWarning,
		acquire:           src.Acquire,
	}
	if r.nonEditableReason == "" && r.acquire == nil {
		r.nonEditableReason = "No editable source found in history."
	}
	return r
}

// Value returns the inspected value.
func (r *Result) Value() any { return r.value }

// Float returns the inspected value as a float, or ErrTypeMismatch.
func (r *Result) Float() (float64, error) {
	if f, ok := toFloat(r.value); ok {
		return f, nil
	}
	name := "<unknown>"
	if r.source != nil {
		name = r.source.FullName()
	}
	return 0, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, name, r.value)
}

// Source returns the plug the value is authored on, or nil.
func (r *Result) Source() Plug { return r.source }

// SourceType classifies the source relative to the edit scope.
func (r *Result) SourceType() SourceType { return r.sourceType }

// EditScope returns the target edit scope, or nil.
func (r *Result) EditScope() EditScope { return r.editScope }

// Editable reports whether AcquireEdit can succeed.
func (r *Result) Editable() bool {
	return r.nonEditableReason == "" && r.acquire != nil
}

// NonEditableReason explains why the result is not editable.
func (r *Result) NonEditableReason() string { return r.nonEditableReason }

// EditWarning is non-empty when editing may affect other locations.
func (r *Result) EditWarning() string { return r.editWarning }

// AcquireEdit finds or creates the plug to write edits to. Repeated calls
// return the same plug.
func (r *Result) AcquireEdit() (Plug, error) {
	if !r.Editable() {
		return nil, fmt.Errorf("%w: %s", ErrNotEditable, r.nonEditableReason)
	}
	return r.acquire()
}

// Inspector resolves one parameter of a light at a location.
type Inspector interface {
	// Inspect returns nil when the parameter does not resolve at ec.Path,
	// or when ctx is cancelled.
	Inspect(ctx context.Context, ec EvalContext) (*Result, error)
	// OnDirtied is called when results from this inspector may have changed.
	OnDirtied(fn func(Inspector)) Connection
}

// parameterResolver locates the shader parameter to inspect in the
// attributes of a location.
type parameterResolver func(attrs Attributes) (attribute, parameter string, shader *Shader, ok bool)

// ParameterInspector inspects a shader parameter of the light at a location.
// It is dirtied by scene attribute and read-only changes and by registry
// changes.
type ParameterInspector struct {
	scene     Scene
	editor    ParameterEditor
	editScope EditScope
	resolve   parameterResolver

	dirtied Signal[Inspector]
	conns   connections
}

// NewMetadataParameterInspector returns an inspector for the parameter named
// by the registry value metadataKey of the first light shader in an
// attribute matching attributePattern.
func NewMetadataParameterInspector(scene Scene, editor ParameterEditor, registry *Registry, editScope EditScope, attributePattern, metadataKey string) *ParameterInspector {
	attrPattern := compilePattern(attributePattern)
	resolve := func(attrs Attributes) (string, string, *Shader, bool) {
		for _, name := range sortedAttributeNames(attrs) {
			if !attrPattern.Match(name) {
				continue
			}
			network, ok := attrs[name].(*ShaderNetwork)
			if !ok {
				continue
			}
			shader := network.OutputShader()
			if shader == nil {
				return "", "", nil, false
			}
			param, ok := registry.String(shader.MetadataTarget(), metadataKey)
			if !ok {
				return "", "", nil, false
			}
			return name, param, shader, true
		}
		return "", "", nil, false
	}
	return newParameterInspector(scene, editor, registry, editScope, resolve)
}

// NewSpotLightInspector returns an inspector for the cone angle of spot
// lights registered with Registry.RegisterSpotLight.
func NewSpotLightInspector(scene Scene, editor ParameterEditor, registry *Registry, editScope EditScope) *ParameterInspector {
	resolve := func(attrs Attributes) (string, string, *Shader, bool) {
		attribute, param, ok := registry.SpotLightParameter(attrs)
		if !ok {
			return "", "", nil, false
		}
		network, _ := attrs[attribute].(*ShaderNetwork)
		return attribute, param, network.OutputShader(), true
	}
	return newParameterInspector(scene, editor, registry, editScope, resolve)
}

func newParameterInspector(scene Scene, editor ParameterEditor, registry *Registry, editScope EditScope, resolve parameterResolver) *ParameterInspector {
	pi := &ParameterInspector{
		scene:     scene,
		editor:    editor,
		editScope: editScope,
		resolve:   resolve,
	}
	pi.conns.add(scene.OnDirtied(func(kind DirtyKind) {
		if kind == DirtyAttributes || kind == DirtyReadOnly {
			pi.dirtied.Emit(pi)
		}
	}))
	pi.conns.add(registry.OnChanged(func(MetadataChange) {
		pi.dirtied.Emit(pi)
	}))
	return pi
}

// Inspect resolves the parameter at ec.
func (pi *ParameterInspector) Inspect(ctx context.Context, ec EvalContext) (*Result, error) {
	if ctx.Err() != nil {
		return nil, nil
	}
	attrs, err := pi.scene.Attributes(ctx, ec)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, ErrUnknownPath) {
			return nil, nil
		}
		return nil, fmt.Errorf("inspect %s: %w", ec.Path, err)
	}
	attribute, param, shader, ok := pi.resolve(attrs)
	if !ok || shader == nil {
		return nil, nil
	}
	value, ok := shader.Parameters[param]
	if !ok {
		return nil, nil
	}
	src, err := pi.editor.ParameterSource(ctx, ParameterQuery{
		EvalContext: ec,
		Attribute:   attribute,
		Parameter:   param,
		EditScope:   pi.editScope,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("inspect %s %s.%s: %w", ec.Path, attribute, param, err)
	}
	return NewResult(value, src), nil
}

// OnDirtied registers fn to be called when results may have changed.
func (pi *ParameterInspector) OnDirtied(fn func(Inspector)) Connection {
	return pi.dirtied.Connect(fn)
}

// Close disconnects the inspector from the scene and registry.
func (pi *ParameterInspector) Close() {
	pi.conns.clear()
}

func sortedAttributeNames(attrs Attributes) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
