package lighttool

import (
	"reflect"
	"strings"
)

// Variable names understood by ViewContext.
const (
	SelectedPathsName    = "ui:scene:selectedPaths"
	LastSelectedPathName = "ui:scene:lastSelectedPath"
	FrameName            = "frame"
)

// EvalContext is the context a scene query is evaluated in: the location
// being queried and the time.
type EvalContext struct {
	Path Path
	Time float64
}

// WithPath returns a copy of ec scoped to p.
func (ec EvalContext) WithPath(p Path) EvalContext {
	ec.Path = p
	return ec
}

// ViewContext holds the variables of a viewer: the selection, the last
// selected path, the current frame and any host-defined values. Variables
// whose name starts with "ui:" do not affect computed scene values.
type ViewContext struct {
	vars    map[string]any
	changed Signal[string]
}

// NewViewContext creates a context at frame 1 with nothing selected.
func NewViewContext() *ViewContext {
	return &ViewContext{vars: map[string]any{FrameName: 1.0}}
}

// Set assigns a variable, emitting a change only if the value differs.
func (c *ViewContext) Set(name string, v any) {
	if old, ok := c.vars[name]; ok && reflect.DeepEqual(old, v) {
		return
	}
	c.vars[name] = v
	c.changed.Emit(name)
}

// Get returns the value of a variable.
func (c *ViewContext) Get(name string) (any, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Remove deletes a variable.
func (c *ViewContext) Remove(name string) {
	if _, ok := c.vars[name]; !ok {
		return
	}
	delete(c.vars, name)
	c.changed.Emit(name)
}

// OnChanged registers fn to be called with the name of every changed variable.
func (c *ViewContext) OnChanged(fn func(name string)) Connection {
	return c.changed.Connect(fn)
}

// Time returns the current frame.
func (c *ViewContext) Time() float64 {
	if t, ok := c.vars[FrameName].(float64); ok {
		return t
	}
	return 0
}

// SetTime sets the current frame.
func (c *ViewContext) SetTime(t float64) {
	c.Set(FrameName, t)
}

// Eval returns an evaluation context for p at the current frame.
func (c *ViewContext) Eval(p Path) EvalContext {
	return EvalContext{Path: p, Time: c.Time()}
}

// SetSelectedPaths replaces the selection. Duplicates are dropped, keeping
// the first occurrence. If the last selected path is no longer selected it
// becomes the final entry of paths, or is removed when paths is empty.
func (c *ViewContext) SetSelectedPaths(paths []Path) {
	selected := make([]Path, 0, len(paths))
	for _, p := range paths {
		if !containsPath(selected, p) {
			selected = append(selected, append(Path(nil), p...))
		}
	}
	c.Set(SelectedPathsName, selected)

	last := c.LastSelectedPath()
	switch {
	case len(selected) == 0:
		c.Remove(LastSelectedPathName)
	case last == nil || !containsPath(selected, last):
		c.Set(LastSelectedPathName, selected[len(selected)-1])
	}
}

// SelectedPaths returns a copy of the selection in selection order.
func (c *ViewContext) SelectedPaths() []Path {
	paths, _ := c.vars[SelectedPathsName].([]Path)
	out := make([]Path, len(paths))
	copy(out, paths)
	return out
}

// SetLastSelectedPath sets the anchor of the selection, adding p to the
// selection if it is not already selected.
func (c *ViewContext) SetLastSelectedPath(p Path) {
	p = append(Path(nil), p...)
	selected := c.SelectedPaths()
	if !containsPath(selected, p) {
		c.Set(SelectedPathsName, append(selected, p))
	}
	c.Set(LastSelectedPathName, p)
}

// LastSelectedPath returns the anchor of the selection, or nil.
func (c *ViewContext) LastSelectedPath() Path {
	p, _ := c.vars[LastSelectedPathName].(Path)
	return p
}

// AffectsSelection reports whether a change to the named variable can
// change the selection.
func AffectsSelection(name string) bool {
	return name == SelectedPathsName || name == LastSelectedPathName
}

// AffectsComputation reports whether a change to the named variable can
// change evaluated scene values.
func AffectsComputation(name string) bool {
	return !strings.HasPrefix(name, "ui:")
}
