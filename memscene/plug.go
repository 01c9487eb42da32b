package memscene

import (
	"errors"
	"fmt"

	"github.com/phanxgames/lighttool"
)

// ErrReadOnly is returned when writing to a read-only plug.
var ErrReadOnly = errors.New("memscene: plug is read-only")

// plugBase holds what every plug shares: its name, read-only state and the
// scene it reports changes to.
type plugBase struct {
	name     string
	readOnly bool
	scene    *Scene
}

// FullName returns the plug's name including its node.
func (p *plugBase) FullName() string { return p.name }

// ReadOnly reports whether the plug rejects writes.
func (p *plugBase) ReadOnly() bool { return p.readOnly }

// SetReadOnly locks or unlocks the plug.
func (p *plugBase) SetReadOnly(readOnly bool) {
	if p.readOnly == readOnly {
		return
	}
	p.readOnly = readOnly
	p.scene.emit(lighttool.DirtyReadOnly)
}

func (p *plugBase) checkWritable() error {
	if p.readOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, p.name)
	}
	return nil
}

func (p *plugBase) attach(s *Scene, name string) {
	p.scene = s
	p.name = name
}

// FloatPlug holds a float value, or an animation curve.
type FloatPlug struct {
	plugBase
	value float64
	curve *Curve
}

// NewFloatPlug returns an unattached plug.
func NewFloatPlug(name string, v float64) *FloatPlug {
	return &FloatPlug{plugBase: plugBase{name: name}, value: v}
}

// Value returns the value at time.
func (p *FloatPlug) Value(time float64) float64 {
	if p.curve != nil {
		return p.curve.Evaluate(time)
	}
	return p.value
}

// SetValue sets the static value. Animated plugs reject static values.
func (p *FloatPlug) SetValue(v float64) error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	if p.curve != nil {
		return fmt.Errorf("%w: %s", lighttool.ErrAnimated, p.name)
	}
	if p.value == v {
		return nil
	}
	old := p.value
	p.scene.record(func() { p.set(old) }, func() { p.set(v) })
	p.set(v)
	return nil
}

func (p *FloatPlug) set(v float64) {
	p.value = v
	p.scene.emit(lighttool.DirtyAttributes)
}

// Animated reports whether the plug is driven by a curve.
func (p *FloatPlug) Animated() bool { return p.curve != nil }

// Curve returns the animation curve, or nil.
func (p *FloatPlug) Curve() *Curve { return p.curve }

// Animate drives the plug with a curve holding keys.
func (p *FloatPlug) Animate(keys ...Key) *Curve {
	p.curve = NewCurve(keys...)
	p.scene.emit(lighttool.DirtyAttributes)
	return p.curve
}

// AddKey sets a linear key at time, animating the plug if needed.
func (p *FloatPlug) AddKey(time, value float64) error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	if p.curve == nil {
		p.curve = NewCurve()
	}
	c := p.curve
	old, had := c.KeyAt(time)
	if had && old.Value == value {
		return nil
	}
	k := Key{Time: time, Value: value}
	if had {
		k.Interpolation = old.Interpolation
	}
	p.scene.record(func() {
		if had {
			c.AddKey(old)
		} else {
			c.RemoveKey(time)
		}
		p.scene.emit(lighttool.DirtyAttributes)
	}, func() {
		c.AddKey(k)
		p.scene.emit(lighttool.DirtyAttributes)
	})
	c.AddKey(k)
	p.scene.emit(lighttool.DirtyAttributes)
	return nil
}

// BoolPlug holds a bool value.
type BoolPlug struct {
	plugBase
	value bool
}

// NewBoolPlug returns an unattached plug.
func NewBoolPlug(name string, v bool) *BoolPlug {
	return &BoolPlug{plugBase: plugBase{name: name}, value: v}
}

// Value returns the value.
func (p *BoolPlug) Value() bool { return p.value }

// SetValue sets the value.
func (p *BoolPlug) SetValue(v bool) error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	if p.value == v {
		return nil
	}
	old := p.value
	p.scene.record(func() { p.set(old) }, func() { p.set(v) })
	p.set(v)
	return nil
}

func (p *BoolPlug) set(v bool) {
	p.value = v
	p.scene.emit(lighttool.DirtyAttributes)
}

// StringPlug holds a string value.
type StringPlug struct {
	plugBase
	value string
}

// NewStringPlug returns an unattached plug.
func NewStringPlug(name, v string) *StringPlug {
	return &StringPlug{plugBase: plugBase{name: name}, value: v}
}

// Value returns the value.
func (p *StringPlug) Value() string { return p.value }

// SetValue sets the value.
func (p *StringPlug) SetValue(v string) error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	if p.value == v {
		return nil
	}
	old := p.value
	p.scene.record(func() { p.set(old) }, func() { p.set(v) })
	p.set(v)
	return nil
}

func (p *StringPlug) set(v string) {
	p.value = v
	p.scene.emit(lighttool.DirtyAttributes)
}

// enableWrapper pairs an enabled switch with a value plug.
type enableWrapper struct {
	plugBase
	enabled *BoolPlug
	value   lighttool.Plug
}

// EnabledPlug returns the switch.
func (w *enableWrapper) EnabledPlug() lighttool.BoolPlug { return w.enabled }

// ValuePlug returns the wrapped plug.
func (w *enableWrapper) ValuePlug() lighttool.Plug { return w.value }

// Enabled reports whether the wrapper is switched on.
func (w *enableWrapper) Enabled() bool { return w.enabled.Value() }

func (w *enableWrapper) attach(s *Scene, name string) {
	w.plugBase.attach(s, name)
	w.enabled.attach(s, name+".enabled")
	attachPlug(s, w.value, name+".value")
}

// TweakPlug is an edit scope row entry: a named parameter override.
type TweakPlug struct {
	enableWrapper
	name *StringPlug
}

// NewTweakPlug returns an unattached tweak of parameter.
func NewTweakPlug(parameter string, value lighttool.Plug, enabled bool) *TweakPlug {
	return &TweakPlug{
		enableWrapper: enableWrapper{enabled: NewBoolPlug("enabled", enabled), value: value},
		name:          NewStringPlug("name", parameter),
	}
}

// Parameter returns the tweaked parameter name.
func (t *TweakPlug) Parameter() string { return t.name.Value() }

func (t *TweakPlug) attach(s *Scene, name string) {
	t.enableWrapper.attach(s, name)
	t.name.attach(s, name+".name")
}

// NameValuePlug is a named value with an optional enabled switch.
type NameValuePlug struct {
	enableWrapper
	name *StringPlug
}

// NewNameValuePlug returns an unattached name-value plug.
func NewNameValuePlug(name string, value lighttool.Plug, enabled bool) *NameValuePlug {
	return &NameValuePlug{
		enableWrapper: enableWrapper{enabled: NewBoolPlug("enabled", enabled), value: value},
		name:          NewStringPlug("name", name),
	}
}

func (n *NameValuePlug) attach(s *Scene, name string) {
	n.enableWrapper.attach(s, name)
	n.name.attach(s, name+".name")
}

// OptionalValuePlug is a value that only applies when enabled.
type OptionalValuePlug struct {
	enableWrapper
}

// NewOptionalValuePlug returns an unattached optional value.
func NewOptionalValuePlug(value lighttool.Plug, enabled bool) *OptionalValuePlug {
	return &OptionalValuePlug{enableWrapper{enabled: NewBoolPlug("enabled", enabled), value: value}}
}

// attacher is implemented by every plug in this package.
type attacher interface {
	attach(s *Scene, name string)
}

func attachPlug(s *Scene, p lighttool.Plug, name string) {
	if a, ok := p.(attacher); ok {
		a.attach(s, name)
	}
}

// plugValue evaluates p at time. Wrappers evaluate their value plug.
func plugValue(p lighttool.Plug, time float64) any {
	switch v := p.(type) {
	case *FloatPlug:
		return v.Value(time)
	case *BoolPlug:
		return v.Value()
	case *StringPlug:
		return v.Value()
	case lighttool.EnableWrapper:
		return plugValue(v.ValuePlug(), time)
	default:
		return nil
	}
}

// newPlug wraps a Go value in a plug of the matching type.
func newPlug(name string, v any) (lighttool.Plug, error) {
	switch x := v.(type) {
	case lighttool.Plug:
		return x, nil
	case string:
		return NewStringPlug(name, x), nil
	case bool:
		return NewBoolPlug(name, x), nil
	}
	if f, ok := toFloat(v); ok {
		return NewFloatPlug(name, f), nil
	}
	return nil, fmt.Errorf("memscene: unsupported parameter type %T for %s", v, name)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
