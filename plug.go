package lighttool

import "fmt"

// activeValuePlug returns the plug holding the value to edit, switching on
// any enable wrappers around it on the way.
func activeValuePlug(p Plug) (Plug, error) {
	for {
		w, ok := p.(EnableWrapper)
		if !ok {
			return p, nil
		}
		if err := w.EnabledPlug().SetValue(true); err != nil {
			return nil, fmt.Errorf("enable %s: %w", w.FullName(), err)
		}
		p = w.ValuePlug()
	}
}

// setFloat writes v to the value plug behind p. Animated plugs get a key at
// time instead of a static value.
func setFloat(p Plug, time, v float64) error {
	leaf, err := activeValuePlug(p)
	if err != nil {
		return err
	}
	fp, ok := leaf.(FloatPlug)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTypeMismatch, leaf.FullName())
	}
	if ap, ok := fp.(AnimatedPlug); ok && ap.Animated() {
		return ap.AddKey(time, v)
	}
	return fp.SetValue(v)
}

// writeResult acquires the edit for r and writes v to it.
func writeResult(r *Result, time, v float64) error {
	p, err := r.AcquireEdit()
	if err != nil {
		return err
	}
	return setFloat(p, time, v)
}
