package memscene

import (
	"strings"

	"github.com/phanxgames/lighttool"
)

type rowKey struct {
	path      string
	attribute string
	parameter string
}

// EditScope collects parameter overrides per location as tweak rows.
// Enabled rows in downstream scopes win over upstream ones.
type EditScope struct {
	name   string
	scene  *Scene
	locked bool
	rows   map[rowKey]*TweakPlug
}

func newEditScope(s *Scene, name string) *EditScope {
	return &EditScope{name: name, scene: s, rows: make(map[rowKey]*TweakPlug)}
}

// Name returns the edit scope's node name.
func (e *EditScope) Name() string { return e.name }

// Locked reports whether the scope rejects new edits.
func (e *EditScope) Locked() bool { return e.locked }

// SetLocked locks or unlocks the scope.
func (e *EditScope) SetLocked(locked bool) {
	if e.locked == locked {
		return
	}
	e.locked = locked
	e.scene.emit(lighttool.DirtyReadOnly)
}

// Row returns the tweak for a parameter at path, or nil.
func (e *EditScope) Row(path, attribute, parameter string) *TweakPlug {
	return e.rows[rowKey{path: lighttool.ParsePath(path).String(), attribute: attribute, parameter: parameter}]
}

// AddRow adds a float tweak for a parameter at path, replacing any
// existing one.
func (e *EditScope) AddRow(path, attribute, parameter string, value float64, enabled bool) *TweakPlug {
	key := rowKey{path: lighttool.ParsePath(path).String(), attribute: attribute, parameter: parameter}
	row := e.newRow(key, value, enabled)
	e.rows[key] = row
	e.scene.emit(lighttool.DirtyAttributes)
	return row
}

func (e *EditScope) newRow(key rowKey, value float64, enabled bool) *TweakPlug {
	row := NewTweakPlug(key.parameter, NewFloatPlug("value", value), enabled)
	name := e.name + ".edits" + strings.ReplaceAll(key.path, "/", "_") + "." + key.attribute + "." + key.parameter
	row.attach(e.scene, name)
	return row
}

// acquireRow returns the row for key, creating an enabled one holding
// value if there is none. Creation is undoable.
func (e *EditScope) acquireRow(key rowKey, value float64) *TweakPlug {
	if row := e.rows[key]; row != nil {
		return row
	}
	row := e.newRow(key, value, true)
	e.scene.record(func() {
		delete(e.rows, key)
		e.scene.emit(lighttool.DirtyAttributes)
	}, func() {
		e.rows[key] = row
		e.scene.emit(lighttool.DirtyAttributes)
	})
	e.rows[key] = row
	e.scene.emit(lighttool.DirtyAttributes)
	return row
}
