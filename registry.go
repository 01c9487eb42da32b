package lighttool

import (
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// Metadata keys read from the registry for light shaders.
const (
	MetadataType                   = "type"
	MetadataConeAngleParameter     = "coneAngleParameter"
	MetadataPenumbraAngleParameter = "penumbraAngleParameter"
	MetadataPenumbraType           = "penumbraType"
	MetadataLensRadiusParameter    = "lensRadiusParameter"
	MetadataConeAngleType          = "coneAngleType"
	MetadataWidthParameter         = "widthParameter"
	MetadataHeightParameter        = "heightParameter"
	MetadataRadiusParameter        = "radiusParameter"
)

// SpotLightConeParameterKey is the MetadataChange key emitted when a spot
// light registration changes. The target is "attribute:shader".
const SpotLightConeParameterKey = "coneParameter"

// MetadataChange identifies a changed registry value.
type MetadataChange struct {
	Target string
	Key    string
}

// Registry stores metadata values for light shaders, keyed by a target
// such as "light:spot_light" and a key such as "coneAngleParameter".
//
// Values may be reloaded from a watched file on another goroutine; change
// notifications from such reloads are queued until DispatchPending is called
// on the UI thread. The tool calls it at the start of every PreRender.
type Registry struct {
	mu         sync.RWMutex
	values     map[string]map[string]any
	spotLights map[spotLightKey]string
	pending    []MetadataChange

	changed Signal[MetadataChange]
	logger  *slog.Logger
}

type spotLightKey struct {
	attribute string
	shader    string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		values:     make(map[string]map[string]any),
		spotLights: make(map[spotLightKey]string),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger used for reload diagnostics.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	r.mu.Lock()
	r.logger = l
	r.mu.Unlock()
}

func (r *Registry) log() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// RegisterValue sets a metadata value and emits a change.
func (r *Registry) RegisterValue(target, key string, v any) {
	r.mu.Lock()
	changed := r.setLocked(target, key, normalizeValue(v))
	r.mu.Unlock()
	if changed {
		r.changed.Emit(MetadataChange{Target: target, Key: key})
	}
}

// DeregisterValue removes a metadata value and emits a change.
func (r *Registry) DeregisterValue(target, key string) {
	r.mu.Lock()
	_, ok := r.values[target][key]
	if ok {
		delete(r.values[target], key)
	}
	r.mu.Unlock()
	if ok {
		r.changed.Emit(MetadataChange{Target: target, Key: key})
	}
}

func (r *Registry) setLocked(target, key string, v any) bool {
	m := r.values[target]
	if m == nil {
		m = make(map[string]any)
		r.values[target] = m
	}
	if old, ok := m[key]; ok && reflect.DeepEqual(old, v) {
		return false
	}
	m[key] = v
	return true
}

// Value returns a metadata value.
func (r *Registry) Value(target, key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[target][key]
	return v, ok
}

// String returns a string metadata value.
func (r *Registry) String(target, key string) (string, bool) {
	v, ok := r.Value(target, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns a numeric metadata value.
func (r *Registry) Float(target, key string) (float64, bool) {
	v, ok := r.Value(target, key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Targets returns the registered targets in sorted order.
func (r *Registry) Targets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.values))
	for t := range r.values {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Keys returns the keys registered for target in sorted order.
func (r *Registry) Keys(target string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.values[target]))
	for k := range r.values[target] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OnChanged registers fn to be called for every changed value.
func (r *Registry) OnChanged(fn func(MetadataChange)) Connection {
	return r.changed.Connect(fn)
}

// DispatchPending emits the changes queued by background reloads.
func (r *Registry) DispatchPending() {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, c := range pending {
		r.changed.Emit(c)
	}
}

// RegisterSpotLight records the cone angle parameter of the spot light
// shader named shaderName when assigned to attribute and emits a change. It
// returns false if the pair was already registered with the same parameter.
func (r *Registry) RegisterSpotLight(attribute, shaderName, coneParameter string) bool {
	r.mu.Lock()
	changed := r.setSpotLightLocked(attribute, shaderName, coneParameter)
	r.mu.Unlock()
	if changed {
		r.changed.Emit(spotLightChange(attribute, shaderName))
	}
	return changed
}

func (r *Registry) setSpotLightLocked(attribute, shaderName, coneParameter string) bool {
	key := spotLightKey{attribute: attribute, shader: shaderName}
	if p, ok := r.spotLights[key]; ok && p == coneParameter {
		return false
	}
	r.spotLights[key] = coneParameter
	return true
}

func spotLightChange(attribute, shaderName string) MetadataChange {
	return MetadataChange{Target: attribute + ":" + shaderName, Key: SpotLightConeParameterKey}
}

// SpotLightParameter returns the attribute and cone angle parameter of the
// first registered spot light found in attrs, by attribute name order.
func (r *Registry) SpotLightParameter(attrs Attributes) (attribute, parameter string, ok bool) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range names {
		network, isNetwork := attrs[name].(*ShaderNetwork)
		if !isNetwork {
			continue
		}
		shader := network.OutputShader()
		if shader == nil {
			continue
		}
		if p, found := r.spotLights[spotLightKey{attribute: name, shader: shader.Name}]; found {
			return name, p, true
		}
	}
	return "", "", false
}

// toFloat converts the numeric types produced by the YAML and TOML decoders.
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
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// normalizeValue stores all numbers as float64 so that reloads of an
// unchanged file do not register as changes.
func normalizeValue(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}
