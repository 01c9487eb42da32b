package lighttool

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const registryYAML = `
lights:
  - target: light:spot_light
    metadata:
      type: spot
      coneAngleParameter: coneAngle
      penumbraAngleParameter: penumbraAngle
      penumbraType: inset
  - target: light:quad_light
    metadata:
      type: quad
      widthParameter: width
      heightParameter: height
spotLights:
  - attribute: light
    shader: spot_light
    coneParameter: coneAngle
`

const registryTOML = `
[[lights]]
target = "ai:light:spot_light"

[lights.metadata]
type = "spot"
coneAngleParameter = "cone_angle"
coneAngleType = "half"
scale = 2

[[spotLights]]
attribute = "ai:light"
shader = "spot_light"
coneParameter = "cone_angle"
`

func TestRegistryValues(t *testing.T) {
	r := NewRegistry()
	var changes []MetadataChange
	r.OnChanged(func(c MetadataChange) { changes = append(changes, c) })

	r.RegisterValue("light:spot", MetadataType, "spot")
	r.RegisterValue("light:spot", MetadataType, "spot")
	r.RegisterValue("light:spot", "scale", 3)
	if len(changes) != 2 {
		t.Errorf("changes = %v, want 2", changes)
	}
	if s, ok := r.String("light:spot", MetadataType); !ok || s != "spot" {
		t.Errorf("String = %q, %v", s, ok)
	}
	if f, ok := r.Float("light:spot", "scale"); !ok || f != 3 {
		t.Errorf("Float = %f, %v", f, ok)
	}
	if _, ok := r.String("light:spot", "scale"); ok {
		t.Error("String of a number should fail")
	}

	r.DeregisterValue("light:spot", "scale")
	r.DeregisterValue("light:spot", "scale")
	if len(changes) != 3 {
		t.Errorf("changes after deregister = %d, want 3", len(changes))
	}
	if _, ok := r.Value("light:spot", "scale"); ok {
		t.Error("value still present after deregister")
	}
}

func TestRegistryLoadYAML(t *testing.T) {
	r := NewRegistry()
	changes := 0
	r.OnChanged(func(MetadataChange) { changes++ })
	if err := r.Load([]byte(registryYAML), ".yaml"); err != nil {
		t.Fatal(err)
	}
	// Seven metadata values and one spot light registration.
	if changes != 8 {
		t.Errorf("changes = %d, want 8", changes)
	}
	if got := r.Targets(); len(got) != 2 || got[0] != "light:quad_light" {
		t.Errorf("Targets = %v", got)
	}
	if got := r.Keys("light:quad_light"); len(got) != 3 || got[0] != MetadataHeightParameter {
		t.Errorf("Keys = %v", got)
	}

	changes = 0
	if err := r.Load([]byte(registryYAML), ".yml"); err != nil {
		t.Fatal(err)
	}
	if changes != 0 {
		t.Errorf("reloading unchanged data emitted %d changes", changes)
	}
}

func TestRegistryLoadTOML(t *testing.T) {
	r := NewRegistry()
	if err := r.Load([]byte(registryTOML), ".toml"); err != nil {
		t.Fatal(err)
	}
	if s, _ := r.String("ai:light:spot_light", MetadataConeAngleType); s != "half" {
		t.Errorf("coneAngleType = %q, want half", s)
	}
	if f, ok := r.Float("ai:light:spot_light", "scale"); !ok || f != 2 {
		t.Errorf("scale = %f, %v, want 2", f, ok)
	}
	attrs := Attributes{
		"ai:light": &ShaderNetwork{
			Shaders: map[string]*Shader{"spot": {Type: "ai:light", Name: "spot_light"}},
			Output:  "spot",
		},
	}
	attr, param, ok := r.SpotLightParameter(attrs)
	if !ok || attr != "ai:light" || param != "cone_angle" {
		t.Errorf("SpotLightParameter = %q, %q, %v", attr, param, ok)
	}
}

func TestRegistryLoadErrors(t *testing.T) {
	r := NewRegistry()
	if err := r.Load([]byte("lights: [{metadata: {type: spot}}]"), ".yaml"); err == nil {
		t.Error("expected error for light without target")
	}
	if err := r.Load([]byte("lights = ["), ".toml"); err == nil {
		t.Error("expected toml syntax error")
	}
	if err := r.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRegistryReloadQueuesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lights.yaml")
	if err := os.WriteFile(path, []byte(registryYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRegistry()
	changes := 0
	r.OnChanged(func(MetadataChange) { changes++ })
	if err := r.Reload(path); err != nil {
		t.Fatal(err)
	}
	if changes != 0 {
		t.Errorf("Reload emitted %d changes before DispatchPending", changes)
	}
	if _, ok := r.String("light:spot_light", MetadataType); !ok {
		t.Error("Reload did not apply values")
	}
	r.DispatchPending()
	if changes != 8 {
		t.Errorf("DispatchPending emitted %d changes, want 8", changes)
	}
	r.DispatchPending()
	if changes != 8 {
		t.Errorf("second DispatchPending emitted %d more", changes-8)
	}
}

func TestRegistryWatchLoadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lights.toml")
	if err := os.WriteFile(path, []byte(registryTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRegistry()
	if err := r.Watch(ctx, path); err != nil {
		t.Fatal(err)
	}
	if s, _ := r.String("ai:light:spot_light", MetadataType); s != "spot" {
		t.Errorf("type = %q, want spot", s)
	}
	if err := r.Watch(ctx, filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error watching a missing file")
	}
}

func TestRegisterSpotLight(t *testing.T) {
	r := NewRegistry()
	var changes []MetadataChange
	r.OnChanged(func(c MetadataChange) { changes = append(changes, c) })
	if !r.RegisterSpotLight("light", "spot_light", "coneAngle") {
		t.Error("first registration should report true")
	}
	if r.RegisterSpotLight("light", "spot_light", "coneAngle") {
		t.Error("repeated registration should report false")
	}
	if !r.RegisterSpotLight("light", "spot_light", "cone") {
		t.Error("changed parameter should report true")
	}
	if !r.RegisterSpotLight("light", "other", "") {
		t.Error("registration with empty parameter should report true")
	}
	want := []MetadataChange{
		{Target: "light:spot_light", Key: SpotLightConeParameterKey},
		{Target: "light:spot_light", Key: SpotLightConeParameterKey},
		{Target: "light:other", Key: SpotLightConeParameterKey},
	}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}

	attrs := Attributes{
		"light": &ShaderNetwork{Shaders: map[string]*Shader{"s": {Type: "light", Name: "quad_light"}}, Output: "s"},
		"notes": "not a network",
	}
	if _, _, ok := r.SpotLightParameter(attrs); ok {
		t.Error("SpotLightParameter matched an unregistered shader")
	}
}

func TestRegistrySetLoggerConcurrentWithReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lights.yaml")
	if err := os.WriteFile(path, []byte("lights: [{target: broken}"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRegistry()
	r.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			r.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
		}
	}()
	for i := 0; i < 100; i++ {
		err := r.Reload(path)
		if err == nil {
			t.Fatal("expected parse error")
		}
		r.log().Warn("registry reload failed", "err", err)
	}
	<-done

	r.SetLogger(nil)
	if r.log() != slog.Default() {
		t.Error("SetLogger(nil) should restore the default logger")
	}
}
