package lighttool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// registryFile is the on-disk form of registry metadata:
//
//	lights:
//	  - target: light:spot_light
//	    metadata:
//	      type: spot
//	      coneAngleParameter: coneAngle
//	spotLights:
//	  - attribute: light
//	    shader: spot_light
//	    coneParameter: coneAngle
type registryFile struct {
	Lights     []registryLight `yaml:"lights" toml:"lights"`
	SpotLights []registrySpot  `yaml:"spotLights" toml:"spotLights"`
}

type registryLight struct {
	Target   string         `yaml:"target" toml:"target"`
	Metadata map[string]any `yaml:"metadata" toml:"metadata"`
}

type registrySpot struct {
	Attribute     string `yaml:"attribute" toml:"attribute"`
	Shader        string `yaml:"shader" toml:"shader"`
	ConeParameter string `yaml:"coneParameter" toml:"coneParameter"`
}

// decodeRegistry parses registry data. ext selects the format: ".toml" for
// TOML, anything else for YAML.
func decodeRegistry(data []byte, ext string) (registryFile, error) {
	var f registryFile
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return f, fmt.Errorf("parse registry toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return f, fmt.Errorf("parse registry yaml: %w", err)
		}
	}
	for i, l := range f.Lights {
		if l.Target == "" {
			return f, fmt.Errorf("parse registry: light %d has no target", i)
		}
	}
	return f, nil
}

// Load parses registry data and applies it, emitting a change for every
// value that differs from the current one.
func (r *Registry) Load(data []byte, ext string) error {
	f, err := decodeRegistry(data, ext)
	if err != nil {
		return err
	}
	for _, c := range r.apply(f) {
		r.changed.Emit(c)
	}
	return nil
}

// LoadFile reads a .yaml, .yml or .toml registry file and applies it.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read registry: %w", err)
	}
	return r.Load(data, filepath.Ext(path))
}

// Reload re-reads path and queues its changes for DispatchPending.
// It is safe to call from any goroutine.
func (r *Registry) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read registry: %w", err)
	}
	f, err := decodeRegistry(data, filepath.Ext(path))
	if err != nil {
		return err
	}
	changes := r.apply(f)
	r.mu.Lock()
	r.pending = append(r.pending, changes...)
	r.mu.Unlock()
	return nil
}

func (r *Registry) apply(f registryFile) []MetadataChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changes []MetadataChange
	for _, l := range f.Lights {
		for key, v := range l.Metadata {
			if r.setLocked(l.Target, key, normalizeValue(v)) {
				changes = append(changes, MetadataChange{Target: l.Target, Key: key})
			}
		}
	}
	for _, s := range f.SpotLights {
		if r.setSpotLightLocked(s.Attribute, s.Shader, s.ConeParameter) {
			changes = append(changes, spotLightChange(s.Attribute, s.Shader))
		}
	}
	return changes
}

// Watch reloads path whenever it is written, until ctx is done. The file is
// loaded once before Watch returns. Reload errors are logged and the previous
// values are kept.
func (r *Registry) Watch(ctx context.Context, path string) error {
	if err := r.LoadFile(path); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch registry: %w", err)
	}
	// Watch the directory so editors that replace the file are seen.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watch registry: %w", err)
	}
	abs, _ := filepath.Abs(path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if evAbs, _ := filepath.Abs(ev.Name); evAbs != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if err := r.Reload(path); err != nil {
					r.log().Warn("registry reload failed", "path", path, "err", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				r.log().Warn("registry watch error", "path", path, "err", err)
			}
		}
	}()
	return nil
}
