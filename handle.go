package lighttool

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
)

// Handle is an interactive widget editing one light parameter across the
// selection. The set of implementations is closed: spot cone, spot
// penumbra, and the size handles for width, height and radius.
type Handle interface {
	// Name returns the metadata key of the parameter the handle edits.
	Name() string
	Kind() HandleKind

	// Update rebinds the handle to the light at anchor, rebuilding its
	// inspectors for editScope.
	Update(ctx context.Context, anchor EvalContext, editScope EditScope) error
	// Inspectors returns the inspectors that must all resolve for the
	// handle to be shown. Empty when the anchor has no matching light.
	Inspectors() []Inspector

	// AddDragInspection captures the parameter values at ec for the
	// coming drag. Locations that do not resolve are skipped.
	AddDragInspection(ctx context.Context, ec EvalContext) error
	DragBegin(ev DragEvent)
	DragMove(ctx context.Context, ev DragEvent) error
	DragEnd()

	// UpdateLocalTransform repositions the handle from the anchor's
	// current parameter values.
	UpdateLocalTransform(ctx context.Context) error

	Visible() bool
	Enabled() bool
	// Transform is the handle's transform relative to the light.
	Transform() mgl64.Mat4
	// WorldTransform is the handle's transform in world space.
	WorldTransform() mgl64.Mat4
	RasterScale() float64

	base() *handleBase
}

// handleEnv is what every handle needs from the tool.
type handleEnv struct {
	scene            Scene
	editor           ParameterEditor
	registry         *Registry
	attributePattern pattern
	frustumScale     float64
	visualiserScale  float64
}

// handleBase holds state shared by every handle kind.
type handleBase struct {
	env         handleEnv
	name        string
	kind        HandleKind
	typePattern pattern

	anchor    EvalContext
	editScope EditScope
	shader    *Shader
	attrs     Attributes
	bound     bool

	visible     bool
	enabled     bool
	local       mgl64.Mat4
	parent      mgl64.Mat4
	rasterScale float64

	owned []*ParameterInspector
	// claimed records the sources captured for the current drag so that
	// locations sharing a source are written once.
	claimed map[Plug]bool
}

func newHandleBase(env handleEnv, name string, kind HandleKind, lightTypes string) handleBase {
	return handleBase{
		env:         env,
		name:        name,
		kind:        kind,
		typePattern: compilePattern(lightTypes),
		local:       mgl64.Ident4(),
		parent:      mgl64.Ident4(),
		rasterScale: 1,
	}
}

func (b *handleBase) base() *handleBase { return b }

// Name returns the metadata key of the edited parameter.
func (b *handleBase) Name() string { return b.name }

// Kind returns the handle variant.
func (b *handleBase) Kind() HandleKind { return b.kind }

// Visible reports whether the handle is shown.
func (b *handleBase) Visible() bool { return b.visible }

// Enabled reports whether every selected parameter is editable.
func (b *handleBase) Enabled() bool { return b.enabled }

// Transform is the handle's transform relative to the light.
func (b *handleBase) Transform() mgl64.Mat4 { return b.local }

// WorldTransform is the handle's transform in world space.
func (b *handleBase) WorldTransform() mgl64.Mat4 { return b.parent.Mul4(b.local) }

// RasterScale is the handle size in pixels.
func (b *handleBase) RasterScale() float64 { return b.rasterScale }

// rebind finds the light shader at anchor whose attribute matches the
// tool's attribute pattern and whose registered type matches the handle's
// light types. The first attribute matching the pattern decides; a
// non-matching type there leaves the handle unbound.
func (b *handleBase) rebind(ctx context.Context, anchor EvalContext, editScope EditScope) error {
	b.closeInspectors()
	b.anchor = anchor
	b.editScope = editScope
	b.shader = nil
	b.attrs = nil
	b.bound = false

	attrs, err := b.env.scene.Attributes(ctx, anchor)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	for _, name := range sortedAttributeNames(attrs) {
		if !b.env.attributePattern.Match(name) {
			continue
		}
		network, ok := attrs[name].(*ShaderNetwork)
		if !ok {
			continue
		}
		shader := network.OutputShader()
		if shader == nil {
			return nil
		}
		typ, _ := b.env.registry.String(shader.MetadataTarget(), MetadataType)
		if !b.typePattern.Match(typ) {
			return nil
		}
		b.shader = shader
		b.attrs = attrs
		b.bound = true
		return nil
	}
	return nil
}

// newInspector creates an inspector for the parameter named by metadataKey,
// or returns nil when the bound shader does not register that key.
func (b *handleBase) newInspector(metadataKey string) *ParameterInspector {
	if !b.bound {
		return nil
	}
	if _, ok := b.env.registry.String(b.shader.MetadataTarget(), metadataKey); !ok {
		return nil
	}
	pi := NewMetadataParameterInspector(b.env.scene, b.env.editor, b.env.registry, b.editScope, b.env.attributePattern.String(), metadataKey)
	b.owned = append(b.owned, pi)
	return pi
}

func (b *handleBase) closeInspectors() {
	for _, pi := range b.owned {
		pi.Close()
	}
	b.owned = nil
}

// metadataString reads a registry value for the bound shader.
func (b *handleBase) metadataString(key string) (string, bool) {
	if !b.bound {
		return "", false
	}
	return b.env.registry.String(b.shader.MetadataTarget(), key)
}

// claim reports whether r's edit target has not been captured yet in this
// drag, recording it if so.
func (b *handleBase) claim(r *Result) bool {
	src := sharedEditTarget(r)
	if src == nil {
		return true
	}
	if b.claimed == nil {
		b.claimed = make(map[Plug]bool)
	}
	if b.claimed[src] {
		return false
	}
	b.claimed[src] = true
	return true
}

func (b *handleBase) resetClaims() {
	b.claimed = nil
}

// inspectorList drops nil inspectors; a nil entry in required hides the
// handle.
func inspectorList(required ...*ParameterInspector) []Inspector {
	out := make([]Inspector, 0, len(required))
	for _, pi := range required {
		if pi == nil {
			return nil
		}
		out = append(out, pi)
	}
	return out
}
