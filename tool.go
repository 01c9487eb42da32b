package lighttool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Defaults applied to zero ToolConfig fields.
const (
	DefaultRasterScale      = 75.0
	DefaultFrustumScale     = 1.0
	DefaultVisualiserScale  = 1.0
	DefaultAttributePattern = "light *:light"
)

// ToolConfig configures a Tool. Scene, Editor, Registry and Context are
// required; zero values elsewhere select defaults.
type ToolConfig struct {
	Scene    Scene
	Editor   ParameterEditor
	Registry *Registry
	Context  *ViewContext
	// Undo groups drag edits into undo steps. Nil disables undo grouping.
	Undo   Undoer
	Logger *slog.Logger

	// RasterScale is the on-screen handle size in pixels.
	RasterScale float64
	// FrustumScale and VisualiserScale are the display scales used when a
	// light has no gl:light:frustumScale or gl:visualiser:scale attribute.
	FrustumScale    float64
	VisualiserScale float64
	// AttributePattern is a space-separated glob list of light attributes.
	AttributePattern string
}

// dirtyFlags marks which cached state PreRender must recompute.
type dirtyFlags uint8

const (
	dirtySelection dirtyFlags = 1 << iota
	dirtyInspections
	dirtyTransforms
	dirtyPriorityPaths

	dirtyAll = dirtySelection | dirtyInspections | dirtyTransforms | dirtyPriorityPaths
)

func (f *dirtyFlags) set(m dirtyFlags)     { *f |= m }
func (f *dirtyFlags) clear(m dirtyFlags)   { *f &^= m }
func (f dirtyFlags) has(m dirtyFlags) bool { return f&m != 0 }

type dragState uint8

const (
	dragIdle     dragState = iota
	dragArmed              // DragBegin called, no move yet
	dragDragging           // at least one DragMove
)

// Tool presents handles for editing the lights at the selected locations.
// All methods must be called from the UI thread. Changes from the scene,
// view context and registry only mark cached state dirty; PreRender, called
// once per frame, recomputes it.
type Tool struct {
	scene    Scene
	editor   ParameterEditor
	registry *Registry
	context  *ViewContext
	undo     Undoer
	logger   *slog.Logger

	id          string
	rasterScale float64
	active      bool
	editScope   EditScope
	debug       bool

	handles        []Handle
	handlesVisible bool
	groupTransform mgl64.Mat4

	dirty        dirtyFlags
	drag         dragState
	dragHandle   Handle
	mergeGroupID int

	selectionInspector *ParameterInspector
	selection          []SelectionItem
	priorityPaths      []Path

	conns          connections
	inspectorConns connections

	selectionChanged     Signal[*Tool]
	priorityPathsChanged Signal[[]Path]
}

// NewTool creates an inactive tool. It panics if a required collaborator
// is missing.
func NewTool(cfg ToolConfig) *Tool {
	if cfg.Scene == nil || cfg.Editor == nil || cfg.Registry == nil || cfg.Context == nil {
		panic("lighttool: ToolConfig requires Scene, Editor, Registry and Context")
	}
	if cfg.Undo == nil {
		cfg.Undo = noopUndo{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RasterScale == 0 {
		cfg.RasterScale = DefaultRasterScale
	}
	if cfg.FrustumScale == 0 {
		cfg.FrustumScale = DefaultFrustumScale
	}
	if cfg.VisualiserScale == 0 {
		cfg.VisualiserScale = DefaultVisualiserScale
	}
	if cfg.AttributePattern == "" {
		cfg.AttributePattern = DefaultAttributePattern
	}

	t := &Tool{
		scene:          cfg.Scene,
		editor:         cfg.Editor,
		registry:       cfg.Registry,
		context:        cfg.Context,
		undo:           cfg.Undo,
		logger:         cfg.Logger,
		id:             uuid.NewString(),
		rasterScale:    cfg.RasterScale,
		groupTransform: mgl64.Ident4(),
		dirty:          dirtyAll,
	}

	env := handleEnv{
		scene:            cfg.Scene,
		editor:           cfg.Editor,
		registry:         cfg.Registry,
		attributePattern: compilePattern(cfg.AttributePattern),
		frustumScale:     cfg.FrustumScale,
		visualiserScale:  cfg.VisualiserScale,
	}
	t.handles = []Handle{
		newSpotLightHandle(env, HandleSpotCone),
		newSpotLightHandle(env, HandleSpotPenumbra),
		newSizeHandle(env, HandleQuadWidth),
		newSizeHandle(env, HandleQuadHeight),
		newSizeHandle(env, HandleRadius),
	}
	for _, h := range t.handles {
		h.base().rasterScale = t.rasterScale
	}
	t.selectionInspector = NewSpotLightInspector(cfg.Scene, cfg.Editor, cfg.Registry, nil)

	t.conns.add(t.context.OnChanged(t.contextChanged))
	t.conns.add(t.scene.OnDirtied(t.sceneDirtied))
	t.conns.add(t.registry.OnChanged(t.metadataChanged))
	return t
}

// Close disconnects the tool from its collaborators.
func (t *Tool) Close() {
	t.DragEnd()
	t.conns.clear()
	t.inspectorConns.clear()
	t.selectionInspector.Close()
	for _, h := range t.handles {
		h.base().closeInspectors()
	}
}

// ID returns the unique identifier of this tool instance.
func (t *Tool) ID() string { return t.id }

// SetActive shows or hides the tool. Activation recomputes everything on
// the next PreRender.
func (t *Tool) SetActive(active bool) {
	if t.active == active {
		return
	}
	t.active = active
	if !active {
		t.DragEnd()
		t.handlesVisible = false
	}
	t.dirty.set(dirtyAll)
	t.selectionChanged.Emit(t)
}

// Active reports whether the tool is active.
func (t *Tool) Active() bool { return t.active }

// SetEditScope sets the edit scope edits are made in. Nil edits the
// parameters where they are authored.
func (t *Tool) SetEditScope(es EditScope) {
	if t.editScope == es {
		return
	}
	t.editScope = es
	t.selectionInspector.Close()
	t.selectionInspector = NewSpotLightInspector(t.scene, t.editor, t.registry, es)
	t.dirty.set(dirtySelection | dirtyInspections | dirtyPriorityPaths)
	if t.drag == dragIdle {
		t.selectionChanged.Emit(t)
	}
}

// EditScope returns the current edit scope.
func (t *Tool) EditScope() EditScope { return t.editScope }

// SetDebugMode enables debug logging of every settle pass.
func (t *Tool) SetDebugMode(enabled bool) { t.debug = enabled }

// Handles returns the tool's handles. The returned slice must not be mutated.
func (t *Tool) Handles() []Handle { return t.handles }

// Handle returns the handle editing the parameter named by metadataKey,
// or nil.
func (t *Tool) Handle(metadataKey string) Handle {
	for _, h := range t.handles {
		if h.Name() == metadataKey {
			return h
		}
	}
	return nil
}

// HandlesVisible reports whether any handle is visible.
func (t *Tool) HandlesVisible() bool { return t.active && t.handlesVisible }

// GroupTransform returns the world transform of the anchor light.
func (t *Tool) GroupTransform() mgl64.Mat4 { return t.groupTransform }

// RasterScale returns the on-screen handle size in pixels.
func (t *Tool) RasterScale() float64 { return t.rasterScale }

// PriorityPaths returns the locations the host should compute first.
func (t *Tool) PriorityPaths() []Path { return t.priorityPaths }

// OnSelectionChanged registers fn to be called when the selection may have
// changed, and at the end of every drag.
func (t *Tool) OnSelectionChanged(fn func(*Tool)) Connection {
	return t.selectionChanged.Connect(fn)
}

// OnPriorityPathsChanged registers fn to be called when the priority paths
// are republished.
func (t *Tool) OnPriorityPathsChanged(fn func([]Path)) Connection {
	return t.priorityPathsChanged.Connect(fn)
}

func (t *Tool) contextChanged(name string) {
	switch {
	case AffectsSelection(name):
		t.dirty.set(dirtySelection | dirtyInspections | dirtyPriorityPaths)
		t.selectionChanged.Emit(t)
	case AffectsComputation(name):
		t.dirty.set(dirtySelection | dirtyInspections | dirtyTransforms)
		t.selectionChanged.Emit(t)
	}
}

func (t *Tool) sceneDirtied(kind DirtyKind) {
	switch kind {
	case DirtyChildNames:
		t.dirty.set(dirtySelection | dirtyInspections | dirtyPriorityPaths)
	case DirtyAttributes:
		t.dirty.set(dirtySelection | dirtyInspections | dirtyTransforms)
	case DirtyTransform:
		t.dirty.set(dirtyTransforms)
	case DirtyReadOnly:
		t.dirty.set(dirtySelection | dirtyInspections)
	}
	if t.drag == dragIdle {
		t.selectionChanged.Emit(t)
	}
}

func (t *Tool) metadataChanged(MetadataChange) {
	t.dirty.set(dirtySelection | dirtyInspections | dirtyTransforms)
	if t.drag == dragIdle {
		t.selectionChanged.Emit(t)
	}
}

// PreRender brings cached state up to date. While a drag is in progress
// only handle transforms are recomputed. Cancelled recomputation is left
// dirty for the next call.
func (t *Tool) PreRender(ctx context.Context) error {
	t.registry.DispatchPending()
	if !t.active {
		return nil
	}

	var stats settleStats
	start := time.Now()

	if t.drag == dragIdle {
		if t.dirty.has(dirtySelection) {
			stats.selection = true
			if err := t.updateSelection(ctx); err != nil {
				return err
			}
			if t.dirty.has(dirtySelection) {
				return nil
			}
		}
		if t.dirty.has(dirtyPriorityPaths) {
			t.publishPriorityPaths()
		}
		if t.dirty.has(dirtyInspections) {
			stats.inspections = true
			if err := t.updateHandleInspections(ctx); err != nil {
				return err
			}
		}
	}
	if t.dirty.has(dirtyTransforms) {
		stats.transforms = true
		if err := t.updateHandleTransforms(ctx); err != nil {
			return err
		}
	}

	if t.debug {
		stats.elapsed = time.Since(start)
		t.debugLog(stats)
	}
	return nil
}

// updateSelection rebuilds the selection from the view context. It is
// frozen while dragging.
func (t *Tool) updateSelection(ctx context.Context) error {
	if !t.dirty.has(dirtySelection) || t.drag != dragIdle {
		return nil
	}
	if !t.active {
		t.selection = nil
		t.dirty.clear(dirtySelection)
		return nil
	}

	paths := t.context.SelectedPaths()
	items := make([]SelectionItem, 0, len(paths))
	for _, p := range paths {
		r, err := t.selectionInspector.Inspect(ctx, t.context.Eval(p))
		if err != nil {
			return err
		}
		items = append(items, SelectionItem{Path: p, Inspection: r})
	}
	if ctx.Err() != nil {
		return nil
	}

	last := t.context.LastSelectedPath()
	selection, found := dedupeSelection(items, last)
	if len(paths) > 0 && !found {
		t.logger.Warn("last selected path is not selected", "path", fmt.Sprint(last))
	}
	t.selection = selection
	t.dirty.clear(dirtySelection)
	return nil
}

func (t *Tool) publishPriorityPaths() {
	t.dirty.clear(dirtyPriorityPaths)
	var paths []Path
	if len(t.selection) > 0 {
		paths = t.context.SelectedPaths()
	}
	t.priorityPaths = paths
	t.priorityPathsChanged.Emit(paths)
}

// anchor returns the path handles are positioned for, the last item of
// the selection.
func (t *Tool) anchor() (Path, bool) {
	if len(t.selection) == 0 {
		return nil, false
	}
	return t.selection[len(t.selection)-1].Path, true
}

// updateHandleInspections rebinds every handle to the anchor and decides
// visibility and editability from inspections of every selected location.
func (t *Tool) updateHandleInspections(ctx context.Context) error {
	t.inspectorConns.clear()

	anchor, ok := t.anchor()
	if !ok {
		for _, h := range t.handles {
			b := h.base()
			b.visible, b.enabled = false, false
		}
		t.handlesVisible = false
		t.dirty.clear(dirtyInspections)
		return nil
	}

	anyVisible := false
	for _, h := range t.handles {
		if err := h.Update(ctx, t.context.Eval(anchor), t.editScope); err != nil {
			return fmt.Errorf("update handle %s: %w", h.Name(), err)
		}
		inspectors := h.Inspectors()
		visible := len(inspectors) > 0
		enabled := visible
		for _, ins := range inspectors {
			for _, item := range t.selection {
				r, err := ins.Inspect(ctx, t.context.Eval(item.Path))
				if err != nil {
					return fmt.Errorf("inspect handle %s: %w", h.Name(), err)
				}
				visible = visible && r != nil
				enabled = enabled && r != nil && r.Editable()
			}
			if visible {
				t.inspectorConns.add(ins.OnDirtied(func(Inspector) {
					t.dirty.set(dirtyTransforms)
				}))
			}
		}
		b := h.base()
		b.visible = visible
		b.enabled = visible && enabled
		anyVisible = anyVisible || visible
	}
	if ctx.Err() != nil {
		return nil
	}
	t.handlesVisible = anyVisible
	t.dirty.clear(dirtyInspections)
	t.dirty.set(dirtyTransforms)
	return nil
}

// updateHandleTransforms positions visible handles for the anchor.
func (t *Tool) updateHandleTransforms(ctx context.Context) error {
	anchor, ok := t.anchor()
	if !ok {
		t.dirty.clear(dirtyTransforms)
		return nil
	}
	m, err := t.scene.FullTransform(ctx, t.context.Eval(anchor))
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("transform %s: %w", anchor, err)
	}
	t.groupTransform = m
	for _, h := range t.handles {
		b := h.base()
		if !b.visible {
			continue
		}
		b.parent = m
		b.rasterScale = t.rasterScale
		if err := h.UpdateLocalTransform(ctx); err != nil {
			return fmt.Errorf("position handle %s: %w", h.Name(), err)
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	t.dirty.clear(dirtyTransforms)
	return nil
}

// Selection returns the deduplicated selection with the anchor last.
func (t *Tool) Selection(ctx context.Context) ([]SelectionItem, error) {
	if err := t.updateSelection(ctx); err != nil {
		return nil, err
	}
	out := make([]SelectionItem, len(t.selection))
	copy(out, t.selection)
	return out, nil
}

// SelectionEditable reports whether every selected location has an
// editable spot light cone angle. An empty selection is not editable.
func (t *Tool) SelectionEditable(ctx context.Context) (bool, error) {
	sel, err := t.Selection(ctx)
	if err != nil {
		return false, err
	}
	if len(sel) == 0 {
		return false, nil
	}
	for _, item := range sel {
		if !item.Editable() {
			return false, nil
		}
	}
	return true, nil
}

// HandleTransform returns the world transform of the anchor light. It
// fails with ErrSelectionNotEditable unless SelectionEditable is true.
func (t *Tool) HandleTransform(ctx context.Context) (mgl64.Mat4, error) {
	editable, err := t.SelectionEditable(ctx)
	if err != nil {
		return mgl64.Ident4(), err
	}
	if !editable {
		return mgl64.Ident4(), ErrSelectionNotEditable
	}
	anchor, _ := t.anchor()
	return t.scene.FullTransform(ctx, t.context.Eval(anchor))
}

// SetAngle sets the cone angle parameter of every selected spot light, as
// a single undo step.
func (t *Tool) SetAngle(ctx context.Context, angle float64) error {
	sel, err := t.Selection(ctx)
	if err != nil {
		return err
	}
	for _, item := range sel {
		if !item.Editable() {
			return fmt.Errorf("%w: %s", ErrSelectionNotEditable, item.Path)
		}
	}
	end := t.undo.UndoScope("")
	defer end()
	for _, item := range sel {
		if err := writeResult(item.Inspection, t.context.Time(), angle); err != nil {
			return fmt.Errorf("set angle %s: %w", item.Path, err)
		}
	}
	return nil
}
