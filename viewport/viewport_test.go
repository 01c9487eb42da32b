package viewport

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/lighttool"
	"github.com/phanxgames/lighttool/memscene"
)

type recorder struct {
	events []HandleEvent
}

func (r *recorder) EmitEvent(e HandleEvent) { r.events = append(r.events, e) }

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	script *memscene.Script
	quad   *memscene.Shader
	tool   *lighttool.Tool
	view   *Viewport
	sink   *recorder
	ctx    context.Context
}

// newFixture selects a quad light of width 4 at the origin, seen by a
// camera looking down -Z.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	script := memscene.NewScript()
	scene := memscene.New(script)
	quad, err := scene.NewShader("quad", "light", "quad_light", map[string]any{"width": 4.0, "height": 1.0})
	if err != nil {
		t.Fatal(err)
	}
	scene.AddLight("/quad", "light", quad)

	reg := lighttool.NewRegistry()
	reg.RegisterValue("light:quad_light", lighttool.MetadataType, "quad")
	reg.RegisterValue("light:quad_light", lighttool.MetadataWidthParameter, "width")
	reg.RegisterValue("light:quad_light", lighttool.MetadataHeightParameter, "height")

	vc := lighttool.NewViewContext()
	vc.SetSelectedPaths([]lighttool.Path{lighttool.ParsePath("/quad")})
	tool := lighttool.NewTool(lighttool.ToolConfig{
		Scene:    scene,
		Editor:   scene,
		Registry: reg,
		Context:  vc,
		Undo:     script,
	})
	tool.SetActive(true)
	t.Cleanup(tool.Close)

	sink := &recorder{}
	f := &fixture{
		script: script,
		quad:   quad,
		tool:   tool,
		sink:   sink,
		ctx:    context.Background(),
		view: New(Config{
			Tool:   tool,
			Camera: lighttool.NewCamera(lighttool.Rect{Width: 800, Height: 600}),
			Sink:   sink,
		}),
	}
	f.view.Tick(f.ctx)
	return f
}

func (f *fixture) screen(t *testing.T, p mgl64.Vec3) (float64, float64) {
	t.Helper()
	x, y, ok := f.view.Camera().WorldToScreen(p)
	if !ok {
		t.Fatalf("%v is behind the camera", p)
	}
	return x, y
}

func (f *fixture) drain() {
	for f.view.HasInjectedEvents() {
		f.view.Tick(f.ctx)
	}
}

func TestHitTest(t *testing.T) {
	f := newFixture(t)
	x, y := f.screen(t, mgl64.Vec3{2, 0, 0})

	h := f.view.HitTest(x+3, y-3)
	if h == nil || h.Name() != lighttool.MetadataWidthParameter {
		t.Fatalf("HitTest near width handle = %v", h)
	}
	if h := f.view.HitTest(x+40, y); h != nil {
		t.Errorf("HitTest in empty space = %s, want nil", h.Name())
	}
	hx, hy := f.screen(t, mgl64.Vec3{0, 0.5, 0})
	if h := f.view.HitTest(hx, hy); h == nil || h.Name() != lighttool.MetadataHeightParameter {
		t.Errorf("HitTest at height handle = %v", h)
	}
}

func TestHover(t *testing.T) {
	f := newFixture(t)
	x, y := f.screen(t, mgl64.Vec3{2, 0, 0})

	f.view.processPointer(f.ctx, x, y, false)
	if f.view.Hovered() == nil {
		t.Fatal("no hovered handle")
	}
	f.view.processPointer(f.ctx, x, y+1, false)
	f.view.processPointer(f.ctx, x+100, y, false)
	if f.view.Hovered() != nil {
		t.Error("hover kept after leaving the handle")
	}
	want := []EventType{EventHoverEnter, EventHoverLeave}
	got := f.sink.types()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestInjectedDrag(t *testing.T) {
	f := newFixture(t)
	x0, y0 := f.screen(t, mgl64.Vec3{2, 0, 0})
	x1, _ := f.screen(t, mgl64.Vec3{3, 0, 0})

	f.view.InjectDrag(x0, y0, x1, y0, 4)
	f.drain()

	if got := f.quad.Float("width").Value(1); math.Abs(got-6) > 1e-6 {
		t.Errorf("width = %f, want 6", got)
	}
	if f.tool.Dragging() {
		t.Error("drag left open")
	}
	if f.script.UndoCount() != 1 {
		t.Errorf("UndoCount = %d, want 1", f.script.UndoCount())
	}
	if f.view.Err() != nil {
		t.Errorf("Err = %v", f.view.Err())
	}

	types := f.sink.types()
	if len(types) != 5 || types[0] != EventDragStart || types[4] != EventDragEnd {
		t.Errorf("events = %v, want dragStart, 3 drags, dragEnd", types)
	}
	for _, e := range f.sink.events {
		if e.Handle != lighttool.MetadataWidthParameter {
			t.Errorf("event %s for %q", e.Type, e.Handle)
		}
	}

	// The handle follows the new width.
	if h := f.view.HitTest(x1, y0); h == nil || h.Name() != lighttool.MetadataWidthParameter {
		t.Errorf("width handle not at the new position")
	}
}

func TestDragDeadZone(t *testing.T) {
	f := newFixture(t)
	x, y := f.screen(t, mgl64.Vec3{2, 0, 0})

	f.view.InjectPress(x, y)
	f.view.InjectMove(x+2, y)
	f.view.InjectRelease(x+2, y)
	f.drain()

	if got := f.quad.Float("width").Value(1); got != 4 {
		t.Errorf("width = %f, want 4", got)
	}
	if len(f.sink.events) != 0 {
		t.Errorf("events = %v, want none", f.sink.types())
	}
	if f.script.UndoAvailable() {
		t.Error("click inside the dead zone recorded an undo step")
	}
}

func TestPressOnEmptySpace(t *testing.T) {
	f := newFixture(t)
	f.view.InjectDrag(10, 10, 200, 10, 3)
	f.drain()
	if f.tool.Dragging() || len(f.sink.events) != 0 {
		t.Error("drag started away from every handle")
	}
}

func TestHandleColor(t *testing.T) {
	f := newFixture(t)
	h := f.tool.Handle(lighttool.MetadataWidthParameter)
	if f.view.handleColor(h) != lighttool.HandleColor {
		t.Error("idle handle not drawn in the handle color")
	}
	f.view.hover = h
	if f.view.handleColor(h) != lighttool.HighlightColor {
		t.Error("hovered handle not highlighted")
	}
	if c := toRGBA(lighttool.Color{R: 1, G: 0, B: 0, A: 1}); c.R != 255 || c.A != 255 || c.G != 0 {
		t.Errorf("toRGBA = %v", c)
	}
}

func TestEventTypeString(t *testing.T) {
	if EventDragStart.String() != "dragStart" || EventType(99).String() != "unknown" {
		t.Error("unexpected EventType names")
	}
}
