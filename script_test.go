package lighttool_test

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/lighttool"
)

func rayJSON(phi float64) string {
	s, c := math.Sincos(mgl64.DegToRad(phi))
	return fmt.Sprintf("[%g, 100, %g, 0, -1, 0]", 10*s, -10*c)
}

func TestInteractionScriptDrag(t *testing.T) {
	f := newFixture(t)
	sh := f.spot(t, "/spot")

	script := fmt.Sprintf(`{"steps": [
		{"action": "select", "paths": ["/spot"]},
		{"action": "preRender"},
		{"action": "drag", "handle": "coneAngleParameter", "fromRay": %s, "toRay": %s, "frames": 4},
		{"action": "wait", "frames": 2}
	]}`, rayJSON(20), rayJSON(26))

	runner, err := lighttool.LoadInteractionScript([]byte(script), f.tool, f.context, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !runner.Done() {
		t.Error("runner not done")
	}
	if got := value(t, sh, "coneAngle"); !approxEqual(got, 52, 1e-6) {
		t.Errorf("coneAngle = %f, want 52", got)
	}
	if f.tool.Dragging() {
		t.Error("drag left open")
	}
	if f.script.UndoCount() != 1 {
		t.Errorf("UndoCount = %d, want 1", f.script.UndoCount())
	}
}

func TestInteractionScriptSetAngle(t *testing.T) {
	f := newFixture(t)
	a := f.spot(t, "/a")
	b := f.spot(t, "/b")

	script := `{"steps": [
		{"action": "select", "paths": ["/a", "/b"]},
		{"action": "lastSelected", "path": "/a"},
		{"action": "frame", "value": 3},
		{"action": "setAngle", "value": 33}
	]}`
	runner, err := lighttool.LoadInteractionScript([]byte(script), f.tool, f.context, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if value(t, a, "coneAngle") != 33 || value(t, b, "coneAngle") != 33 {
		t.Errorf("coneAngle = %f, %f, want 33", value(t, a, "coneAngle"), value(t, b, "coneAngle"))
	}
	if f.context.Time() != 3 {
		t.Errorf("Time = %f, want 3", f.context.Time())
	}
	if got := f.context.LastSelectedPath().String(); got != "/a" {
		t.Errorf("LastSelectedPath = %s, want /a", got)
	}
}

func TestInteractionScriptScreenDrag(t *testing.T) {
	f := newFixture(t)
	sh := f.quad(t, "/quad", 4)
	cam := lighttool.NewCamera(lighttool.Rect{Width: 800, Height: 600})

	// The camera looks down -Z at the origin; screen X follows world X.
	x0, y0, ok := cam.WorldToScreen(mgl64.Vec3{2, 0, 0})
	if !ok {
		t.Fatal("handle behind camera")
	}
	x1, _, _ := cam.WorldToScreen(mgl64.Vec3{3, 0, 0})

	script := fmt.Sprintf(`{"steps": [
		{"action": "select", "paths": ["/quad"]},
		{"action": "preRender"},
		{"action": "drag", "handle": "widthParameter", "fromX": %g, "fromY": %g, "toX": %g, "toY": %g, "frames": 3}
	]}`, x0, y0, x1, y0)
	runner, err := lighttool.LoadInteractionScript([]byte(script), f.tool, f.context, cam)
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := value(t, sh, "width"); !approxEqual(got, 6, 1e-6) {
		t.Errorf("width = %f, want 6", got)
	}
}

func TestLoadInteractionScriptErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name, script, want string
	}{
		{"bad json", `{`, "parse interaction script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "jump"}]}`, "unknown action"},
		{"screen drag without camera", `{"steps": [{"action": "drag", "handle": "widthParameter"}]}`, "needs a camera"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lighttool.LoadInteractionScript([]byte(tt.script), f.tool, f.context, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestInteractionScriptUnknownHandle(t *testing.T) {
	f := newFixture(t)
	script := `{"steps": [{"action": "drag", "handle": "nope", "fromRay": [0, 0, 0, 0, 0, -1]}]}`
	runner, err := lighttool.LoadInteractionScript([]byte(script), f.tool, f.context, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(context.Background()); err == nil {
		t.Error("expected error for unknown handle")
	}
}
