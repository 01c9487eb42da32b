package memscene

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phanxgames/lighttool"
)

func newSpotScene(t *testing.T) (*Scene, *Shader) {
	t.Helper()
	s := New(NewScript())
	sh, err := s.NewShader("spot", "light", "spot_light", map[string]any{"coneAngle": 40.0})
	if err != nil {
		t.Fatal(err)
	}
	s.AddLight("/spot", "light", sh)
	return s, sh
}

func query(path string, es lighttool.EditScope) lighttool.ParameterQuery {
	return lighttool.ParameterQuery{
		EvalContext: lighttool.EvalContext{Path: lighttool.ParsePath(path), Time: 1},
		Attribute:   "light",
		Parameter:   "coneAngle",
		EditScope:   es,
	}
}

func TestParameterSourceDirect(t *testing.T) {
	s, sh := newSpotScene(t)
	ps, err := s.ParameterSource(context.Background(), query("/spot", nil))
	if err != nil {
		t.Fatal(err)
	}
	if ps.Source != sh.Parameter("coneAngle") || ps.SourceType != lighttool.SourceOther {
		t.Errorf("source = %v (%s)", ps.Source, ps.SourceType)
	}
	if ps.EditWarning != "" || ps.NonEditableReason != "" {
		t.Errorf("warning %q, reason %q", ps.EditWarning, ps.NonEditableReason)
	}
	p, err := ps.Acquire()
	if err != nil || p != sh.Parameter("coneAngle") {
		t.Errorf("Acquire = %v, %v", p, err)
	}
	if p.FullName() != "spot.parameters.coneAngle" {
		t.Errorf("FullName = %q", p.FullName())
	}
}

func TestParameterSourceMissing(t *testing.T) {
	s, _ := newSpotScene(t)
	s.AddLocation("/empty")
	ctx := context.Background()

	if ps, err := s.ParameterSource(ctx, query("/empty", nil)); ps != nil || err != nil {
		t.Errorf("location without light = %v, %v", ps, err)
	}
	q := query("/spot", nil)
	q.Parameter = "radius"
	if ps, err := s.ParameterSource(ctx, q); ps != nil || err != nil {
		t.Errorf("missing parameter = %v, %v", ps, err)
	}
	if _, err := s.ParameterSource(ctx, query("/nowhere", nil)); !errors.Is(err, lighttool.ErrUnknownPath) {
		t.Errorf("unknown path err = %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.ParameterSource(cancelled, query("/spot", nil)); err == nil {
		t.Error("cancelled query succeeded")
	}
}

func TestParameterSourceSharedShader(t *testing.T) {
	s, sh := newSpotScene(t)
	s.AddLight("/other", "light", sh)
	ps, _ := s.ParameterSource(context.Background(), query("/spot", nil))
	if ps.EditWarning != "Edits to spot may affect other locations in the scene." {
		t.Errorf("EditWarning = %q", ps.EditWarning)
	}
	if ps.Acquire == nil {
		t.Error("shared shader should still be editable")
	}
}

func TestParameterSourceReadOnly(t *testing.T) {
	s, sh := newSpotScene(t)
	sh.Float("coneAngle").SetReadOnly(true)
	ps, _ := s.ParameterSource(context.Background(), query("/spot", nil))
	if ps.Acquire != nil || ps.NonEditableReason != "spot.parameters.coneAngle is locked." {
		t.Errorf("reason = %q", ps.NonEditableReason)
	}
}

func TestParameterSourceUpstreamOfEditScope(t *testing.T) {
	s, sh := newSpotScene(t)
	es := s.AddEditScope("editScope")
	ps, err := s.ParameterSource(context.Background(), query("/spot", es))
	if err != nil {
		t.Fatal(err)
	}
	if ps.SourceType != lighttool.SourceUpstream || ps.Source != sh.Parameter("coneAngle") {
		t.Errorf("SourceType = %s", ps.SourceType)
	}

	end := s.Script().UndoScope("")
	p, err := ps.Acquire()
	end()
	if err != nil {
		t.Fatal(err)
	}
	row := es.Row("/spot", "light", "coneAngle")
	if p != row || row == nil {
		t.Fatalf("Acquire = %v, want the new row", p)
	}
	if got := row.ValuePlug().(*FloatPlug).Value(1); got != 40 {
		t.Errorf("row value = %f, want 40", got)
	}
	if !strings.HasPrefix(row.FullName(), "editScope.edits") {
		t.Errorf("row name = %q", row.FullName())
	}
	again, _ := ps.Acquire()
	if again != p {
		t.Error("second Acquire created another row")
	}

	ps, _ = s.ParameterSource(context.Background(), query("/spot", es))
	if ps.SourceType != lighttool.SourceEditScope || ps.Source != row {
		t.Errorf("after acquire: SourceType = %s", ps.SourceType)
	}

	s.Script().Undo()
	if es.Row("/spot", "light", "coneAngle") != nil {
		t.Error("row survived undo")
	}
}

func TestParameterSourceDownstream(t *testing.T) {
	s, _ := newSpotScene(t)
	upstream := s.AddEditScope("upstream")
	downstream := s.AddEditScope("downstream")
	downstream.AddRow("/spot", "light", "coneAngle", 70, true)

	ps, _ := s.ParameterSource(context.Background(), query("/spot", upstream))
	if ps.SourceType != lighttool.SourceDownstream {
		t.Errorf("SourceType = %s, want downstream", ps.SourceType)
	}
	if ps.NonEditableReason != "coneAngle has edits downstream in downstream." {
		t.Errorf("reason = %q", ps.NonEditableReason)
	}

	// A disabled row does not count as a source.
	downstream.Row("/spot", "light", "coneAngle").EnabledPlug().SetValue(false)
	ps, _ = s.ParameterSource(context.Background(), query("/spot", upstream))
	if ps.SourceType != lighttool.SourceUpstream {
		t.Errorf("SourceType with disabled row = %s, want upstream", ps.SourceType)
	}
}

func TestParameterSourceLockedScope(t *testing.T) {
	s, _ := newSpotScene(t)
	es := s.AddEditScope("editScope")
	es.SetLocked(true)
	ps, _ := s.ParameterSource(context.Background(), query("/spot", es))
	if ps.Acquire != nil || ps.NonEditableReason != "editScope is locked." {
		t.Errorf("upstream locked: reason = %q", ps.NonEditableReason)
	}

	es.AddRow("/spot", "light", "coneAngle", 50, true)
	ps, _ = s.ParameterSource(context.Background(), query("/spot", es))
	if ps.SourceType != lighttool.SourceEditScope || ps.NonEditableReason != "editScope is locked." {
		t.Errorf("in scope locked: %s, %q", ps.SourceType, ps.NonEditableReason)
	}
}

func TestParameterSourceScopeNotInHistory(t *testing.T) {
	s, _ := newSpotScene(t)
	other := New(nil).AddEditScope("elsewhere")
	ps, _ := s.ParameterSource(context.Background(), query("/spot", other))
	if ps.NonEditableReason != "The target edit scope elsewhere is not in the scene history." {
		t.Errorf("reason = %q", ps.NonEditableReason)
	}
}

func TestAttributesApplyEditScopeRows(t *testing.T) {
	s, _ := newSpotScene(t)
	a := s.AddEditScope("a")
	b := s.AddEditScope("b")
	a.AddRow("/spot", "light", "coneAngle", 50, true)
	b.AddRow("/spot", "light", "coneAngle", 60, false)

	coneAngle := func() any {
		attrs, err := s.Attributes(context.Background(), lighttool.EvalContext{Path: lighttool.ParsePath("/spot"), Time: 1})
		if err != nil {
			t.Fatal(err)
		}
		network := attrs["light"].(*lighttool.ShaderNetwork)
		return network.OutputShader().Parameters["coneAngle"]
	}
	if got := coneAngle(); got != 50.0 {
		t.Errorf("coneAngle = %v, want 50", got)
	}
	b.Row("/spot", "light", "coneAngle").EnabledPlug().SetValue(true)
	if got := coneAngle(); got != 60.0 {
		t.Errorf("coneAngle = %v, want 60", got)
	}
}
