package memscene

import (
	"context"
	"fmt"

	"github.com/phanxgames/lighttool"
)

type readOnlyPlug interface {
	ReadOnly() bool
}

// ParameterSource resolves where a light parameter is authored relative to
// q.EditScope, and how it can be edited.
func (s *Scene) ParameterSource(ctx context.Context, q lighttool.ParameterQuery) (*lighttool.ParameterSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := s.lookup(q.Path)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", lighttool.ErrUnknownPath, q.Path)
	}
	if l.light == nil || l.light.attribute != q.Attribute {
		return nil, nil
	}
	sh := l.light.shader
	plug := sh.params[q.Parameter]
	if plug == nil {
		return nil, nil
	}

	key := rowKey{path: q.Path.String(), attribute: q.Attribute, parameter: q.Parameter}
	var src lighttool.Plug = plug
	srcIndex := -1
	for i, es := range s.editScopes {
		if row := es.rows[key]; row != nil && row.Enabled() {
			src = row
			srcIndex = i
		}
	}
	warning := ""
	if srcIndex < 0 && sh.users > 1 {
		warning = fmt.Sprintf("Edits to %s may affect other locations in the scene.", sh.name)
	}

	target, _ := q.EditScope.(*EditScope)
	if target == nil {
		ps := &lighttool.ParameterSource{Source: src, SourceType: lighttool.SourceOther, EditWarning: warning}
		if srcIndex >= 0 {
			ps.EditScope = s.editScopes[srcIndex]
		}
		editDirectly(ps, src)
		return ps, nil
	}

	ps := &lighttool.ParameterSource{Source: src, EditScope: target}
	targetIndex := s.editScopeIndex(target)
	switch {
	case targetIndex < 0:
		ps.SourceType = lighttool.SourceOther
		ps.NonEditableReason = fmt.Sprintf("The target edit scope %s is not in the scene history.", target.Name())
	case srcIndex == targetIndex:
		ps.SourceType = lighttool.SourceEditScope
		if target.Locked() {
			ps.NonEditableReason = fmt.Sprintf("%s is locked.", target.Name())
		} else {
			editDirectly(ps, src)
		}
	case srcIndex > targetIndex:
		ps.SourceType = lighttool.SourceDownstream
		ps.NonEditableReason = fmt.Sprintf("%s has edits downstream in %s.", q.Parameter, s.editScopes[srcIndex].Name())
	default:
		ps.SourceType = lighttool.SourceUpstream
		if target.Locked() {
			ps.NonEditableReason = fmt.Sprintf("%s is locked.", target.Name())
			break
		}
		time := q.Time
		ps.Acquire = func() (lighttool.Plug, error) {
			v, _ := toFloat(plugValue(src, time))
			return target.acquireRow(key, v), nil
		}
	}
	return ps, nil
}

// editDirectly makes src itself the edit target unless it is read-only.
func editDirectly(ps *lighttool.ParameterSource, src lighttool.Plug) {
	if ro, ok := src.(readOnlyPlug); ok && ro.ReadOnly() {
		ps.NonEditableReason = fmt.Sprintf("%s is locked.", src.FullName())
		return
	}
	ps.Acquire = func() (lighttool.Plug, error) { return src, nil }
}
