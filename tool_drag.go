package lighttool

import (
	"context"
	"fmt"
)

// MergeGroup returns the undo merge group of the current or next drag.
// Each drag gets its own group, so drags never merge with each other.
func (t *Tool) MergeGroup() string {
	return fmt.Sprintf("LightTool%s/%d", t.id, t.mergeGroupID)
}

// Dragging reports whether a drag is in progress.
func (t *Tool) Dragging() bool { return t.drag != dragIdle }

// DragHandle returns the handle being dragged, or nil.
func (t *Tool) DragHandle() Handle { return t.dragHandle }

// DragBegin starts dragging h. The parameter values of every selected
// location are captured now; locations where h's parameter does not
// resolve are skipped. It fails with ErrDragInProgress if a drag is already
// active and with ErrNotEditable if h is not enabled.
func (t *Tool) DragBegin(ctx context.Context, h Handle, ev DragEvent) error {
	if h == nil {
		panic("lighttool: DragBegin with nil handle")
	}
	if t.drag != dragIdle {
		return ErrDragInProgress
	}
	if !h.Enabled() {
		return fmt.Errorf("drag %s: %w", h.Name(), ErrNotEditable)
	}
	sel, err := t.Selection(ctx)
	if err != nil {
		return err
	}

	t.drag = dragArmed
	t.dragHandle = h
	for _, item := range sel {
		if err := h.AddDragInspection(ctx, t.context.Eval(item.Path)); err != nil {
			t.abortDrag()
			return fmt.Errorf("drag %s: %w", h.Name(), err)
		}
	}
	h.DragBegin(ev)
	return nil
}

// DragMove applies the pointer position to the dragged handle. All writes
// go into the drag's undo merge group. Without an active drag it does
// nothing. Errors abort the drag.
func (t *Tool) DragMove(ctx context.Context, ev DragEvent) error {
	if t.drag == dragIdle {
		return nil
	}
	t.drag = dragDragging
	h := t.dragHandle

	end := t.undo.UndoScope(t.MergeGroup())
	err := h.DragMove(ctx, ev)
	end()

	if err != nil {
		t.DragEnd()
		return fmt.Errorf("drag %s: %w", h.Name(), err)
	}
	return nil
}

// DragEnd finishes the drag and starts a new undo merge group.
func (t *Tool) DragEnd() {
	if t.drag == dragIdle {
		return
	}
	h := t.dragHandle
	t.drag = dragIdle
	t.dragHandle = nil
	t.mergeGroupID++
	h.DragEnd()
	t.selectionChanged.Emit(t)
}

func (t *Tool) abortDrag() {
	h := t.dragHandle
	t.drag = dragIdle
	t.dragHandle = nil
	if h != nil {
		h.DragEnd()
	}
}
