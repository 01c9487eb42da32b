package lighttool

import "errors"

var (
	// ErrTypeMismatch is returned when a resolved parameter plug does not
	// hold a float value.
	ErrTypeMismatch = errors.New("lighttool: parameter is not a float plug")

	// ErrNotEditable is returned by Result.AcquireEdit for read-only sources
	// and by Tool.DragBegin for disabled handles.
	ErrNotEditable = errors.New("lighttool: not editable")

	// ErrDragInProgress is returned by DragBegin while another drag is active.
	ErrDragInProgress = errors.New("lighttool: drag already in progress")

	// ErrSelectionNotEditable is returned by operations that write to every
	// selected light when one of them cannot be edited.
	ErrSelectionNotEditable = errors.New("lighttool: selection not editable")

	// ErrAnimated is returned when setting a static value on an animated plug.
	ErrAnimated = errors.New("lighttool: plug is animated")

	// ErrUnknownPath is returned for queries on locations that do not exist.
	ErrUnknownPath = errors.New("lighttool: unknown path")
)
