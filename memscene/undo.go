package memscene

// Script records graph edits as undoable steps. It implements
// lighttool.Undoer: edits are only recorded inside an UndoScope, and
// consecutive scopes with the same non-empty merge group form one step.
type Script struct {
	records []*undoRecord
	index   int // records[:index] are applied

	open   *undoRecord
	depth  int
	replay bool
}

type undoRecord struct {
	mergeGroup string
	actions    []undoAction
}

type undoAction struct {
	undo, redo func()
}

// NewScript returns an empty script.
func NewScript() *Script {
	return &Script{}
}

// UndoScope opens a scope collecting edits into one undo step. Scopes nest;
// the outermost one decides the merge group. Call the returned function to
// close the scope.
func (s *Script) UndoScope(mergeGroup string) (end func()) {
	s.depth++
	if s.depth == 1 {
		s.open = &undoRecord{mergeGroup: mergeGroup}
	}
	ended := false
	return func() {
		if ended {
			return
		}
		ended = true
		s.depth--
		if s.depth > 0 {
			return
		}
		rec := s.open
		s.open = nil
		s.commit(rec)
	}
}

func (s *Script) commit(rec *undoRecord) {
	if len(rec.actions) == 0 {
		return
	}
	s.records = s.records[:s.index]
	if rec.mergeGroup != "" && s.index > 0 && s.records[s.index-1].mergeGroup == rec.mergeGroup {
		prev := s.records[s.index-1]
		prev.actions = append(prev.actions, rec.actions...)
		return
	}
	s.records = append(s.records, rec)
	s.index++
}

// record adds an edit to the open scope. Edits outside a scope, or made
// while undoing, are not recorded.
func (s *Script) record(undo, redo func()) {
	if s == nil || s.replay || s.open == nil {
		return
	}
	s.open.actions = append(s.open.actions, undoAction{undo: undo, redo: redo})
}

// Undo reverts the most recent step. It returns false if there is none.
func (s *Script) Undo() bool {
	if s.index == 0 || s.open != nil {
		return false
	}
	s.index--
	rec := s.records[s.index]
	s.replay = true
	for i := len(rec.actions) - 1; i >= 0; i-- {
		rec.actions[i].undo()
	}
	s.replay = false
	return true
}

// Redo reapplies the most recently undone step. It returns false if there
// is none.
func (s *Script) Redo() bool {
	if s.index >= len(s.records) || s.open != nil {
		return false
	}
	rec := s.records[s.index]
	s.index++
	s.replay = true
	for _, a := range rec.actions {
		a.redo()
	}
	s.replay = false
	return true
}

// UndoAvailable reports whether Undo would do anything.
func (s *Script) UndoAvailable() bool { return s.index > 0 && s.open == nil }

// RedoAvailable reports whether Redo would do anything.
func (s *Script) RedoAvailable() bool { return s.index < len(s.records) && s.open == nil }

// UndoCount returns the number of steps that can be undone.
func (s *Script) UndoCount() int { return s.index }
