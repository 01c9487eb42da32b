package lighttool

// SelectionItem is a selected location with the inspection of its spot
// light cone angle. Inspection is nil when the location has no registered
// spot light.
type SelectionItem struct {
	Path       Path
	Inspection *Result
}

// Editable reports whether the item's cone angle can be edited.
func (s SelectionItem) Editable() bool {
	return s.Inspection != nil && s.Inspection.Editable()
}

// sharedEditTarget returns the plug an edit through r would write to when
// it is shared between locations, or nil. Upstream sources edited through
// an edit scope get a row per location, so they are never shared.
func sharedEditTarget(r *Result) Plug {
	if r == nil || !r.Editable() || r.SourceType() == SourceUpstream {
		return nil
	}
	return r.Source()
}

// dedupeSelection drops items whose editable inspection shares a source
// with an earlier item, so each source is edited once. Within a group
// sharing a source the last selected path survives, otherwise the first.
// The item for last is moved to the end. The second result reports whether
// last was found.
func dedupeSelection(items []SelectionItem, last Path) ([]SelectionItem, bool) {
	keep := make([]bool, len(items))
	firstBySource := make(map[Plug]int)
	for i, item := range items {
		src := sharedEditTarget(item.Inspection)
		if src == nil {
			keep[i] = true
			continue
		}
		j, seen := firstBySource[src]
		if !seen {
			firstBySource[src] = i
			keep[i] = true
			continue
		}
		if last != nil && item.Path.Equal(last) {
			keep[j] = false
			keep[i] = true
			firstBySource[src] = i
		}
	}

	out := make([]SelectionItem, 0, len(items))
	for i, item := range items {
		if keep[i] {
			out = append(out, item)
		}
	}

	if last == nil {
		return out, false
	}
	for i := range out {
		if out[i].Path.Equal(last) {
			anchor := out[i]
			copy(out[i:], out[i+1:])
			out[len(out)-1] = anchor
			return out, true
		}
	}
	return out, false
}
