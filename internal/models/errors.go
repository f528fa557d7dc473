package models

import (
	"maps"
	"slices"
	"strings"
)

// ErrorSet maps a field to a human-readable message. A field's presence
// means it is invalid; absence means valid or not yet checked.
type ErrorSet map[Field]string

// Empty reports whether no field is flagged.
func (e ErrorSet) Empty() bool {
	return len(e) == 0
}

// Has reports whether f is flagged.
func (e ErrorSet) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Get returns the message for f, or "".
func (e ErrorSet) Get(f Field) string {
	return e[f]
}

// Clone copies the set; a nil set clones to an empty one.
func (e ErrorSet) Clone() ErrorSet {
	out := make(ErrorSet, len(e))
	maps.Copy(out, e)
	return out
}

// Fields returns the flagged fields sorted by name.
func (e ErrorSet) Fields() []Field {
	return slices.Sorted(maps.Keys(e))
}

// Displayable keeps entries for editable fields and folds every other key
// into FieldGeneral as "key: message", so each message has a place on
// screen. Folded entries follow any existing general message, ordered by
// key.
func (e ErrorSet) Displayable() ErrorSet {
	out := make(ErrorSet, len(e))
	var extra []string
	for _, f := range e.Fields() {
		switch {
		case f == FieldGeneral:
		case slices.Contains(EditableFields, f):
			out[f] = e[f]
		default:
			extra = append(extra, string(f)+": "+e[f])
		}
	}

	general := e[FieldGeneral]
	if len(extra) > 0 {
		general = strings.TrimSpace(general + " " + strings.Join(extra, " "))
	}
	if general != "" {
		out[FieldGeneral] = general
	}
	return out
}
