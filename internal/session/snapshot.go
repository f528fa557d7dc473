package session

import "github.com/vitashop/vitashop/internal/models"

// Snapshot is a read-only copy of everything the presentation needs.
type Snapshot struct {
	State       State
	Profile     *models.Profile
	Draft       models.Draft
	Editing     bool
	Saving      bool
	Dirty       bool
	Uploading   bool
	FieldErrors models.ErrorSet
	General     string
	Notice      string

	Deletion      DeletionState
	DeletionError string
}

// Snapshot captures the current controller state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:         c.state,
		Profile:       c.profile.Clone(),
		Uploading:     c.uploading,
		FieldErrors:   c.errors.Clone(),
		General:       c.GeneralError(),
		Notice:        c.notice,
		Deletion:      c.deletion.State(),
		DeletionError: c.deletion.Error(),
	}

	if ed, ok := c.state.(Editing); ok {
		s.Draft = ed.Draft
		s.Editing = true
		s.Saving = ed.Saving
		s.Dirty = c.Dirty()
	}

	return s
}

// FieldError returns the snapshot's error for f.
func (s Snapshot) FieldError(f models.Field) string {
	return s.FieldErrors.Get(f)
}
