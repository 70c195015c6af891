package wizard

import (
	"fmt"

	"grievanceportal/internal/catalog"
	"grievanceportal/internal/model"
)

// Snapshot captures the session state for storage between requests. The
// caller owns the ID field.
func (c *Controller) Snapshot() model.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := model.SessionSnapshot{
		Language:   c.lang,
		Step:       c.step,
		Responses:  c.responses.Clone(),
		Transcript: append(model.Transcript(nil), c.transcript...),
		Record:     c.record,
		StartedAt:  c.startedAt,
		UpdatedAt:  c.updatedAt,
	}
	if c.dept != nil {
		snap.Department = c.dept.ID
	}
	return snap
}

// Restore rebuilds a controller from a snapshot, checking that the stored
// step, responses and transcript agree with each other and with the catalog.
func Restore(cat *catalog.Catalog, cls Classifier, snap model.SessionSnapshot, opts ...Option) (*Controller, error) {
	dept, err := cat.Department(snap.Department)
	if err != nil {
		return nil, err
	}
	if !cat.SupportsLanguage(snap.Language) {
		return nil, fmt.Errorf("%w: %w: %q", ErrCorruptState, catalog.ErrUnsupportedLanguage, snap.Language)
	}

	n := dept.Len()
	complete := snap.Record != nil
	wantTranscript := 2*snap.Step + 1
	switch {
	case snap.Step < 0 || snap.Step > n:
		return nil, fmt.Errorf("%w: step %d out of range", ErrCorruptState, snap.Step)
	case complete != (snap.Step == n):
		return nil, fmt.Errorf("%w: step %d disagrees with completion", ErrCorruptState, snap.Step)
	case len(snap.Responses) != snap.Step:
		return nil, fmt.Errorf("%w: %d responses at step %d", ErrCorruptState, len(snap.Responses), snap.Step)
	case len(snap.Transcript) != wantTranscript:
		return nil, fmt.Errorf("%w: %d transcript entries at step %d", ErrCorruptState, len(snap.Transcript), snap.Step)
	}
	for i, r := range snap.Responses {
		if r.QuestionID != dept.Questions[i].ID {
			return nil, fmt.Errorf("%w: response %d is for %q, want %q", ErrCorruptState, i, r.QuestionID, dept.Questions[i].ID)
		}
	}

	c := New(cat, cls, opts...)
	c.dept = dept
	c.lang = snap.Language
	c.step = snap.Step
	c.responses = snap.Responses.Clone()
	c.transcript = append(model.Transcript(nil), snap.Transcript...)
	c.record = snap.Record
	c.startedAt = snap.StartedAt
	c.updatedAt = snap.UpdatedAt
	return c, nil
}
