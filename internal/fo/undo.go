package fo

import (
	"fmt"
	"path/filepath"
)

// UndoOutcome reports what happened to one journal entry during an undo.
type UndoOutcome struct {
	Entry    ActionEntry
	Restored bool
	Err      error // nil when Restored; set for failed reversals and unrestorable deletes
}

// UndoResult is the aggregate of one Undo invocation. Succeeded is true if
// at least one entry was actually reversed; Outcomes carries the per-entry
// detail in the order the entries were processed (newest first).
type UndoResult struct {
	Succeeded bool
	Outcomes  []UndoOutcome
}

// Undo reverses the most recent count journal entries, newest first.
// count <= 0 reverses everything.
//
// The engine is best-effort and never short-circuits: a failed reversal is
// logged and processing continues with the next entry; successes are not
// rolled back when a later entry fails. Moves and renames are reversed by
// moving the file from its recorded destination back to its exact original
// path (no collision renaming — if the original path is occupied the
// reversal fails and the entry stays in the journal). Deletes cannot be
// reversed; they are reported and dropped from the journal so they are not
// retried forever.
func (m *FileManager) Undo(count int) (UndoResult, error) {
	total, err := m.store.CountActions()
	if err != nil {
		return UndoResult{}, fmt.Errorf("reading journal length: %w", err)
	}
	n := count
	if n <= 0 || n > total {
		n = total
	}
	if n == 0 {
		m.logger.Info("nothing to undo")
		return UndoResult{}, nil
	}

	entries, err := m.store.MostRecentActions(n)
	if err != nil {
		return UndoResult{}, fmt.Errorf("reading journal: %w", err)
	}

	var result UndoResult
	var remove []int64
	for _, e := range entries {
		outcome := UndoOutcome{Entry: e}

		switch e.Kind {
		case KindMove, KindRename:
			if err := m.reverseMove(e); err != nil {
				outcome.Err = err
				m.logger.Error("undo failed", "id", e.ID, "kind", string(e.Kind),
					"source", e.Source, "destination", e.Destination, "error", err)
			} else {
				outcome.Restored = true
				result.Succeeded = true
				remove = append(remove, e.ID)
				m.logger.Info("action undone", "id", e.ID, "kind", string(e.Kind),
					"restored", e.Source)
			}
		case KindDelete:
			// Removed from the journal anyway so it is not retried forever.
			outcome.Err = fmt.Errorf("delete of %s cannot be undone", e.Source)
			remove = append(remove, e.ID)
			m.logger.Warn("cannot undo delete, dropping entry", "id", e.ID, "path", e.Source)
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	if len(remove) > 0 {
		if err := m.store.DeleteActions(remove); err != nil {
			m.logger.Error("removing undone entries from journal failed", "error", err)
			return result, fmt.Errorf("pruning journal: %w", err)
		}
	}
	return result, nil
}

// reverseMove puts a moved or renamed file back on its original path.
// MoveExact recreates the original parent directories but refuses to
// overwrite: an occupied original path fails the reversal.
func (m *FileManager) reverseMove(e ActionEntry) error {
	if e.Destination == "" {
		return fmt.Errorf("entry %d has no destination", e.ID)
	}
	if err := m.mover.MoveExact(e.Destination, e.Source); err != nil {
		return fmt.Errorf("restoring %s: %w", filepath.Base(e.Source), err)
	}
	return nil
}
