package fo

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// FileManager is the orchestration layer: it composes the walker,
// categorizer, hasher, mover, and journal store into the batch operations
// the CLI consumes. Execution is strictly sequential; each file's mutation
// and its journal append happen in program order so the journal's
// "append iff mutation succeeded" invariant holds.
type FileManager struct {
	store   Store
	walker  Walker
	cat     *Categorizer
	hasher  Hasher
	mover   Mover
	logger  Logger
	clock   Clock
	batchID string
}

// NewFileManager creates a FileManager with the provided dependencies.
// One batch ID is drawn from idgen and stamped into every journal entry
// this instance appends, so a run's actions can be correlated in history.
func NewFileManager(store Store, walker Walker, cat *Categorizer, hasher Hasher, mover Mover, logger Logger, clock Clock, idgen IDGenerator) *FileManager {
	return &FileManager{
		store:   store,
		walker:  walker,
		cat:     cat,
		hasher:  hasher,
		mover:   mover,
		logger:  logger,
		clock:   clock,
		batchID: idgen.New(),
	}
}

// journalAction records a completed mutation. Append failure cannot roll
// back the mutation that already happened; it is logged immediately because
// the action just became unreversible.
func (m *FileManager) journalAction(kind ActionKind, source, destination string) {
	entry := ActionEntry{
		Kind:        kind,
		Source:      source,
		Destination: destination,
		CreatedAt:   m.clock.Now(),
		Metadata:    m.batchID,
	}
	if _, err := m.store.AppendAction(entry); err != nil {
		m.logger.Error("journal append failed, action cannot be undone",
			"kind", string(kind), "source", source, "destination", destination, "error", err)
	}
}

// Sort groups the files under directory by the given dimension and, unless
// dryRun is set, moves each file into <directory>/<category>/. The returned
// grouping is identical for dry and live runs: files are grouped by their
// classification regardless of whether the subsequent move succeeds.
func (m *FileManager) Sort(directory, dimension string, recursive, dryRun bool) (map[string][]string, error) {
	root, err := m.walker.ResolveDir(directory)
	if err != nil {
		return nil, err
	}
	if !ValidDimension(dimension) {
		return nil, fmt.Errorf("%w: unknown sort dimension %q", ErrInvalidArgument, dimension)
	}

	files, err := m.walker.FindFiles(root, recursive)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]string)
	for _, f := range files {
		category := m.cat.Classify(f, dimension)
		groups[category] = append(groups[category], f.Path)

		if dryRun {
			continue
		}

		target := filepath.Join(root, category, filepath.Base(f.Path))
		if f.Path == target {
			// Already sorted into its category directory.
			continue
		}
		final, err := m.mover.Move(f.Path, target)
		if err != nil {
			m.logger.Error("move failed", "path", f.Path, "error", err)
			continue
		}
		m.journalAction(KindMove, f.Path, final)
	}

	m.logger.Info("sort complete", "dimension", dimension, "files", len(files),
		"categories", len(groups), "dry_run", dryRun)
	return groups, nil
}

// RenameBatch applies a regular-expression substitution to every file name
// under directory and returns old path → proposed new path for the files
// whose names change. Live runs perform the renames through the Mover, so a
// conflicting proposed name may gain a collision suffix on disk.
// A malformed pattern fails the whole call before anything is touched.
func (m *FileManager) RenameBatch(directory, pattern, replacement string, recursive, dryRun bool) (map[string]string, error) {
	root, err := m.walker.ResolveDir(directory)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrInvalidArgument, pattern, err)
	}

	files, err := m.walker.FindFiles(root, recursive)
	if err != nil {
		return nil, err
	}

	renamed := make(map[string]string)
	for _, f := range files {
		oldName := filepath.Base(f.Path)
		newName := re.ReplaceAllString(oldName, replacement)
		if newName == oldName {
			continue
		}

		newPath := filepath.Join(filepath.Dir(f.Path), newName)
		renamed[f.Path] = newPath

		if dryRun {
			continue
		}
		final, err := m.mover.Move(f.Path, newPath)
		if err != nil {
			m.logger.Error("rename failed", "path", f.Path, "error", err)
			continue
		}
		m.journalAction(KindRename, f.Path, final)
	}

	m.logger.Info("rename complete", "pattern", pattern, "renamed", len(renamed), "dry_run", dryRun)
	return renamed, nil
}

// MoveRule pairs a file-name pattern with a destination directory.
type MoveRule struct {
	Pattern     string
	Destination string
}

// MoveByRules moves each file whose name matches a rule's pattern into that
// rule's destination directory. Rules are tried in the caller-supplied order
// and the first match wins. A rule with an invalid pattern is skipped with a
// warning; it never fails the call. The result maps each rule's destination
// (as supplied) to the files it claimed.
func (m *FileManager) MoveByRules(directory string, rules []MoveRule, recursive, dryRun bool) (map[string][]string, error) {
	root, err := m.walker.ResolveDir(directory)
	if err != nil {
		return nil, err
	}

	type compiledRule struct {
		re   *regexp.Regexp
		dest string
	}
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			m.logger.Warn("skipping rule with invalid pattern", "pattern", r.Pattern, "error", err)
			continue
		}
		compiled = append(compiled, compiledRule{re: re, dest: r.Destination})
	}

	files, err := m.walker.FindFiles(root, recursive)
	if err != nil {
		return nil, err
	}

	moved := make(map[string][]string)
	for _, f := range files {
		name := filepath.Base(f.Path)
		for _, r := range compiled {
			if !r.re.MatchString(name) {
				continue
			}
			moved[r.dest] = append(moved[r.dest], f.Path)

			if !dryRun {
				destDir, err := filepath.Abs(r.dest)
				if err != nil {
					m.logger.Error("resolving destination failed", "destination", r.dest, "error", err)
					break
				}
				final, err := m.mover.Move(f.Path, filepath.Join(destDir, name))
				if err != nil {
					m.logger.Error("move failed", "path", f.Path, "error", err)
					break
				}
				m.journalAction(KindMove, f.Path, final)
			}
			break // first matching rule wins
		}
	}

	m.logger.Info("move by rules complete", "rules", len(compiled), "dry_run", dryRun)
	return moved, nil
}

// tempMarkers is the fixed set of name prefixes/suffixes that mark a file
// as temporary.
var tempMarkers = []string{"~$", ".tmp", ".temp", ".swp", ".bak", ".old", ".cache"}

func isTempName(name string) bool {
	name = strings.ToLower(name)
	for _, marker := range tempMarkers {
		if strings.HasPrefix(name, marker) || strings.HasSuffix(name, marker) {
			return true
		}
	}
	return false
}

// CleanTempFiles deletes temporary files under directory. Dry runs return
// the would-delete candidates; live runs return the paths actually deleted.
func (m *FileManager) CleanTempFiles(directory string, recursive, dryRun bool) ([]string, error) {
	root, err := m.walker.ResolveDir(directory)
	if err != nil {
		return nil, err
	}
	files, err := m.walker.FindFiles(root, recursive)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, f := range files {
		if !isTempName(filepath.Base(f.Path)) {
			continue
		}
		if dryRun {
			removed = append(removed, f.Path)
			continue
		}
		if err := m.mover.Remove(f.Path); err != nil {
			m.logger.Error("delete failed", "path", f.Path, "error", err)
			continue
		}
		removed = append(removed, f.Path)
		m.journalAction(KindDelete, f.Path, "")
	}

	m.logger.Info("temp cleanup complete", "removed", len(removed), "dry_run", dryRun)
	return removed, nil
}

// CleanOldFiles deletes files whose modification time is older than the
// given number of days. days must be non-negative.
func (m *FileManager) CleanOldFiles(directory string, days int, recursive, dryRun bool) ([]string, error) {
	root, err := m.walker.ResolveDir(directory)
	if err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, fmt.Errorf("%w: days must be non-negative, got %d", ErrInvalidArgument, days)
	}

	files, err := m.walker.FindFiles(root, recursive)
	if err != nil {
		return nil, err
	}

	cutoff := m.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)

	var removed []string
	for _, f := range files {
		if !f.ModTime.Before(cutoff) {
			continue
		}
		if dryRun {
			removed = append(removed, f.Path)
			continue
		}
		if err := m.mover.Remove(f.Path); err != nil {
			m.logger.Error("delete failed", "path", f.Path, "error", err)
			continue
		}
		removed = append(removed, f.Path)
		m.journalAction(KindDelete, f.Path, "")
	}

	m.logger.Info("old-file cleanup complete", "days", days, "removed", len(removed), "dry_run", dryRun)
	return removed, nil
}

// ActionHistory returns the most recent journal entries, newest first,
// without consuming them. limit <= 0 returns the full journal.
func (m *FileManager) ActionHistory(limit int) ([]ActionEntry, error) {
	entries, err := m.store.MostRecentActions(limit)
	if err != nil {
		return nil, fmt.Errorf("listing action history: %w", err)
	}
	return entries, nil
}
