package fo

// FindDuplicates groups files with identical content across the given
// roots. All roots are resolved up front, so a missing directory fails the
// call before any hashing starts; per-file hash failures are logged and
// skip only that file.
//
// Files are narrowed in three passes: size, then a cheap quick-hash, then
// the full fingerprint. Equal content always shares size and quick-hash, so
// the grouping is identical to fingerprinting everything — files that are
// unique at an earlier pass just never pay for a full read. Every file that
// reaches the fingerprint pass is upserted into the index cache.
//
// The returned map holds only fingerprints with two or more paths; paths
// within a group keep directory-walk order.
func (m *FileManager) FindDuplicates(directories []string) (map[string][]string, error) {
	var files []File
	for _, d := range directories {
		root, err := m.walker.ResolveDir(d)
		if err != nil {
			return nil, err
		}
		found, err := m.walker.FindFiles(root, true)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	// Pass 1: group by size.
	sizeCount := make(map[int64]int)
	for _, f := range files {
		sizeCount[f.Size]++
	}

	// Pass 2: quick-hash files that share a size.
	type quickKey struct {
		size int64
		sum  uint64
	}
	quickOf := make(map[string]quickKey, len(files))
	quickCount := make(map[quickKey]int)
	for _, f := range files {
		if sizeCount[f.Size] < 2 {
			continue
		}
		sum, err := m.hasher.QuickSum(f.Path)
		if err != nil {
			m.logger.Error("hashing failed, skipping file", "path", f.Path, "error", err)
			continue
		}
		k := quickKey{size: f.Size, sum: sum}
		quickOf[f.Path] = k
		quickCount[k]++
	}

	// Pass 3: fingerprint the remaining candidates and group.
	groups := make(map[string][]string)
	for _, f := range files {
		k, ok := quickOf[f.Path]
		if !ok || quickCount[k] < 2 {
			continue
		}
		fp, err := m.hasher.Fingerprint(f.Path)
		if err != nil {
			m.logger.Error("hashing failed, skipping file", "path", f.Path, "error", err)
			continue
		}
		groups[fp] = append(groups[fp], f.Path)
		m.indexFile(f, fp)
	}

	for fp, paths := range groups {
		if len(paths) < 2 {
			delete(groups, fp)
		}
	}

	m.logger.Info("duplicate scan complete", "files", len(files), "groups", len(groups))
	return groups, nil
}

// indexFile refreshes the index cache for a fingerprinted file. The cache
// is best-effort: a storage failure is logged and the scan continues.
func (m *FileManager) indexFile(f File, fingerprint string) {
	entry := IndexEntry{
		Path:        f.Path,
		Fingerprint: fingerprint,
		Size:        f.Size,
		ModTime:     f.ModTime,
		Type:        m.cat.TypeOf(f.Path),
		IndexedAt:   m.clock.Now(),
	}
	if err := m.store.UpsertIndexEntry(entry); err != nil {
		m.logger.Error("index update failed", "path", f.Path, "error", err)
	}
}
