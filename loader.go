package assetbook

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// backupKeep is how many timestamped copies of the workbook are retained.
const backupKeep = 10

// LoadWorkbook opens, decodes and verifies the workbook file.
// A missing or unreadable file is a structural error: the caller must not
// proceed to publish anything derived from it.
func LoadWorkbook(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook file %q: %w", path, err)
	}
	defer f.Close()

	book, err := DecodeWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode workbook file %q: %w", path, err)
	}
	if err := book.Check(); err != nil {
		return nil, fmt.Errorf("workbook %q failed integrity check: %w", path, err)
	}
	return book, nil
}

// SaveWorkbook persists the workbook to path atomically: encode to a
// temporary file in the same directory, then rename over the target.
// A reader never observes a half-written workbook. The previous version is
// copied into a sibling backups/ directory first, pruned to the most
// recent backupKeep copies.
func SaveWorkbook(path string, book *Workbook) error {
	if err := book.Check(); err != nil {
		return fmt.Errorf("refusing to save workbook: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory for workbook %q: %w", path, err)
	}

	if err := backupWorkbook(path); err != nil {
		// A failed backup is worth knowing about but not worth losing the run over.
		fmt.Fprintf(os.Stderr, "warning, could not back up workbook: %v\n", err)
	}

	tmp, err := os.CreateTemp(dir, ".workbook-*.jsonl")
	if err != nil {
		return fmt.Errorf("could not create temporary workbook file: %w", err)
	}
	tmpName := tmp.Name()

	if err := EncodeWorkbook(tmp, book); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not encode workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not close temporary workbook file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not replace workbook file %q: %w", path, err)
	}
	return nil
}

// backupWorkbook copies the current workbook file, if any, into the
// backups/ directory with a timestamped name and prunes old copies.
func backupWorkbook(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // nothing to back up
		}
		return err
	}

	backupDir := filepath.Join(filepath.Dir(path), "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := fmt.Sprintf("%s-%s.jsonl", base, time.Now().UTC().Format("20060102-150405"))
	if err := os.WriteFile(filepath.Join(backupDir, name), content, 0644); err != nil {
		return err
	}

	return pruneBackups(backupDir, base)
}

// pruneBackups deletes all but the backupKeep most recent copies.
func pruneBackups(backupDir, base string) error {
	matches, err := filepath.Glob(filepath.Join(backupDir, base+"-*.jsonl"))
	if err != nil {
		return err
	}
	if len(matches) <= backupKeep {
		return nil
	}
	// Timestamped names sort chronologically.
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-backupKeep] {
		if err := os.Remove(old); err != nil {
			return err
		}
	}
	return nil
}
