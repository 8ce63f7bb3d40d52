package sync

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/dirsync/pkg/errors"
	"github.com/sidkik/dirsync/pkg/hash"
)

// Mode selects the actions a pass takes for entries that don't match.
type Mode int

const (
	// Mirror creates and updates entries in the other tree so that it matches
	// the walked tree.
	Mirror Mode = iota

	// Purge deletes entries from the walked tree that don't exist in the
	// other tree.
	Purge
)

func (mode Mode) String() string {
	switch mode {
	case Mirror:
		return "mirror"
	case Purge:
		return "purge"
	}
	return "unknown"
}

// Stats counts the operations performed by a pass.
type Stats struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

// Add adds the counts in `other` to `stats`.
func (stats *Stats) Add(other Stats) {
	stats.Created += other.Created
	stats.Updated += other.Updated
	stats.Deleted += other.Deleted
	stats.Failed += other.Failed
}

// Mutations returns the number of filesystem changes made.
func (stats Stats) Mutations() int {
	return stats.Created + stats.Updated + stats.Deleted
}

// Synchronizer compares two trees and applies the changes necessary to make
// them match.
type Synchronizer struct {
	fs     afero.Fs
	hasher hash.Hasher
	log    logrus.FieldLogger
}

// New creates a Synchronizer. Every change and every failure is logged to
// `log`.
func New(fs afero.Fs, hasher hash.Hasher, log logrus.FieldLogger) *Synchronizer {
	return &Synchronizer{fs: fs, hasher: hasher, log: log}
}

// actions contains the operations a pass takes for each kind of difference.
// A nil action means that the difference is left alone.
type actions struct {
	// missingDir handles a directory without a counterpart. If it returns
	// true, the walk doesn't descend into the directory.
	missingDir func(Pair, *Stats) (skipContents bool, err error)

	missingFile func(Pair, *Stats) error

	// divergentFile handles a file whose counterpart is also a file.
	divergentFile func(Pair, *Stats) error

	// replaceCounterpart removes a counterpart of the wrong kind. The entry
	// is then handled as if it were missing.
	replaceCounterpart func(Pair, os.FileInfo, *Stats) error
}

// Sync walks `fromRoot` and compares each entry with the entry at the same
// relative path within `toRoot`.
// In Mirror mode, `toRoot` is updated to match `fromRoot`. In Purge mode,
// entries in `fromRoot` that are missing from `toRoot` are deleted.
// Errors are logged rather than returned, and don't stop the walk.
func (s *Synchronizer) Sync(fromRoot, toRoot string, mode Mode) Stats {
	s.log.WithFields(logrus.Fields{
		"mode": mode,
		"from": fromRoot,
		"to":   toRoot,
	}).Debug("Starting pass")

	if mode == Purge {
		return s.diffAndAct(fromRoot, toRoot, s.purgeActions())
	}
	return s.diffAndAct(fromRoot, toRoot, s.mirrorActions())
}

func (s *Synchronizer) mirrorActions() actions {
	return actions{
		missingDir: func(p Pair, stats *Stats) (bool, error) {
			if err := s.fs.MkdirAll(p.To, 0755); err != nil {
				return false, errors.WithContext(err, "create directory")
			}
			s.log.Infof("Folder created: %s", p.To)
			stats.Created++
			return false, nil
		},

		missingFile: func(p Pair, stats *Stats) error {
			if err := copyFile(s.fs, p.From, p.To); err != nil {
				return err
			}
			s.log.Infof("File created: %s", p.To)
			stats.Created++
			return nil
		},

		divergentFile: func(p Pair, stats *Stats) error {
			fromHash, err := s.hasher.Hash(p.From)
			if err != nil {
				return errors.WithContext(err, "hash source")
			}

			toHash, err := s.hasher.Hash(p.To)
			if err != nil {
				return errors.WithContext(err, "hash replica")
			}

			if fromHash == toHash {
				return nil
			}

			if err := copyFile(s.fs, p.From, p.To); err != nil {
				return err
			}
			s.log.Infof("File updated: %s", p.To)
			stats.Updated++
			return nil
		},

		replaceCounterpart: func(p Pair, counterpart os.FileInfo, stats *Stats) error {
			if err := s.fs.RemoveAll(p.To); err != nil {
				return errors.WithContext(err, "remove replaced entry")
			}

			if counterpart.IsDir() {
				s.log.Infof("Folder deleted: %s", p.To)
			} else {
				s.log.Infof("File removed: %s", p.To)
			}
			stats.Deleted++
			return nil
		},
	}
}

func (s *Synchronizer) purgeActions() actions {
	return actions{
		missingDir: func(p Pair, stats *Stats) (bool, error) {
			if err := s.fs.RemoveAll(p.From); err != nil {
				return false, errors.WithContext(err, "remove directory")
			}
			s.log.Infof("Folder deleted: %s", p.From)
			stats.Deleted++
			return true, nil
		},

		missingFile: func(p Pair, stats *Stats) error {
			if err := s.fs.Remove(p.From); err != nil {
				return errors.WithContext(err, "remove file")
			}
			s.log.Infof("File removed: %s", p.From)
			stats.Deleted++
			return nil
		},
	}
}

type entryKind int

const (
	kindOther entryKind = iota
	kindDir
	kindFile
)

func (s *Synchronizer) diffAndAct(fromRoot, toRoot string, act actions) (stats Stats) {
	rootInfo, err := s.fs.Stat(fromRoot)
	if err == nil && !rootInfo.IsDir() {
		err = errors.New("not a directory")
	}
	if err != nil {
		s.log.Errorf("Error processing directory '%s': %s", fromRoot, err)
		stats.Failed++
		return stats
	}

	walkRoot, err := s.resolveRoot(fromRoot)
	if err != nil {
		s.log.Errorf("Error processing directory '%s': %s", fromRoot, err)
		stats.Failed++
		return stats
	}

	// The walk function never returns an error other than SkipDir, so the
	// walk itself can't fail.
	_ = afero.Walk(s.fs, walkRoot, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			s.logEntryError(walkPath, info, err)
			stats.Failed++
			return nil
		}

		if walkPath == walkRoot {
			return nil
		}

		// Entries are reported relative to the root as it was given, rather
		// than the resolved symlink target.
		path, err := rebase(walkRoot, fromRoot, walkPath)
		if err != nil {
			s.logEntryError(walkPath, info, err)
			stats.Failed++
			return skipIfDir(info)
		}

		pair, err := newPair(fromRoot, toRoot, path)
		if err != nil {
			s.logEntryError(path, info, err)
			stats.Failed++
			return skipIfDir(info)
		}

		kind, err := s.kindOf(path, info)
		if err != nil {
			s.logEntryError(path, info, err)
			stats.Failed++
			return nil
		}

		switch kind {
		case kindDir:
			skipContents, err := s.visitDir(pair, act, &stats)
			if err != nil {
				s.log.Errorf("Error processing directory '%s': %s", path, err)
				stats.Failed++
			}
			if skipContents {
				return filepath.SkipDir
			}
		case kindFile:
			if err := s.visitFile(pair, act, &stats); err != nil {
				s.log.Errorf("Error processing file '%s': %s", path, err)
				stats.Failed++
			}
		default:
			s.log.WithField("mode", info.Mode().String()).Warnf(
				"Skipping unsupported file type: %s", path)
		}
		return nil
	})
	return stats
}

func (s *Synchronizer) visitDir(p Pair, act actions, stats *Stats) (bool, error) {
	counterpart, err := s.counterpart(p)
	if err != nil {
		return false, err
	}

	if counterpart != nil {
		if counterpart.IsDir() {
			return false, nil
		}

		// There's nothing to compare the directory's contents against.
		if act.replaceCounterpart == nil {
			return true, nil
		}

		if err := act.replaceCounterpart(p, counterpart, stats); err != nil {
			return false, err
		}
	}
	return act.missingDir(p, stats)
}

func (s *Synchronizer) visitFile(p Pair, act actions, stats *Stats) error {
	counterpart, err := s.counterpart(p)
	if err != nil {
		return err
	}

	switch {
	case counterpart == nil:
		return act.missingFile(p, stats)
	case counterpart.IsDir():
		if act.replaceCounterpart == nil {
			return nil
		}

		if err := act.replaceCounterpart(p, counterpart, stats); err != nil {
			return err
		}
		return act.missingFile(p, stats)
	case act.divergentFile != nil:
		return act.divergentFile(p, stats)
	}
	return nil
}

// resolveRoot returns the directory that the walk of `root` should start
// from. The walk doesn't follow symlinks, so a symlinked root is resolved to
// its target first.
func (s *Synchronizer) resolveRoot(root string) (string, error) {
	lstater, ok := s.fs.(afero.Lstater)
	if !ok {
		return root, nil
	}

	info, lstatCalled, err := lstater.LstatIfPossible(root)
	if err != nil {
		return "", errors.WithContext(err, "stat root")
	}

	if !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
		return root, nil
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", errors.WithContext(err, "resolve symlink")
	}
	return resolved, nil
}

// counterpart returns the FileInfo of the entry at `p.To`, or nil if it
// doesn't exist.
func (s *Synchronizer) counterpart(p Pair) (os.FileInfo, error) {
	info, err := s.fs.Stat(p.To)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithContext(err, "stat counterpart")
	}
	return info, nil
}

// kindOf classifies an entry from the walk. Symlinks to regular files are
// treated as files, so the target's contents are synced. Symlinks to
// directories aren't followed.
func (s *Synchronizer) kindOf(path string, info os.FileInfo) (entryKind, error) {
	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		target, err := s.fs.Stat(path)
		if err != nil {
			return kindOther, errors.WithContext(err, "resolve symlink")
		}
		if target.IsDir() {
			return kindOther, nil
		}
		mode = target.Mode()
	}

	switch {
	case mode.IsDir():
		return kindDir, nil
	case mode.IsRegular():
		return kindFile, nil
	}
	return kindOther, nil
}

func (s *Synchronizer) logEntryError(path string, info os.FileInfo, err error) {
	if info != nil && info.IsDir() {
		s.log.Errorf("Error processing directory '%s': %s", path, err)
	} else {
		s.log.Errorf("Error processing file '%s': %s", path, err)
	}
}

// skipIfDir returns SkipDir for directories. The walk aborts if SkipDir is
// returned for a file.
func skipIfDir(info os.FileInfo) error {
	if info.IsDir() {
		return filepath.SkipDir
	}
	return nil
}
