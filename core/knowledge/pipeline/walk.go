package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sabhiram/go-gitignore"

	axonerrors "github.com/axon-graph/axon/core/errors"
)

// FileEntry is one accepted file handed from the walker to the structure
// builder and the parsers.
type FileEntry struct {
	Path    string // repo-relative, forward slashes, no leading "./"
	Content []byte
	Binary  bool
}

// Walk enumerates every file under root, honoring the union of every
// ancestor .gitignore plus any additional ignore file names passed in
// ignoreFileNames. Binary files are skipped with a warning rather than returned;
// unreadable paths are reported as per-file IOError and skipped, except for
// an unreadable root itself which is fatal.
func Walk(root string, ignoreFileNames []string) ([]FileEntry, []error) {
	var entries []FileEntry
	var errs []error

	matchers, err := loadIgnoreMatchers(root, ignoreFileNames)
	if err != nil {
		return nil, []error{axonerrors.New(axonerrors.KindIO, "walk", root, err)}
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, axonerrors.New(axonerrors.KindIO, "walk", path, err))
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if rel == ".git" || rel == ".axon" || isIgnored(matchers, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if isIgnored(matchers, rel, false) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			errs = append(errs, axonerrors.New(axonerrors.KindIO, "walk", rel, readErr))
			return nil
		}
		if looksBinary(content) {
			errs = append(errs, axonerrors.New(axonerrors.KindIO, "walk", rel, errBinaryContent))
			return nil
		}
		entries = append(entries, FileEntry{Path: rel, Content: content})
		return nil
	})
	if walkErr != nil {
		return nil, []error{axonerrors.New(axonerrors.KindIO, "walk", root, walkErr)}
	}

	return entries, errs
}

var errBinaryContent = errBinary{}

type errBinary struct{}

func (errBinary) Error() string { return "binary content skipped" }

// looksBinary applies the common null-byte heuristic over a content prefix.
func looksBinary(content []byte) bool {
	n := len(content)
	if n > 8192 {
		n = 8192
	}
	for i := 0; i < n; i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}

func loadIgnoreMatchers(root string, extraNames []string) ([]*ignore.GitIgnore, error) {
	names := append([]string{".gitignore"}, extraNames...)
	var matchers []*ignore.GitIgnore

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		for _, name := range names {
			p := filepath.Join(path, name)
			if _, statErr := os.Stat(p); statErr != nil {
				continue
			}
			m, loadErr := ignore.CompileIgnoreFile(p)
			if loadErr == nil {
				matchers = append(matchers, m)
			}
		}
		return nil
	})
	return matchers, err
}

func isIgnored(matchers []*ignore.GitIgnore, rel string, isDir bool) bool {
	for _, m := range matchers {
		if m.MatchesPath(rel) {
			return true
		}
		if isDir && m.MatchesPath(rel+"/") {
			return true
		}
	}
	return false
}
