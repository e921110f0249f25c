// Package adapter contains filesystem and rendering adapters for the clientguard CLI.
package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/boyter/gocodewalker"
	"golang.org/x/sync/errgroup"

	m "github.com/mouse-blink/clientguard/internal/model"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("root is not a directory")

// SelectArgs describes which files under Root are candidates for rewriting.
type SelectArgs struct {
	Root         m.Path
	Suffixes     []string // e.g. ".ts", ".tsx"
	ExcludedDirs []string // directory names skipped anywhere in the tree
	ExcludeGlobs []string // doublestar patterns matched against slash paths relative to Root
	// RespectIgnoreFiles makes the walker honour .gitignore and .ignore files.
	RespectIgnoreFiles bool
}

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning user projects. It hides direct `os` access so the
// workflow logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Select enumerates candidate files, sorted by path.
	Select(args SelectArgs) ([]m.Path, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile replaces the contents of a file.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// FileInfo returns metadata for a path so the domain can check existence or
	// keep file permissions on write.
	FileInfo(path m.Path) (os.FileInfo, error)

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Select walks Root with gocodewalker and keeps files whose name ends in one of the
// suffixes, skipping excluded directories and exclude globs.
func (a *LocalSourceFSAdapter) Select(args SelectArgs) ([]m.Path, error) {
	root := string(args.Root)
	if root == "" {
		root = "."
	}

	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	for _, pattern := range args.ExcludeGlobs {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	fileListQueue := make(chan *gocodewalker.File, 100)

	walker := gocodewalker.NewFileWalker(root, fileListQueue)
	walker.IncludeHidden = true
	walker.ExcludeDirectory = args.ExcludedDirs
	walker.IgnoreGitIgnore = !args.RespectIgnoreFiles
	walker.IgnoreIgnoreFile = !args.RespectIgnoreFiles

	var g errgroup.Group

	g.Go(walker.Start)

	var paths []m.Path

	for f := range fileListQueue {
		if !hasSuffix(f.Location, args.Suffixes) {
			continue
		}

		rel, err := filepath.Rel(root, f.Location)
		if err != nil {
			rel = f.Location
		}

		rel = filepath.ToSlash(rel)

		if inExcludedDir(rel, args.ExcludedDirs) || matchesAny(rel, args.ExcludeGlobs) {
			continue
		}

		paths = append(paths, m.Path(f.Location))
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths, nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

func hasSuffix(path string, suffixes []string) bool {
	lower := strings.ToLower(path)

	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}

	return false
}

// inExcludedDir reports whether any directory segment of the slash path rel is excluded.
func inExcludedDir(rel string, excluded []string) bool {
	segments := strings.Split(rel, "/")

	for _, segment := range segments[:len(segments)-1] {
		for _, dir := range excluded {
			if segment == dir {
				return true
			}
		}
	}

	return false
}

func matchesAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}

	return false
}
