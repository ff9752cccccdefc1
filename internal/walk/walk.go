// Package walk expands command-line paths into the ordered list of entries a
// hashing run will process.
package walk

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"parhash/internal/pipeline"
)

type Options struct {
	FollowSymlinks  bool
	ContinueOnError bool
	Excludes        []string
}

// Expand resolves args in order: directories recurse, duplicates collapse to
// their first occurrence, and symlinks either resolve or turn into skipped
// entries depending on FollowSymlinks. A path that cannot be stat'd still
// becomes an entry; opening it later surfaces the error file-scoped.
func Expand(args []string, opts Options) ([]pipeline.Entry, error) {
	globs, err := compileExcludes(opts.Excludes)
	if err != nil {
		return nil, err
	}

	var entries []pipeline.Entry
	seen := make(map[string]bool)

	add := func(e pipeline.Entry) {
		if seen[e.Path] {
			return
		}
		seen[e.Path] = true
		entries = append(entries, e)
	}

	for _, arg := range args {
		path := filepath.Clean(arg)
		if excluded(globs, path) {
			continue
		}

		info, err := os.Lstat(path)
		if err != nil {
			add(pipeline.Entry{Path: path})
			continue
		}

		if info.Mode()&fs.ModeSymlink != 0 {
			if !opts.FollowSymlinks {
				add(pipeline.Entry{Path: path, Skip: "symlink"})
				continue
			}
			info, err = os.Stat(path)
			if err != nil {
				add(pipeline.Entry{Path: path})
				continue
			}
			if info.IsDir() {
				if err := walkLinkedDir(path, opts, globs, add); err != nil {
					return nil, err
				}
				continue
			}
		}

		if info.IsDir() {
			if err := walkDir(path, opts, globs, add); err != nil {
				return nil, err
			}
			continue
		}

		add(pipeline.Entry{Path: path, Size: info.Size()})
	}
	return entries, nil
}

func walkDir(root string, opts Options, globs []glob.Glob, add func(pipeline.Entry)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if opts.ContinueOnError {
				slog.Warn("skipping unreadable path", "path", path, "error", err)
				return nil
			}
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if excluded(globs, path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !opts.FollowSymlinks {
				add(pipeline.Entry{Path: path, Skip: "symlink"})
				return nil
			}
			info, serr := os.Stat(path)
			if serr != nil {
				add(pipeline.Entry{Path: path})
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil // linked directories are not descended
			}
			add(pipeline.Entry{Path: path, Size: info.Size()})
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		info, ierr := d.Info()
		if ierr != nil {
			add(pipeline.Entry{Path: path})
			return nil
		}
		add(pipeline.Entry{Path: path, Size: info.Size()})
		return nil
	})
}

// walkLinkedDir expands a symlinked directory argument. WalkDir lstats its
// root and would present the symlink itself without descending, so the walk
// runs on the resolved target while rows keep the argument's name.
func walkLinkedDir(link string, opts Options, globs []glob.Glob, add func(pipeline.Entry)) error {
	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		add(pipeline.Entry{Path: link})
		return nil
	}
	return walkDir(target, opts, globs, func(e pipeline.Entry) {
		if rel, rerr := filepath.Rel(target, e.Path); rerr == nil {
			e.Path = filepath.Join(link, rel)
		}
		add(e)
	})
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pat := range patterns {
		g, err := glob.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q: %w", pat, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func excluded(globs []glob.Glob, path string) bool {
	if len(globs) == 0 {
		return false
	}
	base := filepath.Base(path)
	for _, g := range globs {
		if g.Match(base) || g.Match(path) {
			return true
		}
	}
	return false
}
