// Package walk enumerates delimited-data files under a directory tree.
//
// Walk runs in two phases: a sequential pass collects eligible paths,
// honoring extension filters and a .skimignore file at the root, then a
// bounded worker pool invokes the callback for each path. Callbacks run
// concurrently, so they must be safe to call from multiple goroutines.
package walk

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// IgnoreFile is the name of the per-tree ignore list. It uses gitignore
// syntax and is looked up at the walk root only.
const IgnoreFile = ".skimignore"

// DefaultExtensions are the file suffixes selected when Options.Extensions
// is empty. Compressed variants (data.csv.gz, data.tsv.zst, ...) match on
// the suffix under the compression extension.
var DefaultExtensions = []string{".csv", ".tsv"}

// compressExts are suffixes stripped before the extension check so that
// compressed files match their underlying format.
var compressExts = map[string]bool{
	".gz":   true,
	".bz2":  true,
	".xz":   true,
	".zst":  true,
	".zstd": true,
}

// Options configures a Walk.
type Options struct {
	// Extensions filters files by suffix (lowercase, with leading dot).
	// Empty means DefaultExtensions.
	Extensions []string

	// IncludeHidden selects dotfiles and descends into dot-directories.
	IncludeHidden bool

	// MaxFileSize skips files larger than this many bytes when positive.
	MaxFileSize int64

	// Workers bounds callback parallelism. Values below 1 mean NumCPU.
	Workers int
}

// WalkFunc is invoked once per selected file. Returning an error cancels
// the walk and the error is returned from Walk.
type WalkFunc func(ctx context.Context, path string) error

// Walk enumerates files under root and invokes fn for each one that passes
// the filters. Enumeration order is lexical but callback completion order
// is not defined.
func Walk(ctx context.Context, root string, opts Options, fn WalkFunc) error {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	// Load .skimignore if present. A malformed file is treated as absent.
	var ignore *gitignore.GitIgnore
	ignorePath := filepath.Join(root, IgnoreFile)
	if _, err := os.Stat(ignorePath); err == nil {
		ignore, _ = gitignore.CompileIgnoreFile(ignorePath)
	}

	// Phase 1: collect all eligible file paths.
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			// The root is walked even when its own name is hidden.
			if path != root && !opts.IncludeHidden && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		if !opts.IncludeHidden && isHidden(info.Name()) {
			return nil
		}

		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			return nil
		}

		if !matchesExt(info.Name(), exts) {
			return nil
		}

		if ignore != nil {
			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if ignore.MatchesPath(relPath) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	// Phase 2: invoke the callback with bounded parallelism.
	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range files {
		path := path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return fn(ctx, path)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Surface cancellation even when every started callback returned nil.
	if origCtx.Err() != nil {
		return origCtx.Err()
	}
	return nil
}

// matchesExt reports whether name carries one of the wanted suffixes,
// looking through a single compression extension.
func matchesExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	if ext := filepath.Ext(lower); compressExts[ext] {
		lower = strings.TrimSuffix(lower, ext)
	}
	ext := filepath.Ext(lower)
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

// isHidden reports whether a file or directory name starts with a dot.
// The special entries "." and ".." are not considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
