// Package source acquires contiguous read-only byte buffers for decoding.
//
// Plain files are memory-mapped; compressed files are inflated fully into
// memory; 7z archives yield their first delimited member. The decoder
// types never open files themselves, they are handed a Source's bytes and
// treat them as immutable.
package source

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Source owns one contiguous read-only buffer and its backing resources.
type Source struct {
	data   []byte
	mapped bool
}

// Open acquires a buffer for path, dispatching on the file extension:
// .gz, .bz2, .xz, .zst and .zstd are decompressed into memory, .7z yields
// the archive's first delimited member, and anything else is memory-mapped
// read-only.
func Open(path string) (*Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz", ".bz2", ".xz", ".zst", ".zstd":
		return openCompressed(path, ext)
	case ".7z":
		return openArchive(path)
	default:
		return openMapped(path)
	}
}

// FromBytes wraps an in-memory buffer without copying it.
func FromBytes(data []byte) *Source {
	return &Source{data: data}
}

// FromReader drains r fully into memory.
func FromReader(r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return &Source{data: data}, nil
}

// Data returns the buffer. Callers must not modify it and must not use it
// after Close.
func (s *Source) Data() []byte { return s.data }

// Len returns the buffer length in bytes.
func (s *Source) Len() int { return len(s.data) }

// Valid reports whether the Source holds a buffer. A zero-length buffer
// from an empty file is still valid.
func (s *Source) Valid() bool { return s != nil && s.data != nil }

// Close releases the mapping if there is one. Close is idempotent and the
// Source is invalid afterwards.
func (s *Source) Close() error {
	if s == nil || s.data == nil {
		return nil
	}
	data := s.data
	s.data = nil
	if s.mapped {
		s.mapped = false
		return unmapFile(data)
	}
	return nil
}

func openMapped(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return &Source{data: []byte{}}, nil
	}

	data, err := mapFile(f, info.Size())
	if err != nil {
		// Some filesystems refuse mappings; fall back to a plain read.
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return &Source{data: data}, nil
	}
	return &Source{data: data, mapped: true}, nil
}

func openCompressed(path, ext string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader
	switch ext {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case ".bz2":
		r = bzip2.NewReader(f)
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xr
	default:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return &Source{data: data}, nil
}

// memberSuffixes are preferred when picking a member out of an archive.
var memberSuffixes = []string{".csv", ".tsv", ".txt"}

// OpenArchive reads one named member out of a 7z archive.
func OpenArchive(path, member string) (*Source, error) {
	return readArchive(path, func(files []*sevenzip.File) *sevenzip.File {
		for _, f := range files {
			if f.Name == member {
				return f
			}
		}
		return nil
	})
}

func openArchive(path string) (*Source, error) {
	return readArchive(path, pickMember)
}

func readArchive(path string, pick func([]*sevenzip.File) *sevenzip.File) (*Source, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive %s: %w", path, err)
	}
	defer r.Close()

	member := pick(r.File)
	if member == nil {
		return nil, fmt.Errorf("archive %s has no matching member", path)
	}

	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archive member %s: %w", member.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive member %s: %w", member.Name, err)
	}
	return &Source{data: data}, nil
}

// pickMember returns the first member with a delimited-data suffix, or the
// first regular member when none matches.
func pickMember(files []*sevenzip.File) *sevenzip.File {
	var first *sevenzip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if first == nil {
			first = f
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		for _, want := range memberSuffixes {
			if ext == want {
				return f
			}
		}
	}
	return first
}
