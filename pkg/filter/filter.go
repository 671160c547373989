// Package filter matches raw rows against keyword and pattern filters.
//
// The portable engines build everywhere; with the vectorscan build tag and
// CGO, New compiles the whole config into a Hyperscan block database
// instead. Filters are not safe for concurrent use; create one per
// goroutine.
package filter

import (
	"fmt"
	"regexp"
	"time"

	"github.com/cloudflare/ahocorasick"
	"github.com/dlclark/regexp2"
)

// Filter reports whether a raw row matches.
type Filter interface {
	Match(row []byte) bool
	Close() error
}

// Config selects the filter inputs for New. Keywords match literally
// (any-of); Pattern is a regular expression. Both set means either
// accepts the row.
type Config struct {
	Keywords []string
	Pattern  string
}

// Literal matches rows containing any of a fixed keyword set.
type Literal struct {
	matcher *ahocorasick.Matcher
}

// NewLiteral builds an Aho-Corasick any-keyword filter.
func NewLiteral(keywords []string) (*Literal, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords provided")
	}
	return &Literal{matcher: ahocorasick.NewStringMatcher(keywords)}, nil
}

// Match reports whether row contains any keyword.
func (l *Literal) Match(row []byte) bool {
	return l.matcher.Contains(row)
}

// Close releases resources (no-op for literal matching).
func (l *Literal) Close() error {
	return nil
}

// Regexp matches rows against one pattern. Compilation tries the standard
// engine first and falls back to regexp2 for syntax it rejects.
type Regexp struct {
	std *regexp.Regexp
	ext *regexp2.Regexp
}

// NewRegexp compiles pattern with regexp, then regexp2 in RE2 mode, then
// regexp2 in Perl-compatible mode. regexp2 matches run under a timeout to
// prevent catastrophic backtracking.
func NewRegexp(pattern string) (*Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("no pattern provided")
	}
	if re, err := regexp.Compile(pattern); err == nil {
		return &Regexp{std: re}, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.RE2|regexp2.Multiline)
	if err != nil {
		re, err = regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
		}
	}
	re.MatchTimeout = 5 * time.Second
	return &Regexp{ext: re}, nil
}

// Match reports whether row matches the pattern. A regexp2 timeout counts
// as no match.
func (r *Regexp) Match(row []byte) bool {
	if r.std != nil {
		return r.std.Match(row)
	}
	ok, err := r.ext.MatchString(string(row))
	return err == nil && ok
}

// Close releases resources (no-op for regexp matching).
func (r *Regexp) Close() error {
	return nil
}

// anyOf accepts a row when any member filter does.
type anyOf struct {
	filters []Filter
}

func (a *anyOf) Match(row []byte) bool {
	for _, f := range a.filters {
		if f.Match(row) {
			return true
		}
	}
	return false
}

func (a *anyOf) Close() error {
	var first error
	for _, f := range a.filters {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
