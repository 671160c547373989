//go:build !vectorscan || !cgo

package filter

import "fmt"

// New selects an engine for cfg using the portable implementations.
// Builds with the vectorscan tag and CGO route New through a compiled
// pattern database instead.
func New(cfg Config) (Filter, error) {
	switch {
	case len(cfg.Keywords) == 0 && cfg.Pattern == "":
		return nil, fmt.Errorf("filter config selects nothing")
	case cfg.Pattern == "":
		return NewLiteral(cfg.Keywords)
	case len(cfg.Keywords) == 0:
		return NewRegexp(cfg.Pattern)
	}

	lit, err := NewLiteral(cfg.Keywords)
	if err != nil {
		return nil, err
	}
	re, err := NewRegexp(cfg.Pattern)
	if err != nil {
		lit.Close()
		return nil, err
	}
	return &anyOf{filters: []Filter{lit, re}}, nil
}

// Available reports whether the vectorscan engine is compiled in.
func Available() bool {
	return false
}

// EngineInfo names the active match engine.
func EngineInfo() string {
	return "portable (ahocorasick + regexp/regexp2)"
}
