//go:build vectorscan && cgo

package filter

import (
	"fmt"
	"regexp"

	"github.com/flier/gohs/hyperscan"
)

// New compiles the whole config into one Hyperscan block database:
// keywords are quoted into literal patterns, the pattern goes in as
// written. Any database match accepts the row.
//
// Build with: go build -tags vectorscan (requires CGO and the
// Vectorscan/Hyperscan C library).
func New(cfg Config) (Filter, error) {
	patterns := make([]*hyperscan.Pattern, 0, len(cfg.Keywords)+1)
	for _, kw := range cfg.Keywords {
		p := hyperscan.NewPattern(regexp.QuoteMeta(kw), hyperscan.DotAll|hyperscan.SingleMatch)
		p.Id = len(patterns)
		patterns = append(patterns, p)
	}
	if cfg.Pattern != "" {
		p := hyperscan.NewPattern(cfg.Pattern, hyperscan.DotAll|hyperscan.MultiLine|hyperscan.SingleMatch)
		p.Id = len(patterns)
		patterns = append(patterns, p)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("filter config selects nothing")
	}
	return newVectorscan(patterns)
}

// Available reports whether the vectorscan engine is compiled in.
func Available() bool {
	return true
}

// EngineInfo names the active match engine.
func EngineInfo() string {
	return "vectorscan (gohs block database)"
}
