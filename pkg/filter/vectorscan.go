//go:build vectorscan && cgo

package filter

import (
	"fmt"

	"github.com/flier/gohs/hyperscan"
)

// vectorscanFilter scans rows against a compiled block database. Scratch
// space is owned by the filter, so instances are not safe for concurrent
// use.
type vectorscanFilter struct {
	db      hyperscan.BlockDatabase
	scratch *hyperscan.Scratch
}

func newVectorscan(patterns []*hyperscan.Pattern) (*vectorscanFilter, error) {
	db, err := hyperscan.NewBlockDatabase(patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern database: %w", err)
	}
	scratch, err := hyperscan.NewScratch(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to allocate scratch: %w", err)
	}
	return &vectorscanFilter{db: db, scratch: scratch}, nil
}

// Match reports whether any pattern in the database hits row. Scan errors
// count as no match.
func (v *vectorscanFilter) Match(row []byte) bool {
	matched := false
	onMatch := func(id uint, from, to uint64, flags uint, context interface{}) error {
		matched = true
		return nil
	}
	if err := v.db.Scan(row, v.scratch, onMatch, nil); err != nil {
		return false
	}
	return matched
}

// Close frees the scratch space and database.
func (v *vectorscanFilter) Close() error {
	if v.scratch != nil {
		if err := v.scratch.Free(); err != nil {
			return fmt.Errorf("failed to free scratch: %w", err)
		}
		v.scratch = nil
	}
	if v.db != nil {
		if err := v.db.Close(); err != nil {
			return fmt.Errorf("failed to close pattern database: %w", err)
		}
		v.db = nil
	}
	return nil
}
