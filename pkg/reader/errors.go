package reader

import "errors"

// Code classifies a decode failure.
type Code uint8

const (
	CodeNone Code = iota
	CodeInt
	CodeRange
	CodeFloat
	CodeBool
	CodeDate
	CodeDateTime
	CodeColumnCount
)

var codeNames = [...]string{
	CodeNone:        "none",
	CodeInt:         "invalid integer",
	CodeRange:       "out of range",
	CodeFloat:       "invalid float",
	CodeBool:        "invalid bool",
	CodeDate:        "invalid date",
	CodeDateTime:    "invalid datetime",
	CodeColumnCount: "column count mismatch",
}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}

// Sentinel parse errors. Preallocated so the hot path never formats.
var (
	ErrInt      = errors.New("skim: invalid integer")
	ErrRange    = errors.New("skim: integer out of range")
	ErrFloat    = errors.New("skim: invalid float")
	ErrBool     = errors.New("skim: invalid bool")
	ErrDate     = errors.New("skim: invalid date")
	ErrDateTime = errors.New("skim: invalid datetime")
)

// CodeOf maps a sentinel parse error to its Code. Unknown errors map to
// CodeNone for nil and CodeColumnCount is never returned here.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, ErrInt):
		return CodeInt
	case errors.Is(err, ErrRange):
		return CodeRange
	case errors.Is(err, ErrFloat):
		return CodeFloat
	case errors.Is(err, ErrBool):
		return CodeBool
	case errors.Is(err, ErrDate):
		return CodeDate
	case errors.Is(err, ErrDateTime):
		return CodeDateTime
	}
	return CodeNone
}

// ErrorInfo describes the most recent structural failure seen by a Reader.
// Only the last failure is retained. Line and Column are populated only
// when the corresponding ErrorPolicy flags are set, and stay zero otherwise.
type ErrorInfo struct {
	Code   Code
	Line   uint32
	Column uint16
}

// ErrorPolicy controls whether and how precisely a Reader records rows whose
// field count does not match the configured width. With Enabled false,
// malformed rows are delivered to the callback as-is and nothing is recorded.
// With Enabled true, malformed rows are skipped and ErrorInfo is updated.
type ErrorPolicy struct {
	Enabled     bool
	TrackLine   bool
	TrackColumn bool
}

// Preset error policies, cheapest first.
var (
	ErrorsOff  = ErrorPolicy{}
	ErrorsLine = ErrorPolicy{Enabled: true, TrackLine: true}
	ErrorsFull = ErrorPolicy{Enabled: true, TrackLine: true, TrackColumn: true}
)
