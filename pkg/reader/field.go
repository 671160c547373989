package reader

import (
	"math"
	"strconv"
	"time"
)

// Field is a zero-copy view of one field's bytes inside the source buffer.
// The view stays valid for the lifetime of the buffer it points into; a
// Field is 24 bytes and meant to be passed by value.
type Field struct {
	raw []byte
}

// NewField wraps raw without copying.
func NewField(raw []byte) Field {
	return Field{raw: raw}
}

// Bytes returns the underlying span. Never allocates.
func (f Field) Bytes() []byte { return f.raw }

// String copies the span into a string.
func (f Field) String() string { return string(f.raw) }

// Len returns the span length in bytes.
func (f Field) Len() int { return len(f.raw) }

// IsEmpty reports whether the span is zero-length.
func (f Field) IsEmpty() bool { return len(f.raw) == 0 }

// IsNull reports whether the span spells null under p.
func (f Field) IsNull(p NullPolicy) bool { return p.Match(f.raw) }

// parseUint scans the leading decimal run of b. digits is the number of
// bytes consumed; overflow is set when the run no longer fits a uint64,
// in which case scanning continues but n stops updating.
func parseUint(b []byte) (n uint64, digits int, overflow bool) {
	for digits < len(b) {
		d := b[digits] - '0'
		if d > 9 {
			break
		}
		if !overflow {
			if n > (math.MaxUint64-uint64(d))/10 {
				overflow = true
			} else {
				n = n*10 + uint64(d)
			}
		}
		digits++
	}
	return n, digits, overflow
}

// Int parses the full span as a signed decimal integer. A leading '-' is
// accepted, '+' is not. Any unconsumed byte yields ErrInt; a numeral whose
// magnitude exceeds int64 yields ErrRange even when followed by garbage.
func (f Field) Int() (int64, error) {
	b := f.raw
	neg := false
	if len(b) > 0 && b[0] == '-' {
		neg = true
		b = b[1:]
	}
	n, digits, overflow := parseUint(b)
	if digits == 0 {
		return 0, ErrInt
	}
	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}
	if overflow || n > limit {
		return 0, ErrRange
	}
	if digits != len(b) {
		return 0, ErrInt
	}
	if neg {
		return -int64(n - 1) - 1, nil
	}
	return int64(n), nil
}

// Uint parses the full span as an unsigned decimal integer. No sign byte is
// accepted.
func (f Field) Uint() (uint64, error) {
	b := f.raw
	n, digits, overflow := parseUint(b)
	if digits == 0 {
		return 0, ErrInt
	}
	if overflow {
		return 0, ErrRange
	}
	if digits != len(b) {
		return 0, ErrInt
	}
	return n, nil
}

// floatFast handles [sign] digits ['.' digits] without allocating. ok is
// false when the span has any other shape, or when the integer part runs
// past 19 digits and needs the exact slow path.
func (f Field) floatFast() (v float64, ok bool) {
	b := f.raw
	if len(b) == 0 {
		return 0, false
	}
	i := 0
	neg := false
	switch b[0] {
	case '-':
		neg = true
		i++
	case '+':
		i++
	}
	if i >= len(b) {
		return 0, false
	}
	intStart := i
	var intPart uint64
	for i < len(b) && b[i]-'0' <= 9 {
		intPart = intPart*10 + uint64(b[i]-'0')
		i++
	}
	digits := i - intStart
	if digits > 19 {
		return 0, false
	}
	x := float64(intPart)
	if i < len(b) && b[i] == '.' {
		i++
		frac := 0.0
		scale := 0.1
		for i < len(b) && b[i]-'0' <= 9 {
			frac += float64(b[i]-'0') * scale
			scale *= 0.1
			i++
			digits++
		}
		x += frac
	}
	if neg {
		x = -x
	}
	return x, i == len(b) && digits > 0
}

// Float parses the span as a float64. Plain decimal forms take the fast
// path; exponents, hex floats, inf and NaN fall back to strconv.ParseFloat,
// which allocates once for the string conversion.
func (f Field) Float() (float64, error) {
	if v, ok := f.floatFast(); ok {
		return v, nil
	}
	v, err := strconv.ParseFloat(string(f.raw), 64)
	if err != nil {
		return 0, ErrFloat
	}
	return v, nil
}

// Bool parses the enumerated spellings: 1/t/T/y/Y, true/True/TRUE and
// yes/Yes/YES are true; 0/f/F/n/N, false/False/FALSE and no/No/NO are
// false. Other casings are ErrBool.
func (f Field) Bool() (bool, error) {
	b := f.raw
	switch len(b) {
	case 1:
		switch b[0] {
		case '1', 't', 'T', 'y', 'Y':
			return true, nil
		case '0', 'f', 'F', 'n', 'N':
			return false, nil
		}
	case 2:
		if string(b) == "no" || string(b) == "No" || string(b) == "NO" {
			return false, nil
		}
	case 3:
		if string(b) == "yes" || string(b) == "Yes" || string(b) == "YES" {
			return true, nil
		}
	case 4:
		if string(b) == "true" || string(b) == "True" || string(b) == "TRUE" {
			return true, nil
		}
	case 5:
		if string(b) == "false" || string(b) == "False" || string(b) == "FALSE" {
			return false, nil
		}
	}
	return false, ErrBool
}

// decimal parses b as fixed-width unsigned decimal digits.
func decimal(b []byte) (int, bool) {
	n := 0
	for _, c := range b {
		c -= '0'
		if c > 9 {
			return 0, false
		}
		n = n*10 + int(c)
	}
	return n, true
}

func daysIn(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	}
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 29
	}
	return 28
}

// dateParts reads YYYY-MM-DD from the first 10 bytes and checks calendar
// validity. Bytes past offset 10 are ignored.
func dateParts(b []byte) (year, month, day int, ok bool) {
	if len(b) < 10 || b[4] != '-' || b[7] != '-' {
		return 0, 0, 0, false
	}
	year, okY := decimal(b[0:4])
	month, okM := decimal(b[5:7])
	day, okD := decimal(b[8:10])
	if !okY || !okM || !okD {
		return 0, 0, 0, false
	}
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// Date parses YYYY-MM-DD at the start of the span into a UTC midnight
// time.Time. The date must be calendar-valid; bytes past the first 10 are
// ignored.
func (f Field) Date() (time.Time, error) {
	year, month, day, ok := dateParts(f.raw)
	if !ok {
		return time.Time{}, ErrDate
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// DateTime parses YYYY-MM-DD HH:MM:SS (or with 'T' as the separator) at the
// start of the span into a UTC time.Time. A malformed date portion in a
// span of at least 19 bytes reports ErrDate; a second of 60 rolls into the
// next minute. Bytes past the first 19 are ignored.
func (f Field) DateTime() (time.Time, error) {
	b := f.raw
	if len(b) < 19 {
		return time.Time{}, ErrDateTime
	}
	year, month, day, ok := dateParts(b)
	if !ok {
		return time.Time{}, ErrDate
	}
	if b[10] != ' ' && b[10] != 'T' {
		return time.Time{}, ErrDateTime
	}
	if b[13] != ':' || b[16] != ':' {
		return time.Time{}, ErrDateTime
	}
	hour, okH := decimal(b[11:13])
	minute, okM := decimal(b[14:16])
	second, okS := decimal(b[17:19])
	if !okH || !okM || !okS {
		return time.Time{}, ErrDateTime
	}
	if hour > 23 || minute > 59 || second > 60 {
		return time.Time{}, ErrDateTime
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// IntOr returns the parsed value or def on any parse failure.
func (f Field) IntOr(def int64) int64 {
	v, err := f.Int()
	if err != nil {
		return def
	}
	return v
}

// UintOr returns the parsed value or def on any parse failure.
func (f Field) UintOr(def uint64) uint64 {
	v, err := f.Uint()
	if err != nil {
		return def
	}
	return v
}

// FloatOr returns the parsed value or def on any parse failure.
func (f Field) FloatOr(def float64) float64 {
	v, err := f.Float()
	if err != nil {
		return def
	}
	return v
}

// BoolOr returns the parsed value or def on any parse failure.
func (f Field) BoolOr(def bool) bool {
	v, err := f.Bool()
	if err != nil {
		return def
	}
	return v
}

// OptInt parses null-aware: ok is false when the span is null under p or
// does not parse.
func (f Field) OptInt(p NullPolicy) (int64, bool) {
	if p.Match(f.raw) {
		return 0, false
	}
	v, err := f.Int()
	return v, err == nil
}

// OptUint parses null-aware: ok is false when the span is null under p or
// does not parse.
func (f Field) OptUint(p NullPolicy) (uint64, bool) {
	if p.Match(f.raw) {
		return 0, false
	}
	v, err := f.Uint()
	return v, err == nil
}

// OptFloat parses null-aware: ok is false when the span is null under p or
// does not parse.
func (f Field) OptFloat(p NullPolicy) (float64, bool) {
	if p.Match(f.raw) {
		return 0, false
	}
	v, err := f.Float()
	return v, err == nil
}

// OptBool parses null-aware: ok is false when the span is null under p or
// does not parse.
func (f Field) OptBool(p NullPolicy) (bool, bool) {
	if p.Match(f.raw) {
		return false, false
	}
	v, err := f.Bool()
	return v, err == nil
}

// OptDate parses null-aware: ok is false when the span is null under p or
// does not parse.
func (f Field) OptDate(p NullPolicy) (time.Time, bool) {
	if p.Match(f.raw) {
		return time.Time{}, false
	}
	v, err := f.Date()
	return v, err == nil
}

// OptDateTime parses null-aware: ok is false when the span is null under p
// or does not parse.
func (f Field) OptDateTime(p NullPolicy) (time.Time, bool) {
	if p.Match(f.raw) {
		return time.Time{}, false
	}
	v, err := f.DateTime()
	return v, err == nil
}
