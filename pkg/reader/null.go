package reader

// NullPolicy selects which textual forms decode as null. Matching is exact
// byte comparison against the enumerated spellings; no other casings or
// whitespace variants qualify.
type NullPolicy struct {
	Empty bool // zero-length field
	NA    bool // NA, N/A, n/a
	Null  bool // null, NULL
	None  bool // None, none, NONE
	Dash  bool // -
}

// Preset null policies.
var (
	NullOff      = NullPolicy{}
	NullStrict   = NullPolicy{Empty: true}
	NullStandard = NullPolicy{Empty: true, NA: true, Null: true}
	NullLenient  = NullPolicy{Empty: true, NA: true, Null: true, None: true, Dash: true}
)

// Match reports whether raw spells null under the policy.
func (p NullPolicy) Match(raw []byte) bool {
	switch len(raw) {
	case 0:
		return p.Empty
	case 1:
		return p.Dash && raw[0] == '-'
	case 2:
		return p.NA && string(raw) == "NA"
	case 3:
		return p.NA && (string(raw) == "N/A" || string(raw) == "n/a")
	case 4:
		if p.Null && (string(raw) == "null" || string(raw) == "NULL") {
			return true
		}
		return p.None && (string(raw) == "None" || string(raw) == "none" || string(raw) == "NONE")
	}
	return false
}
