package sqlcontext

// Location pinpoints a violation within the SQL text, when a checker can
// determine one (most structural checkers cannot; text-pattern checkers
// often can).
type Location struct {
	Line   int
	Column int
}

// ViolationInfo is immutable once constructed and appended to a
// ValidationResult (§3). Diagnostics carries auxiliary values a checker
// wants to surface (e.g. extracted offset/limit) without reusing the
// intra-pipeline signalling bag for anything but the documented
// early-return interaction.
type ViolationInfo struct {
	RiskLevel   RiskLevel
	Kind        string
	Message     string
	Suggestion  string
	Location    *Location
	Diagnostics map[string]any
}

// ValidationResult is built fresh per validate() call and discarded at
// call boundaries along with Details (§3, §5).
type ValidationResult struct {
	Violations []ViolationInfo
	Details    map[string]any
}

// NewResult returns an empty, passing ValidationResult.
func NewResult() *ValidationResult {
	return &ValidationResult{Details: map[string]any{}}
}

// Passed reports whether the result carries no violations (invariant 2,
// §8): Passed() is always the logical negation of len(Violations) > 0,
// never stored as an independent field that could drift out of sync.
func (r *ValidationResult) Passed() bool {
	return len(r.Violations) == 0
}

// AddViolation appends a violation, preserving emission order (§4.4.d).
func (r *ValidationResult) AddViolation(v ViolationInfo) {
	r.Violations = append(r.Violations, v)
}

// SetDetail and Detail implement the earlyReturn-only signalling bag
// described in §9.
func (r *ValidationResult) SetDetail(key string, value any) {
	if r.Details == nil {
		r.Details = map[string]any{}
	}
	r.Details[key] = value
}

func (r *ValidationResult) Detail(key string) (any, bool) {
	v, ok := r.Details[key]
	return v, ok
}

// EarlyReturn is the one documented signalling key (§4.3.B, §8 invariant 6).
const EarlyReturn = "earlyReturn"

func (r *ValidationResult) EarlyReturnSet() bool {
	v, ok := r.Detail(EarlyReturn)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ViolationsOf filters by kind.
func (r *ValidationResult) ViolationsOf(kind string) []ViolationInfo {
	var out []ViolationInfo
	for _, v := range r.Violations {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// HighestRisk returns the most severe risk level present, or (RiskInfo,
// false) if the result passed.
func (r *ValidationResult) HighestRisk() (RiskLevel, bool) {
	if len(r.Violations) == 0 {
		return RiskInfo, false
	}
	highest := r.Violations[0].RiskLevel
	for _, v := range r.Violations[1:] {
		if v.RiskLevel > highest {
			highest = v.RiskLevel
		}
	}
	return highest, true
}
