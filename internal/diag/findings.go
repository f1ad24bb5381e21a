// =============================================================================
// internal/diag/findings.go - Typed finding aggregation
// =============================================================================
package diag

// Severity grades how serious a finding is.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one issue detected by a heuristic: a short kind tag, a
// severity, and a human-readable message.
type Finding struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Findings collects findings across all checks of a single report run. It is
// append-only and performs no deduplication: repeated triggers of the same
// heuristic all appear.
type Findings struct {
	items []Finding
}

// Add appends one finding.
func (f *Findings) Add(kind string, severity Severity, message string) {
	f.items = append(f.items, Finding{Kind: kind, Severity: severity, Message: message})
}

// Items returns the accumulated findings in insertion order. The returned
// slice is never nil, so reports serialize as [] rather than null.
func (f *Findings) Items() []Finding {
	if f.items == nil {
		return []Finding{}
	}
	return f.items
}
