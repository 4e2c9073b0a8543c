package diag

// Severity orders diagnostics. Only SevError fails a compilation.
type Severity uint8

const (
	// SevInfo marks dependent poisons and failed optional probes; they
	// point at a root cause reported elsewhere.
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// AtLeast reports whether s is min or more severe.
func (s Severity) AtLeast(min Severity) bool { return s >= min }
