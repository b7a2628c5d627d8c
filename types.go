package schemarpc

import "github.com/sirupsen/logrus"

// Severity expresses how a decode-time condition is treated.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseSeverity maps "ignore", "warn" and "error" to a Severity. Unknown
// values yield Error.
func ParseSeverity(s string) Severity {
	switch s {
	case "ignore":
		return Ignore
	case "warn":
		return Warn
	default:
		return Error
	}
}

func (s Severity) String() string {
	switch s {
	case Ignore:
		return "ignore"
	case Warn:
		return "warn"
	default:
		return "error"
	}
}

// DecodeOpt bundles request body decoding options.
type DecodeOpt struct {
	OnDuplicateKey Severity // Ignore, Warn (log) or Error (duplicate JSON keys).
	MaxDepth       int      // 0 disables the nesting limit.
	MaxBytes       int64    // 0 disables the size limit.

	// Logger receives duplicate-key warnings. nil means the standard logger.
	Logger logrus.FieldLogger
}
