// Package sheetchart turns uploaded spreadsheets into chart-ready series.
//
// The subpackages form a pipeline: codec decodes stored payloads, parser
// builds a Table from workbook bytes, series projects a Table onto an axis
// selection, history persists past uploads and session ties them together.
package sheetchart

// DefaultMinRowLength is the shortest body row kept by the parser.
// Shorter rows are treated as incomplete.
const DefaultMinRowLength = 2

// Options configures parsing behavior.
type Options struct {
	// RejectDuplicateHeaders makes the parser fail when two header cells are
	// identical. When false, column lookup resolves to the first match.
	RejectDuplicateHeaders bool
	// MinRowLength overrides the minimum body row length.
	// If nil, DefaultMinRowLength is used.
	MinRowLength *int
}

// DefaultOptions returns default parse options.
func DefaultOptions() Options {
	return Options{}
}

// RowLengthFloor returns the minimum length a body row must have to be kept.
func (o Options) RowLengthFloor() int {
	if o.MinRowLength != nil && *o.MinRowLength >= 0 {
		return *o.MinRowLength
	}
	return DefaultMinRowLength
}

// Logger is the logging interface accepted by the library packages.
type Logger interface {
	Printf(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

// Printf implements Logger.
func (NopLogger) Printf(string, ...any) {}
