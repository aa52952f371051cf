package report

import "errors"

// Writer renders a project summary to some destination format.
//
// Design decision: Writers take the assembled Summary rather than the
// workspace handle so rendering never touches the database. BuildSummary
// runs the queries once; any number of writers can then render the same
// snapshot.
type Writer interface {
	// Write renders the summary and reports the bytes written.
	Write(summary *Summary) (int, error)
}

// MultiWriter fans a summary out to several writers, typically the
// terminal and a report file. Every writer receives the summary even when
// an earlier one fails, so one broken destination does not lose the
// others; the errors are combined afterwards.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that renders to all provided writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the summary to every configured writer and returns the
// total bytes written across all of them.
func (m *MultiWriter) Write(summary *Summary) (int, error) {
	var total int
	var errs []error
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// maxPackageRows caps the package listing in rendered reports. Container
// images routinely carry hundreds of distribution packages; the full
// inventory stays available through the JSON format.
const maxPackageRows = 50

// truncateString shortens s to maxLen characters, marking the cut with an
// ellipsis when one fits.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
