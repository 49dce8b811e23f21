// Package output renders styled terminal output for the CLI: progress
// messages and diagnostic reports.
//
// Styling is done with lipgloss. A Printer detects the color support of the
// writer it was created for, so output piped to a file or captured in tests
// stays plain text.
package output
