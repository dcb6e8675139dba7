// Package testutil holds helpers shared by the package tests: output
// cleanup for CLI assertions and reference prime lists.
package testutil

import "regexp"

// csiPattern matches ANSI CSI sequences such as colour codes and cursor
// movement ("\x1b[1;32m", "\x1b[2K").
var csiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape sequences so rendered CLI output can
// be compared as plain text.
func StripAnsiCodes(s string) string {
	return csiPattern.ReplaceAllString(s, "")
}
