package mysql

import "strings"

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// dashToEmpty undoes stringOrDash on read.
func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
