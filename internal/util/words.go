// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"regexp"
	"strings"
)

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML tags from a string. It is a display helper for
// deriving plain-text summaries, not a sanitizer.
func StripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}

// TrimWords trims a string to the given number of words, appending suffix
// when the string was actually shortened.
func TrimWords(s string, n int, suffix string) string {
	fields := strings.Fields(s)
	if len(fields) <= n {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:n], " ") + suffix
}
