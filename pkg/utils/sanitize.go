package utils

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var disallowedChars = regexp.MustCompile(`(?i)[^a-z0-9 :/.,_-]`)

// SanitizeString strips markup from value, then drops every character outside
// letters, digits, space and ":/.,_-", then trims the result.
func SanitizeString(value string) string {
	text := ExtractText(value)
	return strings.TrimSpace(disallowedChars.ReplaceAllString(text, ""))
}

// ExtractText returns the concatenated text content of an HTML fragment.
// Entities are decoded; tags and comments are dropped.
func ExtractText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(tokenizer.Text())
		}
	}
}

// SplitCSV splits a comma-separated list, trimming entries and dropping blanks
func SplitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
