package shared

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxCommentLen caps stored report comments, in bytes.
const MaxCommentLen = 2048

// HostOf returns the normalized host (including any port) of an absolute URI, or "" if it has none.
func HostOf(uri string) string {
	parsedUrl, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return NormalizeHost(parsedUrl.Host)
}

func NormalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// IsHostMatch is true if host equals pattern or is a subdomain of it.
func IsHostMatch(host, pattern string) bool {
	host = NormalizeHost(host)
	pattern = NormalizeHost(pattern)
	if pattern == "" {
		return false
	}
	return host == pattern || strings.HasSuffix(host, "."+pattern)
}

// TruncateWithEllipsis shortens text to at most maxLen runes, preferring to cut at whitespace.
func TruncateWithEllipsis(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	cut, count, lastSpace := 0, 0, -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			lastSpace = i
		}
		if count == maxLen {
			cut = i
			break
		}
		count++
	}
	if lastSpace >= 0 {
		cut = lastSpace
	}
	return text[:cut] + "…"
}

// TruncateBytes cuts s to at most n bytes without splitting a rune.
func TruncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
