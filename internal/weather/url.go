package weather

import (
	"fmt"
	"strings"
)

// BuildURL substitutes key and location into the current-conditions URL template.
// Neither value is escaped or validated.
func BuildURL(host, key, location string) string {
	return "http://" + host + "/v1/current.json?key=" + key + "&q=" + location
}

// wireURL is the form in which a WHATWG URL parser would send raw: surrounding
// spaces and controls stripped, tabs and newlines dropped, and bytes that cannot
// appear in a request line percent-encoded. '&' and '#' keep their meaning.
func wireURL(raw string) string {
	start, end := 0, len(raw)
	for start < end && raw[start] <= ' ' {
		start++
	}
	for end > start && raw[end-1] <= ' ' {
		end--
	}
	var trimmed strings.Builder
	for i := start; i < end; i++ {
		switch c := raw[i]; c {
		case '\t', '\n', '\r':
		default:
			trimmed.WriteByte(c)
		}
	}
	s := trimmed.String()

	base, rest, ok := strings.Cut(s, "?")
	if !ok {
		return s
	}
	query, fragment, hasFragment := strings.Cut(rest, "#")

	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('?')
	percentEncode(&b, query, "\"'<>")
	if hasFragment {
		b.WriteByte('#')
		percentEncode(&b, fragment, "\"<>`")
	}
	return b.String()
}

func percentEncode(b *strings.Builder, s string, extra string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(extra, c) >= 0 {
			fmt.Fprintf(b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
}
