// Package jsonfield pulls a single string field out of a JSON-looking body.
//
// It is a pattern matcher, not a JSON parser. Extract looks for the first
// occurrence of
//
//	"<field>" : "<value>"
//
// with optional whitespace around the colon, where value is a non-empty run of
// bytes that are not a double quote. Escape sequences are not interpreted, so
// a backslash-escaped quote ends the value, and nesting is ignored: the first
// textual occurrence wins wherever it appears in the document.
package jsonfield

import (
	"regexp"
	"sync"
)

// patterns caches compiled expressions keyed by field name.
var patterns sync.Map // map[string]*regexp.Regexp

// Extract returns the value of the first "field":"value" pair in body, or the
// empty string if no such pair exists.
func Extract(body, field string) string {
	m := pattern(field).FindStringSubmatch(body)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// ExtractBytes is Extract for a raw request body.
func ExtractBytes(body []byte, field string) string {
	m := pattern(field).FindSubmatch(body)
	if len(m) < 2 {
		return ""
	}
	return string(m[1])
}

func pattern(field string) *regexp.Regexp {
	if re, ok := patterns.Load(field); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"([^"]+)"`)
	actual, _ := patterns.LoadOrStore(field, re)
	return actual.(*regexp.Regexp)
}
