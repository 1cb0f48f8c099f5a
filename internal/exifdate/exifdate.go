// Package exifdate parses the timestamp format emitted by exiftool.
//
// The grammar is
//
//	YYYY:MM:DD HH:MM:SS[.fraction][(+|-)HH:MM | Z]
//
// A value without an offset is interpreted in time.Local, so its UTC
// rendering depends on the zone of the running process.
package exifdate

import (
	"regexp"
	"strings"
	"time"
)

// ISOLayout is the layout produced by Value.String for parsed values.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// DisplayLayout is the layout produced by Display.
const DisplayLayout = "Jan 2, 2006, 03:04:05 PM MST"

var grammar = regexp.MustCompile(`^(\d{4}):(\d{2}):(\d{2}) (\d{2}:\d{2}:\d{2})(\.\d+)?([+-]\d{2}:\d{2}|Z)?$`)

// Value is the result of parsing one timestamp. It either holds a
// structured time or the original text that did not match the grammar.
type Value struct {
	raw    string
	t      time.Time
	parsed bool
}

// Parse reads s according to the exiftool grammar. It never fails: input
// that does not match is returned as an unparsed Value carrying s.
func Parse(s string) Value {
	m := grammar.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Value{raw: s}
	}

	iso := m[1] + "-" + m[2] + "-" + m[3] + "T" + m[4] + m[5]
	var (
		t   time.Time
		err error
	)
	switch zone := m[6]; zone {
	case "":
		t, err = time.ParseInLocation("2006-01-02T15:04:05.999999999", iso, time.Local)
	default:
		t, err = time.Parse(time.RFC3339Nano, iso+zone)
	}
	if err != nil {
		return Value{raw: s}
	}
	return Value{raw: s, t: t, parsed: true}
}

// Parsed reports whether the input matched the grammar.
func (v Value) Parsed() bool { return v.parsed }

// Time returns the parsed time, keeping the offset from the input.
// It is the zero time for unparsed values.
func (v Value) Time() time.Time { return v.t }

// Raw returns the input exactly as given to Parse.
func (v Value) Raw() string { return v.raw }

// String renders parsed values as UTC ISO-8601 with millisecond precision
// and unparsed values as their original text.
func (v Value) String() string {
	if !v.parsed {
		return v.raw
	}
	return v.t.UTC().Format(ISOLayout)
}

// Convert is shorthand for Parse(s).String().
func Convert(s string) string {
	return Parse(s).String()
}

// Display formats an ISO-8601 or exiftool-style timestamp for people to
// read, in UTC. Anything else comes back unchanged.
func Display(s string) string {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(DisplayLayout)
	}
	if v := Parse(s); v.Parsed() {
		return v.Time().UTC().Format(DisplayLayout)
	}
	return s
}
