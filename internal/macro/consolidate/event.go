package consolidate

import (
	"strconv"
	"strings"
)

// Raw event tags reported by the capture layer.
const (
	TagDelay      = "Delay"
	TagKey        = "Key"
	TagMouseClick = "MouseClick"
	TagMouseMove  = "MouseMove"
	TagGoto       = "Goto"
)

// RawEvent is one timestamped notification from the capture layer.
type RawEvent struct {
	// Timestamp is in milliseconds. Streams are expected to be
	// non-decreasing.
	Timestamp uint64
	// Kind is the event tag, e.g. "Key" or "MouseMove".
	Kind string
	// Details is a comma-separated Key=Value list such as
	// "VK=65, State=down".
	Details string
}

// Details is a parsed details list. Keys are stored lower-cased.
type Details map[string]string

// ParseDetails parses a comma-separated Key=Value list. Keys match without
// regard to case, and space around keys and values is ignored. Pieces that
// are not of the form Key=Value are skipped; for repeated keys the last
// value wins.
func ParseDetails(s string) Details {
	d := make(Details)
	for _, part := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		d[k] = strings.TrimSpace(v)
	}
	return d
}

// Get returns the value for key.
func (d Details) Get(key string) (string, bool) {
	v, ok := d[strings.ToLower(key)]
	return v, ok
}

// Int returns the value for key parsed as a decimal integer of the given
// bit size.
func (d Details) Int(key string, bits int) (int64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, bits)
	if err != nil {
		return 0, false
	}
	return n, true
}
