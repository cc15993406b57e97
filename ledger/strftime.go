package ledger

import (
	"fmt"
	"strings"
	"time"
)

// strftime verb to Go reference-time layout. Only verbs with a direct
// Go equivalent are supported; anything else fails option validation.
var strftimeVerbs = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'j': "002",
	'B': "January",
	'b': "Jan",
	'h': "Jan",
	'A': "Monday",
	'a': "Mon",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'Z': "MST",
	'z': "-0700",
	'F': "2006-01-02",
	'D': "01/02/06",
	'T': "15:04:05",
}

// dateFormat is a compiled strftime-style pattern. Literal text is kept
// apart from the Go layouts so it can never collide with a
// reference-time token: a literal "Jan" stays "Jan" in February.
type dateFormat struct {
	segments []dateSegment
}

// Exactly one of the two fields is set.
type dateSegment struct {
	literal string
	layout  string
}

// compileDateFormat translates a strftime-style pattern, failing on any
// verb without a Go equivalent.
func compileDateFormat(pattern string) (*dateFormat, error) {
	var f dateFormat
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			f.segments = append(f.segments, dateSegment{literal: literal.String()})
			literal.Reset()
		}
	}
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' {
			literal.WriteByte(c)
			continue
		}
		i++
		if i == len(pattern) {
			return nil, fmt.Errorf("trailing %% in pattern %q", pattern)
		}
		if pattern[i] == '%' {
			literal.WriteByte('%')
			continue
		}
		layout, ok := strftimeVerbs[pattern[i]]
		if !ok {
			return nil, fmt.Errorf("unsupported verb %%%c in pattern %q", pattern[i], pattern)
		}
		flush()
		f.segments = append(f.segments, dateSegment{layout: layout})
	}
	flush()
	return &f, nil
}

// Format renders t according to the compiled pattern.
func (f *dateFormat) Format(t time.Time) string {
	var b strings.Builder
	for _, seg := range f.segments {
		if seg.layout != "" {
			b.WriteString(t.Format(seg.layout))
		} else {
			b.WriteString(seg.literal)
		}
	}
	return b.String()
}
