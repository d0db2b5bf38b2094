package gff

import (
	"fmt"
	"strings"
)

// Attribute is one key/value pair from the attribute column.
type Attribute struct {
	Key, Value string
}

// MalformedAttributeError is reported when an attribute segment lacks the
// key/value separator of the dialect.  This usually means the file was read
// in the wrong dialect.
type MalformedAttributeError struct {
	Segment string
	Dialect Dialect
}

func (e *MalformedAttributeError) Error() string {
	return fmt.Sprintf("malformed %v attribute %q: no %q separator", e.Dialect, e.Segment, e.Dialect.Separator())
}

// ParseAttributes splits the attribute column into key/value pairs, in the
// order they appear.  Segments are separated by ';', and a trailing ';' is
// allowed.  Each segment is split once on the dialect separator, so a GFF
// value may itself contain '='.  Double quotes are removed from values.
// An empty column or "." yields no attributes.
func ParseAttributes(field string, d Dialect) ([]Attribute, error) {
	if field == Unknown {
		return nil, nil
	}
	segments := strings.Split(strings.TrimRight(field, " \t\r\n"), ";")
	if segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	sep := d.Separator()
	attrs := make([]Attribute, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		kv := strings.SplitN(seg, sep, 2)
		if len(kv) != 2 {
			return nil, &MalformedAttributeError{Segment: seg, Dialect: d}
		}
		attrs = append(attrs, Attribute{
			Key:   kv[0],
			Value: strings.Replace(kv[1], `"`, "", -1),
		})
	}
	return attrs, nil
}

// FormatAttributes encodes attrs as an attribute column.  GFF output has no
// trailing separator; GTF output quotes every value and ends with ';', the
// way most GTF producers write it.
func FormatAttributes(attrs []Attribute, d Dialect) string {
	var b strings.Builder
	for i, a := range attrs {
		switch d {
		case GTF:
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(a.Key)
			b.WriteString(` "`)
			b.WriteString(a.Value)
			b.WriteString(`";`)
		default:
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(a.Key)
			b.WriteByte('=')
			b.WriteString(a.Value)
		}
	}
	return b.String()
}
