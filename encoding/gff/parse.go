package gff

import (
	"fmt"
	"strconv"
	"strings"
)

// splitFields splits line into at most len(fields) whitespace-separated
// fields.  Any run of characters <= ' ' is a delimiter.  The last field
// extends to the end of the line, minus trailing whitespace, so internal
// spaces in the attribute column survive.  It returns the number of fields
// found.
func splitFields(fields []string, line string) int {
	pos := 0
	n := len(line)
	for i := range fields {
		for ; pos != n; pos++ {
			if line[pos] > ' ' {
				break
			}
		}
		if pos == n {
			return i
		}
		if i == len(fields)-1 {
			end := n
			for end > pos && line[end-1] <= ' ' {
				end--
			}
			fields[i] = line[pos:end]
			return len(fields)
		}
		start := pos
		for ; pos != n; pos++ {
			if line[pos] <= ' ' {
				break
			}
		}
		fields[i] = line[start:pos]
	}
	return len(fields)
}

// ParseLine parses one feature line in dialect d.  The line must not be a
// comment.  A line with fewer than nine fields fills only the leading
// columns.  Coordinates are left as strings; see PositionToInt.
//
// The literal attribute text is kept under ColAttribute.  A parsed attribute
// whose key collides with a fixed column name overwrites that column.
func ParseLine(line string, d Dialect) (*Record, error) {
	var fields [NumColumns]string
	n := splitFields(fields[:], line)
	r := NewRecord()
	for i := 0; i < n; i++ {
		r.SetString(columns[i], fields[i])
	}
	if n < NumColumns {
		return r, nil
	}
	attrs, err := ParseAttributes(fields[NumColumns-1], d)
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		r.SetString(a.Key, a.Value)
	}
	return r, nil
}

// PositionError is reported when a coordinate column is neither an integer
// nor ".".
type PositionError struct {
	Column, Value string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("column %s: %q is not an integer", e.Column, e.Value)
}

var positionColumns = [...]string{ColBegin, ColEnd, ColFrame}

// PositionToInt converts the begin, end and frame columns of r to integers.
// Columns holding "." and columns that are missing are left alone.  It is
// idempotent.  On error, columns converted before the failure stay
// converted.
func PositionToInt(r *Record) error {
	for _, col := range positionColumns {
		v, ok := r.Get(col)
		if !ok || v.IsInt() || v.String() == Unknown {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v.String()))
		if err != nil {
			return &PositionError{Column: col, Value: v.String()}
		}
		r.SetInt(col, n)
	}
	return nil
}
