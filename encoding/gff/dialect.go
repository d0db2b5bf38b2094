package gff

import (
	"fmt"
	"strings"
)

// Dialect selects the attribute encoding of the ninth column.
type Dialect int

const (
	// GFF attributes are encoded as key=value;key=value.
	GFF Dialect = iota
	// GTF attributes are encoded as key "value"; key "value";
	GTF
)

// ParseDialect converts "GFF" or "GTF" (case insensitive) to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToUpper(name) {
	case "GFF", "GFF3":
		return GFF, nil
	case "GTF", "GFF2":
		return GTF, nil
	}
	return GFF, fmt.Errorf("unknown annotation dialect %q", name)
}

// Separator returns the string that separates an attribute key from its
// value.
func (d Dialect) Separator() string {
	if d == GTF {
		return " "
	}
	return "="
}

// String implements fmt.Stringer.
func (d Dialect) String() string {
	switch d {
	case GFF:
		return "GFF"
	case GTF:
		return "GTF"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}
