package annotation

import (
	"regexp"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/pkg/errors"
)

// AttributeAdd sets key=value on rows [begin, end).  end <= 0 stands for
// Len().  If row begin already has key, the key is assumed to be present in
// the whole range: nothing is changed, a diagnostic is logged and 0 is
// returned.  It returns the number of rows modified.
func (s *Store) AttributeAdd(key, value string, begin, end int) int {
	if end <= 0 || end > len(s.records) {
		end = len(s.records)
	}
	if begin < 0 || begin >= end {
		return 0
	}
	if s.records[begin].Has(key) {
		log.Error.Printf("annotation.AttributeAdd: attribute (%s) already exists in row %d of %s", key, begin, s.path)
		return 0
	}
	for _, r := range s.records[begin:end] {
		r.SetString(key, value)
	}
	return end - begin
}

// ReplaceByColumn replaces every occurrence of find by replace in column, for
// every record that has the column.  Integer values are edited as decimal
// text and stored as strings.  It returns the number of records examined.
func (s *Store) ReplaceByColumn(column, find, replace string) int {
	n := 0
	for _, r := range s.records {
		v, ok := r.Get(column)
		if !ok {
			continue
		}
		r.SetString(column, strings.Replace(v.String(), find, replace, -1))
		n++
	}
	return n
}

// ReplaceColumnsRE substitutes matches of pattern by replacement in each of
// columns.  replacement may refer to submatches as in
// regexp.Regexp.ReplaceAllString.  It returns the number of (record, column)
// pairs examined.
func (s *Store) ReplaceColumnsRE(columns []string, pattern, replacement string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, errors.Wrapf(err, "annotation.ReplaceColumnsRE")
	}
	n := 0
	for _, r := range s.records {
		for _, col := range columns {
			v, ok := r.Get(col)
			if !ok {
				continue
			}
			r.SetString(col, re.ReplaceAllString(v.String(), replacement))
			n++
		}
	}
	return n, nil
}

// RenameKey renames oldKey to newKey in every record.  It does nothing and
// returns false if the first record lacks oldKey.  This is typically used to
// line up attribute names of files from different sources.
func (s *Store) RenameKey(oldKey, newKey string) bool {
	if len(s.records) == 0 || !s.records[0].Has(oldKey) {
		return false
	}
	for _, r := range s.records {
		r.Rename(oldKey, newKey)
	}
	return true
}

// PositionToInt converts begin, end and frame to integers in every record.
// It is idempotent.  It returns false, after logging each failure, if some
// record has a value that is neither an integer nor ".".
func (s *Store) PositionToInt() bool {
	ok := true
	for i, r := range s.records {
		if err := gff.PositionToInt(r); err != nil {
			log.Error.Printf("annotation.PositionToInt: %s row %d: %v", s.path, i, err)
			ok = false
		}
	}
	return ok
}
