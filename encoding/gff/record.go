package gff

import (
	"strconv"
	"strings"
)

// Names of the nine fixed columns.
const (
	ColSequence  = "sequence"
	ColMethod    = "method"
	ColFeature   = "feature"
	ColBegin     = "begin"
	ColEnd       = "end"
	ColScore     = "score"
	ColStrand    = "strand"
	ColFrame     = "frame"
	ColAttribute = "attribute"
)

// Unknown is the placeholder for a missing column value.
const Unknown = "."

var columns = [...]string{
	ColSequence, ColMethod, ColFeature, ColBegin, ColEnd,
	ColScore, ColStrand, ColFrame, ColAttribute,
}

// NumColumns is the number of fixed columns in a GFF or GTF line.
const NumColumns = len(columns)

// Columns returns the fixed column names in file order.  The result is a
// fresh copy.
func Columns() []string {
	c := columns
	return c[:]
}

// IsColumn reports whether key names one of the fixed columns.
func IsColumn(key string) bool {
	for _, c := range columns {
		if c == key {
			return true
		}
	}
	return false
}

// Value is a record field.  It holds either a string or, after coercion, an
// integer.
type Value struct {
	s     string
	n     int
	isInt bool
}

// StringValue creates a string Value.
func StringValue(s string) Value { return Value{s: s} }

// IntValue creates an integer Value.
func IntValue(n int) Value { return Value{n: n, isInt: true} }

// IsInt reports whether the value has been coerced to an integer.
func (v Value) IsInt() bool { return v.isInt }

// Int returns the integer value.  The second result is false if the value is
// a string.
func (v Value) Int() (int, bool) { return v.n, v.isInt }

// String returns the value as text.  Integers are formatted in decimal.
func (v Value) String() string {
	if v.isInt {
		return strconv.Itoa(v.n)
	}
	return v.s
}

// Record is one annotation line.  It maps column and attribute names to
// values and remembers the order in which keys were first set.
//
// Record is not thread safe.
type Record struct {
	keys []string
	vals map[string]Value
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{vals: make(map[string]Value, NumColumns+4)}
}

// Len returns the number of keys.
func (r *Record) Len() int { return len(r.keys) }

// Keys returns the keys in insertion order.  The caller must not modify the
// result.
func (r *Record) Keys() []string { return r.keys }

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.vals[key]
	return ok
}

// Get returns the value of key.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// String returns the text of key, or "" if key is absent.
func (r *Record) String(key string) string {
	return r.vals[key].String()
}

// Int returns key as an integer.  String values holding decimal digits are
// parsed on the fly; the record is not modified.
func (r *Record) Int(key string) (int, bool) {
	v, ok := r.vals[key]
	if !ok {
		return 0, false
	}
	if v.isInt {
		return v.n, true
	}
	n, err := strconv.Atoi(v.s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Set stores v under key.  A new key is appended to the key order; an
// existing key keeps its position.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// SetString stores a string value.
func (r *Record) SetString(key, s string) { r.Set(key, StringValue(s)) }

// SetInt stores an integer value.
func (r *Record) SetInt(key string, n int) { r.Set(key, IntValue(n)) }

// Delete removes key.  It returns false if key was absent.
func (r *Record) Delete(key string) bool {
	if _, ok := r.vals[key]; !ok {
		return false
	}
	delete(r.vals, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Rename moves the value of oldKey to newKey, keeping oldKey's position.  An
// existing newKey is replaced.  It returns false if oldKey is absent.
func (r *Record) Rename(oldKey, newKey string) bool {
	v, ok := r.vals[oldKey]
	if !ok {
		return false
	}
	if oldKey == newKey {
		return true
	}
	if r.Has(newKey) {
		r.Delete(newKey)
	}
	delete(r.vals, oldKey)
	r.vals[newKey] = v
	for i, k := range r.keys {
		if k == oldKey {
			r.keys[i] = newKey
			break
		}
	}
	return true
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{
		keys: make([]string, len(r.keys)),
		vals: make(map[string]Value, len(r.vals)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.vals {
		c.vals[k] = v
	}
	return c
}

// Sequence returns column 1.
func (r *Record) Sequence() string { return r.String(ColSequence) }

// Feature returns column 3.
func (r *Record) Feature() string { return r.String(ColFeature) }

// Strand returns column 7.
func (r *Record) Strand() string { return r.String(ColStrand) }

// Begin returns column 4 as an integer.
func (r *Record) Begin() (int, bool) { return r.Int(ColBegin) }

// End returns column 5 as an integer.
func (r *Record) End() (int, bool) { return r.Int(ColEnd) }

// Attributes returns the keys that are not fixed columns, with their values,
// in insertion order.
func (r *Record) Attributes() []Attribute {
	var attrs []Attribute
	for _, k := range r.keys {
		if IsColumn(k) {
			continue
		}
		attrs = append(attrs, Attribute{Key: k, Value: r.vals[k].String()})
	}
	return attrs
}

// GoString renders the record as key=value pairs, for debugging.
func (r *Record) GoString() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(r.vals[k].String())
	}
	b.WriteByte('}')
	return b.String()
}
