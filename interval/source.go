package interval

import (
	"github.com/biogo/store/llrb"
	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/pkg/errors"
)

// Source is a stream of records sorted by (key, begin).  Records returned by
// Record must stay valid after the next call to Scan.
type Source interface {
	// Scan advances to the next record.  It returns false at the end of the
	// stream or on error.
	Scan() bool
	// Record returns the current record.
	Record() *gff.Record
	// Err returns the error that stopped Scan, if any.
	Err() error
}

type sliceSource struct {
	records []*gff.Record
	i       int
}

// NewSliceSource returns a Source that yields the given records in order.
func NewSliceSource(records []*gff.Record) Source {
	return &sliceSource{records: records, i: -1}
}

func (s *sliceSource) Scan() bool {
	if s.i < len(s.records) {
		s.i++
	}
	return s.i < len(s.records)
}

func (s *sliceSource) Record() *gff.Record { return s.records[s.i] }
func (s *sliceSource) Err() error          { return nil }

// mergeLeaf is one input of Merge, positioned at its current record.
type mergeLeaf struct {
	seq   int
	src   Source
	key   string
	begin int
	rec   *gff.Record
}

// Compare implements llrb.Comparable.  Ties on (key, begin) prefer the source
// passed first to Merge.
func (l *mergeLeaf) Compare(c llrb.Comparable) int {
	l1 := c.(*mergeLeaf)
	if l.key != l1.key {
		if l.key < l1.key {
			return -1
		}
		return 1
	}
	if l.begin != l1.begin {
		return l.begin - l1.begin
	}
	return l.seq - l1.seq
}

// advance moves the leaf to its source's next record.  It returns false when
// the source is exhausted or fails.
func (l *mergeLeaf) advance(keyFn KeyFunc) (bool, error) {
	if !l.src.Scan() {
		return false, l.src.Err()
	}
	l.rec = l.src.Record()
	begin, _, err := bounds(l.rec)
	if err != nil {
		return false, err
	}
	l.key, l.begin = keyFn(l.rec), begin
	return true, nil
}

type mergeSource struct {
	key     KeyFunc
	leafs   llrb.Tree
	pending []*mergeLeaf
	top     *mergeLeaf
	err     error
}

// Merge combines sources, each sorted by (key, begin), into a single sorted
// Source.  Records with equal key and begin come out in the order of the
// sources in the argument list, and in stream order within one source.
func Merge(key KeyFunc, sources ...Source) Source {
	m := &mergeSource{key: key}
	for i, src := range sources {
		m.pending = append(m.pending, &mergeLeaf{seq: i, src: src})
	}
	return m
}

func (m *mergeSource) fill(l *mergeLeaf) bool {
	ok, err := l.advance(m.key)
	if err != nil {
		m.err = errors.Wrapf(err, "interval.Merge: source %d", l.seq)
		return false
	}
	if ok {
		m.leafs.Insert(l)
	}
	return true
}

func (m *mergeSource) Scan() bool {
	if m.err != nil {
		return false
	}
	// Leafs are read lazily so that no source is touched before the first
	// Scan.
	for _, l := range m.pending {
		if !m.fill(l) {
			return false
		}
	}
	m.pending = m.pending[:0]
	if m.top != nil {
		if !m.fill(m.top) {
			return false
		}
		m.top = nil
	}
	if m.leafs.Len() == 0 {
		return false
	}
	m.top = m.leafs.Min().(*mergeLeaf)
	m.leafs.DeleteMin()
	return true
}

func (m *mergeSource) Record() *gff.Record { return m.top.rec }
func (m *mergeSource) Err() error          { return m.err }
