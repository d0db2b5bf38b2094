package annotation

import "github.com/grailbio/gffkit/encoding/gff"

// Iterator walks the rows of a store that satisfy a predicate.  Iterators are
// created by the query methods of Store; each call creates a fresh iterator
// that starts over.  Rows are tested lazily, when Scan is called.
//
//   it := s.ByFeature("gene", 0)
//   for it.Scan() {
//     fmt.Println(it.Row(), it.Record().String("ID"))
//   }
type Iterator struct {
	s     *Store
	match func(r *gff.Record) bool
	clone bool

	// Row selection.  If rows is non-nil, the iterator visits rows[next:] in
	// order.  Otherwise it visits store rows next, next+1, ... up to stop.
	rows []int
	next int
	stop int

	row int
	rec *gff.Record
}

func (s *Store) newIterator(start, stop int, clone bool, match func(r *gff.Record) bool) *Iterator {
	if start < 0 {
		start = 0
	}
	return &Iterator{s: s, match: match, clone: clone, next: start, stop: stop, row: -1}
}

// Scan advances to the next matching row.  It returns false when no rows
// remain.
func (it *Iterator) Scan() bool {
	for {
		row, ok := it.advance()
		if !ok {
			it.rec = nil
			return false
		}
		r := it.s.records[row]
		if it.match != nil && !it.match(r) {
			continue
		}
		it.row = row
		it.rec = r
		if it.clone {
			it.rec = r.Clone()
		}
		return true
	}
}

func (it *Iterator) advance() (int, bool) {
	if it.rows != nil {
		for it.next < len(it.rows) {
			row := it.rows[it.next]
			it.next++
			if row >= 0 && row < len(it.s.records) {
				return row, true
			}
		}
		return 0, false
	}
	limit := len(it.s.records)
	if it.stop > 0 && it.stop < limit {
		limit = it.stop
	}
	if it.next >= limit {
		return 0, false
	}
	row := it.next
	it.next++
	return row, true
}

// Row returns the store index of the current record.
func (it *Iterator) Row() int { return it.row }

// Record returns the current record.  Unless the query documents that it
// returns snapshots, the record is owned by the store and edits to it change
// the store.
func (it *Iterator) Record() *gff.Record { return it.rec }

// ByFeature yields the rows, from start on, whose feature column equals key.
func (s *Store) ByFeature(key string, start int) *Iterator {
	return s.newIterator(start, 0, false, func(r *gff.Record) bool {
		return r.Feature() == key
	})
}

// BySequence yields snapshot copies of the records whose sequence column
// equals seqID.  Editing the snapshots does not change the store.
func (s *Store) BySequence(seqID string) *Iterator {
	return s.newIterator(0, 0, true, func(r *gff.Record) bool {
		return r.Sequence() == seqID
	})
}

// ByValue yields the rows in [start, stop) whose column equals key.  stop <=
// 0 stands for Len().  Records without the column are skipped.  Integer
// values are compared as decimal text.
func (s *Store) ByValue(column, key string, start, stop int) *Iterator {
	return s.newIterator(start, stop, false, func(r *gff.Record) bool {
		v, ok := r.Get(column)
		return ok && v.String() == key
	})
}

// ByRows yields the given rows in the given order.  Rows outside the store
// are skipped.  It is used to walk the results of an index lookup.
func (s *Store) ByRows(rows []int) *Iterator {
	if rows == nil {
		rows = []int{}
	}
	return &Iterator{s: s, rows: rows, row: -1}
}
