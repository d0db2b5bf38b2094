package annotation

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/biogo/store/interval"
	"github.com/pkg/errors"
)

// ColumnIndex maps (column, value) to the set of rows holding that value.  It
// answers conjunctive equality queries without scanning the store.  The index
// is a snapshot: rows appended or edited after NewColumnIndex are not
// reflected.
type ColumnIndex struct {
	s    *Store
	rows uint32
	cols map[string]map[string]*roaring.Bitmap
}

// NewColumnIndex indexes the given columns of every record in s.
func NewColumnIndex(s *Store, columns ...string) *ColumnIndex {
	x := &ColumnIndex{
		s:    s,
		rows: uint32(s.Len()),
		cols: make(map[string]map[string]*roaring.Bitmap, len(columns)),
	}
	for _, col := range columns {
		x.cols[col] = map[string]*roaring.Bitmap{}
	}
	for i, r := range s.records {
		for col, values := range x.cols {
			v, ok := r.Get(col)
			if !ok {
				continue
			}
			bm := values[v.String()]
			if bm == nil {
				bm = roaring.New()
				values[v.String()] = bm
			}
			bm.Add(uint32(i))
		}
	}
	return x
}

// Count returns the number of rows whose column equals value.
func (x *ColumnIndex) Count(column, value string) int {
	bm := x.cols[column][value]
	if bm == nil {
		return 0
	}
	return int(bm.GetCardinality())
}

// Values returns the distinct values of an indexed column, sorted.
func (x *ColumnIndex) Values(column string) []string {
	var vals []string
	for v := range x.cols[column] {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}

// Select returns the rows where every column in where has the given value, in
// store order.  An empty where selects every indexed row.  It is an error to
// name a column that is not indexed.
func (x *ColumnIndex) Select(where map[string]string) (*Iterator, error) {
	bms := make([]*roaring.Bitmap, 0, len(where))
	for col, val := range where {
		values, ok := x.cols[col]
		if !ok {
			return nil, errors.Errorf("annotation.Select: column %s is not indexed", col)
		}
		bm := values[val]
		if bm == nil {
			return x.s.ByRows(nil), nil
		}
		bms = append(bms, bm)
	}
	var sel *roaring.Bitmap
	if len(bms) == 0 {
		sel = roaring.New()
		sel.AddRange(0, uint64(x.rows))
	} else {
		sel = roaring.FastAnd(bms...)
	}
	rows := make([]int, 0, sel.GetCardinality())
	it := sel.Iterator()
	for it.HasNext() {
		rows = append(rows, int(it.Next()))
	}
	return x.s.ByRows(rows), nil
}

// overlapEntry is a record's closed interval [begin, end], stored as the
// half-open range [begin, end+1).
type overlapEntry struct {
	row        int
	start, end int
}

func (e overlapEntry) Overlap(b interval.IntRange) bool {
	return e.start < b.End && b.Start < e.end
}
func (e overlapEntry) ID() uintptr              { return uintptr(e.row) }
func (e overlapEntry) Range() interval.IntRange { return interval.IntRange{Start: e.start, End: e.end} }

type overlapQuery struct{ start, end int }

func (q overlapQuery) Overlap(b interval.IntRange) bool {
	return q.start < b.End && b.Start < q.end
}

// OverlapIndex finds the records overlapping a genomic range.  There is one
// interval tree per sequence.  Records whose begin or end is not an integer
// are not indexed.  Like ColumnIndex, it is a snapshot of the store.
type OverlapIndex struct {
	s     *Store
	trees map[string]*interval.IntTree
}

// NewOverlapIndex indexes every record of s by (sequence, begin, end).
func NewOverlapIndex(s *Store) (*OverlapIndex, error) {
	x := &OverlapIndex{s: s, trees: map[string]*interval.IntTree{}}
	for i, r := range s.records {
		begin, ok1 := r.Begin()
		end, ok2 := r.End()
		if !ok1 || !ok2 {
			continue
		}
		t := x.trees[r.Sequence()]
		if t == nil {
			t = &interval.IntTree{}
			x.trees[r.Sequence()] = t
		}
		if err := t.Insert(overlapEntry{row: i, start: begin, end: end + 1}, true); err != nil {
			return nil, errors.Wrapf(err, "annotation.NewOverlapIndex: %s row %d", s.path, i)
		}
	}
	for _, t := range x.trees {
		t.AdjustRanges()
	}
	return x, nil
}

// Overlapping yields, in store order, the records on seq whose closed
// interval [begin, end] shares at least one position with [begin, end].
func (x *OverlapIndex) Overlapping(seq string, begin, end int) *Iterator {
	t := x.trees[seq]
	if t == nil || end < begin {
		return x.s.ByRows(nil)
	}
	hits := t.Get(overlapQuery{start: begin, end: end + 1})
	rows := make([]int, len(hits))
	for i, h := range hits {
		rows[i] = h.(overlapEntry).row
	}
	sort.Ints(rows)
	return x.s.ByRows(rows)
}

var _ interval.IntInterface = overlapEntry{}
