package interval

import (
	"sort"

	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/pkg/errors"
)

// KeyFunc returns the identity that records must share to be grouped or
// compared.
type KeyFunc func(r *gff.Record) string

// SequenceKey keys records by their sequence column.
func SequenceKey(r *gff.Record) string { return r.Sequence() }

// StrandKey keys records by sequence and strand, so that features on opposite
// strands of the same sequence are never grouped together.
func StrandKey(r *gff.Record) string { return r.Sequence() + r.Strand() }

// bounds returns the begin and end columns of r as integers.
func bounds(r *gff.Record) (int, int, error) {
	begin, ok := r.Begin()
	if !ok {
		return 0, 0, &gff.PositionError{Column: gff.ColBegin, Value: r.String(gff.ColBegin)}
	}
	end, ok := r.End()
	if !ok {
		return 0, 0, &gff.PositionError{Column: gff.ColEnd, Value: r.String(gff.ColEnd)}
	}
	return begin, end, nil
}

type sortEntry struct {
	key   string
	begin int
	rec   *gff.Record
}

// Sort returns the records ordered by (key(r), begin).  The sort is stable,
// so records with equal key and begin keep their input order.  The input slice
// is not modified.  Sort fails if any record has a non-numeric begin or end.
func Sort(records []*gff.Record, key KeyFunc) ([]*gff.Record, error) {
	entries := make([]sortEntry, len(records))
	for i, r := range records {
		begin, _, err := bounds(r)
		if err != nil {
			return nil, errors.Wrapf(err, "interval.Sort: record %d", i)
		}
		entries[i] = sortEntry{key: key(r), begin: begin, rec: r}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].begin < entries[j].begin
	})
	sorted := make([]*gff.Record, len(entries))
	for i, e := range entries {
		sorted[i] = e.rec
	}
	return sorted, nil
}
