package interval

import (
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/gffkit/encoding/gff"
)

// State is the position of a Grouper in its sweep.
type State int

const (
	// AwaitingFirst means no record has been read yet.
	AwaitingFirst State = iota
	// Accumulating means a group is open and records are being absorbed.
	Accumulating
	// Emitting means a completed group is available from Group.
	Emitting
	// Done means the input is exhausted or an error occurred.
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingFirst:
		return "AwaitingFirst"
	case Accumulating:
		return "Accumulating"
	case Emitting:
		return "Emitting"
	case Done:
		return "Done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Group is a maximal run of records on one key whose intervals transitively
// overlap.  Begin and End are the closed envelope of the records.
type Group struct {
	Key        string
	Begin, End int
	// Records are copies, in sorted order.
	Records []*gff.Record
}

// Grouper sweeps a sorted Source once, left to right, and yields overlap
// groups.  A record r is absorbed into the open group iff it has the group's
// key and r.begin < stop, where stop is the largest end seen so far in the
// group.  Touching intervals (r.begin == stop) start a new group.
type Grouper struct {
	src   Source
	key   KeyFunc
	state State
	err   error

	cur       Group
	lastBegin int
	held      *gff.Record // first record of the next group
	group     Group
	seen      map[string]bool
	nRecords  int
}

// NewGrouper creates a Grouper over src, which must be sorted by (key, begin).
// Unsorted input is reported by Err.
func NewGrouper(src Source, key KeyFunc) *Grouper {
	return &Grouper{src: src, key: key, seen: map[string]bool{}}
}

// State returns the current state of the sweep.
func (g *Grouper) State() State { return g.state }

// Group returns the group yielded by the last successful call to Scan.
func (g *Grouper) Group() Group { return g.group }

// Err returns the error, if any, that ended the sweep.
func (g *Grouper) Err() error { return g.err }

func (g *Grouper) fail(err error) bool {
	g.err = err
	g.state = Done
	return false
}

// seed opens a new group with r.
func (g *Grouper) seed(r *gff.Record) bool {
	begin, end, err := bounds(r)
	if err != nil {
		return g.fail(fmt.Errorf("interval.Grouper: record %d: %v", g.nRecords, err))
	}
	key := g.key(r)
	if key != g.group.Key || g.state == AwaitingFirst {
		if g.seen[key] {
			return g.fail(fmt.Errorf("interval.Grouper: unsorted input (split key %v)", key))
		}
		g.seen[key] = true
	}
	g.cur = Group{Key: key, Begin: begin, End: end, Records: []*gff.Record{r.Clone()}}
	g.lastBegin = begin
	g.nRecords++
	return true
}

// emit closes the open group.  next is the record that did not fit, or nil at
// the end of the input.
func (g *Grouper) emit(next *gff.Record) {
	g.group, g.cur = g.cur, Group{}
	g.held = next
	g.state = Emitting
}

// Scan advances to the next group.  It returns false when the input is
// exhausted or on error.
func (g *Grouper) Scan() bool {
	for {
		switch g.state {
		case AwaitingFirst:
			if !g.src.Scan() {
				g.state = Done
				g.err = g.src.Err()
				return false
			}
			if !g.seed(g.src.Record()) {
				return false
			}
			g.state = Accumulating
		case Accumulating:
			if !g.src.Scan() {
				if err := g.src.Err(); err != nil {
					return g.fail(err)
				}
				g.emit(nil)
				return true
			}
			r := g.src.Record()
			begin, end, err := bounds(r)
			if err != nil {
				return g.fail(fmt.Errorf("interval.Grouper: record %d: %v", g.nRecords, err))
			}
			if g.key(r) != g.cur.Key {
				g.emit(r)
				return true
			}
			if begin < g.lastBegin {
				return g.fail(fmt.Errorf("interval.Grouper: unsorted input at record %d (begin %d after %d)",
					g.nRecords, begin, g.lastBegin))
			}
			g.lastBegin = begin
			if begin >= g.cur.End {
				g.emit(r)
				return true
			}
			g.cur.Records = append(g.cur.Records, r.Clone())
			if end > g.cur.End {
				g.cur.End = end
			}
			g.nRecords++
		case Emitting:
			if g.held == nil {
				g.state = Done
				log.Debug.Printf("interval.Grouper: %d records in %d keys", g.nRecords, len(g.seen))
				return false
			}
			held := g.held
			g.held = nil
			if !g.seed(held) {
				return false
			}
			g.state = Accumulating
		case Done:
			return false
		}
	}
}

// Groups sweeps sorted records and returns all groups.
func Groups(sorted []*gff.Record, key KeyFunc) ([]Group, error) {
	var groups []Group
	g := NewGrouper(NewSliceSource(sorted), key)
	for g.Scan() {
		groups = append(groups, g.Group())
	}
	return groups, g.Err()
}
