package interval

import (
	"fmt"

	"github.com/grailbio/gffkit/encoding/gff"
)

// Relation is the position of one interval relative to another.
type Relation int

const (
	// Overlap means the closed intervals share at least one position.
	Overlap Relation = iota
	// DisjointBefore means the other interval ends before self begins.
	DisjointBefore
	// DisjointAfter means the other interval begins after self ends.
	DisjointAfter
)

func (r Relation) String() string {
	switch r {
	case Overlap:
		return "overlap"
	case DisjointBefore:
		return "disjoint-before"
	case DisjointAfter:
		return "disjoint-after"
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

// Classify reports where other lies relative to self, using the closed
// [begin, end] intervals of both records.  Keys are not compared.  Records
// with non-numeric coordinates are treated as [0, 0].
func Classify(self, other *gff.Record) Relation {
	sBegin, sEnd, _ := bounds(self)
	oBegin, oEnd, _ := bounds(other)
	switch {
	case oEnd < sBegin:
		return DisjointBefore
	case oBegin > sEnd:
		return DisjointAfter
	}
	return Overlap
}

// cursor is a one-record lookahead over a Source.
type cursor struct {
	src Source
	rec *gff.Record
	key string
	ok  bool
}

func (c *cursor) advance(key KeyFunc) {
	if c.ok = c.src.Scan(); c.ok {
		c.rec = c.src.Record()
		c.key = key(c.rec)
	}
}

// Synchronizer walks two sources sorted by key in lock-step.  Each call to
// Next advances whichever source is positioned at the smaller key until both
// sit on the same key, then consumes every record with that key from both
// sides.  Keys present in only one source are skipped.
type Synchronizer struct {
	key         KeyFunc
	left, right cursor
	started     bool
	err         error

	cur               string
	leftRun, rightRun []*gff.Record
	prevLeft          string
	prevRight         string
}

// NewSynchronizer creates a Synchronizer over left and right.
func NewSynchronizer(left, right Source, key KeyFunc) *Synchronizer {
	return &Synchronizer{key: key, left: cursor{src: left}, right: cursor{src: right}}
}

// Next aligns both sources on the next shared key.  It returns false once
// either source is exhausted, since no further key can be shared; records
// left in the other source are not read.  Out-of-order keys stop the walk
// with an error.
func (s *Synchronizer) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.started {
		s.started = true
		s.left.advance(s.key)
		s.right.advance(s.key)
	}
	for s.left.ok && s.right.ok && s.left.key != s.right.key {
		if s.left.key < s.right.key {
			s.step(&s.left, &s.prevLeft, "left")
		} else {
			s.step(&s.right, &s.prevRight, "right")
		}
		if s.err != nil {
			return false
		}
	}
	if !s.left.ok || !s.right.ok {
		if s.err == nil {
			s.err = s.left.src.Err()
		}
		if s.err == nil {
			s.err = s.right.src.Err()
		}
		return false
	}
	s.cur = s.left.key
	s.leftRun = s.run(&s.left, &s.prevLeft, "left")
	s.rightRun = s.run(&s.right, &s.prevRight, "right")
	return s.err == nil
}

// step advances c by one record, checking key order.
func (s *Synchronizer) step(c *cursor, prev *string, side string) {
	*prev = c.key
	c.advance(s.key)
	if c.ok && c.key < *prev {
		s.err = fmt.Errorf("interval.Synchronizer: %s source not sorted by key (%q after %q)", side, c.key, *prev)
	}
}

// run consumes the records of c that share its current key.
func (s *Synchronizer) run(c *cursor, prev *string, side string) []*gff.Record {
	var recs []*gff.Record
	key := c.key
	for c.ok && c.key == key {
		recs = append(recs, c.rec)
		s.step(c, prev, side)
	}
	return recs
}

// Key returns the key shared by the current runs.
func (s *Synchronizer) Key() string { return s.cur }

// Left returns the left source's records on the current key.
func (s *Synchronizer) Left() []*gff.Record { return s.leftRun }

// Right returns the right source's records on the current key.
func (s *Synchronizer) Right() []*gff.Record { return s.rightRun }

// Err returns the error that stopped the walk, if any.
func (s *Synchronizer) Err() error { return s.err }

// Match pairs a query record with every target record it overlaps.
type Match struct {
	Query   *gff.Record
	Targets []*gff.Record
}

// tapSource records every record read from the wrapped Source.
type tapSource struct {
	Source
	recs []*gff.Record
	eof  bool
}

func (t *tapSource) Scan() bool {
	if t.eof {
		return false
	}
	if !t.Source.Scan() {
		t.eof = true
		return false
	}
	t.recs = append(t.recs, t.Source.Record())
	return true
}

// Matcher classifies each query record against the target records on the same
// key.  Both sources must be sorted by (key, begin).  Shared keys are found
// with a Synchronizer.  For each shared key, a window of targets is kept:
// targets enter once their begin is at or before the query's end and leave
// once they end before the query's begin, so each query is compared only with
// targets near it.  Every query is reported in input order; queries on keys
// with no target, and queries with no overlapping target, are reported with an
// empty Targets list.
type Matcher struct {
	key     KeyFunc
	tap     *tapSource
	sync    *Synchronizer
	drained bool
	err     error

	// unmatched are queries on keys the targets lack, to be reported before
	// queries.
	unmatched []*gff.Record
	queries   []*gff.Record
	targets   []*gff.Record
	next      int // next target to enter the window
	window    []*gff.Record
	match     Match
}

// NewMatcher creates a Matcher.
func NewMatcher(queries, targets Source, key KeyFunc) *Matcher {
	tap := &tapSource{Source: queries}
	return &Matcher{key: key, tap: tap, sync: NewSynchronizer(tap, targets, key)}
}

// Scan advances to the next query.
func (m *Matcher) Scan() bool {
	for {
		if len(m.unmatched) > 0 {
			m.match = Match{Query: m.unmatched[0]}
			m.unmatched = m.unmatched[1:]
			return true
		}
		if len(m.queries) > 0 {
			m.scanWindow()
			return true
		}
		if m.drained || m.err != nil {
			return false
		}
		if m.sync.Next() {
			// The tap holds the queries skipped since the last shared key, then
			// the run of the current key, then at most one lookahead record.
			pending, k := m.tap.recs, m.sync.Key()
			i := 0
			for i < len(pending) && m.key(pending[i]) != k {
				i++
			}
			n := len(m.sync.Left())
			m.unmatched, m.queries = pending[:i], pending[i:i+n]
			m.tap.recs = pending[i+n:]
			m.targets = m.sync.Right()
			m.next, m.window = 0, m.window[:0]
			continue
		}
		if m.err = m.sync.Err(); m.err != nil {
			return false
		}
		m.drain()
	}
}

// drain queues every query left once no key can be shared anymore.
func (m *Matcher) drain() {
	m.drained = true
	for m.tap.Scan() {
	}
	if m.err = m.tap.Err(); m.err != nil {
		return
	}
	for i := 1; i < len(m.tap.recs); i++ {
		if prev, cur := m.key(m.tap.recs[i-1]), m.key(m.tap.recs[i]); cur < prev {
			m.err = fmt.Errorf("interval.Matcher: query source not sorted by key (%q after %q)", cur, prev)
			return
		}
	}
	m.unmatched, m.tap.recs = m.tap.recs, nil
}

// scanWindow matches the next query of the current key.
func (m *Matcher) scanWindow() {
	q := m.queries[0]
	m.queries = m.queries[1:]
	_, qEnd, _ := bounds(q)
	for m.next < len(m.targets) {
		tBegin, _, _ := bounds(m.targets[m.next])
		if tBegin > qEnd {
			break
		}
		m.window = append(m.window, m.targets[m.next])
		m.next++
	}
	m.match = Match{Query: q}
	kept := m.window[:0]
	for _, t := range m.window {
		switch Classify(q, t) {
		case DisjointBefore:
			// Later queries begin no earlier, so t cannot overlap them either.
			continue
		case Overlap:
			m.match.Targets = append(m.match.Targets, t)
		}
		kept = append(kept, t)
	}
	m.window = kept
}

// Match returns the current query and its overlapping targets.
func (m *Matcher) Match() Match { return m.match }

// Err returns the error that stopped Scan, if any.
func (m *Matcher) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.sync.Err()
}
