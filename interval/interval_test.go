package interval

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

// rec makes a GFF record with an ID attribute.
func rec(t *testing.T, seq string, begin, end int, strand, id string) *gff.Record {
	r, err := gff.ParseLine(fmt.Sprintf("%s\ttest\tgene\t%d\t%d\t.\t%s\t.\tID=%s", seq, begin, end, strand, id), gff.GFF)
	assert.NoError(t, err)
	return r
}

func ids(recs []*gff.Record) []string {
	s := []string{}
	for _, r := range recs {
		s = append(s, r.String("ID"))
	}
	return s
}

type span struct {
	begin, end int
	ids        []string
}

func spans(groups []Group) []span {
	s := []span{}
	for _, g := range groups {
		s = append(s, span{g.Begin, g.End, ids(g.Records)})
	}
	return s
}

func TestSort(t *testing.T) {
	in := []*gff.Record{
		rec(t, "A", 5, 9, "+", "a"),
		rec(t, "B", 1, 3, "+", "b"),
		rec(t, "A", 1, 2, "+", "c"),
		rec(t, "A", 5, 6, "+", "d"),
	}
	sorted, err := Sort(in, SequenceKey)
	assert.NoError(t, err)
	expect.EQ(t, ids(sorted), []string{"c", "a", "d", "b"})
	// The input is left alone.
	expect.EQ(t, ids(in), []string{"a", "b", "c", "d"})

	bad := rec(t, "A", 1, 2, "+", "x")
	bad.SetString(gff.ColBegin, "one")
	_, err = Sort(append(in, bad), SequenceKey)
	assert.Regexp(t, err, "record 4")
}

func TestGroupsOverlap(t *testing.T) {
	recs := []*gff.Record{
		rec(t, "A", 1, 10, "+", "r1"),
		rec(t, "A", 5, 8, "+", "r2"),
		rec(t, "A", 9, 20, "+", "r3"),
		rec(t, "A", 25, 30, "+", "r4"),
	}
	groups, err := Groups(recs, SequenceKey)
	assert.NoError(t, err)
	expect.EQ(t, spans(groups), []span{
		{1, 20, []string{"r1", "r2", "r3"}},
		{25, 30, []string{"r4"}},
	})

	// begin == stop does not merge.
	groups, err = Groups([]*gff.Record{
		rec(t, "A", 9, 20, "+", "r3"),
		rec(t, "A", 20, 25, "+", "r5"),
	}, SequenceKey)
	assert.NoError(t, err)
	expect.EQ(t, spans(groups), []span{
		{9, 20, []string{"r3"}},
		{20, 25, []string{"r5"}},
	})

	// Transitive overlap through the running envelope.
	groups, err = Groups([]*gff.Record{
		rec(t, "A", 1, 100, "+", "long"),
		rec(t, "A", 2, 3, "+", "s1"),
		rec(t, "A", 90, 120, "+", "s2"),
		rec(t, "B", 90, 120, "+", "other"),
	}, SequenceKey)
	assert.NoError(t, err)
	expect.EQ(t, spans(groups), []span{
		{1, 120, []string{"long", "s1", "s2"}},
		{90, 120, []string{"other"}},
	})
	expect.EQ(t, groups[1].Key, "B")
}

func TestGroupsStrandKey(t *testing.T) {
	in := []*gff.Record{
		rec(t, "chr1", 100, 200, "+", "gene"),
		rec(t, "chr1", 100, 200, "-", "transcript"),
	}
	groups, err := Groups(in, SequenceKey)
	assert.NoError(t, err)
	expect.EQ(t, len(groups), 1)

	sorted, err := Sort(in, StrandKey)
	assert.NoError(t, err)
	groups, err = Groups(sorted, StrandKey)
	assert.NoError(t, err)
	expect.EQ(t, spans(groups), []span{
		{100, 200, []string{"gene"}},
		{100, 200, []string{"transcript"}},
	})
	expect.EQ(t, groups[0].Key, "chr1+")
	expect.EQ(t, groups[1].Key, "chr1-")
}

func TestGrouperStates(t *testing.T) {
	in := []*gff.Record{
		rec(t, "A", 1, 10, "+", "r1"),
		rec(t, "A", 20, 30, "+", "r2"),
	}
	g := NewGrouper(NewSliceSource(in), SequenceKey)
	expect.EQ(t, g.State(), AwaitingFirst)
	assert.True(t, g.Scan())
	expect.EQ(t, g.State(), Emitting)
	expect.EQ(t, ids(g.Group().Records), []string{"r1"})
	assert.True(t, g.Scan())
	expect.EQ(t, ids(g.Group().Records), []string{"r2"})
	assert.False(t, g.Scan())
	expect.EQ(t, g.State(), Done)
	assert.NoError(t, g.Err())
	assert.False(t, g.Scan())

	// Groups hold copies.
	in[0].SetString("ID", "changed")
	g = NewGrouper(NewSliceSource(in), SequenceKey)
	assert.True(t, g.Scan())
	grp := g.Group()
	in[0].SetString("ID", "changed again")
	expect.EQ(t, grp.Records[0].String("ID"), "changed")

	g = NewGrouper(NewSliceSource(nil), SequenceKey)
	assert.False(t, g.Scan())
	expect.EQ(t, g.State(), Done)
	assert.NoError(t, g.Err())
}

func TestGrouperUnsorted(t *testing.T) {
	_, err := Groups([]*gff.Record{
		rec(t, "A", 1, 5, "+", "a"),
		rec(t, "B", 1, 5, "+", "b"),
		rec(t, "A", 10, 20, "+", "c"),
	}, SequenceKey)
	assert.Regexp(t, err, "split key A")

	_, err = Groups([]*gff.Record{
		rec(t, "A", 10, 20, "+", "a"),
		rec(t, "A", 1, 5, "+", "b"),
	}, SequenceKey)
	assert.Regexp(t, err, "unsorted input")

	// A new group on the same key is not a split key.
	groups, err := Groups([]*gff.Record{
		rec(t, "A", 1, 5, "+", "a"),
		rec(t, "A", 10, 20, "+", "b"),
		rec(t, "A", 30, 40, "+", "c"),
	}, SequenceKey)
	assert.NoError(t, err)
	expect.EQ(t, len(groups), 3)
}

func TestMerge(t *testing.T) {
	left := []*gff.Record{
		rec(t, "A", 1, 5, "+", "l1"),
		rec(t, "A", 10, 15, "+", "l2"),
		rec(t, "C", 1, 5, "+", "l3"),
	}
	right := []*gff.Record{
		rec(t, "A", 10, 12, "+", "r1"),
		rec(t, "B", 3, 4, "+", "r2"),
		rec(t, "C", 1, 2, "+", "r3"),
	}
	m := Merge(SequenceKey, NewSliceSource(left), NewSliceSource(right), NewSliceSource(nil))
	var got []*gff.Record
	for m.Scan() {
		got = append(got, m.Record())
	}
	assert.NoError(t, m.Err())
	expect.EQ(t, ids(got), []string{"l1", "l2", "r1", "r2", "l3", "r3"})

	want, err := Sort(append(append([]*gff.Record{}, left...), right...), SequenceKey)
	assert.NoError(t, err)
	expect.EQ(t, ids(got), ids(want))

	bad := rec(t, "A", 1, 2, "+", "x")
	bad.SetString(gff.ColEnd, "?")
	m = Merge(SequenceKey, NewSliceSource(left), NewSliceSource([]*gff.Record{bad}))
	assert.False(t, m.Scan())
	assert.Regexp(t, m.Err(), "source 1")
}

func TestClassify(t *testing.T) {
	self := rec(t, "A", 10, 20, "+", "self")
	tests := []struct {
		begin, end int
		want       Relation
	}{
		{1, 9, DisjointBefore},
		{1, 10, Overlap},
		{12, 15, Overlap},
		{5, 25, Overlap},
		{20, 30, Overlap},
		{21, 30, DisjointAfter},
	}
	for _, test := range tests {
		other := rec(t, "A", test.begin, test.end, "+", "other")
		expect.EQ(t, Classify(self, other), test.want, "%d-%d", test.begin, test.end)
	}
	expect.EQ(t, DisjointAfter.String(), "disjoint-after")
}

func TestSynchronizer(t *testing.T) {
	left := []*gff.Record{
		rec(t, "A", 1, 2, "+", "la"),
		rec(t, "A", 5, 6, "+", "la2"),
		rec(t, "C", 1, 2, "+", "lc"),
		rec(t, "D", 1, 2, "+", "ld"),
	}
	right := []*gff.Record{
		rec(t, "B", 1, 2, "+", "rb"),
		rec(t, "C", 1, 2, "+", "rc"),
		rec(t, "C", 3, 4, "+", "rc2"),
		rec(t, "D", 1, 2, "+", "rd"),
		rec(t, "E", 1, 2, "+", "re"),
	}
	s := NewSynchronizer(NewSliceSource(left), NewSliceSource(right), SequenceKey)
	assert.True(t, s.Next())
	expect.EQ(t, s.Key(), "C")
	expect.EQ(t, ids(s.Left()), []string{"lc"})
	expect.EQ(t, ids(s.Right()), []string{"rc", "rc2"})
	assert.True(t, s.Next())
	expect.EQ(t, s.Key(), "D")
	expect.EQ(t, ids(s.Right()), []string{"rd"})
	// Left is exhausted; E is never shared.
	assert.False(t, s.Next())
	assert.False(t, s.Next())
	assert.NoError(t, s.Err())

	s = NewSynchronizer(NewSliceSource(nil), NewSliceSource(right), SequenceKey)
	assert.False(t, s.Next())
	assert.NoError(t, s.Err())

	unsorted := []*gff.Record{
		rec(t, "D", 1, 2, "+", "d"),
		rec(t, "A", 1, 2, "+", "a"),
	}
	s = NewSynchronizer(NewSliceSource(unsorted), NewSliceSource(right), SequenceKey)
	assert.False(t, s.Next())
	assert.Regexp(t, s.Err(), "left source not sorted")
}

func TestMatcher(t *testing.T) {
	genes := []*gff.Record{
		rec(t, "chr1", 100, 500, "+", "g1"),
		rec(t, "chr1", 400, 900, "+", "g2"),
		rec(t, "chr1", 2000, 3000, "+", "g3"),
	}
	transcripts := []*gff.Record{
		rec(t, "chr1", 50, 120, "+", "t1"),
		rec(t, "chr1", 450, 460, "+", "t2"),
		rec(t, "chr1", 1000, 1500, "+", "t3"),
		rec(t, "chr1", 2500, 2600, "+", "t4"),
		rec(t, "chr2", 1, 100, "+", "t5"),
	}
	m := NewMatcher(NewSliceSource(transcripts), NewSliceSource(genes), SequenceKey)
	got := map[string][]string{}
	var order []string
	for m.Scan() {
		match := m.Match()
		id := match.Query.String("ID")
		order = append(order, id)
		got[id] = ids(match.Targets)
	}
	assert.NoError(t, m.Err())
	expect.EQ(t, order, []string{"t1", "t2", "t3", "t4", "t5"})
	expect.EQ(t, got, map[string][]string{
		"t1": {"g1"},
		"t2": {"g1", "g2"},
		"t3": {},
		"t4": {"g3"},
		"t5": {},
	})
}

func TestMatcherUnsharedKeys(t *testing.T) {
	genes := []*gff.Record{
		rec(t, "chr1", 100, 200, "+", "g1"),
		rec(t, "chr3", 100, 200, "+", "g3"),
	}
	tests := []struct {
		transcripts []*gff.Record
		want        []string
		matched     []string
	}{
		{
			[]*gff.Record{
				rec(t, "chr0", 1, 10, "+", "t0"),
				rec(t, "chr1", 150, 160, "+", "t1"),
				rec(t, "chr2", 150, 160, "+", "t2a"),
				rec(t, "chr2", 170, 180, "+", "t2b"),
				rec(t, "chr3", 150, 160, "+", "t3"),
				rec(t, "chr4", 150, 160, "+", "t4a"),
				rec(t, "chr4", 170, 180, "+", "t4b"),
			},
			[]string{"t0", "t1", "t2a", "t2b", "t3", "t4a", "t4b"},
			[]string{"t1", "t3"},
		},
		{
			[]*gff.Record{rec(t, "chr2", 1, 10, "+", "t2")},
			[]string{"t2"},
			nil,
		},
		{nil, nil, nil},
	}
	for _, test := range tests {
		m := NewMatcher(NewSliceSource(test.transcripts), NewSliceSource(genes), SequenceKey)
		var order, matched []string
		for m.Scan() {
			id := m.Match().Query.String("ID")
			order = append(order, id)
			if len(m.Match().Targets) > 0 {
				matched = append(matched, id)
			}
		}
		assert.NoError(t, m.Err())
		expect.EQ(t, order, test.want)
		expect.EQ(t, matched, test.matched)
	}

	// No targets at all.
	m := NewMatcher(NewSliceSource([]*gff.Record{rec(t, "chr1", 1, 10, "+", "t1")}), NewSliceSource(nil), SequenceKey)
	assert.True(t, m.Scan())
	expect.EQ(t, m.Match().Query.String("ID"), "t1")
	expect.EQ(t, len(m.Match().Targets), 0)
	assert.False(t, m.Scan())
	assert.NoError(t, m.Err())
}

func TestMatcherUnsortedQueries(t *testing.T) {
	genes := []*gff.Record{rec(t, "chr1", 100, 200, "+", "g1")}
	transcripts := []*gff.Record{
		rec(t, "chr5", 1, 10, "+", "t5"),
		rec(t, "chr2", 1, 10, "+", "t2"),
	}
	m := NewMatcher(NewSliceSource(transcripts), NewSliceSource(genes), SequenceKey)
	for m.Scan() {
	}
	assert.Regexp(t, m.Err(), "not sorted by key")
}

func TestMatcherStrandKey(t *testing.T) {
	genes := []*gff.Record{rec(t, "chr1", 100, 200, "+", "g1")}
	transcripts := []*gff.Record{
		rec(t, "chr1", 100, 200, "+", "plus"),
		rec(t, "chr1", 100, 200, "-", "minus"),
	}
	sorted, err := Sort(transcripts, StrandKey)
	assert.NoError(t, err)
	m := NewMatcher(NewSliceSource(sorted), NewSliceSource(genes), StrandKey)
	assert.True(t, m.Scan())
	expect.EQ(t, m.Match().Query.String("ID"), "plus")
	expect.EQ(t, ids(m.Match().Targets), []string{"g1"})
	// No gene on the minus strand, but the transcript is still reported.
	assert.True(t, m.Scan())
	expect.EQ(t, m.Match().Query.String("ID"), "minus")
	expect.EQ(t, len(m.Match().Targets), 0)
	assert.False(t, m.Scan())
	assert.NoError(t, m.Err())
}

func TestUnion(t *testing.T) {
	groups, err := Groups([]*gff.Record{
		rec(t, "chr1", 1, 10, "+", "a"),
		rec(t, "chr1", 11, 20, "+", "b"),
		rec(t, "chr1", 30, 40, "+", "c"),
		rec(t, "chr2", 5, 5, "+", "d"),
	}, SequenceKey)
	assert.NoError(t, err)
	expect.EQ(t, len(groups), 4)
	u, err := NewUnion(groups)
	assert.NoError(t, err)
	expect.EQ(t, u.keyMap, map[string][]int{
		"chr1": {0, 20, 29, 40},
		"chr2": {4, 5},
	})
	expect.EQ(t, u.Keys(), []string{"chr1", "chr2"})
	expect.EQ(t, u.Bases("chr1"), 31)

	tests := []struct {
		key  string
		pos  int
		want bool
	}{
		{"chr1", 1, true},
		{"chr1", 20, true},
		{"chr1", 21, false},
		{"chr1", 29, false},
		{"chr1", 30, true},
		{"chr1", 40, true},
		{"chr1", 41, false},
		{"chr1", 5, true},
		{"chr1", 25, false},
		{"chr2", 4, false},
		{"chr2", 5, true},
		{"chr3", 5, false},
		{"chr1", 0, false},
	}
	for _, test := range tests {
		expect.EQ(t, u.Contains(test.key, test.pos), test.want, "%s:%d", test.key, test.pos)
	}
	c := u.Clone()
	expect.True(t, c.Contains("chr1", 35))

	var buf bytes.Buffer
	assert.NoError(t, u.WriteBED(&buf))
	expect.EQ(t, buf.String(), "chr1\t0\t20\nchr1\t29\t40\nchr2\t4\t5\n")

	_, err = NewUnion([]Group{
		{Key: "A", Begin: 1, End: 2},
		{Key: "B", Begin: 1, End: 2},
		{Key: "A", Begin: 5, End: 6},
	})
	assert.Regexp(t, err, "split key A")
	_, err = NewUnion([]Group{{Key: "A", Begin: 0, End: 2}})
	assert.Regexp(t, err, "invalid range")
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		region string
		want   Region
		err    string
	}{
		{"chr1:100-200", Region{"chr1", 100, 200}, ""},
		{"chr1:5", Region{"chr1", 5, 5}, ""},
		{"lcl|Ctg0001", Region{"lcl|Ctg0001", 1, math.MaxInt32 - 1}, ""},
		{"", Region{}, "empty region"},
		{":1-2", Region{}, "empty sequence"},
		{"chr1:0-5", Region{}, "out of range"},
		{"chr1:10-5", Region{}, "invalid range"},
		{"chr1:x", Region{}, "invalid syntax"},
	}
	for _, test := range tests {
		got, err := ParseRegion(test.region)
		if test.err != "" {
			expect.Regexp(t, err, test.err, test.region)
			continue
		}
		assert.NoError(t, err)
		expect.EQ(t, got, test.want)
	}
}

func TestFwdsearchPos(t *testing.T) {
	a := []int{0, 20, 29, 40, 55, 60, 99, 100, 150, 151}
	for idx := 0; idx <= len(a); idx++ {
		for x := -1; x <= 160; x++ {
			want := searchPos(a, x)
			if want < idx {
				continue
			}
			expect.EQ(t, fwdsearchPos(a, x, idx), want, "x=%d idx=%d", x, idx)
		}
	}
}
