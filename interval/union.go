package interval

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

const posMax = math.MaxInt32

// searchPos returns the index of x in a[], or the position where x would be
// inserted if x isn't in a (this could be len(a)).
func searchPos(a []int, x int) int {
	return sort.SearchInts(a, x)
}

// fwdsearchPos is searchPos for a query known to land at or after idx.  It
// gallops forward from idx in doubling steps and finishes with a binary
// search over the last step.
func fwdsearchPos(a []int, x int, idx int) int {
	lo, hi := idx, idx
	for step := 1; hi < len(a) && a[hi] < x; step *= 2 {
		lo = hi + 1
		hi += step
	}
	if hi > len(a) {
		hi = len(a)
	}
	return lo + sort.SearchInts(a[lo:hi], x)
}

// Union is the set of positions covered by a list of groups, flattened into
// disjoint envelopes per key.  Each key maps to a length-2N slice where the
// 0-based start of envelope k is at [2k] and its exclusive end at [2k+1], in
// increasing order.  Unlike Grouper, Union coalesces envelopes that touch,
// since it tracks covered positions rather than records.
//
// Union caches the last queried key and position, so it is not safe for
// concurrent use.  Use Clone to get an independent query state.
type Union struct {
	// keys lists the keys in the order they were first seen.
	keys   []string
	keyMap map[string][]int

	// lastIntervals is the interval set of lastKey.
	lastIntervals []int
	lastKey       string
	lastValid     bool
	// lastPos is the last queried position; lastIdx is
	// searchPos(lastIntervals, lastPos).
	lastPos      int
	lastIdx      int
	isSequential bool
}

// NewUnion builds a Union from groups in the order Grouper yields them: all
// groups of one key together, by increasing begin.
func NewUnion(groups []Group) (*Union, error) {
	u := &Union{keyMap: map[string][]int{}}
	var chrIntervals []int
	prevKey := ""
	prevStart, prevEnd := 0, 0
	totBases := 0
	flush := func() {
		u.keyMap[prevKey] = append(chrIntervals, prevStart, prevEnd)
	}
	for i, g := range groups {
		if g.Begin < 1 || g.End < g.Begin || g.End >= posMax {
			return nil, fmt.Errorf("interval.NewUnion: group %d has invalid range [%d, %d]", i, g.Begin, g.End)
		}
		start, end := g.Begin-1, g.End
		if i == 0 || g.Key != prevKey {
			if i > 0 {
				flush()
			}
			if _, found := u.keyMap[g.Key]; found {
				return nil, fmt.Errorf("interval.NewUnion: unsorted input (split key %v)", g.Key)
			}
			u.keys = append(u.keys, g.Key)
			prevKey = g.Key
			chrIntervals = []int{}
			prevStart, prevEnd = start, end
			totBases += end - start
			continue
		}
		if start > prevEnd {
			chrIntervals = append(chrIntervals, prevStart, prevEnd)
			prevStart, prevEnd = start, end
			totBases += end - start
			continue
		}
		if start < prevStart {
			return nil, fmt.Errorf("interval.NewUnion: unsorted input at group %d", i)
		}
		if end > prevEnd {
			totBases += end - prevEnd
			prevEnd = end
		}
	}
	if len(groups) > 0 {
		flush()
	}
	log.Debug.Printf("interval.NewUnion: %d key(s), %d base(s) covered", len(u.keys), totBases)
	return u, nil
}

// Keys returns the keys of the union in input order.
func (u *Union) Keys() []string { return u.keys }

// Bases returns the number of positions covered on key.
func (u *Union) Bases(key string) int {
	n := 0
	a := u.keyMap[key]
	for i := 0; i < len(a); i += 2 {
		n += a[i+1] - a[i]
	}
	return n
}

// Contains checks whether the 1-based position pos on key is covered.
// Queries by nondecreasing position on one key run in amortized constant
// time.
func (u *Union) Contains(key string, pos int) bool {
	if !u.lastValid || key != u.lastKey {
		u.lastKey = key
		u.lastValid = true
		u.lastIntervals = u.keyMap[key]
		if u.lastIntervals == nil {
			return false
		}
		u.lastIdx = searchPos(u.lastIntervals, pos)
		u.lastPos = pos
		u.isSequential = true
		return u.lastIdx&1 == 1
	}
	if u.lastIntervals == nil {
		return false
	}
	if u.isSequential {
		if pos >= u.lastPos {
			u.lastIdx = fwdsearchPos(u.lastIntervals, pos, u.lastIdx)
			u.lastPos = pos
			return u.lastIdx&1 == 1
		}
		u.isSequential = false
	}
	return searchPos(u.lastIntervals, pos)&1 == 1
}

// Clone returns a Union which shares the interval set, but has its own search
// state.
func (u *Union) Clone() *Union {
	return &Union{keys: u.keys, keyMap: u.keyMap}
}

// WriteBED writes the envelopes as a three-column BED file (0-based,
// half-open), keys in input order.
func (u *Union) WriteBED(w io.Writer) error {
	tw := tsv.NewWriter(w)
	for _, key := range u.keys {
		a := u.keyMap[key]
		for i := 0; i < len(a); i += 2 {
			tw.WriteString(key)
			tw.WriteInt64(int64(a[i]))
			tw.WriteInt64(int64(a[i+1]))
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

// Region is a closed 1-based range on one sequence.
type Region struct {
	Sequence   string
	Begin, End int
}

// ParseRegion parses a region string of one of the forms
//   [sequence]:[1-based first pos]-[last pos]
//   [sequence]:[1-based pos]
//   [sequence]
// The range [1, 2^31 - 2] is returned if there is no positional restriction.
func ParseRegion(region string) (result Region, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegion: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result = Region{Sequence: region, Begin: 1, End: posMax - 1}
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegion: empty sequence name")
		return
	}
	result.Sequence = region[0:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegion: position %v in region string out of range", rangeStr)
			return
		}
		result.Begin, result.End = int(pos1), int(pos1)
		return
	}
	var begin, end int
	if begin, err = strconv.Atoi(rangeStr[:dashPos]); err != nil {
		return
	}
	if begin <= 0 {
		err = fmt.Errorf("interval.ParseRegion: position %v in region string out of range", rangeStr[:dashPos])
		return
	}
	if end, err = strconv.Atoi(rangeStr[dashPos+1:]); err != nil {
		return
	}
	if end < begin || end >= posMax {
		err = fmt.Errorf("interval.ParseRegion: invalid range string %v", rangeStr)
		return
	}
	result.Begin, result.End = begin, end
	return
}
