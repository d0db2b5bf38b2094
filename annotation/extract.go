package annotation

import (
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/gffkit/encoding/fasta"
	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/pkg/errors"
)

// ExtractOpts controls ExtractSequences.
type ExtractOpts struct {
	// IDPrefix is prepended to the running count to make output sequence
	// names, e.g. "ext_0", "ext_1", ...
	IDPrefix string
	// Features restricts extraction to records with these feature types.
	// Empty means all records in the store.
	Features []string
	// RevComp reverse-complements the extracted sequence of records on the
	// "-" strand.
	RevComp bool
	// SkipOutOfRange logs and skips records whose coordinates fall outside
	// the sequence instead of failing.
	SkipOutOfRange bool
}

// DefaultExtractOpts is the default value for ExtractOpts.
var DefaultExtractOpts = ExtractOpts{IDPrefix: "ext_"}

// extractor writes the subsequences of annotations.
type extractor struct {
	s    *Store
	w    *fasta.Writer
	opts ExtractOpts
	want map[string]bool
	n    int
}

func newExtractor(s *Store, w *fasta.Writer, opts ExtractOpts) *extractor {
	e := &extractor{s: s, w: w, opts: opts, want: map[string]bool{}}
	for _, f := range opts.Features {
		e.want[f] = true
	}
	return e
}

// emit writes the subsequence of ann, the record at row.  get returns the
// 0-based half-open range [start, end) of ann's sequence.
func (e *extractor) emit(row int, ann *gff.Record, get func(start, end uint64) (string, error)) error {
	if len(e.want) > 0 && !e.want[ann.Feature()] {
		return nil
	}
	sub, err := subsequence(ann, get)
	if err != nil {
		if e.opts.SkipOutOfRange {
			log.Error.Printf("extract: row %d: %v", row, err)
			return nil
		}
		return errors.Wrapf(err, "%s row %d", e.s.Path(), row)
	}
	if e.opts.RevComp && ann.Strand() == "-" {
		sub = ReverseComplement(sub)
	}
	out := fasta.Record{
		ID:          fmt.Sprintf("%s%d", e.opts.IDPrefix, e.n),
		Description: ann.String(gff.ColAttribute),
		Seq:         sub,
	}
	if err := e.w.Write(out); err != nil {
		return err
	}
	e.n++
	return nil
}

// ExtractSequences reads FASTA records from sc in file order and, for every
// annotation on the same sequence, writes the annotated subsequence to w.
// Annotation coordinates are 1-based and closed, so [begin, end] becomes
// seq[begin-1:end].  The output description is the record's attribute text.
// It returns the number of sequences written.
func ExtractSequences(sc *fasta.Scanner, s *Store, w *fasta.Writer, opts ExtractOpts) (int, error) {
	e := newExtractor(s, w, opts)
	for sc.Scan() {
		rec := sc.Record()
		log.Debug.Printf("extract: sequence %s, %d bases", rec.ID, len(rec.Seq))
		get := func(start, end uint64) (string, error) {
			return fasta.Subseq(rec.Seq, rec.ID, start, end)
		}
		for it := s.BySequence(rec.ID); it.Scan(); {
			if err := e.emit(it.Row(), it.Record(), get); err != nil {
				return e.n, err
			}
		}
	}
	return e.n, sc.Err()
}

// ExtractFasta is like ExtractSequences, but looks sequences up in f, so the
// output follows store order instead of FASTA order.  Annotations on
// sequences that f lacks are skipped.
func ExtractFasta(f fasta.Fasta, s *Store, w *fasta.Writer, opts ExtractOpts) (int, error) {
	e := newExtractor(s, w, opts)
	for i, ann := range s.records {
		seq := ann.Sequence()
		if _, err := f.Len(seq); err != nil {
			log.Debug.Printf("extract: row %d: %v", i, err)
			continue
		}
		get := func(start, end uint64) (string, error) {
			return f.Get(seq, start, end)
		}
		if err := e.emit(i, ann, get); err != nil {
			return e.n, err
		}
	}
	return e.n, nil
}

func subsequence(ann *gff.Record, get func(start, end uint64) (string, error)) (string, error) {
	begin, ok1 := ann.Begin()
	end, ok2 := ann.End()
	if !ok1 || !ok2 {
		return "", errors.Errorf("non-numeric coordinates %q-%q",
			ann.String(gff.ColBegin), ann.String(gff.ColEnd))
	}
	if begin < 1 {
		return "", errors.Errorf("begin %d is not a 1-based position", begin)
	}
	return get(uint64(begin-1), uint64(end))
}

// ReverseComplement returns the reverse complement of a nucleotide sequence.
// IUPAC ambiguity codes are complemented; case is preserved; any other
// character is copied unchanged.
func ReverseComplement(seq string) string {
	b := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		b[len(seq)-1-i] = complement[seq[i]]
	}
	return string(b)
}

var complement = func() (t [256]byte) {
	for i := range t {
		t[i] = byte(i)
	}
	pairs := []string{"AT", "CG", "RY", "KM", "BV", "DH", "NN", "SS", "WW"}
	for _, p := range pairs {
		for _, c := range []string{p, string([]byte{p[0] + 'a' - 'A', p[1] + 'a' - 'A'})} {
			t[c[0]], t[c[1]] = c[1], c[0]
		}
	}
	return
}()
