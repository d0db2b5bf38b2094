// Package fasta reads and writes FASTA files.  FASTA files consist of a
// number of named sequences that may be interrupted by newlines.  For
// example:
//
// >chr7 assembled contig
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// The sequence name is the stretch of characters after '>' up to the first
// space.  The rest of the header line is the description; for example
// '>chr7 assembled contig' has name 'chr7' and description 'assembled contig'.
package fasta

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Record is one FASTA entry.
type Record struct {
	// ID is the sequence name.
	ID string
	// Description is the header text after the name, without the separating
	// space.  It may be empty.
	Description string
	// Seq is the concatenated sequence, without newlines.
	Seq string
}

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end).
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the FASTA file.
	SeqNames() []string
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New creates a new Fasta that holds all the FASTA data from the given reader
// in memory.
func New(r io.Reader) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	sc := NewScanner(r)
	for sc.Scan() {
		rec := sc.Record()
		if _, ok := f.seqs[rec.ID]; ok {
			return nil, errors.Errorf("duplicate sequence name %s", rec.ID)
		}
		f.seqs[rec.ID] = rec.Seq
		f.seqNames = append(f.seqNames, rec.ID)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	return Subseq(s, seqName, start, end)
}

// Len implements Fasta.Len().
func (f *fasta) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}

// Subseq returns s[start:end] after checking the range.  name is used only in
// error messages.
func Subseq(s, name string, start, end uint64) (string, error) {
	if end <= start {
		return "", fmt.Errorf("start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, name, len(s))
	}
	return s[start:end], nil
}

func splitHeader(line string) (id, desc string) {
	line = strings.TrimRight(line[1:], " \t")
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		return line[:i], strings.TrimLeft(line[i+1:], " \t")
	}
	return line, ""
}
