package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const maxLineSize = 1024 * 1024 * 300 // 300 MB

// Scanner reads FASTA records in file order.
//
//   sc := fasta.NewScanner(r)
//   for sc.Scan() {
//     rec := sc.Record()
//     ...
//   }
//   if err := sc.Err(); err != nil { ... }
type Scanner struct {
	sc      *bufio.Scanner
	header  string // pending header line of the next record
	started bool
	rec     Record
	seq     strings.Builder
	err     error
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)
	return &Scanner{sc: sc}
}

// Scan reads the next record.  It returns false at end of input or on error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.started {
		s.started = true
		for s.sc.Scan() {
			line := strings.TrimRight(s.sc.Text(), "\r")
			if len(line) == 0 {
				continue
			}
			if line[0] != '>' {
				s.err = errors.Errorf("malformed FASTA file: sequence data before the first header")
				return false
			}
			s.header = line
			break
		}
	}
	if s.header == "" {
		s.err = errors.Wrap(s.sc.Err(), "couldn't read FASTA data")
		return false
	}
	s.rec = Record{}
	s.rec.ID, s.rec.Description = splitHeader(s.header)
	s.header = ""
	s.seq.Reset()
	for s.sc.Scan() {
		line := strings.TrimRight(s.sc.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			s.header = line
			break
		}
		s.seq.WriteString(line)
	}
	s.rec.Seq = s.seq.String()
	if s.rec.ID == "" {
		s.err = errors.Errorf("malformed FASTA file: empty sequence name")
		return false
	}
	return true
}

// Record returns the record read by the last successful Scan.
func (s *Scanner) Record() Record { return s.rec }

// Err returns the first error encountered.
func (s *Scanner) Err() error { return s.err }
