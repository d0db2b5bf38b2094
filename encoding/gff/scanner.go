package gff

import (
	"bufio"
	"io"
	"strings"
)

// LineKind classifies a line returned by Scanner.
type LineKind int

const (
	// FeatureLine is an annotation record.
	FeatureLine LineKind = iota
	// CommentLine starts with '#'.  This includes "##" directives.
	CommentLine
	// BlankLine is empty or all whitespace.
	BlankLine
)

const maxLineSize = 64 << 20

// Scanner reads a GFF or GTF file one line at a time.
type Scanner struct {
	sc     *bufio.Scanner
	text   string
	kind   LineKind
	lineno int
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return &Scanner{sc: sc}
}

// Scan advances to the next line.  It returns false at end of input or on
// error; check Err.
func (s *Scanner) Scan() bool {
	if !s.sc.Scan() {
		return false
	}
	s.lineno++
	s.text = strings.TrimRight(s.sc.Text(), "\r")
	switch {
	case strings.HasPrefix(s.text, "#"):
		s.kind = CommentLine
	case strings.TrimSpace(s.text) == "":
		s.kind = BlankLine
	default:
		s.kind = FeatureLine
	}
	return true
}

// Text returns the current line without its line terminator.
func (s *Scanner) Text() string { return s.text }

// Kind returns the classification of the current line.
func (s *Scanner) Kind() LineKind { return s.kind }

// Line returns the 1-based number of the current line.
func (s *Scanner) Line() int { return s.lineno }

// Err returns the first read error.
func (s *Scanner) Err() error { return s.sc.Err() }
