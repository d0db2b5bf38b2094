package fasta

import (
	"bufio"
	"io"
)

// DefaultLineWidth is the number of bases per sequence line written by
// Writer.
const DefaultLineWidth = 60

// Writer writes FASTA records.
type Writer struct {
	w     *bufio.Writer
	width int
}

// NewWriter creates a Writer that wraps sequence lines at width bases.  A
// width <= 0 writes each sequence on one line.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 64<<10), width: width}
}

// Write emits one record.
func (w *Writer) Write(r Record) error {
	w.w.WriteByte('>')
	w.w.WriteString(r.ID)
	if r.Description != "" {
		w.w.WriteByte(' ')
		w.w.WriteString(r.Description)
	}
	w.w.WriteByte('\n')
	seq := r.Seq
	if w.width <= 0 {
		w.w.WriteString(seq)
		_, err := w.w.WriteString("\n")
		return err
	}
	for len(seq) > 0 {
		n := w.width
		if n > len(seq) {
			n = len(seq)
		}
		w.w.WriteString(seq[:n])
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// Flush writes buffered output.
func (w *Writer) Flush() error { return w.w.Flush() }
