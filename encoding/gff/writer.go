package gff

import (
	"io"
	"strings"

	"github.com/grailbio/base/tsv"
)

// WriterOpts controls how records are written.
type WriterOpts struct {
	// Dialect is the encoding of the attribute column.
	Dialect Dialect
	// Literal writes the stored attribute text verbatim instead of encoding
	// the record's attribute keys.  Edits made to attribute keys are then not
	// reflected in the output.
	Literal bool
}

// Writer writes records as tab-separated GFF or GTF lines.
type Writer struct {
	w    *tsv.Writer
	opts WriterOpts
}

// NewWriter creates a Writer.  Call Flush when done.
func NewWriter(w io.Writer, opts WriterOpts) *Writer {
	return &Writer{w: tsv.NewWriter(w), opts: opts}
}

// Write emits one record.  Missing fixed columns are written as ".".
func (w *Writer) Write(r *Record) error {
	for _, col := range columns[:NumColumns-1] {
		v, ok := r.Get(col)
		if !ok {
			w.w.WriteString(Unknown)
			continue
		}
		w.w.WriteString(v.String())
	}
	w.w.WriteString(w.attributeColumn(r))
	return w.w.EndLine()
}

func (w *Writer) attributeColumn(r *Record) string {
	if w.opts.Literal {
		if v, ok := r.Get(ColAttribute); ok {
			return v.String()
		}
	}
	s := FormatAttributes(r.Attributes(), w.opts.Dialect)
	if s == "" {
		return Unknown
	}
	return s
}

// WriteComment emits text as a "##" directive line.  Leading '#' characters
// of text are dropped, so "gff-version 3" and "##gff-version 3" write the
// same line.
func (w *Writer) WriteComment(text string) error {
	w.w.WriteString("##" + strings.TrimLeft(text, "#"))
	return w.w.EndLine()
}

// Flush writes buffered output.
func (w *Writer) Flush() error { return w.w.Flush() }
