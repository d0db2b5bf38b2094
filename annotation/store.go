// Package annotation holds GFF/GTF records in memory.  A Store is filled by
// reading a file line by line, can be edited in place (attribute injection,
// find/replace, key renaming, coordinate coercion) and is queried through
// iterators that rescan the store on every call.
package annotation

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/gffkit/encoding/gff"
	perrors "github.com/pkg/errors"
)

// OpenError is returned when an input file cannot be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("unable to open annotation file %s: %v", e.Path, e.Err)
}

// Cause returns the underlying error, for github.com/pkg/errors.Cause.
func (e *OpenError) Cause() error { return e.Err }

// Store is an ordered, in-memory set of annotation records.  Records are kept
// in the order they were read.  Store is not thread safe; use one Store per
// goroutine and combine the results after reading finishes.
type Store struct {
	// CommentFunc, if set, is called with every comment line read, including
	// "##" directives.  Comments are otherwise discarded.
	CommentFunc func(line string)

	records []*gff.Record
	dialect gff.Dialect

	path string
	in   file.File
	rc   io.ReadCloser // decompressor on top of in, if any
	sc   *gff.Scanner
}

// NewStore creates an empty store that parses attributes in dialect d.
func NewStore(d gff.Dialect) *Store {
	return &Store{dialect: d}
}

// Open binds the store to the file at path.  Compressed files are
// decompressed based on their extension.  Any previously bound input is
// closed first.
func (s *Store) Open(ctx context.Context, path string) error {
	if err := s.Close(ctx); err != nil {
		return err
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return &OpenError{Path: path, Err: errors.E(err, "gff.open", path)}
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		s.rc = u
		r = u
	}
	s.in = in
	s.path = path
	s.sc = gff.NewScanner(r)
	log.Debug.Printf("%s: opened in %v mode", path, s.dialect)
	return nil
}

// OpenReader binds the store to r.  name is used in error messages.  The
// caller retains ownership of r.
func (s *Store) OpenReader(r io.Reader, name string) {
	s.path = name
	s.sc = gff.NewScanner(r)
}

// Close releases the bound input, if any.  Stored records are kept.
func (s *Store) Close(ctx context.Context) error {
	e := errors.Once{}
	if s.rc != nil {
		e.Set(s.rc.Close())
		s.rc = nil
	}
	if s.in != nil {
		e.Set(s.in.Close(ctx))
		s.in = nil
	}
	s.sc = nil
	return e.Err()
}

// Path returns the name of the bound input.
func (s *Store) Path() string { return s.path }

// Dialect returns the current attribute dialect.
func (s *Store) Dialect() gff.Dialect { return s.dialect }

// SetMode changes the attribute dialect for lines read from now on.  Records
// already stored are not reparsed.
func (s *Store) SetMode(d gff.Dialect) { s.dialect = d }

// SetModeName is SetMode for a dialect name such as "GTF".  An unknown name is
// reported and leaves the mode unchanged.
func (s *Store) SetModeName(name string) gff.Dialect {
	d, err := gff.ParseDialect(name)
	if err != nil {
		log.Error.Printf("annotation.SetMode: %v, mode is %v", err, s.dialect)
		return s.dialect
	}
	s.dialect = d
	return d
}

// Len returns the number of stored records.
func (s *Store) Len() int { return len(s.records) }

// Record returns the i'th record.  The store keeps ownership.
func (s *Store) Record(i int) *gff.Record { return s.records[i] }

// Records returns all records in store order.  The caller must not modify the
// slice.
func (s *Store) Records() []*gff.Record { return s.records }

// Append adds r to the end of the store.
func (s *Store) Append(r *gff.Record) { s.records = append(s.records, r) }

// next reads one line and parses it if it is a feature line.  rec is nil for
// comments and blank lines.
func (s *Store) next() (ok bool, rec *gff.Record, err error) {
	if s.sc == nil {
		return false, nil, perrors.Errorf("annotation: no input is open")
	}
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return false, nil, perrors.Wrapf(err, "%s", s.path)
		}
		return false, nil, nil
	}
	switch s.sc.Kind() {
	case gff.CommentLine:
		if s.CommentFunc != nil {
			s.CommentFunc(s.sc.Text())
		}
		return true, nil, nil
	case gff.BlankLine:
		return true, nil, nil
	}
	rec, err = gff.ParseLine(s.sc.Text(), s.dialect)
	if err != nil {
		return false, nil, perrors.Wrapf(err, "%s:%d", s.path, s.sc.Line())
	}
	return true, rec, nil
}

// ReadOne reads one line from the input.  Feature lines are parsed and
// stored; comment and blank lines are consumed and discarded.  It returns
// false at end of input.
func (s *Store) ReadOne() (bool, error) {
	ok, rec, err := s.next()
	if rec != nil {
		s.records = append(s.records, rec)
	}
	return ok, err
}

// ReadAll reads the rest of the input.  It returns the number of lines
// consumed, including comments.
func (s *Store) ReadAll() (int, error) {
	n := 0
	for {
		ok, err := s.ReadOne()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

// ReadFeatures reads the rest of the input and stores only the records whose
// feature column is one of features.  It returns the number of records
// stored.
func (s *Store) ReadFeatures(features ...string) (int, error) {
	want := make(map[string]bool, len(features))
	for _, f := range features {
		want[f] = true
	}
	n := 0
	for {
		ok, rec, err := s.next()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		if rec != nil && want[rec.Feature()] {
			s.records = append(s.records, rec)
			n++
		}
	}
}

// ReadFile is a shorthand for Open, ReadFeatures (or ReadAll when features is
// empty) and Close.
func ReadFile(ctx context.Context, path string, d gff.Dialect, features ...string) (s *Store, err error) {
	s = NewStore(d)
	if err = s.Open(ctx, path); err != nil {
		return nil, err
	}
	defer func() {
		if e := s.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if len(features) == 0 {
		_, err = s.ReadAll()
	} else {
		_, err = s.ReadFeatures(features...)
	}
	return s, err
}
