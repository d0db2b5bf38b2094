package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// output is a destination file, compressed according to its suffix: ".gz"
// uses gzip, ".bgz" uses BGZF.  The path "-" means stdout.
type output struct {
	ctx  context.Context
	path string
	out  file.File
	zw   io.WriteCloser
	w    io.Writer
}

func createOutput(ctx context.Context, path string) (*output, error) {
	o := &output{ctx: ctx, path: path}
	if path == "-" || path == "" {
		o.w = os.Stdout
		return o, nil
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	o.out = out
	o.w = out.Writer(ctx)
	switch {
	case strings.HasSuffix(path, ".gz"):
		o.zw = gzip.NewWriter(o.w)
	case strings.HasSuffix(path, ".bgz"):
		o.zw = bgzf.NewWriter(o.w, 1)
	}
	if o.zw != nil {
		o.w = o.zw
	}
	return o, nil
}

// Writer returns the stream to write to.
func (o *output) Writer() io.Writer { return o.w }

// Close flushes the compressor, if any, and closes the file.
func (o *output) Close() error {
	e := errors.Once{}
	if o.zw != nil {
		e.Set(o.zw.Close())
	}
	if o.out != nil {
		e.Set(o.out.Close(o.ctx))
	}
	if err := e.Err(); err != nil {
		return errors.E(err, "close", o.path)
	}
	return nil
}

// input is an opened source file, decompressed according to its suffix.
type input struct {
	ctx context.Context
	in  file.File
	rc  io.ReadCloser // decompressor, if any
	r   io.Reader
}

func openInput(ctx context.Context, path string) (*input, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open", path)
	}
	i := &input{ctx: ctx, in: in, r: in.Reader(ctx)}
	if u := compress.NewReaderPath(i.r, in.Name()); u != nil {
		i.rc, i.r = u, u
	}
	return i, nil
}

func (i *input) Reader() io.Reader { return i.r }

func (i *input) Close() error {
	e := errors.Once{}
	if i.rc != nil {
		e.Set(i.rc.Close())
	}
	e.Set(i.in.Close(i.ctx))
	return e.Err()
}
