package main

import (
	"context"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/gffkit/annotation"
	"github.com/grailbio/gffkit/encoding/fasta"
	"github.com/grailbio/gffkit/encoding/gff"
	"v.io/x/lib/cmdline"
)

type extractFlags struct {
	gffPath   string
	fastaPath string
	outPath   string
	mode      string
	features  string
	inMemory  bool
	opts      annotation.ExtractOpts
	width     int
}

func newCmdExtract() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "extract",
		Short: "Extract the sequence of every annotated feature from a FASTA file",
		Long: `
Extract writes one FASTA record per annotation whose sequence appears in the
FASTA input.  Annotation coordinates are 1-based and closed.  Output records
are named <prefix><n> and carry the annotation's attribute column as their
description.

With -in-memory, the FASTA input is loaded whole and records are extracted in
annotation order instead of FASTA order.`,
	}
	flags := extractFlags{opts: annotation.DefaultExtractOpts}
	cmd.Flags.StringVar(&flags.gffPath, "gff", "genome.gff", "Annotation input")
	cmd.Flags.StringVar(&flags.fastaPath, "fasta", "genome.fa", "Sequence input")
	cmd.Flags.StringVar(&flags.outPath, "out", "extracted.fa", "FASTA output")
	cmd.Flags.StringVar(&flags.mode, "mode", "gff", "Attribute dialect of the annotation input, gff or gtf")
	cmd.Flags.StringVar(&flags.features, "features", "gene", "Comma-separated feature types to extract. Empty extracts all")
	cmd.Flags.BoolVar(&flags.inMemory, "in-memory", false, "Load the FASTA input in memory and extract in annotation order")
	cmd.Flags.StringVar(&flags.opts.IDPrefix, "prefix", flags.opts.IDPrefix, "Prefix of output sequence names")
	cmd.Flags.BoolVar(&flags.opts.RevComp, "revcomp", false, "Reverse-complement features on the - strand")
	cmd.Flags.BoolVar(&flags.opts.SkipOutOfRange, "skip-out-of-range", false,
		"Report and skip features that extend past the end of their sequence instead of failing")
	cmd.Flags.IntVar(&flags.width, "width", fasta.DefaultLineWidth, "Output line width. 0 writes each sequence on one line")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("extract takes no arguments, but got %v", argv)
		}
		return extract(vcontext.Background(), flags)
	})
	return cmd
}

func extract(ctx context.Context, flags extractFlags) (err error) {
	d, err := gff.ParseDialect(flags.mode)
	if err != nil {
		return err
	}
	// Features are filtered while reading.
	flags.opts.Features = nil
	s, err := annotation.ReadFile(ctx, flags.gffPath, d, splitFeatures(flags.features)...)
	if err != nil {
		return err
	}
	log.Printf("%d features read from %s", s.Len(), flags.gffPath)

	in, err := openInput(ctx, flags.fastaPath)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	out, err := createOutput(ctx, flags.outPath)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	w := fasta.NewWriter(out.Writer(), flags.width)
	var n int
	if flags.inMemory {
		var f fasta.Fasta
		if f, err = fasta.New(in.Reader()); err != nil {
			return err
		}
		log.Printf("%d sequences loaded from %s", len(f.SeqNames()), flags.fastaPath)
		n, err = annotation.ExtractFasta(f, s, w, flags.opts)
	} else {
		n, err = annotation.ExtractSequences(fasta.NewScanner(in.Reader()), s, w, flags.opts)
	}
	if e := w.Flush(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return err
	}
	log.Printf("%d sequences written to %s", n, flags.outPath)
	return nil
}
