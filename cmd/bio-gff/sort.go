package main

import (
	"context"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/gffkit/annotation"
	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/grailbio/gffkit/interval"
	"v.io/x/lib/cmdline"
)

type sortFlags struct {
	mode     string
	features string
	strand   bool
}

func newCmdSort() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "sort",
		Short:    "Sort an annotation file by sequence and begin position",
		ArgsName: "inpath [outpath]",
	}
	flags := sortFlags{}
	cmd.Flags.StringVar(&flags.mode, "mode", "gff", "Attribute dialect of the input, gff or gtf")
	cmd.Flags.StringVar(&flags.features, "features", "", "Comma-separated feature types to keep. Empty keeps all")
	cmd.Flags.BoolVar(&flags.strand, "strand", false, "Sort by sequence and strand, then begin")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 1 || len(argv) > 2 {
			return fmt.Errorf("sort takes inpath [outpath], but got %v", argv)
		}
		outPath := "-"
		if len(argv) == 2 {
			outPath = argv[1]
		}
		return sortFile(vcontext.Background(), flags, argv[0], outPath)
	})
	return cmd
}

func keyFunc(strand bool) interval.KeyFunc {
	if strand {
		return interval.StrandKey
	}
	return interval.SequenceKey
}

func sortFile(ctx context.Context, flags sortFlags, inPath, outPath string) (err error) {
	d, err := gff.ParseDialect(flags.mode)
	if err != nil {
		return err
	}
	s, err := annotation.ReadFile(ctx, inPath, d, splitFeatures(flags.features)...)
	if err != nil {
		return err
	}
	sorted, err := interval.Sort(s.Records(), keyFunc(flags.strand))
	if err != nil {
		return err
	}
	out, err := createOutput(ctx, outPath)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	w := gff.NewWriter(out.Writer(), gff.WriterOpts{Dialect: d, Literal: true})
	for _, r := range sorted {
		if err = w.Write(r); err != nil {
			return err
		}
	}
	log.Printf("%d records sorted from %s", len(sorted), inPath)
	return w.Flush()
}
