package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/gffkit/annotation"
	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/grailbio/gffkit/interval"
	"v.io/x/lib/cmdline"
)

type viewFlags struct {
	mode     string
	outMode  string
	features string
	region   string
	where    string
	replace  string
	rename   string
	addAttr  string
	literal  bool
}

func newCmdView() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "view",
		Short:    "Filter and edit an annotation file",
		ArgsName: "inpath [outpath]",
		Long: `
View reads a GFF3 or GTF file, applies the requested edits in the order
-replace, -rename, -add-attr, and writes the records that pass the -features
-where and -region filters.  The output goes to stdout unless outpath is given.
Outpaths ending in .gz are gzip compressed, and outpaths ending in .bgz are
BGZF compressed.`,
	}
	flags := viewFlags{}
	cmd.Flags.StringVar(&flags.mode, "mode", "gff", "Attribute dialect of the input, gff or gtf")
	cmd.Flags.StringVar(&flags.outMode, "out-mode", "", "Attribute dialect of the output. Defaults to -mode")
	cmd.Flags.StringVar(&flags.features, "features", "", "Comma-separated feature types to keep, e.g. gene,mRNA. Empty keeps all")
	cmd.Flags.StringVar(&flags.region, "region", "", `Keep only records overlapping this region.
Format is 'seq:begin-end', 'seq:pos' or 'seq'; [begin,end] is a 1-based, closed interval.`)
	cmd.Flags.StringVar(&flags.where, "where", "", `Keep only records whose columns or attributes equal the given values.
Format is 'key=value[,key=value...]', e.g. 'strand=+,gene_biotype=lncRNA'.`)
	cmd.Flags.StringVar(&flags.replace, "replace", "", `Literal substitution 'column:find:replace' applied to every record having column.
For example, 'sequence:lcl|:' strips the lcl| prefix from sequence names.`)
	cmd.Flags.StringVar(&flags.rename, "rename", "", "Rename an attribute key, 'old:new'. Skipped if the first record lacks old")
	cmd.Flags.StringVar(&flags.addAttr, "add-attr", "", "Add attribute 'key=value' to every record")
	cmd.Flags.BoolVar(&flags.literal, "literal", false, "Write attribute columns as read, ignoring attribute edits")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 1 || len(argv) > 2 {
			return fmt.Errorf("view takes inpath [outpath], but got %v", argv)
		}
		outPath := "-"
		if len(argv) == 2 {
			outPath = argv[1]
		}
		return view(vcontext.Background(), flags, argv[0], outPath)
	})
	return cmd
}

// splitFeatures parses a comma-separated list, dropping empty items.
func splitFeatures(s string) []string {
	var features []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return features
}

// dialects resolves the input and output dialect names.
func dialects(mode, outMode string) (in, out gff.Dialect, err error) {
	if in, err = gff.ParseDialect(mode); err != nil {
		return
	}
	out = in
	if outMode != "" {
		out, err = gff.ParseDialect(outMode)
	}
	return
}

// applyEdits runs the -replace, -rename and -add-attr edits on s.
func applyEdits(s *annotation.Store, flags viewFlags) error {
	if flags.replace != "" {
		parts := strings.SplitN(flags.replace, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("-replace %q: want column:find:replace", flags.replace)
		}
		n := s.ReplaceByColumn(parts[0], parts[1], parts[2])
		log.Printf("replace: %d record(s) changed", n)
	}
	if flags.rename != "" {
		parts := strings.SplitN(flags.rename, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("-rename %q: want old:new", flags.rename)
		}
		if !s.RenameKey(parts[0], parts[1]) {
			log.Printf("rename: %s not found in the first record, nothing renamed", parts[0])
		}
	}
	if flags.addAttr != "" {
		parts := strings.SplitN(flags.addAttr, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("-add-attr %q: want key=value", flags.addAttr)
		}
		n := s.AttributeAdd(parts[0], parts[1], 0, 0)
		log.Printf("add-attr: %d record(s) changed", n)
	}
	return nil
}

// parseWhere parses a 'key=value[,key=value...]' filter.
func parseWhere(s string) (map[string]string, error) {
	where := map[string]string{}
	for _, item := range strings.Split(s, ",") {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("-where %q: want key=value[,key=value...]", s)
		}
		if v, ok := where[parts[0]]; ok && v != parts[1] {
			return nil, fmt.Errorf("-where %q: conflicting values for %s", s, parts[0])
		}
		where[parts[0]] = parts[1]
	}
	return where, nil
}

// selectRows applies the -region and -where filters to s.  It returns the
// selected rows in store order, or nil if no filter is set.
func selectRows(s *annotation.Store, flags viewFlags) ([]int, error) {
	var rows []int
	if flags.region != "" {
		region, err := interval.ParseRegion(flags.region)
		if err != nil {
			return nil, err
		}
		x, err := annotation.NewOverlapIndex(s)
		if err != nil {
			return nil, err
		}
		rows = []int{}
		for it := x.Overlapping(region.Sequence, region.Begin, region.End); it.Scan(); {
			rows = append(rows, it.Row())
		}
	}
	if flags.where == "" {
		return rows, nil
	}
	where, err := parseWhere(flags.where)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(where))
	for col := range where {
		cols = append(cols, col)
	}
	x := annotation.NewColumnIndex(s, cols...)
	for col, val := range where {
		log.Debug.Printf("where: %d record(s) with %s=%s", x.Count(col, val), col, val)
	}
	it, err := x.Select(where)
	if err != nil {
		return nil, err
	}
	var inRegion map[int]bool
	if rows != nil {
		inRegion = make(map[int]bool, len(rows))
		for _, row := range rows {
			inRegion[row] = true
		}
	}
	selected := []int{}
	for it.Scan() {
		if inRegion == nil || inRegion[it.Row()] {
			selected = append(selected, it.Row())
		}
	}
	return selected, nil
}

func view(ctx context.Context, flags viewFlags, inPath, outPath string) (err error) {
	inMode, outMode, err := dialects(flags.mode, flags.outMode)
	if err != nil {
		return err
	}
	s, err := annotation.ReadFile(ctx, inPath, inMode, splitFeatures(flags.features)...)
	if err != nil {
		return err
	}
	log.Printf("%d records read from %s", s.Len(), inPath)
	if err = applyEdits(s, flags); err != nil {
		return err
	}

	rows, err := selectRows(s, flags)
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
	w := gff.NewWriter(out.Writer(), gff.WriterOpts{Dialect: outMode, Literal: flags.literal})
	if outMode == gff.GFF {
		if err = w.WriteComment("gff-version 3"); err != nil {
			return err
		}
	}
	n := 0
	if rows == nil {
		for _, r := range s.Records() {
			if err = w.Write(r); err != nil {
				return err
			}
			n++
		}
	} else {
		for it := s.ByRows(rows); it.Scan(); {
			if err = w.Write(it.Record()); err != nil {
				return err
			}
			n++
		}
	}
	log.Debug.Printf("%d records written to %s", n, outPath)
	return w.Flush()
}
