package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/gffkit/annotation"
	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/grailbio/gffkit/interval"
	"golang.org/x/sync/errgroup"
	"v.io/x/lib/cmdline"
)

type reconcileFlags struct {
	geneFeature       string
	transcriptFeature string
	out               string
	strand            bool
}

func newCmdReconcile() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "reconcile",
		Short:    "Compare assembled transcripts with the genes of a genome annotation",
		ArgsName: "genome.gff transcripts.gtf",
		Long: `
Reconcile reads genes from a GFF3 genome annotation and transcripts from a
GTF file, such as the merged output of stringtie, and writes

  <out>.groups.tsv   clusters of transitively overlapping genes and transcripts
  <out>.matches.tsv  for every transcript, the genes it overlaps, and whether
                     its first base lies in a gene locus of either strand
  <out>.loci.bed     the merged gene loci, 0-based and half-open

By default records are keyed by sequence and strand, so features on opposite
strands never cluster or match.`,
	}
	flags := reconcileFlags{}
	cmd.Flags.StringVar(&flags.geneFeature, "gene-feature", "gene", "Feature type read from the genome annotation")
	cmd.Flags.StringVar(&flags.transcriptFeature, "transcript-feature", "transcript", "Feature type read from the transcripts")
	cmd.Flags.StringVar(&flags.out, "out", "reconcile", "Output path prefix")
	cmd.Flags.BoolVar(&flags.strand, "strand", true, "Key records by sequence and strand instead of sequence alone")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("reconcile takes genome.gff transcripts.gtf, but got %v", argv)
		}
		return reconcile(vcontext.Background(), flags, argv[0], argv[1])
	})
	return cmd
}

// recordID returns the first identifying attribute of r.
func recordID(r *gff.Record) string {
	for _, key := range []string{"ID", "transcript_id", "gene_id", "Name"} {
		if r.Has(key) {
			return r.String(key)
		}
	}
	return gff.Unknown
}

func joinIDs(recs []*gff.Record) string {
	if len(recs) == 0 {
		return gff.Unknown
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = recordID(r)
	}
	return strings.Join(ids, ",")
}

// readSorted reads the records of one feature type from path and sorts them.
func readSorted(ctx context.Context, path string, d gff.Dialect, feature string, key interval.KeyFunc) ([]*gff.Record, error) {
	s, err := annotation.ReadFile(ctx, path, d, feature)
	if err != nil {
		return nil, err
	}
	log.Printf("%d %ss read from %s", s.Len(), feature, path)
	if !s.PositionToInt() {
		return nil, errors.E("non-numeric coordinates", path)
	}
	return interval.Sort(s.Records(), key)
}

func reconcile(ctx context.Context, flags reconcileFlags, genomePath, transcriptPath string) error {
	key := keyFunc(flags.strand)
	var genes, transcripts []*gff.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		genes, err = readSorted(gctx, genomePath, gff.GFF, flags.geneFeature, key)
		return
	})
	g.Go(func() (err error) {
		transcripts, err = readSorted(gctx, transcriptPath, gff.GTF, flags.transcriptFeature, key)
		return
	})
	if err := g.Wait(); err != nil {
		return err
	}
	loci, err := geneLoci(genes)
	if err != nil {
		return err
	}
	if err := writeGroups(ctx, flags, genes, transcripts, key); err != nil {
		return err
	}
	if err := writeMatches(ctx, flags.out+".matches.tsv", genes, transcripts, key, loci.Clone()); err != nil {
		return err
	}
	return writeLoci(ctx, flags.out+".loci.bed", loci)
}

func writeGroups(ctx context.Context, flags reconcileFlags, genes, transcripts []*gff.Record, key interval.KeyFunc) (err error) {
	path := flags.out + ".groups.tsv"
	out, err := createOutput(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	w := tsv.NewWriter(out.Writer())
	for _, col := range []string{"#key", "begin", "end", "genes", "transcripts", "members"} {
		w.WriteString(col)
	}
	if err = w.EndLine(); err != nil {
		return err
	}
	merged := interval.Merge(key, interval.NewSliceSource(genes), interval.NewSliceSource(transcripts))
	grouper := interval.NewGrouper(merged, key)
	n := 0
	for grouper.Scan() {
		grp := grouper.Group()
		nGenes := 0
		for _, r := range grp.Records {
			if r.Feature() == flags.geneFeature {
				nGenes++
			}
		}
		w.WriteString(grp.Key)
		w.WriteInt64(int64(grp.Begin))
		w.WriteInt64(int64(grp.End))
		w.WriteInt64(int64(nGenes))
		w.WriteInt64(int64(len(grp.Records) - nGenes))
		w.WriteString(joinIDs(grp.Records))
		if err = w.EndLine(); err != nil {
			return err
		}
		n++
	}
	if err = grouper.Err(); err != nil {
		return err
	}
	log.Printf("%d overlap groups written to %s", n, path)
	return w.Flush()
}

func writeMatches(ctx context.Context, path string, genes, transcripts []*gff.Record, key interval.KeyFunc, loci *interval.Union) (err error) {
	out, err := createOutput(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	w := tsv.NewWriter(out.Writer())
	for _, col := range []string{"#transcript", "key", "begin", "end", "genes", "in_locus"} {
		w.WriteString(col)
	}
	if err = w.EndLine(); err != nil {
		return err
	}
	m := interval.NewMatcher(interval.NewSliceSource(transcripts), interval.NewSliceSource(genes), key)
	n, novel := 0, 0
	for m.Scan() {
		match := m.Match()
		q := match.Query
		begin, _ := q.Begin()
		end, _ := q.End()
		w.WriteString(recordID(q))
		w.WriteString(key(q))
		w.WriteInt64(int64(begin))
		w.WriteInt64(int64(end))
		w.WriteString(joinIDs(match.Targets))
		if loci.Contains(q.Sequence(), begin) {
			w.WriteString("yes")
		} else {
			w.WriteString("no")
		}
		if err = w.EndLine(); err != nil {
			return err
		}
		if len(match.Targets) == 0 {
			novel++
		}
		n++
	}
	if err = m.Err(); err != nil {
		return err
	}
	log.Printf("%d transcripts matched, %d without an overlapping gene", n, novel)
	return w.Flush()
}

// geneLoci merges the genes into loci per sequence, regardless of strand.
func geneLoci(genes []*gff.Record) (*interval.Union, error) {
	sorted, err := interval.Sort(genes, interval.SequenceKey)
	if err != nil {
		return nil, err
	}
	groups, err := interval.Groups(sorted, interval.SequenceKey)
	if err != nil {
		return nil, err
	}
	return interval.NewUnion(groups)
}

func writeLoci(ctx context.Context, path string, loci *interval.Union) (err error) {
	out, err := createOutput(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	for _, k := range loci.Keys() {
		log.Printf("%s: %d bases in gene loci", k, loci.Bases(k))
	}
	return loci.WriteBED(out.Writer())
}
