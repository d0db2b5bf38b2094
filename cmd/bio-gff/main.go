// bio-gff reads, edits and reconciles GFF3 and GTF annotation files.
//
// Example: keep the genes of one contig, prefixing every feature with its
// source, and write them as bgzip-compressed GFF.
//
//   bio-gff view -features gene -region lcl|Ctg0001 -add-attr source=maker in.gff out.gff.bgz
//
// Example: compare stringtie transcripts with the genes of a genome annotation.
//
//   bio-gff reconcile -out cmp genome.gff merged.gtf
//
// writes cmp.groups.tsv, cmp.matches.tsv and cmp.loci.bed.
package main

import (
	"log"

	"v.io/x/lib/cmdline"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-gff",
			Short:    "Tools for working with GFF3 and GTF annotation files",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdView(),
				newCmdSort(),
				newCmdExtract(),
				newCmdReconcile(),
			},
		})
}
