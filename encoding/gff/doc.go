// Package gff parses and writes genome annotation records in the GFF and GTF
// formats.  Both formats have nine whitespace-separated columns:
//
//   sequence method feature begin end score strand frame attribute
//
// They differ only in how the final attribute column is encoded.  GFF uses
// key=value pairs separated by ';':
//
//   ID=gene0001;Name=abc1;Parent=locus1
//
// GTF uses key "value" pairs separated by "; ", with quoted values:
//
//   gene_id "MSTRG.13"; transcript_id "MSTRG.13.3"; exon_number "1";
//
// A parsed line becomes a Record, an insertion-ordered map that holds the
// fixed columns plus one key per attribute.  Coordinates are 1-based and
// closed, as they appear in the file.
package gff
