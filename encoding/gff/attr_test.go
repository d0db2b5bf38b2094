package gff_test

import (
	"sort"
	"testing"

	"github.com/grailbio/gffkit/encoding/gff"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		field   string
		dialect gff.Dialect
		want    []gff.Attribute
	}{
		{"ID=gene1;Name=abc", gff.GFF,
			[]gff.Attribute{{"ID", "gene1"}, {"Name", "abc"}}},
		{"ID=gene1;Name=abc;", gff.GFF,
			[]gff.Attribute{{"ID", "gene1"}, {"Name", "abc"}}},
		{"Note=a=b;ID=x", gff.GFF,
			[]gff.Attribute{{"Note", "a=b"}, {"ID", "x"}}},
		{" ID=x ; Alias=y,z ", gff.GFF,
			[]gff.Attribute{{"ID", "x"}, {"Alias", "y,z"}}},
		{`gene_id "MSTRG.13"; transcript_id "MSTRG.13.3"; exon_number "1";`, gff.GTF,
			[]gff.Attribute{{"gene_id", "MSTRG.13"}, {"transcript_id", "MSTRG.13.3"}, {"exon_number", "1"}}},
		{`gene_name "two words";`, gff.GTF,
			[]gff.Attribute{{"gene_name", "two words"}}},
		{"", gff.GFF, []gff.Attribute{}},
		{".", gff.GTF, nil},
	}
	for _, test := range tests {
		got, err := gff.ParseAttributes(test.field, test.dialect)
		assert.NoError(t, err, test.field)
		expect.EQ(t, len(got), len(test.want), test.field)
		for i := range test.want {
			expect.EQ(t, got[i], test.want[i], test.field)
		}
	}
}

func TestParseAttributesMalformed(t *testing.T) {
	for _, test := range []struct {
		field   string
		dialect gff.Dialect
	}{
		// GTF text read as GFF.
		{`gene_id "MSTRG.1"; transcript_id "MSTRG.1.1";`, gff.GFF},
		// GFF text read as GTF.
		{"ID=gene1;Name=abc", gff.GTF},
		{"ID=gene1;;Name=abc", gff.GFF},
	} {
		_, err := gff.ParseAttributes(test.field, test.dialect)
		e, ok := err.(*gff.MalformedAttributeError)
		assert.True(t, ok, "%s: %v", test.field, err)
		expect.EQ(t, e.Dialect, test.dialect)
	}
}

func sortedPairs(attrs []gff.Attribute) []gff.Attribute {
	c := append([]gff.Attribute(nil), attrs...)
	sort.Slice(c, func(i, j int) bool { return c[i].Key < c[j].Key })
	return c
}

func TestAttributeRoundTrip(t *testing.T) {
	for _, test := range []struct {
		field   string
		dialect gff.Dialect
	}{
		{"Parent=maker-Ctg0001-augustus-gene-0.4;ID=maker-Ctg0001-augustus-gene-0.4.mRNA1;coge_fid=936743213", gff.GFF},
		{"ID=a;Note=x=y;", gff.GFF},
		{`gene_id "MSTRG.13"; transcript_id "MSTRG.13.3"; exon_number "1";`, gff.GTF},
	} {
		attrs, err := gff.ParseAttributes(test.field, test.dialect)
		assert.NoError(t, err)
		again, err := gff.ParseAttributes(gff.FormatAttributes(attrs, test.dialect), test.dialect)
		assert.NoError(t, err)
		expect.EQ(t, sortedPairs(again), sortedPairs(attrs))
	}
}

func TestFormatAttributes(t *testing.T) {
	attrs := []gff.Attribute{{"gene_id", "G1"}, {"transcript_id", "T1"}}
	expect.EQ(t, gff.FormatAttributes(attrs, gff.GFF), "gene_id=G1;transcript_id=T1")
	expect.EQ(t, gff.FormatAttributes(attrs, gff.GTF), `gene_id "G1"; transcript_id "T1";`)
	expect.EQ(t, gff.FormatAttributes(nil, gff.GTF), "")
}

func TestParseDialect(t *testing.T) {
	d, err := gff.ParseDialect("gtf")
	assert.NoError(t, err)
	expect.EQ(t, d, gff.GTF)
	d, err = gff.ParseDialect("GFF")
	assert.NoError(t, err)
	expect.EQ(t, d, gff.GFF)
	_, err = gff.ParseDialect("bed")
	expect.True(t, err != nil)
	expect.EQ(t, gff.GTF.Separator(), " ")
	expect.EQ(t, gff.GFF.Separator(), "=")
}
