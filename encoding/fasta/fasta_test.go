package fasta_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/gffkit/encoding/fasta"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

var fastaData = ">seq1\n" + "ACGTA\nCGTAC\nGT\n" + ">seq2 A viral sequence\n" + "ACGT\n" + "ACGT\n"

func TestGet(t *testing.T) {
	tests := []struct {
		seq   string
		start uint64
		end   uint64
		want  string
		err   error
	}{
		{"seq1", 1, 2, "C", nil},
		{"seq1", 1, 6, "CGTAC", nil},
		{"seq1", 0, 12, "ACGTACGTACGT", nil},
		{"seq1", 10, 12, "GT", nil},
		{"seq2", 0, 8, "ACGTACGT", nil},
		{"seq2", 2, 5, "GTA", nil},
		{"seq0", 0, 1, "", fmt.Errorf("sequence not found: seq0")},
		{"seq1", 10, 13, "", fmt.Errorf("invalid query range")},
		{"seq1", 4, 3, "", fmt.Errorf("start must be less than end")},
	}
	f, err := fasta.New(strings.NewReader(fastaData))
	assert.NoError(t, err)
	for _, tt := range tests {
		got, err := f.Get(tt.seq, tt.start, tt.end)
		if (err == nil && tt.err != nil) || (err != nil && tt.err == nil) {
			t.Errorf("unexpected error: want %v, got %v", tt.err, err)
		}
		if got != tt.want {
			t.Errorf("unexpected sequence: want %s, got %s", tt.want, got)
		}
	}
	n, err := f.Len("seq2")
	assert.NoError(t, err)
	expect.EQ(t, n, uint64(8))
	expect.EQ(t, f.SeqNames(), []string{"seq1", "seq2"})
}

func TestScanner(t *testing.T) {
	sc := fasta.NewScanner(strings.NewReader("\n" + fastaData + ">empty\n>seq3\tx y\r\nAC\r\n"))
	var recs []fasta.Record
	for sc.Scan() {
		recs = append(recs, sc.Record())
	}
	assert.NoError(t, sc.Err())
	expect.EQ(t, recs, []fasta.Record{
		{ID: "seq1", Seq: "ACGTACGTACGT"},
		{ID: "seq2", Description: "A viral sequence", Seq: "ACGTACGT"},
		{ID: "empty"},
		{ID: "seq3", Description: "x y", Seq: "AC"},
	})

	sc = fasta.NewScanner(strings.NewReader("ACGT\n>seq1\nAC\n"))
	expect.False(t, sc.Scan())
	assert.Regexp(t, sc.Err(), "before the first header")

	sc = fasta.NewScanner(strings.NewReader(""))
	expect.False(t, sc.Scan())
	expect.NoError(t, sc.Err())
}

func TestNewDuplicate(t *testing.T) {
	_, err := fasta.New(strings.NewReader(">a\nAC\n>a\nGT\n"))
	assert.Regexp(t, err, "duplicate")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := fasta.NewWriter(&buf, 4)
	assert.NoError(t, w.Write(fasta.Record{ID: "ext_0", Description: "ID=gene1", Seq: "ACGTACGTAC"}))
	assert.NoError(t, w.Write(fasta.Record{ID: "ext_1", Seq: "ACGT"}))
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.String(), ">ext_0 ID=gene1\nACGT\nACGT\nAC\n>ext_1\nACGT\n")

	// What was written scans back.
	sc := fasta.NewScanner(&buf)
	assert.True(t, sc.Scan())
	expect.EQ(t, sc.Record(), fasta.Record{ID: "ext_0", Description: "ID=gene1", Seq: "ACGTACGTAC"})

	buf.Reset()
	w = fasta.NewWriter(&buf, 0)
	assert.NoError(t, w.Write(fasta.Record{ID: "x", Seq: "ACGTACGTAC"}))
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.String(), ">x\nACGTACGTAC\n")
}
