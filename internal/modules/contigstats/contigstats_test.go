package contigstats

import (
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stxpipe/internal/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const sampleFasta = ">c1 first contig\nACGT\nACGT\n>c2\nNNACGTACGTAC\n"

func TestResultsStats(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "isolate1.fasta", sampleFasta)

	m := New()
	res, err := m.Results(context.Background(), []string{path}, nil, nil)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	rec, ok := res["isolate1"]
	if !ok {
		t.Fatalf("expected record keyed by stem, got %#v", res)
	}
	want := map[string]string{
		"Assembly":        "isolate1",
		"contig_count":    "2",
		"n50":             "12",
		"largest_contig":  "12",
		"total_size":      "20",
		"ambiguous_bases": "2",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Fatalf("%s = %q, want %q (record %#v)", k, rec[k], v, rec)
		}
	}
}

func TestResultsGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "isolate2.fasta.gz")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(fh)
	if _, err := gz.Write([]byte(sampleFasta)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	res, err := New().Results(context.Background(), []string{path}, nil, nil)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	rec, ok := res["isolate2.fasta"]
	if !ok {
		t.Fatalf("expected stem isolate2.fasta, got %#v", res)
	}
	if rec["total_size"] != "20" {
		t.Fatalf("total_size = %q, want 20", rec["total_size"])
	}
}

func TestResultsRejectsNonFasta(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "junk.fasta", "this is not fasta\n")

	_, err := New().Results(context.Background(), []string{path}, nil, nil)
	if !errors.Is(err, core.ErrExec) {
		t.Fatalf("expected ErrExec for non-FASTA input, got %v", err)
	}
}

func TestResultsMissingFile(t *testing.T) {
	_, err := New().Results(context.Background(), []string{"/no/such/file.fasta"}, nil, nil)
	if !errors.Is(err, core.ErrExec) {
		t.Fatalf("expected ErrExec for missing file, got %v", err)
	}
}

func TestN50SingleContig(t *testing.T) {
	st := &stats{contigCount: 1, totalSize: 7, lengths: []int{7}}
	if got := st.n50(); got != 7 {
		t.Fatalf("n50 = %d, want 7", got)
	}
}
