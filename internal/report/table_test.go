package report

import (
	"bytes"
	"testing"

	"stxpipe/internal/core"
)

func TestWriteTSV(t *testing.T) {
	headers := []string{"Assembly", "target_contig", "stx_type"}
	res := core.Results{
		"s1_c2_stx2a": core.Record{"Assembly": "s1", "target_contig": "c2", "stx_type": "stx2a"},
		"s1_c1_stx1a": core.Record{"Assembly": "s1", "target_contig": "c1", "stx_type": "stx1a"},
	}

	var buf bytes.Buffer
	if err := WriteTSV(&buf, headers, res); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Assembly\ttarget_contig\tstx_type\n" +
		"s1\tc1\tstx1a\n" +
		"s1\tc2\tstx2a\n"
	if buf.String() != want {
		t.Fatalf("unexpected table:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteTSVEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, []string{"Assembly", "value"}, core.Results{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "Assembly\tvalue\n" {
		t.Fatalf("expected header-only output, got %q", buf.String())
	}
}

func TestWriteTSVMissingFieldIsEmpty(t *testing.T) {
	headers := []string{"Assembly", "value"}
	res := core.Results{"k": core.Record{"Assembly": "s1"}}

	var buf bytes.Buffer
	if err := WriteTSV(&buf, headers, res); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "Assembly\tvalue\ns1\t\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
