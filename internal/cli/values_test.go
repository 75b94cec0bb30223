package cli

import (
	"testing"

	"github.com/spf13/pflag"

	"stxpipe/internal/core"
)

func TestBindOptionsAndValues(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := []core.Option{
		{Name: "threads", Shorthand: "t", Default: 8, Help: "threads"},
		{Name: "quiet", Shorthand: "q", Default: false, Help: "quiet"},
		{Name: "label", Default: "none", Help: "label"},
	}
	if err := bindOptions(fs, opts); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := fs.Parse([]string{"-t", "4", "--quiet"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	v := flagValues{fs}
	if v.Int("threads") != 4 {
		t.Fatalf("threads = %d, want 4", v.Int("threads"))
	}
	if !v.Bool("quiet") {
		t.Fatalf("quiet must be true")
	}
	if v.String("label") != "none" {
		t.Fatalf("label = %q, want default none", v.String("label"))
	}
}

func TestBindOptionsUnsupportedType(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := bindOptions(fs, []core.Option{{Name: "bad", Default: 1.5}})
	if err == nil {
		t.Fatalf("expected error for unsupported default type")
	}
}
