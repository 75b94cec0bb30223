package core

import (
	"context"
	"errors"
	"testing"
)

type fakeModule struct {
	name    string
	prereqs []string
	opts    []Option
	results func(ctx context.Context, assemblies []string, v Values, prev map[string]Results) (Results, error)
	called  *[]string
}

func (f *fakeModule) Name() string                { return f.name }
func (f *fakeModule) Description() string         { return "fake module" }
func (f *fakeModule) Prerequisites() []string     { return f.prereqs }
func (f *fakeModule) Headers() []string           { return []string{"Assembly", "value"} }
func (f *fakeModule) Options() []Option           { return f.opts }
func (f *fakeModule) CheckOptions(v Values) error { return nil }
func (f *fakeModule) ExternalPrograms() []string  { return nil }

func (f *fakeModule) Results(ctx context.Context, assemblies []string, v Values, prev map[string]Results) (Results, error) {
	if f.called != nil {
		*f.called = append(*f.called, f.name)
	}
	if f.results != nil {
		return f.results(ctx, assemblies, v, prev)
	}
	return Results{}, nil
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeModule{name: "dup"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(&fakeModule{name: "dup"}); err == nil {
		t.Fatalf("expected error on duplicate register")
	}
}

func TestUnknownPrerequisite(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeModule{name: "a", prereqs: []string{"missing"}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Modules(); !errors.Is(err, errUnknownModule) {
		t.Fatalf("expected errUnknownModule, got %v", err)
	}
}

func TestPrerequisiteCycle(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeModule{name: "a", prereqs: []string{"b"}}); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := r.Register(&fakeModule{name: "b", prereqs: []string{"a"}}); err != nil {
		t.Fatalf("register b: %v", err)
	}
	if _, err := r.Modules(); !errors.Is(err, errPrereqCycle) {
		t.Fatalf("expected errPrereqCycle, got %v", err)
	}
}

func TestPrerequisiteOrdering(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeModule{name: "b", prereqs: []string{"a"}}); err != nil {
		t.Fatalf("register b: %v", err)
	}
	if err := r.Register(&fakeModule{name: "a"}); err != nil {
		t.Fatalf("register a: %v", err)
	}
	modules, err := r.Modules()
	if err != nil {
		t.Fatalf("modules: %v", err)
	}
	if len(modules) != 2 || modules[0].Name() != "a" || modules[1].Name() != "b" {
		t.Fatalf("unexpected order: %v, %v", modules[0].Name(), modules[1].Name())
	}
}

func TestOptionCollision(t *testing.T) {
	r := NewRegistry()
	opt := []Option{{Name: "threads", Default: 8}}
	if err := r.Register(&fakeModule{name: "a", opts: opt}); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := r.Register(&fakeModule{name: "b", opts: opt}); err != nil {
		t.Fatalf("register b: %v", err)
	}
	if _, err := r.Options(); !errors.Is(err, errOptionCollision) {
		t.Fatalf("expected errOptionCollision, got %v", err)
	}
}

func TestRunPassesPreviousResults(t *testing.T) {
	r := NewRegistry()
	first := &fakeModule{name: "first", results: func(ctx context.Context, assemblies []string, v Values, prev map[string]Results) (Results, error) {
		return Results{"k": Record{"Assembly": "s"}}, nil
	}}
	var gotPrev map[string]Results
	second := &fakeModule{name: "second", prereqs: []string{"first"}, results: func(ctx context.Context, assemblies []string, v Values, prev map[string]Results) (Results, error) {
		gotPrev = prev
		return Results{}, nil
	}}
	if err := r.Register(first); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := r.Register(second); err != nil {
		t.Fatalf("register second: %v", err)
	}

	combined, err := r.Run(context.Background(), []string{"s.fasta"}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(combined) != 2 {
		t.Fatalf("expected results for 2 modules, got %d", len(combined))
	}
	if _, ok := gotPrev["first"]; !ok {
		t.Fatalf("second module did not receive first module results: %#v", gotPrev)
	}
}

func TestRunHaltsOnFirstError(t *testing.T) {
	r := NewRegistry()
	var order []string
	boom := errors.New("boom")
	failing := &fakeModule{name: "failing", called: &order, results: func(ctx context.Context, assemblies []string, v Values, prev map[string]Results) (Results, error) {
		return nil, boom
	}}
	after := &fakeModule{name: "after", prereqs: []string{"failing"}, called: &order}
	if err := r.Register(failing); err != nil {
		t.Fatalf("register failing: %v", err)
	}
	if err := r.Register(after); err != nil {
		t.Fatalf("register after: %v", err)
	}

	combined, err := r.Run(context.Background(), []string{"s.fasta"}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if combined != nil {
		t.Fatalf("expected no results on failure, got %#v", combined)
	}
	if len(order) != 1 || order[0] != "failing" {
		t.Fatalf("expected only failing module to run, got %v", order)
	}
}
