package stxtyper

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"stxpipe/internal/core"
	"stxpipe/internal/extprog"
)

const toolName = "stxtyper"

// Module типирует гены шига-токсина (stx), оборачивая внешний STXTyper.
// Сам модуль ничего не считает: один запуск инструмента на сборку,
// табличный stdout разбирается в записи по фиксированной схеме.
type Module struct {
	run runFunc
}

type runFunc func(ctx context.Context, nucleotideFile string, threads int, quiet bool) (string, error)

// New создает модуль с реальным запуском STXTyper.
func New() *Module {
	return &Module{run: runStxtyper}
}

func (m *Module) Name() string { return "stxtyper" }

func (m *Module) Description() string {
	return "Shiga toxin (stx) gene typing using STXTyper"
}

func (m *Module) Prerequisites() []string { return nil }

// Headers фиксирует схему записи. Порядок и состав обязаны совпадать
// с колонками STXTyper (без его собственной первой колонки сборки:
// ее место занимает идентификатор сборки пайплайна).
func (m *Module) Headers() []string {
	return []string{
		"Assembly", "target_contig", "stx_type", "operon", "identity",
		"target_start", "target_stop", "target_strand",
		"A_reference", "A_identity", "A_reference_subtype", "A_coverage",
		"B_reference", "B_reference_subtype", "B_identity", "B_coverage",
	}
}

func (m *Module) Options() []core.Option {
	return []core.Option{
		{Name: "threads", Shorthand: "t", Default: 8, Help: "number of threads for STXTyper"},
		{Name: "quiet", Shorthand: "q", Default: false, Help: "suppress additional STXTyper output"},
	}
}

// CheckOptions валидирует опции и независимо от общего preflight
// проверяет наличие STXTyper: хост может вызывать любую из проверок.
func (m *Module) CheckOptions(v core.Values) error {
	if v.Int("threads") < 1 {
		return fmt.Errorf("the number of threads must be at least 1: %w", core.ErrConfig)
	}
	return extprog.Ensure(toolName)
}

func (m *Module) ExternalPrograms() []string { return []string{toolName} }

// Results запускает STXTyper по каждой сборке строго последовательно
// и сливает записи в одну таблицу. Опция threads уходит внутрь
// инструмента, сам модуль не параллелит. Первая ошибка прерывает
// весь прогон без частичных результатов.
func (m *Module) Results(ctx context.Context, assemblies []string, v core.Values, prev map[string]core.Results) (core.Results, error) {
	_ = prev // единая конвенция вызова; stxtyper не зависит от других модулей

	combined := make(core.Results)
	for _, path := range assemblies {
		out, err := m.run(ctx, path, v.Int("threads"), v.Bool("quiet"))
		if err != nil {
			return nil, err
		}
		if err := m.parseOutput(stem(path), out, combined); err != nil {
			return nil, err
		}
	}
	return combined, nil
}

// parseOutput разбирает захваченный stdout STXTyper: пустые строки и
// комментарии с '#' пропускаются, остальные режутся по табам и
// позиционно раскладываются по Headers()[1:]. Строка с неожиданным
// числом полей — ошибка выполнения, а не молчаливое усечение.
func (m *Module) parseOutput(assembly, out string, into core.Results) error {
	fields := m.Headers()[1:]
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != len(fields) {
			return fmt.Errorf("%s row has %d fields, want %d (assembly %s): %w",
				toolName, len(parts), len(fields), assembly, core.ErrExec)
		}
		rec := make(core.Record, len(fields)+1)
		for i, name := range fields {
			rec[name] = parts[i]
		}
		rec["Assembly"] = assembly
		key := fmt.Sprintf("%s_%s_%s", assembly, rec["target_contig"], rec["stx_type"])
		into[key] = rec
	}
	return nil
}

// stem возвращает имя сборки: базовое имя файла без расширения.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
