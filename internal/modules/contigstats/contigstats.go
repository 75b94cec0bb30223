package contigstats

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"stxpipe/internal/core"
)

// Module считает базовые статистики сборки по FASTA-файлу: число
// контигов, N50, длину наибольшего контига, суммарный размер и число
// неоднозначных оснований. Одна запись на сборку, ключ — stem файла.
type Module struct{}

// New создает модуль статистики контигов.
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "contigstats" }

func (m *Module) Description() string {
	return "Basic assembly statistics (contig count, N50, size)"
}

func (m *Module) Prerequisites() []string { return nil }

func (m *Module) Headers() []string {
	return []string{
		"Assembly", "contig_count", "n50", "largest_contig",
		"total_size", "ambiguous_bases",
	}
}

func (m *Module) Options() []core.Option { return nil }

func (m *Module) CheckOptions(v core.Values) error { return nil }

func (m *Module) ExternalPrograms() []string { return nil }

// Results читает каждую сборку и строит по ней одну запись.
func (m *Module) Results(ctx context.Context, assemblies []string, v core.Values, prev map[string]core.Results) (core.Results, error) {
	_ = prev

	combined := make(core.Results, len(assemblies))
	for _, path := range assemblies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := scanFasta(path)
		if err != nil {
			return nil, fmt.Errorf("reading assembly %s: %v: %w", path, err, core.ErrExec)
		}
		name := stem(path)
		combined[name] = core.Record{
			"Assembly":        name,
			"contig_count":    strconv.Itoa(st.contigCount),
			"n50":             strconv.Itoa(st.n50()),
			"largest_contig":  strconv.Itoa(st.largest()),
			"total_size":      strconv.Itoa(st.totalSize),
			"ambiguous_bases": strconv.Itoa(st.ambiguous),
		}
	}
	return combined, nil
}

type stats struct {
	contigCount int
	totalSize   int
	ambiguous   int
	lengths     []int
}

func (s *stats) largest() int {
	max := 0
	for _, l := range s.lengths {
		if l > max {
			max = l
		}
	}
	return max
}

// n50 — длина контига, на котором накопленная сумма (по убыванию длин)
// достигает половины общего размера сборки.
func (s *stats) n50() int {
	if s.totalSize == 0 {
		return 0
	}
	sorted := append([]int(nil), s.lengths...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	half := (s.totalSize + 1) / 2
	sum := 0
	for _, l := range sorted {
		sum += l
		if sum >= half {
			return l
		}
	}
	return 0
}

// stem возвращает имя сборки: базовое имя файла без расширения.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
