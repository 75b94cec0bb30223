package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"stxpipe/internal/core"
)

// WriteTSV печатает результаты модуля таблицей: строка заголовков в
// порядке Headers(), затем записи, отсортированные по ключу для
// детерминизма вывода.
func WriteTSV(w io.Writer, headers []string, res core.Results) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	keys := make([]string, 0, len(res))
	for k := range res {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := make([]string, len(headers))
	for _, k := range keys {
		rec := res[k]
		for i, h := range headers {
			row[i] = rec[h]
		}
		if _, err := fmt.Fprintln(bw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return bw.Flush()
}
