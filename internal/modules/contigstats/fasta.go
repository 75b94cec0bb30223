package contigstats

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"strings"
)

var errNotFasta = errors.New("no FASTA records found")

// openReader открывает FASTA-файл, прозрачно снимая gzip: по magic
// (1F 8B) либо по суффиксу .gz.
func openReader(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &gzipReadCloser{Reader: gr, gz: gr, fh: fh}, nil
	}
	return fh, nil
}

type gzipReadCloser struct {
	io.Reader
	gz *gzip.Reader
	fh *os.File
}

func (g *gzipReadCloser) Close() error {
	gerr := g.gz.Close()
	ferr := g.fh.Close()
	if gerr != nil {
		return gerr
	}
	return ferr
}

// scanFasta потоково собирает статистику, не храня последовательности.
func scanFasta(path string) (*stats, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	// Последовательность может лежать одной строкой.
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	st := &stats{}
	cur := -1
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			st.contigCount++
			st.lengths = append(st.lengths, 0)
			cur = len(st.lengths) - 1
			continue
		}
		if cur < 0 {
			return nil, errNotFasta
		}
		st.lengths[cur] += len(line)
		st.totalSize += len(line)
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
			default:
				st.ambiguous++
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if st.contigCount == 0 {
		return nil, errNotFasta
	}
	return st, nil
}
