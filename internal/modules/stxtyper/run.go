package stxtyper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"stxpipe/internal/core"
)

// runStxtyper запускает STXTyper над одним файлом и возвращает его
// stdout целиком: вывод перенаправляется в /dev/stdout, чтобы забрать
// таблицу без промежуточного файла. Вызов блокирующий, таймаута нет —
// отмена возможна только через ctx.
func runStxtyper(ctx context.Context, nucleotideFile string, threads int, quiet bool) (string, error) {
	args := []string{
		"-n", nucleotideFile,
		"-o", "/dev/stdout",
		"--threads", strconv.Itoa(threads),
	}
	if quiet {
		args = append(args, "-q")
	}

	cmd := exec.CommandContext(ctx, toolName, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s on %s: %v: %w", toolName, nucleotideFile, err, core.ErrExec)
	}
	return stdout.String(), nil
}
