package extprog

import (
	"fmt"
	"os/exec"

	"stxpipe/internal/core"
)

// Resolve ищет исполняемый файл в PATH и возвращает полный путь.
// Отсутствие инструмента — ошибка конфигурации.
func Resolve(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("external program %s not found in PATH: %w", name, core.ErrConfig)
	}
	return path, nil
}

// Ensure проверяет, что все перечисленные инструменты доступны.
func Ensure(names ...string) error {
	for _, name := range names {
		if _, err := Resolve(name); err != nil {
			return err
		}
	}
	return nil
}
