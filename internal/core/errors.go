package core

import "errors"

// Классы фатальных отказов пайплайна. Модули не завершают процесс сами:
// ошибка помечается классом, а решение о выходе принимает cmd/stxpipe.
var (
	// ErrConfig — ошибка конфигурации: невалидная опция,
	// отсутствующий внешний инструмент.
	ErrConfig = errors.New("configuration error")

	// ErrExec — ошибка выполнения: внешний инструмент вернул
	// ненулевой код или выдал непригодный вывод.
	ErrExec = errors.New("execution error")
)
