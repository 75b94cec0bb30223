package core

import "context"

// Record описывает одну типированную запись: имя поля -> значение.
type Record map[string]string

// Results — результаты одного модуля; ключ строится модулем
// (для stxtyper: "<stem>_<contig>_<stx_type>").
type Results map[string]Record

// Option декларирует CLI-опцию модуля. Модуль не трогает общий парсер:
// хост сам сворачивает дескрипторы в единый набор флагов.
type Option struct {
	Name      string
	Shorthand string
	Help      string
	Default   interface{} // int, bool или string
}

// Values дает модулю доступ к значениям объявленных опций.
type Values interface {
	Int(name string) int
	Bool(name string) bool
	String(name string) string
}

// Module определяет контракт типирующего модуля пайплайна.
type Module interface {
	Name() string
	Description() string

	// Prerequisites возвращает имена модулей, которые должны
	// отработать раньше (их результаты придут в prev).
	Prerequisites() []string

	// Headers возвращает фиксированный упорядоченный список полей
	// записи; первый элемент — всегда идентификатор сборки.
	Headers() []string

	// Options декларирует CLI-опции модуля.
	Options() []Option

	// CheckOptions валидирует значения опций и окружение модуля.
	CheckOptions(v Values) error

	// ExternalPrograms возвращает имена внешних исполняемых файлов,
	// которые хост обязан разрешить в PATH до запуска.
	ExternalPrograms() []string

	// Results выполняет модуль над сборками строго последовательно.
	// prev содержит результаты ранее отработавших модулей; модуль
	// вправе его игнорировать.
	Results(ctx context.Context, assemblies []string, v Values, prev map[string]Results) (Results, error)
}
