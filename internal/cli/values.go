package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"stxpipe/internal/core"
)

// flagValues адаптирует pflag.FlagSet под core.Values.
type flagValues struct {
	fs *pflag.FlagSet
}

func (f flagValues) Int(name string) int {
	v, _ := f.fs.GetInt(name)
	return v
}

func (f flagValues) Bool(name string) bool {
	v, _ := f.fs.GetBool(name)
	return v
}

func (f flagValues) String(name string) string {
	v, _ := f.fs.GetString(name)
	return v
}

// bindOptions сворачивает дескрипторы опций модулей в общий набор
// флагов. Модули не видят парсер: они декларируют, хост регистрирует.
func bindOptions(fs *pflag.FlagSet, opts []core.Option) error {
	for _, o := range opts {
		switch d := o.Default.(type) {
		case int:
			fs.IntP(o.Name, o.Shorthand, d, o.Help)
		case bool:
			fs.BoolP(o.Name, o.Shorthand, d, o.Help)
		case string:
			fs.StringP(o.Name, o.Shorthand, d, o.Help)
		default:
			return fmt.Errorf("option --%s: unsupported default type %T", o.Name, o.Default)
		}
	}
	return nil
}
