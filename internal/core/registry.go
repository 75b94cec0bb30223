package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	errModuleExists     = errors.New("module already registered")
	errUnknownModule    = errors.New("unknown module")
	errInvalidArguments = errors.New("invalid arguments")
	errOptionCollision  = errors.New("option name collision")
	errPrereqCycle      = errors.New("prerequisite cycle")
)

// Registry хранит зарегистрированные типирующие модули и прогоняет их
// над набором сборок в порядке зависимостей.
type Registry struct {
	modules map[string]Module
	order   []string // порядок регистрации, для детерминизма
}

// NewRegistry создает пустой реестр модулей.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register добавляет модуль; имя должно быть уникальным.
func (r *Registry) Register(m Module) error {
	if m == nil {
		return fmt.Errorf("module is nil: %w", errInvalidArguments)
	}
	name := m.Name()
	if name == "" {
		return fmt.Errorf("module name is empty: %w", errInvalidArguments)
	}
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("%s: %w", name, errModuleExists)
	}
	r.modules[name] = m
	r.order = append(r.order, name)
	return nil
}

// Module возвращает модуль по имени.
func (r *Registry) Module(name string) (Module, error) {
	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errUnknownModule)
	}
	return m, nil
}

// Modules возвращает модули в порядке выполнения.
func (r *Registry) Modules() ([]Module, error) {
	ordered, err := r.resolveOrder()
	if err != nil {
		return nil, err
	}
	list := make([]Module, 0, len(ordered))
	for _, name := range ordered {
		list = append(list, r.modules[name])
	}
	return list, nil
}

// resolveOrder строит порядок выполнения: prerequisites раньше зависимых.
func (r *Registry) resolveOrder() ([]string, error) {
	const (
		white = iota // не посещен
		gray         // в обработке
		black        // готов
	)
	state := make(map[string]int, len(r.modules))
	ordered := make([]string, 0, len(r.modules))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%s: %w", name, errPrereqCycle)
		}
		state[name] = gray
		m := r.modules[name]
		for _, dep := range m.Prerequisites() {
			if _, ok := r.modules[dep]; !ok {
				return fmt.Errorf("%s requires %s: %w", name, dep, errUnknownModule)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = black
		ordered = append(ordered, name)
		return nil
	}

	for _, name := range r.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// Options собирает дескрипторы опций всех модулей и отклоняет
// пересечения имен между модулями.
func (r *Registry) Options() ([]Option, error) {
	modules, err := r.Modules()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string)
	var opts []Option
	for _, m := range modules {
		for _, o := range m.Options() {
			if owner, ok := seen[o.Name]; ok {
				return nil, fmt.Errorf("--%s declared by %s and %s: %w", o.Name, owner, m.Name(), errOptionCollision)
			}
			seen[o.Name] = m.Name()
			opts = append(opts, o)
		}
	}
	return opts, nil
}

// CheckOptions прогоняет валидацию опций каждого модуля.
func (r *Registry) CheckOptions(v Values) error {
	modules, err := r.Modules()
	if err != nil {
		return err
	}
	for _, m := range modules {
		if err := m.CheckOptions(v); err != nil {
			return fmt.Errorf("module %s: %w", m.Name(), err)
		}
	}
	return nil
}

// ExternalPrograms собирает имена внешних инструментов всех модулей.
func (r *Registry) ExternalPrograms() ([]string, error) {
	modules, err := r.Modules()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var progs []string
	for _, m := range modules {
		for _, p := range m.ExternalPrograms() {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			progs = append(progs, p)
		}
	}
	return progs, nil
}

// Run выполняет модули последовательно в порядке зависимостей.
// Первая ошибка останавливает весь прогон: результаты уже отработавших
// модулей не возвращаются, как и у оставшихся.
func (r *Registry) Run(ctx context.Context, assemblies []string, v Values) (map[string]Results, error) {
	modules, err := r.Modules()
	if err != nil {
		return nil, err
	}
	combined := make(map[string]Results, len(modules))
	for _, m := range modules {
		res, err := m.Results(ctx, assemblies, v, combined)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.Name(), err)
		}
		combined[m.Name()] = res
	}
	return combined, nil
}
