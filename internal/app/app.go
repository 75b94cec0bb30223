package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"stxpipe/internal/config"
	"stxpipe/internal/core"
	"stxpipe/internal/extprog"
	"stxpipe/internal/modules/contigstats"
	"stxpipe/internal/modules/stxtyper"
	"stxpipe/internal/storage"
	"stxpipe/internal/storage/sqlite"
)

// App агрегирует зависимости пайплайна.
type App struct {
	Registry *core.Registry
	Store    storage.Store
	Config   config.Config
	Log      *slog.Logger

	processed map[string]struct{} // сборки, уже обработанные watch-режимом
}

// NewRegistry строит реестр со штатными типирующими модулями.
func NewRegistry() (*core.Registry, error) {
	r := core.NewRegistry()
	if err := r.Register(contigstats.New()); err != nil {
		return nil, fmt.Errorf("register contigstats module: %w", err)
	}
	if err := r.Register(stxtyper.New()); err != nil {
		return nil, fmt.Errorf("register stxtyper module: %w", err)
	}
	return r, nil
}

// New строит приложение: реестр, конфигурация и (опционально) хранилище.
func New(cfg config.Config, registry *core.Registry, lg *slog.Logger) (*App, error) {
	a := &App{
		Registry:  registry,
		Config:    cfg,
		Log:       lg,
		processed: make(map[string]struct{}),
	}
	if cfg.SQLite.Path != "" {
		st, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.Store = st
	}
	return a, nil
}

// Close высвобождает ресурсы приложения.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// Preflight валидирует опции всех модулей и разрешает их внешние
// инструменты. Обе проверки обязаны пройти независимо.
func (a *App) Preflight(v core.Values) error {
	if err := a.Registry.CheckOptions(v); err != nil {
		return err
	}
	progs, err := a.Registry.ExternalPrograms()
	if err != nil {
		return err
	}
	return extprog.Ensure(progs...)
}

// RunOnce выполняет один прогон пайплайна над сборками и, если
// сконфигурировано хранилище, сохраняет результаты и событие прогона.
func (a *App) RunOnce(ctx context.Context, assemblies []string, v core.Values) (map[string]core.Results, error) {
	if err := a.Preflight(v); err != nil {
		return nil, err
	}

	combined, err := a.Registry.Run(ctx, assemblies, v)
	if err != nil {
		a.saveRunEvent(ctx, "pipeline", len(assemblies), "error", err.Error())
		return nil, err
	}

	if a.Store != nil {
		modules, merr := a.Registry.Modules()
		if merr != nil {
			return nil, merr
		}
		for _, m := range modules {
			payload, perr := sqlite.MarshalPayload(combined[m.Name()])
			if perr != nil {
				return nil, perr
			}
			if serr := a.Store.SaveResults(ctx, storage.ResultsRecord{Module: m.Name(), Payload: payload}); serr != nil {
				return nil, serr
			}
			a.saveRunEvent(ctx, m.Name(), len(assemblies), "ok", "")
		}
	}
	return combined, nil
}

func (a *App) saveRunEvent(ctx context.Context, module string, assemblies int, status, detail string) {
	if a.Store == nil {
		return
	}
	if err := a.Store.SaveRun(ctx, storage.RunEvent{
		Module:     module,
		Assemblies: assemblies,
		Status:     status,
		Detail:     detail,
	}); err != nil {
		a.Log.Error("save run event", "module", module, "err", err)
	}
}

// Serve запускает watch-режим: по расписанию сканирует каталог сборок
// и прогоняет пайплайн над еще не обработанными файлами. Неудачный
// прогон логируется, файлы остаются в очереди до успешного тика.
func (a *App) Serve(ctx context.Context, v core.Values) error {
	if a.Config.Watch.Dir == "" {
		return fmt.Errorf("watch.dir is not configured: %w", core.ErrConfig)
	}
	if err := a.Preflight(v); err != nil {
		return err
	}

	interval := time.Duration(a.Config.Scheduler.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	sched := core.NewScheduler(interval)

	sched.Add(func(jobCtx context.Context) error {
		batch, err := a.scanNew()
		if err != nil {
			a.Log.Error("scan watch dir", "dir", a.Config.Watch.Dir, "err", err)
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		a.Log.Info("processing new assemblies", "count", len(batch))
		combined, err := a.RunOnce(jobCtx, batch, v)
		if err != nil {
			a.Log.Error("pipeline run failed", "err", err)
			return err
		}
		for _, path := range batch {
			a.processed[path] = struct{}{}
		}
		for module, res := range combined {
			a.Log.Info("module finished", "module", module, "records", len(res))
		}
		return nil
	})

	sched.Start(ctx)
	return ctx.Err()
}

// scanNew возвращает необработанные файлы сборок из watch-каталога.
func (a *App) scanNew() ([]string, error) {
	var batch []string
	for _, pat := range a.Config.Watch.Patterns {
		matches, err := filepath.Glob(filepath.Join(a.Config.Watch.Dir, pat))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pat, err)
		}
		for _, path := range matches {
			if _, done := a.processed[path]; done {
				continue
			}
			batch = append(batch, path)
		}
	}
	return batch, nil
}
