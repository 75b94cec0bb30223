package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stxpipe/internal/app"
	"stxpipe/internal/config"
	"stxpipe/internal/core"
	"stxpipe/internal/extprog"
	"stxpipe/internal/report"
	"stxpipe/internal/storage"
	"stxpipe/internal/storage/sqlite"
	"stxpipe/internal/sysinfo"
)

// New создает корневую CLI-команду.
func New(registry *core.Registry, lg *slog.Logger, version string) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "stxpipe",
		Short:         "Пайплайн типирования бактериальных сборок",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newVersionCmd(version))
	root.AddCommand(newModulesCmd(registry))
	root.AddCommand(newDoctorCmd(registry))

	runCmd, err := newRunCmd(registry, lg)
	if err != nil {
		return nil, err
	}
	root.AddCommand(runCmd)

	serveCmd, err := newServeCmd(registry, lg)
	if err != nil {
		return nil, err
	}
	root.AddCommand(serveCmd)

	root.AddCommand(newHistoryCmd())

	return root, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version)
		},
	}
}

func newModulesCmd(registry *core.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "Перечислить типирующие модули",
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, err := registry.Modules()
			if err != nil {
				return err
			}
			for _, m := range modules {
				line := fmt.Sprintf("%s\t%s", m.Name(), m.Description())
				if progs := m.ExternalPrograms(); len(progs) > 0 {
					line += fmt.Sprintf("\t[requires: %s]", strings.Join(progs, ", "))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newDoctorCmd(registry *core.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Проверить узел и внешние инструменты",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			info, err := sysinfo.Collect(ctx)
			if err != nil {
				return err
			}

			progs, err := registry.ExternalPrograms()
			if err != nil {
				return err
			}
			resolved := make(map[string]string, len(progs))
			var missing error
			for _, name := range progs {
				path, rerr := extprog.Resolve(name)
				if rerr != nil {
					resolved[name] = "NOT FOUND"
					missing = rerr
					continue
				}
				resolved[name] = path
			}
			info["external_programs"] = resolved

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(info); err != nil {
				return err
			}
			return missing
		},
	}
}

func newRunCmd(registry *core.Registry, lg *slog.Logger) (*cobra.Command, error) {
	var cfgPath, outdir string

	cmd := &cobra.Command{
		Use:   "run [flags] <assembly.fasta ...>",
		Short: "Прогнать типирующие модули над сборками",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := app.New(cfg, registry, lg)
			if err != nil {
				return err
			}
			defer a.Close()

			combined, err := a.RunOnce(cmd.Context(), args, flagValues{cmd.Flags()})
			if err != nil {
				return err
			}
			return writeReports(cmd, registry, combined, outdir)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "путь к YAML-конфигу")
	cmd.Flags().StringVarP(&outdir, "outdir", "o", "", "каталог для TSV-файлов (по умолчанию stdout)")

	opts, err := registry.Options()
	if err != nil {
		return nil, err
	}
	if err := bindOptions(cmd.Flags(), opts); err != nil {
		return nil, err
	}
	return cmd, nil
}

// writeReports печатает таблицу каждого модуля в stdout либо в файл
// <outdir>/<module>.tsv.
func writeReports(cmd *cobra.Command, registry *core.Registry, combined map[string]core.Results, outdir string) error {
	modules, err := registry.Modules()
	if err != nil {
		return err
	}
	for _, m := range modules {
		res := combined[m.Name()]
		if outdir == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "## module: %s\n", m.Name())
			if err := report.WriteTSV(cmd.OutOrStdout(), m.Headers(), res); err != nil {
				return err
			}
			continue
		}
		path := filepath.Join(outdir, m.Name()+".tsv")
		fh, err := os.Create(path) // #nosec G304 -- каталог вывода задается оператором.
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := report.WriteTSV(fh, m.Headers(), res); err != nil {
			_ = fh.Close()
			return err
		}
		if err := fh.Close(); err != nil {
			return err
		}
	}
	return nil
}

func newServeCmd(registry *core.Registry, lg *slog.Logger) (*cobra.Command, error) {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Следить за каталогом сборок и типировать новые",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := app.New(cfg, registry, lg)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(cmd.Context(), flagValues{cmd.Flags()})
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "путь к YAML-конфигу")

	opts, err := registry.Options()
	if err != nil {
		return nil, err
	}
	if err := bindOptions(cmd.Flags(), opts); err != nil {
		return nil, err
	}
	return cmd, nil
}

func newHistoryCmd() *cobra.Command {
	var cfgPath, module string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Показать историю прогонов из хранилища",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.SQLite.Path == "" {
				return fmt.Errorf("sqlite.path is not configured: %w", core.ErrConfig)
			}
			st, err := openStore(cfg.SQLite.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			events, err := st.QueryRuns(cmd.Context(), storage.RunQuery{Module: module, Limit: limit})
			if err != nil {
				return err
			}
			for _, ev := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%s\n",
					ev.TS.Format(time.RFC3339), ev.Module, ev.Assemblies, ev.Status, ev.Detail)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "путь к YAML-конфигу")
	cmd.Flags().StringVarP(&module, "module", "m", "", "фильтр по модулю")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "максимум событий")
	return cmd
}

func openStore(path string) (storage.Store, error) {
	return sqlite.Open(path)
}
