package sysinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Collect собирает базовые метрики узла для команды doctor: память и
// загрузку стоит смотреть перед выбором --threads внешних инструментов.
func Collect(ctx context.Context) (map[string]interface{}, error) {
	hInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory info: %w", err)
	}
	ld, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("load info: %w", err)
	}
	return map[string]interface{}{
		"hostname":     hInfo.Hostname,
		"platform":     hInfo.Platform,
		"platformVer":  hInfo.PlatformVersion,
		"kernel":       hInfo.KernelVersion,
		"uptime_sec":   hInfo.Uptime,
		"boot_time":    time.Unix(int64(hInfo.BootTime), 0).UTC().Format(time.RFC3339),
		"mem_total":    vm.Total,
		"mem_used":     vm.Used,
		"mem_used_pct": vm.UsedPercent,
		"load1":        ld.Load1,
		"load5":        ld.Load5,
		"load15":       ld.Load15,
	}, nil
}
