package core

import (
	"context"
	"time"
)

// Job описывает периодическую задачу.
type Job func(ctx context.Context) error

// Scheduler запускает задачи с фиксированным интервалом.
type Scheduler struct {
	interval time.Duration
	jobs     []Job
}

// NewScheduler создает scheduler с заданным интервалом.
func NewScheduler(interval time.Duration) *Scheduler {
	return &Scheduler{interval: interval}
}

// Add добавляет задачу в расписание.
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start запускает scheduler до отмены контекста. Задачи одного тика
// выполняются последовательно: прогон пайплайна сам владеет stdout и
// хранилищем, параллельные тики ему не нужны.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, job := range s.jobs {
				if ctx.Err() != nil {
					return
				}
				_ = job(ctx)
			}
		}
	}
}
