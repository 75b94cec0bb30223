package storage

import (
	"context"
	"time"
)

// ResultsRecord сохраняет таблицу результатов модуля за один прогон.
type ResultsRecord struct {
	Module  string
	Payload []byte
	TS      time.Time
}

// RunEvent фиксирует факт прогона пайплайна.
type RunEvent struct {
	Module     string
	Assemblies int
	Status     string
	Detail     string
	TS         time.Time
}

// RunQuery задает фильтры выборки истории прогонов.
type RunQuery struct {
	From   time.Time
	To     time.Time
	Module string
	Limit  int
}

// Store описывает операции хранилища.
type Store interface {
	SaveResults(ctx context.Context, rec ResultsRecord) error
	LatestResults(ctx context.Context, module string) (ResultsRecord, error)
	SaveRun(ctx context.Context, ev RunEvent) error
	QueryRuns(ctx context.Context, q RunQuery) ([]RunEvent, error)
	Close() error
}
