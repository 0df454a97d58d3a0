package maintenance

import (
	"context"
	"time"
)

// AppointmentRepository интерфейс репозитория записей для фоновых задач
type AppointmentRepository interface {
	GetElapsedConfirmedIDs(ctx context.Context, now time.Time) ([]int64, error)
	CompleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

// TimeProvider источник текущего времени, подменяется в тестах
type TimeProvider interface {
	Now() time.Time
}

// RealClock реализация TimeProvider на системных часах
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
