package schedule

import (
	"context"

	"github.com/m04kA/SLN-BookingService/internal/domain"
)

// WorkingHoursRepository интерфейс репозитория рабочих часов
type WorkingHoursRepository interface {
	GetByProfessional(ctx context.Context, professionalID int64) (*domain.WorkingHours, error)
	Upsert(ctx context.Context, hours *domain.WorkingHours) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
