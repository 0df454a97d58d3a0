package workinghours

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SLN-BookingService/internal/domain"
	"github.com/m04kA/SLN-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SLN-BookingService/pkg/psqlbuilder"
)

// Расписание хранится по одной строке на день недели, weekday в формате
// time.Weekday (0 = Sunday ... 6 = Saturday)
var workingHoursColumns = []string{
	"professional_id",
	"weekday",
	"is_open",
	"open_time",
	"close_time",
	"lunch_start",
	"lunch_end",
	"updated_at",
}

// Repository репозиторий для работы с рабочими часами мастеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория рабочих часов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByProfessional получает недельное расписание мастера.
// Возвращает ErrScheduleNotFound, если у мастера нет ни одной строки расписания.
// Дни недели без строки считаются выходными.
func (r *Repository) GetByProfessional(ctx context.Context, professionalID int64) (*domain.WorkingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(workingHoursColumns...).
		From("working_hours").
		Where(squirrel.Eq{"professional_id": professionalID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	hours := &domain.WorkingHours{ProfessionalID: professionalID}
	found := false

	for rows.Next() {
		var (
			profID    int64
			weekday   int
			schedule  domain.DaySchedule
			updatedAt sql.NullTime
		)

		err := rows.Scan(
			&profID,
			&weekday,
			&schedule.IsOpen,
			&schedule.OpenTime,
			&schedule.CloseTime,
			&schedule.LunchStart,
			&schedule.LunchEnd,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByProfessional - scan row: %v", ErrScanRow, err)
		}

		found = true
		setDaySchedule(hours, weekday, schedule)
		if updatedAt.Time.After(hours.UpdatedAt) {
			hours.UpdatedAt = updatedAt.Time
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - rows error: %v", ErrScanRow, err)
	}

	if !found {
		return nil, ErrScheduleNotFound
	}

	return hours, nil
}

// Upsert сохраняет недельное расписание мастера целиком.
// Все семь дней перезаписываются одним запросом через ON CONFLICT.
func (r *Repository) Upsert(ctx context.Context, hours *domain.WorkingHours) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("working_hours").
		Columns(
			"professional_id",
			"weekday",
			"is_open",
			"open_time",
			"close_time",
			"lunch_start",
			"lunch_end",
		)

	for weekday, schedule := range weekSchedules(hours) {
		var openTime, closeTime interface{}
		if schedule.IsOpen {
			openTime = schedule.OpenTime
			closeTime = schedule.CloseTime
		}

		insertBuilder = insertBuilder.Values(
			hours.ProfessionalID,
			weekday,
			schedule.IsOpen,
			openTime,
			closeTime,
			schedule.LunchStart,
			schedule.LunchEnd,
		)
	}

	query, args, err := insertBuilder.
		Suffix(`ON CONFLICT (professional_id, weekday) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			lunch_start = EXCLUDED.lunch_start,
			lunch_end = EXCLUDED.lunch_end,
			updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// weekSchedules раскладывает недельное расписание по номерам дней time.Weekday
func weekSchedules(hours *domain.WorkingHours) map[int]domain.DaySchedule {
	return map[int]domain.DaySchedule{
		0: hours.Sunday,
		1: hours.Monday,
		2: hours.Tuesday,
		3: hours.Wednesday,
		4: hours.Thursday,
		5: hours.Friday,
		6: hours.Saturday,
	}
}

func setDaySchedule(hours *domain.WorkingHours, weekday int, schedule domain.DaySchedule) {
	// Закрытые дни храним с NULL временами, при чтении нормализуем в zero value
	if !schedule.IsOpen {
		schedule = domain.DaySchedule{IsOpen: false}
	}

	switch weekday {
	case 0:
		hours.Sunday = schedule
	case 1:
		hours.Monday = schedule
	case 2:
		hours.Tuesday = schedule
	case 3:
		hours.Wednesday = schedule
	case 4:
		hours.Thursday = schedule
	case 5:
		hours.Friday = schedule
	case 6:
		hours.Saturday = schedule
	}
}
