package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	whRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/workinghours"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// UseCase use case для получения доступных слотов онлайн-записи
type UseCase struct {
	apptRepo        AppointmentRepository
	whRepo          WorkingHoursRepository
	stepMinutes     int
	leadTimeMinutes int
	location        *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	apptRepo AppointmentRepository,
	whRepo WorkingHoursRepository,
	stepMinutes int,
	leadTimeMinutes int,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:        apptRepo,
		whRepo:          whRepo,
		stepMinutes:     stepMinutes,
		leadTimeMinutes: leadTimeMinutes,
		location:        location,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Результат детерминирован: одинаковые занятость, расписание и текущее
// время дают одинаковый список слотов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: professional=%d, date=%s, duration=%d",
		req.ProfessionalID, req.Date.Format(domain.DateFormat), req.ServiceDurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(uc.location)

	// 3. Получаем рабочие часы мастера
	hours, err := uc.whRepo.GetByProfessional(ctx, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, whRepo.ErrScheduleNotFound) {
			uc.logger.Warn("GetAvailableSlots: professional id=%d has no working hours", req.ProfessionalID)
			return nil, ErrScheduleNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get working hours for professional id=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
	}

	schedule := hours.ForDate(req.Date)
	if !schedule.IsOpen {
		uc.logger.Info("GetAvailableSlots: professional=%d is closed on %s", req.ProfessionalID, req.Date.Format(domain.DateFormat))
		return &Response{
			ProfessionalID: req.ProfessionalID,
			Date:           req.Date,
			Slots:          []Slot{},
		}, nil
	}

	// 4. Получаем занятые окна мастера на дату
	filter := domain.ProfessionalAgendaFilter{
		ProfessionalID: req.ProfessionalID,
		StartDate:      &req.Date,
		EndDate:        &req.Date,
	}

	appts, err := uc.apptRepo.GetByProfessionalWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	occupied, err := occupiedWindows(appts, uc.location)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to build occupied windows: %v", err)
		return nil, fmt.Errorf("%w: failed to build occupied windows: %v", ErrInternal, err)
	}

	// 5. Генерируем слоты
	windows, err := scheduling.ComputeSlots(scheduling.SlotParams{
		Day:                    req.Date,
		Schedule:               schedule,
		ServiceDurationMinutes: req.ServiceDurationMinutes,
		StepMinutes:            uc.stepMinutes,
		LeadTimeMinutes:        uc.leadTimeMinutes,
		Now:                    now,
		Occupied:               occupied,
		Location:               uc.location,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute slots: %v", err)
		return nil, fmt.Errorf("%w: failed to compute slots: %v", ErrInternal, err)
	}

	slots := make([]Slot, 0, len(windows))
	for _, window := range windows {
		slots = append(slots, Slot{
			StartTime:       types.NewTimeString(window.Start),
			EndTime:         types.NewTimeString(window.End),
			DurationMinutes: req.ServiceDurationMinutes,
		})
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for professional=%d, date=%s",
		len(slots), req.ProfessionalID, req.Date.Format(domain.DateFormat))

	return &Response{
		ProfessionalID: req.ProfessionalID,
		Date:           req.Date,
		Slots:          slots,
	}, nil
}

// occupiedWindows строит занятые временные окна из записей мастера
func occupiedWindows(appts []*domain.Appointment, loc *time.Location) ([]scheduling.TimeWindow, error) {
	windows := make([]scheduling.TimeWindow, 0, len(appts))

	for _, appt := range appts {
		if !appt.Occupies() {
			continue
		}

		start, err := appt.StartTime.OnDate(appt.Date, loc)
		if err != nil {
			return nil, err
		}
		window, err := scheduling.WindowFromStart(start, appt.DurationMinutes)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}

	return windows, nil
}
