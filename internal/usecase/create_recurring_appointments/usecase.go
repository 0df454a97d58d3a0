package create_recurring_appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	apptRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/appointment"
	whRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/workinghours"
	"github.com/m04kA/SLN-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
	"github.com/m04kA/SLN-BookingService/pkg/ptr"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// UseCase use case для создания повторяющейся серии записей
type UseCase struct {
	apptRepo     AppointmentRepository
	whRepo       WorkingHoursRepository
	notifyClient NotifyServiceClient
	txManager    TransactionManager
	scheduler    *scheduling.Scheduler
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// notifyClient может быть nil, если уведомления выключены в конфигурации.
func NewUseCase(
	apptRepo AppointmentRepository,
	whRepo WorkingHoursRepository,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	scheduler *scheduling.Scheduler,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     apptRepo,
		whRepo:       whRepo,
		notifyClient: notifyClient,
		txManager:    txManager,
		scheduler:    scheduler,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания повторяющейся серии.
//
// Серия атомарна: либо создаются все повторения, либо ни одного. Первый же
// конфликт или выход за рабочие часы отклоняет серию целиком с указанием
// даты проблемного повторения. Если серия уперлась в лимит повторений
// раньше конечной даты, она создается обрезанной, а в ответе взводится
// флаг Truncated - это предупреждение, не отказ.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateRecurringAppointments: client=%d, professional=%d, date=%s, time=%s, frequency=%s, until=%s",
		req.ClientID, req.ProfessionalID, req.Date.Format(domain.DateFormat), req.StartTime,
		req.Frequency, req.EndDate.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateRecurringAppointments: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время в таймзоне салона
	now := uc.timeProvider.Now().In(uc.location)

	// 3. Строим якорное окно серии
	anchorStart, err := req.StartTime.OnDate(req.Date, uc.location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}
	anchor, err := scheduling.WindowFromStart(anchorStart, req.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time window: %v", ErrInvalidInput, err)
	}

	spec := domain.RecurrenceSpec{
		Frequency: domain.RecurrenceFrequency(req.Frequency),
		EndDate:   req.EndDate,
	}

	var (
		created   []*domain.Appointment
		truncated bool
		groupID   = uuid.New()
	)

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Получаем рабочие часы мастера
		hours, err := uc.whRepo.GetByProfessional(txCtx, req.ProfessionalID)
		if err != nil {
			if errors.Is(err, whRepo.ErrScheduleNotFound) {
				uc.logger.Warn("CreateRecurringAppointments: professional id=%d has no working hours", req.ProfessionalID)
				return ErrScheduleNotFound
			}
			uc.logger.Error("CreateRecurringAppointments: failed to get working hours: %v", err)
			return fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
		}

		// 4.2. Получаем занятые окна мастера на весь период серии.
		// Диапазон дат не блокируется FOR UPDATE - от параллельных вставок
		// защищают сериализуемая изоляция и exclusion constraint БД.
		filter := domain.ProfessionalAgendaFilter{
			ProfessionalID: req.ProfessionalID,
			StartDate:      &req.Date,
			EndDate:        &req.EndDate,
		}

		appts, err := uc.apptRepo.GetByProfessionalWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateRecurringAppointments: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		occupied, err := occupiedWindows(appts, uc.location)
		if err != nil {
			uc.logger.Error("CreateRecurringAppointments: failed to build occupied windows: %v", err)
			return fmt.Errorf("%w: failed to build occupied windows: %v", ErrInternal, err)
		}

		// 4.3. Валидация и материализация серии планировщиком
		series, rejection := uc.scheduler.ValidateRecurring(anchor, spec, occupied, now)
		if rejection != nil {
			uc.logger.Warn("CreateRecurringAppointments: rejected, reason=%s: %s", rejection.Reason, rejection.Detail)
			return rejectionError(rejection)
		}
		truncated = series.Truncated

		// 4.4. Каждое повторение должно помещаться в рабочие часы своего дня
		for i, occurrence := range series.Occurrences {
			schedule := hours.ForDate(occurrence.Start)
			startTime := types.NewTimeString(occurrence.Start)
			if err := validateWithinWorkingHours(schedule, startTime, req.DurationMinutes); err != nil {
				uc.logger.Warn("CreateRecurringAppointments: occurrence %d on %s rejected: %v",
					i, occurrence.Start.Format(domain.DateFormat), err)
				return fmt.Errorf("%w (occurrence %d on %s)", err, i, occurrence.Start.Format(domain.DateFormat))
			}
		}

		// 4.5. Создаем все повторения одной вставкой
		batch := make([]*domain.Appointment, 0, len(series.Occurrences))
		for _, occurrence := range series.Occurrences {
			day := time.Date(occurrence.Start.Year(), occurrence.Start.Month(), occurrence.Start.Day(),
				0, 0, 0, 0, uc.location)

			batch = append(batch, &domain.Appointment{
				PublicCode:        uuid.New(),
				ProfessionalID:    req.ProfessionalID,
				ServiceID:         ptr.Ptr(req.ServiceID),
				ClientID:          ptr.Ptr(req.ClientID),
				ClientName:        req.ClientName,
				ClientPhone:       req.ClientPhone,
				Date:              day,
				StartTime:         types.NewTimeString(occurrence.Start),
				DurationMinutes:   req.DurationMinutes,
				Status:            domain.StatusPending,
				ServiceName:       req.ServiceName,
				ServicePrice:      req.ServicePrice,
				Notes:             req.Notes,
				RecurrenceGroupID: &groupID,
			})
		}

		created, err = uc.apptRepo.CreateBatch(txCtx, batch)
		if err != nil {
			// Exclusion constraint в БД поймал параллельную запись на одно из окон серии
			if errors.Is(err, apptRepo.ErrWindowTaken) {
				uc.logger.Warn("CreateRecurringAppointments: series window taken by a concurrent booking, professional=%d", req.ProfessionalID)
				return fmt.Errorf("%w: window taken", ErrSeriesConflict)
			}
			uc.logger.Error("CreateRecurringAppointments: failed to create batch: %v", err)
			return fmt.Errorf("%w: failed to create batch: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateRecurringAppointments: successfully created series group=%s with %d occurrences, truncated=%t",
		groupID, len(created), truncated)

	// 5. Отправляем уведомление по первой записи серии (graceful degradation)
	if len(created) > 0 {
		uc.sendCreatedEvent(ctx, created[0])
	}

	occurrences := make([]Occurrence, 0, len(created))
	for _, appt := range created {
		occurrences = append(occurrences, Occurrence{
			ID:         appt.ID,
			PublicCode: appt.PublicCode,
			Date:       appt.Date,
			StartTime:  appt.StartTime,
		})
	}

	return &Response{
		RecurrenceGroupID: groupID,
		ProfessionalID:    req.ProfessionalID,
		Frequency:         req.Frequency,
		Occurrences:       occurrences,
		Truncated:         truncated,
	}, nil
}

// rejectionError конвертирует отказ планировщика в типизированную ошибку usecase
func rejectionError(r *scheduling.Rejection) error {
	switch r.Reason {
	case scheduling.ReasonPastBooking:
		return fmt.Errorf("%w: %s", ErrPastBooking, r.Detail)
	case scheduling.ReasonInvalidRange:
		return fmt.Errorf("%w: %s", ErrInvalidRange, r.Detail)
	case scheduling.ReasonConflict:
		return fmt.Errorf("%w: %s", ErrSeriesConflict, r.Detail)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidInput, r.Detail)
	}
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

// sendCreatedEvent отправляет событие о создании серии в сервис уведомлений
func (uc *UseCase) sendCreatedEvent(ctx context.Context, appt *domain.Appointment) {
	if uc.notifyClient == nil {
		return
	}

	// Деградация обработана внутри клиента, ошибку игнорируем
	_ = uc.notifyClient.SendEventWithGracefulDegradation(ctx, notifyservice.AppointmentEvent{
		Event:          notifyservice.EventAppointmentCreated,
		PublicCode:     appt.PublicCode.String(),
		ProfessionalID: appt.ProfessionalID,
		ClientID:       appt.ClientID,
		ClientName:     appt.ClientName,
		ClientPhone:    appt.ClientPhone,
		ServiceName:    appt.ServiceName,
		Date:           appt.Date.Format(domain.DateFormat),
		StartTime:      appt.StartTime.String(),
	})
}
