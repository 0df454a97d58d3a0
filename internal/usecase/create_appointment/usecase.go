package create_appointment

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
)

// UseCase use case для создания записи к мастеру
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

// Execute выполняет use case создания записи.
// Использует сериализуемую транзакцию для предотвращения гонки данных:
// записи дня блокируются FOR UPDATE, пересечение окон проверяется на
// стороне приложения, exclusion constraint БД остается последней гарантией.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: client=%d, professional=%d, service=%d, date=%s, time=%s",
		req.ClientID, req.ProfessionalID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время в таймзоне салона
	now := uc.timeProvider.Now().In(uc.location)

	// 3. Строим окно кандидата
	candidateStart, err := req.StartTime.OnDate(req.Date, uc.location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}
	candidate, err := scheduling.WindowFromStart(candidateStart, req.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time window: %v", ErrInvalidInput, err)
	}

	var result *domain.Appointment

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Получаем рабочие часы мастера
		hours, err := uc.whRepo.GetByProfessional(txCtx, req.ProfessionalID)
		if err != nil {
			if errors.Is(err, whRepo.ErrScheduleNotFound) {
				uc.logger.Warn("CreateAppointment: professional id=%d has no working hours", req.ProfessionalID)
				return ErrScheduleNotFound
			}
			uc.logger.Error("CreateAppointment: failed to get working hours: %v", err)
			return fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
		}

		// 4.2. Проверяем, что окно помещается в рабочие часы
		if err := validateWithinWorkingHours(hours.ForDate(req.Date), req.StartTime, req.DurationMinutes); err != nil {
			uc.logger.Warn("CreateAppointment: working hours validation failed: %v", err)
			return err
		}

		// 4.3. Получаем занятые окна на дату с блокировкой (FOR UPDATE)
		filter := domain.ProfessionalAgendaFilter{
			ProfessionalID: req.ProfessionalID,
			StartDate:      &req.Date,
			EndDate:        &req.Date,
		}

		appts, err := uc.apptRepo.GetByProfessionalWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		occupied, err := occupiedWindows(appts, uc.location)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to build occupied windows: %v", err)
			return fmt.Errorf("%w: failed to build occupied windows: %v", ErrInternal, err)
		}

		// 4.4. Валидация кандидата планировщиком
		if rejection := uc.scheduler.ValidateSingle(candidate, occupied, now); rejection != nil {
			uc.logger.Warn("CreateAppointment: rejected, reason=%s: %s", rejection.Reason, rejection.Detail)
			return rejectionError(rejection)
		}

		// 4.5. Создаем запись с денормализацией данных услуги
		appointment := &domain.Appointment{
			PublicCode:      uuid.New(),
			ProfessionalID:  req.ProfessionalID,
			ServiceID:       ptr.Ptr(req.ServiceID),
			ClientID:        ptr.Ptr(req.ClientID),
			ClientName:      req.ClientName,
			ClientPhone:     req.ClientPhone,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			Status:          domain.StatusPending,
			ServiceName:     req.ServiceName,
			ServicePrice:    req.ServicePrice,
			Notes:           req.Notes,
		}

		created, err := uc.apptRepo.Create(txCtx, appointment)
		if err != nil {
			// Exclusion constraint в БД поймал параллельную запись на то же окно
			if errors.Is(err, apptRepo.ErrWindowTaken) {
				uc.logger.Warn("CreateAppointment: window taken by a concurrent booking, professional=%d", req.ProfessionalID)
				return fmt.Errorf("%w: window taken", ErrSlotConflict)
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d, code=%s", result.ID, result.PublicCode)

	// 5. Отправляем уведомление (graceful degradation, вне транзакции)
	uc.sendCreatedEvent(ctx, result)

	return &Response{
		ID:              result.ID,
		PublicCode:      result.PublicCode,
		ClientID:        req.ClientID,
		ProfessionalID:  result.ProfessionalID,
		ServiceID:       req.ServiceID,
		Date:            result.Date,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		ServiceName:     result.ServiceName,
		ServicePrice:    result.ServicePrice,
		Notes:           result.Notes,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// rejectionError конвертирует отказ планировщика в типизированную ошибку usecase
func rejectionError(r *scheduling.Rejection) error {
	switch r.Reason {
	case scheduling.ReasonPastBooking:
		return fmt.Errorf("%w: %s", ErrPastBooking, r.Detail)
	case scheduling.ReasonConflict:
		return fmt.Errorf("%w: %s", ErrSlotConflict, r.Detail)
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

// sendCreatedEvent отправляет событие о создании записи в сервис уведомлений
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
