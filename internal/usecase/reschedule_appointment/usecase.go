package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	apptRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SLN-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
)

// UseCase use case для переноса записи на новое время (drag-and-drop в календаре)
type UseCase struct {
	apptRepo     AppointmentRepository
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
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	scheduler *scheduling.Scheduler,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     apptRepo,
		notifyClient: notifyClient,
		txManager:    txManager,
		scheduler:    scheduler,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case переноса записи.
//
// Перенос валидируется планировщиком: прошедшее время и время вне коридора
// переноса отклоняются, переносимая запись исключается из занятых окон по
// идентификатору - перенос на собственное текущее время не считается
// конфликтом. Рабочие часы мастера здесь не проверяются: мастер может
// перетащить запись на любое время внутри коридора, это его календарь.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: appointment=%d, user=%d, newDate=%s, newTime=%s",
		req.AppointmentID, req.UserID, req.NewDate.Format(domain.DateFormat), req.NewStartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время в таймзоне салона
	now := uc.timeProvider.Now().In(uc.location)

	var result *domain.Appointment

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Получаем запись
		appt, err := uc.apptRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("RescheduleAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("RescheduleAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// 3.2. Проверяем права доступа: перенести запись может её клиент или мастер
		if err := checkUserAccess(appt, req.UserID); err != nil {
			uc.logger.Warn("RescheduleAppointment: access denied for user=%d to appointment id=%d",
				req.UserID, req.AppointmentID)
			return err
		}

		// 3.3. Переносить можно только активные клиентские записи
		if appt.IsBlock() || !appt.CanBeRescheduled() {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d cannot be rescheduled, status=%s",
				req.AppointmentID, appt.Status)
			return ErrCannotReschedule
		}

		// 3.4. Строим новое окно
		newStart, err := req.NewStartTime.OnDate(req.NewDate, uc.location)
		if err != nil {
			return fmt.Errorf("%w: invalid new start time: %v", ErrInvalidInput, err)
		}
		newWindow, err := scheduling.WindowFromStart(newStart, appt.DurationMinutes)
		if err != nil {
			return fmt.Errorf("%w: invalid time window: %v", ErrInvalidInput, err)
		}

		// 3.5. Получаем занятые окна мастера на новую дату с блокировкой (FOR UPDATE)
		filter := domain.ProfessionalAgendaFilter{
			ProfessionalID: appt.ProfessionalID,
			StartDate:      &req.NewDate,
			EndDate:        &req.NewDate,
		}

		appts, err := uc.apptRepo.GetByProfessionalWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		occupied, err := occupiedWindowsWithIDs(appts, uc.location)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to build occupied windows: %v", err)
			return fmt.Errorf("%w: failed to build occupied windows: %v", ErrInternal, err)
		}

		// 3.6. Валидация переноса планировщиком
		if rejection := uc.scheduler.ValidateMove(appt.ID, newWindow, occupied, now); rejection != nil {
			uc.logger.Warn("RescheduleAppointment: rejected, reason=%s: %s", rejection.Reason, rejection.Detail)
			return rejectionError(rejection)
		}

		// 3.7. Обновляем окно записи
		if err := uc.apptRepo.UpdateWindow(txCtx, appt.ID, req.NewDate, req.NewStartTime.String(), appt.DurationMinutes); err != nil {
			if errors.Is(err, apptRepo.ErrWindowTaken) {
				return fmt.Errorf("%w: window taken", ErrSlotConflict)
			}
			uc.logger.Error("RescheduleAppointment: failed to update window for appointment id=%d: %v", appt.ID, err)
			return fmt.Errorf("%w: failed to update window: %v", ErrInternal, err)
		}

		appt.Date = req.NewDate
		appt.StartTime = req.NewStartTime
		result = appt
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleAppointment: successfully moved appointment id=%d to %s %s",
		result.ID, result.Date.Format(domain.DateFormat), result.StartTime)

	// 4. Отправляем уведомление (graceful degradation, вне транзакции)
	uc.sendRescheduledEvent(ctx, result)

	return &Response{
		ID:              result.ID,
		ProfessionalID:  result.ProfessionalID,
		Date:            result.Date,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
	}, nil
}

// checkUserAccess проверяет, что пользователь имеет доступ к записи
func checkUserAccess(appt *domain.Appointment, userID int64) error {
	if appt.ProfessionalID == userID {
		return nil
	}
	if appt.ClientID != nil && *appt.ClientID == userID {
		return nil
	}
	return ErrAccessDenied
}

// rejectionError конвертирует отказ планировщика в типизированную ошибку usecase
func rejectionError(r *scheduling.Rejection) error {
	switch r.Reason {
	case scheduling.ReasonPastBooking:
		return fmt.Errorf("%w: %s", ErrPastBooking, r.Detail)
	case scheduling.ReasonOutOfHours:
		return fmt.Errorf("%w: %s", ErrOutOfHours, r.Detail)
	case scheduling.ReasonConflict:
		return fmt.Errorf("%w: %s", ErrSlotConflict, r.Detail)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidInput, r.Detail)
	}
}

// occupiedWindowsWithIDs строит занятые окна с идентификаторами записей
// для self-exclusion при переносе
func occupiedWindowsWithIDs(appts []*domain.Appointment, loc *time.Location) ([]scheduling.OccupiedWindow, error) {
	windows := make([]scheduling.OccupiedWindow, 0, len(appts))

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
		windows = append(windows, scheduling.OccupiedWindow{
			AppointmentID: appt.ID,
			Window:        window,
		})
	}

	return windows, nil
}

// sendRescheduledEvent отправляет событие о переносе записи в сервис уведомлений
func (uc *UseCase) sendRescheduledEvent(ctx context.Context, appt *domain.Appointment) {
	if uc.notifyClient == nil {
		return
	}

	// Деградация обработана внутри клиента, ошибку игнорируем
	_ = uc.notifyClient.SendEventWithGracefulDegradation(ctx, notifyservice.AppointmentEvent{
		Event:          notifyservice.EventAppointmentRescheduled,
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
