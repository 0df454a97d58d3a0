package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	apptRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SLN-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
	"github.com/m04kA/SLN-BookingService/internal/service/appointments/models"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// Service сервис для работы с записями в календаре
type Service struct {
	apptRepo     AppointmentRepository
	txManager    TransactionManager
	notifyClient NotifyServiceClient
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса записей.
// notifyClient может быть nil, если уведомления выключены в конфигурации.
func NewService(
	apptRepo AppointmentRepository,
	txManager TransactionManager,
	notifyClient NotifyServiceClient,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		apptRepo:     apptRepo,
		txManager:    txManager,
		notifyClient: notifyClient,
		location:     location,
		logger:       logger,
	}
}

// GetByID получает запись по ID
// Проверяет права доступа - запись видит её клиент или мастер
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, userID)

	appt, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(appt, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(appt), nil
}

// GetByPublicCode получает запись по публичному коду.
// Код выдается клиенту при создании записи и работает как токен доступа
// для страницы онлайн-записи, дополнительных проверок не требуется.
func (s *Service) GetByPublicCode(ctx context.Context, code uuid.UUID) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByPublicCode: fetching appointment code=%s", code)

	appt, err := s.apptRepo.GetByPublicCode(ctx, code)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByPublicCode: appointment code=%s not found", code)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByPublicCode: repository error for code=%s: %v", code, err)
		return nil, fmt.Errorf("%w: GetByPublicCode - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appt), nil
}

// GetClientAppointments получает историю записей клиента
// Опционально фильтрует по статусу
func (s *Service) GetClientAppointments(ctx context.Context, req *models.GetClientAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetClientAppointments: fetching appointments for client=%d, status=%v", req.ClientID, req.Status)

	// Конвертируем статус из строки в domain.AppointmentStatus
	var domainStatus *domain.AppointmentStatus
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetClientAppointments: invalid status=%s for client=%d", *req.Status, req.ClientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	appts, err := s.apptRepo.GetByClientID(ctx, req.ClientID, domainStatus)
	if err != nil {
		s.logger.Error("GetClientAppointments: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientAppointments: successfully fetched %d appointments for client=%d", len(appts), req.ClientID)
	return models.FromDomainAppointmentList(appts), nil
}

// GetProfessionalAgenda получает агенду мастера с гибкой фильтрацией
// Доступно только самому мастеру
//
// Примеры использования:
// - Агенда на день: StartDate и EndDate указывают на одну дату
// - Агенда за период: StartDate и EndDate указывают на разные даты
// - Только подтвержденные: указать Status = "confirmed"
// - Включая отменённые: IncludeAll = true
func (s *Service) GetProfessionalAgenda(ctx context.Context, req *models.GetProfessionalAgendaRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetProfessionalAgenda: fetching agenda for professional=%d, user=%d", req.ProfessionalID, req.UserID)

	// Агенду видит только сам мастер
	if req.UserID != req.ProfessionalID {
		s.logger.Warn("GetProfessionalAgenda: access denied for user=%d to professional=%d agenda", req.UserID, req.ProfessionalID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProfessionalAgenda: invalid filter for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appts, err := s.apptRepo.GetByProfessionalWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProfessionalAgenda: repository error for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: GetProfessionalAgenda - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProfessionalAgenda: successfully fetched %d appointments for professional=%d", len(appts), req.ProfessionalID)
	return models.FromDomainAppointmentList(appts), nil
}

// Cancel отменяет запись
// Отменить может клиент записи или мастер
func (s *Service) Cancel(ctx context.Context, appointmentID int64, req *models.CancelAppointmentRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", appointmentID, req.UserID)

	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(appt, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to cancel appointment id=%d", req.UserID, appointmentID)
		return err
	}

	// Проверяем, можно ли отменить запись
	if !appt.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", appointmentID, appt.Status)
		return ErrCannotCancel
	}

	if err := s.apptRepo.Cancel(ctx, appointmentID, req.CancellationReason); err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found during cancellation", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", appointmentID)
	s.sendEvent(ctx, appt, notifyservice.EventAppointmentCancelled, &req.CancellationReason)
	return nil
}

// UpdateStatus обновляет статус записи по конечному автомату статусов
// Доступно только мастеру
func (s *Service) UpdateStatus(ctx context.Context, appointmentID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s by user=%d",
		appointmentID, req.Status, req.UserID)

	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("UpdateStatus: appointment id=%d not found", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// Статусами управляет только мастер
	if appt.ProfessionalID != req.UserID {
		s.logger.Warn("UpdateStatus: access denied for user=%d to appointment id=%d", req.UserID, appointmentID)
		return ErrAccessDenied
	}

	newStatus, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, appointmentID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if !appt.CanTransitionTo(newStatus) {
		s.logger.Warn("UpdateStatus: invalid transition %s -> %s for appointment id=%d",
			appt.Status, newStatus, appointmentID)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, newStatus)
	}

	if err := s.apptRepo.UpdateStatus(ctx, appointmentID, newStatus); err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("UpdateStatus: appointment id=%d not found during update", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated appointment id=%d to status=%s", appointmentID, newStatus)

	if newStatus == domain.StatusConfirmed {
		s.sendEvent(ctx, appt, notifyservice.EventAppointmentConfirmed, nil)
	}

	return nil
}

// CreateBlock блокирует время в календаре мастера (обед, перерыв, личные дела).
// Блокировка занимает календарь наравне с клиентскими записями.
// Выполняется в сериализуемой транзакции: записи дня блокируются FOR UPDATE,
// пересечение с существующими окнами отклоняется.
func (s *Service) CreateBlock(ctx context.Context, req *models.CreateBlockRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("CreateBlock: blocking time for professional=%d, date=%s, start=%s, duration=%d",
		req.ProfessionalID, req.Date, req.StartTime, req.DurationMinutes)

	// Календарь блокирует только сам мастер
	if req.UserID != req.ProfessionalID {
		s.logger.Warn("CreateBlock: access denied for user=%d to professional=%d calendar", req.UserID, req.ProfessionalID)
		return nil, ErrAccessDenied
	}

	date, err := time.ParseInLocation(domain.DateFormat, req.Date, s.location)
	if err != nil {
		s.logger.Warn("CreateBlock: invalid date=%s for professional=%d", req.Date, req.ProfessionalID)
		return nil, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", ErrInvalidInput)
	}

	startTime, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		s.logger.Warn("CreateBlock: invalid start time=%s for professional=%d", req.StartTime, req.ProfessionalID)
		return nil, fmt.Errorf("%w: invalid start time format, expected HH:MM", ErrInvalidInput)
	}

	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	if _, err := startTime.AddMinutes(req.DurationMinutes); err != nil {
		return nil, fmt.Errorf("%w: block must end within the same day", ErrInvalidInput)
	}

	blockStart, err := startTime.OnDate(date, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}
	blockWindow, err := scheduling.WindowFromStart(blockStart, req.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time window: %v", ErrInvalidInput, err)
	}

	block := &domain.Appointment{
		PublicCode:      uuid.New(),
		ProfessionalID:  req.ProfessionalID,
		ClientName:      "",
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: req.DurationMinutes,
		Status:          domain.StatusBlocked,
		Notes:           req.Notes,
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Читаем занятость дня с блокировкой строк
		occupied, err := s.dayWindows(txCtx, req.ProfessionalID, date)
		if err != nil {
			return err
		}

		if conflict, found := scheduling.FirstConflict(blockWindow, occupied); found {
			s.logger.Warn("CreateBlock: conflict for professional=%d with window %s", req.ProfessionalID, conflict)
			return ErrSlotConflict
		}

		block, err = s.apptRepo.Create(txCtx, block)
		return err
	})

	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			return nil, ErrSlotConflict
		}
		if errors.Is(err, apptRepo.ErrWindowTaken) {
			return nil, ErrSlotConflict
		}
		s.logger.Error("CreateBlock: transaction error for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: CreateBlock - transaction error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateBlock: successfully blocked time for professional=%d, appointment id=%d", req.ProfessionalID, block.ID)
	return models.FromDomainAppointment(block), nil
}

// RemoveBlock снимает блокировку времени из календаря мастера.
// Клиентские записи этим методом удалить нельзя - для них есть Cancel.
func (s *Service) RemoveBlock(ctx context.Context, blockID int64, userID int64) error {
	s.logger.Info("RemoveBlock: removing block id=%d by user=%d", blockID, userID)

	appt, err := s.apptRepo.GetByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("RemoveBlock: block id=%d not found", blockID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("RemoveBlock: repository error for block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: RemoveBlock - repository error: %v", ErrInternal, err)
	}

	if appt.ProfessionalID != userID {
		s.logger.Warn("RemoveBlock: access denied for user=%d to block id=%d", userID, blockID)
		return ErrAccessDenied
	}

	if !appt.IsBlock() {
		s.logger.Warn("RemoveBlock: appointment id=%d is not a time block, status=%s", blockID, appt.Status)
		return ErrNotABlock
	}

	if err := s.apptRepo.Delete(ctx, blockID); err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		s.logger.Error("RemoveBlock: repository error for block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: RemoveBlock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("RemoveBlock: successfully removed block id=%d", blockID)
	return nil
}

// Вспомогательные методы

// checkUserAccess проверяет, что пользователь имеет доступ к записи.
// Запись видят её клиент и мастер.
func (s *Service) checkUserAccess(appt *domain.Appointment, userID int64) error {
	if appt.ProfessionalID == userID {
		return nil
	}
	if appt.ClientID != nil && *appt.ClientID == userID {
		return nil
	}
	return ErrAccessDenied
}

// dayWindows возвращает занятые временные окна мастера на дату
func (s *Service) dayWindows(ctx context.Context, professionalID int64, date time.Time) ([]scheduling.TimeWindow, error) {
	filter := domain.ProfessionalAgendaFilter{
		ProfessionalID: professionalID,
		StartDate:      &date,
		EndDate:        &date,
	}

	appts, err := s.apptRepo.GetByProfessionalWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	windows := make([]scheduling.TimeWindow, 0, len(appts))
	for _, appt := range appts {
		if !appt.Occupies() {
			continue
		}
		start, err := appt.StartTime.OnDate(appt.Date, s.location)
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

// sendEvent отправляет событие в сервис уведомлений с graceful degradation.
// Ошибка отправки логируется внутри клиента и не влияет на результат операции.
func (s *Service) sendEvent(ctx context.Context, appt *domain.Appointment, event string, reason *string) {
	if s.notifyClient == nil || appt.IsBlock() {
		return
	}

	// Деградация обработана внутри клиента, ошибку игнорируем
	_ = s.notifyClient.SendEventWithGracefulDegradation(ctx, notifyservice.AppointmentEvent{
		Event:          event,
		PublicCode:     appt.PublicCode.String(),
		ProfessionalID: appt.ProfessionalID,
		ClientID:       appt.ClientID,
		ClientName:     appt.ClientName,
		ClientPhone:    appt.ClientPhone,
		ServiceName:    appt.ServiceName,
		Date:           appt.Date.Format(domain.DateFormat),
		StartTime:      appt.StartTime.String(),
		Reason:         reason,
	})
}
