package schedule

import (
	"context"
	"errors"
	"fmt"

	whRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/workinghours"
	"github.com/m04kA/SLN-BookingService/internal/service/schedule/models"
)

// Service сервис для работы с рабочими часами мастеров
type Service struct {
	whRepo WorkingHoursRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса рабочих часов
func NewService(whRepo WorkingHoursRepository, logger Logger) *Service {
	return &Service{
		whRepo: whRepo,
		logger: logger,
	}
}

// GetWorkingHours получает недельное расписание мастера.
// Расписание публичное - его видит страница онлайн-записи.
func (s *Service) GetWorkingHours(ctx context.Context, professionalID int64) (*models.WorkingHoursResponse, error) {
	s.logger.Info("GetWorkingHours: fetching schedule for professional=%d", professionalID)

	hours, err := s.whRepo.GetByProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, whRepo.ErrScheduleNotFound) {
			s.logger.Warn("GetWorkingHours: schedule not found for professional=%d", professionalID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("GetWorkingHours: repository error for professional=%d: %v", professionalID, err)
		return nil, fmt.Errorf("%w: GetWorkingHours - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWorkingHours(hours), nil
}

// UpdateWorkingHours сохраняет недельное расписание мастера целиком.
// Доступно только самому мастеру. Перед сохранением проверяются инварианты:
// открытие раньше закрытия, обед целиком внутри рабочего окна.
func (s *Service) UpdateWorkingHours(ctx context.Context, req *models.WorkingHoursRequest) (*models.WorkingHoursResponse, error) {
	s.logger.Info("UpdateWorkingHours: updating schedule for professional=%d by user=%d", req.ProfessionalID, req.UserID)

	// Расписание меняет только сам мастер
	if req.UserID != req.ProfessionalID {
		s.logger.Warn("UpdateWorkingHours: access denied for user=%d to professional=%d schedule", req.UserID, req.ProfessionalID)
		return nil, ErrAccessDenied
	}

	hours, err := req.ToDomain()
	if err != nil {
		s.logger.Warn("UpdateWorkingHours: invalid schedule for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := hours.Validate(); err != nil {
		s.logger.Warn("UpdateWorkingHours: schedule validation failed for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.whRepo.Upsert(ctx, hours); err != nil {
		s.logger.Error("UpdateWorkingHours: repository error for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: UpdateWorkingHours - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateWorkingHours: successfully updated schedule for professional=%d", req.ProfessionalID)
	return models.FromDomainWorkingHours(hours), nil
}
