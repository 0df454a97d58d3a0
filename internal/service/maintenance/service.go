package maintenance

import (
	"context"
	"fmt"
)

// Service фоновые задачи обслуживания календаря
type Service struct {
	apptRepo AppointmentRepository
	clock    TimeProvider
	logger   Logger
}

// NewService создает новый экземпляр сервиса фоновых задач
func NewService(apptRepo AppointmentRepository, clock TimeProvider, logger Logger) *Service {
	return &Service{
		apptRepo: apptRepo,
		clock:    clock,
		logger:   logger,
	}
}

// CompleteElapsedAppointments переводит подтвержденные записи с истекшим
// окном в статус completed. Запускается по расписанию из cron.
func (s *Service) CompleteElapsedAppointments(ctx context.Context) (int64, error) {
	now := s.clock.Now()

	ids, err := s.apptRepo.GetElapsedConfirmedIDs(ctx, now)
	if err != nil {
		s.logger.Error("CompleteElapsedAppointments: failed to fetch elapsed appointments: %v", err)
		return 0, fmt.Errorf("fetch elapsed appointments: %w", err)
	}

	if len(ids) == 0 {
		return 0, nil
	}

	completed, err := s.apptRepo.CompleteByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("CompleteElapsedAppointments: failed to complete appointments: %v", err)
		return 0, fmt.Errorf("complete appointments: %w", err)
	}

	s.logger.Info("CompleteElapsedAppointments: completed %d elapsed appointments", completed)
	return completed, nil
}
