package remove_block

import (
	"context"
)

type AppointmentService interface {
	RemoveBlock(ctx context.Context, blockID int64, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
