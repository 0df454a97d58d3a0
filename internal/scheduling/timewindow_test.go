package scheduling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SLN-BookingService/internal/scheduling"
)

func mustWindow(t *testing.T, start, end time.Time) scheduling.TimeWindow {
	t.Helper()
	w, err := scheduling.NewTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 10, hour, minute, 0, 0, time.UTC)
}

func TestNewTimeWindow_InvalidRange(t *testing.T) {
	_, err := scheduling.NewTimeWindow(at(10, 0), at(10, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduling.ErrInvalidWindow)

	_, err = scheduling.NewTimeWindow(at(10, 30), at(10, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduling.ErrInvalidWindow)
}

func TestTimeWindow_Overlaps(t *testing.T) {
	base := mustWindow(t, at(10, 0), at(10, 30))

	tests := []struct {
		name     string
		other    scheduling.TimeWindow
		overlaps bool
	}{
		{
			name:     "identical windows overlap",
			other:    mustWindow(t, at(10, 0), at(10, 30)),
			overlaps: true,
		},
		{
			name:     "partial overlap from the right",
			other:    mustWindow(t, at(10, 15), at(10, 45)),
			overlaps: true,
		},
		{
			name:     "partial overlap from the left",
			other:    mustWindow(t, at(9, 45), at(10, 15)),
			overlaps: true,
		},
		{
			name:     "containing window overlaps",
			other:    mustWindow(t, at(9, 0), at(11, 0)),
			overlaps: true,
		},
		{
			name:     "contained window overlaps",
			other:    mustWindow(t, at(10, 10), at(10, 20)),
			overlaps: true,
		},
		{
			name:     "touching at the end is not a conflict",
			other:    mustWindow(t, at(10, 30), at(11, 0)),
			overlaps: false,
		},
		{
			name:     "touching at the start is not a conflict",
			other:    mustWindow(t, at(9, 30), at(10, 0)),
			overlaps: false,
		},
		{
			name:     "disjoint windows do not overlap",
			other:    mustWindow(t, at(12, 0), at(12, 30)),
			overlaps: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, base.Overlaps(tt.other))
			// Пересечение симметрично
			assert.Equal(t, tt.overlaps, tt.other.Overlaps(base))
		})
	}
}

func TestHasConflict(t *testing.T) {
	candidate := mustWindow(t, at(10, 15), at(10, 45))

	t.Run("empty existing never conflicts", func(t *testing.T) {
		assert.False(t, scheduling.HasConflict(candidate, nil))
		assert.False(t, scheduling.HasConflict(candidate, []scheduling.TimeWindow{}))
	})

	t.Run("overlap at any point is a conflict", func(t *testing.T) {
		existing := []scheduling.TimeWindow{
			mustWindow(t, at(8, 0), at(8, 30)),
			mustWindow(t, at(10, 0), at(10, 30)),
		}
		assert.True(t, scheduling.HasConflict(candidate, existing))

		conflict, found := scheduling.FirstConflict(candidate, existing)
		require.True(t, found)
		assert.Equal(t, existing[1], conflict)
	})

	t.Run("touching boundary is not a conflict", func(t *testing.T) {
		existing := []scheduling.TimeWindow{
			mustWindow(t, at(9, 45), at(10, 15)),
		}
		next := mustWindow(t, at(10, 15), at(10, 45))
		assert.False(t, scheduling.HasConflict(next, existing))
	})
}
