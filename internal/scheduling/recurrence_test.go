package scheduling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
)

func TestExpand_Weekly(t *testing.T) {
	anchor := mustWindow(t,
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
	)

	exp := scheduling.Expand(anchor, domain.RecurrenceSpec{
		Frequency: domain.FrequencyWeekly,
		EndDate:   time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC),
	})

	require.Len(t, exp.Occurrences, 5)
	assert.False(t, exp.Truncated)

	assert.Equal(t, anchor, exp.Occurrences[0])
	for i := 1; i < len(exp.Occurrences); i++ {
		assert.Equal(t, exp.Occurrences[i-1].Start.AddDate(0, 0, 7), exp.Occurrences[i].Start)
		assert.Equal(t, 30*time.Minute, exp.Occurrences[i].Duration())
	}
}

func TestExpand_BiWeekly(t *testing.T) {
	anchor := mustWindow(t,
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
	)

	exp := scheduling.Expand(anchor, domain.RecurrenceSpec{
		Frequency: domain.FrequencyBiWeekly,
		EndDate:   time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
	})

	require.Len(t, exp.Occurrences, 4)
	assert.Equal(t, time.Date(2024, 2, 12, 10, 0, 0, 0, time.UTC), exp.Occurrences[3].Start,
		"end date is inclusive")
}

func TestExpand_MonthlyShortMonthArithmetic(t *testing.T) {
	// 31 января + 1 месяц нормализуется в 2 марта (високосный 2024):
	// стандартная календарная арифметика сохраняется, без подгонки к концу месяца
	anchor := mustWindow(t,
		time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 9, 45, 0, 0, time.UTC),
	)

	exp := scheduling.Expand(anchor, domain.RecurrenceSpec{
		Frequency: domain.FrequencyMonthly,
		EndDate:   time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
	})

	require.Len(t, exp.Occurrences, 3)
	assert.Equal(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), exp.Occurrences[1].Start)
	assert.Equal(t, time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), exp.Occurrences[2].Start)
}

func TestExpand_CappedAt52(t *testing.T) {
	anchor := mustWindow(t,
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
	)

	// Еженедельно до 2030 года - далеко за пределом в 52 повторения
	exp := scheduling.Expand(anchor, domain.RecurrenceSpec{
		Frequency: domain.FrequencyWeekly,
		EndDate:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Len(t, exp.Occurrences, domain.MaxRecurrenceOccurrences)
	assert.True(t, exp.Truncated, "hitting the cap before the end date must be flagged")
}

func TestExpand_AnchorPastEndDate(t *testing.T) {
	anchor := mustWindow(t,
		time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC),
	)

	exp := scheduling.Expand(anchor, domain.RecurrenceSpec{
		Frequency: domain.FrequencyWeekly,
		EndDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.Empty(t, exp.Occurrences)
	assert.False(t, exp.Truncated)
}

func TestExpand_AnchorOnEndDate(t *testing.T) {
	// Якорь в сам конечный день: одна запись, дата включительна
	anchor := mustWindow(t,
		time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC),
	)

	exp := scheduling.Expand(anchor, domain.RecurrenceSpec{
		Frequency: domain.FrequencyWeekly,
		EndDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})

	require.Len(t, exp.Occurrences, 1)
	assert.Equal(t, anchor, exp.Occurrences[0])
}
