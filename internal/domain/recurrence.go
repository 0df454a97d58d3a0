package domain

import "time"

// RecurrenceFrequency represents how often a recurring series repeats
type RecurrenceFrequency string

const (
	FrequencyWeekly   RecurrenceFrequency = "weekly"
	FrequencyBiWeekly RecurrenceFrequency = "biweekly"
	FrequencyMonthly  RecurrenceFrequency = "monthly"
)

// IsValid returns true for a known frequency value
func (f RecurrenceFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Interval returns the calendar step of the frequency as (days, months)
func (f RecurrenceFrequency) Interval() (days int, months int) {
	switch f {
	case FrequencyWeekly:
		return 7, 0
	case FrequencyBiWeekly:
		return 14, 0
	case FrequencyMonthly:
		return 0, 1
	default:
		return 0, 0
	}
}

// RecurrenceSpec describes a recurring series request:
// repeat at Frequency until EndDate (inclusive)
type RecurrenceSpec struct {
	Frequency RecurrenceFrequency
	EndDate   time.Time // дата включительно, сравнение идет с концом этого дня
}
