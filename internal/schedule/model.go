package schedule

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/apperror"
)

var (
	ErrRuleNotFound     = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "recurring rule not found")
	ErrBlackoutNotFound = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "blackout not found")
	ErrInvalidDay       = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "day_of_week must be between 1 (Monday) and 7 (Sunday)")
	ErrInvalidHours     = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "end_hour must be greater than start_hour, both within 0-24")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "start time must be before end time")
	ErrEmptyLabel       = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "label cannot be empty")
)

// RecurringRule is a standing weekly block window for a resource. Slots fully
// inside the window on the matching weekday are not bookable.
type RecurringRule struct {
	ID         string
	ResourceID string
	DayOfWeek  int // ISO weekday: 1 = Monday ... 7 = Sunday
	StartHour  int // 0-23
	EndHour    int // 1-24, exclusive end
	Label      string
	CreatedBy  string
	CreatedAt  time.Time
}

// Blackout is a one-off block window for a resource, independent of weekly
// recurrence.
type Blackout struct {
	ID         string
	ResourceID string
	Start      time.Time
	End        time.Time
	Reason     string
	CreatedBy  string
	CreatedAt  time.Time
}
