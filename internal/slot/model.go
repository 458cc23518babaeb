package slot

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/apperror"
)

var ErrNotFound = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "slot not found")

// Slot is one discrete bookable window for one resource. At most one slot
// exists per (resource, start, end). The blocked flag is derived from
// recurring rules and blackouts; booking actions never mutate it.
type Slot struct {
	ID           string
	ResourceID   string
	Start        time.Time
	End          time.Time
	Blocked      bool
	BlockedLabel *string
	CreatedAt    time.Time
}
