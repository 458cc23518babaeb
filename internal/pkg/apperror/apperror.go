package apperror

// Stable machine-readable error codes. Transports and clients branch on these,
// never on message text.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeSlotBlocked     = "SLOT_BLOCKED"
	CodePastSlot        = "PAST_SLOT"
	CodeAlreadyBooked   = "ALREADY_BOOKED"
	CodeOverlapConflict = "OVERLAP_CONFLICT"
	CodeCapacityFull    = "CAPACITY_FULL"
	CodeNotAllowed      = "NOT_ALLOWED"
	CodeGracePeriod     = "GRACE_PERIOD"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInternal        = "INTERNAL"
)

// AppError is a custom error type carrying an HTTP status code, a stable
// machine-readable code and a user-facing message.
type AppError struct {
	Status  int    // HTTP status code (e.g., 400, 404)
	Code    string // Stable machine-readable code (e.g., SLOT_BLOCKED)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code, so a wrapped copy of a sentinel still
// compares equal to it via errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError with a status code, error code and message.
func New(status int, code, message string) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
