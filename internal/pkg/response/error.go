package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code and the
// machine-readable code. Anything else becomes a 500 INTERNAL so clients can
// distinguish "request was invalid" from "try again later".
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, ErrorResponse{Code: appErr.Code, Error: appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:  apperror.CodeInternal,
		Error: "internal server error",
	})
}
