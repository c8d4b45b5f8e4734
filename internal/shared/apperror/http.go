package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP maps any error to the response shape used by handlers. Errors that are
// not AppErrors are reported as a generic internal error.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return HTTPError{
			Status:  status,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}
