package apperr

import (
	"errors"
	"net/http"
)

// AppError carries a machine-readable code, a user-facing message and the
// HTTP status the API layer should answer with.
type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	status  int
}

func New(status int, code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: status}
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return e.Code
	case e.Err != nil:
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e == nil || e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

func BadRequest(code, msg string, err error) *AppError {
	return New(http.StatusBadRequest, code, msg, err)
}

func NotFound(code, msg string, err error) *AppError {
	return New(http.StatusNotFound, code, msg, err)
}

func Conflict(code, msg string, err error) *AppError {
	return New(http.StatusConflict, code, msg, err)
}

func Unauthorized(code, msg string, err error) *AppError {
	return New(http.StatusUnauthorized, code, msg, err)
}

func Forbidden(code, msg string, err error) *AppError {
	return New(http.StatusForbidden, code, msg, err)
}

func Unavailable(code, msg string, err error) *AppError {
	return New(http.StatusServiceUnavailable, code, msg, err)
}

func Internal(code, msg string, err error) *AppError {
	return New(http.StatusInternalServerError, code, msg, err)
}

// FromError unwraps err into an AppError, defaulting to a 500.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
}
