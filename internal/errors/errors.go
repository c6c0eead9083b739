package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type ErrorCode string

const (
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeSchema          ErrorCode = "SCHEMA_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeBadRequest      ErrorCode = "BAD_REQUEST"
	CodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeRateLimit       ErrorCode = "RATE_LIMIT_EXCEEDED"
)

var statusByCode = map[ErrorCode]int{
	CodeBadRequest:      http.StatusBadRequest,
	CodeValidation:      http.StatusUnprocessableEntity,
	CodeSchema:          http.StatusUnprocessableEntity,
	CodeNotFound:        http.StatusNotFound,
	CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	CodeRateLimit:       http.StatusTooManyRequests,
}

// AppError is the error body every JSON endpoint returns. Cause is logged,
// never serialised.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return Wrap(nil, code, message)
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
		Cause:      err,
		Timestamp:  time.Now().UTC(),
	}
}

func Internal(message string) *AppError { return New(CodeInternal, message) }
func InternalWrap(err error, message string) *AppError { return Wrap(err, CodeInternal, message) }
func ValidationWrap(err error, message string) *AppError { return Wrap(err, CodeValidation, message) }
func NotFound(message string) *AppError { return New(CodeNotFound, message) }
func BadRequest(message string) *AppError { return New(CodeBadRequest, message) }
func BadRequestWrap(err error, message string) *AppError { return Wrap(err, CodeBadRequest, message) }
func PayloadTooLarge(message string) *AppError { return New(CodePayloadTooLarge, message) }
func RateLimit(message string) *AppError { return New(CodeRateLimit, message) }

// SchemaWrap marks a dataset rejected because required columns are missing.
func SchemaWrap(err error, message string) *AppError {
	return Wrap(err, CodeSchema, message)
}

// As converts any error into an AppError, treating unknown errors as internal.
func As(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return InternalWrap(err, "An unexpected error occurred")
}

type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

type SuccessResponse struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	appErr := As(err)
	appErr.RequestID = requestID

	level := slog.LevelWarn
	if appErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, "request failed",
		"error_code", appErr.Code,
		"error_message", appErr.Message,
		"status_code", appErr.StatusCode,
		"request_id", requestID,
		"cause", appErr.Cause,
	)

	if encodeErr := writeJSON(w, appErr.StatusCode, ErrorResponse{Error: appErr}); encodeErr != nil {
		logger.Error("failed to encode error response",
			"encode_error", encodeErr,
			"original_error", err,
			"request_id", requestID,
		)
	}
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessWithHeaders(w, data, nil)
}

// WriteSuccessWithHeaders encodes data before touching the response, so an
// unencodable payload becomes a 500 envelope rather than an empty 200.
func WriteSuccessWithHeaders(w http.ResponseWriter, data any, headers map[string]string) {
	body, err := encode(SuccessResponse{Data: data, Success: true})
	if err != nil {
		WriteError(w, slog.Default(), InternalWrap(err, "failed to encode response"), "")
		return
	}

	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := encode(v)
	if err != nil {
		http.Error(w, `{"success":false}`, http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
