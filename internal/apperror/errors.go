package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is implemented by every error the API knows how to translate into a
// response. Anything else is treated as an internal failure.
type AppError interface {
	Error() string
	Category() string
	HTTPStatus() int
	Unwrap() error
}

// ValidationError is a malformed or missing input.
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e *ValidationError) Error() string    { return e.Msg }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NewFieldValidationError carries per-field messages next to the summary.
func NewFieldValidationError(msg string, fields map[string]string) AppError {
	return &ValidationError{Msg: msg, Fields: fields}
}

// InvalidCredentialsError is returned by login regardless of which check failed.
type InvalidCredentialsError struct{}

func (e *InvalidCredentialsError) Error() string    { return "Invalid credentials" }
func (e *InvalidCredentialsError) Category() string { return "INVALID_CREDENTIALS" }
func (e *InvalidCredentialsError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *InvalidCredentialsError) Unwrap() error    { return nil }

func NewInvalidCredentialsError() AppError {
	return &InvalidCredentialsError{}
}

type UnauthenticatedError struct {
	Msg string
	Err error
}

func (e *UnauthenticatedError) Error() string    { return e.Msg }
func (e *UnauthenticatedError) Category() string { return "UNAUTHENTICATED" }
func (e *UnauthenticatedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthenticatedError) Unwrap() error    { return e.Err }

func NewUnauthenticatedError(msg string, err error) AppError {
	return &UnauthenticatedError{Msg: msg, Err: err}
}

type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return e.Msg }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden }
func (e *ForbiddenError) Unwrap() error    { return nil }

func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return e.Msg }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// InvalidTransitionError is an illegal booking status change, or any edit of
// a booking that already reached a terminal status.
type InvalidTransitionError struct {
	From, To string
	Msg      string
}

func (e *InvalidTransitionError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("Cannot change booking status from %s to %s", e.From, e.To)
}
func (e *InvalidTransitionError) Category() string { return "INVALID_TRANSITION" }
func (e *InvalidTransitionError) HTTPStatus() int  { return http.StatusConflict }
func (e *InvalidTransitionError) Unwrap() error    { return nil }

func NewInvalidTransitionError(from, to string) AppError {
	return &InvalidTransitionError{From: from, To: to}
}

// NewClosedBookingError rejects a field edit on a booking in a terminal status.
func NewClosedBookingError(status string) AppError {
	return &InvalidTransitionError{
		From: status,
		To:   status,
		Msg:  fmt.Sprintf("Booking is %s and can no longer be modified", status),
	}
}

// ConflictError is a lost optimistic-concurrency race.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return e.Msg }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// InternalError wraps an unexpected failure. Its message is never sent to clients.
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

const genericMessage = "Something went wrong, please try again later"

// MapToHTTPStatus translates err into a status code, a category and a message
// safe to show to the caller.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus() >= http.StatusInternalServerError {
			return appErr.HTTPStatus(), appErr.Category(), genericMessage
		}
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}
	return http.StatusInternalServerError, "UNKNOWN_ERROR", genericMessage
}

// Is reports whether err is an AppError of the given category.
func Is(err error, category string) bool {
	var appErr AppError
	return errors.As(err, &appErr) && appErr.Category() == category
}
