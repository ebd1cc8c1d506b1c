package domain

import (
	"fmt"
	"time"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrSessionNotActive(state SessionState) *AppError {
	return &AppError{
		Code:    "SESSION_NOT_ACTIVE",
		Message: fmt.Sprintf("session is not active (state: %s)", state),
		Status:  409,
		Details: map[string]any{"state": string(state)},
	}
}

// ErrRateLimited carries the remaining wait before the next purchase is allowed.
func ErrRateLimited(retryAfter time.Duration) *AppError {
	return &AppError{
		Code:    "PURCHASE_RATE_LIMIT",
		Message: "purchase attempts are throttled",
		Status:  429,
		Details: map[string]any{"retryAfterMs": retryAfter.Milliseconds()},
	}
}

func ErrNoPendingEncounter() *AppError {
	return &AppError{Code: "NO_PENDING_ENCOUNTER", Message: "there is no encounter to resolve", Status: 409}
}

func ErrInvalidEncounterOption(optionID string) *AppError {
	return &AppError{
		Code:    "ENCOUNTER_OPTION_INVALID",
		Message: "encounter option not recognised",
		Status:  404,
		Details: map[string]any{"optionId": optionID},
	}
}

func ErrEncounterOptionOnCooldown(eventID, optionID string) *AppError {
	return &AppError{
		Code:    "ENCOUNTER_OPTION_COOLDOWN",
		Message: "encounter option is on cooldown",
		Status:  409,
		Details: map[string]any{"eventId": eventID, "optionId": optionID},
	}
}

// ErrInsufficientFunds carries balance and price so the caller can render the
// shortfall without re-deriving it.
func ErrInsufficientFunds(balance, price int64) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient balance to purchase ticket",
		Status:  400,
		Details: map[string]any{"balance": balance, "price": price},
	}
}

func ErrSessionLimit(retryAfter time.Duration) *AppError {
	return &AppError{
		Code:    "SESSION_LIMIT",
		Message: "daily session limit reached",
		Status:  429,
		Details: map[string]any{"retryAfterMs": retryAfter.Milliseconds()},
	}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
