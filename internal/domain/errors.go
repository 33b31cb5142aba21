package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrIdentityNotFound = &AppError{
		Code:       "IDENTITY_NOT_FOUND",
		Message:    "No identity registered with this ID",
		StatusCode: 404,
	}

	ErrDuplicateKey = &AppError{
		Code:       "DUPLICATE_KEY",
		Message:    "An identity is already registered with this roll number",
		StatusCode: 409,
	}

	ErrInvalidAction = &AppError{
		Code:       "INVALID_ACTION",
		Message:    "Action must be \"enter\" or \"leave\"",
		StatusCode: 422,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, please provide image with single face",
		StatusCode: 422,
	}

	ErrCameraUnavailable = &AppError{
		Code:       "CAMERA_UNAVAILABLE",
		Message:    "Could not open the camera",
		StatusCode: 503,
	}

	ErrSessionAlreadyRunning = &AppError{
		Code:       "SESSION_ALREADY_RUNNING",
		Message:    "A recognition session is already running",
		StatusCode: 409,
	}

	ErrNoSession = &AppError{
		Code:       "NO_SESSION",
		Message:    "No recognition session is running",
		StatusCode: 409,
	}

	ErrIdentityRecognized = &AppError{
		Code:       "IDENTITY_RECOGNIZED",
		Message:    "Face already recognized, voice fallback not needed",
		StatusCode: 409,
	}

	ErrVoiceUnavailable = &AppError{
		Code:       "VOICE_UNAVAILABLE",
		Message:    "Speech service is not configured",
		StatusCode: 503,
	}

	ErrVoiceFailed = &AppError{
		Code:       "VOICE_FAILED",
		Message:    "Voice identification failed after all attempts",
		StatusCode: 401,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}
)
