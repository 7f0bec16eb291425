package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition is returned when a stage change is not allowed for the
	// actor's role or would move the pipeline backwards
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrProjectLocked is returned when a project in a locked stage is moved manually
	ErrProjectLocked = errors.New("project is locked")

	// ErrWrongStage is returned when a stage-scoped update targets a project
	// that is not in the matching stage
	ErrWrongStage = errors.New("project is not in the required stage")

	// ErrOverpayment is returned when a payment would exceed the invoice amount
	ErrOverpayment = errors.New("payment exceeds pending amount")

	// ErrInvoiceNotSet is returned when a payment is recorded before the invoice amount
	ErrInvoiceNotSet = errors.New("invoice amount is not set")

	// ErrDuplicateContact is returned when a lead reuses an existing contact number
	ErrDuplicateContact = errors.New("contact number already in use")

	// ErrInvalidRole is returned when an invalid role type is provided
	ErrInvalidRole = errors.New("invalid role type")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserInactive is returned when a deactivated user attempts to log in
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidOtp is returned when a login code is wrong, expired, or consumed
	ErrInvalidOtp = errors.New("invalid or expired otp")
)
