// Package services defines the business logic for the claims workflow and
// document retrieval. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrClaimNotFound indicates that the requested claim does not exist.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrDocumentNotFound indicates that the requested document does not
	// exist or its bytes are missing from the blob store.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidStatus is returned when a transition names a target status
	// outside {approved, rejected}.
	ErrInvalidStatus = errors.New("status must be approved or rejected")

	// ErrAlreadyProcessed is returned when a transition is requested on a
	// claim that has already left pending. It is a conflict, not an
	// idempotent success: re-approving an approved claim is a caller error
	// the dashboard surfaces as "already processed".
	ErrAlreadyProcessed = errors.New("claim already processed")

	// ErrInvalidAmount is returned when a claim is created with a negative
	// amount.
	ErrInvalidAmount = errors.New("amount must be non-negative")

	// ErrMissingFields is returned when a claim is created without the
	// required employee or type attributes.
	ErrMissingFields = errors.New("type, employee_id and employee_name are required")
)
