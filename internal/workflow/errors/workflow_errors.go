package workflowerrors

import (
	"net/http"

	"go-leaveflow/internal/shared/apperror"
)

var (
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requester can modify this leave request",
		http.StatusForbidden,
	)
	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"leave request can no longer be modified by the requester",
		http.StatusBadRequest,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidTransition,
		"leave request is not in a stage this actor can review",
		http.StatusBadRequest,
	)
	ErrUnknownAction = apperror.New(
		apperror.CodeInvalidInput,
		"unknown review action",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required when rejecting at this stage",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must be on or after start_date",
		http.StatusBadRequest,
	)
	ErrStartDateInPast = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be today or later",
		http.StatusBadRequest,
	)
	ErrLeaveTypeRequired = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type is required",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required",
		http.StatusBadRequest,
	)
)
