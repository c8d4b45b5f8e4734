package leaveerrors

import (
	"net/http"

	"go-leaveflow/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidStageFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid stage filter",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrExportFailed = apperror.New(
		apperror.CodeInternalError,
		"failed to build leave export",
		http.StatusInternalServerError,
	)
)
