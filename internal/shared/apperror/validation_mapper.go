package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	// 1. Ganti underscore dengan spasi (start_date -> start date)
	s = strings.ReplaceAll(s, "_", " ")

	// 2. Ubah jadi Title Case (start date -> Start Date)
	caser := cases.Title(language.English)
	return caser.String(s)
}

func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		// Ambil error pertama
		e := errs[0]

		// e.Field() sudah berupa nama json karena RegisterTagNameFunc di Init()
		humanReadableField := formatFieldName(e.Field())

		switch e.Tag() {
		case "required":
			return RequiredField(humanReadableField)
		default:
			return InvalidField(humanReadableField)
		}
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
