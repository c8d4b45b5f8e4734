package apperror

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

func Init() {
	// Daftarkan fungsi kustom ke validator bawaan Gin
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidations(v)
	}
}

// RegisterValidations installs the json tag name func and the custom "isodate"
// tag on v. Split from Init so tests can use a standalone validator.
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		// Mengambil nama dari tag json (contoh: `json:"start_date"`)
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(DateLayout, s)
		return err == nil
	})
}
