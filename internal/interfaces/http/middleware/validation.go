package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var e164Regex = regexp.MustCompile(`^\+\d{10,15}$`)

// RegisterValidators installs the custom binding validations used by the
// request DTOs. Call once during engine setup.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("e164phone", func(fl validator.FieldLevel) bool {
		return e164Regex.MatchString(fl.Field().String())
	})
}
