package model

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern     = regexp.MustCompile(`^\+?[0-9][0-9\-\s().]{6,19}$`)
	stateCodePattern = regexp.MustCompile(`^[A-Za-z]{2,3}$`)
	zipPattern       = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

// RegisterValidations installs the custom binding validators used by
// the request models. Call once at startup.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine")
	}

	validations := map[string]validator.Func{
		"phone": func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		},
		"state_code": func(fl validator.FieldLevel) bool {
			return stateCodePattern.MatchString(fl.Field().String())
		},
		"zip": func(fl validator.FieldLevel) bool {
			return zipPattern.MatchString(fl.Field().String())
		},
	}

	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validation: %w", tag, err)
		}
	}
	return nil
}
