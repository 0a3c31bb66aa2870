package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"quizzz-client/internal/submit"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their wire names so errors line up with the backend's
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkInput validates an input payload and converts violations into a
// submit.ValidationError keyed like the backend's form_errors.
func checkInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := &submit.FieldErrors{}
	for _, fieldErr := range verrs {
		fe.Add(fieldErr.Field(), fieldMessage(fieldErr))
	}
	return &submit.ValidationError{Fields: fe}
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fieldErr.Param())
	case "gtfield":
		return "Finish time must be after start time."
	case "gt":
		return "A valid value is required."
	default:
		return fmt.Sprintf("Invalid value (%s).", fieldErr.Tag())
	}
}
