package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sahilchouksey/taskboard-api/model"
)

// DateLayout is the accepted wire format for calendar dates
const DateLayout = "2006-01-02"

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the task rules registered
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json/query name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return model.TaskStatus(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("date_ymd", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	// bcrypt only reads the first 72 bytes, while max counts runes
	_ = v.RegisterValidation("max_bytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fields
	}

	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("The %s field is required.", field)
		case "email":
			fields[field] = fmt.Sprintf("The %s field must be a valid email address.", field)
		case "min":
			fields[field] = fmt.Sprintf("The %s field must be at least %s characters.", field, e.Param())
		case "max":
			fields[field] = fmt.Sprintf("The %s field must not be greater than %s characters.", field, e.Param())
		case "max_bytes":
			fields[field] = fmt.Sprintf("The %s field must not be greater than %s bytes.", field, e.Param())
		case "oneof":
			fields[field] = fmt.Sprintf("The %s field must be one of: %s.", field, e.Param())
		case "task_status":
			fields[field] = fmt.Sprintf("The %s field must be one of: pending, in_progress, done.", field)
		case "date_ymd":
			fields[field] = fmt.Sprintf("The %s field must be a date in YYYY-MM-DD format.", field)
		default:
			fields[field] = fmt.Sprintf("The %s field is invalid.", field)
		}
	}

	return fields
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
