// Package validation wires go-playground/validator into gin's binding engine and
// turns its errors into field-keyed messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the key used for errors not tied to a single field.
const NonFieldErrors = "non_field_errors"

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

	once     sync.Once
	validate *validator.Validate
)

// Engine returns the shared validator, registering custom tags on first use.
// When gin's default validator is in use the same instance backs ShouldBind.
func Engine() *validator.Validate {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validate = v
		} else {
			validate = validator.New()
		}
		validate.RegisterTagNameFunc(jsonName)
		_ = validate.RegisterValidation("notblank", notBlank)
		_ = validate.RegisterValidation("username", validUsername)
	})
	return validate
}

// Var validates a single value against a tag list such as "required,email".
func Var(value interface{}, tag string) error {
	return Engine().Var(value, tag)
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Ptr:
		if field.IsNil() {
			return true
		}
		if field.Elem().Kind() == reflect.String {
			return strings.TrimSpace(field.Elem().String()) != ""
		}
		return true
	default:
		return true
	}
}

func validUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// FieldErrors converts a binding error into messages keyed by JSON field name.
// Errors it does not recognise are reported under NonFieldErrors.
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			out[fe.Field()] = append(out[fe.Field()], Message(fe))
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = NonFieldErrors
		}
		out[field] = append(out[field], typeMessage(typeErr.Type))
	case errors.As(err, &syntaxErr):
		out[NonFieldErrors] = []string{fmt.Sprintf("JSON parse error - %s", syntaxErr.Error())}
	default:
		out[NonFieldErrors] = []string{err.Error()}
	}
	return out
}

// Message renders a single validator failure.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "notblank":
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "max":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}

func typeMessage(t reflect.Type) string {
	if t != nil && isNumber(t.Kind()) {
		return "A valid integer is required."
	}
	if t != nil && t.Kind() == reflect.String {
		return "Not a valid string."
	}
	return "Invalid value."
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
