package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/daily-real/internal/apperror"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

var lastFourDigits = regexp.MustCompile(`^\d{4}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients see "credit_details.due_day".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("lastfour", func(fl validator.FieldLevel) bool {
		return lastFourDigits.MatchString(fl.Field().String())
	})

	return v
}

// decodeJSON reads one JSON value from the body into dst and checks its
// validate tags. Every problem is returned as an apperror.ErrValidation
// carrying a field list.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.InvalidFields([]apperror.FieldError{decodeFieldError(err)})
	}
	return validateStruct(dst)
}

func decodeFieldError(err error) apperror.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		kind := "string"
		typ := "string_type"
		switch typeErr.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			kind, typ = "integer", "int_type"
		case reflect.Struct, reflect.Map:
			kind, typ = "object", "model_type"
		}
		return apperror.FieldError{
			Field:   typeErr.Field,
			Message: "Input should be a valid " + kind,
			Type:    typ,
		}
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.FieldError{Field: "body", Message: "Request body too large", Type: "too_long"}
	}

	if errors.Is(err, io.EOF) {
		return apperror.FieldError{Field: "body", Message: "Field required", Type: "missing"}
	}

	return apperror.FieldError{Field: "body", Message: "JSON decode error", Type: "json_invalid"}
}

// validateStruct runs the validate tags on v.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("handler: validating request: %w", err)
	}

	details := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldError(fe))
	}
	return apperror.InvalidFields(details)
}

// fieldError renders one validator failure with a client-facing message.
func fieldError(fe validator.FieldError) apperror.FieldError {
	out := apperror.FieldError{Field: fieldPath(fe.Namespace())}

	numeric := isNumeric(fe.Kind())
	switch fe.Tag() {
	case "required":
		out.Message, out.Type = "Field required", "missing"
	case "max":
		if numeric {
			out.Message, out.Type = "Input should be less than or equal to "+fe.Param(), "less_than_equal"
		} else {
			out.Message, out.Type = fmt.Sprintf("String should have at most %s characters", fe.Param()), "string_too_long"
		}
	case "min":
		if numeric {
			out.Message, out.Type = "Input should be greater than or equal to "+fe.Param(), "greater_than_equal"
		} else {
			out.Message, out.Type = fmt.Sprintf("String should have at least %s characters", fe.Param()), "string_too_short"
		}
	case "email":
		out.Message, out.Type = "value is not a valid email address", "value_error"
	case "oneof":
		out.Message, out.Type = "Input should be "+quoteChoices(fe.Param()), "enum"
	case "lastfour":
		out.Message, out.Type = `String should match pattern '^\d{4}$'`, "string_pattern_mismatch"
	default:
		out.Message, out.Type = fe.Error(), "value_error"
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// quoteChoices turns "A B C" into "'A', 'B' or 'C'".
func quoteChoices(param string) string {
	choices := strings.Fields(param)
	for i, c := range choices {
		choices[i] = "'" + c + "'"
	}
	if len(choices) < 2 {
		return strings.Join(choices, "")
	}
	return strings.Join(choices[:len(choices)-1], ", ") + " or " + choices[len(choices)-1]
}
