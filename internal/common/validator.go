package common

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

const validationMessage = "Validation error"

// timestampLayouts lists the accepted wire formats for dates, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FieldIssue is one field-level validation problem.
type FieldIssue struct {
	Path    []string `json:"path"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

// ValidationFailure is the 400 response body.
type ValidationFailure struct {
	Message string       `json:"message"`
	Errors  []FieldIssue `json:"errors"`
}

// NewValidationError wraps issues into an echo error rendered as {message, errors}.
func NewValidationError(issues ...FieldIssue) *echo.HTTPError {
	if issues == nil {
		issues = []FieldIssue{}
	}
	return echo.NewHTTPError(http.StatusBadRequest, ValidationFailure{
		Message: validationMessage,
		Errors:  issues,
	})
}

// ParseTimestamp accepts RFC 3339 timestamps and plain dates (UTC midnight).
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

type GenericEchoValidator struct {
	Validator *validator.Validate
	once      sync.Once
}

func (gv *GenericEchoValidator) setup() {
	if gv.Validator == nil {
		gv.Validator = validator.New()
	}
	gv.Validator.RegisterTagNameFunc(jsonFieldName)
	if err := gv.Validator.RegisterValidation("timestamp", isTimestamp); err != nil {
		panic(fmt.Sprintf("failed to register timestamp validation: %v", err))
	}
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	gv.once.Do(gv.setup)
	err := gv.Validator.Struct(i)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	issues := make([]FieldIssue, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		issues = append(issues, toFieldIssue(fe))
	}
	return NewValidationError(issues...)
}

func toFieldIssue(fe validator.FieldError) FieldIssue {
	field := fe.Field()
	issue := FieldIssue{Path: []string{field}, Code: fe.Tag()}
	switch fe.Tag() {
	case "required":
		issue.Message = fmt.Sprintf("%s is required", field)
	case "oneof":
		issue.Code = "invalid_enum_value"
		issue.Message = fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "max":
		issue.Code = "too_big"
		issue.Message = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		issue.Code = "too_small"
		issue.Message = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "datauri":
		issue.Code = "invalid_string"
		issue.Message = fmt.Sprintf("%s must be a data URI", field)
	case "timestamp":
		issue.Code = "invalid_date"
		issue.Message = fmt.Sprintf("%s must be an RFC 3339 timestamp or YYYY-MM-DD date", field)
	default:
		issue.Message = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return issue
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func isTimestamp(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := ParseTimestamp(fl.Field().String())
	return err == nil
}
