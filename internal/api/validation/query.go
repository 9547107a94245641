package validation

import (
	"fmt"
	"github.com/skybi/deeplink-proxy/internal/api/schema"
	"net/http"
	"strconv"
	"strings"
)

var (
	errQueryParameterMissing = func(name string) *schema.Error {
		return &schema.Error{
			Type:    "validation.query.parameter.missing",
			Message: fmt.Sprintf("The query parameter '%s' is required but was not present in the request.", name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
	errQueryParameterInvalidType = func(name, value, expectedType string) *schema.Error {
		return &schema.Error{
			Type:    "validation.query.parameter.invalidType",
			Message: fmt.Sprintf("The query parameter '%s' ('%s') could not be assigned to the required type (%s).", name, value, expectedType),
			Details: map[string]any{
				"parameter":     name,
				"value":         value,
				"expected_type": expectedType,
			},
		}
	}
	errQueryParameterNumberOutOfRange = func(name string, value, min, max int) *schema.Error {
		comparison := ""
		if value < min {
			comparison = fmt.Sprintf("%d [given] < %d [min]", value, min)
		} else if value > max {
			comparison = fmt.Sprintf("%d [given] > %d [max]", value, max)
		}

		return &schema.Error{
			Type:    "validation.query.parameter.number.outOfRange",
			Message: fmt.Sprintf("The query parameter '%s' is out of the required range (%s).", name, comparison),
			Details: map[string]any{
				"parameter": name,
				"value":     value,
				"min":       min,
				"max":       max,
			},
		}
	}
	errQueryParameterTooLong = func(name string, length, max int) *schema.Error {
		return &schema.Error{
			Type:    "validation.query.parameter.string.tooLong",
			Message: fmt.Sprintf("The query parameter '%s' exceeds the maximum length of %d characters.", name, max),
			Details: map[string]any{
				"parameter": name,
				"length":    length,
				"max":       max,
			},
		}
	}
)

// QueryNumber extracts and validates an integer value out of the query parameters of the given request
func QueryNumber(request *http.Request, key string, required bool, def, min, max int) (int, *schema.Error) {
	value := strings.TrimSpace(request.URL.Query().Get(key))
	if value == "" {
		if required {
			return 0, errQueryParameterMissing(key)
		}
		return def, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errQueryParameterInvalidType(key, value, "number")
	}
	if parsed < min || parsed > max {
		return 0, errQueryParameterNumberOutOfRange(key, parsed, min, max)
	}
	return parsed, nil
}

// QueryString extracts a trimmed string value out of the query parameters of the given request.
// maxLength <= 0 disables the length check.
func QueryString(request *http.Request, key string, def string, maxLength int) (string, *schema.Error) {
	value := strings.TrimSpace(request.URL.Query().Get(key))
	if value == "" {
		return def, nil
	}
	if maxLength > 0 && len(value) > maxLength {
		return "", errQueryParameterTooLong(key, len(value), maxLength)
	}
	return value, nil
}
