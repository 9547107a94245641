package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// maxBodySize limits the size of request bodies accepted by UnmarshalBody
const maxBodySize = 1 << 20

var (
	errRequestBodyInvalidJSON = func(err string) *Error {
		return &Error{
			Type:    "validation.requestBody.invalidJSON",
			Message: "Request body is not a valid JSON input.",
			Details: map[string]any{
				"error": err,
			},
		}
	}
	errRequestBodyParameterInvalidType = func(name, expectedType string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.invalidType",
			Message: fmt.Sprintf("The request body parameter '%s' could not be assigned to the required type (%s).", name, expectedType),
			Details: map[string]any{
				"parameter":     name,
				"expected_type": expectedType,
			},
		}
	}
	errRequestBodyParameterMissing = func(name string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.missing",
			Message: fmt.Sprintf("The request body parameter '%s' is required but was not present in the request.", name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
	errRequestBodyParameterOutOfRange = func(name, kind string, value, min, max int64) *Error {
		comparison := ""
		if value < min {
			comparison = fmt.Sprintf("%d [given] < %d [min]", value, min)
		} else if value > max {
			comparison = fmt.Sprintf("%d [given] > %d [max]", value, max)
		}

		return &Error{
			Type:    "validation.requestBody.parameter." + kind + ".outOfRange",
			Message: fmt.Sprintf("The request body parameter '%s' is out of the required range (%s).", name, comparison),
			Details: map[string]any{
				"parameter": name,
				"value":     value,
				"min":       min,
				"max":       max,
			},
		}
	}
)

// UnmarshalBody parses and decodes a JSON request body and performs validations on it.
// The 'required' tag rejects nil pointers and empty slices. The 'min' and 'max' tags bound integers and, on slices
// and strings, their length.
func UnmarshalBody[T any](request *http.Request) (*T, []*Error, error) {
	body, err := io.ReadAll(io.LimitReader(request.Body, maxBodySize))
	if err != nil {
		return nil, nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	target := new(T)
	if err := json.Unmarshal(body, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, []*Error{errRequestBodyParameterInvalidType(typeErr.Field, typeErr.Type.String())}, nil
		}
		return nil, []*Error{errRequestBodyInvalidJSON(err.Error())}, nil
	}

	errs, err := validateStruct("", target)
	if err != nil {
		return nil, nil, err
	}
	return target, errs, nil
}

func validateStruct(fieldPrefix string, val any) ([]*Error, error) {
	ref := reflect.ValueOf(val)
	if ref.Kind() == reflect.Pointer {
		ref = ref.Elem()
	}
	if ref.Kind() != reflect.Struct {
		return nil, errors.New("illegal call to validateStruct with non-struct parameter")
	}
	return validateFields(fieldPrefix, ref), nil
}

func validateFields(fieldPrefix string, ref reflect.Value) []*Error {
	typ := ref.Type()

	var errs []*Error
	for i := 0; i < typ.NumField(); i++ {
		fieldDef := typ.Field(i)
		field := ref.Field(i)

		// Embedded structs contribute their fields at the same level
		if fieldDef.Anonymous && field.Kind() == reflect.Struct {
			errs = append(errs, validateFields(fieldPrefix, field)...)
			continue
		}
		if !fieldDef.IsExported() {
			continue
		}

		required := strings.EqualFold(fieldDef.Tag.Get("required"), "true")
		min := parseBound(fieldDef.Tag.Get("min"), math.MinInt64)
		max := parseBound(fieldDef.Tag.Get("max"), math.MaxInt64)
		name := fieldPrefix + getFieldName(fieldDef)

		switch field.Kind() {
		case reflect.Pointer:
			if field.IsNil() {
				if required {
					errs = append(errs, errRequestBodyParameterMissing(name))
				}
				continue
			}
			field = field.Elem()
		case reflect.Slice:
			if field.Len() == 0 {
				if required {
					errs = append(errs, errRequestBodyParameterMissing(name))
				}
				continue
			}
		}

		switch {
		case field.CanInt():
			if value := field.Int(); value < min || value > max {
				errs = append(errs, errRequestBodyParameterOutOfRange(name, "number", value, min, max))
			}
		case field.CanUint():
			if value := int64(field.Uint()); value < min || value > max {
				errs = append(errs, errRequestBodyParameterOutOfRange(name, "number", value, min, max))
			}
		case field.Kind() == reflect.Slice, field.Kind() == reflect.String:
			if length := int64(field.Len()); length < min || length > max {
				errs = append(errs, errRequestBodyParameterOutOfRange(name, "length", length, min, max))
			}
		case field.Kind() == reflect.Struct:
			errs = append(errs, validateFields(name+".", field)...)
		}
	}

	return errs
}

func parseBound(raw string, def int64) int64 {
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getFieldName(def reflect.StructField) string {
	jsonVal, ok := def.Tag.Lookup("json")
	if !ok || jsonVal == "-" {
		return def.Name
	}
	name, _, _ := strings.Cut(jsonVal, ",")
	return name
}
