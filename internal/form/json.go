package form

import (
	"bytes"
	"errors"
	"github.com/tidwall/gjson"
	"strings"
)

var (
	// ErrInvalidJSON is returned by FromJSON if the given body is not valid JSON
	ErrInvalidJSON = errors.New("request body is not valid JSON")

	// ErrNotAnObject is returned by FromJSON if the given body is valid JSON but not an object
	ErrNotAnObject = errors.New("request body is not a JSON object")
)

// FromJSON builds a request out of a JSON object, keeping the order in which the keys appear in the document.
// Null values are treated as absent. An empty body results in an empty request.
// Arrays are joined by commas and nested objects are kept as their raw JSON text.
func FromJSON(body []byte) (*Request, error) {
	request := New()
	if len(bytes.TrimSpace(body)) == 0 {
		return request, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil, ErrNotAnObject
	}

	parsed.ForEach(func(key, value gjson.Result) bool {
		request.setResult(key.String(), value)
		return true
	})
	return request, nil
}

func (request *Request) setResult(key string, value gjson.Result) {
	switch value.Type {
	case gjson.Null:
		request.put(field{key: key})
	case gjson.String:
		request.put(field{key: key, value: value.Str, present: true})
	case gjson.Number, gjson.True, gjson.False:
		request.put(field{key: key, value: value.Raw, present: true, literal: true})
	default:
		if value.IsArray() {
			request.put(field{key: key, value: joinArray(value), present: true})
			return
		}
		request.put(field{key: key, value: value.Raw, present: true})
	}
}

func joinArray(value gjson.Result) string {
	elements := value.Array()
	parts := make([]string, 0, len(elements))
	for _, element := range elements {
		switch element.Type {
		case gjson.Null:
			parts = append(parts, "")
		case gjson.String:
			parts = append(parts, element.Str)
		case gjson.JSON:
			if element.IsArray() {
				parts = append(parts, joinArray(element))
			} else {
				parts = append(parts, element.Raw)
			}
		default:
			parts = append(parts, element.Raw)
		}
	}
	return strings.Join(parts, ",")
}
