package form

import (
	"encoding/json"
	"fmt"
	"github.com/tidwall/sjson"
	"net/url"
	"strconv"
	"strings"
)

// Request represents a single outbound API call as an ordered set of form fields.
// Fields assigned a nil value are remembered (so re-assigning them keeps their position) but are never encoded.
type Request struct {
	fields []field
	index  map[string]int
}

type field struct {
	key     string
	value   string
	present bool

	// literal marks values that are JSON literals (numbers, booleans) rather than strings
	literal bool
}

// New creates a new empty request
func New() *Request {
	return &Request{
		index: make(map[string]int),
	}
}

// Set assigns a value to a field.
// Supported values are nil, strings, booleans, all integer and float types, json.Number, pointers to these and
// fmt.Stringer implementations. Nil values (including nil pointers) mark the field as absent.
// Re-assigning an existing field keeps its original position.
func (request *Request) Set(key string, value any) *Request {
	str, literal, present := stringify(value)
	request.put(field{
		key:     key,
		value:   str,
		present: present,
		literal: literal,
	})
	return request
}

// SetNonEmpty assigns a string value to a field only if it is not empty after trimming whitespace
func (request *Request) SetNonEmpty(key, value string) *Request {
	if strings.TrimSpace(value) == "" {
		return request
	}
	return request.Set(key, value)
}

// Get returns the encoded value of a field and whether it is present
func (request *Request) Get(key string) (string, bool) {
	i, ok := request.index[key]
	if !ok || !request.fields[i].present {
		return "", false
	}
	return request.fields[i].value, true
}

// Keys returns the keys of all present fields in insertion order
func (request *Request) Keys() []string {
	keys := make([]string, 0, len(request.fields))
	for _, f := range request.fields {
		if f.present {
			keys = append(keys, f.key)
		}
	}
	return keys
}

// Len returns the amount of present fields
func (request *Request) Len() int {
	n := 0
	for _, f := range request.fields {
		if f.present {
			n++
		}
	}
	return n
}

// Encode produces the application/x-www-form-urlencoded representation of all present fields in insertion order
func (request *Request) Encode() string {
	var builder strings.Builder
	for _, f := range request.fields {
		if !f.present {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(url.QueryEscape(f.key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(f.value))
	}
	return builder.String()
}

// String implements fmt.Stringer by returning the form encoding
func (request *Request) String() string {
	return request.Encode()
}

// JSON produces a JSON object of all present fields in insertion order.
// Numbers and booleans are kept as JSON literals.
func (request *Request) JSON() ([]byte, error) {
	out := []byte("{}")
	var err error
	for _, f := range request.fields {
		if !f.present {
			continue
		}
		path := escapePath(f.key)
		if f.literal {
			out, err = sjson.SetRawBytes(out, path, []byte(f.value))
		} else {
			out, err = sjson.SetBytes(out, path, f.value)
		}
		if err != nil {
			return nil, fmt.Errorf("could not encode field '%s': %w", f.key, err)
		}
	}
	return out, nil
}

func (request *Request) put(f field) {
	if request.index == nil {
		request.index = make(map[string]int)
	}
	if i, ok := request.index[f.key]; ok {
		request.fields[i] = f
		return
	}
	request.index[f.key] = len(request.fields)
	request.fields = append(request.fields, f)
}

func stringify(value any) (string, bool, bool) {
	switch val := value.(type) {
	case nil:
		return "", false, false
	case string:
		return val, false, true
	case *string:
		if val == nil {
			return "", false, false
		}
		return *val, false, true
	case bool:
		return strconv.FormatBool(val), true, true
	case *bool:
		if val == nil {
			return "", false, false
		}
		return strconv.FormatBool(*val), true, true
	case int:
		return strconv.Itoa(val), true, true
	case *int:
		if val == nil {
			return "", false, false
		}
		return strconv.Itoa(*val), true, true
	case int8:
		return strconv.FormatInt(int64(val), 10), true, true
	case int16:
		return strconv.FormatInt(int64(val), 10), true, true
	case int32:
		return strconv.FormatInt(int64(val), 10), true, true
	case int64:
		return strconv.FormatInt(val, 10), true, true
	case *int64:
		if val == nil {
			return "", false, false
		}
		return strconv.FormatInt(*val, 10), true, true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true, true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true, true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true, true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true, true
	case uint64:
		return strconv.FormatUint(val, 10), true, true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true, true
	case *float64:
		if val == nil {
			return "", false, false
		}
		return strconv.FormatFloat(*val, 'f', -1, 64), true, true
	case json.Number:
		return val.String(), true, true
	case fmt.Stringer:
		return val.String(), false, true
	default:
		return fmt.Sprint(val), false, true
	}
}

// escapePath escapes the characters sjson interprets as path syntax
func escapePath(key string) string {
	var builder strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@', ':', '!', '=', '<', '>', '%':
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
