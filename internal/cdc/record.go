package cdc

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so errors match the upstream row image.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeRecord parses a loosely typed row image into the table's record
// type T and validates it against T's `validate` tags.
func DecodeRecord[T any](raw map[string]any) (T, error) {
	var rec T
	if raw == nil {
		return rec, fmt.Errorf("%w: row image is missing", ErrInvalidRecord)
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	if err := validate.Struct(rec); err != nil {
		return rec, fmt.Errorf("%w: %s", ErrInvalidRecord, describeValidation(err))
	}
	return rec, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// ID is a primary key taken from a row image. The primary database may send
// keys as strings (uuid, place ids) or as integers; both decode to text.
type ID string

// UnmarshalJSON accepts a JSON string, number, or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", b)
	}
	*id = ID(n.String())
	return nil
}

// String returns the key as text.
func (id ID) String() string {
	return string(id)
}

// StringList is a list column of a row image. Upstream text[] columns arrive
// as JSON arrays; jsonb-encoded text columns arrive as a string holding the
// array. Non-string elements are kept as their compact JSON text.
type StringList []string

// UnmarshalJSON accepts an array, a string containing an array, a bare
// string (one element), or null.
func (l *StringList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		trimmed := strings.TrimSpace(s)
		switch {
		case trimmed == "":
			*l = nil
			return nil
		case strings.HasPrefix(trimmed, "["):
			b = []byte(trimmed)
		default:
			*l = StringList{trimmed}
			return nil
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("list must be an array: %w", err)
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			out = append(out, str)
			continue
		}
		out = append(out, string(item))
	}
	*l = out
	return nil
}

// JSON returns the list encoded for a replica TEXT column. A nil list
// encodes as "[]" so readers never see NULL.
func (l StringList) JSON() string {
	if len(l) == 0 {
		return "[]"
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return "[]"
	}
	return string(b)
}
