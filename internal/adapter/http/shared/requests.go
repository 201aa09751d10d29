package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

var (
	// ErrInvalidOperation is returned for bodies naming fields a route does not accept.
	ErrInvalidOperation = domain.NewError(domain.ErrInvalidInput, "Invalid operation!")
	// ErrBlankBody is returned for missing or empty JSON bodies.
	ErrBlankBody = domain.NewError(domain.ErrInvalidInput, "Request body can't be blank.")
	errMalformed = domain.NewError(domain.ErrInvalidInput, "Malformed JSON body.")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes a single JSON value from the request body into v,
// rejecting unknown fields and trailing data, then validates it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrBlankBody
		}
		return errMalformed
	}
	if dec.More() {
		return errMalformed
	}
	if hasUnknownField(raw, reflect.TypeOf(v)) {
		return ErrInvalidOperation
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errMalformed
	}
	return ValidateRequest(v)
}

// hasUnknownField reports whether raw, or any object nested in it, carries a
// key that does not map onto a field of t. Keys match case-insensitively, as
// encoding/json does.
func hasUnknownField(raw json.RawMessage, t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return false
		}
		for _, item := range items {
			if hasUnknownField(item, t.Elem()) {
				return true
			}
		}
		return false
	case reflect.Struct:
	default:
		return false
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return false
	}
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[strings.ToLower(name)] = f.Type
	}
	for key, value := range obj {
		ft, ok := fields[strings.ToLower(key)]
		if !ok || hasUnknownField(value, ft) {
			return true
		}
	}
	return false
}

// ValidateRequest runs the struct validator and converts its errors.
func ValidateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return &ValidationError{Fields: fields}
}

// QueryInt64 parses an optional non-negative integer query parameter.
func QueryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, domain.NewError(domain.ErrInvalidInput, "Invalid %s parameter.", name)
	}
	return n, nil
}
