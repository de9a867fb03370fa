package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Validator is implemented by request DTOs that check their own shape.
// Validate maps offending JSON field names to a reason; nil or empty means valid.
type Validator interface {
	Validate() map[string]string
}

// DecodeAndValidate decodes the JSON request body into dest (with DisallowUnknownFields)
// and then runs Validate. On decode failure it writes a 400 bad_request error;
// on validation failure a 400 validation_failed error. It returns false in both
// cases and callers should return immediately.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return false
	}
	return Validate(w, dest)
}

// Validate runs dest's Validator, if any, and writes a 400 validation_failed
// error listing every offending field.
func Validate(w http.ResponseWriter, dest any) bool {
	v, ok := dest.(Validator)
	if !ok {
		return true
	}
	fields := v.Validate()
	if len(fields) == 0 {
		return true
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name])
	}
	WriteJSONErrorFields(w, http.StatusBadRequest, ErrCodeValidationFailed,
		"validation failed: "+strings.Join(parts, "; "), fields)
	return false
}
