package helpers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// SplitList splits a comma-delimited value, trims each segment and drops
// empty ones: "a, b ,,c" becomes [a b c].
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FormList flattens repeated form values, each of which may itself be
// comma-delimited.
func FormList(values []string) []string {
	out := []string{}
	for _, v := range values {
		out = append(out, SplitList(v)...)
	}
	return out
}

// StringList decodes from either a JSON array of strings or a single
// comma-delimited string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = SplitList(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return errors.New("must be a list of strings or a comma-delimited string")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*l = out
	return nil
}

// BodyKind is the encoding of a request body.
type BodyKind int

const (
	BodyJSON BodyKind = iota
	BodyURLEncoded
	BodyMultipart
)

// ContentKind classifies r by its Content-Type. Anything that is not a
// form encoding is treated as JSON.
func ContentKind(r *http.Request) BodyKind {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return BodyJSON
	}
	switch mediaType {
	case "multipart/form-data":
		return BodyMultipart
	case "application/x-www-form-urlencoded":
		return BodyURLEncoded
	default:
		return BodyJSON
	}
}

// ParseFormBody parses a form-encoded body and returns its values. On
// failure it writes a 400 JSON error and returns false.
func ParseFormBody(w http.ResponseWriter, r *http.Request, kind BodyKind, maxMemory int64) (url.Values, bool) {
	var err error
	if kind == BodyMultipart {
		err = r.ParseMultipartForm(maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid form body: "+err.Error())
		return nil, false
	}
	return r.PostForm, true
}

// FormString returns a pointer to the value of key, or nil when the form
// does not carry key.
func FormString(values url.Values, key string) *string {
	if _, ok := values[key]; !ok {
		return nil
	}
	v := values.Get(key)
	return &v
}
