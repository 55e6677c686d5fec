package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ecomapp/internal/domain"
)

var errBadID = errors.New("id must be a string or a number")

// idParam is a product or entity id in a request body. Clients send it as a
// JSON string or as a bare number.
type idParam string

func (p *idParam) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = idParam(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errBadID
	}
	*p = idParam(n.String())
	return nil
}

func (p idParam) String() string { return string(p) }

// bodyError turns a body decoding failure into a validation error, naming
// the offending field when it can be told. idField is reported for ids of
// the wrong JSON type.
func bodyError(err error, idField string) error {
	if errors.Is(err, errBadID) {
		return domain.Invalid(idField, idField+" must be a string or a number")
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return domain.Invalid(te.Field, fmt.Sprintf("%s must be a %s", te.Field, jsonKind(te.Type.Kind().String())))
	}
	return domain.Invalid("body", "request body must be valid JSON")
}

func jsonKind(k string) string {
	switch {
	case strings.HasPrefix(k, "int"), strings.HasPrefix(k, "uint"), strings.HasPrefix(k, "float"):
		return "number"
	case k == "bool":
		return "boolean"
	case k == "slice", k == "array":
		return "list"
	case k == "struct", k == "map":
		return "object"
	}
	return k
}
