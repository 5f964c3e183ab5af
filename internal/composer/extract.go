package composer

import (
	"encoding/json"
	"errors"
	"strings"
)

// GenericSubmitError is shown when no reason can be read from a failure.
const GenericSubmitError = "The transfer could not be created. Please try again."

// bodyError is implemented by backend errors that carry the response body.
type bodyError interface {
	error
	ResponseBody() []byte
}

// An extractor reads a human-readable reason from one known error shape.
type extractor func(body map[string]json.RawMessage) (string, bool)

// extractors are tried in order; the first match wins.
var extractors = []extractor{
	stringField("detail"),
	stringField("error"),
	joinedField("non_field_errors"),
	rawField("items"),
}

func stringField(key string) extractor {
	return func(body map[string]json.RawMessage) (string, bool) {
		var s string
		if err := json.Unmarshal(body[key], &s); err != nil || strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
}

func joinedField(key string) extractor {
	return func(body map[string]json.RawMessage) (string, bool) {
		var msgs []string
		if err := json.Unmarshal(body[key], &msgs); err != nil || len(msgs) == 0 {
			return "", false
		}
		return strings.Join(msgs, " "), true
	}
}

func rawField(key string) extractor {
	return func(body map[string]json.RawMessage) (string, bool) {
		raw, ok := body[key]
		if !ok || len(raw) == 0 || string(raw) == "null" {
			return "", false
		}
		return string(raw), true
	}
}

// failureMessage turns a submit error into text for the user.
func failureMessage(err error) string {
	var be bodyError
	if !errors.As(err, &be) {
		return GenericSubmitError
	}

	var body map[string]json.RawMessage
	if json.Unmarshal(be.ResponseBody(), &body) != nil {
		return GenericSubmitError
	}
	for _, extract := range extractors {
		if msg, ok := extract(body); ok {
			return msg
		}
	}
	return GenericSubmitError
}
