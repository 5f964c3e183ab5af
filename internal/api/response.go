package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Warn("encoding response failed", zap.Error(err))
		}
	}
}

// jsonError writes a generic {"error": message} body.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// jsonDetail writes a {"detail": message} body for failures tied to a
// specific resource or business rule.
func jsonDetail(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"detail": message})
}

// jsonNonField writes a {"non_field_errors": [...]} body for rules that
// span several fields.
func jsonNonField(w http.ResponseWriter, status int, messages ...string) {
	jsonResponse(w, status, map[string][]string{"non_field_errors": messages})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
