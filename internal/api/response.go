package api

import (
	"net/http"

	"github.com/goccy/go-json"
)

// Success builds a success envelope carrying payload's fields.
func Success(payload map[string]any) map[string]any {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	return body
}

// Failure builds a failure envelope.
func Failure(msg string) map[string]any {
	return map[string]any{
		"success": false,
		"msg":     msg,
	}
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, payload map[string]any) {
	writeJSON(w, http.StatusOK, Success(payload))
}

// WriteFailure writes a failure envelope. The status is still 200.
func WriteFailure(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, Failure(msg))
}

// writeJSON encodes body as JSON.
func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		data, _ = json.Marshal(Failure("internal error"))
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
