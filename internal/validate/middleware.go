package validate

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// Gate returns a middleware that runs rules against the request's JSON
// body. On any failure it responds 400 with the ordered failure list and
// short-circuits the chain; otherwise the body is restored untouched for
// the handler. Field-shape checks only, no auth.
func Gate(rules Rules) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeFailures(w, []FieldError{{Field: "body", Message: "unreadable request body"}})
				return
			}
			payload := map[string]any{}
			if len(bytes.TrimSpace(body)) > 0 {
				if err := json.Unmarshal(body, &payload); err != nil {
					writeFailures(w, []FieldError{{Field: "body", Message: "invalid json"}})
					return
				}
			}
			if fails := rules.Check(payload); len(fails) > 0 {
				writeFailures(w, fails)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// writeFailures renders the bare JSON array of field failures.
func writeFailures(w http.ResponseWriter, fails []FieldError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(fails)
}
