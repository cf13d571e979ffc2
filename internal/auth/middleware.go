package auth

import (
	"context"
	"net/http"
	"strings"
)

// ctxSubjectKey is the context key type for the authenticated subject id.
type ctxSubjectKey struct{}

// RequireAuth gates a route on a valid bearer token. On success the
// subject id is attached to the request context; on a missing or invalid
// token the chain is short-circuited with an identical generic 403, so a
// client cannot tell the two apart. The gate is a pure function of the
// Authorization header and the signing secret; it never touches storage.
func RequireAuth(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				forbidden(w)
				return
			}
			subject, err := tokens.Verify(tok)
			if err != nil {
				forbidden(w)
				return
			}
			ctx := context.WithValue(r.Context(), ctxSubjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectID returns the authenticated subject id set by RequireAuth.
func SubjectID(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxSubjectKey{}).(string)
	return s, ok && s != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	a := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return ""
	}
	return strings.TrimSpace(a[7:])
}

// forbidden writes the one generic rejection body used for every auth
// failure.
func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"message":"access denied"}`))
}
