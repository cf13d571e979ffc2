// Account endpoints: registration, login, current-identity lookup.
//
// The validation gate has already checked field shape for register/login,
// and the auth gate has established identity for /auth/me; handlers here
// only do business logic and persistence calls.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trcaa/goblog/internal/apperr"
	"github.com/trcaa/goblog/internal/auth"
	"github.com/trcaa/goblog/internal/store"
)

// registerReq is the POST /auth/register payload.
type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

// loginReq is the POST /auth/login payload.
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authRes is a public profile plus a freshly issued token.
type authRes struct {
	*store.User
	Token string `json:"token"`
}

// handleRegister hashes the password, persists a new credential record
// keyed by a generated id, and returns the profile with a token. The
// stored hash never leaves the server.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.Internal, "failed to register"))
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("hash password")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to register"))
		return
	}

	now := time.Now().UTC()
	u := &store.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		AvatarURL:    req.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Save(r.Context(), u); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("save user")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to register"))
		return
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		log.Error().Err(err).Msg("issue token")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to register"))
		return
	}
	writeJSON(w, authRes{User: u, Token: token})
}

// handleLogin looks the account up by email, verifies the password against
// the stored hash, and issues a token. Unknown email and wrong password
// are distinct failures with distinct statuses.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.Internal, "failed to log in"))
		return
	}

	u, err := s.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Write(w, apperr.E(apperr.NotFound, "user not found"))
			return
		}
		log.Error().Err(err).Msg("find user by email")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to log in"))
		return
	}

	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		apperr.Write(w, apperr.E(apperr.InvalidCredential, "invalid login or password"))
		return
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		log.Error().Err(err).Msg("issue token")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to log in"))
		return
	}
	writeJSON(w, authRes{User: u, Token: token})
}

// handleMe returns the public profile for the authenticated subject. The
// record may have vanished between token issuance and lookup.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectID(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.Forbidden, "access denied"))
		return
	}
	u, err := s.users.FindByID(r.Context(), subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Write(w, apperr.E(apperr.NotFound, "user not found"))
			return
		}
		log.Error().Err(err).Str("user", subject).Msg("find user by id")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to load profile"))
		return
	}
	writeJSON(w, u)
}
