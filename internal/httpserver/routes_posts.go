// Post CRUD endpoints.
//
// Reads are public; mutations require an authenticated subject, but
// ownership of the target post is not checked, so any authenticated user
// can update or delete any post. Updating also reassigns the post's author
// to the caller. Both behaviors are part of the observed contract.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trcaa/goblog/internal/apperr"
	"github.com/trcaa/goblog/internal/auth"
	"github.com/trcaa/goblog/internal/store"
)

// postReq is the payload for POST /posts and PATCH /posts/{id}.
type postReq struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageUrl"`
}

// successRes acknowledges a mutation with no document to return.
type successRes struct {
	Success bool `json:"success"`
}

// handleListPosts returns every post with its author embedded.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.Find(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list posts")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to load posts"))
		return
	}
	writeJSON(w, posts)
}

// handleGetPost returns one post, bumping its view counter atomically.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.posts.FindOneAndIncViews(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Write(w, apperr.E(apperr.NotFound, "post not found"))
			return
		}
		log.Error().Err(err).Str("post", id).Msg("get post")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to load post"))
		return
	}
	writeJSON(w, p)
}

// handleCreatePost persists a new post authored by the authenticated
// subject and returns the created document.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectID(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.Forbidden, "access denied"))
		return
	}
	var req postReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.Internal, "failed to create post"))
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	now := time.Now().UTC()
	p := &store.Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Text:      req.Text,
		Tags:      req.Tags,
		UserID:    subject,
		ImageURL:  req.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Save(r.Context(), p); err != nil {
		log.Error().Err(err).Str("user", subject).Msg("save post")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to create post"))
		return
	}
	writeJSON(w, p)
}

// handleUpdatePost replaces the post's fields. No existence check and no
// ownership check; success is reported even for a missing id.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectID(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.Forbidden, "access denied"))
		return
	}
	var req postReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.Internal, "failed to update post"))
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	id := chi.URLParam(r, "id")
	err := s.posts.UpdateOne(r.Context(), id, store.PostUpdate{
		Title:    req.Title,
		Text:     req.Text,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
		UserID:   subject,
	})
	if err != nil {
		log.Error().Err(err).Str("post", id).Msg("update post")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to update post"))
		return
	}
	writeJSON(w, successRes{Success: true})
}

// handleDeletePost removes the post; a missing target is NotFound, not an
// authorization error.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.posts.FindByIDAndDelete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Write(w, apperr.E(apperr.NotFound, "post not found"))
			return
		}
		log.Error().Err(err).Str("post", id).Msg("delete post")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to delete post"))
		return
	}
	writeJSON(w, successRes{Success: true})
}
