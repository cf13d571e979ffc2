package httpserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/trcaa/goblog/internal/apperr"
)

// maxUploadBytes bounds the in-memory part of multipart parsing.
const maxUploadBytes = 32 << 20

// handleUpload stores the multipart "image" file under the upload
// directory by its original (path-stripped) name and returns the public
// URL. Served back via /uploads/.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		apperr.Write(w, apperr.E(apperr.Internal, "failed to upload file"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		apperr.Write(w, apperr.E(apperr.Internal, "failed to upload file"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		apperr.Write(w, apperr.E(apperr.Internal, "failed to upload file"))
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		log.Error().Err(err).Msg("create upload dir")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to upload file"))
		return
	}
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("create upload file")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to upload file"))
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		log.Error().Err(err).Str("file", name).Msg("write upload file")
		apperr.Write(w, apperr.E(apperr.Internal, "failed to upload file"))
		return
	}

	writeJSON(w, map[string]string{"url": "uploads/" + name})
}
