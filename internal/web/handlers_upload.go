package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/bookimport/internal/core"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to disk.
const multipartMemory = 8 << 20

// UploadResponse is the body of a successful import.
type UploadResponse struct {
	Message  string `json:"message"`
	Inserted int    `json:"inserted"`
}

// handleUpload imports the spreadsheet in multipart field "file".
//
//	200 application/json  {"message": ..., "inserted": N}
//	400 text/plain        No file uploaded
//	413 text/plain        File too large
//	500 text/plain        Error processing file
//	503 text/plain        all import slots busy
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.respondError(w, r, err)
		case r.ContentLength > maxSize:
			s.respondError(w, r, &http.MaxBytesError{Limit: maxSize})
		default:
			s.respondError(w, r, errors.Join(core.ErrMissingFile, err))
		}
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("multipart cleanup failed", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrMissingFile)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Import(ctx, core.Upload{
		FileName: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message:  core.SuccessMessage,
		Inserted: result.Inserted,
	})
}
