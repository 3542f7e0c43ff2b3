package httpapi

import (
	"net/http"

	"loadmap/internal/service"

	"go.uber.org/zap"
)

const maxUploadBytes = 50 << 20

// FilesHandler POST /files and GET /files/{file_id}
type FilesHandler struct {
	files  *service.FileService
	logger *zap.Logger
}

func NewFilesHandler(files *service.FileService, logger *zap.Logger) *FilesHandler {
	return &FilesHandler{files: files, logger: logger}
}

func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := subPath(r.URL.Path, "/files")
	switch {
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.Upload(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.GetFile(w, r, parts[0])
	case len(parts) <= 1:
		writeMethodNotAllowed(w)
	default:
		writeNotFound(w)
	}
}

// Upload POST /files (multipart, field "file")
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeServiceError(w, h.logger, "Upload", &service.ValidationError{Field: "file", Message: "multipart field \"file\" is required"})
		return
	}
	defer file.Close()

	up, err := h.files.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeServiceError(w, h.logger, "Upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

// GetFile GET /files/{file_id}
func (h *FilesHandler) GetFile(w http.ResponseWriter, r *http.Request, fileID string) {
	f, err := h.files.Resolve(r.Context(), fileID)
	if err != nil {
		writeServiceError(w, h.logger, "GetFile", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
