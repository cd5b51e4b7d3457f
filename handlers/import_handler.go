package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	service "github.com/agentdouble/kpix/services"
	"github.com/agentdouble/kpix/utils"

	"go.uber.org/zap"
)

const importTimeout = 2 * time.Minute

type ImportHandler struct {
	service     service.ImportService
	maxFileSize int64
	logger      *zap.Logger
}

func NewImportHandler(service service.ImportService, maxFileSize int64, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{service: service, maxFileSize: maxFileSize, logger: logger}
}

// ImportKPIValues takes a multipart upload with the spreadsheet in the "file"
// field. A failed job answers with the job id next to the cause.
func (h *ImportHandler) ImportKPIValues(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.HandleMessageResponse(w, fmt.Sprintf("File size too large (max %d bytes)", h.maxFileSize), http.StatusRequestEntityTooLarge)
			return
		}
		utils.HandleMessageResponse(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		utils.HandleMessageResponse(w, fmt.Sprintf("File size too large (max %d bytes)", h.maxFileSize), http.StatusRequestEntityTooLarge)
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), importTimeout)
	defer cancel()

	result, err := h.service.ImportKPIValues(ctx, p, header.Filename, content)
	if err != nil {
		var failed *service.ImportFailedError
		if errors.As(err, &failed) {
			w.Header().Set("X-Import-Job-Id", failed.JobID.Hex())
		}
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Import completed successfully", result, http.StatusCreated)
}

func (h *ImportHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	jobs, err := h.service.ListJobs(ctx, p)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Import jobs retrieved successfully", jobs, http.StatusOK)
}

func (h *ImportHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	job, err := h.service.GetJob(ctx, p, id)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Import job retrieved successfully", job, http.StatusOK)
}

// DownloadJobFile streams the file archived for a job.
func (h *ImportHandler) DownloadJobFile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	job, file, err := h.service.OpenJobFile(ctx, p, id)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.Filename))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file); err != nil {
		h.logger.Error("import_file_stream_failed", zap.String("job_id", id.Hex()), zap.Error(err))
	}
}
