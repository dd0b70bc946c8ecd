package handlers

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/pagination"
	"bandhub/internal/services"
)

// FileHandler handles shared band files.
type FileHandler struct {
	fileService    services.FileServicer
	auditService   services.AuditServicer
	maxUploadBytes int64
}

// NewFileHandler creates a new FileHandler accepting uploads up to maxUploadBytes.
func NewFileHandler(fileService services.FileServicer, auditService services.AuditServicer, maxUploadBytes int64) *FileHandler {
	return &FileHandler{fileService: fileService, auditService: auditService, maxUploadBytes: maxUploadBytes}
}

// FileResponse is the metadata of an uploaded file.
type FileResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	Category     string    `json:"category"`
	Description  *string   `json:"description"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Uploader     PersonRef `json:"uploader"`
}

// UploadFileForm holds the text fields sent with an upload.
type UploadFileForm struct {
	Category    string `form:"category" binding:"omitempty,file_category"`
	Description string `form:"description" binding:"max=1000"`
}

var errInvalidFileCategory = apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid file category")

// FilePagination describes the page of a file listing.
type FilePagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalFiles      int64 `json:"totalFiles"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// FileListResponse is a page of files.
type FileListResponse struct {
	Files      []FileResponse `json:"files"`
	Pagination FilePagination `json:"pagination"`
}

func newFileResponse(f *models.File) FileResponse {
	return FileResponse{
		ID:           f.ID,
		Name:         f.Name,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		Category:     f.Category,
		Description:  f.Description,
		UploadedAt:   f.UploadedAt,
		Uploader:     PersonRef{Name: f.Uploader.Name, Username: f.Uploader.Username},
	}
}

// ListFiles returns a page of shared files
// @Summary     List files
// @Tags        files
// @Produce     json
// @Security    BearerAuth
// @Param       category query string false "Category filter (all for every category)"
// @Param       page     query int    false "Page number (default 1)"
// @Param       limit    query int    false "Items per page (default 10, max 100)"
// @Success     200 {object} FileListResponse "Page of files, newest first"
// @Failure     400 {object} ErrorResponse "Invalid pagination"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.ErrInvalidInput)
		return
	}

	result, err := h.fileService.ListFiles(c.Query("category"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	files := make([]FileResponse, 0, len(result.Data))
	for i := range result.Data {
		files = append(files, newFileResponse(&result.Data[i]))
	}
	c.JSON(http.StatusOK, FileListResponse{
		Files: files,
		Pagination: FilePagination{
			CurrentPage:     result.Page,
			TotalPages:      result.TotalPages,
			TotalFiles:      result.TotalItems,
			HasNextPage:     result.HasNextPage(),
			HasPreviousPage: result.HasPreviousPage(),
		},
	})
}

// UploadFile stores a file shared by the caller
// @Summary     Upload a file
// @Tags        files
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file        formData file   true  "File contents"
// @Param       category    formData string false "File category (default general)"
// @Param       description formData string false "Description"
// @Success     201 {object} FileResponse "File uploaded"
// @Failure     400 {object} ErrorResponse "No file, file too large or invalid category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /files [post]
func (h *FileHandler) UploadFile(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Multipart framing needs a little room beyond the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondWithError(c, apperrors.ErrFileTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			respondWithError(c, apperrors.ErrNoFileUploaded)
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid multipart form"))
		}
		return
	}
	if header.Size > h.maxUploadBytes {
		respondWithError(c, apperrors.ErrFileTooLarge)
		return
	}

	var form UploadFileForm
	if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		respondWithError(c, bindingError(err, apperrors.ErrInvalidInput, map[string]*apperrors.AppError{
			"file_category": errInvalidFileCategory,
		}))
		return
	}

	src, err := header.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer src.Close()

	file, err := h.fileService.UploadFile(session.UserID, services.UploadInput{
		Reader:       src,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Category:     form.Category,
		Description:  form.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newFileResponse(file))
}

// GetFile streams the bytes of a file
// @Summary     Fetch a file
// @Tags        files
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       id path string true "File ID"
// @Success     200 {file}   file "File contents"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "File not found"
// @Router      /files/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	file, f, err := h.fileService.OpenFile(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer f.Close()

	disposition := mime.FormatMediaType("inline", map[string]string{"filename": file.OriginalName})
	if disposition == "" {
		disposition = "inline"
	}
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, f, map[string]string{
		"Content-Disposition": disposition,
	})
}

// DeleteFile removes a file uploaded by the caller
// @Summary     Delete a file
// @Description Uploaders may delete their own files, admins may delete any
// @Tags        files
// @Produce     json
// @Security    BearerAuth
// @Param       id query string true "File ID"
// @Success     200 {object} MessageResponse "File deleted"
// @Failure     400 {object} ErrorResponse "File ID required"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not authorized to delete this file"
// @Failure     404 {object} ErrorResponse "File not found"
// @Router      /files [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := requireQuery(c, "id", "File ID required")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.fileService.DeleteFile(id, session); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(session.UserID, services.AuditDeleteFile, "file", id, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "File deleted successfully"})
}
