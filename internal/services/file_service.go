package services

import (
	"errors"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"bandhub/internal/authz"
	apperrors "bandhub/internal/errors"
	"bandhub/internal/logger"
	"bandhub/internal/models"
	"bandhub/internal/pagination"
	"bandhub/internal/storage"
)

// fileService handles shared band files: metadata in the database and bytes
// in the blob store.
type fileService struct {
	db    *gorm.DB
	blobs BlobStore
}

// NewFileService creates a new FileServicer.
func NewFileService(db *gorm.DB, blobs BlobStore) FileServicer {
	return &fileService{db: db, blobs: blobs}
}

// ListFiles returns a page of files with their uploaders, newest first.
// An empty category or "all" disables the filter.
func (s *fileService) ListFiles(category string, page pagination.PageRequest) (*pagination.PageResponse[models.File], error) {
	page.Defaults()

	query := s.db.Model(&models.File{})
	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var files []models.File
	if err := query.Preload("Uploader").
		Order("uploaded_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&files).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(files, page.Page, page.Limit, total)
	return &resp, nil
}

// UploadFile stores the bytes and records the metadata. When the client sent
// no useful MIME type the sniffed one is used.
func (s *fileService) UploadFile(userID string, in UploadInput) (*models.File, error) {
	if in.Reader == nil || in.OriginalName == "" {
		return nil, apperrors.ErrNoFileUploaded
	}
	category := in.Category
	if category == "" {
		category = models.FileCategoryGeneral
	}
	if !models.IsFileCategory(category) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid file category")
	}

	blob, err := s.blobs.Save(in.Reader, in.OriginalName)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	mimeType := in.MimeType
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		mimeType = blob.MimeType
	}

	file := &models.File{
		Name:         blob.Name,
		OriginalName: in.OriginalName,
		MimeType:     mimeType,
		Size:         blob.Size,
		Category:     category,
		FilePath:     blob.Path,
		UploadedBy:   userID,
		UploadedAt:   time.Now(),
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		file.Description = &d
	}

	if err := s.db.Create(file).Error; err != nil {
		if rmErr := s.blobs.Remove(blob.Path); rmErr != nil {
			logger.Get().Warnw("failed to remove orphaned upload", "error", rmErr, "path", blob.Path)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Where("id = ?", userID).First(&file.Uploader).Error; err != nil {
		logger.Get().Warnw("failed to load uploader", "error", err, "user_id", userID)
	}
	return file, nil
}

// GetFileByID retrieves file metadata with its uploader.
func (s *fileService) GetFileByID(id string) (*models.File, error) {
	var file models.File
	if err := s.db.Preload("Uploader").Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &file, nil
}

// OpenFile returns the metadata and an open handle on the stored bytes. The
// caller closes the handle.
func (s *fileService) OpenFile(id string) (*models.File, *os.File, error) {
	file, err := s.GetFileByID(id)
	if err != nil {
		return nil, nil, err
	}

	f, _, err := s.blobs.Open(file.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, apperrors.ErrFileMissing
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return file, f, nil
}

// DeleteFile removes the metadata and the stored bytes when the session
// uploaded the file or is an ADMIN.
func (s *fileService) DeleteFile(id string, session *authz.Session) error {
	file, err := s.GetFileByID(id)
	if err != nil {
		return err
	}
	if !authz.CanMutateOwnedResource(file, session) {
		return apperrors.ErrFileForbidden
	}

	if err := s.db.Delete(&models.File{}, "id = ?", id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.blobs.Remove(file.FilePath); err != nil {
		logger.Get().Warnw("failed to remove stored file", "error", err, "path", file.FilePath, "file_id", id)
	}
	return nil
}
