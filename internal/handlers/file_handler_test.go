package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"bandhub/internal/authz"
	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/pagination"
	"bandhub/internal/services"
)

// --- mock file service ---

type mockFileService struct {
	listFilesFn   func(category string, page pagination.PageRequest) (*pagination.PageResponse[models.File], error)
	uploadFileFn  func(userID string, in services.UploadInput) (*models.File, error)
	getFileByIDFn func(id string) (*models.File, error)
	openFileFn    func(id string) (*models.File, *os.File, error)
	deleteFileFn  func(id string, session *authz.Session) error
}

func (m *mockFileService) ListFiles(category string, page pagination.PageRequest) (*pagination.PageResponse[models.File], error) {
	if m.listFilesFn != nil {
		return m.listFilesFn(category, page)
	}
	resp := pagination.NewPageResponse([]models.File{}, 1, pagination.DefaultLimit, 0)
	return &resp, nil
}

func (m *mockFileService) UploadFile(userID string, in services.UploadInput) (*models.File, error) {
	if m.uploadFileFn != nil {
		return m.uploadFileFn(userID, in)
	}
	return &models.File{}, nil
}

func (m *mockFileService) GetFileByID(id string) (*models.File, error) {
	if m.getFileByIDFn != nil {
		return m.getFileByIDFn(id)
	}
	return &models.File{}, nil
}

func (m *mockFileService) OpenFile(id string) (*models.File, *os.File, error) {
	if m.openFileFn != nil {
		return m.openFileFn(id)
	}
	return nil, nil, apperrors.ErrFileNotFound
}

func (m *mockFileService) DeleteFile(id string, session *authz.Session) error {
	if m.deleteFileFn != nil {
		return m.deleteFileFn(id, session)
	}
	return nil
}

var _ services.FileServicer = (*mockFileService)(nil)

func setupFileRouter(handler *FileHandler, session *authz.Session) *gin.Engine {
	r := gin.New()
	g := r.Group("", injectSession(session))
	g.GET("/files", handler.ListFiles)
	g.POST("/files", handler.UploadFile)
	g.DELETE("/files", handler.DeleteFile)
	g.GET("/files/:id", handler.GetFile)
	return r
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", "/files", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestFileHandler_UploadFile(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.UploadInput
		var gotBytes []byte
		fileSvc := &mockFileService{
			uploadFileFn: func(userID string, in services.UploadInput) (*models.File, error) {
				got = in
				gotBytes, _ = io.ReadAll(in.Reader)
				return &models.File{
					Base:         models.Base{ID: "f1"},
					OriginalName: in.OriginalName,
					Category:     in.Category,
					Size:         int64(len(gotBytes)),
					UploadedBy:   userID,
					Uploader:     models.User{Name: "Member", Username: "member"},
				}, nil
			},
		}
		r := setupFileRouter(NewFileHandler(fileSvc, &mockAuditService{}, 1<<20), memberSession)

		req := multipartRequest(t, map[string]string{"category": "sheet-music", "description": "Setlist"}, "setlist.pdf", []byte("%PDF-1.4 setlist"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.OriginalName != "setlist.pdf" || got.Category != "sheet-music" || got.Description != "Setlist" {
			t.Errorf("unexpected upload input %+v", got)
		}
		if string(gotBytes) != "%PDF-1.4 setlist" {
			t.Errorf("unexpected bytes %q", gotBytes)
		}
		uploader := parseJSON(t, rec)["uploader"].(map[string]interface{})
		if uploader["username"] != "member" {
			t.Errorf("unexpected uploader %v", uploader)
		}
	})

	t.Run("missing file is 400", func(t *testing.T) {
		r := setupFileRouter(NewFileHandler(&mockFileService{}, &mockAuditService{}, 1<<20), memberSession)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, multipartRequest(t, map[string]string{"category": "general"}, "", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "No file uploaded")
	})

	t.Run("unknown category is 400", func(t *testing.T) {
		called := false
		fileSvc := &mockFileService{
			uploadFileFn: func(string, services.UploadInput) (*models.File, error) {
				called = true
				return &models.File{}, nil
			},
		}
		r := setupFileRouter(NewFileHandler(fileSvc, &mockAuditService{}, 1<<20), memberSession)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, multipartRequest(t, map[string]string{"category": "mixtapes"}, "demo.mp3", []byte("ID3")))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "Invalid file category")
		if called {
			t.Error("service must not be called for an unknown category")
		}
	})

	t.Run("oversized file is 400", func(t *testing.T) {
		r := setupFileRouter(NewFileHandler(&mockFileService{}, &mockAuditService{}, 16), memberSession)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, multipartRequest(t, nil, "big.bin", bytes.Repeat([]byte("x"), 64)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "FILE_TOO_LARGE")
	})
}

func TestFileHandler_ListFiles(t *testing.T) {
	var gotCategory string
	var gotPage pagination.PageRequest
	fileSvc := &mockFileService{
		listFilesFn: func(category string, page pagination.PageRequest) (*pagination.PageResponse[models.File], error) {
			gotCategory, gotPage = category, page
			resp := pagination.NewPageResponse([]models.File{{Base: models.Base{ID: "f1"}}}, 2, 1, 3)
			return &resp, nil
		},
	}
	r := setupFileRouter(NewFileHandler(fileSvc, &mockAuditService{}, 1<<20), memberSession)

	rec := doRequest(r, "GET", "/files?category=photos&page=2&limit=1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotCategory != "photos" || gotPage.Page != 2 || gotPage.Limit != 1 {
		t.Errorf("unexpected query %q %+v", gotCategory, gotPage)
	}
	result := parseJSON(t, rec)
	p := result["pagination"].(map[string]interface{})
	if p["currentPage"] != float64(2) || p["totalPages"] != float64(3) || p["totalFiles"] != float64(3) {
		t.Errorf("unexpected pagination %v", p)
	}
	if p["hasNextPage"] != true || p["hasPreviousPage"] != true {
		t.Errorf("unexpected page flags %v", p)
	}
}

func TestFileHandler_GetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	if err := os.WriteFile(path, []byte("riff"), 0o600); err != nil {
		t.Fatal(err)
	}
	fileSvc := &mockFileService{
		openFileFn: func(id string) (*models.File, *os.File, error) {
			if id != "f1" {
				return nil, nil, apperrors.ErrFileNotFound
			}
			f, err := os.Open(path)
			if err != nil {
				return nil, nil, err
			}
			return &models.File{OriginalName: "riff.txt", MimeType: "text/plain", Size: 4}, f, nil
		},
	}
	r := setupFileRouter(NewFileHandler(fileSvc, &mockAuditService{}, 1<<20), memberSession)

	t.Run("streams bytes", func(t *testing.T) {
		rec := doRequest(r, "GET", "/files/f1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "riff" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
		if rec.Header().Get("Content-Type") != "text/plain" {
			t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
		}
		if rec.Header().Get("Content-Disposition") != `inline; filename=riff.txt` {
			t.Errorf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
		}
	})

	t.Run("unknown file is 404", func(t *testing.T) {
		rec := doRequest(r, "GET", "/files/nope", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestFileHandler_DeleteFile(t *testing.T) {
	t.Run("deletes and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupFileRouter(NewFileHandler(&mockFileService{}, audit, 1<<20), memberSession)

		rec := doRequest(r, "DELETE", "/files?id=f1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if acts := audit.actions(); len(acts) != 1 || acts[0] != services.AuditDeleteFile {
			t.Errorf("unexpected audit entries %v", acts)
		}
	})

	t.Run("non-owner is 403", func(t *testing.T) {
		fileSvc := &mockFileService{
			deleteFileFn: func(string, *authz.Session) error { return apperrors.ErrFileForbidden },
		}
		r := setupFileRouter(NewFileHandler(fileSvc, &mockAuditService{}, 1<<20), memberSession)

		rec := doRequest(r, "DELETE", "/files?id=f1", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("missing id is 400", func(t *testing.T) {
		r := setupFileRouter(NewFileHandler(&mockFileService{}, &mockAuditService{}, 1<<20), memberSession)

		rec := doRequest(r, "DELETE", "/files", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "File ID required")
	})
}
