package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/service"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
)

type attachmentServiceMock struct {
	upload   service.AttachmentUpload
	body     []byte
	lessonID string
	detached string
	openErr  error
}

func (m *attachmentServiceMock) Attach(ctx context.Context, lessonID string, upload service.AttachmentUpload) (*models.LessonFile, error) {
	m.lessonID = lessonID
	m.upload = upload
	body, err := io.ReadAll(upload.Content)
	if err != nil {
		return nil, err
	}
	m.body = body
	return &models.LessonFile{ID: "f1", Name: upload.Filename, Type: upload.MimeType, Size: upload.Size}, nil
}

func (m *attachmentServiceMock) Detach(ctx context.Context, lessonID, fileID string) error {
	m.lessonID = lessonID
	m.detached = fileID
	return nil
}

func (m *attachmentServiceMock) Link(ctx context.Context, lessonID, fileID string) (*dto.FileLink, error) {
	return &dto.FileLink{Token: "tok", URL: "/api/v1/files/tok"}, nil
}

func (m *attachmentServiceMock) Open(ctx context.Context, token string) (*service.AttachmentDownload, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return &service.AttachmentDownload{
		Content:  io.NopCloser(bytes.NewReader([]byte("hello"))),
		Filename: "notes.txt",
		MimeType: "text/plain",
		Size:     5,
	}, nil
}

func TestAttachmentHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attachmentServiceMock{}
	handler := NewAttachmentHandler(mock)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="notes.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/lessons/l1/files", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "l1"}}

	handler.Upload(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "l1", mock.lessonID)
	assert.Equal(t, "notes.txt", mock.upload.Filename)
	assert.Equal(t, "text/plain", mock.upload.MimeType)
	assert.Equal(t, int64(5), mock.upload.Size)
	assert.Equal(t, []byte("hello"), mock.body)
}

func TestAttachmentHandlerUploadRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttachmentHandler(&attachmentServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/lessons/l1/files", bytes.NewReader(nil))
	c.Request = req

	handler.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttachmentHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttachmentHandler(&attachmentServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/files/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "notes.txt")
}

func TestAttachmentHandlerDownloadForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttachmentHandler(&attachmentServiceMock{openErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/files/bad", nil)

	handler.Download(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAttachmentHandlerDetachNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attachmentServiceMock{}
	r := gin.New()
	r.DELETE("/lessons/:id/files/:fileId", NewAttachmentHandler(mock).Detach)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/lessons/l1/files/f1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "l1", mock.lessonID)
	assert.Equal(t, "f1", mock.detached)
}
