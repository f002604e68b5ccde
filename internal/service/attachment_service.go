package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
)

type attachmentStore interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	LoadLessonPlans(ctx context.Context) ([]models.LessonPlan, error)
	SaveLessonPlans(ctx context.Context, plans []models.LessonPlan) error
}

type attachmentFileStorage interface {
	SaveStream(name string, r io.Reader, limit int64) (int64, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type attachmentSigner interface {
	Generate(lessonID, fileID string) (string, time.Time, error)
	Parse(token string) (lessonID, fileID string, expiresAt time.Time, err error)
}

// AttachmentUpload carries an uploaded file and its declared metadata.
type AttachmentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// AttachmentDownload is an opened lesson file ready to be streamed.
type AttachmentDownload struct {
	Content  io.ReadCloser
	Filename string
	MimeType string
	Size     int64
}

// AttachmentServiceConfig holds upload limits and link settings.
type AttachmentServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// AttachmentService stores lesson plan files and hands out signed links.
type AttachmentService struct {
	store   attachmentStore
	files   attachmentFileStorage
	signer  attachmentSigner
	logger  *zap.Logger
	cfg     AttachmentServiceConfig
	mimeSet map[string]struct{}
}

// NewAttachmentService constructs the service with defaults.
func NewAttachmentService(store attachmentStore, files attachmentFileStorage, signer attachmentSigner, logger *zap.Logger, cfg AttachmentServiceConfig) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{
			"application/pdf",
			"image/png",
			"image/jpeg",
			"image/gif",
			"text/plain",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &AttachmentService{
		store:   store,
		files:   files,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		mimeSet: mimeSet,
	}
}

// Attach stores upload and appends it to the files of the lesson plan.
func (s *AttachmentService) Attach(ctx context.Context, lessonID string, upload AttachmentUpload) (*models.LessonFile, error) {
	if upload.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := detectMime(upload)
	if err != nil {
		return nil, err
	}
	if _, allowed := s.mimeSet[strings.ToLower(mimeType)]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}

	file := models.LessonFile{
		ID:   uuid.NewString(),
		Name: filepath.Base(strings.TrimSpace(upload.Filename)),
		Type: mimeType,
	}
	if file.Name == "." || file.Name == string(filepath.Separator) {
		file.Name = "file"
	}
	file.Path = path.Join("lessons", lessonID, file.ID+strings.ToLower(filepath.Ext(file.Name)))

	err = s.store.Exclusive(ctx, func(ctx context.Context) error {
		plans, err := s.store.LoadLessonPlans(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load lesson plans")
		}
		idx := indexOfLesson(plans, lessonID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson plan not found")
		}

		written, err := s.files.SaveStream(file.Path, upload.Content, s.cfg.MaxFileSize+1)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist lesson file")
		}
		if written > s.cfg.MaxFileSize {
			_ = s.files.Delete(file.Path)
			return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
		}
		file.Size = written

		plans[idx].Files = append(plans[idx].Files, file)
		if err := s.store.SaveLessonPlans(ctx, plans); err != nil {
			_ = s.files.Delete(file.Path)
			return appErrors.Storage(err, "failed to save lesson plans")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("lesson file attached",
		zap.String("lesson_id", lessonID),
		zap.String("file_id", file.ID),
		zap.Int64("size", file.Size),
	)
	return &file, nil
}

// Detach removes a file from a lesson plan and deletes its stored content.
func (s *AttachmentService) Detach(ctx context.Context, lessonID, fileID string) error {
	var removed models.LessonFile
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		plans, err := s.store.LoadLessonPlans(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load lesson plans")
		}
		idx := indexOfLesson(plans, lessonID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson plan not found")
		}
		plan := &plans[idx]
		fi := plan.FileIndex(fileID)
		if fi < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		removed = plan.Files[fi]
		plan.Files = append(plan.Files[:fi], plan.Files[fi+1:]...)
		if err := s.store.SaveLessonPlans(ctx, plans); err != nil {
			return appErrors.Storage(err, "failed to save lesson plans")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.RemoveFiles([]models.LessonFile{removed})
	return nil
}

// Link generates a signed, expiring download link for a lesson file.
func (s *AttachmentService) Link(ctx context.Context, lessonID, fileID string) (*dto.FileLink, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	if _, err := s.find(ctx, lessonID, fileID); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(lessonID, fileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	return &dto.FileLink{
		Token:     token,
		URL:       fmt.Sprintf("%s/files/%s", base, token),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Open validates token and opens the referenced file. Imported files carrying
// an inline data URL are decoded instead of read from disk.
func (s *AttachmentService) Open(ctx context.Context, token string) (*AttachmentDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	lessonID, fileID, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	file, err := s.find(ctx, lessonID, fileID)
	if err != nil {
		return nil, err
	}

	if file.Path == "" {
		mimeType, payload, err := decodeDataURL(file.Data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "file content unavailable")
		}
		if file.Type != "" {
			mimeType = file.Type
		}
		return &AttachmentDownload{
			Content:  io.NopCloser(bytes.NewReader(payload)),
			Filename: file.Name,
			MimeType: mimeType,
			Size:     int64(len(payload)),
		}, nil
	}

	handle, err := s.files.Open(file.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file content unavailable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open lesson file")
	}
	info, err := handle.Stat()
	if err != nil {
		handle.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read lesson file metadata")
	}
	return &AttachmentDownload{
		Content:  handle,
		Filename: file.Name,
		MimeType: file.Type,
		Size:     info.Size(),
	}, nil
}

// RemoveFiles deletes stored content of files best-effort. Failures are logged.
func (s *AttachmentService) RemoveFiles(files []models.LessonFile) {
	for _, file := range files {
		if file.Path == "" {
			continue
		}
		if err := s.files.Delete(file.Path); err != nil {
			s.logger.Warn("failed to remove lesson file", zap.String("path", file.Path), zap.Error(err))
		}
	}
}

func (s *AttachmentService) find(ctx context.Context, lessonID, fileID string) (*models.LessonFile, error) {
	plans, err := s.store.LoadLessonPlans(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load lesson plans")
	}
	idx := indexOfLesson(plans, lessonID)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson plan not found")
	}
	fi := plans[idx].FileIndex(fileID)
	if fi < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	file := plans[idx].Files[fi]
	return &file, nil
}

func detectMime(upload AttachmentUpload) (string, error) {
	if mt := strings.TrimSpace(upload.MimeType); mt != "" && mt != "application/octet-stream" {
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		return mt, nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	mt := http.DetectContentType(header[:n])
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	return mt, nil
}

// decodeDataURL decodes "data:<mime>;base64,<payload>" URLs. Payloads without
// the base64 marker are returned as is.
func decodeDataURL(raw string) (string, []byte, error) {
	if !strings.HasPrefix(raw, "data:") {
		return "", nil, errors.New("not a data url")
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return "", nil, errors.New("malformed data url")
	}
	mimeType := "text/plain"
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		switch {
		case i == 0 && part != "":
			mimeType = part
		case part == "base64":
			isBase64 = true
		}
	}
	if !isBase64 {
		return mimeType, []byte(payload), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data url: %w", err)
	}
	return mimeType, decoded, nil
}

func indexOfLesson(plans []models.LessonPlan, id string) int {
	for i := range plans {
		if plans[i].ID == id {
			return i
		}
	}
	return -1
}
