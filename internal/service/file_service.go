package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"loadmap/internal/blob"
	"loadmap/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileService keeps uploaded plan documents in blob storage under
// "<file_id>_<filename>".
type FileService struct {
	blobs  blob.Store
	newID  func() string
	logger *zap.Logger
}

func NewFileService(blobs blob.Store, logger *zap.Logger) *FileService {
	return &FileService{blobs: blobs, newID: uuid.NewString, logger: logger}
}

// cleanFilename drops any client-supplied directory part.
func cleanFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// Upload stores r and returns the new file record.
func (s *FileService) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*domain.UploadedFile, error) {
	name := cleanFilename(filename)
	if name == "" {
		return nil, invalid("file", "filename is required")
	}
	id := s.newID()
	key := id + "_" + name
	info, err := s.blobs.Put(ctx, key, r, blob.PutOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	s.logger.Info("File uploaded",
		zap.String("file_id", id),
		zap.String("filename", name),
		zap.Int64("size", info.Size),
		zap.String("driver", string(s.blobs.Driver())),
	)
	return &domain.UploadedFile{FileID: id, Filename: name, Key: key, Size: info.Size, ContentType: info.ContentType}, nil
}

// Resolve finds the stored object for fileID.
func (s *FileService) Resolve(ctx context.Context, fileID string) (*domain.UploadedFile, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, invalid("file_id", "is required")
	}
	prefix := fileID + "_"
	infos, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to look up file: %w", err)
	}
	if len(infos) == 0 {
		return nil, &NotFoundError{Resource: "file", ID: fileID, Message: "File not found"}
	}
	info := infos[0]
	return &domain.UploadedFile{
		FileID:      fileID,
		Filename:    strings.TrimPrefix(info.Key, prefix),
		Key:         info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

// Open returns the file content; the caller closes it.
func (s *FileService) Open(ctx context.Context, fileID string) (*domain.UploadedFile, io.ReadCloser, error) {
	f, err := s.Resolve(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	_, rc, err := s.blobs.Get(ctx, f.Key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, &NotFoundError{Resource: "file", ID: fileID, Message: "File not found"}
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, rc, nil
}
