package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"filedrive/internal/model"
	"filedrive/internal/repository"
	"filedrive/internal/storage"
)

// FileListResult is the service-level DTO for a page of one folder.
type FileListResult struct {
	Items []model.File `json:"data"`
	Total int          `json:"total"`
}

// FileService defines read and delete use cases for stored files.
type FileService interface {
	// List returns the files directly inside folder using limit/offset and a total count.
	List(ctx context.Context, folder string, limit, offset int) (*FileListResult, error)

	// Get returns a single file by its ID.
	Get(ctx context.Context, id string) (*model.File, error)

	// DownloadURL returns a freshly presigned URL for the file's object.
	DownloadURL(ctx context.Context, id string) (string, error)

	// Open streams the file's content. The returned record carries the stored
	// object's size. The caller closes the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.File, error)

	// Delete removes a file by ID from both storage and repository.
	Delete(ctx context.Context, id string) error
}

type fileService struct {
	store     storage.Storage
	repo      repository.FileRepository
	urlExpiry time.Duration
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, urlExpiry time.Duration) FileService {
	return &fileService{store: store, repo: repo, urlExpiry: urlExpiry}
}

func (s *fileService) List(ctx context.Context, folder string, limit, offset int) (*FileListResult, error) {
	parent, err := NormalizeFolder(folder)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, parent, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *fileService) Get(ctx context.Context, id string) (*model.File, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *fileService) DownloadURL(ctx context.Context, id string) (string, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, f.StoragePath, s.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

func (s *fileService) Open(ctx context.Context, id string) (io.ReadCloser, *model.File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, info, err := s.store.Get(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open object: %w", err)
	}
	if f.ContentType == "" {
		f.ContentType = info.ContentType
	}
	// The stored object is authoritative for the body length.
	f.Size = info.Size
	return rc, f, nil
}

// Delete removes a file from storage, then deletes its record.
func (s *fileService) Delete(ctx context.Context, id string) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// If the object cannot be removed the row is kept so the object stays reachable.
	if err := s.store.Delete(ctx, f.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
