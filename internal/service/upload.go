package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"filedrive/internal/metrics"
	"filedrive/internal/model"
	"filedrive/internal/progress"
	"filedrive/internal/repository"
	"filedrive/internal/storage"
)

var tracer = otel.Tracer("filedrive/internal/service")

// UploadInput describes one file sent by a client.
type UploadInput struct {
	// Folder is the destination folder; "" or "/" is the root.
	Folder      string
	Name        string
	ContentType string
	// Size is the byte length of Reader, or -1 if unknown.
	Size   int64
	Reader io.Reader
}

// UploadOptions bounds uploads.
type UploadOptions struct {
	MaxSizeBytes  int64
	PartSizeBytes uint64
}

// UploadService transfers files to object storage and records their metadata.
type UploadService interface {
	// Upload validates the input, tracks transfer progress for owner, stores the
	// object and then updates or inserts the (name, folder) metadata record.
	Upload(ctx context.Context, owner string, in UploadInput) (*model.File, error)

	// Progress lists owner's tracked uploads, including failed ones.
	Progress(ctx context.Context, owner string) ([]model.UploadProgress, error)

	// Dismiss removes one of owner's failed uploads. Running uploads yield ErrUploadActive.
	Dismiss(ctx context.Context, owner, id string) error
}

type uploadService struct {
	store   storage.Storage
	repo    repository.FileRepository
	tracker progress.Tracker
	opts    UploadOptions
	metrics *metrics.Uploads
	log     *slog.Logger
	now     func() time.Time
}

// NewUploadService constructs a new UploadService. m may be nil.
func NewUploadService(
	store storage.Storage,
	repo repository.FileRepository,
	tracker progress.Tracker,
	opts UploadOptions,
	m *metrics.Uploads,
	log *slog.Logger,
) UploadService {
	return &uploadService{
		store:   store,
		repo:    repo,
		tracker: tracker,
		opts:    opts,
		metrics: m,
		log:     log.With("component", "upload"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *uploadService) Upload(ctx context.Context, owner string, in UploadInput) (*model.File, error) {
	ctx, span := tracer.Start(ctx, "UploadService.Upload")
	defer span.End()
	span.SetAttributes(attribute.String("file.name", in.Name), attribute.Int64("file.size", in.Size))

	parent, err := s.validate(in)
	if err != nil {
		s.metrics.Observe(metrics.ResultRejected, 0)
		return nil, err
	}

	current, err := s.tracker.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	if progress.Active(current) > 0 {
		s.metrics.Observe(metrics.ResultRejected, 0)
		return nil, ErrUploadInProgress
	}

	entry, err := s.tracker.Register(ctx, owner, in.Name)
	if err != nil {
		return nil, fmt.Errorf("register upload: %w", err)
	}

	// Bookkeeping must survive a client hanging up mid-transfer.
	bg := context.WithoutCancel(ctx)
	key := ObjectKey(parent, in.Name)

	info, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		PartSize:    s.opts.PartSizeBytes,
		Metadata:    map[string]string{"original-filename": in.Name},
		Progress:    s.progressFunc(bg, entry.ID, in.Size),
	})
	if err != nil {
		if ferr := s.tracker.Fail(bg, entry.ID); ferr != nil {
			s.log.WarnContext(bg, "upload_mark_failed_error", "upload_id", entry.ID, "error", ferr.Error())
		}
		s.metrics.Observe(metrics.ResultStorageError, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage put failed")
		s.log.ErrorContext(bg, "upload_failed", "upload_id", entry.ID, "key", key, "error", err.Error())
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if err := s.tracker.Remove(bg, entry.ID); err != nil && !errors.Is(err, progress.ErrNotFound) {
		s.log.WarnContext(bg, "upload_untrack_error", "upload_id", entry.ID, "error", err.Error())
	}

	f, err := s.saveMetadata(bg, parent, in, key, info)
	if err != nil {
		s.metrics.Observe(metrics.ResultMetadataError, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "metadata write failed")
		return nil, err
	}

	s.metrics.Observe(metrics.ResultSuccess, info.Size)
	s.log.InfoContext(bg, "upload_completed", "file_id", f.ID, "key", key, "size", f.Size)
	return f, nil
}

func (s *uploadService) validate(in UploadInput) (string, error) {
	if err := ValidateFileName(in.Name); err != nil {
		return "", err
	}
	if in.Reader == nil {
		return "", ErrReaderNil
	}
	parent, err := NormalizeFolder(in.Folder)
	if err != nil {
		return "", err
	}
	if s.opts.MaxSizeBytes > 0 && in.Size > s.opts.MaxSizeBytes {
		return "", ErrFileTooLarge
	}
	return parent, nil
}

// progressFunc reports the rounded percentage to the tracker whenever it grows.
func (s *uploadService) progressFunc(ctx context.Context, id string, total int64) func(int64) {
	if total <= 0 {
		return nil
	}
	var last atomic.Int64
	return func(transferred int64) {
		pct := int64(progress.Percent(transferred, total))
		for {
			prev := last.Load()
			if pct <= prev {
				return
			}
			if last.CompareAndSwap(prev, pct) {
				break
			}
		}
		if err := s.tracker.Update(ctx, id, int(pct)); err != nil {
			s.log.DebugContext(ctx, "upload_progress_error", "upload_id", id, "error", err.Error())
		}
	}
}

// saveMetadata updates the url of an existing (name, parent) record or inserts
// a new one. An insert that races another upload of the same name falls back
// to updating the winner's record.
func (s *uploadService) saveMetadata(ctx context.Context, parent string, in UploadInput, key string, info storage.ObjectInfo) (*model.File, error) {
	url, err := s.store.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolve download url: %w", err)
	}
	now := s.now()

	existing, err := s.repo.FindByNameAndParent(ctx, in.Name, parent)
	switch {
	case err == nil:
		f, err := s.repo.UpdateURL(ctx, existing.ID, url, info.Size, now)
		if err != nil {
			return nil, fmt.Errorf("db update failed: %w", err)
		}
		return f, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("db lookup failed: %w", err)
	}

	f, err := s.repo.Create(ctx, &model.File{
		ID:          xid.New().String(),
		Name:        in.Name,
		Size:        info.Size,
		URL:         url,
		ParentPath:  parent,
		StoragePath: key,
		ContentType: in.ContentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err == nil {
		return f, nil
	}
	if errors.Is(err, repository.ErrConflict) {
		winner, ferr := s.repo.FindByNameAndParent(ctx, in.Name, parent)
		if ferr != nil {
			return nil, fmt.Errorf("db save failed: %w", ferr)
		}
		f, err = s.repo.UpdateURL(ctx, winner.ID, url, info.Size, now)
		if err != nil {
			return nil, fmt.Errorf("db update failed: %w", err)
		}
		return f, nil
	}
	// No record points at the new object; remove it.
	if delErr := s.store.Delete(ctx, key); delErr != nil {
		return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
	}
	return nil, fmt.Errorf("db save failed: %w", err)
}

func (s *uploadService) Progress(ctx context.Context, owner string) ([]model.UploadProgress, error) {
	return s.tracker.List(ctx, owner)
}

func (s *uploadService) Dismiss(ctx context.Context, owner, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	e, err := s.tracker.Get(ctx, id)
	if errors.Is(err, progress.ErrNotFound) || (err == nil && e.Owner != owner) {
		return ErrUploadNotFound
	}
	if err != nil {
		return err
	}
	// Only failed entries can be dismissed; a running one still guards the owner.
	if !e.Error {
		return ErrUploadActive
	}
	if err := s.tracker.Remove(ctx, id); err != nil && !errors.Is(err, progress.ErrNotFound) {
		return err
	}
	return nil
}
