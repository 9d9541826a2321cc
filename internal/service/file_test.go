package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filedrive/internal/model"
	"filedrive/internal/repository"
	repoMocks "filedrive/internal/repository/mocks"
	"filedrive/internal/storage"
	storeMocks "filedrive/internal/storage/mocks"
)

func TestFileService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		folder     string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockFileRepository)
		wantErr    error
		wantTotal  int
	}{
		{
			name:   "root folder",
			folder: "/",
			limit:  10,
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("List", ctx, "", repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.File]{Items: []model.File{{ID: "1"}}, Total: 1}, nil)
			},
			wantTotal: 1,
		},
		{
			name:   "defaults and caps paging",
			folder: "docs/",
			limit:  1000,
			offset: -5,
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("List", ctx, "docs", repository.PageQuery{Limit: 100, Offset: 0}).
					Return(&repository.PageResult[model.File]{Items: []model.File{}, Total: 0}, nil)
			},
		},
		{
			name:   "zero limit",
			limit:  0,
			offset: 20,
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("List", ctx, "", repository.PageQuery{Limit: 10, Offset: 20}).
					Return(&repository.PageResult[model.File]{Items: []model.File{}, Total: 25}, nil)
			},
			wantTotal: 25,
		},
		{
			name:       "invalid folder",
			folder:     "../x",
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {},
			wantErr:    ErrInvalidFolder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockFileRepository)
			svc := NewFileService(new(storeMocks.MockStorage), mRepo, time.Hour)
			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.folder, tt.limit, tt.offset)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantTotal, res.Total)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFileService_Get(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockFileRepository)
	svc := NewFileService(new(storeMocks.MockStorage), mRepo, time.Hour)

	mRepo.On("FindByID", ctx, "found").Return(&model.File{ID: "found"}, nil)
	mRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound)
	mRepo.On("FindByID", ctx, "broken").Return(nil, errors.New("db down"))

	f, err := svc.Get(ctx, "found")
	assert.NoError(t, err)
	assert.Equal(t, "found", f.ID)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "broken")
	assert.EqualError(t, err, "db down")

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestFileService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockFileRepository)
	svc := NewFileService(mStore, mRepo, 15*time.Minute)

	mRepo.On("FindByID", ctx, "id1").Return(&model.File{ID: "id1", StoragePath: "docs/a.txt"}, nil)
	mStore.On("PresignGet", ctx, "docs/a.txt", 15*time.Minute).Return("http://minio/signed", nil)

	u, err := svc.DownloadURL(ctx, "id1")

	assert.NoError(t, err)
	assert.Equal(t, "http://minio/signed", u)
	mStore.AssertExpectations(t)
}

func TestFileService_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("streams the object", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, time.Hour)

		mRepo.On("FindByID", ctx, "id1").Return(&model.File{ID: "id1", Name: "a.txt", StoragePath: "docs/a.txt"}, nil)
		mStore.On("Get", ctx, "docs/a.txt").
			Return(io.NopCloser(strings.NewReader("hello")), storage.ObjectInfo{Key: "docs/a.txt", ContentType: "text/plain"}, nil)

		rc, f, err := svc.Open(ctx, "id1")
		assert.NoError(t, err)
		defer rc.Close()

		b, _ := io.ReadAll(rc)
		assert.Equal(t, "hello", string(b))
		assert.Equal(t, "text/plain", f.ContentType)
	})

	t.Run("size comes from the stored object", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, time.Hour)

		mRepo.On("FindByID", ctx, "id1").Return(&model.File{ID: "id1", Name: "a.txt", Size: 3, ContentType: "text/plain", StoragePath: "docs/a.txt"}, nil)
		mStore.On("Get", ctx, "docs/a.txt").
			Return(io.NopCloser(strings.NewReader("hello")), storage.ObjectInfo{Key: "docs/a.txt", Size: 5, ContentType: "application/octet-stream"}, nil)

		rc, f, err := svc.Open(ctx, "id1")
		require.NoError(t, err)
		defer rc.Close()

		assert.Equal(t, int64(5), f.Size)
		assert.Equal(t, "text/plain", f.ContentType, "recorded content type wins")
	})

	t.Run("unknown id", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, time.Hour)

		mRepo.On("FindByID", ctx, "nope").Return(nil, repository.ErrNotFound)

		_, _, err := svc.Open(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		mStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("storage error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, time.Hour)

		mRepo.On("FindByID", ctx, "id1").Return(&model.File{ID: "id1", StoragePath: "a.txt"}, nil)
		mStore.On("Get", ctx, "a.txt").Return(nil, storage.ObjectInfo{}, errors.New("gone"))

		_, _, err := svc.Open(ctx, "id1")
		assert.ErrorContains(t, err, "open object: gone")
	})
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByID", ctx, "id1").Return(&model.File{ID: "id1", StoragePath: "a.txt"}, nil)
				mStore.On("Delete", ctx, "a.txt").Return(nil)
				mRepo.On("Delete", ctx, "id1").Return(nil)
			},
		},
		{
			name: "not found",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByID", ctx, "id1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "storage error keeps the row",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByID", ctx, "id1").Return(&model.File{ID: "id1", StoragePath: "a.txt"}, nil)
				mStore.On("Delete", ctx, "a.txt").Return(errors.New("storage fail"))
			},
			wantErrMsg: "delete storage: storage fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockFileRepository)
			svc := NewFileService(mStore, mRepo, time.Hour)
			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, "id1")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.ErrorContains(t, err, tt.wantErrMsg)
				mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			default:
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}
