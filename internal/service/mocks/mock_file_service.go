package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"filedrive/internal/model"
	"filedrive/internal/service"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) List(ctx context.Context, folder string, limit, offset int) (*service.FileListResult, error) {
	args := m.Called(ctx, folder, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Open(ctx context.Context, id string) (io.ReadCloser, *model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.File), args.Error(2)
}

func (m *MockFileService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
