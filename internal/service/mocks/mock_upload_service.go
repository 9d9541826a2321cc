package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filedrive/internal/model"
	"filedrive/internal/service"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, owner string, in service.UploadInput) (*model.File, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockUploadService) Progress(ctx context.Context, owner string) ([]model.UploadProgress, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UploadProgress), args.Error(1)
}

func (m *MockUploadService) Dismiss(ctx context.Context, owner, id string) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}
