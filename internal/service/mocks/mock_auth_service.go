package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filedrive/internal/auth"
	"filedrive/internal/model"
	"filedrive/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password, clientKey string) (*service.Session, error) {
	args := m.Called(ctx, email, password, clientKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, email, password, clientKey string) (*service.Session, error) {
	args := m.Called(ctx, email, password, clientKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Verify(ctx context.Context, token string) (auth.Claims, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Claims), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
