package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/domains/user/model"
	"storefront-backend/pkg/jwt"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, page, limit int) ([]*model.User, int, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]*model.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepo) Update(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func testJWT() *jwt.Manager {
	return jwt.NewManager("test-secret", 15*time.Minute, 72*time.Hour)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	// Low cost keeps the test fast; the service hashes at cost 12.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginSuccess(t *testing.T) {
	u := &model.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashOf(t, "correct horse"),
		FullName:     "Jane Doe",
		Role:         model.RoleCustomer,
		IsActive:     true,
	}

	repo := new(mockUserRepo)
	repo.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

	svc := NewUserService(repo, testJWT())
	resp, err := svc.Login(context.Background(), &model.LoginRequest{Email: u.Email, Password: "correct horse"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, u.ID, resp.User.ID)
}

func TestLoginUnknownEmailMapsToInvalidCredentials(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, model.ErrUserNotFound)

	svc := NewUserService(repo, testJWT())
	_, err := svc.Login(context.Background(), &model.LoginRequest{Email: "ghost@example.com", Password: "whatever1"})

	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	u := &model.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashOf(t, "correct horse"),
		IsActive:     true,
	}

	repo := new(mockUserRepo)
	repo.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

	svc := NewUserService(repo, testJWT())
	_, err := svc.Login(context.Background(), &model.LoginRequest{Email: u.Email, Password: "wrong horse"})

	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	u := &model.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashOf(t, "correct horse"),
		IsActive:     false,
	}

	repo := new(mockUserRepo)
	repo.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

	svc := NewUserService(repo, testJWT())
	_, err := svc.Login(context.Background(), &model.LoginRequest{Email: u.Email, Password: "correct horse"})

	assert.ErrorIs(t, err, model.ErrUserInactive)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	svc := NewUserService(repo, testJWT())
	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
		FullName: "Jane Doe",
	})

	assert.ErrorIs(t, err, model.ErrEmailAlreadyExists)
	repo.AssertNotCalled(t, "Create")
}

func TestRegisterAssignsCustomerRole(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleCustomer && u.IsActive && u.PasswordHash != "password123"
	})).Return(nil)

	svc := NewUserService(repo, testJWT())
	u, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
		FullName: "Jane Doe",
	})

	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, u.Role)
	repo.AssertExpectations(t)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	jm := testJWT()
	access, err := jm.GenerateAccessToken(uuid.NewString(), "a@b.c", "A", model.RoleCustomer)
	require.NoError(t, err)

	svc := NewUserService(new(mockUserRepo), jm)
	_, err = svc.Refresh(context.Background(), &model.RefreshRequest{RefreshToken: access})

	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}
