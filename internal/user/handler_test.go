package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"centavo/internal/auth"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newTestHandler(repo Repository) *Handler {
	return &Handler{repo: repo, jwtSecret: "test-secret"}
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepo)

	mockRepo.On("EmailExists", mock.Anything, "new@example.com").Return(false, nil)
	mockRepo.On("Create", mock.Anything, "New User", "new@example.com", mock.Anything).Return(&User{
		ID:    1,
		Name:  "New User",
		Email: "new@example.com",
	}, nil)

	router := gin.New()
	router.POST("/auth/register", newTestHandler(mockRepo).Register)

	w := postJSON(router, "/auth/register", RegisterRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "new@example.com", resp.User.Email)

	mockRepo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepo)

	mockRepo.On("EmailExists", mock.Anything, "taken@example.com").Return(true, nil)

	router := gin.New()
	router.POST("/auth/register", newTestHandler(mockRepo).Register)

	w := postJSON(router, "/auth/register", RegisterRequest{
		Name:     "Somebody",
		Email:    "taken@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepo)

	passwordHash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&User{
		ID:           1,
		Email:        "user@example.com",
		PasswordHash: passwordHash,
	}, nil)

	router := gin.New()
	router.POST("/auth/login", newTestHandler(mockRepo).Login)

	w := postJSON(router, "/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	mockRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepo)

	passwordHash, err := auth.HashPassword("correct-password")
	require.NoError(t, err)
	mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&User{
		ID:           1,
		Email:        "user@example.com",
		PasswordHash: passwordHash,
	}, nil)

	router := gin.New()
	router.POST("/auth/login", newTestHandler(mockRepo).Login)

	w := postJSON(router, "/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepo)

	mockRepo.On("FindByEmail", mock.Anything, "missing@example.com").Return(nil, ErrUserNotFound)

	router := gin.New()
	router.POST("/auth/login", newTestHandler(mockRepo).Login)

	w := postJSON(router, "/auth/login", LoginRequest{
		Email:    "missing@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_InvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/auth/refresh", newTestHandler(new(MockUserRepo)).Refresh)

	w := postJSON(router, "/auth/refresh", RefreshRequest{RefreshToken: "garbage"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
