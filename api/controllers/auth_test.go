package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/groceryshare-backend/internal/auth"
	"github.com/angelmondragon/groceryshare-backend/internal/users"
	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
)

type fakeAuthService struct {
	loginErr error
	loggedIn []string
	revoked  []string
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.loggedIn = append(f.loggedIn, req.Username)
	return &auth.LoginResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &users.UserDTO{Username: req.Username},
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func (f *fakeAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
}

type fakeRegisterService struct {
	registerErr error
	registered  []string
}

func (f *fakeRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, req.Username)
	return &users.UserDTO{Username: req.Username}, nil
}

func TestAuthLoginReturnsTokens(t *testing.T) {
	svc := &fakeAuthService{}
	handler := AuthLogin(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"secret123"}`)))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"access_token":"access"`) {
		t.Fatalf("expected tokens in payload, got %s", resp.Body.String())
	}
}

func TestAuthLoginRejectsMissingPassword(t *testing.T) {
	handler := AuthLogin(&fakeAuthService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice"}`)))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthRegisterCreatesAndLogsIn(t *testing.T) {
	reg := &fakeRegisterService{}
	svc := &fakeAuthService{}
	handler := AuthRegister(reg, svc, nil)

	body := `{"username":"alice","email":"alice@example.com","password":"secret123"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(reg.registered) != 1 || len(svc.loggedIn) != 1 {
		t.Fatalf("expected register then login, got %v / %v", reg.registered, svc.loggedIn)
	}
}

func TestAuthRegisterConflictPassesThrough(t *testing.T) {
	reg := &fakeRegisterService{registerErr: pkgerrors.New(pkgerrors.CodeConflict, "username already taken")}
	handler := AuthRegister(reg, &fakeAuthService{}, nil)

	body := `{"username":"alice","email":"alice@example.com","password":"secret123"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
