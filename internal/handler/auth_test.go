package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/prata-pos/api/internal/auth"
	"github.com/prata-pos/api/internal/database"
	"github.com/prata-pos/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

type mockAuthStore struct {
	getUserByEmployeeIDFn func(ctx context.Context, employeeID string) (database.User, error)
	getUserByIDFn         func(ctx context.Context, id int64) (database.User, error)
}

func (m *mockAuthStore) GetUserByEmployeeID(ctx context.Context, employeeID string) (database.User, error) {
	return m.getUserByEmployeeIDFn(ctx, employeeID)
}

func (m *mockAuthStore) GetUserByID(ctx context.Context, id int64) (database.User, error) {
	return m.getUserByIDFn(ctx, id)
}

func activeUser(t *testing.T, password string) database.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return database.User{
		ID:           7,
		Name:         "Test Waiter",
		Email:        "waiter@cafe.com",
		EmployeeID:   "0042",
		PasswordHash: string(hash),
		Role:         enum.UserRoleWaiter,
		Status:       enum.UserStatusActive,
	}
}

func newAuthRouter(h *AuthHandler) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	h.RegisterProtectedRoutes(r)
	return r
}

func TestAuthHandler_Login_Success(t *testing.T) {
	user := activeUser(t, "secret123")
	store := &mockAuthStore{
		getUserByEmployeeIDFn: func(ctx context.Context, employeeID string) (database.User, error) {
			if employeeID != "0042" {
				t.Errorf("employee ID = %q", employeeID)
			}
			return user, nil
		},
	}
	h := NewAuthHandler(store, testJWTSecret)
	router := newAuthRouter(h)

	rec := doRequest(router, http.MethodPost, "/auth/login", `{"employee_id":"0042","password":"secret123"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User.EmployeeID != "0042" || resp.User.Role != enum.UserRoleWaiter {
		t.Errorf("user = %+v", resp.User)
	}

	// The token must round-trip through our own validator.
	claims, err := auth.ValidateToken(testJWTSecret, resp.Token)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.UserID != 7 || claims.Role != enum.UserRoleWaiter {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAuthHandler_Login_ResponseOmitsPasswordHash(t *testing.T) {
	user := activeUser(t, "secret123")
	store := &mockAuthStore{
		getUserByEmployeeIDFn: func(ctx context.Context, employeeID string) (database.User, error) {
			return user, nil
		},
	}
	h := NewAuthHandler(store, testJWTSecret)
	router := newAuthRouter(h)

	rec := doRequest(router, http.MethodPost, "/auth/login", `{"employee_id":"0042","password":"secret123"}`, nil)

	var raw map[string]any
	decodeBody(t, rec, &raw)
	userBody, ok := raw["user"].(map[string]any)
	if !ok {
		t.Fatalf("user field = %v", raw["user"])
	}
	for _, key := range []string{"password_hash", "PasswordHash", "password"} {
		if _, exists := userBody[key]; exists {
			t.Errorf("response leaks %q", key)
		}
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	user := activeUser(t, "secret123")
	store := &mockAuthStore{
		getUserByEmployeeIDFn: func(ctx context.Context, employeeID string) (database.User, error) {
			return user, nil
		},
	}
	h := NewAuthHandler(store, testJWTSecret)
	router := newAuthRouter(h)

	rec := doRequest(router, http.MethodPost, "/auth/login", `{"employee_id":"0042","password":"nope"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "invalid credentials" {
		t.Errorf("error = %q", msg)
	}
}

func TestAuthHandler_Login_UnknownEmployeeID(t *testing.T) {
	store := &mockAuthStore{
		getUserByEmployeeIDFn: func(ctx context.Context, employeeID string) (database.User, error) {
			return database.User{}, pgx.ErrNoRows
		},
	}
	h := NewAuthHandler(store, testJWTSecret)
	router := newAuthRouter(h)

	rec := doRequest(router, http.MethodPost, "/auth/login", `{"employee_id":"9999","password":"secret123"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// Same message as a wrong password; employee IDs must not be probeable.
	if msg := errorMessage(t, rec); msg != "invalid credentials" {
		t.Errorf("error = %q", msg)
	}
}

func TestAuthHandler_Login_InactiveAccount(t *testing.T) {
	user := activeUser(t, "secret123")
	user.Status = enum.UserStatusInactive
	store := &mockAuthStore{
		getUserByEmployeeIDFn: func(ctx context.Context, employeeID string) (database.User, error) {
			return user, nil
		},
	}
	h := NewAuthHandler(store, testJWTSecret)
	router := newAuthRouter(h)

	rec := doRequest(router, http.MethodPost, "/auth/login", `{"employee_id":"0042","password":"secret123"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "account is inactive" {
		t.Errorf("error = %q", msg)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&mockAuthStore{}, testJWTSecret)
	router := newAuthRouter(h)

	for _, body := range []string{`{}`, `{"employee_id":"0042"}`, `{"password":"x"}`} {
		rec := doRequest(router, http.MethodPost, "/auth/login", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	user := activeUser(t, "secret123")
	store := &mockAuthStore{
		getUserByIDFn: func(ctx context.Context, id int64) (database.User, error) {
			if id != 7 {
				t.Errorf("user ID = %d, want 7", id)
			}
			return user, nil
		},
	}
	h := NewAuthHandler(store, testJWTSecret)
	router := newAuthRouter(h)

	rec := doRequest(router, http.MethodGet, "/auth/profile", "", waiterClaims())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp userResponse
	decodeBody(t, rec, &resp)
	if resp.Name != "Test Waiter" {
		t.Errorf("name = %q", resp.Name)
	}
}

func TestAuthHandler_Profile_UserDeleted(t *testing.T) {
	store := &mockAuthStore{
		getUserByIDFn: func(ctx context.Context, id int64) (database.User, error) {
			return database.User{}, pgx.ErrNoRows
		},
	}
	h := NewAuthHandler(store, testJWTSecret)
	router := newAuthRouter(h)

	rec := doRequest(router, http.MethodGet, "/auth/profile", "", waiterClaims())

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
