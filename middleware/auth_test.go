package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/senshuken/championship-system/models"
	"github.com/senshuken/championship-system/services"
)

const testSecret = "test-secret"

type fakeUserService struct {
	users  map[string]*models.User
	nextID int
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{users: make(map[string]*models.User), nextID: 1}
}

func (s *fakeUserService) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserService) UpdateProfile(_ context.Context, _ int, _ services.UpdateProfileInput) (*models.User, error) {
	return nil, nil
}

func (s *fakeUserService) FindOrCreateByExternalUID(_ context.Context, uid, displayName string) (*models.User, error) {
	if u, ok := s.users[uid]; ok {
		return u, nil
	}
	if displayName == "" {
		displayName = "user"
	}
	u := &models.User{ID: s.nextID, ExternalUID: uid, DisplayName: displayName}
	s.users[uid] = u
	s.nextID++
	return u, nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTVerifier(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"sub":  "uid-1",
			"name": "Alice",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		identity, err := verifier.Verify(context.Background(), token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if identity.Subject != "uid-1" || identity.Name != "Alice" {
			t.Errorf("identity = %+v", identity)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"sub": "uid-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		if _, err := verifier.Verify(context.Background(), token); err != ErrTokenExpired {
			t.Errorf("got %v, want ErrTokenExpired", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "uid-1"})
		signed, err := token.SignedString([]byte("other-secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := verifier.Verify(context.Background(), signed); err != ErrTokenInvalid {
			t.Errorf("got %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("missing sub claim", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"name": "Alice"})
		if _, err := verifier.Verify(context.Background(), token); err != ErrTokenInvalid {
			t.Errorf("got %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := verifier.Verify(context.Background(), "not.a.jwt"); err != ErrTokenInvalid {
			t.Errorf("got %v, want ErrTokenInvalid", err)
		}
	})
}

func authErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return envelope.Error.Code
}

func TestRequireAuth(t *testing.T) {
	users := newFakeUserService()
	auth := NewAuthenticator(NewJWTVerifier(testSecret), users)

	var gotUser *models.User
	handler := auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if code := authErrorCode(t, rec.Body.Bytes()); code != "UNAUTHORIZED" {
			t.Errorf("code = %q, want UNAUTHORIZED", code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": "uid-1", "exp": time.Now().Add(-time.Hour).Unix()})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if code := authErrorCode(t, rec.Body.Bytes()); code != "TOKEN_EXPIRED" {
			t.Errorf("code = %q, want TOKEN_EXPIRED", code)
		}
	})

	t.Run("valid token provisions user", func(t *testing.T) {
		gotUser = nil
		token := signToken(t, jwt.MapClaims{
			"sub":  "uid-7",
			"name": "Dana",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotUser == nil || gotUser.ExternalUID != "uid-7" || gotUser.DisplayName != "Dana" {
			t.Errorf("user in context = %+v", gotUser)
		}

		// Повторный запрос того же субъекта не создаёт дубликата.
		rec = httptest.NewRecorder()
		first := gotUser.ID
		handler.ServeHTTP(rec, req)
		if gotUser.ID != first {
			t.Errorf("same subject resolved to different users: %d != %d", gotUser.ID, first)
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	users := newFakeUserService()
	auth := NewAuthenticator(NewJWTVerifier(testSecret), users)

	var gotUser *models.User
	var called bool
	handler := auth.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no token passes through", func(t *testing.T) {
		called, gotUser = false, nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if !called || rec.Code != http.StatusOK {
			t.Errorf("handler should run without a token, status %d", rec.Code)
		}
		if gotUser != nil {
			t.Error("context should have no user")
		}
	})

	t.Run("invalid token treated as absent", func(t *testing.T) {
		called, gotUser = false, nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if !called || rec.Code != http.StatusOK {
			t.Errorf("handler should run with an invalid token, status %d", rec.Code)
		}
		if gotUser != nil {
			t.Error("context should have no user")
		}
	})

	t.Run("valid token attaches user", func(t *testing.T) {
		called, gotUser = false, nil
		token := signToken(t, jwt.MapClaims{"sub": "uid-9", "exp": time.Now().Add(time.Hour).Unix()})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if !called {
			t.Fatal("handler should run")
		}
		if gotUser == nil || gotUser.ExternalUID != "uid-9" {
			t.Errorf("user in context = %+v", gotUser)
		}
	})
}
