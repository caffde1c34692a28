package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-admin-client/models"
	"task-admin-client/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

func mintAccessToken(t *testing.T, username, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(2 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

func newAuthTestServer(t *testing.T, access string) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/token/", func(w http.ResponseWriter, req *http.Request) {
		var body LoginRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if body.Username != "alice" || body.Password != "correct" {
			http.Error(w, `{"detail":"No active account found"}`, http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(LoginResponse{Access: access, Refresh: "refresh-1"})
	}).Methods(http.MethodPost)
	r.HandleFunc("/current-user/", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer "+access {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(models.User{
			ID:       1,
			Username: "alice",
			Email:    "alice@example.com",
			Role:     &models.Role{ID: 1, Name: "admin"},
		})
	}).Methods(http.MethodGet)
	return httptest.NewServer(r)
}

func TestSignInPersistsSessionAndResolvesRole(t *testing.T) {
	access := mintAccessToken(t, "alice", "admin")
	server := newAuthTestServer(t, access)
	defer server.Close()

	sessionStore := newTestSessionStore(t)
	factory := NewClientFactory(server.URL, sessionStore, nil)
	authService := NewAuthService(factory, sessionStore)

	identity, err := authService.SignIn("alice", "correct")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if identity.Username != "alice" || identity.Role != "admin" {
		t.Fatalf("unexpected identity %+v", identity)
	}

	session := sessionStore.Get()
	if session.AccessToken != access || session.RefreshToken != "refresh-1" {
		t.Fatalf("tokens not persisted, got %+v", session)
	}
	if session.Username != "alice" || session.Role != "admin" {
		t.Fatalf("identity not persisted, got %+v", session)
	}
	if !sessionStore.HasRole(models.RoleAdmin) {
		t.Fatal("expected admin role for users-management access")
	}
}

func TestSignInRejectedWritesNothing(t *testing.T) {
	access := mintAccessToken(t, "alice", "admin")
	server := newAuthTestServer(t, access)
	defer server.Close()

	sessionStore := newTestSessionStore(t)
	factory := NewClientFactory(server.URL, sessionStore, nil)
	authService := NewAuthService(factory, sessionStore)

	_, err := authService.SignIn("alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if session := sessionStore.Get(); session != (store.Session{}) {
		t.Fatalf("expected no session fields written, got %+v", session)
	}
}

func TestCurrentUserFallsBackToUserList(t *testing.T) {
	// Stariji server bez /current-user/: identitet se traži u listi
	// korisnika, a legacy is_staff se mapira na imenovanu ulogu.
	staff := true
	r := mux.NewRouter()
	r.HandleFunc("/users/", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]models.User{
			{ID: 1, Username: "bob", Email: "bob@example.com"},
			{ID: 2, Username: "alice", Email: "alice@example.com", IsStaff: &staff},
		})
	}).Methods(http.MethodGet)
	server := httptest.NewServer(r)
	defer server.Close()

	sessionStore := newTestSessionStore(t)
	if err := sessionStore.SetTokens("token", "refresh"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if err := sessionStore.SetUsername("alice"); err != nil {
		t.Fatalf("SetUsername failed: %v", err)
	}

	factory := NewClientFactory(server.URL, sessionStore, nil)
	authService := NewAuthService(factory, sessionStore)

	identity, err := authService.CurrentUser()
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if identity.Username != "alice" || identity.Role != models.RoleAdmin {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestCurrentUserUnknownUsername(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/users/", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]models.User{})
	}).Methods(http.MethodGet)
	server := httptest.NewServer(r)
	defer server.Close()

	sessionStore := newTestSessionStore(t)
	if err := sessionStore.SetTokens("token", "refresh"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if err := sessionStore.SetUsername("ghost"); err != nil {
		t.Fatalf("SetUsername failed: %v", err)
	}

	factory := NewClientFactory(server.URL, sessionStore, nil)
	authService := NewAuthService(factory, sessionStore)

	if _, err := authService.CurrentUser(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRefreshReturnsNewAccessToken(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/token/refresh/", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Refresh string `json:"refresh"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Refresh != "refresh-1" {
			http.Error(w, "invalid refresh", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh"})
	}).Methods(http.MethodPost)
	server := httptest.NewServer(r)
	defer server.Close()

	sessionStore := newTestSessionStore(t)
	factory := NewClientFactory(server.URL, sessionStore, nil)
	authService := NewAuthService(factory, sessionStore)

	access, err := authService.Refresh("refresh-1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if access != "fresh" {
		t.Fatalf("expected access token fresh, got %q", access)
	}

	if _, err := authService.Refresh("bogus"); err == nil {
		t.Fatal("expected rejected refresh token to fail")
	}
}
