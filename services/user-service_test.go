package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"task-admin-client/models"

	"github.com/gorilla/mux"
)

func newUserService(t *testing.T, handler http.Handler) *UserService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessionStore := newTestSessionStore(t)
	if err := sessionStore.SetTokens("token", "refresh"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	return NewUserService(NewClientFactory(server.URL, sessionStore, nil))
}

func TestUpdateWithoutPasswordOmitsField(t *testing.T) {
	var bodies []map[string]interface{}
	r := mux.NewRouter()
	r.HandleFunc("/users/{id}/", func(w http.ResponseWriter, req *http.Request) {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		bodies = append(bodies, raw)
		json.NewEncoder(w).Encode(models.User{ID: 2, Username: raw["username"].(string)})
	}).Methods(http.MethodPut)
	service := newUserService(t, r)

	// Bez lozinke: polje ne sme ni da postoji u telu zahteva.
	if _, err := service.Update(2, models.UserInput{Username: "alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, ok := bodies[0]["password"]; ok {
		t.Fatal("password key sent although no new password was given")
	}

	// Sa lozinkom: polje se šalje.
	if _, err := service.Update(2, models.UserInput{Username: "alice", Email: "alice@example.com", Password: "n3w-secret"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got, ok := bodies[1]["password"]; !ok || got != "n3w-secret" {
		t.Fatalf("expected password in body, got %v", bodies[1])
	}
}

func TestCreateUserNeverReadsPasswordBack(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/users/", func(w http.ResponseWriter, req *http.Request) {
		var input models.UserInput
		if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		// Server nikada ne vraća lozinku
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.User{
			ID:       7,
			Username: input.Username,
			Email:    input.Email,
			Role:     &models.Role{ID: 2, Name: "member"},
		})
	}).Methods(http.MethodPost)
	service := newUserService(t, r)

	created, err := service.Create(models.UserInput{Username: "bob", Email: "bob@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Username != "bob" || created.RoleName() != "member" {
		t.Fatalf("unexpected user %+v", created)
	}
}

func TestListUsersAndRoles(t *testing.T) {
	staff := false
	r := mux.NewRouter()
	r.HandleFunc("/users/", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]models.User{
			{ID: 1, Username: "alice", Role: &models.Role{ID: 1, Name: "admin"}},
			{ID: 2, Username: "bob", IsStaff: &staff},
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/roles/", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]models.Role{{ID: 1, Name: "admin"}, {ID: 2, Name: "member"}})
	}).Methods(http.MethodGet)
	service := newUserService(t, r)

	users, err := service.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].RoleName() != "admin" || users[1].RoleName() != "member" {
		t.Fatalf("unexpected role resolution: %q, %q", users[0].RoleName(), users[1].RoleName())
	}

	roles, err := service.ListRoles()
	if err != nil {
		t.Fatalf("ListRoles failed: %v", err)
	}
	if len(roles) != 2 || roles[0].Name != "admin" {
		t.Fatalf("unexpected roles %+v", roles)
	}
}
