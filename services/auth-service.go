package services

import (
	"errors"
	"fmt"
	"net/http"

	"task-admin-client/logging"
	"task-admin-client/models"
	"task-admin-client/store"
	"task-admin-client/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Identity je razrešeni identitet prijavljenog korisnika.
type Identity struct {
	Username string
	Role     string
}

type AuthService struct {
	Factory *ClientFactory
	Store   *store.SessionStore
}

func NewAuthService(factory *ClientFactory, sessionStore *store.SessionStore) *AuthService {
	return &AuthService{Factory: factory, Store: sessionStore}
}

// Login šalje kredencijale na /token/. Ide preko golog klijenta:
// 401 na ovom endpointu znači pogrešnu lozinku, a ne isteklu sesiju,
// jer sesija još ne postoji.
func (s *AuthService) Login(username, password string) (*LoginResponse, error) {
	client := s.Factory.NewBareClient()

	var response LoginResponse
	err := client.Post("/token/", LoginRequest{Username: username, Password: password}, &response)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			logging.Logger.Warnf("Event ID: LOGIN_REJECTED, Description: Login rejected for user %s", username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if response.Access == "" {
		return nil, fmt.Errorf("login response missing access token")
	}
	return &response, nil
}

// Refresh menja refresh token za nov access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	return requestTokenRefresh(s.Factory.NewBareClient(), refreshToken)
}

// CurrentUser razrešava identitet preko /current-user/. Stariji
// serveri taj endpoint nemaju, pa se kao rezerva skenira lista
// korisnika po sačuvanom korisničkom imenu.
func (s *AuthService) CurrentUser() (*Identity, error) {
	client := s.Factory.NewClient()

	var user models.User
	err := client.Get("/current-user/", &user)
	if err == nil {
		return &Identity{Username: user.Username, Role: user.RoleName()}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	username := s.Store.Get().Username
	var users []models.User
	if err := client.Get("/users/", &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			return &Identity{Username: u.Username, Role: u.RoleName()}, nil
		}
	}
	return nil, ErrNotFound
}

// SignIn je kompletan tok prijave: tokeni, pa korisničko ime, pa
// uloga. Kod odbijene prijave ništa se ne upisuje u sesiju.
func (s *AuthService) SignIn(username, password string) (*Identity, error) {
	tokens, err := s.Login(username, password)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetTokens(tokens.Access, tokens.Refresh); err != nil {
		return nil, err
	}
	if err := s.Store.SetUsername(username); err != nil {
		return nil, err
	}

	identity, err := s.CurrentUser()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	if err := s.Store.SetRole(identity.Role); err != nil {
		return nil, err
	}

	if expiry, err := utils.TokenExpiry(tokens.Access); err == nil && !expiry.IsZero() {
		logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s logged in with role %s, token valid until %s", identity.Username, identity.Role, expiry.Format("2006-01-02 15:04:05"))
	} else {
		logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s logged in with role %s", identity.Username, identity.Role)
	}
	return identity, nil
}

// Logout briše sva četiri ključa sesije odjednom.
func (s *AuthService) Logout() error {
	logging.Logger.Infof("Event ID: LOGOUT, Description: Clearing stored session")
	return s.Store.Clear()
}

func requestTokenRefresh(client *Client, refreshToken string) (string, error) {
	var response struct {
		Access string `json:"access"`
	}
	err := client.Post("/token/refresh/", map[string]string{"refresh": refreshToken}, &response)
	if err != nil {
		return "", err
	}
	if response.Access == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}
	return response.Access, nil
}
