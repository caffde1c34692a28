package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"task-admin-client/logging"
	"task-admin-client/store"
	"task-admin-client/utils"

	"github.com/sony/gobreaker"
)

type ctxKey int

// attemptKey nosi broj pokušaja u kontekstu zahteva, tako da se isti
// logički zahtev nikada ne ponovi više od jednom.
const attemptKey ctxKey = iota

// ClientFactory pravi klijente vezane za trenutni access token i
// centralno vodi refresh protokol. Sesija se prosleđuje spolja da bi
// testovi mogli da rade bez deljenog globalnog stanja.
type ClientFactory struct {
	BaseURL string
	Store   *store.SessionStore

	// OnSessionExpired se poziva posle brisanja sesije, da potrošač
	// preusmeri korisnika na prijavu.
	OnSessionExpired func()

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker

	// refreshMu spaja istovremene refresh pokušaje u jedan poziv.
	refreshMu sync.Mutex
}

func NewClientFactory(baseURL string, sessionStore *store.SessionStore, onSessionExpired func()) *ClientFactory {
	refreshBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TokenRefreshCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	return &ClientFactory{
		BaseURL:          strings.TrimRight(baseURL, "/"),
		Store:            sessionStore,
		OnSessionExpired: onSessionExpired,
		httpClient:       utils.NewHTTPClient(),
		breaker:          refreshBreaker,
	}
}

// NewClient pravi klijent vezan za access token sačuvan u ovom
// trenutku. Svaki servisni poziv traži svež klijent od fabrike.
func (f *ClientFactory) NewClient() *Client {
	session := f.Store.Get()
	return &Client{
		baseURL: f.BaseURL,
		http: &http.Client{
			Timeout:   f.httpClient.Timeout,
			Transport: &authTransport{factory: f, token: session.AccessToken},
		},
	}
}

// NewBareClient pravi klijent bez tokena i bez refresh protokola.
// Koriste ga sami token endpointi: 401 na prijavi mora da prođe do
// pozivaoca kao pogrešna lozinka, a ne da pokrene refresh.
func (f *ClientFactory) NewBareClient() *Client {
	return &Client{baseURL: f.BaseURL, http: f.httpClient}
}

// refreshAccessToken pribavlja nov access token, sa spajanjem
// istovremenih pokušaja: ko god sačeka mutex proverava da li je neko
// drugi već osvežio token pre nego što pozove server.
func (f *ClientFactory) refreshAccessToken(staleAccess string) (string, error) {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	session := f.Store.Get()
	if session.AccessToken != "" && session.AccessToken != staleAccess {
		return session.AccessToken, nil
	}
	if session.RefreshToken == "" {
		logging.Logger.Warnf("Event ID: REFRESH_TOKEN_MISSING, Description: No refresh token stored, session cannot be renewed")
		return "", ErrSessionExpired
	}

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return requestTokenRefresh(f.NewBareClient(), session.RefreshToken)
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: TOKEN_REFRESH_FAILED, Description: Token refresh failed: %v", err)
		return "", err
	}

	access := result.(string)
	if err := f.Store.SetAccessToken(access); err != nil {
		return "", err
	}
	logging.Logger.Infof("Event ID: TOKEN_REFRESHED, Description: Access token renewed")
	return access, nil
}

// expireSession briše sesiju i obaveštava potrošača da preusmeri na
// prijavu. Poziva se tačno jednom po neuspelom zahtevu.
func (f *ClientFactory) expireSession() {
	if err := f.Store.Clear(); err != nil {
		logging.Logger.Errorf("Event ID: SESSION_CLEAR_FAILED, Description: Failed to clear session: %v", err)
	}
	logging.Logger.Warnf("Event ID: SESSION_EXPIRED, Description: Session cleared, user must log in again")
	if f.OnSessionExpired != nil {
		f.OnSessionExpired()
	}
}

// authTransport dodaje Bearer token na svaki zahtev i na 401 vodi
// refresh protokol: najviše jedan refresh i jedno ponavljanje po
// logičkom zahtevu.
type authTransport struct {
	factory *ClientFactory
	token   string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.send(req, t.token)
}

func (t *authTransport) send(req *http.Request, token string) (*http.Response, error) {
	attempt, _ := req.Context().Value(attemptKey).(int)

	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultTransport.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if attempt > 0 {
		// Već ponovljen zahtev je opet dobio 401: nema daljih pokušaja.
		logging.Logger.Warnf("Event ID: AUTH_RETRY_EXHAUSTED, Description: Request to %s unauthorized after token refresh", req.URL.Path)
		t.factory.expireSession()
		return nil, ErrSessionExpired
	}
	if req.Body != nil && req.GetBody == nil {
		// Telo zahteva ne može da se premota, pa nema ni ponavljanja.
		t.factory.expireSession()
		return nil, ErrSessionExpired
	}

	newToken, err := t.factory.refreshAccessToken(token)
	if err != nil {
		t.factory.expireSession()
		if errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	retry := req.Clone(context.WithValue(req.Context(), attemptKey, attempt+1))
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", bodyErr)
		}
		retry.Body = body
	}
	return t.send(retry, newToken)
}

// Client je tanak JSON omotač oko HTTP poziva ka API-ju.
type Client struct {
	baseURL string
	http    *http.Client
}

func (c *Client) Get(path string, out interface{}) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *Client) Post(path string, body, out interface{}) error {
	return c.do(http.MethodPost, path, body, out)
}

func (c *Client) Put(path string, body, out interface{}) error {
	return c.do(http.MethodPut, path, body, out)
}

func (c *Client) Delete(path string) error {
	return c.do(http.MethodDelete, path, nil, nil)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// errors.Is i dalje vidi ErrSessionExpired kroz url.Error omotač
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(message))}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
