package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Ključevi pod kojima se sesija čuva, nasleđeni iz starog klijenta.
const (
	keyToken        = "auth-token"
	keyRefreshToken = "refresh-token"
	keyUsername     = "username"
	keyRole         = "role"
)

// Session je trenutno stanje prijave. Prazno polje znači da vrednost
// nije sačuvana.
type Session struct {
	AccessToken  string
	RefreshToken string
	Username     string
	Role         string
}

// SessionStore čuva sesiju u JSON fajlu tako da svaka komponenta i
// svaki restart procesa vide isto stanje. Svaki upis ide odmah na disk.
type SessionStore struct {
	mu   sync.Mutex
	path string
}

func NewSessionStore(path string) (*SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &SessionStore{path: path}, nil
}

// Get vraća sačuvanu sesiju. Nepostojeći ili oštećen fajl se čita kao
// prazna sesija.
func (s *SessionStore) Get() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.read()
	return Session{
		AccessToken:  values[keyToken],
		RefreshToken: values[keyRefreshToken],
		Username:     values[keyUsername],
		Role:         values[keyRole],
	}
}

// SetTokens upisuje oba tokena. Prazna vrednost briše ključ umesto da
// upiše prazan string.
func (s *SessionStore) SetTokens(access, refresh string) error {
	return s.set(map[string]string{
		keyToken:        access,
		keyRefreshToken: refresh,
	})
}

// SetAccessToken menja samo access token; refresh token ostaje
// netaknut. Koristi ga refresh protokol.
func (s *SessionStore) SetAccessToken(access string) error {
	return s.set(map[string]string{keyToken: access})
}

func (s *SessionStore) SetUsername(username string) error {
	return s.set(map[string]string{keyUsername: username})
}

func (s *SessionStore) SetRole(role string) error {
	return s.set(map[string]string{keyRole: role})
}

// Clear briše sva četiri ključa odjednom.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(map[string]string{})
}

// IsAuthenticated: bez access tokena korisnik se tretira kao
// neprijavljen, bez obzira na ostala polja.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Get().AccessToken != ""
}

// HasRole poredi sačuvanu ulogu case-sensitive, isto kao što je server
// vraća pri prijavi.
func (s *SessionStore) HasRole(name string) bool {
	return s.Get().Role == name
}

func (s *SessionStore) set(updates map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.read()
	for key, value := range updates {
		if value == "" {
			delete(values, key)
		} else {
			values[key] = value
		}
	}
	return s.write(values)
}

func (s *SessionStore) read() map[string]string {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string)
	}
	return values
}

func (s *SessionStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
